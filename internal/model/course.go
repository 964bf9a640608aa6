package model

import (
	"errors"
	"fmt"
	"time"
)

// Course 课程树，来自业务后端，本地只读
// swagger:model Course
type Course struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Paid         bool      `json:"paid"`
	Price        float64   `json:"price"`
	SalePrice    *float64  `json:"salePrice,omitempty"`
	ValidityDays *int      `json:"validityDays,omitempty"`
	Sections     []Section `json:"sections"`
}

// swagger:model Section
type Section struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Chapters []Chapter `json:"chapters"`
}

// swagger:model Chapter
type Chapter struct {
	ID       string   `json:"id"`
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	IsFree   bool     `json:"isFree"`
	Duration *float64 `json:"duration,omitempty"` // 秒
	// 附件（PDF/音频）在对象存储中的 key
	Attachments []Attachment `json:"attachments,omitempty"`
}

type AttachmentKind string

const (
	AttachmentPDF   AttachmentKind = "pdf"
	AttachmentAudio AttachmentKind = "audio"
)

type Attachment struct {
	Kind  AttachmentKind `json:"kind"`
	Title string         `json:"title"`
	Key   string         `json:"key"`
}

// EffectivePrice 有折扣价且更低时取折扣价
func (c *Course) EffectivePrice() float64 {
	if c.SalePrice != nil && *c.SalePrice >= 0 && *c.SalePrice < c.Price {
		return *c.SalePrice
	}
	return c.Price
}

// ValidUntil 购买后的有效期截止时间，未设置有效期返回 nil
func (c *Course) ValidUntil(from time.Time) *time.Time {
	if c.ValidityDays == nil || *c.ValidityDays <= 0 {
		return nil
	}
	t := from.AddDate(0, 0, *c.ValidityDays)
	return &t
}

// FindChapter 按 ID 查找章节，返回所在小节和章节下标
func (c *Course) FindChapter(chapterID string) (*Chapter, int, int) {
	for si := range c.Sections {
		for ci := range c.Sections[si].Chapters {
			if c.Sections[si].Chapters[ci].ID == chapterID {
				return &c.Sections[si].Chapters[ci], si, ci
			}
		}
	}
	return nil, -1, -1
}

func (c *Course) FindChapterBySlug(slug string) *Chapter {
	for si := range c.Sections {
		for ci := range c.Sections[si].Chapters {
			if c.Sections[si].Chapters[ci].Slug == slug {
				return &c.Sections[si].Chapters[ci]
			}
		}
	}
	return nil
}

func (c *Course) TotalChapters() int {
	n := 0
	for _, s := range c.Sections {
		n += len(s.Chapters)
	}
	return n
}

// Validate 在边界处校验后端返回的课程树
func (c *Course) Validate() error {
	if c.ID == "" || c.Slug == "" {
		return errors.New("course id and slug are required")
	}
	if c.Price < 0 {
		return fmt.Errorf("course %s has negative price", c.Slug)
	}
	seen := make(map[string]struct{})
	for _, s := range c.Sections {
		for _, ch := range s.Chapters {
			if ch.ID == "" {
				return fmt.Errorf("course %s has a chapter without id", c.Slug)
			}
			if _, dup := seen[ch.ID]; dup {
				return fmt.Errorf("course %s has duplicate chapter id %s", c.Slug, ch.ID)
			}
			seen[ch.ID] = struct{}{}
		}
	}
	return nil
}
