package model

import "fmt"

// ChapterProgress GET /user-progress/chapter/{chapterId}
type ChapterProgress struct {
	ChapterID   string  `json:"chapterId"`
	WatchedTime float64 `json:"watchedTime"` // 0-100 百分比
	IsCompleted bool    `json:"isCompleted"`
}

// CourseProgress GET /user-progress/course/{courseId}，由后端计算
type CourseProgress struct {
	Percentage        float64  `json:"percentage"`
	CompletedChapters []string `json:"completedChapters"`
	CompletedCount    int      `json:"completedCount"`
	TotalChapters     int      `json:"totalChapters"`
	IsCompleted       bool     `json:"isCompleted"`
}

func (p *CourseProgress) Finished() bool {
	return p != nil && p.Percentage >= 100
}

func (p *CourseProgress) HasCompleted(chapterID string) bool {
	if p == nil {
		return false
	}
	for _, id := range p.CompletedChapters {
		if id == chapterID {
			return true
		}
	}
	return false
}

func (p *ChapterProgress) Validate() error {
	if p.WatchedTime < 0 || p.WatchedTime > 100 {
		return fmt.Errorf("chapter watchedTime %v out of range", p.WatchedTime)
	}
	return nil
}

func (p *CourseProgress) Validate() error {
	if p.Percentage < 0 || p.Percentage > 100 {
		return fmt.Errorf("course percentage %v out of range", p.Percentage)
	}
	if p.CompletedCount < 0 || p.TotalChapters < 0 {
		return fmt.Errorf("negative chapter counts")
	}
	return nil
}
