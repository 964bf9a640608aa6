package model

import "time"

// PlaybackState 每个用户每个章节一行，记录上次成功上报的百分比
// swagger:model PlaybackState
type PlaybackState struct {
	LedgerModel
	UserID       string     `gorm:"size:64;not null;uniqueIndex:idx_user_chapter" json:"userId"`
	ChapterID    string     `gorm:"size:64;not null;uniqueIndex:idx_user_chapter" json:"chapterId"`
	CourseSlug   string     `gorm:"size:191;index" json:"courseSlug"`
	LastReported float64    `gorm:"default:0" json:"lastReported"`
	MaxPlayed    float64    `gorm:"default:0" json:"maxPlayed"`
	Completed    bool       `gorm:"default:false" json:"completed"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

func (PlaybackState) TableName() string {
	return "playback_states"
}

// CompletionAttempt 每次播放结束事件的判定记录
type CompletionAttempt struct {
	EventModel
	UserID     string  `gorm:"size:64;index;not null" json:"userId"`
	ChapterID  string  `gorm:"size:64;index;not null" json:"chapterId"`
	CourseSlug string  `gorm:"size:191" json:"courseSlug"`
	Percentage float64 `json:"percentage"`
	Accepted   bool    `json:"accepted"`
	Reason     string  `gorm:"size:255" json:"reason,omitempty"`
}

func (CompletionAttempt) TableName() string {
	return "completion_attempts"
}
