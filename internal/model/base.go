package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerModel 播放台账行，按 (user, chapter) 覆盖写，不做软删除
// swagger:model
type LedgerModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EventModel 只追加的事件行，ID 为 UUIDv7，按 ID 排序即按写入时间排序
// swagger:model
type EventModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

func (e *EventModel) BeforeCreate(tx *gorm.DB) error {
	if e.ID != "" {
		return nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	e.ID = id.String()
	return nil
}
