package repository

import (
	"context"
	"coursegate/internal/model"

	"gorm.io/gorm"
)

type CompletionRepository struct {
	DB *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{DB: db}
}

func (r *CompletionRepository) Create(ctx context.Context, attempt *model.CompletionAttempt) error {
	return r.DB.WithContext(ctx).Create(attempt).Error
}

// ListByChapter 最近的判定在前
func (r *CompletionRepository) ListByChapter(ctx context.Context, userID, chapterID string, limit int) ([]model.CompletionAttempt, error) {
	if limit <= 0 {
		limit = 20
	}
	var attempts []model.CompletionAttempt
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND chapter_id = ?", userID, chapterID).
		Order("id DESC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}
