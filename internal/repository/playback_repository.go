package repository

import (
	"context"
	"coursegate/internal/model"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlaybackRepository struct {
	DB *gorm.DB
}

func NewPlaybackRepository(db *gorm.DB) *PlaybackRepository {
	return &PlaybackRepository{DB: db}
}

// Find 没有记录时返回 nil, nil
func (r *PlaybackRepository) Find(ctx context.Context, userID, chapterID string) (*model.PlaybackState, error) {
	var state model.PlaybackState
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND chapter_id = ?", userID, chapterID).
		First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// errConcurrentInsert 首次写入与另一请求冲突，重试时会读到对方已提交的记录
var errConcurrentInsert = errors.New("playback state inserted concurrently")

// Upsert 在事务中读取（或新建）记录并应用 mutate。
// 并发首写命中唯一索引时不报错，换一个新事务重试一次。
func (r *PlaybackRepository) Upsert(ctx context.Context, userID, chapterID, courseSlug string, mutate func(*model.PlaybackState)) (*model.PlaybackState, error) {
	state, err := r.upsertOnce(ctx, userID, chapterID, courseSlug, mutate)
	if errors.Is(err, errConcurrentInsert) {
		state, err = r.upsertOnce(ctx, userID, chapterID, courseSlug, mutate)
	}
	return state, err
}

func (r *PlaybackRepository) upsertOnce(ctx context.Context, userID, chapterID, courseSlug string, mutate func(*model.PlaybackState)) (*model.PlaybackState, error) {
	var result model.PlaybackState
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.PlaybackState
		err := tx.Where("user_id = ? AND chapter_id = ?", userID, chapterID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			existing = model.PlaybackState{
				UserID:     userID,
				ChapterID:  chapterID,
				CourseSlug: courseSlug,
			}
			mutate(&existing)
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&existing)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errConcurrentInsert
			}
		case err != nil:
			return err
		default:
			if courseSlug != "" {
				existing.CourseSlug = courseSlug
			}
			mutate(&existing)
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
		}
		result = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RecordPlayed 只推进最大观看百分比
func (r *PlaybackRepository) RecordPlayed(ctx context.Context, userID, chapterID, courseSlug string, pct float64) (*model.PlaybackState, error) {
	return r.Upsert(ctx, userID, chapterID, courseSlug, func(s *model.PlaybackState) {
		if pct > s.MaxPlayed {
			s.MaxPlayed = pct
		}
	})
}

// MarkReported 上报成功后记录本次百分比，作为下一次防抖的基准
func (r *PlaybackRepository) MarkReported(ctx context.Context, userID, chapterID, courseSlug string, pct float64) (*model.PlaybackState, error) {
	return r.Upsert(ctx, userID, chapterID, courseSlug, func(s *model.PlaybackState) {
		s.LastReported = pct
		if pct > s.MaxPlayed {
			s.MaxPlayed = pct
		}
	})
}

func (r *PlaybackRepository) MarkCompleted(ctx context.Context, userID, chapterID, courseSlug string, pct float64) (*model.PlaybackState, error) {
	now := time.Now()
	return r.Upsert(ctx, userID, chapterID, courseSlug, func(s *model.PlaybackState) {
		s.Completed = true
		s.CompletedAt = &now
		s.LastReported = pct
		if pct > s.MaxPlayed {
			s.MaxPlayed = pct
		}
	})
}

// ListByCourse 用户在某课程下的全部播放记录
func (r *PlaybackRepository) ListByCourse(ctx context.Context, userID, courseSlug string) ([]model.PlaybackState, error) {
	var states []model.PlaybackState
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND course_slug = ?", userID, courseSlug).
		Order("updated_at DESC").
		Find(&states).Error
	return states, err
}
