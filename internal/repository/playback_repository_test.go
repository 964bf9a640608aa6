package repository

import (
	"context"
	"coursegate/internal/model"
	"coursegate/internal/testutil"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPlaybackRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewPlaybackRepository(testutil.DB(t))

	state, err := repo.Find(ctx, "u-1", "ch-1")
	require.NoError(t, err)
	assert.Nil(t, state)

	state, err = repo.RecordPlayed(ctx, "u-1", "ch-1", "go-basics", 12)
	require.NoError(t, err)
	assert.Equal(t, 12.0, state.MaxPlayed)
	assert.Equal(t, 0.0, state.LastReported)

	state, err = repo.MarkReported(ctx, "u-1", "ch-1", "go-basics", 7)
	require.NoError(t, err)
	assert.Equal(t, 7.0, state.LastReported)
	assert.Equal(t, 12.0, state.MaxPlayed, "max played never goes backwards")

	state, err = repo.MarkCompleted(ctx, "u-1", "ch-1", "go-basics", 91)
	require.NoError(t, err)
	assert.True(t, state.Completed)
	assert.NotNil(t, state.CompletedAt)

	found, err := repo.Find(ctx, "u-1", "ch-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 91.0, found.MaxPlayed)

	list, err := repo.ListByCourse(ctx, "u-1", "go-basics")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCompletionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCompletionRepository(testutil.DB(t))

	require.NoError(t, repo.Create(ctx, &model.CompletionAttempt{UserID: "u-1", ChapterID: "ch-1", Percentage: 50}))
	require.NoError(t, repo.Create(ctx, &model.CompletionAttempt{UserID: "u-1", ChapterID: "ch-1", Percentage: 85, Accepted: true}))

	attempts, err := repo.ListByChapter(ctx, "u-1", "ch-1", 0)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, 85.0, attempts[0].Percentage, "newest attempt first")
	for _, a := range attempts {
		id, err := uuid.Parse(a.ID)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), id.Version())
	}
}

func TestPlaybackRepositoryUpsertConcurrentInsert(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repo := NewPlaybackRepository(db)

	// 在第一次 INSERT 之前插入同一 (user, chapter)，模拟另一请求抢先写入
	fired := 0
	err := db.Callback().Create().Before("gorm:create").Register("test:concurrent_insert", func(tx *gorm.DB) {
		if fired > 0 || tx.Statement.Schema == nil || tx.Statement.Schema.Table != "playback_states" {
			return
		}
		fired++
		tx.Session(&gorm.Session{NewDB: true}).Create(&model.PlaybackState{
			UserID: "u-1", ChapterID: "ch-1", CourseSlug: "go-basics", MaxPlayed: 3,
		})
	})
	require.NoError(t, err)

	state, err := repo.RecordPlayed(ctx, "u-1", "ch-1", "go-basics", 12)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 12.0, state.MaxPlayed)

	var count int64
	require.NoError(t, db.Model(&model.PlaybackState{}).Where("user_id = ? AND chapter_id = ?", "u-1", "ch-1").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
