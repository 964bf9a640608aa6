package service

import (
	"context"
	"coursegate/internal/backend"
	"coursegate/internal/model"
	"coursegate/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutlineLocksByViewer(t *testing.T) {
	f := newFixture(t, paidCourse())

	out, err := f.courses.Outline(context.Background(), f.sess, "go-basics")
	require.NoError(t, err)
	assert.Equal(t, model.ActionPurchaseRequired, out.Action)
	require.Len(t, out.Sections, 2)
	assert.False(t, out.Sections[0].Chapters[0].Locked)
	assert.True(t, out.Sections[0].Chapters[1].Locked)
	assert.True(t, out.Sections[1].Chapters[0].Locked)
	assert.Nil(t, out.Progress)
}

func TestOutlineWithPurchaseAndProgress(t *testing.T) {
	f := newFixture(t, paidCourse())
	f.api.purchase = &model.PurchaseStatus{Purchased: true}
	f.api.courseProg = &model.CourseProgress{Percentage: 33, CompletedChapters: []string{"c1"}, CompletedCount: 1, TotalChapters: 3}

	out, err := f.courses.Outline(context.Background(), f.sess, "go-basics")
	require.NoError(t, err)
	assert.Equal(t, model.ActionNone, out.Action)
	assert.True(t, out.Viewer.IsPurchased)
	assert.True(t, out.Sections[0].Chapters[0].Completed)
	assert.False(t, out.Sections[0].Chapters[1].Locked)
}

func TestOutlineGrantsFailureShowsLocked(t *testing.T) {
	f := newFixture(t, paidCourse())
	f.api.grantsErr = &backend.APIError{Operation: "get_purchase", Status: 502, Message: "bad gateway"}

	out, err := f.courses.Outline(context.Background(), f.sess, "go-basics")
	require.NoError(t, err)
	assert.NotEmpty(t, out.GrantsError)
	assert.True(t, out.Sections[0].Chapters[1].Locked)
}

func TestViewerStateIsCached(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, paidCourse())
	course := paidCourse()

	_, err := f.courses.ViewerState(ctx, f.sess, course)
	require.NoError(t, err)
	_, err = f.courses.ViewerState(ctx, f.sess, course)
	require.NoError(t, err)
	assert.Equal(t, 1, f.api.grantCalls)

	f.api.purchase = &model.PurchaseStatus{Purchased: true}
	require.NoError(t, f.courses.Refresh(ctx, f.sess, "go-basics"))
	viewer, err := f.courses.ViewerState(ctx, f.sess, course)
	require.NoError(t, err)
	assert.True(t, viewer.IsPurchased)
	assert.Equal(t, 2, f.api.grantCalls)
}

func TestEnrollFreeCourse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, freeCourse(), paidCourse())

	// 先读一次，让未报名状态进入缓存
	viewer, err := f.courses.ViewerState(ctx, f.sess, freeCourse())
	require.NoError(t, err)
	assert.False(t, viewer.IsEnrolled)

	viewer, err = f.courses.Enroll(ctx, f.sess, "free-intro")
	require.NoError(t, err)
	assert.True(t, viewer.IsEnrolled)
	assert.Equal(t, []string{"course-free"}, f.api.enrolled)

	_, err = f.courses.Enroll(ctx, f.sess, "go-basics")
	assert.ErrorIs(t, err, util.ErrNotFreeCourse)
}

func TestLoadCourseNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.courses.LoadCourse(context.Background(), f.sess, "missing")
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestOutlineResumeChapter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, paidCourse())
	f.api.purchase = &model.PurchaseStatus{Purchased: true}

	_, err := f.playback.MarkCompleted(ctx, "user-1", "c1", "go-basics", 100)
	require.NoError(t, err)
	_, err = f.playback.RecordPlayed(ctx, "user-1", "c2", "go-basics", 40)
	require.NoError(t, err)

	out, err := f.courses.Outline(ctx, f.sess, "go-basics")
	require.NoError(t, err)
	assert.Equal(t, 3, out.TotalChapters)
	require.NotNil(t, out.ResumeChapter)
	assert.Equal(t, "c2", out.ResumeChapter.ID)
}
