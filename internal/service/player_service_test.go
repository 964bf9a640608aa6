package service

import (
	"context"
	"coursegate/internal/backend"
	"coursegate/internal/model"
	"coursegate/internal/util"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenChapterPreviewWithoutPurchase(t *testing.T) {
	f := newFixture(t, paidCourse())

	view, err := f.player.OpenChapter(context.Background(), f.sess, "go-basics", "c1-slug")
	require.NoError(t, err)
	assert.Equal(t, "c1", view.Chapter.ID)
	assert.False(t, view.Chapter.Locked)
	assert.Equal(t, "https://cdn.example.com/c1-slug.m3u8", view.VideoURL)
	assert.Nil(t, view.Previous)
	require.NotNil(t, view.Next)
	assert.True(t, view.Next.Locked)
}

func TestOpenChapterDenied(t *testing.T) {
	f := newFixture(t, paidCourse(), freeCourse())

	_, err := f.player.OpenChapter(context.Background(), f.sess, "go-basics", "c2-slug")
	require.ErrorIs(t, err, util.ErrAccessDenied)
	var denied *AccessDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, model.ActionPurchaseRequired, denied.Action)
	assert.Equal(t, 199.0, denied.Price)

	_, err = f.player.OpenChapter(context.Background(), f.sess, "free-intro", "f-c1-slug")
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, model.ActionEnrollRequired, denied.Action)
}

func TestOpenChapterGrantsFailureBlocksContent(t *testing.T) {
	f := newFixture(t, paidCourse())
	f.api.grantsErr = &backend.APIError{Operation: "get_purchase", Status: 500, Message: "boom"}

	view, err := f.player.OpenChapter(context.Background(), f.sess, "go-basics", "c2-slug")
	assert.Nil(t, view)
	assert.ErrorIs(t, err, util.ErrViewerStateUnavailable)
}

func TestOpenChapterGrantsUnauthorized(t *testing.T) {
	f := newFixture(t, paidCourse())
	f.api.grantsErr = &backend.APIError{Operation: "get_purchase", Status: 401, Message: "expired token"}

	_, err := f.player.OpenChapter(context.Background(), f.sess, "go-basics", "c2-slug")
	assert.ErrorIs(t, err, util.ErrUnauthorized)
}

func TestOpenChapterVideoUnavailable(t *testing.T) {
	f := newFixture(t, paidCourse())
	f.api.purchase = &model.PurchaseStatus{Purchased: true}
	f.api.videoErr = errors.New("signing failed")

	_, err := f.player.OpenChapter(context.Background(), f.sess, "go-basics", "c2-slug")
	assert.ErrorIs(t, err, util.ErrVideoUnavailable)
}

func TestOpenChapterResumeAndAttachments(t *testing.T) {
	course := paidCourse()
	course.Sections[0].Chapters[1].Duration = floatPtr(600)
	course.Sections[0].Chapters[1].Attachments = []model.Attachment{
		{Kind: model.AttachmentPDF, Title: "Slides", Key: "go-basics/c2.pdf"},
	}
	f := newFixture(t, course)
	f.api.purchase = &model.PurchaseStatus{Purchased: true}
	f.api.chapterProg["c2"] = &model.ChapterProgress{ChapterID: "c2", WatchedTime: 50}

	view, err := f.player.OpenChapter(context.Background(), f.sess, "go-basics", "c2-slug")
	require.NoError(t, err)
	assert.InDelta(t, 300, view.ResumeAt, 0.001)
	require.Len(t, view.Attachments, 1)
	assert.Equal(t, "/uploads/go-basics/c2.pdf", view.Attachments[0].URL)
	assert.Equal(t, "c1", view.Previous.ID)
	assert.Equal(t, "c3", view.Next.ID)
}

func TestOpenChapterNotFound(t *testing.T) {
	f := newFixture(t, paidCourse())

	_, err := f.player.OpenChapter(context.Background(), f.sess, "go-basics", "missing")
	assert.ErrorIs(t, err, util.ErrChapterNotFound)

	_, err = f.player.OpenChapter(context.Background(), f.sess, "missing", "c1-slug")
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestNavigate(t *testing.T) {
	f := newFixture(t, paidCourse())

	nav, err := f.player.Navigate(context.Background(), f.sess, "go-basics", "c2-slug")
	require.NoError(t, err)
	assert.Equal(t, "c1", nav.Previous.ID)
	assert.False(t, nav.Previous.Locked)
	assert.Equal(t, "c3", nav.Next.ID)
	assert.True(t, nav.Next.Locked)
}
