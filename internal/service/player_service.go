package service

import (
	"context"
	"coursegate/internal/model"
	"coursegate/internal/session"
	"coursegate/internal/util"
	"coursegate/pkg/logger"
	"coursegate/pkg/monitoring"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// AccessDeniedError 章节不可访问，携带前端应展示的提示
type AccessDeniedError struct {
	Action  model.AccessAction
	Chapter *ChapterSummary
	Price   float64
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("%s: %s", util.ErrAccessDenied, e.Action)
}

func (e *AccessDeniedError) Unwrap() error {
	return util.ErrAccessDenied
}

type ChapterView struct {
	CourseID    string                 `json:"courseId"`
	CourseSlug  string                 `json:"courseSlug"`
	Chapter     ChapterSummary         `json:"chapter"`
	VideoURL    string                 `json:"videoUrl,omitempty"`
	VideoError  string                 `json:"videoError,omitempty"`
	Progress    *model.ChapterProgress `json:"progress,omitempty"`
	ResumeAt    float64                `json:"resumeAt"`
	Attachments []AttachmentLink       `json:"attachments,omitempty"`
	Previous    *ChapterSummary        `json:"previous,omitempty"`
	Next        *ChapterSummary        `json:"next,omitempty"`
}

type Navigation struct {
	Previous *ChapterSummary `json:"previous,omitempty"`
	Next     *ChapterSummary `json:"next,omitempty"`
}

type PlayerService struct {
	Courses *CourseService
	Storage *StorageService
}

func NewPlayerService(courses *CourseService, storage *StorageService) *PlayerService {
	return &PlayerService{Courses: courses, Storage: storage}
}

// OpenChapter 打开章节：授权读取失败直接阻断（fail-closed），无权访问返回 AccessDeniedError，
// 视频链接获取失败返回 ErrVideoUnavailable。
func (s *PlayerService) OpenChapter(ctx context.Context, sess *session.Session, courseSlug, chapterSlug string) (*ChapterView, error) {
	course, err := s.Courses.LoadCourse(ctx, sess, courseSlug)
	if err != nil {
		return nil, err
	}
	chapter := course.FindChapterBySlug(chapterSlug)
	if chapter == nil {
		return nil, util.ErrChapterNotFound
	}

	viewer, err := s.Courses.ViewerState(ctx, sess, course)
	if err != nil {
		return nil, err
	}

	if err := checkAccess(course, chapter, viewer); err != nil {
		return nil, err
	}

	view := s.prepareChapter(ctx, sess, course, chapter, viewer)
	if view.VideoURL == "" {
		return nil, fmt.Errorf("%w: %s", util.ErrVideoUnavailable, view.VideoError)
	}
	return view, nil
}

// checkAccess 无权访问时返回 AccessDeniedError，并记录判定结果
func checkAccess(course *model.Course, chapter *model.Chapter, viewer model.ViewerState) error {
	allowed := CanAccess(course, chapter, viewer)
	monitoring.AccessDecisions.WithLabelValues(strconv.FormatBool(allowed)).Inc()
	if allowed {
		return nil
	}
	return &AccessDeniedError{
		Action:  RequiredAction(course),
		Chapter: summarize(course, chapter, viewer, nil),
		Price:   course.EffectivePrice(),
	}
}

// prepareChapter 加载已授权章节的视频、进度与附件。视频失败写入 VideoError，进度失败忽略。
func (s *PlayerService) prepareChapter(ctx context.Context, sess *session.Session, course *model.Course, chapter *model.Chapter, viewer model.ViewerState) *ChapterView {
	view := &ChapterView{
		CourseID:   course.ID,
		CourseSlug: course.Slug,
		Chapter:    *summarize(course, chapter, viewer, nil),
		Previous:   summarize(course, PreviousChapter(course, chapter.ID), viewer, nil),
		Next:       summarize(course, NextChapter(course, chapter.ID), viewer, nil),
	}

	videoURL, err := sess.API.GetChapterURL(ctx, chapter.Slug)
	if err != nil {
		logger.Log.Warn("video url unavailable",
			zap.String("user_id", sess.UserID),
			zap.String("chapter", chapter.Slug),
			zap.Error(err))
		view.VideoError = err.Error()
	} else {
		view.VideoURL = videoURL
	}

	progress, err := sess.API.GetChapterProgress(ctx, chapter.ID)
	if err != nil {
		logger.Log.Debug("chapter progress unavailable", zap.String("chapter_id", chapter.ID), zap.Error(err))
	} else {
		view.Progress = progress
		view.Chapter.Completed = progress.IsCompleted
		view.ResumeAt = resumePosition(chapter, progress)
	}

	view.Attachments = s.Storage.AttachmentLinks(ctx, chapter)
	return view
}

// resumePosition 未完成章节从上次的 watchedTime 处继续，单位秒
func resumePosition(chapter *model.Chapter, progress *model.ChapterProgress) float64 {
	if progress == nil || progress.IsCompleted || chapter.Duration == nil {
		return 0
	}
	return *chapter.Duration * util.Clamp(progress.WatchedTime, 0, 100) / 100
}

// Navigate 只计算上一章/下一章，不做视频加载
func (s *PlayerService) Navigate(ctx context.Context, sess *session.Session, courseSlug, chapterSlug string) (*Navigation, error) {
	course, err := s.Courses.LoadCourse(ctx, sess, courseSlug)
	if err != nil {
		return nil, err
	}
	chapter := course.FindChapterBySlug(chapterSlug)
	if chapter == nil {
		return nil, util.ErrChapterNotFound
	}

	// 锁定标记仅用于展示，授权读取失败时按无授权标记
	viewer, _ := s.Courses.ViewerState(ctx, sess, course)
	return &Navigation{
		Previous: summarize(course, PreviousChapter(course, chapter.ID), viewer, nil),
		Next:     summarize(course, NextChapter(course, chapter.ID), viewer, nil),
	}, nil
}
