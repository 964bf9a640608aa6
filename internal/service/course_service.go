package service

import (
	"context"
	"coursegate/internal/backend"
	"coursegate/internal/model"
	"coursegate/internal/repository"
	"coursegate/internal/session"
	"coursegate/internal/util"
	"coursegate/pkg/logger"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CourseService 读取课程树、观看者授权和课程进度，全部经过读穿缓存
type CourseService struct {
	Cache    *repository.CacheRepository
	Playback *repository.PlaybackRepository
	Now      func() time.Time
}

func NewCourseService(cache *repository.CacheRepository, playback *repository.PlaybackRepository) *CourseService {
	return &CourseService{Cache: cache, Playback: playback, Now: time.Now}
}

func (s *CourseService) LoadCourse(ctx context.Context, sess *session.Session, slug string) (*model.Course, error) {
	if course, ok := s.Cache.GetCourse(ctx, slug); ok {
		return course, nil
	}
	course, err := sess.API.GetCourse(ctx, slug)
	if err != nil {
		if backend.IsNotFound(err) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	s.Cache.SetCourse(ctx, course)
	return course, nil
}

// ViewerState 读取购买（付费课）或报名（免费课）记录。任何失败都按无授权处理（fail-closed），
// 同时返回 ErrViewerStateUnavailable，由调用方决定是否阻断内容。
func (s *CourseService) ViewerState(ctx context.Context, sess *session.Session, course *model.Course) (model.ViewerState, error) {
	grants, ok := s.Cache.GetGrants(ctx, sess.UserID, course.ID)
	if !ok {
		grants = &model.ViewerGrants{}
		if course.Paid {
			purchase, err := sess.API.GetPurchase(ctx, course.ID)
			if err != nil {
				return model.ViewerState{}, s.grantsError(sess, course, err)
			}
			grants.Purchase = purchase
		} else {
			enrollment, err := sess.API.CheckEnrollment(ctx, course.ID)
			if err != nil {
				return model.ViewerState{}, s.grantsError(sess, course, err)
			}
			grants.Enrollment = enrollment
		}
		s.Cache.SetGrants(ctx, sess.UserID, course.ID, grants)
	}
	return MapViewerState(grants, s.Now()), nil
}

func (s *CourseService) grantsError(sess *session.Session, course *model.Course, err error) error {
	logger.Log.Warn("viewer grants unavailable, failing closed",
		zap.String("user_id", sess.UserID),
		zap.String("course_id", course.ID),
		zap.Error(err))
	if backend.IsUnauthorized(err) {
		return util.ErrUnauthorized
	}
	return fmt.Errorf("%w: %v", util.ErrViewerStateUnavailable, err)
}

func (s *CourseService) CourseProgress(ctx context.Context, sess *session.Session, course *model.Course) (*model.CourseProgress, error) {
	if p, ok := s.Cache.GetCourseProgress(ctx, sess.UserID, course.ID); ok {
		return p, nil
	}
	p, err := sess.API.GetCourseProgress(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	s.Cache.SetCourseProgress(ctx, sess.UserID, course.ID, p)
	return p, nil
}

// RefreshCourseProgress 章节完成后跳过缓存直接读取
func (s *CourseService) RefreshCourseProgress(ctx context.Context, sess *session.Session, course *model.Course) (*model.CourseProgress, error) {
	s.Cache.InvalidateCourseProgress(ctx, sess.UserID, course.ID)
	return s.CourseProgress(ctx, sess, course)
}

// Refresh 前端回到页面或网络恢复时显式调用，丢弃该课程的授权与进度缓存
func (s *CourseService) Refresh(ctx context.Context, sess *session.Session, slug string) error {
	course, err := s.LoadCourse(ctx, sess, slug)
	if err != nil {
		return err
	}
	s.Cache.InvalidateGrants(ctx, sess.UserID, course.ID)
	s.Cache.InvalidateCourseProgress(ctx, sess.UserID, course.ID)
	return nil
}

// Enroll 免费课程报名
func (s *CourseService) Enroll(ctx context.Context, sess *session.Session, slug string) (model.ViewerState, error) {
	course, err := s.LoadCourse(ctx, sess, slug)
	if err != nil {
		return model.ViewerState{}, err
	}
	if course.Paid {
		return model.ViewerState{}, util.ErrNotFreeCourse
	}
	if err := sess.API.Enroll(ctx, course.ID); err != nil {
		return model.ViewerState{}, err
	}
	s.Cache.InvalidateGrants(ctx, sess.UserID, course.ID)

	logger.Log.Info("enrolled in free course", zap.String("user_id", sess.UserID), zap.String("course", slug))
	return s.ViewerState(ctx, sess, course)
}

type ChapterSummary struct {
	ID        string   `json:"id"`
	Slug      string   `json:"slug"`
	Title     string   `json:"title"`
	IsFree    bool     `json:"isFree"`
	Duration  *float64 `json:"duration,omitempty"`
	Locked    bool     `json:"locked"`
	Completed bool     `json:"completed"`
}

type SectionOutline struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Chapters []ChapterSummary `json:"chapters"`
}

type CourseOutline struct {
	ID             string                `json:"id"`
	Slug           string                `json:"slug"`
	Title          string                `json:"title"`
	Paid           bool                  `json:"paid"`
	Price          float64               `json:"price"`
	EffectivePrice float64               `json:"effectivePrice"`
	ValidityDays   *int                  `json:"validityDays,omitempty"`
	ValidUntil     *time.Time            `json:"validUntil,omitempty"`
	TotalChapters  int                   `json:"totalChapters"`
	ResumeChapter  *ChapterSummary       `json:"resumeChapter,omitempty"`
	Viewer         model.ViewerState     `json:"viewer"`
	Action         model.AccessAction    `json:"action,omitempty"`
	GrantsError    string                `json:"grantsError,omitempty"`
	Progress       *model.CourseProgress `json:"progress,omitempty"`
	Sections       []SectionOutline      `json:"sections"`
}

func summarize(course *model.Course, chapter *model.Chapter, viewer model.ViewerState, progress *model.CourseProgress) *ChapterSummary {
	if chapter == nil {
		return nil
	}
	return &ChapterSummary{
		ID:        chapter.ID,
		Slug:      chapter.Slug,
		Title:     chapter.Title,
		IsFree:    chapter.IsFree,
		Duration:  chapter.Duration,
		Locked:    !CanAccess(course, chapter, viewer),
		Completed: progress.HasCompleted(chapter.ID),
	}
}

// Outline 课程大纲与每章的锁定状态。授权读取失败时全部按无授权展示。
func (s *CourseService) Outline(ctx context.Context, sess *session.Session, slug string) (*CourseOutline, error) {
	course, err := s.LoadCourse(ctx, sess, slug)
	if err != nil {
		return nil, err
	}

	out := &CourseOutline{
		ID:             course.ID,
		Slug:           course.Slug,
		Title:          course.Title,
		Paid:           course.Paid,
		Price:          course.Price,
		EffectivePrice: course.EffectivePrice(),
		ValidityDays:   course.ValidityDays,
		TotalChapters:  course.TotalChapters(),
	}

	viewer, err := s.ViewerState(ctx, sess, course)
	if err != nil {
		if errors.Is(err, util.ErrUnauthorized) {
			return nil, err
		}
		out.GrantsError = util.ErrViewerStateUnavailable.Error()
	}
	out.Viewer = viewer
	if !viewer.IsPurchased && !viewer.IsEnrolled {
		out.Action = RequiredAction(course)
		if course.Paid {
			out.ValidUntil = course.ValidUntil(s.Now())
		}
	}

	if viewer.IsPurchased || viewer.IsEnrolled {
		p, err := s.CourseProgress(ctx, sess, course)
		if err != nil {
			logger.Log.Warn("course progress unavailable", zap.String("course", slug), zap.Error(err))
		} else {
			out.Progress = p
		}
		out.ResumeChapter = s.resumeChapter(ctx, sess, course, viewer, out.Progress)
	}

	for si := range course.Sections {
		sec := &course.Sections[si]
		so := SectionOutline{ID: sec.ID, Title: sec.Title, Chapters: make([]ChapterSummary, 0, len(sec.Chapters))}
		for ci := range sec.Chapters {
			so.Chapters = append(so.Chapters, *summarize(course, &sec.Chapters[ci], viewer, out.Progress))
		}
		out.Sections = append(out.Sections, so)
	}
	return out, nil
}

// resumeChapter 最近播放且未完成的章节，用于"继续学习"
func (s *CourseService) resumeChapter(ctx context.Context, sess *session.Session, course *model.Course, viewer model.ViewerState, progress *model.CourseProgress) *ChapterSummary {
	if s.Playback == nil {
		return nil
	}
	states, err := s.Playback.ListByCourse(ctx, sess.UserID, course.Slug)
	if err != nil {
		logger.Log.Warn("playback history unavailable", zap.String("course", course.Slug), zap.Error(err))
		return nil
	}
	for _, st := range states {
		if st.Completed || progress.HasCompleted(st.ChapterID) {
			continue
		}
		if chapter, _, _ := course.FindChapter(st.ChapterID); chapter != nil {
			return summarize(course, chapter, viewer, progress)
		}
	}
	return nil
}
