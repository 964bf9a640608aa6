package service

import (
	"context"
	"coursegate/internal/config"
	"coursegate/internal/model"
	"coursegate/internal/repository"
	"coursegate/internal/session"
	"coursegate/internal/util"
	"coursegate/pkg/logger"
	"coursegate/pkg/monitoring"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"
)

type EndedAction string

const (
	EndedRejected         EndedAction = "rejected"
	EndedAdvance          EndedAction = "advance"
	EndedCourseFinished   EndedAction = "course_finished"
	EndedCompleted        EndedAction = "completed"
	EndedPurchaseRequired EndedAction = EndedAction(model.ActionPurchaseRequired)
	EndedEnrollRequired   EndedAction = EndedAction(model.ActionEnrollRequired)
)

type ProgressReport struct {
	CourseSlug     string  `json:"courseSlug" binding:"required"`
	ChapterID      string  `json:"chapterId" binding:"required"`
	WatchedSeconds float64 `json:"watchedSeconds" binding:"min=0"`
	TotalDuration  float64 `json:"totalDuration" binding:"min=0"`
}

type ReportResult struct {
	Percentage   float64 `json:"percentage"`
	Sent         bool    `json:"sent"`
	LastReported float64 `json:"lastReported"`
}

type EndedResult struct {
	Action         EndedAction           `json:"action"`
	Accepted       bool                  `json:"accepted"`
	Percentage     float64               `json:"percentage"`
	SeekTo         *float64              `json:"seekTo,omitempty"`
	Message        string                `json:"message,omitempty"`
	CourseProgress *model.CourseProgress `json:"courseProgress,omitempty"`
	Redirect       string                `json:"redirect,omitempty"`
	Next           *ChapterView          `json:"next,omitempty"`
	NextChapter    *ChapterSummary       `json:"nextChapter,omitempty"`
}

// ProgressTracker 播放进度上报与章节完成判定
type ProgressTracker struct {
	Courses     *CourseService
	Player      *PlayerService
	Media       *MediaService
	Playback    *repository.PlaybackRepository
	Completions *repository.CompletionRepository
	// 课程全部完成后跳转的页面
	CourseListPath string

	mu                  sync.RWMutex
	completionThreshold float64
	reportDelta         float64
}

func NewProgressTracker(
	courses *CourseService,
	player *PlayerService,
	media *MediaService,
	playback *repository.PlaybackRepository,
	completions *repository.CompletionRepository,
	cfg *config.Config,
) *ProgressTracker {
	t := &ProgressTracker{
		Courses:        courses,
		Player:         player,
		Media:          media,
		Playback:       playback,
		Completions:    completions,
		CourseListPath: cfg.Server.CourseListPath,
	}
	t.SetThresholds(cfg.Gating)
	return t
}

// SetThresholds 配置热更新时调用
func (t *ProgressTracker) SetThresholds(g config.GatingConfig) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completionThreshold = g.CompletionThreshold
	if t.completionThreshold <= 0 {
		t.completionThreshold = config.DefaultCompletionThreshold
	}
	t.reportDelta = g.ReportDelta
}

func (t *ProgressTracker) Thresholds() (completion, delta float64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.completionThreshold, t.reportDelta
}

// chapterPercentage 定位章节并计算观看百分比。写入进度前重新校验访问权限，
// 授权读取失败直接返回错误（fail-closed），无权访问返回 AccessDeniedError。
func (t *ProgressTracker) chapterPercentage(ctx context.Context, sess *session.Session, r ProgressReport) (*model.Course, *model.Chapter, model.ViewerState, float64, error) {
	var viewer model.ViewerState
	course, err := t.Courses.LoadCourse(ctx, sess, r.CourseSlug)
	if err != nil {
		return nil, nil, viewer, 0, err
	}
	chapter, _, _ := course.FindChapter(r.ChapterID)
	if chapter == nil {
		return nil, nil, viewer, 0, util.ErrChapterNotFound
	}
	viewer, err = t.Courses.ViewerState(ctx, sess, course)
	if err != nil {
		return nil, nil, viewer, 0, err
	}
	if err := checkAccess(course, chapter, viewer); err != nil {
		return nil, nil, viewer, 0, err
	}
	total, err := t.Media.ResolveDuration(ctx, sess, chapter, r.TotalDuration)
	if err != nil {
		return nil, nil, viewer, 0, err
	}
	return course, chapter, viewer, util.Percentage(r.WatchedSeconds, total), nil
}

// ReportProgress 与上次成功上报相差超过 reportDelta 才发送更新。
// 发送失败只记日志，lastReported 保持不变，下一次 tick 会重试。
func (t *ProgressTracker) ReportProgress(ctx context.Context, sess *session.Session, r ProgressReport) (*ReportResult, error) {
	_, chapter, _, pct, err := t.chapterPercentage(ctx, sess, r)
	if err != nil {
		return nil, err
	}
	_, delta := t.Thresholds()

	// 本地状态不可用时以 lastReported=0 继续，进度上报不因此失败
	state, err := t.Playback.RecordPlayed(ctx, sess.UserID, chapter.ID, r.CourseSlug, pct)
	if err != nil {
		logger.Log.Error("record playback failed", zap.String("chapter_id", chapter.ID), zap.Error(err))
		state = &model.PlaybackState{}
	}

	result := &ReportResult{Percentage: pct, LastReported: state.LastReported}
	if math.Abs(pct-state.LastReported) <= delta {
		monitoring.ProgressReports.WithLabelValues("skipped").Inc()
		return result, nil
	}

	if err := sess.API.UpdateProgress(ctx, chapter.ID, pct); err != nil {
		monitoring.ProgressReports.WithLabelValues("failed").Inc()
		logger.Log.Warn("progress update failed",
			zap.String("user_id", sess.UserID),
			zap.String("chapter_id", chapter.ID),
			zap.Float64("percentage", pct),
			zap.Error(err))
		return result, nil
	}
	monitoring.ProgressReports.WithLabelValues("sent").Inc()

	if _, err := t.Playback.MarkReported(ctx, sess.UserID, chapter.ID, r.CourseSlug, pct); err != nil {
		logger.Log.Error("mark reported failed", zap.String("chapter_id", chapter.ID), zap.Error(err))
	}
	result.Sent = true
	result.LastReported = pct
	return result, nil
}

// HandleEnded 播放结束：无权访问的章节直接拒绝；未达阈值拒绝并要求从头观看；达到阈值则标记完成，
// 再根据课程进度决定跳转课程列表、进入下一章或提示购买/报名。
func (t *ProgressTracker) HandleEnded(ctx context.Context, sess *session.Session, r ProgressReport) (*EndedResult, error) {
	course, chapter, viewer, pct, err := t.chapterPercentage(ctx, sess, r)
	if err != nil {
		return nil, err
	}
	threshold, _ := t.Thresholds()

	if _, err := t.Playback.RecordPlayed(ctx, sess.UserID, chapter.ID, r.CourseSlug, pct); err != nil {
		logger.Log.Error("record playback failed", zap.String("chapter_id", chapter.ID), zap.Error(err))
	}

	if pct < threshold {
		t.recordAttempt(ctx, sess, r.CourseSlug, chapter.ID, pct, false, "below_threshold")
		monitoring.ChapterCompletions.WithLabelValues("rejected").Inc()
		seek := 0.0
		return &EndedResult{
			Action:     EndedRejected,
			Percentage: pct,
			SeekTo:     &seek,
			Message:    fmt.Sprintf("请至少观看 %.0f%% 的视频内容后再完成本章，当前进度 %.0f%%", threshold, pct),
		}, nil
	}

	if err := sess.API.CompleteChapter(ctx, chapter.ID, pct); err != nil {
		t.recordAttempt(ctx, sess, r.CourseSlug, chapter.ID, pct, false, "backend_error")
		monitoring.ChapterCompletions.WithLabelValues("failed").Inc()
		logger.Log.Warn("chapter completion failed",
			zap.String("user_id", sess.UserID),
			zap.String("chapter_id", chapter.ID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", util.ErrCompletionFailed, err)
	}
	t.recordAttempt(ctx, sess, r.CourseSlug, chapter.ID, pct, true, "")
	monitoring.ChapterCompletions.WithLabelValues("accepted").Inc()

	if _, err := t.Playback.MarkCompleted(ctx, sess.UserID, chapter.ID, r.CourseSlug, pct); err != nil {
		logger.Log.Error("mark completed failed", zap.String("chapter_id", chapter.ID), zap.Error(err))
	}

	result := &EndedResult{Accepted: true, Percentage: pct}
	progress, err := t.Courses.RefreshCourseProgress(ctx, sess, course)
	if err != nil {
		logger.Log.Warn("course progress refresh failed", zap.String("course", course.Slug), zap.Error(err))
	} else {
		result.CourseProgress = progress
	}

	if progress.Finished() {
		result.Action = EndedCourseFinished
		result.Redirect = t.CourseListPath
		logger.Log.Info("course finished", zap.String("user_id", sess.UserID), zap.String("course", course.Slug))
		return result, nil
	}

	next := NextChapter(course, chapter.ID)
	if next == nil {
		result.Action = EndedCompleted
		return result, nil
	}

	if !CanAccess(course, next, viewer) {
		result.Action = EndedAction(RequiredAction(course))
		result.NextChapter = summarize(course, next, viewer, progress)
		return result, nil
	}

	result.Action = EndedAdvance
	result.NextChapter = summarize(course, next, viewer, progress)
	result.Next = t.Player.prepareChapter(ctx, sess, course, next, viewer)
	return result, nil
}

func (t *ProgressTracker) recordAttempt(ctx context.Context, sess *session.Session, courseSlug, chapterID string, pct float64, accepted bool, reason string) {
	if t.Completions == nil {
		return
	}
	err := t.Completions.Create(ctx, &model.CompletionAttempt{
		UserID:     sess.UserID,
		ChapterID:  chapterID,
		CourseSlug: courseSlug,
		Percentage: pct,
		Accepted:   accepted,
		Reason:     reason,
	})
	if err != nil {
		logger.Log.Error("record completion attempt failed", zap.String("chapter_id", chapterID), zap.Error(err))
	}
}
