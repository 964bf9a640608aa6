package service

import (
	"context"
	"coursegate/internal/backend"
	"coursegate/internal/config"
	"coursegate/internal/model"
	"coursegate/internal/repository"
	"coursegate/internal/session"
	"coursegate/internal/testutil"
	"sync"
	"testing"
	"time"
)

type progressCall struct {
	ChapterID   string
	WatchedTime float64
}

// fakeAPI 内存版后端，记录所有写调用
type fakeAPI struct {
	mu sync.Mutex

	courses     map[string]*model.Course
	purchase    *model.PurchaseStatus
	enrollment  *model.EnrollmentStatus
	grantsErr   error
	videoURLs   map[string]string
	videoErr    error
	chapterProg map[string]*model.ChapterProgress
	courseProg  *model.CourseProgress
	updateErr   error
	completeErr error

	updates     []progressCall
	completions []progressCall
	enrolled    []string
	grantCalls  int
}

var _ backend.API = (*fakeAPI)(nil)

func newFakeAPI(courses ...*model.Course) *fakeAPI {
	f := &fakeAPI{
		courses:     make(map[string]*model.Course),
		videoURLs:   make(map[string]string),
		chapterProg: make(map[string]*model.ChapterProgress),
	}
	for _, c := range courses {
		f.courses[c.Slug] = c
	}
	return f
}

func (f *fakeAPI) GetCourse(ctx context.Context, slug string) (*model.Course, error) {
	c, ok := f.courses[slug]
	if !ok {
		return nil, &backend.APIError{Operation: "get_course", Status: 404, Message: "not found"}
	}
	return c, nil
}

func (f *fakeAPI) GetPurchase(ctx context.Context, courseID string) (*model.PurchaseStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grantCalls++
	if f.grantsErr != nil {
		return nil, f.grantsErr
	}
	if f.purchase == nil {
		return &model.PurchaseStatus{}, nil
	}
	return f.purchase, nil
}

func (f *fakeAPI) CheckEnrollment(ctx context.Context, courseID string) (*model.EnrollmentStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grantCalls++
	if f.grantsErr != nil {
		return nil, f.grantsErr
	}
	if f.enrollment == nil {
		return &model.EnrollmentStatus{}, nil
	}
	return f.enrollment, nil
}

func (f *fakeAPI) Enroll(ctx context.Context, courseID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enrolled = append(f.enrolled, courseID)
	f.enrollment = &model.EnrollmentStatus{IsEnrolled: true}
	return nil
}

func (f *fakeAPI) GetChapterURL(ctx context.Context, chapterSlug string) (string, error) {
	if f.videoErr != nil {
		return "", f.videoErr
	}
	if u, ok := f.videoURLs[chapterSlug]; ok {
		return u, nil
	}
	return "https://cdn.example.com/" + chapterSlug + ".m3u8", nil
}

func (f *fakeAPI) UpdateProgress(ctx context.Context, chapterID string, watchedTime float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, progressCall{chapterID, watchedTime})
	return nil
}

func (f *fakeAPI) CompleteChapter(ctx context.Context, chapterID string, watchedTime float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completions = append(f.completions, progressCall{chapterID, watchedTime})
	return nil
}

func (f *fakeAPI) GetCourseProgress(ctx context.Context, courseID string) (*model.CourseProgress, error) {
	if f.courseProg == nil {
		return &model.CourseProgress{}, nil
	}
	return f.courseProg, nil
}

func (f *fakeAPI) GetChapterProgress(ctx context.Context, chapterID string) (*model.ChapterProgress, error) {
	if p, ok := f.chapterProg[chapterID]; ok {
		return p, nil
	}
	return &model.ChapterProgress{ChapterID: chapterID}, nil
}

func floatPtr(v float64) *float64 { return &v }

func chapter(id string, free bool) model.Chapter {
	return model.Chapter{ID: id, Slug: id + "-slug", Title: "Chapter " + id, IsFree: free}
}

// paidCourse 两个小节：[c1(试看), c2] [c3]
func paidCourse() *model.Course {
	return &model.Course{
		ID:    "course-paid",
		Slug:  "go-basics",
		Title: "Go Basics",
		Paid:  true,
		Price: 199,
		Sections: []model.Section{
			{ID: "s1", Title: "Intro", Chapters: []model.Chapter{chapter("c1", true), chapter("c2", false)}},
			{ID: "s2", Title: "Advanced", Chapters: []model.Chapter{chapter("c3", false)}},
		},
	}
}

func freeCourse() *model.Course {
	return &model.Course{
		ID:    "course-free",
		Slug:  "free-intro",
		Title: "Free Intro",
		Sections: []model.Section{
			{ID: "f1", Title: "Only", Chapters: []model.Chapter{chapter("f-c1", true), chapter("f-c2", false)}},
		},
	}
}

type fixture struct {
	api      *fakeAPI
	sess     *session.Session
	cache    *repository.CacheRepository
	playback *repository.PlaybackRepository
	courses  *CourseService
	player   *PlayerService
	tracker  *ProgressTracker
}

func newFixture(t *testing.T, courses ...*model.Course) *fixture {
	t.Helper()

	db := testutil.DB(t)
	rdb, _ := testutil.Redis(t)

	api := newFakeAPI(courses...)
	cache := repository.NewCacheRepository(rdb, 30*time.Second)
	playback := repository.NewPlaybackRepository(db)

	cfg := &config.Config{
		Server: config.ServerConfig{CourseListPath: "/courses"},
		Gating: config.GatingConfig{
			CompletionThreshold: config.DefaultCompletionThreshold,
			ReportDelta:         config.DefaultReportDelta,
		},
	}

	courseSvc := NewCourseService(cache, playback)
	storage := &StorageService{Provider: &LocalStorageProvider{}, TTL: time.Minute}
	player := NewPlayerService(courseSvc, storage)
	media := &MediaService{Cache: cache}
	tracker := NewProgressTracker(courseSvc, player, media, playback, repository.NewCompletionRepository(db), cfg)

	return &fixture{
		api:      api,
		sess:     &session.Session{ID: "sess-1", UserID: "user-1", API: api, StartedAt: time.Now()},
		cache:    cache,
		playback: playback,
		courses:  courseSvc,
		player:   player,
		tracker:  tracker,
	}
}
