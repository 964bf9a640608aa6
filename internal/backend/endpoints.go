package backend

import (
	"context"
	"coursegate/internal/model"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
)

var _ API = (*Client)(nil)

// videoURL POST /chapter/url/{slug} 返回的签名链接
type videoURL string

// UnmarshalJSON 兼容 "https://..." 与 {"url": "https://..."} 两种形态
func (u *videoURL) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*u = videoURL(s)
		return nil
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*u = videoURL(obj.URL)
	return nil
}

func (u *videoURL) Validate() error {
	if *u == "" {
		return errors.New("empty video url")
	}
	if _, err := url.Parse(string(*u)); err != nil {
		return err
	}
	return nil
}

type progressBody struct {
	ChapterID   string  `json:"chapterId"`
	WatchedTime float64 `json:"watchedTime"`
}

// noData 只关心 success 标志，data 可能是 true、null 或对象
type noData = json.RawMessage

func (c *Client) GetCourse(ctx context.Context, slug string) (*model.Course, error) {
	course, err := call[model.Course](ctx, c, "get_course", http.MethodGet, "/course/"+url.PathEscape(slug), nil).Unwrap()
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *Client) GetPurchase(ctx context.Context, courseID string) (*model.PurchaseStatus, error) {
	status, err := call[model.PurchaseStatus](ctx, c, "get_purchase", http.MethodGet, "/purchase/"+url.PathEscape(courseID), nil).Unwrap()
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) CheckEnrollment(ctx context.Context, courseID string) (*model.EnrollmentStatus, error) {
	status, err := call[model.EnrollmentStatus](ctx, c, "check_enrollment", http.MethodGet, "/enrollment/check/"+url.PathEscape(courseID), nil).Unwrap()
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) Enroll(ctx context.Context, courseID string) error {
	_, err := call[noData](ctx, c, "enroll", http.MethodPost, "/enrollment/enroll/"+url.PathEscape(courseID), nil).Unwrap()
	return err
}

func (c *Client) GetChapterURL(ctx context.Context, chapterSlug string) (string, error) {
	u, err := call[videoURL](ctx, c, "get_chapter_url", http.MethodPost, "/chapter/url/"+url.PathEscape(chapterSlug), nil).Unwrap()
	return string(u), err
}

func (c *Client) UpdateProgress(ctx context.Context, chapterID string, watchedTime float64) error {
	body := progressBody{ChapterID: chapterID, WatchedTime: watchedTime}
	_, err := call[noData](ctx, c, "update_progress", http.MethodPost, "/user-progress/update", body).Unwrap()
	return err
}

func (c *Client) CompleteChapter(ctx context.Context, chapterID string, watchedTime float64) error {
	body := progressBody{ChapterID: chapterID, WatchedTime: watchedTime}
	_, err := call[noData](ctx, c, "complete_chapter", http.MethodPost, "/user-progress/complete", body).Unwrap()
	return err
}

func (c *Client) GetCourseProgress(ctx context.Context, courseID string) (*model.CourseProgress, error) {
	p, err := call[model.CourseProgress](ctx, c, "get_course_progress", http.MethodGet, "/user-progress/course/"+url.PathEscape(courseID), nil).Unwrap()
	if err != nil {
		return nil, err
	}
	p.IsCompleted = p.Finished()
	return &p, nil
}

func (c *Client) GetChapterProgress(ctx context.Context, chapterID string) (*model.ChapterProgress, error) {
	p, err := call[model.ChapterProgress](ctx, c, "get_chapter_progress", http.MethodGet, "/user-progress/chapter/"+url.PathEscape(chapterID), nil).Unwrap()
	if err != nil {
		return nil, err
	}
	p.ChapterID = chapterID
	return &p, nil
}
