// Package backend 是业务后端 API 的客户端。购买、报名、观看进度、签名视频链接的权威数据都在后端，
// 这里只负责调用并在边界处把响应校验成确定的结果类型。
package backend

import (
	"bytes"
	"context"
	"coursegate/internal/config"
	"coursegate/internal/model"
	"coursegate/pkg/logger"
	"coursegate/pkg/monitoring"
	"coursegate/pkg/tracing"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

// API 播放器用到的全部后端接口
type API interface {
	GetCourse(ctx context.Context, slug string) (*model.Course, error)
	GetPurchase(ctx context.Context, courseID string) (*model.PurchaseStatus, error)
	CheckEnrollment(ctx context.Context, courseID string) (*model.EnrollmentStatus, error)
	Enroll(ctx context.Context, courseID string) error
	GetChapterURL(ctx context.Context, chapterSlug string) (string, error)
	UpdateProgress(ctx context.Context, chapterID string, watchedTime float64) error
	CompleteChapter(ctx context.Context, chapterID string, watchedTime float64) error
	GetCourseProgress(ctx context.Context, courseID string) (*model.CourseProgress, error)
	GetChapterProgress(ctx context.Context, chapterID string) (*model.ChapterProgress, error)
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewClient(cfg config.BackendConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		// Timeout 为 0 时沿用 http.Client 的默认行为
		http: &http.Client{Timeout: cfg.Timeout()},
	}
}

// WithToken 返回绑定用户令牌的副本，底层连接池共享
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// APIError 后端返回的失败结果，或者无法通过边界校验的响应
type APIError struct {
	Operation string
	Status    int
	Message   string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("backend %s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("backend %s: status %d: %s", e.Operation, e.Status, e.Message)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden)
}

// Result 每个接口唯一的判别结果：Err 为 nil 时 Data 有效
type Result[T any] struct {
	Data T
	Err  *APIError
}

func (r Result[T]) Unwrap() (T, error) {
	if r.Err != nil {
		var zero T
		return zero, r.Err
	}
	return r.Data, nil
}

// envelope 后端统一响应 {success, data, message}
type envelope[T any] struct {
	Success *bool  `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
}

type validatable interface {
	Validate() error
}

func call[T any](ctx context.Context, c *Client, op, method, path string, body interface{}) (res Result[T]) {
	start := time.Now()
	ctx, span := tracing.Tracer.Start(ctx, "backend."+op)
	defer func() {
		outcome := "ok"
		if res.Err != nil {
			outcome = "error"
			span.SetStatus(codes.Error, res.Err.Message)
			span.SetAttributes(attribute.Int("http.status_code", res.Err.Status))
		}
		span.End()
		monitoring.BackendDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
	}()

	fail := func(status int, format string, args ...interface{}) Result[T] {
		return Result[T]{Err: &APIError{Operation: op, Status: status, Message: fmt.Sprintf(format, args...)}}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fail(0, "encode request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fail(0, "build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(0, "request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, "read response: %v", err)
	}

	var env envelope[T]
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && env.Message != "" {
			msg = env.Message
		}
		return fail(resp.StatusCode, "%s", msg)
	}
	if decodeErr != nil {
		return fail(resp.StatusCode, "invalid response body: %v", decodeErr)
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return fail(resp.StatusCode, "%s", msg)
	}
	if v, ok := any(&env.Data).(validatable); ok {
		if err := v.Validate(); err != nil {
			return fail(resp.StatusCode, "invalid response: %v", err)
		}
	}

	logger.Log.Debug("backend call",
		zap.String("operation", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	return Result[T]{Data: env.Data}
}
