package util

import "errors"

var (
	ErrUnauthorized           = errors.New("unauthorized")
	ErrCourseNotFound         = errors.New("course not found")
	ErrChapterNotFound        = errors.New("chapter not found")
	ErrAccessDenied           = errors.New("chapter not accessible")
	ErrViewerStateUnavailable = errors.New("purchase or enrollment status unavailable")
	ErrVideoUnavailable       = errors.New("video url unavailable")
	ErrCompletionFailed       = errors.New("failed to record chapter completion")
	ErrInvalidDuration        = errors.New("total duration is unknown or not positive")
	ErrNotFreeCourse          = errors.New("course is paid, enrollment is only for free courses")
)
