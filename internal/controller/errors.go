package controller

import (
	"coursegate/internal/backend"
	"coursegate/internal/service"
	"coursegate/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError 把服务层错误映射为统一响应
func respondError(ctx *gin.Context, err error, loginPath string) {
	var denied *service.AccessDeniedError
	switch {
	case errors.Is(err, util.ErrUnauthorized), backend.IsUnauthorized(err):
		util.UnauthorizedRedirect(ctx, loginPath)
	case errors.As(err, &denied):
		util.ErrorWithData(ctx, http.StatusForbidden, err.Error(), gin.H{
			"action":  denied.Action,
			"chapter": denied.Chapter,
			"price":   denied.Price,
		})
	case errors.Is(err, util.ErrCourseNotFound), errors.Is(err, util.ErrChapterNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrInvalidDuration), errors.Is(err, util.ErrNotFreeCourse):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrViewerStateUnavailable),
		errors.Is(err, util.ErrVideoUnavailable),
		errors.Is(err, util.ErrCompletionFailed):
		util.Retryable(ctx, err.Error())
	default:
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			util.Retryable(ctx, apiErr.Error())
			return
		}
		util.LogInternalError(ctx, err)
	}
}
