package controller

import (
	"coursegate/internal/service"
	"coursegate/internal/session"
	"coursegate/internal/util"

	"github.com/gin-gonic/gin"
)

type PlayerController struct {
	Tracker   *service.ProgressTracker
	LoginPath string
}

func NewPlayerController(tracker *service.ProgressTracker, loginPath string) *PlayerController {
	return &PlayerController{Tracker: tracker, LoginPath: loginPath}
}

// ReportProgress godoc
// @Summary 上报播放进度
// @Description 播放器 timeupdate 时调用，与上次成功上报相差超过阈值才会同步到后端
// @Tags 播放器
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body service.ProgressReport true "播放位置"
// @Success 200 {object} util.Response{data=service.ReportResult}
// @Failure 400 {object} util.Response "参数错误或时长未知"
// @Router /player/progress [post]
func (c *PlayerController) ReportProgress(ctx *gin.Context) {
	sess := session.FromContext(ctx)
	if sess == nil {
		util.UnauthorizedRedirect(ctx, c.LoginPath)
		return
	}

	var req service.ProgressReport
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Tracker.ReportProgress(ctx.Request.Context(), sess, req)
	if err != nil {
		respondError(ctx, err, c.LoginPath)
		return
	}
	util.Success(ctx, result)
}

// Ended godoc
// @Summary 播放结束
// @Description 未达到完成阈值时 action=rejected 且 seekTo=0；达到阈值则标记章节完成并给出下一步
// @Tags 播放器
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body service.ProgressReport true "播放位置"
// @Success 200 {object} util.Response{data=service.EndedResult}
// @Failure 502 {object} util.Response "完成记录写入失败，可重试"
// @Router /player/ended [post]
func (c *PlayerController) Ended(ctx *gin.Context) {
	sess := session.FromContext(ctx)
	if sess == nil {
		util.UnauthorizedRedirect(ctx, c.LoginPath)
		return
	}

	var req service.ProgressReport
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Tracker.HandleEnded(ctx.Request.Context(), sess, req)
	if err != nil {
		respondError(ctx, err, c.LoginPath)
		return
	}
	util.Success(ctx, result)
}
