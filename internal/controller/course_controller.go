package controller

import (
	"coursegate/internal/service"
	"coursegate/internal/session"
	"coursegate/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
	PlayerService *service.PlayerService
	LoginPath     string
}

func NewCourseController(courseService *service.CourseService, playerService *service.PlayerService, loginPath string) *CourseController {
	return &CourseController{
		CourseService: courseService,
		PlayerService: playerService,
		LoginPath:     loginPath,
	}
}

// GetCourse godoc
// @Summary 课程大纲
// @Description 课程信息、价格、观看者授权以及每个章节的锁定状态
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Success 200 {object} util.Response{data=service.CourseOutline}
// @Failure 401 {object} util.Response "未登录，data.redirect 为登录页"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /courses/{slug} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	sess := session.FromContext(ctx)
	if sess == nil {
		util.UnauthorizedRedirect(ctx, c.LoginPath)
		return
	}

	outline, err := c.CourseService.Outline(ctx.Request.Context(), sess, ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err, c.LoginPath)
		return
	}
	util.Success(ctx, outline)
}

// Enroll godoc
// @Summary 报名免费课程
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Success 200 {object} util.Response{data=model.ViewerState}
// @Failure 400 {object} util.Response "付费课程不能报名"
// @Router /courses/{slug}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	sess := session.FromContext(ctx)
	if sess == nil {
		util.UnauthorizedRedirect(ctx, c.LoginPath)
		return
	}

	viewer, err := c.CourseService.Enroll(ctx.Request.Context(), sess, ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err, c.LoginPath)
		return
	}
	util.Success(ctx, viewer)
}

// Refresh godoc
// @Summary 刷新课程缓存
// @Description 页面重新可见或网络恢复时调用，丢弃当前用户该课程的授权与进度缓存
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Success 200 {object} util.Response
// @Router /courses/{slug}/refresh [post]
func (c *CourseController) Refresh(ctx *gin.Context) {
	sess := session.FromContext(ctx)
	if sess == nil {
		util.UnauthorizedRedirect(ctx, c.LoginPath)
		return
	}

	if err := c.CourseService.Refresh(ctx.Request.Context(), sess, ctx.Param("slug")); err != nil {
		respondError(ctx, err, c.LoginPath)
		return
	}
	util.Success(ctx, gin.H{"refreshed": true})
}

// GetProgress godoc
// @Summary 课程进度
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Success 200 {object} util.Response{data=model.CourseProgress}
// @Router /courses/{slug}/progress [get]
func (c *CourseController) GetProgress(ctx *gin.Context) {
	sess := session.FromContext(ctx)
	if sess == nil {
		util.UnauthorizedRedirect(ctx, c.LoginPath)
		return
	}

	course, err := c.CourseService.LoadCourse(ctx.Request.Context(), sess, ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err, c.LoginPath)
		return
	}
	progress, err := c.CourseService.CourseProgress(ctx.Request.Context(), sess, course)
	if err != nil {
		respondError(ctx, err, c.LoginPath)
		return
	}
	util.Success(ctx, progress)
}

// GetChapter godoc
// @Summary 打开章节
// @Description 访问判定通过后返回视频地址、附件、当前进度以及上一章/下一章
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Param chapterSlug path string true "章节 slug"
// @Success 200 {object} util.Response{data=service.ChapterView}
// @Failure 403 {object} util.Response "需要购买或报名，data.action 指明提示类型"
// @Failure 502 {object} util.Response "授权或视频地址读取失败，可重试"
// @Router /courses/{slug}/chapters/{chapterSlug} [get]
func (c *CourseController) GetChapter(ctx *gin.Context) {
	sess := session.FromContext(ctx)
	if sess == nil {
		util.UnauthorizedRedirect(ctx, c.LoginPath)
		return
	}

	view, err := c.PlayerService.OpenChapter(ctx.Request.Context(), sess, ctx.Param("slug"), ctx.Param("chapterSlug"))
	if err != nil {
		respondError(ctx, err, c.LoginPath)
		return
	}
	util.Success(ctx, view)
}

// GetNavigation godoc
// @Summary 上一章/下一章
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Param chapterSlug path string true "章节 slug"
// @Success 200 {object} util.Response{data=service.Navigation}
// @Router /courses/{slug}/chapters/{chapterSlug}/navigation [get]
func (c *CourseController) GetNavigation(ctx *gin.Context) {
	sess := session.FromContext(ctx)
	if sess == nil {
		util.UnauthorizedRedirect(ctx, c.LoginPath)
		return
	}

	nav, err := c.PlayerService.Navigate(ctx.Request.Context(), sess, ctx.Param("slug"), ctx.Param("chapterSlug"))
	if err != nil {
		respondError(ctx, err, c.LoginPath)
		return
	}
	util.Success(ctx, nav)
}
