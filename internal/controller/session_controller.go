package controller

import (
	"coursegate/internal/session"
	"coursegate/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	Manager   *session.Manager
	LoginPath string
}

func NewSessionController(manager *session.Manager, loginPath string) *SessionController {
	return &SessionController{Manager: manager, LoginPath: loginPath}
}

// Logout godoc
// @Summary 退出登录
// @Description 销毁会话并清理该用户的全部缓存
// @Tags 会话
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /session/logout [post]
func (c *SessionController) Logout(ctx *gin.Context) {
	sess := session.FromContext(ctx)
	if sess == nil {
		util.UnauthorizedRedirect(ctx, c.LoginPath)
		return
	}

	if err := c.Manager.Close(ctx.Request.Context(), sess); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"redirect": c.LoginPath})
}
