package service

import (
	"coursegate/internal/model"
	"time"
)

// CanAccess 判断观看者能否查看章节内容，纯函数。
// 免费课程必须先报名；付费课程的试看章节任何人可看，其余章节需要购买。
func CanAccess(course *model.Course, chapter *model.Chapter, viewer model.ViewerState) bool {
	if course == nil || chapter == nil {
		return false
	}
	if !course.Paid {
		return viewer.IsEnrolled
	}
	if chapter.IsFree {
		return true
	}
	return viewer.IsPurchased
}

// RequiredAction 无权访问时前端应展示购买弹窗还是报名按钮
func RequiredAction(course *model.Course) model.AccessAction {
	if course.Paid {
		return model.ActionPurchaseRequired
	}
	return model.ActionEnrollRequired
}

// MapViewerState 把后端记录映射为访问判定输入。过期的购买/报名在这里被视为不存在，
// CanAccess 本身不关心过期。
func MapViewerState(grants *model.ViewerGrants, now time.Time) model.ViewerState {
	if grants == nil {
		return model.ViewerState{}
	}
	return model.ViewerState{
		IsPurchased: grants.Purchase.Active(now),
		IsEnrolled:  grants.Enrollment.Active(now),
	}
}
