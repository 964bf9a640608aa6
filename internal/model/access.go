package model

import "time"

// PurchaseStatus GET /purchase/{courseId}
type PurchaseStatus struct {
	Purchased  bool       `json:"purchased"`
	Expired    bool       `json:"expired"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
}

// Active 过期的购买记录等同于未购买
func (p *PurchaseStatus) Active(now time.Time) bool {
	if p == nil || !p.Purchased || p.Expired {
		return false
	}
	return p.ExpiryDate == nil || now.Before(*p.ExpiryDate)
}

// EnrollmentStatus GET /enrollment/check/{courseId}
type EnrollmentStatus struct {
	IsEnrolled bool       `json:"isEnrolled"`
	Expired    bool       `json:"expired"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
}

func (e *EnrollmentStatus) Active(now time.Time) bool {
	if e == nil || !e.IsEnrolled || e.Expired {
		return false
	}
	return e.ExpiryDate == nil || now.Before(*e.ExpiryDate)
}

// ViewerState 访问判定的输入，只能由后端响应映射得到
type ViewerState struct {
	IsPurchased bool `json:"isPurchased"`
	IsEnrolled  bool `json:"isEnrolled"`
}

// AccessAction 无权访问时前端应展示的提示
type AccessAction string

const (
	ActionNone             AccessAction = ""
	ActionPurchaseRequired AccessAction = "purchase_required"
	ActionEnrollRequired   AccessAction = "enroll_required"
)

// ViewerGrants 后端返回的购买/报名原始记录，缓存时保留原样，读取时再按当前时间映射
type ViewerGrants struct {
	Purchase   *PurchaseStatus   `json:"purchase,omitempty"`
	Enrollment *EnrollmentStatus `json:"enrollment,omitempty"`
}
