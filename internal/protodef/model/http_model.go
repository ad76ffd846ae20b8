package model

import "time"

// Credentials 提交申请后返回的登录信息，明文密码只返回这一次。
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SubmitApplicationResponse 提交申请的返回。
type SubmitApplicationResponse struct {
	Credentials   Credentials `json:"credentials"`
	ApplicationID string      `json:"applicationId"`
}

// LoginUser 登录返回的用户信息，应聘者与管理员字段不同。
type LoginUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

// Pagination 分页信息，Total 为总页数。
type Pagination struct {
	Current int `json:"current"`
	Total   int `json:"total"`
	Count   int `json:"count"`
	PerPage int `json:"perPage"`
}

// NewPagination 根据总条数计算页数。
func NewPagination(page, limit, count int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (count + limit - 1) / limit
	}
	return Pagination{Current: page, Total: pages, Count: count, PerPage: limit}
}

type ApplicationListResponse struct {
	Applications []ApplicationDo `json:"applications"`
	Pagination   Pagination      `json:"pagination"`
}

// ApplicationStats 各状态申请数量。
type ApplicationStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Accepted  int `json:"accepted"`
	Rejected  int `json:"rejected"`
	Scheduled int `json:"scheduled"`
}

// Add 累加某个状态的数量。
func (s *ApplicationStats) Add(status ApplicationStatus, n int) {
	s.Total += n
	switch status {
	case ApplicationStatusPending:
		s.Pending += n
	case ApplicationStatusAccepted:
		s.Accepted += n
	case ApplicationStatusRejected:
		s.Rejected += n
	case ApplicationStatusScheduled:
		s.Scheduled += n
	}
}

// RecentApplication 统计页展示的最近申请。
type RecentApplication struct {
	ID        string            `json:"_id" bson:"_id"`
	Name      string            `json:"name" bson:"name"`
	Email     string            `json:"email" bson:"email"`
	Status    ApplicationStatus `json:"status" bson:"status"`
	AppliedAt time.Time         `json:"appliedAt" bson:"appliedAt"`
}

type StatsResponse struct {
	Stats              ApplicationStats    `json:"stats"`
	RecentApplications []RecentApplication `json:"recentApplications"`
}

type BulkDeleteResponse struct {
	DeletedCount int `json:"deletedCount"`
}
