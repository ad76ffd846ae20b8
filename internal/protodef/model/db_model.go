package model

import (
	"encoding/json"
	"time"
)

/*
	model.go: 规定数据存储的格式。
*/

// ApplicationStatus 申请状态，任意状态之间均可直接变更。
type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "Pending"
	ApplicationStatusAccepted  ApplicationStatus = "Accepted"
	ApplicationStatusRejected  ApplicationStatus = "Rejected"
	ApplicationStatusScheduled ApplicationStatus = "Scheduled"
)

// ApplicationStatuses 全部合法状态。
var ApplicationStatuses = []ApplicationStatus{
	ApplicationStatusPending,
	ApplicationStatusAccepted,
	ApplicationStatusRejected,
	ApplicationStatusScheduled,
}

func (s ApplicationStatus) Valid() bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// DepartmentOther 选择"其他"岗位时，实际岗位名称记录在 otherDepartment 中。
const DepartmentOther = "Other"

// 上传材料字段名。
const (
	DocumentResume           = "resume"
	DocumentTenthMarksheet   = "tenthMarksheet"
	DocumentTwelfthMarksheet = "twelfthMarksheet"
	DocumentAadharCard       = "aadharCard"
)

// DocumentFields 允许上传的材料字段，按固定顺序。
var DocumentFields = []string{
	DocumentTenthMarksheet,
	DocumentTwelfthMarksheet,
	DocumentResume,
	DocumentAadharCard,
}

// Documents 申请材料，值为存储中的文件名。
type Documents struct {
	Resume           string `json:"resume" bson:"resume"`
	TenthMarksheet   string `json:"tenthMarksheet,omitempty" bson:"tenthMarksheet,omitempty"`
	TwelfthMarksheet string `json:"twelfthMarksheet,omitempty" bson:"twelfthMarksheet,omitempty"`
	AadharCard       string `json:"aadharCard,omitempty" bson:"aadharCard,omitempty"`
}

// Get 按字段名读取材料。
func (d *Documents) Get(field string) string {
	switch field {
	case DocumentResume:
		return d.Resume
	case DocumentTenthMarksheet:
		return d.TenthMarksheet
	case DocumentTwelfthMarksheet:
		return d.TwelfthMarksheet
	case DocumentAadharCard:
		return d.AadharCard
	}
	return ""
}

// Set 按字段名写入材料，未知字段忽略。
func (d *Documents) Set(field, key string) {
	switch field {
	case DocumentResume:
		d.Resume = key
	case DocumentTenthMarksheet:
		d.TenthMarksheet = key
	case DocumentTwelfthMarksheet:
		d.TwelfthMarksheet = key
	case DocumentAadharCard:
		d.AadharCard = key
	}
}

// Keys 返回全部非空的文件名。
func (d *Documents) Keys() []string {
	var keys []string
	for _, field := range DocumentFields {
		if key := d.Get(field); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// ApplicationDo 应聘申请，同时作为应聘者的登录账号。
type ApplicationDo struct {
	ID    string `json:"_id" bson:"_id"`
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Phone string `json:"phone" bson:"phone"`
	// Username 系统生成的登录名，全局唯一。
	Username string `json:"username" bson:"username"`
	// Password bcrypt 哈希，不对外返回。
	Password  string    `json:"-" bson:"password"`
	Documents Documents `json:"documents" bson:"documents"`

	Experience      string `json:"experience" bson:"experience"`
	PastCompany     string `json:"pastCompany" bson:"pastCompany"`
	Department      string `json:"department" bson:"department"`
	OtherDepartment string `json:"otherDepartment,omitempty" bson:"otherDepartment,omitempty"`

	Status             ApplicationStatus `json:"status" bson:"status"`
	InterviewDate      *time.Time        `json:"interviewDate,omitempty" bson:"interviewDate,omitempty"`
	InterviewTime      string            `json:"interviewTime,omitempty" bson:"interviewTime,omitempty"`
	IsInstantInterview bool              `json:"isInstantInterview" bson:"isInstantInterview"`

	AppliedAt time.Time `json:"appliedAt" bson:"appliedAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// DisplayDepartment 岗位为 Other 时返回 otherDepartment。
func (a *ApplicationDo) DisplayDepartment() string {
	if a.Department == DepartmentOther && a.OtherDepartment != "" {
		return a.OtherDepartment
	}
	return a.Department
}

func (a ApplicationDo) Map() FlattenMap {
	val, _ := json.Marshal(&a)
	res := make(map[string]interface{})
	_ = json.Unmarshal(val, &res)
	return res
}

// 岗位图标，未配置时按标题回退。
const DefaultJobIcon = "briefcase"

var jobIconFallback = map[string]string{
	"Cyber Security":    "shield-alt",
	"Web Dev":           "globe",
	"App Dev":           "mobile-alt",
	"Full Stack":        "bolt",
	"Digital Marketing": "chart-line",
	"AI & Automation":   "robot",
	"Sales Executive":   "dollar-sign",
}

// JobColorSchemes 新建岗位时随机选取的配色。
var JobColorSchemes = []string{
	"red", "blue", "green", "purple", "pink", "indigo", "yellow", "emerald",
	"cyan", "orange", "teal", "rose", "violet", "amber", "lime",
}

// JobPositionDo 招聘岗位。
type JobPositionDo struct {
	ID              string   `json:"_id" bson:"_id"`
	Title           string   `json:"title" bson:"title"`
	Description     string   `json:"description" bson:"description"`
	Icon            string   `json:"icon" bson:"icon"`
	ColorScheme     string   `json:"colorScheme" bson:"colorScheme"`
	Requirements    []string `json:"requirements" bson:"requirements"`
	TotalPositions  int      `json:"totalPositions" bson:"totalPositions"`
	FilledPositions int      `json:"filledPositions" bson:"filledPositions"`
	// AvailablePositions 读取时计算，不落库。
	AvailablePositions int       `json:"availablePositions" bson:"-"`
	IsActive           bool      `json:"isActive" bson:"isActive"`
	CreatedAt          time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Fill 补全派生字段。
func (j *JobPositionDo) Fill() *JobPositionDo {
	j.AvailablePositions = j.TotalPositions - j.FilledPositions
	if j.Icon == "" {
		j.Icon = DefaultJobIcon
		if icon, ok := jobIconFallback[j.Title]; ok {
			j.Icon = icon
		}
	}
	return j
}

// Open 岗位是否仍可申请。
func (j *JobPositionDo) Open() bool {
	return j.IsActive && j.TotalPositions > j.FilledPositions
}

// AdminRole 管理员角色。
const AdminRole = "admin"

// AdminDo 管理员账号。
type AdminDo struct {
	ID       string `json:"id" bson:"_id"`
	Username string `json:"username" bson:"username"`
	Password string `json:"-" bson:"password"`
	Role     string `json:"role" bson:"role"`
}
