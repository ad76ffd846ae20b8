package form

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/solutions/job-portal/internal/protodef/model"
)

var (
	RegName  = regexp.MustCompile(`^[a-zA-Z\s]{2,50}$`)
	RegEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	RegPhone = regexp.MustCompile(`^[0-9]{10}$`)
)

const (
	ErrNameRequiredMsg       = "Name is required"
	ErrNameMsg               = "Name must be 2-50 characters and contain only letters and spaces"
	ErrEmailRequiredMsg      = "Email is required"
	ErrEmailMsg              = "Please provide a valid email address"
	ErrPhoneRequiredMsg      = "Phone number is required"
	ErrPhoneMsg              = "Phone number must be exactly 10 digits"
	ErrDepartmentMsg         = "Please select a valid job position"
	ErrDepartmentRequiredMsg = "Department is required"
	ErrDepartmentLengthMsg   = "Department cannot exceed 100 characters"
)

// ApplicationSubmitForm 提交申请的表单字段（multipart）。
type ApplicationSubmitForm struct {
	Name            string `form:"name"`
	Email           string `form:"email"`
	Phone           string `form:"phone"`
	Department      string `form:"department"`
	OtherDepartment string `form:"otherDepartment"`
	Experience      string `form:"experience"`
	PastCompany     string `form:"pastCompany"`
}

// Normalize 去除首尾空白，岗位不是 Other 时丢弃 otherDepartment。
func (f *ApplicationSubmitForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Department = strings.TrimSpace(f.Department)
	f.OtherDepartment = strings.TrimSpace(f.OtherDepartment)
	if f.Department != model.DepartmentOther {
		f.OtherDepartment = ""
	}
}

// Validate 校验全部字段并返回所有错误信息。
// openTitles 为当前可申请的岗位名称；lookupErr 不为空说明岗位表查询失败，此时岗位只要求非空。
func (f *ApplicationSubmitForm) Validate(openTitles []string, lookupErr error) error {
	var errs FieldErrors
	errs.check(f.Name,
		validation.Required.Error(ErrNameRequiredMsg),
		validation.Match(RegName).Error(ErrNameMsg))
	errs.check(f.Email,
		validation.Required.Error(ErrEmailRequiredMsg),
		validation.Match(RegEmail).Error(ErrEmailMsg))
	errs.check(f.Phone,
		validation.Required.Error(ErrPhoneRequiredMsg),
		validation.Match(RegPhone).Error(ErrPhoneMsg))
	if lookupErr != nil {
		errs.check(f.Department,
			validation.Required.Error(ErrDepartmentRequiredMsg),
			validation.RuneLength(0, 100).Error(ErrDepartmentLengthMsg))
	} else {
		titles := make([]interface{}, 0, len(openTitles))
		for _, t := range openTitles {
			titles = append(titles, t)
		}
		errs.check(f.Department,
			validation.Required.Error(ErrDepartmentMsg),
			validation.In(titles...).Error(ErrDepartmentMsg))
	}
	return errs.errOrNil()
}

// ToApplication 生成待保存的申请，账号与材料由调用方补全。
func (f *ApplicationSubmitForm) ToApplication() *model.ApplicationDo {
	return &model.ApplicationDo{
		Name:            f.Name,
		Email:           f.Email,
		Phone:           f.Phone,
		Department:      f.Department,
		OtherDepartment: f.OtherDepartment,
		Experience:      f.Experience,
		PastCompany:     f.PastCompany,
		Status:          model.ApplicationStatusPending,
	}
}

// ProfileUpdateForm 应聘者可修改的资料，nil 表示请求中未携带该字段。
type ProfileUpdateForm struct {
	Experience  *string
	PastCompany *string
}

// BindProfileUpdateForm 从 multipart 表单中读取出现的字段。
func BindProfileUpdateForm(c *gin.Context) *ProfileUpdateForm {
	f := &ProfileUpdateForm{}
	if v, ok := c.GetPostForm("experience"); ok {
		f.Experience = &v
	}
	if v, ok := c.GetPostForm("pastCompany"); ok {
		f.PastCompany = &v
	}
	return f
}

// Empty 没有任何文本字段需要更新。
func (f *ProfileUpdateForm) Empty() bool {
	return f.Experience == nil && f.PastCompany == nil
}
