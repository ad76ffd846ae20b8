package form

import (
	"errors"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/solutions/job-portal/internal/protodef/model"
	"github.com/tidwall/gjson"
	"gopkg.in/mgo.v2/bson"
)

var (
	ErrBadJSON              = errors.New("Invalid JSON body")
	ErrRequirementsNeeded   = errors.New("At least one requirement is needed")
	ErrTotalPositionsNumber = errors.New("Total positions must be a number")
	ErrTotalPositionsMin    = errors.New("Total positions must be at least 1")
	ErrTitleRequired        = errors.New("Title cannot be empty")
	ErrTitleTooLong         = errors.New("Title cannot exceed 100 characters")
)

// JobPositionForm 新建或更新岗位的请求体。
// 更新时只写入请求体中出现的字段，因此需要保留每个字段是否出现。
type JobPositionForm struct {
	Title          string
	Description    string
	Icon           string
	ColorScheme    string
	Requirements   []string
	TotalPositions int
	IsActive       bool

	present         map[string]bool
	requirementsArr bool
	totalErr        error
}

// ParseJobPositionForm 解析 JSON 请求体。
func ParseJobPositionForm(body []byte) (*JobPositionForm, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrBadJSON
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, ErrBadJSON
	}
	f := &JobPositionForm{present: map[string]bool{}}
	root.ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.Null {
			return true
		}
		switch key.String() {
		case "title":
			f.Title = strings.TrimSpace(value.String())
		case "description":
			f.Description = strings.TrimSpace(value.String())
		case "icon":
			f.Icon = strings.TrimSpace(value.String())
		case "colorScheme":
			f.ColorScheme = strings.TrimSpace(value.String())
		case "requirements":
			f.requirementsArr = value.IsArray()
			for _, item := range value.Array() {
				if s := strings.TrimSpace(item.String()); s != "" {
					f.Requirements = append(f.Requirements, s)
				}
			}
		case "totalPositions":
			f.TotalPositions, f.totalErr = parsePositions(value)
		case "isActive":
			f.IsActive = value.Bool()
		default:
			return true
		}
		f.present[key.String()] = true
		return true
	})
	return f, nil
}

// parsePositions 接受数字或数字字符串。
func parsePositions(value gjson.Result) (int, error) {
	switch value.Type {
	case gjson.Number:
		return int(value.Int()), nil
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(value.Str))
		if err != nil {
			return 0, ErrTotalPositionsNumber
		}
		return n, nil
	}
	return 0, ErrTotalPositionsNumber
}

// Has 请求体中是否出现了该字段。
func (f *JobPositionForm) Has(field string) bool {
	return f.present[field]
}

// ValidateCreate 新建岗位时 title、description、requirements、totalPositions 均必填。
func (f *JobPositionForm) ValidateCreate() error {
	if f.Title == "" || f.Description == "" || !f.Has("requirements") || !f.Has("totalPositions") {
		return ErrAllFieldsRequired
	}
	return f.validatePresent()
}

// ValidateUpdate 只校验出现的字段。
func (f *JobPositionForm) ValidateUpdate() error {
	if f.Has("title") && f.Title == "" {
		return ErrTitleRequired
	}
	if f.Has("description") && f.Description == "" {
		return ErrAllFieldsRequired
	}
	return f.validatePresent()
}

func (f *JobPositionForm) validatePresent() error {
	if f.Has("title") {
		if err := validation.Validate(f.Title, validation.RuneLength(0, 100)); err != nil {
			return ErrTitleTooLong
		}
	}
	if f.Has("requirements") && (!f.requirementsArr || len(f.Requirements) == 0) {
		return ErrRequirementsNeeded
	}
	if f.Has("totalPositions") {
		if f.totalErr != nil {
			return f.totalErr
		}
		if f.TotalPositions < 1 {
			return ErrTotalPositionsMin
		}
	}
	return nil
}

// ToJobPosition 生成新岗位，图标默认 briefcase，默认开放。
func (f *JobPositionForm) ToJobPosition() *model.JobPositionDo {
	position := &model.JobPositionDo{
		Title:          f.Title,
		Description:    f.Description,
		Icon:           f.Icon,
		Requirements:   f.Requirements,
		TotalPositions: f.TotalPositions,
		IsActive:       true,
	}
	if position.Icon == "" {
		position.Icon = model.DefaultJobIcon
	}
	if f.Has("isActive") {
		position.IsActive = f.IsActive
	}
	return position
}

// Updates 返回需要 $set 的字段。
func (f *JobPositionForm) Updates() bson.M {
	set := bson.M{}
	if f.Has("title") {
		set["title"] = f.Title
	}
	if f.Has("description") {
		set["description"] = f.Description
	}
	if f.Has("icon") {
		set["icon"] = f.Icon
	}
	if f.Has("colorScheme") {
		set["colorScheme"] = f.ColorScheme
	}
	if f.Has("requirements") {
		set["requirements"] = f.Requirements
	}
	if f.Has("totalPositions") {
		set["totalPositions"] = f.TotalPositions
	}
	if f.Has("isActive") {
		set["isActive"] = f.IsActive
	}
	set["updatedAt"] = time.Now()
	return set
}
