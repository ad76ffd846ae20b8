package form

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/solutions/job-portal/internal/protodef/errors"
	"github.com/solutions/job-portal/internal/protodef/model"
	"gopkg.in/mgo.v2/bson"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// StatusAll 不按状态过滤。
	StatusAll = "all"

	// InstantInterviewDelay 即时面试安排在一小时后。
	InstantInterviewDelay = time.Hour
	// ScheduleGracePeriod 允许安排在当前时间之前不超过5分钟的面试。
	ScheduleGracePeriod = 5 * time.Minute

	InterviewTimeLayout = "03:04 PM"
)

var (
	ErrInterviewSlotRequired = errors.New(errors.ServerErrorBadInterviewTime, "Interview date and time are required for scheduled interviews")
	ErrInterviewFormat       = errors.New(errors.ServerErrorBadInterviewTime, "Invalid date or time format")
)

// ApplicationFilterForm 管理员查询申请列表的条件。
type ApplicationFilterForm struct {
	Status string `form:"status"`
	Search string `form:"search"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// FillDefault 补全分页参数，status=all 视为不过滤。
func (f *ApplicationFilterForm) FillDefault() {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	f.Search = strings.TrimSpace(f.Search)
	if strings.EqualFold(f.Status, StatusAll) {
		f.Status = ""
	}
}

// Skip 分页偏移量。
func (f *ApplicationFilterForm) Skip() int {
	return (f.Page - 1) * f.Limit
}

// StatusUpdateForm 更新申请状态。
type StatusUpdateForm struct {
	Status model.ApplicationStatus `json:"status"`
}

func (f *StatusUpdateForm) Validate() error {
	if !f.Status.Valid() {
		return errors.ErrInvalidStatus
	}
	return nil
}

// ScheduleForm 安排面试。
type ScheduleForm struct {
	InterviewDate string `json:"interviewDate"`
	InterviewTime string `json:"interviewTime"`
	Immediate     bool   `json:"immediate"`
}

// InterviewSlot 计算后的面试时间。
type InterviewSlot struct {
	At      time.Time
	Time    string
	Instant bool
}

var interviewLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05"}

// Resolve 根据当前时间计算面试时间，日期与时间按 loc 解析。
func (f *ScheduleForm) Resolve(now time.Time, loc *time.Location) (*InterviewSlot, error) {
	if f.Immediate {
		at := now.Add(InstantInterviewDelay)
		return &InterviewSlot{
			At:      at,
			Time:    at.In(loc).Format(InterviewTimeLayout),
			Instant: true,
		}, nil
	}
	date := strings.TrimSpace(f.InterviewDate)
	clock := strings.TrimSpace(f.InterviewTime)
	if date == "" || clock == "" {
		return nil, ErrInterviewSlotRequired
	}
	var (
		at  time.Time
		err error
	)
	for _, layout := range interviewLayouts {
		at, err = time.ParseInLocation(layout, date+"T"+clock, loc)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, ErrInterviewFormat
	}
	if !at.After(now.Add(-ScheduleGracePeriod)) {
		return nil, errors.New(errors.ServerErrorInterviewInPast,
			fmt.Sprintf("Interview must be scheduled for a future date and time. Current time: %s",
				now.In(loc).Format("1/2/2006, 3:04:05 PM")))
	}
	return &InterviewSlot{At: at, Time: clock}, nil
}

// BulkDeleteForm 批量删除申请。
type BulkDeleteForm struct {
	IDs []string `json:"ids"`
}

func (f *BulkDeleteForm) Validate() error {
	return validation.Validate(f.IDs,
		validation.Required.Error("No application ids provided"),
		validation.Each(validation.By(func(value interface{}) error {
			id, _ := value.(string)
			if !bson.IsObjectIdHex(id) {
				return fmt.Errorf("invalid application id %q", id)
			}
			return nil
		})),
	)
}
