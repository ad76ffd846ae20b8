package form

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FieldErrors 一组按字段顺序排列的校验错误信息，整体以 400 返回。
type FieldErrors []string

func (e FieldErrors) Error() string {
	return strings.Join(e, ", ")
}

// errOrNil 没有错误时返回 nil，避免返回非空接口包装的空切片。
func (e FieldErrors) errOrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// check 按顺序执行规则，记录第一条失败信息。
func (e *FieldErrors) check(value interface{}, rules ...validation.Rule) {
	if err := validation.Validate(value, rules...); err != nil {
		*e = append(*e, err.Error())
	}
}
