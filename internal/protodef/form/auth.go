package form

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrAllFieldsRequired = errors.New("All fields are required")
	ErrUsernameTooShort  = errors.New("Username must be at least 3 characters long")
)

// LoginForm 应聘者与管理员共用的登录表单。
type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (f *LoginForm) Validate() error {
	var errs FieldErrors
	errs.check(strings.TrimSpace(f.Username), validation.Required.Error("Username is required"))
	errs.check(f.Password, validation.Required.Error("Password is required"))
	return errs.errOrNil()
}

// ChangePasswordForm 修改密码。
type ChangePasswordForm struct {
	Username    string `json:"username"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (f *ChangePasswordForm) Validate() error {
	var errs FieldErrors
	errs.check(f.OldPassword, validation.Required.Error("Current password is required"))
	errs.check(f.NewPassword,
		validation.Required.Error("New password is required"),
		validation.RuneLength(6, 0).Error("New password must be at least 6 characters long"))
	return errs.errOrNil()
}

// ChangeUsernameForm 应聘者修改登录名。
type ChangeUsernameForm struct {
	CurrentUsername string `json:"currentUsername"`
	NewUsername     string `json:"newUsername"`
	Password        string `json:"password"`
}

func (f *ChangeUsernameForm) Validate() error {
	if f.CurrentUsername == "" || f.NewUsername == "" || f.Password == "" {
		return ErrAllFieldsRequired
	}
	if err := validation.Validate(f.NewUsername, validation.RuneLength(3, 0)); err != nil {
		return ErrUsernameTooShort
	}
	return nil
}
