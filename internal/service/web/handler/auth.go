package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
	"github.com/solutions/job-portal/internal/common/utils"
	"github.com/solutions/job-portal/internal/protodef/form"
	"github.com/solutions/job-portal/internal/protodef/model"
)

// CandidateAccountInterface 应聘者账号操作。
type CandidateAccountInterface interface {
	Authenticate(xl *xlog.Logger, username, password string) (*model.ApplicationDo, error)
	ChangePassword(xl *xlog.Logger, username, oldPassword, newPassword string) error
	ChangeUsername(xl *xlog.Logger, currentUsername, newUsername, password string) error
}

// AdminAccountInterface 管理员账号操作。
type AdminAccountInterface interface {
	Authenticate(xl *xlog.Logger, username, password string) (*model.AdminDo, error)
	ChangePassword(xl *xlog.Logger, username, oldPassword, newPassword string) error
}

type AuthApiHandler struct {
	Candidates CandidateAccountInterface
	Admins     AdminAccountInterface
	Tokens     *utils.TokenManager
	// LoginLimit 登录接口限流，为空时不限流。
	LoginLimit gin.HandlerFunc
	xl         *xlog.Logger
}

func NewAuthApiHandler(candidates CandidateAccountInterface, admins AdminAccountInterface, tokens *utils.TokenManager, loginLimit gin.HandlerFunc) *AuthApiHandler {
	return &AuthApiHandler{
		Candidates: candidates,
		Admins:     admins,
		Tokens:     tokens,
		LoginLimit: loginLimit,
		xl:         xlog.New("auth api"),
	}
}

// Login 应聘者登录。
func (h *AuthApiHandler) Login(c *gin.Context) {
	xl := h.logger(c)
	args := form.LoginForm{}
	if !bindBody(c, xl, &args) {
		return
	}
	if err := args.Validate(); err != nil {
		fail(c, err)
		return
	}
	app, err := h.Candidates.Authenticate(xl, args.Username, args.Password)
	if err != nil {
		fail(c, err)
		return
	}
	token, err := h.Tokens.Sign(app.ID, app.Username, utils.PrincipalCandidate)
	if err != nil {
		xl.Errorf("failed to sign token for %s, error %v", app.Username, err)
		fail(c, err)
		return
	}
	xl.Infof("candidate %s logged in", app.Username)
	respond(c, http.StatusOK, "Login successful", &model.LoginResponse{
		Token: token,
		User: model.LoginUser{
			ID:       app.ID,
			Username: app.Username,
			Name:     app.Name,
			Email:    app.Email,
		},
	})
}

// AdminLogin 管理员登录。
func (h *AuthApiHandler) AdminLogin(c *gin.Context) {
	xl := h.logger(c)
	args := form.LoginForm{}
	if !bindBody(c, xl, &args) {
		return
	}
	if err := args.Validate(); err != nil {
		fail(c, err)
		return
	}
	admin, err := h.Admins.Authenticate(xl, args.Username, args.Password)
	if err != nil {
		fail(c, err)
		return
	}
	token, err := h.Tokens.Sign(admin.ID, admin.Username, utils.PrincipalAdmin)
	if err != nil {
		xl.Errorf("failed to sign token for admin %s, error %v", admin.Username, err)
		fail(c, err)
		return
	}
	xl.Infof("admin %s logged in", admin.Username)
	respond(c, http.StatusOK, "Admin login successful", &model.LoginResponse{
		Token: token,
		User: model.LoginUser{
			ID:       admin.ID,
			Username: admin.Username,
			Role:     admin.Role,
		},
	})
}

// ChangePassword 应聘者修改密码。
func (h *AuthApiHandler) ChangePassword(c *gin.Context) {
	xl := h.logger(c)
	args := form.ChangePasswordForm{}
	if !bindBody(c, xl, &args) {
		return
	}
	if err := args.Validate(); err != nil {
		fail(c, err)
		return
	}
	if err := h.Candidates.ChangePassword(xl, args.Username, args.OldPassword, args.NewPassword); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Password changed successfully", nil)
}

// AdminChangePassword 管理员修改密码。
func (h *AuthApiHandler) AdminChangePassword(c *gin.Context) {
	xl := h.logger(c)
	args := form.ChangePasswordForm{}
	if !bindBody(c, xl, &args) {
		return
	}
	if err := args.Validate(); err != nil {
		fail(c, err)
		return
	}
	if err := h.Admins.ChangePassword(xl, args.Username, args.OldPassword, args.NewPassword); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Admin password changed successfully", nil)
}

// ChangeUsername 应聘者修改登录名。
func (h *AuthApiHandler) ChangeUsername(c *gin.Context) {
	xl := h.logger(c)
	args := form.ChangeUsernameForm{}
	if !bindBody(c, xl, &args) {
		return
	}
	if err := args.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.Candidates.ChangeUsername(xl, args.CurrentUsername, args.NewUsername, args.Password); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Username changed successfully", gin.H{"newUsername": args.NewUsername})
}

func (h *AuthApiHandler) RegisterRoute(group *gin.RouterGroup) {
	login := []gin.HandlerFunc{}
	if h.LoginLimit != nil {
		login = append(login, h.LoginLimit)
	}
	group.POST("login", append(login, h.Login)...)
	group.POST("admin/login", append(login, h.AdminLogin)...)
	group.POST("change-password", h.ChangePassword)
	group.POST("admin/change-password", h.AdminChangePassword)
	group.POST("change-username", h.ChangeUsername)
}

// logger retrieve logger from request,use handler 's logger if none in req
func (h *AuthApiHandler) logger(c *gin.Context) *xlog.Logger {
	logger := h.xl
	val, ok := c.Get(model.XLogKey)
	if ok {
		logger = val.(*xlog.Logger)
	}
	return logger
}
