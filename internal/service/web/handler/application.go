package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
	errs "github.com/solutions/job-portal/internal/protodef/errors"
	"github.com/solutions/job-portal/internal/protodef/form"
	"github.com/solutions/job-portal/internal/protodef/model"
	"github.com/solutions/job-portal/internal/service/cloud"
	"github.com/solutions/job-portal/internal/service/web/middleware"
)

// ApplicationInterface 应聘申请的存取。
type ApplicationInterface interface {
	// Create 保存申请并生成登录账号。
	Create(xl *xlog.Logger, app *model.ApplicationDo) (*model.Credentials, error)

	GetByID(xl *xlog.Logger, id string) (*model.ApplicationDo, error)

	// UpdateProfile 返回更新后的申请与被替换的旧文件。
	UpdateProfile(xl *xlog.Logger, id string, args *form.ProfileUpdateForm, documents map[string]string) (*model.ApplicationDo, []string, error)
}

// OpenPositionInterface 可申请的岗位名称。
type OpenPositionInterface interface {
	OpenTitles(xl *xlog.Logger) ([]string, error)
}

type ApplicationApiHandler struct {
	Applications ApplicationInterface
	Positions    OpenPositionInterface
	Storage      cloud.DocumentStorage
	Upload       cloud.UploadPolicy
	Auth         *middleware.Authenticator
	xl           *xlog.Logger
}

func NewApplicationApiHandler(apps ApplicationInterface, positions OpenPositionInterface, storage cloud.DocumentStorage, upload cloud.UploadPolicy, auth *middleware.Authenticator) *ApplicationApiHandler {
	return &ApplicationApiHandler{
		Applications: apps,
		Positions:    positions,
		Storage:      storage,
		Upload:       upload,
		Auth:         auth,
		xl:           xlog.New("application api"),
	}
}

// Submit 提交申请（multipart），返回生成的登录账号。
func (h *ApplicationApiHandler) Submit(c *gin.Context) {
	xl := h.logger(c)
	multipartForm, ok := parseMultipart(c, xl)
	if !ok {
		return
	}
	files, err := h.Upload.Collect(multipartForm)
	if err != nil {
		fail(c, err)
		return
	}
	args := form.ApplicationSubmitForm{}
	if !bindBody(c, xl, &args) {
		return
	}
	args.Normalize()
	titles, lookupErr := h.Positions.OpenTitles(xl)
	if lookupErr != nil {
		xl.Errorf("failed to load open positions, fall back to non-empty check, error %v", lookupErr)
	}
	if err = args.Validate(titles, lookupErr); err != nil {
		fail(c, err)
		return
	}
	if files[model.DocumentResume] == nil {
		fail(c, errs.ErrResumeRequired)
		return
	}

	saved, err := cloud.SaveAll(xl, h.Storage, files)
	if err != nil {
		fail(c, err)
		return
	}
	app := args.ToApplication()
	for field, key := range saved {
		app.Documents.Set(field, key)
	}
	credentials, err := h.Applications.Create(xl, app)
	if err != nil {
		cloud.RemoveAll(xl, h.Storage, app.Documents.Keys())
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Application submitted successfully", &model.SubmitApplicationResponse{
		Credentials:   *credentials,
		ApplicationID: app.ID,
	})
}

// GetProfile 返回当前应聘者的申请。
func (h *ApplicationApiHandler) GetProfile(c *gin.Context) {
	xl := h.logger(c)
	app, err := h.Applications.GetByID(xl, c.GetString(model.UserIDContextKey))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", withDocumentURLs(app, cloud.DocumentURLs(h.Storage, app.Documents)))
}

// UpdateProfile 更新工作经历、原公司与材料，只写入请求中出现的字段。
func (h *ApplicationApiHandler) UpdateProfile(c *gin.Context) {
	xl := h.logger(c)
	multipartForm, ok := parseMultipart(c, xl)
	if !ok {
		return
	}
	files, err := h.Upload.Collect(multipartForm)
	if err != nil {
		fail(c, err)
		return
	}
	args := form.BindProfileUpdateForm(c)
	saved, err := cloud.SaveAll(xl, h.Storage, files)
	if err != nil {
		fail(c, err)
		return
	}
	app, replaced, err := h.Applications.UpdateProfile(xl, c.GetString(model.UserIDContextKey), args, saved)
	if err != nil {
		cloud.RemoveAll(xl, h.Storage, valuesOf(saved))
		fail(c, err)
		return
	}
	cloud.RemoveAll(xl, h.Storage, replaced)
	respond(c, http.StatusOK, "Profile updated successfully", gin.H{
		"application": withDocumentURLs(app, cloud.DocumentURLs(h.Storage, app.Documents)),
	})
}

func valuesOf(m map[string]string) []string {
	values := make([]string, 0, len(m))
	for _, v := range m {
		values = append(values, v)
	}
	return values
}

func (h *ApplicationApiHandler) RegisterRoute(group *gin.RouterGroup) {
	group.POST("submit", h.Submit)
	group.GET("profile", h.Auth.Authenticate, middleware.RequireCandidate, h.GetProfile)
	group.PATCH("profile", h.Auth.Authenticate, middleware.RequireCandidate, h.UpdateProfile)
}

// logger retrieve logger from request,use handler 's logger if none in req
func (h *ApplicationApiHandler) logger(c *gin.Context) *xlog.Logger {
	logger := h.xl
	val, ok := c.Get(model.XLogKey)
	if ok {
		logger = val.(*xlog.Logger)
	}
	return logger
}
