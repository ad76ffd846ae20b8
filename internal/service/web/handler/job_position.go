package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
	"github.com/solutions/job-portal/internal/protodef/form"
	"github.com/solutions/job-portal/internal/protodef/model"
	"github.com/solutions/job-portal/internal/service/web/middleware"
	"gopkg.in/mgo.v2/bson"
)

// JobPositionInterface 岗位的存取。
type JobPositionInterface interface {
	// ListOpen 仍可申请的岗位，按创建时间倒序。
	ListOpen(xl *xlog.Logger) ([]model.JobPositionDo, error)
	ListAll(xl *xlog.Logger) ([]model.JobPositionDo, error)
	Create(xl *xlog.Logger, position *model.JobPositionDo) (*model.JobPositionDo, error)
	Update(xl *xlog.Logger, id string, set bson.M) (*model.JobPositionDo, error)
	Delete(xl *xlog.Logger, id string) error
}

type JobPositionApiHandler struct {
	Positions JobPositionInterface
	Auth      *middleware.Authenticator
	xl        *xlog.Logger
}

func NewJobPositionApiHandler(positions JobPositionInterface, auth *middleware.Authenticator) *JobPositionApiHandler {
	return &JobPositionApiHandler{
		Positions: positions,
		Auth:      auth,
		xl:        xlog.New("job position api"),
	}
}

// ListOpen 公开的岗位列表。
func (h *JobPositionApiHandler) ListOpen(c *gin.Context) {
	xl := h.logger(c)
	positions, err := h.Positions.ListOpen(xl)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", nonNil(positions))
}

// ListAll 管理员查看全部岗位。
func (h *JobPositionApiHandler) ListAll(c *gin.Context) {
	xl := h.logger(c)
	positions, err := h.Positions.ListAll(xl)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", nonNil(positions))
}

func (h *JobPositionApiHandler) Create(c *gin.Context) {
	xl := h.logger(c)
	args, ok := h.parseBody(c, xl)
	if !ok {
		return
	}
	if err := args.ValidateCreate(); err != nil {
		badRequest(c, err.Error())
		return
	}
	position, err := h.Positions.Create(xl, args.ToJobPosition())
	if err != nil {
		fail(c, err)
		return
	}
	xl.Infof("job position %s created, total %d", position.Title, position.TotalPositions)
	respond(c, http.StatusCreated, "Job position created successfully", gin.H{"position": position})
}

// Update 只写入请求体中出现的字段。
func (h *JobPositionApiHandler) Update(c *gin.Context) {
	xl := h.logger(c)
	args, ok := h.parseBody(c, xl)
	if !ok {
		return
	}
	if err := args.ValidateUpdate(); err != nil {
		badRequest(c, err.Error())
		return
	}
	position, err := h.Positions.Update(xl, c.Param("id"), args.Updates())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Job position updated successfully", gin.H{"position": position})
}

func (h *JobPositionApiHandler) Delete(c *gin.Context) {
	xl := h.logger(c)
	if err := h.Positions.Delete(xl, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Job position deleted successfully", nil)
}

func (h *JobPositionApiHandler) parseBody(c *gin.Context, xl *xlog.Logger) (*form.JobPositionForm, bool) {
	body, err := c.GetRawData()
	if err != nil {
		xl.Infof("failed to read body, error %v", err)
		badRequest(c, "Invalid request body")
		return nil, false
	}
	args, err := form.ParseJobPositionForm(body)
	if err != nil {
		badRequest(c, err.Error())
		return nil, false
	}
	return args, true
}

func nonNil(positions []model.JobPositionDo) []model.JobPositionDo {
	if positions == nil {
		return []model.JobPositionDo{}
	}
	return positions
}

func (h *JobPositionApiHandler) RegisterRoute(group *gin.RouterGroup) {
	group.GET("", h.ListOpen)
	admin := group.Group("", h.Auth.Authenticate, middleware.RequireAdmin)
	admin.GET("admin", h.ListAll)
	admin.POST("", h.Create)
	admin.PUT(":id", h.Update)
	admin.DELETE(":id", h.Delete)
}

// logger retrieve logger from request,use handler 's logger if none in req
func (h *JobPositionApiHandler) logger(c *gin.Context) *xlog.Logger {
	logger := h.xl
	val, ok := c.Get(model.XLogKey)
	if ok {
		logger = val.(*xlog.Logger)
	}
	return logger
}
