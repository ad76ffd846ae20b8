package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
	"github.com/solutions/job-portal/internal/protodef/form"
	"github.com/solutions/job-portal/internal/protodef/model"
	"github.com/solutions/job-portal/internal/service/cloud"
	"github.com/solutions/job-portal/internal/service/web/middleware"
)

// ReviewInterface 管理员审核申请所需的操作。
type ReviewInterface interface {
	GetByID(xl *xlog.Logger, id string) (*model.ApplicationDo, error)

	// List 返回当前页的申请与符合条件的总数。
	List(xl *xlog.Logger, args *form.ApplicationFilterForm) ([]model.ApplicationDo, int, error)

	Stats(xl *xlog.Logger) (*model.StatsResponse, error)

	ListAll(xl *xlog.Logger) ([]model.ApplicationDo, error)

	// UpdateStatus 与 Schedule 返回修改前的申请。
	UpdateStatus(xl *xlog.Logger, id string, status model.ApplicationStatus) (*model.ApplicationDo, error)
	Schedule(xl *xlog.Logger, id string, slot *form.InterviewSlot) (*model.ApplicationDo, error)

	// Delete 与 BulkDelete 返回被删除的申请。
	Delete(xl *xlog.Logger, id string) (*model.ApplicationDo, error)
	BulkDelete(xl *xlog.Logger, ids []string) ([]model.ApplicationDo, error)
}

// CapacityInterface 岗位名额计数。
type CapacityInterface interface {
	Reserve(xl *xlog.Logger, title string) (bool, error)
	Release(xl *xlog.Logger, title string) (bool, error)
}

type AdminApiHandler struct {
	Applications ReviewInterface
	Capacity     CapacityInterface
	Storage      cloud.DocumentStorage
	Auth         *middleware.Authenticator
	// Location 面试日期与导出日期使用的时区。
	Location *time.Location
	now      func() time.Time
	xl       *xlog.Logger
}

func NewAdminApiHandler(apps ReviewInterface, capacity CapacityInterface, storage cloud.DocumentStorage, auth *middleware.Authenticator) *AdminApiHandler {
	return &AdminApiHandler{
		Applications: apps,
		Capacity:     capacity,
		Storage:      storage,
		Auth:         auth,
		Location:     time.Local,
		now:          time.Now,
		xl:           xlog.New("admin api"),
	}
}

// ListApplications 按状态与关键字分页查询申请。
func (h *AdminApiHandler) ListApplications(c *gin.Context) {
	xl := h.logger(c)
	args := form.ApplicationFilterForm{}
	if err := c.ShouldBindQuery(&args); err != nil {
		xl.Infof("invalid query, error %v", err)
		badRequest(c, "Invalid query parameters")
		return
	}
	args.FillDefault()
	apps, total, err := h.Applications.List(xl, &args)
	if err != nil {
		fail(c, err)
		return
	}
	if apps == nil {
		apps = []model.ApplicationDo{}
	}
	respond(c, http.StatusOK, "", &model.ApplicationListResponse{
		Applications: apps,
		Pagination:   model.NewPagination(args.Page, args.Limit, total),
	})
}

// GetApplication 申请详情。
func (h *AdminApiHandler) GetApplication(c *gin.Context) {
	xl := h.logger(c)
	app, err := h.Applications.GetByID(xl, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", withDocumentURLs(app, cloud.DocumentURLs(h.Storage, app.Documents)))
}

// UpdateStatus 修改申请状态，任意状态之间均可变更。
func (h *AdminApiHandler) UpdateStatus(c *gin.Context) {
	xl := h.logger(c)
	args := form.StatusUpdateForm{}
	if !bindBody(c, xl, &args) {
		return
	}
	if err := args.Validate(); err != nil {
		fail(c, err)
		return
	}
	before, err := h.Applications.UpdateStatus(xl, c.Param("id"), args.Status)
	if err != nil {
		fail(c, err)
		return
	}
	h.adjustCapacity(xl, before, args.Status)
	xl.Infof("application %s status %s -> %s", before.ID, before.Status, args.Status)
	respond(c, http.StatusOK, "Status updated successfully", gin.H{
		"application": gin.H{
			"id":     before.ID,
			"name":   before.Name,
			"status": args.Status,
		},
	})
}

// ScheduleInterview 安排面试，immediate 为 true 时安排在一小时后。
func (h *AdminApiHandler) ScheduleInterview(c *gin.Context) {
	xl := h.logger(c)
	id := c.Param("id")
	args := form.ScheduleForm{}
	if !bindBody(c, xl, &args) {
		return
	}
	if _, err := h.Applications.GetByID(xl, id); err != nil {
		fail(c, err)
		return
	}
	slot, err := args.Resolve(h.now(), h.Location)
	if err != nil {
		fail(c, err)
		return
	}
	before, err := h.Applications.Schedule(xl, id, slot)
	if err != nil {
		fail(c, err)
		return
	}
	h.adjustCapacity(xl, before, model.ApplicationStatusScheduled)
	xl.Infof("interview of %s scheduled at %v, instant %v", before.ID, slot.At, slot.Instant)
	respond(c, http.StatusOK, "Interview scheduled successfully", gin.H{
		"application": gin.H{
			"id":                 before.ID,
			"name":               before.Name,
			"status":             model.ApplicationStatusScheduled,
			"interviewDate":      slot.At,
			"interviewTime":      slot.Time,
			"isInstantInterview": slot.Instant,
		},
	})
}

// DeleteApplication 删除申请及其材料，应聘者账号随之失效。
func (h *AdminApiHandler) DeleteApplication(c *gin.Context) {
	xl := h.logger(c)
	removed, err := h.Applications.Delete(xl, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	h.cleanup(xl, *removed)
	respond(c, http.StatusOK, "Application deleted successfully", nil)
}

// BulkDeleteApplications 批量删除申请。
func (h *AdminApiHandler) BulkDeleteApplications(c *gin.Context) {
	xl := h.logger(c)
	args := form.BulkDeleteForm{}
	if !bindBody(c, xl, &args) {
		return
	}
	if err := args.Validate(); err != nil {
		fail(c, err)
		return
	}
	removed, err := h.Applications.BulkDelete(xl, args.IDs)
	if err != nil {
		fail(c, err)
		return
	}
	for _, app := range removed {
		h.cleanup(xl, app)
	}
	xl.Infof("bulk deleted %d of %d applications", len(removed), len(args.IDs))
	respond(c, http.StatusOK, "Applications deleted successfully", &model.BulkDeleteResponse{DeletedCount: len(removed)})
}

// Stats 各状态数量与最近的申请。
func (h *AdminApiHandler) Stats(c *gin.Context) {
	xl := h.logger(c)
	stats, err := h.Applications.Stats(xl)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", stats)
}

// Export 导出全部申请为 CSV。
func (h *AdminApiHandler) Export(c *gin.Context) {
	xl := h.logger(c)
	apps, err := h.Applications.ListAll(xl)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=applications.csv")
	c.Data(http.StatusOK, "text/csv", ExportCSV(apps, h.Location))
}

// adjustCapacity 申请进入 Accepted 时占用岗位名额，离开时释放。名额已满不阻止状态变更。
func (h *AdminApiHandler) adjustCapacity(xl *xlog.Logger, before *model.ApplicationDo, next model.ApplicationStatus) {
	wasAccepted := before.Status == model.ApplicationStatusAccepted
	isAccepted := next == model.ApplicationStatusAccepted
	switch {
	case !wasAccepted && isAccepted:
		ok, err := h.Capacity.Reserve(xl, before.Department)
		if err != nil {
			xl.Errorf("failed to reserve position %s, error %v", before.Department, err)
		} else if !ok {
			xl.Warnf("position %s is full or missing, accepted application %s not counted", before.Department, before.ID)
		}
	case wasAccepted && !isAccepted:
		if _, err := h.Capacity.Release(xl, before.Department); err != nil {
			xl.Errorf("failed to release position %s, error %v", before.Department, err)
		}
	}
}

// cleanup 删除申请后清理材料并释放名额。
func (h *AdminApiHandler) cleanup(xl *xlog.Logger, removed model.ApplicationDo) {
	cloud.RemoveAll(xl, h.Storage, removed.Documents.Keys())
	if removed.Status == model.ApplicationStatusAccepted {
		h.adjustCapacity(xl, &removed, "")
	}
}

func (h *AdminApiHandler) RegisterRoute(group *gin.RouterGroup) {
	group.Use(h.Auth.Authenticate, middleware.RequireAdmin)
	group.GET("applications", h.ListApplications)
	group.POST("applications/bulk-delete", h.BulkDeleteApplications)
	group.GET("applications/:id", h.GetApplication)
	group.DELETE("applications/:id", h.DeleteApplication)
	group.PATCH("applications/:id/status", h.UpdateStatus)
	group.PATCH("applications/:id/schedule", h.ScheduleInterview)
	group.GET("stats", h.Stats)
	group.GET("export", h.Export)
}

// logger retrieve logger from request,use handler 's logger if none in req
func (h *AdminApiHandler) logger(c *gin.Context) *xlog.Logger {
	logger := h.xl
	val, ok := c.Get(model.XLogKey)
	if ok {
		logger = val.(*xlog.Logger)
	}
	return logger
}
