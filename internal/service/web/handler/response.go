package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
	"github.com/solutions/job-portal/internal/protodef/model"
	"github.com/solutions/job-portal/internal/service/web/middleware"
)

// respond 以统一格式返回成功结果。
func respond(c *gin.Context, status int, message string, data interface{}) {
	resp := model.NewSuccessResponse(data).WithRequestID(middleware.RequestID(c))
	if message != "" {
		resp.WithMessage(message)
	}
	resp.Send(c, status)
}

// fail 记录错误，由 middleware.ErrorResponder 统一返回。
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func badRequest(c *gin.Context, message string) {
	fail(c, model.NewResponseErrorBadRequest(message))
}

// bindBody 解析请求体，格式错误返回 400。
func bindBody(c *gin.Context, xl *xlog.Logger, args interface{}) bool {
	if err := c.ShouldBind(args); err != nil {
		xl.Infof("invalid args in body, error %v", err)
		badRequest(c, "Invalid request body")
		return false
	}
	return true
}

// parseMultipart 解析 multipart 表单，非 multipart 请求返回 nil。
func parseMultipart(c *gin.Context, xl *xlog.Logger) (*multipart.Form, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, true
		}
		xl.Infof("failed to parse multipart form, error %v", err)
		badRequest(c, "Invalid multipart form")
		return nil, false
	}
	return form, true
}

// withDocumentURLs 在返回的申请中附带材料访问地址。
func withDocumentURLs(app *model.ApplicationDo, urls map[string]string) model.FlattenMap {
	return app.Map().Merge(map[string]interface{}{"documentUrls": urls})
}
