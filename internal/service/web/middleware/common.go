package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
	"github.com/solutions/job-portal/internal/common/utils"
	"github.com/solutions/job-portal/internal/protodef/model"
)

// AddRequestID 为请求生成 request ID 与对应的 xlog logger，并在响应头中返回。
func AddRequestID(c *gin.Context) {
	requestID := ""
	if requestID = c.Request.Header.Get(model.RequestIDHeader); requestID == "" {
		requestID = utils.NewReqID()
		c.Request.Header.Set(model.RequestIDHeader, requestID)
	}
	c.Writer.Header().Set(model.RequestIDHeader, requestID)
	xl := xlog.New(requestID)
	xl.Debugf("request: %s %s", c.Request.Method, c.Request.URL.Path)
	c.Set(model.XLogKey, xl)
	c.Set(model.RequestStartKey, time.Now())
}

// AccessLog 请求结束后记录状态码与耗时。
func AccessLog(c *gin.Context) {
	c.Next()
	xl := Logger(c)
	start, ok := c.Get(model.RequestStartKey)
	if !ok {
		return
	}
	xl.Infof("%s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start.(time.Time)))
}

// Logger 取出请求的 logger，未经过 AddRequestID 时新建一个。
func Logger(c *gin.Context) *xlog.Logger {
	if val, ok := c.Get(model.XLogKey); ok {
		if xl, ok := val.(*xlog.Logger); ok {
			return xl
		}
	}
	xl := xlog.New(utils.NewReqID())
	c.Set(model.XLogKey, xl)
	return xl
}

// RequestID 当前请求的 request ID。
func RequestID(c *gin.Context) string {
	return Logger(c).ReqId
}
