package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"github.com/solutions/job-portal/internal/common/utils"
	errs "github.com/solutions/job-portal/internal/protodef/errors"
	"github.com/solutions/job-portal/internal/protodef/form"
	"github.com/solutions/job-portal/internal/protodef/model"
	"gopkg.in/mgo.v2"
)

// serverErrorCodes 服务端错误码对应的返回错误码，HTTP 状态码由返回错误码决定。
var serverErrorCodes = map[int]int{
	errs.ServerErrorApplicationNotFound: model.ResponseErrorNoSuchApp,
	errs.ServerErrorJobPositionNotFound: model.ResponseErrorNoSuchPosition,
	errs.ServerErrorInvalidID:           model.ResponseErrorInvalidID,
	errs.ServerErrorUserNotFound:        model.ResponseErrorNoSuchUser,
	errs.ServerErrorDuplicateEmail:      model.ResponseErrorDuplicateEmail,
	errs.ServerErrorInterviewInPast:     model.ResponseErrorPastInterview,
	errs.ServerErrorInvalidStatus:       model.ResponseErrorInvalidStatus,
	errs.ServerErrorResumeRequired:      model.ResponseErrorResumeRequired,
	errs.ServerErrorBadInterviewTime:    model.ResponseErrorBadInterviewTime,
	errs.ServerErrorInvalidCredentials:  model.ResponseErrorBadCredentials,
	errs.ServerErrorWrongPassword:       model.ResponseErrorWrongPassword,
	errs.ServerErrorUsernameTaken:       model.ResponseErrorUsernameTaken,
	errs.ServerErrorStorageFail:         model.ResponseErrorExternalService,
}

// ToResponseError 将处理过程中的错误转换为返回给调用方的错误。
func ToResponseError(err error) *model.ResponseError {
	var (
		responseErr *model.ResponseError
		serverErr   *errs.ServerError
		uploadErr   *errs.UploadError
		fieldErrs   form.FieldErrors
		ozzoErrs    validation.Errors
		ozzoErr     validation.Error
	)
	switch {
	case errors.As(err, &responseErr):
		return responseErr
	case errors.As(err, &serverErr):
		code, ok := serverErrorCodes[serverErr.Code]
		if !ok {
			return model.NewResponseErrorInternal()
		}
		return model.NewResponseError(code, serverErr.Summary)
	case errors.As(err, &uploadErr):
		return model.NewResponseError(model.ResponseErrorUpload, uploadErr.Message)
	case errors.As(err, &fieldErrs):
		return model.NewResponseErrorValidation(fieldErrs)
	case errors.As(err, &ozzoErrs):
		return model.NewResponseErrorBadRequest(ozzoErrs.Error())
	case errors.As(err, &ozzoErr):
		return model.NewResponseErrorBadRequest(ozzoErr.Error())
	case errors.Is(err, utils.ErrTokenExpired):
		return model.NewResponseError(model.ResponseErrorTokenExpired, "Token expired")
	case errors.Is(err, utils.ErrTokenInvalid):
		return model.NewResponseError(model.ResponseErrorBadToken, "Invalid token")
	case mgo.IsDup(errors.Cause(err)):
		return model.NewResponseError(model.ResponseErrorDuplicate, "Duplicate field value entered")
	}
	return model.NewResponseErrorInternal()
}

// ErrorResponder 统一输出 handler 通过 c.Error 记录的最后一个错误。
func ErrorResponder(c *gin.Context) {
	c.Next()
	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	err := c.Errors.Last().Err
	responseErr := ToResponseError(err)
	xl := Logger(c)
	if responseErr.HTTPStatus() >= http.StatusInternalServerError {
		xl.Errorf("%s %s failed: %+v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		xl.Infof("%s %s rejected: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	resp := model.NewFailResponse(*responseErr).WithRequestID(RequestID(c))
	c.JSON(responseErr.HTTPStatus(), resp)
}

// NotFound 未匹配到路由。
func NotFound(c *gin.Context) {
	responseErr := model.NewResponseErrorNotFound("Not found - " + c.Request.URL.Path)
	resp := model.NewFailResponse(*responseErr).WithRequestID(RequestID(c))
	c.JSON(http.StatusNotFound, resp)
}
