package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/solutions/job-portal/internal/common/utils"
	errs "github.com/solutions/job-portal/internal/protodef/errors"
	"github.com/solutions/job-portal/internal/protodef/form"
	"github.com/solutions/job-portal/internal/protodef/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) model.Response {
	t.Helper()
	resp := model.Response{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func newAuthRouter(tokens *utils.TokenManager) *gin.Engine {
	auth := NewAuthenticator(tokens)
	r := gin.New()
	r.Use(AddRequestID)
	ok := func(c *gin.Context) {
		c.JSON(http.StatusOK, model.NewSuccessResponse(c.GetString(model.UserIDContextKey)))
	}
	r.GET("/any", auth.Authenticate, ok)
	r.GET("/admin", auth.Authenticate, RequireAdmin, ok)
	r.GET("/candidate", auth.Authenticate, RequireCandidate, ok)
	return r
}

func TestAuthenticate(t *testing.T) {
	tokens := utils.NewTokenManager(utils.JwtConfig{Key: "k", ExpireHours: 1})
	r := newAuthRouter(tokens)
	candidate, err := tokens.Sign("app-1", "userabc123", utils.PrincipalCandidate)
	require.NoError(t, err)
	admin, err := tokens.Sign("admin-1", "admin", utils.PrincipalAdmin)
	require.NoError(t, err)

	do := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do("/any", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token, authorization denied", decode(t, w).Message)
	assert.NotEmpty(t, w.Header().Get(model.RequestIDHeader))

	w = do("/any", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token is not valid", decode(t, w).Message)

	w = do("/any", candidate)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "app-1", decode(t, w).Data)

	w = do("/admin", candidate)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied. Admin only.", decode(t, w).Message)

	w = do("/admin", admin)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do("/candidate", admin)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestToResponseError(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		code    int
		message string
	}{
		{errs.ErrApplicationNotFound, http.StatusNotFound, model.ResponseErrorNoSuchApp, "Application not found"},
		{errs.ErrJobPositionNotFound, http.StatusNotFound, model.ResponseErrorNoSuchPosition, "Job position not found"},
		{errs.ErrUserNotFound, http.StatusNotFound, model.ResponseErrorNoSuchUser, "User not found"},
		{errs.ErrInvalidID, http.StatusNotFound, model.ResponseErrorInvalidID, "Resource not found"},
		{errors.Wrap(errs.ErrDuplicateEmail, "create"), http.StatusBadRequest, model.ResponseErrorDuplicateEmail, "Application with this email already exists"},
		{errs.ErrInvalidStatus, http.StatusBadRequest, model.ResponseErrorInvalidStatus, "Invalid status"},
		{errs.ErrResumeRequired, http.StatusBadRequest, model.ResponseErrorResumeRequired, "Resume is required"},
		{errs.ErrInvalidCredentials, http.StatusUnauthorized, model.ResponseErrorBadCredentials, "Invalid credentials"},
		{errs.ErrWrongOldPassword, http.StatusUnauthorized, model.ResponseErrorWrongPassword, "Invalid old password"},
		{errs.ErrUsernameTaken, http.StatusConflict, model.ResponseErrorUsernameTaken, "Username already exists"},
		{errs.NewUploadError("resume", "Resume must be a PDF file"), http.StatusBadRequest, model.ResponseErrorUpload, "Resume must be a PDF file"},
		{form.FieldErrors{"Name is required"}, http.StatusBadRequest, model.ResponseErrorValidation, "Validation failed"},
		{utils.ErrTokenExpired, http.StatusUnauthorized, model.ResponseErrorTokenExpired, "Token expired"},
		{utils.ErrTokenInvalid, http.StatusUnauthorized, model.ResponseErrorBadToken, "Invalid token"},
		{model.NewResponseErrorBadRequest("All fields are required"), http.StatusBadRequest, model.ResponseErrorBadRequest, "All fields are required"},
		{errors.Wrapf(errs.ErrStorageFail, "upload %s", "resume-1.pdf"), http.StatusBadGateway, model.ResponseErrorExternalService, "Failed to store uploaded file"},
		{errs.New(99999, "unmapped"), http.StatusInternalServerError, model.ResponseErrorInternal, "Server error"},
		{errors.New("boom"), http.StatusInternalServerError, model.ResponseErrorInternal, "Server error"},
	}
	for _, tc := range cases {
		got := ToResponseError(tc.err)
		assert.Equal(t, tc.status, got.HTTPStatus(), tc.err.Error())
		assert.Equal(t, tc.code, got.Code, tc.err.Error())
		assert.Equal(t, tc.message, got.Message, tc.err.Error())
	}
}

func TestResponseCodesDistinct(t *testing.T) {
	// 固定返回的错误码。
	fixed := map[int]string{
		model.ResponseErrorBadRequest:      "bad request",
		model.ResponseErrorValidation:      "validation",
		model.ResponseErrorDuplicate:       "duplicate key",
		model.ResponseErrorUpload:          "upload",
		model.ResponseErrorNotLoggedIn:     "no token",
		model.ResponseErrorBadToken:        "bad token",
		model.ResponseErrorTokenExpired:    "token expired",
		model.ResponseErrorForbidden:       "forbidden",
		model.ResponseErrorNotFound:        "no route",
		model.ResponseErrorTooManyRequests: "too many requests",
		model.ResponseErrorInternal:        "internal",
	}
	seen := map[int]int{}
	for serverCode, code := range serverErrorCodes {
		other, dup := seen[code]
		assert.False(t, dup, "server errors %d and %d share code %d", serverCode, other, code)
		seen[code] = serverCode
		name, clash := fixed[code]
		assert.False(t, clash, "server error %d reuses the %s code %d", serverCode, name, code)
		assert.Equal(t, code/1000, ToResponseError(errs.New(serverCode, "x")).HTTPStatus())
	}
	assert.NotEqual(t, ToResponseError(errs.ErrInvalidCredentials).Code, model.NewResponseErrorBadToken().Code)
}

func TestErrorResponder(t *testing.T) {
	r := gin.New()
	r.Use(AddRequestID, ErrorResponder)
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(form.FieldErrors{"Name is required", "Email is required"})
	})
	r.NoRoute(AddRequestID, NotFound)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, model.ResponseErrorValidation, resp.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"Name is required", "Email is required"}, data["errors"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found - /missing", decode(t, w).Message)
}

func TestMemoryLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter()
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("k", 2, time.Minute))
	assert.True(t, l.Allow("k", 2, time.Minute))
	assert.False(t, l.Allow("k", 2, time.Minute))
	assert.True(t, l.Allow("other", 2, time.Minute))

	now = now.Add(time.Minute + time.Second)
	assert.True(t, l.Allow("k", 2, time.Minute))
}

func TestRateLimitMiddleware(t *testing.T) {
	newRouter := func(trusted []string) *gin.Engine {
		r := gin.New()
		require.NoError(t, r.SetTrustedProxies(trusted))
		r.Use(AddRequestID)
		r.POST("/login", RateLimit(NewMemoryLimiter(), 1, time.Minute), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		return r
	}
	do := func(r *gin.Engine, remote, forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = remote
		if forwarded != "" {
			req.Header.Set("X-Forwarded-For", forwarded)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	// 没有可信代理时忽略 X-Forwarded-For。
	r := newRouter(nil)
	assert.Equal(t, http.StatusNoContent, do(r, "203.0.113.7:40000", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do(r, "203.0.113.7:40001", "10.0.0.2"))
	assert.Equal(t, http.StatusTooManyRequests, do(r, "203.0.113.7:40002", ""))
	assert.Equal(t, http.StatusNoContent, do(r, "203.0.113.8:40000", "10.0.0.1"))

	// 经过可信代理时按转发的客户端IP计数。
	r = newRouter([]string{"192.168.0.0/16"})
	assert.Equal(t, http.StatusNoContent, do(r, "192.168.1.1:5000", "198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, do(r, "192.168.1.2:5000", "198.51.100.1"))
	assert.Equal(t, http.StatusNoContent, do(r, "192.168.1.1:5000", "198.51.100.2"))
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(nil))
	assert.IsType(t, &MemoryLimiter{}, NewLimiter(&utils.RateLimitConfig{Provider: utils.RateLimitProviderMemory}))
	assert.IsType(t, &MemoryLimiter{}, NewLimiter(&utils.RateLimitConfig{Provider: utils.RateLimitProviderRedis}))
	assert.IsType(t, &RedisLimiter{}, NewLimiter(&utils.RateLimitConfig{
		Provider: utils.RateLimitProviderRedis,
		Redis:    &utils.RedisConfig{Addr: "127.0.0.1:6379"},
	}))
}
