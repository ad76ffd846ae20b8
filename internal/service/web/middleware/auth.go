package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/solutions/job-portal/internal/common/utils"
	"github.com/solutions/job-portal/internal/protodef/model"
)

// Authenticator 校验 Authorization: Bearer <token>。
type Authenticator struct {
	tokens *utils.TokenManager
}

func NewAuthenticator(tokens *utils.TokenManager) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// Authenticate 校验请求者的身份，通过后在 context 中写入用户ID、用户名与身份类型。
func (a *Authenticator) Authenticate(c *gin.Context) {
	xl := Logger(c)
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		xl.Debugf("%s %s: request unauthorized, no token", c.Request.Method, c.Request.URL.Path)
		abortWith(c, model.NewResponseErrorNotLoggedIn())
		return
	}
	claims, err := a.tokens.Parse(token)
	if err != nil {
		xl.Infof("invalid token, error %v", err)
		abortWith(c, model.NewResponseErrorBadToken())
		return
	}
	c.Set(model.UserIDContextKey, claims.ID)
	c.Set(model.UsernameContextKey, claims.Username)
	c.Set(model.PrincipalContextKey, claims.Type)
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// RequireAdmin 仅允许管理员访问，需在 Authenticate 之后使用。
func RequireAdmin(c *gin.Context) {
	requirePrincipal(c, utils.PrincipalAdmin, "Access denied. Admin only.")
}

// RequireCandidate 仅允许应聘者访问，需在 Authenticate 之后使用。
func RequireCandidate(c *gin.Context) {
	requirePrincipal(c, utils.PrincipalCandidate, "Access denied. Candidates only.")
}

func requirePrincipal(c *gin.Context, principal utils.PrincipalType, message string) {
	if Principal(c) != principal {
		Logger(c).Infof("user %s is not %s", c.GetString(model.UserIDContextKey), principal)
		abortWith(c, model.NewResponseErrorForbidden(message))
	}
}

// Principal 当前请求的身份类型。
func Principal(c *gin.Context) utils.PrincipalType {
	val, _ := c.Get(model.PrincipalContextKey)
	principal, _ := val.(utils.PrincipalType)
	return principal
}

func abortWith(c *gin.Context, responseErr *model.ResponseError) {
	resp := model.NewFailResponse(*responseErr).WithRequestID(RequestID(c))
	c.AbortWithStatusJSON(responseErr.HTTPStatus(), resp)
}
