package utils

import (
	"errors"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
)

// PrincipalType token 持有者类型，用于区分应聘者与管理员。
type PrincipalType string

const (
	PrincipalCandidate PrincipalType = "candidate"
	PrincipalAdmin     PrincipalType = "admin"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// TokenClaims 登录 token 中携带的信息。
type TokenClaims struct {
	ID       string        `json:"id"`
	Username string        `json:"username"`
	Type     PrincipalType `json:"type"`
	jwt.StandardClaims
}

// TokenManager 无状态登录 token 的签发与校验。
type TokenManager struct {
	key []byte
	ttl time.Duration
}

func NewTokenManager(conf JwtConfig) *TokenManager {
	return &TokenManager{
		key: []byte(conf.Key),
		ttl: time.Duration(conf.ExpireHours) * time.Hour,
	}
}

// Sign 签发 HS256 token。
func (m *TokenManager) Sign(id, username string, principal PrincipalType) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		ID:       id,
		Username: username,
		Type:     principal,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(m.ttl).Unix(),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.key)
}

// Parse 校验签名与过期时间，返回 token 中的信息。
func (m *TokenManager) Parse(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.key, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if claims.ID == "" || (claims.Type != PrincipalCandidate && claims.Type != PrincipalAdmin) {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
