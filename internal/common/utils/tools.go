package utils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"math/big"
	"strings"
	"time"
)

const AlphaNum = "0123456789abcdefghijklmnopqrstuvwxyz"

const (
	usernamePrefix    = "user"
	usernameRandomLen = 6
	passwordLen       = 8
)

// RandomString 生成指定长度的 [0-9a-z] 随机串。
func RandomString(n int) string {
	stringBuilder := strings.Builder{}
	max := big.NewInt(int64(len(AlphaNum)))
	for i := 0; i < n; i++ {
		index, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		stringBuilder.WriteByte(AlphaNum[index.Int64()])
	}
	return stringBuilder.String()
}

// GenerateID utils func: for 12-digit random id generation
func GenerateID() string {
	return RandomString(12)
}

// GenerateCredentials 为新申请生成登录用户名与明文密码，明文密码只返回一次。
func GenerateCredentials() (username, password string) {
	return usernamePrefix + RandomString(usernameRandomLen), RandomString(passwordLen)
}

var pid = uint32(time.Now().UnixNano() % 4294967291)

// NewReqID for generate req id
func NewReqID() string {
	var b [12]byte
	binary.LittleEndian.PutUint32(b[:], pid)
	binary.LittleEndian.PutUint64(b[4:], uint64(time.Now().UnixNano()))
	return base64.URLEncoding.EncodeToString(b[:])
}
