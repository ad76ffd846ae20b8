package db

import (
	"time"

	"github.com/pkg/errors"
	"github.com/qiniu/x/xlog"
	"github.com/solutions/job-portal/internal/common/utils"
	errs "github.com/solutions/job-portal/internal/protodef/errors"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

const mongoDialTimeout = 10 * time.Second

// dialMongo 连接 mongo，URI 中未指定数据库时使用 conf.Database。
func dialMongo(conf utils.MongoConfig, xl *xlog.Logger) (*mgo.Session, *mgo.Database, error) {
	info, err := mgo.ParseURL(conf.URI)
	if err != nil {
		xl.Errorf("invalid mongo uri %s, error %v", conf.URI, err)
		return nil, nil, errors.Wrap(err, "parse mongo uri")
	}
	if info.Database == "" {
		info.Database = conf.Database
	}
	if info.Timeout == 0 {
		info.Timeout = mongoDialTimeout
	}
	session, err := mgo.DialWithInfo(info)
	if err != nil {
		xl.Errorf("failed to create mongo client, error %v", err)
		return nil, nil, errors.Wrap(err, "dial mongo")
	}
	session.SetMode(mgo.Monotonic, true)
	return session, session.DB(info.Database), nil
}

// objectID 校验并返回 ID，非法 ID 与记录不存在同样处理。
func objectID(id string) (string, error) {
	if !bson.IsObjectIdHex(id) {
		return "", errs.ErrInvalidID
	}
	return id, nil
}

// newID 生成新记录的ID。
func newID() string {
	return bson.NewObjectId().Hex()
}

// PasswordCost bcrypt 计算强度。
const PasswordCost = bcrypt.DefaultCost

func hashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hashed), nil
}

func checkPassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
