package db

import (
	"github.com/pkg/errors"
	"github.com/qiniu/x/xlog"
	"github.com/solutions/job-portal/internal/common/utils"
	errs "github.com/solutions/job-portal/internal/protodef/errors"
	"github.com/solutions/job-portal/internal/protodef/model"
	"github.com/solutions/job-portal/internal/service/db/dao"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

// AdminService 管理员账号的登录与修改密码。
type AdminService struct {
	mongoClient *mgo.Session
	adminColl   *mgo.Collection
	xl          *xlog.Logger
}

func NewAdminService(conf utils.MongoConfig, xl *xlog.Logger) (*AdminService, error) {
	if xl == nil {
		xl = xlog.New("job-portal-admin-db")
	}
	session, database, err := dialMongo(conf, xl)
	if err != nil {
		return nil, err
	}
	coll := database.C(dao.CollectionAdmin)
	err = coll.EnsureIndex(mgo.Index{Key: []string{"username"}, Unique: true, Background: true})
	if err != nil {
		xl.Errorf("failed to ensure admin index, error %v", err)
		session.Close()
		return nil, errors.Wrap(err, "ensure admin index")
	}
	return &AdminService{
		mongoClient: session,
		adminColl:   coll,
		xl:          xl,
	}, nil
}

func (s *AdminService) Close() {
	s.mongoClient.Close()
}

func (s *AdminService) getByUsername(xl *xlog.Logger, username string) (*model.AdminDo, error) {
	admin := model.AdminDo{}
	err := s.adminColl.Find(bson.M{"username": username}).One(&admin)
	if err != nil {
		if err == mgo.ErrNotFound {
			xl.Infof("no such admin %s", username)
			return nil, errs.ErrAdminNotFound
		}
		xl.Errorf("failed to get admin %s, error %v", username, err)
		return nil, errors.Wrap(err, "find admin")
	}
	return &admin, nil
}

// Authenticate 校验管理员登录名与密码。
func (s *AdminService) Authenticate(xl *xlog.Logger, username, password string) (*model.AdminDo, error) {
	if xl == nil {
		xl = s.xl
	}
	admin, err := s.getByUsername(xl, username)
	if err != nil {
		if err == errs.ErrAdminNotFound {
			return nil, errs.ErrInvalidAdminCreds
		}
		return nil, err
	}
	if !checkPassword(admin.Password, password) {
		return nil, errs.ErrInvalidAdminCreds
	}
	return admin, nil
}

// ChangePassword 校验旧密码后修改管理员密码。
func (s *AdminService) ChangePassword(xl *xlog.Logger, username, oldPassword, newPassword string) error {
	if xl == nil {
		xl = s.xl
	}
	admin, err := s.getByUsername(xl, username)
	if err != nil {
		return err
	}
	if !checkPassword(admin.Password, oldPassword) {
		return errs.ErrWrongOldPassword
	}
	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err = s.adminColl.UpdateId(admin.ID, bson.M{"$set": bson.M{"password": hashed}}); err != nil {
		xl.Errorf("failed to update password of admin %s, error %v", username, err)
		return errors.Wrap(err, "update admin password")
	}
	return nil
}

// EnsureAdmin 管理员不存在时创建，已存在时不做修改。
func (s *AdminService) EnsureAdmin(xl *xlog.Logger, username, password string) (created bool, err error) {
	if xl == nil {
		xl = s.xl
	}
	_, err = s.getByUsername(xl, username)
	if err == nil {
		return false, nil
	}
	if err != errs.ErrAdminNotFound {
		return false, err
	}
	hashed, err := hashPassword(password)
	if err != nil {
		return false, err
	}
	err = s.adminColl.Insert(&model.AdminDo{
		ID:       newID(),
		Username: username,
		Password: hashed,
		Role:     model.AdminRole,
	})
	if err != nil {
		if mgo.IsDup(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "insert admin")
	}
	xl.Infof("admin %s created", username)
	return true, nil
}
