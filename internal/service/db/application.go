package db

import (
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/qiniu/x/xlog"
	"github.com/solutions/job-portal/internal/common/utils"
	errs "github.com/solutions/job-portal/internal/protodef/errors"
	"github.com/solutions/job-portal/internal/protodef/form"
	"github.com/solutions/job-portal/internal/protodef/model"
	"github.com/solutions/job-portal/internal/service/db/dao"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

// 生成的用户名冲突时的重试次数。
const credentialRetry = 5

// recentApplicationCount 统计页展示的最近申请数量。
const recentApplicationCount = 5

// ApplicationService 应聘申请的保存、查询与管理，申请同时是应聘者的登录账号。
type ApplicationService struct {
	mongoClient *mgo.Session
	appColl     *mgo.Collection
	xl          *xlog.Logger
}

func NewApplicationService(conf utils.MongoConfig, xl *xlog.Logger) (*ApplicationService, error) {
	if xl == nil {
		xl = xlog.New("job-portal-application-db")
	}
	session, database, err := dialMongo(conf, xl)
	if err != nil {
		return nil, err
	}
	s := &ApplicationService{
		mongoClient: session,
		appColl:     database.C(dao.CollectionApplication),
		xl:          xl,
	}
	if err = s.ensureIndexes(); err != nil {
		xl.Errorf("failed to ensure application indexes, error %v", err)
		session.Close()
		return nil, err
	}
	return s, nil
}

func (s *ApplicationService) ensureIndexes() error {
	for _, key := range []string{"email", "username"} {
		err := s.appColl.EnsureIndex(mgo.Index{Key: []string{key}, Unique: true, Background: true})
		if err != nil {
			return errors.Wrapf(err, "ensure index %s", key)
		}
	}
	return s.appColl.EnsureIndex(mgo.Index{Key: []string{"-appliedAt"}, Background: true})
}

func (s *ApplicationService) Close() {
	s.mongoClient.Close()
}

// Create 保存新申请并生成登录账号，返回只出现这一次的明文密码。
func (s *ApplicationService) Create(xl *xlog.Logger, app *model.ApplicationDo) (*model.Credentials, error) {
	if xl == nil {
		xl = s.xl
	}
	n, err := s.appColl.Find(bson.M{"email": app.Email}).Count()
	if err != nil {
		xl.Errorf("failed to check email %s, error %v", app.Email, err)
		return nil, errors.Wrap(err, "count applications by email")
	}
	if n > 0 {
		return nil, errs.ErrDuplicateEmail
	}

	now := time.Now()
	app.ID = newID()
	app.AppliedAt = now
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = model.ApplicationStatusPending
	}
	return insertWithCredentials(xl, app, func(doc *model.ApplicationDo) error {
		return s.appColl.Insert(doc)
	})
}

// insertWithCredentials 生成账号并写入，用户名冲突时换一个重试。
func insertWithCredentials(xl *xlog.Logger, app *model.ApplicationDo, insert func(*model.ApplicationDo) error) (*model.Credentials, error) {
	for i := 0; i < credentialRetry; i++ {
		username, password := utils.GenerateCredentials()
		hashed, err := hashPassword(password)
		if err != nil {
			return nil, err
		}
		app.Username = username
		app.Password = hashed
		err = insert(app)
		if err == nil {
			xl.Infof("application %s created for %s", app.ID, app.Email)
			return &model.Credentials{Username: username, Password: password}, nil
		}
		if !mgo.IsDup(err) {
			xl.Errorf("failed to insert application, error %v", err)
			return nil, errors.Wrap(err, "insert application")
		}
		if strings.Contains(err.Error(), "email") {
			return nil, errs.ErrDuplicateEmail
		}
		xl.Infof("generated username %s already taken, retrying", username)
	}
	xl.Errorf("no unique username after %d attempts for %s", credentialRetry, app.Email)
	return nil, errors.Errorf("generate unique username: %d attempts collided", credentialRetry)
}

// GetByID 使用ID查找申请。
func (s *ApplicationService) GetByID(xl *xlog.Logger, id string) (*model.ApplicationDo, error) {
	if xl == nil {
		xl = s.xl
	}
	id, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findOne(xl, bson.M{"_id": id})
}

// GetByUsername 使用登录名查找申请。
func (s *ApplicationService) GetByUsername(xl *xlog.Logger, username string) (*model.ApplicationDo, error) {
	if xl == nil {
		xl = s.xl
	}
	return s.findOne(xl, bson.M{"username": username})
}

func (s *ApplicationService) findOne(xl *xlog.Logger, query bson.M) (*model.ApplicationDo, error) {
	app := model.ApplicationDo{}
	err := s.appColl.Find(query).One(&app)
	if err != nil {
		if err == mgo.ErrNotFound {
			xl.Infof("no such application for %v", query)
			return nil, errs.ErrApplicationNotFound
		}
		xl.Errorf("failed to get application, error %v", err)
		return nil, errors.Wrap(err, "find application")
	}
	return &app, nil
}

// Authenticate 校验应聘者登录名与密码，用户名不存在与密码错误返回同一错误。
func (s *ApplicationService) Authenticate(xl *xlog.Logger, username, password string) (*model.ApplicationDo, error) {
	app, err := s.GetByUsername(xl, username)
	if err != nil {
		if err == errs.ErrApplicationNotFound {
			return nil, errs.ErrInvalidCredentials
		}
		return nil, err
	}
	if !checkPassword(app.Password, password) {
		return nil, errs.ErrInvalidCredentials
	}
	return app, nil
}

// ChangePassword 校验旧密码后修改密码。
func (s *ApplicationService) ChangePassword(xl *xlog.Logger, username, oldPassword, newPassword string) error {
	if xl == nil {
		xl = s.xl
	}
	app, err := s.GetByUsername(xl, username)
	if err != nil {
		if err == errs.ErrApplicationNotFound {
			return errs.ErrUserNotFound
		}
		return err
	}
	if !checkPassword(app.Password, oldPassword) {
		return errs.ErrWrongOldPassword
	}
	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	err = s.appColl.UpdateId(app.ID, bson.M{"$set": bson.M{"password": hashed, "updatedAt": time.Now()}})
	if err != nil {
		xl.Errorf("failed to update password of %s, error %v", username, err)
		return errors.Wrap(err, "update password")
	}
	return nil
}

// ChangeUsername 校验密码后修改登录名。
func (s *ApplicationService) ChangeUsername(xl *xlog.Logger, currentUsername, newUsername, password string) error {
	if xl == nil {
		xl = s.xl
	}
	app, err := s.GetByUsername(xl, currentUsername)
	if err != nil {
		if err == errs.ErrApplicationNotFound {
			return errs.ErrUserNotFound
		}
		return err
	}
	if !checkPassword(app.Password, password) {
		return errs.ErrWrongPassword
	}
	if newUsername == app.Username {
		return nil
	}
	n, err := s.appColl.Find(bson.M{"username": newUsername, "_id": bson.M{"$ne": app.ID}}).Count()
	if err != nil {
		return errors.Wrap(err, "count applications by username")
	}
	if n > 0 {
		return errs.ErrUsernameTaken
	}
	err = s.appColl.UpdateId(app.ID, bson.M{"$set": bson.M{"username": newUsername, "updatedAt": time.Now()}})
	if err != nil {
		if mgo.IsDup(err) {
			return errs.ErrUsernameTaken
		}
		xl.Errorf("failed to update username of %s, error %v", currentUsername, err)
		return errors.Wrap(err, "update username")
	}
	return nil
}

// UpdateProfile 更新应聘者可修改的字段与材料，返回更新后的申请以及被替换掉的旧文件。
func (s *ApplicationService) UpdateProfile(xl *xlog.Logger, id string, args *form.ProfileUpdateForm, documents map[string]string) (*model.ApplicationDo, []string, error) {
	if xl == nil {
		xl = s.xl
	}
	app, err := s.GetByID(xl, id)
	if err != nil {
		return nil, nil, err
	}
	set, replaced := profileUpdate(app, args, documents)
	if set == nil {
		return app, nil, nil
	}
	updated := model.ApplicationDo{}
	_, err = s.appColl.FindId(app.ID).Apply(mgo.Change{Update: bson.M{"$set": set}, ReturnNew: true}, &updated)
	if err != nil {
		if err == mgo.ErrNotFound {
			return nil, nil, errs.ErrApplicationNotFound
		}
		xl.Errorf("failed to update profile %s, error %v", id, err)
		return nil, nil, errors.Wrap(err, "update profile")
	}
	return &updated, replaced, nil
}

// profileUpdate 生成资料更新的 $set 内容与被替换的旧文件，没有需要更新的字段时返回 nil。
func profileUpdate(app *model.ApplicationDo, args *form.ProfileUpdateForm, documents map[string]string) (bson.M, []string) {
	if (args == nil || args.Empty()) && len(documents) == 0 {
		return nil, nil
	}
	set := bson.M{"updatedAt": time.Now()}
	if args != nil && args.Experience != nil {
		set["experience"] = *args.Experience
	}
	if args != nil && args.PastCompany != nil {
		set["pastCompany"] = *args.PastCompany
	}
	var replaced []string
	for field, key := range documents {
		if old := app.Documents.Get(field); old != "" && old != key {
			replaced = append(replaced, old)
		}
		set["documents."+field] = key
	}
	return set, replaced
}

// List 按条件分页查询，按申请时间倒序。
func (s *ApplicationService) List(xl *xlog.Logger, args *form.ApplicationFilterForm) ([]model.ApplicationDo, int, error) {
	if xl == nil {
		xl = s.xl
	}
	query := ListQuery(args)
	total, err := s.appColl.Find(query).Count()
	if err != nil {
		xl.Errorf("failed to count applications, error %v", err)
		return nil, 0, errors.Wrap(err, "count applications")
	}
	apps := make([]model.ApplicationDo, 0, args.Limit)
	err = s.appColl.Find(query).Sort("-appliedAt").Skip(args.Skip()).Limit(args.Limit).All(&apps)
	if err != nil {
		xl.Errorf("failed to list applications, error %v", err)
		return nil, 0, errors.Wrap(err, "list applications")
	}
	return apps, total, nil
}

// ListQuery 生成列表查询条件，搜索词按字面量不区分大小写匹配姓名、邮箱或电话。
func ListQuery(args *form.ApplicationFilterForm) bson.M {
	query := bson.M{}
	if args.Status != "" {
		query["status"] = args.Status
	}
	if args.Search != "" {
		re := bson.RegEx{Pattern: regexp.QuoteMeta(args.Search), Options: "i"}
		query["$or"] = []bson.M{
			{"name": re},
			{"email": re},
			{"phone": re},
		}
	}
	return query
}

// Stats 各状态数量与最近的申请。
func (s *ApplicationService) Stats(xl *xlog.Logger) (*model.StatsResponse, error) {
	if xl == nil {
		xl = s.xl
	}
	var groups []struct {
		Status model.ApplicationStatus `bson:"_id"`
		Count  int                     `bson:"count"`
	}
	err := s.appColl.Pipe(statsPipeline()).All(&groups)
	if err != nil {
		xl.Errorf("failed to aggregate application stats, error %v", err)
		return nil, errors.Wrap(err, "aggregate stats")
	}
	resp := &model.StatsResponse{RecentApplications: []model.RecentApplication{}}
	for _, g := range groups {
		resp.Stats.Add(g.Status, g.Count)
	}
	err = s.appColl.Find(nil).
		Select(bson.M{"name": 1, "email": 1, "appliedAt": 1, "status": 1}).
		Sort("-appliedAt").Limit(recentApplicationCount).
		All(&resp.RecentApplications)
	if err != nil {
		xl.Errorf("failed to list recent applications, error %v", err)
		return nil, errors.Wrap(err, "recent applications")
	}
	return resp, nil
}

// statsPipeline 按状态分组计数。
func statsPipeline() []bson.M {
	return []bson.M{
		{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
	}
}

func idsQuery(ids []string) bson.M {
	return bson.M{"_id": bson.M{"$in": ids}}
}

// ListAll 导出用，按申请时间倒序返回全部申请。
func (s *ApplicationService) ListAll(xl *xlog.Logger) ([]model.ApplicationDo, error) {
	if xl == nil {
		xl = s.xl
	}
	apps := []model.ApplicationDo{}
	err := s.appColl.Find(nil).Sort("-appliedAt").All(&apps)
	if err != nil {
		xl.Errorf("failed to list all applications, error %v", err)
		return nil, errors.Wrap(err, "list all applications")
	}
	return apps, nil
}

// UpdateStatus 修改状态，返回修改前的申请。
func (s *ApplicationService) UpdateStatus(xl *xlog.Logger, id string, status model.ApplicationStatus) (*model.ApplicationDo, error) {
	return s.modify(xl, id, bson.M{"status": status})
}

// Schedule 安排面试并将状态置为 Scheduled，返回修改前的申请。
func (s *ApplicationService) Schedule(xl *xlog.Logger, id string, slot *form.InterviewSlot) (*model.ApplicationDo, error) {
	return s.modify(xl, id, bson.M{
		"status":             model.ApplicationStatusScheduled,
		"interviewDate":      slot.At,
		"interviewTime":      slot.Time,
		"isInstantInterview": slot.Instant,
	})
}

func (s *ApplicationService) modify(xl *xlog.Logger, id string, set bson.M) (*model.ApplicationDo, error) {
	if xl == nil {
		xl = s.xl
	}
	id, err := objectID(id)
	if err != nil {
		return nil, err
	}
	set["updatedAt"] = time.Now()
	before := model.ApplicationDo{}
	_, err = s.appColl.FindId(id).Apply(mgo.Change{Update: bson.M{"$set": set}}, &before)
	if err != nil {
		if err == mgo.ErrNotFound {
			return nil, errs.ErrApplicationNotFound
		}
		xl.Errorf("failed to update application %s, error %v", id, err)
		return nil, errors.Wrap(err, "update application")
	}
	return &before, nil
}

// Delete 删除申请，返回被删除的记录以便清理材料。
func (s *ApplicationService) Delete(xl *xlog.Logger, id string) (*model.ApplicationDo, error) {
	if xl == nil {
		xl = s.xl
	}
	id, err := objectID(id)
	if err != nil {
		return nil, err
	}
	removed := model.ApplicationDo{}
	_, err = s.appColl.FindId(id).Apply(mgo.Change{Remove: true}, &removed)
	if err != nil {
		if err == mgo.ErrNotFound {
			return nil, errs.ErrApplicationNotFound
		}
		xl.Errorf("failed to delete application %s, error %v", id, err)
		return nil, errors.Wrap(err, "delete application")
	}
	return &removed, nil
}

// BulkDelete 批量删除，返回实际删除的记录。
func (s *ApplicationService) BulkDelete(xl *xlog.Logger, ids []string) ([]model.ApplicationDo, error) {
	if xl == nil {
		xl = s.xl
	}
	for _, id := range ids {
		if _, err := objectID(id); err != nil {
			return nil, err
		}
	}
	apps := []model.ApplicationDo{}
	if err := s.appColl.Find(idsQuery(ids)).All(&apps); err != nil {
		return nil, errors.Wrap(err, "find applications to delete")
	}
	found := make([]string, 0, len(apps))
	for _, app := range apps {
		found = append(found, app.ID)
	}
	info, err := s.appColl.RemoveAll(idsQuery(found))
	if err != nil {
		xl.Errorf("failed to bulk delete applications, error %v", err)
		return nil, errors.Wrap(err, "bulk delete applications")
	}
	if info.Removed != len(apps) {
		xl.Warnf("bulk delete: %d matched, %d removed", len(apps), info.Removed)
	}
	return apps, nil
}

// DocumentKeys 所有申请引用到的文件，供清理任务使用。
func (s *ApplicationService) DocumentKeys(xl *xlog.Logger) (map[string]bool, error) {
	if xl == nil {
		xl = s.xl
	}
	var apps []model.ApplicationDo
	err := s.appColl.Find(nil).Select(bson.M{"documents": 1}).All(&apps)
	if err != nil {
		xl.Errorf("failed to list application documents, error %v", err)
		return nil, errors.Wrap(err, "list documents")
	}
	keys := make(map[string]bool)
	for _, app := range apps {
		for _, key := range app.Documents.Keys() {
			keys[key] = true
		}
	}
	return keys, nil
}
