package db

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/qiniu/x/xlog"
	"github.com/solutions/job-portal/internal/common/utils"
	errs "github.com/solutions/job-portal/internal/protodef/errors"
	"github.com/solutions/job-portal/internal/protodef/model"
	"github.com/solutions/job-portal/internal/service/db/dao"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

// openPositionQuery 开放中且仍有名额的岗位。
var openPositionQuery = bson.M{
	"isActive": true,
	"$expr":    bson.M{"$gt": []string{"$totalPositions", "$filledPositions"}},
}

// JobPositionService 招聘岗位的增删改查与名额计数。
type JobPositionService struct {
	mongoClient  *mgo.Session
	positionColl *mgo.Collection
	xl           *xlog.Logger
}

func NewJobPositionService(conf utils.MongoConfig, xl *xlog.Logger) (*JobPositionService, error) {
	if xl == nil {
		xl = xlog.New("job-portal-position-db")
	}
	session, database, err := dialMongo(conf, xl)
	if err != nil {
		return nil, err
	}
	coll := database.C(dao.CollectionJobPosition)
	err = coll.EnsureIndex(mgo.Index{Key: []string{"isActive", "-createdAt"}, Background: true})
	if err != nil {
		xl.Errorf("failed to ensure job position index, error %v", err)
		session.Close()
		return nil, errors.Wrap(err, "ensure job position index")
	}
	return &JobPositionService{
		mongoClient:  session,
		positionColl: coll,
		xl:           xl,
	}, nil
}

func (s *JobPositionService) Close() {
	s.mongoClient.Close()
}

// ListOpen 开放中且有剩余名额的岗位，按创建时间倒序。
func (s *JobPositionService) ListOpen(xl *xlog.Logger) ([]model.JobPositionDo, error) {
	return s.list(xl, openPositionQuery)
}

// ListAll 全部岗位，按创建时间倒序。
func (s *JobPositionService) ListAll(xl *xlog.Logger) ([]model.JobPositionDo, error) {
	return s.list(xl, nil)
}

func (s *JobPositionService) list(xl *xlog.Logger, query interface{}) ([]model.JobPositionDo, error) {
	if xl == nil {
		xl = s.xl
	}
	positions := []model.JobPositionDo{}
	err := s.positionColl.Find(query).Sort("-createdAt").All(&positions)
	if err != nil {
		xl.Errorf("failed to list job positions, error %v", err)
		return nil, errors.Wrap(err, "list job positions")
	}
	for i := range positions {
		positions[i].Fill()
	}
	return positions, nil
}

// OpenTitles 可申请的岗位名称。
func (s *JobPositionService) OpenTitles(xl *xlog.Logger) ([]string, error) {
	positions, err := s.ListOpen(xl)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(positions))
	for _, p := range positions {
		titles = append(titles, p.Title)
	}
	return titles, nil
}

// Create 新建岗位，配色随机选取。
func (s *JobPositionService) Create(xl *xlog.Logger, position *model.JobPositionDo) (*model.JobPositionDo, error) {
	if xl == nil {
		xl = s.xl
	}
	now := time.Now()
	position.ID = newID()
	position.FilledPositions = 0
	position.CreatedAt = now
	position.UpdatedAt = now
	if position.ColorScheme == "" {
		position.ColorScheme = model.JobColorSchemes[rand.Intn(len(model.JobColorSchemes))]
	}
	if position.Requirements == nil {
		position.Requirements = []string{}
	}
	if err := s.positionColl.Insert(position); err != nil {
		xl.Errorf("failed to insert job position %s, error %v", position.Title, err)
		return nil, errors.Wrap(err, "insert job position")
	}
	return position.Fill(), nil
}

// Update 只更新 set 中给出的字段。
func (s *JobPositionService) Update(xl *xlog.Logger, id string, set bson.M) (*model.JobPositionDo, error) {
	if xl == nil {
		xl = s.xl
	}
	id, err := objectID(id)
	if err != nil {
		return nil, errs.ErrJobPositionNotFound
	}
	updated := model.JobPositionDo{}
	_, err = s.positionColl.FindId(id).Apply(mgo.Change{Update: bson.M{"$set": set}, ReturnNew: true}, &updated)
	if err != nil {
		if err == mgo.ErrNotFound {
			return nil, errs.ErrJobPositionNotFound
		}
		xl.Errorf("failed to update job position %s, error %v", id, err)
		return nil, errors.Wrap(err, "update job position")
	}
	return updated.Fill(), nil
}

// Delete 删除岗位。
func (s *JobPositionService) Delete(xl *xlog.Logger, id string) error {
	if xl == nil {
		xl = s.xl
	}
	id, err := objectID(id)
	if err != nil {
		return errs.ErrJobPositionNotFound
	}
	err = s.positionColl.RemoveId(id)
	if err != nil {
		if err == mgo.ErrNotFound {
			return errs.ErrJobPositionNotFound
		}
		xl.Errorf("failed to delete job position %s, error %v", id, err)
		return errors.Wrap(err, "delete job position")
	}
	return nil
}

// Reserve 占用一个名额，名额已满或岗位不存在时返回 false。
func (s *JobPositionService) Reserve(xl *xlog.Logger, title string) (bool, error) {
	return s.adjustFilled(xl, reserveQuery(title), 1)
}

// Release 释放一个名额，计数已为0时返回 false。
func (s *JobPositionService) Release(xl *xlog.Logger, title string) (bool, error) {
	return s.adjustFilled(xl, releaseQuery(title), -1)
}

// reserveQuery 名额未满的同名岗位，计数在同一次更新中判断，并发占用不会超出总数。
func reserveQuery(title string) bson.M {
	return bson.M{
		"title": title,
		"$expr": bson.M{"$lt": []string{"$filledPositions", "$totalPositions"}},
	}
}

// releaseQuery 计数大于0的同名岗位，计数不会减为负数。
func releaseQuery(title string) bson.M {
	return bson.M{
		"title":           title,
		"filledPositions": bson.M{"$gt": 0},
	}
}

func (s *JobPositionService) adjustFilled(xl *xlog.Logger, query bson.M, delta int) (bool, error) {
	if xl == nil {
		xl = s.xl
	}
	err := s.positionColl.Update(query, bson.M{
		"$inc": bson.M{"filledPositions": delta},
		"$set": bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		if err == mgo.ErrNotFound {
			xl.Infof("no job position matched %v for filled %+d", query["title"], delta)
			return false, nil
		}
		xl.Errorf("failed to adjust filled positions of %v, error %v", query["title"], err)
		return false, errors.Wrap(err, "adjust filled positions")
	}
	return true, nil
}

// ReplaceAll 清空并写入岗位，仅供初始化数据使用。
func (s *JobPositionService) ReplaceAll(xl *xlog.Logger, positions []model.JobPositionDo) (int, error) {
	if xl == nil {
		xl = s.xl
	}
	if _, err := s.positionColl.RemoveAll(nil); err != nil {
		return 0, errors.Wrap(err, "clear job positions")
	}
	for i := range positions {
		if _, err := s.Create(xl, &positions[i]); err != nil {
			return i, err
		}
	}
	return len(positions), nil
}

// legacyColorSchemes 早期岗位没有配色时按标题补全。
var legacyColorSchemes = map[string]string{
	"Cyber Security":    "red",
	"Web Dev":           "blue",
	"App Dev":           "green",
	"Full Stack":        "purple",
	"Digital Marketing": "pink",
	"AI & Automation":   "indigo",
	"Sales Executive":   "yellow",
}

// BackfillStyles 为缺少配色或图标的岗位补全，返回更新的数量。
func (s *JobPositionService) BackfillStyles(xl *xlog.Logger) (int, error) {
	if xl == nil {
		xl = s.xl
	}
	var positions []model.JobPositionDo
	err := s.positionColl.Find(bson.M{"$or": []bson.M{
		{"colorScheme": bson.M{"$exists": false}},
		{"colorScheme": ""},
		{"icon": bson.M{"$exists": false}},
		{"icon": ""},
	}}).All(&positions)
	if err != nil {
		return 0, errors.Wrap(err, "find unstyled job positions")
	}
	for i, p := range positions {
		set := bson.M{"updatedAt": time.Now()}
		if p.ColorScheme == "" {
			color, ok := legacyColorSchemes[p.Title]
			if !ok {
				color = model.JobColorSchemes[rand.Intn(len(model.JobColorSchemes))]
			}
			set["colorScheme"] = color
		}
		if p.Icon == "" {
			set["icon"] = p.Fill().Icon
		}
		if err = s.positionColl.UpdateId(p.ID, bson.M{"$set": set}); err != nil {
			return i, errors.Wrapf(err, "backfill job position %s", p.Title)
		}
		xl.Infof("job position %s backfilled with %v", p.Title, set)
	}
	return len(positions), nil
}
