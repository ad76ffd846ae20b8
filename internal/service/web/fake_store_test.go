package web

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/qiniu/x/xlog"
	"github.com/solutions/job-portal/internal/common/utils"
	errs "github.com/solutions/job-portal/internal/protodef/errors"
	"github.com/solutions/job-portal/internal/protodef/form"
	"github.com/solutions/job-portal/internal/protodef/model"
	"gopkg.in/mgo.v2/bson"
)

// memApplications 内存中的申请，密码以明文保存。
type memApplications struct {
	mu   sync.Mutex
	apps map[string]*model.ApplicationDo
}

func newMemApplications() *memApplications {
	return &memApplications{apps: make(map[string]*model.ApplicationDo)}
}

func (m *memApplications) find(id string) (*model.ApplicationDo, error) {
	if !bson.IsObjectIdHex(id) {
		return nil, errs.ErrInvalidID
	}
	app, ok := m.apps[id]
	if !ok {
		return nil, errs.ErrApplicationNotFound
	}
	return app, nil
}

func (m *memApplications) byUsername(username string) *model.ApplicationDo {
	for _, app := range m.apps {
		if app.Username == username {
			return app
		}
	}
	return nil
}

func (m *memApplications) Create(xl *xlog.Logger, app *model.ApplicationDo) (*model.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.apps {
		if existing.Email == app.Email {
			return nil, errs.ErrDuplicateEmail
		}
	}
	username, password := utils.GenerateCredentials()
	app.ID = bson.NewObjectId().Hex()
	app.Username = username
	app.Password = password
	if app.Status == "" {
		app.Status = model.ApplicationStatusPending
	}
	app.AppliedAt = time.Now()
	app.UpdatedAt = app.AppliedAt
	stored := *app
	m.apps[app.ID] = &stored
	return &model.Credentials{Username: username, Password: password}, nil
}

func (m *memApplications) GetByID(xl *xlog.Logger, id string) (*model.ApplicationDo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, err := m.find(id)
	if err != nil {
		return nil, err
	}
	found := *app
	return &found, nil
}

func (m *memApplications) UpdateProfile(xl *xlog.Logger, id string, args *form.ProfileUpdateForm, documents map[string]string) (*model.ApplicationDo, []string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, err := m.find(id)
	if err != nil {
		return nil, nil, err
	}
	if args.Experience != nil {
		app.Experience = *args.Experience
	}
	if args.PastCompany != nil {
		app.PastCompany = *args.PastCompany
	}
	var replaced []string
	for field, key := range documents {
		if old := app.Documents.Get(field); old != "" {
			replaced = append(replaced, old)
		}
		app.Documents.Set(field, key)
	}
	app.UpdatedAt = time.Now()
	updated := *app
	return &updated, replaced, nil
}

func (m *memApplications) sorted() []model.ApplicationDo {
	apps := make([]model.ApplicationDo, 0, len(m.apps))
	for _, app := range m.apps {
		apps = append(apps, *app)
	}
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].AppliedAt.After(apps[j].AppliedAt)
	})
	return apps
}

func (m *memApplications) List(xl *xlog.Logger, args *form.ApplicationFilterForm) ([]model.ApplicationDo, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	search := strings.ToLower(args.Search)
	matched := []model.ApplicationDo{}
	for _, app := range m.sorted() {
		if args.Status != "" && string(app.Status) != args.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(app.Name), search) &&
			!strings.Contains(strings.ToLower(app.Email), search) &&
			!strings.Contains(app.Phone, search) {
			continue
		}
		matched = append(matched, app)
	}
	start := args.Skip()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + args.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

func (m *memApplications) Stats(xl *xlog.Logger) (*model.StatsResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp := &model.StatsResponse{RecentApplications: []model.RecentApplication{}}
	for i, app := range m.sorted() {
		resp.Stats.Add(app.Status, 1)
		if i < 5 {
			resp.RecentApplications = append(resp.RecentApplications, model.RecentApplication{
				ID: app.ID, Name: app.Name, Email: app.Email, Status: app.Status, AppliedAt: app.AppliedAt,
			})
		}
	}
	return resp, nil
}

func (m *memApplications) ListAll(xl *xlog.Logger) ([]model.ApplicationDo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(), nil
}

func (m *memApplications) UpdateStatus(xl *xlog.Logger, id string, status model.ApplicationStatus) (*model.ApplicationDo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, err := m.find(id)
	if err != nil {
		return nil, err
	}
	before := *app
	app.Status = status
	return &before, nil
}

func (m *memApplications) Schedule(xl *xlog.Logger, id string, slot *form.InterviewSlot) (*model.ApplicationDo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, err := m.find(id)
	if err != nil {
		return nil, err
	}
	before := *app
	at := slot.At
	app.Status = model.ApplicationStatusScheduled
	app.InterviewDate = &at
	app.InterviewTime = slot.Time
	app.IsInstantInterview = slot.Instant
	return &before, nil
}

func (m *memApplications) Delete(xl *xlog.Logger, id string) (*model.ApplicationDo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, err := m.find(id)
	if err != nil {
		return nil, err
	}
	delete(m.apps, id)
	return app, nil
}

func (m *memApplications) BulkDelete(xl *xlog.Logger, ids []string) ([]model.ApplicationDo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed []model.ApplicationDo
	for _, id := range ids {
		if app, ok := m.apps[id]; ok {
			removed = append(removed, *app)
			delete(m.apps, id)
		}
	}
	return removed, nil
}

func (m *memApplications) Authenticate(xl *xlog.Logger, username, password string) (*model.ApplicationDo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app := m.byUsername(username)
	if app == nil || app.Password != password {
		return nil, errs.ErrInvalidCredentials
	}
	found := *app
	return &found, nil
}

func (m *memApplications) ChangePassword(xl *xlog.Logger, username, oldPassword, newPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app := m.byUsername(username)
	if app == nil {
		return errs.ErrUserNotFound
	}
	if app.Password != oldPassword {
		return errs.ErrWrongOldPassword
	}
	app.Password = newPassword
	return nil
}

func (m *memApplications) ChangeUsername(xl *xlog.Logger, currentUsername, newUsername, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app := m.byUsername(currentUsername)
	if app == nil {
		return errs.ErrUserNotFound
	}
	if app.Password != password {
		return errs.ErrWrongPassword
	}
	if m.byUsername(newUsername) != nil {
		return errs.ErrUsernameTaken
	}
	app.Username = newUsername
	return nil
}

func (m *memApplications) DocumentKeys(xl *xlog.Logger) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make(map[string]bool)
	for _, app := range m.apps {
		for _, key := range app.Documents.Keys() {
			keys[key] = true
		}
	}
	return keys, nil
}

// memPositions 内存中的岗位。
type memPositions struct {
	mu        sync.Mutex
	positions []*model.JobPositionDo
}

func (m *memPositions) add(title string, total, filled int, active bool) *model.JobPositionDo {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &model.JobPositionDo{
		ID:              bson.NewObjectId().Hex(),
		Title:           title,
		Description:     title + " role",
		Requirements:    []string{"Go"},
		TotalPositions:  total,
		FilledPositions: filled,
		IsActive:        active,
		CreatedAt:       time.Now().Add(time.Duration(len(m.positions)) * time.Second),
	}
	m.positions = append(m.positions, p)
	return p
}

func (m *memPositions) byTitle(title string) *model.JobPositionDo {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.positions {
		if p.Title == title {
			found := *p
			return &found
		}
	}
	return nil
}

func (m *memPositions) list(open bool) []model.JobPositionDo {
	var list []model.JobPositionDo
	for i := len(m.positions) - 1; i >= 0; i-- {
		p := *m.positions[i]
		if open && !p.Open() {
			continue
		}
		list = append(list, *p.Fill())
	}
	return list
}

func (m *memPositions) OpenTitles(xl *xlog.Logger) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var titles []string
	for _, p := range m.list(true) {
		titles = append(titles, p.Title)
	}
	return titles, nil
}

func (m *memPositions) ListOpen(xl *xlog.Logger) ([]model.JobPositionDo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(true), nil
}

func (m *memPositions) ListAll(xl *xlog.Logger) ([]model.JobPositionDo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(false), nil
}

func (m *memPositions) Create(xl *xlog.Logger, position *model.JobPositionDo) (*model.JobPositionDo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	position.ID = bson.NewObjectId().Hex()
	position.CreatedAt = time.Now()
	position.ColorScheme = model.JobColorSchemes[0]
	stored := *position
	m.positions = append(m.positions, &stored)
	return position.Fill(), nil
}

func (m *memPositions) Update(xl *xlog.Logger, id string, set bson.M) (*model.JobPositionDo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.positions {
		if p.ID != id {
			continue
		}
		for key, value := range set {
			switch key {
			case "title":
				p.Title = value.(string)
			case "description":
				p.Description = value.(string)
			case "icon":
				p.Icon = value.(string)
			case "colorScheme":
				p.ColorScheme = value.(string)
			case "requirements":
				p.Requirements = value.([]string)
			case "totalPositions":
				p.TotalPositions = value.(int)
			case "isActive":
				p.IsActive = value.(bool)
			case "updatedAt":
				p.UpdatedAt = value.(time.Time)
			}
		}
		updated := *p
		return updated.Fill(), nil
	}
	return nil, errs.ErrJobPositionNotFound
}

func (m *memPositions) Delete(xl *xlog.Logger, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.positions {
		if p.ID == id {
			m.positions = append(m.positions[:i], m.positions[i+1:]...)
			return nil
		}
	}
	return errs.ErrJobPositionNotFound
}

func (m *memPositions) Reserve(xl *xlog.Logger, title string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.positions {
		if p.Title == title && p.FilledPositions < p.TotalPositions {
			p.FilledPositions++
			return true, nil
		}
	}
	return false, nil
}

func (m *memPositions) Release(xl *xlog.Logger, title string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.positions {
		if p.Title == title && p.FilledPositions > 0 {
			p.FilledPositions--
			return true, nil
		}
	}
	return false, nil
}

// memAdmins 只有一个管理员。
type memAdmins struct {
	username string
	password string
}

func (m *memAdmins) Authenticate(xl *xlog.Logger, username, password string) (*model.AdminDo, error) {
	if username != m.username || password != m.password {
		return nil, errs.ErrInvalidAdminCreds
	}
	return &model.AdminDo{ID: "admin-1", Username: m.username, Role: model.AdminRole}, nil
}

func (m *memAdmins) ChangePassword(xl *xlog.Logger, username, oldPassword, newPassword string) error {
	if username != m.username {
		return errs.ErrAdminNotFound
	}
	if oldPassword != m.password {
		return errs.ErrWrongOldPassword
	}
	m.password = newPassword
	return nil
}
