package db

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/qiniu/x/xlog"
	errs "github.com/solutions/job-portal/internal/protodef/errors"
	"github.com/solutions/job-portal/internal/protodef/form"
	"github.com/solutions/job-portal/internal/protodef/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

func TestListQuery(t *testing.T) {
	q := ListQuery(&form.ApplicationFilterForm{})
	assert.Empty(t, q)

	q = ListQuery(&form.ApplicationFilterForm{Status: "Accepted", Search: "a.b+c"})
	assert.Equal(t, "Accepted", q["status"])
	or, ok := q["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 3)
	re := or[0]["name"].(bson.RegEx)
	assert.Equal(t, `a\.b\+c`, re.Pattern)
	assert.Equal(t, "i", re.Options)
	assert.Contains(t, or[1], "email")
	assert.Contains(t, or[2], "phone")
}

func TestPasswordHash(t *testing.T) {
	hashed, err := hashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hashed)
	assert.True(t, checkPassword(hashed, "s3cret"))
	assert.False(t, checkPassword(hashed, "S3cret"))
	assert.False(t, checkPassword("not-a-hash", "s3cret"))
}

func TestObjectID(t *testing.T) {
	id := newID()
	got, err := objectID(id)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = objectID("123")
	assert.Equal(t, errs.ErrInvalidID, err)
}

func dupKey(index string) error {
	return &mgo.LastError{Code: 11000, Err: "E11000 duplicate key error index: job-portal.applications.$" + index + " dup key"}
}

func TestInsertWithCredentialsRetries(t *testing.T) {
	xl := xlog.New("test")
	var usernames []string
	creds, err := insertWithCredentials(xl, &model.ApplicationDo{Email: "jane@example.com"}, func(app *model.ApplicationDo) error {
		usernames = append(usernames, app.Username)
		if len(usernames) == 1 {
			return dupKey("username_1")
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, usernames, 2)
	assert.Equal(t, usernames[1], creds.Username)
	assert.NotEmpty(t, creds.Password)
}

func TestInsertWithCredentialsExhausted(t *testing.T) {
	attempts := 0
	_, err := insertWithCredentials(xlog.New("test"), &model.ApplicationDo{}, func(*model.ApplicationDo) error {
		attempts++
		return dupKey("username_1")
	})
	require.Error(t, err)
	assert.Equal(t, credentialRetry, attempts)
	assert.NotEqual(t, errs.ErrUsernameTaken, errors.Cause(err))
	_, isServerErr := errors.Cause(err).(*errs.ServerError)
	assert.False(t, isServerErr)
}

func TestInsertWithCredentialsDuplicateEmail(t *testing.T) {
	_, err := insertWithCredentials(xlog.New("test"), &model.ApplicationDo{}, func(*model.ApplicationDo) error {
		return dupKey("email_1")
	})
	assert.Equal(t, errs.ErrDuplicateEmail, err)

	_, err = insertWithCredentials(xlog.New("test"), &model.ApplicationDo{}, func(*model.ApplicationDo) error {
		return errors.New("connection reset")
	})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "insert application"))
}

func TestProfileUpdate(t *testing.T) {
	app := &model.ApplicationDo{Documents: model.Documents{Resume: "resume-old.pdf"}}

	set, replaced := profileUpdate(app, &form.ProfileUpdateForm{}, nil)
	assert.Nil(t, set)
	assert.Nil(t, replaced)
	set, _ = profileUpdate(app, nil, map[string]string{})
	assert.Nil(t, set)

	company := "Acme"
	set, replaced = profileUpdate(app, &form.ProfileUpdateForm{PastCompany: &company}, nil)
	assert.Equal(t, "Acme", set["pastCompany"])
	assert.NotContains(t, set, "experience")
	assert.Contains(t, set, "updatedAt")
	assert.Empty(t, replaced)

	set, replaced = profileUpdate(app, nil, map[string]string{model.DocumentResume: "resume-new.pdf"})
	assert.Equal(t, "resume-new.pdf", set["documents."+model.DocumentResume])
	assert.Equal(t, []string{"resume-old.pdf"}, replaced)

	_, replaced = profileUpdate(app, nil, map[string]string{model.DocumentResume: "resume-old.pdf"})
	assert.Empty(t, replaced)
}

func TestStatsPipeline(t *testing.T) {
	pipeline := statsPipeline()
	require.Len(t, pipeline, 1)
	group := pipeline[0]["$group"].(bson.M)
	assert.Equal(t, "$status", group["_id"])
	assert.Equal(t, bson.M{"$sum": 1}, group["count"])
}

func TestIDsQuery(t *testing.T) {
	q := idsQuery([]string{"a", "b"})
	assert.Equal(t, bson.M{"_id": bson.M{"$in": []string{"a", "b"}}}, q)
}
