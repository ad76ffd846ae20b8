package cloud

import (
	"bytes"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	errs "github.com/solutions/job-portal/internal/protodef/errors"
	"github.com/solutions/job-portal/internal/protodef/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pdfData  = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
	jpegData = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 32)...)
)

type part struct {
	field string
	name  string
	data  []byte
}

func buildForm(t *testing.T, parts ...part) *multipart.Form {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, p := range parts {
		fw, err := w.CreateFormFile(p.field, p.name)
		require.NoError(t, err)
		_, err = fw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	return form
}

func uploadErr(t *testing.T, err error) *errs.UploadError {
	t.Helper()
	require.Error(t, err)
	ue, ok := err.(*errs.UploadError)
	require.True(t, ok, "unexpected error %v", err)
	return ue
}

func TestCollectAcceptsDocuments(t *testing.T) {
	policy := UploadPolicy{MaxFileSize: 5 << 20}
	files, err := policy.Collect(buildForm(t,
		part{model.DocumentResume, "cv.pdf", pdfData},
		part{model.DocumentAadharCard, "id.jpg", jpegData},
	))
	require.NoError(t, err)
	require.Len(t, files, 2)

	resume := files[model.DocumentResume]
	assert.Equal(t, "application/pdf", resume.MIME)
	assert.True(t, strings.HasPrefix(resume.Key, "resume-"))
	assert.True(t, IsDocumentKey(resume.Key), resume.Key)
	assert.True(t, IsDocumentKey(files[model.DocumentAadharCard].Key))
}

func TestCollectRejects(t *testing.T) {
	policy := UploadPolicy{MaxFileSize: 5 << 20}

	_, err := policy.Collect(buildForm(t, part{model.DocumentResume, "cv.jpg", jpegData}))
	assert.Equal(t, "Resume must be a PDF file", uploadErr(t, err).Message)

	_, err = policy.Collect(buildForm(t, part{model.DocumentTenthMarksheet, "m.txt", []byte("plain text here")}))
	assert.Equal(t, "File must be PDF or JPG", uploadErr(t, err).Message)

	_, err = policy.Collect(buildForm(t, part{"photo", "p.jpg", jpegData}))
	assert.Equal(t, "Unexpected file field", uploadErr(t, err).Message)

	_, err = policy.Collect(buildForm(t,
		part{model.DocumentResume, "a.pdf", pdfData},
		part{model.DocumentResume, "b.pdf", pdfData},
	))
	assert.Equal(t, "Too many files uploaded", uploadErr(t, err).Message)

	small := UploadPolicy{MaxFileSize: 1 << 20}
	big := append(append([]byte{}, pdfData...), make([]byte, 1<<20)...)
	_, err = small.Collect(buildForm(t, part{model.DocumentResume, "big.pdf", big}))
	assert.Equal(t, "File too large. Maximum size is 1MB", uploadErr(t, err).Message)
}

func TestLocalStorage(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key := NewDocumentKey(model.DocumentResume, ".pdf")
	require.NoError(t, s.Save(nil, key, pdfData))
	assert.Equal(t, "/uploads/"+key, s.URL(key))

	objects, err := s.List(nil)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, key, objects[0].Key)
	assert.WithinDuration(t, time.Now(), objects[0].ModTime, time.Minute)

	require.NoError(t, s.Remove(nil, key))
	require.NoError(t, s.Remove(nil, key), "removing a missing file is not an error")
	objects, err = s.List(nil)
	require.NoError(t, err)
	assert.Empty(t, objects)

	assert.Error(t, s.Save(nil, "../escape.pdf", pdfData))
}

func TestSaveAllAndDocumentURLs(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	files := map[string]*UploadedFile{
		model.DocumentResume: {Field: model.DocumentResume, Key: NewDocumentKey(model.DocumentResume, "pdf"), Data: pdfData},
	}
	saved, err := SaveAll(nil, s, files)
	require.NoError(t, err)
	key := saved[model.DocumentResume]
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	docs := model.Documents{Resume: key}
	urls := DocumentURLs(s, docs)
	assert.Equal(t, map[string]string{model.DocumentResume: "/uploads/" + key}, urls)

	RemoveAll(nil, s, []string{key, ""})
	objects, err := s.List(nil)
	require.NoError(t, err)
	assert.Empty(t, objects)
}
