package cloud

import (
	"fmt"
	"io"
	"mime/multipart"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/qiniu/x/xlog"
	errs "github.com/solutions/job-portal/internal/protodef/errors"
	"github.com/solutions/job-portal/internal/protodef/model"
)

const (
	mimePDF  = "application/pdf"
	mimeJPEG = "image/jpeg"
)

// documentKeyPattern 由本服务生成的文件名：<字段>-<uuid><扩展名>。
var documentKeyPattern = regexp.MustCompile(`^(tenthMarksheet|twelfthMarksheet|resume|aadharCard)-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.(pdf|jpg)$`)

// IsDocumentKey 是否为上传材料生成的文件名。
func IsDocumentKey(key string) bool {
	return documentKeyPattern.MatchString(key)
}

// UploadedFile 通过校验、等待保存的文件。
type UploadedFile struct {
	Field string
	Key   string
	MIME  string
	Data  []byte
}

// UploadPolicy 上传材料的校验规则。
type UploadPolicy struct {
	MaxFileSize int64
}

func (p UploadPolicy) tooLarge() *errs.UploadError {
	return errs.NewUploadError("", fmt.Sprintf("File too large. Maximum size is %dMB", p.MaxFileSize>>20))
}

// Collect 校验 multipart 中的文件：只允许四个材料字段、每个字段一个文件、简历必须是 PDF，
// 其他材料为 PDF 或 JPEG。文件类型按内容识别。
func (p UploadPolicy) Collect(form *multipart.Form) (map[string]*UploadedFile, error) {
	files := make(map[string]*UploadedFile)
	if form == nil {
		return files, nil
	}
	for field, headers := range form.File {
		if !isDocumentField(field) {
			return nil, errs.NewUploadError(field, "Unexpected file field")
		}
		if len(headers) == 0 {
			continue
		}
		if len(headers) > 1 {
			return nil, errs.NewUploadError(field, "Too many files uploaded")
		}
		header := headers[0]
		if p.MaxFileSize > 0 && header.Size > p.MaxFileSize {
			e := p.tooLarge()
			e.Field = field
			return nil, e
		}
		data, err := p.read(header)
		if err != nil {
			return nil, err
		}
		mime := mimetype.Detect(data)
		if field == model.DocumentResume {
			if !mime.Is(mimePDF) {
				return nil, errs.NewUploadError(field, "Resume must be a PDF file")
			}
		} else if !mime.Is(mimePDF) && !mime.Is(mimeJPEG) {
			return nil, errs.NewUploadError(field, "File must be PDF or JPG")
		}
		files[field] = &UploadedFile{
			Field: field,
			Key:   NewDocumentKey(field, mime.Extension()),
			MIME:  mime.String(),
			Data:  data,
		}
	}
	return files, nil
}

func (p UploadPolicy) read(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "open upload %s", header.Filename)
	}
	defer f.Close()
	var r io.Reader = f
	if p.MaxFileSize > 0 {
		r = io.LimitReader(f, p.MaxFileSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read upload %s", header.Filename)
	}
	if p.MaxFileSize > 0 && int64(len(data)) > p.MaxFileSize {
		return nil, p.tooLarge()
	}
	return data, nil
}

func isDocumentField(field string) bool {
	for _, f := range model.DocumentFields {
		if f == field {
			return true
		}
	}
	return false
}

// NewDocumentKey 生成不重复的文件名。
func NewDocumentKey(field, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return field + "-" + uuid.NewString() + ext
}

// SaveAll 保存全部文件，返回字段到文件名的映射；任一文件保存失败时删除已保存的文件。
func SaveAll(xl *xlog.Logger, s DocumentStorage, files map[string]*UploadedFile) (map[string]string, error) {
	saved := make(map[string]string, len(files))
	for field, file := range files {
		if err := s.Save(xl, file.Key, file.Data); err != nil {
			RemoveAll(xl, s, keysOf(saved))
			return nil, err
		}
		saved[field] = file.Key
	}
	return saved, nil
}

// RemoveAll 尽力删除文件，失败只记录日志。
func RemoveAll(xl *xlog.Logger, s DocumentStorage, keys []string) {
	if xl == nil {
		xl = defaultLogger
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.Remove(xl, key); err != nil {
			xl.Errorf("failed to remove document %s, error %v", key, err)
		}
	}
}

func keysOf(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for _, v := range m {
		keys = append(keys, v)
	}
	return keys
}

// DocumentURLs 材料的访问地址。
func DocumentURLs(s DocumentStorage, docs model.Documents) map[string]string {
	urls := make(map[string]string)
	for _, field := range model.DocumentFields {
		if key := docs.Get(field); key != "" {
			urls[field] = s.URL(key)
		}
	}
	return urls
}
