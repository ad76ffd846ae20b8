package cloud

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/qiniu/x/xlog"
	"github.com/solutions/job-portal/internal/common/utils"
)

var (
	defaultLogger = xlog.New("default storage logger")
)

// LocalURLPrefix 本地存储的文件通过该路径对外访问。
const LocalURLPrefix = "/uploads"

// StoredObject 存储中的一个文件。
type StoredObject struct {
	Key     string
	ModTime time.Time
}

// DocumentStorage 申请材料的存储。
type DocumentStorage interface {
	Save(xl *xlog.Logger, key string, data []byte) error
	// Remove 删除文件，文件不存在不视为错误。
	Remove(xl *xlog.Logger, key string) error
	URL(key string) string
	List(xl *xlog.Logger) ([]StoredObject, error)
}

// NewDocumentStorage 按配置创建存储。
func NewDocumentStorage(conf *utils.UploadConfig) (DocumentStorage, error) {
	switch conf.Provider {
	case "", utils.UploadProviderLocal:
		return NewLocalStorage(conf.Dir)
	case utils.UploadProviderQiniu:
		if conf.Qiniu == nil {
			return nil, errors.New("qiniu storage selected but not configured")
		}
		return NewQiniuStorage(*conf.Qiniu), nil
	}
	return nil, errors.Errorf("unknown upload provider %q", conf.Provider)
}

// LocalStorage 保存在本地目录。
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "create upload dir %s", dir)
	}
	return &LocalStorage{dir: dir}, nil
}

// Dir 存储目录。
func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", errors.Errorf("invalid file key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}

func (s *LocalStorage) Save(xl *xlog.Logger, key string, data []byte) error {
	if xl == nil {
		xl = defaultLogger
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err = os.WriteFile(p, data, 0644); err != nil {
		xl.Errorf("failed to write %s, error %v", p, err)
		return errors.Wrapf(err, "write %s", key)
	}
	return nil
}

func (s *LocalStorage) Remove(xl *xlog.Logger, key string) error {
	if xl == nil {
		xl = defaultLogger
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if err != nil && !os.IsNotExist(err) {
		xl.Errorf("failed to remove %s, error %v", p, err)
		return errors.Wrapf(err, "remove %s", key)
	}
	return nil
}

func (s *LocalStorage) URL(key string) string {
	return LocalURLPrefix + "/" + key
}

func (s *LocalStorage) List(xl *xlog.Logger) ([]StoredObject, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read dir %s", s.dir)
	}
	objects := make([]StoredObject, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		objects = append(objects, StoredObject{Key: entry.Name(), ModTime: info.ModTime()})
	}
	return objects, nil
}
