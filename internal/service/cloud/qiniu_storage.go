package cloud

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/qiniu/go-sdk/v7/auth/qbox"
	"github.com/qiniu/go-sdk/v7/storage"
	"github.com/qiniu/x/xlog"
	"github.com/solutions/job-portal/internal/common/utils"
	errs "github.com/solutions/job-portal/internal/protodef/errors"
)

const qiniuListLimit = 1000

// QiniuStorage 保存在七牛对象存储。
type QiniuStorage struct {
	conf          utils.QiniuStorageConfig
	mac           *qbox.Mac
	cfg           *storage.Config
	bucketManager *storage.BucketManager
}

func qiniuZone(region string) *storage.Zone {
	switch region {
	case "z0":
		return &storage.ZoneHuadong
	case "z1":
		return &storage.ZoneHuabei
	case "na0":
		return &storage.ZoneBeimei
	case "as0":
		return &storage.ZoneXinjiapo
	default:
		return &storage.ZoneHuanan
	}
}

func NewQiniuStorage(conf utils.QiniuStorageConfig) *QiniuStorage {
	mac := qbox.NewMac(conf.KeyPair.AccessKey, conf.KeyPair.SecretKey)
	cfg := &storage.Config{
		// 空间对应的机房
		Zone:          qiniuZone(conf.Region),
		UseHTTPS:      conf.UseHTTPS,
		UseCdnDomains: false,
	}
	return &QiniuStorage{
		conf:          conf,
		mac:           mac,
		cfg:           cfg,
		bucketManager: storage.NewBucketManager(mac, cfg),
	}
}

func (s *QiniuStorage) Save(xl *xlog.Logger, key string, data []byte) error {
	if xl == nil {
		xl = defaultLogger
	}
	putPolicy := storage.PutPolicy{
		Scope: s.conf.Bucket + ":" + key,
	}
	upToken := putPolicy.UploadToken(s.mac)
	formUploader := storage.NewFormUploader(s.cfg)
	ret := storage.PutRet{}
	err := formUploader.Put(context.Background(), &ret, upToken, key, bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		xl.Errorf("file %s uploading failed err:%v", key, err)
		return errors.Wrapf(errs.ErrStorageFail, "upload %s: %v", key, err)
	}
	xl.Infof("file %s uploaded, hash %s", ret.Key, ret.Hash)
	return nil
}

func (s *QiniuStorage) Remove(xl *xlog.Logger, key string) error {
	if xl == nil {
		xl = defaultLogger
	}
	err := s.bucketManager.Delete(s.conf.Bucket, key)
	if err != nil {
		// 612: 文件不存在。
		if strings.Contains(err.Error(), "no such file") {
			return nil
		}
		xl.Errorf("failed to delete %s from bucket %s, error %v", key, s.conf.Bucket, err)
		return errors.Wrapf(err, "delete %s", key)
	}
	return nil
}

func (s *QiniuStorage) URL(key string) string {
	return strings.TrimRight(s.conf.URLPrefix, "/") + "/" + url.PathEscape(key)
}

func (s *QiniuStorage) List(xl *xlog.Logger) ([]StoredObject, error) {
	if xl == nil {
		xl = defaultLogger
	}
	var (
		objects []StoredObject
		marker  string
	)
	for {
		entries, _, nextMarker, hasNext, err := s.bucketManager.ListFiles(s.conf.Bucket, "", "", marker, qiniuListLimit)
		if err != nil {
			xl.Errorf("failed to list bucket %s, error %v", s.conf.Bucket, err)
			return nil, errors.Wrap(err, "list bucket")
		}
		for _, entry := range entries {
			// PutTime 单位为100纳秒。
			objects = append(objects, StoredObject{Key: entry.Key, ModTime: time.Unix(0, entry.PutTime*100)})
		}
		if !hasNext {
			return objects, nil
		}
		marker = nextMarker
	}
}
