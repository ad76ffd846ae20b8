package task

import (
	"time"

	"github.com/qiniu/x/xlog"
	"github.com/solutions/job-portal/internal/service/cloud"
)

// DocumentIndex 返回所有仍被申请引用的文件。
type DocumentIndex interface {
	DocumentKeys(xl *xlog.Logger) (map[string]bool, error)
}

// UploadSweepTask 删除未被任何申请引用、且超过保留时间的上传文件。
// 提交失败或删除申请时未能清理的文件由该任务兜底。
type UploadSweepTask struct {
	storage cloud.DocumentStorage
	index   DocumentIndex
	ttl     time.Duration
	now     func() time.Time
	xl      *xlog.Logger
}

func NewUploadSweepTask(storage cloud.DocumentStorage, index DocumentIndex, ttl time.Duration) *UploadSweepTask {
	return &UploadSweepTask{
		storage: storage,
		index:   index,
		ttl:     ttl,
		now:     time.Now,
		xl:      xlog.New("upload sweep task"),
	}
}

// Start 执行一次清理，供 gocron 周期调用。
func (t *UploadSweepTask) Start() {
	removed, err := t.Sweep()
	if err != nil {
		t.xl.Errorf("upload sweep failed: %v", err)
		return
	}
	if removed > 0 {
		t.xl.Infof("upload sweep removed %d orphaned files", removed)
	}
}

// Sweep 返回删除的文件数。
func (t *UploadSweepTask) Sweep() (int, error) {
	objects, err := t.storage.List(t.xl)
	if err != nil {
		return 0, err
	}
	// 先列文件再查引用，避免删除列举之后新提交的文件。
	referenced, err := t.index.DocumentKeys(t.xl)
	if err != nil {
		return 0, err
	}
	deadline := t.now().Add(-t.ttl)
	removed := 0
	for _, obj := range objects {
		if referenced[obj.Key] || !cloud.IsDocumentKey(obj.Key) || obj.ModTime.After(deadline) {
			continue
		}
		if err := t.storage.Remove(t.xl, obj.Key); err != nil {
			t.xl.Errorf("failed to remove orphaned file %s, error %v", obj.Key, err)
			continue
		}
		removed++
	}
	return removed, nil
}
