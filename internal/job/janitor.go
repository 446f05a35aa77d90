package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/gamerzord/latihan-magang-lms/config"
	"github.com/gamerzord/latihan-magang-lms/pkg/storage"
)

// 单次清理的最长执行时间
const sweepTimeout = 10 * time.Minute

// 受清理的存储前缀
var sweepPrefixes = []string{"lessons/", "submissions/", "thumbnails/"}

// PathLister 返回数据库中仍被引用的存储 key
type PathLister func(ctx context.Context) ([]string, error)

// SweepResult 单次清理统计
type SweepResult struct {
	Scanned int
	Orphans int
	Deleted int
}

// Janitor 定期删除无数据库引用的孤儿文件（上传成功但落库失败、删除记录时删文件失败等）
type Janitor struct {
	store   storage.Storage
	listers []PathLister
	cfg     config.JanitorConfig
	logger  *zap.Logger
	now     func() time.Time
	cron    *cron.Cron
}

// NewJanitor 创建清理任务
func NewJanitor(store storage.Storage, cfg config.JanitorConfig, logger *zap.Logger, listers ...PathLister) *Janitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Janitor{
		store:   store,
		listers: listers,
		cfg:     cfg,
		logger:  logger.Named("janitor"),
		now:     time.Now,
	}
}

// Start 按 cron 表达式调度；上一轮未结束时跳过本轮
func (j *Janitor) Start() error {
	j.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := j.cron.AddFunc(j.cfg.Spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if _, err := j.Sweep(ctx); err != nil {
			j.logger.Error("孤儿文件清理失败", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("注册清理任务失败: %w", err)
	}
	j.cron.Start()
	j.logger.Info("孤儿文件清理任务已启动",
		zap.String("spec", j.cfg.Spec),
		zap.Duration("grace", j.cfg.Grace),
		zap.Bool("dry_run", j.cfg.DryRun),
	)
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (j *Janitor) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}

// Sweep 执行一轮清理
// 引用集合在遍历前加载，保护期内的新文件不删除
func (j *Janitor) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	referenced := make(map[string]struct{})
	for _, list := range j.listers {
		paths, err := list(ctx)
		if err != nil {
			return res, fmt.Errorf("加载文件引用失败: %w", err)
		}
		for _, p := range paths {
			referenced[p] = struct{}{}
		}
	}

	threshold := j.now().Add(-j.cfg.Grace)
	var orphans []string
	for _, prefix := range sweepPrefixes {
		err := j.store.Walk(ctx, prefix, func(o storage.Object) error {
			res.Scanned++
			if _, ok := referenced[o.Key]; ok {
				return nil
			}
			if o.ModTime.After(threshold) {
				return nil
			}
			orphans = append(orphans, o.Key)
			return nil
		})
		if err != nil {
			return res, fmt.Errorf("遍历 %s 失败: %w", prefix, err)
		}
	}
	res.Orphans = len(orphans)

	if j.cfg.DryRun {
		for _, key := range orphans {
			j.logger.Info("[dry-run] 待删除孤儿文件", zap.String("key", key))
		}
		j.logger.Info("孤儿文件清理完成（dry-run）", zap.Int("scanned", res.Scanned), zap.Int("orphans", res.Orphans))
		return res, nil
	}

	for _, key := range orphans {
		if err := j.store.Delete(ctx, key); err != nil {
			j.logger.Warn("删除孤儿文件失败", zap.String("key", key), zap.Error(err))
			continue
		}
		res.Deleted++
	}

	j.logger.Info("孤儿文件清理完成",
		zap.Int("scanned", res.Scanned),
		zap.Int("orphans", res.Orphans),
		zap.Int("deleted", res.Deleted),
	)
	return res, nil
}
