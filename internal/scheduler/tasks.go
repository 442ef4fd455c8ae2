package scheduler

import (
	"context"
	"time"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/logger"
	provisionService "github.com/dumeirei/kitchen-pos-backend/internal/service/provision"
)

// TaskOwnerReconcile 店主与登录账号巡检任务名
const TaskOwnerReconcile = "owner_reconcile"

// OwnerReconciler 店主账号修复
type OwnerReconciler interface {
	ReconcileAll(ctx context.Context) ([]*provisionService.RepairResult, error)
}

// TaskHandler 任务处理器
type TaskHandler struct {
	reconciler OwnerReconciler
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(reconciler OwnerReconciler) *TaskHandler {
	return &TaskHandler{reconciler: reconciler}
}

// ReconcileOwners 巡检全部店主，汇总各类修复动作
func (h *TaskHandler) ReconcileOwners(ctx context.Context) error {
	results, err := h.reconciler.ReconcileAll(ctx)
	if err != nil {
		return err
	}

	counts := make(map[string]int)
	for _, r := range results {
		counts[r.Action]++
		if r.Action == provisionService.ActionFailed {
			logger.Warn("owner reconcile failed",
				logger.Email(r.Email),
				logger.String("error", r.Error),
			)
		}
	}
	if len(results) > counts[provisionService.ActionNone] {
		logger.Info("owner reconcile finished",
			logger.Int("checked", len(results)),
			logger.Any("actions", counts),
		)
	}
	return nil
}

// Register 按配置注册任务
func (h *TaskHandler) Register(s *Scheduler, cfg *config.SchedulerConfig) {
	s.AddTask(TaskOwnerReconcile, time.Duration(cfg.RepairInterval)*time.Second, h.ReconcileOwners)
}
