package scheduler

import (
	"context"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
)

type PermissionGate interface {
	CanConfirmDay(ctx context.Context, actor domain.Actor, workerID int64, date string) (bool, error)
	CanEditEntry(ctx context.Context, actor domain.Actor, entry *domain.TimeEntry) (bool, error)
	CanManageDispatch(ctx context.Context, actor domain.Actor) (bool, error)
}

// RoleGate 管理员可以操作所有人，员工只能操作自己
type RoleGate struct{}

func (RoleGate) CanConfirmDay(_ context.Context, actor domain.Actor, workerID int64, _ string) (bool, error) {
	return actor.IsAdmin() || actor.IsWorker(workerID), nil
}

func (RoleGate) CanEditEntry(_ context.Context, actor domain.Actor, entry *domain.TimeEntry) (bool, error) {
	return actor.IsAdmin() || actor.IsWorker(entry.WorkerID), nil
}

func (RoleGate) CanManageDispatch(_ context.Context, actor domain.Actor) (bool, error) {
	return actor.IsAdmin(), nil
}
