package scheduler

import (
	"context"
	"fmt"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
)

// DispatchStore 负责派工单及其资源分配的持久化
// 查不到记录时返回 sql.ErrNoRows
type DispatchStore interface {
	GetDispatchItem(ctx context.Context, id int64) (*domain.DispatchItem, error)
	CreateDispatchItem(ctx context.Context, item *domain.DispatchItem) error
	// UpdateDispatchItem 同时改写该派工单所有资源分配的冗余日期
	UpdateDispatchItem(ctx context.Context, item *domain.DispatchItem) error
	DeleteDispatchItem(ctx context.Context, id int64) error
	// ListDispatchItemsForResourceAndDate 返回某资源在某天所有未取消的派工单，excludeItemID 为 0 时不排除
	ListDispatchItemsForResourceAndDate(ctx context.Context, resourceType domain.ResourceType, resourceID int64, date string, excludeItemID int64) ([]*domain.DispatchItem, error)
	GetResourceAssignment(ctx context.Context, id int64) (*domain.ResourceAssignment, error)
	CreateResourceAssignment(ctx context.Context, a *domain.ResourceAssignment) error
	DeleteResourceAssignment(ctx context.Context, id int64) error
}

type ConfirmationStore interface {
	// ListPlannedDispatchItemsForWorkerDate 返回员工当天计划中（未取消）的派工单
	ListPlannedDispatchItemsForWorkerDate(ctx context.Context, workerID int64, date string) ([]*domain.DispatchItem, error)
	// FindTimeEntryBySourceDispatchItem 查找某个员工由该派工单生成的工时记录，不存在时返回 nil, nil
	FindTimeEntryBySourceDispatchItem(ctx context.Context, itemID int64, workerID int64) (*domain.TimeEntry, error)
	// HasUnconfirmedWorkers 判断派工单上是否还有员工没有对应的工时记录
	HasUnconfirmedWorkers(ctx context.Context, itemID int64) (bool, error)
	CreateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error
	UpdateDispatchItemStatus(ctx context.Context, itemID int64, status domain.DispatchStatus) error
}

type TimeEntryStore interface {
	GetTimeEntry(ctx context.Context, id int64) (*domain.TimeEntry, error)
	ListTimeEntriesForWorkerDate(ctx context.Context, workerID int64, date string) ([]*domain.TimeEntry, error)
	CreateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error
	UpdateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error
	DeleteTimeEntry(ctx context.Context, id int64) error
}

type Store interface {
	DispatchStore
	ConfirmationStore
	TimeEntryStore
}

// Locker 为同一资源同一天上的写操作提供互斥
// 单进程部署时可以使用 lock.NopLocker
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

func AssignmentLockKey(resourceType domain.ResourceType, resourceID int64, date string) string {
	return fmt.Sprintf("lock:assign:%s:%d:%s", resourceType, resourceID, date)
}

func WorkerDayLockKey(workerID int64, date string) string {
	return fmt.Sprintf("lock:worker-day:%d:%s", workerID, date)
}
