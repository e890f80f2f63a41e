package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/utils"
)

type Service struct {
	store       Store
	gate        PermissionGate
	locker      Locker
	allDayHours float64
}

func NewService(store Store, gate PermissionGate, locker Locker, allDayHours float64) *Service {
	return &Service{
		store:       store,
		gate:        gate,
		locker:      locker,
		allDayHours: allDayHours,
	}
}

func (s *Service) requireDispatchManager(ctx context.Context, actor domain.Actor) error {
	ok, err := s.gate.CanManageDispatch(ctx, actor)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}

// acquireAll 按字典序获取多把锁，避免两个请求以相反顺序加锁而互相等待
func (s *Service) acquireAll(ctx context.Context, keys []string) (func(), error) {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	releases := make([]func(), 0, len(keys))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}

	for _, key := range keys {
		release, err := s.locker.Acquire(ctx, key)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}

	return releaseAll, nil
}

func (s *Service) getDispatchItem(ctx context.Context, id int64) (*domain.DispatchItem, error) {
	item, err := s.store.GetDispatchItem(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("派工单 #%d: %w", id, ErrNotFound)
		}
		return nil, storeErr("查询派工单", err)
	}
	return item, nil
}

func (s *Service) CreateDispatchItem(ctx context.Context, actor domain.Actor, item *domain.DispatchItem) error {
	if err := s.requireDispatchManager(ctx, actor); err != nil {
		return err
	}

	if item.Status == "" {
		item.Status = domain.DispatchStatusPlanned
	}
	utils.NormalizeTimeWindow(&item.TimeWindow)
	if err := utils.ValidateDispatchItem(item); err != nil {
		return invalidInput(err)
	}

	if err := s.store.CreateDispatchItem(ctx, item); err != nil {
		return storeErr("创建派工单", err)
	}
	return nil
}

// UpdateDispatchItem 修改派工单。时间或日期变化后，已有的每一个资源分配都要在新的时间段上重新校验，
// 全部通过后才写入
func (s *Service) UpdateDispatchItem(ctx context.Context, actor domain.Actor, id int64, apply func(item *domain.DispatchItem)) (*domain.DispatchItem, error) {
	if err := s.requireDispatchManager(ctx, actor); err != nil {
		return nil, err
	}

	item, err := s.getDispatchItem(ctx, id)
	if err != nil {
		return nil, err
	}
	previousStatus := item.Status
	previousDate := item.Date

	apply(item)
	utils.NormalizeTimeWindow(&item.TimeWindow)
	if err := utils.ValidateDispatchItem(item); err != nil {
		return nil, invalidInput(err)
	}

	if previousStatus == domain.DispatchStatusCancelled && item.Status != domain.DispatchStatusCancelled {
		return nil, ErrItemCancelled
	}

	if item.LocationID == nil && len(item.Assignments) > 0 {
		return nil, ErrNoLocation
	}

	// 改期时新旧两个日期上的资源都要加锁
	keys := make([]string, 0, 2*len(item.Assignments))
	for _, a := range item.Assignments {
		keys = append(keys,
			AssignmentLockKey(a.ResourceType, a.ResourceID, previousDate),
			AssignmentLockKey(a.ResourceType, a.ResourceID, item.Date),
		)
	}
	release, err := s.acquireAll(ctx, keys)
	if err != nil {
		return nil, err
	}
	defer release()

	if item.Status != domain.DispatchStatusCancelled {
		for _, a := range item.Assignments {
			existing, err := s.store.ListDispatchItemsForResourceAndDate(ctx, a.ResourceType, a.ResourceID, item.Date, item.ID)
			if err != nil {
				return nil, storeErr("查询资源安排", err)
			}

			result, err := ValidateAgainstItems(item.TimeWindow, existing)
			if err != nil {
				return nil, invalidInput(err)
			}
			if !result.OK {
				slog.Info("派工单改期冲突", "dispatchItemID", item.ID, "resourceType", a.ResourceType, "resourceID", a.ResourceID, "conflictingID", result.ConflictingID)
				return nil, result.Err()
			}
		}
	}

	for i := range item.Assignments {
		item.Assignments[i].Date = item.Date
	}

	if err := s.store.UpdateDispatchItem(ctx, item); err != nil {
		return nil, storeErr("更新派工单", err)
	}

	return item, nil
}

func (s *Service) DeleteDispatchItem(ctx context.Context, actor domain.Actor, id int64) error {
	if err := s.requireDispatchManager(ctx, actor); err != nil {
		return err
	}

	if err := s.store.DeleteDispatchItem(ctx, id); err != nil {
		return storeErr("删除派工单", err)
	}
	return nil
}

// Assign 将资源分配到派工单上。先在 (资源类型, 资源 ID, 日期) 上加锁，再做冲突校验，通过后才写入。
// 同一资源重复分配到同一派工单也会因为时间段与自身重叠而被拒绝
func (s *Service) Assign(ctx context.Context, actor domain.Actor, itemID int64, resourceType domain.ResourceType, resourceID int64) (*domain.ResourceAssignment, error) {
	if err := s.requireDispatchManager(ctx, actor); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceType(resourceType); err != nil {
		return nil, invalidInput(err)
	}

	item, err := s.getDispatchItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status == domain.DispatchStatusCancelled {
		return nil, ErrItemCancelled
	}
	if item.LocationID == nil {
		return nil, ErrNoLocation
	}

	release, err := s.locker.Acquire(ctx, AssignmentLockKey(resourceType, resourceID, item.Date))
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.store.ListDispatchItemsForResourceAndDate(ctx, resourceType, resourceID, item.Date, 0)
	if err != nil {
		return nil, storeErr("查询资源安排", err)
	}

	result, err := ValidateAgainstItems(item.TimeWindow, existing)
	if err != nil {
		return nil, invalidInput(err)
	}
	if !result.OK {
		slog.Info("资源分配冲突", "dispatchItemID", item.ID, "resourceType", resourceType, "resourceID", resourceID, "conflictingID", result.ConflictingID)
		return nil, result.Err()
	}

	assignment := &domain.ResourceAssignment{
		DispatchItemID: item.ID,
		ResourceType:   resourceType,
		ResourceID:     resourceID,
		Date:           item.Date,
	}
	if err := s.store.CreateResourceAssignment(ctx, assignment); err != nil {
		return nil, storeErr("创建资源分配", err)
	}

	return assignment, nil
}

// Unassign 删除资源分配，派工单本身保留
func (s *Service) Unassign(ctx context.Context, actor domain.Actor, itemID int64, assignmentID int64) error {
	if err := s.requireDispatchManager(ctx, actor); err != nil {
		return err
	}

	assignment, err := s.store.GetResourceAssignment(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("资源分配 #%d: %w", assignmentID, ErrNotFound)
		}
		return storeErr("查询资源分配", err)
	}
	if assignment.DispatchItemID != itemID {
		return fmt.Errorf("资源分配 #%d 不属于派工单 #%d: %w", assignmentID, itemID, ErrNotFound)
	}

	if err := s.store.DeleteResourceAssignment(ctx, assignmentID); err != nil {
		return storeErr("删除资源分配", err)
	}
	return nil
}

// CheckAssignment 只做预检，不写入任何数据
func (s *Service) CheckAssignment(ctx context.Context, actor domain.Actor, resourceType domain.ResourceType, resourceID int64, proposed domain.TimeWindow, excludeItemID int64) (ValidationResult, error) {
	if err := s.requireDispatchManager(ctx, actor); err != nil {
		return ValidationResult{}, err
	}
	if err := utils.ValidateResourceType(resourceType); err != nil {
		return ValidationResult{}, invalidInput(err)
	}
	utils.NormalizeTimeWindow(&proposed)
	if err := utils.ValidateTimeWindow(proposed); err != nil {
		return ValidationResult{}, invalidInput(err)
	}

	existing, err := s.store.ListDispatchItemsForResourceAndDate(ctx, resourceType, resourceID, proposed.Date, excludeItemID)
	if err != nil {
		return ValidationResult{}, storeErr("查询资源安排", err)
	}

	result, err := ValidateAgainstItems(proposed, existing)
	if err != nil {
		return ValidationResult{}, invalidInput(err)
	}
	return result, nil
}
