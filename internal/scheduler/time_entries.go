package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/utils"
)

func (s *Service) requireEntryEditor(ctx context.Context, actor domain.Actor, entry *domain.TimeEntry) error {
	ok, err := s.gate.CanEditEntry(ctx, actor, entry)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}

func (s *Service) getTimeEntry(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	entry, err := s.store.GetTimeEntry(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("工时记录 #%d: %w", id, ErrNotFound)
		}
		return nil, storeErr("查询工时记录", err)
	}
	return entry, nil
}

// prepareEntry 校验时间段、重新计算工时，并检查与同一员工当天其他记录是否冲突
func (s *Service) prepareEntry(ctx context.Context, entry *domain.TimeEntry) error {
	if entry.Status == "" {
		entry.Status = domain.TimeEntryStatusPlanned
	}
	switch entry.Status {
	case domain.TimeEntryStatusPlanned, domain.TimeEntryStatusConfirmed, domain.TimeEntryStatusRejected:
	default:
		return invalidInput(fmt.Errorf("未知的工时状态 %q", entry.Status))
	}

	utils.NormalizeTimeWindow(&entry.TimeWindow)
	if err := utils.ValidateTimeWindow(entry.TimeWindow); err != nil {
		return invalidInput(err)
	}

	// 工时永远由起止时间计算，不信任输入
	hours, err := s.hoursFor(entry.TimeWindow)
	if err != nil {
		return invalidInput(err)
	}
	entry.Hours = hours

	if entry.Status == domain.TimeEntryStatusRejected {
		return nil
	}

	others, err := s.store.ListTimeEntriesForWorkerDate(ctx, entry.WorkerID, entry.Date)
	if err != nil {
		return storeErr("查询工时记录", err)
	}
	filtered := make([]*domain.TimeEntry, 0, len(others))
	for _, other := range others {
		if other.ID != entry.ID {
			filtered = append(filtered, other)
		}
	}

	result, err := ValidateAgainstEntries(entry.TimeWindow, filtered)
	if err != nil {
		return invalidInput(err)
	}
	return result.Err()
}

func (s *Service) CreateTimeEntry(ctx context.Context, actor domain.Actor, entry *domain.TimeEntry) error {
	if err := s.requireEntryEditor(ctx, actor, entry); err != nil {
		return err
	}

	// 手工录入的记录不能冒充由派工单生成的记录
	entry.Meta.SourceDispatchItemID = nil

	release, err := s.locker.Acquire(ctx, WorkerDayLockKey(entry.WorkerID, entry.Date))
	if err != nil {
		return err
	}
	defer release()

	if err := s.prepareEntry(ctx, entry); err != nil {
		return err
	}

	if err := s.store.CreateTimeEntry(ctx, entry); err != nil {
		return storeErr("创建工时记录", err)
	}
	return nil
}

// UpdateTimeEntry 修改前后的记录都必须通过权限检查，防止员工把记录挪到别人名下
func (s *Service) UpdateTimeEntry(ctx context.Context, actor domain.Actor, id int64, apply func(entry *domain.TimeEntry)) (*domain.TimeEntry, error) {
	entry, err := s.getTimeEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireEntryEditor(ctx, actor, entry); err != nil {
		return nil, err
	}
	previous := *entry

	apply(entry)
	entry.ID = previous.ID
	entry.Meta = previous.Meta
	if err := s.requireEntryEditor(ctx, actor, entry); err != nil {
		return nil, err
	}

	keys := []string{
		WorkerDayLockKey(previous.WorkerID, previous.Date),
		WorkerDayLockKey(entry.WorkerID, entry.Date),
	}
	release, err := s.acquireAll(ctx, keys)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.prepareEntry(ctx, entry); err != nil {
		return nil, err
	}

	if err := s.store.UpdateTimeEntry(ctx, entry); err != nil {
		return nil, storeErr("更新工时记录", err)
	}
	return entry, nil
}

func (s *Service) DeleteTimeEntry(ctx context.Context, actor domain.Actor, id int64) error {
	entry, err := s.getTimeEntry(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireEntryEditor(ctx, actor, entry); err != nil {
		return err
	}

	release, err := s.locker.Acquire(ctx, WorkerDayLockKey(entry.WorkerID, entry.Date))
	if err != nil {
		return err
	}
	defer release()

	if err := s.store.DeleteTimeEntry(ctx, id); err != nil {
		return storeErr("删除工时记录", err)
	}
	return nil
}

// ListTimeEntries 员工只能查看自己的记录
func (s *Service) ListTimeEntries(ctx context.Context, actor domain.Actor, workerID int64, date string) ([]*domain.TimeEntry, error) {
	if err := utils.ValidateDate(date); err != nil {
		return nil, invalidInput(err)
	}
	if err := s.requireEntryEditor(ctx, actor, &domain.TimeEntry{WorkerID: workerID}); err != nil {
		return nil, err
	}

	entries, err := s.store.ListTimeEntriesForWorkerDate(ctx, workerID, date)
	if err != nil {
		return nil, storeErr("查询工时记录", err)
	}
	return entries, nil
}
