package scheduler

import (
	"context"
	"log/slog"
	"sort"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/utils"
)

type ConfirmationOutcome string

const (
	OutcomeCreated ConfirmationOutcome = "created"
	OutcomeSkipped ConfirmationOutcome = "skipped"
)

type ConfirmationDetail struct {
	DispatchItemID int64               `json:"dispatchItemID"`
	Outcome        ConfirmationOutcome `json:"outcome"`
	TimeEntryID    int64               `json:"timeEntryID"`
}

type ConfirmationResult struct {
	Created int                  `json:"created"`
	Skipped int                  `json:"skipped"`
	Hours   float64              `json:"hours"` // 本次新生成的工时合计
	Details []ConfirmationDetail `json:"details"`
}

// ConfirmDay 将员工某一天计划中的派工单转换为已确认的工时记录
//
// 该员工已经有 sourceDispatchItemID 指向该派工单的工时记录时跳过，因此重复调用不会产生重复记录。
// 一个派工单分配了多名员工时，每名员工各自生成一条记录，全部员工都确认后派工单才变为 CONFIRMED。
// 处理某个派工单时出错会中止整批并返回错误，之前已写入的记录保留，重试是安全的。
// 没有可确认的派工单时返回 created=0, skipped=0。
func (s *Service) ConfirmDay(ctx context.Context, actor domain.Actor, workerID int64, date string) (*ConfirmationResult, error) {
	if err := utils.ValidateDate(date); err != nil {
		return nil, invalidInput(err)
	}

	ok, err := s.gate.CanConfirmDay(ctx, actor, workerID, date)
	if err != nil {
		return nil, err
	}
	if !ok {
		slog.Warn("拒绝日确认", "actorUserID", actor.UserID, "workerID", workerID, "date", date)
		return nil, ErrPermissionDenied
	}

	release, err := s.locker.Acquire(ctx, WorkerDayLockKey(workerID, date))
	if err != nil {
		return nil, err
	}
	defer release()

	items, err := s.store.ListPlannedDispatchItemsForWorkerDate(ctx, workerID, date)
	if err != nil {
		return nil, storeErr("查询计划派工单", err)
	}

	// 按 ID 升序处理，结果与数据库返回的物理顺序无关
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})

	result := &ConfirmationResult{
		Details: make([]ConfirmationDetail, 0, len(items)),
	}

	for _, item := range items {
		if item.Status == domain.DispatchStatusCancelled {
			continue
		}

		existing, err := s.store.FindTimeEntryBySourceDispatchItem(ctx, item.ID, workerID)
		if err != nil {
			return nil, storeErr("查询工时记录", err)
		}

		if existing != nil {
			// 上次确认可能在写入工时后、更新状态前中断
			if err := s.confirmItemIfComplete(ctx, item); err != nil {
				return nil, err
			}
			result.Skipped++
			result.Details = append(result.Details, ConfirmationDetail{
				DispatchItemID: item.ID,
				Outcome:        OutcomeSkipped,
				TimeEntryID:    existing.ID,
			})
			continue
		}

		hours, err := s.hoursFor(item.TimeWindow)
		if err != nil {
			return nil, invalidInput(err)
		}

		sourceID := item.ID
		entry := &domain.TimeEntry{
			WorkerID:   workerID,
			TimeWindow: item.TimeWindow,
			Hours:      hours,
			Status:     domain.TimeEntryStatusConfirmed,
			Note:       item.Note,
			Meta: domain.TimeEntryMeta{
				SourceDispatchItemID: &sourceID,
			},
		}
		if err := s.store.CreateTimeEntry(ctx, entry); err != nil {
			return nil, storeErr("创建工时记录", err)
		}

		if err := s.confirmItemIfComplete(ctx, item); err != nil {
			return nil, err
		}

		result.Created++
		result.Hours = utils.RoundHours(result.Hours + hours)
		result.Details = append(result.Details, ConfirmationDetail{
			DispatchItemID: item.ID,
			Outcome:        OutcomeCreated,
			TimeEntryID:    entry.ID,
		})
	}

	slog.Info("日确认完成", "workerID", workerID, "date", date, "created", result.Created, "skipped", result.Skipped)

	return result, nil
}

// confirmItemIfComplete 派工单上的所有员工都有工时记录后，才把派工单标记为已确认
func (s *Service) confirmItemIfComplete(ctx context.Context, item *domain.DispatchItem) error {
	if item.Status != domain.DispatchStatusPlanned {
		return nil
	}

	pending, err := s.store.HasUnconfirmedWorkers(ctx, item.ID)
	if err != nil {
		return storeErr("查询派工单确认情况", err)
	}
	if pending {
		return nil
	}

	if err := s.store.UpdateDispatchItemStatus(ctx, item.ID, domain.DispatchStatusConfirmed); err != nil {
		return storeErr("更新派工单状态", err)
	}
	item.Status = domain.DispatchStatusConfirmed
	return nil
}

// hoursFor 全天派工单按固定工时计算
func (s *Service) hoursFor(w domain.TimeWindow) (float64, error) {
	if w.AllDay {
		return s.allDayHours, nil
	}
	if w.StartTime == nil || w.EndTime == nil {
		return 0, utils.ValidateTimeWindow(w)
	}
	return utils.Hours(*w.StartTime, *w.EndTime)
}
