package scheduler

import (
	"fmt"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
)

type ValidationResult struct {
	OK                bool               `json:"ok"`
	Reason            string             `json:"reason,omitempty"`
	ConflictingWindow *domain.TimeWindow `json:"conflictingWindow,omitempty"`
	ConflictingID     int64              `json:"conflictingID,omitempty"` // 冲突的派工单或工时记录 ID，未知时为 0
}

// Err 在校验未通过时返回 *OverlapConflictError
func (r ValidationResult) Err() error {
	if r.OK {
		return nil
	}
	return &OverlapConflictError{Result: r}
}

type occupant struct {
	id     int64
	label  string
	window domain.TimeWindow
}

// ValidateAssignment 检查拟分配的时间段是否与同一资源同一天已有的时间段冲突
// existing 需要由调用方预先按资源和日期过滤（更新时还需排除被编辑的派工单本身）
// 按输入顺序报告第一个冲突
func ValidateAssignment(proposed domain.TimeWindow, existing []domain.TimeWindow) (ValidationResult, error) {
	occupants := make([]occupant, 0, len(existing))
	for _, w := range existing {
		occupants = append(occupants, occupant{label: "已有安排", window: w})
	}
	return validate(proposed, occupants)
}

// ValidateAgainstItems 与 ValidateAssignment 相同，但冲突信息中会注明派工单编号
// 已取消的派工单不占用资源
func ValidateAgainstItems(proposed domain.TimeWindow, items []*domain.DispatchItem) (ValidationResult, error) {
	occupants := make([]occupant, 0, len(items))
	for _, item := range items {
		if item.Status == domain.DispatchStatusCancelled {
			continue
		}
		occupants = append(occupants, occupant{
			id:     item.ID,
			label:  fmt.Sprintf("派工单 #%d", item.ID),
			window: item.TimeWindow,
		})
	}
	return validate(proposed, occupants)
}

// ValidateAgainstEntries 检查工时记录是否与同一员工当天的其他记录冲突
func ValidateAgainstEntries(proposed domain.TimeWindow, entries []*domain.TimeEntry) (ValidationResult, error) {
	occupants := make([]occupant, 0, len(entries))
	for _, entry := range entries {
		if entry.Status == domain.TimeEntryStatusRejected {
			continue
		}
		occupants = append(occupants, occupant{
			id:     entry.ID,
			label:  fmt.Sprintf("工时记录 #%d", entry.ID),
			window: entry.TimeWindow,
		})
	}
	return validate(proposed, occupants)
}

func validate(proposed domain.TimeWindow, occupants []occupant) (ValidationResult, error) {
	for _, o := range occupants {
		overlap, err := Overlaps(proposed, o.window)
		if err != nil {
			return ValidationResult{}, err
		}
		if !overlap {
			continue
		}

		window := o.window
		return ValidationResult{
			OK:                false,
			Reason:            fmt.Sprintf("时间冲突：与%s（%s）重叠", o.label, window.Label()),
			ConflictingWindow: &window,
			ConflictingID:     o.id,
		}, nil
	}

	return ValidationResult{OK: true}, nil
}
