package utils

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
)

const DateLayout = "2006-01-02"

func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("日期 %q 格式错误，应为 YYYY-MM-DD", date)
	}
	return nil
}

// ValidateTimeWindow 检查时间段本身是否合法
// 非全天时必须同时给出开始和结束时间，且二者不能相同（零时长无法表示）
func ValidateTimeWindow(w domain.TimeWindow) error {
	if err := ValidateDate(w.Date); err != nil {
		return err
	}

	if w.AllDay {
		return nil
	}

	if w.StartTime == nil || w.EndTime == nil {
		return errors.New("非全天的时间段必须同时包含开始时间和结束时间")
	}

	start, err := ToMinutes(*w.StartTime)
	if err != nil {
		return fmt.Errorf("开始时间格式错误: %w", err)
	}
	end, err := ToMinutes(*w.EndTime)
	if err != nil {
		return fmt.Errorf("结束时间格式错误: %w", err)
	}

	if start == end {
		return errors.New("开始时间和结束时间不能相同")
	}

	return nil
}

// NormalizeTimeWindow 将全天时间段的开始与结束时间清空，保证只有一种表示方式
func NormalizeTimeWindow(w *domain.TimeWindow) {
	if w.AllDay {
		w.StartTime = nil
		w.EndTime = nil
	}
}

var categories = []domain.Category{
	domain.CategoryProjekt,
	domain.CategorySchulung,
	domain.CategoryBuero,
	domain.CategoryTraining,
	domain.CategoryKrank,
	domain.CategoryMeeting,
}

func ValidateDispatchItem(item *domain.DispatchItem) error {
	if !slices.Contains(categories, item.Category) {
		return fmt.Errorf("未知的派工类别 %q", item.Category)
	}

	switch item.Status {
	case domain.DispatchStatusPlanned, domain.DispatchStatusConfirmed, domain.DispatchStatusCancelled:
	default:
		return fmt.Errorf("未知的派工状态 %q", item.Status)
	}

	return ValidateTimeWindow(item.TimeWindow)
}

func ValidateResourceType(t domain.ResourceType) error {
	switch t {
	case domain.ResourceTypeWorker, domain.ResourceTypeVehicle, domain.ResourceTypeDevice:
		return nil
	default:
		return fmt.Errorf("未知的资源类型 %q", t)
	}
}
