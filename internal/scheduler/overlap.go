package scheduler

import (
	"fmt"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/utils"
)

// Overlaps 判断同一天内的两个时间段是否重叠
//
// 全天时间段与当天任何时间段都冲突（包括另一个全天时间段）。
// 其余情况使用左闭右开区间比较，首尾相接（end1 == start2）不算重叠。
// 跨夜的时间段（结束时间 <= 开始时间）的后半段落在当天的凌晨，
// 因此 22:00–06:00 与 05:00–09:00 冲突，而与 06:00–10:00 不冲突。
//
// 调用方需要保证两个时间段属于同一天，这里不比较日期。
func Overlaps(a domain.TimeWindow, b domain.TimeWindow) (bool, error) {
	if a.AllDay || b.AllDay {
		return true, nil
	}

	s1, e1, err := bounds(a)
	if err != nil {
		return false, err
	}
	s2, e2, err := bounds(b)
	if err != nil {
		return false, err
	}

	for _, shift := range []int{0, utils.MinutesPerDay, -utils.MinutesPerDay} {
		if s1 < e2+shift && s2+shift < e1 {
			return true, nil
		}
	}

	return false, nil
}

// bounds 返回时间段的起止分钟数，跨夜时结束分钟数加上一整天
func bounds(w domain.TimeWindow) (int, int, error) {
	if w.StartTime == nil || w.EndTime == nil {
		return 0, 0, fmt.Errorf("%w: 非全天时间段缺少开始或结束时间", utils.ErrInvalidTimeFormat)
	}

	start, err := utils.ToMinutes(*w.StartTime)
	if err != nil {
		return 0, 0, err
	}
	duration, err := utils.DurationMinutes(*w.StartTime, *w.EndTime)
	if err != nil {
		return 0, 0, err
	}

	return start, start + duration, nil
}
