package domain

// TimeWindow 是某一天中的一个时间段，时间为本地挂钟时间（HH:MM）
// AllDay 为 false 时 StartTime 和 EndTime 必须同时存在
type TimeWindow struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	AllDay    bool    `json:"allDay"`
}

const AllDayLabel = "ganztägig"

// Label 返回用于展示的时间段，例如 08:00–12:00 或 ganztägig
func (w TimeWindow) Label() string {
	if w.AllDay || w.StartTime == nil || w.EndTime == nil {
		return AllDayLabel
	}
	return *w.StartTime + "–" + *w.EndTime
}

func NewTimeWindow(date string, start string, end string) TimeWindow {
	return TimeWindow{
		Date:      date,
		StartTime: &start,
		EndTime:   &end,
	}
}

func NewAllDayWindow(date string) TimeWindow {
	return TimeWindow{
		Date:   date,
		AllDay: true,
	}
}
