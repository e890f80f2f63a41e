package domain

import "time"

type TimeEntryStatus string

const (
	TimeEntryStatusPlanned   TimeEntryStatus = "PLANNED"
	TimeEntryStatusConfirmed TimeEntryStatus = "CONFIRMED"
	TimeEntryStatusRejected  TimeEntryStatus = "REJECTED"
)

type TimeEntryMeta struct {
	// 不为空时表示该记录由对应的派工单生成，是日确认的幂等键
	SourceDispatchItemID *int64 `json:"sourceDispatchItemID"`
}

type TimeEntry struct {
	ID       int64 `json:"id"`
	WorkerID int64 `json:"workerID"`
	TimeWindow
	Hours     float64         `json:"hours"`
	Status    TimeEntryStatus `json:"status"`
	Note      string          `json:"note"`
	Meta      TimeEntryMeta   `json:"meta"`
	CreatedAt time.Time       `json:"createdAt"`
	Version   int32           `json:"-"`
}
