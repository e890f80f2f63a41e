package domain

import "time"

type Category string

const (
	CategoryProjekt  Category = "PROJEKT"
	CategorySchulung Category = "SCHULUNG"
	CategoryBuero    Category = "BUERO"
	CategoryTraining Category = "TRAINING"
	CategoryKrank    Category = "KRANK"
	CategoryMeeting  Category = "MEETING"
)

type DispatchStatus string

const (
	DispatchStatusPlanned   DispatchStatus = "PLANNED"
	DispatchStatusConfirmed DispatchStatus = "CONFIRMED"
	DispatchStatusCancelled DispatchStatus = "CANCELLED"
)

type ResourceType string

const (
	ResourceTypeWorker  ResourceType = "WORKER"
	ResourceTypeVehicle ResourceType = "VEHICLE"
	ResourceTypeDevice  ResourceType = "DEVICE"
)

type ResourceAssignment struct {
	ID             int64        `json:"id"`
	DispatchItemID int64        `json:"dispatchItemID"`
	ResourceType   ResourceType `json:"resourceType"`
	ResourceID     int64        `json:"resourceID"`
	Date           string       `json:"date"` // 冗余存储派工单的日期，用于冲突查询
	CreatedAt      time.Time    `json:"createdAt"`
}

type DispatchItem struct {
	ID         int64  `json:"id"`
	LocationID *int64 `json:"locationID"` // 没有地点的派工单不能分配资源
	TimeWindow
	Category    Category             `json:"category"`
	Status      DispatchStatus       `json:"status"`
	Note        string               `json:"note"`
	Assignments []ResourceAssignment `json:"assignments"`
	CreatedAt   time.Time            `json:"createdAt"`
	Version     int32                `json:"-"`
}
