package handler

import (
	"net/http"
	"strconv"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
	"github.com/go-chi/chi/v5"
)

type timeWindowRequest struct {
	Date      string  `json:"date" validate:"required,isodate"`
	StartTime *string `json:"startTime" validate:"omitempty,hhmm"`
	EndTime   *string `json:"endTime" validate:"omitempty,hhmm"`
	AllDay    bool    `json:"allDay"`
}

func (req timeWindowRequest) toTimeWindow() domain.TimeWindow {
	return domain.TimeWindow{
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		AllDay:    req.AllDay,
	}
}

func (h *Handler) GetDispatchItems(w http.ResponseWriter, r *http.Request) {
	req := struct {
		From string `validate:"required,isodate"`
		To   string `validate:"required,isodate"`
	}{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if req.From > req.To {
		h.errorResponse(w, r, "开始日期不能晚于结束日期")
		return
	}

	items, err := h.repository.ListDispatchItems(r.Context(), req.From, req.To)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取派工单成功", items)
}

func (h *Handler) CreateDispatchItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		timeWindowRequest
		LocationID *int64 `json:"locationID" validate:"omitempty,gt=0"`
		Category   string `json:"category" validate:"required,oneof=PROJEKT SCHULUNG BUERO TRAINING KRANK MEETING"`
		Note       string `json:"note" validate:"max=1000"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	item := &domain.DispatchItem{
		LocationID: req.LocationID,
		TimeWindow: req.toTimeWindow(),
		Category:   domain.Category(req.Category),
		Note:       req.Note,
	}
	if err := h.service.CreateDispatchItem(r.Context(), h.actor(r), item); err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建派工单成功", item)
}

func (h *Handler) GetDispatchItem(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(DispatchItemCtx).(*domain.DispatchItem)
	h.successResponse(w, r, "获取派工单成功", item)
}

func (h *Handler) UpdateDispatchItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LocationID *int64  `json:"locationID" validate:"omitempty,gt=0"`
		Date       *string `json:"date" validate:"omitempty,isodate"`
		StartTime  *string `json:"startTime" validate:"omitempty,hhmm"`
		EndTime    *string `json:"endTime" validate:"omitempty,hhmm"`
		AllDay     *bool   `json:"allDay"`
		Category   *string `json:"category" validate:"omitempty,oneof=PROJEKT SCHULUNG BUERO TRAINING KRANK MEETING"`
		Status     *string `json:"status" validate:"omitempty,oneof=PLANNED CONFIRMED CANCELLED"`
		Note       *string `json:"note" validate:"omitempty,max=1000"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	current := r.Context().Value(DispatchItemCtx).(*domain.DispatchItem)

	item, err := h.service.UpdateDispatchItem(r.Context(), h.actor(r), current.ID, func(item *domain.DispatchItem) {
		if req.LocationID != nil {
			item.LocationID = req.LocationID
		}
		if req.Date != nil {
			item.Date = *req.Date
		}
		if req.StartTime != nil {
			item.StartTime = req.StartTime
		}
		if req.EndTime != nil {
			item.EndTime = req.EndTime
		}
		if req.AllDay != nil {
			item.AllDay = *req.AllDay
		}
		if req.Category != nil {
			item.Category = domain.Category(*req.Category)
		}
		if req.Status != nil {
			item.Status = domain.DispatchStatus(*req.Status)
		}
		if req.Note != nil {
			item.Note = *req.Note
		}
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新派工单成功", item)
}

func (h *Handler) DeleteDispatchItem(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(DispatchItemCtx).(*domain.DispatchItem)

	if err := h.service.DeleteDispatchItem(r.Context(), h.actor(r), item.ID); err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除派工单成功", nil)
}

func (h *Handler) AssignResource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResourceType string `json:"resourceType" validate:"required,oneof=WORKER VEHICLE DEVICE"`
		ResourceID   int64  `json:"resourceID" validate:"required,gt=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	item := r.Context().Value(DispatchItemCtx).(*domain.DispatchItem)

	assignment, err := h.service.Assign(r.Context(), h.actor(r), item.ID, domain.ResourceType(req.ResourceType), req.ResourceID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "分配资源成功", assignment)
}

func (h *Handler) UnassignResource(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := strconv.ParseInt(chi.URLParam(r, "assignmentID"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "资源分配ID无效")
		return
	}

	item := r.Context().Value(DispatchItemCtx).(*domain.DispatchItem)

	if err := h.service.Unassign(r.Context(), h.actor(r), item.ID, assignmentID); err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "取消分配成功", nil)
}

// CheckAssignment 供前端在拖拽排班时预先检查冲突，不写入任何数据
func (h *Handler) CheckAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		timeWindowRequest
		ResourceType  string `json:"resourceType" validate:"required,oneof=WORKER VEHICLE DEVICE"`
		ResourceID    int64  `json:"resourceID" validate:"required,gt=0"`
		ExcludeItemID int64  `json:"excludeItemID" validate:"gte=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	result, err := h.service.CheckAssignment(r.Context(), h.actor(r), domain.ResourceType(req.ResourceType), req.ResourceID, req.toTimeWindow(), req.ExcludeItemID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	if !result.OK {
		h.successResponse(w, r, result.Reason, result)
		return
	}
	h.successResponse(w, r, "时间段可用", result)
}
