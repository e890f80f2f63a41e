package handler

import (
	"net/http"
	"strconv"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetTimeEntries(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(r)

	date := r.URL.Query().Get("date")
	workerParam := r.URL.Query().Get("workerID")

	var workerID int64
	switch {
	case workerParam != "":
		id, err := strconv.ParseInt(workerParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "员工ID无效")
			return
		}
		workerID = id
	case actor.WorkerID != nil:
		// 不指定员工时默认查询自己
		workerID = *actor.WorkerID
	default:
		h.errorResponse(w, r, "请指定员工ID")
		return
	}

	entries, err := h.service.ListTimeEntries(r.Context(), actor, workerID, date)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取工时记录成功", entries)
}

func (h *Handler) CreateTimeEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		timeWindowRequest
		WorkerID int64  `json:"workerID" validate:"required,gt=0"`
		Status   string `json:"status" validate:"omitempty,oneof=PLANNED CONFIRMED REJECTED"`
		Note     string `json:"note" validate:"max=1000"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 工时由服务端根据起止时间计算
	entry := &domain.TimeEntry{
		WorkerID:   req.WorkerID,
		TimeWindow: req.toTimeWindow(),
		Status:     domain.TimeEntryStatus(req.Status),
		Note:       req.Note,
	}
	if err := h.service.CreateTimeEntry(r.Context(), h.actor(r), entry); err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建工时记录成功", entry)
}

func (h *Handler) UpdateTimeEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "工时记录ID无效")
		return
	}

	var req struct {
		WorkerID  *int64  `json:"workerID" validate:"omitempty,gt=0"`
		Date      *string `json:"date" validate:"omitempty,isodate"`
		StartTime *string `json:"startTime" validate:"omitempty,hhmm"`
		EndTime   *string `json:"endTime" validate:"omitempty,hhmm"`
		AllDay    *bool   `json:"allDay"`
		Status    *string `json:"status" validate:"omitempty,oneof=PLANNED CONFIRMED REJECTED"`
		Note      *string `json:"note" validate:"omitempty,max=1000"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	entry, err := h.service.UpdateTimeEntry(r.Context(), h.actor(r), entryID, func(entry *domain.TimeEntry) {
		if req.WorkerID != nil {
			entry.WorkerID = *req.WorkerID
		}
		if req.Date != nil {
			entry.Date = *req.Date
		}
		if req.StartTime != nil {
			entry.StartTime = req.StartTime
		}
		if req.EndTime != nil {
			entry.EndTime = req.EndTime
		}
		if req.AllDay != nil {
			entry.AllDay = *req.AllDay
		}
		if req.Status != nil {
			entry.Status = domain.TimeEntryStatus(*req.Status)
		}
		if req.Note != nil {
			entry.Note = *req.Note
		}
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新工时记录成功", entry)
}

func (h *Handler) DeleteTimeEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "工时记录ID无效")
		return
	}

	if err := h.service.DeleteTimeEntry(r.Context(), h.actor(r), entryID); err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除工时记录成功", nil)
}
