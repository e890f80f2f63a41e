package handler

import (
	"net/http"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/utils"
)

// ComputeHours 计算两个时间之间的工时，结束时间不晚于开始时间时按跨夜计算
func (h *Handler) ComputeHours(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Start string `validate:"required,hhmm"`
		End   string `validate:"required,hhmm"`
	}{
		Start: r.URL.Query().Get("start"),
		End:   r.URL.Query().Get("end"),
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	hours, err := utils.Hours(req.Start, req.End)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.successResponse(w, r, "计算工时成功", map[string]float64{"hours": hours})
}
