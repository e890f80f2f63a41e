package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/scheduler"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) ConfirmDay(w http.ResponseWriter, r *http.Request) {
	workerID, err := strconv.ParseInt(chi.URLParam(r, "workerID"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "员工ID无效")
		return
	}
	date := chi.URLParam(r, "date")

	result, err := h.service.ConfirmDay(r.Context(), h.actor(r), workerID, date)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	// 确认已经完成，通知失败不影响响应
	if result.Created > 0 {
		if err := h.notifyDayConfirmed(r.Context(), workerID, date, result); err != nil {
			slog.Warn("发送日确认通知失败", "workerID", workerID, "date", date, "error", err)
		}
	}

	h.successResponse(w, r, "日确认完成", result)
}

func (h *Handler) notifyDayConfirmed(ctx context.Context, workerID int64, date string, result *scheduler.ConfirmationResult) error {
	user, err := h.repository.GetUserByWorkerID(ctx, workerID)
	if err != nil {
		return err
	}

	return h.publishMail(ctx, domain.MailMessage{
		Type: domain.MailTypeDayConfirmed,
		To:   user.Email,
		Data: domain.DayConfirmedMailData{
			FullName: user.FullName,
			Date:     date,
			Created:  result.Created,
			Skipped:  result.Skipped,
			Hours:    result.Hours,
		},
	})
}
