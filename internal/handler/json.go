package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/lock"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/scheduler"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	amqp "github.com/rabbitmq/amqp091-go"
)

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("服务器内部错误", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "服务器内部错误", http.StatusInternalServerError)
	}
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: false,
		Message: msg,
		Data:    nil,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.errorResponse(w, r, validationErrors[0].Translate(h.translator))
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: "服务器内部错误",
		Data:    nil,
	})
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

// serviceError 将调度服务返回的错误转换为响应
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		conflict *scheduler.OverlapConflictError
		pgErr    *pgconn.PgError
	)

	switch {
	case errors.As(err, &conflict):
		// 冲突的时间段一并返回，前端据此提示
		h.writeJSON(w, r, http.StatusOK, Response{
			Success: false,
			Message: conflict.Result.Reason,
			Data:    conflict.Result,
		})
	case errors.Is(err, scheduler.ErrPermissionDenied):
		h.errorResponse(w, r, "权限不足")
	case errors.Is(err, scheduler.ErrNotFound),
		errors.Is(err, scheduler.ErrInvalidInput),
		errors.Is(err, scheduler.ErrNoLocation),
		errors.Is(err, scheduler.ErrItemCancelled),
		errors.Is(err, lock.ErrNotAcquired):
		h.errorResponse(w, r, err.Error())
	case errors.Is(err, sql.ErrNoRows):
		// 乐观锁版本不匹配
		h.errorResponse(w, r, "数据已被修改，请刷新后重试")
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "time_entries_source_dispatch_item_worker_idx":
			h.errorResponse(w, r, "该员工已经为此派工单生成了工时记录")
		case "resource_assignments_dispatch_item_id_fkey":
			h.errorResponse(w, r, "派工单不存在")
		default:
			h.internalServerError(w, r, err)
		}
	default:
		h.internalServerError(w, r, err)
	}
}

// publishMail 将邮件序列化后发送到邮件队列，由 cmd/mail 消费
func (h *Handler) publishMail(ctx context.Context, mailMessage domain.MailMessage) error {
	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		h.config.RabbitMQ.Queue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	)
}
