package handler

import (
	"context"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/config"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/repository"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/scheduler"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

// MailPublisher 是 *amqp.Channel 中发布消息所需的部分
type MailPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	service     *scheduler.Service
	translator  ut.Translator
	mailChannel MailPublisher
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, svc *scheduler.Service, mailCh MailPublisher, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	if err := registerCustomValidations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		service:     svc,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

// registerCustomValidations 注册 hhmm 和 isodate 两个校验规则及其中文提示
func registerCustomValidations(validate *validator.Validate, trans ut.Translator) error {
	rules := []struct {
		tag     string
		fn      validator.Func
		message string
	}{
		{
			tag: "hhmm",
			fn: func(fl validator.FieldLevel) bool {
				_, err := utils.ToMinutes(fl.Field().String())
				return err == nil
			},
			message: "{0}必须是 HH:MM 格式的时间",
		},
		{
			tag: "isodate",
			fn: func(fl validator.FieldLevel) bool {
				return utils.ValidateDate(fl.Field().String()) == nil
			},
			message: "{0}必须是 YYYY-MM-DD 格式的日期",
		},
	}

	for _, rule := range rules {
		if err := validate.RegisterValidation(rule.tag, rule.fn); err != nil {
			return err
		}

		message := rule.message
		tag := rule.tag
		err := validate.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	adminOnly := h.RequiredRole([]domain.Role{domain.RoleAdmin})

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 工时计算不依赖任何数据
	h.Mux.Get("/hours", h.ComputeHours)

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.myInfo)

		r.Route("/my-info", func(r chi.Router) {
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(adminOnly).Post("/", h.CreateUser)
			r.With(adminOnly).Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(adminOnly)
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).Delete("/", h.DeleteUser)
				r.Patch("/password", h.UpdateUserPassword)
			})
		})

		// 离职的员工不能再修改派工和工时
		r.Group(func(r chi.Router) {
			r.Use(h.preventInactiveUser)

			r.Route("/dispatch-items", func(r chi.Router) {
				r.Get("/", h.GetDispatchItems)
				r.Post("/", h.CreateDispatchItem)
				r.Post("/check", h.CheckAssignment)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.dispatchItem)
					r.Get("/", h.GetDispatchItem)
					r.Patch("/", h.UpdateDispatchItem)
					r.Delete("/", h.DeleteDispatchItem)
					r.Post("/assignments", h.AssignResource)
					r.Delete("/assignments/{assignmentID}", h.UnassignResource)
				})
			})

			r.Post("/workers/{workerID}/days/{date}/confirm", h.ConfirmDay)

			r.Route("/time-entries", func(r chi.Router) {
				r.Get("/", h.GetTimeEntries)
				r.Post("/", h.CreateTimeEntry)
				r.Route("/{id}", func(r chi.Router) {
					r.Patch("/", h.UpdateTimeEntry)
					r.Delete("/", h.DeleteTimeEntry)
				})
			})
		})
	})
}
