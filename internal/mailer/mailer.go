package mailer

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

type mailTemplate struct {
	subject string
	file    string
	newData func() any
}

var templates = map[string]mailTemplate{
	domain.MailTypeCreateUser: {
		subject: "派工系统 - 账户信息",
		file:    "templates/create_user.html",
		newData: func() any { return &domain.CreateUserMailData{} },
	},
	domain.MailTypeResetPassword: {
		subject: "派工系统 - 重置密码",
		file:    "templates/reset_password.html",
		newData: func() any { return &domain.ResetPasswordMailData{} },
	},
	domain.MailTypeDayConfirmed: {
		subject: "派工系统 - 日确认结果",
		file:    "templates/day_confirmed.html",
		newData: func() any { return &domain.DayConfirmedMailData{} },
	},
}

var ErrUnsupportedType = errors.New("不支持的邮件类型")

// Template 返回邮件类型对应的标题和正文模板
func Template(mailType string) (string, *template.Template, error) {
	mt, ok := templates[mailType]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedType, mailType)
	}

	tmpl, err := template.ParseFS(templateFS, mt.file)
	if err != nil {
		return "", nil, err
	}

	return mt.subject, tmpl, nil
}

// Data 将消息中的数据转换为邮件类型对应的结构体
// 从队列反序列化得到的 Data 是以 JSON 字段名为键的 map，模板按结构体字段名取值，所以需要再解码一次
func Data(mailMessage domain.MailMessage) (any, error) {
	mt, ok := templates[mailMessage.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, mailMessage.Type)
	}

	raw, err := json.Marshal(mailMessage.Data)
	if err != nil {
		return nil, err
	}

	data := mt.newData()
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("邮件数据格式错误: %w", err)
	}

	return data, nil
}

// Render 渲染邮件正文，主要用于预览和测试
func Render(mailMessage domain.MailMessage) (string, string, error) {
	subject, tmpl, err := Template(mailMessage.Type)
	if err != nil {
		return "", "", err
	}

	data, err := Data(mailMessage)
	if err != nil {
		return "", "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", err
	}

	return subject, buf.String(), nil
}
