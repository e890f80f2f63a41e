package mailer

import (
	"encoding/json"
	"testing"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_DayConfirmedFromQueuePayload(t *testing.T) {
	body, err := json.Marshal(domain.MailMessage{
		Type: domain.MailTypeDayConfirmed,
		To:   "lena@example.com",
		Data: domain.DayConfirmedMailData{
			FullName: "Lena Schmidt",
			Date:     "2025-06-10",
			Created:  2,
			Skipped:  1,
			Hours:    8,
		},
	})
	require.NoError(t, err)

	// 消费者拿到的是反序列化后的 map
	var msg domain.MailMessage
	require.NoError(t, json.Unmarshal(body, &msg))

	subject, html, err := Render(msg)
	require.NoError(t, err)
	assert.Equal(t, "派工系统 - 日确认结果", subject)
	assert.Contains(t, html, "Lena Schmidt")
	assert.Contains(t, html, "2025-06-10")
	assert.Contains(t, html, "共 8 小时")
}

func TestRender_QueuePayloadFillsEveryTemplate(t *testing.T) {
	tests := []struct {
		name string
		msg  domain.MailMessage
		want []string
	}{
		{
			name: "create user",
			msg: domain.MailMessage{
				Type: domain.MailTypeCreateUser,
				Data: domain.CreateUserMailData{FullName: "Jonas Weber", Username: "jweber17", Password: "Xy7#pQ"},
			},
			want: []string{"Jonas Weber", "jweber17", "Xy7#pQ"},
		},
		{
			name: "reset password",
			msg: domain.MailMessage{
				Type: domain.MailTypeResetPassword,
				Data: domain.ResetPasswordMailData{FullName: "Jonas Weber", OTP: "042137", Expiration: 5},
			},
			want: []string{"Jonas Weber", "042137", "5 分钟"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(tt.msg)
			require.NoError(t, err)

			var msg domain.MailMessage
			require.NoError(t, json.Unmarshal(body, &msg))

			_, html, err := Render(msg)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, html, want)
			}
		})
	}
}

func TestData_RejectsMalformedPayload(t *testing.T) {
	_, err := Data(domain.MailMessage{
		Type: domain.MailTypeDayConfirmed,
		Data: map[string]any{"created": "zwei"},
	})
	assert.Error(t, err)
}

func TestRender_EscapesHTML(t *testing.T) {
	_, html, err := Render(domain.MailMessage{
		Type: domain.MailTypeCreateUser,
		Data: domain.CreateUserMailData{FullName: "<script>", Username: "u", Password: "p"},
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestTemplate_UnsupportedType(t *testing.T) {
	_, _, err := Template("change_email")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
