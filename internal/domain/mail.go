package domain

const (
	MailTypeCreateUser    = "create_user"
	MailTypeResetPassword = "reset_password"
	MailTypeDayConfirmed  = "day_confirmed"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type DayConfirmedMailData struct {
	FullName string  `json:"fullName"`
	Date     string  `json:"date"`
	Created  int     `json:"created"`
	Skipped  int     `json:"skipped"`
	Hours    float64 `json:"hours"`
}
