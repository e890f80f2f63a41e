package utils

import (
	"errors"
	"fmt"
	"math"
)

const MinutesPerDay = 24 * 60

var ErrInvalidTimeFormat = errors.New("时间格式错误")

// ToMinutes 将 HH:MM 转换为从零点开始的分钟数
// 小时和分钟都必须是两位数字，不接受符号、单位数或多余的前导零
func ToMinutes(t string) (int, error) {
	if len(t) != 5 || t[2] != ':' || !isDigits(t[:2]) || !isDigits(t[3:]) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, t)
	}

	hours := int(t[0]-'0')*10 + int(t[1]-'0')
	minutes := int(t[3]-'0')*10 + int(t[4]-'0')
	if hours > 23 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, t)
	}

	return hours*60 + minutes, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// DurationMinutes 计算两个时间点之间的分钟数
// 结束时间小于或等于开始时间时一律视为跨夜到第二天，因此结果不会为 0
func DurationMinutes(start string, end string) (int, error) {
	s, err := ToMinutes(start)
	if err != nil {
		return 0, err
	}
	e, err := ToMinutes(end)
	if err != nil {
		return 0, err
	}

	d := e - s
	if d <= 0 {
		d += MinutesPerDay
	}
	return d, nil
}

// Hours 返回工时，四舍五入保留两位小数
func Hours(start string, end string) (float64, error) {
	d, err := DurationMinutes(start, end)
	if err != nil {
		return 0, err
	}
	return RoundHours(float64(d) / 60), nil
}

func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
