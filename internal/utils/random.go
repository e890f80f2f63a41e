package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonFirstNames = []string{
	"Lukas", "Jonas", "Leon", "Finn", "Paul", "Felix", "Maximilian", "Elias",
	"Anna", "Lena", "Marie", "Sophie", "Lea", "Hannah", "Jürgen", "Björn",
}

var commonSurnames = []string{
	"Müller", "Schmidt", "Schneider", "Fischer", "Weber", "Meyer", "Wagner", "Becker",
	"Schulz", "Hoffmann", "Schäfer", "Koch", "Bauer", "Richter", "Klein", "Wolf",
}

func GenerateRandomName() string {
	return commonFirstNames[rand.Intn(len(commonFirstNames))] + " " + commonSurnames[rand.Intn(len(commonSurnames))]
}

var digits = "0123456789"

var umlautReplacer = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "Ä", "Ae", "Ö", "Oe", "Ü", "Ue", "ß", "ss")

// GenerateUsernameFromName 取名的首字母加姓，再加上 1~3 位随机数字，例如 jmueller42
func GenerateUsernameFromName(fullName string) string {
	parts := strings.Fields(umlautReplacer.Replace(fullName))
	username := ""
	if len(parts) > 0 {
		username = strings.ToLower(parts[0][:1] + parts[len(parts)-1])
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

// GenerateRandomUser 生成绑定到 workerID 的员工账号
func GenerateRandomUser(password string, emailDomainName string, workerID int64) (*domain.User, error) {
	fullName := GenerateRandomName()
	username := GenerateUsernameFromName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         domain.RoleWorker,
		WorkerID:     &workerID,
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[rand.Intn(len(letters))]
	}
	return string(randomPassword)
}

var seedCategories = []domain.Category{
	domain.CategoryProjekt,
	domain.CategorySchulung,
	domain.CategoryBuero,
	domain.CategoryTraining,
	domain.CategoryMeeting,
}

// GenerateRandomDispatchItem 在 date 当天生成一个派工单，偶尔是全天或跨夜
func GenerateRandomDispatchItem(date string, locationID int64) *domain.DispatchItem {
	item := &domain.DispatchItem{
		LocationID: &locationID,
		Category:   seedCategories[rand.Intn(len(seedCategories))],
		Status:     domain.DispatchStatusPlanned,
		Note:       "Auftrag " + fmt.Sprintf("%04d", rand.Intn(10000)),
	}

	switch n := rand.Intn(10); {
	case n == 0:
		item.TimeWindow = domain.NewAllDayWindow(date)
	case n == 1:
		// 夜班
		start := 20 + rand.Intn(3)
		item.TimeWindow = domain.NewTimeWindow(date, fmt.Sprintf("%02d:00", start), fmt.Sprintf("%02d:00", start-16))
	default:
		start := 6 + rand.Intn(10)
		length := 1 + rand.Intn(4)
		item.TimeWindow = domain.NewTimeWindow(date, fmt.Sprintf("%02d:%02d", start, rand.Intn(4)*15), fmt.Sprintf("%02d:00", start+length))
	}

	return item
}
