package domain

import (
	"time"
)

type Role string

const (
	RoleWorker Role = "WORKER"
	RoleAdmin  Role = "ADMIN"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	WorkerID     *int64    `json:"workerID"` // 为空表示该账号不对应任何员工（例如纯管理账号）
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

// Actor 表示发起本次操作的用户，由调用方显式传入，不从全局状态中读取
type Actor struct {
	UserID   int64
	Role     Role
	WorkerID *int64
}

func (u *User) Actor() Actor {
	return Actor{
		UserID:   u.ID,
		Role:     u.Role,
		WorkerID: u.WorkerID,
	}
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsWorker 判断该用户本人是否就是 workerID 对应的员工
func (a Actor) IsWorker(workerID int64) bool {
	return a.WorkerID != nil && *a.WorkerID == workerID
}
