package scheduler

import (
	"errors"
	"fmt"
)

var (
	ErrPermissionDenied = errors.New("权限不足")
	ErrOverlapConflict  = errors.New("时间冲突")
	ErrStoreFailure     = errors.New("存储操作失败")
	ErrNotFound         = errors.New("记录不存在")
	ErrInvalidInput     = errors.New("参数错误")
	ErrNoLocation       = errors.New("派工单没有地点，不能分配资源")
	ErrItemCancelled    = errors.New("派工单已取消")
)

// OverlapConflictError 携带冲突的时间段，供前端展示
type OverlapConflictError struct {
	Result ValidationResult
}

func (e *OverlapConflictError) Error() string {
	return e.Result.Reason
}

func (e *OverlapConflictError) Is(target error) bool {
	return target == ErrOverlapConflict
}

// StoreError 包装持久化层返回的错误，不在本地重试
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreFailure
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

func invalidInput(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
