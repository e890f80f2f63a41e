package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssign_Succeeds(t *testing.T) {
	store := newFakeStore()
	store.addItem(&domain.DispatchItem{ID: 1, LocationID: int64Ptr(1), TimeWindow: w("08:00", "12:00")})
	svc, locker := newTestService(store)

	a, err := svc.Assign(context.Background(), adminActor, 1, domain.ResourceTypeVehicle, 3)
	require.NoError(t, err)
	assert.NotZero(t, a.ID)
	assert.Equal(t, day, a.Date)
	assert.Equal(t, []string{AssignmentLockKey(domain.ResourceTypeVehicle, 3, day)}, locker.keys)
}

func TestAssign_RejectsDuplicateOnSameItem(t *testing.T) {
	store := newFakeStore()
	store.addItem(&domain.DispatchItem{ID: 1, LocationID: int64Ptr(1), TimeWindow: w("08:00", "12:00")}, workerOn(workerW))
	svc, _ := newTestService(store)

	_, err := svc.Assign(context.Background(), adminActor, 1, domain.ResourceTypeWorker, workerW)
	assert.ErrorIs(t, err, ErrOverlapConflict)
}

func TestAssign_RequiresLocation(t *testing.T) {
	store := newFakeStore()
	store.addItem(&domain.DispatchItem{ID: 1, TimeWindow: w("08:00", "12:00")})
	svc, _ := newTestService(store)

	_, err := svc.Assign(context.Background(), adminActor, 1, domain.ResourceTypeDevice, 9)
	assert.ErrorIs(t, err, ErrNoLocation)
	assert.Equal(t, 0, store.writes)
}

func TestAssign_CancelledItem(t *testing.T) {
	store := newFakeStore()
	store.addItem(&domain.DispatchItem{ID: 1, LocationID: int64Ptr(1), TimeWindow: w("08:00", "12:00"), Status: domain.DispatchStatusCancelled})
	svc, _ := newTestService(store)

	_, err := svc.Assign(context.Background(), adminActor, 1, domain.ResourceTypeDevice, 9)
	assert.ErrorIs(t, err, ErrItemCancelled)
}

func TestAssign_OnlyAdmin(t *testing.T) {
	store := newFakeStore()
	store.addItem(&domain.DispatchItem{ID: 1, LocationID: int64Ptr(1), TimeWindow: w("08:00", "12:00")})
	svc, _ := newTestService(store)

	_, err := svc.Assign(context.Background(), workerWActor, 1, domain.ResourceTypeWorker, workerW)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, 0, store.writes)
}

func TestAssign_UnknownItem(t *testing.T) {
	svc, _ := newTestService(newFakeStore())

	_, err := svc.Assign(context.Background(), adminActor, 404, domain.ResourceTypeWorker, workerW)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssign_OtherDateDoesNotConflict(t *testing.T) {
	store := newFakeStore()
	store.addItem(&domain.DispatchItem{ID: 1, LocationID: int64Ptr(1), TimeWindow: w("08:00", "12:00")}, workerOn(workerW))
	store.addItem(&domain.DispatchItem{ID: 2, LocationID: int64Ptr(1), TimeWindow: domain.NewTimeWindow("2025-06-11", "08:00", "12:00")})
	svc, _ := newTestService(store)

	_, err := svc.Assign(context.Background(), adminActor, 2, domain.ResourceTypeWorker, workerW)
	assert.NoError(t, err)
}

// 员工 W 在 2025-06-10 有 08:00–12:00 和 13:00–17:00 两个派工单，确认后再分配 11:00–14:00 必须失败
func TestEndToEnd_ConfirmThenConflictingAssignment(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	var ids []int64
	for _, window := range []domain.TimeWindow{w("08:00", "12:00"), w("13:00", "17:00"), w("11:00", "14:00")} {
		item := &domain.DispatchItem{LocationID: int64Ptr(1), TimeWindow: window, Category: domain.CategoryProjekt}
		require.NoError(t, svc.CreateDispatchItem(ctx, adminActor, item))
		ids = append(ids, item.ID)
	}

	_, err := svc.Assign(ctx, adminActor, ids[0], domain.ResourceTypeWorker, workerW)
	require.NoError(t, err)
	_, err = svc.Assign(ctx, adminActor, ids[1], domain.ResourceTypeWorker, workerW)
	require.NoError(t, err)

	res, err := svc.ConfirmDay(ctx, workerWActor, workerW, day)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)

	existing, err := store.ListDispatchItemsForResourceAndDate(ctx, domain.ResourceTypeWorker, workerW, day, 0)
	require.NoError(t, err)
	windows := make([]domain.TimeWindow, 0, len(existing))
	for _, item := range existing {
		windows = append(windows, item.TimeWindow)
	}
	validation, err := ValidateAssignment(w("11:00", "14:00"), windows)
	require.NoError(t, err)
	assert.False(t, validation.OK)

	_, err = svc.Assign(ctx, adminActor, ids[2], domain.ResourceTypeWorker, workerW)
	var conflict *OverlapConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Contains(t, []int64{ids[0], ids[1]}, conflict.Result.ConflictingID)
}

func TestCreateDispatchItem_Validates(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	item := &domain.DispatchItem{TimeWindow: w("08:00", "08:00"), Category: domain.CategoryBuero}
	err := svc.CreateDispatchItem(context.Background(), adminActor, item)
	assert.ErrorIs(t, err, ErrInvalidInput)

	item = &domain.DispatchItem{TimeWindow: w("08:00", "09:00"), Category: domain.CategoryBuero}
	require.NoError(t, svc.CreateDispatchItem(context.Background(), adminActor, item))
	assert.Equal(t, domain.DispatchStatusPlanned, item.Status)
}

func TestUpdateDispatchItem_RevalidatesAssignments(t *testing.T) {
	store := newFakeStore()
	store.addItem(&domain.DispatchItem{ID: 1, LocationID: int64Ptr(1), TimeWindow: w("08:00", "12:00"), Category: domain.CategoryProjekt}, workerOn(workerW))
	store.addItem(&domain.DispatchItem{ID: 2, LocationID: int64Ptr(1), TimeWindow: w("13:00", "17:00"), Category: domain.CategoryProjekt}, workerOn(workerW))
	svc, _ := newTestService(store)
	ctx := context.Background()

	_, err := svc.UpdateDispatchItem(ctx, adminActor, 2, func(item *domain.DispatchItem) {
		start := "11:00"
		item.StartTime = &start
	})
	assert.ErrorIs(t, err, ErrOverlapConflict)
	assert.Equal(t, "13:00", *store.items[2].StartTime)

	// 移动到另一天时冗余日期随之更新
	updated, err := svc.UpdateDispatchItem(ctx, adminActor, 2, func(item *domain.DispatchItem) {
		item.Date = "2025-06-11"
	})
	require.NoError(t, err)
	require.Len(t, updated.Assignments, 1)
	assert.Equal(t, "2025-06-11", updated.Assignments[0].Date)

	items, err := store.ListDispatchItemsForResourceAndDate(ctx, domain.ResourceTypeWorker, workerW, "2025-06-11", 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestUpdateDispatchItem_DateMoveLocksBothDays(t *testing.T) {
	store := newFakeStore()
	store.addItem(&domain.DispatchItem{ID: 1, LocationID: int64Ptr(1), TimeWindow: w("08:00", "12:00"), Category: domain.CategoryProjekt}, workerOn(workerW))
	svc, locker := newTestService(store)

	_, err := svc.UpdateDispatchItem(context.Background(), adminActor, 1, func(item *domain.DispatchItem) {
		item.Date = "2025-06-11"
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		AssignmentLockKey(domain.ResourceTypeWorker, workerW, day),
		AssignmentLockKey(domain.ResourceTypeWorker, workerW, "2025-06-11"),
	}, locker.keys)
}

func TestUpdateDispatchItem_ShrinkingOwnWindowDoesNotConflictWithItself(t *testing.T) {
	store := newFakeStore()
	store.addItem(&domain.DispatchItem{ID: 1, LocationID: int64Ptr(1), TimeWindow: w("08:00", "12:00"), Category: domain.CategoryProjekt}, workerOn(workerW))
	svc, _ := newTestService(store)

	_, err := svc.UpdateDispatchItem(context.Background(), adminActor, 1, func(item *domain.DispatchItem) {
		end := "11:00"
		item.EndTime = &end
	})
	assert.NoError(t, err)
}

func TestUpdateDispatchItem_CancelledIsTerminal(t *testing.T) {
	store := newFakeStore()
	store.addItem(&domain.DispatchItem{ID: 1, TimeWindow: w("08:00", "12:00"), Category: domain.CategoryProjekt, Status: domain.DispatchStatusCancelled})
	svc, _ := newTestService(store)

	_, err := svc.UpdateDispatchItem(context.Background(), adminActor, 1, func(item *domain.DispatchItem) {
		item.Status = domain.DispatchStatusPlanned
	})
	assert.ErrorIs(t, err, ErrItemCancelled)
}

func TestUnassign_KeepsDispatchItem(t *testing.T) {
	store := newFakeStore()
	store.addItem(&domain.DispatchItem{ID: 1, LocationID: int64Ptr(1), TimeWindow: w("08:00", "12:00")}, workerOn(workerW))
	svc, _ := newTestService(store)

	var assignmentID int64
	for id := range store.assignments {
		assignmentID = id
	}

	assert.ErrorIs(t, svc.Unassign(context.Background(), adminActor, 2, assignmentID), ErrNotFound)
	require.NoError(t, svc.Unassign(context.Background(), adminActor, 1, assignmentID))
	assert.Empty(t, store.assignments)
	assert.Contains(t, store.items, int64(1))
}

func TestCheckAssignment(t *testing.T) {
	store := newFakeStore()
	store.addItem(&domain.DispatchItem{ID: 1, LocationID: int64Ptr(1), TimeWindow: w("08:00", "12:00")}, workerOn(workerW))
	svc, _ := newTestService(store)
	ctx := context.Background()

	res, err := svc.CheckAssignment(ctx, adminActor, domain.ResourceTypeWorker, workerW, w("11:00", "13:00"), 0)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, int64(1), res.ConflictingID)

	// 编辑派工单自身时排除它
	res, err = svc.CheckAssignment(ctx, adminActor, domain.ResourceTypeWorker, workerW, w("11:00", "13:00"), 1)
	require.NoError(t, err)
	assert.True(t, res.OK)

	_, err = svc.CheckAssignment(ctx, adminActor, "BOAT", 1, w("11:00", "13:00"), 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteDispatchItem_CascadesAssignments(t *testing.T) {
	store := newFakeStore()
	store.addItem(&domain.DispatchItem{ID: 1, LocationID: int64Ptr(1), TimeWindow: w("08:00", "12:00")}, workerOn(workerW))
	svc, _ := newTestService(store)

	require.ErrorIs(t, svc.DeleteDispatchItem(context.Background(), workerWActor, 1), ErrPermissionDenied)
	require.NoError(t, svc.DeleteDispatchItem(context.Background(), adminActor, 1))
	assert.Empty(t, store.items)
	assert.Empty(t, store.assignments)
}
