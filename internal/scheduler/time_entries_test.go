package scheduler

import (
	"context"
	"testing"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTimeEntry_RecomputesHours(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	source := int64(99)
	entry := &domain.TimeEntry{
		WorkerID:   workerW,
		TimeWindow: w("08:00", "17:00"),
		Hours:      42,
		Meta:       domain.TimeEntryMeta{SourceDispatchItemID: &source},
	}
	require.NoError(t, svc.CreateTimeEntry(context.Background(), workerWActor, entry))

	assert.Equal(t, 9.0, entry.Hours)
	assert.Equal(t, domain.TimeEntryStatusPlanned, entry.Status)
	assert.Nil(t, entry.Meta.SourceDispatchItemID)
}

func TestCreateTimeEntry_ForOtherWorkerDenied(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	entry := &domain.TimeEntry{WorkerID: workerW, TimeWindow: w("08:00", "17:00")}
	err := svc.CreateTimeEntry(context.Background(), workerBActor, entry)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, 0, store.writes)
}

func TestCreateTimeEntry_OverlapWithExisting(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.CreateTimeEntry(ctx, workerWActor, &domain.TimeEntry{WorkerID: workerW, TimeWindow: w("08:00", "12:00")}))

	err := svc.CreateTimeEntry(ctx, workerWActor, &domain.TimeEntry{WorkerID: workerW, TimeWindow: w("11:30", "13:00")})
	assert.ErrorIs(t, err, ErrOverlapConflict)

	// 其他员工同一时间段不冲突
	err = svc.CreateTimeEntry(ctx, adminActor, &domain.TimeEntry{WorkerID: 7, TimeWindow: w("11:30", "13:00")})
	assert.NoError(t, err)
}

func TestUpdateTimeEntry(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	entry := &domain.TimeEntry{WorkerID: workerW, TimeWindow: w("08:00", "12:00")}
	require.NoError(t, svc.CreateTimeEntry(ctx, workerWActor, entry))

	updated, err := svc.UpdateTimeEntry(ctx, workerWActor, entry.ID, func(e *domain.TimeEntry) {
		end := "12:30"
		e.EndTime = &end
	})
	require.NoError(t, err)
	assert.Equal(t, 4.5, updated.Hours)

	// 员工不能把记录转到别人名下
	_, err = svc.UpdateTimeEntry(ctx, workerWActor, entry.ID, func(e *domain.TimeEntry) {
		e.WorkerID = 7
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, workerW, store.entries[entry.ID].WorkerID)
}

func TestDeleteTimeEntry(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	entry := &domain.TimeEntry{WorkerID: workerW, TimeWindow: w("08:00", "12:00")}
	require.NoError(t, svc.CreateTimeEntry(ctx, adminActor, entry))

	assert.ErrorIs(t, svc.DeleteTimeEntry(ctx, workerBActor, entry.ID), ErrPermissionDenied)
	require.NoError(t, svc.DeleteTimeEntry(ctx, workerWActor, entry.ID))
	assert.Empty(t, store.entries)

	assert.ErrorIs(t, svc.DeleteTimeEntry(ctx, workerWActor, entry.ID), ErrNotFound)
}

func TestListTimeEntries(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.CreateTimeEntry(ctx, adminActor, &domain.TimeEntry{WorkerID: workerW, TimeWindow: w("08:00", "12:00")}))

	entries, err := svc.ListTimeEntries(ctx, workerWActor, workerW, day)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = svc.ListTimeEntries(ctx, workerBActor, workerW, day)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
