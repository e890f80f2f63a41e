package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"slices"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
)

// fakeStore 是 Store 的内存实现，并记录写操作次数
type fakeStore struct {
	items       map[int64]*domain.DispatchItem
	assignments map[int64]*domain.ResourceAssignment
	entries     map[int64]*domain.TimeEntry
	nextID      int64
	writes      int

	failCreateEntryAfter int // >0 时第 n 次创建工时记录失败
	createEntryCalls     int
}

var errFakeStore = errors.New("fake store failure")

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:       map[int64]*domain.DispatchItem{},
		assignments: map[int64]*domain.ResourceAssignment{},
		entries:     map[int64]*domain.TimeEntry{},
		nextID:      100,
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

// addItem 直接放入一个派工单并把资源分配给它，不经过校验
func (f *fakeStore) addItem(item *domain.DispatchItem, resources ...domain.ResourceAssignment) *domain.DispatchItem {
	if item.Status == "" {
		item.Status = domain.DispatchStatusPlanned
	}
	f.items[item.ID] = item
	for _, r := range resources {
		r.ID = f.id()
		r.DispatchItemID = item.ID
		r.Date = item.Date
		f.assignments[r.ID] = &r
	}
	return item
}

func (f *fakeStore) copyItem(item *domain.DispatchItem) *domain.DispatchItem {
	c := *item
	c.Assignments = nil
	for _, a := range f.assignments {
		if a.DispatchItemID == item.ID {
			c.Assignments = append(c.Assignments, *a)
		}
	}
	slices.SortFunc(c.Assignments, func(a, b domain.ResourceAssignment) int { return int(a.ID - b.ID) })
	return &c
}

func (f *fakeStore) GetDispatchItem(_ context.Context, id int64) (*domain.DispatchItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return f.copyItem(item), nil
}

func (f *fakeStore) CreateDispatchItem(_ context.Context, item *domain.DispatchItem) error {
	f.writes++
	item.ID = f.id()
	c := *item
	f.items[item.ID] = &c
	return nil
}

func (f *fakeStore) UpdateDispatchItem(_ context.Context, item *domain.DispatchItem) error {
	f.writes++
	if _, ok := f.items[item.ID]; !ok {
		return sql.ErrNoRows
	}
	c := *item
	c.Assignments = nil
	f.items[item.ID] = &c
	for _, a := range f.assignments {
		if a.DispatchItemID == item.ID {
			a.Date = item.Date
		}
	}
	return nil
}

func (f *fakeStore) DeleteDispatchItem(_ context.Context, id int64) error {
	f.writes++
	delete(f.items, id)
	for aid, a := range f.assignments {
		if a.DispatchItemID == id {
			delete(f.assignments, aid)
		}
	}
	return nil
}

func (f *fakeStore) ListDispatchItemsForResourceAndDate(_ context.Context, resourceType domain.ResourceType, resourceID int64, date string, excludeItemID int64) ([]*domain.DispatchItem, error) {
	var out []*domain.DispatchItem
	for _, a := range f.assignments {
		if a.ResourceType != resourceType || a.ResourceID != resourceID || a.Date != date || a.DispatchItemID == excludeItemID {
			continue
		}
		item := f.items[a.DispatchItemID]
		if item.Status == domain.DispatchStatusCancelled {
			continue
		}
		out = append(out, f.copyItem(item))
	}
	slices.SortFunc(out, func(a, b *domain.DispatchItem) int { return int(a.ID - b.ID) })
	return out, nil
}

func (f *fakeStore) GetResourceAssignment(_ context.Context, id int64) (*domain.ResourceAssignment, error) {
	a, ok := f.assignments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *a
	return &c, nil
}

func (f *fakeStore) CreateResourceAssignment(_ context.Context, a *domain.ResourceAssignment) error {
	f.writes++
	a.ID = f.id()
	c := *a
	f.assignments[a.ID] = &c
	return nil
}

func (f *fakeStore) DeleteResourceAssignment(_ context.Context, id int64) error {
	f.writes++
	delete(f.assignments, id)
	return nil
}

// ListPlannedDispatchItemsForWorkerDate 故意按 ID 倒序返回，用于验证处理顺序与存储顺序无关
func (f *fakeStore) ListPlannedDispatchItemsForWorkerDate(ctx context.Context, workerID int64, date string) ([]*domain.DispatchItem, error) {
	items, _ := f.ListDispatchItemsForResourceAndDate(ctx, domain.ResourceTypeWorker, workerID, date, 0)
	slices.Reverse(items)
	return items, nil
}

func (f *fakeStore) FindTimeEntryBySourceDispatchItem(_ context.Context, itemID int64, workerID int64) (*domain.TimeEntry, error) {
	for _, e := range f.entries {
		if e.Meta.SourceDispatchItemID != nil && *e.Meta.SourceDispatchItemID == itemID && e.WorkerID == workerID {
			c := *e
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) HasUnconfirmedWorkers(ctx context.Context, itemID int64) (bool, error) {
	for _, a := range f.assignments {
		if a.DispatchItemID != itemID || a.ResourceType != domain.ResourceTypeWorker {
			continue
		}
		entry, _ := f.FindTimeEntryBySourceDispatchItem(ctx, itemID, a.ResourceID)
		if entry == nil {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateTimeEntry(_ context.Context, entry *domain.TimeEntry) error {
	f.createEntryCalls++
	if f.failCreateEntryAfter > 0 && f.createEntryCalls >= f.failCreateEntryAfter {
		return errFakeStore
	}
	f.writes++
	entry.ID = f.id()
	c := *entry
	f.entries[entry.ID] = &c
	return nil
}

func (f *fakeStore) UpdateDispatchItemStatus(_ context.Context, itemID int64, status domain.DispatchStatus) error {
	f.writes++
	item, ok := f.items[itemID]
	if !ok {
		return sql.ErrNoRows
	}
	item.Status = status
	return nil
}

func (f *fakeStore) GetTimeEntry(_ context.Context, id int64) (*domain.TimeEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *e
	return &c, nil
}

func (f *fakeStore) ListTimeEntriesForWorkerDate(_ context.Context, workerID int64, date string) ([]*domain.TimeEntry, error) {
	var out []*domain.TimeEntry
	for _, e := range f.entries {
		if e.WorkerID == workerID && e.Date == date {
			c := *e
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *domain.TimeEntry) int { return int(a.ID - b.ID) })
	return out, nil
}

func (f *fakeStore) UpdateTimeEntry(_ context.Context, entry *domain.TimeEntry) error {
	f.writes++
	if _, ok := f.entries[entry.ID]; !ok {
		return sql.ErrNoRows
	}
	c := *entry
	f.entries[entry.ID] = &c
	return nil
}

func (f *fakeStore) DeleteTimeEntry(_ context.Context, id int64) error {
	f.writes++
	delete(f.entries, id)
	return nil
}

func (f *fakeStore) entriesForItem(itemID int64) int {
	n := 0
	for _, e := range f.entries {
		if e.Meta.SourceDispatchItemID != nil && *e.Meta.SourceDispatchItemID == itemID {
			n++
		}
	}
	return n
}

// recordingLocker 记录加锁的 key
type recordingLocker struct {
	keys []string
}

func (l *recordingLocker) Acquire(_ context.Context, key string) (func(), error) {
	l.keys = append(l.keys, key)
	return func() {}, nil
}
