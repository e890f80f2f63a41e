package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
)

const timeEntryColumns = `
	id,
	worker_id,
	to_char(date, 'YYYY-MM-DD'),
	start_time,
	end_time,
	all_day,
	hours::float8,
	status,
	note,
	source_dispatch_item_id,
	created_at,
	version
`

func timeEntryDst(entry *domain.TimeEntry) []any {
	return []any{
		&entry.ID,
		&entry.WorkerID,
		&entry.Date,
		&entry.StartTime,
		&entry.EndTime,
		&entry.AllDay,
		&entry.Hours,
		&entry.Status,
		&entry.Note,
		&entry.Meta.SourceDispatchItemID,
		&entry.CreatedAt,
		&entry.Version,
	}
}

func (r *Repository) GetTimeEntry(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE id = $1`

	entry := &domain.TimeEntry{}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(timeEntryDst(entry)...); err != nil {
		return nil, err
	}

	return entry, nil
}

// FindTimeEntryBySourceDispatchItem 没有对应记录时返回 nil, nil
func (r *Repository) FindTimeEntryBySourceDispatchItem(ctx context.Context, itemID int64, workerID int64) (*domain.TimeEntry, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE source_dispatch_item_id = $1 AND worker_id = $2`

	entry := &domain.TimeEntry{}
	if err := r.dbpool.QueryRowContext(ctx, query, itemID, workerID).Scan(timeEntryDst(entry)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return entry, nil
}

// HasUnconfirmedWorkers 派工单上每个员工都有来源于它的工时记录时返回 false
func (r *Repository) HasUnconfirmedWorkers(ctx context.Context, itemID int64) (bool, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM resource_assignments ra
			WHERE ra.dispatch_item_id = $1
				AND ra.resource_type = 'WORKER'
				AND NOT EXISTS (
					SELECT 1
					FROM time_entries te
					WHERE te.source_dispatch_item_id = ra.dispatch_item_id
						AND te.worker_id = ra.resource_id
				)
		)
	`

	var pending bool
	if err := r.dbpool.QueryRowContext(ctx, query, itemID).Scan(&pending); err != nil {
		return false, err
	}

	return pending, nil
}

func (r *Repository) ListTimeEntriesForWorkerDate(ctx context.Context, workerID int64, date string) ([]*domain.TimeEntry, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE worker_id = $1 AND date = $2
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, workerID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.TimeEntry, 0)
	for rows.Next() {
		entry := &domain.TimeEntry{}
		if err := rows.Scan(timeEntryDst(entry)...); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *Repository) CreateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO time_entries (worker_id, date, start_time, end_time, all_day, hours, status, note, source_dispatch_item_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, version
	`

	args := []any{
		entry.WorkerID,
		entry.Date,
		entry.StartTime,
		entry.EndTime,
		entry.AllDay,
		entry.Hours,
		entry.Status,
		entry.Note,
		entry.Meta.SourceDispatchItemID,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt, &entry.Version); err != nil {
		return err
	}

	return nil
}

// UpdateTimeEntry 不修改 source_dispatch_item_id
func (r *Repository) UpdateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		UPDATE time_entries
		SET
			worker_id = $1,
			date = $2,
			start_time = $3,
			end_time = $4,
			all_day = $5,
			hours = $6,
			status = $7,
			note = $8,
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING version
	`

	args := []any{
		entry.WorkerID,
		entry.Date,
		entry.StartTime,
		entry.EndTime,
		entry.AllDay,
		entry.Hours,
		entry.Status,
		entry.Note,
		entry.ID,
		entry.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&entry.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteTimeEntry(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		DELETE FROM time_entries WHERE id = $1
	`

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
