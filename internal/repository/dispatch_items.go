package repository

import (
	"context"
	"database/sql"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
)

const dispatchItemColumns = `
	di.id,
	di.location_id,
	to_char(di.date, 'YYYY-MM-DD'),
	di.start_time,
	di.end_time,
	di.all_day,
	di.category,
	di.status,
	di.note,
	di.created_at,
	di.version
`

func dispatchItemDst(item *domain.DispatchItem) []any {
	return []any{
		&item.ID,
		&item.LocationID,
		&item.Date,
		&item.StartTime,
		&item.EndTime,
		&item.AllDay,
		&item.Category,
		&item.Status,
		&item.Note,
		&item.CreatedAt,
		&item.Version,
	}
}

// scanDispatchItemsWithAssignments 解析 dispatch_items LEFT JOIN resource_assignments 的结果，
// 每行由派工单的列加上资源分配的列组成，结果按派工单出现的顺序返回
func scanDispatchItemsWithAssignments(rows *sql.Rows) ([]*domain.DispatchItem, error) {
	itemsMap := make(map[int64]*domain.DispatchItem)
	items := make([]*domain.DispatchItem, 0)

	for rows.Next() {
		var (
			item domain.DispatchItem
			row  struct {
				AssignmentID sql.NullInt64
				ResourceType sql.NullString
				ResourceID   sql.NullInt64
				CreatedAt    sql.NullTime
			}
		)

		dst := append(dispatchItemDst(&item), &row.AssignmentID, &row.ResourceType, &row.ResourceID, &row.CreatedAt)
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		existing, exists := itemsMap[item.ID]
		if !exists {
			// 第一次查到这个派工单
			item.Assignments = make([]domain.ResourceAssignment, 0)
			existing = &item
			itemsMap[item.ID] = existing
			items = append(items, existing)
		}

		// 派工单没有任何资源分配
		if !row.AssignmentID.Valid {
			continue
		}

		existing.Assignments = append(existing.Assignments, domain.ResourceAssignment{
			ID:             row.AssignmentID.Int64,
			DispatchItemID: existing.ID,
			ResourceType:   domain.ResourceType(row.ResourceType.String),
			ResourceID:     row.ResourceID.Int64,
			Date:           existing.Date,
			CreatedAt:      row.CreatedAt.Time,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *Repository) GetDispatchItem(ctx context.Context, id int64) (*domain.DispatchItem, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT ` + dispatchItemColumns + `,
			ra.id,
			ra.resource_type,
			ra.resource_id,
			ra.created_at
		FROM dispatch_items di
		LEFT JOIN resource_assignments ra ON di.id = ra.dispatch_item_id
		WHERE di.id = $1
		ORDER BY ra.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanDispatchItemsWithAssignments(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, sql.ErrNoRows
	}

	return items[0], nil
}

// ListDispatchItems 返回 [from, to] 日期范围内的派工单及其资源分配
func (r *Repository) ListDispatchItems(ctx context.Context, from string, to string) ([]*domain.DispatchItem, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT ` + dispatchItemColumns + `,
			ra.id,
			ra.resource_type,
			ra.resource_id,
			ra.created_at
		FROM dispatch_items di
		LEFT JOIN resource_assignments ra ON di.id = ra.dispatch_item_id
		WHERE di.date BETWEEN $1 AND $2
		ORDER BY di.date, di.id, ra.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDispatchItemsWithAssignments(rows)
}

func (r *Repository) CreateDispatchItem(ctx context.Context, item *domain.DispatchItem) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO dispatch_items (location_id, date, start_time, end_time, all_day, category, status, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`

	args := []any{item.LocationID, item.Date, item.StartTime, item.EndTime, item.AllDay, item.Category, item.Status, item.Note}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&item.ID, &item.CreatedAt, &item.Version); err != nil {
		return err
	}

	item.Assignments = make([]domain.ResourceAssignment, 0)

	return nil
}

// UpdateDispatchItem 使用乐观锁更新派工单，并在同一事务中同步资源分配上冗余的日期
func (r *Repository) UpdateDispatchItem(ctx context.Context, item *domain.DispatchItem) error {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE dispatch_items
		SET
			location_id = $1,
			date = $2,
			start_time = $3,
			end_time = $4,
			all_day = $5,
			category = $6,
			status = $7,
			note = $8,
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING version
	`

	args := []any{
		item.LocationID,
		item.Date,
		item.StartTime,
		item.EndTime,
		item.AllDay,
		item.Category,
		item.Status,
		item.Note,
		item.ID,
		item.Version,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&item.Version); err != nil {
		return err
	}

	query = `
		UPDATE resource_assignments SET date = $1 WHERE dispatch_item_id = $2
	`
	if _, err := tx.ExecContext(ctx, query, item.Date, item.ID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) UpdateDispatchItemStatus(ctx context.Context, itemID int64, status domain.DispatchStatus) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		UPDATE dispatch_items SET status = $1, version = version + 1 WHERE id = $2
	`

	res, err := r.dbpool.ExecContext(ctx, query, status, itemID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// DeleteDispatchItem 资源分配通过外键级联删除
func (r *Repository) DeleteDispatchItem(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		DELETE FROM dispatch_items WHERE id = $1
	`

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) ListDispatchItemsForResourceAndDate(ctx context.Context, resourceType domain.ResourceType, resourceID int64, date string, excludeItemID int64) ([]*domain.DispatchItem, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT DISTINCT ` + dispatchItemColumns + `
		FROM dispatch_items di
		JOIN resource_assignments ra ON di.id = ra.dispatch_item_id
		WHERE ra.resource_type = $1
			AND ra.resource_id = $2
			AND ra.date = $3
			AND di.id <> $4
			AND di.status <> 'CANCELLED'
		ORDER BY di.id
	`

	return r.queryDispatchItems(ctx, query, resourceType, resourceID, date, excludeItemID)
}

// ListPlannedDispatchItemsForWorkerDate 已确认的派工单也一并返回，由日确认根据工时记录判断是否跳过
func (r *Repository) ListPlannedDispatchItemsForWorkerDate(ctx context.Context, workerID int64, date string) ([]*domain.DispatchItem, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT DISTINCT ` + dispatchItemColumns + `
		FROM dispatch_items di
		JOIN resource_assignments ra ON di.id = ra.dispatch_item_id
		WHERE ra.resource_type = 'WORKER'
			AND ra.resource_id = $1
			AND di.date = $2
			AND di.status IN ('PLANNED', 'CONFIRMED')
		ORDER BY di.id
	`

	return r.queryDispatchItems(ctx, query, workerID, date)
}

func (r *Repository) queryDispatchItems(ctx context.Context, query string, args ...any) ([]*domain.DispatchItem, error) {
	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.DispatchItem, 0)
	for rows.Next() {
		item := &domain.DispatchItem{}
		if err := rows.Scan(dispatchItemDst(item)...); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
