package repository

import (
	"context"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/domain"
)

func (r *Repository) GetResourceAssignment(ctx context.Context, id int64) (*domain.ResourceAssignment, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT dispatch_item_id, resource_type, resource_id, to_char(date, 'YYYY-MM-DD'), created_at
		FROM resource_assignments WHERE id = $1
	`

	a := &domain.ResourceAssignment{
		ID: id,
	}

	dst := []any{&a.DispatchItemID, &a.ResourceType, &a.ResourceID, &a.Date, &a.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return a, nil
}

func (r *Repository) CreateResourceAssignment(ctx context.Context, a *domain.ResourceAssignment) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO resource_assignments (dispatch_item_id, resource_type, resource_id, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	args := []any{a.DispatchItemID, a.ResourceType, a.ResourceID, a.Date}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteResourceAssignment(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		DELETE FROM resource_assignments WHERE id = $1
	`

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
