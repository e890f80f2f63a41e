package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ecnc-dev/dispatch-manager/backend/internal/config"
	"github.com/ecnc-dev/dispatch-manager/backend/internal/scheduler"
)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

// queryContext 在调用方的 context 上附加单条查询的超时
func (r *Repository) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
}

func (r *Repository) txContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
}

var _ scheduler.Store = (*Repository)(nil)
