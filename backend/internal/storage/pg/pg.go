package pg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/itchan-dev/postmove/shared/config"
	"github.com/itchan-dev/postmove/shared/logger"
	sharedpg "github.com/itchan-dev/postmove/shared/storage/pg"
)

type Storage struct {
	db  *sql.DB
	cfg *config.Config
}

func New(cfg *config.Config) (*Storage, error) {
	logger.Log.Info("connecting to db", "host", cfg.Private.Pg.Host, "dbname", cfg.Private.Pg.Dbname)
	db, err := sharedpg.Connect(cfg, sharedpg.DefaultConnectionConfig())
	if err != nil {
		return nil, err
	}
	logger.Log.Info("successfully connected to db")
	return &Storage{db: db, cfg: cfg}, nil
}

// WithTx runs fn inside one transaction. Storage methods taking a Querier
// join it; the transaction commits only if fn returns nil.
func (s *Storage) WithTx(ctx context.Context, fn func(q sharedpg.Querier) error) error {
	return sharedpg.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(tx)
	})
}

// Querier exposes the pool for single statements outside a transaction.
func (s *Storage) Querier() sharedpg.Querier {
	return s.db
}

func (s *Storage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}
