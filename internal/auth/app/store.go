package app

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/miniboss/internal/auth/store"
	"github.com/aussiebroadwan/miniboss/internal/auth/store/drivers/mysql"
	"github.com/aussiebroadwan/miniboss/internal/auth/store/drivers/sqlite"
)

// OpenStore connects to the configured database. Migrations are applied
// unless skipMigrations is set.
func OpenStore(ctx context.Context, cfg Config, skipMigrations bool) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.DatabaseDriver {
	case DriverMySQL:
		st, err = mysql.NewStore(ctx, cfg.MySQLDSN)
	default:
		st, err = sqlite.NewStore(cfg.DatabaseFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if skipMigrations {
		return st, nil
	}
	if err := st.ApplyMigrations(); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return st, nil
}
