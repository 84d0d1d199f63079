package mysql_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/miniboss/internal/auth/store"
	"github.com/aussiebroadwan/miniboss/internal/auth/store/drivers/mysql"
	"github.com/aussiebroadwan/miniboss/internal/auth/store/storetest"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startMySQL runs a throwaway MySQL server. The test is skipped when no
// container runtime is available.
func startMySQL(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MySQL container test in short mode")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.4",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "miniboss",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("container runtime unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306")
	require.NoError(t, err)

	return fmt.Sprintf("root:miniboss@tcp(%s:%s)/", host, port.Port())
}

func TestStore_MySQL(t *testing.T) {
	base := startMySQL(t)

	var n int
	storetest.Run(t, func(t *testing.T) store.Store {
		// One database per subtest keeps the first-user semantics isolated
		n++
		dbName := fmt.Sprintf("miniboss_%d", n)

		admin, err := mysql.NewStore(t.Context(), base)
		require.NoError(t, err)
		_, err = admin.DB().ExecContext(t.Context(), "CREATE DATABASE "+dbName)
		require.NoError(t, err)
		require.NoError(t, admin.Close())

		s, err := mysql.NewStore(t.Context(), base+dbName)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		require.NoError(t, s.ApplyMigrations())
		return s
	})
}
