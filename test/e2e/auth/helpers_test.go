package auth_test

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/miniboss/pkg/authsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for the end-to-end tests.
 * This includes container setup, service operations, and assertions.
 */

const (
	testImageName = "miniboss-test:latest"

	internalRedirectURI = "http://localhost/login/callback"
	adminEmail          = "admin@example.com"
	userEmail           = "alice@example.com"
	testPassword        = "Password123!"
)

// imageBuilt is set by TestMain once the image exists.
var imageBuilt bool

// TestMain builds the Docker image once before all tests and removes it
// after they complete. Without Docker the tests are skipped.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	fmt.Fprintf(os.Stdout, "Building miniboss Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stdout, " skipped (%v)\n", err)
		os.Exit(m.Run())
	}
	imageBuilt = true
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up miniboss Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/miniboss/Dockerfile",
		"../../../")
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run()
}

func cleanupDockerImage() {
	cmd := exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // image might not exist
}

// setupContainer starts miniboss with a seeded internal client and
// returns its base URL. Rate limiting is off unless rateLimited is set.
func setupContainer(t *testing.T, rateLimited bool) string {
	t.Helper()
	if !imageBuilt {
		t.Skip("docker image not available")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env: map[string]string{
			"MINIBOSS_ENV":                          "test",
			"MINIBOSS_LOG_LEVEL":                    "info",
			"MINIBOSS_LOGIN_URL":                    "http://localhost/login",
			"MINIBOSS_INTERNAL_CLIENT_REDIRECT_URI": internalRedirectURI,
			"MINIBOSS_RATE_LIMIT_ENABLED":           fmt.Sprintf("%t", rateLimited),
		},
		WaitingFor: wait.ForHTTP("/readyz").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// seedUsers registers the admin (first user) and a regular user.
func seedUsers(t *testing.T, client *authsdk.SDKClient) (adminID, userID string) {
	t.Helper()
	ctx := t.Context()

	admin, err := client.Register(ctx, authsdk.RegisterRequest{Name: "Admin", Email: adminEmail, Password: testPassword})
	require.NoError(t, err)

	user, err := client.Register(ctx, authsdk.RegisterRequest{Name: "Alice", Email: userEmail, Password: testPassword})
	require.NoError(t, err)

	return admin.ID, user.ID
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}

// assertOAuth2Error verifies err is an OAuth2 error with the given status.
func assertOAuth2Error(t *testing.T, err error, status int) *authsdk.OAuth2Error {
	t.Helper()
	require.Error(t, err)

	var oauthErr *authsdk.OAuth2Error
	require.True(t, errors.As(err, &oauthErr), "expected *authsdk.OAuth2Error, got %T: %v", err, err)
	require.Equal(t, status, oauthErr.StatusCode, "unexpected status: %v", oauthErr)
	return oauthErr
}
