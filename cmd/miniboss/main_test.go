package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MINIBOSS_DATABASE_FILE", filepath.Join(dir, "miniboss.db"))
	t.Setenv("MINIBOSS_PEPPER_FILE", filepath.Join(dir, "pepper"))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestMigrateCommand(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied (sqlite)")
}

func TestClientCommands(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "client", "create", "--name", "Example App", "--redirect-uri", "https://app.example.com/callback")
	require.NoError(t, err)
	assert.Contains(t, out, "client_id: ")

	_, err = run(t, "client", "create", "--name", "Login", "--redirect-uri", "https://login.example.com/callback", "--internal")
	require.NoError(t, err)

	_, err = run(t, "client", "create", "--name", "Login 2", "--redirect-uri", "https://login.example.com/callback", "--internal")
	require.Error(t, err, "a second internal client must be rejected")

	_, err = run(t, "client", "create", "--name", "Bad", "--redirect-uri", "not a uri")
	require.Error(t, err)

	out, err = run(t, "client", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Example App")
	assert.Contains(t, out, "Login")
	assert.NotContains(t, out, "Login 2")
}

func TestUserCommands(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "user", "register", "--name", "Alice", "--email", "alice@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "admin: true", "first user is the admin")

	out, err = run(t, "user", "register", "--name", "Bob", "--email", "bob@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "admin: false")

	out, err = run(t, "user", "grant-scope", "--email", "bob@example.com", "--scope", "custom:scope")
	require.NoError(t, err)
	assert.Contains(t, out, "custom:scope")

	out, err = run(t, "user", "revoke-scope", "--email", "bob@example.com", "--scope", "custom:scope")
	require.NoError(t, err)
	assert.NotContains(t, out, "custom:scope")

	_, err = run(t, "user", "grant-scope", "--email", "nobody@example.com", "--scope", "custom:scope")
	require.Error(t, err)
}
