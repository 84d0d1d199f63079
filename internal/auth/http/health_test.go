package http_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	e := newEnv(t)
	ctx := t.Context()

	live, err := e.sdk.GetLiveness(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", live.Status)
	assert.Equal(t, "test", live.Version)

	ready, err := e.sdk.GetReadiness(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	assert.Equal(t, "ok", ready.Checks.Database)
	assert.Equal(t, "ok", ready.Checks.InternalClient)
}

func TestReadyz_WithoutInternalClient(t *testing.T) {
	e := newEnv(t, withoutInternalClient())

	resp, err := http.Get(e.srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t)
	_ = e.token(t, "openid")

	resp, err := http.Get(e.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `miniboss_grant_transitions_total{outcome="ok",transition="exchange"} 1`)
	assert.Contains(t, string(body), "miniboss_http_request_duration_seconds")
}
