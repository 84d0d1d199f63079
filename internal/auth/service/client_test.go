package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientService(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	clients := &ClientService{Store: newTestStore(t)}

	_, err := clients.LookupInternalClient(ctx)
	require.ErrorIs(t, err, ErrInvariantViolation, "no internal client")

	ui, err := clients.Create(ctx, "Login UI", "https://auth.example.com/callback", true)
	require.NoError(t, err)
	require.True(t, ui.IsInternal)

	got, err := clients.LookupInternalClient(ctx)
	require.NoError(t, err)
	require.Equal(t, ui.ID, got.ID)

	_, err = clients.Create(ctx, "Second UI", "https://other.example.com/callback", true)
	require.ErrorIs(t, err, ErrConflict)

	app, err := clients.Create(ctx, "App", testRedirectURI, false)
	require.NoError(t, err)

	got, err = clients.LookupByID(ctx, app.ID)
	require.NoError(t, err)
	require.Equal(t, app, got)

	_, err = clients.LookupByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	all, err := clients.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestClientService_InvalidInput(t *testing.T) {
	t.Parallel()
	clients := &ClientService{Store: newTestStore(t)}

	tests := []struct {
		name        string
		clientName  string
		redirectURI string
	}{
		{"empty name", "", testRedirectURI},
		{"relative redirect", "App", "/callback"},
		{"fragment", "App", "https://app.example.com/cb#frag"},
		{"garbage", "App", "::not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := clients.Create(t.Context(), tt.clientName, tt.redirectURI, false)
			require.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}
