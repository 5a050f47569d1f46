package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidtimer/internal/client"
	"kidtimer/internal/db"
	apperrors "kidtimer/internal/errors"
	"kidtimer/internal/model"
	"kidtimer/internal/reporter"
	"kidtimer/internal/router"
	"kidtimer/migrations"
)

var _ reporter.Reporter = (*client.Client)(nil)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	database, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.RunMigrations(ctx, database, migrations.FS, nil))

	server := httptest.NewServer(router.Build(database, router.Options{
		JWTSecret: "client-test-secret",
		TokenTTL:  time.Hour,
	}))
	t.Cleanup(server.Close)
	return server
}

func TestReportsSessionsToServer(t *testing.T) {
	server := newServer(t)
	ctx := context.Background()

	c := client.New(server.URL)
	_, err := c.Register(ctx, "parent@example.com", "123456")
	require.NoError(t, err)
	require.NotEmpty(t, c.Token())

	loggedIn := client.New(server.URL, client.WithHTTPClient(server.Client()))
	result, err := loggedIn.Login(ctx, "parent@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "parent@example.com", result.User.Email)

	id, err := loggedIn.Begin(ctx, model.PresetBathTime, "Bath Time", 600)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.NoError(t, loggedIn.Update(ctx, id, 600, true))

	sessions, err := loggedIn.ListSessions(ctx, 5)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, id, sessions[0].ID)
	assert.Equal(t, 600, sessions[0].TimeSpent)
	assert.Equal(t, model.SessionCompleted, sessions[0].Completed)

	summary, err := loggedIn.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SessionSummary{Sessions: 1, Completed: 1, TimeSpent: 600}, *summary)
}

func TestAPIErrorsAreDecoded(t *testing.T) {
	server := newServer(t)
	ctx := context.Background()

	_, err := client.New(server.URL).Login(ctx, "nobody@example.com", "123456")
	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "unauthorized", apiErr.Code)

	_, err = client.New(server.URL).Begin(ctx, model.PresetCleanUp, "Clean-up", 300)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	c := client.New(server.URL)
	_, err = c.Register(ctx, "kid@example.com", "123456")
	require.NoError(t, err)
	err = c.Update(ctx, "missing-session", 10, false)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestNonEnvelopeErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := client.New(server.URL, client.WithToken("t")).Summary(context.Background())
	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
}
