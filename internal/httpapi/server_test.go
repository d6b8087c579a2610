package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/max-sakeco/xero-sync/internal/common"
	"github.com/max-sakeco/xero-sync/internal/logging"
	"github.com/max-sakeco/xero-sync/internal/models"
	syncer "github.com/max-sakeco/xero-sync/internal/sync"
)

type fakeAuthorizer struct {
	completeErr  error
	gotCode      string
	authorizeURL string
}

func (f *fakeAuthorizer) AuthorizationURL(state string) string {
	u, _ := url.Parse(f.authorizeURL)
	q := u.Query()
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String()
}

func (f *fakeAuthorizer) CompleteAuthorization(ctx context.Context, code string) (*models.Credential, error) {
	f.gotCode = code
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return &models.Credential{TenantID: "tenant-1"}, nil
}

type fakeRunner struct {
	result       *syncer.Result
	err          error
	gotForceFull bool
	calls        int
}

func (f *fakeRunner) Run(ctx context.Context, forceFull bool) (*syncer.Result, error) {
	f.calls++
	f.gotForceFull = forceFull
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestRouter(auth *fakeAuthorizer, runner *fakeRunner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(NewHandler(auth, runner, discardLogger()))
}

func doRequest(t *testing.T, r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&fakeAuthorizer{}, &fakeRunner{})

	w := doRequest(t, r, http.MethodGet, "/health")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "xero-sync", body["service"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestAuth_RedirectsWithState(t *testing.T) {
	auth := &fakeAuthorizer{authorizeURL: "https://login.example.com/identity/connect/authorize"}
	r := newTestRouter(auth, &fakeRunner{})

	w := doRequest(t, r, http.MethodGet, "/auth")

	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "login.example.com", loc.Host)
	assert.NotEmpty(t, loc.Query().Get("state"))
}

func TestCallback_MissingCode(t *testing.T) {
	r := newTestRouter(&fakeAuthorizer{}, &fakeRunner{})

	w := doRequest(t, r, http.MethodGet, "/callback")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCallback_StateMismatch(t *testing.T) {
	auth := &fakeAuthorizer{authorizeURL: "https://login.example.com/authorize"}
	r := newTestRouter(auth, &fakeRunner{})

	// establish an expected state first
	w := doRequest(t, r, http.MethodGet, "/auth")
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)

	w = doRequest(t, r, http.MethodGet, "/callback?code=abc&state=wrong")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, auth.gotCode)
}

func TestCallback_Success(t *testing.T) {
	auth := &fakeAuthorizer{authorizeURL: "https://login.example.com/authorize"}
	r := newTestRouter(auth, &fakeRunner{})

	w := doRequest(t, r, http.MethodGet, "/auth")
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")

	w = doRequest(t, r, http.MethodGet, "/callback?code=abc&state="+state)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", auth.gotCode)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "tenant-1", body["tenant_id"])
}

func TestCallback_ExchangeFailure(t *testing.T) {
	auth := &fakeAuthorizer{completeErr: common.ErrAuthExchange}
	r := newTestRouter(auth, &fakeRunner{})

	w := doRequest(t, r, http.MethodGet, "/callback?code=bad")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSync_Success(t *testing.T) {
	runner := &fakeRunner{result: &syncer.Result{
		Success: true,
		Stats:   syncer.Stats{Processed: 7, Created: 3, Updated: 4},
	}}
	r := newTestRouter(&fakeAuthorizer{}, runner)

	w := doRequest(t, r, http.MethodPost, "/sync")

	require.Equal(t, http.StatusOK, w.Code)
	var result syncer.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 7, result.Stats.Processed)
	assert.False(t, runner.gotForceFull)
}

func TestSync_ForceFull(t *testing.T) {
	runner := &fakeRunner{result: &syncer.Result{Success: true}}
	r := newTestRouter(&fakeAuthorizer{}, runner)

	w := doRequest(t, r, http.MethodPost, "/sync?force_full=true")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, runner.gotForceFull)
}

func TestSync_FailedRunReturnsServerError(t *testing.T) {
	runner := &fakeRunner{result: &syncer.Result{
		Success: false,
		Error:   "fetch failed: status 429",
		Stats:   syncer.Stats{Processed: 2, Created: 1, Updated: 1},
	}}
	r := newTestRouter(&fakeAuthorizer{}, runner)

	w := doRequest(t, r, http.MethodPost, "/sync")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var result syncer.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "429")
	assert.Equal(t, 2, result.Stats.Processed)
}

func TestSync_GetAlsoTriggers(t *testing.T) {
	runner := &fakeRunner{result: &syncer.Result{Success: true}}
	r := newTestRouter(&fakeAuthorizer{}, runner)

	w := doRequest(t, r, http.MethodGet, "/sync")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, runner.calls)
}

func TestSync_AlreadyRunning(t *testing.T) {
	runner := &fakeRunner{err: common.ErrSyncInProgress}
	r := newTestRouter(&fakeAuthorizer{}, runner)

	w := doRequest(t, r, http.MethodPost, "/sync")

	require.Equal(t, http.StatusConflict, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
}
