package http_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mandata/internal/domain"
	"mandata/internal/reconcile"
	"mandata/internal/store/memory"
	"mandata/internal/synclock"
	transport "mandata/internal/transport/http"
	id "mandata/pkg/domain"
)

const signingKey = "test-signing-key"

type fakeRunner struct {
	mu    sync.Mutex
	calls []id.Source
	opts  reconcile.Options
	err   error
}

func (f *fakeRunner) Run(_ context.Context, src id.Source, opts reconcile.Options) ([]domain.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, src)
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Summary{{Source: src, Success: true, Created: 2}}, nil
}

func (f *fakeRunner) called() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newServer(t *testing.T, runner *fakeRunner) (*httptest.Server, *memory.RunStore) {
	t.Helper()
	runs := memory.NewRunStore()
	h := transport.NewHandler(runner, runs, signingKey, discardLogger())
	r := chi.NewRouter()
	h.Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, runs
}

func token(t *testing.T) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "operator",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(signingKey))
	require.NoError(t, err)
	return signed
}

func doPost(t *testing.T, url, bearer string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, nil)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	srv, _ := newServer(t, &fakeRunner{})
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTriggerRequiresToken(t *testing.T) {
	runner := &fakeRunner{}
	srv, _ := newServer(t, runner)

	resp := doPost(t, srv.URL+"/sync/senat", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doPost(t, srv.URL+"/sync/senat", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, runner.called())
}

func TestTriggerAcceptsAndRunsAsync(t *testing.T) {
	runner := &fakeRunner{}
	srv, _ := newServer(t, runner)

	resp := doPost(t, srv.URL+"/sync/senat", token(t))
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Eventually(t, func() bool { return runner.called() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestTriggerWaitReturnsSummaries(t *testing.T) {
	runner := &fakeRunner{}
	srv, _ := newServer(t, runner)

	resp := doPost(t, srv.URL+"/sync/senat?wait=true&force=true&dryRun=true", token(t))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var summaries []domain.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].Created)
	assert.True(t, runner.opts.Force)
	assert.True(t, runner.opts.DryRun)
}

func TestTriggerUnknownSource(t *testing.T) {
	srv, _ := newServer(t, &fakeRunner{})
	resp := doPost(t, srv.URL+"/sync/unknown", token(t))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTriggerConflictWhileRunning(t *testing.T) {
	runner := &fakeRunner{err: synclock.ErrHeld}
	srv, _ := newServer(t, runner)

	resp := doPost(t, srv.URL+"/sync/senat?wait=true", token(t))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLastRun(t *testing.T) {
	srv, runs := newServer(t, &fakeRunner{})

	resp, err := http.Get(srv.URL + "/sync/senat")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.NoError(t, runs.Append(context.Background(), domain.Summary{
		Source: id.SourceSenat, Success: true, Matched: 348,
	}))
	resp, err = http.Get(srv.URL + "/sync/senat")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var summary domain.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, 348, summary.Matched)
}

// discardLogger keeps handler noise out of test output.
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
