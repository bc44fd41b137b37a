package autosave

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/janver/pagecraft/internal/server"
	"github.com/janver/pagecraft/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	database := testutil.NewTestDB(t)
	srv := server.New(testutil.NewTestUoW(database), nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_SaveRoundTrip(t *testing.T) {
	ts := newBackend(t)
	client := NewClient(ts.URL)

	err := client.Save(context.Background(), "proj", "page-1", []byte(`{"a":1}`), 1)
	require.NoError(t, err)
}

func TestClient_StaleVersion(t *testing.T) {
	ts := newBackend(t)
	client := NewClient(ts.URL)
	ctx := context.Background()

	require.NoError(t, client.Save(ctx, "proj", "page-1", []byte(`{"v":2}`), 2))

	err := client.Save(ctx, "proj", "page-1", []byte(`{"v":1}`), 1)
	assert.True(t, errors.Is(err, ErrStaleVersion))
}

func TestClient_LoadRoundTrip(t *testing.T) {
	ts := newBackend(t)
	client := NewClient(ts.URL)
	ctx := context.Background()

	require.NoError(t, client.Save(ctx, "proj", "page-1", []byte(`{"a":1}`), 4))

	ps, err := client.Load(ctx, "proj", "page-1")
	require.NoError(t, err)
	assert.Equal(t, "page-1", ps.PageID)
	assert.Equal(t, int64(4), ps.Version)
	assert.JSONEq(t, `{"a":1}`, string(ps.State))
}

func TestClient_Load_NoSavedState(t *testing.T) {
	ts := newBackend(t)

	_, err := NewClient(ts.URL).Load(context.Background(), "proj", "ghost")
	assert.True(t, errors.Is(err, ErrNoSavedState))
}

func TestClient_LoadProject(t *testing.T) {
	ts := newBackend(t)
	client := NewClient(ts.URL)
	ctx := context.Background()

	require.NoError(t, client.Save(ctx, "proj", "page-a", []byte(`{"a":1}`), 1))
	require.NoError(t, client.Save(ctx, "proj", "page-b", []byte(`{"b":1}`), 2))

	states, err := client.LoadProject(ctx, "proj")
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "page-a", states[0].PageID)
	assert.Equal(t, "page-b", states[1].PageID)

	empty, err := client.LoadProject(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestClient_ServerUnavailable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1") // nothing listens here

	err := client.Save(context.Background(), "proj", "page-1", []byte(`{}`), 1)
	assert.True(t, errors.Is(err, ErrServerUnavailable))
}

// countingBackend records every save the server would receive.
type countingBackend struct {
	mu       sync.Mutex
	saves    []saveRequest
	saved    chan struct{}
	blockFor time.Duration
}

func newCountingBackend(blockFor time.Duration) (*countingBackend, *httptest.Server) {
	cb := &countingBackend{saved: make(chan struct{}, 64), blockFor: blockFor}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req saveRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if cb.blockFor > 0 {
			time.Sleep(cb.blockFor)
		}
		cb.mu.Lock()
		cb.saves = append(cb.saves, req)
		cb.mu.Unlock()
		cb.saved <- struct{}{}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(saveResponse{Success: true})
	}))
	return cb, ts
}

func (cb *countingBackend) all() []saveRequest {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	out := make([]saveRequest, len(cb.saves))
	copy(out, cb.saves)
	return out
}

func waitSaves(t *testing.T, cb *countingBackend, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-cb.saved:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for save %d of %d", i+1, n)
		}
	}
}

func TestSaver_DebounceCoalesces(t *testing.T) {
	cb, ts := newCountingBackend(0)
	defer ts.Close()

	var version int64
	provider := func(pageID string) ([]byte, int64, error) {
		version++
		return []byte(`{}`), version, nil
	}
	saver := NewSaver(NewClient(ts.URL), provider, "proj", 20*time.Millisecond, nil)

	// A burst of triggers inside the window produces one save.
	saver.Trigger("page-1")
	saver.Trigger("page-1")
	saver.Trigger("page-1")

	waitSaves(t, cb, 1)
	saver.Wait()
	assert.Len(t, cb.all(), 1)
}

func TestSaver_SingleFlightWithTrailingSave(t *testing.T) {
	cb, ts := newCountingBackend(50 * time.Millisecond)
	defer ts.Close()

	var mu sync.Mutex
	version := int64(0)
	provider := func(pageID string) ([]byte, int64, error) {
		mu.Lock()
		defer mu.Unlock()
		version++
		return []byte(`{}`), version, nil
	}
	saver := NewSaver(NewClient(ts.URL), provider, "proj", time.Millisecond, nil)

	saver.Flush("page-1")
	// Mutations arriving while the first save is in flight collapse into
	// exactly one trailing save with a fresh version.
	time.Sleep(10 * time.Millisecond)
	saver.Flush("page-1")
	saver.Flush("page-1")

	waitSaves(t, cb, 2)
	saver.Wait()

	saves := cb.all()
	require.Len(t, saves, 2)
	assert.Equal(t, int64(1), saves[0].Version)
	assert.Equal(t, int64(2), saves[1].Version)
}

func TestSaver_FlushAllDeliversPendingDebounce(t *testing.T) {
	cb, ts := newCountingBackend(0)
	defer ts.Close()

	provider := func(pageID string) ([]byte, int64, error) {
		return []byte(`{}`), 1, nil
	}
	// Debounce far longer than the test: without FlushAll these triggers
	// would still be sitting in their timers at shutdown.
	saver := NewSaver(NewClient(ts.URL), provider, "proj", time.Hour, nil)

	saver.Trigger("page-a")
	saver.Trigger("page-b")
	saver.FlushAll()
	saver.Wait()

	pages := map[string]bool{}
	for _, s := range cb.all() {
		pages[s.PageID] = true
	}
	assert.True(t, pages["page-a"])
	assert.True(t, pages["page-b"])
}

func TestSaver_IndependentPages(t *testing.T) {
	cb, ts := newCountingBackend(0)
	defer ts.Close()

	provider := func(pageID string) ([]byte, int64, error) {
		return []byte(`{}`), 1, nil
	}
	saver := NewSaver(NewClient(ts.URL), provider, "proj", time.Millisecond, nil)

	saver.Trigger("page-a")
	saver.Trigger("page-b")

	waitSaves(t, cb, 2)
	saver.Wait()

	pages := map[string]bool{}
	for _, s := range cb.all() {
		pages[s.PageID] = true
	}
	assert.True(t, pages["page-a"])
	assert.True(t, pages["page-b"])
}

func TestSaver_StaleVersionDropped(t *testing.T) {
	ts := newBackend(t)

	// Provider returns a version older than what the server already holds;
	// the saver logs and drops, no retry loop.
	require.NoError(t, NewClient(ts.URL).Save(context.Background(), "proj", "page-1", []byte(`{"v":9}`), 9))

	provider := func(pageID string) ([]byte, int64, error) {
		return []byte(`{"v":1}`), 1, nil
	}
	saver := NewSaver(NewClient(ts.URL), provider, "proj", time.Millisecond, nil)
	saver.Flush("page-1")
	saver.Wait()

	var got struct {
		Version int64 `json:"version"`
	}
	resp, err := http.Get(ts.URL + "/api/projects/proj/pages/page-1/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, int64(9), got.Version)
}
