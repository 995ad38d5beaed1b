package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freight-app/client"
	"freight-app/shipment"
)

func newBoardWithServer(t *testing.T, handler http.Handler) (*Board, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	api := client.New(client.Config{BaseURL: srv.URL})
	return NewBoard(api, nil), srv
}

func listHandler(shipments []map[string]interface{}) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(shipments)
	})
}

func TestRefreshLoadsCache(t *testing.T) {
	board, _ := newBoardWithServer(t, listHandler([]map[string]interface{}{
		{"id": "a", "customer_name": "Acme", "created_at": "2026-01-02T08:00:00Z"},
		{"id": "b", "customer_name": "Beta", "created_at": "2026-01-03T08:00:00Z"},
	}))

	require.NoError(t, board.Refresh(context.Background()))

	snap := board.Cache().Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "b", snap[0].ID)
}

func TestRefreshDiscardedAfterSessionChange(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	board, _ := newBoardWithServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": "stale", "created_at": "2026-01-01T08:00:00Z"},
		})
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, board.Refresh(context.Background()))
	}()

	// the user signs out while the fetch is in flight
	<-started
	board.SessionChanged()
	close(release)
	wg.Wait()

	assert.Equal(t, 0, board.Cache().Len(), "stale fetch must not repopulate the cache")
}

func TestApplyFoldsStreamEvents(t *testing.T) {
	board := NewBoard(client.New(client.Config{BaseURL: "http://unused"}), nil)
	board.Cache().ReplaceAll([]shipment.Raw{
		rawShipment("a", "Acme", "2026-01-01T08:00:00Z"),
	})

	board.Apply(client.StreamEvent{
		Kind:     client.EventUpserted,
		Shipment: shipment.Raw{ID: "a", Status: strPtr("Assigned")},
	})
	got, ok := board.Cache().Get("a")
	require.True(t, ok)
	assert.Equal(t, shipment.StatusAssigned, got.Status)

	board.Apply(client.StreamEvent{Kind: client.EventDeleted, ID: "a"})
	assert.Equal(t, 0, board.Cache().Len())
}

func TestBuildViewUsesFullCacheForAggregates(t *testing.T) {
	board := NewBoard(client.New(client.Config{BaseURL: "http://unused"}), nil)
	board.Cache().ReplaceAll([]shipment.Raw{
		{ID: "a", CustomerName: strPtr("Acme"), Status: strPtr("Delivered"), CreatedAt: strPtr("2026-01-01T08:00:00Z")},
		{ID: "b", CustomerName: strPtr("Beta"), Status: strPtr("New"), CreatedAt: strPtr("2026-01-02T08:00:00Z")},
	})

	view := board.BuildView(Criteria{Status: "New"}, time.Now())

	require.Len(t, view.Filtered, 1)
	assert.Equal(t, "b", view.Filtered[0].ID)
	// metrics still count the delivered shipment the filter hid
	assert.Equal(t, 2, view.Metrics.Total)
	assert.Equal(t, 1, view.Metrics.DeliveredCount)
}

func TestBulkSubmitPartialFailure(t *testing.T) {
	var patched []string
	var mu sync.Mutex
	board, _ := newBoardWithServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			http.NotFound(w, r)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/shipments/")
		if id == "bad" {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"detail": "boom"})
			return
		}
		mu.Lock()
		patched = append(patched, id)
		mu.Unlock()

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		body["id"] = id
		json.NewEncoder(w).Encode(body)
	}))

	board.Cache().ReplaceAll([]shipment.Raw{
		rawShipment("good", "Acme", "2026-01-01T08:00:00Z"),
		rawShipment("bad", "Beta", "2026-01-02T08:00:00Z"),
	})

	buf := NewStagingBuffer([]string{"good", "bad"})
	buf.ApplyToAll("status", "Assigned")

	result := board.BulkSubmit(context.Background(), buf)

	assert.False(t, result.Ok())
	assert.Equal(t, []string{"good"}, result.Applied)
	require.Contains(t, result.Failed, "bad")

	// accepted row folded into the cache, failed row untouched
	got, _ := board.Cache().Get("good")
	assert.Equal(t, shipment.StatusAssigned, got.Status)

	// only the failed row is left staged for retry
	sub := buf.BuildSubmission()
	require.Len(t, sub, 1)
	_, stillStaged := sub["bad"]
	assert.True(t, stillStaged)

	mu.Lock()
	assert.Equal(t, []string{"good"}, patched)
	mu.Unlock()
}

func TestBulkSubmitEmptyBufferIsOk(t *testing.T) {
	board := NewBoard(client.New(client.Config{BaseURL: "http://unused"}), nil)
	buf := NewStagingBuffer([]string{"a"})

	result := board.BulkSubmit(context.Background(), buf)

	assert.True(t, result.Ok())
	assert.Empty(t, result.Applied)
}
