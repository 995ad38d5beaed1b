package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"freight-app/client"
	"freight-app/shipment"
)

// fetchLimit matches the dashboard's full-fetch page size.
const fetchLimit = 500

// Board is the single dispatcher between the API, the push stream and the
// live cache. All three input sources (full fetch, push events, echoes of
// local edits) funnel through here so the cache sees one ordered sequence
// of mutations.
type Board struct {
	api    *client.Client
	cache  *Cache
	logger *zap.Logger

	mu    sync.Mutex
	epoch int
}

func NewBoard(api *client.Client, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{api: api, cache: NewCache(), logger: logger}
}

func (b *Board) Cache() *Cache { return b.cache }

// SessionChanged must be called on login and logout. It clears the cache and
// invalidates any fetch still in flight so a response from the previous
// identity cannot land in the new session's cache.
func (b *Board) SessionChanged() {
	b.mu.Lock()
	b.epoch++
	b.mu.Unlock()
	b.cache.Clear()
}

func (b *Board) currentEpoch() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.epoch
}

// Refresh does a full fetch and replaces the cache contents. The result is
// discarded when the session changed while the request was in flight.
func (b *Board) Refresh(ctx context.Context) error {
	epoch := b.currentEpoch()
	raws, err := b.api.ListShipments(ctx, fetchLimit)
	if err != nil {
		return err
	}
	if b.currentEpoch() != epoch {
		b.logger.Info("discarding stale shipment fetch after session change")
		return nil
	}
	b.cache.ReplaceAll(raws)
	return nil
}

// Apply folds one push event into the cache.
func (b *Board) Apply(ev client.StreamEvent) {
	switch ev.Kind {
	case client.EventDeleted:
		b.cache.Remove(ev.ID)
	case client.EventUpserted:
		b.cache.Upsert(ev.Shipment)
	}
}

// Consume drains a stream event channel into the cache until it closes.
func (b *Board) Consume(events <-chan client.StreamEvent) {
	for ev := range events {
		b.Apply(ev)
	}
}

// View is everything the dashboard renders for one (cache, criteria) pair.
type View struct {
	Filtered []shipment.Shipment
	Metrics  Metrics
	Critical []shipment.Shipment
	Timeline []TimelineEntry
}

// BuildView derives the filtered list and the aggregates. Metrics, critical
// ranking and the timeline read the full cache, not the filtered view.
func (b *Board) BuildView(c Criteria, now time.Time) View {
	all := b.cache.Snapshot()
	return View{
		Filtered: Filter(all, c),
		Metrics:  ComputeMetrics(all, now),
		Critical: Critical(all),
		Timeline: Timeline(all),
	}
}

// BulkResult reports a bulk submission. Failed rows keep their staged edits
// so the buffer can be resubmitted.
type BulkResult struct {
	Applied []string
	Failed  map[string]error
}

func (r BulkResult) Ok() bool { return len(r.Failed) == 0 }

// BulkSubmit sends one PATCH per staged row. Every row is an independent
// call: a failure is recorded and the remaining rows still go out. Accepted
// rows are folded back into the cache and their staged edits cleared, so a
// retry only resubmits what actually failed.
func (b *Board) BulkSubmit(ctx context.Context, buf *StagingBuffer) BulkResult {
	result := BulkResult{Failed: make(map[string]error)}
	for id, fields := range buf.BuildSubmission() {
		patch := make(map[string]interface{}, len(fields))
		for field, value := range fields {
			patch[field] = value
		}
		updated, err := b.api.UpdateShipment(ctx, id, patch)
		if err != nil {
			b.logger.Warn("bulk update failed", zap.String("shipment_id", id), zap.Error(err))
			result.Failed[id] = err
			continue
		}
		b.cache.Upsert(*updated)
		buf.ClearEdits(id)
		result.Applied = append(result.Applied, id)
	}
	return result
}

// CreateShipment validates and creates a shipment, folding the server's echo
// into the cache.
func (b *Board) CreateShipment(ctx context.Context, req client.CreateShipmentRequest) (*shipment.Shipment, error) {
	raw, err := b.api.CreateShipment(ctx, req)
	if err != nil {
		return nil, err
	}
	b.cache.Upsert(*raw)
	created := shipment.Normalize(*raw)
	return &created, nil
}

// UpdateShipment patches one shipment and folds the echo into the cache.
func (b *Board) UpdateShipment(ctx context.Context, id string, patch map[string]interface{}) error {
	raw, err := b.api.UpdateShipment(ctx, id, patch)
	if err != nil {
		return err
	}
	b.cache.Upsert(*raw)
	return nil
}

// DeleteShipment removes a shipment remotely and locally.
func (b *Board) DeleteShipment(ctx context.Context, id string) error {
	if err := b.api.DeleteShipment(ctx, id); err != nil {
		return err
	}
	b.cache.Remove(id)
	return nil
}
