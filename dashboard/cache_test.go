package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freight-app/shipment"
)

func strPtr(s string) *string { return &s }

func rawShipment(id, customer, createdAt string) shipment.Raw {
	return shipment.Raw{
		ID:           id,
		CustomerName: strPtr(customer),
		CreatedAt:    strPtr(createdAt),
	}
}

func TestReplaceAllSortsNewestFirst(t *testing.T) {
	c := NewCache()
	c.ReplaceAll([]shipment.Raw{
		rawShipment("a", "Oldest", "2026-01-01T08:00:00Z"),
		rawShipment("b", "Newest", "2026-01-03T08:00:00Z"),
		rawShipment("c", "Middle", "2026-01-02T08:00:00Z"),
	})

	snap := c.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "b", snap[0].ID)
	assert.Equal(t, "c", snap[1].ID)
	assert.Equal(t, "a", snap[2].ID)
}

func TestReplaceAllDropsDuplicateIDs(t *testing.T) {
	c := NewCache()
	c.ReplaceAll([]shipment.Raw{
		rawShipment("a", "First", "2026-01-01T08:00:00Z"),
		rawShipment("a", "Duplicate", "2026-01-02T08:00:00Z"),
	})

	assert.Equal(t, 1, c.Len())
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "First", got.CustomerName)
}

func TestUpsertInsertsUnknownID(t *testing.T) {
	c := NewCache()
	c.ReplaceAll([]shipment.Raw{rawShipment("a", "Acme", "2026-01-01T08:00:00Z")})

	c.Upsert(rawShipment("b", "Beta", "2026-01-02T08:00:00Z"))

	snap := c.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "b", snap[0].ID)
}

func TestUpsertPatchPreservesAbsentFields(t *testing.T) {
	c := NewCache()
	c.ReplaceAll([]shipment.Raw{{
		ID:           "a",
		CustomerName: strPtr("Acme"),
		DriverName:   strPtr("Budi"),
		Status:       strPtr("New"),
		CreatedAt:    strPtr("2026-01-01T08:00:00Z"),
	}})

	c.Upsert(shipment.Raw{ID: "a", Status: strPtr("Assigned")})

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, shipment.StatusAssigned, got.Status)
	assert.Equal(t, "Acme", got.CustomerName)
	assert.Equal(t, "Budi", got.DriverName)
}

func TestUpsertResortsWhenCreatedAtChanges(t *testing.T) {
	c := NewCache()
	c.ReplaceAll([]shipment.Raw{
		rawShipment("a", "A", "2026-01-01T08:00:00Z"),
		rawShipment("b", "B", "2026-01-02T08:00:00Z"),
	})

	c.Upsert(shipment.Raw{ID: "a", CreatedAt: strPtr("2026-01-05T08:00:00Z")})

	snap := c.Snapshot()
	assert.Equal(t, "a", snap[0].ID)
	assert.Equal(t, "b", snap[1].ID)
}

func TestRemoveUnknownIDIsNoOp(t *testing.T) {
	c := NewCache()
	c.ReplaceAll([]shipment.Raw{rawShipment("a", "Acme", "2026-01-01T08:00:00Z")})

	c.Remove("missing")
	assert.Equal(t, 1, c.Len())

	c.Remove("a")
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestClearDropsEverything(t *testing.T) {
	c := NewCache()
	c.ReplaceAll([]shipment.Raw{rawShipment("a", "Acme", "2026-01-01T08:00:00Z")})

	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Snapshot())
}

func TestSnapshotIsACopy(t *testing.T) {
	c := NewCache()
	c.ReplaceAll([]shipment.Raw{rawShipment("a", "Acme", "2026-01-01T08:00:00Z")})

	snap := c.Snapshot()
	snap[0].CustomerName = "Mutated"

	got, _ := c.Get("a")
	assert.Equal(t, "Acme", got.CustomerName)
}

func TestTieOnCreatedAtKeepsInsertionOrder(t *testing.T) {
	c := NewCache()
	same := "2026-01-01T08:00:00Z"
	c.ReplaceAll([]shipment.Raw{
		rawShipment("a", "A", same),
		rawShipment("b", "B", same),
		rawShipment("c", "C", same),
	})

	snap := c.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{snap[0].ID, snap[1].ID, snap[2].ID})
}
