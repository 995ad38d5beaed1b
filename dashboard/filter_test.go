package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freight-app/shipment"
)

func mkShipment(id string, status shipment.Status, eta *time.Time) shipment.Shipment {
	return shipment.Shipment{
		ID:           id,
		Status:       status,
		DeliveryDate: eta,
		CreatedAt:    time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestFilterByStatus(t *testing.T) {
	shipments := []shipment.Shipment{
		mkShipment("a", shipment.StatusNew, nil),
		mkShipment("b", shipment.StatusDelivered, nil),
	}

	out := Filter(shipments, Criteria{Status: "Delivered"})
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ID)

	out = Filter(shipments, Criteria{Status: StatusAll})
	assert.Len(t, out, 2)
}

func TestFilterSearchIsCaseInsensitiveSubstring(t *testing.T) {
	shipments := []shipment.Shipment{
		{ID: "a", CustomerName: "Mega Logistics", Status: shipment.StatusNew},
		{ID: "b", CustomerName: "Acme", DriverName: "Budi Santoso", Status: shipment.StatusNew},
	}

	out := Filter(shipments, Criteria{Status: StatusAll, Search: "MEGA"})
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ID)

	out = Filter(shipments, Criteria{Status: StatusAll, Search: "santoso"})
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ID)
}

func TestFilterSearchCoversDatesAndAmounts(t *testing.T) {
	eta := time.Date(2026, 2, 14, 16, 0, 0, 0, time.UTC)
	shipments := []shipment.Shipment{
		{ID: "a", DeliveryDate: &eta, RevenueAmount: 2500.5, Status: shipment.StatusNew},
	}

	out := Filter(shipments, Criteria{Status: StatusAll, Search: "2026-02-14"})
	assert.Len(t, out, 1)

	out = Filter(shipments, Criteria{Status: StatusAll, Search: "2500.5"})
	assert.Len(t, out, 1)
}

func TestFilterETABoundsAreDayInclusive(t *testing.T) {
	feb10 := time.Date(2026, 2, 10, 23, 30, 0, 0, time.UTC)
	feb12 := time.Date(2026, 2, 12, 0, 15, 0, 0, time.UTC)
	shipments := []shipment.Shipment{
		mkShipment("early", shipment.StatusNew, &feb10),
		mkShipment("late", shipment.StatusNew, &feb12),
	}

	from := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	out := Filter(shipments, Criteria{Status: StatusAll, ETAFrom: &from, ETATo: &to})

	// the bound expands to the whole day, so 23:30 on the 10th is in
	require.Len(t, out, 1)
	assert.Equal(t, "early", out[0].ID)
}

func TestFilterMissingETAFailsActiveBound(t *testing.T) {
	from := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	shipments := []shipment.Shipment{
		mkShipment("no-eta", shipment.StatusNew, nil),
	}

	out := Filter(shipments, Criteria{Status: StatusAll, ETAFrom: &from})
	assert.Empty(t, out)

	out = Filter(shipments, Criteria{Status: StatusAll})
	assert.Len(t, out, 1)
}

func TestRangeDatesPresets(t *testing.T) {
	// a Wednesday
	now := time.Date(2026, 2, 11, 15, 30, 0, 0, time.UTC)

	from, to := RangeDates(RangeToday, now)
	require.NotNil(t, from)
	require.NotNil(t, to)
	assert.Equal(t, 11, from.Day())
	assert.Equal(t, 11, to.Day())
	assert.Equal(t, 0, from.Hour())
	assert.Equal(t, 23, to.Hour())

	from, to = RangeDates(RangeWeek, now)
	require.NotNil(t, from)
	assert.Equal(t, time.Monday, from.Weekday())
	assert.Equal(t, 9, from.Day())
	assert.Equal(t, time.Sunday, to.Weekday())
	assert.Equal(t, 15, to.Day())

	from, to = RangeDates(RangeMonth, now)
	require.NotNil(t, from)
	assert.Equal(t, 1, from.Day())
	assert.Equal(t, 28, to.Day())

	from, to = RangeDates(RangeAll, now)
	assert.Nil(t, from)
	assert.Nil(t, to)
}

func TestRangeDatesWeekStartsMondayOnSunday(t *testing.T) {
	sunday := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)
	from, to := RangeDates(RangeWeek, sunday)
	require.NotNil(t, from)
	assert.Equal(t, 9, from.Day())
	assert.Equal(t, 15, to.Day())
}

func TestComputeMetrics(t *testing.T) {
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	soon := now.Add(2 * time.Hour)
	tooLate := now.Add(8 * time.Hour)
	past := now.Add(-1 * time.Hour)

	shipments := []shipment.Shipment{
		mkShipment("a", shipment.StatusDelivered, nil),
		mkShipment("b", shipment.StatusCompleted, nil),
		mkShipment("c", shipment.StatusPickedUp, &soon),
		mkShipment("d", shipment.StatusAssigned, &tooLate),
		mkShipment("e", shipment.StatusNew, &past),
		mkShipment("f", shipment.StatusCancelled, nil),
	}

	m := ComputeMetrics(shipments, now)

	assert.Equal(t, 6, m.Total)
	assert.Equal(t, 2, m.DeliveredCount)
	assert.Equal(t, 2, m.InTransitCount)
	assert.Equal(t, 3, m.ActiveCount)
	assert.Equal(t, 1, m.ETASoonCount)
	assert.Equal(t, 33, m.CompletionRate)
}

func TestComputeMetricsETASoonBoundary(t *testing.T) {
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	atWindow := now.Add(ETASoonWindow)
	pastWindow := now.Add(ETASoonWindow + time.Millisecond)

	shipments := []shipment.Shipment{
		mkShipment("edge", shipment.StatusPickedUp, &atWindow),
		mkShipment("over", shipment.StatusPickedUp, &pastWindow),
	}

	m := ComputeMetrics(shipments, now)
	assert.Equal(t, 1, m.ETASoonCount)
}

func TestComputeMetricsEmpty(t *testing.T) {
	m := ComputeMetrics(nil, time.Now())
	assert.Zero(t, m.Total)
	assert.Zero(t, m.CompletionRate)
}

func TestCriticalRanksByETAThenCreated(t *testing.T) {
	etaLater := time.Date(2026, 2, 13, 8, 0, 0, 0, time.UTC)
	etaSooner := time.Date(2026, 2, 12, 8, 0, 0, 0, time.UTC)

	noETA := mkShipment("no-eta", shipment.StatusNew, nil)
	noETA.CreatedAt = time.Date(2026, 2, 11, 8, 0, 0, 0, time.UTC)

	shipments := []shipment.Shipment{
		mkShipment("later", shipment.StatusAssigned, &etaLater),
		mkShipment("delivered", shipment.StatusDelivered, &etaSooner),
		mkShipment("sooner", shipment.StatusPickedUp, &etaSooner),
		noETA,
	}

	out := Critical(shipments)
	require.Len(t, out, 3)
	// no ETA falls back to created_at, which here is the most urgent
	assert.Equal(t, "no-eta", out[0].ID)
	assert.Equal(t, "sooner", out[1].ID)
	assert.Equal(t, "later", out[2].ID)
}

func TestCriticalCapsAtSix(t *testing.T) {
	var shipments []shipment.Shipment
	for i := 0; i < 10; i++ {
		eta := time.Date(2026, 2, 12, i, 0, 0, 0, time.UTC)
		shipments = append(shipments, mkShipment(string(rune('a'+i)), shipment.StatusNew, &eta))
	}

	out := Critical(shipments)
	assert.Len(t, out, 6)
}

func TestTimelineNewestFirstCappedAtEight(t *testing.T) {
	var shipments []shipment.Shipment
	for i := 0; i < 10; i++ {
		s := mkShipment(string(rune('a'+i)), shipment.StatusNew, nil)
		s.UpdatedAt = time.Date(2026, 2, 1, i, 0, 0, 0, time.UTC)
		shipments = append(shipments, s)
	}

	out := Timeline(shipments)
	require.Len(t, out, 8)
	assert.Equal(t, "j", out[0].ShipmentID)
	assert.True(t, out[0].Timestamp.After(out[7].Timestamp))
}

func TestTimelineEventTypes(t *testing.T) {
	cases := []struct {
		status shipment.Status
		want   string
	}{
		{shipment.StatusDelivered, EventCustomer},
		{shipment.StatusCompleted, EventCustomer},
		{shipment.StatusPickedUp, EventDispatch},
		{shipment.StatusAssigned, EventDispatch},
		{shipment.StatusNew, EventCheckpoint},
		{shipment.StatusCancelled, EventAlert},
	}

	for _, tc := range cases {
		out := Timeline([]shipment.Shipment{mkShipment("a", tc.status, nil)})
		require.Len(t, out, 1)
		assert.Equal(t, tc.want, out[0].Type, "status %s", tc.status)
	}
}

func TestTimelineFallsBackToCreatedAt(t *testing.T) {
	s := mkShipment("a", shipment.StatusNew, nil)
	s.UpdatedAt = time.Time{}

	out := Timeline([]shipment.Shipment{s})
	require.Len(t, out, 1)
	assert.Equal(t, s.CreatedAt, out[0].Timestamp)
}
