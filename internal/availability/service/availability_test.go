package service

import (
	"context"
	"testing"
	"time"

	roadserrors "roadbook/internal/roads/errors"
	slotsrepo "roadbook/internal/slots/repository"
	"roadbook/pkg/config"
	"roadbook/pkg/logger"
	"roadbook/pkg/model"
)

type mockSlotRepository struct {
	findByRoadAndWindowFunc func(ctx context.Context, roadID string, from, to time.Time) ([]*model.Slot, error)
}

func (m *mockSlotRepository) EnsureIndexes(ctx context.Context) error { return nil }

func (m *mockSlotRepository) Ensure(ctx context.Context, roadID, roadName string, start, end time.Time, capacity int) (*model.Slot, error) {
	return nil, nil
}

func (m *mockSlotRepository) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	return nil, nil
}

func (m *mockSlotRepository) FindByRoadAndWindow(ctx context.Context, roadID string, from, to time.Time) ([]*model.Slot, error) {
	if m.findByRoadAndWindowFunc != nil {
		return m.findByRoadAndWindowFunc(ctx, roadID, from, to)
	}
	return nil, nil
}

func (m *mockSlotRepository) Reserve(ctx context.Context, slotID string, quantity int) error {
	return nil
}

func (m *mockSlotRepository) Release(ctx context.Context, slotID string, quantity int) error {
	return nil
}

func (m *mockSlotRepository) FindFiltered(ctx context.Context, filter slotsrepo.SlotFilter, limit int, offset int64) ([]*model.Slot, error) {
	return nil, nil
}

func (m *mockSlotRepository) CountFiltered(ctx context.Context, filter slotsrepo.SlotFilter) (int64, error) {
	return 0, nil
}

func (m *mockSlotRepository) UpdateCapacity(ctx context.Context, id string, capacity int) error {
	return nil
}

func (m *mockSlotRepository) Delete(ctx context.Context, id string) error { return nil }

func (m *mockSlotRepository) Count(ctx context.Context) (int64, error) { return 0, nil }

func (m *mockSlotRepository) TotalReserved(ctx context.Context) (int64, error) { return 0, nil }

type mockRoadRepository struct {
	roads map[string]*model.Road
}

func (m *mockRoadRepository) Create(ctx context.Context, road *model.Road) error { return nil }

func (m *mockRoadRepository) FindByID(ctx context.Context, id string) (*model.Road, error) {
	r, ok := m.roads[id]
	if !ok {
		return nil, roadserrors.ErrNotFound
	}
	return r, nil
}

func (m *mockRoadRepository) FindAll(ctx context.Context, search string, limit int, offset int64) ([]*model.Road, error) {
	return nil, nil
}

func (m *mockRoadRepository) CountAll(ctx context.Context, search string) (int64, error) {
	return 0, nil
}

func (m *mockRoadRepository) Update(ctx context.Context, id string, road *model.Road) error {
	return nil
}

func (m *mockRoadRepository) Delete(ctx context.Context, id string) error { return nil }

func (m *mockRoadRepository) Count(ctx context.Context) (int64, error) { return 0, nil }

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		AvailabilityDays:      7,
		SlotDuration:          time.Hour,
		DefaultHourlyCapacity: 100,
	}
}

func TestQuery_SynthesizesBucketsWithoutStoredSlots(t *testing.T) {
	roads := &mockRoadRepository{roads: map[string]*model.Road{
		"road-1": {ID: "road-1", Name: "Route 6", HourlyCapacity: 50},
	}}
	svc := NewAvailabilityService(&mockSlotRepository{}, roads, testConfig())

	from := time.Now().UTC().Truncate(time.Hour).Add(24 * time.Hour)
	to := from.Add(4 * time.Hour)
	result, err := svc.Query(context.Background(), &model.AvailabilityRequest{
		RoadIDs:     []string{"road-1"},
		WindowStart: &from,
		WindowEnd:   &to,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	views, ok := result["road-1"]
	if !ok {
		t.Fatalf("expected entry for road-1")
	}
	if len(views) != 4 {
		t.Fatalf("expected 4 hourly buckets, got %d", len(views))
	}
	for _, view := range views {
		if view.SlotID != "" {
			t.Errorf("expected empty slot ID for unmaterialized bucket, got %q", view.SlotID)
		}
		if !view.Available || view.AvailableCapacity != 50 {
			t.Errorf("expected 50 units available, got %d (available=%v)", view.AvailableCapacity, view.Available)
		}
	}
}

func TestQuery_OverlaysStoredSlots(t *testing.T) {
	from := time.Now().UTC().Truncate(time.Hour).Add(24 * time.Hour)
	to := from.Add(3 * time.Hour)

	fullSlot := &model.Slot{
		ID:            "slot-full",
		RoadID:        "road-1",
		RoadName:      "Route 6",
		StartTime:     from.Add(time.Hour),
		EndTime:       from.Add(2 * time.Hour),
		Capacity:      50,
		ReservedCount: 50,
	}
	slots := &mockSlotRepository{
		findByRoadAndWindowFunc: func(ctx context.Context, roadID string, f, t time.Time) ([]*model.Slot, error) {
			return []*model.Slot{fullSlot}, nil
		},
	}
	roads := &mockRoadRepository{roads: map[string]*model.Road{
		"road-1": {ID: "road-1", Name: "Route 6", HourlyCapacity: 50},
	}}
	svc := NewAvailabilityService(slots, roads, testConfig())

	result, err := svc.Query(context.Background(), &model.AvailabilityRequest{
		RoadIDs:     []string{"road-1"},
		WindowStart: &from,
		WindowEnd:   &to,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	views := result["road-1"]
	if len(views) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(views))
	}

	booked := views[1]
	if booked.SlotID != "slot-full" {
		t.Errorf("expected stored slot ID in overlay, got %q", booked.SlotID)
	}
	if booked.Available || booked.AvailableCapacity != 0 {
		t.Errorf("expected full slot to be unavailable, got available=%v capacity=%d", booked.Available, booked.AvailableCapacity)
	}

	for _, i := range []int{0, 2} {
		if !views[i].Available || views[i].SlotID != "" {
			t.Errorf("bucket %d: expected synthesized available bucket", i)
		}
	}
}

func TestQuery_SkipsUnknownRoads(t *testing.T) {
	roads := &mockRoadRepository{roads: map[string]*model.Road{
		"road-1": {ID: "road-1", Name: "Route 6", HourlyCapacity: 50},
	}}
	svc := NewAvailabilityService(&mockSlotRepository{}, roads, testConfig())

	from := time.Now().UTC().Truncate(time.Hour).Add(24 * time.Hour)
	to := from.Add(time.Hour)
	result, err := svc.Query(context.Background(), &model.AvailabilityRequest{
		RoadIDs:     []string{"road-1", "road-missing"},
		WindowStart: &from,
		WindowEnd:   &to,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result["road-1"]; !ok {
		t.Errorf("expected entry for known road")
	}
	if _, ok := result["road-missing"]; ok {
		t.Errorf("unknown road must be skipped, not reported")
	}
}

func TestQuery_SkipsElapsedBuckets(t *testing.T) {
	roads := &mockRoadRepository{roads: map[string]*model.Road{
		"road-1": {ID: "road-1", Name: "Route 6", HourlyCapacity: 50},
	}}
	svc := NewAvailabilityService(&mockSlotRepository{}, roads, testConfig())

	// Window starts three hours ago; elapsed buckets and the bucket covering
	// the current hour must not appear.
	from := time.Now().UTC().Truncate(time.Hour).Add(-3 * time.Hour)
	to := from.Add(5 * time.Hour)
	result, err := svc.Query(context.Background(), &model.AvailabilityRequest{
		RoadIDs:     []string{"road-1"},
		WindowStart: &from,
		WindowEnd:   &to,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now := time.Now()
	for _, view := range result["road-1"] {
		if !view.StartTime.After(now) {
			t.Errorf("bucket starting %s has already begun", view.StartTime)
		}
	}
	if len(result["road-1"]) > 1 {
		t.Errorf("expected at most 1 remaining bucket, got %d", len(result["road-1"]))
	}
}

func TestQuery_DefaultWindowOnlyAdvertisesBookableBuckets(t *testing.T) {
	roads := &mockRoadRepository{roads: map[string]*model.Road{
		"road-1": {ID: "road-1", Name: "Route 6", HourlyCapacity: 50},
	}}
	svc := NewAvailabilityService(&mockSlotRepository{}, roads, testConfig())

	result, err := svc.Query(context.Background(), &model.AvailabilityRequest{
		RoadIDs: []string{"road-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	views := result["road-1"]
	if len(views) == 0 {
		t.Fatalf("expected buckets in the default window")
	}

	// The current hour is mid-flight; a booking for it would be rejected as a
	// past slot, so the first advertised bucket must start strictly in the
	// future.
	now := time.Now()
	first := views[0]
	if !first.StartTime.After(now) {
		t.Errorf("first advertised bucket starts %s, which is not after %s", first.StartTime, now)
	}
	for _, view := range views {
		if view.StartTime.Before(now) {
			t.Errorf("advertised bucket starting %s would fail the past-slot check", view.StartTime)
		}
	}
}

func TestQuery_EmptyRoadIDsRejected(t *testing.T) {
	svc := NewAvailabilityService(&mockSlotRepository{}, &mockRoadRepository{roads: map[string]*model.Road{}}, testConfig())

	if _, err := svc.Query(context.Background(), &model.AvailabilityRequest{}); err == nil {
		t.Fatalf("expected error for empty road_ids")
	}
}

func TestQuery_InvertedWindowRejected(t *testing.T) {
	roads := &mockRoadRepository{roads: map[string]*model.Road{
		"road-1": {ID: "road-1", Name: "Route 6", HourlyCapacity: 50},
	}}
	svc := NewAvailabilityService(&mockSlotRepository{}, roads, testConfig())

	from := time.Now().UTC().Add(48 * time.Hour)
	to := from.Add(-time.Hour)
	_, err := svc.Query(context.Background(), &model.AvailabilityRequest{
		RoadIDs:     []string{"road-1"},
		WindowStart: &from,
		WindowEnd:   &to,
	})
	if err == nil {
		t.Fatalf("expected error for inverted window")
	}
}
