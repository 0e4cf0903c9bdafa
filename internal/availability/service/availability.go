package service

import (
	"context"
	"errors"
	"time"

	roadserrors "roadbook/internal/roads/errors"
	roadsrepo "roadbook/internal/roads/repository"
	slotsrepo "roadbook/internal/slots/repository"
	"roadbook/pkg/config"
	apperrors "roadbook/pkg/errors"
	"roadbook/pkg/model"
)

type AvailabilityService interface {
	Query(ctx context.Context, req *model.AvailabilityRequest) (map[string][]model.SlotView, error)
}

type availabilityService struct {
	slots slotsrepo.SlotRepository
	roads roadsrepo.RoadRepository
	cfg   *config.Config
}

func NewAvailabilityService(slots slotsrepo.SlotRepository, roads roadsrepo.RoadRepository, cfg *config.Config) AvailabilityService {
	return &availabilityService{
		slots: slots,
		roads: roads,
		cfg:   cfg,
	}
}

// Query reports the bookable hourly buckets for each requested road. Buckets
// are synthesized from the road's baseline capacity and overlaid with stored
// slot documents; a bucket that has never been booked carries no slot ID.
// Unknown road IDs are skipped rather than failing the whole request.
func (s *availabilityService) Query(ctx context.Context, req *model.AvailabilityRequest) (map[string][]model.SlotView, error) {
	if req == nil || len(req.RoadIDs) == 0 {
		return nil, apperrors.InvalidInput("road_ids cannot be empty")
	}

	from, to, err := s.resolveWindow(req)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]model.SlotView, len(req.RoadIDs))
	for _, roadID := range req.RoadIDs {
		road, err := s.roads.FindByID(ctx, roadID)
		if err != nil {
			if errors.Is(err, roadserrors.ErrNotFound) || errors.Is(err, roadserrors.ErrInvalidID) {
				s.cfg.Log.Warn("Skipping unknown road in availability query", "road_id", roadID)
				continue
			}
			return nil, apperrors.Internal("Failed to load road", err)
		}

		views, err := s.roadAvailability(ctx, road, from, to)
		if err != nil {
			return nil, err
		}
		result[road.ID] = views
	}
	return result, nil
}

func (s *availabilityService) resolveWindow(req *model.AvailabilityRequest) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.Truncate(s.cfg.SlotDuration)
	to := from.Add(time.Duration(s.cfg.AvailabilityDays) * 24 * time.Hour)

	if req.WindowStart != nil {
		from = req.WindowStart.UTC().Truncate(s.cfg.SlotDuration)
	}
	if req.WindowEnd != nil {
		to = req.WindowEnd.UTC()
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("window_end must be after window_start")
	}
	return from, to, nil
}

func (s *availabilityService) roadAvailability(ctx context.Context, road *model.Road, from, to time.Time) ([]model.SlotView, error) {
	stored, err := s.slots.FindByRoadAndWindow(ctx, road.ID, from, to)
	if err != nil {
		s.cfg.Log.Error("Failed to load slots for road", "road_id", road.ID, "error", err)
		return nil, apperrors.Internal("Failed to load slots", err)
	}

	byStart := make(map[time.Time]*model.Slot, len(stored))
	for _, slot := range stored {
		byStart[slot.StartTime.UTC()] = slot
	}

	capacity := road.HourlyCapacity
	if capacity <= 0 {
		capacity = s.cfg.DefaultHourlyCapacity
	}

	now := time.Now()
	views := make([]model.SlotView, 0)
	for start := from; start.Before(to); start = start.Add(s.cfg.SlotDuration) {
		// A bucket whose start has already passed would be rejected at booking
		// time, so it is never advertised.
		if !start.After(now) {
			continue
		}
		end := start.Add(s.cfg.SlotDuration)

		view := model.SlotView{
			RoadID:    road.ID,
			RoadName:  road.Name,
			StartTime: start,
			EndTime:   end,
			Capacity:  capacity,
		}
		if slot, ok := byStart[start]; ok {
			view.SlotID = slot.ID
			view.Capacity = slot.Capacity
			view.Available = slot.Available()
			view.AvailableCapacity = slot.Capacity - slot.ReservedCount
			if view.AvailableCapacity < 0 {
				view.AvailableCapacity = 0
			}
		} else {
			view.Available = capacity > 0
			view.AvailableCapacity = capacity
		}
		views = append(views, view)
	}
	return views, nil
}
