package service

import (
	"context"
	"sync"

	authrepo "roadbook/internal/auth/repository"
	bookingsrepo "roadbook/internal/bookings/repository"
	roadsrepo "roadbook/internal/roads/repository"
	slotsrepo "roadbook/internal/slots/repository"
	"roadbook/pkg/config"
	apperrors "roadbook/pkg/errors"
)

// Stats is a point-in-time snapshot of store sizes and held capacity.
type Stats struct {
	Roads         int64 `json:"roads"`
	Slots         int64 `json:"slots"`
	Bookings      int64 `json:"bookings"`
	Users         int64 `json:"users"`
	ReservedUnits int64 `json:"reserved_units"`
}

type StatsService interface {
	Snapshot(ctx context.Context) (*Stats, error)
}

type statsService struct {
	roads    roadsrepo.RoadRepository
	slots    slotsrepo.SlotRepository
	bookings bookingsrepo.BookingRepository
	users    authrepo.UserRepository
	cfg      *config.Config
}

func NewStatsService(
	roads roadsrepo.RoadRepository,
	slots slotsrepo.SlotRepository,
	bookings bookingsrepo.BookingRepository,
	users authrepo.UserRepository,
	cfg *config.Config,
) StatsService {
	return &statsService{
		roads:    roads,
		slots:    slots,
		bookings: bookings,
		users:    users,
		cfg:      cfg,
	}
}

func (s *statsService) Snapshot(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	errs := make([]error, 5)

	var wg sync.WaitGroup
	wg.Add(5)
	go func() { defer wg.Done(); stats.Roads, errs[0] = s.roads.Count(ctx) }()
	go func() { defer wg.Done(); stats.Slots, errs[1] = s.slots.Count(ctx) }()
	go func() { defer wg.Done(); stats.Bookings, errs[2] = s.bookings.Count(ctx) }()
	go func() { defer wg.Done(); stats.Users, errs[3] = s.users.Count(ctx) }()
	go func() { defer wg.Done(); stats.ReservedUnits, errs[4] = s.slots.TotalReserved(ctx) }()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			s.cfg.Log.Error("Failed to collect stats", "error", err)
			return nil, apperrors.Internal("Failed to collect stats", err)
		}
	}
	return stats, nil
}
