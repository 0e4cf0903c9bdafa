package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	bookingserrors "roadbook/internal/bookings/errors"
	"roadbook/internal/bookings/repository"
	"roadbook/internal/bookings/validator"
	roadserrors "roadbook/internal/roads/errors"
	roadsrepo "roadbook/internal/roads/repository"
	slotserrors "roadbook/internal/slots/errors"
	slotsrepo "roadbook/internal/slots/repository"
	"roadbook/pkg/config"
	apperrors "roadbook/pkg/errors"
	"roadbook/pkg/events"
	"roadbook/pkg/model"
)

const (
	failReasonRoadMissing = "Road not found"
	failReasonSlotMissing = "Slot not found"
	failReasonPastSlot    = "Cannot book a past time slot"
)

type BookingService interface {
	CreateBooking(ctx context.Context, userID string, req *model.CreateBookingRequest) (*model.BookingResult, error)
	GetByID(ctx context.Context, id, requesterID string, requesterIsAdmin bool) (*model.Booking, error)
	ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.BookingSummary, int64, error)
	CancelBooking(ctx context.Context, bookingID, requesterID string) (*model.CancelResult, error)
	ListRecent(ctx context.Context, limit int) ([]*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	slots     slotsrepo.SlotRepository
	roads     roadsrepo.RoadRepository
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	slots slotsrepo.SlotRepository,
	roads roadsrepo.RoadRepository,
	bookingValidator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		slots:     slots,
		roads:     roads,
		validator: bookingValidator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// CreateBooking commits each requested line independently. A line that fails
// its capacity check is recorded as failed and never rolls back a sibling:
// partial success is the designed outcome, not an error path. The booking
// document is created first so every attempt leaves an audit trail.
func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *model.CreateBookingRequest) (*model.BookingResult, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("Caller identity is missing")
	}
	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "user_id", userID, "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	booking := &model.Booking{
		ID:          uuid.NewString(),
		UserID:      userID,
		Origin:      strings.TrimSpace(req.Origin),
		Destination: strings.TrimSpace(req.Destination),
		Status:      model.BookingStatusActive,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking record", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	result := &model.BookingResult{
		BookingID:  booking.ID,
		TotalCount: len(req.Lines),
	}

	for _, lineReq := range req.Lines {
		line, err := s.commitLine(ctx, booking.ID, lineReq)
		if err != nil {
			// Storage failure: stop here. Lines already committed stay
			// committed; nothing beyond them was touched.
			return nil, err
		}
		if line.Status == model.LineStatusReserved {
			result.SuccessCount++
		}
		result.Lines = append(result.Lines, *line)
	}

	s.publish(events.BookingEvent{
		Type:         events.TypeBookingCreated,
		BookingID:    booking.ID,
		UserID:       userID,
		Origin:       booking.Origin,
		Destination:  booking.Destination,
		SuccessCount: result.SuccessCount,
		TotalCount:   result.TotalCount,
	})

	s.cfg.Log.Info("Booking processed",
		"booking_id", booking.ID,
		"user_id", userID,
		"success_count", result.SuccessCount,
		"total_count", result.TotalCount,
	)
	return result, nil
}

// commitLine resolves the target slot, applies the atomic test-and-increment
// and appends the line with its final status. Only the single slot named by
// the line is ever touched; no lock spans two slots.
func (s *bookingService) commitLine(ctx context.Context, bookingID string, req model.LineRequest) (*model.BookingLine, error) {
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	line := model.BookingLine{
		ID:       uuid.NewString(),
		RoadID:   req.RoadID,
		Quantity: quantity,
	}

	slot, failReason, err := s.resolveSlot(ctx, req)
	if err != nil {
		return nil, err
	}
	if failReason == "" && slot.StartTime.Before(time.Now()) {
		failReason = failReasonPastSlot
	}

	if failReason == "" {
		line.SlotID = slot.ID
		line.RoadName = slot.RoadName
		line.StartTime = slot.StartTime
		line.EndTime = slot.EndTime

		switch err := s.slots.Reserve(ctx, slot.ID, quantity); {
		case err == nil:
			line.Status = model.LineStatusReserved
		case errors.Is(err, slotserrors.ErrSlotFull):
			line.Status = model.LineStatusFailed
			line.FailReason = apperrors.MsgAlreadyBooked
		case errors.Is(err, slotserrors.ErrNotFound):
			line.Status = model.LineStatusFailed
			line.FailReason = failReasonSlotMissing
		default:
			s.cfg.Log.Error("Slot reservation failed", "booking_id", bookingID, "slot_id", slot.ID, "error", err)
			return nil, apperrors.Internal("Failed to reserve slot", err)
		}
	} else {
		line.Status = model.LineStatusFailed
		line.FailReason = failReason
		if req.StartTime != nil {
			line.StartTime = *req.StartTime
			line.EndTime = req.StartTime.Add(s.cfg.SlotDuration)
		}
	}

	if err := s.repo.AppendLine(ctx, bookingID, line); err != nil {
		if line.Status == model.LineStatusReserved {
			// The increment is durable but the line that accounts for it is
			// not; release so capacity is not leaked.
			if relErr := s.slots.Release(ctx, line.SlotID, quantity); relErr != nil {
				s.cfg.Log.Error("Failed to release slot after append failure",
					"booking_id", bookingID,
					"slot_id", line.SlotID,
					"error", relErr,
				)
			}
		}
		s.cfg.Log.Error("Failed to append booking line", "booking_id", bookingID, "error", err)
		return nil, apperrors.Internal("Failed to record booking line", err)
	}

	return &line, nil
}

// resolveSlot maps a line request to a stored slot, materializing the hourly
// bucket from the road baseline when the request carries only a start time.
// A missing road or slot is a per-line failure, not a request failure.
func (s *bookingService) resolveSlot(ctx context.Context, req model.LineRequest) (*model.Slot, string, error) {
	if req.SlotID != "" {
		slot, err := s.slots.FindByID(ctx, req.SlotID)
		if err != nil {
			if errors.Is(err, slotserrors.ErrNotFound) || errors.Is(err, slotserrors.ErrInvalidID) {
				return nil, failReasonSlotMissing, nil
			}
			return nil, "", apperrors.Internal("Failed to load slot", err)
		}
		return slot, "", nil
	}

	road, err := s.roads.FindByID(ctx, req.RoadID)
	if err != nil {
		if errors.Is(err, roadserrors.ErrNotFound) || errors.Is(err, roadserrors.ErrInvalidID) {
			return nil, failReasonRoadMissing, nil
		}
		return nil, "", apperrors.Internal("Failed to load road", err)
	}

	capacity := road.HourlyCapacity
	if capacity <= 0 {
		capacity = s.cfg.DefaultHourlyCapacity
	}

	start := req.StartTime.UTC().Truncate(s.cfg.SlotDuration)
	slot, err := s.slots.Ensure(ctx, road.ID, road.Name, start, start.Add(s.cfg.SlotDuration), capacity)
	if err != nil {
		return nil, "", apperrors.Internal("Failed to materialize slot", err)
	}
	return slot, "", nil
}

func (s *bookingService) GetByID(ctx context.Context, id, requesterID string, requesterIsAdmin bool) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	if booking.UserID != requesterID && !requesterIsAdmin {
		return nil, apperrors.Forbidden("Access denied. This booking doesn't belong to your account.")
	}
	return booking, nil
}

func (s *bookingService) ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.BookingSummary, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.Unauthorized("Caller identity is missing")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUser(ctx, userID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count user bookings", "user_id", userID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByUser(ctx, userID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list user bookings", "user_id", userID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	summaries := make([]*model.BookingSummary, 0, len(bookings))
	for _, b := range bookings {
		summaries = append(summaries, summarize(b))
	}
	return summaries, count, nil
}

// CancelBooking releases the capacity held by every reserved line and flips
// the booking to cancelled. Cancelling twice reports NotFound (the booking is
// "already gone" from the caller's perspective) and never touches a slot.
func (s *bookingService) CancelBooking(ctx context.Context, bookingID, requesterID string) (*model.CancelResult, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if requesterID == "" {
		return nil, apperrors.Unauthorized("Caller identity is missing")
	}

	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound,
				"Booking not found. It may have already been cancelled.", 404)
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	if booking.UserID != requesterID {
		return nil, apperrors.Forbidden("Access denied. This booking doesn't belong to your account.")
	}

	if booking.Status == model.BookingStatusCancelled {
		return nil, apperrors.New(apperrors.CodeNotFound,
			"Booking not found. It may have already been cancelled.", 404)
	}

	// The flip is conditional on the booking still being active; a concurrent
	// cancel that got there first leaves nothing for this call to release.
	flipped, err := s.repo.MarkCancelled(ctx, bookingID)
	if err != nil {
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}
	if !flipped {
		return nil, apperrors.New(apperrors.CodeNotFound,
			"Booking not found. It may have already been cancelled.", 404)
	}

	// Re-read after the flip: a create request still in flight may have
	// appended a line between the first read and the flip, and every reserved
	// line present once the booking is cancelled must be released.
	booking, err = s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	cancelled := 0
	for _, line := range booking.Lines {
		if line.Status != model.LineStatusReserved {
			continue
		}

		if err := s.slots.Release(ctx, line.SlotID, line.Quantity); err != nil {
			if errors.Is(err, slotserrors.ErrNotFound) {
				// Slot removed by an admin since booking; nothing to restore.
				s.cfg.Log.Warn("Slot missing during cancellation",
					"booking_id", bookingID,
					"slot_id", line.SlotID,
				)
			} else {
				s.cfg.Log.Error("Failed to release slot capacity",
					"booking_id", bookingID,
					"slot_id", line.SlotID,
					"error", err,
				)
				return nil, apperrors.Internal("Failed to release slot capacity", err)
			}
		}

		if err := s.repo.UpdateLineStatus(ctx, bookingID, line.ID, model.LineStatusCancelled); err != nil {
			s.cfg.Log.Error("Failed to update line status",
				"booking_id", bookingID,
				"line_id", line.ID,
				"error", err,
			)
			return nil, apperrors.Internal("Failed to update booking line", err)
		}
		cancelled++
	}

	s.publish(events.BookingEvent{
		Type:           events.TypeBookingCancelled,
		BookingID:      bookingID,
		UserID:         requesterID,
		CancelledCount: cancelled,
	})

	s.cfg.Log.Info("Booking cancelled",
		"booking_id", bookingID,
		"user_id", requesterID,
		"cancelled_count", cancelled,
	)
	return &model.CancelResult{CancelledCount: cancelled}, nil
}

func (s *bookingService) ListRecent(ctx context.Context, limit int) ([]*model.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	bookings, err := s.repo.FindRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

// publish is best-effort: an unreachable broker must never fail a booking.
func (s *bookingService) publish(event events.BookingEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"type", event.Type,
			"booking_id", event.BookingID,
			"error", err,
		)
	}
}

func summarize(b *model.Booking) *model.BookingSummary {
	summary := &model.BookingSummary{
		BookingID:   b.ID,
		Origin:      b.Origin,
		Destination: b.Destination,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
		LineCount:   len(b.Lines),
	}

	roads := make(map[string]struct{})
	for _, line := range b.Lines {
		roads[line.RoadID] = struct{}{}
		if !line.StartTime.IsZero() {
			if summary.StartTime == nil || line.StartTime.Before(*summary.StartTime) {
				start := line.StartTime
				summary.StartTime = &start
			}
		}
		if !line.EndTime.IsZero() {
			if summary.EndTime == nil || line.EndTime.After(*summary.EndTime) {
				end := line.EndTime
				summary.EndTime = &end
			}
		}
	}
	summary.RoadCount = len(roads)
	return summary
}
