package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"

	apperrors "roadbook/pkg/errors"
	"roadbook/pkg/logger"
	"roadbook/pkg/middleware"
	"roadbook/pkg/model"
)

type mockBookingService struct {
	createFunc func(ctx context.Context, userID string, req *model.CreateBookingRequest) (*model.BookingResult, error)
	getFunc    func(ctx context.Context, id, requesterID string, requesterIsAdmin bool) (*model.Booking, error)
	cancelFunc func(ctx context.Context, bookingID, requesterID string) (*model.CancelResult, error)
}

func (m *mockBookingService) CreateBooking(ctx context.Context, userID string, req *model.CreateBookingRequest) (*model.BookingResult, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, req)
	}
	return &model.BookingResult{}, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id, requesterID string, requesterIsAdmin bool) (*model.Booking, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id, requesterID, requesterIsAdmin)
	}
	return &model.Booking{}, nil
}

func (m *mockBookingService) ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.BookingSummary, int64, error) {
	return []*model.BookingSummary{}, 0, nil
}

func (m *mockBookingService) CancelBooking(ctx context.Context, bookingID, requesterID string) (*model.CancelResult, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, bookingID, requesterID)
	}
	return &model.CancelResult{}, nil
}

func (m *mockBookingService) ListRecent(ctx context.Context, limit int) ([]*model.Booking, error) {
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

// testIdentity stamps a fixed caller into the request context, standing in
// for the authentication middleware.
func testIdentity(userID string) func(httprouter.Handle) httprouter.Handle {
	return func(h httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			ctx := middleware.WithIdentity(r.Context(), middleware.Identity{UserID: userID, Username: "tester"})
			h(w, r.WithContext(ctx), ps)
		}
	}
}

func newTestRouter(svc *mockBookingService, userID string) *httprouter.Router {
	router := httprouter.New()
	NewBookingHandler(svc, testLogger(), testIdentity(userID)).RegisterRoutes(router)
	return router
}

func TestCreate_PartialSuccessReturns201(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, userID string, req *model.CreateBookingRequest) (*model.BookingResult, error) {
			return &model.BookingResult{
				BookingID:    "booking-1",
				SuccessCount: 1,
				TotalCount:   2,
				Lines: []model.BookingLine{
					{ID: "l1", RoadID: "road-1", Status: model.LineStatusReserved},
					{ID: "l2", RoadID: "road-2", Status: model.LineStatusFailed, FailReason: apperrors.MsgAlreadyBooked},
				},
			}, nil
		},
	}
	router := newTestRouter(svc, "user-1")

	body, _ := json.Marshal(model.CreateBookingRequest{
		Origin:      "A",
		Destination: "B",
		Lines: []model.LineRequest{
			{RoadID: "road-1", SlotID: "slot-1"},
			{RoadID: "road-2", SlotID: "slot-2"},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var result model.BookingResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.SuccessCount != 1 || result.TotalCount != 2 {
		t.Errorf("expected 1/2, got %d/%d", result.SuccessCount, result.TotalCount)
	}
	if result.Lines[1].FailReason != apperrors.MsgAlreadyBooked {
		t.Errorf("expected fail reason %q, got %q", apperrors.MsgAlreadyBooked, result.Lines[1].FailReason)
	}
}

func TestCreate_AllFailedReturns409(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, userID string, req *model.CreateBookingRequest) (*model.BookingResult, error) {
			return &model.BookingResult{
				BookingID:  "booking-1",
				TotalCount: 1,
				Lines: []model.BookingLine{
					{ID: "l1", RoadID: "road-1", Status: model.LineStatusFailed, FailReason: apperrors.MsgAlreadyBooked},
				},
			}, nil
		},
	}
	router := newTestRouter(svc, "user-1")

	body, _ := json.Marshal(model.CreateBookingRequest{
		Origin:      "A",
		Destination: "B",
		Lines:       []model.LineRequest{{RoadID: "road-1", SlotID: "slot-1"}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestCreate_InvalidBodyReturns400(t *testing.T) {
	router := newTestRouter(&mockBookingService{}, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreate_ServiceErrorsAreMapped(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, userID string, req *model.CreateBookingRequest) (*model.BookingResult, error) {
			return nil, apperrors.Validation("Booking validation failed", nil)
		},
	}
	router := newTestRouter(svc, "user-1")

	body, _ := json.Marshal(model.CreateBookingRequest{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestCancel_NotFoundAfterSecondCancel(t *testing.T) {
	svc := &mockBookingService{
		cancelFunc: func(ctx context.Context, bookingID, requesterID string) (*model.CancelResult, error) {
			return nil, apperrors.New(apperrors.CodeNotFound,
				"Booking not found. It may have already been cancelled.", http.StatusNotFound)
		},
	}
	router := newTestRouter(svc, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/booking-1/cancel", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCancel_PassesCallerIdentity(t *testing.T) {
	var gotBookingID, gotUserID string
	svc := &mockBookingService{
		cancelFunc: func(ctx context.Context, bookingID, requesterID string) (*model.CancelResult, error) {
			gotBookingID, gotUserID = bookingID, requesterID
			return &model.CancelResult{CancelledCount: 2}, nil
		},
	}
	router := newTestRouter(svc, "user-7")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/booking-9/cancel", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotBookingID != "booking-9" || gotUserID != "user-7" {
		t.Errorf("expected booking-9/user-7, got %s/%s", gotBookingID, gotUserID)
	}
}

func TestGetByID_ForbiddenReturns403(t *testing.T) {
	svc := &mockBookingService{
		getFunc: func(ctx context.Context, id, requesterID string, requesterIsAdmin bool) (*model.Booking, error) {
			return nil, apperrors.Forbidden("Access denied. This booking doesn't belong to your account.")
		},
	}
	router := newTestRouter(svc, "user-2")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/id/booking-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
