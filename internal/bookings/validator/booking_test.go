package validator

import (
	"strings"
	"testing"
	"time"

	"roadbook/pkg/logger"
	"roadbook/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func TestValidateCreate(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)

	tests := []struct {
		name    string
		req     *model.CreateBookingRequest
		wantErr string
	}{
		{
			name: "valid request with slot IDs",
			req: &model.CreateBookingRequest{
				Origin:      "Haifa",
				Destination: "Tel Aviv",
				Lines: []model.LineRequest{
					{RoadID: "road-1", SlotID: "slot-1", Quantity: 1},
				},
			},
		},
		{
			name: "valid request with start time",
			req: &model.CreateBookingRequest{
				Origin:      "Haifa",
				Destination: "Tel Aviv",
				Lines: []model.LineRequest{
					{RoadID: "road-1", StartTime: &future},
				},
			},
		},
		{
			name: "missing origin",
			req: &model.CreateBookingRequest{
				Destination: "Tel Aviv",
				Lines: []model.LineRequest{
					{RoadID: "road-1", SlotID: "slot-1"},
				},
			},
			wantErr: "Origin is required",
		},
		{
			name: "empty lines",
			req: &model.CreateBookingRequest{
				Origin:      "Haifa",
				Destination: "Tel Aviv",
				Lines:       []model.LineRequest{},
			},
			wantErr: "Lines",
		},
		{
			name: "line without road",
			req: &model.CreateBookingRequest{
				Origin:      "Haifa",
				Destination: "Tel Aviv",
				Lines: []model.LineRequest{
					{SlotID: "slot-1"},
				},
			},
			wantErr: "RoadID is required",
		},
		{
			name: "line without slot or start time",
			req: &model.CreateBookingRequest{
				Origin:      "Haifa",
				Destination: "Tel Aviv",
				Lines: []model.LineRequest{
					{RoadID: "road-1"},
				},
			},
			wantErr: "either slot_id or start_time is required",
		},
		{
			name: "past start time",
			req: &model.CreateBookingRequest{
				Origin:      "Haifa",
				Destination: "Tel Aviv",
				Lines: []model.LineRequest{
					{RoadID: "road-1", StartTime: &past},
				},
			},
			wantErr: "cannot book a past time slot",
		},
		{
			name: "quantity above cap",
			req: &model.CreateBookingRequest{
				Origin:      "Haifa",
				Destination: "Tel Aviv",
				Lines: []model.LineRequest{
					{RoadID: "road-1", SlotID: "slot-1", Quantity: 101},
				},
			},
			wantErr: "Quantity",
		},
	}

	v := NewBookingValidator(testLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCreate(tt.req)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}
