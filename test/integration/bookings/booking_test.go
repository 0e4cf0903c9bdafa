package integrationtests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"roadbook/test/common"
)

// These tests exercise a running server with a live database. They are
// skipped unless TEST_SERVER_URL and TEST_ADMIN_TOKEN are set; the admin
// token must belong to a user with the admin flag so the test can create
// its own road.

var (
	serverURL  string
	adminToken string
)

func TestBookingLifecycle(t *testing.T) {
	serverURL = os.Getenv("TEST_SERVER_URL")
	adminToken = os.Getenv("TEST_ADMIN_TOKEN")
	if serverURL == "" || adminToken == "" {
		t.Skip("TEST_SERVER_URL and TEST_ADMIN_TOKEN not set")
	}

	admin := common.NewClient(serverURL)
	admin.Token = adminToken

	roadID := createRoad(t, admin, 2)
	user := registerAndLogin(t)
	start := time.Now().UTC().Truncate(time.Hour).Add(48 * time.Hour)

	t.Run("booking reserves capacity", func(t *testing.T) {
		result := createBooking(t, user, roadID, start, 2)
		if result["success_count"].(float64) != 1 {
			t.Fatalf("expected successful booking, got %v", result)
		}
	})

	t.Run("full slot rejects further bookings", func(t *testing.T) {
		status, body, err := user.Post("/api/v1/bookings", bookingRequest(roadID, start, 1))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if status != http.StatusConflict {
			t.Fatalf("expected 409 for full slot, got %d: %s", status, body)
		}

		var result map[string]any
		if err := json.Unmarshal(body, &result); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		lines := result["lines"].([]any)
		reason := lines[0].(map[string]any)["fail_reason"]
		if reason != "Road already booked" {
			t.Errorf("expected stable fail reason, got %v", reason)
		}
	})

	t.Run("cancel restores capacity", func(t *testing.T) {
		result := createBooking(t, user, roadID, start.Add(time.Hour), 2)
		bookingID := result["booking_id"].(string)

		status, body, err := user.Post("/api/v1/bookings/id/"+bookingID+"/cancel", nil)
		if err != nil {
			t.Fatalf("cancel failed: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", status, body)
		}

		// The same window must be bookable again.
		rebooked := createBooking(t, user, roadID, start.Add(time.Hour), 2)
		if rebooked["success_count"].(float64) != 1 {
			t.Fatalf("expected rebooking to succeed after cancel, got %v", rebooked)
		}

		// A second cancel of the first booking reports not found.
		status, _, err = user.Post("/api/v1/bookings/id/"+bookingID+"/cancel", nil)
		if err != nil {
			t.Fatalf("second cancel failed: %v", err)
		}
		if status != http.StatusNotFound {
			t.Errorf("expected 404 on second cancel, got %d", status)
		}
	})

	t.Run("availability reflects reservations", func(t *testing.T) {
		status, body, err := user.Post("/api/v1/availability", map[string]any{
			"road_ids": []string{roadID},
		})
		if err != nil {
			t.Fatalf("availability query failed: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", status, body)
		}

		var envelope struct {
			Data map[string][]map[string]any `json:"data"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			t.Fatalf("failed to decode availability: %v", err)
		}
		views, ok := envelope.Data[roadID]
		if !ok || len(views) == 0 {
			t.Fatalf("expected availability entries for road %s", roadID)
		}

		for _, view := range views {
			if view["start_time"] == start.Format(time.RFC3339) {
				if view["available"].(bool) {
					t.Errorf("expected fully booked bucket to be unavailable")
				}
			}
		}
	})
}

func createRoad(t *testing.T, admin *common.Client, capacity int) string {
	t.Helper()
	status, body, err := admin.Post("/api/v1/admin/roads", map[string]any{
		"name":            fmt.Sprintf("Integration Road %d", time.Now().UnixNano()),
		"road_type":       "highway",
		"country":         "IL",
		"region":          "North",
		"hourly_capacity": capacity,
	})
	if err != nil {
		t.Fatalf("road creation failed: %v", err)
	}
	if status != http.StatusCreated {
		t.Fatalf("expected 201 creating road, got %d: %s", status, body)
	}

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("failed to decode road: %v", err)
	}
	return envelope.Data["id"].(string)
}

func registerAndLogin(t *testing.T) *common.Client {
	t.Helper()
	client := common.NewClient(serverURL)
	username := fmt.Sprintf("itester%d", time.Now().UnixNano())

	status, body, err := client.Post("/api/v1/auth/register", map[string]any{
		"given_names": "Integration",
		"last_name":   "Tester",
		"username":    username,
		"password":    "correct-horse-battery",
	})
	if err != nil || status != http.StatusCreated {
		t.Fatalf("registration failed: status=%d err=%v body=%s", status, err, body)
	}

	status, body, err = client.Post("/api/v1/auth/login", map[string]any{
		"username": username,
		"password": "correct-horse-battery",
	})
	if err != nil || status != http.StatusOK {
		t.Fatalf("login failed: status=%d err=%v body=%s", status, err, body)
	}

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	client.Token = envelope.Data["access_token"].(string)
	return client
}

func bookingRequest(roadID string, start time.Time, quantity int) map[string]any {
	return map[string]any{
		"origin":      "Haifa",
		"destination": "Tel Aviv",
		"lines": []map[string]any{
			{
				"road_id":    roadID,
				"start_time": start.Format(time.RFC3339),
				"quantity":   quantity,
			},
		},
	}
}

func createBooking(t *testing.T, client *common.Client, roadID string, start time.Time, quantity int) map[string]any {
	t.Helper()
	status, body, err := client.Post("/api/v1/bookings", bookingRequest(roadID, start, quantity))
	if err != nil {
		t.Fatalf("booking request failed: %v", err)
	}
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode booking result: %v", err)
	}
	return result
}

