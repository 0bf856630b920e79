package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"salon-admin-cli/model"
)

func newTestClient(server *httptest.Server) *Client {
	client := NewClient(server.Client(), server.URL)
	client.retryBase = time.Millisecond
	client.retryCap = 2 * time.Millisecond
	return client
}

func TestGetJSON_Non2xxReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	client := newTestClient(server)
	client.maxAttempts = 1

	var out map[string]any
	err := client.getJSON(context.Background(), server.URL+"/fail", "", &out)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetJSON_RetriesTransientServerErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := atomic.AddInt32(&attempts, 1)
		if current < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("retry later"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	client.maxAttempts = 3

	var out map[string]any
	if err := client.getJSON(context.Background(), server.URL+"/retry", "", &out); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if atomic.LoadInt32(&attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if ok, _ := out["ok"].(bool); !ok {
		t.Fatalf("unexpected payload: %+v", out)
	}
}

func TestGetJSON_DoesNotRetryOnClientErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad request"))
	}))
	defer server.Close()

	client := newTestClient(server)

	var out map[string]any
	err := client.getJSON(context.Background(), server.URL+"/bad-request", "", &out)
	if err == nil {
		t.Fatal("expected error")
	}
	if atomic.LoadInt32(&attempts) != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestSubmitBooking_IsNeverRetried(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server)

	_, err := client.SubmitBooking(context.Background(), "tok", model.BookingDraft{Name: "Ann"})
	if err == nil {
		t.Fatal("expected error")
	}
	if atomic.LoadInt32(&attempts) != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
}

func TestGetServiceCatalog_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/services/forbooking" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Fatalf("catalog must not send a token")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "categories": {"Hair": ["Haircut", "Hair Color"], "Nails": ["Manicure"]},
  "serviceDurations": {"Haircut": "30 minutes", "Hair Color": "60 minutes", "Manicure": 45},
  "servicePrices": {"Haircut": "20.00", "Hair Color": 55.5, "Manicure": ""}
}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	payload, err := client.GetServiceCatalog(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(payload.Categories["Hair"]) != 2 {
		t.Fatalf("unexpected categories: %+v", payload.Categories)
	}
	if payload.ServiceDurations["Hair Color"] != 60 || payload.ServiceDurations["Manicure"] != 45 {
		t.Fatalf("unexpected durations: %+v", payload.ServiceDurations)
	}
	if got := payload.ServicePrices["Hair Color"].StringFixed(2); got != "55.50" {
		t.Fatalf("unexpected price: %s", got)
	}
	if !payload.ServicePrices["Manicure"].IsZero() {
		t.Fatalf("expected blank price to decode as zero, got %s", payload.ServicePrices["Manicure"].String())
	}
}

func TestGetAvailableSlots_SendsTokenAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/bookings/check-availability" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("unexpected authorization header: %q", got)
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Fatal("expected request id header")
		}
		var body model.SlotRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Date != "2025-06-10" || body.Duration != 75 {
			t.Fatalf("unexpected body: %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"availableSlots":["14:00","14:30"],"unavailableSlots":["15:00"]}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	grid, err := client.GetAvailableSlots(context.Background(), "secret", "2025-06-10", 75)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(grid.AvailableSlots) != 2 || grid.AvailableSlots[0] != "14:00" {
		t.Fatalf("unexpected grid: %+v", grid)
	}
	if !grid.IsUnavailable("15:00") {
		t.Fatalf("expected 15:00 unavailable: %+v", grid)
	}
}

func TestGetAvailableSlots_NotFoundIsEmptyGrid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server)

	grid, err := client.GetAvailableSlots(context.Background(), "secret", "2025-06-10", 30)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !grid.IsEmpty() {
		t.Fatalf("expected empty grid, got %+v", grid)
	}
}

func TestSubmitBooking_RejectionMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"success":false,"message":"Slot already taken"}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	result, err := client.SubmitBooking(context.Background(), "tok", model.BookingDraft{Name: "Ann"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.Success || result.Message != "Slot already taken" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSubmitBooking_EncodesDraft(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["start_time"] != "14:00" || body["end_time"] != "15:15" || body["total_price"] != "45.00" {
			t.Fatalf("unexpected body: %s", raw)
		}
		if _, ok := body["notes"]; !ok || body["notes"] != nil {
			t.Fatalf("expected null notes, got %s", raw)
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	result, err := client.SubmitBooking(context.Background(), "tok", model.BookingDraft{
		StartTime:  "14:00",
		EndTime:    "15:15",
		TotalPrice: "45.00",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
}

func TestListBookings_Query(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/localdata/booking-view" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("status") != "pending" || q.Get("search") != "ann" || q.Get("page") != "2" || q.Get("per_page") != "10" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "success": true,
  "data": [{"id": 7, "name": "Ann", "date": "2025-06-10", "start_time": "14:00", "status": "Pending", "total_price": "45.00"}],
  "pagination": {"current_page": 2, "last_page": 3}
}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	page, err := client.ListBookings(context.Background(), "tok", model.BookingFilter{Status: "Pending", Search: "ann", Page: 2})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].Id != 7 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Pagination.LastPage != 3 {
		t.Fatalf("unexpected pagination: %+v", page.Pagination)
	}
}

func TestListBookings_AllStatusOmitsFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("status") {
			t.Fatalf("unexpected status filter: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"success": true, "data": [], "pagination": {"current_page": 1, "last_page": 1}}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	if _, err := client.ListBookings(context.Background(), "tok", model.BookingFilter{Status: "All"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestUpdateBookingStatus_SendsCSRFHeader(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sanctum/csrf-cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "abc%3D%3D", Path: "/"})
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/localdata/update-status", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-XSRF-TOKEN"); got != "abc==" {
			t.Fatalf("unexpected csrf header: %q", got)
		}
		var body model.StatusUpdate
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Id != 7 || body.Status != "Confirmed" {
			t.Fatalf("unexpected body: %+v", body)
		}
		_, _ = w.Write([]byte(`{"success": true}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server)

	result, err := client.UpdateBookingStatus(context.Background(), "tok", 7, "Confirmed")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
}

func TestLogin_ValidationErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"The given data was invalid.","errors":{"email":["The email field must be a valid email address."]}}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	_, err := client.Login(context.Background(), "nope", "secret")
	if err == nil {
		t.Fatal("expected error")
	}
	loginErr, ok := err.(*LoginError)
	if !ok {
		t.Fatalf("expected *LoginError, got %T", err)
	}
	if len(loginErr.Fields["email"]) != 1 {
		t.Fatalf("unexpected fields: %+v", loginErr.Fields)
	}
	if !strings.Contains(err.Error(), "valid email") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestLogin_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body model.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email != "admin@salon.test" || body.Password != "pw" {
			t.Fatalf("unexpected body: %+v", body)
		}
		_, _ = w.Write([]byte(`{"token":"t-123","user":{"id":1,"name":"Admin"}}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	result, err := client.Login(context.Background(), " admin@salon.test ", "pw")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.Token != "t-123" {
		t.Fatalf("unexpected token: %q", result.Token)
	}
}

func TestRetryDelay_Caps(t *testing.T) {
	client := NewClient(nil, "")
	if got := client.retryDelay(1); got != defaultRetryBase {
		t.Fatalf("unexpected first delay: %s", got)
	}
	if got := client.retryDelay(10); got != defaultRetryCap {
		t.Fatalf("expected capped delay, got %s", got)
	}
	if client.BaseURL() != DefaultBaseURL {
		t.Fatalf("unexpected base url: %s", client.BaseURL())
	}
}
