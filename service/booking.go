package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"salon-admin-cli/model"
)

const defaultPerPage = 10

// GetServiceCatalog fetches categories, durations and prices of bookable services.
func (c *Client) GetServiceCatalog(ctx context.Context) (model.CatalogPayload, error) {
	var payload model.CatalogPayload
	if err := c.getJSON(ctx, c.baseURL+servicesForBooking, "", &payload); err != nil {
		return model.CatalogPayload{}, err
	}
	return payload, nil
}

// GetAvailableSlots asks the backend which start slots can hold a booking of
// the given duration on date (YYYY-MM-DD). A 404 is reported as an empty grid.
func (c *Client) GetAvailableSlots(ctx context.Context, token string, date string, durationMinutes int) (model.SlotGrid, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return model.SlotGrid{}, errors.New("date is required")
	}
	if durationMinutes <= 0 {
		return model.SlotGrid{}, errors.New("duration must be positive")
	}

	var grid model.SlotGrid
	err := c.doJSON(ctx, apiRequest{
		method:     http.MethodPost,
		endpoint:   c.baseURL + checkAvailabilityPath,
		token:      token,
		body:       model.SlotRequest{Date: date, Duration: durationMinutes},
		idempotent: true,
	}, &grid)
	if err != nil {
		if IsNotFound(err) {
			return model.SlotGrid{}, nil
		}
		return model.SlotGrid{}, err
	}
	return grid, nil
}

// SubmitBooking sends a draft once. A 4xx answer carrying a JSON message is
// returned as an unsuccessful result rather than an error so the caller can
// show the backend's reason verbatim.
func (c *Client) SubmitBooking(ctx context.Context, token string, draft model.BookingDraft) (model.SubmitResult, error) {
	var result model.SubmitResult
	err := c.doJSON(ctx, apiRequest{
		method:   http.MethodPost,
		endpoint: c.baseURL + storeBookingPath,
		token:    token,
		body:     draft,
	}, &result)
	if err != nil {
		if rejected, ok := rejectionFromError(err); ok {
			return rejected, nil
		}
		return model.SubmitResult{}, err
	}
	return result, nil
}

// ListBookings fetches one page of bookings for the admin list.
func (c *Client) ListBookings(ctx context.Context, token string, filter model.BookingFilter) (model.BookingsPage, error) {
	if token == "" {
		return model.BookingsPage{}, errors.New("auth token is required")
	}
	query := url.Values{}
	status := strings.TrimSpace(filter.Status)
	if status != "" && !strings.EqualFold(status, "all") {
		query.Set("status", strings.ToLower(status))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query.Set("search", search)
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))

	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, bookingViewPath, query.Encode())
	var result model.BookingsPage
	if err := c.getJSON(ctx, endpoint, token, &result); err != nil {
		return model.BookingsPage{}, err
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "failed to fetch bookings"
		}
		return model.BookingsPage{}, errors.New(msg)
	}
	return result, nil
}

// UpdateBookingStatus changes the status of an existing booking. The backend
// requires a fresh CSRF token for this call.
func (c *Client) UpdateBookingStatus(ctx context.Context, token string, id int, status string) (model.SubmitResult, error) {
	if id <= 0 {
		return model.SubmitResult{}, errors.New("booking id is required")
	}
	status = strings.TrimSpace(status)
	if status == "" {
		return model.SubmitResult{}, errors.New("status is required")
	}
	csrf, err := c.CSRFToken(ctx)
	if err != nil {
		return model.SubmitResult{}, err
	}

	var result model.SubmitResult
	err = c.doJSON(ctx, apiRequest{
		method:   http.MethodPost,
		endpoint: c.baseURL + updateStatusPath,
		token:    token,
		csrf:     csrf,
		body:     model.StatusUpdate{Id: id, Status: status},
	}, &result)
	if err != nil {
		if rejected, ok := rejectionFromError(err); ok {
			return rejected, nil
		}
		return model.SubmitResult{}, err
	}
	return result, nil
}

func rejectionFromError(err error) (model.SubmitResult, bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return model.SubmitResult{}, false
	}
	if apiErr.StatusCode < http.StatusBadRequest || apiErr.StatusCode >= http.StatusInternalServerError {
		return model.SubmitResult{}, false
	}
	var result model.SubmitResult
	if jsonErr := json.Unmarshal([]byte(apiErr.Body), &result); jsonErr != nil || result.Message == "" {
		return model.SubmitResult{}, false
	}
	result.Success = false
	return result, true
}
