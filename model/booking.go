package model

import "encoding/json"

const DefaultBookingStatus = "Confirmed"

// BookingDraft is the payload sent to the admin booking endpoint.
type BookingDraft struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	Duration   int     `json:"duration"`
	Services   string  `json:"services"`
	Status     string  `json:"status"`
	TotalPrice string  `json:"total_price"`
	Notes      *string `json:"notes"`

	Reference string `json:"-"`
}

type SubmitResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type BookingRecord struct {
	Id         int    `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Services   string `json:"services"`
	Status     string `json:"status"`
	TotalPrice Price  `json:"total_price"`
}

type Pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

type BookingsPage struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message,omitempty"`
	Data       []BookingRecord `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// BookingFilter narrows the bookings list. An empty or "All" status means no filter.
type BookingFilter struct {
	Status  string
	Search  string
	Page    int
	PerPage int
}

type StatusUpdate struct {
	Id     int    `json:"id"`
	Status string `json:"status"`
}
