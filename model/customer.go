package model

type Customer struct {
	Id          int    `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	DateOfBirth string `json:"date_of_birth"`
	Notes       string `json:"notes"`
}

type CustomerList struct {
	Data        []Customer `json:"data"`
	CurrentPage int        `json:"current_page"`
	LastPage    int        `json:"last_page"`
}

// CustomersPage mirrors the search envelope, which nests the paginated list
// under data.customers.
type CustomersPage struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    struct {
		Customers CustomerList `json:"customers"`
	} `json:"data"`
}

// SalonTime is one configured opening window for a weekday.
type SalonTime struct {
	Id        int    `json:"id"`
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type SalonTimesPage struct {
	Message     string      `json:"message,omitempty"`
	Data        []SalonTime `json:"data"`
	CurrentPage int         `json:"current_page"`
	LastPage    int         `json:"last_page"`
}
