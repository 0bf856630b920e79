// Package planner computes booking durations, prices and end times, mediates
// slot availability lookups and drives the booking wizard.
package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"salon-admin-cli/model"
)

// Gateway is the backend the planner talks through. Authenticated calls take
// the token explicitly.
type Gateway interface {
	GetServiceCatalog(ctx context.Context) (model.CatalogPayload, error)
	GetAvailableSlots(ctx context.Context, token string, date string, durationMinutes int) (model.SlotGrid, error)
	SubmitBooking(ctx context.Context, token string, draft model.BookingDraft) (model.SubmitResult, error)
}

// AvailabilityPolicy decides how a chosen start slot is validated.
type AvailabilityPolicy string

const (
	// PolicyTrustBackend accepts any slot the backend listed; the backend has
	// already accounted for the booking duration.
	PolicyTrustBackend AvailabilityPolicy = "trust-backend"
	// PolicyContiguousBlock additionally requires every 30 minute unit the
	// booking covers to be listed and not marked unavailable.
	PolicyContiguousBlock AvailabilityPolicy = "contiguous"
)

// ParsePolicy maps a configuration value to a policy.
func ParsePolicy(value string) (AvailabilityPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(PolicyTrustBackend):
		return PolicyTrustBackend, nil
	case string(PolicyContiguousBlock), "contiguous-block":
		return PolicyContiguousBlock, nil
	default:
		return "", fmt.Errorf("unknown availability policy %q", value)
	}
}

const defaultTimezone = "Australia/Melbourne"

type Options struct {
	Policy       AvailabilityPolicy
	WrapMidnight bool
	Location     *time.Location
	Now          func() time.Time
	Logger       *zap.Logger
	Token        string
}

// Contact is the customer the booking is made for.
type Contact struct {
	Name  string
	Email string
	Phone string
	Notes string
}

type Planner struct {
	gateway      Gateway
	catalog      *Catalog
	policy       AvailabilityPolicy
	wrapMidnight bool
	location     *time.Location
	now          func() time.Time
	logger       *zap.Logger
	token        string
}

func New(gateway Gateway, catalog *Catalog, opts Options) *Planner {
	if catalog == nil {
		catalog = NewCatalog(model.CatalogPayload{})
	}
	p := &Planner{
		gateway:      gateway,
		catalog:      catalog,
		policy:       opts.Policy,
		wrapMidnight: opts.WrapMidnight,
		location:     opts.Location,
		now:          opts.Now,
		logger:       opts.Logger,
		token:        opts.Token,
	}
	if p.policy == "" {
		p.policy = PolicyTrustBackend
	}
	if p.location == nil {
		loc, err := time.LoadLocation(defaultTimezone)
		if err != nil {
			loc = time.Local
		}
		p.location = loc
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

func (p *Planner) Catalog() *Catalog {
	return p.catalog
}

func (p *Planner) Policy() AvailabilityPolicy {
	return p.policy
}

// Today returns the current calendar date in the salon's time zone.
func (p *Planner) Today() time.Time {
	return truncateDate(p.now().In(p.location))
}

// Duration sums catalog durations of the selection. Unknown services count as
// DefaultServiceMinutes and an empty selection is one default slot.
func (p *Planner) Duration(selection Selection) int {
	if selection.Len() == 0 {
		return DefaultServiceMinutes
	}
	total := 0
	for _, name := range selection.names {
		entry, ok := p.catalog.Lookup(name)
		if !ok || entry.DurationMinutes <= 0 {
			total += DefaultServiceMinutes
			continue
		}
		total += entry.DurationMinutes
	}
	return total
}

// Price sums catalog prices rounded to cents. Unknown services are free.
func (p *Planner) Price(selection Selection) decimal.Decimal {
	total := decimal.Zero
	for _, name := range selection.names {
		if entry, ok := p.catalog.Lookup(name); ok {
			total = total.Add(entry.Price)
		}
	}
	return total.Round(2)
}

// EndTime applies the planner's midnight setting to the package level EndTime.
func (p *Planner) EndTime(start string, minutes int) (string, error) {
	return EndTime(start, minutes, p.wrapMidnight)
}

// FetchSlots asks the backend for start slots on date able to hold minutes.
// No slots is an empty grid, not an error.
func (p *Planner) FetchSlots(ctx context.Context, date time.Time, minutes int) (model.SlotGrid, error) {
	if date.IsZero() {
		return model.SlotGrid{}, invalid(ReasonNoDate)
	}
	day := date.Format(time.DateOnly)
	grid, err := p.gateway.GetAvailableSlots(ctx, p.token, day, minutes)
	if err != nil {
		p.logger.Warn("slot fetch failed", zap.String("date", day), zap.Int("duration", minutes), zap.Error(err))
		return model.SlotGrid{}, &GatewayError{Op: "fetch slots", Err: err}
	}
	if grid.AvailableSlots == nil {
		grid.AvailableSlots = []string{}
	}
	p.logger.Debug("slots fetched",
		zap.String("date", day),
		zap.Int("duration", minutes),
		zap.Int("available", len(grid.AvailableSlots)),
		zap.Int("unavailable", len(grid.UnavailableSlots)),
	)
	return grid, nil
}

// ValidateContiguousBlock walks forward from slot in grid.AvailableSlots for
// every 30 minute unit the booking needs. Each unit must exist and must not be
// listed as unavailable.
func (p *Planner) ValidateContiguousBlock(slot string, grid model.SlotGrid, minutes int) bool {
	return ValidateContiguousBlock(slot, grid, minutes)
}

func ValidateContiguousBlock(slot string, grid model.SlotGrid, minutes int) bool {
	start := grid.Index(slot)
	if start < 0 {
		return false
	}
	units := UnitsFor(minutes)
	for i := 0; i < units; i++ {
		idx := start + i
		if idx >= len(grid.AvailableSlots) {
			return false
		}
		if grid.IsUnavailable(grid.AvailableSlots[idx]) {
			return false
		}
	}
	return true
}

// CheckSlot validates slot against grid using the configured policy.
func (p *Planner) CheckSlot(slot string, grid model.SlotGrid, minutes int) error {
	if strings.TrimSpace(slot) == "" {
		return invalid(ReasonNoTime)
	}
	switch p.policy {
	case PolicyContiguousBlock:
		if !ValidateContiguousBlock(slot, grid, minutes) {
			return invalid(ReasonSlotUnavailable)
		}
	default:
		if !grid.IsAvailable(slot) {
			return invalid(ReasonSlotUnavailable)
		}
	}
	return nil
}

// BuildDraft validates the inputs and returns the payload to submit. It does
// not touch the network.
func (p *Planner) BuildDraft(selection Selection, date time.Time, slot string, contact Contact) (model.BookingDraft, error) {
	name := strings.TrimSpace(contact.Name)
	email := strings.TrimSpace(contact.Email)
	phone := strings.TrimSpace(contact.Phone)
	if name == "" || email == "" || phone == "" {
		return model.BookingDraft{}, invalid(ReasonMissingContact)
	}
	if selection.Len() == 0 {
		return model.BookingDraft{}, invalid(ReasonNoServices)
	}
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return model.BookingDraft{}, invalid(ReasonNoTime)
	}
	if date.IsZero() {
		return model.BookingDraft{}, invalid(ReasonNoDate)
	}

	minutes := p.Duration(selection)
	start, err := NormalizeClock(slot)
	if err != nil {
		return model.BookingDraft{}, &ValidationError{Reason: ReasonInvalidTime, Err: err}
	}
	end, err := p.EndTime(start, minutes)
	if err != nil {
		return model.BookingDraft{}, &ValidationError{Reason: ReasonInvalidTime, Err: err}
	}

	var notes *string
	if trimmed := strings.TrimSpace(contact.Notes); trimmed != "" {
		notes = &trimmed
	}

	return model.BookingDraft{
		Name:       name,
		Email:      email,
		Phone:      phone,
		Date:       date.Format(time.DateOnly),
		Time:       start,
		StartTime:  start,
		EndTime:    end,
		Duration:   minutes,
		Services:   selection.Joined(),
		Status:     model.DefaultBookingStatus,
		TotalPrice: p.Price(selection).StringFixed(2),
		Notes:      notes,
		Reference:  uuid.NewString(),
	}, nil
}

// Submit sends draft once. It never retries.
func (p *Planner) Submit(ctx context.Context, draft model.BookingDraft) (model.SubmitResult, error) {
	log := p.logger.With(zap.String("reference", draft.Reference), zap.String("date", draft.Date), zap.String("start", draft.StartTime))
	result, err := p.gateway.SubmitBooking(ctx, p.token, draft)
	if err != nil {
		log.Warn("booking submission failed", zap.Error(err))
		return model.SubmitResult{}, &GatewayError{Op: "submit booking", Err: err}
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "Failed to store booking"
		}
		log.Info("booking rejected", zap.String("message", msg))
		return result, &BackendRejection{Message: msg}
	}
	log.Info("booking submitted", zap.Int("duration", draft.Duration), zap.String("total_price", draft.TotalPrice))
	return result, nil
}

// NewSession starts a booking wizard at service selection with today's date.
func (p *Planner) NewSession() *Session {
	s := &Session{planner: p}
	s.Reset()
	return s
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
