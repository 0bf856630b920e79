package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"salon-admin-cli/model"
)

// Step is a booking wizard state.
type Step int

const (
	StepSelectingServices Step = iota
	StepSelectingDate
	StepSelectingTime
	StepEnteringContact
	StepSubmitted
)

func (s Step) String() string {
	switch s {
	case StepSelectingServices:
		return "selecting services"
	case StepSelectingDate:
		return "selecting date"
	case StepSelectingTime:
		return "selecting time"
	case StepEnteringContact:
		return "entering contact"
	case StepSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// SlotQuery identifies the (date, selection) a slot fetch was started for.
type SlotQuery struct {
	Date    time.Time
	Minutes int
	key     string
}

func (q SlotQuery) Key() string {
	return q.key
}

// Session is one in-progress booking. It is owned by a single UI loop and is
// not safe for concurrent use.
type Session struct {
	planner *Planner

	step      Step
	selection Selection
	date      time.Time
	slot      string

	grid       model.SlotGrid
	gridKey    string
	gridLoaded bool
	fetchErr   error

	draft      model.BookingDraft
	hasDraft   bool
	submitting bool
}

// Reset discards the draft and starts again at service selection.
func (s *Session) Reset() {
	s.step = StepSelectingServices
	s.selection = Selection{}
	s.date = s.planner.Today()
	s.slot = ""
	s.draft = model.BookingDraft{}
	s.hasDraft = false
	s.submitting = false
	s.clearGrid()
}

func (s *Session) Step() Step {
	return s.step
}

// Selection returns a copy of the chosen services.
func (s *Session) Selection() Selection {
	return NewSelection(s.selection.names...)
}

func (s *Session) Date() time.Time {
	return s.date
}

func (s *Session) Slot() string {
	return s.slot
}

func (s *Session) Grid() model.SlotGrid {
	return s.grid
}

func (s *Session) FetchErr() error {
	return s.fetchErr
}

func (s *Session) Submitting() bool {
	return s.submitting
}

func (s *Session) Duration() int {
	return s.planner.Duration(s.selection)
}

func (s *Session) Price() decimal.Decimal {
	return s.planner.Price(s.selection)
}

func (s *Session) Planner() *Planner {
	return s.planner
}

// Draft returns the confirmed draft, if any.
func (s *Session) Draft() (model.BookingDraft, bool) {
	return s.draft, s.hasDraft
}

// GridLoaded reports whether the grid belongs to the current date and selection.
func (s *Session) GridLoaded() bool {
	return s.gridLoaded && s.gridKey == s.currentKey()
}

// NeedsSlots reports whether the time step is showing without a current grid.
func (s *Session) NeedsSlots() bool {
	return s.step == StepSelectingTime && !s.GridLoaded()
}

// EndTime of the chosen slot, or "" when none is chosen.
func (s *Session) EndTime() string {
	if s.slot == "" {
		return ""
	}
	end, err := s.planner.EndTime(s.slot, s.Duration())
	if err != nil {
		return ""
	}
	return end
}

// ToggleService adds or removes a service. Any chosen time and loaded grid are
// invalidated because the duration changed.
func (s *Session) ToggleService(name string) (bool, error) {
	if err := s.expect("toggle service", StepSelectingServices); err != nil {
		return false, err
	}
	if _, ok := s.planner.catalog.Lookup(name); !ok {
		return false, invalid(ReasonUnknownService)
	}
	selected := s.selection.Toggle(name)
	s.slot = ""
	s.clearGrid()
	return selected, nil
}

// SetDate changes the booking date. Past dates are rejected. A different date
// invalidates the chosen time and the grid.
func (s *Session) SetDate(date time.Time) error {
	if err := s.expect("set date", StepSelectingDate, StepSelectingTime); err != nil {
		return err
	}
	if date.IsZero() {
		return invalid(ReasonNoDate)
	}
	day := truncateDate(date.In(s.planner.location))
	if day.Before(s.planner.Today()) {
		return invalid(ReasonPastDate)
	}
	if day.Equal(s.date) {
		return nil
	}
	s.date = day
	s.slot = ""
	s.clearGrid()
	return nil
}

// SlotQuery describes the fetch the current state needs.
func (s *Session) SlotQuery() SlotQuery {
	return SlotQuery{
		Date:    s.date,
		Minutes: s.Duration(),
		key:     s.currentKey(),
	}
}

// ApplySlots stores grid if query still matches the current date and
// selection. Stale results are dropped and false is returned.
func (s *Session) ApplySlots(query SlotQuery, grid model.SlotGrid) bool {
	if query.key != s.currentKey() {
		s.planner.logger.Debug("discarding stale slots", zap.String("query", query.Date.Format(time.DateOnly)))
		return false
	}
	s.grid = grid
	s.gridKey = query.key
	s.gridLoaded = true
	s.fetchErr = nil
	if s.slot != "" && !grid.IsAvailable(s.slot) {
		s.slot = ""
	}
	return true
}

// ApplySlotError records a failed fetch for the current state. The grid is
// emptied so stale slots are never shown.
func (s *Session) ApplySlotError(query SlotQuery, err error) bool {
	if query.key != s.currentKey() {
		return false
	}
	s.grid = model.SlotGrid{}
	s.gridKey = query.key
	s.gridLoaded = true
	s.fetchErr = err
	s.slot = ""
	return true
}

// FetchSlots runs the current query and applies the result. It reports
// whether the result was applied.
func (s *Session) FetchSlots(ctx context.Context) (bool, error) {
	query := s.SlotQuery()
	grid, err := s.planner.FetchSlots(ctx, query.Date, query.Minutes)
	if err != nil {
		return s.ApplySlotError(query, err), err
	}
	return s.ApplySlots(query, grid), nil
}

// SelectTime chooses a start slot from the current grid.
func (s *Session) SelectTime(slot string) error {
	if err := s.expect("select time", StepSelectingTime); err != nil {
		return err
	}
	if !s.GridLoaded() {
		return invalid(ReasonSlotsNotLoaded)
	}
	if err := s.planner.CheckSlot(slot, s.grid, s.Duration()); err != nil {
		return err
	}
	s.slot = slot
	return nil
}

// Continue moves one step forward when the current step is complete.
func (s *Session) Continue() error {
	if s.submitting {
		return ErrSubmitInFlight
	}
	switch s.step {
	case StepSelectingServices:
		if s.selection.Len() == 0 {
			return invalid(ReasonNoServices)
		}
		s.step = StepSelectingDate
	case StepSelectingDate:
		if s.date.IsZero() {
			return invalid(ReasonNoDate)
		}
		if s.date.Before(s.planner.Today()) {
			return invalid(ReasonPastDate)
		}
		s.step = StepSelectingTime
	case StepSelectingTime:
		if s.slot == "" {
			return invalid(ReasonNoTime)
		}
		s.step = StepEnteringContact
	default:
		return fmt.Errorf("%w: continue while %s", ErrWrongStep, s.step)
	}
	return nil
}

// Back moves one step backward. It is a no-op on the first step.
func (s *Session) Back() error {
	if s.submitting {
		return ErrSubmitInFlight
	}
	switch s.step {
	case StepSelectingServices:
	case StepSelectingDate:
		s.step = StepSelectingServices
	case StepSelectingTime:
		s.step = StepSelectingDate
	case StepEnteringContact:
		s.step = StepSelectingTime
	default:
		return fmt.Errorf("%w: back while %s", ErrWrongStep, s.step)
	}
	return nil
}

// Confirm builds the draft from the current state and contact.
func (s *Session) Confirm(contact Contact) (model.BookingDraft, error) {
	if err := s.expect("confirm", StepEnteringContact); err != nil {
		return model.BookingDraft{}, err
	}
	if s.submitting {
		return model.BookingDraft{}, ErrSubmitInFlight
	}
	draft, err := s.planner.BuildDraft(s.selection, s.date, s.slot, contact)
	if err != nil {
		return model.BookingDraft{}, err
	}
	if !s.GridLoaded() || !s.grid.IsAvailable(s.slot) {
		return model.BookingDraft{}, invalid(ReasonSlotUnavailable)
	}
	s.draft = draft
	s.hasDraft = true
	return draft, nil
}

// BeginSubmit marks the confirmed draft as in flight.
func (s *Session) BeginSubmit() (model.BookingDraft, error) {
	if err := s.expect("submit", StepEnteringContact); err != nil {
		return model.BookingDraft{}, err
	}
	if s.submitting {
		return model.BookingDraft{}, ErrSubmitInFlight
	}
	if !s.hasDraft {
		return model.BookingDraft{}, invalid(ReasonMissingContact)
	}
	s.submitting = true
	return s.draft, nil
}

// FinishSubmit records the outcome. Success is terminal; a failure leaves the
// session on the contact step so the user can correct and resubmit.
func (s *Session) FinishSubmit(err error) {
	s.submitting = false
	if err != nil {
		return
	}
	s.step = StepSubmitted
}

// Submit confirms contact and sends the draft in one call.
func (s *Session) Submit(ctx context.Context, contact Contact) (model.BookingDraft, error) {
	if _, err := s.Confirm(contact); err != nil {
		return model.BookingDraft{}, err
	}
	draft, err := s.BeginSubmit()
	if err != nil {
		return model.BookingDraft{}, err
	}
	_, err = s.planner.Submit(ctx, draft)
	s.FinishSubmit(err)
	if err != nil {
		return model.BookingDraft{}, err
	}
	return draft, nil
}

func (s *Session) expect(action string, steps ...Step) error {
	for _, step := range steps {
		if s.step == step {
			return nil
		}
	}
	return fmt.Errorf("%w: %s while %s", ErrWrongStep, action, s.step)
}

func (s *Session) clearGrid() {
	s.grid = model.SlotGrid{}
	s.gridKey = ""
	s.gridLoaded = false
	s.fetchErr = nil
}

func (s *Session) currentKey() string {
	return s.date.Format(time.DateOnly) + "|" + s.selection.key()
}
