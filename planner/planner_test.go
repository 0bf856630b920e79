package planner

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"salon-admin-cli/model"
)

type fakeGateway struct {
	catalog     model.CatalogPayload
	grid        model.SlotGrid
	slotsErr    error
	submitErr   error
	result      model.SubmitResult
	slotCalls   int
	submitted   []model.BookingDraft
	lastToken   string
	lastDate    string
	lastMinutes int
}

func (f *fakeGateway) GetServiceCatalog(ctx context.Context) (model.CatalogPayload, error) {
	return f.catalog, nil
}

func (f *fakeGateway) GetAvailableSlots(ctx context.Context, token string, date string, durationMinutes int) (model.SlotGrid, error) {
	f.slotCalls++
	f.lastToken = token
	f.lastDate = date
	f.lastMinutes = durationMinutes
	if f.slotsErr != nil {
		return model.SlotGrid{}, f.slotsErr
	}
	return f.grid, nil
}

func (f *fakeGateway) SubmitBooking(ctx context.Context, token string, draft model.BookingDraft) (model.SubmitResult, error) {
	f.submitted = append(f.submitted, draft)
	if f.submitErr != nil {
		return model.SubmitResult{}, f.submitErr
	}
	return f.result, nil
}

func testPayload() model.CatalogPayload {
	return model.CatalogPayload{
		Categories: map[string][]string{
			"Hair":  {"Haircut", "Colour"},
			"Nails": {"Manicure"},
			"Empty": {},
		},
		ServiceDurations: map[string]model.Minutes{
			"Haircut":  30,
			"Colour":   90,
			"Manicure": 45,
		},
		ServicePrices: map[string]model.Price{
			"Haircut":  {Decimal: decimal.RequireFromString("20")},
			"Colour":   {Decimal: decimal.RequireFromString("80.5")},
			"Manicure": {Decimal: decimal.RequireFromString("25")},
		},
	}
}

func testPlanner(t *testing.T, gw *fakeGateway, policy AvailabilityPolicy) *Planner {
	t.Helper()
	loc, err := time.LoadLocation("Australia/Melbourne")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, loc)
	return New(gw, NewCatalog(testPayload()), Options{
		Policy:   policy,
		Location: loc,
		Now:      func() time.Time { return now },
		Token:    "token-1",
	})
}

func bookingDate(t *testing.T, p *Planner) time.Time {
	t.Helper()
	return time.Date(2025, time.June, 10, 0, 0, 0, 0, p.location)
}

func TestNewCatalog_DropsEmptyCategories(t *testing.T) {
	c := NewCatalog(testPayload())

	if got := c.Categories(); !reflect.DeepEqual(got, []string{"Hair", "Nails"}) {
		t.Fatalf("expected [Hair Nails], got %v", got)
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 services, got %d", c.Len())
	}

	entry, ok := c.Lookup("Colour")
	if !ok {
		t.Fatal("expected Colour in catalog")
	}
	if entry.DurationMinutes != 90 || entry.Category != "Hair" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if got := entry.Price.StringFixed(2); got != "80.50" {
		t.Fatalf("expected price 80.50, got %s", got)
	}
}

func TestNewCatalog_SharedServiceUsesFirstCategory(t *testing.T) {
	payload := model.CatalogPayload{
		Categories: map[string][]string{
			"Spa":   {"Wash", "Massage"},
			"Nails": {"Wash", "Manicure"},
			"Hair":  {"Wash", "Haircut"},
		},
	}

	for i := 0; i < 50; i++ {
		entry, ok := NewCatalog(payload).Lookup("Wash")
		if !ok {
			t.Fatal("expected Wash in catalog")
		}
		if entry.Category != "Hair" {
			t.Fatalf("build %d: expected Wash in Hair, got %q", i, entry.Category)
		}
	}

	// The shared service is still listed under every category that names it.
	c := NewCatalog(payload)
	for _, category := range []string{"Hair", "Nails", "Spa"} {
		found := false
		for _, e := range c.Services(category) {
			if e.Name == "Wash" {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected Wash listed under %s", category)
		}
	}
}

func TestNewCatalog_DefaultsMissingDuration(t *testing.T) {
	c := NewCatalog(model.CatalogPayload{
		Categories: map[string][]string{"Spa": {"Massage"}},
	})

	entry, ok := c.Lookup("Massage")
	if !ok {
		t.Fatal("expected Massage in catalog")
	}
	if entry.DurationMinutes != DefaultServiceMinutes {
		t.Fatalf("expected %d minutes, got %d", DefaultServiceMinutes, entry.DurationMinutes)
	}
	if !entry.Price.IsZero() {
		t.Fatalf("expected zero price, got %s", entry.Price)
	}
}

func TestFallbackCatalog(t *testing.T) {
	c := FallbackCatalog()

	if got := c.Categories(); !reflect.DeepEqual(got, []string{"General"}) {
		t.Fatalf("expected [General], got %v", got)
	}
	services := c.Services("General")
	if len(services) != 2 {
		t.Fatalf("expected 2 services, got %d", len(services))
	}
	if services[0].Name != "Haircut" || services[1].DurationMinutes != 45 {
		t.Fatalf("unexpected fallback services: %+v", services)
	}
}

func TestDuration(t *testing.T) {
	p := testPlanner(t, &fakeGateway{}, PolicyTrustBackend)

	cases := []struct {
		sel  Selection
		want int
	}{
		{Selection{}, 30},
		{NewSelection("Haircut", "Manicure"), 75},
		{NewSelection("Haircut", "Colour", "Manicure"), 165},
		{NewSelection("Haircut", "Unknown"), 60},
	}
	for _, tc := range cases {
		if got := p.Duration(tc.sel); got != tc.want {
			t.Fatalf("expected %d minutes for %v, got %d", tc.want, tc.sel.Names(), got)
		}
	}
}

func TestPrice_MonotonicAsServicesAreAdded(t *testing.T) {
	p := testPlanner(t, &fakeGateway{}, PolicyTrustBackend)

	if got := p.Price(Selection{}).StringFixed(2); got != "0.00" {
		t.Fatalf("expected 0.00 for empty selection, got %s", got)
	}

	var sel Selection
	prev := p.Price(sel)
	for _, name := range []string{"Haircut", "Manicure", "Colour"} {
		sel.Toggle(name)
		next := p.Price(sel)
		if next.LessThan(prev) {
			t.Fatalf("price dropped after adding %s: %s < %s", name, next, prev)
		}
		prev = next
	}
	if got := prev.StringFixed(2); got != "125.50" {
		t.Fatalf("expected 125.50, got %s", got)
	}
}

func TestEndTime(t *testing.T) {
	cases := []struct {
		start   string
		minutes int
		wrap    bool
		want    string
	}{
		{"09:00", 90, false, "10:30"},
		{"14:00", 75, false, "15:15"},
		{"9:45", 30, false, "10:15"},
		{"23:30", 45, false, "24:15"},
		{"23:30", 45, true, "00:15"},
		{"10:00:00", 30, false, "10:30"},
		{"10:00:59", 30, false, "10:30"},
	}
	for _, tc := range cases {
		got, err := EndTime(tc.start, tc.minutes, tc.wrap)
		if err != nil {
			t.Fatalf("%s: expected nil error, got %v", tc.start, err)
		}
		if got != tc.want {
			t.Fatalf("%s + %d: expected %s, got %s", tc.start, tc.minutes, tc.want, got)
		}
	}
}

func TestEndTime_InvalidLabel(t *testing.T) {
	for _, label := range []string{"", "noon", "25:00", "10:5", "10", "10:+5", "10:00:99", "10:00:6", "10:00:ab", "10:00:-1"} {
		if _, err := EndTime(label, 30, false); err == nil {
			t.Fatalf("expected error for %q", label)
		}
	}
}

func TestNormalizeClock_RejectsBadSeconds(t *testing.T) {
	if _, err := NormalizeClock("10:00:99"); err == nil {
		t.Fatal("expected error for out-of-range seconds")
	}
	got, err := NormalizeClock("10:00:30")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got != "10:00" {
		t.Fatalf("expected 10:00, got %q", got)
	}
}

func TestUnitsFor(t *testing.T) {
	for minutes, want := range map[int]int{0: 1, 30: 1, 45: 2, 75: 3} {
		if got := UnitsFor(minutes); got != want {
			t.Fatalf("UnitsFor(%d): expected %d, got %d", minutes, want, got)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	policy, err := ParsePolicy("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if policy != PolicyTrustBackend {
		t.Fatalf("expected trust policy, got %v", policy)
	}

	policy, err = ParsePolicy(" Contiguous ")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if policy != PolicyContiguousBlock {
		t.Fatalf("expected contiguous policy, got %v", policy)
	}

	if _, err := ParsePolicy("strict"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestValidateContiguousBlock(t *testing.T) {
	grid := model.SlotGrid{
		AvailableSlots:   []string{"09:00", "09:30", "10:00"},
		UnavailableSlots: []string{"09:30"},
	}

	cases := []struct {
		start   string
		minutes int
		want    bool
	}{
		{"09:00", 60, false},
		{"09:30", 30, false},
		{"10:00", 30, true},
		{"10:00", 45, false},
		{"11:00", 30, false},
	}
	for _, tc := range cases {
		if got := ValidateContiguousBlock(tc.start, grid, tc.minutes); got != tc.want {
			t.Fatalf("%s for %d minutes: expected %v, got %v", tc.start, tc.minutes, tc.want, got)
		}
	}
}

func TestCheckSlot_Policies(t *testing.T) {
	grid := model.SlotGrid{
		AvailableSlots:   []string{"09:00", "09:30", "10:00"},
		UnavailableSlots: []string{"09:30"},
	}

	trust := testPlanner(t, &fakeGateway{}, PolicyTrustBackend)
	if err := trust.CheckSlot("09:00", grid, 60); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := trust.CheckSlot("11:00", grid, 30); !IsValidation(err, ReasonSlotUnavailable) {
		t.Fatalf("expected slot_unavailable, got %v", err)
	}
	if err := trust.CheckSlot("", grid, 30); !IsValidation(err, ReasonNoTime) {
		t.Fatalf("expected no_time, got %v", err)
	}

	strict := testPlanner(t, &fakeGateway{}, PolicyContiguousBlock)
	if err := strict.CheckSlot("09:00", grid, 60); !IsValidation(err, ReasonSlotUnavailable) {
		t.Fatalf("expected slot_unavailable, got %v", err)
	}
}

func TestFetchSlots_PassesTokenAndDuration(t *testing.T) {
	gw := &fakeGateway{}
	p := testPlanner(t, gw, PolicyTrustBackend)

	grid, err := p.FetchSlots(context.Background(), bookingDate(t, p), 75)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if grid.AvailableSlots == nil || len(grid.AvailableSlots) != 0 {
		t.Fatalf("expected empty non-nil slots, got %#v", grid.AvailableSlots)
	}
	if gw.lastToken != "token-1" || gw.lastDate != "2025-06-10" || gw.lastMinutes != 75 {
		t.Fatalf("unexpected gateway call: token %q date %q minutes %d", gw.lastToken, gw.lastDate, gw.lastMinutes)
	}
}

func TestFetchSlots_WrapsGatewayError(t *testing.T) {
	boom := errors.New("connection refused")
	p := testPlanner(t, &fakeGateway{slotsErr: boom}, PolicyTrustBackend)

	_, err := p.FetchSlots(context.Background(), bookingDate(t, p), 30)
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestBuildDraft_ValidationOrder(t *testing.T) {
	p := testPlanner(t, &fakeGateway{}, PolicyTrustBackend)
	date := bookingDate(t, p)
	contact := Contact{Name: "Ana", Email: "ana@example.com", Phone: "0400000000"}

	cases := []struct {
		sel     Selection
		date    time.Time
		slot    string
		contact Contact
		want    string
	}{
		{Selection{}, date, "", Contact{Name: "Ana", Phone: "1"}, ReasonMissingContact},
		{Selection{}, date, "14:00", contact, ReasonNoServices},
		{NewSelection("Haircut"), date, " ", contact, ReasonNoTime},
		{NewSelection("Haircut"), time.Time{}, "14:00", contact, ReasonNoDate},
		{NewSelection("Haircut"), date, "2pm", contact, ReasonInvalidTime},
		{NewSelection("Haircut"), date, "10:00:99", contact, ReasonInvalidTime},
	}
	for _, tc := range cases {
		_, err := p.BuildDraft(tc.sel, tc.date, tc.slot, tc.contact)
		if !IsValidation(err, tc.want) {
			t.Fatalf("slot %q: expected %s, got %v", tc.slot, tc.want, err)
		}
	}
}

func TestBuildDraft_Fields(t *testing.T) {
	p := testPlanner(t, &fakeGateway{}, PolicyTrustBackend)

	draft, err := p.BuildDraft(NewSelection("Haircut", "Manicure"), bookingDate(t, p), "14:00", Contact{
		Name:  " Ana ",
		Email: "ana@example.com",
		Phone: "0400000000",
		Notes: "  ",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	want := map[string]string{
		"name":        draft.Name,
		"date":        draft.Date,
		"time":        draft.Time,
		"start_time":  draft.StartTime,
		"end_time":    draft.EndTime,
		"services":    draft.Services,
		"status":      draft.Status,
		"total_price": draft.TotalPrice,
	}
	expected := map[string]string{
		"name":        "Ana",
		"date":        "2025-06-10",
		"time":        "14:00",
		"start_time":  "14:00",
		"end_time":    "15:15",
		"services":    "Haircut, Manicure",
		"status":      "Confirmed",
		"total_price": "45.00",
	}
	for field, got := range want {
		if got != expected[field] {
			t.Fatalf("%s: expected %q, got %q", field, expected[field], got)
		}
	}
	if draft.Duration != 75 {
		t.Fatalf("expected 75 minutes, got %d", draft.Duration)
	}
	if draft.Notes != nil {
		t.Fatalf("expected nil notes, got %q", *draft.Notes)
	}
	if draft.Reference == "" {
		t.Fatal("expected a reference")
	}
}

func TestSubmit_Rejection(t *testing.T) {
	gw := &fakeGateway{result: model.SubmitResult{Success: false}}
	p := testPlanner(t, gw, PolicyTrustBackend)

	_, err := p.Submit(context.Background(), model.BookingDraft{})
	var rejection *BackendRejection
	if !errors.As(err, &rejection) {
		t.Fatalf("expected BackendRejection, got %v", err)
	}
	if rejection.Message != "Failed to store booking" {
		t.Fatalf("expected default message, got %q", rejection.Message)
	}
}

func TestSelection_Toggle(t *testing.T) {
	var sel Selection
	if !sel.Toggle("Haircut") || !sel.Toggle("Manicure") {
		t.Fatal("expected toggles to add services")
	}
	if sel.Toggle("Haircut") {
		t.Fatal("expected second toggle to remove Haircut")
	}
	if got := sel.Names(); !reflect.DeepEqual(got, []string{"Manicure"}) {
		t.Fatalf("expected [Manicure], got %v", got)
	}

	a := NewSelection("Haircut", "Manicure")
	b := NewSelection("Manicure", "Haircut")
	if a.key() != b.key() {
		t.Fatalf("expected order-independent key, got %q and %q", a.key(), b.key())
	}
	if got := a.Joined(); got != "Haircut, Manicure" {
		t.Fatalf("expected joined names, got %q", got)
	}
}
