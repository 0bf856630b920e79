package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"

	"salon-admin-cli/model"
	"salon-admin-cli/planner"
)

type categoryItem struct {
	name     string
	count    int
	selected int
}

func (c categoryItem) Title() string {
	return c.name
}

func (c categoryItem) Description() string {
	desc := fmt.Sprintf("%d services", c.count)
	if c.count == 1 {
		desc = "1 service"
	}
	if c.selected > 0 {
		desc += fmt.Sprintf(" • %d selected", c.selected)
	}
	return desc
}

func (c categoryItem) FilterValue() string {
	return strings.ToLower(c.name)
}

type serviceItem struct {
	entry    planner.Entry
	selected bool
}

func (s serviceItem) Title() string {
	if s.selected {
		return "[x] " + s.entry.Name
	}
	return "[ ] " + s.entry.Name
}

func (s serviceItem) Description() string {
	return fmt.Sprintf("%d min • $%s", s.entry.DurationMinutes, s.entry.Price.StringFixed(2))
}

func (s serviceItem) FilterValue() string {
	return strings.ToLower(s.entry.Name)
}

type dateItem struct {
	date  time.Time
	today bool
}

func (d dateItem) Title() string {
	if d.today {
		return fmt.Sprintf("%s • %s (Today)", d.date.Format("Mon"), d.date.Format("02/01"))
	}
	return fmt.Sprintf("%s • %s", d.date.Format("Mon"), d.date.Format("02/01"))
}

func (d dateItem) Description() string {
	return d.date.Format(time.DateOnly)
}

func (d dateItem) FilterValue() string {
	return d.Title()
}

type timeItem struct {
	slot string
	end  string
	fits bool
}

func (t timeItem) Title() string {
	return t.slot
}

func (t timeItem) Description() string {
	if !t.fits {
		return "Not enough free time after this slot"
	}
	if t.end == "" {
		return ""
	}
	return "Ends " + t.end
}

func (t timeItem) FilterValue() string {
	return t.slot
}

func buildCategoryItems(catalog *planner.Catalog, selection planner.Selection) []list.Item {
	categories := catalog.Categories()
	items := make([]list.Item, 0, len(categories))
	for _, name := range categories {
		services := catalog.Services(name)
		selected := 0
		for _, entry := range services {
			if selection.Has(entry.Name) {
				selected++
			}
		}
		items = append(items, categoryItem{name: name, count: len(services), selected: selected})
	}
	return items
}

func buildServiceItems(entries []planner.Entry, selection planner.Selection) []list.Item {
	items := make([]list.Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, serviceItem{entry: entry, selected: selection.Has(entry.Name)})
	}
	return items
}

func buildDateItems(today time.Time, days int) []list.Item {
	items := make([]list.Item, 0, days)
	for i := 0; i < days; i++ {
		items = append(items, dateItem{date: today.AddDate(0, 0, i), today: i == 0})
	}
	return items
}

func dateIndex(items []list.Item, date time.Time) int {
	for i, item := range items {
		if d, ok := item.(dateItem); ok && isSameDay(d.date, date) {
			return i
		}
	}
	return 0
}

func isSameDay(a time.Time, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// buildTimeItems lists every start slot. Slots the planner would reject are
// kept so the user sees why they are missing rather than a gap.
func buildTimeItems(p *planner.Planner, grid model.SlotGrid, minutes int) []list.Item {
	items := make([]list.Item, 0, len(grid.AvailableSlots))
	for _, slot := range grid.AvailableSlots {
		item := timeItem{slot: slot, fits: p.CheckSlot(slot, grid, minutes) == nil}
		if end, err := p.EndTime(slot, minutes); err == nil {
			item.end = end
		}
		items = append(items, item)
	}
	return items
}
