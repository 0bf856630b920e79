package planner

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"

	"salon-admin-cli/model"
)

// DefaultServiceMinutes is used for services without a usable duration and
// for an empty selection.
const DefaultServiceMinutes = 30

// Entry is one bookable service.
type Entry struct {
	Name            string
	DurationMinutes int
	Price           decimal.Decimal
	Category        string
}

// Catalog maps service names to duration and price. It is immutable once built.
type Catalog struct {
	entries    map[string]Entry
	categories map[string][]string
}

// NewCatalog builds a catalog from the backend payload. Categories without
// services are dropped.
func NewCatalog(payload model.CatalogPayload) *Catalog {
	c := &Catalog{
		entries:    make(map[string]Entry),
		categories: make(map[string][]string),
	}
	// Sorted so a service listed under several categories always lands in
	// the alphabetically first one.
	keys := maps.Keys(payload.Categories)
	sort.Strings(keys)
	for _, key := range keys {
		services := payload.Categories[key]
		category := strings.TrimSpace(key)
		if category == "" {
			continue
		}
		var names []string
		for _, name := range services {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			names = append(names, name)
			if _, exists := c.entries[name]; exists {
				continue
			}
			minutes := int(payload.ServiceDurations[name])
			if minutes <= 0 {
				minutes = DefaultServiceMinutes
			}
			price := payload.ServicePrices[name].Decimal
			if price.IsNegative() {
				price = decimal.Zero
			}
			c.entries[name] = Entry{
				Name:            name,
				DurationMinutes: minutes,
				Price:           price,
				Category:        category,
			}
		}
		if len(names) > 0 {
			c.categories[category] = names
		}
	}
	return c
}

// FallbackCatalog is used when the service list cannot be loaded at all.
func FallbackCatalog() *Catalog {
	return NewCatalog(model.CatalogPayload{
		Categories: map[string][]string{"General": {"Haircut", "Manicure"}},
		ServiceDurations: map[string]model.Minutes{
			"Haircut":  30,
			"Manicure": 45,
		},
	})
}

// Categories returns category names sorted alphabetically.
func (c *Catalog) Categories() []string {
	names := maps.Keys(c.categories)
	sort.Strings(names)
	return names
}

// Services returns the entries of one category in backend order.
func (c *Catalog) Services(category string) []Entry {
	names := c.categories[category]
	out := make([]Entry, 0, len(names))
	for _, name := range names {
		if entry, ok := c.entries[name]; ok {
			out = append(out, entry)
		}
	}
	return out
}

func (c *Catalog) Lookup(name string) (Entry, bool) {
	entry, ok := c.entries[name]
	return entry, ok
}

func (c *Catalog) Len() int {
	return len(c.entries)
}
