package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"

	"salon-admin-cli/model"
	"salon-admin-cli/planner"
	"salon-admin-cli/store"
)

const doneLabel = "Done"

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Show free start times for a set of services",
	Long:  `Show free start times on a date for the combined duration of the given services.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dateFlag, _ := cmd.Flags().GetString("date")
		servicesFlag, _ := cmd.Flags().GetString("services")

		token, err := store.LoadAuthToken()
		if err != nil {
			return err
		}
		ctx := context.Background()
		p := planner.New(deps.client, loadCatalog(ctx), plannerOptions(token))

		date := p.Today()
		if dateFlag != "" {
			if date, err = time.ParseInLocation(time.DateOnly, dateFlag, deps.cfg.Location); err != nil {
				return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", dateFlag)
			}
		}
		if date.Before(p.Today()) {
			return errors.New("date is in the past")
		}

		selection := planner.NewSelection(splitServices(servicesFlag)...)
		if selection.Len() == 0 {
			if selection, err = promptServices(p.Catalog()); err != nil {
				return err
			}
		}
		for _, name := range selection.Names() {
			if _, ok := p.Catalog().Lookup(name); !ok {
				return fmt.Errorf("unknown service %q", name)
			}
		}
		if selection.Len() == 0 {
			return errors.New("select at least one service")
		}

		minutes := p.Duration(selection)
		grid, err := p.FetchSlots(ctx, date, minutes)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s • %s • %d min • $%s\n",
			date.Format("Mon 2006-01-02"), selection.Joined(), minutes, p.Price(selection).StringFixed(2))
		if grid.IsEmpty() {
			fmt.Fprintln(out, "No free slots.")
			return nil
		}
		renderSlotsTable(out, p, grid, minutes)
		return nil
	},
}

func init() {
	slotsCmd.Flags().String("date", "", "booking date (YYYY-MM-DD), defaults to today")
	slotsCmd.Flags().String("services", "", "comma separated service names")
}

// loadCatalog prefers a fresh cache, then the backend, then a stale cache and
// finally the built in fallback.
func loadCatalog(ctx context.Context) *planner.Catalog {
	if cached, fresh, err := store.LoadCatalogCache(); err == nil && fresh && len(cached.Categories) > 0 {
		return planner.NewCatalog(cached)
	}
	payload, err := deps.client.GetServiceCatalog(ctx)
	if err == nil && len(payload.Categories) > 0 {
		if saveErr := store.SaveCatalogCache(payload); saveErr != nil {
			deps.logger.Warn("catalog cache write failed", zap.Error(saveErr))
		}
		return planner.NewCatalog(payload)
	}
	deps.logger.Warn("service catalog unavailable", zap.Error(err))
	if cached, _, cacheErr := store.LoadCatalogCache(); cacheErr == nil && len(cached.Categories) > 0 {
		return planner.NewCatalog(cached)
	}
	return planner.FallbackCatalog()
}

func splitServices(value string) []string {
	var names []string
	for _, part := range strings.Split(value, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func promptServices(catalog *planner.Catalog) (planner.Selection, error) {
	entries := make(map[string]planner.Entry)
	for _, category := range catalog.Categories() {
		for _, entry := range catalog.Services(category) {
			entries[entry.Name] = entry
		}
	}
	names := maps.Keys(entries)
	sort.Strings(names)

	var selection planner.Selection
	for {
		items := append([]string{doneLabel}, names...)
		prompt := promptui.Select{
			Label: fmt.Sprintf("Toggle services (%d selected)", selection.Len()),
			Items: items,
			Size:  10,
			Searcher: func(input string, index int) bool {
				return strings.Contains(strings.ToLower(items[index]), strings.ToLower(input))
			},
		}
		_, choice, err := prompt.Run()
		if err != nil {
			return planner.Selection{}, err
		}
		if choice == doneLabel {
			return selection, nil
		}
		selection.Toggle(choice)
	}
}

func renderSlotsTable(out io.Writer, p *planner.Planner, grid model.SlotGrid, minutes int) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Start", "End", "Status"})
	for _, slot := range grid.AvailableSlots {
		end, err := p.EndTime(slot, minutes)
		if err != nil {
			end = "?"
		}
		status := "free"
		if p.CheckSlot(slot, grid, minutes) != nil {
			status = "too short"
		}
		t.AppendRow(table.Row{slot, end, status})
	}
	t.Render()
}
