package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"salon-admin-cli/model"
)

var salonTimesCmd = &cobra.Command{
	Use:   "salon-times",
	Short: "Show the salon's weekly opening hours",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := requireToken()
		if err != nil {
			return err
		}
		times, err := deps.client.ListSalonTimes(context.Background(), token)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(times) == 0 {
			fmt.Fprintln(out, "No opening hours configured.")
			return nil
		}
		renderSalonTimesTable(out, times)
		return nil
	},
}

var weekdayOrder = map[string]int{
	"monday": 0, "tuesday": 1, "wednesday": 2, "thursday": 3,
	"friday": 4, "saturday": 5, "sunday": 6,
}

func dayRank(day string) int {
	if rank, ok := weekdayOrder[strings.ToLower(strings.TrimSpace(day))]; ok {
		return rank
	}
	return len(weekdayOrder)
}

// renderSalonTimesTable lists opening windows Monday first, keeping the
// backend order within a day.
func renderSalonTimesTable(out io.Writer, times []model.SalonTime) {
	sorted := append([]model.SalonTime(nil), times...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return dayRank(sorted[i].Day) < dayRank(sorted[j].Day)
	})

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Day", "Opens", "Closes"})
	for _, st := range sorted {
		t.AppendRow(table.Row{st.Day, st.StartTime, st.EndTime})
	}
	t.Render()
}
