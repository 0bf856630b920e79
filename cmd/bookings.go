package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"salon-admin-cli/model"
	"salon-admin-cli/store"
)

var bookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "List and manage bookings",
}

var bookingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookings",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := requireToken()
		if err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")
		search, _ := cmd.Flags().GetString("search")
		page, _ := cmd.Flags().GetInt("page")

		result, err := deps.client.ListBookings(context.Background(), token, model.BookingFilter{
			Status: status,
			Search: search,
			Page:   page,
		})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(result.Data) == 0 {
			fmt.Fprintln(out, "No bookings found.")
			return nil
		}
		renderBookingsTable(out, result)
		return nil
	},
}

var bookingsConfirmCmd = &cobra.Command{
	Use:   "confirm <id>",
	Short: "Mark a booking as confirmed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setBookingStatus(cmd, args[0], "Confirmed")
	},
}

var bookingsCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Mark a booking as cancelled",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setBookingStatus(cmd, args[0], "Cancelled")
	},
}

func init() {
	bookingsListCmd.Flags().String("status", "All", "filter by status (All, Pending, Confirmed, Cancelled, Completed)")
	bookingsListCmd.Flags().String("search", "", "search by client name, email or phone")
	bookingsListCmd.Flags().Int("page", 1, "page number")
	bookingsCmd.AddCommand(bookingsListCmd, bookingsConfirmCmd, bookingsCancelCmd)
}

func requireToken() (string, error) {
	token, err := store.LoadAuthToken()
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", fmt.Errorf("not signed in, run `%s login` first", appName)
	}
	return token, nil
}

func setBookingStatus(cmd *cobra.Command, rawID string, status string) error {
	id, err := strconv.Atoi(rawID)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid booking id %q", rawID)
	}
	token, err := requireToken()
	if err != nil {
		return err
	}
	result, err := deps.client.UpdateBookingStatus(context.Background(), token, id, status)
	if err != nil {
		return err
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "failed to update booking status"
		}
		return errors.New(msg)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Booking %d marked %s\n", id, status)
	return nil
}

func renderBookingsTable(out io.Writer, page model.BookingsPage) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"ID", "Client", "Date", "Time", "Services", "Status", "Total"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, WidthMax: 30},
	})
	for _, b := range page.Data {
		t.AppendRow(table.Row{
			b.Id,
			b.Name,
			b.Date,
			fmt.Sprintf("%s-%s", b.StartTime, b.EndTime),
			b.Services,
			b.Status,
			"$" + b.TotalPrice.StringFixed(2),
		})
	}
	if last := page.Pagination.LastPage; last > 0 {
		t.AppendFooter(table.Row{"", "", "", "", "", "Page", fmt.Sprintf("%d/%d", page.Pagination.CurrentPage, last)})
	}
	t.Render()
}
