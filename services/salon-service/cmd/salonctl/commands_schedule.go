package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/availability"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/seed"
	"github.com/spf13/cobra"
)

type demoSchedule struct {
	in availability.MonthInputs
}

// loadDemo builds the in-memory demo salon anchored at ref.
func loadDemo(ref time.Time, duration int) demoSchedule {
	return demoSchedule{in: availability.MonthInputs{
		Duration: duration,
		Bookings: seed.DemoBookings(ref),
		Blocks:   seed.DemoBlockedSlots(ref),
		Hours:    seed.DefaultBusinessHours(),
	}}
}

func (d demoSchedule) day(date string) availability.Inputs {
	return availability.Inputs{
		Date:         date,
		Duration:     d.in.Duration,
		Bookings:     d.in.Bookings,
		Blocks:       d.in.Blocks,
		Hours:        d.in.Hours,
		SpecialDates: d.in.SpecialDates,
	}
}

func newSlotsCmd() *cobra.Command {
	var (
		date, menu, ref  string
		duration         int
		interval, buffer int
		asJSON           bool
	)
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List free start times on a date against the demo schedule",
		Long: "Computes available start times for --date using the demo hours, bookings and lunch\n" +
			"blocks anchored at --reference-date. Lead time is not applied.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := time.Parse(availability.DateLayout, date); err != nil {
				return errors.New("--date must be YYYY-MM-DD")
			}
			anchor, err := referenceDate(ref)
			if err != nil {
				return err
			}
			dur, err := resolveDuration(menu, duration)
			if err != nil {
				return err
			}
			if dur == 0 {
				return errors.New("--menu or --duration is required")
			}
			cfg := availability.Config{SlotIntervalMinutes: interval, BufferMinutes: buffer}
			slots := availability.AvailableSlots(loadDemo(anchor, dur).day(date), cfg)
			return printSlots(cmd.OutOrStdout(), date, dur, slots, asJSON)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date to query (YYYY-MM-DD)")
	cmd.Flags().StringVar(&menu, "menu", "", "Comma separated menu item ids, e.g. 1,9")
	cmd.Flags().IntVar(&duration, "duration", 0, "Treatment length in minutes when --menu is not given")
	cmd.Flags().StringVar(&ref, "reference-date", "", "Anchor of the demo schedule (default today)")
	cmd.Flags().IntVar(&interval, "interval", availability.DefaultSlotIntervalMinutes, "Slot grid in minutes")
	cmd.Flags().IntVar(&buffer, "buffer", availability.DefaultBufferMinutes, "Minutes kept free around bookings")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func printSlots(w io.Writer, date string, duration int, slots []string, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"date": date, "duration_minutes": duration, "slots": slots})
	}
	if len(slots) == 0 {
		_, err := fmt.Fprintf(w, "%s: no available slots for %d minutes\n", date, duration)
		return err
	}
	for _, s := range slots {
		if _, err := fmt.Fprintln(w, s); err != nil {
			return err
		}
	}
	return nil
}

func newCalendarCmd() *cobra.Command {
	var (
		month, menu, ref string
		months           int
	)
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print a month grid of bookable days against the demo schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			anchor, err := referenceDate(ref)
			if err != nil {
				return err
			}
			first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
			if month != "" {
				if first, err = time.Parse("2006-01", month); err != nil {
					return errors.New("--month must be YYYY-MM")
				}
			}
			dur, err := resolveDuration(menu, 0)
			if err != nil {
				return err
			}
			cfg := availability.DefaultCalendarConfig()
			cfg.MaxAdvanceMonths = months
			view := availability.MonthView(first.Year(), first.Month(), anchor, loadDemo(anchor, dur).in, cfg)
			return printMonth(cmd.OutOrStdout(), view)
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "Month to show (YYYY-MM, default the reference month)")
	cmd.Flags().StringVar(&menu, "menu", "", "Comma separated menu item ids; without it no day is selectable")
	cmd.Flags().StringVar(&ref, "reference-date", "", "Today for the view and anchor of the demo schedule")
	cmd.Flags().IntVar(&months, "max-advance-months", availability.DefaultMaxAdvanceMonths, "Booking horizon in months")
	return cmd
}

// printMonth marks each day: "o" selectable, "x" closed, "-" past or beyond
// the horizon, "." open but full.
func printMonth(w io.Writer, m availability.Month) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d-%02d\n", m.Year, int(m.Month))
	b.WriteString(" Su  Mo  Tu  We  Th  Fr  Sa\n")
	col := m.LeadingBlanks
	b.WriteString(strings.Repeat("    ", col))
	for _, d := range m.Days {
		mark := "."
		switch {
		case d.Past || d.BeyondHorizon:
			mark = "-"
		case d.Closed:
			mark = "x"
		case d.Selectable:
			mark = "o"
		}
		fmt.Fprintf(&b, "%3d%s", d.Day, mark)
		col++
		if col == 7 {
			b.WriteString("\n")
			col = 0
		}
	}
	if col != 0 {
		b.WriteString("\n")
	}
	nav := []string{}
	if m.CanPrev {
		nav = append(nav, "prev")
	}
	if m.CanNext {
		nav = append(nav, "next")
	}
	if len(nav) > 0 {
		fmt.Fprintf(&b, "navigate: %s\n", strings.Join(nav, ", "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
