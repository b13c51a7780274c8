package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/config"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/availability"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/catalog"
	"github.com/spf13/cobra"
)

// now is replaced in tests.
var now = time.Now

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "salonctl",
		Short:         "Operate the salon booking service: inspect availability, seed data, mint owner tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return config.LoadDotEnv()
		},
	}
	root.AddCommand(newSlotsCmd())
	root.AddCommand(newCalendarCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newTokenCmd())
	root.AddCommand(newEventsCmd())
	root.AddCommand(newHealthCmd())
	return root
}

// referenceDate parses --reference-date, defaulting to today.
func referenceDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		n := now()
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(availability.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("--reference-date must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}

// resolveDuration prefers --menu over --duration.
func resolveDuration(menu string, duration int) (int, error) {
	if strings.TrimSpace(menu) == "" {
		if duration < 0 {
			return 0, errors.New("--duration must not be negative")
		}
		return duration, nil
	}
	var ids []int
	for _, part := range strings.Split(menu, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var id int
		if _, err := fmt.Sscanf(part, "%d", &id); err != nil {
			return 0, fmt.Errorf("--menu: %q is not a menu id", part)
		}
		ids = append(ids, id)
	}
	sel, err := catalog.Select(ids)
	if err != nil {
		return 0, err
	}
	return sel.TotalDuration, nil
}

func databaseURLFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "database-url", "", "Postgres URL (defaults to $DATABASE_URL)")
}

func databaseURL(flag string) (string, error) {
	if strings.TrimSpace(flag) != "" {
		return flag, nil
	}
	return config.RequiredString("DATABASE_URL")
}
