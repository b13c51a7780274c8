package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/auth"
	"github.com/md-rashed-zaman/salonbook/libs/config"
	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/libs/kafkax"
	otelx "github.com/md-rashed-zaman/salonbook/libs/otel"
	"github.com/md-rashed-zaman/salonbook/libs/runtime"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/outbox"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/seed"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/storage"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
)

func newMigrateCmd() *cobra.Command {
	var dbURL string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			url, err := databaseURL(dbURL)
			if err != nil {
				return err
			}
			pool, err := db.Open(cmd.Context(), url)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer pool.Close()
			if err := storage.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
	databaseURLFlag(cmd, &dbURL)
	return cmd
}

func newSeedCmd() *cobra.Command {
	var dbURL, ref string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the demo hours, bookings and blocks to the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			anchor, err := referenceDate(ref)
			if err != nil {
				return err
			}
			url, err := databaseURL(dbURL)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := db.Open(ctx, url)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer pool.Close()
			if err := storage.Migrate(ctx, pool); err != nil {
				return err
			}
			logger := runtime.NewLogger("salonctl", config.String("LOG_LEVEL", "info"))
			return seedDemo(ctx, storage.NewRepository(pool), anchor, logger)
		},
	}
	databaseURLFlag(cmd, &dbURL)
	cmd.Flags().StringVar(&ref, "reference-date", "", "Anchor of the demo data (default today)")
	return cmd
}

type seedStore interface {
	UpsertBusinessHours(ctx context.Context, hours []model.BusinessHours) error
	CreateBlocks(ctx context.Context, blocks []model.BlockedSlot) ([]model.BlockedSlot, error)
	CreateBooking(ctx context.Context, date string, build func(storage.Schedule) (model.Booking, error)) (model.Booking, error)
}

// seedDemo is not idempotent for bookings and blocks; an already seeded id
// is reported and skipped.
func seedDemo(ctx context.Context, store seedStore, ref time.Time, logger *slog.Logger) error {
	if err := store.UpsertBusinessHours(ctx, seed.DefaultBusinessHours()); err != nil {
		return fmt.Errorf("business hours: %w", err)
	}
	blocks, err := store.CreateBlocks(ctx, seed.DemoBlockedSlots(ref))
	switch {
	case storage.IsConflict(err):
		logger.Warn("demo blocks already present")
	case err != nil:
		return fmt.Errorf("blocks: %w", err)
	default:
		logger.Info("demo blocks written", "count", len(blocks))
	}
	for _, b := range seed.DemoBookings(ref) {
		_, err := store.CreateBooking(ctx, b.Date, func(storage.Schedule) (model.Booking, error) {
			return b, nil
		})
		if storage.IsConflict(err) {
			logger.Warn("demo booking already present", "booking_id", b.ID)
			continue
		}
		if err != nil {
			return fmt.Errorf("booking %s: %w", b.ID, err)
		}
		logger.Info("demo booking written", "booking_id", b.ID, "date", b.Date, "start", b.StartTime)
	}
	return nil
}

func newTokenCmd() *cobra.Command {
	var (
		secret, subject, role string
		ttl                   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an HS256 token for the owner API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(secret) == "" {
				secret = config.String("JWT_SECRET", "")
			}
			if secret == "" {
				return errors.New("--secret or JWT_SECRET is required")
			}
			if ttl <= 0 {
				return errors.New("--ttl must be positive")
			}
			tok, err := auth.SignHS256(auth.NewClaims(subject, role, now(), ttl), secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (defaults to $JWT_SECRET)")
	cmd.Flags().StringVar(&subject, "subject", "owner", "Token subject")
	cmd.Flags().StringVar(&role, "role", auth.RoleOwner, "Role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "Token lifetime")
	return cmd
}

func bookingTopics() []string {
	statuses := []model.BookingStatus{
		model.StatusConfirmed,
		model.StatusCompleted,
		model.StatusCancelledByCustomer,
		model.StatusCancelledByOwner,
		model.StatusNoShow,
	}
	topics := make([]string, 0, len(statuses))
	for _, s := range statuses {
		topics = append(topics, outbox.BookingEventType(string(s)))
	}
	return topics
}

func newEventsCmd() *cobra.Command {
	var (
		brokers, topics []string
		group           string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail booking events from Kafka",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(brokers) == 0 {
				brokers = kafkax.SplitBrokers(config.String("KAFKA_BROKERS", ""))
			}
			if len(brokers) == 0 {
				return errors.New("--brokers or KAFKA_BROKERS is required")
			}
			if len(topics) == 0 {
				topics = bookingTopics()
			}
			reader := kafka.NewReader(kafka.ReaderConfig{
				Brokers:     brokers,
				GroupID:     group,
				GroupTopics: topics,
				StartOffset: kafka.LastOffset,
			})
			defer func() { _ = reader.Close() }()

			ctx := cmd.Context()
			// Tracing stays off; Setup only installs the W3C propagator.
			if _, err := otelx.Setup(ctx, otelx.Config{ServiceName: "salonctl"}); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for {
				msg, err := reader.ReadMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				fmt.Fprintln(out, formatEvent(ctx, msg))
			}
		},
	}
	cmd.Flags().StringSliceVar(&brokers, "brokers", nil, "Kafka brokers (defaults to $KAFKA_BROKERS)")
	cmd.Flags().StringSliceVar(&topics, "topic", nil, "Topics to follow (default every salon.booking topic)")
	cmd.Flags().StringVar(&group, "group", "salonctl-"+hostname(), "Consumer group")
	return cmd
}

func formatEvent(ctx context.Context, msg kafka.Message) string {
	meta := kafkax.ExtractEventMeta(msg)
	traceID := "-"
	if sc := trace.SpanContextFromContext(kafkax.ExtractTraceContext(ctx, msg)); sc.IsValid() {
		traceID = sc.TraceID().String()
	}
	return fmt.Sprintf("%s %s event_id=%s trace_id=%s key=%s %s",
		msg.Time.UTC().Format(time.RFC3339), meta.EventType, meta.EventID, traceID, string(msg.Key), string(msg.Value))
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "local"
	}
	return h
}
