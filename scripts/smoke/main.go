// Package main drives the booking wizard and the fleet form against a running
// intake API and reports the ids it gets back.
//
// Usage:
//
//	go run ./scripts/smoke --api=http://localhost:8080 [--service=maintenance_wash] [--fleet] [--redis=redis://localhost:6379/0]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/nomad-detailing/internal/booking"
	"github.com/wolfman30/nomad-detailing/internal/drafts"
	"github.com/wolfman30/nomad-detailing/internal/submission"
	"github.com/wolfman30/nomad-detailing/internal/wizard"
	"github.com/wolfman30/nomad-detailing/pkg/logging"
)

var (
	flagAPI     string
	flagService string
	flagVariant string
	flagFleet   bool
	flagRedis   string
)

func init() {
	flag.StringVar(&flagAPI, "api", "http://localhost:8080", "Intake API base URL")
	flag.StringVar(&flagService, "service", "maintenance_wash", "Service key to book")
	flag.StringVar(&flagVariant, "variant", "1-year", "Variant for services that need one")
	flag.BoolVar(&flagFleet, "fleet", false, "Also submit a fleet enquiry")
	flag.StringVar(&flagRedis, "redis", "", "Redis URL for the draft store (in-memory when empty)")
}

// draftStore opens a fresh wizard session, persisted in Redis when asked.
func draftStore(logger *logging.Logger) (*drafts.Store, func(), error) {
	session := uuid.NewString()
	if flagRedis == "" {
		return drafts.NewStore(drafts.NewMemoryStore().Session(session), drafts.WithLogger(logger)), func() {}, nil
	}
	opts, err := redis.ParseURL(flagRedis)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	kv := drafts.NewRedisStore(client, time.Hour).Session(session)
	return drafts.NewStore(kv, drafts.WithLogger(logger)), func() { _ = client.Close() }, nil
}

func main() {
	flag.Parse()
	logger := logging.New("info")
	client := submission.NewClient(flagAPI, submission.WithLogger(logger))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, closeStore, err := draftStore(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "draft store: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	id, err := bookThrough(ctx, client, store, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "booking failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("booking ok: %s\n", id)

	if !flagFleet {
		return
	}
	form := wizard.NewFleetForm(client, logger)
	if err := form.Update(func(d *booking.FleetEnquiryDraft) {
		d.CompanyName = "Smoke Test Sdn Bhd"
		d.ContactPerson = "Smoke Test"
		d.WhatsappNumber = "0123456789"
		d.NumberOfVehicles = "3"
		d.ServiceFrequency = "one-off"
		d.Notes = "Automated smoke test, please ignore."
	}); err != nil {
		fmt.Fprintf(os.Stderr, "fleet form: %v\n", err)
		os.Exit(1)
	}
	if err := form.Submit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fleet enquiry failed: %v %v\n", err, form.Errors())
		os.Exit(1)
	}
	fmt.Printf("fleet ok: %s\n", form.EnquiryID())
}

func bookThrough(ctx context.Context, client *submission.Client, store *drafts.Store, logger *logging.Logger) (string, error) {
	m, eff := wizard.Mount(ctx, booking.Preset{Service: flagService, Variant: flagVariant},
		wizard.WithSubmitter(client),
		wizard.WithDraftStore(store),
		wizard.WithLogger(logger),
	)
	if eff.Kind != wizard.EffectNone {
		return "", fmt.Errorf("service %q cannot be booked online (effect %v)", flagService, eff.Kind)
	}
	if m.Step() != booking.StepVehicle {
		return "", fmt.Errorf("service %q did not resolve, wizard at %s", flagService, m.Step())
	}

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	steps := []func(d *booking.BookingDraft){
		func(d *booking.BookingDraft) {
			d.VehicleType = "Sedan"
			d.VehicleCondition = "Well maintained"
		},
		func(d *booking.BookingDraft) {
			d.ServiceArea = "Kuala Lumpur"
			d.PropertyType = "Condo"
			d.PreferredDate = tomorrow
			d.PreferredTimeWindow = "Morning"
		},
	}
	for _, fill := range steps {
		if err := m.Update(fill); err != nil {
			return "", err
		}
		if _, err := m.GoNext(); err != nil {
			return "", err
		}
	}
	if err := m.Update(func(d *booking.BookingDraft) {
		d.CustomerName = "Smoke Test"
		d.CustomerWhatsapp = "0123456789"
		d.Notes = "Automated smoke test, please ignore."
		d.ConsentGiven = true
	}); err != nil {
		return "", err
	}
	if err := m.Submit(ctx); err != nil {
		return "", fmt.Errorf("%w %v", err, m.Errors())
	}
	return m.BookingID(), nil
}
