package drafts

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/nomad-detailing/internal/booking"
	"github.com/wolfman30/nomad-detailing/internal/catalog"
	"github.com/wolfman30/nomad-detailing/pkg/logging"
)

func sampleDraft() booking.BookingDraft {
	return booking.BookingDraft{
		Category:            catalog.CategoryPremium,
		Service:             catalog.ServiceCeramicCoating,
		Variant:             "2-year",
		VehicleType:         "SUV",
		VehicleCondition:    "Moderate wear",
		ServiceArea:         catalog.AreaOthers,
		AreaOther:           "Shah Alam",
		PropertyType:        "Landed",
		PreferredDate:       "2026-10-20",
		PreferredTimeWindow: "Morning",
		CustomerName:        "Aisyah",
		CustomerWhatsapp:    "0123456789",
		ConsentGiven:        true,
	}
}

func backends(t *testing.T) map[string]KV {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return map[string]KV{
		"memory": NewMemoryStore().Session("tab-1"),
		"redis":  NewRedisStore(client, time.Minute).Session("tab-1"),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			saved := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
			store := NewStore(kv, WithClock(func() time.Time { return saved }), WithLogger(logging.Discard()))

			require.NoError(t, store.Save(ctx, booking.StepContact, sampleDraft(), true, "booking-consent"))

			snap, ok := store.Read(ctx)
			require.True(t, ok)
			assert.Equal(t, booking.StepContact, snap.Step)
			assert.Equal(t, sampleDraft(), snap.Booking)
			assert.True(t, snap.Consent)
			assert.Equal(t, "booking-consent", snap.ReturnAnchorID)
			assert.True(t, saved.Equal(snap.SavedAt))

			// Reading again without a clear still returns the snapshot.
			_, ok = store.Read(ctx)
			assert.True(t, ok)

			require.NoError(t, store.Clear(ctx))
			_, ok = store.Read(ctx)
			assert.False(t, ok)
		})
	}
}

func TestStoreSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStore().Session("tab"), WithLogger(logging.Discard()))

	require.NoError(t, store.Save(ctx, booking.StepVehicle, booking.BookingDraft{VehicleType: "Sedan"}, false, ""))
	require.NoError(t, store.Save(ctx, booking.StepLocation, booking.BookingDraft{VehicleType: "MPV"}, true, ""))

	snap, ok := store.Read(ctx)
	require.True(t, ok)
	assert.Equal(t, booking.StepLocation, snap.Step)
	assert.Equal(t, "MPV", snap.Booking.VehicleType)
	assert.Empty(t, snap.ReturnAnchorID)
}

func TestStoreMalformedIsAbsent(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := NewStore(kv, WithLogger(logging.Discard()))

			require.NoError(t, kv.Set(ctx, DraftKey, "{not json"))
			_, ok := store.Read(ctx)
			assert.False(t, ok)

			require.NoError(t, kv.Set(ctx, DraftKey, `{"step":"teleport","bookingData":{}}`))
			_, ok = store.Read(ctx)
			assert.False(t, ok)

			require.NoError(t, kv.Set(ctx, DraftKey, ""))
			_, ok = store.Read(ctx)
			assert.False(t, ok)
		})
	}
}

type brokenKV struct{}

func (brokenKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}
func (brokenKV) Set(context.Context, string, string) error { return errors.New("connection refused") }
func (brokenKV) Delete(context.Context, string) error      { return errors.New("connection refused") }

func TestStoreReadSwallowsBackendErrors(t *testing.T) {
	store := NewStore(brokenKV{}, WithLogger(logging.Discard()))
	_, ok := store.Read(context.Background())
	assert.False(t, ok)
	assert.Equal(t, ReturnPoint{Page: DefaultReturnPage}, store.Return(context.Background()))
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	a := NewStore(mem.Session("tab-a"), WithLogger(logging.Discard()))
	b := NewStore(mem.Session("tab-b"), WithLogger(logging.Discard()))

	require.NoError(t, a.Save(ctx, booking.StepVehicle, sampleDraft(), false, ""))
	_, ok := b.Read(ctx)
	assert.False(t, ok, "draft leaked across sessions")

	mem.End("tab-a")
	_, ok = a.Read(ctx)
	assert.False(t, ok)
}

func TestRedisSessionExpires(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	kv := NewRedisStore(client, 10*time.Minute).Session("tab-1")
	store := NewStore(kv, WithLogger(logging.Discard()))
	require.NoError(t, store.Save(ctx, booking.StepContact, sampleDraft(), true, ""))
	assert.True(t, mr.Exists("session:tab-1:"+DraftKey))

	mr.FastForward(11 * time.Minute)
	_, ok := store.Read(ctx)
	assert.False(t, ok)
}

func TestReturnPoint(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStore().Session("tab"), WithLogger(logging.Discard()))

	assert.Equal(t, ReturnPoint{Page: DefaultReturnPage}, store.Return(ctx))

	require.NoError(t, store.SetReturn(ctx, "booking", "booking-consent"))
	assert.Equal(t, ReturnPoint{Page: "booking", AnchorID: "booking-consent"}, store.Return(ctx))
}
