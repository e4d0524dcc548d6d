package shipping

import (
	"context"
	"errors"
	"testing"

	"github.com/chronovashop/chronova-backend/pkg/db/models"
)

type stubSettings struct {
	zones []models.ShippingZoneConfig
	err   error
}

func (s *stubSettings) LoadZones(ctx context.Context) ([]models.ShippingZoneConfig, error) {
	return s.zones, s.err
}

func newTestResolver(t *testing.T, settings SettingsLoader) Resolver {
	t.Helper()
	r, err := NewResolver(settings, nil)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r
}

func TestResolveInsideDhakaDefaults(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, &stubSettings{})

	quote, err := r.Resolve(context.Background(), "Dhaka", 100000)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if quote.ZoneKey != "dhaka" {
		t.Fatalf("zone = %q, want dhaka", quote.ZoneKey)
	}
	if quote.FeeCents != 6000 {
		t.Fatalf("fee = %d, want 6000", quote.FeeCents)
	}
	if quote.EtaText != "1-2 days" {
		t.Fatalf("eta = %q", quote.EtaText)
	}
	if quote.FreeShippingApplied {
		t.Fatal("free shipping should not apply below threshold")
	}
}

func TestResolveOutsideDhakaDefaults(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, &stubSettings{})

	quote, err := r.Resolve(context.Background(), "Sylhet", 100000)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if quote.ZoneKey != "outside" {
		t.Fatalf("zone = %q, want outside", quote.ZoneKey)
	}
	if quote.FeeCents != 12000 {
		t.Fatalf("fee = %d, want 12000", quote.FeeCents)
	}
}

func TestResolveFreeShippingThreshold(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, &stubSettings{})

	cases := []struct {
		name     string
		subtotal int
		wantFee  int
		wantFree bool
	}{
		{"just below", 499999, 6000, false},
		{"exactly at", 500000, 0, true},
		{"above", 900000, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quote, err := r.Resolve(context.Background(), "Dhaka", tc.subtotal)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if quote.FeeCents != tc.wantFee {
				t.Fatalf("fee = %d, want %d", quote.FeeCents, tc.wantFee)
			}
			if quote.FreeShippingApplied != tc.wantFree {
				t.Fatalf("free = %t, want %t", quote.FreeShippingApplied, tc.wantFree)
			}
		})
	}
}

func TestResolveMatchCitiesCaseInsensitive(t *testing.T) {
	t.Parallel()

	zones := []models.ShippingZoneConfig{
		{ZoneKey: "dhaka", Name: "Inside Dhaka", FeeCents: 7000, MatchCities: []string{"Dhaka", "Narayanganj"}},
		{ZoneKey: "outside", Name: "Rest of Country", FeeCents: 15000},
	}
	r := newTestResolver(t, &stubSettings{zones: zones})

	quote, err := r.Resolve(context.Background(), "  narayanganj ", 100000)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if quote.ZoneKey != "dhaka" {
		t.Fatalf("zone = %q, want city match into dhaka", quote.ZoneKey)
	}
	if quote.FeeCents != 7000 {
		t.Fatalf("fee = %d, want operator-configured 7000", quote.FeeCents)
	}
}

func TestResolveFallsBackOnSettingsError(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, &stubSettings{err: errors.New("db down")})

	quote, err := r.Resolve(context.Background(), "Dhaka", 100000)
	if err != nil {
		t.Fatalf("Resolve should degrade to defaults, got %v", err)
	}
	if quote.FeeCents != 6000 {
		t.Fatalf("fee = %d, want default 6000", quote.FeeCents)
	}
}

func TestResolveFallbackChainWithoutOutsideKey(t *testing.T) {
	t.Parallel()

	zones := []models.ShippingZoneConfig{
		{ZoneKey: "metro", Name: "Metro", FeeCents: 5000, MatchCities: []string{"Dhaka"}},
		{ZoneKey: "regional", Name: "Regional", FeeCents: 9000},
	}
	r := newTestResolver(t, &stubSettings{zones: zones})

	// no city match and no outside key: the second zone wins
	quote, err := r.Resolve(context.Background(), "Khulna", 100000)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if quote.ZoneKey != "regional" {
		t.Fatalf("zone = %q, want second-zone fallback", quote.ZoneKey)
	}
}

func TestResolveSingleZoneFallback(t *testing.T) {
	t.Parallel()

	zones := []models.ShippingZoneConfig{
		{ZoneKey: "flat", Name: "Flat Rate", FeeCents: 10000},
	}
	r := newTestResolver(t, &stubSettings{zones: zones})

	quote, err := r.Resolve(context.Background(), "Rajshahi", 100000)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if quote.ZoneKey != "flat" {
		t.Fatalf("zone = %q, want only zone", quote.ZoneKey)
	}
}
