package money

import "testing"

func TestFormatBDT(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		amount Cents
		want   string
	}{
		{"zero", 0, "৳0"},
		{"under a thousand", 99900, "৳999"},
		{"thousands separator", 1234500, "৳12,345"},
		{"millions", 123456700, "৳1,234,567"},
		{"drops poisha", 150, "৳1"},
		{"negative", -250000, "-৳2,500"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatBDT(tc.amount); got != tc.want {
				t.Fatalf("FormatBDT(%d) = %q, want %q", tc.amount, got, tc.want)
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"local form", "01712345678", "01712345678", false},
		{"international plus", "+8801712345678", "01712345678", false},
		{"bare country code", "8801712345678", "01712345678", false},
		{"formatted", "+880 17-1234-5678", "01712345678", false},
		{"missing leading zero", "1712345678", "01712345678", false},
		{"too short", "0171234", "", true},
		{"letters", "017abc45678", "", true},
		{"wrong country prefix", "+4401712345678", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizePhone(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("NormalizePhone(%q) = %q, want error", tc.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePhone(%q) returned error: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("NormalizePhone(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}
