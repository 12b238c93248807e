package validation

import "testing"

func TestNormalizePromoCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{
			name: "lowercase",
			code: "save10",
			want: "SAVE10",
		},
		{
			name: "mixed case with spaces",
			code: "  Mega20 ",
			want: "MEGA20",
		},
		{
			name: "already normalized",
			code: "FIRST15",
			want: "FIRST15",
		},
		{
			name: "empty string",
			code: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePromoCode(tt.code)
			if got != tt.want {
				t.Fatalf("NormalizePromoCode(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestIsValidPromoCode(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		valid bool
	}{
		{
			name:  "letters and digits",
			code:  "SAVE10",
			valid: true,
		},
		{
			name:  "surrounding spaces",
			code:  " save10 ",
			valid: true,
		},
		{
			name:  "contains dash",
			code:  "SAVE-10",
			valid: false,
		},
		{
			name:  "empty string",
			code:  "   ",
			valid: false,
		},
		{
			name:  "too long",
			code:  "ABCDEFGHIJABCDEFGHIJABCDEFGHIJABC",
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidPromoCode(tt.code)
			if got != tt.valid {
				t.Fatalf("IsValidPromoCode(%q) = %v, want %v", tt.code, got, tt.valid)
			}
		})
	}
}

func TestIsValidProductID(t *testing.T) {
	if IsValidProductID(0) {
		t.Fatalf("zero id must be invalid")
	}
	if IsValidProductID(-1) {
		t.Fatalf("negative id must be invalid")
	}
	if !IsValidProductID(1) {
		t.Fatalf("positive id must be valid")
	}
}
