package admin

import "testing"

func TestIsAdmin(t *testing.T) {
	checker := NewChecker([]string{"0523985505"})

	cases := []struct {
		name  string
		input string
		want  bool
	}{
		{"domestic spelling", "0523985505", true},
		{"international with plus", "+972523985505", true},
		{"international bare", "972523985505", true},
		{"with separators", "052-398-5505", true},
		{"empty", "", false},
		{"different number", "0500000000", false},
		{"shares only short suffix", "5505", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := checker.IsAdmin(tc.input); got != tc.want {
				t.Fatalf("IsAdmin(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestIsAdminSuffixLeniency(t *testing.T) {
	// An entry stored without the trunk prefix still matches a live value
	// by its trailing nine digits.
	checker := NewChecker([]string{"523985505"})
	if !checker.IsAdmin("0523985505") {
		t.Fatal("expected suffix match across country-code drift")
	}
}

func TestIsAdminEmptyAllowList(t *testing.T) {
	checker := NewChecker(nil)
	if checker.IsAdmin("0523985505") {
		t.Fatal("empty allow-list must grant nothing")
	}
}
