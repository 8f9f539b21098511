package normalize

import "testing"

func TestTitleFromSluggyInput(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"buy-stay-frosty-sgmsays-7690", "Stay Frosty"},
		{"sgt-major-says-usmc-1606", "SGT Major Says USMC"},
		{"king-of-the-hill-12", "King of the Hill"},
		{"tf-bravo-2", "TF Bravo"},
		{"ptsd-awareness-ribbon-44", "PTSD Awareness Ribbon"},
		{"get_squared_away_308", "Squared Away"},
		{"embrace-the-suck", "Embrace the Suck"},
	}
	for _, tc := range cases {
		if got := Title(tc.raw, ""); got != tc.want {
			t.Errorf("Title(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestTitlePassthrough(t *testing.T) {
	// Already-human titles only get their whitespace collapsed.
	cases := []struct {
		raw  string
		want string
	}{
		{"Stay Frosty", "Stay Frosty"},
		{"Embrace  the   Suck", "Embrace the Suck"},
		{"  Coffee First  ", "Coffee First"},
	}
	for _, tc := range cases {
		if got := Title(tc.raw, ""); got != tc.want {
			t.Errorf("Title(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestTitleIdempotent(t *testing.T) {
	inputs := []string{
		"buy-stay-frosty-sgmsays-7690",
		"sgt-major-says-usmc-1606",
		"king-of-the-hill-12",
		"Morning Formation",
	}
	for _, in := range inputs {
		once := Title(in, "")
		twice := Title(once, "")
		if once != twice {
			t.Errorf("Title not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestTitleFallbackSlug(t *testing.T) {
	// Raw title that strips to nothing falls back to the slug.
	if got := Title("new-123", "stay-frosty-sgmsays"); got != "Stay Frosty" {
		t.Errorf("fallback title = %q, want %q", got, "Stay Frosty")
	}
	if got := Title("", "mug-a-99"); got != "Mug A" {
		t.Errorf("empty raw title = %q, want %q", got, "Mug A")
	}
	if got := Title("", ""); got != "" {
		t.Errorf("empty inputs = %q, want empty", got)
	}
}
