package service

import "testing"

func TestParseRank(t *testing.T) {
	cases := []struct {
		title string
		want  int
	}{
		{"", 0},
		{"Director", 20},
		{"Assistant Director", 18},
		{"Deputy Director", 19},
		{"Senior Director", 22},
		{"Vice President", 25},
		{"VP", 25},
		{"Chief", 30},
		{"Senior Manager", 12},
		{"Junior Analyst", 4},
		{"Engineer", 7},
		{"Senior Engineer", 9},
		{"Principal Engineer", 11},
		{"Board Member", 0},
		{"Random Job Title With No Keywords", 0},
	}

	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			got := ParseRank(tc.title)
			if got != tc.want {
				t.Errorf("ParseRank(%q) = %d, want %d", tc.title, got, tc.want)
			}
		})
	}
}

func TestParseRank_TierTakesPrecedenceOverRole(t *testing.T) {
	// "director" is a management tier, not a role keyword; a title matching
	// both a tier and what would otherwise be a role keyword only scores the
	// tier once role-keyword matching is skipped.
	got := ParseRank("Director of Engineering")
	if got != 20 {
		t.Errorf("ParseRank(%q) = %d, want %d", "Director of Engineering", got, 20)
	}
}

func TestPermitsOverlap(t *testing.T) {
	cases := []struct {
		title string
		want  bool
	}{
		{"Board Member", true},
		{"Senior Advisor", true},
		{"Non-Executive Director", true},
		{"Engineering Manager", false},
		{"", false},
	}

	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			got := PermitsOverlap(tc.title)
			if got != tc.want {
				t.Errorf("PermitsOverlap(%q) = %v, want %v", tc.title, got, tc.want)
			}
		})
	}
}
