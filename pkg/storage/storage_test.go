package storage

import "testing"

func TestNormalizeHandle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"@Ann_Smith", "ann_smith"},
		{"ann_smith", "ann_smith"},
		{"  @ANN  ", "ann"},
		{"@", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeHandle(tc.in); got != tc.want {
			t.Fatalf("NormalizeHandle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExpertCovers(t *testing.T) {
	expert := Expert{Fields: []string{"Астрономия", " Космонавтика "}}

	if !expert.Covers("астрономия") {
		t.Fatalf("expected case-insensitive match")
	}
	if !expert.Covers("Космонавтика") {
		t.Fatalf("expected match with padded roster field")
	}
	if expert.Covers("Ботаника") {
		t.Fatalf("expected no match for unknown field")
	}
}
