package app

import (
	"testing"
	"time"
)

func TestMapYelpReview_Aliases(t *testing.T) {
	rv := mapYelpReview(map[string]any{
		"review_id":  "r9",
		"stars":      "4.0",
		"created_at": "2021-05-01T10:00:00Z",
		"excerpt":    "  Good  ",
		"author":     "Carol",
	})
	if rv.ID != "r9" || rv.Rating != 4 || rv.Text != "Good" {
		t.Fatalf("unexpected: %+v", rv)
	}
	if !rv.TimeCreated.Equal(time.Date(2021, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("time = %v", rv.TimeCreated)
	}
	if rv.User == nil || rv.User.Name != "Carol" || rv.User.ImageURL != "" {
		t.Fatalf("user = %+v", rv.User)
	}
}

func TestMapYelpReview_NullUser(t *testing.T) {
	rv := mapYelpReview(map[string]any{"id": "r1", "user": nil, "rating": float64(2)})
	if rv.User != nil {
		t.Fatalf("user = %+v", rv.User)
	}
	if rv.Rating != 2 {
		t.Fatalf("rating = %d", rv.Rating)
	}
}

func TestParseTimeFlexible(t *testing.T) {
	cases := map[string]time.Time{
		"2021-05-01 10:00:00": time.Date(2021, 5, 1, 10, 0, 0, 0, time.UTC),
		"2021-05-01":          time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC),
		"":                    {},
		"yesterday":           {},
	}
	for in, want := range cases {
		if got := parseTimeFlexible(in); !got.Equal(want) {
			t.Errorf("parseTimeFlexible(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMapYelpReviews_SkipsNil(t *testing.T) {
	out := mapYelpReviews([]map[string]any{nil, {"id": "a"}})
	if len(out) != 1 || out[0].ID != "a" {
		t.Fatalf("out = %+v", out)
	}
	if got := mapYelpReviews(nil); got == nil || len(got) != 0 {
		t.Fatalf("nil input should map to empty slice, got %#v", got)
	}
}
