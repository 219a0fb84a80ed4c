package app

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"dineline_reviews/internal/domain"
)

/********** alias registry **********/

// Yelp payloads have moved between versions; keep every known spelling here.
var yelpAliases = map[string][]string{
	"id":         {"id", "review_id"},
	"url":        {"url", "review_url"},
	"text":       {"text", "excerpt", "content"},
	"time":       {"time_created", "created_at", "time"},
	"user_name":  {"user.name", "user.username", "author"},
	"user_image": {"user.image_url", "user.avatar_url", "user.photo"},
	"rating":     {"rating", "stars"},
}

// Accepted layouts for Yelp timestamps, in order.
var yelpTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return s
		}
	}
	return ""
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// firstIntFlexible: int from several paths (float64/int/string like "4" or "4.0").
func firstIntFlexible(m map[string]any, paths ...string) int {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			return int(v)
		case int:
			return v
		case int64:
			return int(v)
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return int(f)
			}
		}
	}
	return 0
}

// parseTimeFlexible tries every known layout; unknown input yields the zero time.
func parseTimeFlexible(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range yelpTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}
	log.Debug().Str("value", s).Msg("unrecognised yelp timestamp")
	return time.Time{}
}

/********** yelp review mapper **********/

func mapYelpReview(r map[string]any) domain.ExternalReview {
	rv := domain.ExternalReview{
		ID:          firstNonEmptyAlias(r, yelpAliases, "id"),
		URL:         firstNonEmptyAlias(r, yelpAliases, "url"),
		Rating:      firstIntFlexible(r, yelpAliases["rating"]...),
		TimeCreated: parseTimeFlexible(firstNonEmptyAlias(r, yelpAliases, "time")),
		Text:        firstNonEmptyAlias(r, yelpAliases, "text"),
	}

	// A missing or null user block stays nil.
	if u, ok := lookupAny(r, "user").(map[string]any); ok && u != nil {
		rv.User = &domain.ExternalUser{
			Name:     firstNonEmptyAlias(r, yelpAliases, "user_name"),
			ImageURL: firstNonEmptyAlias(r, yelpAliases, "user_image"),
		}
	} else if name := lookupStr(r, "author"); name != "" {
		rv.User = &domain.ExternalUser{Name: name}
	}
	return rv
}

func mapYelpReviews(in []map[string]any) []domain.ExternalReview {
	out := make([]domain.ExternalReview, 0, len(in))
	for _, r := range in {
		if r == nil {
			continue
		}
		out = append(out, mapYelpReview(r))
	}
	return out
}
