package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dineline_reviews/internal/domain"
)

// WarmService pre-fetches Yelp reviews into the cache so page renders do not
// wait on the Yelp API.
type WarmService struct {
	repo     domain.ReviewRepository
	yelp     domain.YelpClient
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewWarmService(r domain.ReviewRepository, y domain.YelpClient, c domain.Cache, ttl time.Duration) *WarmService {
	return &WarmService{repo: r, yelp: y, cache: c, cacheTTL: ttl}
}

// WarmRestaurant returns the number of reviews cached for restaurantID.
func (s *WarmService) WarmRestaurant(ctx context.Context, restaurantID int64) (int, error) {
	businessID, err := s.repo.BusinessID(ctx, restaurantID)
	if err != nil {
		return 0, fmt.Errorf("restaurant %d: %w", restaurantID, err)
	}
	if businessID == "" {
		return 0, nil
	}

	raw, err := s.yelp.GetReviews(ctx, businessID)
	if err != nil {
		low := strings.ToLower(err.Error())

		// 404: business gone from Yelp -> evict so we stop serving an old snapshot.
		if errors.Is(err, domain.ErrNotFound) || strings.Contains(low, "not found") {
			_ = s.cache.Del(ctx, yelpKey(businessID))
			return 0, nil
		}
		// 401/403: bad key; nothing cached can be trusted either.
		if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrForbidden) {
			_ = s.cache.Del(ctx, yelpKey(businessID))
			return 0, err
		}
		return 0, err
	}

	reviews := mapYelpReviews(raw)
	if err := s.cache.Set(ctx, yelpKey(businessID), reviews, int(s.cacheTTL.Seconds())); err != nil {
		return 0, fmt.Errorf("cache reviews for %s: %w", businessID, err)
	}
	return len(reviews), nil
}
