package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"dineline_reviews/internal/adapters/observability"
	"dineline_reviews/internal/domain"
)

// InternalLimit caps the internal reviews shown on a profile page.
const InternalLimit = 50

// Feed holds the two raw arrays a review section is mounted with.
type Feed struct {
	RestaurantID int64
	External     []domain.ExternalReview
	Internal     []domain.InternalReview
}

// Raw returns every review of the feed, external first.
func (f Feed) Raw() []domain.RawReview {
	out := make([]domain.RawReview, 0, len(f.External)+len(f.Internal))
	for _, r := range f.External {
		out = append(out, r)
	}
	for _, r := range f.Internal {
		out = append(out, r)
	}
	return out
}

type FeedService struct {
	repo     domain.ReviewRepository
	yelp     domain.YelpClient
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewFeedService(r domain.ReviewRepository, y domain.YelpClient, c domain.Cache, ttl time.Duration) *FeedService {
	return &FeedService{repo: r, yelp: y, cache: c, cacheTTL: ttl}
}

func yelpKey(businessID string) string { return "yelp:reviews:" + businessID }

// Load fetches both arrays concurrently. A failing external source degrades to
// an empty list; a failing internal source fails the load.
func (s *FeedService) Load(ctx context.Context, restaurantID, viewerID int64) (Feed, error) {
	businessID, err := s.repo.BusinessID(ctx, restaurantID)
	if err != nil {
		return Feed{}, fmt.Errorf("restaurant %d: %w", restaurantID, err)
	}

	feed := Feed{RestaurantID: restaurantID}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ext, err := s.ExternalReviews(gctx, businessID)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.Warn().Err(err).Str("business_id", businessID).Msg("external reviews unavailable")
			observability.ObserveFeedExternal("degraded")
			ext = nil
		}
		feed.External = ext
		return nil
	})
	g.Go(func() error {
		in, err := s.repo.ListInternalReviews(gctx, restaurantID, viewerID, InternalLimit)
		if err != nil {
			return fmt.Errorf("internal reviews for %d: %w", restaurantID, err)
		}
		feed.Internal = in
		return nil
	})
	if err := g.Wait(); err != nil {
		return Feed{}, err
	}
	if feed.External == nil {
		feed.External = []domain.ExternalReview{}
	}
	if feed.Internal == nil {
		feed.Internal = []domain.InternalReview{}
	}
	return feed, nil
}

// ExternalReviews serves Yelp reviews from cache, falling back to the API.
func (s *FeedService) ExternalReviews(ctx context.Context, businessID string) ([]domain.ExternalReview, error) {
	if businessID == "" {
		return []domain.ExternalReview{}, nil
	}
	key := yelpKey(businessID)
	var out []domain.ExternalReview
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			observability.ObserveFeedExternal("cache")
			return out, nil
		}
	}
	if s.yelp == nil {
		observability.ObserveFeedExternal("disabled")
		return []domain.ExternalReview{}, nil
	}
	raw, err := s.yelp.GetReviews(ctx, businessID)
	if err != nil {
		return nil, err
	}
	out = mapYelpReviews(raw)
	observability.ObserveFeedExternal("api")
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

// InternalReview loads a single record for a card fragment.
func (s *FeedService) InternalReview(ctx context.Context, restaurantID, reviewID, viewerID int64) (domain.InternalReview, error) {
	return s.repo.GetInternalReview(ctx, restaurantID, reviewID, viewerID)
}
