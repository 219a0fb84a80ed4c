package app_test

import (
	"context"
	"encoding/json"
	"sync"

	"dineline_reviews/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	businessID string
	bizErr     error
	internal   []domain.InternalReview
	listErr    error
	gotLimit   int
	gotViewer  int64
}

func (f *fakeRepo) BusinessID(ctx context.Context, restaurantID int64) (string, error) {
	return f.businessID, f.bizErr
}

func (f *fakeRepo) ListInternalReviews(ctx context.Context, restaurantID, viewerID int64, limit int) ([]domain.InternalReview, error) {
	f.gotLimit, f.gotViewer = limit, viewerID
	return f.internal, f.listErr
}

func (f *fakeRepo) GetInternalReview(ctx context.Context, restaurantID, reviewID, viewerID int64) (domain.InternalReview, error) {
	for _, r := range f.internal {
		if r.ID == reviewID {
			return r, nil
		}
	}
	return domain.InternalReview{}, domain.ErrNotFound
}

type fakeYelp struct {
	raw   []map[string]any
	err   error
	calls int
}

func (y *fakeYelp) GetReviews(ctx context.Context, businessID string) ([]map[string]any, error) {
	y.calls++
	return y.raw, y.err
}

// fakeCache stores JSON like the redis adapter does.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	ttls  map[string]int
	dels  []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string][]byte{}, ttls: map[string]int{}}
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.store[key] = b
	c.ttls[key] = ttlSec
	c.mu.Unlock()
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.store, key)
	c.dels = append(c.dels, key)
	c.mu.Unlock()
	return nil
}

type fakeActions struct {
	likeRes  domain.LikeResult
	err      error
	likes    int
	deletes  []int64
	comments []int64
}

func (a *fakeActions) Like(ctx context.Context, reviewID int64) (domain.LikeResult, error) {
	a.likes++
	return a.likeRes, a.err
}

func (a *fakeActions) DeleteReview(ctx context.Context, restaurantID, reviewID int64) error {
	if a.err != nil {
		return a.err
	}
	a.deletes = append(a.deletes, reviewID)
	return nil
}

func (a *fakeActions) DeleteComment(ctx context.Context, restaurantID, commentID int64) error {
	if a.err != nil {
		return a.err
	}
	a.comments = append(a.comments, commentID)
	return nil
}

type fakeDialogs struct {
	edits   []domain.EditRequest
	reports []domain.ReportTarget
}

func (d *fakeDialogs) OpenEdit(ctx context.Context, req domain.EditRequest) { d.edits = append(d.edits, req) }
func (d *fakeDialogs) OpenReport(ctx context.Context, t domain.ReportTarget) {
	d.reports = append(d.reports, t)
}

type fakeReloader struct{ n int }

func (r *fakeReloader) Reload(ctx context.Context) { r.n++ }

func ptr[T any](v T) *T { return &v }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
