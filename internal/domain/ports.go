package domain

import "context"

type ReviewRepository interface {
	// Read paths
	BusinessID(ctx context.Context, restaurantID int64) (string, error)
	ListInternalReviews(ctx context.Context, restaurantID, viewerID int64, limit int) ([]InternalReview, error)
	GetInternalReview(ctx context.Context, restaurantID, reviewID, viewerID int64) (InternalReview, error)
}

type YelpClient interface {
	GetReviews(ctx context.Context, businessID string) ([]map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ReviewActions are the mutation endpoints of the dineline backend.
type ReviewActions interface {
	Like(ctx context.Context, reviewID int64) (LikeResult, error)
	DeleteReview(ctx context.Context, restaurantID, reviewID int64) error
	DeleteComment(ctx context.Context, restaurantID, commentID int64) error
}

// DialogController owns the edit and report dialogs of the page.
type DialogController interface {
	OpenEdit(ctx context.Context, req EditRequest)
	OpenReport(ctx context.Context, target ReportTarget)
}

// PageReloader re-renders the whole page after a destructive action.
type PageReloader interface {
	Reload(ctx context.Context)
}

type LikeResult struct {
	Liked    bool `json:"liked"`
	LikesNum int  `json:"likes_num"`
}

type EditRequest struct {
	ReviewID int64  `json:"reviewId"`
	Rating   int    `json:"rating"`
	Content  string `json:"content"`
	Action   string `json:"action"`
}

type ReportKind string

const (
	ReportReview  ReportKind = "review"
	ReportComment ReportKind = "comment"
)

type ReportTarget struct {
	Kind ReportKind `json:"kind"`
	ID   int64      `json:"id"`
}
