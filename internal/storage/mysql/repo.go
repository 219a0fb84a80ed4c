package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"dineline_reviews/internal/domain"
)

func strOf(n sql.NullString) string {
	if !n.Valid {
		return ""
	}
	return n.String
}

func ptrOf(n sql.NullString) *string {
	if !n.Valid || n.String == "" {
		return nil
	}
	s := n.String
	return &s
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

var _ domain.ReviewRepository = (*Repo)(nil)

func (r *Repo) BusinessID(ctx context.Context, restaurantID int64) (string, error) {
	var id string
	if err := r.db.QueryRowContext(ctx, businessIDSQL, restaurantID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return id, nil
}

func (r *Repo) ListInternalReviews(ctx context.Context, restaurantID, viewerID int64, limit int) ([]domain.InternalReview, error) {
	rows, err := r.db.QueryContext(ctx, listInternalReviewsSQL, viewerID, restaurantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.InternalReview{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachComments(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetInternalReview(ctx context.Context, restaurantID, reviewID, viewerID int64) (domain.InternalReview, error) {
	row := r.db.QueryRowContext(ctx, getInternalReviewSQL, viewerID, restaurantID, reviewID)
	rv, err := scanReview(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.InternalReview{}, domain.ErrNotFound
		}
		return domain.InternalReview{}, err
	}
	one := []domain.InternalReview{rv}
	if err := r.attachComments(ctx, one); err != nil {
		return domain.InternalReview{}, err
	}
	return one[0], nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReview(s scanner) (domain.InternalReview, error) {
	var rv domain.InternalReview
	var (
		photo, content         sql.NullString
		image1, image2, image3 sql.NullString
		liked                  bool
		likes                  int64
	)
	if err := s.Scan(
		&rv.ID,
		&rv.RestaurantID,
		&rv.UserID,
		&rv.Username,
		&photo,
		&rv.Rating,
		&rv.RatingSafety,
		&rv.RatingDoor,
		&rv.RatingTable,
		&rv.RatingBathroom,
		&rv.RatingPath,
		&rv.Time, // requires parseTime=true in the DSN
		&content,
		&image1, &image2, &image3,
		&rv.Hidden,
		&liked,
		&likes,
	); err != nil {
		return domain.InternalReview{}, err
	}
	rv.Photo = strOf(photo)
	rv.Content = strOf(content)
	rv.Image1, rv.Image2, rv.Image3 = strOf(image1), strOf(image2), strOf(image3)
	rv.Liked = liked
	rv.LikesNum = int(likes)
	rv.Comments = []domain.Comment{}
	return rv, nil
}

// attachComments loads every comment of reviews in one query and keeps the
// thread order (oldest first).
func (r *Repo) attachComments(ctx context.Context, reviews []domain.InternalReview) error {
	if len(reviews) == 0 {
		return nil
	}
	idx := make(map[int64]int, len(reviews))
	marks := make([]string, 0, len(reviews))
	args := make([]any, 0, len(reviews))
	for i, rv := range reviews {
		idx[rv.ID] = i
		marks = append(marks, "?")
		args = append(args, rv.ID)
	}

	q := listCommentsPrefix + strings.Join(marks, ",") + listCommentsSuffix
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			reviewID int64
			c        domain.Comment
			profile  sql.NullString
		)
		if err := rows.Scan(&reviewID, &c.CommentID, &c.Text, &c.Author, &profile, &c.Hidden); err != nil {
			return err
		}
		c.Profile = ptrOf(profile)
		if i, ok := idx[reviewID]; ok {
			reviews[i].Comments = append(reviews[i].Comments, c)
		}
	}
	return rows.Err()
}
