// internal/adapters/dineline/client.go
package dineline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dineline_reviews/internal/adapters/observability"
	"dineline_reviews/internal/domain"
)

// Session carries the browser credentials a mutation is made with.
type Session struct {
	Cookie    string
	CSRFToken string
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) Session {
	s, _ := ctx.Value(sessionKey{}).(Session)
	return s
}

// Client calls the dineline web backend. Every call is a single attempt;
// failures are returned and never retried.
type Client struct {
	base string
	hc   *http.Client
}

func New(base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{base: strings.TrimRight(base, "/"), hc: &http.Client{Timeout: timeout}}
}

var _ domain.ReviewActions = (*Client)(nil)

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Endpoint string
	Status   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("dineline %s: status %d", e.Endpoint, e.Status)
}

func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	}
	return nil
}

// Like toggles the session user's like on a review.
func (c *Client) Like(ctx context.Context, reviewID int64) (domain.LikeResult, error) {
	body := url.Values{"review_id": {strconv.FormatInt(reviewID, 10)}}.Encode()
	req, err := c.newRequest(ctx, http.MethodPost, "/restaurant/like/review/", strings.NewReader(body))
	if err != nil {
		return domain.LikeResult{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req, "like")
	if err != nil {
		return domain.LikeResult{}, err
	}
	defer resp.Body.Close()

	var out domain.LikeResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.LikeResult{}, fmt.Errorf("dineline like: decode: %w", err)
	}
	return out, nil
}

func (c *Client) DeleteReview(ctx context.Context, restaurantID, reviewID int64) error {
	path := fmt.Sprintf("/restaurant/profile/%d/review/%d/delete/restaurant", restaurantID, reviewID)
	return c.fire(ctx, path, "delete_review")
}

func (c *Client) DeleteComment(ctx context.Context, restaurantID, commentID int64) error {
	path := fmt.Sprintf("/restaurant/profile/%d/comment_delete/%d", restaurantID, commentID)
	return c.fire(ctx, path, "delete_comment")
}

// fire issues a GET whose body is ignored; only the status matters.
func (c *Client) fire(ctx context.Context, path, endpoint string) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req, endpoint)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	s := SessionFrom(ctx)
	if s.Cookie != "" {
		req.Header.Set("Cookie", s.Cookie)
	}
	if s.CSRFToken != "" {
		req.Header.Set("X-CSRFToken", s.CSRFToken)
	}
	req.Header.Set("User-Agent", "dineline-reviews/1.0")
	return req, nil
}

// do sends req and turns non-2xx answers into *StatusError.
func (c *Client) do(req *http.Request, endpoint string) (*http.Response, error) {
	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("dineline", endpoint, 0, time.Since(start))
		return nil, err
	}
	observability.ObserveExternal("dineline", endpoint, resp.StatusCode, time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{Endpoint: endpoint, Status: resp.StatusCode}
	}
	return resp, nil
}
