// internal/adapters/http_server/handlers.go
package httpserver

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"dineline_reviews/internal/adapters/dineline"
	"dineline_reviews/internal/app"
	"dineline_reviews/internal/domain"
	"dineline_reviews/internal/render"
)

// Feed is the read side the handlers need.
type Feed interface {
	Load(ctx context.Context, restaurantID, viewerID int64) (app.Feed, error)
	InternalReview(ctx context.Context, restaurantID, reviewID, viewerID int64) (domain.InternalReview, error)
}

type Handlers struct {
	Feed       Feed
	Normalizer *app.Normalizer
	Actions    domain.ReviewActions
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type reviewsResponse struct {
	RestaurantID int64              `json:"restaurantId"`
	External     []domain.ViewModel `json:"external"`
	Internal     []domain.ViewModel `json:"internal"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/restaurants/{restaurantId}/reviews", h.listReviews)

	s.mux.Route("/restaurant/profile/{restaurantId}/reviews", func(r chi.Router) {
		r.Get("/", h.reviewsPage)
		r.Get("/{reviewId}/card", h.cardFragment)
		r.Post("/{reviewId}/card/{action}", h.cardAction)
		r.Post("/{reviewId}/comments/{commentId}/{action}", h.commentAction)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// viewerID is set by the auth proxy in front of us; anonymous is 0.
func viewerID(r *http.Request) int64 {
	id, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

func csrfToken(r *http.Request) string {
	if t := r.Header.Get("X-CSRFToken"); t != "" {
		return t
	}
	if t := r.FormValue("csrfmiddlewaretoken"); t != "" {
		return t
	}
	if c, err := r.Cookie("csrftoken"); err == nil {
		return c.Value
	}
	return ""
}

// withSession forwards the browser's credentials to the dineline backend.
func withSession(r *http.Request) context.Context {
	return dineline.WithSession(r.Context(), dineline.Session{
		Cookie:    r.Header.Get("Cookie"),
		CSRFToken: csrfToken(r),
	})
}

func (h *Handlers) feedError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "restaurant not found")
		return
	}
	log.Error().Err(err).Msg("load reviews failed")
	writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "reviews unavailable")
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	rid, ok := pathID(r, "restaurantId")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "restaurantId must be a positive number")
		return
	}
	feed, err := h.Feed.Load(r.Context(), rid, viewerID(r))
	if err != nil {
		h.feedError(w, err)
		return
	}

	out := reviewsResponse{
		RestaurantID: rid,
		External:     make([]domain.ViewModel, 0, len(feed.External)),
		Internal:     make([]domain.ViewModel, 0, len(feed.Internal)),
	}
	for _, rv := range feed.External {
		out.External = append(out.External, h.Normalizer.Normalize(rv))
	}
	for _, rv := range feed.Internal {
		out.Internal = append(out.Internal, h.Normalizer.Normalize(rv))
	}

	etag, body := calcETagAndBody(out)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listReviews body")
	}
}

func (h *Handlers) cardDeps(fx *hxResponse) app.CardDeps {
	return app.CardDeps{Normalizer: h.Normalizer, Actions: h.Actions, Dialogs: fx, Reloader: fx}
}

func (h *Handlers) reviewsPage(w http.ResponseWriter, r *http.Request) {
	rid, ok := pathID(r, "restaurantId")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "restaurantId must be a positive number")
		return
	}
	feed, err := h.Feed.Load(r.Context(), rid, viewerID(r))
	if err != nil {
		h.feedError(w, err)
		return
	}

	deps := h.cardDeps(newHXResponse())
	data := render.PageData{RestaurantID: rid, CSRFToken: csrfToken(r)}
	for _, rv := range feed.External {
		data.External = append(data.External, app.NewCard(rv, rid, deps).View())
	}
	for _, rv := range feed.Internal {
		data.Internal = append(data.Internal, app.NewCard(rv, rid, deps).View())
	}

	var buf bytes.Buffer
	if err := render.Page(&buf, data); err != nil {
		log.Error().Err(err).Int64("restaurant_id", rid).Msg("render page failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "render failed")
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

// mountCard loads the review behind a fragment request and restores the
// interaction state carried in the query string.
func (h *Handlers) mountCard(w http.ResponseWriter, r *http.Request, fx *hxResponse) (*app.Card, bool) {
	rid, ok1 := pathID(r, "restaurantId")
	id, ok2 := pathID(r, "reviewId")
	if !ok1 || !ok2 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "ids must be positive numbers")
		return nil, false
	}
	raw, err := h.Feed.InternalReview(r.Context(), rid, id, viewerID(r))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "review not found")
			return nil, false
		}
		log.Error().Err(err).Int64("review_id", id).Msg("load review failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "review unavailable")
		return nil, false
	}
	card := app.NewCard(raw, rid, h.cardDeps(fx))
	q := r.URL.Query()
	card.Restore(app.State{DropdownOpen: q.Get("menu") == "open", Composing: q.Get("compose") == "1"})
	return card, true
}

func (h *Handlers) cardFragment(w http.ResponseWriter, r *http.Request) {
	fx := newHXResponse()
	card, ok := h.mountCard(w, r, fx)
	if !ok {
		return
	}
	h.writeCard(w, card, fx)
}

func (h *Handlers) cardAction(w http.ResponseWriter, r *http.Request) {
	fx := newHXResponse()
	card, ok := h.mountCard(w, r, fx)
	if !ok {
		return
	}
	ctx := withSession(r)

	// Network failures leave the card unchanged; they are logged by the card.
	switch chi.URLParam(r, "action") {
	case "menu":
		card.OpenMenu()
	case "leave":
		card.MouseLeave()
	case "reply":
		card.Reply()
	case "cancel":
		card.CancelCompose()
	case "edit":
		card.Edit(ctx)
	case "report":
		card.Report(ctx)
	case "like":
		_ = card.Like(ctx)
	case "delete":
		_ = card.Delete(ctx)
	default:
		writeProblem(w, http.StatusNotFound, "Not Found", "unknown card action")
		return
	}
	h.writeCard(w, card, fx)
}

func (h *Handlers) commentAction(w http.ResponseWriter, r *http.Request) {
	commentID, ok := pathID(r, "commentId")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "commentId must be a positive number")
		return
	}
	fx := newHXResponse()
	card, ok := h.mountCard(w, r, fx)
	if !ok {
		return
	}
	ctx := withSession(r)

	switch chi.URLParam(r, "action") {
	case "delete":
		_ = card.DeleteComment(ctx, commentID)
	case "report":
		card.ReportComment(ctx, commentID)
	default:
		writeProblem(w, http.StatusNotFound, "Not Found", "unknown comment action")
		return
	}
	h.writeCard(w, card, fx)
}

func (h *Handlers) writeCard(w http.ResponseWriter, card *app.Card, fx *hxResponse) {
	var buf bytes.Buffer
	if err := render.Card(&buf, card.View()); err != nil {
		log.Error().Err(err).Msg("render card failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "render failed")
		return
	}
	fx.apply(w)
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write HTML body")
	}
}
