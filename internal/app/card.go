package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"dineline_reviews/internal/adapters/observability"
	"dineline_reviews/internal/domain"
)

var ErrNoActions = errors.New("card: no review actions configured")

// State is the local interaction state of one rendered review.
type State struct {
	DropdownOpen bool
	Composing    bool
}

// CardDeps are the collaborators a card dispatches its actions to.
type CardDeps struct {
	Normalizer *Normalizer
	Actions    domain.ReviewActions
	Dialogs    domain.DialogController
	Reloader   domain.PageReloader
}

// Card owns one review's interaction state. Only internal reviews are
// interactive; on external cards every action is a no-op.
type Card struct {
	deps         CardDeps
	raw          domain.RawReview
	restaurantID int64
	reviewID     int64
	internal     bool

	mu         sync.Mutex
	dropdown   bool
	composing  bool
	liked      *bool
	likesCount int
}

// NewCard mounts a card for raw.
func NewCard(raw domain.RawReview, restaurantID int64, deps CardDeps) *Card {
	if deps.Normalizer == nil {
		deps.Normalizer = NewNormalizer("", nil)
	}
	c := &Card{deps: deps, raw: raw, restaurantID: restaurantID}
	switch r := raw.(type) {
	case domain.InternalReview:
		c.mount(r)
	case *domain.InternalReview:
		if r != nil {
			c.mount(*r)
		}
	}
	return c
}

func (c *Card) mount(r domain.InternalReview) {
	c.internal = true
	c.reviewID = r.ID
	liked := r.Liked
	c.liked = &liked
	c.likesCount = r.LikesNum
}

// Restore re-applies interaction state carried across a round-trip.
func (c *Card) Restore(s State) {
	if !c.internal {
		return
	}
	c.mu.Lock()
	c.dropdown, c.composing = s.DropdownOpen, s.Composing
	c.mu.Unlock()
}

func (c *Card) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{DropdownOpen: c.dropdown, Composing: c.composing}
}

func (c *Card) OpenMenu() {
	if !c.internal {
		return
	}
	c.setDropdown(true)
}

func (c *Card) MouseLeave() { c.setDropdown(false) }

func (c *Card) Reply() {
	if !c.internal {
		return
	}
	c.mu.Lock()
	c.dropdown = false
	c.composing = true
	c.mu.Unlock()
}

func (c *Card) CancelCompose() {
	c.mu.Lock()
	c.composing = false
	c.mu.Unlock()
}

func (c *Card) Edit(ctx context.Context) {
	if !c.internal {
		return
	}
	c.setDropdown(false)
	observability.ObserveCardAction("edit", "ok")
	if c.deps.Dialogs == nil {
		return
	}
	vm := c.deps.Normalizer.Normalize(c.raw)
	c.deps.Dialogs.OpenEdit(ctx, domain.EditRequest{
		ReviewID: c.reviewID,
		Rating:   vm.Rating,
		Content:  vm.Content,
		Action:   fmt.Sprintf("/restaurant/profile/%d/review/%d/put/restaurant", c.restaurantID, c.reviewID),
	})
}

func (c *Card) Report(ctx context.Context) {
	if !c.internal {
		return
	}
	c.setDropdown(false)
	c.openReport(ctx, domain.ReportTarget{Kind: domain.ReportReview, ID: c.reviewID})
}

func (c *Card) ReportComment(ctx context.Context, commentID int64) {
	c.setDropdown(false)
	c.openReport(ctx, domain.ReportTarget{Kind: domain.ReportComment, ID: commentID})
}

func (c *Card) openReport(ctx context.Context, t domain.ReportTarget) {
	observability.ObserveCardAction("report", "ok")
	if c.deps.Dialogs != nil {
		c.deps.Dialogs.OpenReport(ctx, t)
	}
}

// Delete removes the review and reloads the page on success. A failed call
// leaves the card as it was.
func (c *Card) Delete(ctx context.Context) error {
	if !c.internal {
		return nil
	}
	c.setDropdown(false)
	if c.deps.Actions == nil {
		return ErrNoActions
	}
	if err := c.deps.Actions.DeleteReview(ctx, c.restaurantID, c.reviewID); err != nil {
		observability.ObserveCardAction("delete", "error")
		log.Warn().Err(err).Int64("review_id", c.reviewID).Msg("delete review failed")
		return fmt.Errorf("delete review %d: %w", c.reviewID, err)
	}
	observability.ObserveCardAction("delete", "ok")
	c.reload(ctx)
	return nil
}

func (c *Card) DeleteComment(ctx context.Context, commentID int64) error {
	if c.deps.Actions == nil {
		return ErrNoActions
	}
	if err := c.deps.Actions.DeleteComment(ctx, c.restaurantID, commentID); err != nil {
		observability.ObserveCardAction("delete_comment", "error")
		log.Warn().Err(err).Int64("comment_id", commentID).Msg("delete comment failed")
		return fmt.Errorf("delete comment %d: %w", commentID, err)
	}
	observability.ObserveCardAction("delete_comment", "ok")
	c.reload(ctx)
	return nil
}

// Like toggles the viewer's like. State changes only after the server answers;
// liked and the count are taken from the response together. Concurrent calls
// are not de-duplicated.
func (c *Card) Like(ctx context.Context) error {
	if !c.internal {
		return nil
	}
	if c.deps.Actions == nil {
		return ErrNoActions
	}
	res, err := c.deps.Actions.Like(ctx, c.reviewID)
	if err != nil {
		observability.ObserveCardAction("like", "error")
		log.Warn().Err(err).Int64("review_id", c.reviewID).Msg("like failed")
		return fmt.Errorf("like review %d: %w", c.reviewID, err)
	}
	observability.ObserveCardAction("like", "ok")
	c.mu.Lock()
	liked := res.Liked
	c.liked = &liked
	c.likesCount = res.LikesNum
	c.mu.Unlock()
	return nil
}

func (c *Card) setDropdown(open bool) {
	c.mu.Lock()
	c.dropdown = open
	c.mu.Unlock()
}

func (c *Card) reload(ctx context.Context) {
	if c.deps.Reloader != nil {
		c.deps.Reloader.Reload(ctx)
	}
}

// CardView is everything a render pass needs for one card.
type CardView struct {
	domain.ViewModel
	RestaurantID int64
	Interactive  bool
	DropdownOpen bool
	Composing    bool
	Liked        *bool
	LikesCount   int
	Stars        []struct{}
	Images       []string
}

// View computes a fresh view of the card; nothing is cached between calls.
func (c *Card) View() CardView {
	vm := c.deps.Normalizer.Normalize(c.raw)

	c.mu.Lock()
	v := CardView{
		ViewModel:    vm,
		RestaurantID: c.restaurantID,
		Interactive:  c.internal,
		DropdownOpen: c.dropdown,
		Composing:    c.composing,
		LikesCount:   c.likesCount,
	}
	if c.liked != nil {
		l := *c.liked
		v.Liked = &l
	}
	c.mu.Unlock()

	v.Stars = Stars(vm.Rating)
	for _, img := range []*string{vm.Image1, vm.Image2, vm.Image3} {
		if img != nil {
			v.Images = append(v.Images, *img)
		}
	}
	return v
}

// Stars returns one element per rating icon. Non-positive ratings draw none and
// large ratings are not clamped.
func Stars(rating int) []struct{} {
	if rating <= 0 {
		return nil
	}
	return make([]struct{}, rating)
}
