package render_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dineline_reviews/internal/app"
	"dineline_reviews/internal/domain"
	"dineline_reviews/internal/render"
)

func cardView(raw domain.RawReview, st app.State) app.CardView {
	c := app.NewCard(raw, 3, app.CardDeps{})
	c.Restore(st)
	return c.View()
}

func renderCard(t *testing.T, v app.CardView) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, render.Card(&buf, v))
	return buf.String()
}

func TestCard_ExternalReview(t *testing.T) {
	out := renderCard(t, cardView(domain.ExternalReview{
		ID: "y1", URL: "https://www.yelp.com/r/y1", Rating: 3, Text: "Nice",
		TimeCreated: time.Date(2021, 5, 1, 10, 0, 0, 0, time.UTC),
		User:        &domain.ExternalUser{Name: "Alice"},
	}, app.State{}))

	assert.Equal(t, 3, strings.Count(out, "fa-star"))
	assert.Contains(t, out, `<a href="https://www.yelp.com/r/y1">Alice</a>`)
	assert.Contains(t, out, "2021-05-01 10:00:00")
	assert.Contains(t, out, render.DefaultAvatar)
	assert.NotContains(t, out, "dropdown-menu")
	assert.NotContains(t, out, "fa-heart")
}

func TestCard_InternalReview(t *testing.T) {
	out := renderCard(t, cardView(domain.InternalReview{
		ID: 7, UserID: 12, Username: "bob", Photo: "https://img/bob.png", Rating: 5,
		Content: "<b>ramps</b>", Image1: "a.jpg", Liked: true, LikesNum: 2,
		Comments: []domain.Comment{{Text: "agreed", Author: 2, CommentID: 31}},
	}, app.State{}))

	assert.Equal(t, 5, strings.Count(out, "fa-star"))
	assert.Contains(t, out, `src="https://img/bob.png"`)
	assert.Contains(t, out, "<a>bob</a>")
	assert.Contains(t, out, "&lt;b&gt;ramps&lt;/b&gt;")
	assert.Contains(t, out, app.DefaultMediaBase+"a.jpg")
	assert.Contains(t, out, "fa-heart text-primary")
	assert.Contains(t, out, `<span class="pl-3 likes-count">2</span>`)
	assert.Contains(t, out, "agreed")
	assert.Contains(t, out, "/restaurant/profile/3/reviews/7/comments/31/delete")
	assert.Contains(t, out, "/restaurant/profile/3/reviews/7/comments/31/report")
	assert.NotContains(t, out, "dropdown-menu p-0 show")
	assert.NotContains(t, out, `name="text"`)
}

func TestCard_OpenMenuAndComposer(t *testing.T) {
	out := renderCard(t, cardView(domain.InternalReview{ID: 7, Rating: 1}, app.State{DropdownOpen: true, Composing: true}))

	assert.Contains(t, out, "dropdown-menu p-0 show")
	assert.Contains(t, out, `hx-trigger="mouseleave"`)
	assert.Contains(t, out, `name="text"`)
	assert.Contains(t, out, "/restaurant/profile/3/reviews/7/card/cancel?")
}

func TestCard_PlaceholderCommentRendersComposer(t *testing.T) {
	out := renderCard(t, cardView(domain.InternalReview{
		ID: 7, Comments: []domain.Comment{{Text: "", Author: 1}},
	}, app.State{}))
	assert.Contains(t, out, `name="text"`)
}

func TestCardURL_CarriesState(t *testing.T) {
	v := cardView(domain.InternalReview{ID: 7}, app.State{DropdownOpen: true, Composing: true})
	assert.Equal(t, "/restaurant/profile/3/reviews/7/card/like?compose=1&menu=open", render.CardURL(v, "like"))

	v = cardView(domain.InternalReview{ID: 7}, app.State{})
	assert.Equal(t, "/restaurant/profile/3/reviews/7/card", render.CardURL(v, ""))
}

func TestPage_Sections(t *testing.T) {
	var buf bytes.Buffer
	err := render.Page(&buf, render.PageData{
		RestaurantID: 3,
		CSRFToken:    "tok123",
		External:     []app.CardView{cardView(domain.ExternalReview{ID: "y1", Rating: 2}, app.State{})},
		Internal:     []app.CardView{cardView(domain.InternalReview{ID: 7, Rating: 4}, app.State{})},
	})
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, "tok123")
	yelp := strings.Index(out, "YELP")
	dl := strings.Index(out, "DINELINE")
	require.True(t, yelp >= 0 && dl > yelp)
	assert.Equal(t, 6, strings.Count(out, "fa-star"))
}
