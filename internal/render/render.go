// Package render draws review cards as HTML.
//
// Cards are server-rendered fragments. Interactive cards carry hx-* attributes
// so the browser posts each user action back to the card endpoints and swaps
// the returned fragment in place.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"dineline_reviews/internal/app"
	"dineline_reviews/internal/domain"
)

const DefaultAvatar = "https://s3-media3.fl.yelpcdn.com/photo/O8CmQtEeOUvMTFk0iMn5sw/o.jpg"

//go:embed templates/*.html
var files embed.FS

var tmpl = template.Must(template.New("").Funcs(template.FuncMap{
	"avatar":     avatar,
	"deref":      deref,
	"cardURL":    CardURL,
	"commentRow": commentRow,
	"likedClass": likedClass,
}).ParseFS(files, "templates/*.html"))

// PageData is the review section of a restaurant profile.
type PageData struct {
	RestaurantID int64
	CSRFToken    string
	External     []app.CardView
	Internal     []app.CardView
}

func Page(w io.Writer, d PageData) error {
	return tmpl.ExecuteTemplate(w, "page", d)
}

func Card(w io.Writer, v app.CardView) error {
	return tmpl.ExecuteTemplate(w, "card", v)
}

// CardURL is the endpoint for action on v, carrying v's interaction state so
// the next render starts from it. An empty action addresses the card itself.
func CardURL(v app.CardView, action string) string {
	id := int64(0)
	if v.ID != nil {
		id = *v.ID
	}
	p := fmt.Sprintf("/restaurant/profile/%d/reviews/%d/card", v.RestaurantID, id)
	if action != "" {
		p += "/" + action
	}
	q := url.Values{}
	if v.DropdownOpen {
		q.Set("menu", "open")
	}
	if v.Composing {
		q.Set("compose", "1")
	}
	if len(q) > 0 {
		p += "?" + q.Encode()
	}
	return p
}

func CommentURL(v app.CardView, commentID int64, action string) string {
	id := int64(0)
	if v.ID != nil {
		id = *v.ID
	}
	return fmt.Sprintf("/restaurant/profile/%d/reviews/%d/comments/%d/%s", v.RestaurantID, id, commentID, action)
}

type commentView struct {
	Comment   domain.Comment
	DeleteURL string
	ReportURL string
}

func commentRow(v app.CardView, c domain.Comment) commentView {
	return commentView{
		Comment:   c,
		DeleteURL: CommentURL(v, c.CommentID, "delete"),
		ReportURL: CommentURL(v, c.CommentID, "report"),
	}
}

func avatar(p *string) string {
	if p == nil || *p == "" {
		return DefaultAvatar
	}
	return *p
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func likedClass(l *bool) string {
	if l != nil && *l {
		return "text-primary"
	}
	return "text-secondary"
}
