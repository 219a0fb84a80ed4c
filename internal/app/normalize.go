package app

import (
	"net/url"
	"time"

	"dineline_reviews/internal/domain"
)

const (
	DefaultMediaBase = "https://dineline.s3.amazonaws.com/media/"
	TimeLayout       = "2006-01-02 15:04:05"
)

// Normalizer turns raw reviews into view models. It holds only immutable
// settings, so Normalize is safe to call from any goroutine.
type Normalizer struct {
	media *url.URL
	loc   *time.Location
}

// NewNormalizer parses mediaBase once. An empty or unparsable base falls back
// to DefaultMediaBase; a nil loc means UTC.
func NewNormalizer(mediaBase string, loc *time.Location) *Normalizer {
	u, err := url.Parse(mediaBase)
	if mediaBase == "" || err != nil || !u.IsAbs() {
		u, _ = url.Parse(DefaultMediaBase)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{media: u, loc: loc}
}

func (n *Normalizer) Normalize(raw domain.RawReview) domain.ViewModel {
	switch r := raw.(type) {
	case domain.ExternalReview:
		return n.external(r)
	case *domain.ExternalReview:
		if r == nil {
			return emptyView()
		}
		return n.external(*r)
	case domain.InternalReview:
		return n.internal(r)
	case *domain.InternalReview:
		if r == nil {
			return emptyView()
		}
		return n.internal(*r)
	}
	return emptyView()
}

func (n *Normalizer) NormalizeAll(raws []domain.RawReview) []domain.ViewModel {
	out := make([]domain.ViewModel, 0, len(raws))
	for _, r := range raws {
		out = append(out, n.Normalize(r))
	}
	return out
}

func (n *Normalizer) external(r domain.ExternalReview) domain.ViewModel {
	vm := domain.ViewModel{
		ReviewID:  ptrStr(r.ID),
		ReviewURL: ptrStr(r.URL),
		Rating:    r.Rating,
		Time:      n.formatTime(r.TimeCreated),
		Content:   r.Text,
		Comments:  copyComments(r.Comments),
	}
	if r.User != nil {
		vm.UserName = ptrStr(r.User.Name)
		vm.ProfilePic = ptrStr(r.User.ImageURL)
	}
	return vm
}

func (n *Normalizer) internal(r domain.InternalReview) domain.ViewModel {
	id, uid := r.ID, r.UserID
	return domain.ViewModel{
		ID:         &id,
		UserID:     &uid,
		UserName:   ptrStr(r.Username),
		ProfilePic: ptrStr(r.Photo),
		Rating:     r.Rating,
		Time:       n.formatTime(r.Time),
		Content:    r.Content,
		Image1:     n.mediaURL(r.Image1),
		Image2:     n.mediaURL(r.Image2),
		Image3:     n.mediaURL(r.Image3),
		Hidden:     r.Hidden,
		Comments:   copyComments(r.Comments),
	}
}

func (n *Normalizer) formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(n.loc).Format(TimeLayout)
}

// mediaURL resolves a stored relative path against the media base.
func (n *Normalizer) mediaURL(p string) *string {
	if p == "" {
		return nil
	}
	ref, err := url.Parse(p)
	if err != nil {
		return nil
	}
	s := n.media.ResolveReference(ref).String()
	return &s
}

func copyComments(in []domain.Comment) []domain.Comment {
	out := make([]domain.Comment, len(in))
	copy(out, in)
	return out
}

func emptyView() domain.ViewModel {
	return domain.ViewModel{Comments: []domain.Comment{}}
}
