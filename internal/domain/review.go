package domain

import "time"

// Source tells which platform a raw review came from.
type Source string

const (
	SourceExternal Source = "external"
	SourceInternal Source = "internal"
)

// RawReview is either an ExternalReview or an InternalReview.
type RawReview interface {
	Source() Source
}

// ExternalUser is the reviewer block of a Yelp review. It may be absent.
type ExternalUser struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// ExternalReview is a read-only review pulled from Yelp.
type ExternalReview struct {
	ID          string        `json:"id"`
	URL         string        `json:"url"`
	Rating      int           `json:"rating"`
	TimeCreated time.Time     `json:"time_created"`
	Text        string        `json:"text"`
	User        *ExternalUser `json:"user"`
	Comments    []Comment     `json:"comments,omitempty"`
}

func (ExternalReview) Source() Source { return SourceExternal }

// InternalReview is a review stored in the dineline database, already joined
// with its author, comments and the viewer's like state.
type InternalReview struct {
	ID             int64     `json:"id"`
	RestaurantID   int64     `json:"restaurant_id"`
	UserID         int64     `json:"user"`
	Username       string    `json:"user__username"`
	Photo          string    `json:"user__user_profile__photo"`
	Rating         int       `json:"rating"`
	RatingSafety   int       `json:"rating_safety"`
	RatingDoor     int       `json:"rating_door"`
	RatingTable    int       `json:"rating_table"`
	RatingBathroom int       `json:"rating_bathroom"`
	RatingPath     int       `json:"rating_path"`
	Time           time.Time `json:"time"`
	Content        string    `json:"content"`
	Image1         string    `json:"image1"`
	Image2         string    `json:"image2"`
	Image3         string    `json:"image3"`
	Hidden         bool      `json:"hidden"`
	Liked          bool      `json:"liked"`
	LikesNum       int       `json:"likes_num"`
	Comments       []Comment `json:"comments,omitempty"`
}

func (InternalReview) Source() Source { return SourceInternal }

// Comment is one entry of a review's thread. A zero CommentID marks a comment
// that has not been created yet.
type Comment struct {
	Text      string  `json:"text"`
	Author    int64   `json:"author"`
	Profile   *string `json:"profile"`
	CommentID int64   `json:"commentId"`
	Hidden    bool    `json:"hidden"`
}

// ViewModel is the render-ready shape derived from either raw review.
type ViewModel struct {
	ID         *int64    `json:"id"`
	UserID     *int64    `json:"userId"`
	UserName   *string   `json:"userName"`
	ProfilePic *string   `json:"profilePic"`
	ReviewID   *string   `json:"reviewId"`
	ReviewURL  *string   `json:"reviewUrl"`
	Rating     int       `json:"rating"`
	Time       string    `json:"time"`
	Content    string    `json:"content"`
	Image1     *string   `json:"image1"`
	Image2     *string   `json:"image2"`
	Image3     *string   `json:"image3"`
	Hidden     bool      `json:"hidden"`
	Comments   []Comment `json:"comments"`
}

// Internal reports whether the view model was built from an internal review.
func (v ViewModel) Internal() bool { return v.ID != nil }
