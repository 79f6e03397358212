// Package docstore mirrors the three remote collections (users, blogs,
// comments) and pushes live result-set snapshots to subscribers whenever
// the backing data changes. The client never owns this data; it only
// reads through and writes back.
package docstore

import "time"

const (
	CollectionUsers    = "users"
	CollectionBlogs    = "blogs"
	CollectionComments = "comments"
)

// User profile record; the id doubles as the session token.
// Fields mirror the registration form, so they are strings throughout.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Gender    string    `json:"gender"`
	Age       string    `json:"age"`
	Zip       string    `json:"zip"`
	State     string    `json:"state"`
	Address   string    `json:"address"`
	Country   string    `json:"country"`
	ImageURL  string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

type Blog struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	ImageURL    string    `json:"image"`
	OwnerID     string    `json:"user"`
	CreatedAt   time.Time `json:"created_at"`
}

// Comment on a blog. Comments are only ever created or deleted.
type Comment struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	BlogID      string    `json:"blog"`
	AuthorID    string    `json:"user"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserFields are the mutable parts of a User record.
type UserFields struct {
	Name     string
	Email    string
	Gender   string
	Age      string
	Zip      string
	State    string
	Address  string
	Country  string
	ImageURL string
}

// BlogFields are the mutable parts of a Blog record; the owner and the
// creation timestamp never change.
type BlogFields struct {
	Title       string
	Description string
	Content     string
	ImageURL    string
}

// BlogQuery selects blogs, optionally restricted to one owner, optionally
// ordered by creation timestamp ascending. Without an explicit order the
// result is ordered by id, which is stable for stable input.
type BlogQuery struct {
	OwnerID           string
	OrderByCreatedAsc bool
}

// Key uniquely identifies the query, for pairing it with a screen.
func (q BlogQuery) Key() string {
	key := "blogs"
	if q.OwnerID != "" {
		key += "||owner=" + q.OwnerID
	}
	if q.OrderByCreatedAsc {
		key += "||order=created_asc"
	}
	return key
}

// CommentQuery selects comments by blog or by author (at most one filter).
type CommentQuery struct {
	BlogID   string
	AuthorID string
}

func (q CommentQuery) Key() string {
	key := "comments"
	if q.BlogID != "" {
		key += "||blog=" + q.BlogID
	}
	if q.AuthorID != "" {
		key += "||author=" + q.AuthorID
	}
	return key
}
