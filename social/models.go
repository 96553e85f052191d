// social/models.go
package social

import (
	"time"
)

type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	IsBanned     bool      `json:"is_banned" db:"is_banned"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Name is what appears next to the user's content: the display name when one
// is set, otherwise the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

type Post struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Content   string    `json:"content" db:"content"`
	IsBanned  bool      `json:"is_banned" db:"is_banned"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Author fields are joined in by the feed queries, never stored.
	AuthorName        string `json:"author_name" db:"-"`
	AuthorDisplayName string `json:"author_display_name" db:"-"`
	AuthorIsAdmin     bool   `json:"author_is_admin" db:"-"`
}

func (p Post) Author() string {
	if p.AuthorDisplayName != "" {
		return p.AuthorDisplayName
	}
	return p.AuthorName
}

type Comment struct {
	ID        string    `json:"id" db:"id"`
	PostID    string    `json:"post_id" db:"post_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Author username, joined in on listing.
	Author string `json:"author" db:"-"`
}

type Like struct {
	ID        string    `json:"id" db:"id"`
	PostID    string    `json:"post_id" db:"post_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FeedPost is the per-post view model for the home page: the post plus its
// comments, the aggregated like count and whether the viewer liked it.
type FeedPost struct {
	Post
	Comments  []Comment
	Likes     int
	UserLiked bool
}
