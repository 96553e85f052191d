package social

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUsernameTaken is returned by CreateUser on a username collision.
	ErrUsernameTaken = errors.New("username already taken")
)

// Store is the persistence contract the handlers run against. The Database
// type implements it over Postgres; MemoryStore implements it for tests.
type Store interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	SetUserBanned(ctx context.Context, userID string, banned bool) error

	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id string) (*Post, error)
	ListVisiblePosts(ctx context.Context) ([]Post, error)
	SetPostBanned(ctx context.Context, postID string, banned bool) error

	CreateComment(ctx context.Context, comment *Comment) error
	ListComments(ctx context.Context, postID string) ([]Comment, error)

	CountLikes(ctx context.Context, postID string) (int, error)
	HasLiked(ctx context.Context, postID, userID string) (bool, error)
	// ToggleLike removes the like if one exists for (post, user), otherwise
	// inserts one. The returned bool is true when the post ends up liked.
	ToggleLike(ctx context.Context, postID, userID string) (bool, error)
}
