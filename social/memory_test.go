package social

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a store with one user and one of their posts.
func newTestStore(t *testing.T) (*MemoryStore, *User, *Post) {
	t.Helper()
	store := NewMemoryStore()
	ctx := context.Background()

	user := NewUser("alice", "", false)
	require.NoError(t, user.SetPassword("pw1"))
	require.NoError(t, store.CreateUser(ctx, user))

	post := &Post{UserID: user.ID, Content: "hello"}
	require.NoError(t, store.CreatePost(ctx, post))

	return store, user, post
}

func TestStore_DuplicateUsername(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	dup := NewUser("alice", "", false)
	err := store.CreateUser(ctx, dup)
	require.ErrorIs(t, err, ErrUsernameTaken)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestStore_GetUserByUsername(t *testing.T) {
	store, user, _ := newTestStore(t)
	ctx := context.Background()

	found, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = store.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ToggleLike(t *testing.T) {
	store, user, post := newTestStore(t)
	ctx := context.Background()

	liked, err := store.ToggleLike(ctx, post.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	count, err := store.CountLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	has, err := store.HasLiked(ctx, post.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, has)

	// Toggling again returns to the original state.
	liked, err = store.ToggleLike(ctx, post.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	count, err = store.CountLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	has, err = store.HasLiked(ctx, post.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestStore_FeedExcludesBannedAuthors(t *testing.T) {
	store, user, post := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetUserBanned(ctx, user.ID, true))

	posts, err := store.ListVisiblePosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)

	// Still present in storage and in the admin listing, just hidden.
	_, err = store.GetPost(ctx, post.ID)
	require.NoError(t, err)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.True(t, users[0].IsBanned)
}

func TestStore_FeedExcludesBannedPosts(t *testing.T) {
	store, _, post := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetPostBanned(ctx, post.ID, true))

	posts, err := store.ListVisiblePosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestStore_FeedOrderAndAuthorFields(t *testing.T) {
	store, user, first := newTestStore(t)
	ctx := context.Background()

	time.Sleep(time.Millisecond)
	second := &Post{UserID: user.ID, Content: "later"}
	require.NoError(t, store.CreatePost(ctx, second))

	posts, err := store.ListVisiblePosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)
	assert.Equal(t, "alice", posts[0].AuthorName)
}

func TestStore_CommentsOldestFirst(t *testing.T) {
	store, user, post := newTestStore(t)
	ctx := context.Background()

	c1 := &Comment{PostID: post.ID, UserID: user.ID, Content: "first"}
	require.NoError(t, store.CreateComment(ctx, c1))
	time.Sleep(time.Millisecond)
	c2 := &Comment{PostID: post.ID, UserID: user.ID, Content: "second"}
	require.NoError(t, store.CreateComment(ctx, c2))

	comments, err := store.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)
	assert.Equal(t, "alice", comments[0].Author)
}

func TestStore_BanUnknownUser(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	err := store.SetUserBanned(ctx, "no-such-id", true)
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.SetPostBanned(ctx, "no-such-id", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_BanIsIdempotent(t *testing.T) {
	store, user, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetUserBanned(ctx, user.ID, true))
	require.NoError(t, store.SetUserBanned(ctx, user.ID, true))

	got, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsBanned)
}

func TestStore_ListUsersNewestFirst(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	time.Sleep(time.Millisecond)
	bob := NewUser("bob", "", false)
	require.NoError(t, store.CreateUser(ctx, bob))

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[0].Username)
	assert.Equal(t, "alice", users[1].Username)
}
