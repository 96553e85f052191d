package social

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store in memory. It backs the tests and is handy for
// running the app without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*User
	posts    map[string]*Post
	comments map[string]*Comment
	likes    map[string]*Like // keyed by postID+"/"+userID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*User),
		posts:    make(map[string]*Post),
		comments: make(map[string]*Comment),
		likes:    make(map[string]*Like),
	}
}

func likeKey(postID, userID string) string {
	return postID + "/" + userID
}

// === User Methods ===

func (m *MemoryStore) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username {
			return ErrUsernameTaken
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MemoryStore) GetUser(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListUsers(ctx context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (m *MemoryStore) SetUserBanned(ctx context.Context, userID string, banned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.IsBanned = banned
	return nil
}

// === Post Methods ===

func (m *MemoryStore) CreatePost(ctx context.Context, post *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	post.ID = uuid.NewString()
	post.CreatedAt = time.Now().UTC()
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *MemoryStore) GetPost(ctx context.Context, id string) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	m.attachAuthor(&cp)
	return &cp, nil
}

func (m *MemoryStore) ListVisiblePosts(ctx context.Context) ([]Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	posts := make([]Post, 0, len(m.posts))
	for _, p := range m.posts {
		author, ok := m.users[p.UserID]
		if !ok || author.IsBanned || p.IsBanned {
			continue
		}
		cp := *p
		m.attachAuthor(&cp)
		posts = append(posts, cp)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (m *MemoryStore) SetPostBanned(ctx context.Context, postID string, banned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[postID]
	if !ok {
		return ErrNotFound
	}
	p.IsBanned = banned
	return nil
}

// attachAuthor mirrors the join the Postgres feed query does. Callers hold
// the lock.
func (m *MemoryStore) attachAuthor(p *Post) {
	if author, ok := m.users[p.UserID]; ok {
		p.AuthorName = author.Username
		p.AuthorDisplayName = author.DisplayName
		p.AuthorIsAdmin = author.IsAdmin
	}
}

// === Comment Methods ===

func (m *MemoryStore) CreateComment(ctx context.Context, comment *Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now().UTC()
	cp := *comment
	m.comments[comment.ID] = &cp
	return nil
}

func (m *MemoryStore) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	comments := make([]Comment, 0)
	for _, c := range m.comments {
		if c.PostID != postID {
			continue
		}
		cp := *c
		if author, ok := m.users[c.UserID]; ok {
			cp.Author = author.Username
		}
		comments = append(comments, cp)
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

// === Like Methods ===

func (m *MemoryStore) CountLikes(ctx context.Context, postID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, l := range m.likes {
		if l.PostID == postID {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) HasLiked(ctx context.Context, postID, userID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.likes[likeKey(postID, userID)]
	return ok, nil
}

func (m *MemoryStore) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := likeKey(postID, userID)
	if _, ok := m.likes[key]; ok {
		delete(m.likes, key)
		return false, nil
	}
	m.likes[key] = &Like{
		ID:        uuid.NewString(),
		PostID:    postID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	return true, nil
}
