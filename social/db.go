// social/db.go
package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Like state lives only in the likes table; counts are aggregated at read
// time. UNIQUE(post_id, user_id) is the backstop against duplicate likes.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
    is_banned BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS posts (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id),
    content TEXT NOT NULL,
    is_banned BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS comments (
    id UUID PRIMARY KEY,
    post_id UUID NOT NULL REFERENCES posts(id),
    user_id UUID NOT NULL REFERENCES users(id),
    content TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS likes (
    id UUID PRIMARY KEY,
    post_id UUID NOT NULL REFERENCES posts(id),
    user_id UUID NOT NULL REFERENCES users(id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE(post_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_posts_on_user_id ON posts(user_id);
CREATE INDEX IF NOT EXISTS idx_comments_on_post_id ON comments(post_id);
`

type Database struct {
	pool *pgxpool.Pool
}

func NewDatabase(connectionString string) (*Database, error) {
	pool, err := pgxpool.New(context.Background(), connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Database{pool: pool}, nil
}

func (d *Database) CreateTables(ctx context.Context) error {
	_, err := d.pool.Exec(ctx, schema)
	return err
}

func (d *Database) Close() {
	d.pool.Close()
}

// isUniqueViolation reports whether err is a Postgres unique-key violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// --- User Functions ---

func (d *Database) CreateUser(ctx context.Context, user *User) error {
	query := `INSERT INTO users (id, username, display_name, password_hash, is_admin, is_banned, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := d.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.DisplayName,
		user.PasswordHash,
		user.IsAdmin,
		user.IsBanned,
		user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	return err
}

// SeedAdmin inserts the administrator account if no row with its username
// exists yet. Safe to run on every startup.
func (d *Database) SeedAdmin(ctx context.Context, admin *User) error {
	query := `INSERT INTO users (id, username, display_name, password_hash, is_admin, created_at)
	          VALUES ($1, $2, $3, $4, TRUE, $5)
	          ON CONFLICT (username) DO NOTHING`
	_, err := d.pool.Exec(ctx, query,
		admin.ID,
		admin.Username,
		admin.DisplayName,
		admin.PasswordHash,
		admin.CreatedAt,
	)
	return err
}

func (d *Database) GetUser(ctx context.Context, id string) (*User, error) {
	return d.getUser(ctx, `WHERE id = $1`, id)
}

func (d *Database) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return d.getUser(ctx, `WHERE username = $1`, username)
}

func (d *Database) getUser(ctx context.Context, where string, arg any) (*User, error) {
	var user User
	query := `SELECT id, username, display_name, password_hash, is_admin, is_banned, created_at
	          FROM users ` + where
	row := d.pool.QueryRow(ctx, query, arg)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.DisplayName,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.IsBanned,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) ListUsers(ctx context.Context) ([]User, error) {
	query := `SELECT id, username, display_name, password_hash, is_admin, is_banned, created_at
	          FROM users ORDER BY created_at DESC`
	rows, err := d.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.PasswordHash, &u.IsAdmin, &u.IsBanned, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (d *Database) SetUserBanned(ctx context.Context, userID string, banned bool) error {
	tag, err := d.pool.Exec(ctx, `UPDATE users SET is_banned = $2 WHERE id = $1`, userID, banned)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Post Functions ---

func (d *Database) CreatePost(ctx context.Context, post *Post) error {
	post.ID = uuid.NewString()
	query := `INSERT INTO posts (id, user_id, content) VALUES ($1, $2, $3) RETURNING created_at`
	return d.pool.QueryRow(ctx, query, post.ID, post.UserID, post.Content).Scan(&post.CreatedAt)
}

func (d *Database) GetPost(ctx context.Context, id string) (*Post, error) {
	var post Post
	query := `SELECT p.id, p.user_id, p.content, p.is_banned, p.created_at,
	                 u.username, u.display_name, u.is_admin
	          FROM posts p JOIN users u ON u.id = p.user_id
	          WHERE p.id = $1`
	row := d.pool.QueryRow(ctx, query, id)
	err := row.Scan(&post.ID, &post.UserID, &post.Content, &post.IsBanned, &post.CreatedAt,
		&post.AuthorName, &post.AuthorDisplayName, &post.AuthorIsAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListVisiblePosts is the default feed: newest first, banned authors and
// banned posts excluded.
func (d *Database) ListVisiblePosts(ctx context.Context) ([]Post, error) {
	query := `SELECT p.id, p.user_id, p.content, p.is_banned, p.created_at,
	                 u.username, u.display_name, u.is_admin
	          FROM posts p JOIN users u ON u.id = p.user_id
	          WHERE u.is_banned = FALSE AND p.is_banned = FALSE
	          ORDER BY p.created_at DESC`
	rows, err := d.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Content, &p.IsBanned, &p.CreatedAt,
			&p.AuthorName, &p.AuthorDisplayName, &p.AuthorIsAdmin); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (d *Database) SetPostBanned(ctx context.Context, postID string, banned bool) error {
	tag, err := d.pool.Exec(ctx, `UPDATE posts SET is_banned = $2 WHERE id = $1`, postID, banned)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Comment Functions ---

func (d *Database) CreateComment(ctx context.Context, comment *Comment) error {
	comment.ID = uuid.NewString()
	query := `INSERT INTO comments (id, post_id, user_id, content) VALUES ($1, $2, $3, $4) RETURNING created_at`
	return d.pool.QueryRow(ctx, query, comment.ID, comment.PostID, comment.UserID, comment.Content).Scan(&comment.CreatedAt)
}

func (d *Database) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	query := `SELECT c.id, c.post_id, c.user_id, c.content, c.created_at, u.username
	          FROM comments c JOIN users u ON u.id = c.user_id
	          WHERE c.post_id = $1
	          ORDER BY c.created_at ASC`
	rows, err := d.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt, &c.Author); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// --- Like Functions ---

func (d *Database) CountLikes(ctx context.Context, postID string) (int, error) {
	var count int
	err := d.pool.QueryRow(ctx, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID).Scan(&count)
	return count, err
}

func (d *Database) HasLiked(ctx context.Context, postID, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM likes WHERE post_id = $1 AND user_id = $2)`
	err := d.pool.QueryRow(ctx, query, postID, userID).Scan(&exists)
	return exists, err
}

// ToggleLike runs the existence check and the mutation in one transaction so
// two concurrent toggles from the same user cannot observe each other
// half-applied.
func (d *Database) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `SELECT id FROM likes WHERE post_id = $1 AND user_id = $2`, postID, userID).Scan(&id)
	switch {
	case err == nil:
		if _, err := tx.Exec(ctx, `DELETE FROM likes WHERE id = $1`, id); err != nil {
			return false, err
		}
		return false, tx.Commit(ctx)
	case errors.Is(err, pgx.ErrNoRows):
		_, err := tx.Exec(ctx, `INSERT INTO likes (id, post_id, user_id) VALUES ($1, $2, $3)`,
			uuid.NewString(), postID, userID)
		if err != nil {
			return false, err
		}
		return true, tx.Commit(ctx)
	default:
		return false, err
	}
}
