// social/handlers.go
package social

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
)

// Flash classes match the alert styles in the templates.
const (
	flashSuccess = "success"
	flashError   = "error"
	flashWarning = "warning"
)

// sessionUser is the identity snapshot kept in the cookie session. It is
// populated at login and not refreshed until the next login, so a ban applied
// mid-session takes effect after re-login.
type sessionUser struct {
	ID          string
	Username    string
	DisplayName string
	IsAdmin     bool
	IsBanned    bool
}

func (su sessionUser) Name() string {
	if su.DisplayName != "" {
		return su.DisplayName
	}
	return su.Username
}

type Handlers struct {
	store     Store
	Session   *scs.SessionManager
	templates *template.Template
}

func NewHandlers(store Store, session *scs.SessionManager, templateDir string) (*Handlers, error) {
	tpl, err := template.ParseGlob(filepath.Join(templateDir, "*.html"))
	if err != nil {
		return nil, err
	}
	return &Handlers{store: store, Session: session, templates: tpl}, nil
}

func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/", h.index)
	r.Get("/register", h.registerForm)
	r.Post("/register", h.register)
	r.Get("/login", h.loginForm)
	r.Post("/login", h.login)
	r.Get("/logout", h.logout)

	r.Get("/create_post", h.createPostForm)
	r.Post("/create_post", h.createPost)
	r.Post("/comment/{postID}", h.addComment)
	r.Post("/like/{postID}", h.toggleLike)

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Get("/users", h.adminUsers)
		r.Post("/ban/user/{userID}", h.banUser)
		r.Post("/unban/user/{userID}", h.unbanUser)
		r.Post("/ban/post/{postID}", h.banPost)
	})

	r.NotFound(h.notFound)
}

// --- session and flash helpers ---

func (h *Handlers) currentUser(r *http.Request) (sessionUser, bool) {
	ctx := r.Context()
	id := h.Session.GetString(ctx, "userID")
	if id == "" {
		return sessionUser{}, false
	}
	return sessionUser{
		ID:          id,
		Username:    h.Session.GetString(ctx, "username"),
		DisplayName: h.Session.GetString(ctx, "displayName"),
		IsAdmin:     h.Session.GetBool(ctx, "isAdmin"),
		IsBanned:    h.Session.GetBool(ctx, "isBanned"),
	}, true
}

func (h *Handlers) flash(r *http.Request, class, message string) {
	h.Session.Put(r.Context(), "flash", message)
	h.Session.Put(r.Context(), "flashClass", class)
}

// requireMember gates the member-only routes: a session must exist and the
// account must not be banned.
func (h *Handlers) requireMember(w http.ResponseWriter, r *http.Request) (sessionUser, bool) {
	user, ok := h.currentUser(r)
	if !ok {
		h.flash(r, flashError, "Please log in first")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return sessionUser{}, false
	}
	if user.IsBanned {
		h.flash(r, flashError, "Your account is banned")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return sessionUser{}, false
	}
	return user, true
}

func (h *Handlers) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.Session.GetBool(r.Context(), "isAdmin") {
			h.flash(r, flashError, "Access denied")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	user, logged := h.currentUser(r)
	data["User"] = user
	data["Logged"] = logged
	data["Flash"] = h.Session.PopString(r.Context(), "flash")
	data["FlashClass"] = h.Session.PopString(r.Context(), "flashClass")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error executing template %s: %v", name, err)
	}
}

func (h *Handlers) serverError(w http.ResponseWriter, op string, err error) {
	log.Printf("Error in %s: %v", op, err)
	http.Error(w, "Something went wrong", http.StatusInternalServerError)
}

func (h *Handlers) notFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	h.render(w, r, "notfound.html", map[string]any{"Title": "Not Found"})
}

// --- feed ---

func (h *Handlers) index(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListVisiblePosts(r.Context())
	if err != nil {
		h.serverError(w, "listing posts", err)
		return
	}

	user, logged := h.currentUser(r)
	feed := make([]FeedPost, 0, len(posts))
	for _, p := range posts {
		comments, err := h.store.ListComments(r.Context(), p.ID)
		if err != nil {
			h.serverError(w, "listing comments", err)
			return
		}
		likes, err := h.store.CountLikes(r.Context(), p.ID)
		if err != nil {
			h.serverError(w, "counting likes", err)
			return
		}
		fp := FeedPost{Post: p, Comments: comments, Likes: likes}
		if logged {
			liked, err := h.store.HasLiked(r.Context(), p.ID, user.ID)
			if err != nil {
				h.serverError(w, "checking like", err)
				return
			}
			fp.UserLiked = liked
		}
		feed = append(feed, fp)
	}

	h.render(w, r, "index.html", map[string]any{
		"Title": "Edirt",
		"Posts": feed,
	})
}

// --- auth ---

func (h *Handlers) registerForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", map[string]any{"Title": "Register"})
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		h.flash(r, flashError, "Username and password are required")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	user := NewUser(username, "", false)
	if err := user.SetPassword(password); err != nil {
		h.serverError(w, "hashing password", err)
		return
	}

	err := h.store.CreateUser(r.Context(), user)
	if errors.Is(err, ErrUsernameTaken) {
		h.flash(r, flashError, "That username is already taken")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.serverError(w, "creating user", err)
		return
	}

	h.flash(r, flashSuccess, "Registration successful! You can log in now")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handlers) loginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", map[string]any{"Title": "Log in"})
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	user, err := h.store.GetUserByUsername(r.Context(), username)
	if err != nil && !errors.Is(err, ErrNotFound) {
		h.serverError(w, "looking up user", err)
		return
	}
	if err == nil {
		ok, merr := user.PasswordMatches(password)
		if merr != nil {
			h.serverError(w, "verifying password", merr)
			return
		}
		if ok {
			ctx := r.Context()
			if err := h.Session.RenewToken(ctx); err != nil {
				h.serverError(w, "renewing session token", err)
				return
			}
			h.Session.Put(ctx, "userID", user.ID)
			h.Session.Put(ctx, "username", user.Username)
			h.Session.Put(ctx, "displayName", user.DisplayName)
			h.Session.Put(ctx, "isAdmin", user.IsAdmin)
			h.Session.Put(ctx, "isBanned", user.IsBanned)

			if user.IsBanned {
				h.flash(r, flashWarning, "Your account is banned. You can read posts but cannot publish, comment or like")
			} else {
				h.flash(r, flashSuccess, "Welcome, "+user.Name()+"!")
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}

	// Same message for unknown username and wrong password.
	h.flash(r, flashError, "Invalid username or password")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.Destroy(r.Context()); err != nil {
		h.serverError(w, "destroying session", err)
		return
	}
	h.flash(r, flashSuccess, "You have been logged out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// --- posts, comments, likes ---

func (h *Handlers) createPostForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireMember(w, r); !ok {
		return
	}
	h.render(w, r, "create_post.html", map[string]any{"Title": "New post"})
}

func (h *Handlers) createPost(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireMember(w, r)
	if !ok {
		return
	}

	content := strings.TrimSpace(r.FormValue("content"))
	if content == "" {
		h.flash(r, flashError, "Your story cannot be empty")
		http.Redirect(w, r, "/create_post", http.StatusSeeOther)
		return
	}

	post := &Post{UserID: user.ID, Content: content}
	if err := h.store.CreatePost(r.Context(), post); err != nil {
		h.serverError(w, "creating post", err)
		return
	}

	h.flash(r, flashSuccess, "Your story has been published!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// visibleTarget fetches the post a comment or like is aimed at. A missing
// post renders the 404 page; a banned one redirects home with an error.
func (h *Handlers) visibleTarget(w http.ResponseWriter, r *http.Request) (*Post, bool) {
	post, err := h.store.GetPost(r.Context(), chi.URLParam(r, "postID"))
	if errors.Is(err, ErrNotFound) {
		h.notFound(w, r)
		return nil, false
	}
	if err != nil {
		h.serverError(w, "fetching post", err)
		return nil, false
	}
	if post.IsBanned {
		h.flash(r, flashError, "That post is no longer available")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, false
	}
	return post, true
}

func (h *Handlers) addComment(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireMember(w, r)
	if !ok {
		return
	}
	post, ok := h.visibleTarget(w, r)
	if !ok {
		return
	}

	content := strings.TrimSpace(r.FormValue("content"))
	if content == "" {
		h.flash(r, flashError, "Comments cannot be empty")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	comment := &Comment{PostID: post.ID, UserID: user.ID, Content: content}
	if err := h.store.CreateComment(r.Context(), comment); err != nil {
		h.serverError(w, "creating comment", err)
		return
	}

	h.flash(r, flashSuccess, "Comment added!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) toggleLike(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireMember(w, r)
	if !ok {
		return
	}
	post, ok := h.visibleTarget(w, r)
	if !ok {
		return
	}

	liked, err := h.store.ToggleLike(r.Context(), post.ID, user.ID)
	if err != nil {
		h.serverError(w, "toggling like", err)
		return
	}

	if liked {
		h.flash(r, flashSuccess, "Liked!")
	} else {
		h.flash(r, flashSuccess, "Like removed")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// --- admin ---

func (h *Handlers) adminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.serverError(w, "listing users", err)
		return
	}
	h.render(w, r, "admin_users.html", map[string]any{
		"Title": "Manage users",
		"Users": users,
	})
}

func (h *Handlers) banUser(w http.ResponseWriter, r *http.Request) {
	target, err := h.store.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if errors.Is(err, ErrNotFound) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, "fetching user", err)
		return
	}
	if target.IsAdmin {
		h.flash(r, flashError, "Administrators cannot be banned")
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	if err := h.store.SetUserBanned(r.Context(), target.ID, true); err != nil {
		h.serverError(w, "banning user", err)
		return
	}
	h.flash(r, flashSuccess, "User banned")
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

func (h *Handlers) unbanUser(w http.ResponseWriter, r *http.Request) {
	err := h.store.SetUserBanned(r.Context(), chi.URLParam(r, "userID"), false)
	if errors.Is(err, ErrNotFound) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, "unbanning user", err)
		return
	}
	h.flash(r, flashSuccess, "User unbanned")
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

func (h *Handlers) banPost(w http.ResponseWriter, r *http.Request) {
	err := h.store.SetPostBanned(r.Context(), chi.URLParam(r, "postID"), true)
	if errors.Is(err, ErrNotFound) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, "banning post", err)
		return
	}
	h.flash(r, flashSuccess, "Post banned")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
