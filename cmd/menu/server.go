package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/poku-e/hanover/internal/admin"
	"github.com/poku-e/hanover/internal/cart"
	"github.com/poku-e/hanover/internal/catalog"
	"github.com/poku-e/hanover/internal/view"
)

const (
	visitorCookie = "visitor"
	adminCookie   = "admin"

	alertAccessDenied = "Invalid ID or Password! Access denied."
	alertRequiredData = "Enter all the required data."
	alertSessionEnded = "Admin session expired. Log in again."
)

type server struct {
	store     *catalog.Store
	renderer  *view.Renderer
	cart      *cart.Counter
	auth      admin.Authenticator
	sessions  *admin.Sessions
	logger    *log.Logger
	developer string
}

type cartResp struct {
	Count int `json:"count"`
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /items", s.handleGrid)
	mux.HandleFunc("GET /api/items", s.handleItemsJSON)

	mux.HandleFunc("GET /api/cart", s.handleCartJSON)
	mux.HandleFunc("POST /cart/add", s.handleCart((*cart.Counter).Increment))
	mux.HandleFunc("POST /cart/remove", s.handleCart((*cart.Counter).Decrement))

	mux.HandleFunc("POST /admin/login", s.handleLogin)
	mux.HandleFunc("POST /admin/logout", s.handleLogout)
	mux.HandleFunc("POST /admin/items", s.handleAddItem)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(withVisitor(mux))
}

// projection answers "what should currently be shown": a search query
// wins over a category, and both run against the full Catalog.
func (s *server) projection(r *http.Request) (items []catalog.MenuItem, category string) {
	q := r.URL.Query()
	category = q.Get("category")
	if category == "" {
		category = catalog.CategoryAll
	}
	// the query is matched exactly as typed, surrounding spaces included
	if query := q.Get("q"); query != "" {
		return s.store.Search(query), catalog.CategoryAll
	}
	return s.store.FilterByCategory(category), category
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	items, category := s.projection(r)
	s.renderPage(w, r, http.StatusOK, view.PageData{
		Items:    items,
		Category: category,
		Admin:    s.isAdmin(r),
		Return:   r.URL.RequestURI(),
	})
}

func (s *server) handleGrid(w http.ResponseWriter, r *http.Request) {
	items, _ := s.projection(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Grid(w, items, safeReturn(r.URL.Query().Get("next"))); err != nil {
		s.logger.Printf("render grid: %v", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (s *server) handleItemsJSON(w http.ResponseWriter, r *http.Request) {
	items, _ := s.projection(r)
	s.writeJSON(w, http.StatusOK, items)
}

func (s *server) handleCartJSON(w http.ResponseWriter, r *http.Request) {
	n, err := s.cart.Value(r.Context(), visitor(r))
	if err != nil {
		s.logger.Printf("cart: %v", err)
		http.Error(w, "cart unavailable", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, cartResp{Count: n})
}

func (s *server) handleCart(op func(*cart.Counter, context.Context, string) (int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := op(s.cart, r.Context(), visitor(r))
		if err != nil {
			s.logger.Printf("cart: %v", err)
			http.Error(w, "cart unavailable", http.StatusInternalServerError)
			return
		}
		if wantsJSON(r) {
			s.writeJSON(w, http.StatusOK, cartResp{Count: n})
			return
		}
		http.Redirect(w, r, safeReturn(r.PostFormValue("next")), http.StatusSeeOther)
	}
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.auth.Authenticate(r.PostFormValue("id"), r.PostFormValue("password")) {
		s.logger.Printf("admin login rejected from %s", r.RemoteAddr)
		s.renderPage(w, r, http.StatusUnauthorized, view.PageData{
			Items: s.store.Items(),
			Alert: alertAccessDenied,
		})
		return
	}
	token := s.sessions.Open()
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.sessions.TTL / time.Second),
	})
	s.renderPage(w, r, http.StatusOK, view.PageData{Items: s.store.Items(), Admin: true})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.closeAdmin(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	if !s.isAdmin(r) {
		s.renderPage(w, r, http.StatusUnauthorized, view.PageData{
			Items: s.store.Items(),
			Alert: alertSessionEnded,
		})
		return
	}

	candidate := catalog.MenuItem{
		Name: r.PostFormValue("name"),
		URL:  r.PostFormValue("url"),
		Desc: r.PostFormValue("desc"),
		Type: r.PostFormValue("type"),
	}
	items, err := s.store.Add(candidate)
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		// panel stays open with an empty form
		s.renderPage(w, r, http.StatusUnprocessableEntity, view.PageData{
			Items: s.store.Items(),
			Admin: true,
			Alert: alertRequiredData,
		})
		return
	case err != nil:
		s.logger.Printf("add item: %v", err)
		http.Error(w, "add item failed", http.StatusInternalServerError)
		return
	}

	added := items[len(items)-1]
	s.logger.Printf("admin added item %d %q (%s)", added.ID, added.Name, added.Type)
	s.closeAdmin(w, r)
	s.renderPage(w, r, http.StatusOK, view.PageData{Items: items})
}

func (s *server) renderPage(w http.ResponseWriter, r *http.Request, status int, data view.PageData) {
	n, err := s.cart.Value(r.Context(), visitor(r))
	if err != nil {
		s.logger.Printf("cart: %v", err)
	}
	data.Cart = n
	data.Developer = s.developer
	categories := s.store.Categories()
	data.Toggles = view.Toggles(categories)
	data.Categories = categories

	var buf bytes.Buffer
	if err := s.renderer.Page(&buf, data); err != nil {
		s.logger.Printf("render page: %v", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Printf("error writing response: %v", err)
	}
}

type visitorKey struct{}

// withVisitor identifies the browser by a cookie, issuing one on first
// contact. It plays the role of the browser's local storage scope.
func withVisitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(visitorCookie); err == nil {
			if u, err := uuid.Parse(c.Value); err == nil {
				id = u.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     visitorCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   365 * 24 * 60 * 60,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), visitorKey{}, id)))
	})
}

func visitor(r *http.Request) string {
	id, _ := r.Context().Value(visitorKey{}).(string)
	return id
}

func (s *server) isAdmin(r *http.Request) bool {
	c, err := r.Cookie(adminCookie)
	return err == nil && s.sessions.Valid(c.Value)
}

func (s *server) closeAdmin(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(adminCookie); err == nil {
		s.sessions.Close(c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: adminCookie, Value: "", Path: "/", MaxAge: -1})
}

// safeReturn only allows same-site paths. Control characters are refused
// outright since browsers strip them while parsing Location.
func safeReturn(next string) string {
	for i := 0; i < len(next); i++ {
		if next[i] < 0x20 || next[i] == 0x7f {
			return "/"
		}
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return next
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("encode error: %v", err)
	}
}
