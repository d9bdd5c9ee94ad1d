package main

import (
	"bytes"
	"database/sql"
	"errors"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/Simplici0/rab.works/internal/catalog"
	"github.com/Simplici0/rab.works/internal/config"
	"github.com/Simplici0/rab.works/internal/currency"
	"github.com/Simplici0/rab.works/internal/db"
	"github.com/Simplici0/rab.works/internal/migrations"
	"github.com/Simplici0/rab.works/internal/pricing"
	"github.com/Simplici0/rab.works/internal/rab"
	"github.com/Simplici0/rab.works/internal/seed"
	"github.com/Simplici0/rab.works/web"
)

type server struct {
	auth      *authService
	db        *sql.DB
	catalog   *catalog.Store
	estimates *rab.Store

	// Serializes read-modify-write of an estimate's ledger.
	ledgerMu sync.Mutex
}

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
	User           *session
}

type homeViewData struct {
	baseViewData
	Categories []pricing.WorkCategory
}

type loginViewData struct {
	baseViewData
	Email string
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		log.Fatalf("failed to run database migrations: %v", err)
	}

	stats, err := seed.Run(database, seed.Config{
		AdminEmail:    normalizeEmail(cfg.AdminEmail),
		AdminPassword: cfg.AdminPassword,
		Catalog:       cfg.SeedCatalog,
	})
	if err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}
	log.Printf("seed completed: inserts=%d updates=%d", stats.Inserts, stats.Updates)

	srv := newServer(database, cfg)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.AppEnv)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func newServer(database *sql.DB, cfg config.Config) *server {
	return &server{
		auth:      newAuthService(database, cfg.SessionSecret, time.Duration(cfg.SessionTTLHours)*time.Hour),
		db:        database,
		catalog:   catalog.NewStore(database),
		estimates: rab.NewStore(database),
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.authMiddleware)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/", s.handleHome)
	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLoginSubmit)
	r.Get("/register", s.handleRegisterForm)
	r.Post("/register", s.handleRegisterSubmit)
	r.Post("/logout", s.handleLogout)

	r.Route("/estimates", func(r chi.Router) {
		r.Get("/", s.handleEstimatesList)
		r.Post("/", s.handleEstimateCreate)
		r.Get("/{id}", s.handleEstimateDetail)
		r.Post("/{id}/items", s.handleEstimateAddItem)
		r.Post("/{id}/items/{itemID}/delete", s.handleEstimateRemoveItem)
		r.Post("/{id}/delete", s.handleEstimateDelete)
		r.Get("/{id}/export.xlsx", s.handleEstimateExportXLSX)
		r.Get("/{id}/export.pdf", s.handleEstimateExportPDF)
		r.Get("/{id}/text", s.handleEstimateText)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/auto-price", s.handleAutoPrice)
		r.Get("/work-items", s.handleWorkItems)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(requireAdmin)

		r.Get("/materials", s.handleAdminMaterialsList)
		r.Post("/materials", s.handleAdminMaterialsCreate)
		r.Get("/materials/export.csv", s.handleAdminMaterialsExport)
		r.Post("/materials/import", s.handleAdminMaterialsImport)
		r.Post("/materials/{id}", s.handleAdminMaterialsUpdate)
		r.Post("/materials/{id}/delete", s.handleAdminMaterialsDelete)

		r.Get("/labor", s.handleAdminLaborList)
		r.Post("/labor", s.handleAdminLaborCreate)
		r.Get("/labor/export.csv", s.handleAdminLaborExport)
		r.Post("/labor/import", s.handleAdminLaborImport)
		r.Post("/labor/{id}", s.handleAdminLaborUpdate)
		r.Post("/labor/{id}/delete", s.handleAdminLaborDelete)

		r.Get("/formulas", s.handleAdminFormulas)
	})

	return r
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		log.Printf("[ERROR] health check: %v", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, "home.html", homeViewData{
		baseViewData: pageBase(r),
		Categories:   pricing.Categories(),
	})
}

func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := sessionFrom(r); ok {
		http.Redirect(w, r, "/estimates", http.StatusSeeOther)
		return
	}
	s.renderTemplate(w, "login.html", loginViewData{baseViewData: pageBase(r)})
}

func (s *server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	sess, valid, err := s.auth.validateCredentials(email, password)
	if err != nil {
		log.Printf("[ERROR] login: %v", err)
		http.Error(w, "authentication error", http.StatusInternalServerError)
		return
	}
	if !valid {
		s.renderTemplateStatus(w, http.StatusUnauthorized, "login.html", loginViewData{
			baseViewData: baseViewData{ErrorMessage: "Email atau kata sandi salah."},
			Email:        email,
		})
		return
	}

	if err := s.auth.setSessionCookie(w, sess); err != nil {
		log.Printf("[ERROR] login: %v", err)
		http.Error(w, "authentication error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/estimates", http.StatusSeeOther)
}

func (s *server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, "register.html", loginViewData{baseViewData: pageBase(r)})
}

func (s *server) handleRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	sess, err := s.auth.registerUser(email, r.FormValue("password"))
	switch {
	case errors.Is(err, errEmailTaken), errors.Is(err, errInvalidEmail), errors.Is(err, errPasswordTooWeak):
		s.renderTemplateStatus(w, http.StatusBadRequest, "register.html", loginViewData{
			baseViewData: baseViewData{ErrorMessage: err.Error()},
			Email:        email,
		})
		return
	case err != nil:
		log.Printf("[ERROR] register: %v", err)
		http.Error(w, "failed to register", http.StatusInternalServerError)
		return
	}

	if err := s.auth.setSessionCookie(w, sess); err != nil {
		log.Printf("[ERROR] register: %v", err)
		http.Error(w, "failed to register", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/estimates", http.StatusSeeOther)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

var templateFuncs = template.FuncMap{
	"rupiah": currency.FormatRupiah,
	"number": func(v float64) string { return currency.FormatNumber(v, 3) },
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"inc": func(i int) int { return i + 1 },
}

func (s *server) renderTemplate(w http.ResponseWriter, page string, data any) {
	s.renderTemplateStatus(w, http.StatusOK, page, data)
}

func (s *server) renderTemplateStatus(w http.ResponseWriter, status int, page string, data any) {
	templates, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(
		web.Templates,
		"templates/layout.html",
		"templates/"+page,
	)
	if err != nil {
		log.Printf("[ERROR] parse template %s: %v", page, err)
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		log.Printf("[ERROR] render template %s: %v", page, err)
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// pageBase carries the flash messages from the query string and the signed-in user.
func pageBase(r *http.Request) baseViewData {
	base := baseViewData{
		ErrorMessage:   r.URL.Query().Get("error"),
		SuccessMessage: r.URL.Query().Get("success"),
	}
	if sess, ok := sessionFrom(r); ok {
		base.User = &sess
	}
	return base
}

func redirectWithMessage(w http.ResponseWriter, r *http.Request, path, key, message string) {
	http.Redirect(w, r, path+"?"+key+"="+url.QueryEscape(message), http.StatusSeeOther)
}

func isPublicPath(path string) bool {
	switch path {
	case "/", "/login", "/register", "/healthz":
		return true
	}
	return false
}

// authMiddleware attaches the session to the request context and keeps
// anonymous visitors on the public pages.
func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(r, s.auth)
		if ok {
			r = r.WithContext(withSession(r.Context(), sess))
		}

		if ok || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if strings.HasPrefix(r.URL.Path, "/api/") {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFrom(r)
		if !ok || !sess.IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger tags each request with an id and logs it once the handler returns.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, r.Method, r.URL.Path, status, time.Since(start).Round(time.Microsecond))
	})
}
