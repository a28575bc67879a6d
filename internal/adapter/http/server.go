package adapthttp

import (
	"io"
	"log/slog"
	"net/http"

	"board/internal/app"

	"github.com/prometheus/client_golang/prometheus"
)

// Options configures a Server.
type Options struct {
	Posts   *app.PostService
	Members *app.MemberService
	Auth    *app.AuthService
	Status  *app.StatusService

	Logger   *slog.Logger
	Registry *prometheus.Registry
	WebDir   string

	CookieSecure   bool
	AllowAnonymous bool
	OIDC           OIDCConfig
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	posts   *app.PostService
	members *app.MemberService
	auth    *app.AuthService
	status  *app.StatusService

	log     *slog.Logger
	metrics *Metrics
	webDir  string

	cookieSecure   bool
	allowAnonymous bool
	oidcConfig     OIDCConfig
}

// New creates a Server wired to the given application services.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Server{
		posts:          opts.Posts,
		members:        opts.Members,
		auth:           opts.Auth,
		status:         opts.Status,
		log:            logger,
		metrics:        NewMetrics(reg),
		webDir:         opts.WebDir,
		cookieSecure:   opts.CookieSecure,
		allowAnonymous: opts.AllowAnonymous,
		oidcConfig:     opts.OIDC,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Reachable without a session.
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/auth/me", s.handleMe)
	mux.HandleFunc("GET /api/auth/config", s.handleConfig)
	mux.HandleFunc("GET /api/auth/sso/login", s.handleSSOLogin)
	mux.HandleFunc("GET /api/auth/sso/callback", s.handleSSOCallback)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("GET /api/db-check", s.requireLogin(s.handleDBCheck))

	mux.HandleFunc("GET /api/posts", s.postRoute(s.handleListPosts))
	mux.HandleFunc("POST /api/posts", s.postRoute(s.handleCreatePost))
	mux.HandleFunc("GET /api/posts/{id}", s.postRoute(s.handleGetPost))
	mux.HandleFunc("PUT /api/posts/{id}", s.postRoute(s.handleUpdatePost))
	mux.HandleFunc("DELETE /api/posts/{id}", s.postRoute(s.handleDeletePost))

	mux.HandleFunc("GET /api/admin/members", s.requireLogin(s.handleListMembers))
	mux.HandleFunc("PUT /api/admin/members/{id}/blacklist", s.requireLogin(s.handleBlacklist))

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, msgNotFound)
	})
	mux.Handle("/", spaFromDisk(s.webDir))

	return withNoCache(s.loggingMiddleware(s.identityMiddleware(s.metrics.Middleware(mux))))
}
