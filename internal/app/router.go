package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/tempizhere/surl/internal/auth"
	"github.com/tempizhere/surl/internal/clientip"
	"github.com/tempizhere/surl/internal/middleware"
	"go.uber.org/zap"
)

// SystemRoutes первые сегменты путей, занятых сервисом.
// Добавляются к зарезервированным слагам, чтобы ссылка не перекрыла маршрут.
var SystemRoutes = []string{"healthz", "readyz", "api", "shorten", "static", "assets", "admin"}

// RouterConfig зависимости маршрутизатора
type RouterConfig struct {
	Resolver   *clientip.Resolver
	Tokens     *auth.Tokens
	AdminToken string
	Logger     *zap.Logger
}

// NewRouter собирает chi роутер с middleware и маршрутами приложения
func NewRouter(a *App, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.ClientIPMiddleware(cfg.Resolver))
	r.Use(middleware.LoggingMiddleware(cfg.Logger))
	r.Use(chimw.Compress(5))

	owner := middleware.OwnerMiddleware(cfg.Tokens, cfg.Logger)

	r.Get("/", a.HandleLanding)
	r.Get("/healthz", a.HandleHealthz)
	r.Get("/readyz", a.HandleReadyz)
	r.With(owner).Post("/shorten", a.HandleShorten)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(owner)
			r.Post("/shorten", a.HandleShorten)
			r.Get("/links", a.HandleLinks)
		})
		r.With(middleware.AdminTokenMiddleware(cfg.AdminToken, cfg.Logger)).Get("/internal/stats", a.HandleStats)
	})

	r.Get("/{slug}", a.HandleRedirect)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, CodeNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, CodeInvalidRequest, "Method not allowed")
	})

	return r
}
