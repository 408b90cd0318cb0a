// Package app содержит HTTP обработчики сервиса коротких ссылок.
package app

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/tempizhere/surl/internal/clientip"
	"github.com/tempizhere/surl/internal/middleware"
	"github.com/tempizhere/surl/internal/models"
	"github.com/tempizhere/surl/internal/repository"
	"github.com/tempizhere/surl/internal/service"
	"go.uber.org/zap"
)

const maxBodySize = 1 << 20

// DropCounter сообщает число отброшенных событий аналитики
type DropCounter interface {
	Dropped() int64
}

// App содержит хендлеры и зависимости
type App struct {
	svc            *service.Service
	dropped        DropCounter
	forceStatus301 bool
	logger         *zap.Logger
}

// NewApp создаёт новое приложение. dropped может быть nil.
func NewApp(svc *service.Service, dropped DropCounter, forceStatus301 bool, logger *zap.Logger) *App {
	return &App{svc: svc, dropped: dropped, forceStatus301: forceStatus301, logger: logger}
}

func (a *App) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("uri", r.RequestURI),
			zap.String("code", code),
			zap.Error(err))
	}
	middleware.WriteError(w, status, code, errorMessage(status, err))
}

// HandleLanding обрабатывает GET /
func (a *App) HandleLanding(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "surl: POST /api/shorten {\"url\": \"https://...\"} to get a short link\n")
}

// HandleHealthz сообщает, что процесс жив
func (a *App) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// HandleReadyz проверяет доступность хранилища
func (a *App) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Ping(r.Context()); err != nil {
		a.logger.Warn("Store is not ready", zap.Error(err))
		middleware.WriteError(w, http.StatusServiceUnavailable, CodeStoreUnavailable, "Store unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ready")
}

// decodeCreateRequest читает JSON или форму с полями url, account_token, slug
func decodeCreateRequest(r *http.Request) (models.CreateLinkRequest, error) {
	var req models.CreateLinkRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
		return req, nil
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.URL = r.PostForm.Get("url")
	req.AccountToken = r.PostForm.Get("account_token")
	req.Slug = r.PostForm.Get("slug")
	return req, nil
}

// HandleShorten обрабатывает POST /shorten и /api/shorten
func (a *App) HandleShorten(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	req, err := decodeCreateRequest(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body")
		return
	}

	owner := strings.TrimSpace(req.AccountToken)
	if owner == "" {
		owner, _ = middleware.GetOwnerID(r)
	}

	link, err := a.svc.CreateLink(r.Context(), req.URL, owner, strings.TrimSpace(req.Slug))
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, models.CreateLinkResponse{
		Slug:     link.Slug,
		ShortURL: a.svc.ShortURL(link.Slug),
	})
}

// HandleRedirect обрабатывает GET /{slug}.
// 404 означает только отсутствие слага, сбой хранилища отдаётся как 503.
func (a *App) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	slugValue := chi.URLParam(r, "slug")
	if slugValue == "" {
		middleware.WriteError(w, http.StatusNotFound, CodeNotFound, "Link not found")
		return
	}

	link, err := a.svc.Resolve(r.Context(), slugValue)
	if errors.Is(err, repository.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, CodeNotFound, "Link not found")
		return
	}
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	ip, ok := middleware.GetClientIP(r)
	if !ok {
		ip = clientip.HostOnly(r.RemoteAddr)
	}
	a.svc.RecordVisit(link.Slug, ip)

	status := http.StatusFound
	if a.forceStatus301 {
		status = http.StatusMovedPermanently
	}
	w.Header().Set("Location", link.TargetURL)
	w.WriteHeader(status)
}

// HandleLinks возвращает ссылки владельца из cookie
func (a *App) HandleLinks(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.GetOwnerID(r)
	if token := strings.TrimSpace(r.URL.Query().Get("account_token")); token != "" {
		owner = token
	}

	links, err := a.svc.ListByOwner(r.Context(), owner)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	resp := make([]models.LinkResponse, 0, len(links))
	for _, l := range links {
		resp = append(resp, models.LinkResponse{
			Slug:       l.Slug,
			ShortURL:   a.svc.ShortURL(l.Slug),
			TargetURL:  l.TargetURL,
			CreatedAt:  l.CreatedAt,
			VisitCount: l.VisitCount,
		})
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

// HandleStats возвращает статистику сервиса
func (a *App) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.svc.Stats(r.Context())
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	resp := models.StatsResponse{Links: stats.Links, Visits: stats.Visits}
	if a.dropped != nil {
		resp.DroppedVisits = a.dropped.Dropped()
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}
