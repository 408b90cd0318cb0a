package proto

import "time"

// CreateLinkRequest запрос на создание ссылки. Пустой Slug означает сгенерированный.
type CreateLinkRequest struct {
	URL          string `json:"url"`
	Slug         string `json:"slug,omitempty"`
	AccountToken string `json:"account_token,omitempty"`
}

// CreateLinkResponse созданная ссылка
type CreateLinkResponse struct {
	Slug     string `json:"slug"`
	ShortURL string `json:"short_url"`
}

// ResolveLinkRequest запрос ссылки по слагу
type ResolveLinkRequest struct {
	Slug string `json:"slug"`
}

// ResolveLinkResponse найденная ссылка
type ResolveLinkResponse struct {
	Slug       string    `json:"slug"`
	TargetURL  string    `json:"target_url"`
	CreatedAt  time.Time `json:"created_at"`
	VisitCount uint64    `json:"visit_count"`
}

// PingRequest пустой запрос проверки хранилища
type PingRequest struct{}

// PingResponse пустой ответ проверки хранилища
type PingResponse struct{}

// GetStatsRequest пустой запрос статистики
type GetStatsRequest struct{}

// GetStatsResponse статистика сервиса
type GetStatsResponse struct {
	Links         int64 `json:"links"`
	Visits        int64 `json:"visits"`
	DroppedVisits int64 `json:"dropped_visits"`
}
