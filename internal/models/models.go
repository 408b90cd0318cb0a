// Package models содержит общие типы данных сервиса коротких ссылок.
package models

import "time"

// Link описывает сохранённую короткую ссылку
type Link struct {
	Slug       string    `json:"slug"`
	TargetURL  string    `json:"target_url"`
	OwnerToken string    `json:"owner_token,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	VisitCount uint64    `json:"visit_count"`
}

// VisitEvent описывает один переход по короткой ссылке.
// Живёт только до момента записи аналитики.
type VisitEvent struct {
	Slug          string
	Timestamp     time.Time
	ClientAddress string
	Anonymized    bool
}

// VisitRecord строка журнала переходов в режиме full.
// Пустой ClientAddress сохраняется как NULL.
type VisitRecord struct {
	Slug          string
	VisitedAt     time.Time
	ClientAddress string
}

// Stats агрегированная статистика хранилища
type Stats struct {
	Links  int64 `json:"links"`
	Visits int64 `json:"visits"`
}

// CreateLinkRequest тело запроса на создание ссылки
type CreateLinkRequest struct {
	URL          string `json:"url"`
	AccountToken string `json:"account_token,omitempty"`
	Slug         string `json:"slug,omitempty"`
}

// CreateLinkResponse ответ с созданной ссылкой
type CreateLinkResponse struct {
	Slug     string `json:"slug"`
	ShortURL string `json:"short_url"`
}

// LinkResponse элемент списка ссылок владельца
type LinkResponse struct {
	Slug       string    `json:"slug"`
	ShortURL   string    `json:"short_url"`
	TargetURL  string    `json:"target_url"`
	CreatedAt  time.Time `json:"created_at"`
	VisitCount uint64    `json:"visit_count"`
}

// StatsResponse ответ служебного эндпоинта статистики
type StatsResponse struct {
	Links         int64 `json:"links"`
	Visits        int64 `json:"visits"`
	DroppedVisits int64 `json:"dropped_visits"`
}

// ErrorResponse структурированная ошибка API
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
