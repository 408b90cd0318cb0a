// Package service реализует выдачу слагов и поиск ссылок.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tempizhere/surl/internal/models"
	"github.com/tempizhere/surl/internal/repository"
	"github.com/tempizhere/surl/internal/slug"
	"go.uber.org/zap"
)

var (
	ErrInvalidURL         = errors.New("invalid target URL")
	ErrSlugInvalid        = errors.New("slug is invalid or reserved")
	ErrSlugTaken          = errors.New("slug already taken")
	ErrSlugSpaceExhausted = errors.New("slug space exhausted")
)

// DefaultMaxAttempts число попыток генерации слага по умолчанию
const DefaultMaxAttempts = 8

// VisitQueue принимает переходы для фоновой записи аналитики
type VisitQueue interface {
	Visit(slug, clientAddr string, at time.Time) bool
}

// Service реализует логику работы с короткими ссылками
type Service struct {
	repo        repository.Repository
	policy      *slug.Policy
	reserved    *slug.ReservedSet
	visits      VisitQueue
	baseURL     string
	maxAttempts int
	logger      *zap.Logger
	now         func() time.Time
}

// NewService создаёт новый экземпляр Service.
// visits может быть nil, тогда переходы не записываются.
func NewService(repo repository.Repository, policy *slug.Policy, reserved *slug.ReservedSet,
	visits VisitQueue, baseURL string, maxAttempts int, logger *zap.Logger) *Service {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Service{
		repo:        repo,
		policy:      policy,
		reserved:    reserved,
		visits:      visits,
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxAttempts: maxAttempts,
		logger:      logger,
		now:         time.Now,
	}
}

// Policy возвращает политику слагов
func (s *Service) Policy() *slug.Policy {
	return s.policy
}

// ValidateTargetURL проверяет, что адрес абсолютный http(s) URL
func ValidateTargetURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return raw, nil
}

// CreateLink создаёт ссылку на targetURL.
// Пустой vanity означает сгенерированный слаг: коллизии повторяются до maxAttempts,
// зарезервированные кандидаты отбрасываются без обращения к хранилищу.
// Заданный vanity не повторяется: ErrSlugInvalid или ErrSlugTaken сразу.
func (s *Service) CreateLink(ctx context.Context, targetURL, owner, vanity string) (*models.Link, error) {
	target, err := ValidateTargetURL(targetURL)
	if err != nil {
		return nil, err
	}

	if vanity != "" {
		return s.createVanity(ctx, target, owner, vanity)
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		candidate, err := s.policy.Generate()
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}
		if s.reserved.Contains(candidate) {
			s.logger.Debug("Generated slug is reserved", zap.String("slug", candidate), zap.Int("attempt", attempt))
			continue
		}

		link := &models.Link{Slug: candidate, TargetURL: target, OwnerToken: owner, CreatedAt: s.now().UTC()}
		ok, err := s.repo.CreateIfAbsent(ctx, link)
		if err != nil {
			return nil, err
		}
		if ok {
			return link, nil
		}
		s.logger.Debug("Slug collision, retrying", zap.String("slug", candidate), zap.Int("attempt", attempt))
	}

	s.logger.Error("Slug space exhausted",
		zap.Int("attempts", s.maxAttempts),
		zap.Int("min_len", s.policy.MinLen()),
		zap.Int("max_len", s.policy.MaxLen()))
	return nil, ErrSlugSpaceExhausted
}

func (s *Service) createVanity(ctx context.Context, target, owner, vanity string) (*models.Link, error) {
	if !s.policy.Validate(vanity) || s.reserved.Contains(vanity) {
		return nil, ErrSlugInvalid
	}
	link := &models.Link{Slug: vanity, TargetURL: target, OwnerToken: owner, CreatedAt: s.now().UTC()}
	ok, err := s.repo.CreateIfAbsent(ctx, link)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSlugTaken
	}
	return link, nil
}

// Resolve возвращает ссылку по слагу.
// repository.ErrNotFound означает отсутствие слага, repository.ErrStoreUnavailable недоступность хранилища.
func (s *Service) Resolve(ctx context.Context, slugValue string) (*models.Link, error) {
	return s.repo.GetBySlug(ctx, slugValue)
}

// RecordVisit передаёт переход в очередь аналитики и никогда не блокирует
func (s *Service) RecordVisit(slugValue, clientAddr string) {
	if s.visits == nil {
		return
	}
	if !s.visits.Visit(slugValue, clientAddr, s.now()) {
		s.logger.Debug("Visit not recorded", zap.String("slug", slugValue))
	}
}

// ShortURL строит полный короткий адрес
func (s *Service) ShortURL(slugValue string) string {
	return s.baseURL + "/" + slugValue
}

// ListByOwner возвращает ссылки владельца
func (s *Service) ListByOwner(ctx context.Context, owner string) ([]models.Link, error) {
	if owner == "" {
		return nil, nil
	}
	return s.repo.ListByOwner(ctx, owner)
}

// Stats возвращает статистику хранилища
func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	return s.repo.Stats(ctx)
}

// Ping проверяет доступность хранилища
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
