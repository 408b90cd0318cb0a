// Package grpc содержит gRPC сервер сервиса коротких ссылок
package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/tempizhere/surl/internal/grpc/proto"
	"github.com/tempizhere/surl/internal/repository"
	"github.com/tempizhere/surl/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DropCounter сообщает число отброшенных событий аналитики
type DropCounter interface {
	Dropped() int64
}

// Server реализует proto.ShortenerServer поверх service.Service
type Server struct {
	svc     *service.Service
	dropped DropCounter
	logger  *zap.Logger
}

var _ proto.ShortenerServer = (*Server)(nil)

// NewServer создаёт новый gRPC сервер. dropped может быть nil.
func NewServer(svc *service.Service, dropped DropCounter, logger *zap.Logger) *Server {
	return &Server{
		svc:     svc,
		dropped: dropped,
		logger:  logger,
	}
}

// NewGRPCServer создаёт grpc.Server с интерцепторами и зарегистрированным сервисом
func NewGRPCServer(srv *Server, adminToken string, logger *zap.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(
		LoggingInterceptor(logger),
		AdminInterceptor(adminToken, logger, proto.GetStatsMethod),
	))
	gs := grpc.NewServer(opts...)
	proto.RegisterShortenerServer(gs, srv)
	return gs
}

// CreateLink создаёт короткую ссылку
func (s *Server) CreateLink(ctx context.Context, req *proto.CreateLinkRequest) (*proto.CreateLinkResponse, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, status.Error(codes.InvalidArgument, "url is required")
	}

	link, err := s.svc.CreateLink(ctx, req.URL, strings.TrimSpace(req.AccountToken), strings.TrimSpace(req.Slug))
	if err != nil {
		return nil, s.mapError(err)
	}
	return &proto.CreateLinkResponse{
		Slug:     link.Slug,
		ShortURL: s.svc.ShortURL(link.Slug),
	}, nil
}

// ResolveLink возвращает ссылку по слагу. Переход не засчитывается.
func (s *Server) ResolveLink(ctx context.Context, req *proto.ResolveLinkRequest) (*proto.ResolveLinkResponse, error) {
	if req.Slug == "" {
		return nil, status.Error(codes.InvalidArgument, "slug is required")
	}

	link, err := s.svc.Resolve(ctx, req.Slug)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &proto.ResolveLinkResponse{
		Slug:       link.Slug,
		TargetURL:  link.TargetURL,
		CreatedAt:  link.CreatedAt,
		VisitCount: link.VisitCount,
	}, nil
}

// Ping проверяет доступность хранилища
func (s *Server) Ping(ctx context.Context, _ *proto.PingRequest) (*proto.PingResponse, error) {
	if err := s.svc.Ping(ctx); err != nil {
		return nil, s.mapError(err)
	}
	return &proto.PingResponse{}, nil
}

// GetStats возвращает статистику сервиса
func (s *Server) GetStats(ctx context.Context, _ *proto.GetStatsRequest) (*proto.GetStatsResponse, error) {
	stats, err := s.svc.Stats(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	resp := &proto.GetStatsResponse{Links: stats.Links, Visits: stats.Visits}
	if s.dropped != nil {
		resp.DroppedVisits = s.dropped.Dropped()
	}
	return resp, nil
}

// mapError преобразует ошибки сервиса в gRPC статусы
func (s *Server) mapError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidURL), errors.Is(err, service.ErrSlugInvalid):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrSlugTaken):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, service.ErrSlugSpaceExhausted):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return status.Error(codes.NotFound, "link not found")
	case errors.Is(err, repository.ErrStoreUnavailable):
		s.logger.Error("Store unavailable", zap.Error(err))
		return status.Error(codes.Unavailable, "store unavailable")
	default:
		s.logger.Error("Internal server error", zap.Error(err))
		return status.Error(codes.Internal, "internal server error")
	}
}
