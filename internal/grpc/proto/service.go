// Package proto описывает gRPC сервис surl.v1.Shortener.
// Описание сервиса написано вручную, сообщения передаются в JSON.
package proto

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName полное имя сервиса
const ServiceName = "surl.v1.Shortener"

// Полные имена методов
const (
	CreateLinkMethod  = "/" + ServiceName + "/CreateLink"
	ResolveLinkMethod = "/" + ServiceName + "/ResolveLink"
	PingMethod        = "/" + ServiceName + "/Ping"
	GetStatsMethod    = "/" + ServiceName + "/GetStats"
)

// ShortenerServer серверная часть сервиса
type ShortenerServer interface {
	CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResponse, error)
	ResolveLink(ctx context.Context, req *ResolveLinkRequest) (*ResolveLinkResponse, error)
	Ping(ctx context.Context, req *PingRequest) (*PingResponse, error)
	GetStats(ctx context.Context, req *GetStatsRequest) (*GetStatsResponse, error)
}

// unaryHandler строит обработчик метода: декодирует запрос и пропускает его через интерцептор
func unaryHandler[Req, Resp any](fullMethod string, call func(ShortenerServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ShortenerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ShortenerServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ShortenerServiceDesc описание сервиса для grpc.Server
var ShortenerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ShortenerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateLink", Handler: unaryHandler(CreateLinkMethod, ShortenerServer.CreateLink)},
		{MethodName: "ResolveLink", Handler: unaryHandler(ResolveLinkMethod, ShortenerServer.ResolveLink)},
		{MethodName: "Ping", Handler: unaryHandler(PingMethod, ShortenerServer.Ping)},
		{MethodName: "GetStats", Handler: unaryHandler(GetStatsMethod, ShortenerServer.GetStats)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "surl/v1/shortener",
}

// RegisterShortenerServer регистрирует реализацию сервиса
func RegisterShortenerServer(s grpc.ServiceRegistrar, srv ShortenerServer) {
	s.RegisterService(&ShortenerServiceDesc, srv)
}

// ShortenerClient клиент сервиса. Все вызовы идут с JSON кодеком.
type ShortenerClient struct {
	cc grpc.ClientConnInterface
}

// NewShortenerClient создаёт клиента поверх соединения
func NewShortenerClient(cc grpc.ClientConnInterface) *ShortenerClient {
	return &ShortenerClient{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateLink создаёт короткую ссылку
func (c *ShortenerClient) CreateLink(ctx context.Context, in *CreateLinkRequest, opts ...grpc.CallOption) (*CreateLinkResponse, error) {
	return invoke[CreateLinkRequest, CreateLinkResponse](ctx, c.cc, CreateLinkMethod, in, opts)
}

// ResolveLink возвращает ссылку по слагу
func (c *ShortenerClient) ResolveLink(ctx context.Context, in *ResolveLinkRequest, opts ...grpc.CallOption) (*ResolveLinkResponse, error) {
	return invoke[ResolveLinkRequest, ResolveLinkResponse](ctx, c.cc, ResolveLinkMethod, in, opts)
}

// Ping проверяет доступность хранилища
func (c *ShortenerClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingRequest, PingResponse](ctx, c.cc, PingMethod, in, opts)
}

// GetStats возвращает статистику, требует служебный токен в metadata authorization
func (c *ShortenerClient) GetStats(ctx context.Context, in *GetStatsRequest, opts ...grpc.CallOption) (*GetStatsResponse, error) {
	return invoke[GetStatsRequest, GetStatsResponse](ctx, c.cc, GetStatsMethod, in, opts)
}
