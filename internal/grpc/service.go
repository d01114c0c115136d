package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "shortlinks.v1.LinkService"

// LinkServiceServer is the server API for shortlinks.v1.LinkService.
type LinkServiceServer interface {
	CreateLink(context.Context, *CreateLinkRequest) (*LinkResponse, error)
	UpdateLink(context.Context, *UpdateLinkRequest) (*LinkResponse, error)
	DeleteLink(context.Context, *DeleteLinkRequest) (*DeleteLinkResponse, error)
	GetLink(context.Context, *GetLinkRequest) (*LinkResponse, error)
	ListLinks(context.Context, *ListLinksRequest) (*ListLinksResponse, error)
	ResolveLink(context.Context, *ResolveLinkRequest) (*LinkResponse, error)
	IncrementClicks(context.Context, *IncrementClicksRequest) (*IncrementClicksResponse, error)
}

func RegisterLinkServiceServer(s grpc.ServiceRegistrar, srv LinkServiceServer) {
	s.RegisterService(&LinkServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unaryHandler builds a grpc.MethodDesc handler for one typed method.
func unaryHandler[Req any, Resp any](name string, call func(LinkServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LinkServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(name),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LinkServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var LinkServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LinkServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateLink", Handler: unaryHandler("CreateLink", LinkServiceServer.CreateLink)},
		{MethodName: "UpdateLink", Handler: unaryHandler("UpdateLink", LinkServiceServer.UpdateLink)},
		{MethodName: "DeleteLink", Handler: unaryHandler("DeleteLink", LinkServiceServer.DeleteLink)},
		{MethodName: "GetLink", Handler: unaryHandler("GetLink", LinkServiceServer.GetLink)},
		{MethodName: "ListLinks", Handler: unaryHandler("ListLinks", LinkServiceServer.ListLinks)},
		{MethodName: "ResolveLink", Handler: unaryHandler("ResolveLink", LinkServiceServer.ResolveLink)},
		{MethodName: "IncrementClicks", Handler: unaryHandler("IncrementClicks", LinkServiceServer.IncrementClicks)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shortlinks/v1/link_service",
}
