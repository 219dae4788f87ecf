package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "maskfold.v1.ProjectionAPI"

// ProjectionAPIServer is the server API for the ProjectionAPI service.
// All methods exchange structpb.Struct messages: masks are nested JSON
// objects on the wire, which Struct models without generated message types.
type ProjectionAPIServer interface {
	Compose(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ComposeWithTemplate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PutTemplate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTemplate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTemplates(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTemplate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterProjectionAPIServer registers the service implementation with the
// gRPC server.
func RegisterProjectionAPIServer(s grpc.ServiceRegistrar, srv ProjectionAPIServer) {
	s.RegisterService(&projectionAPIServiceDesc, srv)
}

func unaryHandler(method string, invoke func(ProjectionAPIServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return invoke(srv.(ProjectionAPIServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + method,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return invoke(srv.(ProjectionAPIServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var projectionAPIServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ProjectionAPIServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("Compose", ProjectionAPIServer.Compose),
		unaryHandler("ComposeWithTemplate", ProjectionAPIServer.ComposeWithTemplate),
		unaryHandler("PutTemplate", ProjectionAPIServer.PutTemplate),
		unaryHandler("GetTemplate", ProjectionAPIServer.GetTemplate),
		unaryHandler("ListTemplates", ProjectionAPIServer.ListTemplates),
		unaryHandler("DeleteTemplate", ProjectionAPIServer.DeleteTemplate),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "maskfold/v1/projection_api.proto",
}
