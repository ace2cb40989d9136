package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "clients.ClientService"

const (
	MethodCreateClient      = "/" + ServiceName + "/CreateClient"
	MethodGetAllClients     = "/" + ServiceName + "/GetAllClients"
	MethodGetClientById     = "/" + ServiceName + "/GetClientById"
	MethodUpdateClient      = "/" + ServiceName + "/UpdateClient"
	MethodUpdatePassword    = "/" + ServiceName + "/UpdatePassword"
	MethodDeleteClient      = "/" + ServiceName + "/DeleteClient"
	MethodVerifyCredentials = "/" + ServiceName + "/VerifyCredentials"
)

// ClientServiceServer is the server API for clients.ClientService.
type ClientServiceServer interface {
	CreateClient(context.Context, *CreateClientRequest) (*ClientResponse, error)
	GetAllClients(context.Context, *GetAllClientsRequest) (*GetAllClientsResponse, error)
	GetClientById(context.Context, *GetClientByIdRequest) (*ClientResponse, error)
	UpdateClient(context.Context, *UpdateClientRequest) (*ClientResponse, error)
	UpdatePassword(context.Context, *UpdatePasswordRequest) (*MessageResponse, error)
	DeleteClient(context.Context, *DeleteClientRequest) (*MessageResponse, error)
	VerifyCredentials(context.Context, *VerifyCredentialsRequest) (*ClientResponse, error)
}

// RegisterClientServiceServer registers srv on s.
func RegisterClientServiceServer(s grpc.ServiceRegistrar, srv ClientServiceServer) {
	s.RegisterService(&ClientServiceDesc, srv)
}

// ClientServiceDesc describes clients.ClientService for grpc.Server.
var ClientServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ClientServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateClient", ClientServiceServer.CreateClient),
		unaryMethod("GetAllClients", ClientServiceServer.GetAllClients),
		unaryMethod("GetClientById", ClientServiceServer.GetClientById),
		unaryMethod("UpdateClient", ClientServiceServer.UpdateClient),
		unaryMethod("UpdatePassword", ClientServiceServer.UpdatePassword),
		unaryMethod("DeleteClient", ClientServiceServer.DeleteClient),
		unaryMethod("VerifyCredentials", ClientServiceServer.VerifyCredentials),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clients.proto",
}

func unaryMethod[Req, Resp any](
	name string,
	call func(ClientServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ClientServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ClientServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
