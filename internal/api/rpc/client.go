package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ClientServiceClient is a typed client for clients.ClientService. Every call
// uses the JSON content-subtype.
type ClientServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewClientServiceClient(cc grpc.ClientConnInterface) *ClientServiceClient {
	return &ClientServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ClientServiceClient) CreateClient(ctx context.Context, in *CreateClientRequest, opts ...grpc.CallOption) (*ClientResponse, error) {
	return invoke[ClientResponse](ctx, c.cc, MethodCreateClient, in, opts)
}

func (c *ClientServiceClient) GetAllClients(ctx context.Context, in *GetAllClientsRequest, opts ...grpc.CallOption) (*GetAllClientsResponse, error) {
	return invoke[GetAllClientsResponse](ctx, c.cc, MethodGetAllClients, in, opts)
}

func (c *ClientServiceClient) GetClientById(ctx context.Context, in *GetClientByIdRequest, opts ...grpc.CallOption) (*ClientResponse, error) {
	return invoke[ClientResponse](ctx, c.cc, MethodGetClientById, in, opts)
}

func (c *ClientServiceClient) UpdateClient(ctx context.Context, in *UpdateClientRequest, opts ...grpc.CallOption) (*ClientResponse, error) {
	return invoke[ClientResponse](ctx, c.cc, MethodUpdateClient, in, opts)
}

func (c *ClientServiceClient) UpdatePassword(ctx context.Context, in *UpdatePasswordRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	return invoke[MessageResponse](ctx, c.cc, MethodUpdatePassword, in, opts)
}

func (c *ClientServiceClient) DeleteClient(ctx context.Context, in *DeleteClientRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	return invoke[MessageResponse](ctx, c.cc, MethodDeleteClient, in, opts)
}

func (c *ClientServiceClient) VerifyCredentials(ctx context.Context, in *VerifyCredentialsRequest, opts ...grpc.CallOption) (*ClientResponse, error) {
	return invoke[ClientResponse](ctx, c.cc, MethodVerifyCredentials, in, opts)
}
