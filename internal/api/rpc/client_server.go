package rpc

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/censudex/clients-service/internal/api/metrics"
	"github.com/censudex/clients-service/internal/core/ports"
)

const transport = "grpc"

// clientServer adapts ports.ClientService to clients.ClientService.
type clientServer struct {
	service ports.ClientService
	logger  zerolog.Logger
}

var _ ClientServiceServer = (*clientServer)(nil)

// observe records the outcome of operation and replaces *err with its gRPC
// status.
func (s *clientServer) observe(operation, method string, start time.Time, err *error) {
	metrics.ObserveOperation(transport, operation, start, *err)
	*err = toStatus(*err, s.logger, method)
}

func (s *clientServer) CreateClient(ctx context.Context, req *CreateClientRequest) (_ *ClientResponse, err error) {
	defer s.observe("create", MethodCreateClient, time.Now(), &err)

	detail, err := s.service.CreateClient(ctx, ports.CreateClientInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		BirthDate: req.BirthDate,
		Address:   req.Address,
		Phone:     req.Phone,
		Role:      req.Role,
	})
	if err != nil {
		return nil, err
	}

	resp := detailResponse(detail)
	resp.Message = "client created successfully"
	return resp, nil
}

func (s *clientServer) GetAllClients(ctx context.Context, req *GetAllClientsRequest) (_ *GetAllClientsResponse, err error) {
	defer s.observe("list", MethodGetAllClients, time.Now(), &err)

	result, err := s.service.ListClients(ctx, ports.ListClientsInput{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		IsActive: req.IsActive,
	})
	if err != nil {
		return nil, err
	}

	out := &GetAllClientsResponse{Count: result.Count, Clients: make([]*ClientResponse, 0, len(result.Items))}
	for _, item := range result.Items {
		out.Clients = append(out.Clients, summaryResponse(item))
	}
	return out, nil
}

func (s *clientServer) GetClientById(ctx context.Context, req *GetClientByIdRequest) (_ *ClientResponse, err error) {
	defer s.observe("get", MethodGetClientById, time.Now(), &err)

	detail, err := s.service.GetClient(ctx, ports.GetClientInput{
		ID:               req.ID,
		IncludeSensitive: req.IncludePassword,
	})
	if err != nil {
		return nil, err
	}
	return detailResponse(detail), nil
}

func (s *clientServer) UpdateClient(ctx context.Context, req *UpdateClientRequest) (_ *ClientResponse, err error) {
	defer s.observe("update", MethodUpdateClient, time.Now(), &err)

	detail, err := s.service.UpdateClient(ctx, ports.UpdateClientInput{
		ID:        req.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Username:  req.Username,
		BirthDate: req.BirthDate,
		Address:   req.Address,
		Phone:     req.Phone,
		IsActive:  req.IsActive,
	})
	if err != nil {
		return nil, err
	}

	resp := detailResponse(detail)
	resp.Message = "client updated successfully"
	return resp, nil
}

func (s *clientServer) UpdatePassword(ctx context.Context, req *UpdatePasswordRequest) (_ *MessageResponse, err error) {
	defer s.observe("update_password", MethodUpdatePassword, time.Now(), &err)

	err = s.service.UpdatePassword(ctx, ports.UpdatePasswordInput{ID: req.ID, Password: req.Password})
	if err != nil {
		return nil, err
	}
	return &MessageResponse{Message: "password updated successfully"}, nil
}

func (s *clientServer) DeleteClient(ctx context.Context, req *DeleteClientRequest) (_ *MessageResponse, err error) {
	defer s.observe("delete", MethodDeleteClient, time.Now(), &err)

	if err = s.service.DeleteClient(ctx, req.ID); err != nil {
		return nil, err
	}
	return &MessageResponse{Message: "client deleted successfully"}, nil
}

func (s *clientServer) VerifyCredentials(ctx context.Context, req *VerifyCredentialsRequest) (_ *ClientResponse, err error) {
	defer s.observe("verify_credentials", MethodVerifyCredentials, time.Now(), &err)

	detail, err := s.service.VerifyCredentials(ctx, ports.VerifyCredentialsInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}
	return detailResponse(detail), nil
}

func detailResponse(d *ports.ClientDetail) *ClientResponse {
	return &ClientResponse{
		ID:        d.ID,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Username:  d.Username,
		Password:  d.PasswordHash,
		BirthDate: d.BirthDate,
		Address:   d.Address,
		Phone:     d.Phone,
		Role:      d.Role,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: d.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func summaryResponse(s ports.ClientSummary) *ClientResponse {
	return &ClientResponse{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		Username:  s.Username,
		BirthDate: s.BirthDate,
		Address:   s.Address,
		Phone:     s.Phone,
		Role:      s.Role,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
	}
}
