package rpc

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/censudex/clients-service/internal/core/domain"
	"github.com/censudex/clients-service/internal/core/ports"
	"github.com/censudex/clients-service/internal/core/service"
	"github.com/censudex/clients-service/internal/core/validation"
	"github.com/censudex/clients-service/internal/infrastructure/db/memory"
	"github.com/censudex/clients-service/internal/infrastructure/security"
	"github.com/censudex/clients-service/internal/pkg/token"
)

func startServer(t *testing.T, svc ports.ClientService, secret string) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := NewServer(Config{JWTSecret: secret}, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		select {
		case err := <-errc:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return conn
}

func newService() ports.ClientService {
	return service.NewClientService(
		memory.NewClientRepository(),
		security.NewBcryptCodec(4),
		validation.New(validation.Options{}),
		zerolog.Nop(),
	)
}

func juanRequest() *CreateClientRequest {
	return &CreateClientRequest{
		FirstName: "Juan",
		LastName:  "Pérez",
		Email:     "juan.perez@censudex.cl",
		Username:  "juanperez",
		Password:  "Secret123!",
		BirthDate: "1990-05-15",
		Address:   "Av. Siempre Viva 742",
		Phone:     "+56912345678",
	}
}

func TestClientService_Lifecycle(t *testing.T) {
	client := NewClientServiceClient(startServer(t, newService(), ""))
	ctx := context.Background()

	created, err := client.CreateClient(ctx, juanRequest())
	require.NoError(t, err)
	assert.Equal(t, "client created successfully", created.Message)
	assert.Empty(t, created.Password)
	assert.True(t, created.IsActive)
	_, err = time.Parse(time.RFC3339, created.CreatedAt)
	assert.NoError(t, err)

	dup := juanRequest()
	dup.Email = "otro@censudex.cl"
	_, err = client.CreateClient(ctx, dup)
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	got, err := client.GetClientById(ctx, &GetClientByIdRequest{ID: created.ID, IncludePassword: true})
	require.NoError(t, err)
	assert.NotEmpty(t, got.Password)
	assert.NotEqual(t, "Secret123!", got.Password)

	phone := "+56987654321"
	updated, err := client.UpdateClient(ctx, &UpdateClientRequest{ID: created.ID, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, "client updated successfully", updated.Message)

	_, err = client.UpdatePassword(ctx, &UpdatePasswordRequest{ID: created.ID, Password: "NewPass456@"})
	require.NoError(t, err)

	_, err = client.VerifyCredentials(ctx, &VerifyCredentialsRequest{Username: "juanperez", Password: "Secret123!"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	verified, err := client.VerifyCredentials(ctx, &VerifyCredentialsRequest{Username: "juanperez", Password: "NewPass456@"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, verified.ID)

	list, err := client.GetAllClients(ctx, &GetAllClientsRequest{Name: "pérez", IsActive: "true"})
	require.NoError(t, err)
	require.Equal(t, 1, list.Count)
	assert.Empty(t, list.Clients[0].UpdatedAt)

	msg, err := client.DeleteClient(ctx, &DeleteClientRequest{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, "client deleted successfully", msg.Message)

	_, err = client.GetClientById(ctx, &GetClientByIdRequest{ID: created.ID})
	assert.Equal(t, codes.NotFound, status.Code(err))

	list, err = client.GetAllClients(ctx, &GetAllClientsRequest{})
	require.NoError(t, err)
	assert.Zero(t, list.Count)
	assert.NotNil(t, list.Clients)
}

func TestClientService_InvalidArgumentCarriesViolations(t *testing.T) {
	client := NewClientServiceClient(startServer(t, newService(), ""))

	req := juanRequest()
	req.Email = "juan@gmail.com"
	req.Password = "short"
	_, err := client.CreateClient(context.Background(), req)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	fields := map[string]bool{}
	for _, v := range Violations(err) {
		fields[v.Field] = true
	}
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])

	_, err = client.GetClientById(context.Background(), &GetClientByIdRequest{ID: "nope"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.GetClientById(context.Background(), &GetClientByIdRequest{ID: uuid.NewString()})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestClientService_Health(t *testing.T) {
	conn := startServer(t, newService(), "secret")

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestClientService_BearerAuth(t *testing.T) {
	client := NewClientServiceClient(startServer(t, newService(), "secret"))

	_, err := client.GetAllClients(context.Background(), &GetAllClientsRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	signed, err := token.Issue("secret", "admin-id", "admin", "admin", time.Hour)
	require.NoError(t, err)
	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+signed)
	_, err = client.GetAllClients(ctx, &GetAllClientsRequest{})
	assert.NoError(t, err)
}

func TestLoggingInterceptor_RecordsAuthenticatedCaller(t *testing.T) {
	var buf bytes.Buffer
	logging := loggingInterceptor(zerolog.New(&buf))
	auth := authInterceptor("secret")
	info := &grpc.UnaryServerInfo{FullMethod: MethodGetAllClients}

	signed, err := token.Issue("secret", "admin-id", "admin", "admin", time.Hour)
	require.NoError(t, err)
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+signed))

	_, err = logging(ctx, &GetAllClientsRequest{}, info, func(ctx context.Context, req any) (any, error) {
		return auth(ctx, req, info, func(context.Context, any) (any, error) {
			return &GetAllClientsResponse{}, nil
		})
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"subject":"admin-id"`)
	assert.Contains(t, buf.String(), `"username":"admin"`)

	buf.Reset()
	_, err = logging(context.Background(), &GetAllClientsRequest{}, info, func(ctx context.Context, req any) (any, error) {
		return auth(ctx, req, info, func(context.Context, any) (any, error) {
			t.Fatal("handler must not run without a token")
			return nil, nil
		})
	})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.NotContains(t, buf.String(), "subject")
}

type panickingService struct{ ports.ClientService }

func (panickingService) DeleteClient(context.Context, string) error { panic("boom") }

type failingService struct{ ports.ClientService }

func (failingService) DeleteClient(context.Context, string) error {
	return errors.New("pq: connection reset by peer")
}

func TestClientService_InternalErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewClientServiceClient(startServer(t, panickingService{}, "")).
		DeleteClient(ctx, &DeleteClientRequest{ID: uuid.NewString()})
	assert.Equal(t, codes.Internal, status.Code(err))

	_, err = NewClientServiceClient(startServer(t, failingService{}, "")).
		DeleteClient(ctx, &DeleteClientRequest{ID: uuid.NewString()})
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, "internal server error", st.Message(), "storage detail must not leak")
}

func TestToStatus(t *testing.T) {
	cases := []struct {
		err  error
		want codes.Code
	}{
		{nil, codes.OK},
		{domain.ErrClientNotFound, codes.NotFound},
		{domain.ErrUsernameTaken, codes.AlreadyExists},
		{domain.ErrInvalidCredentials, codes.Unauthenticated},
		{domain.NewValidationError([]domain.Violation{{Field: "id", Rule: "uuid", Message: "id must be a valid UUID"}}), codes.InvalidArgument},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{status.Error(codes.PermissionDenied, "x"), codes.PermissionDenied},
		{errors.New("boom"), codes.Internal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, status.Code(toStatus(tc.err, zerolog.Nop(), "/test")), "%v", tc.err)
	}

	v := Violations(toStatus(domain.NewValidationError([]domain.Violation{{Field: "id", Rule: "uuid", Message: "m"}}), zerolog.Nop(), "/test"))
	assert.Equal(t, []domain.Violation{{Field: "id", Rule: "uuid", Message: "m"}}, v)
}
