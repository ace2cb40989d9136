package app

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/censudex/clients-service/internal/core/ports"
	"github.com/censudex/clients-service/internal/core/service"
	"github.com/censudex/clients-service/internal/core/validation"
	"github.com/censudex/clients-service/internal/infrastructure/db/memory"
	"github.com/censudex/clients-service/internal/infrastructure/security"
)

func TestSeed_IsIdempotent(t *testing.T) {
	svc := service.NewClientService(
		memory.NewClientRepository(),
		security.NewBcryptCodec(4),
		validation.New(validation.Options{}),
		zerolog.Nop(),
	)
	ctx := context.Background()

	n, err := Seed(ctx, svc, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, len(seedClients), n)

	n, err = Seed(ctx, svc, zerolog.Nop())
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := svc.ListClients(ctx, ports.ListClientsInput{})
	require.NoError(t, err)
	assert.Equal(t, len(seedClients), all.Count)

	inactive, err := svc.ListClients(ctx, ports.ListClientsInput{IsActive: "false"})
	require.NoError(t, err)
	require.Equal(t, 1, inactive.Count)
	assert.Equal(t, "anamartinez", inactive.Items[0].Username)

	admin, err := svc.VerifyCredentials(ctx, ports.VerifyCredentialsInput{Username: "admin", Password: "Admin123!"})
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Role)
}
