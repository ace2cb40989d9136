package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/censudex/clients-service/internal/core/domain"
	"github.com/censudex/clients-service/internal/core/ports"
)

type seedClient struct {
	input  ports.CreateClientInput
	active bool
}

var seedClients = []seedClient{
	{active: true, input: ports.CreateClientInput{
		FirstName: "Admin", LastName: "Sistema", Email: "admin@censudex.cl", Username: "admin",
		Password: "Admin123!", BirthDate: "1990-01-01", Address: "Av. Administrador 123, Santiago",
		Phone: "+56912345678", Role: string(domain.RoleAdmin),
	}},
	{active: true, input: ports.CreateClientInput{
		FirstName: "Juan", LastName: "Perez Gonzalez", Email: "juan.perez@censudex.cl", Username: "juanperez",
		Password: "Juan1234!", BirthDate: "1995-05-15", Address: "Av. Libertador Bernardo OHiggins 1234, Santiago",
		Phone: "+56987654321",
	}},
	{active: true, input: ports.CreateClientInput{
		FirstName: "Maria", LastName: "Gonzalez Silva", Email: "maria.gonzalez@censudex.cl", Username: "mariagonzalez",
		Password: "Maria456!", BirthDate: "1988-08-20", Address: "Calle Providencia 567, Providencia",
		Phone: "+56998765432",
	}},
	{active: true, input: ports.CreateClientInput{
		FirstName: "Carlos", LastName: "Rodriguez Munoz", Email: "carlos.rodriguez@censudex.cl", Username: "carlosrodriguez",
		Password: "Carlos789!", BirthDate: "1992-03-10", Address: "Av. Las Condes 890, Las Condes",
		Phone: "+56976543210",
	}},
	{active: false, input: ports.CreateClientInput{
		FirstName: "Ana", LastName: "Martinez Lopez", Email: "ana.martinez@censudex.cl", Username: "anamartinez",
		Password: "Ana2023!", BirthDate: "1997-11-25", Address: "Calle Huerfanos 456, Santiago Centro",
		Phone: "+56965432109",
	}},
}

// Seed creates the sample clients through svc. Clients that already exist are
// skipped, so running it twice is harmless. It returns how many were created.
func Seed(ctx context.Context, svc ports.ClientService, logger zerolog.Logger) (int, error) {
	created := 0
	for _, sc := range seedClients {
		detail, err := svc.CreateClient(ctx, sc.input)
		if errors.Is(err, domain.ErrConflict) {
			logger.Info().Str("username", sc.input.Username).Msg("seed client already exists, skipping")
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", sc.input.Username, err)
		}

		if !sc.active {
			inactive := false
			if _, err := svc.UpdateClient(ctx, ports.UpdateClientInput{ID: detail.ID, IsActive: &inactive}); err != nil {
				return created, fmt.Errorf("deactivate %s: %w", sc.input.Username, err)
			}
		}
		created++
		logger.Info().Str("username", sc.input.Username).Str("id", detail.ID).Msg("seed client created")
	}
	return created, nil
}
