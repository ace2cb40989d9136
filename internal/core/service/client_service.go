package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/censudex/clients-service/internal/core/domain"
	"github.com/censudex/clients-service/internal/core/ports"
	"github.com/censudex/clients-service/internal/core/validation"
)

// ClientService implements the client lifecycle on top of a repository and a
// credential codec. Both transports share one instance.
type ClientService struct {
	repo      ports.ClientRepository
	codec     ports.CredentialCodec
	validator *validation.Validator
	logger    zerolog.Logger
	newID     func() string
}

var _ ports.ClientService = (*ClientService)(nil)

func NewClientService(
	repo ports.ClientRepository,
	codec ports.CredentialCodec,
	validator *validation.Validator,
	logger zerolog.Logger,
) *ClientService {
	return &ClientService{
		repo:      repo,
		codec:     codec,
		validator: validator,
		logger:    logger.With().Str("component", "client_service").Logger(),
		newID:     uuid.NewString,
	}
}

// CreateClient validates the input, hashes the secret and persists a new
// active client. The result never carries the verifier.
func (s *ClientService) CreateClient(ctx context.Context, input ports.CreateClientInput) (*ports.ClientDetail, error) {
	input = normalizeCreate(input)
	if err := s.validator.ValidateCreate(input); err != nil {
		return nil, err
	}

	birth, err := validation.ParseDate(input.BirthDate)
	if err != nil {
		return nil, err
	}

	hash, err := s.codec.Hash(input.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash credential")
		return nil, err
	}

	role := domain.Role(input.Role)
	if role == "" {
		role = domain.RoleClient
	}

	created, err := s.repo.Create(ctx, &domain.Client{
		ID:           s.newID(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hash,
		BirthDate:    birth,
		Address:      input.Address,
		Phone:        input.Phone,
		Role:         role,
		IsActive:     true,
	})
	if err != nil {
		s.logWriteError(err, "create", "")
		return nil, err
	}

	s.logger.Info().Str("client_id", created.ID).Str("username", created.Username).Msg("client created")
	return toDetail(created, false), nil
}

// ListClients returns visible clients matching the filters, newest first.
func (s *ClientService) ListClients(ctx context.Context, input ports.ListClientsInput) (*ports.ListClientsResult, error) {
	if err := s.validator.ValidateFilter(input); err != nil {
		return nil, err
	}

	filter := domain.ClientFilter{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.TrimSpace(input.Email),
		Username: strings.TrimSpace(input.Username),
	}
	if input.IsActive != "" {
		active := input.IsActive == "true"
		filter.IsActive = &active
	}

	clients, err := s.repo.FindByFilter(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list clients")
		return nil, err
	}

	items := make([]ports.ClientSummary, 0, len(clients))
	for _, c := range clients {
		items = append(items, toSummary(c))
	}
	return &ports.ListClientsResult{Count: len(items), Items: items}, nil
}

// GetClient returns one visible client. The verifier is only included when
// input.IncludeSensitive is set.
func (s *ClientService) GetClient(ctx context.Context, input ports.GetClientInput) (*ports.ClientDetail, error) {
	if err := s.validator.ValidateID(input.ID); err != nil {
		return nil, err
	}

	client, err := s.repo.FindByID(ctx, input.ID, input.IncludeSensitive)
	if err != nil {
		return nil, err
	}
	return toDetail(client, input.IncludeSensitive), nil
}

// UpdateClient applies the present fields of input. An update that carries no
// field returns the current record unchanged.
func (s *ClientService) UpdateClient(ctx context.Context, input ports.UpdateClientInput) (*ports.ClientDetail, error) {
	input = normalizeUpdate(input)
	if err := s.validator.ValidateUpdate(input); err != nil {
		return nil, err
	}

	patch := domain.ClientPatch{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Username:  input.Username,
		Address:   input.Address,
		Phone:     input.Phone,
		IsActive:  input.IsActive,
	}
	if input.BirthDate != nil {
		birth, err := validation.ParseDate(*input.BirthDate)
		if err != nil {
			return nil, err
		}
		patch.BirthDate = &birth
	}

	if patch.Empty() {
		return s.GetClient(ctx, ports.GetClientInput{ID: input.ID})
	}

	updated, err := s.repo.Update(ctx, input.ID, patch)
	if err != nil {
		s.logWriteError(err, "update", input.ID)
		return nil, err
	}

	s.logger.Info().Str("client_id", updated.ID).Msg("client updated")
	return toDetail(updated, false), nil
}

// UpdatePassword replaces the verifier of a visible client.
func (s *ClientService) UpdatePassword(ctx context.Context, input ports.UpdatePasswordInput) error {
	if err := s.validator.ValidatePassword(input); err != nil {
		return err
	}

	hash, err := s.codec.Hash(input.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash credential")
		return err
	}

	if err := s.repo.UpdateCredential(ctx, input.ID, hash); err != nil {
		s.logWriteError(err, "update_password", input.ID)
		return err
	}

	s.logger.Info().Str("client_id", input.ID).Msg("client password updated")
	return nil
}

// DeleteClient soft deletes a visible client.
func (s *ClientService) DeleteClient(ctx context.Context, id string) error {
	if err := s.validator.ValidateID(id); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		s.logWriteError(err, "delete", id)
		return err
	}

	s.logger.Info().Str("client_id", id).Msg("client deleted")
	return nil
}

// VerifyCredentials checks a username and secret pair. Unknown, deleted and
// inactive clients are indistinguishable from a wrong secret.
func (s *ClientService) VerifyCredentials(ctx context.Context, input ports.VerifyCredentialsInput) (*ports.ClientDetail, error) {
	input.Username = strings.TrimSpace(input.Username)
	if err := s.validator.ValidateCredentials(input); err != nil {
		return nil, err
	}

	client, err := s.repo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !client.IsActive || !s.codec.Verify(input.Password, client.PasswordHash) {
		s.logger.Warn().Str("client_id", client.ID).Msg("credential verification failed")
		return nil, domain.ErrInvalidCredentials
	}

	return toDetail(client, false), nil
}

func (s *ClientService) logWriteError(err error, op, id string) {
	ev := s.logger.Error()
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
		ev = s.logger.Warn()
	}
	if id != "" {
		ev = ev.Str("client_id", id)
	}
	ev.Err(err).Str("operation", op).Msg("client write rejected")
}

func normalizeCreate(in ports.CreateClientInput) ports.CreateClientInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.BirthDate = strings.TrimSpace(in.BirthDate)
	in.Address = strings.TrimSpace(in.Address)
	in.Phone = validation.NormalizePhone(in.Phone)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	return in
}

func normalizeUpdate(in ports.UpdateClientInput) ports.UpdateClientInput {
	in.ID = strings.TrimSpace(in.ID)
	in.FirstName = trimmed(in.FirstName)
	in.LastName = trimmed(in.LastName)
	in.Email = trimmed(in.Email)
	in.Username = trimmed(in.Username)
	in.BirthDate = trimmed(in.BirthDate)
	in.Address = trimmed(in.Address)
	if in.Phone != nil {
		phone := validation.NormalizePhone(*in.Phone)
		in.Phone = &phone
	}
	return in
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
