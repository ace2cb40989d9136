package service

import (
	"github.com/censudex/clients-service/internal/core/domain"
	"github.com/censudex/clients-service/internal/core/ports"
)

func toDetail(c *domain.Client, includeSensitive bool) *ports.ClientDetail {
	d := &ports.ClientDetail{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Username:  c.Username,
		BirthDate: c.BirthDate.Format(domain.DateLayout),
		Address:   c.Address,
		Phone:     c.Phone,
		Role:      string(c.Role),
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if includeSensitive {
		d.PasswordHash = c.PasswordHash
	}
	return d
}

func toSummary(c *domain.Client) ports.ClientSummary {
	return ports.ClientSummary{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Username:  c.Username,
		BirthDate: c.BirthDate.Format(domain.DateLayout),
		Address:   c.Address,
		Phone:     c.Phone,
		Role:      string(c.Role),
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
	}
}
