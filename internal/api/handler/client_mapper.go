package handler

import "github.com/censudex/clients-service/internal/core/ports"

func toClientResponse(d *ports.ClientDetail) clientResponse {
	return clientResponse{
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
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toListResponse(r *ports.ListClientsResult) listClientsResponse {
	out := listClientsResponse{
		Count:   r.Count,
		Clients: make([]clientSummaryResponse, 0, len(r.Items)),
	}
	for _, s := range r.Items {
		out.Clients = append(out.Clients, clientSummaryResponse{
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
			CreatedAt: s.CreatedAt,
		})
	}
	return out
}
