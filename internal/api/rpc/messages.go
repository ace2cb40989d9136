package rpc

// Wire messages of clients.ClientService. Field names are camelCase JSON.

type CreateClientRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	BirthDate string `json:"birthDate"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Role      string `json:"role,omitempty"`
}

type GetAllClientsRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	// IsActive is "", "true" or "false".
	IsActive string `json:"isActive,omitempty"`
}

type GetClientByIdRequest struct {
	ID              string `json:"id"`
	IncludePassword bool   `json:"includePassword,omitempty"`
}

// UpdateClientRequest leaves nil fields untouched.
type UpdateClientRequest struct {
	ID        string  `json:"id"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Username  *string `json:"username,omitempty"`
	BirthDate *string `json:"birthDate,omitempty"`
	Address   *string `json:"address,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

type UpdatePasswordRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type DeleteClientRequest struct {
	ID string `json:"id"`
}

type VerifyCredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ClientResponse carries one client. Timestamps are RFC 3339; UpdatedAt is
// empty on list rows and Password is set only when requested.
type ClientResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password,omitempty"`
	BirthDate string `json:"birthDate"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	Message   string `json:"message,omitempty"`
}

type GetAllClientsResponse struct {
	Count   int               `json:"count"`
	Clients []*ClientResponse `json:"clients"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
