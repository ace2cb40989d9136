package domain

import "time"

// Role is the single authorization flag carried by a client.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleAdmin
}

// DateLayout is the wire and storage format of Client.BirthDate.
const DateLayout = "2006-01-02"

// Client is the customer account aggregate.
type Client struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Username  string
	// PasswordHash is the credential verifier. It is only populated by
	// repository reads that explicitly ask for sensitive data.
	PasswordHash string
	BirthDate    time.Time
	Address      string
	Phone        string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// Deleted reports whether the client has been soft deleted.
func (c *Client) Deleted() bool {
	return c.DeletedAt != nil
}

// ClientFilter narrows a client listing. Zero values mean "no constraint".
type ClientFilter struct {
	// Name matches first or last name, case-insensitive partial.
	Name     string
	Email    string
	Username string
	IsActive *bool
}

// ClientPatch holds the fields of an update. Nil pointers are left untouched.
type ClientPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Username  *string
	BirthDate *time.Time
	Address   *string
	Phone     *string
	IsActive  *bool
}

// Empty reports whether the patch changes nothing.
func (p ClientPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.Username == nil && p.BirthDate == nil && p.Address == nil &&
		p.Phone == nil && p.IsActive == nil
}
