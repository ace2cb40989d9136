package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/censudex/clients-service/internal/core/domain"
	"github.com/censudex/clients-service/internal/core/ports"
)

const (
	uniqueViolation = "23505"

	emailConstraint    = "clients_email_key"
	usernameConstraint = "clients_username_key"

	summaryColumns = `id, first_name, last_name, email, username, birth_date, address, phone, role, is_active, created_at`
	detailColumns  = summaryColumns + `, updated_at`
)

// ClientRepository implements ports.ClientRepository on the clients table.
type ClientRepository struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ ports.ClientRepository = (*ClientRepository)(nil)
	_ ports.Pinger           = (*ClientRepository)(nil)
)

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Create pre-checks uniqueness for a clearer error, then inserts. The unique
// indexes stay authoritative under concurrent creates.
func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	if err := r.checkConflict(ctx, &c.Email, &c.Username, ""); err != nil {
		return nil, err
	}

	now := r.now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (id, first_name, last_name, email, username, password, birth_date, address, phone, role, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`,
		c.ID, c.FirstName, c.LastName, c.Email, c.Username, c.PasswordHash,
		c.BirthDate, c.Address, c.Phone, string(c.Role), c.IsActive, now,
	)
	if err != nil {
		return nil, translateError(err, "insert client")
	}

	out := *c
	out.PasswordHash = ""
	out.CreatedAt = now
	out.UpdatedAt = now
	out.DeletedAt = nil
	return &out, nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id string, includeSensitive bool) (*domain.Client, error) {
	columns := detailColumns
	if includeSensitive {
		columns += ", password"
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM clients WHERE id = $1 AND deleted_at IS NULL`, id)

	c, err := scanDetail(row, includeSensitive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return c, nil
}

func (r *ClientRepository) FindByUsername(ctx context.Context, username string) (*domain.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+detailColumns+`, password FROM clients WHERE username = $1 AND deleted_at IS NULL`, username)

	c, err := scanDetail(row, true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client by username: %w", err)
	}
	return c, nil
}

func (r *ClientRepository) FindByFilter(ctx context.Context, f domain.ClientFilter) ([]*domain.Client, error) {
	conds := []string{"deleted_at IS NULL"}
	var args []any
	arg := func(v any) int {
		args = append(args, v)
		return len(args)
	}

	if f.Name != "" {
		n := arg(likePattern(f.Name))
		conds = append(conds, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d)", n, n))
	}
	if f.Email != "" {
		conds = append(conds, fmt.Sprintf("email ILIKE $%d", arg(likePattern(f.Email))))
	}
	if f.Username != "" {
		conds = append(conds, fmt.Sprintf("username ILIKE $%d", arg(likePattern(f.Username))))
	}
	if f.IsActive != nil {
		conds = append(conds, fmt.Sprintf("is_active = $%d", arg(*f.IsActive)))
	}

	query := `SELECT ` + summaryColumns + ` FROM clients WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Client, 0)
	for rows.Next() {
		var (
			c    domain.Client
			role string
		)
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Username,
			&c.BirthDate, &c.Address, &c.Phone, &role, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		c.Role = domain.Role(role)
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return out, nil
}

// Update writes every present patch field in a single statement.
func (r *ClientRepository) Update(ctx context.Context, id string, p domain.ClientPatch) (*domain.Client, error) {
	if p.Email != nil || p.Username != nil {
		if err := r.requireVisible(ctx, id); err != nil {
			return nil, err
		}
		if err := r.checkConflict(ctx, p.Email, p.Username, id); err != nil {
			return nil, err
		}
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if p.FirstName != nil {
		set("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		set("last_name", *p.LastName)
	}
	if p.Email != nil {
		set("email", *p.Email)
	}
	if p.Username != nil {
		set("username", *p.Username)
	}
	if p.BirthDate != nil {
		set("birth_date", *p.BirthDate)
	}
	if p.Address != nil {
		set("address", *p.Address)
	}
	if p.Phone != nil {
		set("phone", *p.Phone)
	}
	if p.IsActive != nil {
		set("is_active", *p.IsActive)
	}
	set("updated_at", r.now())
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE clients SET %s WHERE id = $%d AND deleted_at IS NULL RETURNING %s`,
		strings.Join(sets, ", "), len(args), detailColumns)

	c, err := scanDetail(r.db.QueryRowContext(ctx, query, args...), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, translateError(err, "update client")
	}
	return c, nil
}

func (r *ClientRepository) UpdateCredential(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE clients SET password = $1, updated_at = $2 WHERE id = $3 AND deleted_at IS NULL`,
		passwordHash, r.now(), id)
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	return requireRow(res)
}

// SoftDelete deactivates and stamps the row in one statement.
func (r *ClientRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE clients SET is_active = FALSE, deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		r.now(), id)
	if err != nil {
		return fmt.Errorf("soft delete client: %w", err)
	}
	return requireRow(res)
}

// requireVisible reports ErrClientNotFound unless id names a live row.
func (r *ClientRepository) requireVisible(ctx context.Context, id string) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM clients WHERE id = $1 AND deleted_at IS NULL`, id).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrClientNotFound
	case err != nil:
		return fmt.Errorf("find client: %w", err)
	}
	return nil
}

func (r *ClientRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// checkConflict looks for another row, deleted or not, holding email or
// username. Nil arguments are not checked.
func (r *ClientRepository) checkConflict(ctx context.Context, email, username *string, excludeID string) error {
	if email == nil && username == nil {
		return nil
	}

	var emailArg, usernameArg sql.NullString
	if email != nil {
		emailArg = sql.NullString{String: *email, Valid: true}
	}
	if username != nil {
		usernameArg = sql.NullString{String: *username, Valid: true}
	}

	query := `SELECT lower(email) = lower($1), username = $2 FROM clients
		WHERE (lower(email) = lower($1) OR username = $2)`
	args := []any{emailArg, usernameArg}
	if excludeID != "" {
		query += ` AND id <> $3`
		args = append(args, excludeID)
	}
	query += ` LIMIT 1`

	var emailHit, usernameHit sql.NullBool
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&emailHit, &usernameHit)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("check client uniqueness: %w", err)
	case emailHit.Bool:
		return domain.ErrEmailTaken
	case usernameHit.Bool:
		return domain.ErrUsernameTaken
	default:
		return domain.ErrDuplicateClient
	}
}

func scanDetail(row *sql.Row, includeSensitive bool) (*domain.Client, error) {
	var (
		c    domain.Client
		role string
	)
	dest := []any{&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Username,
		&c.BirthDate, &c.Address, &c.Phone, &role, &c.IsActive, &c.CreatedAt, &c.UpdatedAt}
	if includeSensitive {
		dest = append(dest, &c.PasswordHash)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	c.Role = domain.Role(role)
	return &c, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

// translateError maps unique violations raised at write time onto domain
// conflicts.
func translateError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case emailConstraint:
			return domain.ErrEmailTaken
		case usernameConstraint:
			return domain.ErrUsernameTaken
		default:
			return domain.ErrDuplicateClient
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
