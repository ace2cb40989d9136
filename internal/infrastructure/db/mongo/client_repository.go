package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/censudex/clients-service/internal/core/domain"
	"github.com/censudex/clients-service/internal/core/ports"
)

const (
	collectionClients = "clients"

	emailIndex    = "clients_email_key"
	usernameIndex = "clients_username_key"
)

// Strength 2 compares case-insensitively, so the email index rejects case variants.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

type ClientRepository struct {
	col *mongo.Collection
	now func() time.Time
}

var (
	_ ports.ClientRepository = (*ClientRepository)(nil)
	_ ports.Pinger           = (*ClientRepository)(nil)
)

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{
		col: db.Collection(collectionClients),
		now: func() time.Time { return time.Now().UTC() },
	}
}

type clientDocument struct {
	ID           string     `bson:"_id"`
	FirstName    string     `bson:"first_name"`
	LastName     string     `bson:"last_name"`
	Email        string     `bson:"email"`
	Username     string     `bson:"username"`
	PasswordHash string     `bson:"password,omitempty"`
	BirthDate    time.Time  `bson:"birth_date"`
	Address      string     `bson:"address"`
	Phone        string     `bson:"phone"`
	Role         string     `bson:"role"`
	IsActive     bool       `bson:"is_active"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at,omitempty"`
	DeletedAt    *time.Time `bson:"deleted_at"`
}

func (d *clientDocument) toDomain() *domain.Client {
	return &domain.Client{
		ID:           d.ID,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		BirthDate:    d.BirthDate.UTC(),
		Address:      d.Address,
		Phone:        d.Phone,
		Role:         domain.Role(d.Role),
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
		DeletedAt:    d.DeletedAt,
	}
}

func visibleByID(id string) bson.M {
	return bson.M{"_id": id, "deleted_at": nil}
}

var withoutPassword = bson.M{"password": 0}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := r.checkConflict(ctx, &c.Email, &c.Username, ""); err != nil {
		return nil, err
	}

	now := r.now()
	doc := clientDocument{
		ID:           c.ID,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Email:        c.Email,
		Username:     c.Username,
		PasswordHash: c.PasswordHash,
		BirthDate:    c.BirthDate,
		Address:      c.Address,
		Phone:        c.Phone,
		Role:         string(c.Role),
		IsActive:     c.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, translateError(err, "insert client")
	}

	doc.PasswordHash = ""
	return doc.toDomain(), nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id string, includeSensitive bool) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne()
	if !includeSensitive {
		opts.SetProjection(withoutPassword)
	}

	var doc clientDocument
	if err := r.col.FindOne(ctx, visibleByID(id), opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ClientRepository) FindByUsername(ctx context.Context, username string) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc clientDocument
	err := r.col.FindOne(ctx, bson.M{"username": username, "deleted_at": nil}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client by username: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ClientRepository) FindByFilter(ctx context.Context, f domain.ClientFilter) ([]*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"deleted_at": nil}
	if f.Name != "" {
		filter["$or"] = bson.A{
			bson.M{"first_name": containsRegex(f.Name)},
			bson.M{"last_name": containsRegex(f.Name)},
		}
	}
	if f.Email != "" {
		filter["email"] = containsRegex(f.Email)
	}
	if f.Username != "" {
		filter["username"] = containsRegex(f.Username)
	}
	if f.IsActive != nil {
		filter["is_active"] = *f.IsActive
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(bson.M{"password": 0, "updated_at": 0, "deleted_at": 0})

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]*domain.Client, 0)
	for cursor.Next(ctx) {
		var doc clientDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode client: %w", err)
		}
		c := doc.toDomain()
		c.UpdatedAt = time.Time{}
		out = append(out, c)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return out, nil
}

func (r *ClientRepository) Update(ctx context.Context, id string, p domain.ClientPatch) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if p.Email != nil || p.Username != nil {
		if err := r.requireVisible(ctx, id); err != nil {
			return nil, err
		}
		if err := r.checkConflict(ctx, p.Email, p.Username, id); err != nil {
			return nil, err
		}
	}

	set := bson.M{"updated_at": r.now()}
	if p.FirstName != nil {
		set["first_name"] = *p.FirstName
	}
	if p.LastName != nil {
		set["last_name"] = *p.LastName
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Username != nil {
		set["username"] = *p.Username
	}
	if p.BirthDate != nil {
		set["birth_date"] = *p.BirthDate
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.IsActive != nil {
		set["is_active"] = *p.IsActive
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutPassword)

	var doc clientDocument
	err := r.col.FindOneAndUpdate(ctx, visibleByID(id), bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, translateError(err, "update client")
	}
	return doc.toDomain(), nil
}

func (r *ClientRepository) UpdateCredential(ctx context.Context, id, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, visibleByID(id), bson.M{"$set": bson.M{
		"password":   passwordHash,
		"updated_at": r.now(),
	}})
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

// SoftDelete deactivates and stamps the document in one update.
func (r *ClientRepository) SoftDelete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := r.now()
	res, err := r.col.UpdateOne(ctx, visibleByID(id), bson.M{"$set": bson.M{
		"is_active":  false,
		"deleted_at": now,
		"updated_at": now,
	}})
	if err != nil {
		return fmt.Errorf("soft delete client: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) Ping(ctx context.Context) error {
	return r.col.Database().Client().Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the unique and listing indexes on the clients collection.
func (r *ClientRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(emailIndex).SetUnique(true).SetCollation(caseInsensitive),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName(usernameIndex).SetUnique(true),
		},
		{Keys: bson.D{{Key: "deleted_at", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// checkConflict looks for another document, deleted or not, holding email or
// username.
// requireVisible reports ErrClientNotFound unless id names a live document.
func (r *ClientRepository) requireVisible(ctx context.Context, id string) error {
	err := r.col.FindOne(ctx, visibleByID(id), options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrClientNotFound
	case err != nil:
		return fmt.Errorf("find client: %w", err)
	}
	return nil
}

func (r *ClientRepository) checkConflict(ctx context.Context, email, username *string, excludeID string) error {
	var or bson.A
	if email != nil {
		or = append(or, bson.M{"email": exactFoldRegex(*email)})
	}
	if username != nil {
		or = append(or, bson.M{"username": *username})
	}
	if len(or) == 0 {
		return nil
	}

	filter := bson.M{"$or": or}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	var doc clientDocument
	err := r.col.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"email": 1, "username": 1})).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil
	case err != nil:
		return fmt.Errorf("check client uniqueness: %w", err)
	case email != nil && strings.EqualFold(doc.Email, *email):
		return domain.ErrEmailTaken
	case username != nil && doc.Username == *username:
		return domain.ErrUsernameTaken
	default:
		return domain.ErrDuplicateClient
	}
}

func translateError(err error, op string) error {
	if mongo.IsDuplicateKeyError(err) {
		msg := err.Error()
		switch {
		case strings.Contains(msg, emailIndex):
			return domain.ErrEmailTaken
		case strings.Contains(msg, usernameIndex):
			return domain.ErrUsernameTaken
		default:
			return domain.ErrDuplicateClient
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func exactFoldRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}
