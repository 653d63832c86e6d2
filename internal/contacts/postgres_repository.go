package contacts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores contacts in the emergency_contacts table.
type PostgresRepository struct {
	db pgxQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(db pgxQuerier) *PostgresRepository {
	if db == nil {
		panic("contacts: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateContactRequest) (*Contact, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	contact := &Contact{
		ID:           id.String(),
		UserID:       req.UserID,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		Relationship: strings.TrimSpace(req.Relationship),
	}
	query := `
		INSERT INTO emergency_contacts (id, user_id, name, email, phone, relationship)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		contact.ID,
		contact.UserID,
		contact.Name,
		contact.Email,
		contact.Phone,
		contact.Relationship,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("contacts: insert failed: %w", err)
	}
	contact.CreatedAt = createdAt.UTC()
	return contact, nil
}

// ListByUser returns the user's contacts in creation order.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*Contact, error) {
	query := `
		SELECT id, user_id, name, email, phone, relationship, created_at
		FROM emergency_contacts
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("contacts: select failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Contact, 0)
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Relationship, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("contacts: scan failed: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("contacts: select failed: %w", err)
	}
	return out, nil
}
