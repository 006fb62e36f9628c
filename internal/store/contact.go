package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/staffdir/apiserver/types"
)

// ContactRepository handles persistence for contacts.
type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// List returns all contacts ordered ascending by position. The id
// tiebreaker keeps equal positions in insertion order.
func (r *ContactRepository) List(ctx context.Context) ([]types.Contact, error) {
	const query = `
		SELECT id, name, phone, mobile, position, designation, image_path, created_at, updated_at
		FROM contacts
		ORDER BY position ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]types.Contact, 0)
	for rows.Next() {
		var contact types.Contact
		if err := rows.Scan(
			&contact.ID,
			&contact.Name,
			&contact.Phone,
			&contact.Mobile,
			&contact.Position,
			&contact.Designation,
			&contact.ImagePath,
			&contact.CreatedAt,
			&contact.UpdatedAt,
		); err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return contacts, nil
}

func (r *ContactRepository) Get(ctx context.Context, id int) (types.Contact, error) {
	const query = `
		SELECT id, name, phone, mobile, position, designation, image_path, created_at, updated_at
		FROM contacts
		WHERE id = $1`
	var contact types.Contact
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&contact.ID,
		&contact.Name,
		&contact.Phone,
		&contact.Mobile,
		&contact.Position,
		&contact.Designation,
		&contact.ImagePath,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Contact{}, ErrNotFound
		}
		return types.Contact{}, err
	}
	return contact, nil
}

func (r *ContactRepository) Create(ctx context.Context, contact types.Contact) (types.Contact, error) {
	now := time.Now()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	const query = `
		INSERT INTO contacts (name, phone, mobile, position, designation, image_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		contact.Name,
		contact.Phone,
		contact.Mobile,
		contact.Position,
		contact.Designation,
		contact.ImagePath,
		contact.CreatedAt,
		contact.UpdatedAt,
	).Scan(&contact.ID); err != nil {
		return types.Contact{}, err
	}
	return contact, nil
}

func (r *ContactRepository) Update(ctx context.Context, contact types.Contact) (types.Contact, error) {
	contact.UpdatedAt = time.Now()

	const query = `
		UPDATE contacts
		SET name = $1,
			phone = $2,
			mobile = $3,
			position = $4,
			designation = $5,
			image_path = $6,
			updated_at = $7
		WHERE id = $8`
	result, err := r.db.ExecContext(
		ctx,
		query,
		contact.Name,
		contact.Phone,
		contact.Mobile,
		contact.Position,
		contact.Designation,
		contact.ImagePath,
		contact.UpdatedAt,
		contact.ID,
	)
	if err != nil {
		return types.Contact{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Contact{}, err
	}
	if affected == 0 {
		return types.Contact{}, ErrNotFound
	}
	return contact, nil
}

func (r *ContactRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM contacts WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
