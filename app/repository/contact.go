package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/vibast-solutions/ms-go-contacts/app/entity"
)

const contactColumns = `id, user_id, first_name, last_name, email, phone, birthday, extra_data, created_at, updated_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type ContactRepository struct {
	db DBTX
}

func NewContactRepository(db DBTX) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, contact *entity.Contact) error {
	query := `
		INSERT INTO contacts (user_id, first_name, last_name, email, phone, birthday, extra_data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		contact.UserID,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.Phone,
		contact.Birthday,
		contact.ExtraData,
		contact.CreatedAt,
		contact.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	contact.ID = uint64(id)
	return nil
}

func (r *ContactRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uint64) (*entity.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts WHERE id = ? AND user_id = ?
	`
	contact, err := scanContact(r.db.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return contact, err
}

func (r *ContactRepository) ListByOwner(ctx context.Context, ownerID uint64, offset, limit int) ([]*entity.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts WHERE user_id = ?
		ORDER BY id
		LIMIT ? OFFSET ?
	`
	return r.queryContacts(ctx, query, ownerID, limit, offset)
}

// SearchByOwner matches text case-insensitively against first name, last name and email.
func (r *ContactRepository) SearchByOwner(ctx context.Context, ownerID uint64, text string) ([]*entity.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = ?
		  AND (LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?)
		ORDER BY id
	`
	pattern := "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
	return r.queryContacts(ctx, query, ownerID, pattern, pattern, pattern)
}

// UpcomingBirthdaysByOwner returns contacts whose birthday, as "MM-DD", lies in
// [start, end]. When end < start the window wraps past Dec 31.
func (r *ContactRepository) UpcomingBirthdaysByOwner(ctx context.Context, ownerID uint64, start, end string) ([]*entity.Contact, error) {
	if end >= start {
		query := `
			SELECT ` + contactColumns + `
			FROM contacts
			WHERE user_id = ? AND DATE_FORMAT(birthday, '%m-%d') BETWEEN ? AND ?
			ORDER BY DATE_FORMAT(birthday, '%m-%d'), id
		`
		return r.queryContacts(ctx, query, ownerID, start, end)
	}

	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = ? AND (DATE_FORMAT(birthday, '%m-%d') >= ? OR DATE_FORMAT(birthday, '%m-%d') <= ?)
		ORDER BY DATE_FORMAT(birthday, '%m-%d') < ?, DATE_FORMAT(birthday, '%m-%d'), id
	`
	return r.queryContacts(ctx, query, ownerID, start, end, start)
}

// Update overwrites every mutable field of the row owned by contact.UserID.
// MySQL reports unchanged rows as unaffected, so callers check ownership first.
func (r *ContactRepository) Update(ctx context.Context, contact *entity.Contact) error {
	query := `
		UPDATE contacts SET
			first_name = ?,
			last_name = ?,
			email = ?,
			phone = ?,
			birthday = ?,
			extra_data = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?
	`
	_, err := r.db.ExecContext(ctx, query,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.Phone,
		contact.Birthday,
		contact.ExtraData,
		contact.UpdatedAt,
		contact.ID,
		contact.UserID,
	)
	return err
}

func (r *ContactRepository) Delete(ctx context.Context, id, ownerID uint64) (bool, error) {
	query := `DELETE FROM contacts WHERE id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *ContactRepository) queryContacts(ctx context.Context, query string, args ...any) ([]*entity.Contact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]*entity.Contact, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return contacts, nil
}

func scanContact(row rowScanner) (*entity.Contact, error) {
	contact := &entity.Contact{}
	err := row.Scan(
		&contact.ID,
		&contact.UserID,
		&contact.FirstName,
		&contact.LastName,
		&contact.Email,
		&contact.Phone,
		&contact.Birthday,
		&contact.ExtraData,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return contact, nil
}
