package handlers

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without a time component. It marshals as
// YYYY-MM-DD and scans from DATE columns.
type Date struct {
	time.Time
}

// NewDate builds a Date from a time value
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

// Scan implements sql.Scanner
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		d.Time = v
		return nil
	case []byte:
		t, err := time.Parse(dateLayout, string(v))
		if err != nil {
			return err
		}
		d.Time = t
		return nil
	case string:
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return err
		}
		d.Time = t
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
}

// Value implements driver.Valuer
func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

// Contact represents a stored contact
type Contact struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Birthday  Date      `json:"birthday" swaggertype:"string" format:"date"`
	Info      string    `json:"info,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    int       `json:"-"`
}

// ContactData carries the writable fields of a contact. A nil Info keeps
// the stored value on update.
type ContactData struct {
	Name     string
	Surname  string
	Email    string
	Phone    string
	Birthday time.Time
	Info     *string
}

// ContactFilter narrows contact listings. Empty strings match everything.
type ContactFilter struct {
	Name    string
	Surname string
	Email   string
	Skip    int
	Limit   int
}

// ContactStore provides access to contacts, always scoped to their owner
type ContactStore struct {
	db *sql.DB
}

// NewContactStore creates a contact store backed by the given database
func NewContactStore(db *sql.DB) *ContactStore {
	return &ContactStore{db: db}
}

const contactColumns = `id, name, surname, email, phone, birthday, COALESCE(info, ''), created_at, updated_at, user_id`

func scanContact(row *sql.Row) (*Contact, error) {
	var c Contact
	err := row.Scan(&c.ID, &c.Name, &c.Surname, &c.Email, &c.Phone, &c.Birthday,
		&c.Info, &c.CreatedAt, &c.UpdatedAt, &c.UserID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns the user's contacts matching the filter, case-insensitive
// substring match on name, surname and email
func (s *ContactStore) List(ctx context.Context, userID int, filter ContactFilter) ([]Contact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE user_id = $1
		  AND name ILIKE '%' || $2 || '%'
		  AND surname ILIKE '%' || $3 || '%'
		  AND email ILIKE '%' || $4 || '%'
		ORDER BY id
		OFFSET $5 LIMIT $6`,
		userID, filter.Name, filter.Surname, filter.Email, filter.Skip, filter.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []Contact{}
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Surname, &c.Email, &c.Phone, &c.Birthday,
			&c.Info, &c.CreatedAt, &c.UpdatedAt, &c.UserID); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// GetByID fetches one of the user's contacts. Returns nil when no contact
// matches.
func (s *ContactStore) GetByID(ctx context.Context, userID, contactID int) (*Contact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1 AND user_id = $2`,
		contactID, userID)
	return scanContact(row)
}

// Exists reports whether the user already has a contact with the given
// email or phone number
func (s *ContactStore) Exists(ctx context.Context, userID int, email, phone string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM contacts WHERE user_id = $1 AND (email = $2 OR phone = $3))`,
		userID, email, phone).Scan(&exists)
	return exists, err
}

// Create inserts a new contact for the user and returns the stored record
func (s *ContactStore) Create(ctx context.Context, userID int, data ContactData) (*Contact, error) {
	info := ""
	if data.Info != nil {
		info = *data.Info
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO contacts (name, surname, email, phone, birthday, info, user_id)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		RETURNING `+contactColumns,
		data.Name, data.Surname, data.Email, data.Phone, data.Birthday, info, userID)
	return scanContact(row)
}

// Update replaces a contact's fields and returns the updated record.
// Returns nil when the contact does not exist for this user.
func (s *ContactStore) Update(ctx context.Context, userID, contactID int, data ContactData) (*Contact, error) {
	var updated *Contact
	err := WithTransactionContext(ctx, s.db, func(tx *sql.Tx) error {
		existing, err := scanContact(tx.QueryRowContext(ctx,
			`SELECT `+contactColumns+` FROM contacts WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			contactID, userID))
		if err != nil || existing == nil {
			return err
		}

		info := existing.Info
		if data.Info != nil {
			info = *data.Info
		}

		updated, err = scanContact(tx.QueryRowContext(ctx, `
			UPDATE contacts
			SET name = $1, surname = $2, email = $3, phone = $4, birthday = $5,
			    info = NULLIF($6, ''), updated_at = NOW()
			WHERE id = $7 AND user_id = $8
			RETURNING `+contactColumns,
			data.Name, data.Surname, data.Email, data.Phone, data.Birthday, info, contactID, userID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a contact and returns the deleted record. Returns nil
// when the contact does not exist for this user.
func (s *ContactStore) Delete(ctx context.Context, userID, contactID int) (*Contact, error) {
	var deleted *Contact
	err := WithTransactionContext(ctx, s.db, func(tx *sql.Tx) error {
		contact, err := scanContact(tx.QueryRowContext(ctx,
			`SELECT `+contactColumns+` FROM contacts WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			contactID, userID))
		if err != nil || contact == nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM contacts WHERE id = $1 AND user_id = $2`, contactID, userID); err != nil {
			return err
		}
		deleted = contact
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// UpcomingBirthdays returns the user's contacts whose birthday falls within
// the next days, counted by day of year so year boundaries wrap correctly
func (s *ContactStore) UpcomingBirthdays(ctx context.Context, userID, days int) ([]Contact, error) {
	today := time.Now()
	end := today.AddDate(0, 0, days)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE user_id = $1
		  AND (
		    date_part('doy', birthday) BETWEEN date_part('doy', $2::date) AND date_part('doy', $3::date)
		    OR (
		      date_part('doy', $3::date) < date_part('doy', $2::date)
		      AND (
		        date_part('doy', birthday) >= date_part('doy', $2::date)
		        OR date_part('doy', birthday) <= date_part('doy', $3::date)
		      )
		    )
		  )
		ORDER BY date_part('doy', birthday)`,
		userID, today, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []Contact{}
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Surname, &c.Email, &c.Phone, &c.Birthday,
			&c.Info, &c.CreatedAt, &c.UpdatedAt, &c.UserID); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
