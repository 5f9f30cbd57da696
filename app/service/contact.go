package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/entity"
	"github.com/vibast-solutions/ms-go-contacts/app/types"
)

const (
	DefaultContactLimit = 100
	MaxContactLimit     = 100
	birthdayWindowDays  = 7
)

type contactRepository interface {
	Create(ctx context.Context, contact *entity.Contact) error
	FindByIDAndOwner(ctx context.Context, id, ownerID uint64) (*entity.Contact, error)
	ListByOwner(ctx context.Context, ownerID uint64, offset, limit int) ([]*entity.Contact, error)
	SearchByOwner(ctx context.Context, ownerID uint64, text string) ([]*entity.Contact, error)
	UpcomingBirthdaysByOwner(ctx context.Context, ownerID uint64, start, end string) ([]*entity.Contact, error)
	Update(ctx context.Context, contact *entity.Contact) error
	Delete(ctx context.Context, id, ownerID uint64) (bool, error)
}

// ContactService scopes every read and write to the owning user. A contact
// that exists but belongs to someone else is reported as ErrContactNotFound.
type ContactService struct {
	contacts contactRepository
	now      func() time.Time
}

func NewContactService(contacts contactRepository) *ContactService {
	return &ContactService{
		contacts: contacts,
		now:      time.Now,
	}
}

func (s *ContactService) Create(ctx context.Context, ownerID uint64, req *types.ContactRequest) (*entity.Contact, error) {
	now := s.now()
	contact := &entity.Contact{
		UserID:    ownerID,
		CreatedAt: now,
	}
	applyContactRequest(contact, req, now)

	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// List pages through the owner's contacts. Out of range values are clamped.
func (s *ContactService) List(ctx context.Context, ownerID uint64, offset, limit int) ([]*entity.Contact, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultContactLimit
	}
	if limit > MaxContactLimit {
		limit = MaxContactLimit
	}

	return s.contacts.ListByOwner(ctx, ownerID, offset, limit)
}

func (s *ContactService) Get(ctx context.Context, ownerID, id uint64) (*entity.Contact, error) {
	contact, err := s.contacts.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, ErrContactNotFound
	}
	return contact, nil
}

// Update replaces every mutable field of the contact.
func (s *ContactService) Update(ctx context.Context, ownerID, id uint64, req *types.ContactRequest) (*entity.Contact, error) {
	contact, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	applyContactRequest(contact, req, s.now())

	if err = s.contacts.Update(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// Delete removes the contact and returns it as it was before deletion.
func (s *ContactService) Delete(ctx context.Context, ownerID, id uint64) (*entity.Contact, error) {
	contact, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	deleted, err := s.contacts.Delete(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, ErrContactNotFound
	}
	return contact, nil
}

func (s *ContactService) Search(ctx context.Context, ownerID uint64, text string) ([]*entity.Contact, error) {
	return s.contacts.SearchByOwner(ctx, ownerID, text)
}

// UpcomingBirthdays returns contacts whose birthday falls within the next
// seven days counted from today, including across the year boundary.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, ownerID uint64, today time.Time) ([]*entity.Contact, error) {
	start, end := birthdayWindow(today, birthdayWindowDays)
	return s.contacts.UpcomingBirthdaysByOwner(ctx, ownerID, start, end)
}

const monthDayLayout = "01-02"

// birthdayWindow returns the "MM-DD" bounds of [today, today+days]; month and
// day are compared, not day-of-year. end < start means the window wraps past
// Dec 31.
func birthdayWindow(today time.Time, days int) (string, string) {
	return today.Format(monthDayLayout), today.AddDate(0, 0, days).Format(monthDayLayout)
}

func applyContactRequest(contact *entity.Contact, req *types.ContactRequest, now time.Time) {
	contact.FirstName = req.FirstName
	contact.LastName = req.LastName
	contact.Email = req.Email
	contact.Phone = req.Phone
	contact.Birthday = req.BirthdayDate()
	contact.ExtraData = sql.NullString{}
	if req.ExtraData != nil {
		contact.ExtraData = sql.NullString{String: *req.ExtraData, Valid: true}
	}
	contact.UpdatedAt = now
}
