package service_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/entity"
	"github.com/vibast-solutions/ms-go-contacts/app/service"
	"github.com/vibast-solutions/ms-go-contacts/app/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryContacts mirrors the ownership filtering of the MySQL repository.
type memoryContacts struct {
	nextID   uint64
	contacts map[uint64]*entity.Contact

	lastOffset, lastLimit int
	lastStart, lastEnd    string
}

func newMemoryContacts() *memoryContacts {
	return &memoryContacts{contacts: make(map[uint64]*entity.Contact)}
}

func (m *memoryContacts) Create(_ context.Context, contact *entity.Contact) error {
	m.nextID++
	contact.ID = m.nextID
	stored := *contact
	m.contacts[contact.ID] = &stored
	return nil
}

func (m *memoryContacts) FindByIDAndOwner(_ context.Context, id, ownerID uint64) (*entity.Contact, error) {
	contact, ok := m.contacts[id]
	if !ok || contact.UserID != ownerID {
		return nil, nil
	}
	copied := *contact
	return &copied, nil
}

func (m *memoryContacts) ListByOwner(_ context.Context, ownerID uint64, offset, limit int) ([]*entity.Contact, error) {
	m.lastOffset, m.lastLimit = offset, limit
	return m.owned(ownerID, func(*entity.Contact) bool { return true }), nil
}

func (m *memoryContacts) SearchByOwner(_ context.Context, ownerID uint64, _ string) ([]*entity.Contact, error) {
	return m.owned(ownerID, func(*entity.Contact) bool { return true }), nil
}

func (m *memoryContacts) UpcomingBirthdaysByOwner(_ context.Context, ownerID uint64, start, end string) ([]*entity.Contact, error) {
	m.lastStart, m.lastEnd = start, end
	return m.owned(ownerID, func(c *entity.Contact) bool {
		day := c.Birthday.Format("01-02")
		if end >= start {
			return day >= start && day <= end
		}
		return day >= start || day <= end
	}), nil
}

func (m *memoryContacts) Update(_ context.Context, contact *entity.Contact) error {
	existing, ok := m.contacts[contact.ID]
	if !ok || existing.UserID != contact.UserID {
		return nil
	}
	stored := *contact
	m.contacts[contact.ID] = &stored
	return nil
}

func (m *memoryContacts) Delete(_ context.Context, id, ownerID uint64) (bool, error) {
	existing, ok := m.contacts[id]
	if !ok || existing.UserID != ownerID {
		return false, nil
	}
	delete(m.contacts, id)
	return true, nil
}

func (m *memoryContacts) owned(ownerID uint64, keep func(*entity.Contact) bool) []*entity.Contact {
	res := make([]*entity.Contact, 0)
	for _, contact := range m.contacts {
		if contact.UserID == ownerID && keep(contact) {
			copied := *contact
			res = append(res, &copied)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func contactRequest(t *testing.T, first, birthday string) *types.ContactRequest {
	t.Helper()

	req := &types.ContactRequest{
		FirstName: first,
		LastName:  "Doe",
		Email:     first + "@example.com",
		Phone:     "1234567890",
		Birthday:  birthday,
	}
	require.NoError(t, req.Validate())
	return req
}

func TestContactService_IsolatesOwners(t *testing.T) {
	repo := newMemoryContacts()
	svc := service.NewContactService(repo)
	ctx := context.Background()

	owned, err := svc.Create(ctx, 1, contactRequest(t, "alice", "1990-01-01"))
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, owned.ID)
	assert.ErrorIs(t, err, service.ErrContactNotFound)

	_, err = svc.Update(ctx, 2, owned.ID, contactRequest(t, "mallory", "1990-01-01"))
	assert.ErrorIs(t, err, service.ErrContactNotFound)

	_, err = svc.Delete(ctx, 2, owned.ID)
	assert.ErrorIs(t, err, service.ErrContactNotFound)

	list, err := svc.List(ctx, 2, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := svc.Get(ctx, 1, owned.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.FirstName)
}

func TestContactService_UpdateReplacesFields(t *testing.T) {
	repo := newMemoryContacts()
	svc := service.NewContactService(repo)
	ctx := context.Background()

	extra := "met at the conference"
	req := contactRequest(t, "alice", "1990-01-01")
	req.ExtraData = &extra
	created, err := svc.Create(ctx, 1, req)
	require.NoError(t, err)
	require.True(t, created.ExtraData.Valid)

	updated, err := svc.Update(ctx, 1, created.ID, contactRequest(t, "bob", "1985-07-26"))
	require.NoError(t, err)
	assert.Equal(t, "bob", updated.FirstName)
	assert.Equal(t, time.Date(1985, 7, 26, 0, 0, 0, 0, time.UTC), updated.Birthday)
	assert.False(t, updated.ExtraData.Valid, "full replace must clear omitted extra data")
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestContactService_DeleteReturnsRemovedContact(t *testing.T) {
	repo := newMemoryContacts()
	svc := service.NewContactService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, contactRequest(t, "alice", "1990-01-01"))
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = svc.Get(ctx, 1, created.ID)
	assert.True(t, errors.Is(err, service.ErrContactNotFound))
}

func TestContactService_ListClampsPaging(t *testing.T) {
	repo := newMemoryContacts()
	svc := service.NewContactService(repo)
	ctx := context.Background()

	_, err := svc.List(ctx, 1, -5, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, repo.lastOffset)
	assert.Equal(t, service.DefaultContactLimit, repo.lastLimit)

	_, err = svc.List(ctx, 1, 20, 1000)
	require.NoError(t, err)
	assert.Equal(t, 20, repo.lastOffset)
	assert.Equal(t, service.MaxContactLimit, repo.lastLimit)

	_, err = svc.List(ctx, 1, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, repo.lastLimit)
}

func TestContactService_UpcomingBirthdays(t *testing.T) {
	repo := newMemoryContacts()
	svc := service.NewContactService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, contactRequest(t, "soon", "1990-06-05"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, contactRequest(t, "later", "1990-07-20"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, contactRequest(t, "foreign", "1990-06-05"))
	require.NoError(t, err)

	res, err := svc.UpcomingBirthdays(ctx, 1, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "soon", res[0].FirstName)
}

func TestContactService_UpcomingBirthdaysAcrossYearEnd(t *testing.T) {
	repo := newMemoryContacts()
	svc := service.NewContactService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, contactRequest(t, "newyear", "1991-01-02"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, contactRequest(t, "eve", "1991-12-30"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, contactRequest(t, "spring", "1991-03-01"))
	require.NoError(t, err)

	res, err := svc.UpcomingBirthdays(ctx, 1, time.Date(2023, 12, 28, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "12-28", repo.lastStart)
	assert.Equal(t, "01-04", repo.lastEnd)

	names := make([]string, 0, len(res))
	for _, contact := range res {
		names = append(names, contact.FirstName)
	}
	assert.ElementsMatch(t, []string{"newyear", "eve"}, names)
}

func TestContactService_UpcomingBirthdaysInLeapYear(t *testing.T) {
	repo := newMemoryContacts()
	svc := service.NewContactService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, contactRequest(t, "today", "1990-03-01"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, contactRequest(t, "leapling", "1992-02-29"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, contactRequest(t, "yesterday", "1990-02-28"))
	require.NoError(t, err)

	res, err := svc.UpcomingBirthdays(ctx, 1, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "today", res[0].FirstName)

	res, err = svc.UpcomingBirthdays(ctx, 1, time.Date(2023, 2, 25, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	names := make([]string, 0, len(res))
	for _, contact := range res {
		names = append(names, contact.FirstName)
	}
	assert.ElementsMatch(t, []string{"today", "leapling", "yesterday"}, names)
}
