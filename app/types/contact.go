package types

import (
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/entity"

	"github.com/labstack/echo/v4"
)

const DateLayout = "2006-01-02"

type ContactRequest struct {
	FirstName string  `json:"first_name" validate:"required,max=50"`
	LastName  string  `json:"last_name" validate:"required,max=50"`
	Email     string  `json:"email" validate:"required,email,max=100"`
	Phone     string  `json:"phone" validate:"required,max=20"`
	Birthday  string  `json:"birthday" validate:"required,datetime=2006-01-02"`
	ExtraData *string `json:"extra_data"`

	birthday time.Time
}

func NewContactRequestFromContext(ctx echo.Context) (*ContactRequest, error) {
	var body ContactRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *ContactRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}

	birthday, err := time.Parse(DateLayout, r.Birthday)
	if err != nil {
		return err
	}
	r.birthday = birthday
	return nil
}

// BirthdayDate is only meaningful after a successful Validate.
func (r *ContactRequest) BirthdayDate() time.Time {
	return r.birthday
}

type ListContactsRequest struct {
	Skip  int `query:"skip"`
	Limit int `query:"limit"`
}

func NewListContactsRequestFromContext(ctx echo.Context) (*ListContactsRequest, error) {
	var req ListContactsRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &req); err != nil {
		return nil, err
	}

	return &req, nil
}

type ContactResponse struct {
	ID        uint64  `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Birthday  string  `json:"birthday"`
	ExtraData *string `json:"extra_data"`
}

func NewContactResponse(contact *entity.Contact) ContactResponse {
	res := ContactResponse{
		ID:        contact.ID,
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Birthday:  contact.Birthday.Format(DateLayout),
	}
	if contact.ExtraData.Valid {
		extra := contact.ExtraData.String
		res.ExtraData = &extra
	}
	return res
}

func NewContactListResponse(contacts []*entity.Contact) []ContactResponse {
	res := make([]ContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		res = append(res, NewContactResponse(contact))
	}
	return res
}
