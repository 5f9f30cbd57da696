package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/dto"
	"github.com/vibast-solutions/ms-go-contacts/app/entity"
	"github.com/vibast-solutions/ms-go-contacts/app/middleware"
	"github.com/vibast-solutions/ms-go-contacts/app/service"
	"github.com/vibast-solutions/ms-go-contacts/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type contactService interface {
	Create(ctx context.Context, ownerID uint64, req *types.ContactRequest) (*entity.Contact, error)
	List(ctx context.Context, ownerID uint64, offset, limit int) ([]*entity.Contact, error)
	Get(ctx context.Context, ownerID, id uint64) (*entity.Contact, error)
	Update(ctx context.Context, ownerID, id uint64, req *types.ContactRequest) (*entity.Contact, error)
	Delete(ctx context.Context, ownerID, id uint64) (*entity.Contact, error)
	Search(ctx context.Context, ownerID uint64, text string) ([]*entity.Contact, error)
	UpcomingBirthdays(ctx context.Context, ownerID uint64, today time.Time) ([]*entity.Contact, error)
}

type ContactController struct {
	contactService contactService
	now            func() time.Time
}

func NewContactController(contactService contactService) *ContactController {
	return &ContactController{contactService: contactService, now: time.Now}
}

func (c *ContactController) Create(ctx echo.Context) error {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	req, err := types.NewContactRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind contact request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if err = req.Validate(); err != nil {
		logrus.WithField("user_id", user.ID).Debug("Contact validation failed")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	contact, err := c.contactService.Create(ctx.Request().Context(), user.ID, req)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Create contact failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"contact_id": contact.ID,
	}).Info("Contact created")
	return ctx.JSON(http.StatusCreated, types.NewContactResponse(contact))
}

func (c *ContactController) List(ctx echo.Context) error {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	req, err := types.NewListContactsRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind list contacts request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "skip and limit must be integers"})
	}

	contacts, err := c.contactService.List(ctx.Request().Context(), user.ID, req.Skip, req.Limit)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("List contacts failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, types.NewContactListResponse(contacts))
}

func (c *ContactController) Get(ctx echo.Context) error {
	return c.withContactID(ctx, func(ownerID, id uint64) error {
		contact, err := c.contactService.Get(ctx.Request().Context(), ownerID, id)
		if err != nil {
			return c.contactError(ctx, err, "Get contact failed", ownerID, id)
		}
		return ctx.JSON(http.StatusOK, types.NewContactResponse(contact))
	})
}

func (c *ContactController) Update(ctx echo.Context) error {
	return c.withContactID(ctx, func(ownerID, id uint64) error {
		req, err := types.NewContactRequestFromContext(ctx)
		if err != nil {
			logrus.WithError(err).Debug("Failed to bind contact request")
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
		}
		if err = req.Validate(); err != nil {
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		}

		contact, err := c.contactService.Update(ctx.Request().Context(), ownerID, id, req)
		if err != nil {
			return c.contactError(ctx, err, "Update contact failed", ownerID, id)
		}

		logrus.WithFields(logrus.Fields{"user_id": ownerID, "contact_id": id}).Info("Contact updated")
		return ctx.JSON(http.StatusOK, types.NewContactResponse(contact))
	})
}

func (c *ContactController) Delete(ctx echo.Context) error {
	return c.withContactID(ctx, func(ownerID, id uint64) error {
		contact, err := c.contactService.Delete(ctx.Request().Context(), ownerID, id)
		if err != nil {
			return c.contactError(ctx, err, "Delete contact failed", ownerID, id)
		}

		logrus.WithFields(logrus.Fields{"user_id": ownerID, "contact_id": id}).Info("Contact deleted")
		return ctx.JSON(http.StatusOK, types.NewContactResponse(contact))
	})
}

func (c *ContactController) Search(ctx echo.Context) error {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	contacts, err := c.contactService.Search(ctx.Request().Context(), user.ID, ctx.QueryParam("query"))
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Search contacts failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, types.NewContactListResponse(contacts))
}

func (c *ContactController) UpcomingBirthdays(ctx echo.Context) error {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	contacts, err := c.contactService.UpcomingBirthdays(ctx.Request().Context(), user.ID, c.now())
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Upcoming birthdays failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, types.NewContactListResponse(contacts))
}

func (c *ContactController) withContactID(ctx echo.Context, fn func(ownerID, id uint64) error) error {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid contact id"})
	}

	return fn(user.ID, id)
}

func (c *ContactController) contactError(ctx echo.Context, err error, message string, ownerID, id uint64) error {
	fields := logrus.Fields{"user_id": ownerID, "contact_id": id}
	if errors.Is(err, service.ErrContactNotFound) {
		logrus.WithFields(fields).Debug(message + ": not found")
		return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "contact not found"})
	}

	logrus.WithError(err).WithFields(fields).Error(message)
	return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
}
