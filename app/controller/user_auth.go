package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/vibast-solutions/ms-go-contacts/app/dto"
	"github.com/vibast-solutions/ms-go-contacts/app/middleware"
	"github.com/vibast-solutions/ms-go-contacts/app/service"
	"github.com/vibast-solutions/ms-go-contacts/app/storage"
	"github.com/vibast-solutions/ms-go-contacts/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const maxAvatarBytes = 5 << 20

const passwordResetRequestedMessage = "if the account exists, a password reset email has been sent"

type UserAuthController struct {
	userAuthService service.UserAuthService
}

func NewUserAuthController(userAuthService service.UserAuthService) *UserAuthController {
	return &UserAuthController{userAuthService: userAuthService}
}

func (c *UserAuthController) Signup(ctx echo.Context) error {
	req, err := types.NewSignupRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind signup request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Signup validation failed")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	logrus.WithField("email", req.Email).Info("Signup request received")
	user, err := c.userAuthService.Signup(ctx.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			logrus.WithField("email", req.Email).Warn("Signup failed: user already exists")
			return ctx.JSON(http.StatusConflict, dto.ErrorResponse{Error: "user already exists"})
		}
		if errors.Is(err, service.ErrWeakPassword) {
			logrus.WithField("email", req.Email).Warn("Signup failed: weak password")
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Signup failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User signed up")

	return ctx.JSON(http.StatusCreated, types.NewUserResponse(user))
}

func (c *UserAuthController) Login(ctx echo.Context) error {
	req, err := types.NewLoginRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind login request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Login validation failed")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	logrus.WithField("email", req.Email).Info("Login request received")
	result, err := c.userAuthService.Login(ctx.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logrus.WithField("email", req.Email).Warn("Login failed: invalid credentials")
			ctx.Response().Header().Set("WWW-Authenticate", "Bearer")
			return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "incorrect email or password"})
		}
		if errors.Is(err, service.ErrAccountDisabled) {
			logrus.WithField("email", req.Email).Warn("Login failed: account disabled")
			return ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "account is disabled"})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Login failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("email", req.Email).Info("Login successful")
	return ctx.JSON(http.StatusOK, result)
}

func (c *UserAuthController) RequestPasswordReset(ctx echo.Context) error {
	req, err := types.NewRequestPasswordResetRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind request password reset request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.Debug("Request password reset validation failed")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	logrus.WithField("email", req.Email).Info("Request password reset received")
	err = c.userAuthService.RequestPasswordReset(ctx.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			logrus.WithField("email", req.Email).Info("Password reset requested for unknown email")
			return ctx.JSON(http.StatusOK, types.MessageResponse{Message: passwordResetRequestedMessage})
		}
		if errors.Is(err, service.ErrEmailDeliveryFailed) {
			logrus.WithError(err).WithField("email", req.Email).Error("Request password reset failed: email not delivered")
			return ctx.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "failed to send password reset email"})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Request password reset failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("email", req.Email).Info("Password reset email sent")
	return ctx.JSON(http.StatusOK, types.MessageResponse{Message: passwordResetRequestedMessage})
}

func (c *UserAuthController) ResetPassword(ctx echo.Context) error {
	req, err := types.NewResetPasswordRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind reset password request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.Debug("Reset password validation failed")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	logrus.Info("Reset password request received")
	if err = c.userAuthService.ResetPassword(ctx.Request().Context(), req); err != nil {
		if errors.Is(err, service.ErrInvalidToken) || errors.Is(err, service.ErrTokenExpired) {
			logrus.WithError(err).Warn("Reset password failed: invalid or expired token")
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid or expired token"})
		}
		if errors.Is(err, service.ErrWeakPassword) {
			logrus.Warn("Reset password failed: weak password")
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		}
		logrus.WithError(err).Error("Reset password failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.Info("Password reset successful")
	return ctx.JSON(http.StatusOK, types.MessageResponse{Message: "password has been reset"})
}

func (c *UserAuthController) ChangePassword(ctx echo.Context) error {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		logrus.Warn("Change password failed: missing user in context")
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	req, err := types.NewChangePasswordRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind change password request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.WithField("user_id", user.ID).Debug("Change password validation failed")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	logrus.WithField("user_id", user.ID).Info("Change password request received")
	if err = c.userAuthService.ChangePassword(ctx.Request().Context(), user, req); err != nil {
		if errors.Is(err, service.ErrPasswordMismatch) {
			logrus.WithField("user_id", user.ID).Warn("Change password failed: old password is incorrect")
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "old password is incorrect"})
		}
		if errors.Is(err, service.ErrWeakPassword) {
			logrus.WithField("user_id", user.ID).Warn("Change password failed: weak password")
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		}
		if errors.Is(err, service.ErrUserNotFound) {
			logrus.WithField("user_id", user.ID).Warn("Change password failed: user not found")
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "user not found"})
		}
		logrus.WithError(err).WithField("user_id", user.ID).Error("Change password failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("user_id", user.ID).Info("Password changed")
	return ctx.JSON(http.StatusOK, types.MessageResponse{Message: "password changed successfully"})
}

func (c *UserAuthController) Me(ctx echo.Context) error {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	return ctx.JSON(http.StatusOK, types.NewUserResponseFromSnapshot(user))
}

func (c *UserAuthController) UpdateAvatar(ctx echo.Context) error {
	caller := middleware.CurrentUser(ctx)
	if caller == nil {
		logrus.Warn("Update avatar failed: missing user in context")
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		logrus.WithError(err).Debug("Update avatar: missing file")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "file is required"})
	}
	if fileHeader.Size > maxAvatarBytes {
		return ctx.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "file is too large"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		logrus.WithError(err).Error("Update avatar: failed to open upload")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
	if err != nil {
		logrus.WithError(err).Error("Update avatar: failed to read upload")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
	if len(data) > maxAvatarBytes {
		return ctx.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "file is too large"})
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":      caller.ID,
		"content_type": contentType,
		"size":         len(data),
	}).Info("Update avatar request received")

	user, err := c.userAuthService.UpdateAvatar(ctx.Request().Context(), caller, data, contentType)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedContentType) {
			logrus.WithField("user_id", caller.ID).Warn("Update avatar failed: unsupported content type")
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "unsupported image type"})
		}
		logrus.WithError(err).WithField("user_id", caller.ID).Error("Update avatar failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, types.NewUserResponse(user))
}

func (c *UserAuthController) SetRole(ctx echo.Context) error {
	req, err := types.NewSetRoleRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind set role request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.Debug("Set role validation failed")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	user, err := c.userAuthService.SetRole(ctx.Request().Context(), req.Email, req.Role)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			logrus.WithField("email", req.Email).Warn("Set role failed: user not found")
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "user not found"})
		}
		if errors.Is(err, service.ErrInvalidRole) {
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Set role failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithFields(logrus.Fields{
		"email": user.Email,
		"role":  user.Role,
	}).Info("User role changed")
	return ctx.JSON(http.StatusOK, types.NewUserResponse(user))
}
