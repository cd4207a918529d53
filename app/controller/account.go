package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/vibast-solutions/ms-go-accounts/app/dto"
	httpdto "github.com/vibast-solutions/ms-go-accounts/app/dto/http"
	"github.com/vibast-solutions/ms-go-accounts/app/entity"
	"github.com/vibast-solutions/ms-go-accounts/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type accountLifecycle interface {
	Create(ctx context.Context, data service.CreateAccountData) (*dto.CreateResult, error)
	Update(ctx context.Context, accountID uint64, data service.UpdateAccountData) (*entity.Account, error)
	AuthenticateWithPassword(ctx context.Context, email, password string) (*dto.AuthResult, error)
	VerifyConfirmation(ctx context.Context, accountID uint64, token string, expiresAt time.Time) (*dto.AuthResult, error)
	RequestPasswordReset(ctx context.Context, email string) (*dto.RecoveryResult, error)
	ResetPassword(ctx context.Context, accountID uint64, newPassword, token string, expiresAt time.Time) (*dto.AuthResult, error)
	ResendConfirmation(ctx context.Context, accountID uint64) (*dto.ResendResult, error)
}

type AccountController struct {
	accounts accountLifecycle
}

func NewAccountController(accounts accountLifecycle) *AccountController {
	return &AccountController{accounts: accounts}
}

func (c *AccountController) Register(ctx echo.Context) error {
	var req httpdto.RegisterRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if req.Email == "" {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "email is required"})
	}

	logrus.WithField("email", req.Email).Info("Register request received")
	result, err := c.accounts.Create(ctx.Request().Context(), service.CreateAccountData{
		Email:     req.Email,
		Password:  req.Password,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateAccount) {
			logrus.WithField("email", req.Email).Warn("Register failed: account already exists")
			return ctx.JSON(http.StatusConflict, httpdto.ErrorResponse{Error: "account already exists"})
		}
		if errors.Is(err, service.ErrInvalidData) {
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Register failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	message := "registration successful, please confirm your account"
	if result.NotifyErr != nil {
		// Account creation stands; only the dispatch failed.
		message = "registration successful, but the confirmation email could not be sent"
	}

	logrus.WithFields(logrus.Fields{
		"account_id": result.Account.ID,
		"email":      result.Account.Email,
	}).Info("Account registered")

	return ctx.JSON(http.StatusCreated, httpdto.RegisterResponse{
		Account: accountResponse(result.Account),
		Message: message,
	})
}

// AdminCreate is the administrative creation path: it may override the
// confirmed and active defaults and grant admin rights.
func (c *AccountController) AdminCreate(ctx echo.Context) error {
	var req httpdto.AdminCreateRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if req.Email == "" {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "email is required"})
	}

	result, err := c.accounts.Create(ctx.Request().Context(), service.CreateAccountData{
		Email:         req.Email,
		Password:      req.Password,
		Username:      req.Username,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Phone:         req.Phone,
		Confirmed:     req.Confirmed,
		Active:        req.Active,
		HasAdminRight: req.HasAdminRight,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateAccount) {
			return ctx.JSON(http.StatusConflict, httpdto.ErrorResponse{Error: "account already exists"})
		}
		if errors.Is(err, service.ErrInvalidData) {
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Admin create failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusCreated, httpdto.RegisterResponse{
		Account: accountResponse(result.Account),
		Message: "account created",
	})
}

func (c *AccountController) Login(ctx echo.Context) error {
	var req httpdto.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if req.Email == "" || req.Password == "" {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "email and password are required"})
	}

	result, err := c.accounts.AuthenticateWithPassword(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidLoginCredentials) {
			logrus.WithField("email", req.Email).Warn("Login failed: invalid credentials")
			return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "invalid login credentials"})
		}
		if errors.Is(err, service.ErrAccountNotActive) {
			logrus.WithField("email", req.Email).Warn("Login failed: account not active")
			return ctx.JSON(http.StatusForbidden, httpdto.ErrorResponse{Error: "account is not active"})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Login failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, httpdto.LoginResponse{
		Account:     accountResponse(result.Account),
		AccessToken: result.AccessToken,
		ExpiresIn:   result.ExpiresIn,
	})
}

func (c *AccountController) VerifyConfirmation(ctx echo.Context) error {
	var req httpdto.VerifyConfirmationRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if req.AccountID == 0 || req.Token == "" {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "account_id and token are required"})
	}

	result, err := c.accounts.VerifyConfirmation(ctx.Request().Context(), req.AccountID, req.Token, expiresAtFromMillis(req.ExpiresAt))
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "account not found"})
		}
		if errors.Is(err, service.ErrAlreadyVerified) {
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "account already verified"})
		}
		if errors.Is(err, service.ErrTokenExpired) {
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "token has expired"})
		}
		if errors.Is(err, service.ErrInvalidToken) {
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid token"})
		}
		logrus.WithError(err).WithField("account_id", req.AccountID).Error("Verify confirmation failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("account_id", req.AccountID).Info("Account confirmed")
	return ctx.JSON(http.StatusOK, httpdto.VerifyConfirmationResponse{
		Account:     accountResponse(result.Account),
		AccessToken: result.AccessToken,
		ExpiresIn:   result.ExpiresIn,
		Message:     "account confirmed successfully",
	})
}

func (c *AccountController) ResendConfirmation(ctx echo.Context) error {
	var req httpdto.ResendConfirmationRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if req.AccountID == 0 {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "account_id is required"})
	}

	result, err := c.accounts.ResendConfirmation(ctx.Request().Context(), req.AccountID)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "account not found"})
		}
		logrus.WithError(err).WithField("account_id", req.AccountID).Error("Resend confirmation failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, httpdto.ResendConfirmationResponse{Message: result.Message})
}

func (c *AccountController) ForgotPassword(ctx echo.Context) error {
	var req httpdto.ForgotPasswordRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	logrus.WithField("email", req.Email).Info("Password reset requested")
	result, err := c.accounts.RequestPasswordReset(ctx.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrInvalidData) {
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "you must provide your email address"})
		}
		if errors.Is(err, service.ErrAccountNotFound) {
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "account not found"})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Request password reset failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	message := "an email has been sent to " + req.Email
	if result.NotifyErr != nil {
		message = "the recovery email could not be sent, please try again later"
	}

	return ctx.JSON(http.StatusOK, httpdto.ForgotPasswordResponse{Message: message})
}

func (c *AccountController) ResetPassword(ctx echo.Context) error {
	var req httpdto.ResetPasswordRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if req.AccountID == 0 || req.Token == "" {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "account_id and token are required"})
	}

	result, err := c.accounts.ResetPassword(ctx.Request().Context(), req.AccountID, req.NewPassword, req.Token, expiresAtFromMillis(req.ExpiresAt))
	if err != nil {
		if errors.Is(err, service.ErrInvalidData) {
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "please enter your new password"})
		}
		if errors.Is(err, service.ErrAccountNotFound) {
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "account not found"})
		}
		if errors.Is(err, service.ErrTokenExpired) {
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "token has expired"})
		}
		if errors.Is(err, service.ErrInvalidToken) {
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid token"})
		}
		logrus.WithError(err).WithField("account_id", req.AccountID).Error("Reset password failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("account_id", req.AccountID).Info("Password reset successful")
	return ctx.JSON(http.StatusOK, httpdto.ResetPasswordResponse{
		Account:     accountResponse(result.Account),
		AccessToken: result.AccessToken,
		ExpiresIn:   result.ExpiresIn,
		Message:     "password reset successfully",
	})
}

func (c *AccountController) UpdateAccount(ctx echo.Context) error {
	var req httpdto.UpdateAccountRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	accountID, ok := ctx.Get("account_id").(uint64)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	account, err := c.accounts.Update(ctx.Request().Context(), accountID, service.UpdateAccountData{
		Username:    req.Username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "account not found"})
		}
		logrus.WithError(err).WithField("account_id", accountID).Error("Update account failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, httpdto.UpdateAccountResponse{
		Account: accountResponse(account),
		Message: "account updated",
	})
}

func accountResponse(account *entity.Account) httpdto.AccountResponse {
	return httpdto.AccountResponse{
		ID:            account.ID,
		Email:         account.Email,
		Username:      account.Username,
		FirstName:     account.FirstName,
		LastName:      account.LastName,
		FullName:      account.FullName(),
		Phone:         account.Phone,
		Confirmed:     account.Confirmed,
		Active:        account.Active,
		HasAdminRight: account.HasAdminRight,
	}
}

func expiresAtFromMillis(millis int64) time.Time {
	if millis == 0 {
		return time.Time{}
	}
	return time.UnixMilli(millis)
}
