package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-accounts/app/dto"
	"github.com/vibast-solutions/ms-go-accounts/app/entity"
	"github.com/vibast-solutions/ms-go-accounts/app/notify"
	"github.com/vibast-solutions/ms-go-accounts/app/repository"
	"github.com/vibast-solutions/ms-go-accounts/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

var (
	ErrDuplicateAccount        = errors.New("account already exists")
	ErrInvalidLoginCredentials = errors.New("invalid login credentials")
	ErrAccountNotActive        = errors.New("account is not active")
	ErrAccountNotFound         = errors.New("account not found")
	ErrAlreadyVerified         = errors.New("account already verified")
	ErrInvalidToken            = errors.New("invalid token")
	ErrTokenExpired            = errors.New("token has expired")
	ErrInvalidData             = errors.New("invalid data")
)

const (
	ActionConfirm       = "account/confirm"
	ActionResetPassword = "resetPassword"
)

type Claims struct {
	AccountID     uint64 `json:"account_id"`
	Email         string `json:"email"`
	HasAdminRight bool   `json:"has_admin_right"`
	jwt.RegisteredClaims
}

type CreateAccountData struct {
	Email         string
	Password      string
	Username      string
	FirstName     string
	LastName      string
	Phone         string
	Confirmed     *bool
	Active        *bool
	HasAdminRight bool
}

type UpdateAccountData struct {
	Username    string
	FirstName   string
	LastName    string
	Phone       string
	NewPassword string
}

type AccountService struct {
	accountRepo *repository.AccountRepository
	notifier    notify.Notifier
	cfg         *config.Config
}

func NewAccountService(
	accountRepo *repository.AccountRepository,
	notifier notify.Notifier,
	cfg *config.Config,
) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		notifier:    notifier,
		cfg:         cfg,
	}
}

// Create registers a new account. The email pre-check gives a fast
// ErrDuplicateAccount; the unique constraint on the store remains the
// authoritative guard for concurrent inserts. Unconfirmed accounts get a
// confirmation message; a failed send is reported through NotifyErr and
// never rolls back the persisted account.
func (s *AccountService) Create(ctx context.Context, data CreateAccountData) (*dto.CreateResult, error) {
	email := NormalizeEmail(data.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidData)
	}

	existing, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateAccount
	}

	password := data.Password
	if password == "" {
		password = RandomSecret()
	}

	username := data.Username
	if username == "" {
		username = email
	}

	account := &entity.Account{
		Email:          email,
		Username:       username,
		PasswordDigest: HashCredential(password),
		FirstName:      data.FirstName,
		LastName:       data.LastName,
		Phone:          data.Phone,
		Confirmed:      false,
		Active:         true,
		HasAdminRight:  data.HasAdminRight,
	}
	if data.Confirmed != nil {
		account.Confirmed = *data.Confirmed
	}
	if data.Active != nil {
		account.Active = *data.Active
	}

	if err = s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// A concurrent create slipped past the pre-check.
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}

	result := &dto.CreateResult{Account: account}
	if account.Confirmed {
		// Administrative/seed path: persisted as-is, no notification.
		return result, nil
	}

	payload := s.GenerateRecoveryToken(account)
	payload.Extra["title"] = "Email Confirmation"
	if err := s.SendRecoveryNotification(ctx, payload); err != nil {
		logrus.WithError(err).WithField("account_id", account.ID).Error("Confirmation dispatch failed")
		result.NotifyErr = err
	}

	return result, nil
}

// Update applies profile changes and, when a new plaintext password is
// supplied, substitutes the digest. Either way the store bumps updated_at,
// which invalidates every previously issued token for the account.
func (s *AccountService) Update(ctx context.Context, accountID uint64, data UpdateAccountData) (*entity.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	if data.Username != "" {
		account.Username = data.Username
	}
	if data.FirstName != "" {
		account.FirstName = data.FirstName
	}
	if data.LastName != "" {
		account.LastName = data.LastName
	}
	if data.Phone != "" {
		account.Phone = data.Phone
	}
	if data.NewPassword != "" {
		account.PasswordDigest = HashCredential(data.NewPassword)
	}

	if err = s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Authenticate looks up an account whose email and password digest both
// match exactly. An unknown email and a wrong password are deliberately
// indistinguishable to the caller.
func (s *AccountService) Authenticate(ctx context.Context, email, digest string) (*dto.AuthResult, error) {
	account, err := s.accountRepo.FindByEmailAndDigest(ctx, NormalizeEmail(email), digest)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrInvalidLoginCredentials
	}

	if !account.Confirmed || !account.Active {
		return nil, ErrAccountNotActive
	}

	if err = s.accountRepo.TouchAccessedAt(ctx, account, time.Now()); err != nil {
		return nil, err
	}

	return s.establishSession(account)
}

// AuthenticateWithPassword hashes the plaintext just in time; it is the web
// entry point's variant of Authenticate.
func (s *AccountService) AuthenticateWithPassword(ctx context.Context, email, password string) (*dto.AuthResult, error) {
	if password == "" {
		return nil, ErrInvalidLoginCredentials
	}
	return s.Authenticate(ctx, email, HashCredential(password))
}

// GenerateRecoveryToken derives a token from the account's current state and
// picks the flow by confirmation status: unconfirmed accounts get the
// account-confirmation flow, confirmed accounts the password-recovery flow.
func (s *AccountService) GenerateRecoveryToken(account *entity.Account) *dto.RecoveryPayload {
	payload := &dto.RecoveryPayload{
		Token:     DeriveToken(account, PurposeRecover),
		ExpiresAt: time.Now().Add(s.cfg.RecoveryTokenTTL),
		Account:   account,
		Extra:     map[string]string{},
	}

	if account.Confirmed {
		payload.Template = notify.TemplateRecovery
		payload.ActionPath = ActionResetPassword
		payload.Subject = s.cfg.Email.RecoverySubject
	} else {
		payload.Template = notify.TemplateConfirmation
		payload.ActionPath = ActionConfirm
		payload.Subject = s.cfg.Email.ConfirmationSubject
	}

	return payload
}

// SendRecoveryNotification builds the deep link, renders the flow's template
// and hands the message to the notifier. Shared by the confirmation and
// recovery flows; payload.ActionPath tells them apart.
func (s *AccountService) SendRecoveryNotification(ctx context.Context, payload *dto.RecoveryPayload) error {
	account := payload.Account
	link := fmt.Sprintf("%s/%s?u=%d&t=%s&e=%d&n=%s",
		strings.TrimRight(s.cfg.AppURL, "/"),
		payload.ActionPath,
		account.ID,
		payload.Token,
		payload.ExpiresAt.UnixMilli(),
		url.QueryEscape(account.FullName()),
	)

	var text string
	if payload.ActionPath == ActionConfirm {
		text = "Please click on the link below to activate your account\n " + link
	} else {
		text = "Please click on the link below to enter a new password\n " + link
	}

	title := payload.Extra["title"]
	if title == "" {
		title = "Password Recovery"
	}

	html, err := notify.Render(payload.Template, notify.TemplateData{
		Link:        link,
		Subject:     payload.Subject,
		Title:       title,
		CompanyName: s.cfg.Email.CompanyName,
		CompanyLogo: s.cfg.Email.CompanyLogo,
		FirstName:   account.FirstName,
		LastName:    account.LastName,
		Email:       account.Email,
	})
	if err != nil {
		return err
	}

	return s.notifier.Send(ctx, &notify.Message{
		To:       account.Email,
		From:     s.cfg.Email.FromEmail,
		FromName: s.cfg.Email.FromName,
		Subject:  payload.Subject,
		Text:     text,
		HTML:     html,
	})
}

// VerifyConfirmation flips an account from unconfirmed to confirmed exactly
// once. The supplied token is checked against a fresh derivation from the
// account's current state; the caller-held expiry is enforced when present.
// On success the session hand-off happens immediately.
func (s *AccountService) VerifyConfirmation(ctx context.Context, accountID uint64, token string, expiresAt time.Time) (*dto.AuthResult, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	if account.Confirmed {
		return nil, ErrAlreadyVerified
	}

	if !expiresAt.IsZero() && expiresAt.Before(time.Now()) {
		return nil, ErrTokenExpired
	}

	if token == "" || token != DeriveToken(account, PurposeRecover) {
		return nil, ErrInvalidToken
	}

	account.Confirmed = true
	if err = s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}

	return s.establishSession(account)
}

// RequestPasswordReset clears the failed-attempt counter, persists, and only
// then derives the token, so the token binds to the post-reset updated_at.
// A failed dispatch surfaces through NotifyErr, not as the operation's error.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) (*dto.RecoveryResult, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidData)
	}

	account, err := s.accountRepo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	account.FailedPasswordAttempts = 0
	if err = s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}

	payload := s.GenerateRecoveryToken(account)
	result := &dto.RecoveryResult{Payload: payload}
	if err := s.SendRecoveryNotification(ctx, payload); err != nil {
		logrus.WithError(err).WithField("account_id", account.ID).Error("Recovery dispatch failed")
		result.NotifyErr = err
	}

	return result, nil
}

// ResetPassword replaces the digest after the supplied token matches a fresh
// derivation from the account's current state. A token issued before any
// intervening mutation (including a previous password change) no longer
// matches and is rejected.
func (s *AccountService) ResetPassword(ctx context.Context, accountID uint64, newPassword, token string, expiresAt time.Time) (*dto.AuthResult, error) {
	if newPassword == "" {
		return nil, fmt.Errorf("%w: new password is required", ErrInvalidData)
	}

	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	if !expiresAt.IsZero() && expiresAt.Before(time.Now()) {
		return nil, ErrTokenExpired
	}

	if token == "" || token != DeriveToken(account, PurposeRecover) {
		return nil, ErrInvalidToken
	}

	account.PasswordDigest = HashCredential(newPassword)
	if err = s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}

	return s.establishSession(account)
}

// ResendConfirmation regenerates and redispatches the confirmation message.
// An already-confirmed account is an informational no-op, not an error.
func (s *AccountService) ResendConfirmation(ctx context.Context, accountID uint64) (*dto.ResendResult, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	if account.Confirmed {
		return &dto.ResendResult{
			AlreadyConfirmed: true,
			Message:          account.Email + " has already confirmed the account",
		}, nil
	}

	payload := s.GenerateRecoveryToken(account)
	payload.Extra["title"] = "Email Confirmation"

	result := &dto.ResendResult{Message: "a confirmation link has been resent"}
	if err := s.SendRecoveryNotification(ctx, payload); err != nil {
		logrus.WithError(err).WithField("account_id", account.ID).Error("Confirmation redispatch failed")
		result.NotifyErr = err
	}

	return result, nil
}

func (s *AccountService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *AccountService) establishSession(account *entity.Account) (*dto.AuthResult, error) {
	claims := &Claims{
		AccountID:     account.ID,
		Email:         account.Email,
		HasAdminRight: account.HasAdminRight,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.cfg.JWTAccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   account.Email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &dto.AuthResult{
		Account:     account,
		AccessToken: signed,
		ExpiresIn:   int64(s.cfg.JWTAccessTokenTTL.Seconds()),
	}, nil
}
