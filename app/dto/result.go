package dto

import (
	"time"

	"github.com/vibast-solutions/ms-go-accounts/app/entity"
)

// CreateResult carries the persisted account plus the outcome of the
// confirmation dispatch. NotifyErr never rolls back the creation; callers
// decide what to do with a failed send.
type CreateResult struct {
	Account   *entity.Account
	NotifyErr error
}

type AuthResult struct {
	Account     *entity.Account
	AccessToken string
	ExpiresIn   int64
}

// RecoveryPayload is everything needed to build and send a token-bearing
// link for either the confirmation or the recovery flow.
type RecoveryPayload struct {
	Token      string
	ExpiresAt  time.Time
	Template   string
	ActionPath string
	Subject    string
	Account    *entity.Account
	Extra      map[string]string
}

type RecoveryResult struct {
	Payload   *RecoveryPayload
	NotifyErr error
}

// ResendResult distinguishes "confirmation re-sent" from "nothing to do,
// the account is already confirmed" without treating the latter as an error.
type ResendResult struct {
	AlreadyConfirmed bool
	Message          string
	NotifyErr        error
}
