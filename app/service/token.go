package service

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/vibast-solutions/ms-go-accounts/app/entity"
)

// PurposeRecover is the purpose salt mixed into every verification and
// recovery token. Both flows derive from the same salt; the flow only
// decides template, subject and action path.
const PurposeRecover = "recover"

// DeriveToken computes a verification/recovery token from the account's
// mutable fields plus a purpose salt. No token is ever stored: any change to
// created_at, updated_at, password_digest or email yields a different value,
// which is the sole invalidation mechanism. Two calls against the same
// account state return the same token.
func DeriveToken(account *entity.Account, purpose string) string {
	sum := md5.Sum([]byte(
		timeComponent(account.CreatedAt) +
			timeComponent(account.UpdatedAt) +
			account.PasswordDigest +
			account.Email +
			purpose,
	))
	return hex.EncodeToString(sum[:])
}

// timeComponent encodes a timestamp as UTC microseconds. DATETIME(6) keeps
// microsecond precision, so an in-memory value and its round trip through
// the store derive the same token.
func timeComponent(t time.Time) string {
	return strconv.FormatInt(t.UTC().UnixMicro(), 10)
}
