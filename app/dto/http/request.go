package http

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyConfirmationRequest struct {
	AccountID uint64 `json:"account_id"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

type ResendConfirmationRequest struct {
	AccountID uint64 `json:"account_id"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	AccountID   uint64 `json:"account_id"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
	ExpiresAt   int64  `json:"expires_at,omitempty"`
}

type UpdateAccountRequest struct {
	Username    string `json:"username,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	NewPassword string `json:"new_password,omitempty"`
}

// AdminCreateRequest is the administrative/seed creation path: it may
// override the confirmed and active defaults.
type AdminCreateRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password,omitempty"`
	Username      string `json:"username,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Confirmed     *bool  `json:"confirmed,omitempty"`
	Active        *bool  `json:"active,omitempty"`
	HasAdminRight bool   `json:"has_admin_right,omitempty"`
}
