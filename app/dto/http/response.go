package http

type AccountResponse struct {
	ID            uint64 `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	FullName      string `json:"full_name,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Confirmed     bool   `json:"confirmed"`
	Active        bool   `json:"active"`
	HasAdminRight bool   `json:"has_admin_right"`
}

type RegisterResponse struct {
	Account AccountResponse `json:"account"`
	Message string          `json:"message"`
}

type LoginResponse struct {
	Account     AccountResponse `json:"account"`
	AccessToken string          `json:"access_token"`
	ExpiresIn   int64           `json:"expires_in"`
}

type VerifyConfirmationResponse struct {
	Account     AccountResponse `json:"account"`
	AccessToken string          `json:"access_token"`
	ExpiresIn   int64           `json:"expires_in"`
	Message     string          `json:"message"`
}

type ResendConfirmationResponse struct {
	Message string `json:"message"`
}

type ForgotPasswordResponse struct {
	Message string `json:"message"`
}

type ResetPasswordResponse struct {
	Account     AccountResponse `json:"account"`
	AccessToken string          `json:"access_token"`
	ExpiresIn   int64           `json:"expires_in"`
	Message     string          `json:"message"`
}

type UpdateAccountResponse struct {
	Account AccountResponse `json:"account"`
	Message string          `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
