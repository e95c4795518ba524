package dto

// Request DTOs

type PatientLoginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Role        string `json:"role"`
}

// SessionResponse is returned on registration: the new patient plus a token.
type SessionResponse struct {
	Patient PatientResponse `json:"patient"`
	Token   TokenResponse   `json:"token"`
}
