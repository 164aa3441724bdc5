package dto

// LoginRequest is the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@hospital.org"`
	Password string `json:"password" binding:"required,min=8"`
}

// RefreshTokenRequest is the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse carries an issued token pair.
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	ExpiresIn        int    `json:"expiresIn" example:"900"`
	RefreshExpiresIn int    `json:"refreshExpiresIn" example:"604800"`
}

// ProfileResponse describes the authenticated caller.
type ProfileResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role" example:"supervisor"`
	Institute string `json:"institute" example:"st-marys"`
	ProfileID *int64 `json:"profileId,omitempty"`
}
