// Package api implements the HTTP client for the MeetDeck auth gateway:
// request/response contracts, the bearer-token transport with silent
// refresh, and the typed operations the session layer builds on.
package api

// Role is the gateway-assigned authorization role of a user.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleEmployee   Role = "EMPLOYEE"
	RoleGuest      Role = "GUEST"
)

// User is the identity record returned by the gateway. It is immutable from
// the client's point of view.
type User struct {
	ID               int64  `json:"id"`
	Email            string `json:"email"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Phone            string `json:"phone,omitempty"`
	AvatarURL        string `json:"avatarUrl,omitempty"`
	Role             Role   `json:"role"`
	Active           bool   `json:"active"`
	OrganizationID   int64  `json:"organizationId"`
	OrganizationName string `json:"organizationName"`
}

// Envelope is the wrapper every gateway response body uses.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TwoFactorVerifyRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	TwoFactorCode string `json:"twoFactorCode"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// AuthResult is the payload of the login and two-factor endpoints.
//
// When RequiresTwoFactor is true the token fields are empty and
// TwoFactorToken holds a short-lived challenge handle instead; no API
// access is possible with it. A missing requiresTwoFactor field decodes
// as false, which the gateway treats as a fully authenticated login.
type AuthResult struct {
	AccessToken       string `json:"accessToken"`
	RefreshToken      string `json:"refreshToken"`
	TokenType         string `json:"tokenType"`
	ExpiresIn         int64  `json:"expiresIn"`
	User              *User  `json:"user"`
	RequiresTwoFactor bool   `json:"requiresTwoFactor"`
	TwoFactorToken    string `json:"twoFactorToken,omitempty"`
}

// TokenPair is the payload of the refresh endpoint.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// tokenCarrier is implemented by payloads that may carry a fresh token pair.
// The client persists such pairs as a side effect of decoding, independent
// of the 401-recovery path.
type tokenCarrier interface {
	tokenPair() (access, refresh string, ok bool)
}

func (r *AuthResult) tokenPair() (string, string, bool) {
	if r.AccessToken == "" || r.RefreshToken == "" {
		return "", "", false
	}
	return r.AccessToken, r.RefreshToken, true
}

func (p *TokenPair) tokenPair() (string, string, bool) {
	if p.AccessToken == "" || p.RefreshToken == "" {
		return "", "", false
	}
	return p.AccessToken, p.RefreshToken, true
}
