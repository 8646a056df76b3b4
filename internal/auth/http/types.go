package http

import (
	"time"

	"github.com/habitloop/habitloop/internal/auth/domain"
)

// tokenResponse is the body of the login and refresh endpoints. ExpiresIn
// is the access token lifetime in seconds.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func newTokenResponse(pair domain.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	}
}

// principalResponse is the public projection of a principal. The password
// digest has no representation here at all.
type principalResponse struct {
	ID             string     `json:"id"`
	LoginName      string     `json:"login_name"`
	ContactAddress string     `json:"contact_address"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Active         bool       `json:"active"`
	Privileged     bool       `json:"privileged"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

func newPrincipalResponse(p domain.Principal) principalResponse {
	return principalResponse{
		ID:             p.ID.String(),
		LoginName:      p.LoginName,
		ContactAddress: p.ContactAddress,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Active:         p.Active,
		Privileged:     p.Privileged,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		LastLogin:      p.LastLogin,
	}
}

func newPrincipalListResponse(ps []domain.Principal) []principalResponse {
	out := make([]principalResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, newPrincipalResponse(p))
	}
	return out
}
