package gotrue

import (
	"time"

	domainauth "github.com/jerseyretro/storefront/internal/domain/auth"
)

type wireUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
}

func (u wireUser) claims() domainauth.Claims {
	return domainauth.Claims{
		UserMetadata: domainauth.MetadataFromMap(u.UserMetadata),
		AppMetadata:  domainauth.MetadataFromMap(u.AppMetadata),
	}
}

// wireSession is the token endpoint response.
type wireSession struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	ExpiresAt    int64    `json:"expires_at"`
	RefreshToken string   `json:"refresh_token"`
	User         wireUser `json:"user"`
}

func (w wireSession) session(now time.Time) *domainauth.Session {
	var exp time.Time
	switch {
	case w.ExpiresAt > 0:
		exp = time.Unix(w.ExpiresAt, 0)
	case w.ExpiresIn > 0:
		exp = now.Add(time.Duration(w.ExpiresIn) * time.Second)
	}
	claims := w.User.claims()
	return &domainauth.Session{
		ID:           w.User.ID,
		Email:        w.User.Email,
		Name:         claims.UserMetadata.Name,
		Origin:       domainauth.OriginRemote,
		AccessToken:  w.AccessToken,
		RefreshToken: w.RefreshToken,
		ExpiresAt:    exp,
		Claims:       claims,
	}
}
