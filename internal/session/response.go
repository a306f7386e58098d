package session

import (
	"encoding/json"
	"fmt"
)

// authResponse is the login/register response: access_token (not "token")
// plus a user object. Some deployments wrap it as {"data": {...}}, and the
// user object occasionally sits next to the envelope instead of inside it.
type authResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"`
	User         json.RawMessage `json:"user"`
}

func unwrapAuthResponse(raw json.RawMessage) (*authResponse, error) {
	var outer struct {
		authResponse
		Data *authResponse `json:"data"`
	}
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}

	base := outer.authResponse
	if outer.Data != nil && outer.Data.AccessToken != "" {
		base = *outer.Data
	}

	// The user may live on the base, beside the envelope, or inside it.
	if len(base.User) == 0 || string(base.User) == "null" {
		if len(outer.authResponse.User) > 0 {
			base.User = outer.authResponse.User
		} else if outer.Data != nil && len(outer.Data.User) > 0 {
			base.User = outer.Data.User
		}
	}

	if base.AccessToken == "" {
		return nil, fmt.Errorf("decode auth response: missing access_token")
	}
	return &base, nil
}
