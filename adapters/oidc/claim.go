// Standard claims, see https://openid.net/specs/openid-connect-core-1_0.html#StandardClaims
package oidc

type OpenID struct {
	Sub string `json:"sub"`
	Iss string `json:"iss"`
	Exp int64  `json:"exp"`
	Iat int64  `json:"iat"`
}

type Email struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

type Profile struct {
	Name       string `json:"name"`
	FamilyName string `json:"family_name"`
	GivenName  string `json:"given_name"`
	Picture    string `json:"picture"`
}

type IDToken struct {
	OpenID
	Email
	Profile
}

// DisplayName prefers the full name and falls back to the email address.
func (t IDToken) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Email.Email
}
