package auth

import (
	"fmt"
)

const EmailKey = "email"

// Identity is the canonical record of an authenticated external user.
type Identity struct {
	Provider       string
	ExternalUserID string
	Profile        map[string]interface{}

	mapping map[string]string
}

func NewIdentity(provider, externalUserID string, profile map[string]interface{}, mapping map[string]string) *Identity {
	if profile == nil {
		profile = map[string]interface{}{}
	}
	return &Identity{
		Provider:       provider,
		ExternalUserID: externalUserID,
		Profile:        profile,
		mapping:        mapping,
	}
}

func (i *Identity) Email() string {
	return i.stringValue(EmailKey)
}

// LoginName is the name used when an account is first created for this identity.
func (i *Identity) LoginName() string {
	if v := i.Attributes()["username"]; v != nil {
		if s := fmt.Sprintf("%v", v); s != "" {
			return s
		}
	}
	if email := i.Email(); email != "" {
		return email
	}
	return i.ExternalUserID
}

// Attributes applies the provider's user info mapping to the profile.
// Mapped keys missing from the profile are left out.
func (i *Identity) Attributes() map[string]interface{} {
	result := make(map[string]interface{}, len(i.mapping))
	for attr, key := range i.mapping {
		if v, ok := i.Profile[key]; ok {
			result[attr] = v
		}
	}
	return result
}

func (i *Identity) stringValue(key string) string {
	v, ok := i.Profile[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
