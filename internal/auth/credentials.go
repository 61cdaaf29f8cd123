package auth

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Credentials is the sign-up/sign-in payload.
type Credentials struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ParseCredentials extracts credentials from a request body. The storefront
// frontend form-encodes the whole JSON document as a field name, so besides a
// plain JSON body we also scan form keys for one that carries username and
// password.
func ParseCredentials(body []byte) (Credentials, bool) {
	var c Credentials
	if err := json.Unmarshal(body, &c); err == nil && c.Username != "" && c.Password != "" {
		return c, true
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return Credentials{}, false
	}
	for key := range values {
		if !strings.Contains(key, "username") || !strings.Contains(key, "password") {
			continue
		}
		if err := json.Unmarshal([]byte(key), &c); err == nil && c.Username != "" && c.Password != "" {
			return c, true
		}
	}
	return Credentials{}, false
}
