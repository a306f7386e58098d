package session

import (
	"encoding/json"
	"fmt"
	"strings"
)

// User is the canonical profile shape stored by the client: always id,
// name, email.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NormalizeUser maps a backend user payload into the canonical shape,
// tolerating alternate field names (user_id for id, full_name for name)
// and falling back to the submitted email when the server omits one.
func NormalizeUser(raw json.RawMessage, fallbackEmail string) User {
	fallbackEmail = strings.TrimSpace(fallbackEmail)

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return User{Email: fallbackEmail}
	}

	u := User{
		ID:    stringify(firstPresent(m, "id", "user_id")),
		Email: fallbackEmail,
	}

	if name, ok := firstPresent(m, "name", "full_name").(string); ok {
		u.Name = strings.TrimSpace(name)
	}
	if email, ok := m["email"].(string); ok && strings.TrimSpace(email) != "" {
		u.Email = strings.TrimSpace(email)
	}
	return u
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// stringify renders an id value the way the backend is allowed to send it:
// as a string or a number. Whole numbers lose their decimal point.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
