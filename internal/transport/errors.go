package transport

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a failed request per the error taxonomy.
type Kind int

const (
	// KindValidation is a malformed request rejected by the server,
	// carrying a server-supplied message.
	KindValidation Kind = iota
	// KindAuth is a 401; triggers session teardown when a token was present.
	KindAuth
	// KindServer is a 5xx.
	KindServer
	// KindNetwork means no response arrived at all.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	}
	return "unknown"
}

// Fixed fallback messages used when the server supplies none.
const (
	MsgSessionExpired = "Session expired, please sign in again"
	MsgServerError    = "Server error. Please try again later or check that the backend is running."
	MsgRequestFailed  = "Request failed"
)

// APIError is the single error shape surfaced for failed requests.
type APIError struct {
	Status  int
	Kind    Kind
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// errorBody is the error payload shape the backend uses: a top-level
// message and/or a field-keyed map of validation messages.
type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// classify builds an APIError from a non-2xx response. Server-supplied
// messages always win; otherwise 401 and 5xx get fixed messages, anything
// else the generic one.
func classify(status int, body []byte) *APIError {
	kind := KindValidation
	switch {
	case status == 401:
		kind = KindAuth
	case status >= 500:
		kind = KindServer
	}

	if msg := serverMessage(body); msg != "" {
		return &APIError{Status: status, Kind: kind, Message: msg}
	}
	if status == 401 {
		return &APIError{Status: status, Kind: KindAuth, Message: MsgSessionExpired}
	}
	if status >= 500 {
		return &APIError{Status: status, Kind: KindServer, Message: MsgServerError}
	}
	return &APIError{Status: status, Kind: kind, Message: MsgRequestFailed}
}

// serverMessage extracts a human-readable message from the error payload.
// Field-level errors are joined as "field: message" pairs, multiple pairs
// joined by ". ". Fields are sorted for stable output.
func serverMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if eb.Message != "" {
		return eb.Message
	}
	if len(eb.Errors) == 0 {
		return ""
	}

	fields := make([]string, 0, len(eb.Errors))
	for f := range eb.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var parts []string
	for _, f := range fields {
		for _, m := range eb.Errors[f] {
			parts = append(parts, fmt.Sprintf("%s: %s", f, m))
		}
	}
	return strings.Join(parts, ". ")
}
