package util

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ResponseError is a non-2xx answer from the remote API reduced to a
// status and a human readable message.
type ResponseError struct {
	Msg    string
	Status int
}

func (e ResponseError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Msg)
}

// ParseResponseError extracts the server message from body. It looks at
// "message", then "detail", then the first field error in sorted key order,
// and falls back to fallback when none is usable.
func ParseResponseError(status int, body []byte, fallback string) ResponseError {
	msg := extractMessage(body)
	if msg == "" {
		msg = fallback
	}
	return ResponseError{Msg: msg, Status: status}
}

func extractMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}

	for _, key := range []string{"message", "detail"} {
		if s := asText(fields[key]); s != "" {
			return s
		}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s := asText(fields[k]); s != "" {
			if k == "non_field_errors" {
				return s
			}
			return k + ": " + s
		}
	}
	return ""
}

// asText accepts a JSON string or a list of strings.
func asText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.TrimSpace(strings.Join(list, " "))
	}
	return ""
}
