package validation

import (
	"net/mail"
	"net/url"
	"strings"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func Email(field, value string, v Violations) {
	if _, err := mail.ParseAddress(strings.TrimSpace(value)); err != nil {
		v[field] = "invalid_email"
	}
}

func MinLen(field, value string, minChars int, v Violations) {
	if len(value) < minChars {
		v[field] = "too_short"
	}
}

func OneOf(field, value string, allowed []string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v[field] = "invalid_value"
}

// URL checks that a non-empty value parses as an absolute http(s) URL.
func URL(field, value string, v Violations) {
	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		v[field] = "invalid_url"
	}
}

// SplitList turns a comma separated string into trimmed segments, dropping empties.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
