// Package validation interprets declarative per-field rules against form values.
// Rules are evaluated synchronously and never perform I/O; checks that need a
// remote answer are layered by the caller as a Custom rule over a result it
// fetched beforehand.
package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MsgRequired = "This field is required"
	MsgEmail    = "Please enter a valid email address"
	MsgPattern  = "Invalid format"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CustomFunc returns an error message, or "" when the value is acceptable.
type CustomFunc func(value string) string

// Rules is the rule record for a single field.
type Rules struct {
	Required       bool
	Email          bool
	MinLength      int
	Pattern        *regexp.Regexp
	PatternMessage string
	Custom         CustomFunc
}

// RuleSet maps field names to their rules.
type RuleSet map[string]Rules

type rulesJSON struct {
	Required       bool   `json:"required,omitempty"`
	Email          bool   `json:"email,omitempty"`
	MinLength      int    `json:"minLength,omitempty"`
	Pattern        string `json:"pattern,omitempty"`
	PatternMessage string `json:"patternMessage,omitempty"`
}

// UnmarshalJSON compiles the pattern up front so a bad expression is reported
// when the rule set is loaded, not when a field is checked.
func (r *Rules) UnmarshalJSON(b []byte) error {
	var raw rulesJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := Rules{
		Required:       raw.Required,
		Email:          raw.Email,
		MinLength:      raw.MinLength,
		PatternMessage: raw.PatternMessage,
	}
	if raw.Pattern != "" {
		re, err := regexp.Compile(raw.Pattern)
		if err != nil {
			return fmt.Errorf("pattern %q: %w", raw.Pattern, err)
		}
		out.Pattern = re
	}
	*r = out
	return nil
}

func (r Rules) MarshalJSON() ([]byte, error) {
	raw := rulesJSON{
		Required:       r.Required,
		Email:          r.Email,
		MinLength:      r.MinLength,
		PatternMessage: r.PatternMessage,
	}
	if r.Pattern != nil {
		raw.Pattern = r.Pattern.String()
	}
	return json.Marshal(raw)
}

// ValidateField runs the rules for one field in fixed order: required, email,
// minLength, pattern, custom. The first failing rule wins. An empty value is
// valid unless the field is required. name is accepted for symmetry with
// Form.ValidateField and does not affect the result.
func ValidateField(name, value string, rules Rules) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if rules.Required {
			return MsgRequired
		}
		return ""
	}

	if rules.Email && !emailPattern.MatchString(trimmed) {
		return MsgEmail
	}
	if rules.MinLength > 0 && utf8.RuneCountInString(value) < rules.MinLength {
		return fmt.Sprintf("Must be at least %d characters", rules.MinLength)
	}
	if rules.Pattern != nil && !rules.Pattern.MatchString(value) {
		if rules.PatternMessage != "" {
			return rules.PatternMessage
		}
		return MsgPattern
	}
	if rules.Custom != nil {
		return rules.Custom(value)
	}
	return ""
}
