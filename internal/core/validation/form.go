package validation

import (
	"sort"
	"strings"

	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
)

// Form holds the error and touched bookkeeping for one form instance.
// Touched state only decides whether an error is shown.
type Form struct {
	rules   RuleSet
	errors  map[string]string
	touched map[string]bool
}

func NewForm(rules RuleSet) *Form {
	return &Form{
		rules:   rules,
		errors:  make(map[string]string),
		touched: make(map[string]bool),
	}
}

// ValidateField checks a single field and records or clears its error.
func (f *Form) ValidateField(name, value string) string {
	rules, ok := f.rules[name]
	if !ok {
		delete(f.errors, name)
		return ""
	}
	msg := ValidateField(name, value, rules)
	if msg == "" {
		delete(f.errors, name)
	} else {
		f.errors[name] = msg
	}
	return msg
}

// ValidateForm checks every field that has rules. Missing values count as
// empty. All checked fields are marked touched, as on submit.
func (f *Form) ValidateForm(values map[string]string) bool {
	f.errors = make(map[string]string)
	for name, rules := range f.rules {
		f.touched[name] = true
		if msg := ValidateField(name, values[name], rules); msg != "" {
			f.errors[name] = msg
		}
	}
	return len(f.errors) == 0
}

func (f *Form) MarkTouched(name string) { f.touched[name] = true }

func (f *Form) Touched(name string) bool { return f.touched[name] }

func (f *Form) ClearErrors() { f.errors = make(map[string]string) }

// VisibleError returns the field's error only once the field is touched.
func (f *Form) VisibleError(name string) string {
	if !f.touched[name] {
		return ""
	}
	return f.errors[name]
}

func (f *Form) Errors() map[string]string {
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Err returns a *FieldErrors wrapping domain.ErrValidationFailed, or nil.
func (f *Form) Err() error {
	if len(f.errors) == 0 {
		return nil
	}
	return &FieldErrors{Fields: f.Errors()}
}

// FieldErrors carries per-field messages for a failed form.
type FieldErrors struct {
	Fields map[string]string
}

func (e *FieldErrors) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *FieldErrors) Unwrap() error { return domain.ErrValidationFailed }
