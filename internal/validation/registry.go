package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// CustomValidator checks a single raw cell value. It returns an error when
// the value is rejected; the message is surfaced to the submitter.
type CustomValidator func(value string) error

// Registry maps custom validator identifiers stored in column schemas to
// statically compiled functions. Unknown identifiers are rejected when a
// configuration is saved, not when a file is validated.
type Registry struct {
	validators map[string]CustomValidator
}

// NewRegistry returns a registry preloaded with the built-in validators.
func NewRegistry() *Registry {
	r := &Registry{validators: map[string]CustomValidator{}}
	r.Register("uuid", validateUUID)
	r.Register("url", validateURL)
	r.Register("phone_e164", validatePhoneE164)
	r.Register("non_negative", validateNonNegative)
	r.Register("iso_country", validateISOCountry)
	return r
}

// Register adds or replaces a named validator.
func (r *Registry) Register(name string, fn CustomValidator) {
	r.validators[name] = fn
}

// Lookup returns the validator registered under name.
func (r *Registry) Lookup(name string) (CustomValidator, bool) {
	fn, ok := r.validators[name]
	return fn, ok
}

// Known reports whether a validator identifier is registered.
func (r *Registry) Known(name string) bool {
	_, ok := r.validators[name]
	return ok
}

// Names returns the registered identifiers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.validators))
	for name := range r.validators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validateUUID(value string) error {
	if _, err := uuid.Parse(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("value is not a valid UUID")
	}
	return nil
}

func validateURL(value string) error {
	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("value is not an absolute URL")
	}
	return nil
}

var phoneE164Pattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

func validatePhoneE164(value string) error {
	if !phoneE164Pattern.MatchString(strings.TrimSpace(value)) {
		return fmt.Errorf("value is not an E.164 phone number")
	}
	return nil
}

func validateNonNegative(value string) error {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("value is not numeric")
	}
	if n < 0 {
		return fmt.Errorf("value must not be negative")
	}
	return nil
}

var isoCountryPattern = regexp.MustCompile(`^[A-Z]{2}$`)

func validateISOCountry(value string) error {
	if !isoCountryPattern.MatchString(strings.ToUpper(strings.TrimSpace(value))) {
		return fmt.Errorf("value is not a two-letter country code")
	}
	return nil
}
