package wizard

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// The stock rules reuse the same validator the config layer relies on,
// evaluated per-value via Var tags.
var validate = validator.New()

func tagRule(tag, msg string) Rule {
	return func(value string, _ Form) error {
		if err := validate.Var(value, tag); err != nil {
			return errors.New(msg)
		}
		return nil
	}
}

// Email validates RFC-style email addresses.
func Email() Rule {
	return tagRule("email", "must be a valid email address")
}

// MinLen requires at least n characters.
func MinLen(n int) Rule {
	return tagRule(fmt.Sprintf("min=%d", n), fmt.Sprintf("must be at least %d characters", n))
}

// OneOf restricts the value to a fixed set, e.g. gender options.
func OneOf(options ...string) Rule {
	tag := "oneof="
	for i, o := range options {
		if i > 0 {
			tag += " "
		}
		tag += o
	}
	msg := fmt.Sprintf("must be one of %v", options)
	return tagRule(tag, msg)
}

// Date requires an ISO date (YYYY-MM-DD), the format the API stores
// for date of birth.
func Date() Rule {
	return tagRule("datetime=2006-01-02", "must be a date in YYYY-MM-DD form")
}

// MatchesField requires the value to equal another field's, used for
// password confirmation.
func MatchesField(other, msg string) Rule {
	return func(value string, form Form) error {
		if value != form[other] {
			return errors.New(msg)
		}
		return nil
	}
}
