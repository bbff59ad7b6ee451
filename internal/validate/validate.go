// Package validate performs local input validation before any network call.
//
// Validation failures are structured results, never errors: callers render
// the messages and skip the request.
package validate

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

// Result is a structured validity report.
type Result struct {
	Valid  bool
	Errors []string
}

func invalid(msgs ...string) Result {
	return Result{Errors: msgs}
}

var ok = Result{Valid: true}

// credentialsInput carries the sign-in/sign-up form fields.
type credentialsInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=72"`
}

// Credentials validates an email/password pair.
func Credentials(email, password string) Result {
	in := credentialsInput{
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	err := v.Struct(in)
	if err == nil {
		return ok
	}

	var msgs []string
	for _, fe := range err.(validator.ValidationErrors) {
		switch fe.Field() {
		case "Email":
			if fe.Tag() == "required" {
				msgs = append(msgs, "Email is required")
			} else {
				msgs = append(msgs, "Email is not valid")
			}
		case "Password":
			switch fe.Tag() {
			case "required":
				msgs = append(msgs, "Password is required")
			case "min":
				msgs = append(msgs, "Password must be at least 8 characters")
			default:
				msgs = append(msgs, "Password must be at most 72 characters")
			}
		}
	}
	return invalid(msgs...)
}

// titleInput carries a task title, trimmed before validation.
type titleInput struct {
	Title string `validate:"required,max=255"`
}

// TaskTitle validates a task title. Whitespace-only titles are empty;
// titles longer than 255 characters are rejected.
func TaskTitle(title string) Result {
	err := v.Struct(titleInput{Title: strings.TrimSpace(title)})
	if err == nil {
		return ok
	}

	for _, fe := range err.(validator.ValidationErrors) {
		if fe.Tag() == "required" {
			return invalid("Title is required")
		}
	}
	return invalid("Title must be at most 255 characters")
}
