package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthenticated means the call carried no owner identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound covers both missing links and links owned by someone else.
	ErrNotFound = errors.New("link not found or you do not have permission")
	// ErrCodeTaken is matched by *CodeTakenError.
	ErrCodeTaken = errors.New("short code already taken")
	// ErrCodeGenerationExhausted is transient; the caller may retry.
	ErrCodeGenerationExhausted = errors.New("failed to generate a unique short code")
)

const suggestionCount = 3

// CodeTakenError reports a requested short code that already exists.
type CodeTakenError struct {
	Code        string
	Suggestions []string
}

func (e *CodeTakenError) Error() string {
	return fmt.Sprintf("Short code %q is already taken. Please choose another.", e.Code)
}

func (e *CodeTakenError) Is(target error) bool {
	return target == ErrCodeTaken
}

// Details lists the suggested alternatives, if any.
func (e *CodeTakenError) Details() string {
	if len(e.Suggestions) == 0 {
		return ""
	}
	return "Try: " + strings.Join(e.Suggestions, ", ")
}
