package validation

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Varun5711/shortlinks/internal/models"
)

const (
	MinShortCodeLength = 3
	MaxShortCodeLength = 20
	MaxTitleLength     = 200
)

const (
	MsgInvalidURL        = "Must be a valid URL"
	MsgShortCodeTooShort = "Short code must be at least 3 characters"
	MsgShortCodeTooLong  = "Short code must be at most 20 characters"
	MsgShortCodeCharset  = "Short code can only contain letters, numbers, hyphens, and underscores"
	MsgTitleTooLong      = "Title must be at most 200 characters"
	MsgInvalidLinkID     = "Invalid link ID"
)

var shortCodeRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// FieldError is one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error collects every field that failed, in input order.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	return "validation failed: " + e.Details()
}

// Details joins the field messages the way they are shown to callers.
func (e *Error) Details() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, ", ")
}

func (e *Error) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *Error) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ValidateCreate checks a create request. An empty ShortCode means "generate one".
func ValidateCreate(req models.CreateLinkRequest) error {
	verr := &Error{}
	checkURL(verr, req.OriginalURL)
	if req.ShortCode != "" {
		for _, msg := range shortCodeProblems(req.ShortCode) {
			verr.add("short_code", msg)
		}
	}
	checkTitle(verr, req.Title)
	return verr.orNil()
}

func ValidateUpdate(req models.UpdateLinkRequest) error {
	verr := &Error{}
	if !IsLinkID(req.LinkID) {
		verr.add("link_id", MsgInvalidLinkID)
	}
	checkURL(verr, req.OriginalURL)
	checkTitle(verr, req.Title)
	return verr.orNil()
}

func ValidateLinkID(id string) error {
	if IsLinkID(id) {
		return nil
	}
	return &Error{Fields: []FieldError{{Field: "link_id", Message: MsgInvalidLinkID}}}
}

// ValidateShortCode reports the first problem with a caller-supplied code.
func ValidateShortCode(code string) error {
	problems := shortCodeProblems(code)
	if len(problems) == 0 {
		return nil
	}
	verr := &Error{}
	for _, msg := range problems {
		verr.add("short_code", msg)
	}
	return verr
}

// IsLinkID accepts only the canonical 36-character UUID form.
func IsLinkID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// IsValidURL accepts absolute http and https URLs with a host.
func IsValidURL(raw string) bool {
	if raw == "" || strings.TrimSpace(raw) != raw {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

func checkURL(verr *Error, raw string) {
	if !IsValidURL(raw) {
		verr.add("original_url", MsgInvalidURL)
	}
}

func checkTitle(verr *Error, title *string) {
	if title != nil && utf8.RuneCountInString(*title) > MaxTitleLength {
		verr.add("title", MsgTitleTooLong)
	}
}

func shortCodeProblems(code string) []string {
	var problems []string
	if len(code) < MinShortCodeLength {
		problems = append(problems, MsgShortCodeTooShort)
	}
	if len(code) > MaxShortCodeLength {
		problems = append(problems, MsgShortCodeTooLong)
	}
	if !shortCodeRegex.MatchString(code) {
		problems = append(problems, MsgShortCodeCharset)
	}
	return problems
}

// SuggestAlternatives proposes numbered variants of a taken code, each still
// within the short code length limit.
func SuggestAlternatives(code string, count int) []string {
	suggestions := make([]string, 0, count)

	for i := 1; i <= count; i++ {
		suffix := "-" + strconv.Itoa(i)
		base := code
		if len(base)+len(suffix) > MaxShortCodeLength {
			base = base[:MaxShortCodeLength-len(suffix)]
		}
		suggestions = append(suggestions, base+suffix)
	}

	return suggestions
}
