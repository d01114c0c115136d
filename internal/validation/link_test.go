package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/Varun5711/shortlinks/internal/models"
)

func strPtr(s string) *string { return &s }

func TestValidateShortCode_Valid(t *testing.T) {
	validCodes := []string{
		"abc",
		"my-link",
		"my_link",
		"MyLink123",
		"gh2024",
		"npm-pkg",
		"api",
		"12345678901234567890",
	}

	for _, code := range validCodes {
		if err := ValidateShortCode(code); err != nil {
			t.Errorf("expected '%s' to be valid, got error: %v", code, err)
		}
	}
}

func TestValidateShortCode_Invalid(t *testing.T) {
	tests := []struct {
		code string
		want []string
	}{
		{"ab", []string{MsgShortCodeTooShort}},
		{"", []string{MsgShortCodeTooShort, MsgShortCodeCharset}},
		{"a!", []string{MsgShortCodeTooShort, MsgShortCodeCharset}},
		{"123456789012345678901", []string{MsgShortCodeTooLong}},
		{"my link", []string{MsgShortCodeCharset}},
		{"my.link", []string{MsgShortCodeCharset}},
		{"my/link", []string{MsgShortCodeCharset}},
		{"café", []string{MsgShortCodeCharset}},
	}

	for _, tt := range tests {
		err := ValidateShortCode(tt.code)
		var verr *Error
		if !errors.As(err, &verr) {
			t.Fatalf("expected *Error for '%s', got: %v", tt.code, err)
		}
		if len(verr.Fields) != len(tt.want) {
			t.Fatalf("code '%s': expected %d problems, got %+v", tt.code, len(tt.want), verr.Fields)
		}
		for i, msg := range tt.want {
			if verr.Fields[i].Field != "short_code" || verr.Fields[i].Message != msg {
				t.Errorf("code '%s': field %d = %+v, want %q", tt.code, i, verr.Fields[i], msg)
			}
		}
	}
}

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"https://example.com", true},
		{"http://example.com/path?q=1#frag", true},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"http://localhost:8080", true},
		{"", false},
		{"example.com", false},
		{"/relative/path", false},
		{"ftp://example.com", false},
		{"javascript:alert(1)", false},
		{"https://", false},
		{" https://example.com", false},
		{"http://[::1", false},
	}

	for _, tt := range tests {
		if got := IsValidURL(tt.raw); got != tt.want {
			t.Errorf("IsValidURL(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name       string
		req        models.CreateLinkRequest
		wantFields []string
	}{
		{
			name: "generated code",
			req:  models.CreateLinkRequest{OriginalURL: "https://example.com"},
		},
		{
			name: "custom code and title",
			req:  models.CreateLinkRequest{OriginalURL: "https://example.com", ShortCode: "my-link", Title: strPtr("Example")},
		},
		{
			name: "title at limit",
			req:  models.CreateLinkRequest{OriginalURL: "https://example.com", Title: strPtr(strings.Repeat("é", 200))},
		},
		{
			name:       "bad url",
			req:        models.CreateLinkRequest{OriginalURL: "not a url"},
			wantFields: []string{"original_url"},
		},
		{
			name:       "everything wrong",
			req:        models.CreateLinkRequest{OriginalURL: "nope", ShortCode: "x", Title: strPtr(strings.Repeat("a", 201))},
			wantFields: []string{"original_url", "short_code", "title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreate(tt.req)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if len(verr.Fields) != len(tt.wantFields) {
				t.Fatalf("expected fields %v, got %+v", tt.wantFields, verr.Fields)
			}
			for i, f := range tt.wantFields {
				if verr.Fields[i].Field != f {
					t.Errorf("field %d = %s, want %s", i, verr.Fields[i].Field, f)
				}
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	okID := "0b6a3f9c-2d0e-4a8f-9d57-3c1b7e2f4a10"

	if err := ValidateUpdate(models.UpdateLinkRequest{LinkID: okID, OriginalURL: "https://example.org"}); err != nil {
		t.Fatalf("expected valid update, got %v", err)
	}

	err := ValidateUpdate(models.UpdateLinkRequest{LinkID: "42", OriginalURL: "https://example.org"})
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if verr.Details() != MsgInvalidLinkID {
		t.Errorf("unexpected details: %q", verr.Details())
	}
}

func TestIsLinkID(t *testing.T) {
	if !IsLinkID("0b6a3f9c-2d0e-4a8f-9d57-3c1b7e2f4a10") {
		t.Error("expected canonical uuid to be accepted")
	}
	for _, id := range []string{"", "42", "{0b6a3f9c-2d0e-4a8f-9d57-3c1b7e2f4a10}", "urn:uuid:0b6a3f9c-2d0e-4a8f-9d57-3c1b7e2f4a10", "0b6a3f9c2d0e4a8f9d573c1b7e2f4a10"} {
		if IsLinkID(id) {
			t.Errorf("expected %q to be rejected", id)
		}
	}
}

func TestErrorDetails(t *testing.T) {
	verr := &Error{Fields: []FieldError{
		{Field: "original_url", Message: MsgInvalidURL},
		{Field: "title", Message: MsgTitleTooLong},
	}}

	want := "Must be a valid URL, Title must be at most 200 characters"
	if verr.Details() != want {
		t.Errorf("Details() = %q, want %q", verr.Details(), want)
	}
	if verr.Error() != "validation failed: "+want {
		t.Errorf("Error() = %q", verr.Error())
	}
}

func TestSuggestAlternatives(t *testing.T) {
	suggestions := SuggestAlternatives("mylink", 3)

	expected := []string{"mylink-1", "mylink-2", "mylink-3"}
	if len(suggestions) != len(expected) {
		t.Fatalf("expected %d suggestions, got %d", len(expected), len(suggestions))
	}
	for i, suggestion := range suggestions {
		if suggestion != expected[i] {
			t.Errorf("expected suggestion '%s', got '%s'", expected[i], suggestion)
		}
	}
}

func TestSuggestAlternatives_ZeroCount(t *testing.T) {
	if suggestions := SuggestAlternatives("mylink", 0); len(suggestions) != 0 {
		t.Errorf("expected 0 suggestions, got %d", len(suggestions))
	}
}

func TestSuggestAlternatives_StayWithinLimit(t *testing.T) {
	long := strings.Repeat("a", MaxShortCodeLength)

	for _, s := range SuggestAlternatives(long, 12) {
		if err := ValidateShortCode(s); err != nil {
			t.Errorf("suggestion %q is not a valid code: %v", s, err)
		}
	}
	if got := SuggestAlternatives(long, 12)[11]; got != strings.Repeat("a", 17)+"-12" {
		t.Errorf("unexpected 12th suggestion %q", got)
	}
}
