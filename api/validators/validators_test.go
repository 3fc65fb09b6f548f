package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
)

type addItemBody struct {
	Title    string `json:"title" validate:"required,max=5"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"jar","quantity":2}`))
	var body addItemBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Title != "jar" || body.Quantity != 2 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"jar","quantity":1,"extra":true}`))
	var body addItemBody
	err := DecodeJSONBody(req, &body)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"much too long","quantity":0}`))
	var body addItemBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if details["title"] != "must be at most 5" || details["quantity"] != "must be at least 1" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5", nil)
	if v, err := ParseQueryInt(req, "limit", 3, 1, 50); err != nil || v != 5 {
		t.Fatalf("expected 5, got %d %v", v, err)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if v, err := ParseQueryInt(req, "limit", 3, 1, 50); err != nil || v != 3 {
		t.Fatalf("expected default, got %d %v", v, err)
	}
	req = httptest.NewRequest(http.MethodGet, "/?limit=abc", nil)
	if _, err := ParseQueryInt(req, "limit", 3, 1, 50); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/?limit=99", nil)
	if _, err := ParseQueryInt(req, "limit", 3, 1, 50); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected range error, got %v", err)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello world ", 5); got != "hello" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString(" ok ", 0); got != "ok" {
		t.Fatalf("unexpected %q", got)
	}
}
