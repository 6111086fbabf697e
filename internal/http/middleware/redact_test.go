package middleware

import (
	"net/http"
	"testing"
)

func TestRedactor_String(t *testing.T) {
	r := NewRedactor()
	cases := map[string]string{
		"":                        "",
		"page=2&page_size=50":     "page=2&page_size=50",
		"email=kim@example.co.kr": "email=[REDACTED:email]",
		"phone=010-1234-5678":     "phone=[REDACTED:phone]",
		"tel=+82 10 1234 5678":    "tel=[REDACTED:phone]",
		"rrn=900101-1234567":      "rrn=[REDACTED:rrn]",
		"id=123e4567-e89b-12d3-a456-426614174000": "id=[REDACTED:id]",
		"page=12345678": "page=12345678",
	}
	for in, want := range cases {
		if got := r.String(in); got != want {
			t.Fatalf("String(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestRedactor_Headers(t *testing.T) {
	r := NewRedactor(" X-API-Key ", "")
	h := http.Header{}
	h.Set("Authorization", "Bearer secret")
	h.Set("Cookie", "sid=1")
	h.Set("X-Api-Key", "k")
	h.Set("X-User-ID", "lee@example.com")
	h.Add("Accept", "application/json")
	h.Add("Accept", "text/plain")

	got := r.Headers(h)
	for _, k := range []string{"Authorization", "Cookie", "X-Api-Key"} {
		if got[k] != "[REDACTED]" {
			t.Fatalf("%s not masked: %q", k, got[k])
		}
	}
	if got["X-User-Id"] != "[REDACTED:email]" {
		t.Fatalf("user header not scrubbed: %q", got["X-User-Id"])
	}
	if got["Accept"] != "application/json, text/plain" {
		t.Fatalf("multi-value header = %q", got["Accept"])
	}
}
