package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/nao1215/riskscan/internal/model"
)

// TestHTTPClassifier_Classify tests response decoding variants.
func TestHTTPClassifier_Classify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		response  string
		wantLabel model.Label
		wantScore float64
	}{
		{"single object", `{"label":"negative","score":0.91}`, model.LabelNegative, 0.91},
		{"list picks highest", `[{"label":"positive","score":0.1},{"label":"negative","score":0.8},{"label":"neutral","score":0.1}]`, model.LabelNegative, 0.8},
		{"nested list", `[[{"label":"neutral","score":0.7},{"label":"negative","score":0.3}]]`, model.LabelNeutral, 0.7},
		{"class id label", `{"label":"LABEL_1","score":0.66}`, model.LabelNegative, 0.66},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.response))
			}))
			defer srv.Close()

			c := NewHTTPClassifier(srv.URL)
			got, err := c.Classify(context.Background(), "Revenue may decline.")
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got.Label != tt.wantLabel || got.Score != tt.wantScore {
				t.Errorf("Classify() = %+v, want %s %v", got, tt.wantLabel, tt.wantScore)
			}
		})
	}
}

// TestHTTPClassifier_Request tests the request body and headers.
func TestHTTPClassifier_Request(t *testing.T) {
	t.Parallel()

	type captured struct {
		method, auth, text string
	}
	requests := make(chan captured, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req classifyRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		requests <- captured{method: r.Method, auth: r.Header.Get("Authorization"), text: req.Text}
		_, _ = w.Write([]byte(`{"label":"neutral","score":0.5}`))
	}))
	defer srv.Close()

	c := NewHTTPClassifier(srv.URL, WithToken("secret"), WithMaxChars(10), WithRateLimit(100))
	if _, err := c.Classify(context.Background(), "ééééééééééééééé long sentence"); err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	got := <-requests
	gotMethod, gotAuth, gotText := got.method, got.auth, got.text
	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("unexpected Authorization header %q", gotAuth)
	}
	if n := utf8.RuneCountInString(gotText); n != 10 {
		t.Errorf("expected 10 runes after truncation, got %d", n)
	}
}

// TestHTTPClassifier_Errors tests failure reporting.
func TestHTTPClassifier_Errors(t *testing.T) {
	t.Parallel()

	t.Run("status error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewHTTPClassifier(srv.URL).Classify(context.Background(), "text here")
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("expected StatusError, got %v", err)
		}
		if statusErr.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("unexpected status %d", statusErr.StatusCode)
		}
	})

	t.Run("unknown label", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"label":"LABEL_9","score":0.9}`))
		}))
		defer srv.Close()

		_, err := NewHTTPClassifier(srv.URL).Classify(context.Background(), "text here")
		if !errors.Is(err, ErrUnexpectedResponse) {
			t.Errorf("expected ErrUnexpectedResponse, got %v", err)
		}
	})

	t.Run("garbage body", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer srv.Close()

		_, err := NewHTTPClassifier(srv.URL).Classify(context.Background(), "text here")
		if !errors.Is(err, ErrUnexpectedResponse) {
			t.Errorf("expected ErrUnexpectedResponse, got %v", err)
		}
	})

	t.Run("empty sentence", func(t *testing.T) {
		t.Parallel()
		_, err := NewHTTPClassifier("http://127.0.0.1:0").Classify(context.Background(), " ")
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("expected ErrEmptyInput, got %v", err)
		}
	})
}

// TestTruncate tests rune-aware truncation.
func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := truncate("abcdef", 3); got != "abc" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("abc", 0); got != "abc" {
		t.Errorf("truncate() with no limit = %q", got)
	}
	if got := truncate(strings.Repeat("界", 5), 2); got != "界界" {
		t.Errorf("truncate() = %q", got)
	}
}
