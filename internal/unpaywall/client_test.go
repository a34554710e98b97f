package unpaywall

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pubsync/pubsync/internal/doi"
	"github.com/pubsync/pubsync/internal/fetch"
	"github.com/pubsync/pubsync/internal/oa"
)

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/10.1093/molbev/msy227" {
			t.Errorf("path = %q", req.URL.Path)
		}
		if got := req.URL.Query().Get("email"); got != "ops@example.org" {
			t.Errorf("email param = %q, want ops@example.org", got)
		}
		w.Write([]byte(`{"doi":"10.1093/molbev/msy227","oa_status":"green"}`))
	}))
	defer srv.Close()

	fc := fetch.New(fetch.WithTimeout(2*time.Second), fetch.WithRetries(1))
	c := New(fc, "ops@example.org", WithBaseURL(srv.URL))

	got, err := c.Status(context.Background(), doi.DOI("10.1093/molbev/msy227"))
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if got != oa.Green {
		t.Errorf("Status() = %q, want %q", got, oa.Green)
	}
}

func TestStatus_UnknownVocabulary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"doi":"10.1093/molbev/msy227","oa_status":"diamond"}`))
	}))
	defer srv.Close()

	fc := fetch.New(fetch.WithTimeout(2*time.Second), fetch.WithRetries(1))
	c := New(fc, "ops@example.org", WithBaseURL(srv.URL))

	_, err := c.Status(context.Background(), doi.DOI("10.1093/molbev/msy227"))
	if err == nil || !strings.Contains(err.Error(), "diamond") {
		t.Errorf("Status() error = %v, want unknown-status error", err)
	}
}

func TestStatus_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.NotFound(w, req)
	}))
	defer srv.Close()

	fc := fetch.New(fetch.WithTimeout(2*time.Second), fetch.WithRetries(1))
	c := New(fc, "ops@example.org", WithBaseURL(srv.URL))

	_, err := c.Status(context.Background(), doi.DOI("10.9999/nope"))
	if !fetch.IsNotFound(err) {
		t.Errorf("Status() error = %v, want not-found", err)
	}
}
