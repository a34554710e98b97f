package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pubsync/pubsync/internal/config"
	"github.com/pubsync/pubsync/internal/doi"
	"github.com/pubsync/pubsync/internal/fetch"
	"github.com/pubsync/pubsync/internal/oa"
	"github.com/pubsync/pubsync/internal/record"
)

func feedSet(t *testing.T) *record.Set {
	t.Helper()
	set := record.NewSet()
	set.GetOrCreate(doi.DOI("10.1234/reconciled")).Meta = &record.Metadata{
		Title:          "A reconciled article",
		Kind:           record.JournalArticle,
		ContainerTitle: "Journal of Tests",
		Authors:        []record.Author{{Family: "Doe", Given: "Jane"}},
		Issued:         record.Date{Year: 2024, Month: 3, Day: 1},
		OAStatus:       oa.Gold,
	}
	return set
}

func TestWriteFeed_NoPathSkipsEmission(t *testing.T) {
	// A run without an output path must not fetch the people roster.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))
	defer srv.Close()

	cfg := &config.Config{Organisation: "EI", PeopleDataCSVURL: srv.URL}
	if err := writeFeed(context.Background(), zerolog.Nop(), cfg, fetch.New(), feedSet(t), ""); err != nil {
		t.Fatalf("writeFeed() error = %v", err)
	}
}

func TestWriteFeed_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publications.xml")
	cfg := &config.Config{Organisation: "EI"}

	if err := writeFeed(context.Background(), zerolog.Nop(), cfg, fetch.New(), feedSet(t), path); err != nil {
		t.Fatalf("writeFeed() error = %v", err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading feed: %v", err)
	}
	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		"<Title>A reconciled article</Title>",
		"<DOI>10.1234/reconciled</DOI>",
	} {
		if !strings.Contains(string(out), want) {
			t.Errorf("feed missing %q", want)
		}
	}
}
