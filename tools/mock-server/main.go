// Package main implements a mock marketplace feed server for local
// development. It serves search and detail feeds in the i4-scout feed
// format from a JSON fixture, so full scrape passes can be exercised
// without touching a real marketplace.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// feedListing mirrors the detail feed wire format.
type feedListing struct {
	Source      string   `json:"source"`
	ExternalID  string   `json:"external_id,omitempty"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Price       *int     `json:"price,omitempty"`
	MileageKM   *int     `json:"mileage_km,omitempty"`
	Year        *int     `json:"year,omitempty"`
	RawOptions  []string `json:"raw_options"`
	Description string   `json:"description,omitempty"`
}

type feedSummary struct {
	URL        string `json:"url"`
	ExternalID string `json:"external_id,omitempty"`
	Price      *int   `json:"price,omitempty"`
}

type searchResponse struct {
	Listings []feedSummary `json:"listings"`
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/listings.json", "path to listings fixture")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fixture, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "listings", len(fixture))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /feed/search", searchHandler(logger, fixture))
	mux.HandleFunc("GET /feed/detail", detailHandler(logger, fixture))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock feed server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadFixture(path string) ([]feedListing, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var listings []feedListing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return listings, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func searchHandler(logger *slog.Logger, fixture []feedListing) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.ToLower(r.URL.Query().Get("q"))

		limit := 50
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
			limit = v
		}
		offset := 0
		if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
			offset = v
		}

		// Filter by query substring match on title.
		matched := make([]feedSummary, 0, len(fixture))
		for _, l := range fixture {
			if q == "" || strings.Contains(strings.ToLower(l.Title), q) {
				matched = append(matched, feedSummary{URL: l.URL, ExternalID: l.ExternalID, Price: l.Price})
			}
		}

		total := len(matched)

		if offset >= len(matched) {
			matched = []feedSummary{}
		} else {
			end := min(offset+limit, len(matched))
			matched = matched[offset:end]
		}

		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		json.NewEncoder(w).Encode(searchResponse{Listings: matched})
		logger.Info("search", "query", q, "matched", total, "returned", len(matched), "offset", offset, "limit", limit)
	}
}

func detailHandler(logger *slog.Logger, fixture []feedListing) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := r.URL.Query().Get("url")
		if url == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
			json.NewEncoder(w).Encode(map[string]string{"error": "url query parameter is required"})
			return
		}

		for _, l := range fixture {
			if l.URL == url {
				w.Header().Set("Content-Type", "application/json")
				//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
				json.NewEncoder(w).Encode(l)
				logger.Info("detail", "url", url)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		json.NewEncoder(w).Encode(map[string]string{"error": "listing not found"})
		logger.Warn("detail not found", "url", url)
	}
}
