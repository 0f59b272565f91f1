package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func loadTestFixture(t *testing.T) []feedListing {
	t.Helper()
	fixture, err := loadFixture(filepath.Join("testdata", "listings.json"))
	if err != nil {
		t.Fatalf("loading fixture: %v", err)
	}
	return fixture
}

func TestLoadFixture(t *testing.T) {
	fixture := loadTestFixture(t)
	if len(fixture) == 0 {
		t.Fatal("expected listings in fixture")
	}
	for _, l := range fixture {
		if l.URL == "" {
			t.Error("expected non-empty url")
		}
		if l.Title == "" {
			t.Error("expected non-empty title")
		}
	}
}

func TestSearchHandler_AllListings(t *testing.T) {
	fixture := loadTestFixture(t)
	handler := searchHandler(testLogger(), fixture)
	req := httptest.NewRequest(http.MethodGet, "/feed/search", http.NoBody)
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}

	var resp searchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Listings) != len(fixture) {
		t.Errorf("listings=%d, want %d", len(resp.Listings), len(fixture))
	}
	for i, s := range resp.Listings {
		if s.URL != fixture[i].URL {
			t.Errorf("listing %d url=%s, want %s", i, s.URL, fixture[i].URL)
		}
	}
}

func TestSearchHandler_QueryFilter(t *testing.T) {
	fixture := loadTestFixture(t)
	handler := searchHandler(testLogger(), fixture)
	req := httptest.NewRequest(http.MethodGet, "/feed/search?q=m50", http.NoBody)
	w := httptest.NewRecorder()

	handler(w, req)

	var resp searchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Listings) == 0 {
		t.Error("expected M50 results")
	}
	if len(resp.Listings) >= len(fixture) {
		t.Error("expected filter to reduce results")
	}
}

func TestSearchHandler_Pagination(t *testing.T) {
	fixture := loadTestFixture(t)
	handler := searchHandler(testLogger(), fixture)
	req := httptest.NewRequest(http.MethodGet, "/feed/search?limit=2&offset=0", http.NoBody)
	w := httptest.NewRecorder()

	handler(w, req)

	var resp searchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Listings) != 2 {
		t.Errorf("listings=%d, want 2", len(resp.Listings))
	}

	req = httptest.NewRequest(http.MethodGet, "/feed/search?limit=2&offset=2", http.NoBody)
	w = httptest.NewRecorder()
	handler(w, req)

	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Listings) != len(fixture)-2 {
		t.Errorf("listings=%d, want %d", len(resp.Listings), len(fixture)-2)
	}
}

func TestSearchHandler_NoResults(t *testing.T) {
	fixture := loadTestFixture(t)
	handler := searchHandler(testLogger(), fixture)
	req := httptest.NewRequest(http.MethodGet, "/feed/search?q=nonexistent_xyz_model", http.NoBody)
	w := httptest.NewRecorder()

	handler(w, req)

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if string(raw["listings"]) != "[]" {
		t.Errorf("listings=%s, want []", raw["listings"])
	}
}

func TestDetailHandler_Found(t *testing.T) {
	fixture := loadTestFixture(t)
	handler := detailHandler(testLogger(), fixture)
	req := httptest.NewRequest(http.MethodGet, "/feed/detail?url="+fixture[0].URL, http.NoBody)
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}

	var l feedListing
	if err := json.NewDecoder(w.Body).Decode(&l); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if l.URL != fixture[0].URL {
		t.Errorf("url=%s, want %s", l.URL, fixture[0].URL)
	}
	if l.Title != fixture[0].Title {
		t.Errorf("title=%s, want %s", l.Title, fixture[0].Title)
	}
}

func TestDetailHandler_NotFound(t *testing.T) {
	fixture := loadTestFixture(t)
	handler := detailHandler(testLogger(), fixture)
	req := httptest.NewRequest(http.MethodGet, "/feed/detail?url=https://example.com/unknown", http.NoBody)
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestDetailHandler_MissingURL(t *testing.T) {
	fixture := loadTestFixture(t)
	handler := detailHandler(testLogger(), fixture)
	req := httptest.NewRequest(http.MethodGet, "/feed/detail", http.NoBody)
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusBadRequest)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
