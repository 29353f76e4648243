package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/bookhaven/catalog/internal/config"
)

func TestAddBookRequiresToken(t *testing.T) {
	s := newTestService(t, &config.Config{BooksAPI: "http://books.local/"})

	resp := serve(s, jsonRequest(http.MethodPost, "/api/add", map[string]any{"title": "Dune"}))
	expectError(t, resp, http.StatusInternalServerError, "Authorization token is required")
}

func TestAddBookMissingConfig(t *testing.T) {
	s := newTestService(t, &config.Config{})

	resp := serve(s, jsonRequest(http.MethodPost, "/api/add", map[string]any{"title": "Dune"}))
	expectError(t, resp, http.StatusInternalServerError, "API is not defined")
}

func TestAddBookForwardsWithToken(t *testing.T) {
	upstream, calls := newUpstream(t, http.StatusCreated, `{"id":"b1"}`)
	s := newTestService(t, &config.Config{BooksAPI: upstream.URL + "/books/"})

	req := jsonRequest(http.MethodPost, "/api/add", map[string]any{"title": "Dune"})
	req.Header.Set("Authorization", "Bearer tok")
	resp := serve(s, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	if msg := decodeBody(t, resp)["message"]; msg != "Book added successfully" {
		t.Fatalf("unexpected message %v", msg)
	}
	call := (*calls)[0]
	if call.Method != http.MethodPost || call.Auth != "Bearer tok" {
		t.Fatalf("unexpected upstream call: %+v", call)
	}
}

func TestAddBookCollectionOverride(t *testing.T) {
	upstream, calls := newUpstream(t, http.StatusOK, `{}`)
	s := newTestService(t, &config.Config{BooksAPI: upstream.URL + "/books/"})

	req := jsonRequest(http.MethodPost, "/api/add?collection=classics",
		map[string]any{"title": "Dune", "collection": "books"})
	req.Header.Set("Authorization", "Bearer tok")
	serve(s, req)

	var forwarded map[string]any
	if err := json.Unmarshal((*calls)[0].Body, &forwarded); err != nil {
		t.Fatalf("unmarshal forwarded body: %v", err)
	}
	if forwarded["collection"] != "classics" {
		t.Fatalf("expected collection override, got %v", forwarded["collection"])
	}
}

const visionResponse = `{"responses":[{"imagePropertiesAnnotation":{"dominantColors":{"colors":[{"color":{"red":51,"green":102,"blue":153},"score":0.42}]}}}]}`

func TestAddBookDerivesDominantColor(t *testing.T) {
	books, calls := newUpstream(t, http.StatusOK, `{}`)
	vision, visionCalls := newUpstream(t, http.StatusOK, visionResponse)
	s := newTestService(t, &config.Config{
		BooksAPI:     books.URL + "/books/",
		VisionAPIURL: vision.URL + "/v1/images:annotate",
		VisionAPIKey: "vision-key",
	})

	req := jsonRequest(http.MethodPost, "/api/add",
		map[string]any{"title": "Dune", "coverImageUrl": "https://cdn.example.com/dune.jpg"})
	req.Header.Set("Authorization", "Bearer tok")
	resp := serve(s, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	if len(*visionCalls) != 1 {
		t.Fatalf("expected one vision call, got %d", len(*visionCalls))
	}
	if (*visionCalls)[0].Query != "key=vision-key" {
		t.Fatalf("expected api key in query, got %q", (*visionCalls)[0].Query)
	}

	var forwarded map[string]any
	if err := json.Unmarshal((*calls)[0].Body, &forwarded); err != nil {
		t.Fatalf("unmarshal forwarded body: %v", err)
	}
	if forwarded["dominantColor"] != "#336699" {
		t.Fatalf("expected derived color, got %v", forwarded["dominantColor"])
	}
}

func TestAddBookVisionFailureDoesNotFailAdd(t *testing.T) {
	books, calls := newUpstream(t, http.StatusOK, `{}`)
	vision, _ := newUpstream(t, http.StatusInternalServerError, `{}`)
	s := newTestService(t, &config.Config{
		BooksAPI:     books.URL + "/books/",
		VisionAPIURL: vision.URL + "/v1/images:annotate",
		VisionAPIKey: "vision-key",
	})

	req := jsonRequest(http.MethodPost, "/api/add",
		map[string]any{"title": "Dune", "coverImageUrl": "https://cdn.example.com/dune.jpg"})
	req.Header.Set("Authorization", "Bearer tok")
	resp := serve(s, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	var forwarded map[string]any
	if err := json.Unmarshal((*calls)[0].Body, &forwarded); err != nil {
		t.Fatalf("unmarshal forwarded body: %v", err)
	}
	if _, present := forwarded["dominantColor"]; present {
		t.Fatalf("expected no color on vision failure, got %v", forwarded["dominantColor"])
	}
}

func TestAddBookKeepsProvidedColor(t *testing.T) {
	books, calls := newUpstream(t, http.StatusOK, `{}`)
	vision, visionCalls := newUpstream(t, http.StatusOK, visionResponse)
	s := newTestService(t, &config.Config{
		BooksAPI:     books.URL + "/books/",
		VisionAPIURL: vision.URL + "/v1/images:annotate",
		VisionAPIKey: "vision-key",
	})

	req := jsonRequest(http.MethodPost, "/api/add", map[string]any{
		"title":         "Dune",
		"coverImageUrl": "https://cdn.example.com/dune.jpg",
		"dominantColor": "#000000",
	})
	req.Header.Set("Authorization", "Bearer tok")
	serve(s, req)

	if len(*visionCalls) != 0 {
		t.Fatalf("expected no vision call, got %d", len(*visionCalls))
	}
	var forwarded map[string]any
	if err := json.Unmarshal((*calls)[0].Body, &forwarded); err != nil {
		t.Fatalf("unmarshal forwarded body: %v", err)
	}
	if forwarded["dominantColor"] != "#000000" {
		t.Fatalf("expected provided color kept, got %v", forwarded["dominantColor"])
	}
}
