package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookhaven/catalog/internal/config"
)

// recordedRequest captures what the proxy actually sent upstream.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   []byte
}

func newUpstream(t *testing.T, status int, responseBody string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var calls []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Body:   body,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(responseBody))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestListBooksSearch(t *testing.T) {
	upstream, calls := newUpstream(t, http.StatusOK, `[{"title":"Dune"}]`)
	s := newTestService(t, &config.Config{BooksAPI: upstream.URL + "/books/"})

	resp := serve(s, httptest.NewRequest(http.MethodGet, "/api/books?search=dune+messiah", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	if resp.Body.String() != `[{"title":"Dune"}]` {
		t.Fatalf("expected relayed body, got %s", resp.Body.String())
	}
	if len(*calls) != 1 || (*calls)[0].Query != "search=dune+messiah" {
		t.Fatalf("unexpected upstream calls: %+v", *calls)
	}
}

func TestListBooksIDWinsOverSearch(t *testing.T) {
	upstream, calls := newUpstream(t, http.StatusOK, `{"title":"Dune"}`)
	s := newTestService(t, &config.Config{BooksAPI: upstream.URL + "/books/"})

	resp := serve(s, httptest.NewRequest(http.MethodGet, "/api/books?search=dune&id=b42", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if len(*calls) != 1 {
		t.Fatalf("expected one upstream call, got %d", len(*calls))
	}
	call := (*calls)[0]
	if call.Path != "/books/b42" || call.Query != "" {
		t.Fatalf("expected id lookup without search, got path=%s query=%s", call.Path, call.Query)
	}
}

func TestListBooksMissingConfig(t *testing.T) {
	s := newTestService(t, &config.Config{})

	resp := serve(s, httptest.NewRequest(http.MethodGet, "/api/books", nil))
	expectError(t, resp, http.StatusInternalServerError, "API is not defined")
}

func TestListBooksUpstreamFailure(t *testing.T) {
	upstream, _ := newUpstream(t, http.StatusBadGateway, `oops`)
	s := newTestService(t, &config.Config{BooksAPI: upstream.URL + "/books/"})

	resp := serve(s, httptest.NewRequest(http.MethodGet, "/api/books", nil))
	expectError(t, resp, http.StatusInternalServerError, "Error fetching books")
}

func TestListBooksInvalidUpstreamJSON(t *testing.T) {
	upstream, _ := newUpstream(t, http.StatusOK, `<html>not json</html>`)
	s := newTestService(t, &config.Config{BooksAPI: upstream.URL + "/books/"})

	resp := serve(s, httptest.NewRequest(http.MethodGet, "/api/books", nil))
	expectError(t, resp, http.StatusInternalServerError, "Error fetching books")
}

func TestDeleteBookRequiresID(t *testing.T) {
	s := newTestService(t, &config.Config{BooksAPI: "http://books.local/"})

	resp := serve(s, httptest.NewRequest(http.MethodDelete, "/api/books", nil))
	expectError(t, resp, http.StatusInternalServerError, "Book ID is required")
}

func TestDeleteBookRequiresToken(t *testing.T) {
	upstream, calls := newUpstream(t, http.StatusOK, `{}`)
	s := newTestService(t, &config.Config{BooksAPI: upstream.URL + "/books/"})

	resp := serve(s, httptest.NewRequest(http.MethodDelete, "/api/books?id=b1", nil))
	expectError(t, resp, http.StatusInternalServerError, "Authorization token is required")
	if len(*calls) != 0 {
		t.Fatalf("upstream must not be called without a token, got %d calls", len(*calls))
	}
}

func TestDeleteBook(t *testing.T) {
	upstream, calls := newUpstream(t, http.StatusOK, `{}`)
	s := newTestService(t, &config.Config{BooksAPI: upstream.URL + "/books/"})

	req := httptest.NewRequest(http.MethodDelete, "/api/books?id=b1", nil)
	req.Header.Set("Authorization", "Bearer tok")
	resp := serve(s, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	if msg := decodeBody(t, resp)["message"]; msg != "Book deleted successfully" {
		t.Fatalf("unexpected message %v", msg)
	}
	call := (*calls)[0]
	if call.Method != http.MethodDelete || call.Path != "/books/b1" || call.Auth != "Bearer tok" {
		t.Fatalf("unexpected upstream call: %+v", call)
	}
}

func TestUpdateBookRelaysBody(t *testing.T) {
	upstream, calls := newUpstream(t, http.StatusOK, `{}`)
	s := newTestService(t, &config.Config{BooksAPI: upstream.URL + "/books/"})

	req := jsonRequest(http.MethodPut, "/api/books?id=b1", map[string]any{"title": "Dune", "pages": 412})
	req.Header.Set("Authorization", "Bearer tok")
	resp := serve(s, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	if msg := decodeBody(t, resp)["message"]; msg != "Book updated successfully" {
		t.Fatalf("unexpected message %v", msg)
	}
	call := (*calls)[0]
	if call.Method != http.MethodPut || call.Path != "/books/b1" {
		t.Fatalf("unexpected upstream call: %+v", call)
	}
	if string(call.Body) != `{"pages":412,"title":"Dune"}` {
		t.Fatalf("body not relayed verbatim: %s", call.Body)
	}
}

func TestCopyBook(t *testing.T) {
	upstream, calls := newUpstream(t, http.StatusOK, `{}`)
	s := newTestService(t, &config.Config{CollectionsAPI: upstream.URL + "/collections"})

	resp := serve(s, jsonRequest(http.MethodPost, "/api/books", map[string]any{
		"sourceCollection":      "drafts",
		"destinationCollection": "books",
		"documentId":            "b1",
	}))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	if msg := decodeBody(t, resp)["message"]; msg != "Book copied successfully" {
		t.Fatalf("unexpected message %v", msg)
	}
	call := (*calls)[0]
	if call.Path != "/collections/copyDocument" {
		t.Fatalf("unexpected path %s", call.Path)
	}
}

func TestCopyBookMissingFields(t *testing.T) {
	s := newTestService(t, &config.Config{CollectionsAPI: "http://collections.local"})

	resp := serve(s, jsonRequest(http.MethodPost, "/api/books", map[string]any{
		"sourceCollection": "drafts",
	}))
	expectError(t, resp, http.StatusInternalServerError, "Missing required fields")
}
