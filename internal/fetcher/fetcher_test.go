package fetcher

import (
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"newsarchive/internal/config"
	"newsarchive/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func testClient() *Client {
	cfg := config.DefaultConfig().Fetcher
	cfg.Timeout = 5 * time.Second
	return New(cfg, testLogger)
}

func TestGetSendsBrowserHeaders(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept-Encoding")
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	body, err := testClient().Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(body) != "<html>ok</html>" {
		t.Errorf("body = %q", body)
	}
	if gotUA == "" || gotUA == "Go-http-client/1.1" {
		t.Errorf("expected browser user agent, got %q", gotUA)
	}
	if gotAccept != "gzip, deflate, br" {
		t.Errorf("accept-encoding = %q", gotAccept)
	}
}

func TestGetDecompressesGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("compressed page body"))
		gz.Close()
	}))
	defer srv.Close()

	body, err := testClient().Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(body) != "compressed page body" {
		t.Errorf("body = %q", body)
	}
}

func TestGetNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient().Get(context.Background(), srv.URL)
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *types.FetchError, got %T: %v", err, err)
	}
	if fe.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", fe.StatusCode)
	}
}

func TestGetEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := testClient().Get(context.Background(), srv.URL)
	if !errors.Is(err, types.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("f") != "json" {
			t.Errorf("missing query param, got %q", r.URL.RawQuery)
		}
		if r.Header.Get("X-Requested-With") != "XMLHttpRequest" {
			t.Error("missing XHR header")
		}
		if r.Header.Get("Cookie") != "session=abc" {
			t.Errorf("cookie = %q", r.Header.Get("Cookie"))
		}
		w.Write([]byte(`{"rows":[{"title":"A story"}]}`))
	}))
	defer srv.Close()

	header := http.Header{}
	header.Set("Cookie", "session=abc")

	var out struct {
		Rows []struct {
			Title string `json:"title"`
		} `json:"rows"`
	}
	err := testClient().GetJSON(context.Background(), srv.URL, url.Values{"f": {"json"}}, header, &out)
	if err != nil {
		t.Fatalf("getjson: %v", err)
	}
	if len(out.Rows) != 1 || out.Rows[0].Title != "A story" {
		t.Errorf("decoded = %+v", out)
	}
}

func TestGetJSONParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	var out map[string]any
	err := testClient().GetJSON(context.Background(), srv.URL, nil, nil, &out)
	var pe *types.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *types.ParseError, got %T: %v", err, err)
	}
}
