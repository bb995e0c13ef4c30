package middleware

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func tagMiddleware(tag string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(tag))
			next.ServeHTTP(w, r)
		})
	}
}

func TestChain_Ordering(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("H"))
	})

	cases := []struct {
		name        string
		middlewares []Middleware
		want        string
	}{
		{"empty chain", nil, "H"},
		{"single", []Middleware{tagMiddleware("a")}, "aH"},
		{"outermost first", []Middleware{tagMiddleware("a"), tagMiddleware("b"), tagMiddleware("c")}, "abcH"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rr := httptest.NewRecorder()
			Chain(handler, tc.middlewares...).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/events", nil))
			if rr.Body.String() != tc.want {
				t.Errorf("expected %q, got %q", tc.want, rr.Body.String())
			}
		})
	}
}

func TestRequestID_GeneratesUUIDAndPropagates(t *testing.T) {
	t.Parallel()

	handler := &captureHandler{}
	rr := httptest.NewRecorder()
	RequestID(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/pages", nil))

	id := rr.Header().Get("X-Request-ID")
	if len(id) != 36 || strings.Count(id, "-") != 4 {
		t.Errorf("expected a UUID in X-Request-ID, got %q", id)
	}
	if got := GetRequestID(handler.ctx); got != id {
		t.Errorf("context carries %q, response header carries %q", got, id)
	}
}

func TestRequestID_KeepsCallerSuppliedID(t *testing.T) {
	t.Parallel()

	handler := &captureHandler{}
	req := httptest.NewRequest(http.MethodGet, "/v1/pages", nil)
	req.Header.Set("X-Request-ID", "edge-proxy-7f3a")
	rr := httptest.NewRecorder()

	RequestID(handler).ServeHTTP(rr, req)

	if rr.Header().Get("X-Request-ID") != "edge-proxy-7f3a" {
		t.Errorf("caller ID was replaced with %q", rr.Header().Get("X-Request-ID"))
	}
	if GetRequestID(handler.ctx) != "edge-proxy-7f3a" {
		t.Errorf("context lost the caller ID, got %q", GetRequestID(handler.ctx))
	}
}

func TestGetRequestID(t *testing.T) {
	t.Parallel()

	if got := GetRequestID(context.WithValue(context.Background(), RequestIDKey, "req-42")); got != "req-42" {
		t.Errorf("expected req-42, got %q", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("expected empty for missing value, got %q", got)
	}
	if got := GetRequestID(context.WithValue(context.Background(), RequestIDKey, 42)); got != "" {
		t.Errorf("expected empty for non-string value, got %q", got)
	}
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	t.Run("passes through healthy handlers", func(t *testing.T) {
		t.Parallel()
		rr := httptest.NewRecorder()
		Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/events", nil))

		if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
			t.Errorf("expected untouched 200 ok, got %d %q", rr.Code, rr.Body.String())
		}
	})

	t.Run("converts panics to JSON 500", func(t *testing.T) {
		t.Parallel()
		rr := httptest.NewRecorder()
		Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("renderer blew up")
		})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/pages/page:home/rendered", nil))

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rr.Code)
		}
		if rr.Header().Get("Content-Type") != "application/json" {
			t.Errorf("expected JSON error body, got %q", rr.Header().Get("Content-Type"))
		}
		if !strings.Contains(rr.Body.String(), "Internal Server Error") {
			t.Errorf("expected error message, got %q", rr.Body.String())
		}
	})

	t.Run("survives panic(nil)", func(t *testing.T) {
		t.Parallel()
		rr := httptest.NewRecorder()
		Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(nil)
		})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/events", nil))
	})
}

func TestCORS_OriginHandling(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{"listed origin", []string{"https://stitchcms.dev", "https://admin.stitchcms.dev"}, "https://admin.stitchcms.dev", "https://admin.stitchcms.dev"},
		{"unlisted origin", []string{"https://stitchcms.dev"}, "https://evil.example", ""},
		{"wildcard echoes caller", []string{"*"}, "https://anything.example", "https://anything.example"},
		{"no origin header", []string{"https://stitchcms.dev"}, "", ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rr := httptest.NewRecorder()
			CORS(tc.allowed)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})).ServeHTTP(rr, req)

			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tc.want {
				t.Errorf("Allow-Origin: expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	t.Parallel()

	handler := &captureHandler{}
	req := httptest.NewRequest(http.MethodOptions, "/v1/events/event:launch/rsvps", nil)
	req.Header.Set("Origin", "https://stitchcms.dev")
	rr := httptest.NewRecorder()

	CORS([]string{"https://stitchcms.dev"})(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", rr.Code)
	}
	if handler.called {
		t.Error("preflight must not reach the handler")
	}
	for _, header := range []string{
		"Access-Control-Allow-Methods",
		"Access-Control-Allow-Headers",
		"Access-Control-Expose-Headers",
		"Access-Control-Max-Age",
	} {
		if rr.Header().Get(header) == "" {
			t.Errorf("preflight response missing %s", header)
		}
	}
}

func TestCompress_GzipsWhenAccepted(t *testing.T) {
	t.Parallel()

	const page = `{"data":{"title":"Launch party","body_html":"<p>Join us for the launch.</p>"}}`
	req := httptest.NewRequest(http.MethodGet, "/v1/pages/page:launch/rendered", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rr := httptest.NewRecorder()

	Compress(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	})).ServeHTTP(rr, req)

	if rr.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip encoding, got %q", rr.Header().Get("Content-Encoding"))
	}

	reader, err := gzip.NewReader(rr.Body)
	if err != nil {
		t.Fatalf("response is not valid gzip: %v", err)
	}
	defer func() { _ = reader.Close() }()

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("failed to decompress: %v", err)
	}
	if string(decompressed) != page {
		t.Errorf("round trip corrupted the body: %q", string(decompressed))
	}
}

func TestCompress_SkipsWhenNotAccepted(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	Compress(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain body"))
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/events", nil))

	if rr.Header().Get("Content-Encoding") == "gzip" {
		t.Error("must not gzip without Accept-Encoding")
	}
	if rr.Body.String() != "plain body" {
		t.Errorf("expected plain body, got %q", rr.Body.String())
	}
}

func TestCompress_SkipsEventStreams(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/v1/errors/stream", nil)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()

	Compress(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("event: error\ndata: {}\n\n"))
	})).ServeHTTP(rr, req)

	if rr.Header().Get("Content-Encoding") == "gzip" {
		t.Error("SSE responses must stay uncompressed")
	}
}

func TestResponseWriter_StatusCapture(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rr, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)
	if rw.statusCode != http.StatusNotFound || rr.Code != http.StatusNotFound {
		t.Errorf("status not mirrored: captured %d, forwarded %d", rw.statusCode, rr.Code)
	}

	implicit := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	_, _ = implicit.Write([]byte("body"))
	if implicit.statusCode != http.StatusOK {
		t.Errorf("implicit write should keep 200, got %d", implicit.statusCode)
	}
}

func TestGzipResponseWriter_WritesThroughGzip(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	gz := gzip.NewWriter(rr)
	grw := &gzipResponseWriter{ResponseWriter: rr, Writer: gz}

	if _, err := grw.Write([]byte("site config payload")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	_ = gz.Close()

	reader, err := gzip.NewReader(rr.Body)
	if err != nil {
		t.Fatalf("output is not gzip: %v", err)
	}
	defer func() { _ = reader.Close() }()

	content, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	if string(content) != "site config payload" {
		t.Errorf("expected original payload, got %q", string(content))
	}
}

func TestLogger_PassesResponseThrough(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/events", nil))

	if rr.Code != http.StatusCreated || rr.Body.String() != "created" {
		t.Errorf("logger altered the response: %d %q", rr.Code, rr.Body.String())
	}
}
