package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

func newProxyFixture(t *testing.T, upstream http.HandlerFunc) (http.Handler, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.ContentURL = srv.URL + "/f/pc/?lang=en"
	cfg.UserAgent = "PinviewTest/1.0"
	h, err := NewContentHandler(cfg, NewLogger(io.Discard, "debug"))
	if err != nil {
		t.Fatalf("NewContentHandler: %v", err)
	}
	return h, srv
}

func TestContentProxyOverridesUserAgent(t *testing.T) {
	var gotUA, gotPath, gotHost string
	h, srv := newProxyFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		gotHost = r.Host
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'")
		io.WriteString(w, "content")
	})

	req := httptest.NewRequest(http.MethodGet, "http://wails.localhost/f/pc/app.js", nil)
	req.Header.Set("User-Agent", "WebKitGTK/whatever")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if gotUA != "PinviewTest/1.0" {
		t.Fatalf("upstream saw User-Agent %q", gotUA)
	}
	if gotPath != "/f/pc/app.js" {
		t.Fatalf("upstream path = %q", gotPath)
	}
	if !strings.HasSuffix(srv.URL, gotHost) {
		t.Fatalf("upstream host = %q, server %q", gotHost, srv.URL)
	}
	if rec.Header().Get("X-Frame-Options") != "" {
		t.Fatal("X-Frame-Options not stripped")
	}
	if csp := rec.Header().Get("Content-Security-Policy"); csp != "default-src 'self'" {
		t.Fatalf("CSP = %q", csp)
	}
}

func TestContentProxyServesShellConfig(t *testing.T) {
	called := false
	h, _ := newProxyFixture(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://wails.localhost"+ShellConfigPath, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if called {
		t.Fatal("shell config request reached the upstream")
	}
	want := `window.pinviewConfig = {"contentPath":"/__pinview/content/f/pc/?lang=en"};`
	if !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("body = %q, want it to contain %q", rec.Body.String(), want)
	}
}

func TestContentProxyStripsMountPrefix(t *testing.T) {
	var gotPath, gotQuery string
	h, _ := newProxyFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://wails.localhost"+ContentMount+"/f/pc/?lang=en", nil))

	if gotPath != "/f/pc/" || gotQuery != "lang=en" {
		t.Fatalf("upstream got %q ? %q", gotPath, gotQuery)
	}
}

func TestContentProxyRewritesSameOriginRedirects(t *testing.T) {
	var base string
	h, srv := newProxyFixture(t, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, base+"/login?next=1", http.StatusFound)
	})
	base = srv.URL

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://wails.localhost/f/pc/", nil))

	if loc := rec.Header().Get("Location"); loc != "/login?next=1" {
		t.Fatalf("Location = %q", loc)
	}
}

func TestStripFrameAncestors(t *testing.T) {
	cases := map[string]string{
		"frame-ancestors 'none'":                           "",
		"default-src 'self'; FRAME-ANCESTORS https://x.io": "default-src 'self'",
		"script-src 'self';;img-src *":                     "script-src 'self'; img-src *",
	}
	for in, want := range cases {
		if got := stripFrameAncestors(in); got != want {
			t.Errorf("stripFrameAncestors(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestContentProxyInjectsFrameBridge(t *testing.T) {
	var gotEncoding string
	h, _ := newProxyFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotEncoding = r.Header.Get("Accept-Encoding")
		if strings.HasSuffix(r.URL.Path, ".js") {
			w.Header().Set("Content-Type", "application/javascript")
			io.WriteString(w, "let head = '<head>';")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, "<!doctype html><HTML><Head><title>x</title></head><body></body></HTML>")
	})

	req := httptest.NewRequest(http.MethodGet, "http://wails.localhost"+ContentMount+"/f/pc/", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if strings.Contains(gotEncoding, "br") {
		t.Fatalf("upstream saw Accept-Encoding %q", gotEncoding)
	}
	want := `<Head><script src="` + FrameBridgePath + `"></script><title>`
	if body := rec.Body.String(); !strings.Contains(body, want) {
		t.Fatalf("body = %q, want it to contain %q", body, want)
	}
	if cl := rec.Header().Get("Content-Length"); cl != "" && cl != strconv.Itoa(rec.Body.Len()) {
		t.Fatalf("Content-Length = %s, body is %d bytes", cl, rec.Body.Len())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://wails.localhost"+ContentMount+"/f/pc/app.js", nil))
	if body := rec.Body.String(); body != "let head = '<head>';" {
		t.Fatalf("script body changed: %q", body)
	}
}

func TestInsertHeadScript(t *testing.T) {
	tag := []byte("<s>")
	cases := map[string]string{
		"<html><head></head></html>":         "<html><head><s></head></html>",
		"<html lang=en><body></body></html>": "<html lang=en><s><body></body></html>",
		"<header>hi</header>":                "<s><header>hi</header>",
		"plain":                              "<s>plain",
		"<HEAD\nid=x>ü</HEAD>":               "<HEAD\nid=x><s>ü</HEAD>",
	}
	for in, want := range cases {
		if got := string(insertHeadScript([]byte(in), tag)); got != want {
			t.Errorf("insertHeadScript(%q) = %q, want %q", in, got, want)
		}
	}
}
