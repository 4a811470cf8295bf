package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

const (
	// ShellConfigPath serves the settings the shell page needs to find the content.
	ShellConfigPath = "/pinview-config.js"
	// ContentMount is where the shell frame loads the content from. The prefix
	// is removed before proxying so a content root of "/" does not resolve to
	// the shell page itself.
	ContentMount = "/__pinview/content"
	// FrameBridgePath is the embedded script that gives the sandboxed content
	// frame its message based bridge. It is added to every proxied HTML page.
	FrameBridgePath = "/pinview-frame.js"
)

var frameBridgeTag = []byte(`<script src="` + FrameBridgePath + `"></script>`)

// shellConfig is exposed to the shell page as window.pinviewConfig.
type shellConfig struct {
	ContentPath string `json:"contentPath"`
}

// NewContentHandler returns the handler behind the Wails asset server. Any
// path not found among the embedded shell assets is proxied to the content
// origin with the user agent replaced.
func NewContentHandler(cfg *AppConfig, log zerolog.Logger) (http.Handler, error) {
	target, err := url.Parse(cfg.ContentURL)
	if err != nil {
		return nil, fmt.Errorf("invalid content url %q: %w", cfg.ContentURL, err)
	}
	origin := &url.URL{Scheme: target.Scheme, Host: target.Host}
	log = componentLogger(log, "proxy")

	script, err := shellConfigScript(target)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Debug().Str("uri", v.URI).Int("status", v.Status).Err(v.Error).Msg("content request")
			return nil
		},
	}))

	e.GET(ShellConfigPath, func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
		return c.Blob(http.StatusOK, "application/javascript", script)
	})

	isShellConfig := func(c echo.Context) bool {
		return c.Request().URL.Path == ShellConfigPath
	}

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !isShellConfig(c) {
				req := c.Request()
				req.Header.Set("User-Agent", cfg.UserAgent)
				req.Host = origin.Host
				// The shell origin means nothing to the content server.
				req.Header.Del(echo.HeaderOrigin)
				req.Header.Del("Referer")
				// HTML bodies are edited on the way back.
				req.Header.Del("Accept-Encoding")
			}
			return next(c)
		}
	})

	e.Use(middleware.ProxyWithConfig(middleware.ProxyConfig{
		Skipper: isShellConfig,
		Rewrite: map[string]string{
			"^" + ContentMount:        "/",
			"^" + ContentMount + "/*": "/$1",
		},
		Balancer: middleware.NewRoundRobinBalancer([]*middleware.ProxyTarget{{URL: origin}}),
		ModifyResponse: func(res *http.Response) error {
			rewriteContentResponse(res, origin)
			return injectFrameBridge(res)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			log.Warn().Err(err).Str("path", c.Request().URL.Path).Msg("content proxy failed")
			return echo.NewHTTPError(http.StatusBadGateway, "content unavailable")
		},
	}))

	return e, nil
}

func shellConfigScript(target *url.URL) ([]byte, error) {
	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	if target.RawQuery != "" {
		path += "?" + target.RawQuery
	}
	data, err := json.Marshal(shellConfig{ContentPath: ContentMount + path})
	if err != nil {
		return nil, fmt.Errorf("failed to encode shell config: %w", err)
	}
	return []byte("window.pinviewConfig = " + string(data) + ";\n"), nil
}

// rewriteContentResponse lets the content render inside the shell frame and
// keeps same-origin redirects inside the proxy.
func rewriteContentResponse(res *http.Response, origin *url.URL) {
	res.Header.Del("X-Frame-Options")
	if csp := res.Header.Get("Content-Security-Policy"); csp != "" {
		if stripped := stripFrameAncestors(csp); stripped == "" {
			res.Header.Del("Content-Security-Policy")
		} else {
			res.Header.Set("Content-Security-Policy", stripped)
		}
	}
	if loc := res.Header.Get("Location"); loc != "" {
		prefix := origin.String()
		if strings.HasPrefix(loc, prefix+"/") || loc == prefix {
			rel := strings.TrimPrefix(loc, prefix)
			if rel == "" {
				rel = "/"
			}
			res.Header.Set("Location", rel)
		}
	}
}

// stripFrameAncestors removes the frame-ancestors directive from a CSP value.
func stripFrameAncestors(csp string) string {
	var kept []string
	for _, directive := range strings.Split(csp, ";") {
		d := strings.TrimSpace(directive)
		if d == "" {
			continue
		}
		name := strings.ToLower(strings.Fields(d)[0])
		if name == "frame-ancestors" {
			continue
		}
		kept = append(kept, d)
	}
	return strings.Join(kept, "; ")
}

// injectFrameBridge loads the frame bridge ahead of the page's own scripts.
// Encoded bodies are passed through untouched.
func injectFrameBridge(res *http.Response) error {
	if !strings.HasPrefix(strings.ToLower(res.Header.Get("Content-Type")), "text/html") {
		return nil
	}
	if enc := res.Header.Get("Content-Encoding"); enc != "" && enc != "identity" {
		return nil
	}
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read content page: %w", err)
	}
	body = insertHeadScript(body, frameBridgeTag)
	res.Body = io.NopCloser(bytes.NewReader(body))
	res.ContentLength = int64(len(body))
	res.Header.Set("Content-Length", strconv.Itoa(len(body)))
	return nil
}

// insertHeadScript places tag right after the opening head tag, falling back
// to the html tag and then the start of the document.
func insertHeadScript(page, tag []byte) []byte {
	// ASCII only, so offsets in lower match offsets in page.
	lower := make([]byte, len(page))
	for i, c := range page {
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		lower[i] = c
	}
	for _, open := range [][]byte{[]byte("<head"), []byte("<html")} {
		i := bytes.Index(lower, open)
		if i < 0 {
			continue
		}
		// Skip "<header" and similar.
		if next := i + len(open); next < len(lower) && !strings.ContainsRune("> \t\r\n", rune(lower[next])) {
			continue
		}
		end := bytes.IndexByte(lower[i:], '>')
		if end < 0 {
			continue
		}
		at := i + end + 1
		out := make([]byte, 0, len(page)+len(tag))
		out = append(out, page[:at]...)
		out = append(out, tag...)
		return append(out, page[at:]...)
	}
	return append(append([]byte{}, tag...), page...)
}
