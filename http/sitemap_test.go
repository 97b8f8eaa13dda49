package http_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/owalsh/docbase"
	dochttp "github.com/owalsh/docbase/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func urlsetXML(urls ...string) string {
	out := `<?xml version="1.0" encoding="UTF-8"?><urlset>`
	for _, u := range urls {
		out += "<url><loc>" + u + "</loc></url>"
	}
	return out + "</urlset>"
}

func scopeFor(t *testing.T, rawURL string) docbase.Scope {
	t.Helper()
	scope, err := docbase.NewScope(rawURL)
	require.NoError(t, err)
	return scope
}

func TestSitemapService_DiscoverURLs(t *testing.T) {
	t.Parallel()

	t.Run("discovers URLs via robots.txt sitemap directive", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		srv := httptest.NewServer(mux)
		defer srv.Close()

		mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, "User-agent: *\nSitemap: %s/sitemap-pages.xml\n", srv.URL)
		})
		mux.HandleFunc("/sitemap-pages.xml", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, urlsetXML(srv.URL+"/docs/a", srv.URL+"/docs/b"))
		})

		s := dochttp.NewSitemapService(nil)
		got, err := s.DiscoverURLs(context.Background(), srv.URL+"/docs", scopeFor(t, srv.URL+"/docs"))
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{srv.URL + "/docs/a", srv.URL + "/docs/b"}, got)
	})

	t.Run("falls back to /sitemap.xml when robots.txt is missing", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		srv := httptest.NewServer(mux)
		defer srv.Close()

		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, urlsetXML(srv.URL+"/docs/a"))
		})

		s := dochttp.NewSitemapService(nil)
		got, err := s.DiscoverURLs(context.Background(), srv.URL+"/docs", scopeFor(t, srv.URL+"/docs"))
		require.NoError(t, err)

		assert.Equal(t, []string{srv.URL + "/docs/a"}, got)
	})

	t.Run("resolves sitemap indexes recursively", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		srv := httptest.NewServer(mux)
		defer srv.Close()

		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `<?xml version="1.0"?><sitemapindex><sitemap><loc>%s/sitemap-1.xml</loc></sitemap><sitemap><loc>%s/sitemap-2.xml</loc></sitemap></sitemapindex>`, srv.URL, srv.URL)
		})
		mux.HandleFunc("/sitemap-1.xml", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, urlsetXML(srv.URL+"/docs/a"))
		})
		mux.HandleFunc("/sitemap-2.xml", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, urlsetXML(srv.URL+"/docs/b"))
		})

		s := dochttp.NewSitemapService(nil)
		got, err := s.DiscoverURLs(context.Background(), srv.URL+"/docs", scopeFor(t, srv.URL+"/docs"))
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{srv.URL + "/docs/a", srv.URL + "/docs/b"}, got)
	})

	t.Run("drops out-of-scope URLs", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		srv := httptest.NewServer(mux)
		defer srv.Close()

		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, urlsetXML(
				srv.URL+"/docs/a",
				srv.URL+"/blog/post",
				"https://elsewhere.example.com/docs/x",
			))
		})

		s := dochttp.NewSitemapService(nil)
		got, err := s.DiscoverURLs(context.Background(), srv.URL+"/docs", scopeFor(t, srv.URL+"/docs"))
		require.NoError(t, err)

		assert.Equal(t, []string{srv.URL + "/docs/a"}, got)
	})

	t.Run("no sitemap yields an empty slice", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		s := dochttp.NewSitemapService(nil)
		got, err := s.DiscoverURLs(context.Background(), srv.URL+"/docs", scopeFor(t, srv.URL+"/docs"))
		require.NoError(t, err)

		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("invalid base URL is EINVALID", func(t *testing.T) {
		t.Parallel()

		s := dochttp.NewSitemapService(nil)
		_, err := s.DiscoverURLs(context.Background(), "https://example.com/\x00", docbase.Scope{})

		assert.Equal(t, docbase.EINVALID, docbase.ErrorCode(err))
	})
}
