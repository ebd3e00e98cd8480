package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/config"
)

func TestIndexEmbedded(t *testing.T) {
	site, err := New(config.WebConfig{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	site.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="state-social">`)
	assert.Contains(t, body, `<option value="race-economic-stability">`)
	assert.Contains(t, body, `<option value="gender-income-spending">`)
	assert.Contains(t, body, `/static/main.js`)
}

func TestStaticEmbedded(t *testing.T) {
	site, err := New(config.WebConfig{})
	require.NoError(t, err)

	for _, name := range []string{"main.js", "style.css"} {
		rec := httptest.NewRecorder()
		site.Static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/"+name, nil))
		assert.Equal(t, http.StatusOK, rec.Code, name)
		assert.NotEmpty(t, rec.Body.String(), name)
	}

	rec := httptest.NewRecorder()
	site.Static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/missing.js", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOnDiskOverrides(t *testing.T) {
	templates := t.TempDir()
	static := t.TempDir()
	writeFile(t, filepath.Join(templates, "index.html"), `<h1>{{.Title}}</h1>{{range .Charts}}[{{.Endpoint}}]{{end}}`)
	writeFile(t, filepath.Join(static, "app.js"), `console.log("on disk")`)

	site, err := New(config.WebConfig{TemplateDir: templates, StaticDir: static})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	site.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "<h1>Customer Insights</h1>[state-social][race-economic-stability][gender-income-spending]", rec.Body.String())

	rec = httptest.NewRecorder()
	site.Static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, `console.log("on disk")`, string(body))
}

func TestTemplateFailures(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := New(config.WebConfig{TemplateDir: filepath.Join(t.TempDir(), "nope")})
		require.Error(t, err)
	})

	t.Run("unparsable template", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "index.html"), `{{.Title`)
		_, err := New(config.WebConfig{TemplateDir: dir})
		require.Error(t, err)
	})

	t.Run("execution error renders 500", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "index.html"), `before {{.NoSuchField}} after`)
		site, err := New(config.WebConfig{TemplateDir: dir})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		site.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "before")
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
