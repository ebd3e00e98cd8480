// Package web serves the dashboard page and its static assets. Both are
// embedded in the binary; config.WebConfig can point at on-disk copies
// instead.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/Adithya-Monish-Kumar-K/customer-insights/internal/insights/query"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/logger"
)

//go:embed templates static
var assets embed.FS

const indexTemplate = "index.html"

// Chart is one selectable view on the dashboard.
type Chart struct {
	Endpoint string
	Label    string
}

type pageData struct {
	Title  string
	Charts []Chart
}

var charts = []Chart{
	{Endpoint: query.StateSocial, Label: "Social media rank by state"},
	{Endpoint: query.RaceEconomicStability, Label: "Economic stability by race"},
	{Endpoint: query.GenderIncomeSpending, Label: "Income and spending by gender"},
}

type Site struct {
	templates *template.Template
	static    fs.FS
	logger    *slog.Logger
}

// New parses the index template and selects the static file tree.
func New(cfg config.WebConfig) (*Site, error) {
	templates, err := subFS(cfg.TemplateDir, "templates")
	if err != nil {
		return nil, err
	}
	static, err := subFS(cfg.StaticDir, "static")
	if err != nil {
		return nil, err
	}
	tmpl, err := template.ParseFS(templates, indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", apperrors.ErrTemplate, indexTemplate, err)
	}
	return &Site{
		templates: tmpl,
		static:    static,
		logger:    logger.WithComponent("web"),
	}, nil
}

func subFS(dir, embedded string) (fs.FS, error) {
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("web directory %s: %w", dir, err)
		}
		return os.DirFS(dir), nil
	}
	return fs.Sub(assets, embedded)
}

// Index renders the dashboard page. The page is rendered into a buffer so a
// template failure can still produce a clean 500.
func (s *Site) Index(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	data := pageData{Title: "Customer Insights", Charts: charts}
	if err := s.templates.ExecuteTemplate(&buf, indexTemplate, data); err != nil {
		appErr := apperrors.New(apperrors.ErrTemplate, http.StatusInternalServerError, err.Error())
		logger.FromContext(r.Context()).Error("failed to render index", "error", appErr)
		http.Error(w, http.StatusText(apperrors.HTTPStatusCode(appErr)), apperrors.HTTPStatusCode(appErr))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("failed to write index", "error", err)
	}
}

// Static serves files from the static tree; mount it under /static/.
func (s *Site) Static() http.Handler {
	return http.StripPrefix("/static/", http.FileServerFS(s.static))
}
