package handlers

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPISpec []byte

const (
	specPath       = "/openapi.yaml"
	swaggerVersion = "5.11.0"
)

// docsPage renders the gateway's API reference. Swagger UI only draws the
// operations; the header tells readers where redirects live and how to auth.
var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} {{.Version}}</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@{{.SwaggerVersion}}/swagger-ui.css">
<style>
body { margin: 0; font-family: system-ui, sans-serif; }
header { padding: 1.25rem 2rem; border-bottom: 1px solid #e3e3e3; }
header h1 { margin: 0 0 .4rem; font-size: 1.4rem; }
header p { margin: .2rem 0; color: #444; }
code { background: #f3f3f3; padding: 0 .3rem; }
</style>
</head>
<body>
<header>
<h1>{{.Title}} <small>v{{.Version}}</small></h1>
<p>Create, list, update and delete your short links under <code>/api/links</code> with a <code>Bearer</code> token.</p>
<p>Visitors follow <code>{{.RedirectBase}}/l/{code}</code>; each redirect counts one click.</p>
<p>Raw document: <a href="{{.SpecURL}}">{{.SpecURL}}</a></p>
</header>
<main id="reference"></main>
<script src="https://unpkg.com/swagger-ui-dist@{{.SwaggerVersion}}/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({
	url: {{.SpecURL}},
	dom_id: "#reference",
	deepLinking: true,
	persistAuthorization: true,
	tryItOutEnabled: true
});
</script>
</body>
</html>
`))

type docsData struct {
	Title          string
	Version        string
	SpecURL        string
	RedirectBase   string
	SwaggerVersion string
}

// SwaggerHandler serves the gateway's OpenAPI document and its reference page.
type SwaggerHandler struct {
	spec []byte
	page []byte
}

// NewSwaggerHandler renders the reference page once. redirectBase is the
// public origin of redirect-service shown to readers.
func NewSwaggerHandler(redirectBase string) (*SwaggerHandler, error) {
	var doc struct {
		Info struct {
			Title   string `yaml:"title"`
			Version string `yaml:"version"`
		} `yaml:"info"`
	}
	if err := yaml.Unmarshal(openAPISpec, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse openapi document: %w", err)
	}

	var buf bytes.Buffer
	err := docsPage.Execute(&buf, docsData{
		Title:          doc.Info.Title,
		Version:        doc.Info.Version,
		SpecURL:        specPath,
		RedirectBase:   strings.TrimRight(redirectBase, "/"),
		SwaggerVersion: swaggerVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render docs page: %w", err)
	}

	return &SwaggerHandler{spec: openAPISpec, page: buf.Bytes()}, nil
}

func (h *SwaggerHandler) ServeDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(h.page)
}

func (h *SwaggerHandler) ServeSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Write(h.spec)
}

func (h *SwaggerHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /docs", h.ServeDocs)
	mux.HandleFunc("GET /docs/", h.ServeDocs)
	mux.HandleFunc("GET "+specPath, h.ServeSpec)
}
