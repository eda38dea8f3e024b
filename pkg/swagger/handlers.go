package swagger

import (
	_ "embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/schema-registry/pkg/httputil"
)

//go:embed openapi.yaml
var openapiSpec []byte

// openapiSpecJSON is openapiSpec re-encoded as JSON once at startup, so the
// JSON endpoint doesn't pay a YAML parse per request. A malformed embedded
// spec is a build-time bug, so this panics rather than returning an error.
var openapiSpecJSON = mustYAMLToJSON(openapiSpec)

func mustYAMLToJSON(y []byte) []byte {
	var doc interface{}
	if err := yaml.Unmarshal(y, &doc); err != nil {
		panic("swagger: embedded openapi.yaml is not valid YAML: " + err.Error())
	}
	out, err := json.Marshal(convertMapKeys(doc))
	if err != nil {
		panic("swagger: failed to marshal openapi spec to JSON: " + err.Error())
	}
	return out
}

// convertMapKeys recursively turns the map[string]interface{} and
// map[interface{}]interface{} nodes yaml.v3 produces into a tree
// encoding/json can marshal as a JSON object.
func convertMapKeys(in interface{}) interface{} {
	switch v := in.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[k] = convertMapKeys(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = convertMapKeys(val)
		}
		return out
	default:
		return v
	}
}

// SwaggerHandlers provides HTTP handlers for OpenAPI/Swagger documentation
type SwaggerHandlers struct{}

// NewSwaggerHandlers creates a new SwaggerHandlers instance
func NewSwaggerHandlers() *SwaggerHandlers {
	return &SwaggerHandlers{}
}

// RegisterRoutes registers the swagger routes with the router
func (h *SwaggerHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/openapi.yaml", h.serveOpenAPISpec).Methods("GET")
	router.HandleFunc("/openapi.json", h.serveOpenAPISpecJSON).Methods("GET")
	router.HandleFunc("/swagger-ui", h.serveSwaggerUI).Methods("GET")
	router.HandleFunc("/api-docs", h.serveSwaggerUI).Methods("GET") // Alias
	router.HandleFunc("/docs", h.serveSwaggerUI).Methods("GET")     // Alias
}

// serveOpenAPISpec serves the OpenAPI specification in YAML format
func (h *SwaggerHandlers) serveOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	w.Write(openapiSpec)
}

// serveOpenAPISpecJSON serves the OpenAPI specification in JSON format,
// converted from the embedded YAML at startup.
func (h *SwaggerHandlers) serveOpenAPISpecJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	w.Write(openapiSpecJSON)
}

// serveSwaggerUI serves the Swagger UI HTML page
func (h *SwaggerHandlers) serveSwaggerUI(w http.ResponseWriter, r *http.Request) {
	// Use Swagger UI CDN for convenience
	tmpl := template.Must(template.New("swagger").Parse(swaggerUITemplate))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, nil); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
}

const swaggerUITemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Schema Registry API - Swagger UI</title>
  <link rel="stylesheet" type="text/css" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5.10.5/swagger-ui.css" />
  <link rel="icon" type="image/png" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5.10.5/favicon-32x32.png" sizes="32x32" />
  <link rel="icon" type="image/png" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5.10.5/favicon-16x16.png" sizes="16x16" />
  <style>
    html {
      box-sizing: border-box;
      overflow: -moz-scrollbars-vertical;
      overflow-y: scroll;
    }
    *, *:before, *:after {
      box-sizing: inherit;
    }
    body {
      margin:0;
      padding:0;
    }
  </style>
</head>
<body>
<div id="swagger-ui"></div>

<script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5.10.5/swagger-ui-bundle.js" charset="UTF-8"></script>
<script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5.10.5/swagger-ui-standalone-preset.js" charset="UTF-8"></script>
<script>
window.onload = function() {
  window.ui = SwaggerUIBundle({
    url: "/openapi.yaml",
    dom_id: '#swagger-ui',
    deepLinking: true,
    presets: [
      SwaggerUIBundle.presets.apis,
      SwaggerUIStandalonePreset
    ],
    plugins: [
      SwaggerUIBundle.plugins.DownloadUrl
    ],
    layout: "StandaloneLayout",
    requestInterceptor: function(request) {
      // Add Authorization header if token is stored in localStorage
      const token = localStorage.getItem('schema_registry_api_token');
      if (token) {
        request.headers['Authorization'] = 'Bearer ' + token;
      }
      return request;
    }
  });
};
</script>
</body>
</html>`
