package swagger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	apicontract "github.com/tuanvumaihuynh/product-management/api-contract"
)

const (
	docsURL     = "/docs"
	docsYAMLURL = "/docs/openapi.yml"
	docsJSONURL = "/docs/openapi.json"
)

// Register serves Swagger UI and the API contract in YAML and JSON.
// It fails when the embedded contract does not validate.
func Register(r chi.Router) error {
	doc, err := apicontract.Load(context.Background())
	if err != nil {
		return err
	}
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal openapi document: %w", err)
	}

	templateBytes := []byte(getTemplate(docsYAMLURL))

	r.Get(docsURL, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(templateBytes)
	})

	serve(r, docsYAMLURL, "application/yaml", apicontract.GetSpecBytes())
	serve(r, docsJSONURL, "application/json", jsonBytes)

	return nil
}

func serve(r chi.Router, path, contentType string, body []byte) {
	r.Get(path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(body)
	})
}

func getTemplate(specPath string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <meta name="description" content="SwaggerUI" />
  <title>Product Management API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.29.3/swagger-ui.css" />
  <link rel="icon" type="image/png" href="https://static1.smartbear.co/swagger/media/assets/swagger_fav.png" sizes="32x32" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.29.3/swagger-ui-bundle.js" crossorigin></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({
      url: '%s',
      dom_id: '#swagger-ui',
      deepLinking: true,
      docExpansion: 'list',
      tryItOutEnabled: true,
    });
  };
</script>
</body>
</html>
`, specPath)
}
