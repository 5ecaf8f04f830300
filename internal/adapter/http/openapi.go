package http

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"sync"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openAPIYAML []byte

// APIDocument returns the parsed and validated OpenAPI description of the
// routes this package serves.
var APIDocument = sync.OnceValues(func() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = context.Background()

	doc, err := loader.LoadFromData(openAPIYAML)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("openapi: validate: %w", err)
	}
	return doc, nil
})

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	doc, err := APIDocument()
	if err != nil {
		s.logger.Error("openapi document unavailable", "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "openapi document unavailable"})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, doc)
}
