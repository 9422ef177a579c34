package docs

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sanashii/Simple-CRUD-API/internal/openapi"
)

// Handler serves the OpenAPI description.
type Handler struct {
	doc *openapi.Document
}

// New creates a docs handler for doc.
func New(doc *openapi.Document) *Handler {
	return &Handler{doc: doc}
}

// RegisterRoutes mounts /api-docs on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api-docs", func(dr chi.Router) {
		dr.Get("/", h.handleJSON)
		dr.Get("/openapi.json", h.handleJSON)
		dr.Get("/openapi.yaml", h.handleYAML)
	})
}

func (h *Handler) handleJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.doc.JSON())
}

func (h *Handler) handleYAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.doc.YAML())
}
