package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/sanashii/Simple-CRUD-API/internal/handler/docs"
	"github.com/sanashii/Simple-CRUD-API/internal/handler/task"
	middlewarePkg "github.com/sanashii/Simple-CRUD-API/internal/middleware"
	"github.com/sanashii/Simple-CRUD-API/internal/openapi"
	taskService "github.com/sanashii/Simple-CRUD-API/internal/service/task"
	"github.com/sanashii/Simple-CRUD-API/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(taskSvc *taskService.Service, doc *openapi.Document, logger logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()

	r.Use(middlewarePkg.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logging(logger))
	r.Use(middlewarePkg.Metrics)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondMessage(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	task.New(taskSvc, logger).RegisterRoutes(r)

	if doc != nil {
		docs.New(doc).RegisterRoutes(r)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", middlewarePkg.MetricsHandler())

	return r
}
