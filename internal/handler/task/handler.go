package task

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	middlewarePkg "github.com/sanashii/Simple-CRUD-API/internal/middleware"
	"github.com/sanashii/Simple-CRUD-API/internal/model/task"
	taskService "github.com/sanashii/Simple-CRUD-API/internal/service/task"
	"github.com/sanashii/Simple-CRUD-API/pkg/utils"
)

const (
	msgTaskNotFound   = "Task not found"
	msgInvalidBody    = "invalid request body"
	msgTitleRequired  = "title is required"
	msgInternalServer = "internal server error"
)

// Handler serves the /tasks resource.
type Handler struct {
	taskSvc *taskService.Service
	logger  logrus.FieldLogger
}

// New builds a task handler.
func New(taskSvc *taskService.Service, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Handler{
		taskSvc: taskSvc,
		logger:  logger.WithField("component", "http_handler"),
	}
}

// RegisterRoutes mounts the task routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tasks", func(tr chi.Router) {
		tr.Post("/", h.handleCreate)
		tr.Get("/", h.handleList)
		tr.Get("/{id}", h.handleGet)
		tr.Put("/{id}", h.handleUpdate)
		tr.Delete("/{id}", h.handleDelete)
	})
}

type createTaskRequest struct {
	Title *string `json:"title"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	log := h.entry(r, "CreateTask")

	var req createTaskRequest
	if err := decodeBody(r, &req); err != nil {
		log.WithError(err).Warn("invalid request body")
		utils.RespondMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if req.Title == nil || *req.Title == "" {
		log.Warn("title is required")
		utils.RespondMessage(w, http.StatusBadRequest, msgTitleRequired)
		return
	}

	created, err := h.taskSvc.Create(r.Context(), *req.Title)
	if err != nil {
		h.respondServiceError(w, log, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	log := h.entry(r, "ListTasks")

	tasks, err := h.taskSvc.List(r.Context())
	if err != nil {
		h.respondServiceError(w, log, err)
		return
	}

	log.WithField("count", len(tasks)).Debug("tasks listed")
	utils.RespondJSON(w, http.StatusOK, tasks)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	log := h.entry(r, "GetTask")

	id, ok := parseID(r)
	if !ok {
		utils.RespondMessage(w, http.StatusNotFound, msgTaskNotFound)
		return
	}

	found, err := h.taskSvc.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, log.WithField("task_id", id), err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, found)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	log := h.entry(r, "UpdateTask")

	id, ok := parseID(r)
	if !ok {
		utils.RespondMessage(w, http.StatusNotFound, msgTaskNotFound)
		return
	}

	var patch task.Patch
	if err := decodeBody(r, &patch); err != nil {
		log.WithError(err).Warn("invalid request body")
		utils.RespondMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	updated, err := h.taskSvc.Update(r.Context(), id, patch)
	if err != nil {
		h.respondServiceError(w, log.WithField("task_id", id), err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	log := h.entry(r, "DeleteTask")

	id, ok := parseID(r)
	if !ok {
		utils.RespondMessage(w, http.StatusNotFound, msgTaskNotFound)
		return
	}

	if err := h.taskSvc.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, log.WithField("task_id", id), err)
		return
	}

	utils.RespondNoContent(w)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	switch {
	case errors.Is(err, taskService.ErrTaskNotFound):
		log.Debug("task not found")
		utils.RespondMessage(w, http.StatusNotFound, msgTaskNotFound)
	case errors.Is(err, taskService.ErrTitleRequired):
		log.Warn("title is required")
		utils.RespondMessage(w, http.StatusBadRequest, msgTitleRequired)
	default:
		var storageErr *task.StorageError
		if errors.As(err, &storageErr) {
			log = log.WithField("storage_op", storageErr.Op)
		}
		log.WithError(err).Error("task operation failed")
		utils.RespondMessage(w, http.StatusInternalServerError, msgInternalServer)
	}
}

func (h *Handler) entry(r *http.Request, handler string) logrus.FieldLogger {
	return h.logger.WithFields(logrus.Fields{
		"handler":    handler,
		"request_id": middlewarePkg.GetRequestID(r.Context()),
	})
}

// decodeBody decodes a JSON body into dst. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// parseID reads the {id} URL parameter. Anything other than a positive
// integer cannot name a stored task.
func parseID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
