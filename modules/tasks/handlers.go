package tasks

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive/modules/tags"
	"github.com/taskhive/taskhive/pkg/binder"
	"github.com/taskhive/taskhive/pkg/jwt"
	"github.com/taskhive/taskhive/pkg/logger"
	"github.com/taskhive/taskhive/pkg/validator"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxTitleLen     = 200
	maxDescLen      = 2000
)

// Handle returns the module router, meant to be mounted at /tasks. Every
// route requires a bearer token.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(jwt.Middleware(s.tokens))

	r.Get("/", s.list)
	r.Post("/", s.create)
	r.Route("/{taskID}", func(r chi.Router) {
		r.Get("/", s.get)
		r.Put("/", s.update)
		r.Delete("/", s.remove)
		r.Patch("/complete", s.complete)
		r.Patch("/reopen", s.reopen)
	})

	return r
}

type tagResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

type taskResponse struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      string        `json:"status"`
	Priority    string        `json:"priority"`
	DueDate     *time.Time    `json:"due_date"`
	CompletedAt *time.Time    `json:"completed_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Tags        []tagResponse `json:"tags"`
}

type pageResponse struct {
	Items    []taskResponse `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Pages    int            `json:"pages"`
}

func toTaskResponse(t *Task) taskResponse {
	tagList := make([]tagResponse, 0, len(t.Tags))
	for _, tag := range t.Tags {
		tagList = append(tagList, tagResponse{
			ID:        tag.ID.String(),
			Name:      tag.Name,
			Color:     tag.Color,
			CreatedAt: tag.CreatedAt,
		})
	}
	return taskResponse{
		ID:          t.ID.String(),
		UserID:      t.UserID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Tags:        tagList,
	}
}

func (s *Service) list(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	query := r.URL.Query()
	params := ListParams{
		Page:     queryInt(r, "page", 1, 1, 1<<30),
		PageSize: queryInt(r, "page_size", defaultPageSize, 1, maxPageSize),
		Status:   query.Get("status"),
		Priority: query.Get("priority"),
		Search:   query.Get("search"),
		SortBy:   query.Get("sort_by"),
	}

	var rules []validator.Rule
	if params.Status != "" {
		rules = append(rules, validator.InList("status", params.Status, Statuses()))
	}
	if params.Priority != "" {
		rules = append(rules, validator.InList("priority", params.Priority, Priorities()))
	}
	if params.SortBy != "" {
		rules = append(rules, validator.InList("sort_by", strings.TrimPrefix(params.SortBy, "-"),
			[]string{"created_at", "due_date", "priority", "title"}))
	}
	if err := validator.Apply(rules...); err != nil {
		s.respondError(w, r, err)
		return
	}

	if raw := query.Get("tag_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				s.respondError(w, r, errBadPathID)
				return
			}
			params.TagIDs = append(params.TagIDs, id)
		}
	}

	result, err := s.List(r.Context(), userID, params)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	items := make([]taskResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, toTaskResponse(&result.Items[i]))
	}
	respondJSON(w, http.StatusOK, pageResponse{
		Items:    items,
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
		Pages:    result.Pages,
	})
}

type createTaskRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	Priority    string      `json:"priority"`
	DueDate     *time.Time  `json:"due_date"`
	TagIDs      []uuid.UUID `json:"tag_ids"`
}

func (s *Service) create(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req createTaskRequest
	if err := binder.JSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	rules := []validator.Rule{
		validator.RequiredString("title", req.Title),
		validator.MaxLenString("title", req.Title, maxTitleLen),
		validator.MaxLenString("description", req.Description, maxDescLen),
	}
	if req.Status != "" {
		rules = append(rules, validator.InList("status", req.Status, Statuses()))
	}
	if req.Priority != "" {
		rules = append(rules, validator.InList("priority", req.Priority, Priorities()))
	}
	if err := validator.Apply(rules...); err != nil {
		s.respondError(w, r, err)
		return
	}

	task, err := s.Create(r.Context(), userID, CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      Status(req.Status),
		Priority:    Priority(req.Priority),
		DueDate:     req.DueDate,
		TagIDs:      req.TagIDs,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toTaskResponse(task))
}

func (s *Service) get(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	taskID, err := pathID(r, "taskID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	task, err := s.Get(r.Context(), userID, taskID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTaskResponse(task))
}

type updateTaskRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Status      *string      `json:"status"`
	Priority    *string      `json:"priority"`
	DueDate     *time.Time   `json:"due_date"`
	TagIDs      *[]uuid.UUID `json:"tag_ids"`
}

func (s *Service) update(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	taskID, err := pathID(r, "taskID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req updateTaskRequest
	if err := binder.JSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	var rules []validator.Rule
	if req.Title != nil {
		rules = append(rules,
			validator.RequiredString("title", *req.Title),
			validator.MaxLenString("title", *req.Title, maxTitleLen))
	}
	if req.Description != nil {
		rules = append(rules, validator.MaxLenString("description", *req.Description, maxDescLen))
	}
	if req.Status != nil {
		rules = append(rules, validator.InList("status", *req.Status, Statuses()))
	}
	if req.Priority != nil {
		rules = append(rules, validator.InList("priority", *req.Priority, Priorities()))
	}
	if err := validator.Apply(rules...); err != nil {
		s.respondError(w, r, err)
		return
	}

	params := UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		TagIDs:      req.TagIDs,
	}
	if req.Status != nil {
		status := Status(*req.Status)
		params.Status = &status
	}
	if req.Priority != nil {
		priority := Priority(*req.Priority)
		params.Priority = &priority
	}

	task, err := s.Update(r.Context(), userID, taskID, params)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *Service) remove(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	taskID, err := pathID(r, "taskID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.Delete(r.Context(), userID, taskID); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) complete(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	taskID, err := pathID(r, "taskID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	task, err := s.Complete(r.Context(), userID, taskID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *Service) reopen(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	taskID, err := pathID(r, "taskID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	task, err := s.Reopen(r.Context(), userID, taskID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTaskResponse(task))
}

type errorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

func (s *Service) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if ve := validator.Extract(err); ve != nil {
		fields := make(map[string][]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field] = append(fields[fe.Field], fe.Message)
		}
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: fields})
		return
	}

	switch {
	case errors.Is(err, binder.ErrMalformedBody),
		errors.Is(err, binder.ErrMissingContentType),
		errors.Is(err, binder.ErrUnsupportedMediaType),
		errors.Is(err, errBadPathID):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
	case errors.Is(err, ErrTaskNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "task not found"})
	case errors.Is(err, tags.ErrTagNotFound):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown tag"})
	case errors.Is(err, errNoSubject):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
	default:
		s.log.ErrorContext(r.Context(), "unhandled error",
			logger.Error(err), logger.Component("tasks"))
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

var (
	errNoSubject = errors.New("no authenticated subject")
	errBadPathID = errors.New("invalid id in path")
)

func subjectID(r *http.Request) (uuid.UUID, error) {
	subject, ok := jwt.SubjectFromContext(r.Context())
	if !ok {
		return uuid.Nil, errNoSubject
	}
	id, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, errNoSubject
	}
	return id, nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errBadPathID
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def, min, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min {
		return def
	}
	if n > max {
		return max
	}
	return n
}
