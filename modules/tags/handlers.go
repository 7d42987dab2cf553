package tags

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive/pkg/binder"
	"github.com/taskhive/taskhive/pkg/jwt"
	"github.com/taskhive/taskhive/pkg/logger"
	"github.com/taskhive/taskhive/pkg/validator"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

const (
	defaultPageSize = 100
	maxPageSize     = 100
)

// Handle returns the module router, meant to be mounted at /tags. Every
// route requires a bearer token.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(jwt.Middleware(s.tokens))

	r.Get("/", s.list)
	r.Post("/", s.create)
	r.Route("/{tagID}", func(r chi.Router) {
		r.Get("/", s.get)
		r.Put("/", s.update)
		r.Delete("/", s.remove)
	})

	return r
}

type tagResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	TaskCount int       `json:"task_count"`
	CreatedAt time.Time `json:"created_at"`
}

type pageResponse struct {
	Items    []tagResponse `json:"items"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Pages    int           `json:"pages"`
}

func toTagResponse(t Tag) tagResponse {
	return tagResponse{
		ID:        t.ID.String(),
		UserID:    t.UserID.String(),
		Name:      t.Name,
		Color:     t.Color,
		TaskCount: t.TaskCount,
		CreatedAt: t.CreatedAt,
	}
}

func (s *Service) list(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	page := queryInt(r, "page", 1, 1, 1<<30)
	pageSize := queryInt(r, "page_size", defaultPageSize, 1, maxPageSize)

	result, err := s.List(r.Context(), userID, page, pageSize)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	items := make([]tagResponse, 0, len(result.Items))
	for _, t := range result.Items {
		items = append(items, toTagResponse(t))
	}
	respondJSON(w, http.StatusOK, pageResponse{
		Items:    items,
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
		Pages:    result.Pages,
	})
}

type createTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Service) create(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req createTagRequest
	if err := binder.JSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	rules := []validator.Rule{
		validator.RequiredString("name", req.Name),
		validator.MaxLenString("name", req.Name, 50),
	}
	if req.Color != "" {
		rules = append(rules, validator.Matches("color", req.Color, colorPattern, "must be a hex color like #1A2B3C"))
	}
	if err := validator.Apply(rules...); err != nil {
		s.respondError(w, r, err)
		return
	}

	tag, err := s.Create(r.Context(), userID, req.Name, req.Color)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toTagResponse(*tag))
}

func (s *Service) get(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	tagID, err := pathID(r, "tagID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	tag, err := s.Get(r.Context(), userID, tagID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTagResponse(*tag))
}

type updateTagRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (s *Service) update(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	tagID, err := pathID(r, "tagID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req updateTagRequest
	if err := binder.JSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	var rules []validator.Rule
	if req.Name != nil {
		rules = append(rules,
			validator.RequiredString("name", *req.Name),
			validator.MaxLenString("name", *req.Name, 50))
	}
	if req.Color != nil {
		rules = append(rules, validator.Matches("color", *req.Color, colorPattern, "must be a hex color like #1A2B3C"))
	}
	if err := validator.Apply(rules...); err != nil {
		s.respondError(w, r, err)
		return
	}

	tag, err := s.Update(r.Context(), userID, tagID, UpdateParams{Name: req.Name, Color: req.Color})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTagResponse(*tag))
}

func (s *Service) remove(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	tagID, err := pathID(r, "tagID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.Delete(r.Context(), userID, tagID); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
	case errors.Is(err, ErrTagNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "tag not found"})
	case errors.Is(err, ErrTagAlreadyExists):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "tag name already exists"})
	case errors.Is(err, errNoSubject):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
	default:
		s.log.ErrorContext(r.Context(), "unhandled error",
			logger.Error(err), logger.Component("tags"))
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
