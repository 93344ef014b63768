package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/survey/backend/internal/domain"
	"github.com/survey/backend/internal/pkg/apperr"
	"github.com/survey/backend/internal/pkg/httputil"
	"github.com/survey/backend/internal/storage"
)

const traineeItem = "Trainee"

// TraineeService is the contract the trainee routes consume. Absence is
// reported as a nil record or false, never as an error.
type TraineeService interface {
	FindAll(ctx context.Context) ([]domain.Trainee, error)
	FindByID(ctx context.Context, id int) (*domain.Trainee, error)
	Search(ctx context.Context, lastname, firstname *string) ([]domain.Trainee, error)
	Add(ctx context.Context, dto domain.TraineeDTO) (*domain.Trainee, error)
	Update(ctx context.Context, dto domain.TraineeDTO) (*domain.Trainee, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// Exporter uploads a snapshot of trainees somewhere durable.
type Exporter interface {
	Export(ctx context.Context, trainees []domain.Trainee) (*storage.Result, error)
}

// TraineeAPI exposes trainee CRUD and search under /api/trainee.
type TraineeAPI struct {
	svc      TraineeService
	exporter Exporter
	validate *validator.Validate
}

// NewTraineeAPI creates the trainee routes. exporter may be nil, in which
// case the export route answers 503.
func NewTraineeAPI(svc TraineeService, exporter Exporter) *TraineeAPI {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &TraineeAPI{svc: svc, exporter: exporter, validate: v}
}

// RegisterRoutes mounts the trainee routes under /trainee on r.
func (api *TraineeAPI) RegisterRoutes(r chi.Router) {
	r.Route("/trainee", func(r chi.Router) {
		r.Get("/", httputil.Handle(api.HandleGetAll))
		r.Get("/search", httputil.Handle(api.HandleSearch))
		r.Get("/{id}", httputil.Handle(api.HandleGetByID))
		r.Post("/", httputil.Handle(api.HandleAdd))
		r.Put("/", httputil.Handle(api.HandleUpdate))
		r.Delete("/{id}", httputil.Handle(api.HandleDelete))
		r.Post("/export", httputil.Handle(api.HandleExport))
	})
}

// HandleGetAll lists every trainee.
//
//	GET /api/trainee
func (api *TraineeAPI) HandleGetAll(w http.ResponseWriter, r *http.Request) error {
	trainees, err := api.svc.FindAll(r.Context())
	if err != nil {
		return err
	}
	httputil.OK(w, trainees)
	return nil
}

// HandleGetByID returns one trainee.
//
//	GET /api/trainee/{id}
func (api *TraineeAPI) HandleGetByID(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	t, err := api.svc.FindByID(r.Context(), id)
	if err != nil {
		return err
	}
	if t == nil {
		return apperr.NotFoundWithID(traineeItem, id)
	}
	httputil.OK(w, t)
	return nil
}

// HandleSearch filters trainees by lastname (ln) and/or firstname (fn).
//
//	GET /api/trainee/search?ln=Martin&fn=Paul
func (api *TraineeAPI) HandleSearch(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	lastname := optionalParam(q.Get("ln"))
	firstname := optionalParam(q.Get("fn"))
	if lastname == nil && firstname == nil {
		return apperr.NewBadRequest("search with no args not permitted")
	}

	trainees, err := api.svc.Search(r.Context(), lastname, firstname)
	if err != nil {
		return err
	}
	if len(trainees) == 0 {
		return apperr.NoResults(traineeItem+" search", describeCriteria(lastname, firstname))
	}
	httputil.OK(w, trainees)
	return nil
}

// HandleAdd creates a trainee from the JSON body.
//
//	POST /api/trainee
func (api *TraineeAPI) HandleAdd(w http.ResponseWriter, r *http.Request) error {
	var dto domain.TraineeDTO
	if err := httputil.Decode(r, &dto); err != nil {
		return err
	}
	if err := api.validateDTO(dto); err != nil {
		return err
	}
	t, err := api.svc.Add(r.Context(), dto)
	if err != nil {
		return err
	}
	httputil.Created(w, t)
	return nil
}

// HandleUpdate overwrites the trainee whose id is in the JSON body.
//
//	PUT /api/trainee
func (api *TraineeAPI) HandleUpdate(w http.ResponseWriter, r *http.Request) error {
	var dto domain.TraineeDTO
	if err := httputil.Decode(r, &dto); err != nil {
		return err
	}
	if dto.ID == nil {
		return apperr.NewBadRequest("trainee id is required")
	}
	if *dto.ID < math.MinInt32 || *dto.ID > math.MaxInt32 {
		return apperr.NotFoundWithID(traineeItem, *dto.ID)
	}
	t, err := api.svc.Update(r.Context(), dto)
	if err != nil {
		return err
	}
	if t == nil {
		return apperr.NotFoundWithID(traineeItem, *dto.ID)
	}
	httputil.OK(w, t)
	return nil
}

// HandleDelete removes a trainee.
//
//	DELETE /api/trainee/{id}
func (api *TraineeAPI) HandleDelete(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	ok, err := api.svc.Delete(r.Context(), id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFoundWithID(traineeItem, id)
	}
	httputil.NoContent(w)
	return nil
}

// HandleExport uploads a snapshot of all trainees to S3.
//
//	POST /api/trainee/export
func (api *TraineeAPI) HandleExport(w http.ResponseWriter, r *http.Request) error {
	if api.exporter == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "export is not configured")
		return nil
	}
	trainees, err := api.svc.FindAll(r.Context())
	if err != nil {
		return err
	}
	res, err := api.exporter.Export(r.Context(), trainees)
	if err != nil {
		return err
	}
	httputil.Created(w, res)
	return nil
}

func (api *TraineeAPI) validateDTO(dto domain.TraineeDTO) error {
	err := api.validate.Struct(dto)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[fe.Field()] = rule
	}
	return apperr.NewBadRequest("validation failed").WithDetails(fields)
}

// pathID parses the {id} segment. Ids are 32-bit in every store, so a
// well-formed number outside that range cannot exist and is reported as not
// found without reaching storage.
func pathID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 32)
	if errors.Is(err, strconv.ErrRange) {
		return 0, &apperr.NotFoundError{Message: fmt.Sprintf("%s with id %s not found", traineeItem, raw)}
	}
	if err != nil {
		return 0, apperr.NewBadRequest("invalid trainee id: " + raw)
	}
	return int(id), nil
}

// optionalParam maps a blank query value to nil.
func optionalParam(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// describeCriteria renders the present filters as "<lastname> <firstname>".
func describeCriteria(lastname, firstname *string) string {
	var parts []string
	if lastname != nil {
		parts = append(parts, *lastname)
	}
	if firstname != nil {
		parts = append(parts, *firstname)
	}
	return strings.Join(parts, " ")
}
