package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"acme-icecream/internal/flavor"
)

// FlavorStore is the persistence the flavor endpoints need.
type FlavorStore interface {
	List(ctx context.Context) ([]flavor.Flavor, error)
	Get(ctx context.Context, id int64) (flavor.Flavor, error)
	Create(ctx context.Context, in flavor.Input) (flavor.Flavor, error)
	Update(ctx context.Context, id int64, in flavor.Input) (flavor.Flavor, error)
	Delete(ctx context.Context, id int64) error
}

// maxBodyBytes caps create/update payloads.
const maxBodyBytes = 1 << 20

// flavorReq is the JSON body accepted by POST and PUT. Both fields are
// always written; a missing is_favorite means false.
type flavorReq struct {
	Name       string `json:"name" validate:"required,max=255"`
	IsFavorite *bool  `json:"is_favorite"`
}

type errorResp struct {
	Error string `json:"error"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names in validation messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func invalidInput(op, msg string) error {
	return &flavor.Error{Kind: flavor.KindInvalidInput, Op: op, Err: errors.New(msg)}
}

// decodeFlavorReq reads and validates a create/update body.
func decodeFlavorReq(w http.ResponseWriter, r *http.Request) (flavor.Input, error) {
	const op = "decode flavor"

	var req flavorReq
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF), errors.As(err, &typeErr) && typeErr.Field == "":
			return flavor.Input{}, invalidInput(op, "request body must be a JSON object")
		case errors.As(err, &typeErr):
			return flavor.Input{}, invalidInput(op, fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type))
		case errors.As(err, &maxErr):
			return flavor.Input{}, invalidInput(op, "request body too large")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return flavor.Input{}, invalidInput(op, strings.TrimPrefix(err.Error(), "json: "))
		default:
			return flavor.Input{}, invalidInput(op, "malformed JSON")
		}
	}
	// The body must hold exactly one value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return flavor.Input{}, invalidInput(op, "malformed JSON")
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return flavor.Input{}, invalidInput(op, validationMessage(verrs[0]))
		}
		return flavor.Input{}, invalidInput(op, "invalid request body")
	}

	in := flavor.Input{Name: req.Name}
	if req.IsFavorite != nil {
		in.IsFavorite = *req.IsFavorite
	}
	return in, nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Warn("encode_response_failed", map[string]any{"status": status, "error": err.Error()})
	}
}

// statusForKind maps an error kind to its HTTP status.
func statusForKind(k flavor.Kind) int {
	switch k {
	case flavor.KindInvalidInput:
		return http.StatusBadRequest
	case flavor.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error": ...}. Store failures are logged with
// the request id and answered with a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	kind := flavor.KindOf(err)
	status := statusForKind(kind)

	var msg string
	switch kind {
	case flavor.KindNotFound:
		msg = "Flavor not found"
	case flavor.KindInvalidInput:
		msg = "invalid input"
		var fe *flavor.Error
		if errors.As(err, &fe) && fe.Err != nil {
			msg = fe.Err.Error()
		}
	default:
		msg = "internal server error"
		s.metrics.storeErrors.WithLabelValues(op).Inc()
		Error("store_failure", map[string]any{
			"rid": RequestIDFromContext(r.Context()),
			"op":  op,
		}, err)
	}

	writeJSON(w, status, errorResp{Error: msg})
}

// pathID parses the {id} route variable.
func pathID(r *http.Request) (int64, error) {
	id, err := flavor.ParseID(mux.Vars(r)["id"])
	if err != nil && flavor.KindOf(err) == flavor.KindInvalidInput {
		return 0, invalidInput("parse id", "Invalid ID format")
	}
	return id, err
}

// listFlavors handles GET /api/flavors.
func (s *Server) listFlavors(w http.ResponseWriter, r *http.Request) {
	flavors, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, flavors)
}

// getFlavor handles GET /api/flavors/{id}. A non-integer id is rejected
// before the store is queried.
func (s *Server) getFlavor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, "get", err)
		return
	}

	f, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// createFlavor handles POST /api/flavors.
func (s *Server) createFlavor(w http.ResponseWriter, r *http.Request) {
	in, err := decodeFlavorReq(w, r)
	if err != nil {
		s.writeError(w, r, "create", err)
		return
	}

	f, err := s.store.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// updateFlavor handles PUT /api/flavors/{id}: a full overwrite of name and
// is_favorite.
func (s *Server) updateFlavor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, "update", err)
		return
	}
	in, err := decodeFlavorReq(w, r)
	if err != nil {
		s.writeError(w, r, "update", err)
		return
	}

	f, err := s.store.Update(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, "update", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// deleteFlavor handles DELETE /api/flavors/{id}.
func (s *Server) deleteFlavor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, "delete", err)
		return
	}

	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
