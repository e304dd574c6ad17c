package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mbox/proj/internal/domain/models"
	"mbox/proj/internal/lib/validator"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxJSONBodyBytes = 1_048_576 // 1MB

var errEmptyBody = errors.New("body must not be empty")

// extractUUIDParam reads a uuid path parameter, answering 400 with msg when it
// is malformed.
func (app *Application) extractUUIDParam(w http.ResponseWriter, r *http.Request, name, msg string) (id uuid.UUID, extracted bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		app.Http.BadRequest(w, r, msg)
		return uuid.Nil, false
	}
	return id, true
}

func (app *Application) readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	src := http.MaxBytesReader(w, r.Body, int64(maxJSONBodyBytes))
	defer io.Copy(io.Discard, src)
	dec := json.NewDecoder(src)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err != nil {
		return handleJsonErr(err)
	}
	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func handleJsonErr(err error) error {
	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var invalidUnmarshalError *json.InvalidUnmarshalError
	var maxBytesError *http.MaxBytesError
	switch {
	case errors.As(err, &syntaxError):
		return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)

	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.New("body contains badly-formed JSON")

	case errors.As(err, &unmarshalTypeError):
		if unmarshalTypeError.Field != "" {
			return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
		}
		return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)

	case errors.Is(err, io.EOF):
		return errEmptyBody

	case strings.HasPrefix(err.Error(), "json: unknown field "):
		fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return fmt.Errorf("body contains unknown key %s", fieldName)

	case errors.As(err, &maxBytesError):
		return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)

	case errors.As(err, &invalidUnmarshalError):
		panic(err)
	default:
		return err
	}
}

// readJSONOrBadRequest decodes the body and reports whether the handler may go on.
func (app *Application) readJSONOrBadRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := app.readJSON(w, r, dst); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return false
	}
	return true
}

// readOptionalJSONOrBadRequest is readJSONOrBadRequest for handlers where the
// body may be left out. Content-Length is not trusted since chunked requests
// report -1.
func (app *Application) readOptionalJSONOrBadRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := app.readJSON(w, r, dst); err != nil && !errors.Is(err, errEmptyBody) {
		app.Http.BadRequest(w, r, err.Error())
		return false
	}
	return true
}

// validateOrUnprocessable runs struct validation and answers 422 with the
// per-field messages on failure.
func (app *Application) validateOrUnprocessable(w http.ResponseWriter, r *http.Request, obj any) bool {
	if errs := validator.ValidateStruct(app.validator, obj); errs != nil {
		app.Http.UnprocessableEntity(w, r, errs)
		return false
	}
	return true
}

func contextGetUser(r *http.Request) *models.User {
	user, ok := r.Context().Value(CtxKeyUser).(*models.User)
	if !ok || user == nil {
		return models.AnonymousUser
	}
	return user
}

func contextGetToken(r *http.Request) string {
	token, _ := r.Context().Value(CtxKeyToken).(string)
	return token
}
