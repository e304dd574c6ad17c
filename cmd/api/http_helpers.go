package main

import (
	"log/slog"
	"mbox/proj/internal/config"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Http struct {
	log *slog.Logger
	cfg *config.Config
}

type envelop map[string]any

const (
	statusSuccess = "success"
	statusError   = "error"
)

func processMsg(status int, msg string) string {
	if msg == "" {
		msg = http.StatusText(status)
	}
	return msg
}

func (h *Http) setupLogPerReq(r *http.Request) *slog.Logger {
	return h.log.With(
		"request_id",
		middleware.GetReqID(r.Context()),
		"method",
		r.Method,
		"path",
		r.URL.Path,
	)
}

// NewResponse builds the {status, message, data} envelope. Keys from meta are
// added next to them at the top level.
func (h *Http) NewResponse(data any, meta envelop, msg string, status int) envelop {
	resp := make(envelop, len(meta)+3)
	for k, v := range meta {
		resp[k] = v
	}
	resp["status"] = statusSuccess
	if status >= http.StatusBadRequest {
		resp["status"] = statusError
	}
	resp["message"] = processMsg(status, msg)
	if data != nil {
		resp["data"] = data
	}
	return resp
}

func (h *Http) ResponseWithMeta(w http.ResponseWriter, r *http.Request, data any, meta envelop, msg string, status int) {
	render.Status(r, status)
	render.JSON(w, r, h.NewResponse(data, meta, msg, status))
}

func (h *Http) Response(w http.ResponseWriter, r *http.Request, data any, msg string, status int) {
	h.ResponseWithMeta(w, r, data, nil, msg, status)
}

func (h *Http) Ok(w http.ResponseWriter, r *http.Request, data any, msg string) {
	h.Response(w, r, data, msg, http.StatusOK)
}

func (h *Http) Created(w http.ResponseWriter, r *http.Request, data any, msg string) {
	h.Response(w, r, data, msg, http.StatusCreated)
}

func (h *Http) BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	h.Response(w, r, nil, msg, http.StatusBadRequest)
}

func (h *Http) Unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	h.Response(w, r, nil, msg, http.StatusUnauthorized)
}

func (h *Http) Forbidden(w http.ResponseWriter, r *http.Request, msg string) {
	h.Response(w, r, nil, msg, http.StatusForbidden)
}

func (h *Http) NotFound(w http.ResponseWriter, r *http.Request, msg string) {
	h.Response(w, r, nil, msg, http.StatusNotFound)
}

func (h *Http) MethodNotAllowed(w http.ResponseWriter, r *http.Request, msg string) {
	h.Response(w, r, nil, msg, http.StatusMethodNotAllowed)
}

func (h *Http) Conflict(w http.ResponseWriter, r *http.Request, msg string) {
	h.Response(w, r, nil, msg, http.StatusConflict)
}

func (h *Http) RequestEntityTooLarge(w http.ResponseWriter, r *http.Request, msg string) {
	h.Response(w, r, nil, msg, http.StatusRequestEntityTooLarge)
}

func (h *Http) UnsupportedMediaType(w http.ResponseWriter, r *http.Request, msg string) {
	h.Response(w, r, nil, msg, http.StatusUnsupportedMediaType)
}

func (h *Http) UnprocessableEntity(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	h.Response(w, r, envelop{"errors": errors}, "Validation failed", http.StatusUnprocessableEntity)
}

func (h *Http) TooManyRequests(w http.ResponseWriter, r *http.Request) {
	h.Response(w, r, nil, "Rate limit exceeded, please retry later", http.StatusTooManyRequests)
}

func (h *Http) ServerError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := http.StatusInternalServerError
	defaultErrMsg := "Sorry! Can't process your request. Please try again later."
	log := h.setupLogPerReq(r)
	if err != nil {
		log.Error(err.Error())
	}
	if msg == "" {
		msg = defaultErrMsg
	}
	if h.cfg.Debug && err != nil {
		msg = err.Error() + "\n" + string(debug.Stack())
		w.WriteHeader(status)
		w.Write([]byte(msg))
		return
	}
	h.Response(w, r, nil, msg, status)
}
