package main

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"mbox/proj/internal/services/auth"
	"mbox/proj/internal/services/users"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

//go:embed templates
var templatesFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

func (app *Application) signup(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name" validate:"required,notblank,max=100"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6,max=72" errorMsg:"Password must be between 6 and 72 characters long"`
	}
	if !app.readJSONOrBadRequest(w, r, &input) {
		return
	}
	input.Email = auth.NormalizeEmail(input.Email)
	if !app.validateOrUnprocessable(w, r, &input) {
		return
	}
	user, err := app.services.Auth.Signup(r.Context(), auth.SignupParams{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserAlreadyExists):
			app.Http.Conflict(w, r, "Email already registered")
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	app.Http.Created(w, r, envelop{"user": user}, "User created successfully. Please check your email to verify your account.")
}

func (app *Application) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token string `json:"token"`
	}
	if !app.readJSONOrBadRequest(w, r, &input) {
		return
	}
	token := strings.TrimSpace(input.Token)
	if token == "" {
		app.Http.BadRequest(w, r, "Verification token is missing")
		return
	}
	user, err := app.services.Auth.VerifyEmail(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrVerificationTokenNotFound):
			app.Http.NotFound(w, r, "Invalid or expired verification token")
		case errors.Is(err, auth.ErrVerificationTokenExpired):
			app.Http.BadRequest(w, r, "Verification token has expired")
		default:
			app.Http.ServerError(w, r, err, "Server error while verifying email")
		}
		return
	}
	app.Http.Ok(w, r, envelop{"user": user}, "Email verified successfully!")
}

type verifyPageData struct {
	Success   bool
	Name      string
	SignInURL string
	Message   string
}

func (app *Application) renderVerifyPage(w http.ResponseWriter, r *http.Request, status int, data verifyPageData) {
	buf := new(bytes.Buffer)
	if err := pageTemplates.ExecuteTemplate(buf, "page", data); err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// verifyEmailPage is the target of the link in the verification email, so it
// answers with HTML instead of JSON.
func (app *Application) verifyEmailPage(w http.ResponseWriter, r *http.Request) {
	user, err := app.services.Auth.VerifyEmail(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrVerificationTokenNotFound):
			app.renderVerifyPage(w, r, http.StatusNotFound, verifyPageData{Message: "Invalid or expired verification token."})
		case errors.Is(err, auth.ErrVerificationTokenExpired):
			app.renderVerifyPage(w, r, http.StatusBadRequest, verifyPageData{Message: "Verification token has expired. Please sign up again."})
		default:
			app.Http.setupLogPerReq(r).Error("Error verifying email", "errMsg", err.Error())
			app.renderVerifyPage(w, r, http.StatusInternalServerError, verifyPageData{
				Message: "There was an error verifying your email. Please try again or contact support.",
			})
		}
		return
	}
	app.renderVerifyPage(w, r, http.StatusOK, verifyPageData{
		Success:   true,
		Name:      user.Name,
		SignInURL: strings.TrimRight(app.cfg.FrontendURL, "/") + "/signin",
	})
}

func (app *Application) signin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email" validate:"required,notblank"`
		Password string `json:"password" validate:"required"`
	}
	if !app.readJSONOrBadRequest(w, r, &input) {
		return
	}
	if !app.validateOrUnprocessable(w, r, &input) {
		return
	}
	token, user, err := app.services.Auth.SignIn(r.Context(), input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			app.Http.NotFound(w, r, "Email or password incorrect")
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	app.Http.Ok(w, r, envelop{"token": token.AccessToken, "expiresAt": token.ExpiresAt, "user": user}, "User successfully signed in")
}

func (app *Application) logout(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token string `json:"token"`
	}
	if !app.readOptionalJSONOrBadRequest(w, r, &input) {
		return
	}
	token := strings.TrimSpace(input.Token)
	if token == "" {
		token = contextGetToken(r)
	}
	if err := app.services.Auth.LogOut(r.Context(), token); err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, nil, "Logged out successfully")
}

func (app *Application) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := app.services.Users.List(r.Context())
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.ResponseWithMeta(w, r, list, envelop{"count": len(list)}, "All users listed", http.StatusOK)
}

func (app *Application) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractUUIDParam(w, r, "id", "Invalid user ID format")
	if !ok {
		return
	}
	user, err := app.services.Users.Get(r.Context(), id)
	if err != nil {
		app.handleUserErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"user": user}, "Single user listed")
}

func (app *Application) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractUUIDParam(w, r, "id", "Invalid user ID format")
	if !ok {
		return
	}
	var input struct {
		Name     *string `json:"name" validate:"omitempty,notblank,max=100"`
		Email    *string `json:"email" validate:"omitempty,email"`
		Password *string `json:"password" validate:"omitempty,min=6,max=72" errorMsg:"Password must be between 6 and 72 characters long"`
	}
	if !app.readJSONOrBadRequest(w, r, &input) {
		return
	}
	if input.Email != nil {
		email := auth.NormalizeEmail(*input.Email)
		input.Email = &email
	}
	if !app.validateOrUnprocessable(w, r, &input) {
		return
	}
	user, err := app.services.Users.Update(r.Context(), contextGetUser(r).ID, id, users.UpdateParams{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		app.handleUserErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"user": user}, "User updated successfully")
}

func (app *Application) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractUUIDParam(w, r, "id", "Invalid user ID format")
	if !ok {
		return
	}
	if err := app.services.Users.Delete(r.Context(), contextGetUser(r).ID, id); err != nil {
		app.handleUserErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, nil, "Single user deleted successfully")
}

func (app *Application) handleUserErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		app.Http.NotFound(w, r, "User not found")
	case errors.Is(err, users.ErrForbidden):
		app.Http.Forbidden(w, r, "You can only modify your own account")
	case errors.Is(err, users.ErrUserAlreadyExists):
		app.Http.Conflict(w, r, "Email already registered")
	default:
		app.Http.ServerError(w, r, err, "")
	}
}
