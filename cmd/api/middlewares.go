package main

import (
	"context"
	"errors"
	"fmt"
	"mbox/proj/internal/domain/models"
	"mbox/proj/internal/services/auth"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tomasen/realip"
	"golang.org/x/time/rate"
)

func (app *Application) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil || rec == http.ErrAbortHandler {
				return
			}
			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}
			w.Header().Set("Connection", "close")
			app.Http.ServerError(w, r, err, "")
		}()

		next.ServeHTTP(w, r)
	})
}

const limiterClientTTL = 5 * time.Minute

func (app *Application) RateLimiter(next http.Handler) http.Handler {
	const op = "middlewares.RateLimiter"
	log := app.log.With("op", op)
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	clients := make(map[string]*client)
	var mu sync.Mutex
	go func() {
		for {
			time.Sleep(limiterClientTTL)
			mu.Lock()
			for ip, client := range clients {
				if time.Since(client.lastSeen) > limiterClientTTL {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.cfg.Limiter.Enabled {
			ip := realip.FromRequest(r)
			mu.Lock()
			c, ok := clients[ip]
			if !ok {
				c = &client{limiter: rate.NewLimiter(rate.Limit(app.cfg.Limiter.Rps), app.cfg.Limiter.Burst)}
				clients[ip] = c
			}
			c.lastSeen = time.Now()
			allowed := c.limiter.Allow()
			mu.Unlock()
			if !allowed {
				log.Warn("rate limit exceeded", "ip", ip)
				app.Http.TooManyRequests(w, r)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type CtxKey string

const (
	CtxKeyUser  CtxKey = "user"
	CtxKeyToken CtxKey = "token"
)

// Authenticate resolves the bearer token, when one is sent, to a user and
// stores both in the request context. Requests without a token go on as the
// anonymous user.
func (app *Application) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			r = r.WithContext(context.WithValue(r.Context(), CtxKeyUser, models.AnonymousUser))
			next.ServeHTTP(w, r)
			return
		}
		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) || len(authHeader) < len(bearerPrefix)+1 {
			app.log.Warn("Invalid auth header", "header", authHeader)
			app.Http.BadRequest(w, r, "Invalid Authorization header, should be 'Bearer <token>'")
			return
		}
		token := strings.TrimPrefix(authHeader, bearerPrefix)
		user, err := app.services.Auth.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				app.Http.Unauthorized(w, r, "Token expired")
			case errors.Is(err, auth.ErrTokenInvalid):
				app.Http.Unauthorized(w, r, "Invalid token")
			case errors.Is(err, auth.ErrUserNotFound):
				app.Http.Unauthorized(w, r, "User not found")
			default:
				app.Http.ServerError(w, r, err, "")
			}
			return
		}
		ctx := context.WithValue(r.Context(), CtxKeyUser, user)
		ctx = context.WithValue(ctx, CtxKeyToken, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *Application) requireAuthenticatedUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contextGetUser(r).IsAnonymous() {
			app.Http.Unauthorized(w, r, "Please provide a token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
