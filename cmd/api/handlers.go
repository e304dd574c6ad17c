package main

import (
	"net/http"
)

func (app *Application) healthcheck(w http.ResponseWriter, r *http.Request) {
	app.Http.Ok(w, r, envelop{
		"state":   "available",
		"debug":   app.cfg.Debug,
		"version": version,
	}, "Mbox API is running")
}
