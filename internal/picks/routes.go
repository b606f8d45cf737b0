// internal/picks/routes.go

package picks

import (
	"github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authenticate mux.MiddlewareFunc) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authenticate)

	api.HandleFunc("/picks", handler.CreatePickRequest).Methods("POST")
	api.HandleFunc("/picks", handler.GetMyPickRequests).Methods("GET")
	api.HandleFunc("/picks/nearby", handler.FindNearby).Methods("GET")
	api.HandleFunc("/picks/{id}", handler.CancelPickRequest).Methods("DELETE")
}
