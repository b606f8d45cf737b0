package users

import (
	"github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authenticate mux.MiddlewareFunc) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authenticate)

	api.HandleFunc("/me", handler.GetMe).Methods("GET")
	api.HandleFunc("/me/profile", handler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/users/{id}/profile", handler.GetUserProfile).Methods("GET")
}
