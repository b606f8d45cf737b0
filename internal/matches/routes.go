package matches

import (
	"github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authenticate mux.MiddlewareFunc) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authenticate)

	api.HandleFunc("/picks/{id}/propose", handler.ProposePick).Methods("POST")
	api.HandleFunc("/matches", handler.GetMyMatches).Methods("GET")
	api.HandleFunc("/matches/{id}", handler.GetMatch).Methods("GET")
	api.HandleFunc("/matches/{id}/approve", handler.ApproveMatch).Methods("POST")
	api.HandleFunc("/matches/{id}/decline", handler.DeclineMatch).Methods("POST")
}
