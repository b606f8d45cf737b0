package meetups

import (
	"github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authenticate mux.MiddlewareFunc) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authenticate)

	api.HandleFunc("/meetups", handler.GetMyMeetups).Methods("GET")
	api.HandleFunc("/meetups/{id}", handler.GetMeetup).Methods("GET")
	api.HandleFunc("/meetups/{id}/confirm-start", handler.ConfirmStart).Methods("POST")
	api.HandleFunc("/meetups/{id}/confirm-end", handler.ConfirmEnd).Methods("POST")
	api.HandleFunc("/meetups/{id}", handler.CancelMeetup).Methods("DELETE")
}
