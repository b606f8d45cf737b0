package reviews

import (
	"github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authenticate mux.MiddlewareFunc) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authenticate)

	api.HandleFunc("/meetups/{id}/reviews", handler.SubmitReview).Methods("POST")
	api.HandleFunc("/users/{id}/rating", handler.GetUserRating).Methods("GET")
	api.HandleFunc("/users/{id}/reviews", handler.GetUserReviews).Methods("GET")
}
