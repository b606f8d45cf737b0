package reviews

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/oddoapp/pickme-backend/internal/common/database"
	"github.com/oddoapp/pickme-backend/internal/common/utils"
	"github.com/oddoapp/pickme-backend/internal/meetups"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	vars := mux.Vars(r)
	meetupID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid meetup ID")
		return
	}

	var dto SubmitReviewDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.service.Submit(r.Context(), meetupID, userID, &dto)
	if err != nil {
		switch {
		case errors.Is(err, meetups.ErrMeetupNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, meetups.ErrNotParticipant):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, ErrMeetupNotCompleted),
			errors.Is(err, ErrAlreadyReviewed),
			errors.Is(err, database.ErrTxConflict):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to submit review")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, review)
}

func (h *Handler) GetUserRating(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	rating, err := h.service.GetAverageRating(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get rating")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, rating)
}

func (h *Handler) GetUserReviews(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	reviewList, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get reviews")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, reviewList)
}
