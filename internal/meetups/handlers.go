package meetups

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/oddoapp/pickme-backend/internal/common/database"
	"github.com/oddoapp/pickme-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetMeetup(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	meetupID, ok := parseMeetupID(w, r)
	if !ok {
		return
	}

	mu, err := h.service.GetMeetup(r.Context(), meetupID, userID)
	if err != nil {
		respondMeetupError(w, err, "Failed to get meetup")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, mu)
}

func (h *Handler) GetMyMeetups(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	meetupList, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get meetups")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, meetupList)
}

func (h *Handler) ConfirmStart(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	meetupID, ok := parseMeetupID(w, r)
	if !ok {
		return
	}

	mu, err := h.service.ConfirmStart(r.Context(), meetupID, userID)
	if err != nil {
		respondMeetupError(w, err, "Failed to confirm meetup start")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, mu)
}

func (h *Handler) ConfirmEnd(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	meetupID, ok := parseMeetupID(w, r)
	if !ok {
		return
	}

	mu, err := h.service.ConfirmEnd(r.Context(), meetupID, userID)
	if err != nil {
		respondMeetupError(w, err, "Failed to confirm meetup end")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, mu)
}

func (h *Handler) CancelMeetup(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	meetupID, ok := parseMeetupID(w, r)
	if !ok {
		return
	}

	mu, err := h.service.Cancel(r.Context(), meetupID, userID)
	if err != nil {
		respondMeetupError(w, err, "Failed to cancel meetup")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, mu)
}

func parseMeetupID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	vars := mux.Vars(r)
	meetupID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid meetup ID")
		return 0, false
	}
	return meetupID, true
}

func respondMeetupError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrMeetupNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotParticipant):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrCannotConfirmStart),
		errors.Is(err, ErrCannotConfirmEnd),
		errors.Is(err, ErrAlreadyStarted),
		errors.Is(err, ErrMatchNotAccepted),
		errors.Is(err, database.ErrTxConflict):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
