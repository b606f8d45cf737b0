package matches

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/oddoapp/pickme-backend/internal/common/database"
	"github.com/oddoapp/pickme-backend/internal/common/utils"
	"github.com/oddoapp/pickme-backend/internal/picks"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ProposePick(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	vars := mux.Vars(r)
	pickRequestID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	match, err := h.service.Propose(r.Context(), userID, pickRequestID)
	if err != nil {
		switch {
		case errors.Is(err, picks.ErrPickNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrCannotPickOwn):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, picks.ErrPickNotActive),
			errors.Is(err, ErrPickExpired),
			errors.Is(err, ErrAlreadyPicked),
			errors.Is(err, database.ErrTxConflict):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		case errors.Is(err, ErrTooManyProposals):
			utils.RespondWithError(w, http.StatusTooManyRequests, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to propose pick")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, match)
}

func (h *Handler) ApproveMatch(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	matchID, ok := parseMatchID(w, r)
	if !ok {
		return
	}

	match, meetupID, err := h.service.Approve(r.Context(), matchID, userID)
	if err != nil {
		respondMatchError(w, err, "Failed to approve match")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"match":     match,
		"meetup_id": meetupID,
	})
}

func (h *Handler) DeclineMatch(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	matchID, ok := parseMatchID(w, r)
	if !ok {
		return
	}

	match, err := h.service.Decline(r.Context(), matchID, userID)
	if err != nil {
		respondMatchError(w, err, "Failed to decline match")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, match)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	matchID, ok := parseMatchID(w, r)
	if !ok {
		return
	}

	match, err := h.service.GetMatch(r.Context(), matchID, userID)
	if err != nil {
		if errors.Is(err, ErrMatchNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get match")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, match)
}

func (h *Handler) GetMyMatches(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	status := Status(r.URL.Query().Get("status"))

	matchList, err := h.service.ListForUser(r.Context(), userID, status)
	if err != nil {
		if errors.Is(err, ErrInvalidStatusFilter) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get matches")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, matchList)
}

func parseMatchID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	vars := mux.Vars(r)
	matchID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return 0, false
	}
	return matchID, true
}

func respondMatchError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrMatchNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotYourMatch):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrMatchNotPending),
		errors.Is(err, picks.ErrPickNotMatched),
		errors.Is(err, database.ErrTxConflict):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
