// internal/picks/handlers.go

package picks

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/oddoapp/pickme-backend/internal/common/utils"
	"github.com/oddoapp/pickme-backend/internal/geo"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreatePickRequest(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var dto CreatePickRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	request, err := h.service.Create(r.Context(), userID, &dto)
	if err != nil {
		if errors.Is(err, geo.ErrInvalidCoordinates) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create pick request")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, request)
}

func (h *Handler) CancelPickRequest(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	vars := mux.Vars(r)
	requestID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	request, err := h.service.Cancel(r.Context(), requestID, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrPickNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotYourRequest):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, ErrPickNotActive):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to cancel pick request")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, request)
}

func (h *Handler) GetMyPickRequests(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	requests, err := h.service.ListOwn(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get pick requests")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, requests)
}

func (h *Handler) FindNearby(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	q, err := parseNearbyQuery(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.service.FindNearby(r.Context(), userID, q)
	if err != nil {
		switch {
		case errors.Is(err, geo.ErrInvalidCoordinates), errors.Is(err, ErrInvalidRadius):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to search nearby picks")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, results)
}

func parseNearbyQuery(r *http.Request) (*NearbyQuery, error) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		return nil, errors.New("invalid or missing lat parameter")
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		return nil, errors.New("invalid or missing lng parameter")
	}

	q := &NearbyQuery{Latitude: lat, Longitude: lng}

	if raw := r.URL.Query().Get("radius"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.New("invalid radius parameter")
		}
		q.RadiusMeters = radius
	}

	return q, nil
}
