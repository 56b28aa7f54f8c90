package handler

import (
	"encoding/json"
	"net/http"

	"codearena/internal/api/middleware"
	"codearena/internal/app/service"
	"codearena/internal/common"

	"github.com/go-chi/chi/v5"
)

type ContestHandler struct {
	contestService     *service.ContestService
	leaderboardService *service.LeaderboardService
	certificateService *service.CertificateService
}

func NewContestHandler(
	contestService *service.ContestService,
	leaderboardService *service.LeaderboardService,
	certificateService *service.CertificateService,
) *ContestHandler {
	return &ContestHandler{
		contestService:     contestService,
		leaderboardService: leaderboardService,
		certificateService: certificateService,
	}
}

func (h *ContestHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/{contestID}", h.getContest)
	r.Post("/{contestID}/register", h.register)
	r.Get("/{contestID}/leaderboard", h.studentLeaderboard)
	r.Group(func(staff chi.Router) {
		staff.Use(middleware.StaffOnly)
		staff.Post("/", h.createContest)
		staff.Get("/{contestID}/leaderboard/admin", h.adminLeaderboard)
		staff.Post("/{contestID}/certificates", h.dispatchCertificates)
	})
}

func (h *ContestHandler) createContest(w http.ResponseWriter, r *http.Request) {
	var req service.CreateContestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	contest, err := h.contestService.CreateContest(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, contest)
}

func (h *ContestHandler) getContest(w http.ResponseWriter, r *http.Request) {
	contest, err := h.contestService.GetContest(r.Context(), chi.URLParam(r, "contestID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contest)
}

func (h *ContestHandler) register(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.contestService.Register(r.Context(), chi.URLParam(r, "contestID"), userID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}

func (h *ContestHandler) studentLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := h.leaderboardService.Student(r.Context(), chi.URLParam(r, "contestID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, rows)
}

func (h *ContestHandler) adminLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := h.leaderboardService.Admin(r.Context(), chi.URLParam(r, "contestID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, rows)
}

func (h *ContestHandler) dispatchCertificates(w http.ResponseWriter, r *http.Request) {
	dispatched, err := h.certificateService.DispatchForContest(r.Context(), chi.URLParam(r, "contestID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, dispatched)
}
