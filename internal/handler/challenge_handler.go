package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/service"
)

// ============================================================
// Challenge (/v1/challenge)
// ============================================================

func challengeInitHandler(svc *service.ChallengeService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/challenge/init")
		defer span.End()

		res, err := svc.Init(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func simulateHandler(svc *service.SimulationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/challenge/simulate")
		defer span.End()

		userID := UserIDFromContext(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		var req domain.SimulateRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		res, err := svc.Simulate(ctx, userID, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func createChallengeHandler(svc *service.ChallengeService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/challenge")
		defer span.End()

		var req domain.CreateChallengeRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		res, err := svc.Create(ctx, UserIDFromContext(ctx), req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		status := http.StatusCreated
		if !res.IsNew {
			status = http.StatusOK
		}
		writeJSON(w, status, res)
	}
}

func listChallengesHandler(svc *service.ChallengeService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/challenge/my")
		defer span.End()

		status := domain.ChallengeStatus(r.URL.Query().Get("status"))
		list, err := svc.List(ctx, UserIDFromContext(ctx), status)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, listResponse(list))
	}
}

func getChallengeHandler(svc *service.ChallengeService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/challenge/{challengeId}")
		defer span.End()

		c, err := svc.Get(ctx, UserIDFromContext(ctx), chi.URLParam(r, "challengeId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func updateChallengeStatusHandler(svc *service.ChallengeService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/challenge/{challengeId}/status")
		defer span.End()

		var req domain.UpdateChallengeStatusRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		c, err := svc.UpdateStatus(ctx, UserIDFromContext(ctx), chi.URLParam(r, "challengeId"), req.Status)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}
