package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/boddenberg/campus-budget-coach/internal/service"
)

func supportPoliciesHandler(svc *service.SupportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/support/policies")
		defer span.End()

		programs, err := svc.Programs(ctx, r.URL.Query().Get("category"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, listResponse(programs))
	}
}
