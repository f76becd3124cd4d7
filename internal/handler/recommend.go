package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dental-clinic-desk/internal/observability/metrics"
	"github.com/iliyamo/dental-clinic-desk/internal/recommend"
)

// RecommendHandler serves the intake recommendation lookup.
type RecommendHandler struct {
	Metrics *metrics.EncounterMetrics // may be nil
}

// Recommend handles POST /v1/recommendations with {"age": 34, "reason": "..."}.
func (h *RecommendHandler) Recommend(c echo.Context) error {
	var body struct {
		Age    *int   `json:"age"`
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Age == nil {
		return badRequest(c, "age is required")
	}
	plan, err := recommend.Recommend(*body.Age, body.Reason)
	if err != nil {
		return respondError(c, err)
	}
	h.Metrics.ObserveRecommendation(string(plan.AgeGroup), string(plan.Reason))
	return c.JSON(http.StatusOK, plan)
}
