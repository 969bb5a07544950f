package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	models "MakerLens/internal/domain/models"
	domrepo "MakerLens/internal/domain/repository"
	"MakerLens/internal/usecase"
	xhttp "MakerLens/pkg/http"
	xlogger "MakerLens/pkg/logger"
)

// ResultsHandler serves the reconstructed provenance of the latest run:
// window summaries, quality counters, trigger tables, and the behavioral
// fingerprint. Summaries come from the result store when one is wired
// (clickhouse backend) and from the in-memory run otherwise.
type ResultsHandler struct {
	logger *xlogger.Logger
	runs   *usecase.RunHolder
	store  domrepo.ResultStore
	cache  domrepo.SummaryCache
}

func NewResultsHandler(logger *xlogger.Logger, runs *usecase.RunHolder, store domrepo.ResultStore, cache domrepo.SummaryCache) *ResultsHandler {
	return &ResultsHandler{logger: logger, runs: runs, store: store, cache: cache}
}

func (h *ResultsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/summaries", h.Summaries)
	g.GET("/summaries/:window", h.Summary)
	g.GET("/quality", h.Quality)
	g.GET("/triggers", h.Triggers)
	g.GET("/signature", h.Signature)
}

func (h *ResultsHandler) Health(c echo.Context) error {
	if h.store != nil {
		if err := h.store.Health(c.Request().Context()); err != nil {
			h.logger.Error("store health check failed", xlogger.Error(err))
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ResultsHandler) Summaries(c echo.Context) error {
	req := &models.SummariesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	runID := h.resolveRunID(req.RunID)
	if runID == "" {
		return xhttp.NotFoundResponse(c, "run")
	}

	if h.store == nil {
		run := h.runs.Latest()
		out := make([]models.WindowSummary, 0, len(run.Summaries))
		for _, s := range run.Summaries {
			if len(out) >= req.Limit {
				break
			}
			out = append(out, *s)
		}
		return xhttp.ListResponse(c, out, int64(len(run.Summaries)))
	}

	ctx := c.Request().Context()
	key := fmt.Sprintf("summaries:%s:%d", runID, req.Limit)
	if h.cache != nil {
		if cached, ok := h.cache.GetSummaries(ctx, key); ok {
			return xhttp.ListResponse(c, cached, int64(len(cached)))
		}
	}

	summaries, err := h.store.QuerySummaries(ctx, runID, req.Limit)
	if err != nil {
		h.logger.Error("query summaries failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if h.cache != nil {
		h.cache.SetSummaries(ctx, key, summaries)
	}
	return xhttp.ListResponse(c, summaries, int64(len(summaries)))
}

func (h *ResultsHandler) Summary(c echo.Context) error {
	req := &models.SummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	runID := h.resolveRunID(req.RunID)
	if runID == "" {
		return xhttp.NotFoundResponse(c, "run")
	}

	if h.store == nil {
		for _, s := range h.runs.Latest().Summaries {
			if s.WindowID == req.Window {
				return xhttp.SuccessResponse(c, s)
			}
		}
		return xhttp.NotFoundResponse(c, "window")
	}

	s, err := h.store.QuerySummary(c.Request().Context(), runID, req.Window)
	if err != nil {
		h.logger.Error("query summary failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if s == nil {
		return xhttp.NotFoundResponse(c, "window")
	}
	return xhttp.SuccessResponse(c, s)
}

func (h *ResultsHandler) Quality(c echo.Context) error {
	run := h.runs.Latest()
	if run == nil {
		return xhttp.NotFoundResponse(c, "run")
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"run_id":              run.RunID,
		"quality":             run.Quality,
		"normalization":       run.Normalization,
		"classification_rate": run.Quality.ClassificationRate(),
		"maker_fraction":      run.Quality.MakerFraction(),
	})
}

func (h *ResultsHandler) Triggers(c echo.Context) error {
	run := h.runs.Latest()
	if run == nil {
		return xhttp.NotFoundResponse(c, "run")
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"run_id":        run.RunID,
		"aggression":    run.Aggression,
		"skips":         run.Skips,
		"outcomes":      run.Outcomes,
		"combined_cost": run.CombinedCost,
		"entries":       run.Entries,
		"execution":     run.Execution,
	})
}

func (h *ResultsHandler) Signature(c echo.Context) error {
	run := h.runs.Latest()
	if run == nil {
		return xhttp.NotFoundResponse(c, "run")
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"run_id":       run.RunID,
		"sizes":        run.Sizes,
		"ladders":      run.Ladders,
		"replenish":    run.Replenish,
		"offset_sweep": run.OffsetSweep,
	})
}

// resolveRunID falls back to the latest in-memory run when the request
// does not pin one.
func (h *ResultsHandler) resolveRunID(requested string) string {
	if requested != "" {
		return requested
	}
	if run := h.runs.Latest(); run != nil {
		return run.RunID
	}
	return ""
}
