package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/arimedia/mediaplanner/internal/inventory"
)

// Selector runs the selection pipeline for one brief
type Selector interface {
	SelectAll(ctx context.Context, brief, audience string) (inventory.CombinedResult, error)
}

// SelectionsHandler serves the selection endpoint
type SelectionsHandler struct {
	Orchestrator Selector
}

// Register mounts the handler routes on the given group
func (h *SelectionsHandler) Register(g *echo.Group) {
	g.POST("/selections", h.create)
}

type selectionsRequest struct {
	Brief    string `json:"brief"`
	Audience string `json:"audience,omitempty"`
}

type selectionsResponse struct {
	Websites    []inventory.Selection `json:"websites"`
	TVNetworks  []inventory.Selection `json:"tv_networks"`
	Streaming   []inventory.Selection `json:"streaming_platforms"`
	Fingerprint string                `json:"fingerprint"`
	RunID       string                `json:"run_id"`
	ElapsedMS   int64                 `json:"elapsed_ms"`
}

func (h *SelectionsHandler) create(c echo.Context) error {
	var req selectionsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Brief) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "brief is required")
	}

	result, err := h.Orchestrator.SelectAll(c.Request().Context(), req.Brief, req.Audience)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, selectionsResponse{
		Websites:    result.Websites,
		TVNetworks:  result.TVNetworks,
		Streaming:   result.Streaming,
		Fingerprint: result.Fingerprint,
		RunID:       result.RunID,
		ElapsedMS:   result.Elapsed.Milliseconds(),
	})
}
