package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"inkwell/pkg/continuity"
	"inkwell/pkg/schema"
)

type assessReq struct {
	Content   string                  `json:"content"`
	Chapters  []schema.ChapterRef     `json:"chapters"`
	Summaries []schema.ChapterSummary `json:"summaries"`

	PassScore          float64 `json:"pass_score,omitempty"`
	RejectScore        float64 `json:"reject_score,omitempty"`
	OpeningWindowChars int     `json:"opening_window_chars,omitempty"`
	MaxAnchorSignals   int     `json:"max_anchor_signals,omitempty"`
	MaxEventSignals    int     `json:"max_event_signals,omitempty"`
	MaxHookSignals     int     `json:"max_hook_signals,omitempty"`
}

// POST /api/assess
//
// Runs a standalone continuity assessment over caller-supplied history. The
// generation pipeline calls the engine directly; this endpoint exists for
// dry-runs against drafts written outside the pipeline.
func (s *Server) handlePostAssess(c echo.Context) error {
	var req assessReq
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid JSON in /api/assess", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	assessment := continuity.Assess(req.Content, req.Chapters, req.Summaries, continuity.Options{
		PassScore:          req.PassScore,
		RejectScore:        req.RejectScore,
		OpeningWindowChars: req.OpeningWindowChars,
		MaxAnchorSignals:   req.MaxAnchorSignals,
		MaxEventSignals:    req.MaxEventSignals,
		MaxHookSignals:     req.MaxHookSignals,
	})

	log.Info("assessment complete",
		"score", assessment.Score, "verdict", assessment.Verdict, "issues", len(assessment.Issues))
	return c.JSON(http.StatusOK, assessment)
}
