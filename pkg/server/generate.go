package server

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"inkwell/pkg/continuity"
	"inkwell/pkg/pipeline"
	"inkwell/pkg/schema"
	"inkwell/pkg/utils"
)

type chapterReq struct {
	Title   string `json:"title,omitempty"`
	Outline string `json:"outline"`
	Order   int    `json:"order,omitempty"`
}

const (
	maxStoredRevisions  = 50
	maxStoredRejections = 10
)

// POST /api/stories/:id/chapters
//
// Enqueues a chapter generation run and streams pipeline progress as SSE.
// The run ends with an "accepted" or "rejected" event carrying the final
// continuity assessment.
func (s *Server) handlePostChapter(c echo.Context) error {
	var req chapterReq
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid JSON in chapter request", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if strings.TrimSpace(req.Outline) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "outline is required")
	}
	storyID := c.Param("id")

	job := &pipeline.Request{
		StoryID: storyID,
		Title:   req.Title,
		Outline: req.Outline,
		Gate:    continuity.ResolveGateConfig(s.Workflow),
	}
	s.withStory(storyID, true, func(st *schema.Story) {
		job.Chapters = append([]schema.ChapterRef(nil), st.Chapters...)
		job.Summaries = append([]schema.ChapterSummary(nil), st.Summaries...)
		job.ChapterOrder = req.Order
		if job.ChapterOrder <= 0 {
			job.ChapterOrder = nextChapterOrder(st.Chapters)
		}
	})

	respCh, progCh, errCh, err := s.Queue.Add(job)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	w := utils.NewSSEWriter(c)
	defer w.Close()

	for progCh != nil || respCh != nil {
		select {
		case p, ok := <-progCh:
			if !ok {
				progCh = nil
				continue
			}
			_ = w.Event(p.Stage, p)
		case result, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			return s.finishChapter(w, storyID, job, result)
		case genErr, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if genErr != nil {
				return w.Event("error", utils.ErrJSON(genErr.Error()))
			}
		}
	}
	return nil
}

func (s *Server) finishChapter(w *utils.SSEWriter, storyID string, job *pipeline.Request, result *pipeline.Result) error {
	key := chapterKey(job.ChapterOrder)

	s.withStory(storyID, true, func(st *schema.Story) {
		if len(result.Revisions) > 0 {
			if st.Revisions == nil {
				st.Revisions = make(map[string][]schema.RevisionEntry)
			}
			entries := append(result.Revisions, st.Revisions[key]...)
			if len(entries) > maxStoredRevisions {
				entries = entries[:maxStoredRevisions]
			}
			st.Revisions[key] = entries
		}

		if !result.Accepted {
			if st.Rejections == nil {
				st.Rejections = make(map[string][]schema.Rejection)
			}
			rejections := append([]schema.Rejection{*result.Rejection}, st.Rejections[key]...)
			if len(rejections) > maxStoredRejections {
				rejections = rejections[:maxStoredRejections]
			}
			st.Rejections[key] = rejections
			return
		}

		st.Chapters = append(st.Chapters, result.Chapter)
		st.Summaries = append(st.Summaries, result.Summary)
		applySummaryToHooks(st, result.Summary)
	})

	s.persistStories()

	if !result.Accepted {
		log.Warn("chapter rejected by continuity gate",
			"story", storyID, "chapter", job.ChapterOrder,
			"score", result.Assessment.Score, "reason", result.Rejection.Reason)
		return w.Event("rejected", result.Rejection)
	}

	log.Info("chapter accepted",
		"story", storyID, "chapter", job.ChapterOrder,
		"score", result.Assessment.Score, "repairs", len(result.Revisions))
	return w.Event("accepted", map[string]any{
		"chapter":    result.Chapter,
		"summary":    result.Summary,
		"assessment": result.Assessment,
	})
}

func nextChapterOrder(chapters []schema.ChapterRef) int {
	next := 1
	for _, ch := range chapters {
		if ch.Order >= next {
			next = ch.Order + 1
		}
	}
	return next
}
