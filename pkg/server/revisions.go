package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"inkwell/pkg/revision"
	"inkwell/pkg/schema"
)

// GET /api/stories/:id/revisions/:chapter
//
// Returns the repair history for one chapter as word-level diffs, newest
// first.
func (s *Server) handleGetRevisions(c echo.Context) error {
	var entries []schema.RevisionEntry
	ok := s.withStory(c.Param("id"), false, func(st *schema.Story) {
		entries = append([]schema.RevisionEntry(nil), st.Revisions[c.Param("chapter")]...)
	})
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "story not found")
	}

	diffs := make([]revision.Diff, 0, len(entries))
	for _, entry := range entries {
		diffs = append(diffs, revision.FromEntry(entry))
	}
	return c.JSON(http.StatusOK, diffs)
}
