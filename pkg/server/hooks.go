package server

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/segmentio/ksuid"

	"inkwell/pkg/hooks"
	"inkwell/pkg/schema"
	"inkwell/pkg/utils"
)

// GET /api/stories/:id/hooks?tab=planted&q=ledger
//
// Returns the story's hooks filtered and ordered by priority, together with
// the overdue warnings for the current chapter.
func (s *Server) handleGetHooks(c echo.Context) error {
	var (
		hookList []schema.NarrativeHook
		current  int
	)
	ok := s.withStory(c.Param("id"), false, func(st *schema.Story) {
		hookList = append([]schema.NarrativeHook(nil), st.Hooks...)
		for _, ch := range st.Chapters {
			if ch.Order > current {
				current = ch.Order
			}
		}
	})
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "story not found")
	}

	warnings := hooks.ScanOverdue(hookList, current)
	filtered := hooks.FilterAndSort(hookList, hooks.FilterOptions{
		Tab:     c.QueryParam("tab"),
		Search:  c.QueryParam("q"),
		Overdue: hooks.BuildOverdueMap(warnings),
	})

	return c.JSON(http.StatusOK, map[string]any{
		"hooks":   filtered,
		"overdue": warnings,
	})
}

type hookReq struct {
	Type              schema.HookType       `json:"type"`
	Description       string                `json:"description"`
	Importance        schema.HookImportance `json:"importance"`
	Chapter           int                   `json:"chapter"`
	Notes             string                `json:"notes,omitempty"`
	RelatedCharacters []string              `json:"related_characters,omitempty"`
}

// POST /api/stories/:id/hooks
func (s *Server) handlePostHook(c echo.Context) error {
	var req hookReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if req.Description == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "description is required")
	}
	if req.Type == "" {
		req.Type = schema.HookForeshadowing
	}
	if req.Importance == "" {
		req.Importance = schema.ImportanceMinor
	}
	if req.Chapter <= 0 {
		req.Chapter = 1
	}

	hook := schema.NarrativeHook{
		ID:                ksuid.New().String(),
		Type:              req.Type,
		Description:       req.Description,
		Status:            schema.HookPlanted,
		Importance:        req.Importance,
		PlantedInChapter:  req.Chapter,
		Notes:             req.Notes,
		RelatedCharacters: req.RelatedCharacters,
	}
	s.withStory(c.Param("id"), true, func(st *schema.Story) {
		st.Hooks = append(st.Hooks, hook)
	})
	s.persistStories()

	return c.JSON(http.StatusCreated, hook)
}

// POST /api/stories/:id/hooks/:hookID/:action
//
// action is one of reference, resolve, abandon. Illegal transitions are
// refused with 409; a hook's status never moves backwards.
func (s *Server) handlePostHookAction(c echo.Context) error {
	var target schema.HookStatus
	switch c.Param("action") {
	case "reference":
		target = schema.HookReferenced
	case "resolve":
		target = schema.HookResolved
	case "abandon":
		target = schema.HookAbandoned
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown action")
	}

	chapter, _ := strconv.Atoi(c.QueryParam("chapter"))
	hookID := c.Param("hookID")

	var (
		updated schema.NarrativeHook
		found   bool
		legal   bool
	)
	ok := s.withStory(c.Param("id"), false, func(st *schema.Story) {
		for i := range st.Hooks {
			h := &st.Hooks[i]
			if h.ID != hookID {
				continue
			}
			found = true
			legal = hooks.CanTransition(h.Status, target)
			if !legal {
				updated = *h
				return
			}
			if chapter <= 0 {
				chapter = hooks.CurrentChapter(st.Hooks)
			}
			applyTransition(h, target, chapter)
			updated = *h
			return
		}
	})

	if !ok || !found {
		return echo.NewHTTPError(http.StatusNotFound, "hook not found")
	}
	if !legal {
		return c.JSON(http.StatusConflict, utils.ErrJSON(
			"cannot move hook from "+string(updated.Status)+" to "+string(target)))
	}
	s.persistStories()

	return c.JSON(http.StatusOK, updated)
}

func applyTransition(h *schema.NarrativeHook, target schema.HookStatus, chapter int) {
	switch target {
	case schema.HookReferenced:
		h.Status = schema.HookReferenced
		h.ReferencedInChapters = append(h.ReferencedInChapters, chapter)
	case schema.HookResolved:
		h.Status = schema.HookResolved
		h.ResolvedInChapter = &chapter
	case schema.HookAbandoned:
		h.Status = schema.HookAbandoned
	}
}

// applySummaryToHooks folds a chapter summary into the hook ledger: planted
// descriptions become new hooks, referenced and resolved descriptions are
// matched against existing hooks by exact description text. Caller holds the
// story's write lock.
func applySummaryToHooks(st *schema.Story, summary schema.ChapterSummary) {
	chapter := summary.ChapterNumber

	byDescription := func(desc string) *schema.NarrativeHook {
		for i := range st.Hooks {
			if st.Hooks[i].Description == desc {
				return &st.Hooks[i]
			}
		}
		return nil
	}

	for _, desc := range summary.HooksReferenced {
		h := byDescription(desc)
		if h == nil || !hooks.CanTransition(h.Status, schema.HookReferenced) {
			continue
		}
		applyTransition(h, schema.HookReferenced, chapter)
	}
	for _, desc := range summary.HooksResolved {
		h := byDescription(desc)
		if h == nil || !hooks.CanTransition(h.Status, schema.HookResolved) {
			continue
		}
		applyTransition(h, schema.HookResolved, chapter)
	}
	for _, desc := range summary.HooksPlanted {
		if desc == "" || byDescription(desc) != nil {
			continue
		}
		st.Hooks = append(st.Hooks, schema.NarrativeHook{
			ID:               ksuid.New().String(),
			Type:             schema.HookForeshadowing,
			Description:      desc,
			Status:           schema.HookPlanted,
			Importance:       schema.ImportanceMinor,
			PlantedInChapter: chapter,
		})
	}
}

func chapterKey(order int) string {
	return strconv.Itoa(order)
}

// persistStories writes the store to disk. Passing the store itself (not a
// shallow Map copy) lets SyncMap marshal under its lock, so a handler
// appending to a story's hooks or chapters cannot tear the encoded JSON.
// saveMu keeps two handlers from interleaving writes to the same file.
func (s *Server) persistStories() {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if err := utils.Save(storiesFile, s.Stories); err != nil {
		log.Error("failed to persist stories", "error", err)
	}
}
