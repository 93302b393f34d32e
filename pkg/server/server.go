package server

import (
	"context"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"inkwell/pkg/inference"
	"inkwell/pkg/pipeline"
	"inkwell/pkg/schema"
	"inkwell/pkg/utils"
)

const storiesFile = "Stories.json"

type Server struct {
	Echo       *echo.Echo
	Inferencer inference.Inferencer
	Queue      *pipeline.Queue
	Stories    *utils.SyncMap[map[string]*schema.Story, string, *schema.Story]
	Workflow   schema.WorkflowConfig
	Ctx        context.Context

	saveMu sync.Mutex // one Stories.json writer at a time
}

func NewServer(ctx context.Context, inf inference.Inferencer) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	s := &Server{
		Echo:       e,
		Inferencer: inf,
		Queue:      pipeline.NewQueue(pipeline.NewGenerator(inf)),
		Stories:    utils.NewSyncMap[map[string]*schema.Story](),
		Ctx:        ctx,
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)

	api := s.Echo.Group("/api")
	api.POST("/assess", s.handlePostAssess) // standalone continuity assessment

	stories := api.Group("/stories/:id")
	stories.POST("/chapters", s.handlePostChapter) // generate + gate, SSE progress
	stories.GET("/hooks", s.handleGetHooks)
	stories.POST("/hooks", s.handlePostHook)
	stories.POST("/hooks/:hookID/:action", s.handlePostHookAction)
	stories.GET("/revisions/:chapter", s.handleGetRevisions)
}

func (s *Server) Start(addr string) error {
	s.Queue.Start()
	utils.Logf("Server listening at %s", addr)
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	utils.Logf("Shutting down server...")
	s.Queue.Stop()

	s.saveMu.Lock()
	saveErr := utils.Save(storiesFile, s.Stories)
	s.saveMu.Unlock()
	shutDownErr := s.Echo.Shutdown(ctx)
	if shutDownErr != nil {
		return shutDownErr
	}

	return saveErr
}

// withStory runs fn on the story for id while holding the store's write
// lock, so handlers and the generation worker never race on story fields.
// Creates an empty story when create is set; otherwise fn sees nil.
func (s *Server) withStory(id string, create bool, fn func(*schema.Story)) bool {
	found := false
	s.Stories.Update(id, func(st *schema.Story, ok bool) (*schema.Story, bool) {
		if !ok {
			if !create {
				return nil, false
			}
			st = &schema.Story{ID: id}
		}
		found = true
		fn(st)
		return st, true
	})
	return found
}
