package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/gommon/log"

	"inkwell/pkg/inference"
	"inkwell/pkg/schema"
	"inkwell/pkg/server"
	"inkwell/pkg/utils"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGKILL)

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	openAI := inference.NewOpenAIInferencer(apiKey, model)
	if apiKey == "" {
		openAI.ChangeBaseURL("http://localhost:1234/v1")
		openAI.SetModel("")
	}
	var inf inference.Inferencer = openAI

	if geminiKey := os.Getenv("GEMINI_API_KEY"); geminiKey != "" {
		gemini, err := inference.NewGeminiInferencer(geminiKey, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			log.Warnf("Failed to initialize Gemini, staying on OpenAI: %v", err)
		} else {
			inf = gemini
		}
	}

	srv := server.NewServer(ctx, inf)
	srv.Echo.Logger.SetLevel(log.DEBUG)

	stories, err := utils.Load[map[string]*schema.Story]("Stories.json")
	if err == nil && stories != nil {
		var chapters int
		for id, story := range stories {
			srv.Stories.Store(id, story)
			chapters += len(story.Chapters)
		}
		log.Infof("Loaded %d chapters from %d stories", chapters, len(stories))
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Warnf("Failed to load Stories.json: %v", err)
	}

	workflow, err := utils.Load[schema.WorkflowConfig]("Workflow.json")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("Failed to load Workflow.json, continuity gate uses defaults: %v", err)
	} else if err == nil {
		srv.Workflow = workflow
	}

	addr := ":8080"
	if envAddr := os.Getenv("PORT"); envAddr != "" {
		addr = ":" + envAddr
	}

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(ctx); err != nil {
			log.Fatal(err)
		}
		done()
		close(finishedShutDown)
	}()

	if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(err)
	}
	<-finishedShutDown
}
