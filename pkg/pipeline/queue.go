package pipeline

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"inkwell/pkg/utils"
)

// Queue serializes chapter generation: one worker, so at most one generation
// and one continuity assessment run at a time. The continuity engine itself
// is pure; this is the concurrency control around it.
type Queue struct {
	generator *Generator
	stop      chan struct{}
	items     chan *Item
}

type Item struct {
	Request  *Request
	Response chan *Result
	Progress chan Progress
	Error    chan error
}

func NewQueue(g *Generator) *Queue {
	return &Queue{
		generator: g,
		items:     make(chan *Item, 100),
		stop:      make(chan struct{}),
	}
}

func (q *Queue) Start() {
	go q.processLoop()
}

func (q *Queue) Stop() {
	close(q.stop)
}

// Add enqueues a generation request. Returns the result, progress, and error
// channels, or an error when the queue is full.
func (q *Queue) Add(req *Request) (chan *Result, chan Progress, chan error, error) {
	respCh := make(chan *Result, 1)
	progCh := make(chan Progress, 16)
	errCh := make(chan error, 1)

	select {
	case q.items <- &Item{
		Request:  req,
		Response: respCh,
		Progress: progCh,
		Error:    errCh,
	}:
		return respCh, progCh, errCh, nil
	default:
		return nil, nil, nil, errors.New("generation queue is full")
	}
}

func (q *Queue) processLoop() {
	log.Info("generation queue started")
	for {
		select {
		case <-q.stop:
			log.Info("generation queue stopped")
			return
		case item := <-q.items:
			q.processItem(item)
		}
	}
}

func (q *Queue) processItem(item *Item) {
	req := item.Request
	log.Info("processing chapter generation",
		"story", req.StoryID, "chapter", req.ChapterOrder,
		"outline", utils.LimitStr(req.Outline, 50))

	report := func(p Progress) {
		select {
		case item.Progress <- p:
		default:
			// Slow consumer; progress is advisory and may be dropped.
		}
	}

	result, err := q.generator.Generate(context.Background(), req, report)
	if err != nil {
		log.Error("chapter generation failed", "story", req.StoryID, "chapter", req.ChapterOrder, "error", err)
		item.Error <- err
		close(item.Response)
		close(item.Progress)
		return
	}

	item.Response <- result
	close(item.Progress)
	close(item.Error)
}
