package inference

import (
	"context"

	"github.com/openai/openai-go/v3"
)

// Inferencer defines an interface for running model inference against a
// provider. Infer drafts prose or extracts structured summaries depending on
// the params; Repair regenerates a rejected draft with issue feedback in the
// system prompt.
type Inferencer interface {
	Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error)
	Repair(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error)
	Verify(ctx context.Context, result string) (bool, error)
}
