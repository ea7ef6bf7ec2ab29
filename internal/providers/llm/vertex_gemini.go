package llm

import (
	"context"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
)

type VertexGemini struct {
	client *vertexgenai.Client
	model  *vertexgenai.GenerativeModel
}

type VertexOptions struct {
	ProjectID   string
	Location    string
	Model       string
	Temperature float32
	MaxTokens   int32
	System      string
}

func NewVertexGemini(ctx context.Context, opt VertexOptions) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, opt.ProjectID, opt.Location)
	if err != nil {
		return nil, err
	}

	if opt.Model == "" {
		opt.Model = "gemini-1.5-flash"
	}

	m := c.GenerativeModel(opt.Model)
	// every prompt in this service asks for a JSON document
	m.ResponseMIMEType = "application/json"
	if opt.Temperature > 0 {
		m.SetTemperature(opt.Temperature)
	}
	if opt.MaxTokens > 0 {
		m.SetMaxOutputTokens(opt.MaxTokens)
	}
	if opt.System != "" {
		m.SystemInstruction = &vertexgenai.Content{Parts: []vertexgenai.Part{vertexgenai.Text(opt.System)}}
	}
	return &VertexGemini{client: c, model: m}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) StreamAnswer(ctx context.Context, prompt string) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		it := v.model.GenerateContentStream(ctx, vertexgenai.Text(prompt))
		for {
			resp, err := it.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				errs <- err
				return
			}

			for _, cand := range resp.Candidates {
				if cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					if t, ok := part.(vertexgenai.Text); ok && string(t) != "" {
						out <- string(t)
					}
				}
			}
		}
	}()

	return out, errs
}
