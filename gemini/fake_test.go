package gemini

import (
	"context"
	"sync"

	"google.golang.org/genai"
)

// fake is a generator answering with scripted responses, in order.
type fake struct {
	mu      sync.Mutex
	answers []answer
	prompts []string
	models  []string
}

type answer struct {
	text    string
	sources []Source
	err     error
}

func (f *fake) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.models = append(f.models, model)
	f.prompts = append(f.prompts, contents[0].Parts[0].Text)
	if len(f.answers) == 0 {
		return nil, genai.APIError{Code: 503, Status: "UNAVAILABLE", Message: "no more answers"}
	}
	a := f.answers[0]
	f.answers = f.answers[1:]
	if a.err != nil {
		return nil, a.err
	}
	var chunks []*genai.GroundingChunk
	for _, s := range a.sources {
		chunks = append(chunks, &genai.GroundingChunk{Web: &genai.GroundingChunkWeb{URI: s.URI, Title: s.Title}})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:           &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: a.text}}},
			GroundingMetadata: &genai.GroundingMetadata{GroundingChunks: chunks},
		}},
	}, nil
}

func (f *fake) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}
