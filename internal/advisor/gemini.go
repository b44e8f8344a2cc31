package advisor

import (
	"context"
	"errors"

	"draftroom/internal/client/gemini"
)

// GeminiProvider adapts the Gemini REST client to the Provider interface.
type GeminiProvider struct {
	Client *gemini.Client
}

func (p *GeminiProvider) Name() string { return p.Client.Name() }

func (p *GeminiProvider) Suggest(ctx context.Context, prompt string) (Suggestion, error) {
	var s Suggestion
	if err := p.Client.GenerateJSON(ctx, prompt, &s); err != nil {
		if errors.Is(err, gemini.ErrRateLimited) {
			return Suggestion{}, ErrRateLimited
		}
		return Suggestion{}, err
	}
	return s, nil
}
