// Package gemini counts tokens in captured conversations with the local
// Gemini tokenizer.
package gemini

import (
	"context"
	"sync"

	"github.com/fwojciec/chatvault"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

// DefaultModel is the model whose vocabulary is used for counting.
const DefaultModel = "gemini-2.0-flash"

var _ chatvault.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens using the Gemini tokenizer.
type TokenCounter struct {
	mu  sync.Mutex
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a new TokenCounter for the given model.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = DefaultModel
	}
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, chatvault.Errorf(chatvault.EUNAVAILABLE, "load tokenizer for %s: %v", model, err)
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens counts the number of tokens in the given text.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	return tc.count(ctx, []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	})
}

// CountMessages counts the tokens of a conversation, attributing each
// message to its author.
func (tc *TokenCounter) CountMessages(ctx context.Context, messages []*chatvault.ExtractedMessage) (int, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		var role genai.Role = genai.RoleModel
		if msg.Role == chatvault.RoleUser {
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	if len(contents) == 0 {
		return 0, nil
	}
	return tc.count(ctx, contents)
}

func (tc *TokenCounter) count(ctx context.Context, contents []*genai.Content) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	tc.mu.Lock()
	result, err := tc.tok.CountTokens(contents, nil)
	tc.mu.Unlock()
	if err != nil {
		return 0, err
	}

	return int(result.TotalTokens), nil
}
