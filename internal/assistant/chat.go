// Package assistant forwards user prompts to a hosted text-generation model.
package assistant

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/BerylCAtieno/rfm-workbench/internal/models"
)

// Generator produces a text completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Dialer creates a Generator bound to an API key. Generators that also
// implement io.Closer are closed after one request.
type Dialer interface {
	Dial(ctx context.Context, apiKey string) (Generator, error)
}

// Request is one chat submission.
type Request struct {
	APIKey         string
	Prompt         string
	IncludeSummary bool
	Summary        *models.Summary
}

// Chat validates requests and relays them to the model.
type Chat struct {
	dialer     Dialer
	model      string
	defaultKey string
	now        func() time.Time
}

// NewChat builds a Chat. defaultKey is used when a request carries no key of its own.
func NewChat(dialer Dialer, model, defaultKey string) *Chat {
	return &Chat{
		dialer:     dialer,
		model:      model,
		defaultKey: defaultKey,
		now:        time.Now,
	}
}

// Model is the configured model name.
func (c *Chat) Model() string { return c.model }

// HasDefaultKey reports whether the server holds its own credential.
func (c *Chat) HasDefaultKey() bool { return c.defaultKey != "" }

// Send validates req, sends a single generation request and returns the exchange.
// Validation failures never reach the remote service.
func (c *Chat) Send(ctx context.Context, req Request) (*models.Exchange, error) {
	question := strings.TrimSpace(req.Prompt)
	if question == "" {
		return nil, ErrEmptyPrompt
	}
	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		key = c.defaultKey
	}
	if key == "" {
		return nil, ErrMissingCredential
	}
	if req.IncludeSummary && req.Summary == nil {
		return nil, ErrNoReport
	}

	prompt := BuildPrompt(question, req.Summary, req.IncludeSummary)

	gen, err := c.dialer.Dial(ctx, key)
	if err != nil {
		log.Printf("ERROR: Failed to initialise %s client: %v", c.model, err)
		return nil, classify(c.model, err)
	}
	if closer, ok := gen.(io.Closer); ok {
		defer closer.Close()
	}

	log.Printf("STATE: Sending %d-byte prompt to %s (summary=%t)", len(prompt), c.model, req.IncludeSummary)
	text, err := gen.Generate(ctx, prompt)
	if err != nil {
		log.Printf("ERROR: Generation failed: %v", err)
		return nil, classify(c.model, err)
	}

	return &models.Exchange{
		Prompt:         question,
		Response:       text,
		IncludeSummary: req.IncludeSummary,
		Model:          c.model,
		At:             c.now().UTC(),
	}, nil
}

// BuildPrompt places the summary, when included, ahead of the user's literal question.
func BuildPrompt(question string, summary *models.Summary, include bool) string {
	if !include || summary == nil {
		return question
	}
	return fmt.Sprintf("%s\nUsing the customer data above, answer the following question.\n\nQuestion: %s", summary.Text(), question)
}
