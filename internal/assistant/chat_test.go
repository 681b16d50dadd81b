package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/BerylCAtieno/rfm-workbench/internal/models"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
)

// fakeGenerator records prompts and answers from a fixed response.
type fakeGenerator struct {
	response string
	err      error
	prompts  []string
	closed   bool
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeGenerator) Close() error {
	f.closed = true
	return nil
}

type fakeDialer struct {
	gen   *fakeGenerator
	keys  []string
	err   error
	dials int
}

func (d *fakeDialer) Dial(ctx context.Context, apiKey string) (Generator, error) {
	d.dials++
	d.keys = append(d.keys, apiKey)
	if d.err != nil {
		return nil, d.err
	}
	return d.gen, nil
}

func TestSend_ReturnsResponseVerbatim(t *testing.T) {
	gen := &fakeGenerator{response: "  **Hello** there\n"}
	dialer := &fakeDialer{gen: gen}
	chat := NewChat(dialer, "gemini-test", "")

	ex, err := chat.Send(context.Background(), Request{APIKey: "k1", Prompt: "hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if ex.Response != "  **Hello** there\n" {
		t.Fatalf("response altered: %q", ex.Response)
	}
	if ex.Model != "gemini-test" || ex.Prompt != "hi" {
		t.Fatalf("exchange = %+v", ex)
	}
	if len(gen.prompts) != 1 || gen.prompts[0] != "hi" {
		t.Fatalf("prompts = %v", gen.prompts)
	}
	if !gen.closed {
		t.Fatal("generator not closed")
	}
	if dialer.keys[0] != "k1" {
		t.Fatalf("dialed with %q", dialer.keys[0])
	}
}

func TestSend_EmptyPromptNeverDials(t *testing.T) {
	dialer := &fakeDialer{gen: &fakeGenerator{}}
	chat := NewChat(dialer, "gemini-test", "server-key")

	for _, prompt := range []string{"", "   \n\t"} {
		_, err := chat.Send(context.Background(), Request{Prompt: prompt})
		if !errors.Is(err, ErrEmptyPrompt) {
			t.Fatalf("err = %v, want ErrEmptyPrompt", err)
		}
	}
	if dialer.dials != 0 {
		t.Fatalf("dialed %d times", dialer.dials)
	}
}

func TestSend_CredentialResolution(t *testing.T) {
	dialer := &fakeDialer{gen: &fakeGenerator{response: "ok"}}

	_, err := NewChat(dialer, "m", "").Send(context.Background(), Request{Prompt: "q"})
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
	if dialer.dials != 0 {
		t.Fatal("dialed without a key")
	}

	if _, err := NewChat(dialer, "m", "server-key").Send(context.Background(), Request{Prompt: "q"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if dialer.keys[0] != "server-key" {
		t.Fatalf("dialed with %q, want server key", dialer.keys[0])
	}
}

func TestSend_SummaryPrefix(t *testing.T) {
	gen := &fakeGenerator{response: "ok"}
	chat := NewChat(&fakeDialer{gen: gen}, "m", "k")

	_, err := chat.Send(context.Background(), Request{Prompt: "who churns?", IncludeSummary: true})
	if !errors.Is(err, ErrNoReport) {
		t.Fatalf("err = %v, want ErrNoReport", err)
	}

	summary := &models.Summary{Customers: 3, Threshold: 12, HighValue: 1}
	if _, err := chat.Send(context.Background(), Request{Prompt: "who churns?", IncludeSummary: true, Summary: summary}); err != nil {
		t.Fatalf("send: %v", err)
	}
	got := gen.prompts[0]
	if !strings.HasPrefix(got, "RFM analysis of 3 customers") {
		t.Fatalf("summary not first: %q", got)
	}
	if !strings.HasSuffix(got, "Question: who churns?") {
		t.Fatalf("question not last: %q", got)
	}
}

func TestSend_RemoteFailuresAreClassified(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"bad key", &googleapi.Error{Code: http.StatusBadRequest, Message: "API key not valid. Please pass a valid API key."}, KindAuth},
		{"forbidden", &googleapi.Error{Code: http.StatusForbidden}, KindAuth},
		{"unknown model", &googleapi.Error{Code: http.StatusNotFound, Message: "models/gemini-pro is not found"}, KindModel},
		{"quota", &googleapi.Error{Code: http.StatusTooManyRequests}, KindQuota},
		{"network", fmt.Errorf("dial tcp: connection refused"), KindTransport},
		{"deadline", context.DeadlineExceeded, KindTransport},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeGenerator{err: fmt.Errorf("failed to generate content: %w", tc.err)}
			chat := NewChat(&fakeDialer{gen: gen}, "gemini-pro", "k")
			ex, err := chat.Send(context.Background(), Request{Prompt: "q"})
			if ex != nil {
				t.Fatal("exchange returned on failure")
			}
			var se *ServiceError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *ServiceError", err)
			}
			if se.Kind != tc.want {
				t.Fatalf("kind = %s, want %s", se.Kind, tc.want)
			}
			if !gen.closed {
				t.Fatal("generator not closed after failure")
			}
		})
	}
}

func TestSend_DialFailure(t *testing.T) {
	chat := NewChat(&fakeDialer{err: errors.New("boom")}, "m", "k")
	_, err := chat.Send(context.Background(), Request{Prompt: "q"})
	var se *ServiceError
	if !errors.As(err, &se) || se.Kind != KindTransport {
		t.Fatalf("err = %v", err)
	}
}

func TestServiceError_ModelMessage(t *testing.T) {
	err := &ServiceError{Kind: KindModel, Model: "gemini-nope", Err: errors.New("404")}
	if !strings.Contains(err.Error(), `model "gemini-nope" is not available`) {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestGeminiDialer_RequiresModel(t *testing.T) {
	_, err := GeminiDialer{}.Dial(context.Background(), "k")
	var se *ServiceError
	if !errors.As(err, &se) || se.Kind != KindModel {
		t.Fatalf("err = %v, want model ServiceError", err)
	}
}

func TestGeminiDialer_AppliesZeroSettings(t *testing.T) {
	temp, topP, maxTokens := float32(0), float32(0.5), int32(64)
	model := &genai.GenerativeModel{}
	GeminiDialer{Temperature: &temp, TopP: &topP, MaxTokens: &maxTokens}.configure(model)

	if model.Temperature == nil || *model.Temperature != 0 {
		t.Fatalf("temperature = %v, want 0", model.Temperature)
	}
	if model.TopP == nil || *model.TopP != 0.5 {
		t.Fatalf("top_p = %v, want 0.5", model.TopP)
	}
	if model.MaxOutputTokens == nil || *model.MaxOutputTokens != 64 {
		t.Fatalf("max tokens = %v, want 64", model.MaxOutputTokens)
	}

	unset := &genai.GenerativeModel{}
	GeminiDialer{}.configure(unset)
	if unset.Temperature != nil || unset.TopP != nil || unset.MaxOutputTokens != nil {
		t.Fatalf("unset settings were applied: %+v", unset.GenerationConfig)
	}
}
