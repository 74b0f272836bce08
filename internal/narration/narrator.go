// Package narration is the boundary to the AI narration service. The core
// hands the service a read-only, permission-filtered project snapshot plus
// the transcript history, consumes the resulting text stream incrementally,
// and keeps whatever text arrived once the stream ends or is cancelled. A
// cancelled stream is not resumable — a fresh request starts over. There is
// no retry or backoff at this boundary.
package narration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/lumenhq/workroom/internal/directory"
	"github.com/lumenhq/workroom/internal/metrics"
	"github.com/lumenhq/workroom/internal/workspace"
)

const systemPrompt = "You are the project narrator for a client workspace. " +
	"Answer questions about the project using only the snapshot provided. " +
	"Be concise and concrete; if the snapshot does not contain the answer, say so."

// Turn is one transcript entry.
type Turn struct {
	Role string `json:"role"` // user | assistant
	Text string `json:"text"`
	At   int64  `json:"at"`
}

// Request is one narration request.
type Request struct {
	User    *directory.User
	Project *workspace.Project
	Message string
}

// Fragment is one element of the narration stream. A terminal fragment (Done
// on completion or cancellation, Err on a stream failure) precedes channel
// close; after cancellation its delivery is best-effort since the receiver
// may already be gone.
type Fragment struct {
	Text string
	Err  error
	Done bool
}

// Config holds narrator configuration.
type Config struct {
	APIKey     string
	Model      string
	MaxTokens  int64
	MaxStreams int64 // concurrent stream ceiling
}

// Narrator streams narration responses and keeps per-project transcripts.
type Narrator struct {
	client  *anthropic.Client
	model   string
	maxTok  int64
	sem     *semaphore.Weighted
	builder *ContextBuilder
	logger  zerolog.Logger
	metrics *metrics.Metrics

	mu          sync.Mutex
	transcripts map[string][]Turn
}

// NewNarrator creates a narrator. The API key is required; model and limits
// fall back to defaults.
func NewNarrator(cfg Config, logger zerolog.Logger, m *metrics.Metrics) (*Narrator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("narration API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-5"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.MaxStreams <= 0 {
		cfg.MaxStreams = 2
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Narrator{
		client:      &client,
		model:       cfg.Model,
		maxTok:      cfg.MaxTokens,
		sem:         semaphore.NewWeighted(cfg.MaxStreams),
		builder:     NewContextBuilder(),
		logger:      logger.With().Str("component", "narration").Logger(),
		metrics:     m,
		transcripts: make(map[string][]Turn),
	}, nil
}

// Transcript returns the transcript history for a project.
func (n *Narrator) Transcript(projectID string) []Turn {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Turn(nil), n.transcripts[projectID]...)
}

// Narrate starts a narration stream for the request. Fragments arrive on the
// returned channel until the stream completes, fails, or ctx is cancelled;
// the channel is then closed. Whatever text arrived before cancellation is
// appended to the project transcript.
func (n *Narrator) Narrate(ctx context.Context, req Request) (<-chan Fragment, error) {
	if req.Project == nil {
		return nil, fmt.Errorf("narration requires a project")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("narration requires a user message")
	}
	if err := n.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire narration slot: %w", err)
	}

	snapshot := n.builder.ProjectContext(req.User, req.Project)
	history := n.Transcript(req.Project.ID)

	messages := make([]anthropic.MessageParam, 0, len(history)+2)
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(snapshot)))
	for _, turn := range history {
		if turn.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Text)))
		} else {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Text)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Message)))

	n.appendTurn(req.Project.ID, "user", req.Message)

	stream := n.client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(n.model),
		MaxTokens: n.maxTok,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:  messages,
	})

	out := make(chan Fragment)
	go func() {
		defer close(out)
		defer n.sem.Release(1)

		var acc strings.Builder
		var message anthropic.Message
		for stream.Next() {
			event := stream.Current()
			_ = message.Accumulate(event)

			switch ev := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok {
					acc.WriteString(delta.Text)
					select {
					case out <- Fragment{Text: delta.Text}:
					case <-ctx.Done():
					}
				}
			}
		}

		// Keep whatever text arrived, even when the stream was cancelled
		// partway through.
		if acc.Len() > 0 {
			n.appendTurn(req.Project.ID, "assistant", acc.String())
		}
		n.metrics.RecordNarrationTokens(message.Usage.InputTokens, message.Usage.OutputTokens)

		terminal := Fragment{Done: true}
		err := stream.Err()
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			n.logger.Debug().Str("project", req.Project.ID).Msg("narration stream cancelled")
		default:
			n.logger.Warn().Err(err).Str("project", req.Project.ID).Msg("narration stream failed")
			terminal = Fragment{Err: err}
		}
		// The receiver may already be gone after cancellation; never block
		// on the terminal fragment.
		select {
		case out <- terminal:
		case <-ctx.Done():
		}
	}()

	return out, nil
}

func (n *Narrator) appendTurn(projectID, role, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.transcripts[projectID] = append(n.transcripts[projectID], Turn{
		Role: role,
		Text: text,
		At:   time.Now().UnixMilli(),
	})
}
