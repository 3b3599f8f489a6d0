// internal/llmclient/gemini_client.go
package llmclient

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kvirtue/gemini-computer-use/api/schemas"
	"github.com/kvirtue/gemini-computer-use/internal/config"
)

// ErrModelChannel is the single taxonomy case for everything that can go
// wrong on the model side: transport failure, empty response, unparsable
// output. Callers treat it as fatal to the run.
var ErrModelChannel = errors.New("model unavailable or malformed response")

// GeminiClient implements schemas.ModelClient against the Gemini computer-use
// API.
type GeminiClient struct {
	client *genai.Client
	cfg    config.ModelConfig
	logger *zap.Logger
}

var _ schemas.ModelClient = (*GeminiClient)(nil)

// NewGeminiClient initializes the client. The API key falls back to the
// GEMINI_API_KEY environment variable when the config leaves it empty.
func NewGeminiClient(ctx context.Context, cfg config.ModelConfig, logger *zap.Logger) (*GeminiClient, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{
		client: client,
		cfg:    cfg,
		logger: logger.Named("llm_client.gemini"),
	}, nil
}

// Converse sends the full ordered conversation to the model and returns its
// next turn, retrying transient faults with exponential backoff.
func (c *GeminiClient) Converse(ctx context.Context, history []schemas.Turn) (*schemas.ModelTurn, error) {
	contents, err := buildContents(history)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelChannel, err)
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.cfg.Temperature),
		TopP:            genai.Ptr(c.cfg.TopP),
		TopK:            genai.Ptr(float32(c.cfg.TopK)),
		MaxOutputTokens: int32(c.cfg.MaxOutputTokens),
		Tools: []*genai.Tool{{
			ComputerUse: &genai.ComputerUse{
				Environment: genai.EnvironmentBrowser,
			},
		}},
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.BaseRetryDelay
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = c.cfg.RequestTimeout

	var turn *schemas.ModelTurn
	attempt := 0

	operation := func() error {
		attempt++
		startTime := time.Now()

		resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, contents, genConfig)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			c.logger.Warn("Model call failed, retrying...",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", c.cfg.MaxRetries),
				zap.Error(err))
			if attempt >= c.cfg.MaxRetries {
				return backoff.Permanent(err)
			}
			return err
		}

		if len(resp.Candidates) == 0 {
			return backoff.Permanent(fmt.Errorf("response has no candidates"))
		}

		candidate := resp.Candidates[0]
		parsed, err := parseCandidate(candidate)
		if err != nil {
			return backoff.Permanent(err)
		}

		c.logger.Info("Model turn received.",
			zap.Duration("duration", time.Since(startTime)),
			zap.Int("actions", len(parsed.Actions)),
			zap.Bool("malformed", parsed.Malformed))

		turn = parsed
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelChannel, err)
	}

	return turn, nil
}

// parseCandidate converts a provider candidate into a ModelTurn.
func parseCandidate(candidate *genai.Candidate) (*schemas.ModelTurn, error) {
	if candidate.Content == nil {
		return nil, fmt.Errorf("candidate has no content (finish reason: %s)", candidate.FinishReason)
	}

	turn := &schemas.ModelTurn{Raw: candidate.Content}

	for _, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			turn.TextFragments = append(turn.TextFragments, part.Text)
		}
		if part.FunctionCall != nil {
			turn.Actions = append(turn.Actions, parseFunctionCall(part.FunctionCall))
		}
	}

	// A malformed function call with nothing usable is retried by the
	// controller rather than failing the run.
	if candidate.FinishReason == genai.FinishReasonMalformedFunctionCall && len(turn.Actions) == 0 {
		turn.Malformed = true
	}

	return turn, nil
}

// parseFunctionCall maps a model-emitted function call onto the closed
// ActionRequest set. Unknown names leave Request nil; the translator records
// them as no-ops instead of failing the run.
func parseFunctionCall(fc *genai.FunctionCall) schemas.ProposedAction {
	args := fc.Args
	if args == nil {
		args = map[string]any{}
	}

	action := schemas.ProposedAction{
		Name: fc.Name,
		Args: args,
	}

	if raw, ok := args["safety_decision"].(map[string]any); ok {
		action.Safety = &schemas.SafetyDecision{
			Decision:    stringArg(raw, "decision"),
			Explanation: stringArg(raw, "explanation"),
		}
	}

	switch schemas.ActionKind(fc.Name) {
	case schemas.KindOpenBrowser:
		action.Request = schemas.OpenBrowser{}
	case schemas.KindClickAt:
		action.Request = schemas.ClickAt{X: intArg(args, "x"), Y: intArg(args, "y")}
	case schemas.KindHoverAt:
		action.Request = schemas.HoverAt{X: intArg(args, "x"), Y: intArg(args, "y")}
	case schemas.KindTypeTextAt:
		action.Request = schemas.TypeTextAt{
			X:           intArg(args, "x"),
			Y:           intArg(args, "y"),
			Text:        stringArg(args, "text"),
			ClearBefore: boolArgDefault(args, "clear_before_typing", true),
			PressEnter:  boolArgDefault(args, "press_enter", false),
		}
	case schemas.KindScrollDocument:
		action.Request = schemas.ScrollDocument{Direction: stringArg(args, "direction")}
	case schemas.KindScrollAt:
		magnitude := intArg(args, "magnitude")
		if magnitude == 0 {
			magnitude = 800
		}
		action.Request = schemas.ScrollAt{
			X:         intArg(args, "x"),
			Y:         intArg(args, "y"),
			Direction: stringArg(args, "direction"),
			Magnitude: magnitude,
		}
	case schemas.KindNavigate:
		action.Request = schemas.Navigate{URL: stringArg(args, "url")}
	case schemas.KindSearch:
		action.Request = schemas.Search{}
	case schemas.KindGoBack:
		action.Request = schemas.GoBack{}
	case schemas.KindGoForward:
		action.Request = schemas.GoForward{}
	case schemas.KindWait:
		action.Request = schemas.Wait{Seconds: 5}
	case schemas.KindKeyCombination:
		action.Request = schemas.KeyCombination{Keys: stringArg(args, "keys")}
	case schemas.KindDragAndDrop:
		action.Request = schemas.DragAndDrop{
			X:     intArg(args, "x"),
			Y:     intArg(args, "y"),
			DestX: intArg(args, "destination_x"),
			DestY: intArg(args, "destination_y"),
		}
	}

	return action
}

// -- Argument helpers: the provider delivers JSON numbers as float64 --

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func boolArgDefault(args map[string]any, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}
