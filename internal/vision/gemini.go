package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pattarin/treebank/internal/models"
)

// ClientConfig configures the model endpoint. An empty APIKey puts the
// gateway in demo mode: every call takes the mock path, never an error.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Gateway talks to a Gemini model through its OpenAI-compatible
// endpoint. It implements Analyzer.
type Gateway struct {
	client  *openai.Client // nil in demo mode
	model   string
	timeout time.Duration
	kb      Resolver
	logger  *slog.Logger
}

// NewGateway creates a gateway. kb may be nil; enrichment is then
// skipped.
func NewGateway(cfg ClientConfig, kb Resolver, logger *slog.Logger) *Gateway {
	g := &Gateway{
		model:   cfg.Model,
		timeout: cfg.Timeout,
		kb:      kb,
		logger:  logger,
	}
	if g.timeout <= 0 {
		g.timeout = 30 * time.Second
	}
	if cfg.APIKey != "" {
		oc := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oc.BaseURL = cfg.BaseURL
		}
		g.client = openai.NewClientWithConfig(oc)
	}
	return g
}

// Configured reports whether a model credential is present.
func (g *Gateway) Configured() bool { return g.client != nil }

// Analyze identifies and assesses the tree in the image. Any failure —
// no credential, transport error, timeout, unparseable reply — yields
// the mock analysis so the downstream pipeline always runs.
func (g *Gateway) Analyze(ctx context.Context, img Image, location string, enrich bool) Analysis {
	if g.client == nil {
		return g.mock("")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := buildAnalysisPrompt(g.kb, location, enrich)
	dataURL := fmt.Sprintf("data:%s;base64,%s", img.MIME, base64.StdEncoding.EncodeToString(img.Data))

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
		// Low temperature keeps the JSON shape stable.
		Temperature: 0.1,
	})
	if err != nil {
		g.logger.Warn("vision: model call failed", slog.String("error", err.Error()))
		return g.mock("The vision model could not be reached; showing a demo analysis instead.")
	}
	if len(resp.Choices) == 0 {
		g.logger.Warn("vision: empty model response")
		return g.mock("The vision model returned an empty reply; showing a demo analysis instead.")
	}

	raw, ok := ExtractJSON(resp.Choices[0].Message.Content)
	if !ok {
		g.logger.Warn("vision: no JSON in model response")
		return g.mock("The vision model reply could not be parsed; showing a demo analysis instead.")
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		g.logger.Warn("vision: decode model response", slog.String("error", err.Error()))
		return g.mock("The vision model reply could not be parsed; showing a demo analysis instead.")
	}

	attachEnrichment(&result, g.kb)
	return Analysis{Result: &result, Source: SourceModel}
}

// Chat answers a free-text care question. Failures return a fixed
// apology rather than an error.
func (g *Gateway) Chat(ctx context.Context, message, treeContext string) string {
	if g.client == nil {
		return demoChatReply
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildChatPrompt(g.kb, message, treeContext)},
		},
	})
	if err != nil {
		g.logger.Warn("vision: chat call failed", slog.String("error", err.Error()))
		return apologyChatReply
	}
	if len(resp.Choices) == 0 {
		return apologyChatReply
	}
	return resp.Choices[0].Message.Content
}

func (g *Gateway) mock(warning string) Analysis {
	result := MockAnalysis()
	attachEnrichment(result, g.kb)
	return Analysis{Result: result, Source: SourceMock, Warning: warning}
}
