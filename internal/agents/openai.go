package agents

import (
	"context"
	"errors"
	"os"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/answerdesk/orchestrator/internal/extract"
)

// OpenAIConfig configures the direct OpenAI backend.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// OpenAIBackend runs the generator, checker, and classifier roles directly
// against the OpenAI chat completions API, for deployments without a separate
// agent service. Citation URLs come from markdown links in the completion
// since the API has no out-of-band citation channel.
type OpenAIBackend struct {
	model  string
	opts   []option.RequestOption
	logger *zap.Logger
}

// NewOpenAIBackend validates cfg and builds the backend. The API key falls
// back to OPENAI_API_KEY.
func NewOpenAIBackend(cfg OpenAIConfig, logger *zap.Logger) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIBackend{model: cfg.Model, opts: opts, logger: logger}, nil
}

func (o *OpenAIBackend) complete(ctx context.Context, system, user string) (string, error) {
	client := openai.NewClient(o.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Generate implements AnswerGenerator. API failures become a failed status
// rather than an error so the caller sees the same contract as the agent
// service client.
func (o *OpenAIBackend) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	const system = "You answer support questions concisely and cite documentation " +
		"with markdown links when you reference it."

	text, err := o.complete(ctx, system, buildGeneratePrompt(req))
	if err != nil {
		o.logger.Warn("OpenAI generation failed", zap.Error(err))
		return &GenerateResponse{Status: StatusFailed, Error: err.Error()}, nil
	}

	return &GenerateResponse{
		Text:         text,
		CitationURLs: extract.CitedURLs(text),
		Status:       StatusCompleted,
	}, nil
}

// CheckAnswer implements AnswerChecker.
func (o *OpenAIBackend) CheckAnswer(ctx context.Context, question, answer string) (Verdict, error) {
	const system = "You are a strict reviewer of support answers."

	text, err := o.complete(ctx, system, buildCheckPrompt(question, answer))
	if err != nil {
		return Verdict{}, err
	}
	return ParseVerdict(text), nil
}

// ClassifyColumns implements ColumnClassifierBackend.
func (o *OpenAIBackend) ClassifyColumns(ctx context.Context, headers []string, samples [][]string) (string, error) {
	const system = "You classify spreadsheet columns and reply only in the requested format."

	return o.complete(ctx, system, buildClassifyPrompt(headers, samples))
}
