// Package gemini implements the model gateway on top of the Google GenAI
// client. Mid-session failures are downgraded to fixed strings so the
// conversation always advances instead of surfacing an error state.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/ashevtsov/interview-partner/internal/ai"
)

const (
	defaultChatModel     = "gemini-2.5-flash"
	defaultFeedbackModel = "gemini-2.5-pro"

	// apologyReply replaces any failed conversational call.
	apologyReply = "I'm having trouble generating a response."
	// generateFailureReply replaces any failed one-shot generation.
	generateFailureReply = "Error generating content."
)

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type contentCaller interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config carries the generation settings applied to every call.
type Config struct {
	Model         string
	FeedbackModel string
	Temperature   float32
	MaxTokens     int32
}

// Client wraps the GenAI client with the two capabilities the core needs:
// an ongoing conversation and one-shot content generation.
type Client struct {
	chats  chatCreator
	models contentCaller
	config Config
	logger *zap.Logger
}

type genaiChats struct {
	client *genai.Client
}

func (g *genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	return g.client.Chats.Create(ctx, model, config, history)
}

type genaiModels struct {
	client *genai.Client
}

func (g *genaiModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return g.client.Models.GenerateContent(ctx, model, contents, config)
}

// NewClient creates a Client configured for the Gemini API backend.
func NewClient(ctx context.Context, apiKey string, cfg Config, logger *zap.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if cfg.Model = strings.TrimSpace(cfg.Model); cfg.Model == "" {
		cfg.Model = defaultChatModel
	}
	if cfg.FeedbackModel = strings.TrimSpace(cfg.FeedbackModel); cfg.FeedbackModel == "" {
		cfg.FeedbackModel = defaultFeedbackModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		chats:  &genaiChats{client: client},
		models: &genaiModels{client: client},
		config: cfg,
		logger: logger,
	}, nil
}

// StartConversation opens a chat session seeded with the system instruction.
func (c *Client) StartConversation(ctx context.Context, systemInstruction string) (ai.Conversation, error) {
	session, err := c.chats.Create(ctx, c.config.Model, c.generateConfig(systemInstruction), nil)
	if err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}

	return &Chat{
		session: session,
		logger:  c.logger.With(zap.String("ai_provider", "gemini"), zap.String("ai_model", c.config.Model)),
	}, nil
}

// GenerateContent runs one-shot generation on the feedback model. Failures
// are logged and downgraded to a fixed reply, never returned as errors.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := c.models.GenerateContent(ctx, c.config.FeedbackModel, genai.Text(prompt), c.generateConfig(""))
	if err != nil {
		c.logger.Warn("one-shot generation failed",
			zap.String("ai_model", c.config.FeedbackModel),
			zap.Error(err),
		)
		return generateFailureReply, nil
	}

	return responseText(resp), nil
}

func (c *Client) generateConfig(systemInstruction string) *genai.GenerateContentConfig {
	temperature := c.config.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: c.config.MaxTokens,
	}
	if systemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}
	return config
}

// Model returns the conversational model identifier.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.config.Model
}

// Chat is a live conversation handle. A transport or API failure yields the
// fixed apology string with a nil error; empty replies pass through so the
// caller can apply its own fallback.
type Chat struct {
	session chatSession
	logger  *zap.Logger
}

// SendMessage sends one message in the ongoing conversation and returns the
// model's reply.
func (c *Chat) SendMessage(ctx context.Context, message string) (string, error) {
	resp, err := c.session.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		c.logger.Warn("conversational call failed", zap.Error(err))
		return apologyReply, nil
	}

	return responseText(resp), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}
