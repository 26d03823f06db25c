package translation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/subtrans/internal/session"
)

const (
	// DefaultModel is used when no model override is configured
	DefaultModel = openai.GPT3Dot5Turbo

	// DefaultUser is the caller tag sent with every request
	DefaultUser = "MoviePilot"

	translateTemperature = 0.2
	translateTopP        = 0.9
)

// ChatCompleter is the part of the OpenAI client the translator needs
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config holds the client configuration
type Config struct {
	APIKey  string
	BaseURL string
	Proxy   ProxyConfig
	Model   string
	User    string
}

// Option customises a Translator
type Option func(*options)

type options struct {
	client    ChatCompleter
	transport TransportBuilder
	sessions  *session.Store
	logger    *slog.Logger
}

// WithChatClient replaces the OpenAI client, mostly for tests
func WithChatClient(client ChatCompleter) Option {
	return func(o *options) { o.client = client }
}

// WithTransportBuilder replaces the proxy transport builder
func WithTransportBuilder(builder TransportBuilder) Option {
	return func(o *options) { o.transport = builder }
}

// WithSessionStore sets the store used by Chat
func WithSessionStore(store *session.Store) Option {
	return func(o *options) { o.sessions = store }
}

// WithLogger sets the logger for diagnostics. Without it failures go to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Translator translates subtitle text into Chinese
type Translator struct {
	client   ChatCompleter
	model    string
	user     string
	baseURL  string
	proxied  bool
	sessions *session.Store
	logger   *slog.Logger
}

// NewTranslator creates a translator. Proxy problems never fail construction;
// the client falls back to a direct connection.
func NewTranslator(config Config, opts ...Option) *Translator {
	o := options{transport: NewBestEffortTransport()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.sessions == nil {
		o.sessions = session.NewStore(session.DefaultConfig())
	}

	t := &Translator{
		model:    config.Model,
		user:     config.User,
		baseURL:  NormalizeBaseURL(config.BaseURL),
		sessions: o.sessions,
		logger:   o.logger,
	}
	if t.model == "" {
		t.model = DefaultModel
	}
	if t.user == "" {
		t.user = DefaultUser
	}

	if o.client != nil {
		t.client = o.client
		return t
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = t.baseURL

	if o.transport != nil {
		httpClient, err := o.transport.Build(config.Proxy)
		if err != nil {
			t.logger.Debug("proxy not configured, using direct connection", "error", err)
		}
		if httpClient != nil {
			clientConfig.HTTPClient = httpClient
			t.proxied = true
		}
	}

	t.client = openai.NewClientWithConfig(clientConfig)
	return t
}

// Model returns the model used for requests
func (t *Translator) Model() string {
	return t.model
}

// BaseURL returns the normalized API endpoint
func (t *Translator) BaseURL() string {
	return t.baseURL
}

// Proxied reports whether requests go through a proxy
func (t *Translator) Proxied() bool {
	return t.proxied
}

// TranslateToChinese translates text. The surrounding lines, if any, only
// serve to keep names, tone and tense consistent. Errors are returned inside
// the Result and never retried.
func (t *Translator) TranslateToChinese(ctx context.Context, text, surrounding string) Result {
	req := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: UserPrompt(text, surrounding)},
		},
		Temperature: translateTemperature,
		TopP:        translateTopP,
		User:        t.user,
	}

	content, err := t.complete(ctx, req)
	if err != nil {
		failure := &Failure{Cause: err}
		t.logFailure("translation failed", failure)
		return Result{Failure: failure}
	}

	return Result{Text: strings.TrimSpace(content)}
}

// Chat sends message as part of the conversation identified by sessionID and
// records the reply in the session. The user turn is appended before the
// request goes out, so after a failed call the session ends with that turn
// and the next message follows it as a second consecutive user turn.
func (t *Translator) Chat(ctx context.Context, sessionID, message string) (string, error) {
	turns := t.sessions.GetSession(sessionID, message)

	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}

	content, err := t.complete(ctx, openai.ChatCompletionRequest{
		Model:    t.model,
		Messages: messages,
		User:     t.user,
	})
	if err != nil {
		t.logFailure("chat failed", &Failure{Cause: err})
		return "", err
	}

	reply := strings.TrimSpace(content)
	t.sessions.SaveSession(sessionID, reply)
	return reply, nil
}

// ClearSession forgets the conversation identified by sessionID
func (t *Translator) ClearSession(sessionID string) {
	t.sessions.ClearSession(sessionID)
}

func (t *Translator) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func (t *Translator) logFailure(msg string, failure *Failure) {
	attrs := []any{"model", t.model, "error", failure.Error()}

	var apiErr *openai.APIError
	if errors.As(failure.Cause, &apiErr) {
		attrs = append(attrs, "status", apiErr.HTTPStatusCode)
	}
	t.logger.Error(msg, attrs...)
}
