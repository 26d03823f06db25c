package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/subtrans/internal/translation"
)

// ModelLister is the part of the OpenAI client the lister needs
type ModelLister interface {
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// Lister handles listing available chat models
type Lister struct {
	apiKey string
	client ModelLister
}

// NewLister creates a model lister for the same endpoint and proxy the
// translator would use.
func NewLister(config translation.Config) *Lister {
	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = translation.NormalizeBaseURL(config.BaseURL)

	// Proxy failures fall back to a direct connection, as in the translator
	if httpClient, _ := translation.NewBestEffortTransport().Build(config.Proxy); httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}

	return &Lister{
		apiKey: config.APIKey,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// ChatModels returns the sorted ids of models usable for chat completions
func (l *Lister) ChatModels(ctx context.Context) ([]string, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .subtrans.yaml")
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	chatModels := []string{}
	for _, model := range models.Models {
		if isChatModel(model.ID) {
			chatModels = append(chatModels, model.ID)
		}
	}
	sort.Strings(chatModels)

	return chatModels, nil
}

// ListChatModels writes the chat models as a table to w
func (l *Lister) ListChatModels(ctx context.Context, w io.Writer) error {
	chatModels, err := l.ChatModels(ctx)
	if err != nil {
		return err
	}

	if len(chatModels) == 0 {
		fmt.Fprintln(w, "No chat models found")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(table.Row{"#", "Chat model", "Default"})
	for i, id := range chatModels {
		marker := ""
		if id == translation.DefaultModel {
			marker = "*"
		}
		tw.AppendRow(table.Row{i + 1, id, marker})
	}
	tw.Render()

	return nil
}

func isChatModel(id string) bool {
	id = strings.ToLower(id)
	// Speech, image and embedding variants share the gpt prefix
	for _, skip := range []string{"tts", "audio", "realtime", "transcribe", "image", "embedding", "dall-e", "whisper"} {
		if strings.Contains(id, skip) {
			return false
		}
	}
	return strings.Contains(id, "gpt") || strings.Contains(id, "chat") ||
		strings.HasPrefix(id, "o1") || strings.HasPrefix(id, "o3") || strings.HasPrefix(id, "o4")
}
