// Package translator provides the translation side of the pipeline: an
// OpenAI-compatible backend, a persistent content-addressed cache, and a
// concurrent dispatcher that drives unit translation with retry and
// graceful degradation.
package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"

	"pdf-translator/internal/logger"
)

// Backend translates a single text from one language to another.
type Backend interface {
	Translate(ctx context.Context, text, langIn, langOut string) (string, error)
	// ModelID identifies the backing model; it participates in cache keys
	// so switching models never serves stale translations.
	ModelID() string
}

// BackendError describes a failed backend call. Transient errors are
// worth retrying (rate limits, timeouts, malformed responses); permanent
// ones (bad credentials, bad configuration) fail the request immediately.
type BackendError struct {
	Message   string
	Transient bool
	Cause     error
}

func (e *BackendError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

// IsTransient reports whether err is worth retrying. Unknown errors count
// as transient; only errors the backend explicitly marks permanent stop
// the retry loop.
func IsTransient(err error) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Transient
	}
	return true
}

const systemPrompt = `You are a professional translator of scientific and technical documents. Translate the user's text from %s to %s.

Rules:
- Output only the translation, with no explanations or quotes.
- Preserve numbers, citations like [12], and reference markers exactly.
- Keep placeholder tokens of the form {v1}, {v2}, ... unchanged and in place.
- Keep the register formal and terminology precise.`

// OpenAIConfig configures an OpenAI-compatible chat backend.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float32
}

// OpenAIBackend translates via an OpenAI-compatible chat completion API.
type OpenAIBackend struct {
	model     *openai.ChatModel
	modelName string
}

// NewOpenAIBackend creates the chat backend. The context only governs
// client construction, not later calls.
func NewOpenAIBackend(ctx context.Context, cfg OpenAIConfig) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, &BackendError{Message: "API key is not configured", Transient: false}
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	chatModelConfig := &openai.ChatModelConfig{
		Model:  cfg.Model,
		APIKey: cfg.APIKey,
	}
	if cfg.BaseURL != "" {
		chatModelConfig.BaseURL = cfg.BaseURL
	}
	if cfg.Temperature != nil {
		chatModelConfig.Temperature = cfg.Temperature
	}

	model, err := openai.NewChatModel(ctx, chatModelConfig)
	if err != nil {
		return nil, &BackendError{Message: "failed to create chat model", Transient: false, Cause: err}
	}

	return &OpenAIBackend{model: model, modelName: cfg.Model}, nil
}

// ModelID returns the chat model name.
func (b *OpenAIBackend) ModelID() string {
	return b.modelName
}

// Translate sends one text through the chat model and returns the
// translated content.
func (b *OpenAIBackend) Translate(ctx context.Context, text, langIn, langOut string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(fmt.Sprintf(systemPrompt, languageName(langIn), languageName(langOut))),
		schema.UserMessage(text),
	}

	response, err := b.model.Generate(ctx, messages)
	if err != nil {
		return "", classifyBackendError(err)
	}

	translated := strings.TrimSpace(response.Content)
	if translated == "" {
		return "", &BackendError{Message: "backend returned empty translation", Transient: true}
	}

	logger.Debug("unit translated",
		logger.Int("source_len", len(text)),
		logger.Int("translated_len", len(translated)))

	return translated, nil
}

// classifyBackendError sorts a raw API error into transient vs permanent.
// Credential and request-shape problems will not heal on retry; everything
// else (rate limits, 5xx, network hiccups) is transient.
func classifyBackendError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := strings.ToLower(err.Error())
	permanent := strings.Contains(msg, "401") ||
		strings.Contains(msg, "403") ||
		strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "incorrect api key") ||
		strings.Contains(msg, "model_not_found") ||
		strings.Contains(msg, "unauthorized")

	return &BackendError{
		Message:   "translation request failed",
		Transient: !permanent,
		Cause:     err,
	}
}

// languageName expands a language code into the English name models
// respond to most reliably. Unknown codes pass through unchanged.
func languageName(code string) string {
	names := map[string]string{
		"en":    "English",
		"zh":    "Simplified Chinese",
		"zh-TW": "Traditional Chinese",
		"ja":    "Japanese",
		"ko":    "Korean",
		"fr":    "French",
		"de":    "German",
		"es":    "Spanish",
		"it":    "Italian",
		"ru":    "Russian",
		"pt":    "Portuguese",
		"ar":    "Arabic",
		"th":    "Thai",
		"hi":    "Hindi",
		"uk":    "Ukrainian",
		"auto":  "the source language (detect it)",
	}
	if name, ok := names[code]; ok {
		return name
	}
	return code
}
