// Package planner turns chat prompts into planning text using a hosted language model.
package planner

import (
	"context"
	"errors"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultModel       = "gemini-2.0-flash"
	DefaultTemperature = float32(0.6)
	DefaultMaxTokens   = int32(700)
)

// ScheduleTemperature is used for schedule generation, where output should stay close to the prompt.
const ScheduleTemperature = float32(0.3)

var (
	// ErrNotConfigured is returned when no API key was provided.
	ErrNotConfigured = errors.New("planner: GEMINI_API_KEY not configured")
	// ErrEmptyPrompt is returned by Generate for a blank prompt.
	ErrEmptyPrompt = errors.New("planner: prompt is required")
)

// Options tunes one generation call.
type Options struct {
	Model       string  // empty means the client's model
	Temperature float32 // zero means DefaultTemperature
	MaxTokens   int32   // zero means DefaultMaxTokens
}

// ScheduleOptions returns the options used for schedule generation.
func ScheduleOptions() Options {
	return Options{Temperature: ScheduleTemperature, MaxTokens: DefaultMaxTokens}
}

// Generation is the text produced for a prompt.
type Generation struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// ModelInfo describes a model offered by the provider.
type ModelInfo struct {
	Name             string   `json:"name"`
	DisplayName      string   `json:"displayName,omitempty"`
	Description      string   `json:"description,omitempty"`
	InputTokenLimit  int32    `json:"inputTokenLimit,omitempty"`
	OutputTokenLimit int32    `json:"outputTokenLimit,omitempty"`
	SupportedActions []string `json:"supportedActions,omitempty"`
}

// Generator produces text for prompts.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (*Generation, error)
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// Unconfigured is the Generator used when no API key is set. Every call fails with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) Generate(context.Context, string, Options) (*Generation, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) ListModels(context.Context) ([]ModelInfo, error) {
	return nil, ErrNotConfigured
}
