package soapgen

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Pricing per token for gpt-4 class models.
const (
	promptCostPerToken     = 0.00003
	completionCostPerToken = 0.00006
)

// Config holds chat completions API settings.
type Config struct {
	APIKey      string
	BaseURL     string // defaults to the OpenAI API
	Model       string
	Temperature float64
	MaxTokens   int
}

// Generator produces SOAP notes from transcriptions via a chat completions
// endpoint.
type Generator struct {
	http        *resty.Client
	model       string
	temperature float64
	maxTokens   int
}

// NewGenerator creates a Generator. Transcripts can take a while to process,
// so the HTTP timeout is 2 minutes.
func NewGenerator(cfg Config) *Generator {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4-turbo-preview"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 3000
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(120 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &Generator{
		http:        httpClient,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
	}
}

// PatientContext supplies optional demographics to ground the model.
type PatientContext struct {
	Age                int
	Gender             string
	KnownConditions    []string
	CurrentMedications []string
}

// ProviderContext supplies optional provider details.
type ProviderContext struct {
	Specialty string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	Temperature      float64       `json:"temperature"`
	MaxTokens        int           `json:"max_tokens"`
	TopP             float64       `json:"top_p"`
	FrequencyPenalty float64       `json:"frequency_penalty"`
	PresencePenalty  float64       `json:"presence_penalty"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage chatUsage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// ProcessingMetadata records how a note was produced.
type ProcessingMetadata struct {
	Model               string  `json:"model_used"`
	ProcessingTime      float64 `json:"processing_time_seconds"`
	TokensUsed          int     `json:"tokens_used"`
	PromptTokens        int     `json:"prompt_tokens"`
	CompletionTokens    int     `json:"completion_tokens"`
	EstimatedCostUSD    float64 `json:"estimated_cost_usd"`
	TranscriptionLength int     `json:"transcription_length"`
}

// Result is a generated note with its quality metrics and processing
// metadata.
type Result struct {
	Note    Note               `json:"note"`
	Quality QualityMetrics     `json:"quality_metrics"`
	Meta    ProcessingMetadata `json:"processing_metadata"`
}

// Generate produces a structured SOAP note from a transcription. The
// transcription must contain at least 10 characters of content.
func (g *Generator) Generate(ctx context.Context, transcription string, patient *PatientContext, provider *ProviderContext) (*Result, error) {
	start := time.Now()

	if len(strings.TrimSpace(transcription)) < 10 {
		return nil, fmt.Errorf("transcription too short or empty for medical documentation")
	}

	req := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(transcription, patient, provider)},
		},
		Temperature:      g.temperature,
		MaxTokens:        g.maxTokens,
		TopP:             0.9,
		FrequencyPenalty: 0.1,
		PresencePenalty:  0.1,
	}

	var out chatResponse
	resp, err := g.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("calling chat completions: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("chat completions returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if out.Error != nil {
		return nil, fmt.Errorf("chat completions error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("chat completions returned no choices")
	}

	note := ParseNote(out.Choices[0].Message.Content)
	quality := AssessNote(note, transcription)

	return &Result{
		Note:    note,
		Quality: quality,
		Meta: ProcessingMetadata{
			Model:               g.model,
			ProcessingTime:      time.Since(start).Seconds(),
			TokensUsed:          out.Usage.TotalTokens,
			PromptTokens:        out.Usage.PromptTokens,
			CompletionTokens:    out.Usage.CompletionTokens,
			EstimatedCostUSD:    estimateCost(out.Usage),
			TranscriptionLength: len(transcription),
		},
	}, nil
}

// estimateCost returns the approximate request cost in USD, rounded to four
// decimal places.
func estimateCost(usage chatUsage) float64 {
	cost := float64(usage.PromptTokens)*promptCostPerToken +
		float64(usage.CompletionTokens)*completionCostPerToken
	return math.Round(cost*10000) / 10000
}

// buildUserPrompt assembles the user message from optional context and the
// dictation itself.
func buildUserPrompt(transcription string, patient *PatientContext, provider *ProviderContext) string {
	var parts []string

	if patient != nil {
		var info []string
		if patient.Age > 0 {
			info = append(info, fmt.Sprintf("Age: %d", patient.Age))
		}
		if patient.Gender != "" {
			info = append(info, fmt.Sprintf("Gender: %s", patient.Gender))
		}
		if len(patient.KnownConditions) > 0 {
			info = append(info, fmt.Sprintf("Known conditions: %s", strings.Join(patient.KnownConditions, ", ")))
		}
		if len(patient.CurrentMedications) > 0 {
			info = append(info, fmt.Sprintf("Current medications: %s", strings.Join(patient.CurrentMedications, ", ")))
		}
		if len(info) > 0 {
			parts = append(parts, "PATIENT CONTEXT:\n"+strings.Join(info, "\n"))
		}
	}

	if provider != nil && provider.Specialty != "" {
		parts = append(parts, "PROVIDER SPECIALTY: "+provider.Specialty)
	}

	parts = append(parts, fmt.Sprintf("MEDICAL DICTATION TO PROCESS:\n%q", transcription))
	parts = append(parts, "Please create a comprehensive, clinically accurate SOAP note from this dictation.\n"+
		"Use proper medical terminology and standard formatting. Return only valid JSON.")

	return strings.Join(parts, "\n\n")
}
