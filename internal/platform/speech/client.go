// Package speech transcribes audio recordings using the Azure Speech-to-Text
// REST API. Results include a confidence band and a quality assessment tuned
// for clinical dictation.
package speech

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Config holds Azure Speech Service settings.
type Config struct {
	Key      string
	Region   string
	Endpoint string // overrides the region-derived endpoint when set
	Language string
}

// Client calls the Azure Speech-to-Text short audio REST endpoint.
type Client struct {
	http     *resty.Client
	language string
}

// NewClient creates a speech client. The endpoint defaults to the regional
// short-audio recognition host.
func NewClient(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.stt.speech.microsoft.com", cfg.Region)
	}
	language := cfg.Language
	if language == "" {
		language = "en-US"
	}

	httpClient := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(60 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Ocp-Apim-Subscription-Key", cfg.Key).
		SetHeader("Accept", "application/json")

	return &Client{
		http:     httpClient,
		language: language,
	}
}

// nbestEntry is one recognition hypothesis from a detailed-format response.
type nbestEntry struct {
	Confidence float64 `json:"Confidence"`
	Lexical    string  `json:"Lexical"`
	ITN        string  `json:"ITN"`
	MaskedITN  string  `json:"MaskedITN"`
	Display    string  `json:"Display"`
}

// recognitionResponse is the detailed-format response body.
type recognitionResponse struct {
	RecognitionStatus string       `json:"RecognitionStatus"`
	DisplayText       string       `json:"DisplayText"`
	Offset            int64        `json:"Offset"`
	Duration          int64        `json:"Duration"`
	NBest             []nbestEntry `json:"NBest"`
}

// Result is the outcome of a transcription request.
type Result struct {
	Text             string     `json:"text"`
	Confidence       string     `json:"confidence"` // high, medium, low
	WordCount        int        `json:"word_count"`
	MedicalTermCount int        `json:"medical_terms_detected"`
	Quality          Assessment `json:"quality_assessment"`
	ProcessingTime   float64    `json:"processing_time_seconds"`
}

// Transcribe sends raw audio bytes for recognition and returns the
// transcription with confidence and quality scoring.
func (c *Client) Transcribe(ctx context.Context, audio []byte, contentType string) (*Result, error) {
	start := time.Now()

	if contentType == "" {
		contentType = "audio/wav"
	}

	var out recognitionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetQueryParam("language", c.language).
		SetQueryParam("format", "detailed").
		SetBody(audio).
		SetResult(&out).
		Post("/speech/recognition/conversation/cognitiveservices/v1")
	if err != nil {
		return nil, fmt.Errorf("calling speech service: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("speech service returned status %d: %s", resp.StatusCode(), resp.String())
	}

	switch out.RecognitionStatus {
	case "Success":
	case "NoMatch":
		return nil, fmt.Errorf("no speech was recognized in the audio")
	default:
		return nil, fmt.Errorf("speech recognition failed with status %q", out.RecognitionStatus)
	}

	text := out.DisplayText
	if text == "" && len(out.NBest) > 0 {
		text = out.NBest[0].Display
	}

	result := &Result{
		Text:             text,
		Confidence:       confidenceBand(out.NBest, text),
		WordCount:        len(strings.Fields(text)),
		MedicalTermCount: CountMedicalTerms(text),
		Quality:          AssessQuality(text),
		ProcessingTime:   time.Since(start).Seconds(),
	}
	return result, nil
}

// confidenceBand maps the recognizer's NBest confidences to a band. Without
// NBest data it falls back to a length heuristic: longer, more structured
// dictation generally recognizes more reliably.
func confidenceBand(nbest []nbestEntry, text string) string {
	if len(nbest) > 0 {
		var sum float64
		for _, entry := range nbest {
			sum += entry.Confidence
		}
		avg := sum / float64(len(nbest))
		switch {
		case avg >= 0.8:
			return "high"
		case avg >= 0.6:
			return "medium"
		default:
			return "low"
		}
	}

	textLength := len(text)
	wordCount := len(strings.Fields(text))
	switch {
	case textLength > 100 && wordCount > 20:
		return "high"
	case textLength > 50 && wordCount > 10:
		return "medium"
	default:
		return "low"
	}
}
