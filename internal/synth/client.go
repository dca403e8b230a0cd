// Package synth talks to the external text-to-speech engine.
package synth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// DurationHeader carries the audio length in seconds when the engine reports it
const DurationHeader = "X-Audio-Duration"

// ErrEmptyAudio is returned when the engine answers without audio
var ErrEmptyAudio = errors.New("tts engine returned no audio")

// Audio is a synthesized clip
type Audio struct {
	Data        []byte
	ContentType string
	// Duration is the reported audio length, or the generation time when the engine omits it
	Duration float64
}

type synthesizeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type client struct {
	http *resty.Client
}

// NewClient creates an engine client for baseURL with a per-request timeout
func NewClient(baseURL string, timeout time.Duration) *client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "audio/mpeg")
	return &client{http: http}
}

// Synthesize converts text to speech
func (c *client) Synthesize(ctx context.Context, text, language string) (*Audio, error) {
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(synthesizeRequest{Text: text, Language: language}).
		Post("/synthesize")
	if err != nil {
		return nil, fmt.Errorf("failed to call tts engine: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("tts engine responded with status %d", resp.StatusCode())
	}

	data := resp.Body()
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}

	duration := time.Since(start).Seconds()
	if v := resp.Header().Get(DurationHeader); v != "" {
		if d, err := strconv.ParseFloat(v, 64); err == nil && d >= 0 {
			duration = d
		}
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	return &Audio{Data: data, ContentType: contentType, Duration: duration}, nil
}
