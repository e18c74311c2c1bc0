package voice

import (
	"bytes"
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"eva/internal/logger"
)

// WhisperTranscriber sends audio attachments to the OpenAI Whisper
// API.
type WhisperTranscriber struct {
	client   *openai.Client
	language string
}

func NewWhisperTranscriber(apiKey, language string) *WhisperTranscriber {
	return &WhisperTranscriber{
		client:   openai.NewClient(apiKey),
		language: language,
	}
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if filename == "" {
		filename = "audio.mp3"
	}
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
		Language: w.language,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}
	logger.Debug("voice: transcribed %s (%d bytes)", filename, len(audio))
	return resp.Text, nil
}
