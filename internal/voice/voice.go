// Package voice turns reply text into speech and uploaded audio back
// into text.
package voice

import "context"

// Synthesizer renders text as playable audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Transcriber converts an uploaded audio attachment to text. filename
// carries the original name so providers can infer the format.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}
