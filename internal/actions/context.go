package actions

import "context"

type audioKey struct{}

type audioAttachment struct {
	data []byte
	name string
}

// WithAudio attaches the current turn's audio upload to the context so
// the transcription handler can reach it.
func WithAudio(ctx context.Context, data []byte, name string) context.Context {
	return context.WithValue(ctx, audioKey{}, audioAttachment{data: data, name: name})
}

// AudioFromContext returns the turn's audio attachment, if any.
func AudioFromContext(ctx context.Context) ([]byte, string, bool) {
	a, ok := ctx.Value(audioKey{}).(audioAttachment)
	if !ok || len(a.data) == 0 {
		return nil, "", false
	}
	return a.data, a.name, true
}
