package voice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"eva/internal/logger"
)

const ttsChunkLimit = 180

// GoogleTTS synthesizes speech through the public Google Translate
// text-to-speech endpoint. The endpoint caps input length, so long
// replies are split on sentence boundaries and the MP3 frames are
// concatenated.
type GoogleTTS struct {
	language string
	baseURL  string
	client   *http.Client
}

func NewGoogleTTS(language string) *GoogleTTS {
	if language == "" {
		language = "fr"
	}
	return &GoogleTTS{
		language: language,
		baseURL:  "https://translate.google.com/translate_tts",
		client:   &http.Client{Timeout: 20 * time.Second},
	}
}

func (g *GoogleTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("nothing to synthesize")
	}

	var audio bytes.Buffer
	for _, chunk := range splitForTTS(text, ttsChunkLimit) {
		data, err := g.fetchChunk(ctx, chunk)
		if err != nil {
			return nil, err
		}
		audio.Write(data)
	}
	logger.Debug("voice: synthesized %d bytes for %d chars", audio.Len(), len(text))
	return audio.Bytes(), nil
}

func (g *GoogleTTS) fetchChunk(ctx context.Context, chunk string) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", g.language)
	params.Set("q", chunk)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts endpoint returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// splitForTTS cuts text into chunks of at most limit bytes, preferring
// sentence ends, then spaces, and hard-splitting only as a last
// resort.
func splitForTTS(text string, limit int) []string {
	var chunks []string
	for len(text) > 0 {
		if len(text) <= limit {
			chunks = append(chunks, text)
			break
		}

		cut := -1
		for _, sep := range []string{". ", "! ", "? ", ", ", " "} {
			if i := strings.LastIndex(text[:limit], sep); i >= 0 {
				cut = i + len(sep) - 1
				break
			}
		}
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		chunk := strings.TrimSpace(text[:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		text = strings.TrimSpace(text[cut:])
	}
	return chunks
}
