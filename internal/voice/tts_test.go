package voice

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitForTTSShortTextSingleChunk(t *testing.T) {
	chunks := splitForTTS("Bonjour, comment allez-vous ?", 180)
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
}

func TestSplitForTTSPrefersSentenceBoundaries(t *testing.T) {
	text := "Première phrase assez longue pour le test. Deuxième phrase qui suit. Troisième phrase finale."
	chunks := splitForTTS(text, 60)
	if len(chunks) < 2 {
		t.Fatalf("long text not split: %v", chunks)
	}
	for _, c := range chunks {
		if len(c) > 60 {
			t.Fatalf("chunk over limit: %q (%d bytes)", c, len(c))
		}
	}
	if !strings.HasSuffix(chunks[0], ".") {
		t.Errorf("first chunk does not end at a sentence: %q", chunks[0])
	}
	if joined := strings.Join(chunks, " "); joined != text {
		t.Fatalf("recombined text differs:\n%q\n%q", joined, text)
	}
}

func TestSplitForTTSSentenceBeatsLaterComma(t *testing.T) {
	text := "Première phrase. Ensuite une suite, encore des mots et des mots"
	chunks := splitForTTS(text, 50)
	if len(chunks) < 2 {
		t.Fatalf("long text not split: %v", chunks)
	}
	if chunks[0] != "Première phrase." {
		t.Fatalf("first chunk = %q, want the full first sentence", chunks[0])
	}
}

func TestSplitForTTSNeverCutsRunes(t *testing.T) {
	text := strings.Repeat("éèàùçéèàùç", 30)
	for _, c := range splitForTTS(text, 25) {
		if !utf8.ValidString(c) {
			t.Fatalf("chunk is not valid UTF-8: %q", c)
		}
	}
}
