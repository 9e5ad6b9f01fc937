package chunker_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/RafieAmandio/Teacher-RAG/pkg/service/chunker"
	"github.com/m-mizutani/gt"
)

// reconstruct drops the overlapping prefix of every chunk but the first
func reconstruct(chunks []string, overlap int) string {
	var sb strings.Builder
	for i, c := range chunks {
		if i == 0 {
			sb.WriteString(c)
			continue
		}
		r := []rune(c)
		if len(r) > overlap {
			sb.WriteString(string(r[overlap:]))
		}
	}
	return sb.String()
}

func TestSplit2400Characters(t *testing.T) {
	text := strings.Repeat("a", 2400)

	chunks, err := chunker.Split(text, 1000, 200)
	gt.NoError(t, err).Required()
	gt.Array(t, chunks).Length(3).Required()
	gt.Value(t, len(chunks[0])).Equal(1000)
	gt.Value(t, len(chunks[1])).Equal(1000)
	// third window starts at offset 1600
	gt.Value(t, len(chunks[2])).Equal(800)
}

func TestSplit2000Characters(t *testing.T) {
	text := strings.Repeat("b", 2000)

	chunks, err := chunker.Split(text, 1000, 200)
	gt.NoError(t, err).Required()
	gt.Array(t, chunks).Length(3).Required()
	gt.Value(t, len(chunks[0])).Equal(1000)
	gt.Value(t, len(chunks[1])).Equal(1000)
	gt.Value(t, len(chunks[2])).Equal(400)
}

func TestSplitOffsets(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 2400; i++ {
		sb.WriteByte(byte('a' + i%26))
	}
	text := sb.String()

	chunks, err := chunker.Split(text, 1000, 200)
	gt.NoError(t, err).Required()
	gt.Value(t, chunks[0]).Equal(text[0:1000])
	gt.Value(t, chunks[1]).Equal(text[800:1800])
	gt.Value(t, chunks[2]).Equal(text[1600:2400])

	// consecutive chunks share exactly overlap characters
	gt.Value(t, chunks[0][800:]).Equal(chunks[1][:200])
	gt.Value(t, chunks[1][800:]).Equal(chunks[2][:200])
}

func TestSplitCountAndReconstruction(t *testing.T) {
	cases := []struct {
		length  int
		size    int
		overlap int
	}{
		{length: 1, size: 1000, overlap: 200},
		{length: 150, size: 1000, overlap: 200},
		{length: 999, size: 1000, overlap: 200},
		{length: 1000, size: 1000, overlap: 200},
		{length: 1001, size: 1000, overlap: 200},
		{length: 5000, size: 1000, overlap: 200},
		{length: 37, size: 5, overlap: 0},
		{length: 37, size: 5, overlap: 4},
		{length: 10, size: 3, overlap: 1},
	}

	for _, tc := range cases {
		var sb strings.Builder
		for i := 0; i < tc.length; i++ {
			sb.WriteByte(byte('A' + i%50))
		}
		text := sb.String()

		chunks, err := chunker.Split(text, tc.size, tc.overlap)
		gt.NoError(t, err).Required()

		step := tc.size - tc.overlap
		want := (tc.length + step - 1) / step
		gt.Value(t, len(chunks)).Equal(want)

		for _, c := range chunks {
			gt.Bool(t, len(c) <= tc.size).True()
		}

		// every chunk but the trailing ones is full size
		gt.Value(t, len(chunks[0])).Equal(min(tc.size, tc.length))
		gt.Value(t, reconstruct(chunks, tc.overlap)).Equal(text)
	}
}

func TestSplitEmptyText(t *testing.T) {
	chunks, err := chunker.Split("", 1000, 200)
	gt.NoError(t, err).Required()
	gt.Array(t, chunks).Length(0)
}

func TestSplitRejectsInvalidConfiguration(t *testing.T) {
	_, err := chunker.Split("text", 100, 100)
	gt.Error(t, err).Is(chunker.ErrInvalidOverlap)

	_, err = chunker.Split("text", 100, 150)
	gt.Error(t, err).Is(chunker.ErrInvalidOverlap)

	_, err = chunker.Split("text", 100, -1)
	gt.Error(t, err).Is(chunker.ErrInvalidOverlap)

	_, err = chunker.Split("text", 0, 0)
	gt.Error(t, err).Is(chunker.ErrInvalidSize)

	_, err = chunker.New(10, 10)
	gt.Error(t, err).Is(chunker.ErrInvalidOverlap)
}

func TestSplitIsDeterministic(t *testing.T) {
	text := strings.Repeat("deterministic ", 300)
	c := chunker.Default()

	first := c.Split(text)
	second := c.Split(text)
	gt.Value(t, first).Equal(second)
}

func TestSplitKeepsMultibyteCharacters(t *testing.T) {
	text := strings.Repeat("日本語のテキスト", 50)

	chunks, err := chunker.Split(text, 30, 5)
	gt.NoError(t, err).Required()
	for _, c := range chunks {
		gt.Bool(t, utf8.ValidString(c)).True()
		gt.Bool(t, utf8.RuneCountInString(c) <= 30).True()
	}
	gt.Value(t, reconstruct(chunks, 5)).Equal(text)
}
