package chunker

import (
	"github.com/m-mizutani/goerr/v2"
)

const (
	// DefaultSize is the window length in characters
	DefaultSize = 1000
	// DefaultOverlap is the number of characters shared by consecutive windows
	DefaultOverlap = 200
)

var (
	ErrInvalidSize    = goerr.New("chunk size must be positive")
	ErrInvalidOverlap = goerr.New("chunk overlap must be non-negative and smaller than size")
)

// Chunker splits text into fixed-size overlapping windows. Characters are
// Unicode code points, so a window never cuts a multibyte character.
type Chunker struct {
	size    int
	overlap int
}

// New validates size and overlap
func New(size, overlap int) (*Chunker, error) {
	if err := validate(size, overlap); err != nil {
		return nil, err
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Default returns a chunker with DefaultSize and DefaultOverlap
func Default() *Chunker {
	return &Chunker{size: DefaultSize, overlap: DefaultOverlap}
}

func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }

// Split applies the configured window to text
func (c *Chunker) Split(text string) []string {
	return split([]rune(text), c.size, c.overlap)
}

// Split cuts text into windows of size characters, each starting size-overlap
// characters after the previous one. Empty text yields no chunks.
func Split(text string, size, overlap int) ([]string, error) {
	if err := validate(size, overlap); err != nil {
		return nil, err
	}
	return split([]rune(text), size, overlap), nil
}

func validate(size, overlap int) error {
	if size <= 0 {
		return goerr.Wrap(ErrInvalidSize, "invalid chunker configuration", goerr.V("size", size))
	}
	if overlap < 0 || overlap >= size {
		return goerr.Wrap(ErrInvalidOverlap, "invalid chunker configuration",
			goerr.V("size", size),
			goerr.V("overlap", overlap))
	}
	return nil
}

func split(runes []rune, size, overlap int) []string {
	step := size - overlap
	chunks := make([]string, 0, countChunks(len(runes), size, overlap))
	for offset := 0; offset < len(runes); offset += step {
		end := min(offset+size, len(runes))
		chunks = append(chunks, string(runes[offset:end]))
	}
	return chunks
}

// countChunks is the number of offsets 0, step, 2*step... below length
func countChunks(length, size, overlap int) int {
	if length == 0 {
		return 0
	}
	step := size - overlap
	return (length + step - 1) / step
}
