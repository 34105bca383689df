package train

import (
	"errors"
	"fmt"

	"brainlib/m"
)

// Example is one input/target pair.
type Example = m.Example

// Progress is the learner's position when an example is requested.
type Progress struct {
	BlocksDone       int
	ExamplesDone     int64
	MeanSquaredError float64
}

// Source supplies training examples. index counts from 0 within the block
// being assembled. Errors abort the current block and are returned to the caller
// unchanged; retrying is up to the source.
type Source interface {
	Next(p Progress, index int) (Example, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(p Progress, index int) (Example, error)

func (f SourceFunc) Next(p Progress, index int) (Example, error) { return f(p, index) }

// LinesSource cycles through a fixed dataset in order.
type LinesSource struct {
	examples []Example
	pos      int
}

var errEmptyDataset = errors.New("dataset has no rows")

// NewLinesSource wraps examples. The slice is not copied.
func NewLinesSource(examples []Example) (*LinesSource, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("lines source: %w", errEmptyDataset)
	}
	return &LinesSource{examples: examples}, nil
}

func (s *LinesSource) Next(Progress, int) (Example, error) {
	ex := s.examples[s.pos]
	s.pos = (s.pos + 1) % len(s.examples)
	return ex, nil
}

// Rewind restarts the cycle at the first row.
func (s *LinesSource) Rewind() { s.pos = 0 }

// Len is the number of distinct examples.
func (s *LinesSource) Len() int { return len(s.examples) }
