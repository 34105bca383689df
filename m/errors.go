package m

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is.
var (
	ErrConstruction  = errors.New("invalid layer specification")
	ErrShape         = errors.New("vector length mismatch")
	ErrCorruptFile   = errors.New("corrupt network file")
	ErrMissingFile   = errors.New("network file not found")
	ErrConfiguration = errors.New("invalid training configuration")
)

// ConstructionError reports an invalid or absent layer specification.
type ConstructionError struct {
	Field  string // e.g. "inputNum", "hiddenLayerNeurons[2]", "layer"
	Value  int
	Reason string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("%s: %s = %d: %s", ErrConstruction, e.Field, e.Value, e.Reason)
}

func (e *ConstructionError) Is(target error) bool { return target == ErrConstruction }

// ShapeError reports a vector or gradient whose length does not match the topology.
type ShapeError struct {
	What string
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s: expected %d, got %d", ErrShape, e.What, e.Want, e.Got)
}

func (e *ShapeError) Is(target error) bool { return target == ErrShape }

// CorruptFileError locates a bad record in a persisted network.
// Matrix is the synapse layer index, or -1 for the header and layer count lines.
// Column equals the input width when the bias token is at fault.
type CorruptFileError struct {
	Path   string
	Line   int
	Matrix int
	Row    int
	Column int
	Token  string
	Err    error
}

func (e *CorruptFileError) Error() string {
	where := fmt.Sprintf("line %d", e.Line)
	if e.Path != "" {
		where = e.Path + ":" + where
	}
	if e.Matrix >= 0 {
		where += fmt.Sprintf(" (matrix %d, row %d, column %d)", e.Matrix, e.Row, e.Column)
	}
	if e.Token != "" {
		return fmt.Sprintf("%s: %s: token %q: %v", ErrCorruptFile, where, e.Token, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrCorruptFile, where, e.Err)
}

func (e *CorruptFileError) Is(target error) bool { return target == ErrCorruptFile }

func (e *CorruptFileError) Unwrap() error { return e.Err }

// MissingFileError is returned when a network file does not exist.
type MissingFileError struct {
	Path string
	Err  error
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrMissingFile, e.Path, e.Err)
}

func (e *MissingFileError) Is(target error) bool { return target == ErrMissingFile }

func (e *MissingFileError) Unwrap() error { return e.Err }

// ConfigurationError reports an out-of-range training knob.
type ConfigurationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s = %g: %s", ErrConfiguration, e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
