package m

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Line is one dataset row: inputNum inputs followed by outputNum targets.
type Line struct {
	Inputs  []float64
	Targets []float64
}
type Lines []Line

// Examples converts rows into training examples sharing the same slices.
func (lines Lines) Examples() []Example {
	out := make([]Example, len(lines))
	for i, l := range lines {
		out[i] = Example{Input: l.Inputs, Target: l.Targets}
	}
	return out
}

// GetLinesFile opens filename and reads it with GetLines.
func GetLinesFile(filename string, inputNum, outputNum int) (Lines, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return GetLines(f, inputNum, outputNum)
}

// GetLines reads comma separated rows. Blank lines and lines starting with '#'
// are skipped.
func GetLines(reader io.Reader, inputNum, outputNum int) (Lines, error) {
	r := csv.NewReader(reader)
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var lines Lines
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return lines, fmt.Errorf("reading dataset: %w", err)
		}
		lineNum, _ := r.FieldPos(0)
		if len(record) != inputNum+outputNum {
			return lines, errInvalidLine{
				lineNum:  lineNum,
				splits:   len(record),
				expected: inputNum + outputNum,
			}
		}

		values := make([]float64, len(record))
		for i, split := range record {
			num, err := strconv.ParseFloat(strings.TrimSpace(split), 64)
			if err != nil {
				what := "input"
				if i >= inputNum {
					what = "target"
				}
				return lines, fmt.Errorf("line %d: parsing %s: %w", lineNum, what, err)
			}
			values[i] = num
		}
		lines = append(lines, Line{
			Inputs:  values[:inputNum:inputNum],
			Targets: values[inputNum:],
		})
	}
	return lines, nil
}

type errInvalidLine struct {
	lineNum  int
	splits   int
	expected int
}

func (e errInvalidLine) Error() string {
	return fmt.Sprintf("at line %d, expected %d values, got %d",
		e.lineNum, e.expected, e.splits)
}

// IsInvalidLine reports whether err came from a row with the wrong number of values.
func IsInvalidLine(err error) bool {
	var e errInvalidLine
	return errors.As(err, &e)
}

/*------------------------------------------------------------------------------------------------------------------------*/
// NormalizeLines applies a per-column z-score to the inputs. Columns with zero
// deviation are only centred.
func NormalizeLines(lines Lines, std []float64, mean []float64) Lines {
	normalizedLines := make(Lines, len(lines))
	for i, line := range lines {
		normalizedInputs := make([]float64, len(line.Inputs))
		for j, x := range line.Inputs {
			normalizedInputs[j] = x - mean[j]
			if std[j] != 0 {
				normalizedInputs[j] /= std[j]
			}
		}
		normalizedLines[i] = Line{
			Inputs:  normalizedInputs,
			Targets: line.Targets,
		}
	}
	return normalizedLines
}

func CalculateMean(lines Lines) []float64 {
	if len(lines) == 0 {
		return nil
	}
	mean := make([]float64, len(lines[0].Inputs))
	for _, line := range lines {
		floats.Add(mean, line.Inputs)
	}
	floats.Scale(1/float64(len(lines)), mean)
	return mean
}

// CalculateStdDev is the population standard deviation per input column.
func CalculateStdDev(lines Lines) []float64 {
	if len(lines) == 0 {
		return nil
	}
	mean := CalculateMean(lines)
	stdDev := make([]float64, len(mean))
	diff := make([]float64, len(mean))
	for _, line := range lines {
		floats.SubTo(diff, line.Inputs, mean)
		floats.Mul(diff, diff)
		floats.Add(stdDev, diff)
	}
	for i := range stdDev {
		stdDev[i] = math.Sqrt(stdDev[i] / float64(len(lines)))
	}
	return stdDev
}
