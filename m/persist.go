package m

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// FileSuffix is appended to every saved network.
const FileSuffix = ".brain"

var (
	errMissingHeader      = errors.New("missing format header")
	errUnsupportedVersion = errors.New("unsupported format version")
	errUnknownCodec       = errors.New("unknown storage codec")
	errBadHeader          = errors.New("malformed format header")
	errTruncated          = errors.New("truncated row")
	errTooManyValues      = errors.New("too many values in row")
	errTrailingData       = errors.New("unexpected data after last row")
	errBadWidth           = errors.New("layer width must be at least 1")
	errTooLarge           = errors.New("layer widths exceed addressable size")
)

type saveOptions struct {
	format Format
}

type SaveOption func(*saveOptions)

// WithFormat selects plain (default) or legacy storage.
func WithFormat(f Format) SaveOption {
	return func(o *saveOptions) { o.format = f }
}

type loadOptions struct {
	activator Activator
	name      string
}

type LoadOption func(*loadOptions)

// WithActivator sets the nonlinearity of a loaded network; files do not record it.
func WithActivator(a Activator) LoadOption {
	return func(o *loadOptions) { o.activator = a }
}

// Save writes the network as text: a header naming the codec, the layer widths,
// then one line per output neuron of every synapse layer holding its input
// weights followed by its bias.
func (net *Network) Save(w io.Writer, opts ...SaveOption) error {
	so := saveOptions{format: FormatPlain}
	for _, opt := range opts {
		opt(&so)
	}
	codec, err := codecFor(so.format, net.layerCounts)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	writeLine := func(s string) {
		bw.WriteString(s)
		bw.WriteByte('\n')
	}
	writeLine(codec.header())

	counts := make([]string, len(net.layerCounts))
	for i, c := range net.layerCounts {
		counts[i] = strconv.Itoa(c)
	}
	writeLine(codec.encode(strings.Join(counts, " ")))

	for _, s := range net.synapses {
		rows, cols := s.Dims()
		tokens := make([]string, cols+1)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				tokens[c] = strconv.FormatFloat(s.Weights.At(r, c), 'g', -1, 64)
			}
			tokens[cols] = strconv.FormatFloat(s.Biases.AtVec(r), 'g', -1, 64)
			writeLine(codec.encode(strings.Join(tokens, " ")))
		}
	}
	return bw.Flush()
}

// SaveFile writes the network to dir/name.brain and returns the path. An empty
// name falls back to the network's own name.
func (net *Network) SaveFile(dir, name string, opts ...SaveOption) (string, error) {
	if name == "" {
		name = net.name
	}
	if name == "" {
		return "", fmt.Errorf("save network: no file name")
	}
	if !strings.HasSuffix(name, FileSuffix) {
		name += FileSuffix
	}
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("save network: %w", err)
	}
	if err := net.Save(f, opts...); err != nil {
		f.Close()
		return "", fmt.Errorf("save network to %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("save network to %s: %w", path, err)
	}
	return path, nil
}

// LoadFile reads a network saved by SaveFile. The network is named after the file.
func LoadFile(path string, opts ...LoadOption) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingFileError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("load network: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), FileSuffix)
	opts = append([]LoadOption{func(o *loadOptions) { o.name = name }}, opts...)
	net, err := Load(f, opts...)
	if err != nil {
		var cfe *CorruptFileError
		if errors.As(err, &cfe) {
			cfe.Path = path
		}
		return nil, err
	}
	return net, nil
}

// lineReader hands out lines with their 1-based numbers.
type lineReader struct {
	r    *bufio.Reader
	line int
}

func (lr *lineReader) next() (string, error) {
	s, err := lr.r.ReadString('\n')
	if err == io.EOF && s != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	lr.line++
	return strings.TrimRight(s, "\r\n"), nil
}

// Load parses a network from r. Any deviation from the format is reported as a
// *CorruptFileError naming the line, matrix, row and column at fault.
func Load(r io.Reader, opts ...LoadOption) (*Network, error) {
	lo := loadOptions{}
	for _, opt := range opts {
		opt(&lo)
	}
	lr := &lineReader{r: bufio.NewReader(r)}
	corrupt := func(matrix, row, col int, token string, err error) error {
		return &CorruptFileError{Line: lr.line, Matrix: matrix, Row: row, Column: col, Token: token, Err: err}
	}

	header, err := lr.next()
	if err != nil {
		return nil, corrupt(-1, 0, 0, "", readErr(err, errMissingHeader))
	}
	codec, err := parseHeader(header)
	if err != nil {
		return nil, corrupt(-1, 0, 0, "", err)
	}

	countLine, err := lr.next()
	if err != nil {
		return nil, corrupt(-1, 0, 0, "", readErr(err, errTruncated))
	}
	fields := strings.Fields(codec.decode(countLine))
	if len(fields) < 2 {
		return nil, corrupt(-1, 0, len(fields), "", fmt.Errorf("expected at least 2 layer widths, got %d", len(fields)))
	}
	counts := make([]int, len(fields))
	for i, tok := range fields {
		c, err := strconv.Atoi(tok)
		if err != nil {
			return nil, corrupt(-1, 0, i, tok, err)
		}
		if c < 1 {
			return nil, corrupt(-1, 0, i, tok, errBadWidth)
		}
		counts[i] = c
	}
	for l := 1; l < len(counts); l++ {
		if !fitsInt(counts[l], counts[l-1]+1) {
			return nil, corrupt(-1, 0, l, fields[l], errTooLarge)
		}
	}

	// Storage grows with the rows actually read so a declared size never
	// allocates more than the file holds.
	weights := make([]*mat.Dense, len(counts)-1)
	biases := make([]*mat.VecDense, len(counts)-1)
	for l := range weights {
		rows, cols := counts[l+1], counts[l]
		var wData, bData []float64
		for row := 0; row < rows; row++ {
			line, err := lr.next()
			if err != nil {
				lr.line++
				return nil, corrupt(l, row, 0, "", readErr(err, errTruncated))
			}
			tokens := strings.Fields(codec.decode(line))
			if len(tokens) > cols+1 {
				return nil, corrupt(l, row, cols+1, tokens[cols+1], errTooManyValues)
			}
			for col, tok := range tokens {
				v, err := strconv.ParseFloat(tok, 64)
				if err != nil {
					return nil, corrupt(l, row, col, tok, err)
				}
				if col < cols {
					wData = append(wData, v)
				} else {
					bData = append(bData, v)
				}
			}
			if len(tokens) < cols+1 {
				return nil, corrupt(l, row, len(tokens), "",
					fmt.Errorf("%w: expected %d values, got %d", errTruncated, cols+1, len(tokens)))
			}
		}
		weights[l] = mat.NewDense(rows, cols, wData)
		biases[l] = mat.NewVecDense(rows, bData)
	}

	for {
		extra, err := lr.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, corrupt(-1, 0, 0, "", err)
		}
		if strings.TrimSpace(extra) != "" {
			return nil, corrupt(-1, 0, 0, "", errTrailingData)
		}
	}

	net, err := NewFromSynapses(counts, weights, biases, lo.activator)
	if err != nil {
		return nil, err
	}
	net.name = lo.name
	return net, nil
}

// fitsInt reports whether a*b is representable as an int.
func fitsInt(a, b int) bool {
	return b > 0 && a <= math.MaxInt/b
}

func readErr(err, eof error) error {
	if err == io.EOF {
		return fmt.Errorf("%w: %v", eof, io.ErrUnexpectedEOF)
	}
	return err
}
