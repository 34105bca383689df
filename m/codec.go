package m

import (
	"fmt"
	"strings"
	"time"
)

// Format selects how the body of a network file is stored.
type Format int

const (
	FormatPlain Format = iota
	// FormatLegacy obscures the body with a rolling character offset. It keeps
	// casual readers out and nothing more.
	FormatLegacy
)

func (f Format) String() string {
	switch f {
	case FormatPlain:
		return "plain"
	case FormatLegacy:
		return "legacy"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat accepts "plain" or "legacy".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plain", "":
		return FormatPlain, nil
	case "legacy":
		return FormatLegacy, nil
	}
	return 0, fmt.Errorf("unknown file format %q", s)
}

const (
	formatVersion = "brain/1"

	printableLow   = 32
	printableRange = 95 // ' ' through '~'
)

// clock is swapped in tests to pin the legacy key.
var clock = time.Now

// lineCodec transforms body lines. The header line is always written verbatim
// and names the codec explicitly.
type lineCodec interface {
	header() string
	encode(line string) string
	decode(line string) string
}

type plainCodec struct{}

func (plainCodec) header() string            { return formatVersion + " plain" }
func (plainCodec) encode(line string) string { return line }
func (plainCodec) decode(line string) string { return line }

// legacyCodec shifts every printable character by an offset that starts at key
// on each line and doubles modulo the printable range after each character.
// The range size is odd, so the offset never reaches zero.
type legacyCodec struct {
	key int // 1..94
}

func newLegacyCodec(counts []int) legacyCodec {
	sum := int64(0)
	for _, c := range counts {
		sum += int64(c)
	}
	ms := clock().UnixMilli()
	k := (sum+ms)%(printableRange-1) + 1
	if k < 1 {
		k += printableRange - 1
	}
	return legacyCodec{key: int(k)}
}

func (c legacyCodec) header() string {
	return fmt.Sprintf("%s legacy %c", formatVersion, rune(printableLow+c.key))
}

func (c legacyCodec) shift(line string, sign int) string {
	var b strings.Builder
	b.Grow(len(line))
	off := c.key
	for i := 0; i < len(line); i++ {
		ch := int(line[i])
		if ch >= printableLow && ch < printableLow+printableRange {
			v := ((ch-printableLow+sign*off)%printableRange + printableRange) % printableRange
			ch = printableLow + v
		}
		b.WriteByte(byte(ch))
		off = off * 2 % printableRange
	}
	return b.String()
}

func (c legacyCodec) encode(line string) string { return c.shift(line, 1) }
func (c legacyCodec) decode(line string) string { return c.shift(line, -1) }

func codecFor(f Format, counts []int) (lineCodec, error) {
	switch f {
	case FormatPlain:
		return plainCodec{}, nil
	case FormatLegacy:
		return newLegacyCodec(counts), nil
	}
	return nil, fmt.Errorf("unsupported format %v", f)
}

// parseHeader resolves the codec named by the first line of a file.
func parseHeader(line string) (lineCodec, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errMissingHeader
	}
	if fields[0] != formatVersion {
		return nil, fmt.Errorf("%w: %q", errUnsupportedVersion, fields[0])
	}
	if len(fields) < 2 {
		return nil, errMissingHeader
	}
	switch fields[1] {
	case "plain":
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: plain takes no key", errBadHeader)
		}
		return plainCodec{}, nil
	case "legacy":
		if len(fields) != 3 || len(fields[2]) != 1 {
			return nil, fmt.Errorf("%w: legacy needs a single key character", errBadHeader)
		}
		k := int(fields[2][0]) - printableLow
		if k < 1 || k >= printableRange {
			return nil, fmt.Errorf("%w: key %q out of range", errBadHeader, fields[2])
		}
		return legacyCodec{key: k}, nil
	}
	return nil, fmt.Errorf("%w: %q", errUnknownCodec, fields[1])
}
