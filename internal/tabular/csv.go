package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/gross-to-net/internal/common"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decoderFor maps an encoding name onto a text decoder. nil means UTF-8.
func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "iso-8859-15", "latin9":
		return charmap.ISO8859_15.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("%w: encoding %q", common.ErrUnsupportedFormat, name)
	}
}

func decodeCSV(r io.Reader, opts Options) (Table, error) {
	dec, err := decoderFor(opts.Encoding)
	if err != nil {
		return Table{}, err
	}
	if dec != nil {
		r = transform.NewReader(r, dec)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = sniffDelimiter(data)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	lines, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("failed to parse csv: %w", err)
	}

	rows := make([][]any, len(lines))
	for i, line := range lines {
		cells := make([]any, len(line))
		for j, v := range line {
			cells[j] = v
		}
		rows[i] = cells
	}
	return buildTable(rows), nil
}

// sniffDelimiter picks the most frequent of ';', ',' and tab on the first non-empty
// line, ignoring quoted sections. Commas win ties.
func sniffDelimiter(data []byte) rune {
	var line []byte
	for _, l := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(l)) > 0 {
			line = l
			break
		}
	}

	counts := map[rune]int{}
	quoted := false
	for _, c := range string(line) {
		switch {
		case c == '"':
			quoted = !quoted
		case !quoted && (c == ';' || c == ',' || c == '\t'):
			counts[c]++
		}
	}

	best := ','
	for _, c := range []rune{';', '\t'} {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}
