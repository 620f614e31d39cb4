package template

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/pegada/calcpc/internal/locale"
	"github.com/pegada/calcpc/internal/logging"
	"github.com/pegada/calcpc/internal/sheet"
)

// Legacy export columns. The first column of every line is a row index and
// is ignored on read.
const (
	colName       = "name_element"
	colType       = "type_element"
	colExpression = "math_element"
	colDisplay    = "msg_element"
	colValue      = "value_element"
	colOptions    = "select_element"
	colText       = "str_element"
	colColumn     = "e_col"
	colRow        = "e_row"
	colOwner      = "user_id"
	colSection    = "section"
)

//nolint:gochecknoglobals // Column order of written exports.
var legacyColumns = []string{
	colName, colType, colExpression, colDisplay, colValue, colOptions,
	colText, colColumn, colRow, colOwner, colSection,
}

//nolint:gochecknoglobals // Stateless replacer.
var quoteStripper = strings.NewReplacer(`"`, "", "'", "")

// LegacyImport is the result of ReadLegacy.
type LegacyImport struct {
	Cells []*sheet.Cell

	// Skipped counts rows that belong to a user rather than the template.
	Skipped int

	// Warnings describe values that were read as 0 and unknown cell types.
	Warnings []string
}

// ReadLegacy reads a tab-separated Windows-1252 sheet export.
//
// Quotes and apostrophes are removed from every field. Numbers use a comma
// decimal; a period is a thousands separator only when a comma is present.
// Rows owned by a user other than the template are skipped.
func ReadLegacy(ctx context.Context, r io.Reader) (*LegacyImport, error) {
	sc := bufio.NewScanner(transform.NewReader(r, charmap.Windows1252.NewDecoder()))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidLegacyFile, err)
		}
		return nil, fmt.Errorf("%w: missing header", ErrInvalidLegacyFile)
	}
	index, err := headerIndex(sc.Text())
	if err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx).With().Str("component", "template").Logger()
	out := &LegacyImport{}
	line := 1
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(fields) {
				return ""
			}
			return strings.TrimSpace(quoteStripper.Replace(fields[i]))
		}

		if owner := get(colOwner); owner != "" && owner != "0" {
			out.Skipped++
			logger.Debug().Int("line", line).Str("user_id", owner).Msg("user row skipped")
			continue
		}

		c := &sheet.Cell{
			Name:             get(colName),
			Type:             sheet.ParseCellType(get(colType)),
			Expression:       get(colExpression),
			DisplayText:      get(colDisplay),
			SelectionOptions: get(colOptions),
			TextValue:        get(colText),
			Section:          get(colSection),
		}
		if c.Name == "" {
			out.Warnings = append(out.Warnings, fmt.Sprintf("line %d: missing %s, row skipped", line, colName))
			continue
		}
		if !c.Type.IsKnown() {
			out.Warnings = append(out.Warnings, fmt.Sprintf("line %d: %s has unknown type %q", line, c.Name, c.Type))
		}

		c.Value = legacyNumber(out, line, c.Name, colValue, get(colValue))
		c.Column = int(legacyNumber(out, line, c.Name, colColumn, get(colColumn)))
		c.Row = int(legacyNumber(out, line, c.Name, colRow, get(colRow)))

		out.Cells = append(out.Cells, normalize(c))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidLegacyFile, line, err)
	}

	logger.Info().
		Int("rows", len(out.Cells)).
		Int("skipped", out.Skipped).
		Int("warnings", len(out.Warnings)).
		Msg("legacy template read")
	return out, nil
}

func headerIndex(header string) (map[string]int, error) {
	index := make(map[string]int)
	for i, h := range strings.Split(strings.TrimRight(header, "\r"), "\t") {
		if i == 0 {
			continue
		}
		index[strings.TrimSpace(quoteStripper.Replace(h))] = i
	}
	for _, required := range []string{colName, colType} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: header has no %s column", ErrInvalidLegacyFile, required)
		}
	}
	return index, nil
}

func legacyNumber(out *LegacyImport, line int, name, col, raw string) float64 {
	v, err := locale.ParseFloat(raw)
	if err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("line %d: %s %s %q read as 0", line, name, col, raw))
		return 0
	}
	return v
}

// WriteLegacy writes cells in the legacy export format. Characters outside
// Windows-1252 are replaced.
func WriteLegacy(w io.Writer, cells []*sheet.Cell) error {
	enc := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	tw := transform.NewWriter(w, enc)
	bw := bufio.NewWriter(tw)

	_, _ = bw.WriteString("ID_element\t" + strings.Join(legacyColumns, "\t") + "\n")
	for i, c := range cells {
		fields := []string{
			strconv.Itoa(i + 1),
			c.Name,
			string(c.Type),
			c.Expression,
			c.DisplayText,
			legacyFloat(c.Value),
			c.SelectionOptions,
			c.TextValue,
			strconv.Itoa(c.Column),
			strconv.Itoa(c.Row),
			strconv.FormatInt(c.OwnerID, 10),
			c.Section,
		}
		for j, f := range fields {
			fields[j] = legacyField(f)
		}
		_, _ = bw.WriteString(strings.Join(fields, "\t") + "\n")
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return tw.Close()
}

// legacyFloat writes v with a comma decimal and no grouping.
func legacyFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1)
}

// legacyField drops characters that would break the line or column layout.
func legacyField(s string) string {
	s = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(s)
	return quoteStripper.Replace(s)
}
