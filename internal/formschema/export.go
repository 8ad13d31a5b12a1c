package formschema

import (
	"bufio"
	"io"
	"strings"
)

// Record is one registrant as seen by the table and export.
type Record struct {
	Snapshot map[string]string
	Answers  map[string]string
}

// Columns returns personal field labels followed by question labels.
func Columns(s Schema) []string {
	cols := make([]string, 0, len(s.PersonalFields)+len(s.CustomQuestions))
	for _, f := range s.PersonalFields {
		cols = append(cols, FieldLabel(f))
	}
	for _, q := range s.CustomQuestions {
		cols = append(cols, q.Label)
	}
	return cols
}

// Cells renders one record in column order; missing values are empty strings.
func Cells(s Schema, r Record) []string {
	cells := make([]string, 0, len(s.PersonalFields)+len(s.CustomQuestions))
	for _, f := range s.PersonalFields {
		cells = append(cells, r.Snapshot[f])
	}
	for _, q := range s.CustomQuestions {
		cells = append(cells, r.Answers[q.ID])
	}
	return cells
}

// WriteCSV writes a header and one line per record. Every cell is quoted.
func WriteCSV(w io.Writer, s Schema, records []Record) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("\ufeff"); err != nil {
		return err
	}
	if err := writeLine(bw, Columns(s)); err != nil {
		return err
	}
	for _, r := range records {
		if err := writeLine(bw, Cells(s, r)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeLine(w *bufio.Writer, cells []string) error {
	for i, c := range cells {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(quote(c)); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
