package document

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readText reads a plain-text file, tolerating UTF-8/UTF-16 BOMs. Exported
// schedules come out of various Windows tooling, so the charset is not
// guaranteed.
func readText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", eris.Wrapf(err, "document: open %s", path)
	}
	defer f.Close()

	decoder := unicode.UTF8.NewDecoder()
	reader := transform.NewReader(f, unicode.BOMOverride(decoder))
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", eris.Wrapf(err, "document: read %s", path)
	}
	return string(data), nil
}

// readCSV flattens CSV rows into tab-separated lines.
func readCSV(path string) (string, error) {
	raw, err := readText(path)
	if err != nil {
		return "", err
	}

	r := csv.NewReader(bytes.NewReader([]byte(raw)))
	r.FieldsPerRecord = -1

	var b strings.Builder
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", eris.Wrapf(err, "document: parse csv %s", path)
		}
		b.WriteString(strings.Join(record, "\t"))
		b.WriteString("\n")
	}
	return b.String(), nil
}
