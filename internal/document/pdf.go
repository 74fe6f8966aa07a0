package document

import (
	"bytes"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	rpdf "rsc.io/pdf"
)

// readPDF extracts the text layer of a PDF in-process. The parser panics on
// some malformed files, so the recover is part of the contract.
func readPDF(path string) (text string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = eris.Errorf("document: pdf parser panic: %v", recovered)
			text = ""
		}
	}()

	content, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "document: read pdf %s", path)
	}

	reader, err := rpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", eris.Wrapf(err, "document: open pdf %s", path)
	}

	var b strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		for _, fragment := range page.Content().Text {
			b.WriteString(fragment.S)
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
