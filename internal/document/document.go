// Package document reads drawing and BOQ source files into a uniform shape
// the extraction orchestrator can prompt with: plain text for textual
// formats, base64 image pages for binary drawings. Handler selection is by
// file extension; unknown extensions are read as text.
package document

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Document is the parsed form of one source file. Exactly one of Text or
// Images is populated.
type Document struct {
	Name   string
	Text   string
	Images []Image
}

// Image is one inline page of a binary document.
type Image struct {
	MediaType string
	Data      string // base64
}

// Multimodal reports whether the document must be sent as image blocks.
func (d Document) Multimodal() bool {
	return len(d.Images) > 0
}

// Read parses the file at path into a Document.
func Read(path string) (Document, error) {
	name := filepath.Base(path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		text, err := readXLSX(path)
		if err != nil {
			return Document{}, err
		}
		return Document{Name: name, Text: text}, nil
	case ".csv":
		text, err := readCSV(path)
		if err != nil {
			return Document{}, err
		}
		return Document{Name: name, Text: text}, nil
	case ".pdf":
		text, err := readPDF(path)
		if err != nil {
			return Document{}, err
		}
		return Document{Name: name, Text: text}, nil
	case ".png", ".jpg", ".jpeg":
		img, err := readImage(path)
		if err != nil {
			return Document{}, err
		}
		return Document{Name: name, Images: []Image{img}}, nil
	default:
		text, err := readText(path)
		if err != nil {
			return Document{}, err
		}
		return Document{Name: name, Text: text}, nil
	}
}

func readImage(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, eris.Wrapf(err, "document: read image %s", path)
	}
	mediaType := "image/png"
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".jpg" || ext == ".jpeg" {
		mediaType = "image/jpeg"
	}
	return Image{
		MediaType: mediaType,
		Data:      base64.StdEncoding.EncodeToString(data),
	}, nil
}
