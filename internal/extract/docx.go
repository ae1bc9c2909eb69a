package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// docxText reads the main document part of a DOCX archive and walks its
// XML, collecting run text and inserting breaks at paragraph ends.
func docxText(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	for _, f := range r.File {
		if !strings.EqualFold(f.Name, "word/document.xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return documentXMLText(rc), nil
	}
	return "", errors.New("word/document.xml not found in archive")
}

func documentXMLText(r io.Reader) string {
	dec := xml.NewDecoder(r)
	var buf strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				var text string
				if err := dec.DecodeElement(&text, &t); err == nil {
					buf.WriteString(text)
				}
			case "tab":
				buf.WriteByte('\t')
			case "br", "cr":
				buf.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				buf.WriteByte('\n')
			}
		}
	}
	return buf.String()
}
