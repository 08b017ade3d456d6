package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/commhub/backend/internal/domain/communication"
)

// Extract returns the placeholder names found in the document body, trimmed
// and de-duplicated in first-seen order. The package is only read.
func Extract(data []byte) (communication.PlaceholderSet, error) {
	zr, err := openPackage(data)
	if err != nil {
		return communication.PlaceholderSet{}, communication.Failure(communication.ErrInvalidTemplatePackage, err)
	}
	part := findPart(zr, DocumentPart)
	if part == nil {
		return communication.PlaceholderSet{}, communication.Failure(communication.ErrInvalidTemplatePackage,
			fmt.Errorf("%s not found", DocumentPart))
	}
	body, err := readPart(part)
	if err != nil {
		return communication.PlaceholderSet{}, communication.Failure(communication.ErrInvalidTemplatePackage, err)
	}
	paragraphs, err := paragraphTexts(body)
	if err != nil {
		return communication.PlaceholderSet{}, communication.Failure(communication.ErrInvalidTemplatePackage, err)
	}
	var set communication.PlaceholderSet
	for _, text := range paragraphs {
		for _, m := range tokenPattern.FindAllStringSubmatch(text, -1) {
			set.Add(m[1])
		}
	}
	return set, nil
}

// paragraphTexts returns the <w:t> text of each paragraph of an XML part,
// grouped the same way the merger groups runs. Field codes and deleted text
// are not document text and are skipped.
func paragraphTexts(part []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(part))
	var paragraphs []string
	var current strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inText = t.Name.Local == "t"
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if current.Len() > 0 {
					paragraphs = append(paragraphs, current.String())
					current.Reset()
				}
			}
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	return paragraphs, nil
}
