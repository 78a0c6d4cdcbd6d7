package history

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	elementLog     = "log"
	elementEntry   = "logentry"
	elementAuthor  = "author"
	elementDate    = "date"
	elementMessage = "msg"
	attrRevision   = "revision"
)

// Parse reads an XML log document and returns its entries in document order.
// Any syntax error, or a document without a log root, fails the whole call.
func Parse(r io.Reader) ([]Revision, error) {
	decoder := xml.NewDecoder(r)

	var (
		revisions = []Revision{}
		current   *Revision
		text      strings.Builder
		seenRoot  bool
	)

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			text.Reset()

			switch t.Name.Local {
			case elementLog:
				seenRoot = true
			case elementEntry:
				current = &Revision{Revision: attr(t, attrRevision)}
			}
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if current == nil {
				continue
			}

			switch t.Name.Local {
			case elementAuthor:
				current.Author = text.String()
			case elementDate:
				current.Date = text.String()
			case elementMessage:
				current.Message = text.String()
			case elementEntry:
				revisions = append(revisions, *current)
				current = nil
			}
		}
	}

	if !seenRoot {
		return nil, fmt.Errorf("%w: missing <%s> element", ErrMalformed, elementLog)
	}
	if current != nil {
		return nil, fmt.Errorf("%w: unterminated <%s>", ErrMalformed, elementEntry)
	}

	return revisions, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}

	return ""
}
