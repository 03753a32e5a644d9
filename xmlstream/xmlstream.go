// Package xmlstream iterates over selected elements of an XML stream
// without loading the whole document.
package xmlstream

import (
	"encoding/xml"
	"errors"
	"io"
	"reflect"
	"strings"
)

// Scanner decodes successive elements from a stream whose types were
// registered at construction time.
type Scanner struct {
	dec     *xml.Decoder
	protos  map[string]reflect.Type
	element interface{}
	err     error
}

// NewScanner sets up a scanner over r for the given exemplar element
// pointers, e.g. NewScanner(r, new(pubmed.PubmedArticle)). The element
// name is taken from the XMLName field tag, falling back to the type
// name.
func NewScanner(r io.Reader, tags ...interface{}) *Scanner {
	protos := make(map[string]reflect.Type)
	for _, tag := range tags {
		t := reflect.TypeOf(tag)
		for t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		protos[elementName(t)] = t
	}
	return &Scanner{dec: xml.NewDecoder(r), protos: protos}
}

func elementName(t reflect.Type) string {
	if f, ok := t.FieldByName("XMLName"); ok {
		if name, _, _ := strings.Cut(f.Tag.Get("xml"), ","); name != "" {
			return name
		}
	}
	return t.Name()
}

// Scan advances to the next registered element, returns false at the end
// of the stream or on error.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for {
		tok, err := s.dec.Token()
		if errors.Is(err, io.EOF) {
			return false
		}
		if err != nil {
			s.err = err
			return false
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		t, ok := s.protos[se.Name.Local]
		if !ok {
			continue
		}
		v := reflect.New(t).Interface()
		if err := s.dec.DecodeElement(v, &se); err != nil {
			s.err = err
			return false
		}
		s.element = v
		return true
	}
}

// Element returns the most recently decoded element.
func (s *Scanner) Element() interface{} {
	return s.element
}

// Err returns the first error encountered, if any.
func (s *Scanner) Err() error {
	return s.err
}
