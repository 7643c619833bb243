package audit

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"auditfix/pkg/exception"

	"github.com/yanun0323/errors"
	"golang.org/x/text/encoding/ianaindex"
)

const (
	defaultReadBufferSize = 256 * 1024

	elementEntry = "Entry"
	elementField = "field"

	attrType  = "type"
	attrMsgID = "msgId"
	attrTag   = "tag"
	attrVal   = "val"
)

// Reader walks an audit trail document token by token and yields Entry
// elements one at a time. Only the entry being assembled is held in memory.
type Reader struct {
	dec       *xml.Decoder
	depth     int
	open      []entryFrame
	sawRoot   bool
	rootEnded bool
}

type entryFrame struct {
	depth int
	entry RawEntry
}

// NewReader wraps an io.Reader with audit trail decoding.
func NewReader(r io.Reader) *Reader {
	dec := xml.NewDecoder(bufio.NewReaderSize(r, defaultReadBufferSize))
	dec.CharsetReader = charsetReader
	return &Reader{dec: dec}
}

// Next returns the next Entry in document order, or io.EOF once the document
// is complete. Any other error means the byte stream is not well-formed XML and
// the document cannot be read further.
func (r *Reader) Next() (RawEntry, error) {
	for {
		tok, err := r.dec.Token()
		if err != nil {
			if err == io.EOF {
				if !r.sawRoot {
					return RawEntry{}, errors.Wrap(exception.ErrMalformedXML, "no element found")
				}
				return RawEntry{}, io.EOF
			}
			return RawEntry{}, errors.Wrap(exception.ErrMalformedXML, err.Error())
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if r.depth == 0 {
				if r.rootEnded {
					return RawEntry{}, r.syntaxError("junk after document element")
				}
				r.sawRoot = true
			}
			r.depth++
			r.start(t)
		case xml.EndElement:
			if n := len(r.open); n > 0 && r.open[n-1].depth == r.depth {
				entry := r.open[n-1].entry
				r.open[n-1] = entryFrame{}
				r.open = r.open[:n-1]
				r.end()
				return entry, nil
			}
			r.end()
		case xml.CharData:
			if r.depth == 0 && len(bytes.TrimSpace(t)) != 0 {
				return RawEntry{}, r.syntaxError("text outside document element")
			}
		}
	}
}

func (r *Reader) start(t xml.StartElement) {
	switch t.Name.Local {
	case elementEntry:
		r.open = append(r.open, entryFrame{
			depth: r.depth,
			entry: RawEntry{
				Type:  attrValue(t.Attr, attrType),
				MsgID: attrValue(t.Attr, attrMsgID),
			},
		})
	case elementField:
		n := len(r.open)
		if n == 0 || r.open[n-1].depth != r.depth-1 {
			return
		}
		r.open[n-1].entry.Fields = append(r.open[n-1].entry.Fields, FieldPair{
			Tag:   attrValue(t.Attr, attrTag),
			Value: attrValue(t.Attr, attrVal),
		})
	}
}

func (r *Reader) end() {
	r.depth--
	if r.depth == 0 {
		r.rootEnded = true
	}
}

func (r *Reader) syntaxError(msg string) error {
	line, _ := r.dec.InputPos()
	return errors.Wrap(exception.ErrMalformedXML, msg).With("line", line)
}

func attrValue(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// charsetReader lets documents declare a non UTF-8 encoding such as ISO-8859-1.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "utf-8", "utf8", "us-ascii", "ascii":
		return input, nil
	}
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, errors.Wrapf(err, "unsupported charset %q", label)
	}
	if enc == nil {
		return nil, errors.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}
