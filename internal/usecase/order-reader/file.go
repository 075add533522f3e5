package orderreader

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"strconv"

	feedv1 "github.com/lomash27/Auro/internal/domain/feed/v1"
	orderbookv1 "github.com/lomash27/Auro/internal/domain/orderbook/v1"
	"github.com/lomash27/Auro/pkg/logger"
)

// FileReader streams order events from an XML file of the form
//
//	<orders>
//	  <order action="ADD" side="BUY" book="X" price="10.0" volume="5" orderId="b1"/>
//	  ...
//	</orders>
//
// Attributes arrive as text; price and volume are strictly parsed so a
// non-numeric value is rejected as an invalid order, not carried along.
type FileReader struct {
	file    *os.File
	decoder *xml.Decoder
	logger  logger.Interface
	offset  int64
	skip    int64
}

type xmlOrder struct {
	Action  string `xml:"action,attr"`
	Side    string `xml:"side,attr"`
	Book    string `xml:"book,attr"`
	Price   string `xml:"price,attr"`
	Volume  string `xml:"volume,attr"`
	OrderID string `xml:"orderId,attr"`
}

// NewFileReader opens the XML order file at path. It implements feedv1.Reader.
func NewFileReader(path string, log logger.Interface) (*FileReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &FileReader{
		file:    file,
		decoder: xml.NewDecoder(file),
		logger:  log,
	}, nil
}

// SetOffset fast-forwards the reader so the next event read carries the
// given offset. Only forward seeks are possible on a stream.
func (r *FileReader) SetOffset(offset int64) error {
	if offset < r.offset {
		return fmt.Errorf("cannot seek file feed backwards: at %d, want %d", r.offset, offset)
	}
	r.skip = offset - r.offset
	return nil
}

// ReadEvent decodes the next <order> element. It returns io.EOF once the
// file is exhausted.
func (r *FileReader) ReadEvent(ctx context.Context) (*feedv1.Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tok, err := r.decoder.Token()
		if err != nil {
			return nil, err // io.EOF at end of file
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "order" {
			continue
		}

		var raw xmlOrder
		if err := r.decoder.DecodeElement(&raw, &start); err != nil {
			return nil, err
		}

		event, err := decodeEvent(raw)
		if err != nil {
			return nil, err
		}

		if r.skip > 0 {
			r.skip--
			r.offset++
			continue
		}
		event.Offset = r.offset
		r.offset++
		return event, nil
	}
}

// Close releases the underlying file.
func (r *FileReader) Close() error {
	return r.file.Close()
}

func decodeEvent(raw xmlOrder) (*feedv1.Event, error) {
	event := &feedv1.Event{
		Action:     feedv1.Action(raw.Action),
		Instrument: raw.Book,
		Side:       orderbookv1.Side(raw.Side),
		OrderID:    raw.OrderID,
	}

	var err error
	if event.Price, err = parseAttr("price", raw.Price); err != nil {
		return nil, err
	}
	if event.Quantity, err = parseAttr("volume", raw.Volume); err != nil {
		return nil, err
	}
	return event, nil
}

// parseAttr converts an attribute to a number; a missing attribute is zero.
// ParseFloat accepts "NaN" and "Inf", which are not prices.
func parseAttr(name, value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || !orderbookv1.IsFinite(f) {
		return 0, fmt.Errorf("%w: non-numeric %s %q", orderbookv1.ErrInvalidOrder, name, value)
	}
	return f, nil
}
