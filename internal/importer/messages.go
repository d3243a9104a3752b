package importer

import (
	"errors"
	"fmt"
	"io"
)

// ReadMessages returns the message column of a CSV export, in file order.
// Rows with an empty message are kept as empty strings so results line up
// with the input.
func ReadMessages(r io.Reader) ([]string, error) {
	t, err := newTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require(messageColumns); err != nil {
		return nil, err
	}

	var msgs []string
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			return msgs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", t.line, err)
		}
		msgs = append(msgs, t.get(rec, messageColumns...))
	}
}
