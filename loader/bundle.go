package loader

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kodality/GoFSH/pkg/structural"
)

// LoadBundle streams a FHIR Bundle from r and loads every entry resource in
// document order. The bundle is walked token by token so entries are indexed
// one at a time instead of holding the whole document in memory. It returns
// the number of entries loaded.
func (f *InMemoryFisher) LoadBundle(r io.Reader) (int, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return 0, fmt.Errorf("bundle: %w", err)
	}

	loaded := 0
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return loaded, fmt.Errorf("bundle: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return loaded, fmt.Errorf("bundle: unexpected token %v", tok)
		}
		if key != "entry" {
			if err := skipValue(dec); err != nil {
				return loaded, fmt.Errorf("bundle %s: %w", key, err)
			}
			continue
		}

		if err := expectDelim(dec, '['); err != nil {
			return loaded, fmt.Errorf("bundle entry: %w", err)
		}
		for dec.More() {
			var entry struct {
				Resource json.RawMessage `json:"resource"`
			}
			if err := dec.Decode(&entry); err != nil {
				return loaded, fmt.Errorf("bundle entry %d: %w", loaded, err)
			}
			if len(entry.Resource) == 0 {
				continue
			}
			resource, err := structural.Decode(entry.Resource)
			if err != nil {
				return loaded, fmt.Errorf("bundle entry %d: %w", loaded, err)
			}
			if err := f.LoadValue(resource); err != nil {
				return loaded, fmt.Errorf("bundle entry %d: %w", loaded, err)
			}
			loaded++
		}
		if err := expectDelim(dec, ']'); err != nil {
			return loaded, fmt.Errorf("bundle entry: %w", err)
		}
	}
	return loaded, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// skipValue consumes one complete JSON value.
func skipValue(dec *json.Decoder) error {
	var discard json.RawMessage
	return dec.Decode(&discard)
}
