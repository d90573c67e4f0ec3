package compactor

import (
	"encoding/json"
	"fmt"
	"io"
)

// The source database is around 1.3GB, so it is never parsed as a whole
// document. These helpers walk the top-level object token by token and only
// ever hold one value in memory: the metadata block or a single drug record.

// ExtractMetadata scans the top-level object for the metadata value and
// returns it unparsed. Other top-level values are skipped token by token
// without buffering.
func ExtractMetadata(r io.Reader) (json.RawMessage, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("source is not a JSON object: %w", err)
	}

	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		if key == "metadata" {
			var metadata json.RawMessage
			if err := dec.Decode(&metadata); err != nil {
				return nil, fmt.Errorf("decoding metadata: %w", err)
			}
			return metadata, nil
		}
		if err := skipValue(dec); err != nil {
			return nil, fmt.Errorf("skipping %q: %w", key, err)
		}
	}

	return nil, fmt.Errorf("metadata object not found in source document")
}

// StreamDrugs scans the top-level object for the drugs array and calls fn
// once per element, decoding one record at a time. It returns the number of
// records seen. A document without a drugs key yields zero records and no
// error.
func StreamDrugs(r io.Reader, fn func(record map[string]any) error) (int, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return 0, fmt.Errorf("source is not a JSON object: %w", err)
	}

	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return 0, err
		}
		if key != "drugs" {
			if err := skipValue(dec); err != nil {
				return 0, fmt.Errorf("skipping %q: %w", key, err)
			}
			continue
		}

		if err := expectDelim(dec, '['); err != nil {
			return 0, fmt.Errorf("drugs is not an array: %w", err)
		}

		count := 0
		for dec.More() {
			var record map[string]any
			if err := dec.Decode(&record); err != nil {
				return count, fmt.Errorf("decoding drug record %d: %w", count, err)
			}
			if err := fn(record); err != nil {
				return count, err
			}
			count++
		}

		// Consume the closing bracket so a syntax error right after the
		// array still surfaces.
		if _, err := dec.Token(); err != nil {
			return count, fmt.Errorf("closing drugs array: %w", err)
		}
		return count, nil
	}

	return 0, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("reading object key: %w", err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

// skipValue consumes the next value without retaining it. Scalars are a
// single token; objects and arrays are consumed until their nesting closes.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil
	}

	depth := 1
	for depth > 0 {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
