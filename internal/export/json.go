// Package export renders extraction results for downstream consumers: a
// JSON document the declaration software imports, and an XLSX workbook for
// manual review. Both keep container order and the original-language field
// labels intact.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Wooodyy/mappingdata/internal/entity"
)

// WriteJSON renders the result with stable key order and indentation. The
// output unmarshals back into an identical result.
func WriteJSON(w io.Writer, res *entity.ExtractionResult) error {
	if res == nil {
		return fmt.Errorf("export: nil result")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("export: encode result: %w", err)
	}
	return nil
}

// MarshalJSON is WriteJSON into a byte slice.
func MarshalJSON(res *entity.ExtractionResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadJSON parses a previously exported result, restoring container order.
func ReadJSON(r io.Reader) (*entity.ExtractionResult, error) {
	var res entity.ExtractionResult
	dec := json.NewDecoder(r)
	if err := dec.Decode(&res); err != nil {
		return nil, fmt.Errorf("export: decode result: %w", err)
	}
	if res.Containers == nil {
		res.Containers = entity.NewContainerMap()
	}
	return &res, nil
}
