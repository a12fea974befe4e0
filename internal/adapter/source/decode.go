package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"

	"github.com/couchcryptid/outage-timeline-service/internal/domain"
)

// ErrUnsupportedShape is returned for JSON documents that are neither a list
// of records nor an object with a "records" list.
var ErrUnsupportedShape = errors.New("snapshot must be a list of records or an object with a records list")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode reads an HJKS snapshot. Both a bare JSON list and a
// {"records": [...]} wrapper are accepted. Numeric fields are converted to
// their string form so capacities remain subject to the usual parsing.
func Decode(r io.Reader) ([]domain.RawRecord, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM)) //nolint:errcheck // peeked bytes are buffered
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	items, err := recordList(doc)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RawRecord, 0, len(items))
	var errs *multierror.Error
	for i, item := range items {
		rec, err := decodeRecord(item)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		out = append(out, rec)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

func recordList(doc any) ([]any, error) {
	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if list, ok := v["records"].([]any); ok {
			return list, nil
		}
	}
	return nil, ErrUnsupportedShape
}

func decodeRecord(item any) (domain.RawRecord, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return domain.RawRecord{}, fmt.Errorf("expected an object, got %T", item)
	}

	var rec domain.RawRecord
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		Result:           &rec,
	})
	if err != nil {
		return domain.RawRecord{}, err
	}
	if err := dec.Decode(obj); err != nil {
		return domain.RawRecord{}, err
	}
	return rec, nil
}
