// Package canonical produces the deterministic JSON encoding used for
// attestation. Two deeply-equal values encode to byte-identical output
// regardless of map iteration order, so digests and signatures computed
// over the encoding are stable across processes and platforms.
package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Marshal encodes a value as canonical JSON bytes.
//
// Rules:
//  1. Object keys sorted byte-wise (UTF-8 code point order)
//  2. Compact separators, no insignificant whitespace
//  3. No HTML escaping (< > & emitted literally)
//  4. U+2028 and U+2029 emitted literally, not escaped
//  5. Array element order preserved (order is meaningful)
//
// Supported value types: nil, bool, string, signed/unsigned integers,
// finite floats, []any, and map[string]any. Anything else, and any
// non-finite float, fails with an *EncodingError.
func Marshal(v any) ([]byte, error) {
	return marshal(v)
}

// EncodingError reports a value that has no canonical representation.
type EncodingError struct {
	Reason string
}

func (e *EncodingError) Error() string {
	return "canonical: " + e.Reason
}

func marshal(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case string:
		return marshalString(val)
	case int:
		return strconv.AppendInt(nil, int64(val), 10), nil
	case int8:
		return strconv.AppendInt(nil, int64(val), 10), nil
	case int16:
		return strconv.AppendInt(nil, int64(val), 10), nil
	case int32:
		return strconv.AppendInt(nil, int64(val), 10), nil
	case int64:
		return strconv.AppendInt(nil, val, 10), nil
	case uint:
		return strconv.AppendUint(nil, uint64(val), 10), nil
	case uint8:
		return strconv.AppendUint(nil, uint64(val), 10), nil
	case uint16:
		return strconv.AppendUint(nil, uint64(val), 10), nil
	case uint32:
		return strconv.AppendUint(nil, uint64(val), 10), nil
	case uint64:
		return strconv.AppendUint(nil, val, 10), nil
	case float32:
		return marshalFloat(float64(val))
	case float64:
		return marshalFloat(val)
	case []any:
		return marshalArray(val)
	case map[string]any:
		return marshalObject(val)
	default:
		return nil, &EncodingError{Reason: fmt.Sprintf("unsupported type %T", v)}
	}
}

// marshalFloat encodes a finite float the way encoding/json does
// (shortest representation that round-trips). Integral floats keep
// their natural form, e.g. 2.0 encodes as "2".
func marshalFloat(f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &EncodingError{Reason: fmt.Sprintf("non-finite number %v", f)}
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, &EncodingError{Reason: err.Error()}
	}
	return b, nil
}

// marshalString encodes a JSON string without HTML escaping.
// Go's encoder escapes U+2028/U+2029 for JavaScript embedding; canonical
// form keeps them literal, so they are unescaped afterwards.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, &EncodingError{Reason: err.Error()}
	}

	// json.Encoder appends a trailing newline.
	result := buf.Bytes()
	if n := len(result); n > 0 && result[n-1] == '\n' {
		result = result[:n-1]
	}

	return unescapeLineSeparators(result), nil
}

// unescapeLineSeparators rewrites   and   escape sequences to
// their literal characters. A sequence preceded by an odd number of
// backslashes is a literal backslash followed by the text "u2028" and
// must stay escaped.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if i+6 <= len(data) && data[i] == '\\' && data[i+1] == 'u' &&
			data[i+2] == '2' && data[i+3] == '0' && data[i+4] == '2' &&
			(data[i+5] == '8' || data[i+5] == '9') {
			slashes := 0
			for j := len(out) - 1; j >= 0 && out[j] == '\\'; j-- {
				slashes++
			}
			if slashes%2 == 0 {
				if data[i+5] == '8' {
					out = append(out, " "...)
				} else {
					out = append(out, " "...)
				}
				i += 6
				continue
			}
		}
		out = append(out, data[i])
		i++
	}
	return out
}

func marshalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := marshal(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalObject(obj map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	// Byte-wise comparison. For UTF-8 keys this equals code point order,
	// matching what existing verifiers expect.
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')

		vb, err := marshal(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
