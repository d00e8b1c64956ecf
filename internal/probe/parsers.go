package probe

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// ParseSpotlight parses metadata-index output of the form
//
//	kMDItemContentType = "public.jpeg"
//	kMDItemKeywords    = (
//	    "beach",
//	    "2019"
//	)
//
// into a key/value map. Parenthesized lists are folded into a single value.
// Output the scanner cannot read to the end, such as a line over 1 MiB, is
// an error rather than a partial map.
func ParseSpotlight(out []byte) (map[string]string, error) {
	attrs := make(map[string]string)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var listKey string
	var list []string

	for scanner.Scan() {
		line := scanner.Text()

		if listKey != "" {
			trimmed := strings.TrimSpace(line)
			if trimmed == ")" {
				attrs[listKey] = "(" + strings.Join(list, ", ") + ")"
				listKey, list = "", nil
				continue
			}
			list = append(list, strings.TrimSuffix(trimmed, ","))
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}
		if value == "(" {
			listKey = key
			continue
		}
		attrs[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading metadata index output")
	}

	// An unterminated list still keeps what was read.
	if listKey != "" {
		attrs[listKey] = "(" + strings.Join(list, ", ") + ")"
	}

	return attrs, nil
}

// XattrKey is the map key holding the raw extended-attribute dump.
const XattrKey = "xattr_data"

// ParseXattr wraps the extended-attribute dump. Empty output yields an empty map.
func ParseXattr(out []byte) map[string]string {
	if len(bytes.TrimSpace(out)) == 0 {
		return map[string]string{}
	}
	return map[string]string{XattrKey: string(out)}
}

// ParseFFProbe decodes the container/stream probe's JSON document.
func ParseFFProbe(out []byte) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal(out, &data); err != nil {
		return nil, errors.Wrap(err, "decoding ffprobe output")
	}
	if data == nil {
		return nil, errors.New("ffprobe produced no data")
	}
	return data, nil
}

// IdentifyKey is the map key holding the image-inspection text.
const IdentifyKey = "identify_data"
