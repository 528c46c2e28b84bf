// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
)

const maxDumpLine = 16 * 1024 * 1024

// DumpRecord is one line of a callable dump.
type DumpRecord struct {
	Type   string `json:"type"`
	Member string `json:"member"`
	// Kind is "ctor" or "method". Empty means it is derived from the member name.
	Kind string `json:"kind,omitempty"`
	// Body is the base64-encoded body; null means the callable has none.
	Body *string `json:"body"`
}

func extractDump(path string, c *collector) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxDumpLine)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		var rec DumpRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("%s:%d: malformed callable record: %w", path, line, err)
		}
		if rec.Member == "" {
			return fmt.Errorf("%s:%d: callable record without member", path, line)
		}
		declaringType := rec.Type
		if declaringType == "" {
			declaringType = GlobalType
		}

		var body []byte
		if rec.Body != nil {
			body, err = base64.StdEncoding.DecodeString(*rec.Body)
			if err != nil {
				c.fail(declaringType, fmt.Errorf("member %s: invalid body encoding: %w", rec.Member, err))
				continue
			}
			if body == nil {
				body = []byte{}
			}
		}

		kind, err := parseKind(rec.Kind)
		if err != nil {
			c.fail(declaringType, fmt.Errorf("member %s: %w", rec.Member, err))
			continue
		}
		c.add(declaringType, rec.Member, kind, body)
	}
	return sc.Err()
}

func parseKind(s string) (CallableKind, error) {
	switch s {
	case "":
		return "", nil
	case string(KindMethod):
		return KindMethod, nil
	case string(KindConstructor), "constructor":
		return KindConstructor, nil
	default:
		return "", fmt.Errorf("unknown callable kind %q", s)
	}
}

// EncodeDump writes callables in the dump format, one record per line.
// Absent bodies are written as null.
func EncodeDump(callables []Callable) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, c := range callables {
		rec := DumpRecord{Type: c.DeclaringType, Member: c.Member, Kind: string(c.Kind)}
		if c.Body != nil {
			body := base64.StdEncoding.EncodeToString(c.Body)
			rec.Body = &body
		}
		if err := enc.Encode(rec); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
