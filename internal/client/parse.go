package client

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/sherwynjoel/hybridllm/internal/domain"
)

// parseVulnerabilities reads the "vulnerabilities" array of an analyze
// response. A missing or non-array field means no findings. Elements that
// are not objects are skipped. An object missing type, severity or line is
// an error; message and cwe default to empty. Scalar fields of the wrong
// JSON type are converted rather than rejected.
func parseVulnerabilities(body []byte) ([]domain.Vulnerability, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("malformed response body: %w", err)
	}

	raw, ok := envelope["vulnerabilities"]
	if !ok {
		return []domain.Vulnerability{}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []domain.Vulnerability{}, nil
	}

	vulns := make([]domain.Vulnerability, 0, len(items))
	for i, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			continue
		}
		v, err := decodeVulnerability(fields)
		if err != nil {
			return nil, fmt.Errorf("vulnerability %d: %w", i, err)
		}
		vulns = append(vulns, v)
	}
	return vulns, nil
}

func decodeVulnerability(fields map[string]json.RawMessage) (domain.Vulnerability, error) {
	var v domain.Vulnerability
	var err error

	if v.Type, err = requiredString(fields, "type"); err != nil {
		return v, err
	}
	if v.Severity, err = requiredString(fields, "severity"); err != nil {
		return v, err
	}
	if v.Line, err = requiredLine(fields); err != nil {
		return v, err
	}
	if v.Message, err = optionalString(fields, "message"); err != nil {
		return v, err
	}
	if v.CWE, err = optionalString(fields, "cwe"); err != nil {
		return v, err
	}
	return v, nil
}

func present(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

func requiredString(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := present(fields, name)
	if !ok {
		return "", fmt.Errorf("missing required field %q", name)
	}
	return scalarText(raw, name)
}

func optionalString(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := present(fields, name)
	if !ok {
		return "", nil
	}
	return scalarText(raw, name)
}

// scalarText returns a string value as is and a number or boolean as its
// JSON literal text. Objects and arrays are rejected.
func scalarText(raw json.RawMessage, name string) (string, error) {
	raw = bytes.TrimSpace(raw)
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("field %q: %w", name, err)
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("field %q: expected a scalar value", name)
	}
	return string(raw), nil
}

// requiredLine accepts a number or a numeric string. Fractions are
// truncated toward zero; values outside the int range are rejected.
func requiredLine(fields map[string]json.RawMessage) (int, error) {
	raw, ok := present(fields, "line")
	if !ok {
		return 0, fmt.Errorf("missing required field %q", "line")
	}
	raw = bytes.TrimSpace(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("field %q: %w", "line", err)
		}
		raw = json.RawMessage(strings.TrimSpace(s))
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("field %q: expected a number", "line")
	}
	if i, err := n.Int64(); err == nil {
		if i < math.MinInt || i > math.MaxInt {
			return 0, fmt.Errorf("field %q: %d out of range", "line", i)
		}
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("field %q: expected a number", "line")
	}
	f = math.Trunc(f)
	if f < math.MinInt || f >= math.MaxInt {
		return 0, fmt.Errorf("field %q: %s out of range", "line", n)
	}
	return int(f), nil
}

func cacheKey(code string, lang domain.Language, privacyFirst bool) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%t\x00", lang, privacyFirst)
	h.Write([]byte(code))
	return hex.EncodeToString(h.Sum(nil))
}
