package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/samber/lo"
)

// ImageList is the additional-images column. It reads both Postgres array literals and
// JSON-encoded arrays, so rows written by older clients decode the same way.
type ImageList []string

// NormalizeImages turns any stored representation of an image list into a plain slice.
// Accepted inputs are nil, []string, []byte and string; a string may hold a Postgres
// array literal ("{a,b}"), a JSON array ("[\"a\"]") or a single bare URL.
// Blank entries are dropped and the result is never nil.
func NormalizeImages(raw any) ([]string, error) {
	const op = "NormalizeImages"

	switch v := raw.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return compact(v), nil
	case ImageList:
		return compact(v), nil
	case pq.StringArray:
		return compact(v), nil
	case []byte:
		return NormalizeImages(string(v))
	case string:
		s := strings.TrimSpace(v)
		switch {
		case s == "" || s == "null":
			return []string{}, nil
		case strings.HasPrefix(s, "["):
			var list []string
			if err := json.Unmarshal([]byte(s), &list); err != nil {
				return nil, fmt.Errorf("[%s] Fail to decode json image list, err=%w", op, err)
			}
			return compact(list), nil
		case strings.HasPrefix(s, "{"):
			var arr pq.StringArray
			if err := arr.Scan(s); err != nil {
				return nil, fmt.Errorf("[%s] Fail to decode array literal, err=%w", op, err)
			}
			return compact(arr), nil
		default:
			return []string{s}, nil
		}
	default:
		return nil, fmt.Errorf("[%s] Unsupported image list type %T", op, raw)
	}
}

func compact(list []string) []string {
	return lo.Compact(lo.Map(list, func(s string, _ int) string { return strings.TrimSpace(s) }))
}

func (l *ImageList) Scan(src any) error {
	list, err := NormalizeImages(src)
	if err != nil {
		return err
	}
	*l = list
	return nil
}

func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		return "{}", nil
	}
	return pq.StringArray(l).Value()
}

func (l ImageList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func (l *ImageList) UnmarshalJSON(data []byte) error {
	var raw any = data
	if trimmed := strings.TrimSpace(string(data)); strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
			return err
		}
		raw = s
	}
	list, err := NormalizeImages(raw)
	if err != nil {
		return err
	}
	*l = list
	return nil
}
