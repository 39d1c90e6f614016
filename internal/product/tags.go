package product

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Tags is the canonical tag list: trimmed, lowercase, de-duplicated, first-seen order.
// Catalog feeds send tags either as a JSON array or as one delimited string.
type Tags []string

func (t *Tags) UnmarshalJSON(b []byte) error {
	*t = ParseTags(gjson.ParseBytes(b))
	return nil
}

// ParseTags accepts an array (of strings or scalars) or a delimited string. Anything else
// yields no tags.
func ParseTags(v gjson.Result) Tags {
	switch {
	case v.IsArray():
		raw := make([]string, 0)
		v.ForEach(func(_, elem gjson.Result) bool {
			if elem.Type == gjson.String || elem.Type == gjson.Number {
				raw = append(raw, elem.String())
			}
			return true
		})
		return NormalizeTags(raw...)
	case v.Type == gjson.String:
		return NormalizeTags(v.String())
	default:
		return nil
	}
}

// NormalizeTags splits every input on , ; | and returns the canonical list.
func NormalizeTags(raw ...string) Tags {
	seen := make(map[string]struct{})
	out := make(Tags, 0, len(raw))
	for _, r := range raw {
		for _, part := range strings.FieldsFunc(r, isTagSeparator) {
			tag := strings.ToLower(strings.TrimSpace(part))
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Has reports whether tag (already canonical) is present.
func (t Tags) Has(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

func isTagSeparator(r rune) bool {
	return r == ',' || r == ';' || r == '|'
}
