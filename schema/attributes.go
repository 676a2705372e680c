package schema

import (
	"slices"
	"strings"
)

// FormatAttributes serializes an attribute bag as "k1=v1;k2=v2" with sorted keys.
func FormatAttributes(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var sb strings.Builder
	for idx, k := range keys {
		if idx > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(attrs[k])
	}
	return sb.String()
}

// ParseAttributes is the inverse of FormatAttributes. Malformed pairs are skipped.
func ParseAttributes(s string) map[string]string {
	if s == "" {
		return nil
	}
	attrs := make(map[string]string)
	for pair := range strings.SplitSeq(s, ";") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			continue
		}
		attrs[k] = v
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
