package utils

import "strings"

// SanitizeString 去掉上游字符串中的 NUL 字节，postgres text 不接受
func SanitizeString(s string) string {
	if strings.IndexByte(s, 0) < 0 {
		return s
	}
	return strings.ReplaceAll(s, "\x00", "")
}

// NilIfEmpty 清洗后为空则返回 nil
func NilIfEmpty(s string) *string {
	s = strings.TrimSpace(SanitizeString(s))
	if s == "" {
		return nil
	}
	return &s
}

func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
