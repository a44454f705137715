package xhsutil

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// RepairText 修复二次编码的文本。
// 部分接口返回的字符串会出现 \uXXXX 转义残留，或 UTF-8 字节被
// 当作 latin-1 解读后的乱码。修复链：先尝试转义解码，再尝试
// latin-1 → UTF-8 重解读；两步都失败时静默返回原文，绝不报错。
func RepairText(text string) string {
	if text == "" {
		return ""
	}

	decoded, ok := decodeEscapes(text)
	if !ok {
		if fixed, ok := reinterpretLatin1(text); ok {
			return fixed
		}
		return text
	}

	if hasNonASCII(decoded) {
		if fixed, ok := reinterpretLatin1(decoded); ok {
			return fixed
		}
	}
	return decoded
}

// decodeEscapes 解码 \uXXXX / \n 等转义序列
func decodeEscapes(s string) (string, bool) {
	if !strings.Contains(s, "\\") {
		return s, true
	}
	quoted := `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	decoded, err := strconv.Unquote(quoted)
	if err != nil {
		return "", false
	}
	return decoded, true
}

// reinterpretLatin1 将每个 rune 当作 latin-1 字节重组，
// 若重组结果是合法 UTF-8 且确有多字节字符则采用。
func reinterpretLatin1(s string) (string, bool) {
	buf := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return "", false
		}
		buf = append(buf, byte(r))
	}
	if !utf8.Valid(buf) {
		return "", false
	}
	fixed := string(buf)
	// 重组后必须出现真正的多字节字符，否则没有修复意义
	if len(fixed) == utf8.RuneCountInString(fixed) {
		return "", false
	}
	return fixed, true
}

func hasNonASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return true
		}
	}
	return false
}
