package recommend

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize 将自由文本规整为小写词元序列：
// 小写化、去重音符号、按非字母数字边界切分、丢弃空词元。
// 输入为空时返回 nil。
func Normalize(text string) []string {
	if text == "" {
		return nil
	}

	lowered := strings.ToLower(text)
	lowered = stripDiacritics(lowered)

	tokens := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// stripDiacritics 去除重音符号（NFD 分解后删除组合标记）
func stripDiacritics(s string) string {
	// transform.Chain 带内部缓冲，不可跨 goroutine 复用，按调用构造
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
