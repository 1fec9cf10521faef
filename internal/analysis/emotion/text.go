package emotion

import (
	"strings"
	"unicode"
)

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

// Normalize 修复非法 UTF-8，统一语音识别产生的弯引号并去掉首尾空白。
// 保留大小写，强度估计需要用到。
func Normalize(text string) string {
	text = strings.ToValidUTF8(text, "")
	text = apostrophes.Replace(text)
	return strings.TrimSpace(text)
}

// CacheKey 生成缓存键：规范化、转小写并合并连续空白。
func CacheKey(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(Normalize(text))), " ")
}

func normalizeKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// words splits text into word tokens, keeping apostrophes inside words.
func words(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
