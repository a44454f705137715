package xhsutil

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`#([^#\n\r]+)`)

// ExtractTags 从正文中提取 #话题 标签，去重并保持出现顺序。
// 接口没有结构化标签字段时作为兜底使用。
func ExtractTags(text string) []string {
	if text == "" {
		return nil
	}

	var tags []string
	seen := make(map[string]struct{})
	for _, m := range tagPattern.FindAllStringSubmatch(text, -1) {
		tag := strings.TrimSpace(m[1])
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
