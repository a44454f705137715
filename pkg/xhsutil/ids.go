package xhsutil

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	noteLinkPattern = regexp.MustCompile(`explore/([a-zA-Z0-9]+)`)
	noteIDPattern   = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	userIDPattern   = regexp.MustCompile(`^[0-9a-f]{24}$`)
)

// ParseNoteID 从笔记链接或裸 ID 中解析笔记 ID。
// 支持 https://www.xiaohongshu.com/explore/<id> 或直接传 ID；
// 无法识别时返回空字符串。
func ParseNoteID(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	if m := noteLinkPattern.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	if noteIDPattern.MatchString(input) {
		return input
	}
	return ""
}

// IsValidUserID 校验用户 UID。
// 小红书 UID 为 24 位小写十六进制字符串，例如 636519f2000000001f019e57。
func IsValidUserID(userID string) bool {
	return userIDPattern.MatchString(userID)
}

// NoteURL 生成笔记的标准链接
func NoteURL(noteID string) string {
	if noteID == "" {
		return ""
	}
	return fmt.Sprintf("https://www.xiaohongshu.com/explore/%s", noteID)
}

// ProfileURL 生成用户主页链接
func ProfileURL(userID string) string {
	if userID == "" {
		return ""
	}
	return fmt.Sprintf("https://www.xiaohongshu.com/user/profile/%s", userID)
}
