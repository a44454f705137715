package xhsutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNoteID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "标准笔记链接", input: "https://www.xiaohongshu.com/explore/68abc123def", want: "68abc123def"},
		{name: "带参数的链接", input: "https://www.xiaohongshu.com/explore/68abc123def?xsec_token=AB", want: "68abc123def"},
		{name: "裸ID", input: "68abc123def", want: "68abc123def"},
		{name: "前后空白", input: "  68abc123def  ", want: "68abc123def"},
		{name: "空输入", input: "", want: ""},
		{name: "无法识别的链接", input: "https://www.xiaohongshu.com/user/profile/abc", want: ""},
		{name: "含非法字符", input: "abc-def", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNoteID(tt.input))
		})
	}
}

func TestIsValidUserID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "合法UID", input: "636519f2000000001f019e57", want: true},
		{name: "长度不足", input: "636519f2", want: false},
		{name: "含大写字母", input: "636519F2000000001F019E57", want: false},
		{name: "含非十六进制字符", input: "636519g2000000001f019e57", want: false},
		{name: "空字符串", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidUserID(tt.input))
		})
	}
}

func TestNoteURL(t *testing.T) {
	assert.Equal(t, "https://www.xiaohongshu.com/explore/abc123", NoteURL("abc123"))
	assert.Equal(t, "", NoteURL(""))
}

func TestProfileURL(t *testing.T) {
	assert.Equal(t, "https://www.xiaohongshu.com/user/profile/636519f2000000001f019e57",
		ProfileURL("636519f2000000001f019e57"))
	assert.Equal(t, "", ProfileURL(""))
}
