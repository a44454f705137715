package main

import "github.com/xpzouying/rednote-collector/rednote"

// HTTP API 响应类型

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// SuccessResponse 成功响应
type SuccessResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// SearchNotesRequest 关键词搜索笔记请求
type SearchNotesRequest struct {
	Keyword string `json:"keyword" binding:"required"`
	// Sort 综合/最热/最新/最多评论/最多收藏，默认综合
	Sort string `json:"sort,omitempty"`
	// NoteType 全部/视频/图文，默认全部
	NoteType string `json:"note_type,omitempty"`
	// TimeRange 一天内/一周内/半年内，空为不限
	TimeRange           string `json:"time_range,omitempty"`
	MaxPages            int    `json:"max_pages,omitempty"`
	IncludeAuthorDetail bool   `json:"include_author_detail,omitempty"`
	IncludeNoteDetail   bool   `json:"include_note_detail,omitempty"`
}

// UserNotesRequest 用户笔记列表请求
type UserNotesRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	MaxPages int    `json:"max_pages,omitempty"`
}

// NoteCommentsRequest 笔记评论请求
type NoteCommentsRequest struct {
	// NoteID 支持笔记链接或裸 ID
	NoteID string `json:"note_id" binding:"required"`
	// Sort 默认/最新
	Sort               string `json:"sort,omitempty"`
	MaxPages           int    `json:"max_pages,omitempty"`
	IncludeSubComments bool   `json:"include_sub_comments,omitempty"`
}

// UserInfoRequest 用户信息请求
type UserInfoRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// NoteDetailRequest 笔记详情请求
type NoteDetailRequest struct {
	NoteID string `json:"note_id" binding:"required"`
}

// FilterRequest 字段过滤请求：对任意 JSON 树应用白名单裁剪
type FilterRequest struct {
	Data any `json:"data" binding:"required"`
}

// FilterResponse 字段过滤结果
type FilterResponse struct {
	Filtered any            `json:"过滤后"`
	Stats    map[string]int `json:"过滤后统计"`
}

// CollectResponse 采集结果的统一外层
type CollectResponse struct {
	Result *rednote.Result `json:"result"`
}
