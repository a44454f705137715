package rednote

import (
	"github.com/pkg/errors"

	"github.com/xpzouying/rednote-collector/pkg/xhsutil"
)

// QueryKind 采集模式
type QueryKind string

const (
	QuerySearchNotes  QueryKind = "按关键词采集笔记"
	QueryUserNotes    QueryKind = "按用户信息采集笔记"
	QueryNoteComments QueryKind = "按笔记采集评论"
	QueryUserInfo     QueryKind = "按用户采集信息"
	QueryNoteDetail   QueryKind = "按笔记采集详情"
)

// NoteKind 笔记类型筛选
type NoteKind string

const (
	NoteAll   NoteKind = "全部"
	NoteVideo NoteKind = "视频"
	NoteImage NoteKind = "图文"
)

// 排序选项到接口参数的映射。
// “最多评论/最多收藏”在老版本仅为客户端参考，v2 已有服务端排序。
var searchSortParams = map[string]string{
	"综合":   "general",
	"最热":   "popularity_descending",
	"最新":   "time_descending",
	"最多评论": "comment_descending",
	"最多收藏": "collect_descending",
}

var noteTypeParams = map[NoteKind]string{
	NoteAll:   "_0",
	NoteVideo: "_1",
	NoteImage: "_2",
}

var commentSortParams = map[string]string{
	"默认": "normal",
	"最新": "latest",
}

// TimeRangeDays 时间范围选项对应的天数（客户端标注是否在范围内）
var TimeRangeDays = map[string]int{
	"一天内": 1,
	"一周内": 7,
	"半年内": 180,
}

// Query 一次采集的不可变请求描述。创建后不再修改。
type Query struct {
	Kind QueryKind

	// 按模式取其一
	Keyword string
	UserID  string
	NoteID  string // 支持笔记链接或裸 ID

	// 可选参数
	Sort        string   // 综合/最热/最新/最多评论/最多收藏
	NoteType    NoteKind // 全部/视频/图文
	TimeRange   string   // 一天内/一周内/半年内；空为不限
	CommentSort string   // 默认/最新

	// 分页与附加采集
	MaxPages            int // 0 表示不设上限（内部封顶保护）
	IncludeAuthorDetail bool
	IncludeSubComments  bool
	IncludeNoteDetail   bool
}

// Validate 校验必填参数；返回的错误属于输入错误，不会发起网络请求
func (q *Query) Validate() error {
	switch q.Kind {
	case QuerySearchNotes:
		if q.Keyword == "" {
			return errors.New("缺少搜索关键词")
		}
	case QueryUserNotes, QueryUserInfo:
		if q.UserID == "" {
			return errors.New("缺少用户 UID")
		}
		if !xhsutil.IsValidUserID(q.UserID) {
			return errors.Errorf("用户 UID 格式不合法: %s（应为 24 位小写十六进制）", q.UserID)
		}
	case QueryNoteComments, QueryNoteDetail:
		if xhsutil.ParseNoteID(q.NoteID) == "" {
			return errors.Errorf("无法从输入解析笔记 ID: %s", q.NoteID)
		}
	default:
		return errors.Errorf("未知采集模式: %s", q.Kind)
	}
	return nil
}

// apiSort 搜索排序的接口参数，未知选项回退到综合
func (q *Query) apiSort() string {
	if v, ok := searchSortParams[q.Sort]; ok {
		return v
	}
	return "general"
}

// apiNoteType 笔记类型的接口参数，未知选项回退到全部
func (q *Query) apiNoteType() string {
	if v, ok := noteTypeParams[q.NoteType]; ok {
		return v
	}
	return noteTypeParams[NoteAll]
}

// apiCommentSort 评论排序的接口参数
func (q *Query) apiCommentSort() string {
	if v, ok := commentSortParams[q.CommentSort]; ok {
		return v
	}
	return "normal"
}

// noteKind 规整后的笔记类型筛选
func (q *Query) noteKind() NoteKind {
	switch q.NoteType {
	case NoteVideo, NoteImage:
		return q.NoteType
	}
	return NoteAll
}
