// Package fieldfilter 提供基于键名规则的递归字段过滤，
// 用于压缩接口原始响应体积而不丢失业务字段。
// 这是尽力而为的降噪，不是安全边界：拿不准的键一律保留。
package fieldfilter

import "strings"

// RuleSet 字段保留规则：
// 先查否定表（精确匹配则删除），再查保留表（精确匹配或包含
// 任一子串则保留），两者都不命中则删除。
// 被删除的键不再向下递归。
type RuleSet struct {
	KeepExact      map[string]struct{}
	KeepSubstrings []string
	DenyExact      map[string]struct{}
	// KeepUnderParent 父键→子键的例外表：列出的子键只在对应父键下保留，
	// 在其它位置按通用规则处理。例外优先于否定表。
	// 子键挂在列表里的对象（父键指向数组）同样适用。
	KeepUnderParent map[string][]string
	// RestoreTopLevel 顶层强制恢复的键（如模式/meta 标记），
	// 保证流水线级元数据不受通用规则影响。
	RestoreTopLevel []string
}

// ShouldKeep 判定单个键是否保留
func (rs *RuleSet) ShouldKeep(key string) bool {
	if _, denied := rs.DenyExact[key]; denied {
		return false
	}
	if _, ok := rs.KeepExact[key]; ok {
		return true
	}
	for _, sub := range rs.KeepSubstrings {
		if strings.Contains(key, sub) {
			return true
		}
	}
	return false
}

// keepUnder 判定 parent 下的子键 key 是否保留。
// 先查父键例外表，再走通用规则。
func (rs *RuleSet) keepUnder(parent, key string) bool {
	for _, ck := range rs.KeepUnderParent[parent] {
		if ck == key {
			return true
		}
	}
	return rs.ShouldKeep(key)
}

// Prune 按规则递归裁剪 JSON 树，返回新树，原树不被修改。
// 裁剪是幂等的：Prune(Prune(x)) == Prune(x)。
func Prune(tree any, rules *RuleSet) any {
	pruned := pruneValue(tree, "", rules)

	// 顶层强制恢复：无论通用规则结果如何，这些键都保留（裁剪后的值）
	src, srcOK := tree.(map[string]any)
	dst, dstOK := pruned.(map[string]any)
	if srcOK && dstOK {
		for _, key := range rules.RestoreTopLevel {
			if v, ok := src[key]; ok {
				if _, has := dst[key]; !has {
					dst[key] = pruneValue(v, key, rules)
				}
			}
		}
	}
	return pruned
}

// pruneValue 递归裁剪。parent 是当前子树挂载的键名，
// 数组不改变 parent（列表项继承列表的键）。
func pruneValue(v any, parent string, rules *RuleSet) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			if !rules.keepUnder(parent, k) {
				continue
			}
			out[k] = pruneValue(child, k, rules)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = pruneValue(item, parent, rules)
		}
		return out
	default:
		return v
	}
}

// Stats 统计树中各业务列表的条目数（过滤前后都可用）
func Stats(tree any) map[string]int {
	counts := map[string]int{
		"items条数":      0,
		"notes条数":      0,
		"comments条数":   0,
		"notes_flat条数": 0,
	}
	keyed := map[string]string{
		"items":      "items条数",
		"notes":      "notes条数",
		"comments":   "comments条数",
		"notes_flat": "notes_flat条数",
	}
	var walk func(any)
	walk = func(v any) {
		switch t := v.(type) {
		case map[string]any:
			for k, child := range t {
				if name, ok := keyed[k]; ok {
					if arr, isList := child.([]any); isList {
						counts[name] += len(arr)
					}
				}
				walk(child)
			}
		case []any:
			for _, item := range t {
				walk(item)
			}
		}
	}
	walk(tree)
	return counts
}

// DefaultRuleSet 默认规则集：保留结构骨架、用户/笔记/评论的业务字段
// 与媒体地址，删除视频编码指标等技术噪声。
func DefaultRuleSet() *RuleSet {
	keepExact := []string{
		// 顶部与结构
		"模式", "环境", "基础地址", "数据", "data", "原始", "meta", "请求耗时", "版本选择", "统计",
		"页码", "还有更多", "下一页游标", "result", "items", "ads", "note", "notes", "comments",
		"请求信息", "code", "message", "message_cn", "recordTime",
		// 用户信息
		"用户", "用户信息", "user", "userid", "user_id", "nickname", "red_id",
		"official_verified", "red_official_verified",
		"liked", "fans", "collected", "ip_location", "location", "images",
		"user_desc_info", "interactions",
		// 笔记/内容
		"id", "note_id", "title", "display_title", "desc", "content", "type",
		"time_desc", "create_time", "timestamp", "update_time",
		// 计数
		"liked_count", "likes", "comments_count", "collected_count", "share_count",
		"nice_count", "view_count", "is_goods_note",
		// 媒体
		"url", "urls", "share_link", "image", "images_list",
		"cover", "thumbnail", "first_frame",
		"video_info", "video_info_v2", "media", "stream", "streams",
		"h264", "h265", "master_url", "backup_urls",
		// 评论输出中文字段
		"评论ID", "昵称", "小红书号", "评论内容", "点赞数", "发布时间", "发布地点",
		"二级评论数", "评论级别", "作者ID", "是否官方认证",
	}
	denyExact := []string{
		"ssim", "psnr", "vmaf", "rotate", "quality_type", "stream_desc",
		"weight", "size", "volume", "audio_bitrate", "audio_channels", "video_bitrate",
		"default_stream",
	}

	rs := &RuleSet{
		KeepExact: make(map[string]struct{}, len(keepExact)),
		DenyExact: make(map[string]struct{}, len(denyExact)),
		KeepSubstrings: []string{
			"url", "image", "video", "note", "user", "count", "time", "desc", "title",
			"内容", "地点", "昵称", "评论", "认证", "ID",
		},
		KeepUnderParent: map[string][]string{
			// interactions 数组里的展示名只在该结构下有业务含义
			"interactions": {"name"},
			// 尺寸与时长只随媒体对象保留
			"cover":  {"width", "height"},
			"video":  {"width", "height", "duration"},
			"stream": {"duration"},
		},
		RestoreTopLevel: []string{"模式", "meta"},
	}
	for _, k := range keepExact {
		rs.KeepExact[k] = struct{}{}
	}
	for _, k := range denyExact {
		rs.DenyExact[k] = struct{}{}
	}
	return rs
}
