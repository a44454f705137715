package rednote

import (
	"encoding/json"
	"time"

	"github.com/xpzouying/rednote-collector/pkg/xhsutil"
)

// videoCDNBase 简化视频链接的 CDN 前缀（配合 origin_video_key 使用）
const videoCDNBase = "https://sns-video-hs.xhscdn.com/"

// streamCodecs 视频流编码的取用优先级
var streamCodecs = []string{"h265", "h264", "av1", "h266"}

// Extractor 把版本各异的原始条目规整为稳定记录。
// 纯转换，无隐藏状态：同一输入的两次提取结果完全一致。
type Extractor struct {
	noteKind      NoteKind
	timeRangeDays int
	now           func() time.Time
}

func NewExtractor(kind NoteKind, timeRange string) *Extractor {
	return &Extractor{
		noteKind:      kind,
		timeRangeDays: TimeRangeDays[timeRange],
		now:           time.Now,
	}
}

// ---------------- 笔记 ----------------

// ensureNoteItem 把搜索条目统一规整为笔记对象。
// 常见结构 {"model_type":"note","note":{...}}；
// 广告结构 {"model_type":"ads","ads":{"note":{...}}}；
// 少数旧结构顶层直接就是笔记对象。
func ensureNoteItem(item map[string]any) (note map[string]any, isAd bool) {
	switch getString(item, "model_type") {
	case "ads":
		ads := getMap(item, "ads")
		if nested := getMap(ads, "note"); nested != nil {
			return nested, true
		}
		if nested := getMap(getMap(ads, "payload"), "note"); nested != nil {
			return nested, true
		}
		return getMap(item, "note"), true
	case "note":
		if nested := getMap(item, "note"); nested != nil {
			return nested, false
		}
		return item, false
	}
	if nested := getMap(item, "note"); nested != nil {
		return nested, false
	}
	return item, false
}

// ExtractNote 将一个搜索/列表条目规整为笔记记录。
// 返回 nil 表示条目被正常跳过（广告、类型不符、无 ID），不是错误。
func (e *Extractor) ExtractNote(item map[string]any) *NoteRecord {
	note, isAd := ensureNoteItem(item)
	if isAd || len(note) == 0 {
		return nil
	}

	noteID := firstString(note, "id", "noteId", "note_id")
	if noteID == "" {
		return nil
	}

	noteType := getString(note, "type")
	isVideo := noteType == "video" ||
		getMap(note, "video_info_v2") != nil ||
		getMap(note, "video_info") != nil ||
		getMap(note, "video") != nil

	// 类型不符的条目按跳过处理，不算失败
	switch e.noteKind {
	case NoteVideo:
		if !isVideo {
			return nil
		}
	case NoteImage:
		if isVideo {
			return nil
		}
	}

	rec := newNoteRecord()
	rec.ID = noteID
	rec.URL = xhsutil.NoteURL(noteID)
	rec.Title = xhsutil.RepairText(firstString(note, "title", "display_title"))
	rec.Content = xhsutil.RepairText(getString(note, "desc"))
	rec.Type = displayNoteType(noteType, isVideo)
	rec.Likes = firstInt(note, "liked_count", "likes")
	rec.Comments = getInt(note, "comments_count")
	rec.Collects = getInt(note, "collected_count")
	rec.Nices = getInt(note, "nice_count")
	rec.Shares = firstInt(note, "shared_count", "share_count", "forward_count")
	rec.Views = getInt(note, "view_count")
	rec.IsGoodsNote = getBool(note, "is_goods_note")
	rec.Author = extractAuthor(getMap(note, "user"))

	ts := normalizeTimestamp(firstInt(note, "timestamp", "create_time", "update_time", "publishTime", "time"))
	rec.PublishTime = e.formatPublishTime(ts, note)
	rec.InTimeRange = e.inTimeRange(ts)

	rec.ImageURLs = extractImageURLs(note)
	rec.VideoURLs = extractVideoURLs(note)
	if len(rec.VideoURLs) > 0 {
		rec.VideoURL = rec.VideoURLs[0]
	}
	rec.CoverURL = extractCover(note, rec.ImageURLs)
	rec.Tags = extractNoteTags(note, rec.Content)

	return rec
}

func displayNoteType(noteType string, isVideo bool) string {
	switch {
	case noteType == "normal":
		return "图文笔记"
	case noteType == "video" || isVideo:
		return "视频笔记"
	case noteType == "":
		return ""
	}
	return noteType
}

// normalizeTimestamp 秒/毫秒自适应：超过 10^11 视为毫秒
func normalizeTimestamp(ts int64) int64 {
	if ts > 100_000_000_000 {
		return ts / 1000
	}
	return ts
}

// formatPublishTime 时间戳转标准格式；无效时兜底使用服务端给的
// “xx天前”一类的人读文案（corner_tag_info / time_desc）。
func (e *Extractor) formatPublishTime(ts int64, note map[string]any) string {
	if ts > 0 {
		return time.Unix(ts, 0).Format("2006-01-02 15:04:05")
	}
	for _, it := range getList(note, "corner_tag_info") {
		tag, _ := it.(map[string]any)
		if getString(tag, "type") == "publish_time" {
			if text := getString(tag, "text"); text != "" {
				return text
			}
		}
	}
	return firstString(note, "time_desc", "time")
}

func (e *Extractor) inTimeRange(ts int64) bool {
	if e.timeRangeDays <= 0 || ts <= 0 {
		return true
	}
	age := e.now().Unix() - ts
	return age <= int64(e.timeRangeDays)*24*3600
}

// extractImageURLs 按分辨率优先级取每张图一个地址，整体去重保序
func extractImageURLs(note map[string]any) []string {
	urls := []string{}
	seen := make(map[string]struct{})
	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	images := getList(note, "images_list")
	if images == nil {
		images = getList(note, "imagesList")
	}
	for _, item := range images {
		switch img := item.(type) {
		case map[string]any:
			add(firstString(img, "url", "url_size_large", "url_size_medium", "url_size_small", "original"))
		case string:
			add(img)
		}
	}
	return urls
}

// extractCover 封面：视频首帧/缩略图优先，其次第一张图片
func extractCover(note map[string]any, imageURLs []string) string {
	image := getMap(getMap(note, "video_info_v2"), "image")
	if cover := firstString(image, "first_frame", "thumbnail"); cover != "" {
		return cover
	}
	if len(imageURLs) > 0 {
		return imageURLs[0]
	}
	return ""
}

// extractVideoURLs 按结构优先级收集全部候选视频地址：
// video_info_v2 的流结构 → 旧版 video/video_info → live_photo →
// widgets_context 中的 origin_video_key 合成简化链接。去重保序。
func extractVideoURLs(note map[string]any) []string {
	urls := []string{}
	seen := make(map[string]struct{})
	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	collectMedia(getMap(getMap(note, "video_info_v2"), "media"), add)

	for _, key := range []string{"video", "video_info"} {
		if vobj := getMap(note, key); vobj != nil {
			collectStreamList(getList(vobj, "streams"), add)
			collectStreamMap(getMap(vobj, "stream"), add)
		}
	}

	for _, item := range getList(note, "images_list") {
		img, _ := item.(map[string]any)
		collectMedia(getMap(getMap(img, "live_photo"), "media"), add)
	}

	if len(urls) == 0 {
		if key := originVideoKey(note); key != "" {
			add(videoCDNBase + key)
		}
	}
	return urls
}

func collectMedia(media map[string]any, add func(string)) {
	if media == nil {
		return
	}
	collectStreamList(getList(media, "streams"), add)
	collectStreamMap(getMap(media, "stream"), add)
}

func collectStreamMap(stream map[string]any, add func(string)) {
	for _, codec := range streamCodecs {
		collectStreamList(getList(stream, codec), add)
	}
}

func collectStreamList(arr []any, add func(string)) {
	for _, item := range arr {
		s, _ := item.(map[string]any)
		if s == nil {
			continue
		}
		add(firstString(s, "master_url", "url"))
		for _, b := range getList(s, "backup_urls") {
			add(asString(b))
		}
	}
}

// originVideoKey 从 widgets_context（JSON 编码的字符串）中取视频 key
func originVideoKey(note map[string]any) string {
	ctx := getString(note, "widgets_context")
	if ctx == "" {
		return ""
	}
	var widgets map[string]any
	if err := json.Unmarshal([]byte(ctx), &widgets); err != nil {
		return ""
	}
	return getString(widgets, "origin_video_key")
}

// extractNoteTags 结构化标签优先，缺失时从正文提取 #话题
func extractNoteTags(note map[string]any, content string) []string {
	tags := []string{}
	seen := make(map[string]struct{})
	add := func(t string) {
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}

	for _, key := range []string{"tag_list", "note_tag_list", "tags"} {
		for _, item := range getList(note, key) {
			switch t := item.(type) {
			case string:
				add(t)
			case map[string]any:
				add(firstString(t, "name", "title"))
			}
		}
	}
	if len(tags) == 0 {
		for _, t := range xhsutil.ExtractTags(content) {
			add(t)
		}
	}
	return tags
}

// extractAuthor 笔记条目上的作者摘要（详情字段由作者采集填充）
func extractAuthor(user map[string]any) AuthorRef {
	author := AuthorRef{
		UserID:   firstString(user, "userid", "userId", "user_id", "id"),
		Nickname: xhsutil.RepairText(getString(user, "nickname")),
		RedID:    firstString(user, "red_id", "redId"),
		Verified: isOfficialVerified(user),
	}
	author.ProfileURL = xhsutil.ProfileURL(author.UserID)
	return author
}

// isOfficialVerified 官方认证判断：布尔字段优先，其次认证类型非零
func isOfficialVerified(user map[string]any) bool {
	if v, ok := user["red_official_verified"].(bool); ok {
		return v
	}
	if v, ok := user["official_verified"].(bool); ok {
		return v
	}
	return getInt(user, "red_official_verify_type") != 0 ||
		getInt(user, "official_verify_type") != 0
}

// ---------------- 用户 ----------------

// ExtractUser 将用户信息接口的 data 规整为用户记录
func (e *Extractor) ExtractUser(data map[string]any) *UserRecord {
	if len(data) == 0 {
		return nil
	}

	rec := &UserRecord{
		UserID:    firstString(data, "userid", "user_id", "id"),
		Nickname:  xhsutil.RepairText(getString(data, "nickname")),
		RedID:     firstString(data, "red_id", "redId"),
		Desc:      xhsutil.RepairText(getString(data, "desc")),
		Fans:      getInt(data, "fans"),
		NoteCount: firstInt(data, "notes", "ndiscovery"),
		Location:  firstString(data, "ip_location", "location"),
		AvatarURL: firstString(data, "images", "image", "imageb"),
		Verified:  isOfficialVerified(data),
	}

	// 获赞与收藏：优先 interactions 中的汇总项，其次 liked+collected
	for _, item := range getList(data, "interactions") {
		it, _ := item.(map[string]any)
		switch getString(it, "type") {
		case "interaction":
			rec.LikedTotal = getInt(it, "count")
		case "fans":
			if rec.Fans == 0 {
				rec.Fans = getInt(it, "count")
			}
		}
	}
	if rec.LikedTotal == 0 {
		liked := getInt(data, "liked")
		collected := getInt(data, "collected")
		stat := getMap(data, "note_num_stat")
		if liked == 0 {
			liked = getInt(stat, "liked")
		}
		if collected == 0 {
			collected = getInt(stat, "collected")
		}
		rec.LikedTotal = liked + collected
	}

	rec.ProfileURL = getString(data, "share_link")
	if rec.ProfileURL == "" {
		rec.ProfileURL = xhsutil.ProfileURL(rec.UserID)
	}
	if rec.UserID == "" && rec.Nickname == "" {
		return nil
	}
	return rec
}

// ---------------- 评论 ----------------

// ExtractComment 将一条原始评论规整为评论记录。
// authorID 为笔记作者，用于标注楼主；replyTo/rootID 仅二级评论携带。
func (e *Extractor) ExtractComment(c map[string]any, noteID, authorID, level, replyTo, rootID string) *CommentRecord {
	if len(c) == 0 {
		return nil
	}
	id := firstString(c, "id", "comment_id")
	if id == "" {
		return nil
	}

	user := getMap(c, "user")
	rec := &CommentRecord{
		ID:          id,
		NoteID:      noteID,
		Content:     xhsutil.RepairText(getString(c, "content")),
		Likes:       firstInt(c, "like_count", "liked_count", "likedCount", "likeCount"),
		Location:    firstString(c, "ip_location", "location"),
		Level:       level,
		SubComments: getInt(c, "sub_comment_count"),
		Nickname:    xhsutil.RepairText(getString(user, "nickname")),
		RedID:       firstString(user, "red_id", "redId"),
		UserID:      firstString(user, "userid", "userId", "user_id", "id"),
		AuthorID:    authorID,
		Verified:    isOfficialVerified(user),
		ReplyTo:     replyTo,
		RootID:      rootID,
	}

	ts := normalizeTimestamp(firstInt(c, "time", "create_time", "publishTime"))
	if ts > 0 {
		rec.Time = time.Unix(ts, 0).Format("2006-01-02 15:04:05")
	} else {
		rec.Time = firstString(c, "time_desc", "show_time")
	}
	return rec
}
