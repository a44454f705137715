package rednote

import (
	"context"
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/xpzouying/rednote-collector/pkg/fieldfilter"
	"github.com/xpzouying/rednote-collector/pkg/xhsutil"
)

// 评论模式的默认页数：根评论与每条根评论的二级回复各最多 2 页
const defaultCommentPages = 2

// authorCacheSize 单次运行内作者详情缓存的容量上限
const authorCacheSize = 128

// RunStatus 运行结果状态
type RunStatus string

const (
	StatusOK    RunStatus = "成功"
	StatusEmpty RunStatus = "无数据"
	StatusError RunStatus = "失败"
)

// Meta 单次运行的诊断元数据，随结果一并返回
type Meta struct {
	RunID          string                   `json:"run_id"`
	Status         RunStatus                `json:"状态"`
	Durations      map[string]EndpointStats `json:"请求耗时"`
	VersionChoices []VersionChoice          `json:"版本选择"`
	Errors         []RunError               `json:"错误列表,omitempty"`
	Stats          map[string]int           `json:"统计"`
}

// Result 流水线输出：规整记录流 + 诊断元数据。
// 三类记录按模式仅填充对应的一类（用户笔记模式下用户信息一并返回）。
type Result struct {
	Mode     QueryKind       `json:"模式"`
	Notes    []NoteRecord    `json:"笔记"`
	Users    []UserRecord    `json:"用户"`
	Comments []CommentRecord `json:"评论"`
	// Raw 经过字段过滤的原始响应页（仅在配置过滤规则时填充）
	Raw  []any `json:"原始,omitempty"`
	Meta Meta  `json:"meta"`
}

// Pipeline 采集流水线：分页器驱动版本回退客户端逐页拉取，
// 提取器逐条规整，可选的字段过滤器裁剪原始响应。
// 每次 Run 持有独立的客户端与诊断对象，可安全并发调用。
type Pipeline struct {
	baseURL     string
	token       string
	clientOpts  []ClientOption
	filterRules *fieldfilter.RuleSet
}

// PipelineOption 流水线可选配置
type PipelineOption func(*Pipeline)

// WithFieldFilter 配置字段过滤规则；配置后结果会附带裁剪过的原始响应页
func WithFieldFilter(rules *fieldfilter.RuleSet) PipelineOption {
	return func(p *Pipeline) {
		p.filterRules = rules
	}
}

// WithClientOptions 透传客户端配置（如覆盖错误码表）
func WithClientOptions(opts ...ClientOption) PipelineOption {
	return func(p *Pipeline) {
		p.clientOpts = append(p.clientOpts, opts...)
	}
}

func NewPipeline(baseURL, token string, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{baseURL: baseURL, token: token}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// run 单次运行的工作区：客户端、提取器与累积中的结果
type run struct {
	pipeline  *Pipeline
	client    *Client
	extractor *Extractor
	metrics   *RunMetrics
	result    *Result
	authors   *lru.Cache[string, *UserRecord]
	skipped   int
}

// Run 执行一次采集。总是返回非 nil 的结果：
// 所有失败都收敛为 meta 中的结构化错误，绝不越过边界抛出。
func (p *Pipeline) Run(ctx context.Context, query Query) (result *Result) {
	metrics := NewRunMetrics()
	result = &Result{
		Mode:     query.Kind,
		Notes:    []NoteRecord{},
		Users:    []UserRecord{},
		Comments: []CommentRecord{},
	}

	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Error("采集运行异常退出")
			metrics.RecordError("运行", &ResponseError{Type: "panic"})
		}
		p.finalize(result, metrics)
	}()

	if err := query.Validate(); err != nil {
		metrics.RecordError("参数校验", &ResponseError{Type: "input_error"})
		logrus.WithError(err).Warn("参数校验失败")
		return result
	}
	if p.token == "" {
		metrics.RecordError("参数校验", &ResponseError{Type: "missing_token"})
		return result
	}

	r := &run{
		pipeline:  p,
		client:    NewClient(p.baseURL, p.token, metrics, p.clientOpts...),
		extractor: NewExtractor(query.noteKind(), query.TimeRange),
		metrics:   metrics,
		result:    result,
	}
	r.authors, _ = lru.New[string, *UserRecord](authorCacheSize)

	switch query.Kind {
	case QuerySearchNotes:
		r.collectSearch(ctx, query)
	case QueryUserNotes:
		r.collectUserNotes(ctx, query)
	case QueryNoteComments:
		r.collectComments(ctx, query)
	case QueryUserInfo:
		r.collectUserInfo(ctx, query)
	case QueryNoteDetail:
		r.collectNoteDetail(ctx, query)
	}

	result.Meta.Stats = map[string]int{
		"条目数": len(result.Notes) + len(result.Users) + len(result.Comments),
		"跳过数": r.skipped,
	}
	return result
}

// finalize 汇总诊断元数据并判定状态
func (p *Pipeline) finalize(result *Result, metrics *RunMetrics) {
	result.Meta.RunID = metrics.RunID
	result.Meta.Durations = metrics.Durations()
	result.Meta.VersionChoices = metrics.VersionChoices
	if result.Meta.VersionChoices == nil {
		result.Meta.VersionChoices = []VersionChoice{}
	}
	result.Meta.Errors = metrics.Errors
	if result.Meta.Stats == nil {
		result.Meta.Stats = map[string]int{}
	}

	total := len(result.Notes) + len(result.Users) + len(result.Comments)
	switch {
	case total > 0:
		result.Meta.Status = StatusOK
	case len(metrics.Errors) > 0:
		result.Meta.Status = StatusError
	default:
		result.Meta.Status = StatusEmpty
	}
}

// skip 记录一次条目跳过（广告/类型不符/缺关键字段），跳过不是错误
func (r *run) skip(step string) {
	r.skipped++
	logrus.WithField("step", step).Warn("条目被跳过")
}

// failPage 记录一页失败并落日志
func (r *run) failPage(step string, resp *RawResponse) {
	r.metrics.RecordError(step, resp.Error)
	logrus.WithFields(logrus.Fields{
		"step":       step,
		"code":       resp.Code,
		"message_cn": resp.MessageCN,
	}).Warn("分页请求失败")
}

// keepRawPage 附带裁剪后的原始响应页（仅在配置过滤规则时）
func (r *run) keepRawPage(resp *RawResponse) {
	if r.pipeline.filterRules == nil {
		return
	}
	encoded, err := json.Marshal(resp)
	if err != nil {
		return
	}
	var tree any
	if err := json.Unmarshal(encoded, &tree); err != nil {
		return
	}
	r.result.Raw = append(r.result.Raw, fieldfilter.Prune(tree, r.pipeline.filterRules))
}

// ---------------- 关键词搜索 ----------------

func (r *run) collectSearch(ctx context.Context, query Query) {
	params := map[string]string{
		"keyword":  query.Keyword,
		"sort":     query.apiSort(),
		"noteType": query.apiNoteType(),
	}
	if query.TimeRange != "" {
		params["noteTime"] = query.TimeRange
	}

	pager := NewPagePaginator(r.client, OpSearchNote, params, 1, query.MaxPages)
	pages := 0
	for {
		resp, ok := pager.Next(ctx)
		if !ok {
			break
		}
		pages++
		r.keepRawPage(resp)
		if resp.Code != CodeSuccess {
			r.failPage(fmt.Sprintf("搜索 第%d页", pages), resp)
			continue
		}
		for _, item := range pageItems(resp.DataMap()) {
			m, _ := item.(map[string]any)
			rec := r.extractor.ExtractNote(m)
			if rec == nil {
				r.skip("搜索")
				continue
			}
			r.enrichNote(ctx, rec, query)
			r.result.Notes = append(r.result.Notes, *rec)
		}
	}
}

// enrichNote 按开关补充笔记正文与作者详情
func (r *run) enrichNote(ctx context.Context, rec *NoteRecord, query Query) {
	if query.IncludeNoteDetail && rec.Content == "" {
		resp := r.client.Call(ctx, OpNoteDetail, map[string]string{"noteId": rec.ID})
		if resp.Code == CodeSuccess {
			if desc := noteDetailDesc(resp); desc != "" {
				rec.Content = xhsutil.RepairText(desc)
				if len(rec.Tags) == 0 {
					rec.Tags = extractNoteTags(nil, rec.Content)
				}
			}
		} else {
			r.metrics.RecordError(fmt.Sprintf("笔记详情 %s", rec.ID), resp.Error)
		}
	}

	if query.IncludeAuthorDetail && rec.Author.UserID != "" {
		if info := r.authorInfo(ctx, rec.Author.UserID); info != nil {
			rec.Author.Fans = info.Fans
			rec.Author.LikedTotal = info.LikedTotal
			rec.Author.Desc = info.Desc
			if info.ProfileURL != "" {
				rec.Author.ProfileURL = info.ProfileURL
			}
			rec.Author.Verified = rec.Author.Verified || info.Verified
		}
	}
}

// authorInfo 带缓存的作者详情查询：同一作者在一次运行内只请求一次。
// 请求保持顺序执行，整体速率由共享限速器控制。
func (r *run) authorInfo(ctx context.Context, userID string) *UserRecord {
	if info, ok := r.authors.Get(userID); ok {
		return info
	}
	resp := r.client.Call(ctx, OpUserInfo, map[string]string{"userId": userID})
	if resp.Code != CodeSuccess {
		r.metrics.RecordError(fmt.Sprintf("作者详情 %s", userID), resp.Error)
		r.authors.Add(userID, nil)
		return nil
	}
	info := r.extractor.ExtractUser(resp.DataMap())
	r.authors.Add(userID, info)
	return info
}

// noteDetailDesc 从笔记详情响应中取正文，多套结构兜底
func noteDetailDesc(resp *RawResponse) string {
	data := resp.DataMap()
	if data == nil {
		// 老版本详情接口 data 为数组
		if arr, ok := resp.Data.([]any); ok && len(arr) > 0 {
			data, _ = arr[0].(map[string]any)
		}
	}
	items := getList(data, "note_list")
	if items == nil {
		items = getList(data, "items")
	}
	if len(items) > 0 {
		if first, ok := items[0].(map[string]any); ok {
			if desc := getString(first, "desc"); desc != "" {
				return desc
			}
		}
	}
	return getString(data, "desc")
}

// ---------------- 用户笔记 ----------------

func (r *run) collectUserNotes(ctx context.Context, query Query) {
	// 先拉一次用户信息，用于输出作者维度信息；失败不阻断笔记采集
	var userInfo *UserRecord
	resp := r.client.Call(ctx, OpUserInfo, map[string]string{"userId": query.UserID})
	if resp.Code == CodeSuccess {
		if userInfo = r.extractor.ExtractUser(resp.DataMap()); userInfo != nil {
			r.result.Users = append(r.result.Users, *userInfo)
		}
	} else {
		r.metrics.RecordError("获取用户信息", resp.Error)
	}

	pager := NewCursorPaginator(r.client, OpUserNoteList,
		map[string]string{"userId": query.UserID}, query.MaxPages)
	pages := 0
	for {
		page, ok := pager.Next(ctx)
		if !ok {
			break
		}
		pages++
		r.keepRawPage(page)
		if page.Code != CodeSuccess {
			r.failPage(fmt.Sprintf("用户笔记 第%d页", pages), page)
			continue
		}
		for _, item := range pageItems(page.DataMap()) {
			m, _ := item.(map[string]any)
			rec := r.extractor.ExtractNote(m)
			if rec == nil {
				r.skip("用户笔记")
				continue
			}
			mergeAuthorInfo(rec, userInfo, query.UserID)
			r.result.Notes = append(r.result.Notes, *rec)
		}
	}
}

// mergeAuthorInfo 把顶层用户信息合并进笔记的作者引用
func mergeAuthorInfo(rec *NoteRecord, info *UserRecord, userID string) {
	if rec.Author.UserID == "" {
		rec.Author.UserID = userID
		rec.Author.ProfileURL = xhsutil.ProfileURL(userID)
	}
	if info == nil {
		return
	}
	if rec.Author.Nickname == "" {
		rec.Author.Nickname = info.Nickname
	}
	if rec.Author.RedID == "" {
		rec.Author.RedID = info.RedID
	}
	rec.Author.Fans = info.Fans
	rec.Author.LikedTotal = info.LikedTotal
	rec.Author.Desc = info.Desc
	rec.Author.Verified = rec.Author.Verified || info.Verified
}

// ---------------- 笔记评论 ----------------

func (r *run) collectComments(ctx context.Context, query Query) {
	noteID := xhsutil.ParseNoteID(query.NoteID)
	maxPages := query.MaxPages
	if maxPages <= 0 {
		maxPages = defaultCommentPages
	}

	params := map[string]string{
		"noteId": noteID,
		"sort":   query.apiCommentSort(),
	}

	// 先收齐根评论：二级回复按根评论 ID 分组，必须等全部根评论就位
	var roots []CommentRecord
	authorID := ""
	pager := NewCursorPaginator(r.client, OpNoteComment, params, maxPages)
	pages := 0
	for {
		page, ok := pager.Next(ctx)
		if !ok {
			break
		}
		pages++
		r.keepRawPage(page)
		if page.Code != CodeSuccess {
			r.failPage(fmt.Sprintf("评论 第%d页", pages), page)
			continue
		}
		data := page.DataMap()
		if authorID == "" {
			authorID = getString(data, "user_id")
		}
		for _, item := range commentItems(data) {
			c, _ := item.(map[string]any)
			rec := r.extractor.ExtractComment(c, noteID, authorID, "根评论", "", "")
			if rec == nil {
				r.skip("评论")
				continue
			}
			roots = append(roots, *rec)
		}
	}

	// 根评论后跟随其二级回复，保持服务端顺序
	for _, root := range roots {
		r.result.Comments = append(r.result.Comments, root)
		if !query.IncludeSubComments || root.SubComments <= 0 {
			continue
		}
		r.collectReplies(ctx, noteID, authorID, root)
	}
}

// collectReplies 拉取一条根评论的二级回复（最多两页）
func (r *run) collectReplies(ctx context.Context, noteID, authorID string, root CommentRecord) {
	params := map[string]string{
		"noteId":    noteID,
		"commentId": root.ID,
	}
	pager := NewCursorPaginator(r.client, OpNoteSubComment, params, defaultCommentPages)
	pages := 0
	for {
		page, ok := pager.Next(ctx)
		if !ok {
			break
		}
		pages++
		if page.Code != CodeSuccess {
			r.failPage(fmt.Sprintf("二级评论 %s 第%d页", root.ID, pages), page)
			continue
		}
		for _, item := range commentItems(page.DataMap()) {
			c, _ := item.(map[string]any)
			rec := r.extractor.ExtractComment(c, noteID, authorID, "二级评论", root.Nickname, root.ID)
			if rec == nil {
				r.skip("二级评论")
				continue
			}
			r.result.Comments = append(r.result.Comments, *rec)
		}
	}
}

func commentItems(data map[string]any) []any {
	for _, key := range []string{"comments", "list", "items"} {
		if arr := getList(data, key); arr != nil {
			return arr
		}
	}
	return nil
}

// ---------------- 用户信息 / 笔记详情 ----------------

func (r *run) collectUserInfo(ctx context.Context, query Query) {
	resp := r.client.Call(ctx, OpUserInfo, map[string]string{"userId": query.UserID})
	r.keepRawPage(resp)
	if resp.Code != CodeSuccess {
		r.metrics.RecordError("获取用户信息", resp.Error)
		return
	}
	if rec := r.extractor.ExtractUser(resp.DataMap()); rec != nil {
		r.result.Users = append(r.result.Users, *rec)
	}
}

func (r *run) collectNoteDetail(ctx context.Context, query Query) {
	noteID := xhsutil.ParseNoteID(query.NoteID)
	resp := r.client.Call(ctx, OpNoteDetail, map[string]string{"noteId": noteID})
	r.keepRawPage(resp)
	if resp.Code != CodeSuccess {
		r.metrics.RecordError("获取笔记详情", resp.Error)
		return
	}

	data := resp.DataMap()
	items := getList(data, "note_list")
	if items == nil {
		items = getList(data, "items")
	}
	if items == nil {
		if arr, ok := resp.Data.([]any); ok {
			items = arr
		}
	}
	for _, item := range items {
		m, _ := item.(map[string]any)
		rec := r.extractor.ExtractNote(m)
		if rec == nil {
			r.skip("笔记详情")
			continue
		}
		r.result.Notes = append(r.result.Notes, *rec)
	}
}
