package rednote

import (
	"context"
	"strconv"

	"github.com/xpzouying/rednote-collector/configs"
)

// Paginator 驱动版本回退客户端逐页拉取结果，懒惰产出、必定有限。
// 两种翻页方式：
//   - 游标翻页：把上一页返回的 cursor 原样带入下一页请求，
//     has_more=false 或 cursor 为空即终止；游标对调用方完全不透明。
//   - 页码翻页（搜索接口）：递增 page 参数，空页即终止。
//
// 失败页会被产出（供诊断），随后立即终止 —— 不从失败响应中猜测游标。
// 页边界是唯一的取消点：每次 Next 开头检查 ctx。
type Paginator struct {
	client *Client
	op     Operation
	params map[string]string

	cursorKey string // 非空表示游标翻页
	pageKey   string // 非空表示页码翻页

	cursor   string
	page     int
	maxPages int
	pages    int
	done     bool
}

// NewCursorPaginator 创建游标翻页器。maxPages<=0 视为不设上限，
// 内部封顶到安全上限，防止服务端永远返回 has_more=true 导致不终止。
func NewCursorPaginator(client *Client, op Operation, params map[string]string, maxPages int) *Paginator {
	return &Paginator{
		client:    client,
		op:        op,
		params:    params,
		cursorKey: "lastCursor",
		maxPages:  clampMaxPages(maxPages),
	}
}

// NewPagePaginator 创建页码翻页器（搜索接口），从 startPage 开始
func NewPagePaginator(client *Client, op Operation, params map[string]string, startPage, maxPages int) *Paginator {
	if startPage < 1 {
		startPage = 1
	}
	return &Paginator{
		client:   client,
		op:       op,
		params:   params,
		pageKey:  "page",
		page:     startPage,
		maxPages: clampMaxPages(maxPages),
	}
}

func clampMaxPages(n int) int {
	if n <= 0 || n > configs.MaxPagesCeiling {
		return configs.MaxPagesCeiling
	}
	return n
}

// Pages 已产出的页数
func (p *Paginator) Pages() int {
	return p.pages
}

// Next 拉取下一页。返回 false 表示序列已结束（含取消）。
func (p *Paginator) Next(ctx context.Context) (*RawResponse, bool) {
	if p.done {
		return nil, false
	}
	if ctx.Err() != nil {
		p.done = true
		return nil, false
	}

	params := make(map[string]string, len(p.params)+1)
	for k, v := range p.params {
		params[k] = v
	}
	if p.cursorKey != "" && p.cursor != "" {
		params[p.cursorKey] = p.cursor
	}
	if p.pageKey != "" {
		params[p.pageKey] = strconv.Itoa(p.page)
	}

	resp := p.client.Call(ctx, p.op, params)
	p.pages++

	if resp.Code != CodeSuccess {
		// 产出失败页供诊断，之后不再翻页
		p.done = true
		return resp, true
	}

	data := resp.DataMap()
	switch {
	case p.cursorKey != "":
		next := getString(data, "cursor")
		if !getBool(data, "has_more") || next == "" {
			p.done = true
		} else {
			p.cursor = next
		}
	case p.pageKey != "":
		if len(pageItems(data)) == 0 {
			p.done = true
		} else {
			p.page++
		}
	}

	if p.pages >= p.maxPages {
		p.done = true
	}
	return resp, true
}

// pageItems 按多套命名取出一页的条目列表
func pageItems(data map[string]any) []any {
	for _, key := range []string{"items", "notes", "comments", "list"} {
		if arr := getList(data, key); arr != nil {
			return arr
		}
	}
	return nil
}
