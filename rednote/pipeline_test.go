package rednote

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpzouying/rednote-collector/pkg/fieldfilter"
)

func TestPipelineSearchNotes(t *testing.T) {
	provider, server := newFakeProvider(func(path string, n int, w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/xiaohongshu/search-note/v2", path)
		assert.Equal(t, "美食", r.URL.Query().Get("keyword"))
		assert.Equal(t, "general", r.URL.Query().Get("sort"))
		assert.Equal(t, "_0", r.URL.Query().Get("noteType"))
		if n == 1 {
			writeJSON(w, 200, `{"code":0,"data":{"items":[
				{"model_type":"note","note":{"id":"n1","title":"探店","desc":"好吃","liked_count":10,
					"user":{"userid":"636519f2000000001f019e57","nickname":"小美"}}},
				{"model_type":"ads","ads":{"note":{"id":"ad1"}}}
			]}}`)
			return
		}
		writeJSON(w, 200, `{"code":0,"data":{"items":[]}}`)
	})
	defer server.Close()

	pipeline := NewPipeline(server.URL, "secret-token-1234")
	result := pipeline.Run(context.Background(), Query{
		Kind:    QuerySearchNotes,
		Keyword: "美食",
	})

	require.NotNil(t, result)
	assert.Equal(t, QuerySearchNotes, result.Mode)
	assert.Equal(t, StatusOK, result.Meta.Status)
	require.Len(t, result.Notes, 1)
	assert.Equal(t, "n1", result.Notes[0].ID)
	assert.Equal(t, "探店", result.Notes[0].Title)
	assert.Equal(t, "小美", result.Notes[0].Author.Nickname)
	assert.Empty(t, result.Users)
	assert.Empty(t, result.Comments)

	// 广告条目计入跳过数
	assert.Equal(t, 1, result.Meta.Stats["条目数"])
	assert.Equal(t, 1, result.Meta.Stats["跳过数"])

	// 诊断元数据齐备
	assert.NotEmpty(t, result.Meta.RunID)
	assert.NotEmpty(t, result.Meta.VersionChoices)
	assert.Contains(t, result.Meta.Durations, "/api/xiaohongshu/search-note/v2")
	assert.Equal(t, 2, provider.count("/api/xiaohongshu/search-note/v2"))

	// 未配置过滤规则时不附带原始响应
	assert.Nil(t, result.Raw)
}

func TestPipelineSearchNotesWithFieldFilter(t *testing.T) {
	_, server := newFakeProvider(func(path string, n int, w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"code":0,"data":{"items":[]}}`)
	})
	defer server.Close()

	pipeline := NewPipeline(server.URL, "secret-token-1234",
		WithFieldFilter(fieldfilter.DefaultRuleSet()))
	result := pipeline.Run(context.Background(), Query{Kind: QuerySearchNotes, Keyword: "美食"})

	require.NotNil(t, result)
	assert.Equal(t, StatusEmpty, result.Meta.Status)
	require.Len(t, result.Raw, 1)
	page, ok := result.Raw[0].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, page, "data")
}

func TestPipelineNoteComments(t *testing.T) {
	provider, server := newFakeProvider(func(path string, n int, w http.ResponseWriter, r *http.Request) {
		switch path {
		case "/api/xiaohongshu/get-note-comment/v2":
			assert.Equal(t, "663abc123", r.URL.Query().Get("noteId"))
			writeJSON(w, 200, `{"code":0,"data":{
				"user_id":"author1",
				"has_more":false,
				"comments":[
					{"id":"c1","content":"太好看了","sub_comment_count":1,
						"user":{"userid":"636519f2000000001f019e57","nickname":"路人甲"}},
					{"id":"c2","content":"收藏了","sub_comment_count":0,
						"user":{"userid":"636519f2000000001f019e58","nickname":"路人乙"}}
				]}}`)
		case "/api/xiaohongshu/get-note-sub-comment/v2":
			assert.Equal(t, "c1", r.URL.Query().Get("commentId"))
			writeJSON(w, 200, `{"code":0,"data":{
				"has_more":false,
				"comments":[
					{"id":"r1","content":"同感","user":{"userid":"636519f2000000001f019e59"}}
				]}}`)
		default:
			t.Errorf("意外的请求路径: %s", path)
		}
	})
	defer server.Close()

	pipeline := NewPipeline(server.URL, "secret-token-1234")
	result := pipeline.Run(context.Background(), Query{
		Kind:               QueryNoteComments,
		NoteID:             "https://www.xiaohongshu.com/explore/663abc123",
		IncludeSubComments: true,
	})

	require.NotNil(t, result)
	assert.Equal(t, StatusOK, result.Meta.Status)
	require.Len(t, result.Comments, 3)

	// 根评论后紧跟其二级回复
	assert.Equal(t, "c1", result.Comments[0].ID)
	assert.Equal(t, "根评论", result.Comments[0].Level)
	assert.Equal(t, "r1", result.Comments[1].ID)
	assert.Equal(t, "二级评论", result.Comments[1].Level)
	assert.Equal(t, "路人甲", result.Comments[1].ReplyTo)
	assert.Equal(t, "c1", result.Comments[1].RootID)
	assert.Equal(t, "c2", result.Comments[2].ID)

	// 所有评论都标注笔记作者
	for _, c := range result.Comments {
		assert.Equal(t, "author1", c.AuthorID)
		assert.Equal(t, "663abc123", c.NoteID)
	}

	assert.Equal(t, 1, provider.count("/api/xiaohongshu/get-note-comment/v2"))
	assert.Equal(t, 1, provider.count("/api/xiaohongshu/get-note-sub-comment/v2"))
}

func TestPipelineNoteCommentsWithoutSubComments(t *testing.T) {
	provider, server := newFakeProvider(func(path string, n int, w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"code":0,"data":{
			"has_more":false,
			"comments":[{"id":"c1","content":"x","sub_comment_count":5,
				"user":{"userid":"636519f2000000001f019e57"}}]}}`)
	})
	defer server.Close()

	pipeline := NewPipeline(server.URL, "secret-token-1234")
	result := pipeline.Run(context.Background(), Query{
		Kind:   QueryNoteComments,
		NoteID: "663abc123",
	})

	require.Len(t, result.Comments, 1)
	assert.Equal(t, 0, provider.count("/api/xiaohongshu/get-note-sub-comment/v2"))
}

func TestPipelineUserNotes(t *testing.T) {
	provider, server := newFakeProvider(func(path string, n int, w http.ResponseWriter, r *http.Request) {
		switch path {
		case "/api/xiaohongshu/get-user/v4":
			writeJSON(w, 200, `{"code":0,"data":{
				"userid":"636519f2000000001f019e57","nickname":"小美","red_id":"xiaomei001",
				"fans":1024,"liked":300,"collected":200,"desc":"美食分享"}}`)
		case "/api/xiaohongshu/get-user-note-list/v4":
			writeJSON(w, 200, `{"code":0,"data":{
				"has_more":false,
				"notes":[{"id":"n1","title":"探店"}]}}`)
		default:
			t.Errorf("意外的请求路径: %s", path)
		}
	})
	defer server.Close()

	pipeline := NewPipeline(server.URL, "secret-token-1234")
	result := pipeline.Run(context.Background(), Query{
		Kind:   QueryUserNotes,
		UserID: "636519f2000000001f019e57",
	})

	require.NotNil(t, result)
	assert.Equal(t, StatusOK, result.Meta.Status)
	require.Len(t, result.Users, 1)
	assert.Equal(t, "小美", result.Users[0].Nickname)

	// 顶层用户信息合并进每条笔记的作者引用
	require.Len(t, result.Notes, 1)
	assert.Equal(t, "636519f2000000001f019e57", result.Notes[0].Author.UserID)
	assert.Equal(t, "小美", result.Notes[0].Author.Nickname)
	assert.Equal(t, int64(1024), result.Notes[0].Author.Fans)
	assert.Equal(t, int64(500), result.Notes[0].Author.LikedTotal)

	assert.Equal(t, 1, provider.count("/api/xiaohongshu/get-user/v4"))
	assert.Equal(t, 1, provider.count("/api/xiaohongshu/get-user-note-list/v4"))
}

func TestPipelineUserInfo(t *testing.T) {
	_, server := newFakeProvider(func(path string, n int, w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"code":0,"data":{
			"userid":"636519f2000000001f019e57","nickname":"小美"}}`)
	})
	defer server.Close()

	pipeline := NewPipeline(server.URL, "secret-token-1234")
	result := pipeline.Run(context.Background(), Query{
		Kind:   QueryUserInfo,
		UserID: "636519f2000000001f019e57",
	})

	assert.Equal(t, StatusOK, result.Meta.Status)
	require.Len(t, result.Users, 1)
	assert.Equal(t, "小美", result.Users[0].Nickname)
}

func TestPipelineAuthErrorAggregated(t *testing.T) {
	provider, server := newFakeProvider(func(path string, n int, w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"code":100,"message":"TOKEN INVALID"}`)
	})
	defer server.Close()

	pipeline := NewPipeline(server.URL, "secret-token-1234")
	result := pipeline.Run(context.Background(), Query{Kind: QuerySearchNotes, Keyword: "美食"})

	require.NotNil(t, result, "失败也必须返回结果对象")
	assert.Equal(t, StatusError, result.Meta.Status)
	assert.Empty(t, result.Notes)
	require.NotEmpty(t, result.Meta.Errors)
	assert.Equal(t, ErrorAuth, result.Meta.Errors[0].Error.Type)
	// 鉴权错误不重试，回退版本只调用一次
	assert.Equal(t, 1, provider.count("/api/xiaohongshu/search-note/v2"))
	assert.Equal(t, 1, provider.count("/api/xiaohongshu/search-note/v3"))
}

func TestPipelineInvalidQuery(t *testing.T) {
	pipeline := NewPipeline("http://127.0.0.1:1", "secret-token-1234")
	result := pipeline.Run(context.Background(), Query{Kind: QuerySearchNotes})

	require.NotNil(t, result)
	assert.Equal(t, StatusError, result.Meta.Status)
	require.NotEmpty(t, result.Meta.Errors)
	assert.Equal(t, "参数校验", result.Meta.Errors[0].Step)
}

func TestPipelineMissingToken(t *testing.T) {
	pipeline := NewPipeline("http://127.0.0.1:1", "")
	result := pipeline.Run(context.Background(), Query{Kind: QuerySearchNotes, Keyword: "美食"})

	require.NotNil(t, result)
	assert.Equal(t, StatusError, result.Meta.Status)
	require.NotEmpty(t, result.Meta.Errors)
}

func TestPipelineAuthorDetailCached(t *testing.T) {
	provider, server := newFakeProvider(func(path string, n int, w http.ResponseWriter, r *http.Request) {
		switch path {
		case "/api/xiaohongshu/search-note/v2":
			if n == 1 {
				// 两条笔记同一作者
				writeJSON(w, 200, `{"code":0,"data":{"items":[
					{"id":"n1","user":{"userid":"636519f2000000001f019e57","nickname":"小美"}},
					{"id":"n2","user":{"userid":"636519f2000000001f019e57","nickname":"小美"}}
				]}}`)
				return
			}
			writeJSON(w, 200, `{"code":0,"data":{"items":[]}}`)
		case "/api/xiaohongshu/get-user/v4":
			writeJSON(w, 200, `{"code":0,"data":{
				"userid":"636519f2000000001f019e57","nickname":"小美","fans":1024}}`)
		default:
			t.Errorf("意外的请求路径: %s", path)
		}
	})
	defer server.Close()

	pipeline := NewPipeline(server.URL, "secret-token-1234")
	result := pipeline.Run(context.Background(), Query{
		Kind:                QuerySearchNotes,
		Keyword:             "美食",
		IncludeAuthorDetail: true,
	})

	require.Len(t, result.Notes, 2)
	assert.Equal(t, int64(1024), result.Notes[0].Author.Fans)
	assert.Equal(t, int64(1024), result.Notes[1].Author.Fans)
	// 同一作者在一次运行内只请求一次
	assert.Equal(t, 1, provider.count("/api/xiaohongshu/get-user/v4"))
}
