package rednote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureNoteItem(t *testing.T) {
	tests := []struct {
		name   string
		item   map[string]any
		wantID string
		wantAd bool
	}{
		{
			name:   "标准note结构",
			item:   map[string]any{"model_type": "note", "note": map[string]any{"id": "n1"}},
			wantID: "n1",
		},
		{
			name:   "广告结构被标记",
			item:   map[string]any{"model_type": "ads", "ads": map[string]any{"note": map[string]any{"id": "ad1"}}},
			wantID: "ad1",
			wantAd: true,
		},
		{
			name:   "顶层直接是笔记",
			item:   map[string]any{"id": "n2", "title": "x"},
			wantID: "n2",
		},
		{
			name:   "无model_type但嵌套note",
			item:   map[string]any{"note": map[string]any{"id": "n3"}},
			wantID: "n3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note, isAd := ensureNoteItem(tt.item)
			assert.Equal(t, tt.wantAd, isAd)
			assert.Equal(t, tt.wantID, getString(note, "id"))
		})
	}
}

func TestExtractNoteBasicFields(t *testing.T) {
	e := NewExtractor(NoteAll, "")
	ts := int64(1719800000)

	rec := e.ExtractNote(map[string]any{
		"model_type": "note",
		"note": map[string]any{
			"id":              "663abc",
			"title":           "夏日穿搭",
			"desc":            "分享一套#穿搭#夏日look",
			"type":            "normal",
			"liked_count":     128,
			"comments_count":  32,
			"collected_count": 64,
			"shared_count":    8,
			"timestamp":       ts,
			"user": map[string]any{
				"userid":   "636519f2000000001f019e57",
				"nickname": "小美",
				"red_id":   "xiaomei001",
			},
			"images_list": []any{
				map[string]any{"url": "https://img.example.com/1.jpg"},
				map[string]any{"url_size_large": "https://img.example.com/2_large.jpg"},
			},
		},
	})

	require.NotNil(t, rec)
	assert.Equal(t, "663abc", rec.ID)
	assert.Equal(t, "https://www.xiaohongshu.com/explore/663abc", rec.URL)
	assert.Equal(t, "夏日穿搭", rec.Title)
	assert.Equal(t, "图文笔记", rec.Type)
	assert.Equal(t, int64(128), rec.Likes)
	assert.Equal(t, int64(32), rec.Comments)
	assert.Equal(t, int64(64), rec.Collects)
	assert.Equal(t, int64(8), rec.Shares)
	assert.Equal(t, time.Unix(ts, 0).Format("2006-01-02 15:04:05"), rec.PublishTime)
	assert.Equal(t, []string{"穿搭", "夏日look"}, rec.Tags)
	assert.Equal(t, []string{
		"https://img.example.com/1.jpg",
		"https://img.example.com/2_large.jpg",
	}, rec.ImageURLs)
	assert.Equal(t, "https://img.example.com/1.jpg", rec.CoverURL)

	assert.Equal(t, "636519f2000000001f019e57", rec.Author.UserID)
	assert.Equal(t, "小美", rec.Author.Nickname)
	assert.Equal(t, "xiaomei001", rec.Author.RedID)
}

func TestExtractNoteSkips(t *testing.T) {
	tests := []struct {
		name string
		kind NoteKind
		item map[string]any
	}{
		{
			name: "广告条目",
			kind: NoteAll,
			item: map[string]any{"model_type": "ads", "ads": map[string]any{"note": map[string]any{"id": "ad1"}}},
		},
		{
			name: "无ID条目",
			kind: NoteAll,
			item: map[string]any{"model_type": "note", "note": map[string]any{"title": "x"}},
		},
		{
			name: "只要视频时跳过图文",
			kind: NoteVideo,
			item: map[string]any{"model_type": "note", "note": map[string]any{"id": "n1", "type": "normal"}},
		},
		{
			name: "只要图文时跳过视频",
			kind: NoteImage,
			item: map[string]any{"model_type": "note", "note": map[string]any{"id": "n1", "type": "video"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(tt.kind, "")
			assert.Nil(t, e.ExtractNote(tt.item))
		})
	}
}

func TestExtractNoteCounterAliases(t *testing.T) {
	e := NewExtractor(NoteAll, "")

	rec := e.ExtractNote(map[string]any{
		"id":            "n1",
		"likes":         50,
		"forward_count": 3,
	})

	require.NotNil(t, rec)
	assert.Equal(t, int64(50), rec.Likes)
	assert.Equal(t, int64(3), rec.Shares)
}

func TestExtractNoteMillisecondTimestamp(t *testing.T) {
	e := NewExtractor(NoteAll, "")
	ms := int64(1719800000123)

	rec := e.ExtractNote(map[string]any{"id": "n1", "timestamp": ms})

	require.NotNil(t, rec)
	assert.Equal(t, time.Unix(ms/1000, 0).Format("2006-01-02 15:04:05"), rec.PublishTime)
}

func TestExtractNotePublishTimeFallback(t *testing.T) {
	e := NewExtractor(NoteAll, "")

	rec := e.ExtractNote(map[string]any{
		"id": "n1",
		"corner_tag_info": []any{
			map[string]any{"type": "location", "text": "上海"},
			map[string]any{"type": "publish_time", "text": "3天前"},
		},
	})

	require.NotNil(t, rec)
	assert.Equal(t, "3天前", rec.PublishTime)
}

func TestExtractNoteTimeRange(t *testing.T) {
	e := NewExtractor(NoteAll, "一周内")
	now := time.Now()
	e.now = func() time.Time { return now }

	recent := e.ExtractNote(map[string]any{"id": "n1", "timestamp": now.Unix() - 3*24*3600})
	require.NotNil(t, recent)
	assert.True(t, recent.InTimeRange)

	old := e.ExtractNote(map[string]any{"id": "n2", "timestamp": now.Unix() - 30*24*3600})
	require.NotNil(t, old)
	assert.False(t, old.InTimeRange)
}

func TestExtractNoteVideoStreams(t *testing.T) {
	e := NewExtractor(NoteAll, "")

	rec := e.ExtractNote(map[string]any{
		"id":   "v1",
		"type": "video",
		"video_info_v2": map[string]any{
			"image": map[string]any{"first_frame": "https://img.example.com/frame.jpg"},
			"media": map[string]any{
				"stream": map[string]any{
					"h264": []any{
						map[string]any{
							"master_url":  "https://v.example.com/h264.mp4",
							"backup_urls": []any{"https://v2.example.com/h264.mp4"},
							"ssim":        0.98,
						},
					},
					"h265": []any{
						map[string]any{"master_url": "https://v.example.com/h265.mp4"},
					},
				},
			},
		},
	})

	require.NotNil(t, rec)
	assert.Equal(t, "视频笔记", rec.Type)
	// h265 优先于 h264，备选地址排在各自主地址之后
	assert.Equal(t, []string{
		"https://v.example.com/h265.mp4",
		"https://v.example.com/h264.mp4",
		"https://v2.example.com/h264.mp4",
	}, rec.VideoURLs)
	assert.Equal(t, "https://v.example.com/h265.mp4", rec.VideoURL)
	assert.Equal(t, "https://img.example.com/frame.jpg", rec.CoverURL)
}

func TestExtractNoteWidgetsContextVideoKey(t *testing.T) {
	e := NewExtractor(NoteAll, "")

	rec := e.ExtractNote(map[string]any{
		"id":              "v2",
		"type":            "video",
		"widgets_context": `{"origin_video_key":"abc123","flags":{}}`,
	})

	require.NotNil(t, rec)
	assert.Equal(t, []string{"https://sns-video-hs.xhscdn.com/abc123"}, rec.VideoURLs)
	assert.Equal(t, "https://sns-video-hs.xhscdn.com/abc123", rec.VideoURL)
}

func TestExtractNoteWidgetsContextIgnoredWhenStreamsExist(t *testing.T) {
	e := NewExtractor(NoteAll, "")

	rec := e.ExtractNote(map[string]any{
		"id":   "v3",
		"type": "video",
		"video_info_v2": map[string]any{
			"media": map[string]any{
				"stream": map[string]any{
					"h264": []any{map[string]any{"master_url": "https://v.example.com/a.mp4"}},
				},
			},
		},
		"widgets_context": `{"origin_video_key":"abc123"}`,
	})

	require.NotNil(t, rec)
	assert.Equal(t, []string{"https://v.example.com/a.mp4"}, rec.VideoURLs)
}

func TestExtractNoteDeterministic(t *testing.T) {
	// 同一输入提取两次，结果必须完全一致
	e := NewExtractor(NoteAll, "")
	item := map[string]any{
		"id":          "n1",
		"title":       "标题",
		"desc":        "正文#标签",
		"liked_count": 10,
		"timestamp":   int64(1719800000),
	}

	first := e.ExtractNote(item)
	second := e.ExtractNote(item)
	assert.Equal(t, first, second)
}

func TestExtractUser(t *testing.T) {
	e := NewExtractor(NoteAll, "")

	rec := e.ExtractUser(map[string]any{
		"userid":      "636519f2000000001f019e57",
		"nickname":    "小美",
		"red_id":      "xiaomei001",
		"desc":        "美食分享",
		"fans":        "1024",
		"notes":       88,
		"ip_location": "上海",
		"images":      "https://img.example.com/avatar.jpg",
		"interactions": []any{
			map[string]any{"type": "interaction", "count": 5000},
		},
	})

	require.NotNil(t, rec)
	assert.Equal(t, "636519f2000000001f019e57", rec.UserID)
	assert.Equal(t, "小美", rec.Nickname)
	assert.Equal(t, int64(1024), rec.Fans)
	assert.Equal(t, int64(88), rec.NoteCount)
	assert.Equal(t, int64(5000), rec.LikedTotal)
	assert.Equal(t, "上海", rec.Location)
	assert.Equal(t, "https://www.xiaohongshu.com/user/profile/636519f2000000001f019e57", rec.ProfileURL)
}

func TestExtractUserLikedCollectedFallback(t *testing.T) {
	e := NewExtractor(NoteAll, "")

	rec := e.ExtractUser(map[string]any{
		"userid":    "636519f2000000001f019e57",
		"nickname":  "小美",
		"liked":     300,
		"collected": 200,
	})

	require.NotNil(t, rec)
	assert.Equal(t, int64(500), rec.LikedTotal)
}

func TestExtractUserEmpty(t *testing.T) {
	e := NewExtractor(NoteAll, "")
	assert.Nil(t, e.ExtractUser(nil))
	assert.Nil(t, e.ExtractUser(map[string]any{}))
}

func TestExtractComment(t *testing.T) {
	e := NewExtractor(NoteAll, "")
	ts := int64(1719800000)

	rec := e.ExtractComment(map[string]any{
		"id":                "c1",
		"content":           "太好看了",
		"like_count":        12,
		"ip_location":       "广东",
		"sub_comment_count": 3,
		"time":              ts,
		"user": map[string]any{
			"userid":   "636519f2000000001f019e57",
			"nickname": "路人甲",
		},
	}, "note1", "author1", "根评论", "", "")

	require.NotNil(t, rec)
	assert.Equal(t, "c1", rec.ID)
	assert.Equal(t, "note1", rec.NoteID)
	assert.Equal(t, "太好看了", rec.Content)
	assert.Equal(t, int64(12), rec.Likes)
	assert.Equal(t, int64(3), rec.SubComments)
	assert.Equal(t, "根评论", rec.Level)
	assert.Equal(t, "author1", rec.AuthorID)
	assert.Equal(t, time.Unix(ts, 0).Format("2006-01-02 15:04:05"), rec.Time)
	assert.Empty(t, rec.RootID)
}

func TestExtractCommentReplyContext(t *testing.T) {
	e := NewExtractor(NoteAll, "")

	rec := e.ExtractComment(map[string]any{
		"id":      "c2",
		"content": "同感",
		"user":    map[string]any{"userid": "636519f2000000001f019e58"},
	}, "note1", "author1", "二级评论", "路人甲", "c1")

	require.NotNil(t, rec)
	assert.Equal(t, "二级评论", rec.Level)
	assert.Equal(t, "路人甲", rec.ReplyTo)
	assert.Equal(t, "c1", rec.RootID)
}
