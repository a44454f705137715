package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/xpzouying/rednote-collector/configs"
	"github.com/xpzouying/rednote-collector/pkg/fieldfilter"
	"github.com/xpzouying/rednote-collector/rednote"
)

// CollectorService 小红书采集服务
type CollectorService struct {
	pipeline    *rednote.Pipeline
	filterRules *fieldfilter.RuleSet
}

// NewCollectorService 创建服务实例。
// 使用当前配置的环境与 token；过滤规则同时服务于采集结果附带的
// 原始响应页和独立的字段过滤接口。
func NewCollectorService() *CollectorService {
	rules := fieldfilter.DefaultRuleSet()
	return &CollectorService{
		pipeline: rednote.NewPipeline(
			configs.GetBaseURL(),
			configs.GetToken(),
			rednote.WithFieldFilter(rules),
		),
		filterRules: rules,
	}
}

// SearchNotes 按关键词采集笔记
func (s *CollectorService) SearchNotes(ctx context.Context, req *SearchNotesRequest) *rednote.Result {
	query := rednote.Query{
		Kind:                rednote.QuerySearchNotes,
		Keyword:             req.Keyword,
		Sort:                req.Sort,
		NoteType:            rednote.NoteKind(req.NoteType),
		TimeRange:           req.TimeRange,
		MaxPages:            req.MaxPages,
		IncludeAuthorDetail: req.IncludeAuthorDetail,
		IncludeNoteDetail:   req.IncludeNoteDetail,
	}

	logrus.WithFields(logrus.Fields{
		"keyword": req.Keyword,
		"sort":    req.Sort,
	}).Info("开始关键词搜索采集")
	return s.pipeline.Run(ctx, query)
}

// UserNotes 按用户采集笔记列表（附带用户信息）
func (s *CollectorService) UserNotes(ctx context.Context, req *UserNotesRequest) *rednote.Result {
	query := rednote.Query{
		Kind:     rednote.QueryUserNotes,
		UserID:   req.UserID,
		MaxPages: req.MaxPages,
	}

	logrus.WithField("user_id", req.UserID).Info("开始用户笔记采集")
	return s.pipeline.Run(ctx, query)
}

// NoteComments 按笔记采集评论（可选二级回复）
func (s *CollectorService) NoteComments(ctx context.Context, req *NoteCommentsRequest) *rednote.Result {
	query := rednote.Query{
		Kind:               rednote.QueryNoteComments,
		NoteID:             req.NoteID,
		CommentSort:        req.Sort,
		MaxPages:           req.MaxPages,
		IncludeSubComments: req.IncludeSubComments,
	}

	logrus.WithField("note_id", req.NoteID).Info("开始笔记评论采集")
	return s.pipeline.Run(ctx, query)
}

// UserInfo 采集单个用户信息
func (s *CollectorService) UserInfo(ctx context.Context, req *UserInfoRequest) *rednote.Result {
	query := rednote.Query{
		Kind:   rednote.QueryUserInfo,
		UserID: req.UserID,
	}
	return s.pipeline.Run(ctx, query)
}

// NoteDetail 采集单篇笔记详情
func (s *CollectorService) NoteDetail(ctx context.Context, req *NoteDetailRequest) *rednote.Result {
	query := rednote.Query{
		Kind:   rednote.QueryNoteDetail,
		NoteID: req.NoteID,
	}
	return s.pipeline.Run(ctx, query)
}

// FilterFields 对任意 JSON 树应用字段白名单裁剪并统计
func (s *CollectorService) FilterFields(data any) *FilterResponse {
	filtered := fieldfilter.Prune(data, s.filterRules)
	return &FilterResponse{
		Filtered: filtered,
		Stats:    fieldfilter.Stats(filtered),
	}
}
