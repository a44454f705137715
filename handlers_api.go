package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/xpzouying/rednote-collector/configs"
	"github.com/xpzouying/rednote-collector/rednote"
)

// respondError 返回错误响应
func respondError(c *gin.Context, statusCode int, code, message string, details any) {
	response := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}

	logrus.Errorf("%s %s %d", c.Request.Method, c.Request.URL.Path, statusCode)

	c.JSON(statusCode, response)
}

// respondSuccess 返回成功响应
func respondSuccess(c *gin.Context, data any, message string) {
	response := SuccessResponse{
		Success: true,
		Data:    data,
		Message: message,
	}

	logrus.Infof("%s %s %d", c.Request.Method, c.Request.URL.Path, http.StatusOK)

	c.JSON(http.StatusOK, response)
}

// respondResult 返回采集结果。
// 流水线保证总是返回结果对象，失败收敛在 meta 中，HTTP 层统一回 200。
func respondResult(c *gin.Context, result *rednote.Result, message string) {
	respondSuccess(c, CollectResponse{Result: result}, message)
}

// searchNotesHandler 关键词搜索笔记
func (s *AppServer) searchNotesHandler(c *gin.Context) {
	var req SearchNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST",
			"请求参数错误", err.Error())
		return
	}

	result := s.collectorService.SearchNotes(c.Request.Context(), &req)
	respondResult(c, result, "关键词搜索采集完成")
}

// userNotesHandler 用户笔记列表
func (s *AppServer) userNotesHandler(c *gin.Context) {
	var req UserNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST",
			"请求参数错误", err.Error())
		return
	}

	result := s.collectorService.UserNotes(c.Request.Context(), &req)
	respondResult(c, result, "用户笔记采集完成")
}

// noteCommentsHandler 笔记评论
func (s *AppServer) noteCommentsHandler(c *gin.Context) {
	var req NoteCommentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST",
			"请求参数错误", err.Error())
		return
	}

	result := s.collectorService.NoteComments(c.Request.Context(), &req)
	respondResult(c, result, "笔记评论采集完成")
}

// userInfoHandler 用户信息
func (s *AppServer) userInfoHandler(c *gin.Context) {
	var req UserInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST",
			"请求参数错误", err.Error())
		return
	}

	result := s.collectorService.UserInfo(c.Request.Context(), &req)
	respondResult(c, result, "用户信息采集完成")
}

// noteDetailHandler 笔记详情
func (s *AppServer) noteDetailHandler(c *gin.Context) {
	var req NoteDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST",
			"请求参数错误", err.Error())
		return
	}

	result := s.collectorService.NoteDetail(c.Request.Context(), &req)
	respondResult(c, result, "笔记详情采集完成")
}

// filterFieldsHandler 对任意 JSON 树应用字段白名单裁剪
func (s *AppServer) filterFieldsHandler(c *gin.Context) {
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST",
			"请求参数错误", err.Error())
		return
	}

	result := s.collectorService.FilterFields(req.Data)
	respondSuccess(c, result, "字段过滤完成")
}

// healthHandler 健康检查
func healthHandler(c *gin.Context) {
	respondSuccess(c, map[string]any{
		"status":    "healthy",
		"service":   "rednote-collector",
		"env":       configs.GetEnvironment(),
		"timestamp": time.Now().Unix(),
	}, "服务正常")
}
