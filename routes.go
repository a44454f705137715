package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// setupRoutes 设置路由配置
func setupRoutes(appServer *AppServer) *gin.Engine {
	// 设置 Gin 模式
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// 添加中间件
	router.Use(errorHandlingMiddleware())
	router.Use(corsMiddleware())

	// 健康检查
	router.GET("/health", healthHandler)

	// API 路由组
	api := router.Group("/api/v1")
	{
		api.POST("/notes/search", appServer.searchNotesHandler)
		api.POST("/notes/detail", appServer.noteDetailHandler)
		api.POST("/notes/comments", appServer.noteCommentsHandler)
		api.POST("/user/notes", appServer.userNotesHandler)
		api.POST("/user/info", appServer.userInfoHandler)
		api.POST("/filter", appServer.filterFieldsHandler)
	}

	return router
}

// errorHandlingMiddleware 把 handler 中记录的错误统一落日志
func errorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, e := range c.Errors {
			logrus.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, e.Err)
		}
	}
}

// corsMiddleware 允许跨域访问
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
