package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/xpzouying/rednote-collector/configs"
)

func main() {
	var (
		env   string
		token string // Just One API 的访问 token
		port  string
	)
	flag.StringVar(&env, "env", "", "API 环境: 中国区(默认)/全球区")
	flag.StringVar(&token, "token", "", "Just One API token")
	flag.StringVar(&port, "port", ":18060", "端口")
	flag.Parse()

	if len(token) == 0 {
		token = os.Getenv("JOA_TOKEN")
	}
	if len(env) == 0 {
		env = os.Getenv("JOA_ENV")
	}
	if len(token) == 0 {
		logrus.Fatal("缺少 token：请通过 -token 参数或 JOA_TOKEN 环境变量提供")
	}

	configs.InitEnvironment(env)
	configs.SetToken(token)

	// 初始化服务
	collectorService := NewCollectorService()

	// 创建并启动应用服务器
	appServer := NewAppServer(collectorService)
	if err := appServer.Start(port); err != nil {
		logrus.Fatalf("failed to run server: %v", err)
	}
}
