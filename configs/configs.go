package configs

import "time"

// Environment API 环境
type Environment string

const (
	EnvChina  Environment = "中国区" // 中国区节点，国内访问更快
	EnvGlobal Environment = "全球区" // 全球区节点，适合境外部署
)

// envBaseURLs 各环境的接口基础地址
var envBaseURLs = map[Environment]string{
	EnvChina:  "http://47.117.133.51:30015",
	EnvGlobal: "https://api.justoneapi.com",
}

// 请求控制参数：
// - RequestPreDelay：每次请求前的固定等待，避免触发服务端限流
// - RequestTimeout：单次请求超时（75s，略微上调以降低“网络错误”概率）
// - RequestRetryAttempts：网络/5xx/429/无效JSON时的最大尝试次数
// - RequestBackoffBase / RequestBackoffJitter：指数退避基线与随机抖动
const (
	RequestPreDelay      = 800 * time.Millisecond
	RequestTimeout       = 75 * time.Second
	RequestRetryAttempts = 3
	RequestBackoffBase   = 600 * time.Millisecond
	RequestBackoffJitter = 400 * time.Millisecond
)

// MaxPagesCeiling 分页安全上限：即使调用方不设页数上限，
// 也保证在服务端永远返回 has_more=true 时能够终止。
const MaxPagesCeiling = 100

var (
	environment = EnvChina
	token       = ""
)

// InitEnvironment 设置 API 环境（"中国区"/"全球区"），未知值回退到中国区
func InitEnvironment(env string) {
	e := Environment(env)
	if _, ok := envBaseURLs[e]; !ok {
		e = EnvChina
	}
	environment = e
}

// GetEnvironment 获取当前环境
func GetEnvironment() Environment {
	return environment
}

// GetBaseURL 获取当前环境的接口基础地址
func GetBaseURL() string {
	return envBaseURLs[environment]
}

// BaseURLOf 获取指定环境的接口基础地址，未知环境回退到中国区
func BaseURLOf(env Environment) string {
	if u, ok := envBaseURLs[env]; ok {
		return u
	}
	return envBaseURLs[EnvChina]
}

func SetToken(t string) {
	token = t
}

func GetToken() string {
	return token
}
