package rednote

import "github.com/google/uuid"

// EndpointStats 单个接口路径的耗时统计
type EndpointStats struct {
	Count  int   `json:"次数"`
	MinMS  int64 `json:"最短耗时ms"`
	MaxMS  int64 `json:"最长耗时ms"`
	MeanMS int64 `json:"平均耗时ms"`
}

// VersionChoice 一次逻辑调用最终选择的接口版本。
// Prefer 与 Fallback 互斥：首选版本记录 Prefer，回退时再追加一条 Fallback。
type VersionChoice struct {
	API        string `json:"api"`
	Prefer     string `json:"prefer,omitempty"`
	Fallback   string `json:"fallback,omitempty"`
	ResultCode int    `json:"result_code"`
}

// RunError 采集过程中某一步的结构化错误
type RunError struct {
	Step  string         `json:"步骤"`
	Error *ResponseError `json:"错误"`
}

// RunMetrics 单次采集运行的诊断信息。
// 每次运行持有独立实例，随结果一并返回，绝不跨运行共享。
// 运行为单线程顺序执行，无需加锁。
type RunMetrics struct {
	RunID          string `json:"run_id"`
	durations      map[string][]int64
	VersionChoices []VersionChoice `json:"版本选择"`
	Errors         []RunError      `json:"错误列表,omitempty"`
}

func NewRunMetrics() *RunMetrics {
	return &RunMetrics{
		RunID:     uuid.NewString(),
		durations: make(map[string][]int64),
	}
}

// RecordDuration 记录一次请求耗时
func (m *RunMetrics) RecordDuration(path string, ms int64) {
	m.durations[path] = append(m.durations[path], ms)
}

// RecordVersionChoice 追加一条版本选择记录
func (m *RunMetrics) RecordVersionChoice(vc VersionChoice) {
	m.VersionChoices = append(m.VersionChoices, vc)
}

// RecordError 追加一条步骤错误
func (m *RunMetrics) RecordError(step string, respErr *ResponseError) {
	if respErr == nil {
		respErr = &ResponseError{Type: "unknown"}
	}
	m.Errors = append(m.Errors, RunError{Step: step, Error: respErr})
}

// Durations 汇总各接口的耗时直方（次数/最短/最长/平均）
func (m *RunMetrics) Durations() map[string]EndpointStats {
	out := make(map[string]EndpointStats, len(m.durations))
	for path, arr := range m.durations {
		if len(arr) == 0 {
			continue
		}
		stats := EndpointStats{Count: len(arr), MinMS: arr[0], MaxMS: arr[0]}
		var sum int64
		for _, d := range arr {
			if d < stats.MinMS {
				stats.MinMS = d
			}
			if d > stats.MaxMS {
				stats.MaxMS = d
			}
			sum += d
		}
		stats.MeanMS = sum / int64(len(arr))
		out[path] = stats
	}
	return out
}
