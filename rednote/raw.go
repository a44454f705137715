package rednote

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RawResponse 服务端响应信封：{code, message, data}。
// data 的结构随接口版本变化，保持为动态树交给提取层处理。
type RawResponse struct {
	Code      int            `json:"code"`
	Message   string         `json:"message"`
	MessageCN string         `json:"message_cn,omitempty"`
	Data      any            `json:"data"`
	Error     *ResponseError `json:"error,omitempty"`
}

// ResponseError 失败响应上附加的结构化错误
type ResponseError struct {
	Type  ErrorType     `json:"type"`
	Debug *RequestDebug `json:"debug,omitempty"`
}

// DataMap data 为对象时返回其键值树，否则返回 nil
func (r *RawResponse) DataMap() map[string]any {
	m, _ := r.Data.(map[string]any)
	return m
}

// decodeRawResponse 解析响应体；解析失败返回 nil（调用方按 invalid_json 处理）
func decodeRawResponse(body []byte) *RawResponse {
	var resp RawResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}
	return &resp
}

// ---------------- 动态树的宽容取值 ----------------
//
// 服务端不同版本对同一字段的类型并不稳定（数字/字符串混用），
// 这里统一做兜底转换：字符串用空串、数值用 0、布尔用 false。

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		// JSON 数字统一解析为 float64，整数值按整数输出，带小数的保留精度
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func asInt(v any) int64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return int64(t)
	case int:
		return int64(t)
	case int64:
		return t
	case json.Number:
		n, _ := t.Int64()
		return n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

func asBool(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "y":
			return true
		}
	}
	return false
}

func getMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	sub, _ := m[key].(map[string]any)
	return sub
}

func getList(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	arr, _ := m[key].([]any)
	return arr
}

func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	return asString(m[key])
}

func getInt(m map[string]any, key string) int64 {
	if m == nil {
		return 0
	}
	return asInt(m[key])
}

func getBool(m map[string]any, key string) bool {
	if m == nil {
		return false
	}
	return asBool(m[key])
}

// firstString 按候选键顺序取第一个非空字符串
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := getString(m, k); s != "" {
			return s
		}
	}
	return ""
}

// firstInt 按候选键顺序取第一个非零数值。
// 不同版本对计数字段的命名不一致（如 shared_count/share_count/forward_count），
// 以首个非零值为准。
func firstInt(m map[string]any, keys ...string) int64 {
	for _, k := range keys {
		if n := getInt(m, k); n != 0 {
			return n
		}
	}
	return 0
}
