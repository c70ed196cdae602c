package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// 流式事件的哨兵类型
// 流序列固定为：stream_start → 业务事件... → stream_end
const (
	// EventStreamStart 流开始标记（携带stream_id）
	EventStreamStart = "stream_start"
	// EventStreamEnd 流结束标记
	EventStreamEnd = "stream_end"
)

// Event 流式事件
// 网关不解释业务事件的结构，只要求是JSON对象
type Event map[string]interface{}

// Type 返回事件的type字段（不存在时返回空串）
func (e Event) Type() string {
	if t, ok := e["type"].(string); ok {
		return t
	}
	return ""
}

// NewStreamStartEvent 创建流开始事件
func NewStreamStartEvent(streamID string) Event {
	return Event{"type": EventStreamStart, "stream_id": streamID}
}

// NewStreamEndEvent 创建流结束事件
func NewStreamEndEvent(streamID string) Event {
	return Event{"type": EventStreamEnd, "stream_id": streamID}
}

// ssePrefix SSE数据行前缀
const ssePrefix = "data:"

// EncodeSSEFrame 将事件编码为一行SSE帧（"data: {...}\n\n"）
func EncodeSSEFrame(event Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal stream event: %w", err)
	}
	return []byte(fmt.Sprintf("%s %s\n\n", ssePrefix, payload)), nil
}

// DecodeSSELine 解析一行SSE数据
// 非data行返回ok=false；data行内容非法返回错误，由调用方决定跳过策略
func DecodeSSELine(line string) (Event, bool, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ssePrefix) {
		return nil, false, nil
	}
	raw := strings.TrimSpace(strings.TrimPrefix(line, ssePrefix))
	var event Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return nil, true, fmt.Errorf("decode SSE event: %w", err)
	}
	return event, true, nil
}
