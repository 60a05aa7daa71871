// Package notify 提供订单事件通知。
// 订单确认、积分变动等事件通过Sink发出，
// 供下游（邮件、营销、数据分析）消费。
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// 事件类型
const (
	EventCartItemAdded   = "cart.item_added"
	EventCartItemRemoved = "cart.item_removed"
	EventOrderConfirmed  = "order.confirmed"
	EventPointsEarned    = "loyalty.points_earned"
	EventPointsRedeemed  = "loyalty.points_redeemed"
)

// Event 表示一个业务事件
type Event struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}

// NewEvent 创建事件
func NewEvent(eventType string, payload map[string]interface{}) *Event {
	return &Event{
		Type:       eventType,
		OccurredAt: time.Now(),
		Payload:    payload,
	}
}

// Sink 定义事件通知接口。
// 通知是尽力而为的：发送失败不应影响主业务流程，
// 由实现自行记录失败。
type Sink interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// LogSink 将事件写入结构化日志（开发环境或MQ不可用时的降级实现）
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink 创建日志通知实例
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Publish 记录事件日志
func (s *LogSink) Publish(ctx context.Context, event *Event) error {
	s.logger.Info("event published",
		zap.String("type", event.Type),
		zap.Time("occurred_at", event.OccurredAt),
		zap.Any("payload", event.Payload),
	)
	return nil
}

// Close 关闭
func (s *LogSink) Close() error {
	return nil
}
