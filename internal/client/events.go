package client

import "sync"

// EventType 引擎对外发布的领域事件
type EventType string

const (
	EventChange       EventType = "change"       // 快照更新
	EventRolled       EventType = "rolled"       // 掷骰完成
	EventDealPending  EventType = "dealPending"  // 出现待处理交易
	EventDealResolved EventType = "dealResolved" // 交易已处理
	EventTurnStarted  EventType = "turnStarted"  // 本地玩家回合开始
	EventTurnEnded    EventType = "turnEnded"    // 本地玩家回合结束
	EventCellEvent    EventType = "cellEvent"    // 落格事件
)

// Handler 事件回调
type Handler func(payload interface{})

// Emitter 同步事件分发器
// 回调在发布方的goroutine里执行，订阅方不要在回调里做阻塞操作
type Emitter struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewEmitter 创建事件分发器
func NewEmitter() *Emitter {
	return &Emitter{
		handlers: make(map[EventType][]Handler),
	}
}

// On 订阅事件
func (e *Emitter) On(event EventType, handler Handler) {
	if handler == nil {
		return
	}
	e.mu.Lock()
	e.handlers[event] = append(e.handlers[event], handler)
	e.mu.Unlock()
}

// Emit 发布事件
func (e *Emitter) Emit(event EventType, payload interface{}) {
	e.mu.RLock()
	handlers := append([]Handler(nil), e.handlers[event]...)
	e.mu.RUnlock()

	for _, handler := range handlers {
		handler(payload)
	}
}
