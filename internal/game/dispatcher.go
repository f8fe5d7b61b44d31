package game

// EventKind 格子事件类型
// 落子后由格子类型映射得到，决定由哪个下游模块处理
type EventKind string

const (
	EventReceiveSalary EventKind = "receive_salary" // 发薪
	EventCharity       EventKind = "charity"        // 慈善
	EventCardDraw      EventKind = "card_draw"      // 翻牌（机会或意外支出）
	EventMarketAction  EventKind = "market_action"  // 市场
	EventDreamAction   EventKind = "dream_action"   // 梦想
	EventBabyBorn      EventKind = "baby_born"      // 添丁
	EventJobLoss       EventKind = "job_loss"       // 失业
	EventNeutral       EventKind = "neutral"        // 无事件
)

// eventByCellType 格子类型到事件的固定映射
var eventByCellType = map[CellType]EventKind{
	CellYellowPayday:     EventReceiveSalary,
	CellCharity:          EventCharity,
	CellOrangeCharity:    EventCharity,
	CellGreenOpportunity: EventCardDraw,
	CellPinkExpense:      EventCardDraw,
	CellBlueMarket:       EventMarketAction,
	CellDream:            EventDreamAction,
	CellPurpleBaby:       EventBabyBorn,
	CellBlackLoss:        EventJobLoss,
}

// DispatchCell 把落子格子映射为事件类型
// 纯查表，不产生任何副作用；未知类型一律视为无事件
func DispatchCell(cell *Cell) EventKind {
	if cell == nil {
		return EventNeutral
	}
	if kind, ok := eventByCellType[cell.Type]; ok {
		return kind
	}
	return EventNeutral
}

// CellEvent 落子事件负载
type CellEvent struct {
	Kind     EventKind `json:"kind"`
	CellType CellType  `json:"cellType"`
	PlayerID string    `json:"playerId"`
	Cell     *Cell     `json:"cell"`
	Position int       `json:"position"`
}
