package models

import (
	"time"
)

// 现金流水类型
const (
	TxTypePayday   = "payday"    // 发薪
	TxTypePassGo   = "pass_go"   // 过起点奖励
	TxTypeBuy      = "buy"       // 购买资产
	TxTypeSell     = "sell"      // 出售资产
	TxTypeTransfer = "transfer"  // 转让交易
	TxTypeCharity  = "charity"   // 慈善捐款
	TxTypeExpense  = "expense"   // 意外支出
	TxTypeCredit   = "credit"    // 信贷
	TxTypeJobLoss  = "job_loss"  // 失业扣款
)

// CashTransaction 对局现金流水表
// 记录每一次现金变动，余额字段用于审计对账
type CashTransaction struct {
	BaseModel
	RoomID      uint    `gorm:"not null;index" json:"room_id"`
	UserID      uint    `gorm:"not null;index" json:"user_id"`
	OrderNo     string  `gorm:"uniqueIndex;size:64;not null" json:"order_no"`
	Type        string  `gorm:"size:50;not null;index" json:"type"`
	Amount      int64   `gorm:"not null" json:"amount"` // 正为入账，负为出账
	BeforeCash  int64   `json:"before_cash"`
	AfterCash   int64   `json:"after_cash"`
	RefID       string  `gorm:"size:100;index" json:"ref_id"` // 关联ID（卡牌ID、对方玩家ID等）
	Description string  `gorm:"size:500" json:"description"`
	Metadata    JSONMap `gorm:"type:json" json:"metadata"`
}

// TurnRecord 回合记录表
type TurnRecord struct {
	BaseModel
	RoomID       uint      `gorm:"not null;index" json:"room_id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	TurnNumber   int       `gorm:"not null" json:"turn_number"`
	DiceValue    int       `json:"dice_value"`
	FromPosition int       `json:"from_position"`
	ToPosition   int       `json:"to_position"`
	PassedGo     bool      `gorm:"default:false" json:"passed_go"`
	EventKind    string    `gorm:"size:50" json:"event_kind"`
	CardID       string    `gorm:"size:100" json:"card_id"`
	PlayedAt     time.Time `json:"played_at"`
}

// TableName 指定CashTransaction表名
func (CashTransaction) TableName() string {
	return "cash_transactions"
}

// TableName 指定TurnRecord表名
func (TurnRecord) TableName() string {
	return "turn_records"
}

// IsIncome 检查是否为入账流水
func (t *CashTransaction) IsIncome() bool {
	return t.Amount > 0
}
