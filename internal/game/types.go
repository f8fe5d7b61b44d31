package game

// DeckType 牌堆类型
type DeckType string

const (
	DeckBigDeal   DeckType = "bigDeal"   // 大买卖
	DeckSmallDeal DeckType = "smallDeal" // 小买卖
	DeckMarket    DeckType = "market"    // 市场
	DeckExpense   DeckType = "expense"   // 意外支出
)

// AllDeckTypes 所有牌堆类型（遍历顺序固定）
var AllDeckTypes = []DeckType{DeckBigDeal, DeckSmallDeal, DeckMarket, DeckExpense}

// Valid 判断牌堆类型是否合法
func (d DeckType) Valid() bool {
	switch d {
	case DeckBigDeal, DeckSmallDeal, DeckMarket, DeckExpense:
		return true
	}
	return false
}

// Card 游戏卡牌
// 抽出后内容不可变，购买时只允许盖上持有者标记
type Card struct {
	ID          string   `json:"id"`
	Deck        DeckType `json:"deck"`
	Name        string   `json:"name"`
	Icon        string   `json:"icon"`
	Description string   `json:"description"`

	// 大买卖/小买卖字段
	Cost        int64 `json:"cost,omitempty"`        // 总价
	DownPayment int64 `json:"downPayment,omitempty"` // 首付（购买时实际支付）
	Income      int64 `json:"income,omitempty"`      // 月现金流

	// 市场卡字段
	SalePrice    int64 `json:"salePrice,omitempty"`    // 出售价
	OriginalCost int64 `json:"originalCost,omitempty"` // 原始成本

	// 持有者标记（购买后盖章，弃牌时清除）
	OwnerID string `json:"ownerId,omitempty"`
}

// Clone 复制卡牌
func (c *Card) Clone() *Card {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Asset 玩家持有的资产（由购买的卡牌生成）
type Asset struct {
	ID            string `json:"id"`
	CardID        string `json:"cardId"`
	Name          string `json:"name"`
	PurchasePrice int64  `json:"purchasePrice"`
	MonthlyIncome int64  `json:"monthlyIncome"`
	Deck          string `json:"deck"`
	OriginalOwner string `json:"originalOwnerId"`
	AcquiredAt    int64  `json:"acquiredAt"`
}

// Profession 职业卡
type Profession struct {
	Name     string `json:"name"`
	Salary   int64  `json:"salary"`
	Expenses int64  `json:"expenses"` // 每月固定支出
}

// PlayerStats 每局玩家统计
type PlayerStats struct {
	DiceRolled       int   `json:"diceRolled"`
	TotalMoves       int   `json:"totalMoves"`
	TimesPassedGo    int   `json:"timesPassedGo"`
	TotalMoneyEarned int64 `json:"totalMoneyEarned"`
}

// Player 对局中的玩家
type Player struct {
	UserID        string      `json:"userId"`
	Name          string      `json:"name"`
	Cash          int64       `json:"cash"`
	Credit        int64       `json:"credit"` // 未偿还信贷
	Position      int         `json:"position"`
	Track         string      `json:"track"` // outer / inner
	Profession    *Profession `json:"profession,omitempty"`
	PassiveIncome int64       `json:"passiveIncome"`
	Children      int         `json:"children"`
	Assets        []Asset     `json:"assets"`
	Stats         PlayerStats `json:"stats"`
}

// Clone 深复制玩家
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Profession != nil {
		prof := *p.Profession
		cp.Profession = &prof
	}
	cp.Assets = make([]Asset, len(p.Assets))
	copy(cp.Assets, p.Assets)
	return &cp
}

// PaydayAmount 结算日净收入：工资+被动收入-固定支出-子女支出
func (p *Player) PaydayAmount() int64 {
	var salary, expenses int64
	if p.Profession != nil {
		salary = p.Profession.Salary
		expenses = p.Profession.Expenses
	}
	childExpenses := int64(p.Children) * 1000
	net := salary + p.PassiveIncome - expenses - childExpenses
	if net < 0 {
		return 0
	}
	return net
}

// DiceResult 掷骰结果
type DiceResult struct {
	Total  int   `json:"total"`
	Values []int `json:"values"`
}

// DealStage 交易阶段
type DealStage string

const (
	DealStageChoosingSize DealStage = "choosingSize" // 等待选择大/小买卖
	DealStageResolving    DealStage = "resolving"    // 已翻牌，等待买/弃/转让
)

// DealSize 交易规模
type DealSize string

const (
	DealSizeSmall DealSize = "small"
	DealSizeBig   DealSize = "big"
)

// DealAction 交易处理动作
type DealAction string

const (
	DealActionBuy      DealAction = "buy"
	DealActionSkip     DealAction = "skip"
	DealActionTransfer DealAction = "transfer"
	DealActionCredit   DealAction = "credit"
)

// PendingDeal 待处理交易
// 同一局内同时最多存在一笔；回合结束时未处理的交易直接弃牌
type PendingDeal struct {
	PlayerID    string     `json:"playerId"`
	Stage       DealStage  `json:"stage"`
	SizeOptions []DealSize `json:"sizeOptions,omitempty"`
	Card        *Card      `json:"card,omitempty"`
	CellID      int        `json:"cellId,omitempty"`
}

// Clone 深复制待处理交易
func (d *PendingDeal) Clone() *PendingDeal {
	if d == nil {
		return nil
	}
	cp := *d
	cp.Card = d.Card.Clone()
	cp.SizeOptions = append([]DealSize(nil), d.SizeOptions...)
	return &cp
}
