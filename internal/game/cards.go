package game

import "fmt"

// cardTemplate 卡牌模板，按模板循环生成整副牌堆
type cardTemplate struct {
	name         string
	icon         string
	description  string
	cost         int64
	downPayment  int64
	income       int64
	salePrice    int64
	originalCost int64
}

// 大买卖模板（整堆24张，每种4张）
var bigDealTemplates = []cardTemplate{
	{name: "出租公寓", icon: "🏠", description: "购入出租公寓", cost: 50000, downPayment: 10000, income: 5000},
	{name: "连锁餐厅", icon: "🏢", description: "收购连锁餐厅", cost: 100000, downPayment: 20000, income: 10000},
	{name: "蓝筹股票", icon: "📈", description: "大额股票投资", cost: 25000, downPayment: 25000, income: 2500},
	{name: "国债组合", icon: "📊", description: "国债组合投资", cost: 15000, downPayment: 15000, income: 1500},
	{name: "黄金储备", icon: "🥇", description: "实物黄金投资", cost: 30000, downPayment: 30000, income: 3000},
	{name: "数字货币", icon: "₿", description: "数字货币投资", cost: 20000, downPayment: 20000, income: 2000},
}

// 小买卖模板（整堆32张，每种4张）
var smallDealTemplates = []cardTemplate{
	{name: "零股股票", icon: "📈", description: "小额股票投资", cost: 1000, downPayment: 1000, income: 100},
	{name: "短期债券", icon: "📊", description: "短期债券", cost: 500, downPayment: 500, income: 50},
	{name: "定期存款", icon: "💰", description: "银行定期存款", cost: 2000, downPayment: 2000, income: 200},
	{name: "指数基金", icon: "🏦", description: "指数基金份额", cost: 1500, downPayment: 1500, income: 150},
	{name: "数字货币", icon: "₿", description: "小额数字货币", cost: 800, downPayment: 800, income: 80},
	{name: "黄金饰品", icon: "🥇", description: "小额黄金投资", cost: 1200, downPayment: 1200, income: 120},
	{name: "车位出租", icon: "🏠", description: "购入车位出租", cost: 3000, downPayment: 3000, income: 300},
	{name: "街边小店", icon: "🏪", description: "入股街边小店", cost: 2500, downPayment: 2500, income: 250},
}

// 市场模板（整堆24张，每种4张）
var marketTemplates = []cardTemplate{
	{name: "限时收购", icon: "🎯", description: "买家限时收购资产", salePrice: 5000, originalCost: 4500},
	{name: "清仓甩卖", icon: "🏷️", description: "资产清仓机会", salePrice: 3000, originalCost: 2700},
	{name: "意外分红", icon: "🎁", description: "持仓意外分红", salePrice: 1000, originalCost: 0},
	{name: "折价出手", icon: "💸", description: "折价出售资产", salePrice: 2000, originalCost: 1800},
	{name: "买家上门", icon: "🤝", description: "买家主动上门", salePrice: 500, originalCost: 0},
	{name: "返现活动", icon: "💳", description: "交易返现", salePrice: 1000, originalCost: 900},
}

// 意外支出模板（整堆24张，每种4张）
var expenseTemplates = []cardTemplate{
	{name: "个税补缴", icon: "📋", description: "补缴个人所得税", cost: 2000},
	{name: "保险续费", icon: "🛡️", description: "年度保险续费", cost: 1500},
	{name: "就医支出", icon: "🏥", description: "突发就医支出", cost: 1000},
	{name: "子女学费", icon: "🎓", description: "子女教育支出", cost: 3000},
	{name: "房屋维修", icon: "🔧", description: "房屋维修支出", cost: 2500},
	{name: "换车支出", icon: "🚗", description: "车辆更换支出", cost: 4000},
}

// 各牌堆的整堆张数
var deckSizes = map[DeckType]int{
	DeckBigDeal:   24,
	DeckSmallDeal: 32,
	DeckMarket:    24,
	DeckExpense:   24,
}

// deckTemplates 牌堆类型到模板表的映射
var deckTemplates = map[DeckType][]cardTemplate{
	DeckBigDeal:   bigDealTemplates,
	DeckSmallDeal: smallDealTemplates,
	DeckMarket:    marketTemplates,
	DeckExpense:   expenseTemplates,
}

// BuildDeck 按静态模板生成一副完整牌堆
// 生成过程是确定性的，洗牌才引入随机
func BuildDeck(deckType DeckType) []*Card {
	templates, ok := deckTemplates[deckType]
	if !ok {
		return nil
	}

	size := deckSizes[deckType]
	cards := make([]*Card, 0, size)
	for i := 0; i < size; i++ {
		t := templates[i%len(templates)]
		cards = append(cards, &Card{
			ID:           fmt.Sprintf("%s_%d", deckType, i+1),
			Deck:         deckType,
			Name:         t.name,
			Icon:         t.icon,
			Description:  t.description,
			Cost:         t.cost,
			DownPayment:  t.downPayment,
			Income:       t.income,
			SalePrice:    t.salePrice,
			OriginalCost: t.originalCost,
		})
	}
	return cards
}
