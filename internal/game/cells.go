package game

// CellLayer 轨道层
type CellLayer string

const (
	LayerOuter CellLayer = "outer" // 外圈（快车道）
	LayerInner CellLayer = "inner" // 内圈（老鼠赛跑）
)

// CellType 格子类型
type CellType string

// 外圈格子类型
const (
	CellMoney    CellType = "money"    // 投资收益
	CellBusiness CellType = "business" // 生意
	CellDream    CellType = "dream"    // 梦想
	CellLoss     CellType = "loss"     // 损失
	CellCharity  CellType = "charity"  // 慈善
)

// 内圈格子类型
const (
	CellGreenOpportunity CellType = "green_opportunity" // 机会（触发交易）
	CellPinkExpense      CellType = "pink_expense"      // 意外支出
	CellOrangeCharity    CellType = "orange_charity"    // 慈善
	CellYellowPayday     CellType = "yellow_payday"     // 发薪日
	CellBlueMarket       CellType = "blue_market"       // 市场
	CellPurpleBaby       CellType = "purple_baby"       // 生子
	CellBlackLoss        CellType = "black_loss"        // 失业
)

// CellEffects 格子效果描述
type CellEffects struct {
	Income         bool    `json:"income,omitempty"`         // 结算投资收益
	Business       bool    `json:"business,omitempty"`       // 可购买生意
	Dream          bool    `json:"dream,omitempty"`          // 梦想格
	Karma          bool    `json:"karma,omitempty"`          // 慈善格
	MonthlyIncome  int64   `json:"monthlyIncome,omitempty"`  // 生意月现金流
	CashMultiplier float64 `json:"cashMultiplier,omitempty"` // 现金增减比例（负数为损失）
}

// Cell 棋盘格子
type Cell struct {
	Position int         `json:"position"` // 全局线性位置（0起）
	Index    int         `json:"index"`    // 所在轨道内的编号（1起）
	Layer    CellLayer   `json:"layer"`
	Type     CellType    `json:"type"`
	Name     string      `json:"name"`
	Icon     string      `json:"icon"`
	Color    string      `json:"color"`
	Cost     int64       `json:"cost,omitempty"`
	Income   int64       `json:"income,omitempty"`
	Effects  CellEffects `json:"effects"`
}

// outerCellDef 外圈格子静态定义
type outerCellDef struct {
	cellType   CellType
	name       string
	icon       string
	cost       int64
	income     int64
	multiplier float64
}

// 外圈44格（快车道），顺序即棋盘顺序
var outerCellDefs = []outerCellDef{
	{CellMoney, "投资收益", "💰", 0, 0, 0},
	{CellDream, "梦想之家", "🏠", 100000, 0, 0},
	{CellBusiness, "咖啡馆", "☕", 100000, 3000, 0},
	{CellLoss, "税务审计", "🔍", 0, 0, -0.5},
	{CellBusiness, "健康中心", "🏥", 270000, 5000, 0},
	{CellDream, "南极之旅", "🧊", 150000, 0, 0},
	{CellBusiness, "移动应用", "📱", 420000, 10000, 0},
	{CellCharity, "慈善捐助", "❤️", 0, 0, 0},
	{CellBusiness, "数字营销公司", "📊", 160000, 4000, 0},
	{CellLoss, "财物失窃", "🚨", 0, 0, -1},
	{CellBusiness, "迷你酒店", "🏨", 200000, 5000, 0},
	{CellMoney, "投资收益", "💰", 0, 0, 0},
	{CellBusiness, "餐厅加盟", "🍽️", 320000, 8000, 0},
	{CellDream, "攀登高峰", "🏔️", 500000, 0, 0},
	{CellBusiness, "迷你酒店二号", "🏨", 200000, 4000, 0},
	{CellDream, "畅销书作家", "📚", 300000, 0, 0},
	{CellBusiness, "瑜伽馆", "🧘", 170000, 4500, 0},
	{CellLoss, "婚姻变故", "💔", 0, 0, -0.5},
	{CellBusiness, "洗车连锁", "🚗", 120000, 3000, 0},
	{CellDream, "地中海游艇", "⛵", 300000, 0, 0},
	{CellBusiness, "美容沙龙", "💇", 500000, 15000, 0},
	{CellDream, "环球嘉年华", "🎪", 200000, 0, 0},
	{CellMoney, "投资收益", "💰", 0, 0, 0},
	{CellBusiness, "网上商店", "🛍️", 110000, 3000, 0},
	{CellLoss, "仓库火灾", "🔥", 0, 0, 0},
	{CellDream, "静修中心", "🕯️", 500000, 0, 0},
	{CellDream, "人才扶持基金", "🎭", 300000, 0, 0},
	{CellDream, "环球航海", "⛵", 200000, 0, 0},
	{CellBusiness, "生态牧场", "🌿", 1000000, 20000, 0},
	{CellDream, "环球航海二号", "⛵", 300000, 0, 0},
	{CellBusiness, "证券交易所", "📈", 50000, 500000, 0},
	{CellDream, "私人飞机", "✈️", 1000000, 0, 0},
	{CellBusiness, "NFT平台", "🎨", 400000, 12000, 0},
	{CellMoney, "航海分红", "⛵", 200000, 0, 0},
	{CellBusiness, "语言学校", "🌍", 20000, 3000, 0},
	{CellDream, "超跑收藏", "🏎️", 1000000, 0, 0},
	{CellBusiness, "未来学校", "🚀", 300000, 10000, 0},
	{CellDream, "院线电影", "🎬", 500000, 0, 0},
	{CellLoss, "恶意收购", "⚔️", 0, 0, 0},
	{CellDream, "全球意见领袖", "👑", 1000000, 0, 0},
	{CellBusiness, "洗车连锁二号", "🚗", 120000, 3500, 0},
	{CellDream, "白色游艇", "⛵", 300000, 0, 0},
	{CellBusiness, "现金流加盟", "💸", 100000, 10000, 0},
	{CellDream, "太空飞行", "🚀", 250000, 0, 0},
}

// 内圈24格（老鼠赛跑），顺序即棋盘顺序
var innerCellTypes = []CellType{
	CellPinkExpense,
	CellGreenOpportunity,
	CellBlueMarket,
	CellOrangeCharity,
	CellYellowPayday,
	CellGreenOpportunity,
	CellBlueMarket,
	CellPinkExpense,
	CellGreenOpportunity,
	CellBlueMarket,
	CellPinkExpense,
	CellPurpleBaby,
	CellYellowPayday,
	CellGreenOpportunity,
	CellBlueMarket,
	CellGreenOpportunity,
	CellPinkExpense,
	CellGreenOpportunity,
	CellBlueMarket,
	CellBlackLoss,
	CellYellowPayday,
	CellGreenOpportunity,
	CellBlueMarket,
	CellGreenOpportunity,
}

// 格子类型对应的显示属性
var innerCellMeta = map[CellType]struct {
	name  string
	icon  string
	color string
}{
	CellGreenOpportunity: {"机会", "💼", "#00c853"},
	CellPinkExpense:      {"意外支出", "🧾", "#ff4081"},
	CellOrangeCharity:    {"慈善", "❤️", "#ff9100"},
	CellYellowPayday:     {"发薪日", "💵", "#ffd600"},
	CellBlueMarket:       {"市场", "📦", "#2979ff"},
	CellPurpleBaby:       {"添丁", "👶", "#aa00ff"},
	CellBlackLoss:        {"失业", "📉", "#212121"},
}

// 外圈格子类型对应的颜色
var outerCellColors = map[CellType]string{
	CellMoney:    "#00ff96",
	CellBusiness: "#ffd65a",
	CellDream:    "#ff6b6b",
	CellLoss:     "#ff3b3b",
	CellCharity:  "#ff69b4",
}
