package game

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// fixedSource 固定随机序列（保持原顺序）
type fixedSource struct{}

func (fixedSource) Intn(n int) int { return 0 }

// DeckTestSuite 牌堆管理器测试套件
type DeckTestSuite struct {
	suite.Suite
	manager *DeckManager
}

func (suite *DeckTestSuite) SetupTest() {
	suite.manager = NewDeckManager(zap.NewNop())
}

// 测试初始牌堆数量
func (suite *DeckTestSuite) TestInitialCounts() {
	expected := map[DeckType]int{
		DeckBigDeal:   24,
		DeckSmallDeal: 32,
		DeckMarket:    24,
		DeckExpense:   24,
	}
	for deckType, total := range expected {
		drawCount, discardCount := suite.manager.Counts(deckType)
		suite.Equal(total, drawCount, "牌堆 %s 初始摸牌堆数量", deckType)
		suite.Equal(0, discardCount, "牌堆 %s 初始弃牌堆数量", deckType)
		suite.Equal(total, suite.manager.Total(deckType))
	}
}

// 测试洗牌保持卡牌集合不变
func (suite *DeckTestSuite) TestShufflePreservesCards() {
	seen := make(map[string]bool)
	total := suite.manager.Total(DeckSmallDeal)

	suite.Require().NoError(suite.manager.Shuffle(DeckSmallDeal))

	for i := 0; i < total; i++ {
		card, err := suite.manager.Draw(DeckSmallDeal)
		suite.Require().NoError(err)
		suite.Require().NotNil(card)
		suite.False(seen[card.ID], "卡牌 %s 出现重复", card.ID)
		seen[card.ID] = true
	}
	suite.Len(seen, total)
}

// 测试摸牌与守恒不变量
func (suite *DeckTestSuite) TestDrawConservation() {
	total := suite.manager.Total(DeckMarket)

	card, err := suite.manager.Draw(DeckMarket)
	suite.Require().NoError(err)

	drawCount, discardCount := suite.manager.Counts(DeckMarket)
	suite.Equal(total-1, drawCount)
	suite.Equal(0, discardCount)
	suite.Equal(1, suite.manager.InPlay(DeckMarket))

	suite.Require().NoError(suite.manager.Discard(card))
	drawCount, discardCount = suite.manager.Counts(DeckMarket)
	suite.Equal(total-1, drawCount)
	suite.Equal(1, discardCount)
	suite.Equal(0, suite.manager.InPlay(DeckMarket))

	// 任意时刻：摸牌堆 + 弃牌堆 + 在场 == 总数
	suite.Equal(total, drawCount+discardCount+suite.manager.InPlay(DeckMarket))
}

// 测试弃牌清除持有者标记
func (suite *DeckTestSuite) TestDiscardClearsOwner() {
	card, err := suite.manager.Draw(DeckBigDeal)
	suite.Require().NoError(err)

	card.OwnerID = "u1"
	suite.Require().NoError(suite.manager.Discard(card))
	suite.Empty(card.OwnerID)
}

// 测试无效牌堆类型
func (suite *DeckTestSuite) TestInvalidDeckType() {
	_, err := suite.manager.Draw(DeckType("bogus"))
	suite.Error(err)
	suite.Error(suite.manager.Shuffle(DeckType("bogus")))
	suite.Error(suite.manager.Discard(nil))
}

func TestDeckTestSuite(t *testing.T) {
	suite.Run(t, new(DeckTestSuite))
}

// 三张牌场景：摸两张、弃两张、摸一张、再摸触发弃牌堆洗回
func TestDrawReshuffleScenario(t *testing.T) {
	cards := map[DeckType][]*Card{
		DeckSmallDeal: {
			{ID: "A", Deck: DeckSmallDeal, Name: "A"},
			{ID: "B", Deck: DeckSmallDeal, Name: "B"},
			{ID: "C", Deck: DeckSmallDeal, Name: "C"},
		},
	}
	m := NewDeckManagerFromCards(zap.NewNop(), fixedSource{}, cards)

	first, err := m.Draw(DeckSmallDeal)
	if err != nil {
		t.Fatalf("第一次摸牌失败: %v", err)
	}
	second, err := m.Draw(DeckSmallDeal)
	if err != nil {
		t.Fatalf("第二次摸牌失败: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("摸出两张相同的牌: %s", first.ID)
	}

	drawCount, discardCount := m.Counts(DeckSmallDeal)
	if drawCount != 1 || discardCount != 0 {
		t.Fatalf("摸两张后数量错误: draw=%d discard=%d", drawCount, discardCount)
	}

	if err := m.Discard(first); err != nil {
		t.Fatalf("弃牌失败: %v", err)
	}
	if err := m.Discard(second); err != nil {
		t.Fatalf("弃牌失败: %v", err)
	}

	third, err := m.Draw(DeckSmallDeal)
	if err != nil {
		t.Fatalf("第三次摸牌失败: %v", err)
	}
	if third.ID == first.ID || third.ID == second.ID {
		t.Fatalf("第三张应是摸牌堆剩余的那张, 实际: %s", third.ID)
	}

	// 第四次摸牌触发弃牌堆洗回（两张）
	fourth, err := m.Draw(DeckSmallDeal)
	if err != nil {
		t.Fatalf("第四次摸牌应触发洗回, 实际失败: %v", err)
	}
	if fourth.ID != first.ID && fourth.ID != second.ID {
		t.Fatalf("第四张应来自弃牌堆, 实际: %s", fourth.ID)
	}
	drawCount, discardCount = m.Counts(DeckSmallDeal)
	if drawCount != 1 || discardCount != 0 {
		t.Fatalf("洗回后数量错误: draw=%d discard=%d", drawCount, discardCount)
	}
}

// 两堆都空时返回DeckExhausted且不伪造卡牌
func TestDrawExhausted(t *testing.T) {
	cards := map[DeckType][]*Card{
		DeckExpense: {{ID: "X", Deck: DeckExpense, Name: "X"}},
	}
	m := NewDeckManagerFromCards(zap.NewNop(), fixedSource{}, cards)

	if _, err := m.Draw(DeckExpense); err != nil {
		t.Fatalf("摸最后一张失败: %v", err)
	}

	// 卡牌在场未弃，两堆皆空
	card, err := m.Draw(DeckExpense)
	if card != nil {
		t.Fatalf("耗尽时不应返回卡牌: %v", card)
	}
	if err == nil {
		t.Fatal("耗尽时应返回错误")
	}

	drawCount, discardCount := m.Counts(DeckExpense)
	if drawCount != 0 || discardCount != 0 {
		t.Fatalf("耗尽后两堆应保持为空: draw=%d discard=%d", drawCount, discardCount)
	}
}
