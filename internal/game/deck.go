package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/wfunc/cashflow-game/internal/errors"
	"go.uber.org/zap"
)

// RandomSource 随机数来源接口（测试时注入固定序列）
type RandomSource interface {
	// Intn 返回 [0, n) 内的随机整数
	Intn(n int) int
}

// mathRandomSource 默认随机数来源
type mathRandomSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *mathRandomSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// NewRandomSource 创建默认随机数来源
func NewRandomSource() RandomSource {
	return &mathRandomSource{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// pile 单一牌堆：摸牌堆 + 弃牌堆
type pile struct {
	draw    []*Card
	discard []*Card
	total   int // 本局该类型的卡牌总数，洗牌弃牌都不会改变
}

// DeckManager 牌堆管理器
// 管理四个独立牌堆；摸牌堆耗尽时自动把弃牌堆洗回去
type DeckManager struct {
	mu     sync.Mutex
	piles  map[DeckType]*pile
	random RandomSource
	logger *zap.Logger
}

// NewDeckManager 创建牌堆管理器并洗开全部牌堆
func NewDeckManager(logger *zap.Logger) *DeckManager {
	return NewDeckManagerWithSource(logger, NewRandomSource())
}

// NewDeckManagerWithSource 使用指定随机来源创建牌堆管理器
func NewDeckManagerWithSource(logger *zap.Logger, random RandomSource) *DeckManager {
	cards := make(map[DeckType][]*Card, len(AllDeckTypes))
	for _, deckType := range AllDeckTypes {
		cards[deckType] = BuildDeck(deckType)
	}
	return NewDeckManagerFromCards(logger, random, cards)
}

// NewDeckManagerFromCards 使用给定卡牌初始化牌堆管理器（恢复对局或测试用）
func NewDeckManagerFromCards(logger *zap.Logger, random RandomSource, cards map[DeckType][]*Card) *DeckManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &DeckManager{
		piles:  make(map[DeckType]*pile),
		random: random,
		logger: logger,
	}

	for _, deckType := range AllDeckTypes {
		deck := cards[deckType]
		m.piles[deckType] = &pile{
			draw:  deck,
			total: len(deck),
		}
		m.shuffleLocked(deckType)
	}

	m.logger.Info("牌堆初始化完成",
		zap.Int("bigDeal", m.piles[DeckBigDeal].total),
		zap.Int("smallDeal", m.piles[DeckSmallDeal].total),
		zap.Int("market", m.piles[DeckMarket].total),
		zap.Int("expense", m.piles[DeckExpense].total))

	return m
}

// Shuffle 洗指定牌堆的摸牌堆（Fisher-Yates）
func (m *DeckManager) Shuffle(deckType DeckType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.piles[deckType]; !ok {
		return errors.Newf(errors.ErrInvalidDeckType, "未知牌堆: %s", deckType)
	}
	m.shuffleLocked(deckType)
	return nil
}

// shuffleLocked 调用方必须持有锁
func (m *DeckManager) shuffleLocked(deckType DeckType) {
	deck := m.piles[deckType].draw
	for i := len(deck) - 1; i > 0; i-- {
		j := m.random.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	m.logger.Debug("洗牌完成",
		zap.String("deck", string(deckType)),
		zap.Int("cards", len(deck)))
}

// Draw 从指定牌堆摸一张牌
// 摸牌堆为空时先把弃牌堆洗回去再摸；两堆都空返回 ErrDeckExhausted
func (m *DeckManager) Draw(deckType DeckType) (*Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.piles[deckType]
	if !ok {
		return nil, errors.Newf(errors.ErrInvalidDeckType, "未知牌堆: %s", deckType)
	}

	if len(p.draw) == 0 {
		if len(p.discard) == 0 {
			return nil, errors.Newf(errors.ErrDeckExhausted, "%s牌堆已空", deckType)
		}
		// 弃牌堆洗回摸牌堆
		p.draw = p.discard
		p.discard = nil
		for i := range p.draw {
			p.draw[i].OwnerID = ""
		}
		m.shuffleLocked(deckType)
		m.logger.Info("弃牌堆洗回摸牌堆",
			zap.String("deck", string(deckType)),
			zap.Int("cards", len(p.draw)))
	}

	card := p.draw[len(p.draw)-1]
	p.draw = p.draw[:len(p.draw)-1]

	m.logger.Debug("摸牌",
		zap.String("deck", string(deckType)),
		zap.String("card", card.Name),
		zap.Int("remaining", len(p.draw)))

	return card, nil
}

// Discard 把卡牌放入所属牌堆的弃牌堆，同时清除持有者标记
func (m *DeckManager) Discard(card *Card) error {
	if card == nil {
		return errors.New(errors.ErrInvalidParam, "卡牌为空")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.piles[card.Deck]
	if !ok {
		return errors.Newf(errors.ErrInvalidDeckType, "未知牌堆: %s", card.Deck)
	}

	card.OwnerID = ""
	p.discard = append(p.discard, card)

	m.logger.Debug("弃牌",
		zap.String("deck", string(card.Deck)),
		zap.String("card", card.Name),
		zap.Int("discarded", len(p.discard)))

	return nil
}

// Counts 返回指定牌堆的摸牌堆/弃牌堆数量
func (m *DeckManager) Counts(deckType DeckType) (drawCount, discardCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.piles[deckType]
	if !ok {
		return 0, 0
	}
	return len(p.draw), len(p.discard)
}

// Total 返回指定牌堆本局的卡牌总数
func (m *DeckManager) Total(deckType DeckType) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.piles[deckType]
	if !ok {
		return 0
	}
	return p.total
}

// InPlay 返回已摸出且尚未弃掉的卡牌数
func (m *DeckManager) InPlay(deckType DeckType) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.piles[deckType]
	if !ok {
		return 0
	}
	return p.total - len(p.draw) - len(p.discard)
}

// DeckInfo 牌堆概览
type DeckInfo struct {
	Remaining int `json:"remaining"`
	Discarded int `json:"discarded"`
	Total     int `json:"total"`
}

// Info 返回全部牌堆的概览
func (m *DeckManager) Info() map[DeckType]DeckInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	info := make(map[DeckType]DeckInfo, len(m.piles))
	for deckType, p := range m.piles {
		info[deckType] = DeckInfo{
			Remaining: len(p.draw),
			Discarded: len(p.discard),
			Total:     p.total,
		}
	}
	return info
}
