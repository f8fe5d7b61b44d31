package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/cashflow-game/internal/config"
	"github.com/wfunc/cashflow-game/internal/errors"
	"github.com/wfunc/cashflow-game/internal/game"
	"github.com/wfunc/cashflow-game/internal/models"
	"github.com/wfunc/cashflow-game/internal/repository"
	"github.com/wfunc/cashflow-game/internal/utils"
	"go.uber.org/zap"
)

// 对局阶段（服务端权威）
const (
	phaseRolling = "rolling" // 等待掷骰
	phaseMoved   = "moved"   // 已移动，等待结束回合
)

// 默认职业：工资2000，固定支出1800
var defaultProfession = game.Profession{
	Name:     "工程师",
	Salary:   2000,
	Expenses: 1800,
}

// gameSession 单个房间的对局运行态
// 所有读写都要持有锁；快照对外永远是深拷贝
type gameSession struct {
	mu           sync.Mutex
	snapshot     *game.Snapshot
	decks        *game.DeckManager
	topo         *game.Topology
	random       game.RandomSource
	turnDeadline time.Time
	turnNumber   int
	moved        bool // 本回合是否已移动
}

// gameService 对局服务实现
type gameService struct {
	mu          sync.RWMutex
	sessions    map[uint]*gameSession
	roomRepo    repository.RoomRepository
	playerRepo  repository.RoomPlayerRepository
	txRepo      repository.CashTransactionRepository
	turnRepo    repository.TurnRecordRepository
	broadcaster StateBroadcaster
	gameCfg     *config.GameConfig
	random      game.RandomSource
	log         *zap.Logger
}

// NewGameService 创建对局服务
func NewGameService(
	roomRepo repository.RoomRepository,
	playerRepo repository.RoomPlayerRepository,
	txRepo repository.CashTransactionRepository,
	turnRepo repository.TurnRecordRepository,
	broadcaster StateBroadcaster,
	gameCfg *config.GameConfig,
	random game.RandomSource,
	log *zap.Logger,
) GameService {
	if random == nil {
		random = game.NewRandomSource()
	}
	return &gameService{
		sessions:    make(map[uint]*gameSession),
		roomRepo:    roomRepo,
		playerRepo:  playerRepo,
		txRepo:      txRepo,
		turnRepo:    turnRepo,
		broadcaster: broadcaster,
		gameCfg:     gameCfg,
		random:      random,
		log:         log,
	}
}

// Start 开始对局
// 把房间座位转换为对局玩家，全员落在内圈起点
func (s *gameService) Start(ctx context.Context, roomID uint) (*game.Snapshot, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.IsPlaying() {
		return s.State(ctx, roomID)
	}

	seats, err := s.playerRepo.FindByRoomID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(seats) < 2 {
		return nil, errors.New(errors.ErrInvalidParam, "至少需要2名玩家才能开始")
	}

	topo := game.NewTopology()
	innerStart := topo.OuterSize() // 内圈起点的全局位置

	players := make([]game.Player, 0, len(seats))
	for _, seat := range seats {
		name := fmt.Sprintf("玩家%d", seat.UserID)
		if seat.User != nil {
			name = seat.User.Nickname
		}
		prof := defaultProfession
		players = append(players, game.Player{
			UserID:     fmt.Sprint(seat.UserID),
			Name:       name,
			Cash:       s.gameCfg.StartingCash,
			Position:   innerStart,
			Track:      "inner",
			Profession: &prof,
			Assets:     []game.Asset{},
		})
	}

	session := &gameSession{
		snapshot: &game.Snapshot{
			RoomID:         fmt.Sprint(roomID),
			Status:         models.RoomStatusPlaying,
			ActivePlayerID: players[0].UserID,
			ActiveIndex:    0,
			Phase:          phaseRolling,
			Players:        players,
			TurnTime:       int(s.gameCfg.TurnTime.Seconds()),
		},
		decks:        game.NewDeckManagerWithSource(s.log.Named("deck"), s.random),
		topo:         topo,
		random:       s.random,
		turnDeadline: time.Now().Add(s.gameCfg.TurnTime),
		turnNumber:   1,
	}

	s.mu.Lock()
	s.sessions[roomID] = session
	s.mu.Unlock()

	if err := s.roomRepo.UpdateStatus(ctx, roomID, models.RoomStatusPlaying); err != nil {
		return nil, err
	}

	s.log.Info("对局开始",
		zap.Uint("room_id", roomID),
		zap.Int("players", len(players)))

	session.mu.Lock()
	defer session.mu.Unlock()
	return s.commitLocked(ctx, roomID, session)
}

// State 获取当前快照
func (s *gameService) State(ctx context.Context, roomID uint) (*game.Snapshot, error) {
	session, err := s.session(roomID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return s.snapshotLocked(session), nil
}

// Roll 掷骰
func (s *gameService) Roll(ctx context.Context, roomID uint, userID string) (*game.Snapshot, error) {
	session, err := s.session(roomID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	if err := s.requireTurn(session, userID); err != nil {
		return nil, err
	}
	if session.snapshot.HasRolled {
		return nil, errors.New(errors.ErrAlreadyRolled, "本回合已掷过骰子")
	}

	value := session.random.Intn(s.gameCfg.DiceSides) + 1
	session.snapshot.HasRolled = true
	session.snapshot.DiceResult = &game.DiceResult{
		Total:  value,
		Values: []int{value},
	}
	player := session.snapshot.ActivePlayer()
	player.Stats.DiceRolled++

	s.log.Debug("掷骰",
		zap.Uint("room_id", roomID),
		zap.String("user_id", userID),
		zap.Int("value", value))

	return s.commitLocked(ctx, roomID, session)
}

// Move 按掷骰结果移动
// 环形轨道，越过起点结算发薪与过点奖励
func (s *gameService) Move(ctx context.Context, roomID uint, userID string) (*game.Snapshot, error) {
	session, err := s.session(roomID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	if err := s.requireTurn(session, userID); err != nil {
		return nil, err
	}
	if !session.snapshot.HasRolled {
		return nil, errors.New(errors.ErrNotRolledYet, "请先掷骰")
	}
	if session.moved {
		return nil, errors.New(errors.ErrDealStage, "本回合已移动")
	}

	player := session.snapshot.ActivePlayer()
	innerBase := session.topo.OuterSize()
	innerLen := session.topo.InnerSize()

	steps := session.snapshot.DiceResult.Total
	from := player.Position
	local := (player.Position - innerBase + steps) % innerLen
	passedGo := player.Position-innerBase+steps >= innerLen
	player.Position = innerBase + local
	player.Stats.TotalMoves++
	session.moved = true
	session.snapshot.Phase = phaseMoved

	// 过起点：发薪 + 奖励
	if passedGo {
		player.Stats.TimesPassedGo++
		payday := player.PaydayAmount()
		if payday > 0 {
			s.credit(ctx, roomID, player, payday, models.TxTypePayday, "", "发薪日结算")
		}
		if s.gameCfg.PassGoBonus > 0 {
			s.credit(ctx, roomID, player, s.gameCfg.PassGoBonus, models.TxTypePassGo, "", "经过起点奖励")
		}
	}

	// 落格事件
	cell, err := session.topo.ResolveCell(player.Position)
	if err != nil {
		return nil, err
	}
	kind := game.DispatchCell(cell)
	s.applyCellEvent(ctx, roomID, session, player, cell, kind)

	// 回合记录
	record := &models.TurnRecord{
		RoomID:       roomID,
		UserID:       parseUserID(userID),
		TurnNumber:   session.turnNumber,
		DiceValue:    steps,
		FromPosition: from,
		ToPosition:   player.Position,
		PassedGo:     passedGo,
		EventKind:    string(kind),
		PlayedAt:     time.Now(),
	}
	if session.snapshot.PendingDeal != nil && session.snapshot.PendingDeal.Card != nil {
		record.CardID = session.snapshot.PendingDeal.Card.ID
	}
	if err := s.turnRepo.Create(ctx, record); err != nil {
		s.log.Warn("写入回合记录失败", zap.Uint("room_id", roomID), zap.Error(err))
	}

	return s.commitLocked(ctx, roomID, session)
}

// EndTurn 结束回合
// 未处理的交易直接弃牌；行动权轮转到下一个玩家
func (s *gameService) EndTurn(ctx context.Context, roomID uint, userID string) (*game.Snapshot, error) {
	session, err := s.session(roomID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	if err := s.requireTurn(session, userID); err != nil {
		return nil, err
	}

	// 回合结束时未处理的交易直接弃牌
	if deal := session.snapshot.PendingDeal; deal != nil {
		if deal.Card != nil {
			if err := session.decks.Discard(deal.Card); err != nil {
				s.log.Warn("弃牌失败", zap.Uint("room_id", roomID), zap.Error(err))
			}
		}
		session.snapshot.PendingDeal = nil
	}

	next := (session.snapshot.ActiveIndex + 1) % len(session.snapshot.Players)
	session.snapshot.ActiveIndex = next
	session.snapshot.ActivePlayerID = session.snapshot.Players[next].UserID
	session.snapshot.HasRolled = false
	session.snapshot.DiceResult = nil
	session.snapshot.Phase = phaseRolling
	session.moved = false
	session.turnNumber++
	session.turnDeadline = time.Now().Add(s.gameCfg.TurnTime)

	s.log.Debug("回合结束",
		zap.Uint("room_id", roomID),
		zap.String("next_player", session.snapshot.ActivePlayerID))

	return s.commitLocked(ctx, roomID, session)
}

// ChooseDeal 选择交易规模并翻牌
func (s *gameService) ChooseDeal(ctx context.Context, roomID uint, userID string, size game.DealSize) (*game.Snapshot, error) {
	session, err := s.session(roomID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	deal := session.snapshot.PendingDeal
	if deal == nil {
		return nil, errors.New(errors.ErrNoPendingDeal, "当前没有待处理的交易")
	}
	if deal.PlayerID != userID {
		return nil, errors.New(errors.ErrNotDealOwner, "只有交易归属玩家可以操作")
	}
	if deal.Stage != game.DealStageChoosingSize {
		return nil, errors.New(errors.ErrDealStage, "交易不在选择规模阶段")
	}

	deckType := game.DeckSmallDeal
	if size == game.DealSizeBig {
		deckType = game.DeckBigDeal
	} else if size != game.DealSizeSmall {
		return nil, errors.New(errors.ErrInvalidParam, "无效的交易规模")
	}

	card, err := session.decks.Draw(deckType)
	if err != nil {
		// 牌堆耗尽：清除交易并上报，不能让交易卡在选择阶段
		session.snapshot.PendingDeal = nil
		if _, commitErr := s.commitLocked(ctx, roomID, session); commitErr != nil {
			s.log.Warn("牌堆耗尽后提交状态失败", zap.Uint("room_id", roomID), zap.Error(commitErr))
		}
		return nil, err
	}

	deal.Stage = game.DealStageResolving
	deal.Card = card
	deal.SizeOptions = nil

	s.log.Debug("翻牌",
		zap.Uint("room_id", roomID),
		zap.String("deck", string(deckType)),
		zap.String("card", card.Name))

	return s.commitLocked(ctx, roomID, session)
}

// ResolveDeal 处理交易（购买/放弃/转让/信贷）
func (s *gameService) ResolveDeal(ctx context.Context, roomID uint, userID string, action game.DealAction, targetUserID string) (*game.Snapshot, error) {
	session, err := s.session(roomID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	deal := session.snapshot.PendingDeal
	if deal == nil {
		return nil, errors.New(errors.ErrNoPendingDeal, "当前没有待处理的交易")
	}
	if deal.PlayerID != userID {
		return nil, errors.New(errors.ErrNotDealOwner, "只有交易归属玩家可以操作")
	}
	if deal.Stage != game.DealStageResolving || deal.Card == nil {
		return nil, errors.New(errors.ErrDealStage, "交易不在处理阶段")
	}

	player := session.snapshot.FindPlayer(userID)
	card := deal.Card

	switch action {
	case game.DealActionBuy:
		if player.Cash < card.DownPayment {
			return nil, errors.Newf(errors.ErrInsufficientFunds,
				"现金不足：需要%d，持有%d", card.DownPayment, player.Cash)
		}
		s.debit(ctx, roomID, player, card.DownPayment, models.TxTypeBuy, card.ID, "购买资产: "+card.Name)
		player.Assets = append(player.Assets, game.Asset{
			ID:            uuid.NewString(),
			CardID:        card.ID,
			Name:          card.Name,
			PurchasePrice: card.DownPayment,
			MonthlyIncome: card.Income,
			Deck:          string(card.Deck),
			OriginalOwner: userID,
			AcquiredAt:    time.Now().Unix(),
		})
		player.PassiveIncome += card.Income
		// 已购买的牌进入弃牌堆，不再参与抽取
		if err := session.decks.Discard(card); err != nil {
			s.log.Warn("弃牌失败", zap.Uint("room_id", roomID), zap.Error(err))
		}
		session.snapshot.PendingDeal = nil

	case game.DealActionSkip:
		if err := session.decks.Discard(card); err != nil {
			s.log.Warn("弃牌失败", zap.Uint("room_id", roomID), zap.Error(err))
		}
		session.snapshot.PendingDeal = nil

	case game.DealActionTransfer:
		target := session.snapshot.FindPlayer(targetUserID)
		if target == nil || targetUserID == userID {
			return nil, errors.New(errors.ErrTransferTarget, "无效的转让对象")
		}
		// 交易转给对方，对方获得购买/放弃的选择权
		deal.PlayerID = targetUserID

	case game.DealActionCredit:
		// 信贷额度：按首付向上取整到千
		loan := (card.DownPayment + 999) / 1000 * 1000
		if loan <= 0 {
			return nil, errors.New(errors.ErrCreditDenied, "该交易无需信贷")
		}
		player.Cash += loan
		player.Credit += loan
		s.recordTx(ctx, roomID, player, loan, models.TxTypeCredit, card.ID, "信贷放款")
		// 交易保持在处理阶段，等待购买

	default:
		return nil, errors.New(errors.ErrInvalidParam, "无效的交易动作")
	}

	return s.commitLocked(ctx, roomID, session)
}

// TransferAsset 把已持有的资产转给其他玩家
func (s *gameService) TransferAsset(ctx context.Context, roomID uint, userID, assetID, targetUserID string) (*game.Snapshot, error) {
	session, err := s.session(roomID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	player := session.snapshot.FindPlayer(userID)
	if player == nil {
		return nil, errors.New(errors.ErrNotInRoom, "玩家不在对局中")
	}
	target := session.snapshot.FindPlayer(targetUserID)
	if target == nil || targetUserID == userID {
		return nil, errors.New(errors.ErrTransferTarget, "无效的转让对象")
	}

	index := -1
	for i := range player.Assets {
		if player.Assets[i].ID == assetID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, errors.New(errors.ErrAssetNotFound, "资产不存在")
	}

	asset := player.Assets[index]
	player.Assets = append(player.Assets[:index], player.Assets[index+1:]...)
	player.PassiveIncome -= asset.MonthlyIncome
	target.Assets = append(target.Assets, asset)
	target.PassiveIncome += asset.MonthlyIncome

	s.log.Info("资产转让",
		zap.Uint("room_id", roomID),
		zap.String("from", userID),
		zap.String("to", targetUserID),
		zap.String("asset", asset.Name))

	return s.commitLocked(ctx, roomID, session)
}

// SellAsset 出售资产
func (s *gameService) SellAsset(ctx context.Context, roomID uint, userID, assetID string) (*game.Snapshot, error) {
	session, err := s.session(roomID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	player := session.snapshot.FindPlayer(userID)
	if player == nil {
		return nil, errors.New(errors.ErrNotInRoom, "玩家不在对局中")
	}

	index := -1
	for i := range player.Assets {
		if player.Assets[i].ID == assetID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, errors.New(errors.ErrAssetNotFound, "资产不存在")
	}

	asset := player.Assets[index]
	player.Assets = append(player.Assets[:index], player.Assets[index+1:]...)
	player.PassiveIncome -= asset.MonthlyIncome
	s.credit(ctx, roomID, player, asset.PurchasePrice, models.TxTypeSell, asset.CardID, "出售资产: "+asset.Name)

	return s.commitLocked(ctx, roomID, session)
}

// applyCellEvent 应用落格事件的现金效果
func (s *gameService) applyCellEvent(ctx context.Context, roomID uint, session *gameSession, player *game.Player, cell *game.Cell, kind game.EventKind) {
	switch kind {
	case game.EventReceiveSalary:
		payday := player.PaydayAmount()
		if payday > 0 {
			s.credit(ctx, roomID, player, payday, models.TxTypePayday, "", "发薪格结算")
		}

	case game.EventCharity:
		// 捐出一次发薪额的10%，现金不足时跳过
		donation := player.PaydayAmount() / 10
		if donation > 0 && player.Cash >= donation {
			s.debit(ctx, roomID, player, donation, models.TxTypeCharity, "", "慈善捐款")
		}

	case game.EventCardDraw:
		if cell.Type == game.CellGreenOpportunity {
			// 机会格：创建待处理交易，等待玩家选择规模
			session.snapshot.PendingDeal = &game.PendingDeal{
				PlayerID:    player.UserID,
				Stage:       game.DealStageChoosingSize,
				SizeOptions: []game.DealSize{game.DealSizeSmall, game.DealSizeBig},
				CellID:      cell.Position,
			}
		} else {
			// 意外支出格：直接翻牌扣款
			card, err := session.decks.Draw(game.DeckExpense)
			if err != nil {
				s.log.Warn("意外支出牌堆已空", zap.Uint("room_id", roomID))
				return
			}
			s.debit(ctx, roomID, player, card.Cost, models.TxTypeExpense, card.ID, "意外支出: "+card.Name)
			if err := session.decks.Discard(card); err != nil {
				s.log.Warn("弃牌失败", zap.Uint("room_id", roomID), zap.Error(err))
			}
		}

	case game.EventMarketAction:
		// 市场格：翻一张市场牌展示行情后弃掉，出售由玩家主动发起
		card, err := session.decks.Draw(game.DeckMarket)
		if err != nil {
			s.log.Warn("市场牌堆已空", zap.Uint("room_id", roomID))
			return
		}
		if err := session.decks.Discard(card); err != nil {
			s.log.Warn("弃牌失败", zap.Uint("room_id", roomID), zap.Error(err))
		}

	case game.EventBabyBorn:
		// 添丁：每月支出随之增加，上限3个
		if player.Children < 3 {
			player.Children++
		}

	case game.EventJobLoss:
		// 失业：支付一个月固定支出
		var expenses int64
		if player.Profession != nil {
			expenses = player.Profession.Expenses
		}
		if expenses > 0 {
			s.debit(ctx, roomID, player, expenses, models.TxTypeJobLoss, "", "失业支出")
		}
	}
}

// credit 入账并记流水
func (s *gameService) credit(ctx context.Context, roomID uint, player *game.Player, amount int64, txType, refID, description string) {
	player.Cash += amount
	player.Stats.TotalMoneyEarned += amount
	s.recordTx(ctx, roomID, player, amount, txType, refID, description)
}

// debit 出账并记流水；现金可为负的场景由调用方先行校验
func (s *gameService) debit(ctx context.Context, roomID uint, player *game.Player, amount int64, txType, refID, description string) {
	player.Cash -= amount
	s.recordTx(ctx, roomID, player, -amount, txType, refID, description)
}

// recordTx 写现金流水（失败只记日志，不阻断对局）
func (s *gameService) recordTx(ctx context.Context, roomID uint, player *game.Player, amount int64, txType, refID, description string) {
	orderNo, _ := utils.GenerateOrderNo("CF")
	tx := &models.CashTransaction{
		RoomID:      roomID,
		UserID:      parseUserID(player.UserID),
		OrderNo:     orderNo,
		Type:        txType,
		Amount:      amount,
		BeforeCash:  player.Cash - amount,
		AfterCash:   player.Cash,
		RefID:       refID,
		Description: description,
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		s.log.Warn("写现金流水失败",
			zap.Uint("room_id", roomID),
			zap.String("type", txType),
			zap.Error(err))
	}
}

// session 查找房间的运行态
func (s *gameService) session(roomID uint) (*gameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[roomID]
	if !ok {
		return nil, errors.New(errors.ErrGameNotStarted, "对局未开始")
	}
	return session, nil
}

// requireTurn 校验行动权
func (s *gameService) requireTurn(session *gameSession, userID string) error {
	if session.snapshot.FindPlayer(userID) == nil {
		return errors.New(errors.ErrNotInRoom, "玩家不在对局中")
	}
	if session.snapshot.ActivePlayerID != userID {
		return errors.New(errors.ErrNotYourTurn, "还没轮到你行动")
	}
	return nil
}

// snapshotLocked 生成带实时剩余时间的深拷贝（调用方必须持有会话锁）
func (s *gameService) snapshotLocked(session *gameSession) *game.Snapshot {
	snap := session.snapshot.Clone()
	left := int(time.Until(session.turnDeadline).Seconds())
	if left < 0 {
		left = 0
	}
	snap.TurnTimeLeft = left
	return snap
}

// commitLocked 自增版本号、持久化并广播（调用方必须持有会话锁）
func (s *gameService) commitLocked(ctx context.Context, roomID uint, session *gameSession) (*game.Snapshot, error) {
	session.snapshot.Version++
	snap := s.snapshotLocked(session)

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	if err := s.roomRepo.SaveGameState(ctx, roomID, snap.Version, string(data)); err != nil {
		s.log.Warn("持久化对局快照失败", zap.Uint("room_id", roomID), zap.Error(err))
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastState(roomID, snap)
	}
	return snap, nil
}

// parseUserID 字符串形式的玩家ID转回数据库ID
func parseUserID(userID string) uint {
	var id uint
	fmt.Sscanf(userID, "%d", &id)
	return id
}
