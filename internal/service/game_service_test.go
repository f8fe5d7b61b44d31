package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/wfunc/cashflow-game/internal/config"
	"github.com/wfunc/cashflow-game/internal/errors"
	"github.com/wfunc/cashflow-game/internal/game"
	"github.com/wfunc/cashflow-game/internal/models"
	"github.com/wfunc/cashflow-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fixedSource 固定随机源，洗牌和掷骰结果可预测（骰子永远是1）
type fixedSource struct{}

func (fixedSource) Intn(n int) int { return 0 }

func testGameConfig() *config.GameConfig {
	return &config.GameConfig{
		MaxPlayers:    8,
		StartingCash:  3000,
		PassGoBonus:   200,
		TurnTime:      120 * time.Second,
		DiceSides:     6,
		InnerTrackLen: 24,
	}
}

type GameServiceTestSuite struct {
	suite.Suite
	db     *gorm.DB
	svc    *gameService
	ctx    context.Context
	roomID uint
	p1     string // 先手玩家
	p2     string
}

func (suite *GameServiceTestSuite) SetupTest() {
	suite.db = repository.SetupTestDB()
	suite.ctx = context.Background()

	userRepo := repository.NewUserRepository(suite.db)
	u1 := &models.User{Username: "alice", Nickname: "爱丽丝"}
	u2 := &models.User{Username: "bob", Nickname: "鲍勃"}
	suite.NoError(userRepo.Create(suite.ctx, u1))
	suite.NoError(userRepo.Create(suite.ctx, u2))

	roomRepo := repository.NewRoomRepository(suite.db)
	room := &models.Room{
		RoomNumber: "100001",
		Name:       "测试房间",
		Status:     models.RoomStatusWaiting,
		HostID:     u1.ID,
		MaxPlayers: 4,
	}
	suite.NoError(roomRepo.Create(suite.ctx, room))
	suite.roomID = room.ID

	playerRepo := repository.NewRoomPlayerRepository(suite.db)
	suite.NoError(playerRepo.Create(suite.ctx, &models.RoomPlayer{
		RoomID: room.ID, UserID: u1.ID, SeatIndex: 0, IsReady: true,
	}))
	suite.NoError(playerRepo.Create(suite.ctx, &models.RoomPlayer{
		RoomID: room.ID, UserID: u2.ID, SeatIndex: 1, IsReady: true,
	}))

	svc := NewGameService(
		roomRepo,
		playerRepo,
		repository.NewCashTransactionRepository(suite.db),
		repository.NewTurnRecordRepository(suite.db),
		nil,
		testGameConfig(),
		fixedSource{},
		zap.NewNop(),
	)
	suite.svc = svc.(*gameService)

	snap, err := suite.svc.Start(suite.ctx, suite.roomID)
	suite.NoError(err)
	suite.Require().Len(snap.Players, 2)
	suite.p1 = snap.Players[0].UserID
	suite.p2 = snap.Players[1].UserID
}

func (suite *GameServiceTestSuite) TearDownTest() {
	repository.CleanupTestDB(suite.db)
}

func (suite *GameServiceTestSuite) session() *gameSession {
	return suite.svc.sessions[suite.roomID]
}

func (suite *GameServiceTestSuite) TestStartInitializesPlayers() {
	snap, err := suite.svc.State(suite.ctx, suite.roomID)
	suite.NoError(err)

	suite.Equal(models.RoomStatusPlaying, snap.Status)
	suite.Equal("rolling", snap.Phase)
	suite.Equal(suite.p1, snap.ActivePlayerID)
	suite.Equal(0, snap.ActiveIndex)
	suite.False(snap.HasRolled)
	suite.Equal(120, snap.TurnTime)
	suite.GreaterOrEqual(snap.Version, int64(1))

	for _, p := range snap.Players {
		suite.Equal(int64(3000), p.Cash)
		suite.Equal(44, p.Position) // 内圈起点
		suite.Equal("inner", p.Track)
		suite.NotNil(p.Profession)
		suite.Empty(p.Assets)
	}
}

func (suite *GameServiceTestSuite) TestStateWithoutGame() {
	_, err := suite.svc.State(suite.ctx, 9999)
	suite.Equal(errors.ErrGameNotStarted, errors.GetCode(err))
}

func (suite *GameServiceTestSuite) TestRollGating() {
	// 非行动玩家不能掷骰
	_, err := suite.svc.Roll(suite.ctx, suite.roomID, suite.p2)
	suite.Equal(errors.ErrNotYourTurn, errors.GetCode(err))

	// 掷骰前不能移动
	_, err = suite.svc.Move(suite.ctx, suite.roomID, suite.p1)
	suite.Equal(errors.ErrNotRolledYet, errors.GetCode(err))

	snap, err := suite.svc.Roll(suite.ctx, suite.roomID, suite.p1)
	suite.NoError(err)
	suite.True(snap.HasRolled)
	suite.Require().NotNil(snap.DiceResult)
	suite.Equal(1, snap.DiceResult.Total)

	// 同一回合不能重复掷骰
	_, err = suite.svc.Roll(suite.ctx, suite.roomID, suite.p1)
	suite.Equal(errors.ErrAlreadyRolled, errors.GetCode(err))
}

func (suite *GameServiceTestSuite) TestMoveCreatesOpportunityDeal() {
	_, err := suite.svc.Roll(suite.ctx, suite.roomID, suite.p1)
	suite.NoError(err)

	// 起点44 + 1 = 45（机会格）
	snap, err := suite.svc.Move(suite.ctx, suite.roomID, suite.p1)
	suite.NoError(err)
	suite.Equal(45, snap.Players[0].Position)
	suite.Equal("moved", snap.Phase)

	suite.Require().NotNil(snap.PendingDeal)
	suite.Equal(suite.p1, snap.PendingDeal.PlayerID)
	suite.Equal(game.DealStageChoosingSize, snap.PendingDeal.Stage)
	suite.Len(snap.PendingDeal.SizeOptions, 2)
	suite.Nil(snap.PendingDeal.Card)

	// 不能重复移动
	_, err = suite.svc.Move(suite.ctx, suite.roomID, suite.p1)
	suite.Error(err)
}

func (suite *GameServiceTestSuite) TestChooseDealOwnerGating() {
	suite.rollToOpportunity()

	_, err := suite.svc.ChooseDeal(suite.ctx, suite.roomID, suite.p2, game.DealSizeSmall)
	suite.Equal(errors.ErrNotDealOwner, errors.GetCode(err))

	snap, err := suite.svc.ChooseDeal(suite.ctx, suite.roomID, suite.p1, game.DealSizeSmall)
	suite.NoError(err)
	suite.Equal(game.DealStageResolving, snap.PendingDeal.Stage)
	suite.NotNil(snap.PendingDeal.Card)
	suite.Nil(snap.PendingDeal.SizeOptions)

	// 已经翻牌后不能再选规模
	_, err = suite.svc.ChooseDeal(suite.ctx, suite.roomID, suite.p1, game.DealSizeBig)
	suite.Equal(errors.ErrDealStage, errors.GetCode(err))
}

func (suite *GameServiceTestSuite) TestBuyWithExactCash() {
	card := suite.drawSmallDeal()

	// 现金恰好等于首付，购买必须成功
	session := suite.session()
	player := session.snapshot.FindPlayer(suite.p1)
	player.Cash = card.DownPayment

	snap, err := suite.svc.ResolveDeal(suite.ctx, suite.roomID, suite.p1, game.DealActionBuy, "")
	suite.NoError(err)

	bought := snap.FindPlayer(suite.p1)
	suite.Equal(int64(0), bought.Cash)
	suite.Require().Len(bought.Assets, 1)
	suite.Equal(card.Name, bought.Assets[0].Name)
	suite.Equal(card.Income, bought.PassiveIncome)
	suite.Nil(snap.PendingDeal)
}

func (suite *GameServiceTestSuite) TestBuyInsufficientFundsLeavesDealOpen() {
	card := suite.drawSmallDeal()

	session := suite.session()
	player := session.snapshot.FindPlayer(suite.p1)
	player.Cash = card.DownPayment - 1

	_, err := suite.svc.ResolveDeal(suite.ctx, suite.roomID, suite.p1, game.DealActionBuy, "")
	suite.Equal(errors.ErrInsufficientFunds, errors.GetCode(err))

	// 失败的购买不改变任何状态，交易仍然待处理
	snap, err := suite.svc.State(suite.ctx, suite.roomID)
	suite.NoError(err)
	suite.Equal(card.DownPayment-1, snap.FindPlayer(suite.p1).Cash)
	suite.Empty(snap.FindPlayer(suite.p1).Assets)
	suite.NotNil(snap.PendingDeal)
}

func (suite *GameServiceTestSuite) TestSkipDiscardsCard() {
	suite.drawSmallDeal()
	_, beforeDiscard := suite.session().decks.Counts(game.DeckSmallDeal)

	snap, err := suite.svc.ResolveDeal(suite.ctx, suite.roomID, suite.p1, game.DealActionSkip, "")
	suite.NoError(err)
	suite.Nil(snap.PendingDeal)
	suite.Equal(int64(3000), snap.FindPlayer(suite.p1).Cash)

	_, afterDiscard := suite.session().decks.Counts(game.DeckSmallDeal)
	suite.Equal(beforeDiscard+1, afterDiscard)
}

func (suite *GameServiceTestSuite) TestCreditThenBuy() {
	card := suite.drawSmallDeal()

	session := suite.session()
	player := session.snapshot.FindPlayer(suite.p1)
	player.Cash = 0

	snap, err := suite.svc.ResolveDeal(suite.ctx, suite.roomID, suite.p1, game.DealActionCredit, "")
	suite.NoError(err)

	// 贷款按首付向上取整到千
	loan := (card.DownPayment + 999) / 1000 * 1000
	borrower := snap.FindPlayer(suite.p1)
	suite.Equal(loan, borrower.Cash)
	suite.Equal(loan, borrower.Credit)
	suite.NotNil(snap.PendingDeal) // 信贷不清除交易

	snap, err = suite.svc.ResolveDeal(suite.ctx, suite.roomID, suite.p1, game.DealActionBuy, "")
	suite.NoError(err)
	suite.Len(snap.FindPlayer(suite.p1).Assets, 1)
	suite.Nil(snap.PendingDeal)
}

func (suite *GameServiceTestSuite) TestTransferDealToOtherPlayer() {
	suite.drawSmallDeal()

	_, err := suite.svc.ResolveDeal(suite.ctx, suite.roomID, suite.p1, game.DealActionTransfer, suite.p1)
	suite.Equal(errors.ErrTransferTarget, errors.GetCode(err))

	snap, err := suite.svc.ResolveDeal(suite.ctx, suite.roomID, suite.p1, game.DealActionTransfer, suite.p2)
	suite.NoError(err)
	suite.Equal(suite.p2, snap.PendingDeal.PlayerID)

	// 转让后原玩家失去操作权
	_, err = suite.svc.ResolveDeal(suite.ctx, suite.roomID, suite.p1, game.DealActionSkip, "")
	suite.Equal(errors.ErrNotDealOwner, errors.GetCode(err))

	snap, err = suite.svc.ResolveDeal(suite.ctx, suite.roomID, suite.p2, game.DealActionSkip, "")
	suite.NoError(err)
	suite.Nil(snap.PendingDeal)
}

func (suite *GameServiceTestSuite) TestEndTurnDiscardsUnresolvedDeal() {
	suite.rollToOpportunity()

	snap, err := suite.svc.EndTurn(suite.ctx, suite.roomID, suite.p1)
	suite.NoError(err)

	suite.Nil(snap.PendingDeal)
	suite.Equal(suite.p2, snap.ActivePlayerID)
	suite.Equal(1, snap.ActiveIndex)
	suite.False(snap.HasRolled)
	suite.Nil(snap.DiceResult)
	suite.Equal("rolling", snap.Phase)
}

func (suite *GameServiceTestSuite) TestDeckExhaustedClearsDeal() {
	suite.rollToOpportunity()

	// 把小买卖牌堆抽干（不弃牌，让重洗也无牌可用）
	session := suite.session()
	for {
		if _, err := session.decks.Draw(game.DeckSmallDeal); err != nil {
			break
		}
	}

	_, err := suite.svc.ChooseDeal(suite.ctx, suite.roomID, suite.p1, game.DealSizeSmall)
	suite.Equal(errors.ErrDeckExhausted, errors.GetCode(err))

	// 耗尽后交易被清除，不能卡在选择阶段
	snap, err := suite.svc.State(suite.ctx, suite.roomID)
	suite.NoError(err)
	suite.Nil(snap.PendingDeal)
}

func (suite *GameServiceTestSuite) TestPassGoPaysSalary() {
	// 把玩家放到内圈末位，走一步就过起点
	session := suite.session()
	player := session.snapshot.FindPlayer(suite.p1)
	player.Position = 67

	_, err := suite.svc.Roll(suite.ctx, suite.roomID, suite.p1)
	suite.NoError(err)
	snap, err := suite.svc.Move(suite.ctx, suite.roomID, suite.p1)
	suite.NoError(err)

	moved := snap.FindPlayer(suite.p1)
	suite.Equal(44, moved.Position)
	suite.Equal(1, moved.Stats.TimesPassedGo)
	// 发薪200（工资2000−支出1800）+ 过点奖励200
	suite.Equal(int64(400), moved.Stats.TotalMoneyEarned)
}

func (suite *GameServiceTestSuite) TestSellAsset() {
	session := suite.session()
	player := session.snapshot.FindPlayer(suite.p1)
	player.Assets = append(player.Assets, game.Asset{
		ID: "asset-1", CardID: "card-1", Name: "二手公寓",
		PurchasePrice: 500, MonthlyIncome: 120,
	})
	player.PassiveIncome = 120

	_, err := suite.svc.SellAsset(suite.ctx, suite.roomID, suite.p1, "missing")
	suite.Equal(errors.ErrAssetNotFound, errors.GetCode(err))

	snap, err := suite.svc.SellAsset(suite.ctx, suite.roomID, suite.p1, "asset-1")
	suite.NoError(err)

	seller := snap.FindPlayer(suite.p1)
	suite.Equal(int64(3500), seller.Cash)
	suite.Equal(int64(0), seller.PassiveIncome)
	suite.Empty(seller.Assets)
}

func (suite *GameServiceTestSuite) TestTransferAsset() {
	session := suite.session()
	player := session.snapshot.FindPlayer(suite.p1)
	player.Assets = append(player.Assets, game.Asset{
		ID: "asset-1", Name: "小商铺", PurchasePrice: 800, MonthlyIncome: 200,
	})
	player.PassiveIncome = 200

	_, err := suite.svc.TransferAsset(suite.ctx, suite.roomID, suite.p1, "asset-1", suite.p1)
	suite.Equal(errors.ErrTransferTarget, errors.GetCode(err))

	snap, err := suite.svc.TransferAsset(suite.ctx, suite.roomID, suite.p1, "asset-1", suite.p2)
	suite.NoError(err)

	suite.Empty(snap.FindPlayer(suite.p1).Assets)
	suite.Equal(int64(0), snap.FindPlayer(suite.p1).PassiveIncome)
	suite.Len(snap.FindPlayer(suite.p2).Assets, 1)
	suite.Equal(int64(200), snap.FindPlayer(suite.p2).PassiveIncome)
}

func (suite *GameServiceTestSuite) TestVersionIncreasesAndStateIsCopy() {
	first, err := suite.svc.State(suite.ctx, suite.roomID)
	suite.NoError(err)

	// 篡改返回的快照不能影响服务端状态
	first.Players[0].Cash = 999999

	snap, err := suite.svc.Roll(suite.ctx, suite.roomID, suite.p1)
	suite.NoError(err)
	suite.Greater(snap.Version, first.Version)
	suite.Equal(int64(3000), snap.Players[0].Cash)
}

// rollToOpportunity 先手玩家掷骰并移动到机会格
func (suite *GameServiceTestSuite) rollToOpportunity() {
	_, err := suite.svc.Roll(suite.ctx, suite.roomID, suite.p1)
	suite.Require().NoError(err)
	snap, err := suite.svc.Move(suite.ctx, suite.roomID, suite.p1)
	suite.Require().NoError(err)
	suite.Require().NotNil(snap.PendingDeal)
}

// drawSmallDeal 走到机会格并翻一张小买卖牌，返回牌面
func (suite *GameServiceTestSuite) drawSmallDeal() *game.Card {
	suite.rollToOpportunity()
	snap, err := suite.svc.ChooseDeal(suite.ctx, suite.roomID, suite.p1, game.DealSizeSmall)
	suite.Require().NoError(err)
	suite.Require().NotNil(snap.PendingDeal.Card)
	return snap.PendingDeal.Card
}

func TestGameServiceSuite(t *testing.T) {
	suite.Run(t, new(GameServiceTestSuite))
}
