package client

import (
	"context"
	"sync"

	"github.com/wfunc/cashflow-game/internal/errors"
	"github.com/wfunc/cashflow-game/internal/game"
	"go.uber.org/zap"
)

// DealController 交易流程控制器
// 镜像服务端的choosingSize→resolving→清除流程，只放行归属玩家的操作
type DealController struct {
	session  *SessionState
	notifier Notifier
	log      *zap.Logger

	// 快照可能同时来自轮询协程和用户操作协程，跟踪状态必须持锁读写
	mu      sync.Mutex
	hadDeal bool
}

// NewDealController 创建交易控制器并挂到会话事件上
func NewDealController(session *SessionState, notifier Notifier, log *zap.Logger) *DealController {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	c := &DealController{
		session:  session,
		notifier: notifier,
		log:      log,
	}

	// 跟踪交易出现与消失，翻译成领域事件
	session.Events().On(EventChange, func(payload interface{}) {
		snap, ok := payload.(*game.Snapshot)
		if !ok {
			return
		}
		hasDeal := snap.PendingDeal != nil

		c.mu.Lock()
		appeared := hasDeal && !c.hadDeal
		cleared := !hasDeal && c.hadDeal
		var pending *game.PendingDeal
		if appeared {
			pending = snap.PendingDeal.Clone()
		}
		c.hadDeal = hasDeal
		c.mu.Unlock()

		if appeared {
			session.Events().Emit(EventDealPending, pending)
		}
		if cleared {
			session.Events().Emit(EventDealResolved, nil)
		}
	})
	return c
}

// Pending 返回当前待处理交易的拷贝，没有则返回nil
func (c *DealController) Pending() *game.PendingDeal {
	snap := c.session.GetSnapshot()
	if snap == nil {
		return nil
	}
	return snap.PendingDeal.Clone()
}

// IsOwner 本地玩家是否为交易归属方
// 非归属方只能只读展示，操作入口应当禁用
func (c *DealController) IsOwner() bool {
	deal := c.Pending()
	return deal != nil && deal.PlayerID == c.session.UserID()
}

// ChooseSize 选择交易规模并翻牌
func (c *DealController) ChooseSize(ctx context.Context, size game.DealSize) error {
	if err := c.requireStage(game.DealStageChoosingSize); err != nil {
		return err
	}

	err := c.session.ChooseDeal(ctx, size)
	if err != nil {
		if errors.Is(err, errors.ErrDeckExhausted) {
			// 牌堆耗尽：服务端已清除交易，拉一次快照让本地跟上
			c.notifier.Info("牌堆已空，本次机会作废")
			_ = c.session.Refresh(ctx)
		} else {
			c.notifier.Error(err.Error())
		}
		return err
	}
	return nil
}

// Buy 购买当前交易的卡牌
func (c *DealController) Buy(ctx context.Context) error {
	if err := c.requireStage(game.DealStageResolving); err != nil {
		return err
	}

	err := c.session.ResolveDeal(ctx, game.DealActionBuy, "")
	if err != nil {
		if errors.Is(err, errors.ErrInsufficientFunds) {
			// 现金不足时交易保持打开，玩家可以换个选择
			c.notifier.Error("现金不足，无法购买")
		} else {
			c.notifier.Error(err.Error())
		}
		return err
	}
	c.notifier.Success("购买成功")
	return nil
}

// Skip 放弃当前交易
func (c *DealController) Skip(ctx context.Context) error {
	if err := c.requireStage(game.DealStageResolving); err != nil {
		return err
	}

	if err := c.session.ResolveDeal(ctx, game.DealActionSkip, ""); err != nil {
		c.notifier.Error(err.Error())
		return err
	}
	c.notifier.Info("已放弃本次交易")
	return nil
}

// Transfer 把交易转让给其他玩家，对方获得购买/放弃的选择权
func (c *DealController) Transfer(ctx context.Context, targetUserID string) error {
	if err := c.requireStage(game.DealStageResolving); err != nil {
		return err
	}

	if err := c.session.ResolveDeal(ctx, game.DealActionTransfer, targetUserID); err != nil {
		c.notifier.Error(err.Error())
		return err
	}
	c.notifier.Success("交易已转让")
	return nil
}

// RequestCredit 申请信贷，放款后交易保持打开等待购买
func (c *DealController) RequestCredit(ctx context.Context) error {
	if err := c.requireStage(game.DealStageResolving); err != nil {
		return err
	}

	if err := c.session.ResolveDeal(ctx, game.DealActionCredit, ""); err != nil {
		c.notifier.Error(err.Error())
		return err
	}
	c.notifier.Success("信贷已放款")
	return nil
}

// requireStage 本地门禁：归属方校验 + 阶段校验，不通过时不发请求
func (c *DealController) requireStage(stage game.DealStage) error {
	deal := c.Pending()
	if deal == nil {
		return errors.New(errors.ErrNoPendingDeal, "当前没有待处理的交易")
	}
	if deal.PlayerID != c.session.UserID() {
		return errors.New(errors.ErrNotDealOwner, "只有交易归属玩家可以操作")
	}
	if deal.Stage != stage {
		return errors.New(errors.ErrDealStage, "交易不在该阶段")
	}
	return nil
}
