package client

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wfunc/cashflow-game/internal/errors"
	"github.com/wfunc/cashflow-game/internal/game"
	"go.uber.org/zap"
)

// 默认快照轮询间隔
const defaultPollInterval = 7 * time.Second

// SessionState 本地会话状态
// 服务端快照是唯一事实来源；本地只做去重和事件分发
type SessionState struct {
	userID string // 本地玩家身份，构造时注入
	roomID uint

	api      RoomService
	emitter  *Emitter
	notifier Notifier
	log      *zap.Logger

	topo *game.Topology

	mu        sync.Mutex
	snapshot  *game.Snapshot
	signature string

	// 轮询去重：同一时刻最多一个在途refresh
	refreshing atomic.Bool
}

// NewSessionState 创建会话状态
func NewSessionState(userID string, roomID uint, api RoomService, emitter *Emitter, notifier Notifier, log *zap.Logger) *SessionState {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if emitter == nil {
		emitter = NewEmitter()
	}
	return &SessionState{
		userID:   userID,
		roomID:   roomID,
		api:      api,
		emitter:  emitter,
		notifier: notifier,
		log:      log,
		topo:     game.NewTopology(),
	}
}

// Events 返回事件分发器
func (s *SessionState) Events() *Emitter {
	return s.emitter
}

// UserID 本地玩家身份
func (s *SessionState) UserID() string {
	return s.userID
}

// ApplySnapshot 应用服务端快照
// 版本号回退的快照直接丢弃；版本号相同且签名一致的快照不触发change事件
// （签名只覆盖行动权、回合时间和玩家位置，版本号才是完整的变更依据）
func (s *SessionState) ApplySnapshot(snap *game.Snapshot) bool {
	if snap == nil {
		return false
	}

	s.mu.Lock()
	if s.snapshot != nil && snap.Version > 0 && snap.Version < s.snapshot.Version {
		s.mu.Unlock()
		s.log.Debug("丢弃过期快照",
			zap.Int64("incoming", snap.Version),
			zap.Int64("current", s.snapshot.Version))
		return false
	}

	signature := snap.Signature()
	if s.snapshot != nil && snap.Version <= s.snapshot.Version && signature == s.signature {
		s.mu.Unlock()
		return false
	}

	s.snapshot = snap.Clone()
	s.signature = signature
	emitted := s.snapshot.Clone()
	s.mu.Unlock()

	s.emitter.Emit(EventChange, emitted)
	return true
}

// GetSnapshot 返回当前快照的深拷贝，未加载时返回nil
func (s *SessionState) GetSnapshot() *game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return nil
	}
	return s.snapshot.Clone()
}

// IsMyTurn 本地玩家是否持有行动权；未加载会话时恒为false
func (s *SessionState) IsMyTurn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return false
	}
	return s.snapshot.ActivePlayerID == s.userID
}

// Refresh 主动拉取一次快照
// 已有在途请求时直接跳过，避免乱序应用
func (s *SessionState) Refresh(ctx context.Context) error {
	if !s.refreshing.CompareAndSwap(false, true) {
		return nil
	}
	defer s.refreshing.Store(false)

	snap, err := s.api.GetGameState(ctx, s.roomID)
	if err != nil {
		s.log.Warn("拉取快照失败", zap.Error(err))
		return err
	}
	s.ApplySnapshot(snap)
	return nil
}

// StartPolling 启动后台轮询，ctx取消时停止
func (s *SessionState) StartPolling(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = s.Refresh(ctx)
			}
		}
	}()
}

// RollDice 掷骰
func (s *SessionState) RollDice(ctx context.Context) error {
	snap, err := s.api.RollDice(ctx, s.roomID)
	if err != nil {
		s.notifier.Error(err.Error())
		return err
	}
	s.ApplySnapshot(snap)
	if snap.DiceResult != nil {
		s.emitter.Emit(EventRolled, snap.DiceResult.Total)
		s.notifier.Info("掷出了 " + strconv.Itoa(snap.DiceResult.Total))
	}
	return nil
}

// Move 按掷骰结果移动
func (s *SessionState) Move(ctx context.Context) error {
	snap, err := s.api.Move(ctx, s.roomID)
	if err != nil {
		s.notifier.Error(err.Error())
		return err
	}
	s.ApplySnapshot(snap)
	if me := snap.FindPlayer(s.userID); me != nil {
		if cell, cerr := s.topo.ResolveCell(me.Position); cerr == nil {
			s.emitter.Emit(EventCellEvent, &game.CellEvent{
				Kind:     game.DispatchCell(cell),
				CellType: cell.Type,
				PlayerID: s.userID,
				Cell:     cell,
				Position: me.Position,
			})
		}
	}
	return nil
}

// ChooseDeal 选择交易规模
func (s *SessionState) ChooseDeal(ctx context.Context, size game.DealSize) error {
	snap, err := s.api.ChooseDeal(ctx, s.roomID, size)
	if err != nil {
		return err
	}
	s.ApplySnapshot(snap)
	return nil
}

// ResolveDeal 处理交易
func (s *SessionState) ResolveDeal(ctx context.Context, action game.DealAction, targetUserID string) error {
	snap, err := s.api.ResolveDeal(ctx, s.roomID, action, targetUserID)
	if err != nil {
		return err
	}
	s.ApplySnapshot(snap)
	return nil
}

// TransferAsset 转让资产
func (s *SessionState) TransferAsset(ctx context.Context, assetID, targetUserID string) error {
	snap, err := s.api.TransferAsset(ctx, s.roomID, assetID, targetUserID)
	if err != nil {
		s.notifier.Error(err.Error())
		return err
	}
	s.ApplySnapshot(snap)
	s.notifier.Success("资产转让完成")
	return nil
}

// SellAsset 出售资产
func (s *SessionState) SellAsset(ctx context.Context, assetID string) error {
	snap, err := s.api.SellAsset(ctx, s.roomID, assetID)
	if err != nil {
		s.notifier.Error(err.Error())
		return err
	}
	s.ApplySnapshot(snap)
	s.notifier.Success("资产出售完成")
	return nil
}

// EndTurn 结束回合
func (s *SessionState) EndTurn(ctx context.Context) error {
	snap, err := s.api.EndTurn(ctx, s.roomID)
	if err != nil {
		s.notifier.Error(err.Error())
		return err
	}
	s.ApplySnapshot(snap)
	return nil
}

// IsServiceError 是否为房间服务上报的业务错误
func IsServiceError(err error) bool {
	code := errors.GetCode(err)
	return code == errors.ErrService || code == errors.ErrTransport
}
