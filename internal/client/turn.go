package client

import (
	"context"
	"sync"
	"time"

	"github.com/wfunc/cashflow-game/internal/errors"
	"github.com/wfunc/cashflow-game/internal/game"
	"go.uber.org/zap"
)

// TurnPhase 本地回合阶段
type TurnPhase string

const (
	TurnWaiting TurnPhase = "waiting" // 不是本地玩家的回合
	TurnRolling TurnPhase = "rolling" // 本地玩家回合，尚未掷骰
	TurnMoved   TurnPhase = "moved"   // 已掷骰移动，等待结束回合
)

// 服务端没报剩余时间时的兜底回合时长
const defaultTurnDuration = 120 * time.Second

// TurnMachine 回合状态机
// 客户端侧的操作门禁；权威校验在服务端，这里只是挡住明显无效的请求
type TurnMachine struct {
	session *SessionState
	log     *zap.Logger

	mu        sync.Mutex
	phase     TurnPhase
	lastRoll  int
	countdown *time.Timer // 唯一的回合倒计时句柄
}

// NewTurnMachine 创建回合状态机并挂到会话事件上
func NewTurnMachine(session *SessionState, log *zap.Logger) *TurnMachine {
	m := &TurnMachine{
		session: session,
		phase:   TurnWaiting,
		log:     log,
	}
	session.Events().On(EventChange, func(payload interface{}) {
		if snap, ok := payload.(*game.Snapshot); ok {
			m.onSnapshot(snap)
		}
	})
	return m
}

// Phase 当前阶段
func (m *TurnMachine) Phase() TurnPhase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// LastRoll 最近一次掷骰点数
func (m *TurnMachine) LastRoll() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRoll
}

// RollDice 掷骰；只在rolling阶段放行，moved阶段的二次掷骰不发请求
func (m *TurnMachine) RollDice(ctx context.Context) error {
	m.mu.Lock()
	switch m.phase {
	case TurnWaiting:
		m.mu.Unlock()
		return errors.New(errors.ErrNotYourTurn, "还没轮到你行动")
	case TurnMoved:
		m.mu.Unlock()
		return errors.New(errors.ErrAlreadyRolled, "本回合已掷过骰子")
	}
	m.mu.Unlock()

	if err := m.session.RollDice(ctx); err != nil {
		return err
	}
	if err := m.session.Move(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.phase = TurnMoved
	if snap := m.session.GetSnapshot(); snap != nil && snap.DiceResult != nil {
		m.lastRoll = snap.DiceResult.Total
	}
	m.mu.Unlock()
	return nil
}

// EndTurn 结束回合；只在moved阶段放行
func (m *TurnMachine) EndTurn(ctx context.Context) error {
	m.mu.Lock()
	if m.phase != TurnMoved {
		m.mu.Unlock()
		return errors.New(errors.ErrNotRolledYet, "请先掷骰移动再结束回合")
	}
	m.mu.Unlock()

	if err := m.session.EndTurn(ctx); err != nil {
		return err
	}

	// 响应快照经由onSnapshot落回waiting并发出turnEnded，这里只兜底收尾
	m.mu.Lock()
	m.phase = TurnWaiting
	m.stopCountdownLocked()
	m.mu.Unlock()
	return nil
}

// onSnapshot 根据服务端快照校正本地阶段
func (m *TurnMachine) onSnapshot(snap *game.Snapshot) {
	myTurn := snap.ActivePlayerID == m.session.UserID()

	m.mu.Lock()
	prev := m.phase

	switch {
	case !myTurn:
		m.phase = TurnWaiting
		m.stopCountdownLocked()

	case snap.HasRolled:
		m.phase = TurnMoved

	default:
		m.phase = TurnRolling
		if prev == TurnWaiting {
			// 新回合开始，重启倒计时（先取消旧句柄，避免两个倒计时竞争）
			m.startCountdownLocked(snap.TurnTimeLeft)
		}
	}

	phase := m.phase
	m.mu.Unlock()

	if prev == TurnWaiting && phase == TurnRolling {
		m.session.Events().Emit(EventTurnStarted, m.session.UserID())
	}
	if prev != TurnWaiting && phase == TurnWaiting {
		m.session.Events().Emit(EventTurnEnded, m.session.UserID())
	}
}

// startCountdownLocked 启动回合倒计时（调用方必须持锁）
// 倒计时到零只做提示，不代替玩家行动
func (m *TurnMachine) startCountdownLocked(secondsLeft int) {
	m.stopCountdownLocked()

	duration := time.Duration(secondsLeft) * time.Second
	if duration <= 0 {
		duration = defaultTurnDuration
	}

	m.countdown = time.AfterFunc(duration, func() {
		m.log.Debug("回合时间耗尽", zap.String("user_id", m.session.UserID()))
	})
}

// stopCountdownLocked 取消倒计时（调用方必须持锁）
func (m *TurnMachine) stopCountdownLocked() {
	if m.countdown != nil {
		m.countdown.Stop()
		m.countdown = nil
	}
}
