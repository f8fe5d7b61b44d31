package client

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/wfunc/cashflow-game/internal/errors"
	"github.com/wfunc/cashflow-game/internal/game"
	"go.uber.org/zap"
)

type TurnMachineTestSuite struct {
	suite.Suite
	api     *fakeRoomService
	session *SessionState
	machine *TurnMachine
	ctx     context.Context
	started int32
	ended   int32
}

func (suite *TurnMachineTestSuite) SetupTest() {
	suite.api = &fakeRoomService{snapshot: makeSnapshot(1, "2", false)}
	suite.ctx = context.Background()
	suite.started = 0
	suite.ended = 0
	suite.session = NewSessionState("1", 1, suite.api, NewEmitter(), nil, zap.NewNop())
	suite.machine = NewTurnMachine(suite.session, zap.NewNop())
	suite.session.Events().On(EventTurnStarted, func(interface{}) {
		atomic.AddInt32(&suite.started, 1)
	})
	suite.session.Events().On(EventTurnEnded, func(interface{}) {
		atomic.AddInt32(&suite.ended, 1)
	})
}

func (suite *TurnMachineTestSuite) TestFullTurnScenario() {
	// 初始为waiting，别人的回合
	suite.Equal(TurnWaiting, suite.machine.Phase())

	// 轮不到自己时掷骰被本地拒绝，不发请求
	err := suite.machine.RollDice(suite.ctx)
	suite.Equal(errors.ErrNotYourTurn, errors.GetCode(err))
	suite.Equal(int32(0), atomic.LoadInt32(&suite.api.rollCalls))

	// 服务端报告自己成为行动玩家 → rolling + turnStarted
	suite.session.ApplySnapshot(makeSnapshot(2, "1", false))
	suite.Equal(TurnRolling, suite.machine.Phase())
	suite.Equal(int32(1), atomic.LoadInt32(&suite.started))

	// 掷骰成功 → moved
	rolled := makeSnapshot(3, "1", true)
	rolled.DiceResult = &game.DiceResult{Total: 4, Values: []int{4}}
	rolled.Players[0].Position = 48
	suite.api.setSnapshot(rolled)
	suite.NoError(suite.machine.RollDice(suite.ctx))
	suite.Equal(TurnMoved, suite.machine.Phase())
	suite.Equal(4, suite.machine.LastRoll())
	suite.Equal(int32(1), atomic.LoadInt32(&suite.api.rollCalls))

	// moved阶段的二次掷骰被本地拒绝，不发请求
	err = suite.machine.RollDice(suite.ctx)
	suite.Equal(errors.ErrAlreadyRolled, errors.GetCode(err))
	suite.Equal(int32(1), atomic.LoadInt32(&suite.api.rollCalls))

	// 结束回合 → waiting
	next := makeSnapshot(4, "2", false)
	next.ActiveIndex = 1
	suite.api.setSnapshot(next)
	suite.NoError(suite.machine.EndTurn(suite.ctx))
	suite.Equal(TurnWaiting, suite.machine.Phase())
	// turnEnded只由快照路径发出一次
	suite.Equal(int32(1), atomic.LoadInt32(&suite.ended))
}

func (suite *TurnMachineTestSuite) TestEndTurnRequiresMoved() {
	suite.session.ApplySnapshot(makeSnapshot(2, "1", false))
	suite.Equal(TurnRolling, suite.machine.Phase())

	err := suite.machine.EndTurn(suite.ctx)
	suite.Equal(errors.ErrNotRolledYet, errors.GetCode(err))
	suite.Equal(int32(0), atomic.LoadInt32(&suite.api.endCalls))
}

func (suite *TurnMachineTestSuite) TestServiceFailureKeepsPhase() {
	suite.session.ApplySnapshot(makeSnapshot(2, "1", false))
	suite.api.setError(errors.New(errors.ErrService, "后端拒绝"))

	suite.Error(suite.machine.RollDice(suite.ctx))

	// 失败的往返不产生半截状态转移
	suite.Equal(TurnRolling, suite.machine.Phase())
}

func (suite *TurnMachineTestSuite) TestSnapshotCorrectsPhase() {
	// 服务端说已掷骰，本地直接进入moved（例如断线重连）
	suite.session.ApplySnapshot(makeSnapshot(2, "1", true))
	suite.Equal(TurnMoved, suite.machine.Phase())

	// 行动权转移后回到waiting
	next := makeSnapshot(3, "2", false)
	next.ActiveIndex = 1
	suite.session.ApplySnapshot(next)
	suite.Equal(TurnWaiting, suite.machine.Phase())
}

func TestTurnMachineSuite(t *testing.T) {
	suite.Run(t, new(TurnMachineTestSuite))
}
