package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchCell(t *testing.T) {
	tests := []struct {
		cellType CellType
		expected EventKind
	}{
		{CellYellowPayday, EventReceiveSalary},
		{CellOrangeCharity, EventCharity},
		{CellCharity, EventCharity},
		{CellGreenOpportunity, EventCardDraw},
		{CellPinkExpense, EventCardDraw},
		{CellBlueMarket, EventMarketAction},
		{CellDream, EventDreamAction},
		{CellPurpleBaby, EventBabyBorn},
		{CellBlackLoss, EventJobLoss},
		{CellMoney, EventNeutral},
		{CellBusiness, EventNeutral},
		{CellType("unknown"), EventNeutral},
	}

	for _, tt := range tests {
		t.Run(string(tt.cellType), func(t *testing.T) {
			kind := DispatchCell(&Cell{Type: tt.cellType})
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestDispatchCellNil(t *testing.T) {
	assert.Equal(t, EventNeutral, DispatchCell(nil))
}

// 映射无副作用：同一格子重复派发结果一致
func TestDispatchCellIdempotent(t *testing.T) {
	topo := NewTopology()
	for position := 0; position < topo.Size(); position++ {
		cell, err := topo.ResolveCell(position)
		assert.NoError(t, err)
		first := DispatchCell(cell)
		second := DispatchCell(cell)
		assert.Equal(t, first, second, "位置 %d", position)
		assert.NotEmpty(t, first)
	}
}

func TestSnapshotSignature(t *testing.T) {
	base := &Snapshot{
		ActivePlayerID: "u1",
		ActiveIndex:    0,
		TurnTimeLeft:   120,
		Players: []Player{
			{UserID: "u1", Position: 44, Cash: 3000},
			{UserID: "u2", Position: 50, Cash: 3000},
		},
	}

	same := base.Clone()
	same.Players[0].Cash = 9999 // 现金不参与签名
	assert.Equal(t, base.Signature(), same.Signature())

	moved := base.Clone()
	moved.Players[0].Position = 45
	assert.NotEqual(t, base.Signature(), moved.Signature())

	ticked := base.Clone()
	ticked.TurnTimeLeft = 119
	assert.NotEqual(t, base.Signature(), ticked.Signature())

	rotated := base.Clone()
	rotated.ActivePlayerID = "u2"
	rotated.ActiveIndex = 1
	assert.NotEqual(t, base.Signature(), rotated.Signature())
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	original := &Snapshot{
		ActivePlayerID: "u1",
		DiceResult:     &DiceResult{Total: 4, Values: []int{4}},
		PendingDeal: &PendingDeal{
			PlayerID: "u1",
			Stage:    DealStageChoosingSize,
		},
		Players: []Player{{UserID: "u1", Position: 44, Assets: []Asset{{ID: "a1"}}}},
	}

	cp := original.Clone()
	cp.DiceResult.Total = 6
	cp.PendingDeal.Stage = DealStageResolving
	cp.Players[0].Position = 50
	cp.Players[0].Assets[0].ID = "a2"

	assert.Equal(t, 4, original.DiceResult.Total)
	assert.Equal(t, DealStageChoosingSize, original.PendingDeal.Stage)
	assert.Equal(t, 44, original.Players[0].Position)
	assert.Equal(t, "a1", original.Players[0].Assets[0].ID)
}

func TestPaydayAmount(t *testing.T) {
	player := &Player{
		Profession:    &Profession{Name: "工程师", Salary: 2000, Expenses: 1800},
		PassiveIncome: 500,
		Children:      0,
	}
	assert.Equal(t, int64(700), player.PaydayAmount())

	player.Children = 1
	assert.Equal(t, int64(0), player.PaydayAmount(), "子女开销压垮现金流时发薪额下限为0")
}
