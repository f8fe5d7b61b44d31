package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/cashflow-game/internal/errors"
)

func TestTopologySizes(t *testing.T) {
	topo := NewTopology()
	assert.Equal(t, 44, topo.OuterSize())
	assert.Equal(t, 24, topo.InnerSize())
	assert.Equal(t, 68, topo.Size())
}

func TestResolveCell(t *testing.T) {
	topo := NewTopology()

	tests := []struct {
		name     string
		position int
		layer    CellLayer
		index    int
	}{
		{"外圈起点", 0, LayerOuter, 1},
		{"外圈终点", 43, LayerOuter, 44},
		{"内圈起点", 44, LayerInner, 1},
		{"内圈终点", 67, LayerInner, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell, err := topo.ResolveCell(tt.position)
			require.NoError(t, err)
			assert.Equal(t, tt.position, cell.Position)
			assert.Equal(t, tt.layer, cell.Layer)
			assert.Equal(t, tt.index, cell.Index)
		})
	}
}

func TestResolveCellOutOfRange(t *testing.T) {
	topo := NewTopology()

	for _, position := range []int{-1, 68, 1000} {
		cell, err := topo.ResolveCell(position)
		assert.Nil(t, cell)
		require.Error(t, err)
		assert.Equal(t, errors.ErrInvalidPosition, errors.GetCode(err))
	}
}

func TestInnerCellMatchesLayout(t *testing.T) {
	topo := NewTopology()

	// 内圈前几格的类型顺序固定
	expected := []CellType{
		CellPinkExpense,
		CellGreenOpportunity,
		CellBlueMarket,
		CellOrangeCharity,
		CellYellowPayday,
	}
	for i, cellType := range expected {
		cell, err := topo.InnerCell(i)
		require.NoError(t, err)
		assert.Equal(t, cellType, cell.Type, "内圈位置 %d", i)
	}

	_, err := topo.InnerCell(24)
	assert.Error(t, err)
}

func TestNeighborhoodOrdering(t *testing.T) {
	topo := NewTopology()

	cells, err := topo.Neighborhood(46, 2)
	require.NoError(t, err)
	require.Len(t, cells, 5)

	// 距离升序，同距离按全局位置升序；自身排第一
	assert.Equal(t, 46, cells[0].Position)
	assert.Equal(t, 45, cells[1].Position)
	assert.Equal(t, 47, cells[2].Position)
	assert.Equal(t, 44, cells[3].Position)
	assert.Equal(t, 48, cells[4].Position)

	for _, cell := range cells {
		assert.Equal(t, LayerInner, cell.Layer, "邻域不跨轨道")
	}
}

func TestNeighborhoodWrapsAround(t *testing.T) {
	topo := NewTopology()

	// 内圈起点的邻域应环绕到轨道末端
	cells, err := topo.Neighborhood(44, 1)
	require.NoError(t, err)
	require.Len(t, cells, 3)
	assert.Equal(t, 44, cells[0].Position)
	assert.Equal(t, 45, cells[1].Position)
	assert.Equal(t, 67, cells[2].Position)
}

func TestNeighborhoodNegativeRadius(t *testing.T) {
	topo := NewTopology()

	_, err := topo.Neighborhood(0, -1)
	assert.Error(t, err)
}
