package game

import (
	"sort"

	"github.com/wfunc/cashflow-game/internal/errors"
)

// Topology 棋盘拓扑
// 外圈和内圈各是一条首尾相接的环形轨道；全局线性位置先外圈后内圈
// 格子在构建时由静态配置一次性生成，之后只读
type Topology struct {
	outer []Cell
	inner []Cell
}

// NewTopology 由静态配置构建棋盘
func NewTopology() *Topology {
	t := &Topology{
		outer: make([]Cell, 0, len(outerCellDefs)),
		inner: make([]Cell, 0, len(innerCellTypes)),
	}

	for i, def := range outerCellDefs {
		cell := Cell{
			Position: i,
			Index:    i + 1,
			Layer:    LayerOuter,
			Type:     def.cellType,
			Name:     def.name,
			Icon:     def.icon,
			Color:    outerCellColors[def.cellType],
			Cost:     def.cost,
			Income:   def.income,
			Effects: CellEffects{
				Income:         def.cellType == CellMoney,
				Business:       def.cellType == CellBusiness,
				Dream:          def.cellType == CellDream,
				Karma:          def.cellType == CellCharity,
				MonthlyIncome:  def.income,
				CashMultiplier: def.multiplier,
			},
		}
		t.outer = append(t.outer, cell)
	}

	for i, cellType := range innerCellTypes {
		meta := innerCellMeta[cellType]
		cell := Cell{
			Position: len(outerCellDefs) + i,
			Index:    i + 1,
			Layer:    LayerInner,
			Type:     cellType,
			Name:     meta.name,
			Icon:     meta.icon,
			Color:    meta.color,
			Effects: CellEffects{
				Income: cellType == CellYellowPayday,
				Karma:  cellType == CellOrangeCharity,
			},
		}
		t.inner = append(t.inner, cell)
	}

	return t
}

// OuterSize 外圈格子数
func (t *Topology) OuterSize() int {
	return len(t.outer)
}

// InnerSize 内圈格子数
func (t *Topology) InnerSize() int {
	return len(t.inner)
}

// Size 全部格子数
func (t *Topology) Size() int {
	return len(t.outer) + len(t.inner)
}

// ResolveCell 按全局线性位置解析格子
// 0..N_outer-1 映射到外圈，N_outer..N_outer+N_inner-1 映射到内圈
func (t *Topology) ResolveCell(position int) (*Cell, error) {
	if position < 0 || position >= t.Size() {
		return nil, errors.Newf(errors.ErrInvalidPosition, "位置 %d 超出范围 [0, %d)", position, t.Size())
	}
	if position < len(t.outer) {
		cell := t.outer[position]
		return &cell, nil
	}
	cell := t.inner[position-len(t.outer)]
	return &cell, nil
}

// InnerCell 按内圈轨道位置（0起）解析格子
func (t *Topology) InnerCell(trackPos int) (*Cell, error) {
	if trackPos < 0 || trackPos >= len(t.inner) {
		return nil, errors.Newf(errors.ErrInvalidPosition, "内圈位置 %d 超出范围 [0, %d)", trackPos, len(t.inner))
	}
	cell := t.inner[trackPos]
	return &cell, nil
}

// Neighborhood 返回与指定格子同一轨道、环形距离不超过 radius 的格子
// 按距离升序排列，距离相同按全局位置升序；结果包含格子自身（距离0）
// 仅用于棋盘预览类功能，回合结算不依赖它
func (t *Topology) Neighborhood(position, radius int) ([]*Cell, error) {
	cell, err := t.ResolveCell(position)
	if err != nil {
		return nil, err
	}
	if radius < 0 {
		return nil, errors.Newf(errors.ErrInvalidParam, "半径不能为负: %d", radius)
	}

	track := t.outer
	base := 0
	if cell.Layer == LayerInner {
		track = t.inner
		base = len(t.outer)
	}
	n := len(track)
	local := position - base

	type distCell struct {
		dist int
		cell Cell
	}
	var result []distCell
	for i := 0; i < n; i++ {
		// 环形距离取顺逆两个方向的较小值
		d := i - local
		if d < 0 {
			d = -d
		}
		if n-d < d {
			d = n - d
		}
		if d <= radius {
			result = append(result, distCell{dist: d, cell: track[i]})
		}
	}

	sort.Slice(result, func(a, b int) bool {
		if result[a].dist != result[b].dist {
			return result[a].dist < result[b].dist
		}
		return result[a].cell.Position < result[b].cell.Position
	})

	cells := make([]*Cell, len(result))
	for i := range result {
		c := result[i].cell
		cells[i] = &c
	}
	return cells, nil
}
