package game

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Snapshot 对局状态快照
// 服务端下发的权威视图，客户端整体替换本地状态，不做增量合并
type Snapshot struct {
	RoomID         string       `json:"roomId"`
	Status         string       `json:"status"`
	Version        int64        `json:"version"` // 服务端单调递增的快照版本号
	ActivePlayerID string       `json:"activePlayerId"`
	ActiveIndex    int          `json:"activeIndex"`
	Phase          string       `json:"phase"`
	DiceResult     *DiceResult  `json:"diceResult,omitempty"`
	PendingDeal    *PendingDeal `json:"pendingDeal,omitempty"`
	Players        []Player     `json:"players"`
	HasRolled      bool         `json:"hasRolledThisTurn"`
	TurnTimeLeft   int          `json:"turnTimeLeft"` // 秒
	TurnTime       int          `json:"turnTime"`     // 秒
}

// Clone 深复制快照
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	cp := *s
	if s.DiceResult != nil {
		dice := *s.DiceResult
		dice.Values = append([]int(nil), s.DiceResult.Values...)
		cp.DiceResult = &dice
	}
	cp.PendingDeal = s.PendingDeal.Clone()
	cp.Players = make([]Player, len(s.Players))
	for i := range s.Players {
		cp.Players[i] = *s.Players[i].Clone()
	}
	return &cp
}

// Signature 计算快照内容签名
// 只覆盖会触发重新渲染的字段：活跃玩家、回合序号、剩余时间、各玩家位置
// 签名相同的快照视为重复下发，应用层据此去重
func (s *Snapshot) Signature() string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%d|%d|", s.ActivePlayerID, s.ActiveIndex, s.TurnTimeLeft)
	for i := range s.Players {
		fmt.Fprintf(&b, "%s:%d;", s.Players[i].UserID, s.Players[i].Position)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// FindPlayer 按用户ID查找玩家
func (s *Snapshot) FindPlayer(userID string) *Player {
	if s == nil {
		return nil
	}
	for i := range s.Players {
		if s.Players[i].UserID == userID {
			return &s.Players[i]
		}
	}
	return nil
}

// ActivePlayer 返回当前行动的玩家
func (s *Snapshot) ActivePlayer() *Player {
	if s == nil {
		return nil
	}
	if s.ActiveIndex >= 0 && s.ActiveIndex < len(s.Players) {
		return &s.Players[s.ActiveIndex]
	}
	return nil
}
