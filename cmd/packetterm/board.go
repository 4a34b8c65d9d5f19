package main

import (
	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/sim"
	"github.com/decker502/packetterror/pkg/types"
)

// Glyph 终端上的一个字符及其类别
type Glyph struct {
	Rune rune
	Kind GlyphKind
}

// GlyphKind 决定字符的颜色
type GlyphKind int

const (
	GlyphEmpty GlyphKind = iota
	GlyphCable
	GlyphDevice
	GlyphEnemyDevice
	GlyphEnemyPacket
	GlyphPlayerPacket
	GlyphProjectile
)

var deviceRunes = map[types.DeviceKind]rune{
	types.DevicePC:      'P',
	types.DeviceEnemyPC: 'E',
	types.DeviceRouter:  'R',
	types.DeviceSwitch:  'S',
	types.DeviceServer:  'V',
}

// RenderBoard 把网格和实体栅格化为 rows×cols 的字符矩阵
// 第 0 行(y 最大)在最上方;移动中的实体按所在格子绘制,后画的覆盖先画的
func RenderBoard(s *sim.Simulation) [][]Glyph {
	g := s.Grid
	cols, rows := g.Cols(), g.Rows()
	board := make([][]Glyph, rows)
	for i := range board {
		board[i] = make([]Glyph, cols)
		for j := range board[i] {
			board[i][j] = Glyph{Rune: '.', Kind: GlyphEmpty}
		}
	}
	set := func(c types.Cell, glyph Glyph) {
		if g.InBounds(c) {
			board[rows-1-c.Y][c.X] = glyph
		}
	}

	em := s.EntityManager
	for _, id := range ecs.GetEntitiesWith1[*components.CableComponent](em) {
		cable, _ := ecs.GetComponent[*components.CableComponent](em, id)
		r := '-'
		if cable.Direction == types.CableVertical {
			r = '|'
		}
		cable.Rect.Each(func(c types.Cell) { set(c, Glyph{Rune: r, Kind: GlyphCable}) })
	}
	for _, id := range ecs.GetEntitiesWith1[*components.DeviceComponent](em) {
		dev, _ := ecs.GetComponent[*components.DeviceComponent](em, id)
		kind := GlyphDevice
		if dev.Kind == types.DeviceEnemyPC {
			kind = GlyphEnemyDevice
		}
		set(dev.Cell, Glyph{Rune: deviceRunes[dev.Kind], Kind: kind})
	}
	for _, id := range ecs.GetEntitiesWith2[*components.PacketComponent, *components.PositionComponent](em) {
		pkt, _ := ecs.GetComponent[*components.PacketComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		cell, ok := g.WorldToGrid(pos.Vec())
		if !ok {
			continue
		}
		glyph := Glyph{Rune: 'o', Kind: GlyphEnemyPacket}
		if pkt.Type == types.PacketMid {
			glyph.Rune = 'O'
		} else if pkt.Type == types.PacketAdvanced {
			glyph.Rune = '@'
		}
		if pkt.Side == types.SidePlayer {
			glyph = Glyph{Rune: '+', Kind: GlyphPlayerPacket}
		}
		set(cell, glyph)
	}
	for _, id := range ecs.GetEntitiesWith2[*components.ProjectileComponent, *components.PositionComponent](em) {
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		if cell, ok := g.WorldToGrid(pos.Vec()); ok {
			set(cell, Glyph{Rune: '*', Kind: GlyphProjectile})
		}
	}
	return board
}
