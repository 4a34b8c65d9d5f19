package observer

import (
	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/sim"
	"github.com/vmihailenco/msgpack/v5"
)

// Frame 一帧模拟状态的只读快照,发送给观察者
type Frame struct {
	Tick        uint64           `msgpack:"tick"`
	Level       string           `msgpack:"level"`
	Health      int              `msgpack:"health"`
	Currency    int              `msgpack:"currency"`
	Wave        int              `msgpack:"wave"`
	Packet      int              `msgpack:"packet"`
	Outcome     string           `msgpack:"outcome"`
	Packets     []PacketView     `msgpack:"packets"`
	Projectiles []ProjectileView `msgpack:"projectiles"`
}

// PacketView 数据包的观察者视图
type PacketView struct {
	X      float64 `msgpack:"x"`
	Y      float64 `msgpack:"y"`
	Side   string  `msgpack:"side"`
	Type   string  `msgpack:"type"`
	Health int     `msgpack:"health"`
}

// ProjectileView 弹丸的观察者视图
type ProjectileView struct {
	X    float64 `msgpack:"x"`
	Y    float64 `msgpack:"y"`
	Type string  `msgpack:"type"`
}

// Capture 从模拟上下文生成 Frame
// 必须在模拟所在的 goroutine 调用
func Capture(s *sim.Simulation) Frame {
	wave, packet := s.Waves.Cursor()
	f := Frame{
		Tick:     s.Ticks(),
		Health:   s.Health.Value(),
		Currency: s.Wallet.Balance(),
		Wave:     wave,
		Packet:   packet,
		Outcome:  s.Outcome().String(),
	}
	if s.Level != nil {
		f.Level = s.Level.ID
	}

	em := s.EntityManager
	for _, id := range ecs.GetEntitiesWith2[*components.PacketComponent, *components.PositionComponent](em) {
		pkt, _ := ecs.GetComponent[*components.PacketComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		f.Packets = append(f.Packets, PacketView{
			X:      pos.X,
			Y:      pos.Y,
			Side:   pkt.Side.String(),
			Type:   pkt.Type.String(),
			Health: pkt.Health,
		})
	}
	for _, id := range ecs.GetEntitiesWith2[*components.ProjectileComponent, *components.PositionComponent](em) {
		proj, _ := ecs.GetComponent[*components.ProjectileComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		f.Projectiles = append(f.Projectiles, ProjectileView{X: pos.X, Y: pos.Y, Type: proj.Type.String()})
	}
	return f
}

// Encode 以 msgpack 编码 Frame
func Encode(f *Frame) ([]byte, error) {
	return msgpack.Marshal(f)
}

// Decode 解码 msgpack 格式的 Frame
func Decode(data []byte) (*Frame, error) {
	var f Frame
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
