package game

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/decker502/packetterror/pkg/components"
	"github.com/decker502/packetterror/pkg/config"
	"github.com/decker502/packetterror/pkg/ecs"
	"github.com/decker502/packetterror/pkg/embedded"
	"github.com/decker502/packetterror/pkg/grid"
	"github.com/decker502/packetterror/pkg/types"
	"github.com/zyedidia/generic/mapset"
)

var (
	// ErrLayoutOutOfRange 布局记录的坐标超出网格
	ErrLayoutOutOfRange = errors.New("layout record out of range")
	// ErrUnknownItemKind 布局记录的类型未知
	ErrUnknownItemKind = errors.New("unknown layout item kind")
	// ErrLayoutConflict 布局记录与已有占用者重叠
	ErrLayoutConflict = errors.New("layout record overlaps an occupied cell")
)

// LayoutRecord 网格布局中的一条记录
// 设备只使用 Cell;线缆使用 Rect 和 Direction
type LayoutRecord struct {
	Kind      types.DeviceKind
	Cell      types.Cell
	Rect      types.CellRect
	Direction types.CableDirection
}

// GridPlacer 布局回放使用的放置原语
// 与实时游戏使用同一套实现,线缆走"原样"模式(不裁剪端点、不检查锚点)
type GridPlacer interface {
	PlaceAt(kind types.DeviceKind, cell types.Cell) (ecs.EntityID, bool)
	LayCableRaw(rect types.CellRect, dir types.CableDirection) (ecs.EntityID, bool)
}

// LayoutSerializer 网格布局的读写
//
// 架构说明：
//   - 这是一个工具类，不是 ECS 系统
//   - 保存时只读 EntityManager 和 Grid
//   - 加载时通过 GridPlacer 回放记录
type LayoutSerializer struct{}

// NewLayoutSerializer 创建布局序列化器
func NewLayoutSerializer() *LayoutSerializer {
	return &LayoutSerializer{}
}

// Collect 扫描每个格子一次,为每个不同的占用者输出一条记录
// 线缆输出其包围矩形,设备输出所在格子
func (s *LayoutSerializer) Collect(em *ecs.EntityManager, g *grid.Grid) []LayoutRecord {
	records := make([]LayoutRecord, 0)
	emitted := mapset.New[ecs.EntityID]()

	for x := 0; x < g.Cols(); x++ {
		for y := 0; y < g.Rows(); y++ {
			cell := types.Cell{X: x, Y: y}
			id, ok := g.OccupantAt(cell)
			if !ok || emitted.Has(id) {
				continue
			}
			emitted.Put(id)

			if cable, ok := ecs.GetComponent[*components.CableComponent](em, id); ok {
				rect, found := g.BoundingRectOf(id)
				if !found {
					continue
				}
				records = append(records, LayoutRecord{
					Kind:      types.DeviceCable,
					Rect:      rect,
					Direction: cable.Direction,
				})
				continue
			}

			if dev, ok := ecs.GetComponent[*components.DeviceComponent](em, id); ok {
				records = append(records, LayoutRecord{Kind: dev.Kind, Cell: cell})
				continue
			}

			log.Printf("[LayoutSerializer] Warning: occupant %d at %v has no device or cable component", id, cell)
		}
	}
	return records
}

// ToDocument 把记录转换为 YAML 文档结构
func (s *LayoutSerializer) ToDocument(records []LayoutRecord) *config.LayoutDocument {
	doc := &config.LayoutDocument{Items: make([]config.LayoutItem, 0, len(records))}
	for _, r := range records {
		item := config.LayoutItem{Kind: r.Kind.Key()}
		if r.Kind == types.DeviceCable {
			item.Rect = &config.LayoutRect{
				Min: [2]int{r.Rect.Min.X, r.Rect.Min.Y},
				Max: [2]int{r.Rect.Max.X, r.Rect.Max.Y},
			}
			item.Direction = r.Direction.String()
		} else {
			cell := [2]int{r.Cell.X, r.Cell.Y}
			item.Cell = &cell
		}
		doc.Items = append(doc.Items, item)
	}
	return doc
}

// FromDocument 把文档转换为记录并检查坐标范围
// 任何越界或未知类型都立即返回错误
func (s *LayoutSerializer) FromDocument(doc *config.LayoutDocument, g *grid.Grid) ([]LayoutRecord, error) {
	records := make([]LayoutRecord, 0, len(doc.Items))
	for i, item := range doc.Items {
		kind, err := types.ParseDeviceKind(item.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrUnknownItemKind, i, err)
		}

		if kind == types.DeviceCable {
			if item.Rect == nil {
				return nil, fmt.Errorf("%w: item %d: cable without rect", ErrLayoutOutOfRange, i)
			}
			dir, err := types.ParseCableDirection(item.Direction)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			rect := types.NewCellRect(
				types.Cell{X: item.Rect.Min[0], Y: item.Rect.Min[1]},
				types.Cell{X: item.Rect.Max[0], Y: item.Rect.Max[1]},
			)
			if !g.InBounds(rect.Min) || !g.InBounds(rect.Max) {
				return nil, fmt.Errorf("%w: item %d: cable %v outside %dx%d grid", ErrLayoutOutOfRange, i, rect, g.Cols(), g.Rows())
			}
			records = append(records, LayoutRecord{Kind: kind, Rect: rect, Direction: dir})
			continue
		}

		if item.Cell == nil {
			return nil, fmt.Errorf("%w: item %d: %s without cell", ErrLayoutOutOfRange, i, item.Kind)
		}
		cell := types.Cell{X: item.Cell[0], Y: item.Cell[1]}
		if !g.InBounds(cell) {
			return nil, fmt.Errorf("%w: item %d: cell %v outside %dx%d grid", ErrLayoutOutOfRange, i, cell, g.Cols(), g.Rows())
		}
		records = append(records, LayoutRecord{Kind: kind, Cell: cell})
	}
	return records, nil
}

// Apply 通过放置原语回放记录
func (s *LayoutSerializer) Apply(records []LayoutRecord, placer GridPlacer) error {
	for i, r := range records {
		var ok bool
		if r.Kind == types.DeviceCable {
			_, ok = placer.LayCableRaw(r.Rect, r.Direction)
		} else {
			_, ok = placer.PlaceAt(r.Kind, r.Cell)
		}
		if !ok {
			return fmt.Errorf("%w: record %d (%s)", ErrLayoutConflict, i, r.Kind)
		}
	}
	return nil
}

// Load 解析布局数据并回放到网格
//
// 文件缺失或内容损坏时记录警告并保持网格为空(返回 nil);
// 坐标越界、类型未知或重叠属于关卡数据错误,返回错误。
func (s *LayoutSerializer) Load(data []byte, readErr error, source string, g *grid.Grid, placer GridPlacer) error {
	if readErr != nil {
		log.Printf("[LayoutSerializer] Warning: layout %s unavailable: %v (starting with an empty grid)", source, readErr)
		return nil
	}

	doc, err := config.ParseLayoutDocument(data)
	if err != nil {
		log.Printf("[LayoutSerializer] Warning: layout %s is corrupt: %v (starting with an empty grid)", source, err)
		return nil
	}

	records, err := s.FromDocument(doc, g)
	if err != nil {
		return fmt.Errorf("layout %s: %w", source, err)
	}
	if err := s.Apply(records, placer); err != nil {
		return fmt.Errorf("layout %s: %w", source, err)
	}
	log.Printf("[LayoutSerializer] Loaded %d records from %s", len(records), source)
	return nil
}

// LoadEmbedded 加载随游戏发布的布局(data/layouts/...)
func (s *LayoutSerializer) LoadEmbedded(path string, g *grid.Grid, placer GridPlacer) error {
	data, err := embedded.ReadFile(path)
	return s.Load(data, err, path, g, placer)
}

// LoadFile 加载磁盘上的布局存档
func (s *LayoutSerializer) LoadFile(path string, g *grid.Grid, placer GridPlacer) error {
	data, err := os.ReadFile(path)
	return s.Load(data, err, path, g, placer)
}

// Marshal 收集当前网格并序列化为 YAML
func (s *LayoutSerializer) Marshal(em *ecs.EntityManager, g *grid.Grid) ([]byte, error) {
	return config.MarshalLayoutDocument(s.ToDocument(s.Collect(em, g)))
}

// SaveFile 把当前网格保存到磁盘
func (s *LayoutSerializer) SaveFile(path string, em *ecs.EntityManager, g *grid.Grid) error {
	data, err := s.Marshal(em, g)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write layout file: %w", err)
	}
	return nil
}
