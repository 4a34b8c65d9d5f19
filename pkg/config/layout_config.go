package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LayoutDocument 网格布局文件
// 每条记录是一个设备(单格)或一段线缆(矩形 + 方向)
type LayoutDocument struct {
	Items []LayoutItem `yaml:"items"`
}

// LayoutItem 布局中的一条记录
type LayoutItem struct {
	Kind      string      `yaml:"kind"`
	Cell      *[2]int     `yaml:"cell,omitempty,flow"`
	Rect      *LayoutRect `yaml:"rect,omitempty"`
	Direction string      `yaml:"direction,omitempty"`
}

// LayoutRect 闭区间矩形
type LayoutRect struct {
	Min [2]int `yaml:"min,flow"`
	Max [2]int `yaml:"max,flow"`
}

// ParseLayoutDocument 解析并校验布局 YAML
// 只做结构校验,坐标范围由加载方根据网格尺寸检查
func ParseLayoutDocument(data []byte) (*LayoutDocument, error) {
	if err := ValidateYAML(LayoutSchema, data); err != nil {
		return nil, err
	}
	var doc LayoutDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse layout YAML: %w", err)
	}
	return &doc, nil
}

// MarshalLayoutDocument 序列化布局
func MarshalLayoutDocument(doc *LayoutDocument) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal layout: %w", err)
	}
	return data, nil
}
