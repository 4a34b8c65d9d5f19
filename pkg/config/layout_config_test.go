package config

import (
	"strings"
	"testing"
)

func TestParseLayoutDocument(t *testing.T) {
	doc, err := ParseLayoutDocument([]byte(`items:
  - {kind: pc, cell: [2, 6]}
  - {kind: cable, rect: {min: [3, 6], max: [9, 6]}, direction: horizontal}
`))
	if err != nil {
		t.Fatalf("ParseLayoutDocument error: %v", err)
	}
	if len(doc.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(doc.Items))
	}
	if doc.Items[0].Cell == nil || *doc.Items[0].Cell != [2]int{2, 6} {
		t.Errorf("pc cell = %v", doc.Items[0].Cell)
	}
	if doc.Items[1].Rect == nil || doc.Items[1].Rect.Max != [2]int{9, 6} {
		t.Errorf("cable rect = %v", doc.Items[1].Rect)
	}
}

func TestParseLayoutDocumentSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown kind", yaml: "items:\n  - {kind: modem, cell: [1, 1]}\n"},
		{name: "device without cell", yaml: "items:\n  - {kind: router}\n"},
		{name: "cable without direction", yaml: "items:\n  - {kind: cable, rect: {min: [1, 1], max: [2, 1]}}\n"},
		{name: "cell wrong arity", yaml: "items:\n  - {kind: pc, cell: [1]}\n"},
		{name: "not yaml", yaml: "items: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseLayoutDocument([]byte(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestMarshalLayoutDocument(t *testing.T) {
	cell := [2]int{4, 5}
	doc := &LayoutDocument{Items: []LayoutItem{
		{Kind: "router", Cell: &cell},
		{Kind: "cable", Rect: &LayoutRect{Min: [2]int{5, 5}, Max: [2]int{8, 5}}, Direction: "horizontal"},
	}}
	data, err := MarshalLayoutDocument(doc)
	if err != nil {
		t.Fatalf("MarshalLayoutDocument error: %v", err)
	}
	if !strings.Contains(string(data), "kind: router") {
		t.Errorf("unexpected output:\n%s", data)
	}

	// 输出必须能通过自身 schema
	back, err := ParseLayoutDocument(data)
	if err != nil {
		t.Fatalf("marshalled layout rejected: %v", err)
	}
	if len(back.Items) != 2 || back.Items[1].Direction != "horizontal" {
		t.Errorf("unexpected parsed layout: %+v", back.Items)
	}
}
