package ecs

import (
	"reflect"
	"testing"
)

// 测试组件类型定义
type testPositionComponent struct {
	X, Y float64
}

type testVelocityComponent struct {
	VX, VY float64
}

func TestCreateEntity(t *testing.T) {
	em := NewEntityManager()
	id1 := em.CreateEntity()
	id2 := em.CreateEntity()

	// 测试实体ID唯一性
	if id1 == id2 {
		t.Error("Entity IDs should be unique")
	}

	// 测试ID从1开始,0 保留给空格子
	if id1 != 1 {
		t.Errorf("First entity ID should be 1, got %d", id1)
	}
	if id2 != 2 {
		t.Errorf("Second entity ID should be 2, got %d", id2)
	}
}

func TestAddAndGetComponent(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	em.AddComponent(id, &testPositionComponent{X: 100, Y: 200})

	comp, found := em.GetComponent(id, reflect.TypeOf(&testPositionComponent{}))
	if !found {
		t.Fatal("Component should be found")
	}
	retrieved := comp.(*testPositionComponent)
	if retrieved.X != 100 || retrieved.Y != 200 {
		t.Errorf("Component data mismatch, expected (100, 200), got (%f, %f)", retrieved.X, retrieved.Y)
	}
}

func TestGenericComponentAccess(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	AddComponent(em, id, &testPositionComponent{X: 3, Y: 4})

	pos, ok := GetComponent[*testPositionComponent](em, id)
	if !ok || pos.X != 3 || pos.Y != 4 {
		t.Fatalf("GetComponent returned (%v, %v)", pos, ok)
	}
	if !HasComponent[*testPositionComponent](em, id) {
		t.Error("HasComponent should be true")
	}
	if _, ok := GetComponent[*testVelocityComponent](em, id); ok {
		t.Error("velocity component should be absent")
	}

	RemoveComponent[*testPositionComponent](em, id)
	if HasComponent[*testPositionComponent](em, id) {
		t.Error("component should be removed")
	}
}

func TestDestroyEntity(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	em.AddComponent(id, &testPositionComponent{})

	em.DestroyEntity(id)

	// 标记后实体仍在 arena 中,但不再视为存活
	if !em.Exists(id) {
		t.Error("Entity should still exist before RemoveMarkedEntities")
	}
	if em.IsAlive(id) {
		t.Error("Marked entity should not be alive")
	}

	if removed := em.RemoveMarkedEntities(); removed != 1 {
		t.Errorf("expected 1 removed entity, got %d", removed)
	}
	if em.Exists(id) {
		t.Error("Entity should be removed after RemoveMarkedEntities")
	}
}

func TestDestroyEntityTwiceIsIdempotent(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	em.DestroyEntity(id)
	em.DestroyEntity(id)
	em.DestroyEntity(999) // 不存在的实体

	if removed := em.RemoveMarkedEntities(); removed != 1 {
		t.Errorf("expected 1 removed entity, got %d", removed)
	}
	if removed := em.RemoveMarkedEntities(); removed != 0 {
		t.Errorf("second flush should remove nothing, got %d", removed)
	}
}

func TestGetEntitiesWith(t *testing.T) {
	em := NewEntityManager()

	e1 := em.CreateEntity()
	em.AddComponent(e1, &testPositionComponent{})
	em.AddComponent(e1, &testVelocityComponent{})

	e2 := em.CreateEntity()
	em.AddComponent(e2, &testPositionComponent{})

	e3 := em.CreateEntity()
	em.AddComponent(e3, &testPositionComponent{})
	em.AddComponent(e3, &testVelocityComponent{})

	both := GetEntitiesWith2[*testPositionComponent, *testVelocityComponent](em)
	if len(both) != 2 || both[0] != e1 || both[1] != e3 {
		t.Errorf("expected [%d %d] in ascending order, got %v", e1, e3, both)
	}

	withPos := GetEntitiesWith1[*testPositionComponent](em)
	if len(withPos) != 3 {
		t.Errorf("expected 3 entities with position, got %d", len(withPos))
	}

	// 已标记删除的实体不参与查询
	em.DestroyEntity(e1)
	both = GetEntitiesWith2[*testPositionComponent, *testVelocityComponent](em)
	if len(both) != 1 || both[0] != e3 {
		t.Errorf("expected only %d after destroy, got %v", e3, both)
	}
}

func TestQueryOrderIsDeterministic(t *testing.T) {
	em := NewEntityManager()
	for i := 0; i < 50; i++ {
		id := em.CreateEntity()
		em.AddComponent(id, &testPositionComponent{X: float64(i)})
	}

	ids := GetEntitiesWith1[*testPositionComponent](em)
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("ids not ascending at %d: %v", i, ids)
		}
	}
}

func TestClear(t *testing.T) {
	em := NewEntityManager()
	first := em.CreateEntity()
	em.CreateEntity()

	em.Clear()
	if em.Count() != 0 {
		t.Errorf("expected empty manager, got %d entities", em.Count())
	}

	// ID 不回退,避免旧引用误指新实体
	if next := em.CreateEntity(); next <= first {
		t.Errorf("ID should keep increasing after Clear, got %d", next)
	}
}
