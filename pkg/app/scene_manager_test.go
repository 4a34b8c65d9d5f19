package app

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// mockScene 记录调用情况的场景
type mockScene struct {
	updateCalled bool
	drawCalled   bool
	deltaTime    float64
	saved        bool
	saveResult   bool
}

func (m *mockScene) Update(deltaTime float64) {
	m.updateCalled = true
	m.deltaTime = deltaTime
}

func (m *mockScene) Draw(screen *ebiten.Image) {
	m.drawCalled = true
}

// saveableScene 同时实现 Saveable
type saveableScene struct {
	mockScene
}

func (s *saveableScene) SaveOnExit() bool {
	s.saved = true
	return s.saveResult
}

func TestSceneManagerSwitchTo(t *testing.T) {
	sm := NewSceneManager()
	if sm.GetCurrentScene() != nil {
		t.Fatal("expected no scene initially")
	}
	scene := &mockScene{}
	sm.SwitchTo(scene)
	if sm.GetCurrentScene() != scene {
		t.Error("SwitchTo did not set the current scene")
	}
}

func TestSceneManagerUpdateAndDraw(t *testing.T) {
	sm := NewSceneManager()
	sm.Update(0.016) // 没有场景时不应 panic
	sm.Draw(nil)

	scene := &mockScene{}
	sm.SwitchTo(scene)
	sm.Update(0.016)
	sm.Draw(nil)

	if !scene.updateCalled || scene.deltaTime != 0.016 {
		t.Errorf("Update not forwarded: called=%v dt=%v", scene.updateCalled, scene.deltaTime)
	}
	if !scene.drawCalled {
		t.Error("Draw not forwarded")
	}
}

func TestSceneManagerLoadLevel(t *testing.T) {
	sm := NewSceneManager()
	if sm.LoadLevel("easy") {
		t.Fatal("LoadLevel without factory should fail")
	}

	created := map[string]*mockScene{}
	sm.SetSceneFactory(func(levelID string) Scene {
		if levelID == "missing" {
			return nil
		}
		s := &mockScene{}
		created[levelID] = s
		return s
	})

	if !sm.LoadLevel("easy") {
		t.Fatal("LoadLevel(easy) failed")
	}
	if sm.GetCurrentScene() != created["easy"] {
		t.Error("current scene is not the factory result")
	}

	if sm.LoadLevel("missing") {
		t.Error("LoadLevel should fail when the factory returns nil")
	}
	if sm.GetCurrentScene() != created["easy"] {
		t.Error("failed LoadLevel must keep the current scene")
	}
}

func TestSceneManagerShowMenu(t *testing.T) {
	sm := NewSceneManager()
	sm.ShowMenu() // 没有工厂时保持原样

	menu := &mockScene{}
	sm.SetMenuFactory(func() Scene { return menu })
	sm.ShowMenu()
	if sm.GetCurrentScene() != menu {
		t.Error("ShowMenu did not switch to the menu scene")
	}
}

func TestSceneManagerSaveOnExit(t *testing.T) {
	sm := NewSceneManager()
	if !sm.SaveOnExit() {
		t.Error("no scene should report success")
	}

	sm.SwitchTo(&mockScene{})
	if !sm.SaveOnExit() {
		t.Error("non-saveable scene should report success")
	}

	s := &saveableScene{mockScene: mockScene{saveResult: false}}
	sm.SwitchTo(s)
	if sm.SaveOnExit() {
		t.Error("expected the scene's failure to be reported")
	}
	if !s.saved {
		t.Error("SaveOnExit was not forwarded")
	}
}
