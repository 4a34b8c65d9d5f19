package app

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneFactory 按关卡 ID 创建战斗场景
// 选关场景和结算场景通过它进入关卡,避免彼此直接引用
type SceneFactory func(levelID string) Scene

// SceneManager 控制当前活动的场景
// 任意时刻只有一个场景的 Update 和 Draw 会被调用
type SceneManager struct {
	currentScene Scene
	sceneFactory SceneFactory
	menuFactory  func() Scene
}

// NewSceneManager 创建没有活动场景的管理器
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SetSceneFactory 设置战斗场景工厂
func (sm *SceneManager) SetSceneFactory(factory SceneFactory) {
	sm.sceneFactory = factory
}

// SetMenuFactory 设置选关场景工厂
func (sm *SceneManager) SetMenuFactory(factory func() Scene) {
	sm.menuFactory = factory
}

// SwitchTo 切换到指定场景
func (sm *SceneManager) SwitchTo(scene Scene) {
	sm.currentScene = scene
}

// GetCurrentScene 返回当前活动场景,没有时返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// LoadLevel 创建并切换到指定关卡的战斗场景
// 工厂返回 nil 时保持当前场景
func (sm *SceneManager) LoadLevel(levelID string) bool {
	log.Printf("[SceneManager] Loading level: %s", levelID)

	if sm.sceneFactory == nil {
		log.Printf("[SceneManager] Error: scene factory not set")
		return false
	}

	newScene := sm.sceneFactory(levelID)
	if newScene == nil {
		log.Printf("[SceneManager] Error: failed to create scene for level %s", levelID)
		return false
	}
	sm.SwitchTo(newScene)
	return true
}

// ShowMenu 切换到选关场景
func (sm *SceneManager) ShowMenu() {
	if sm.menuFactory == nil {
		log.Printf("[SceneManager] Error: menu factory not set")
		return
	}
	sm.SwitchTo(sm.menuFactory())
}

// Update 更新当前场景,没有场景时什么也不做
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw 绘制当前场景,没有场景时什么也不做
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}

// SaveOnExit 让当前场景在关闭窗口前保存状态
func (sm *SceneManager) SaveOnExit() bool {
	if s, ok := sm.currentScene.(Saveable); ok {
		return s.SaveOnExit()
	}
	return true
}
