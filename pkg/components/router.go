package components

// RouterComponent 路由器属性
// 经过的数据包倍率被设置为 DamageMultiplier
type RouterComponent struct {
	DamageMultiplier float64
}
