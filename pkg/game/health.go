package game

// Health 玩家生命值
// 伤害只会让生命值减少,最低为 0
type Health struct {
	value int
	max   int
}

// NewHealth 创建满血的生命值
func NewHealth(max int) *Health {
	if max < 0 {
		max = 0
	}
	return &Health{value: max, max: max}
}

// Value 当前生命值
func (h *Health) Value() int {
	return h.value
}

// Max 最大生命值
func (h *Health) Max() int {
	return h.max
}

// Damage 扣除生命值,返回实际扣除的数值
// 非正数伤害被忽略
func (h *Health) Damage(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > h.value {
		amount = h.value
	}
	h.value -= amount
	return amount
}

// IsDepleted 生命值是否耗尽
func (h *Health) IsDepleted() bool {
	return h.value <= 0
}

// Restore 设置生命值(用于读档),超出范围的值被截断
func (h *Health) Restore(value int) {
	h.value = min(max(value, 0), h.max)
}
