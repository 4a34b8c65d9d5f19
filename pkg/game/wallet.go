package game

// Wallet 玩家货币
// 任何扣款都是全有或全无:余额不足时拒绝整笔操作,余额永远不会为负
type Wallet struct {
	value int
}

// NewWallet 创建钱包,初始值为负时按 0 处理
func NewWallet(initial int) *Wallet {
	if initial < 0 {
		initial = 0
	}
	return &Wallet{value: initial}
}

// Balance 返回当前余额
func (w *Wallet) Balance() int {
	return w.value
}

// CanAfford 余额是否足够支付 price
func (w *Wallet) CanAfford(price int) bool {
	return price >= 0 && w.value >= price
}

// Spend 扣除货币，如果余额不足返回 false
// 只有当余额充足时才会扣除，否则返回false表示操作失败
func (w *Wallet) Spend(price int) bool {
	if !w.CanAfford(price) {
		return false
	}
	w.value -= price
	return true
}

// Earn 增加货币,负数被忽略
func (w *Wallet) Earn(amount int) {
	if amount <= 0 {
		return
	}
	w.value += amount
}

// Apply 按增量修改余额,结果为负时拒绝
func (w *Wallet) Apply(delta int) bool {
	if w.value+delta < 0 {
		return false
	}
	w.value += delta
	return true
}
