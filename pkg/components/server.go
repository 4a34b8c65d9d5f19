package components

// ServerComponent 服务器发射计时
type ServerComponent struct {
	Interval float64 // 发射间隔(秒)
	Elapsed  float64 // 距上次发射的累计时间
}
