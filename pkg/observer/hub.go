// Package observer 通过 websocket 向外部观察者广播模拟状态
//
// 模拟循环调用 Publish 投递编码后的帧,Hub 在自己的 goroutine 中分发,
// 从不访问模拟状态。慢速客户端的帧会被丢弃。
package observer

import (
	"context"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Path 观察者 websocket 路径
const Path = "/observe"

const (
	publishBuffer = 64
	clientBuffer  = 16
	writeTimeout  = 5 * time.Second
)

// Hub 观察者连接管理与帧分发
type Hub struct {
	upgrader websocket.Upgrader
	frames   chan []byte

	mu      sync.Mutex
	clients map[uint64]chan []byte
	closed  bool
	nextID  atomic.Uint64

	dropped atomic.Uint64
}

// NewHub 创建观察者 Hub
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		frames:  make(chan []byte, publishBuffer),
		clients: make(map[uint64]chan []byte),
	}
}

// Publish 编码并投递一帧,队列满时丢弃
// 返回: 编码错误
func (h *Hub) Publish(f *Frame) error {
	data, err := Encode(f)
	if err != nil {
		return err
	}
	select {
	case h.frames <- data:
	default:
		h.dropped.Add(1)
	}
	return nil
}

// Dropped 被丢弃的帧数(包括投递队列和客户端队列)
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// ClientCount 当前连接的观察者数量
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run 分发帧直到 ctx 取消,随后断开所有观察者
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case data := <-h.frames:
			h.broadcast(data)
		}
	}
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.clients {
		select {
		case ch <- data:
		default:
			h.dropped.Add(1)
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.clients {
		close(ch)
		delete(h.clients, id)
	}
}

func (h *Hub) register() (uint64, chan []byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, nil, false
	}
	id := h.nextID.Add(1)
	ch := make(chan []byte, clientBuffer)
	h.clients[id] = ch
	return id, ch, true
}

func (h *Hub) unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[id]; ok {
		close(ch)
		delete(h.clients, id)
	}
}

// Handler 返回 websocket 处理函数
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id, out, ok := h.register()
		if !ok {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(time.Second))
			return
		}
		log.Printf("[Observer] Client %d connected from %s", id, r.RemoteAddr)

		// 读循环只用于发现断开
		readDone := make(chan struct{})
		go func() {
			defer close(readDone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-readDone:
				h.unregister(id)
				log.Printf("[Observer] Client %d disconnected", id)
				return
			case data, ok := <-out:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
					h.unregister(id)
					return
				}
			}
		}
	}
}

// ServeMux 返回挂载了观察者路径的 mux
func (h *Hub) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(Path, h.Handler())
	return mux
}
