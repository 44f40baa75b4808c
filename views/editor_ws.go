package views

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/GrainArc/CragTopo/editor"
	"github.com/GrainArc/CragTopo/linework"
	"github.com/GrainArc/CragTopo/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/paulmach/orb"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

const pingInterval = 30 * time.Second

// submitTimeout 单次保存（含刷新）的超时
const submitTimeout = 20 * time.Second

// EditorHandler 服务端持有编辑会话，浏览器只转发指针事件并按返回的状态绘制
type EditorHandler struct {
	topos *services.TopoService
	hub   services.EventHub
}

func NewEditorHandler(topos *services.TopoService, hub services.EventHub) *EditorHandler {
	return &EditorHandler{topos: topos, hub: hub}
}

// EditorSession 一个 websocket 连接对应的编辑会话
type EditorSession struct {
	id     string
	conn   *websocket.Conn
	editor *editor.Editor
	mu     sync.Mutex // 串行化写 socket
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// ClientMessage 浏览器发来的消息，action 决定使用哪些字段
type ClientMessage struct {
	Action string    `json:"action"`
	Width  float64   `json:"width,omitempty"`
	Height float64   `json:"height,omitempty"`
	Point  []float64 `json:"point,omitempty"`
	Label  *int      `json:"label,omitempty"`
	Index  *int      `json:"index,omitempty"`
}

// ServerMessage 推送给浏览器的消息
type ServerMessage struct {
	Type    string              `json:"type"` // state / saved / error / changed
	Session string              `json:"session,omitempty"`
	Message string              `json:"message,omitempty"`
	State   *editor.EditorView  `json:"state,omitempty"`
	Event   *services.TopoEvent `json:"event,omitempty"`
}

// Connect 升级为 websocket 并开始编辑会话，未登录时只读
func (h *EditorHandler) Connect(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	topo, err := h.topos.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	username := ""
	user, canWrite := CurrentUser(c)
	if canWrite {
		username = user.Name
	}
	ed := editor.NewEditor(topo.ID, topo.FileName, services.NewLocalGateway(h.topos, username), canWrite)
	if err := ed.Refresh(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade to websocket: %v", err)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	session := &EditorSession{
		id:     uuid.New().String(),
		conn:   conn,
		editor: ed,
		ctx:    ctx,
		cancel: cancel,
	}
	log.Printf("编辑会话 %s 开始 topo=%d 用户=%q", session.id, topo.ID, username)
	h.handleSession(session)
}

func (h *EditorHandler) handleSession(session *EditorSession) {
	defer func() {
		session.cancel()
		session.wg.Wait()
		session.conn.Close()
		log.Printf("编辑会话 %s 结束", session.id)
	}()

	if err := session.sendState(); err != nil {
		return
	}

	go session.keepAlive()
	if h.hub != nil {
		events, unsubscribe := h.hub.Subscribe(session.editor.TopoID())
		defer unsubscribe()
		go session.follow(events)
	}

	for {
		var msg ClientMessage
		if err := session.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
		session.handle(msg)
	}
}

// handle 处理一条消息。保存放到协程里执行，期间指针事件照常处理
func (s *EditorSession) handle(msg ClientMessage) {
	switch msg.Action {
	case "submit", "delete":
		deleting := msg.Action == "delete"
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.submit(deleting)
		}()
		return
	}

	ev, err := toEvent(msg)
	if err != nil {
		s.send(ServerMessage{Type: "error", Message: err.Error()})
		return
	}
	if err := s.editor.Apply(ev); err != nil {
		// 图片加载前的点选直接忽略
		if !errors.Is(err, editor.ErrDimensionsNotReady) {
			s.send(ServerMessage{Type: "error", Message: editor.UserMessage(err)})
		}
	}
	s.sendState()
}

func (s *EditorSession) submit(deleting bool) {
	ctx, cancel := context.WithTimeout(s.ctx, submitTimeout)
	defer cancel()

	res, err := s.editor.Submit(ctx, deleting)
	if err != nil {
		log.Printf("编辑会话 %s 保存失败: %v", s.id, err)
		s.send(ServerMessage{Type: "error", Message: editor.UserMessage(err)})
	} else {
		s.send(ServerMessage{Type: "saved", Message: res.Message})
	}
	s.sendState()
}

// follow 其他会话修改了同一张拓扑图时刷新快照
func (s *EditorSession) follow(events <-chan services.TopoEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := s.editor.Refresh(s.ctx); err != nil {
				log.Printf("编辑会话 %s 刷新失败: %v", s.id, err)
				continue
			}
			s.send(ServerMessage{Type: "changed", Event: &ev})
			s.sendState()
		}
	}
}

func (s *EditorSession) keepAlive() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			err := s.conn.WriteMessage(websocket.PingMessage, nil)
			s.mu.Unlock()
			if err != nil {
				log.Printf("Ping failed: %v", err)
				s.cancel()
				s.conn.Close()
				return
			}
		}
	}
}

func (s *EditorSession) sendState() error {
	view := s.editor.View()
	return s.send(ServerMessage{Type: "state", Session: s.id, State: &view})
}

func (s *EditorSession) send(msg ServerMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(msg); err != nil {
		log.Printf("编辑会话 %s 发送失败: %v", s.id, err)
		return err
	}
	return nil
}

// toEvent 把客户端消息转换为状态机事件
func toEvent(msg ClientMessage) (editor.Event, error) {
	point := func() (orb.Point, error) {
		if len(msg.Point) != 2 {
			return orb.Point{}, errors.New("point 需要 [x, y]")
		}
		return orb.Point{msg.Point[0], msg.Point[1]}, nil
	}
	label := func() (int, error) {
		if msg.Label == nil {
			return 0, errors.New("缺少 label")
		}
		return *msg.Label, nil
	}

	switch msg.Action {
	case "load", "resize":
		return editor.ResizeEvent{Dimensions: linework.Dimensions{Width: msg.Width, Height: msg.Height}}, nil
	case "click":
		p, err := point()
		return editor.ClickEvent{Point: p}, err
	case "select":
		l, err := label()
		return editor.SelectEvent{Label: l}, err
	case "press":
		if msg.Index != nil {
			return editor.PressEvent{Index: *msg.Index}, nil
		}
		p, err := point()
		return editor.PressAtEvent{Point: p}, err
	case "move":
		p, err := point()
		return editor.MoveEvent{Point: p}, err
	case "release":
		return editor.ReleaseEvent{}, nil
	case "leave":
		return editor.LeaveEvent{}, nil
	case "retarget":
		l, err := label()
		return editor.RetargetEvent{Label: l}, err
	case "fresh":
		return editor.FreshEvent{}, nil
	case "cancel":
		return editor.CancelEvent{}, nil
	default:
		return nil, errors.New("未知操作: " + msg.Action)
	}
}
