package relay

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// pairTimeout bounds how long the first peer on a bridge session waits for
// the second (spec §6, "same 60-second TTL").
const pairTimeout = messageTTL

// pairing holds the two WebSocket connections joining one live-bridge
// session id.
type pairing struct {
	conns [2]*websocket.Conn
	ready chan struct{}
}

// Bridge is the relay's live WebSocket bridge (spec §4.6): two endpoints
// presenting the same session id are paired, told "OK", and from then on
// every frame one sends is forwarded verbatim to the other.
type Bridge struct {
	mutex    sync.Mutex
	pairings map[string]*pairing
	upgrader *websocket.Upgrader
	logger   *logrus.Logger
}

func NewBridge(logger *logrus.Logger) *Bridge {
	return &Bridge{
		pairings: make(map[string]*pairing),
		upgrader: &websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Join upgrades the request to a WebSocket and joins it to sid's pairing,
// waiting for a second peer if it is the first to arrive.
func (b *Bridge) Join(w http.ResponseWriter, r *http.Request, sid string) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Errorf("bridge: upgrade failed for session %s: %v", sid, err)
		return
	}
	defer conn.Close()

	p, slot, isSecond := b.join(sid, conn)
	bridgeConnections.Inc()
	defer bridgeConnections.Dec()

	if isSecond {
		close(p.ready)
	} else {
		select {
		case <-p.ready:
		case <-time.After(pairTimeout):
			b.logger.Infof("bridge: session %s timed out waiting for second peer", sid)
			b.leave(sid)
			return
		}
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("OK")); err != nil {
		b.logger.Errorf("bridge: writing OK for session %s: %v", sid, err)
		return
	}

	peer := p.conns[1-slot]
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			b.logger.Infof("bridge: session %s peer %d disconnected: %v", sid, slot, err)
			break
		}
		framesForwardedTotal.WithLabelValues("live").Inc()
		if err := peer.WriteMessage(msgType, data); err != nil {
			b.logger.Errorf("bridge: forwarding frame for session %s: %v", sid, err)
			break
		}
	}

	b.leave(sid)
}

func (b *Bridge) join(sid string, conn *websocket.Conn) (p *pairing, slot int, isSecond bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	p, ok := b.pairings[sid]
	if !ok {
		p = &pairing{ready: make(chan struct{})}
		b.pairings[sid] = p
	}
	if p.conns[0] == nil {
		p.conns[0] = conn
		return p, 0, false
	}
	p.conns[1] = conn
	return p, 1, true
}

func (b *Bridge) leave(sid string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	delete(b.pairings, sid)
}
