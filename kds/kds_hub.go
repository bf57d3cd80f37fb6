// Package kds is the websocket hub that pushes table session changes to every
// connected console.
package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/venue-app/models"
	"github.com/yeremiapane/venue-app/utils"
)

// Event types
const (
	EventSessionUpdate   = "session_update"
	EventTableCreate     = "table_create"
	EventDashboardUpdate = "dashboard_update"
)

const writeWait = 10 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// SessionUpdate is the payload of EventSessionUpdate. Session is nil when the
// table became free.
type SessionUpdate struct {
	TableUUID string               `json:"tableUuid"`
	Session   *models.TableSession `json:"session"`
}

// client membungkus satu koneksi; writeMu menjaga hanya satu writer per koneksi
type client struct {
	conn        *websocket.Conn
	companyUUID string
	writeMu     sync.Mutex
}

// Hub menampung semua koneksi console, dikelompokkan per company
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

// RegisterClient -> menambahkan connection. companyUUID kosong menerima semua event
func (h *Hub) RegisterClient(conn *websocket.Conn, companyUUID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = &client{conn: conn, companyUUID: companyUUID}
}

// UnregisterClient -> melepaskan connection
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	conn.Close()
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// BroadcastSessionUpdate -> session meja berubah (book, start, recharge, stop, expired)
func (h *Hub) BroadcastSessionUpdate(companyUUID, tableUUID string, session *models.TableSession) {
	h.broadcast(companyUUID, Message{
		Event: EventSessionUpdate,
		Data:  SessionUpdate{TableUUID: tableUUID, Session: session},
	})
}

// BroadcastTableCreate -> notifikasi meja baru dibuat
func (h *Hub) BroadcastTableCreate(table models.Table) {
	h.broadcast(table.CompanyUUID, Message{
		Event: EventTableCreate,
		Data:  table,
	})
}

// BroadcastDashboardUpdate -> update counter dashboard
func (h *Hub) BroadcastDashboardUpdate(companyUUID string, data interface{}) {
	h.broadcast(companyUUID, Message{
		Event: EventDashboardUpdate,
		Data:  data,
	})
}

func (h *Hub) broadcast(companyUUID string, msg Message) {
	if h == nil {
		return
	}
	// Tanpa company event tidak boleh bocor ke console company lain
	if companyUUID == "" {
		utils.ErrorLogger.Warnf("Dropping %s broadcast without company", msg.Event)
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling message: %v", err)
		return
	}

	targets := h.targets(companyUUID)
	utils.InfoLogger.Debugf("Broadcasting %s to %d clients", msg.Event, len(targets))

	for _, cl := range targets {
		cl.writeMu.Lock()
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := cl.conn.WriteMessage(websocket.TextMessage, data)
		cl.writeMu.Unlock()
		if err != nil {
			utils.ErrorLogger.Warnf("Error sending message to client: %v", err)
			h.UnregisterClient(cl.conn)
		}
	}
}

// targets mengambil snapshot client company supaya write tidak menahan lock hub
func (h *Hub) targets(companyUUID string) []*client {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	out := make([]*client, 0, len(h.clients))
	for _, cl := range h.clients {
		if cl.companyUUID != "" && cl.companyUUID != companyUUID {
			continue
		}
		out = append(out, cl)
	}
	return out
}
