package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Константы для типов сообщений WebSocket
const (
	TripStatusUpdateType    = "TRIP_STATUS_UPDATE"
	RequestStatusUpdateType = "REQUEST_STATUS_UPDATE"
	BookingStatusUpdateType = "BOOKING_STATUS_UPDATE"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

// WebSocketMessage представляет формат сообщения WebSocket
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocketManager управляет подключениями пользователей
type WebSocketManager struct {
	clientsByUser map[string]map[*WebSocketClient]bool
	register      chan *WebSocketClient
	unregister    chan *WebSocketClient
	done          chan struct{}
	stopOnce      sync.Once
	mutex         sync.RWMutex
}

// WebSocketClient - одно соединение пользователя
type WebSocketClient struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Разрешаем подключения с любых источников
	},
}

// NewWebSocketManager создает новый менеджер WebSocket
func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clientsByUser: make(map[string]map[*WebSocketClient]bool),
		register:      make(chan *WebSocketClient),
		unregister:    make(chan *WebSocketClient),
		done:          make(chan struct{}),
	}
}

// Start запускает обработку регистраций
func (manager *WebSocketManager) Start() {
	slog.Info("запуск WebSocket Manager")
	go func() {
		for {
			select {
			case client := <-manager.register:
				manager.mutex.Lock()
				if _, ok := manager.clientsByUser[client.userID]; !ok {
					manager.clientsByUser[client.userID] = make(map[*WebSocketClient]bool)
				}
				manager.clientsByUser[client.userID][client] = true
				manager.mutex.Unlock()
				slog.Debug("клиент WebSocket зарегистрирован", "user_id", client.userID)

			case client := <-manager.unregister:
				manager.remove(client)

			case <-manager.done:
				manager.mutex.Lock()
				for userID, clients := range manager.clientsByUser {
					for client := range clients {
						close(client.send)
					}
					delete(manager.clientsByUser, userID)
				}
				manager.mutex.Unlock()
				return
			}
		}
	}()
}

// Stop закрывает все соединения и останавливает менеджер
func (manager *WebSocketManager) Stop() {
	manager.stopOnce.Do(func() { close(manager.done) })
}

func (manager *WebSocketManager) remove(client *WebSocketClient) {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	clients, ok := manager.clientsByUser[client.userID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(manager.clientsByUser, client.userID)
	}
	slog.Debug("клиент WebSocket отключен", "user_id", client.userID)
}

// ConnectionCount возвращает число активных соединений пользователя
func (manager *WebSocketManager) ConnectionCount(userID string) int {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()
	return len(manager.clientsByUser[userID])
}

// BroadcastToUser отправляет сообщение всем подключениям конкретного пользователя
func (manager *WebSocketManager) BroadcastToUser(userID string, message *WebSocketMessage) {
	if userID == "" {
		return
	}

	jsonMessage, err := json.Marshal(message)
	if err != nil {
		slog.Error("ошибка при кодировании сообщения WebSocket", "error", err)
		return
	}

	manager.mutex.RLock()
	defer manager.mutex.RUnlock()

	for client := range manager.clientsByUser[userID] {
		select {
		case client.send <- jsonMessage:
		default:
			// Медленный клиент: пропускаем сообщение, соединение закроется по ошибке записи
			slog.Warn("очередь WebSocket переполнена", "user_id", userID, "type", message.Type)
		}
	}
}

// Handler подключает авторизованного пользователя к WebSocket
func (manager *WebSocketManager) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Пользователь не авторизован"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Warn("ошибка обновления соединения до WebSocket", "user_id", userID, "error", err)
			return
		}

		client := &WebSocketClient{
			conn:   conn,
			userID: userID,
			send:   make(chan []byte, sendBuffer),
		}

		select {
		case manager.register <- client:
		case <-manager.done:
			conn.Close()
			return
		}

		go manager.writePump(client)
		go manager.readPump(client)
	}
}

// writePump - единственный писатель в соединение
func (manager *WebSocketManager) writePump(client *WebSocketClient) {
	defer client.conn.Close()

	for message := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			slog.Warn("ошибка при отправке сообщения WebSocket", "user_id", client.userID, "error", err)
			manager.disconnect(client)
			return
		}
	}
	client.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump читает сообщения клиента и отвечает на ping
func (manager *WebSocketManager) readPump(client *WebSocketClient) {
	defer manager.disconnect(client)

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		var data map[string]interface{}
		if err := json.Unmarshal(message, &data); err != nil {
			continue
		}
		if msgType, ok := data["type"].(string); ok && msgType == "ping" {
			pong, _ := json.Marshal(map[string]interface{}{
				"type": "pong",
				"time": time.Now().Unix(),
			})
			manager.mutex.RLock()
			if manager.clientsByUser[client.userID][client] {
				select {
				case client.send <- pong:
				default:
				}
			}
			manager.mutex.RUnlock()
		}
	}
}

func (manager *WebSocketManager) disconnect(client *WebSocketClient) {
	select {
	case manager.unregister <- client:
	case <-manager.done:
	}
}
