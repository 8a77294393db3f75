package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Ey-luccas/luanova-sub000/internal/application/inventory"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// MessageTypeStockUpdate tipo del mensaje que se envía tras cada cambio de stock confirmado.
const MessageTypeStockUpdate = "stock_update"

// writeWait tiempo máximo para escribir un mensaje a un cliente; vencido, el cliente se descarta.
const writeWait = 5 * time.Second

// LocalCompanyID clave de c.Locals con la empresa autenticada (la pone el middleware HTTP).
const LocalCompanyID = "company_id"

var _ inventory.StockNotifier = (*Hub)(nil)

// StockUpdateMessage cuerpo JSON enviado a los clientes de una empresa.
type StockUpdateMessage struct {
	Type    string                  `json:"type"`
	Changes []inventory.StockChange `json:"changes"`
	SentAt  time.Time               `json:"sent_at"`
}

type outbound struct {
	companyID string
	payload   []byte
}

type registration struct {
	conn      *websocket.Conn
	companyID string
}

// Hub mantiene las conexiones websocket por empresa y difunde los cambios de stock.
// Solo la goroutine de Run toca el mapa de clientes.
type Hub struct {
	clients    map[*websocket.Conn]string
	register   chan registration
	unregister chan *websocket.Conn
	broadcast  chan outbound
	done       chan struct{}
	log        zerolog.Logger
}

// NewHub crea el hub. buffer es la capacidad de la cola de difusión.
func NewHub(log zerolog.Logger, buffer int) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		clients:    make(map[*websocket.Conn]string),
		register:   make(chan registration),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan outbound, buffer),
		done:       make(chan struct{}),
		log:        log.With().Str("component", "ws_hub").Logger(),
	}
}

// Run atiende altas, bajas y difusiones hasta que ctx termine; al salir cierra las conexiones.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for conn := range h.clients {
				_ = conn.Close()
				delete(h.clients, conn)
			}
			return

		case reg := <-h.register:
			h.clients[reg.conn] = reg.companyID
			h.log.Debug().Str("company_id", reg.companyID).Int("clients", len(h.clients)).Msg("cliente ws conectado")

		case conn := <-h.unregister:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				_ = conn.Close()
			}

		case msg := <-h.broadcast:
			for conn, companyID := range h.clients {
				if companyID != msg.companyID {
					continue
				}
				if err := h.write(conn, msg.payload); err != nil {
					h.log.Debug().Err(err).Str("company_id", companyID).Msg("cliente ws descartado")
					_ = conn.Close()
					delete(h.clients, conn)
				}
			}
		}
	}
}

func (h *Hub) write(conn *websocket.Conn, payload []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// add entrega el alta a Run. false si Run ya terminó.
func (h *Hub) add(reg registration) bool {
	select {
	case h.register <- reg:
		return true
	case <-h.done:
		return false
	}
}

// remove entrega la baja a Run; tras su salida no hace nada.
func (h *Hub) remove(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// NotifyStockChanged encola un mensaje por empresa. Nunca bloquea al caller: si la cola
// está llena el mensaje se descarta y se registra.
func (h *Hub) NotifyStockChanged(_ context.Context, changes []inventory.StockChange) {
	for companyID, group := range groupByCompany(changes) {
		payload, err := json.Marshal(StockUpdateMessage{
			Type:    MessageTypeStockUpdate,
			Changes: group,
			SentAt:  time.Now().UTC(),
		})
		if err != nil {
			h.log.Error().Err(err).Msg("serializar stock_update")
			continue
		}
		select {
		case h.broadcast <- outbound{companyID: companyID, payload: payload}:
		default:
			h.log.Warn().Str("company_id", companyID).Msg("cola ws llena, stock_update descartado")
		}
	}
}

func groupByCompany(changes []inventory.StockChange) map[string][]inventory.StockChange {
	out := make(map[string][]inventory.StockChange)
	for _, c := range changes {
		out[c.CompanyID] = append(out[c.CompanyID], c)
	}
	return out
}

// Handler endpoint websocket. Debe montarse detrás del middleware que autentica y fija LocalCompanyID.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		companyID, _ := c.Locals(LocalCompanyID).(string)
		if !h.add(registration{conn: c, companyID: companyID}) {
			return
		}
		defer h.remove(c)
		for {
			// Solo lectura para detectar el cierre; los clientes no envían comandos.
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	})
}

// Upgrade rechaza con 426 las peticiones que no piden upgrade a websocket.
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
