package ticketstore

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Ticket - одноразовая привязка токена загрузки к вложению.
// Жизненный цикл: Active -> Consumed либо Active -> Expired, оба конечные.
type Ticket struct {
	AttachmentID string
	ExpiresAt    time.Time
}

// Store - потокобезопасная карта token -> Ticket.
// Store единолично владеет временем жизни тикетов: уборщик и Consume
// работают под одним мьютексом и не могут наблюдать тикет одновременно.
type Store struct {
	mu      sync.Mutex
	tickets map[string]Ticket
	stop    chan struct{}
	once    sync.Once
	logger  *zap.Logger
}

func NewStore(logger *zap.Logger) *Store {
	return &Store{
		tickets: make(map[string]Ticket),
		stop:    make(chan struct{}),
		logger:  logger,
	}
}

// Put регистрирует новый тикет. Токен генерируется криптографически,
// коллизии не ожидаются; повторная вставка того же токена перезапишет тикет.
func (s *Store) Put(token string, ticket Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[token] = ticket
}

// Consume атомарно извлекает тикет по токену. Тикет удаляется при первом
// же обращении, независимо от дальнейшей судьбы загрузки: повторный вызов
// с тем же токеном всегда вернёт ok=false. Просроченный, но ещё не
// убранный тикет считается отсутствующим.
func (s *Store) Consume(token string, now time.Time) (Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, exists := s.tickets[token]
	if !exists {
		return Ticket{}, false
	}
	delete(s.tickets, token)

	if !now.Before(ticket.ExpiresAt) {
		return Ticket{}, false
	}
	return ticket, true
}

// Len возвращает количество живых (в том числе просроченных, но ещё не
// убранных) тикетов.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickets)
}

// StartSweeper запускает фоновую уборку просроченных тикетов.
// Горутина не удерживает мьютекс между проходами и не мешает остановке
// процесса: Close снимает её в любой момент.
func (s *Store) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep(time.Now())
			case <-s.stop:
				return
			}
		}
	}()
}

// Close останавливает уборщик. Повторный вызов безопасен.
func (s *Store) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *Store) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, ticket := range s.tickets {
		if !now.Before(ticket.ExpiresAt) {
			delete(s.tickets, token)
			removed++
		}
	}
	if removed > 0 && s.logger != nil {
		s.logger.Debug("уборка просроченных тикетов загрузки", zap.Int("removed", removed))
	}
}
