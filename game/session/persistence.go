package session

import (
	"time"

	"github.com/jebob/snakes-and-ladders/game/engine"
	"github.com/jebob/snakes-and-ladders/game/service"
)

// SessionPersistence abstracts durable session storage.
type SessionPersistence interface {
	Save(sess *service.Session) error
	Load(id string) (*service.Session, error)
	Delete(id string) error
	ListAll() ([]string, error)
	Exists(id string) bool
}

// PersistedSessionData is the on-disk form of a session. The simulation is
// not stored wholesale; the config ID plus position and stats are enough to
// rebuild it.
type PersistedSessionData struct {
	ID             string       `json:"id"`
	ConfigID       string       `json:"config_id"`
	CreatedAt      time.Time    `json:"created_at"`
	LastAccessedAt time.Time    `json:"last_accessed_at"`
	Position       int          `json:"position"`
	Stats          engine.Stats `json:"stats"`
}
