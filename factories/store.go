package factories

import (
	"fmt"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"voicekit/core"
	"voicekit/store"
)

// NewStores builds the conversation log and status register for the
// configured backend.
func NewStores(s Settings, logger *core.Logger) (store.ConversationLog, store.StatusRegister, error) {
	switch s.StoreBackend {
	case "", "file":
		convLog, err := store.NewFileLog(filepath.Join(s.DataDir, "conv.txt"))
		if err != nil {
			return nil, nil, err
		}
		status, err := store.NewFileStatus(filepath.Join(s.DataDir, "status.txt"))
		if err != nil {
			return nil, nil, err
		}
		return convLog, status, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: s.RedisAddr})
		return store.NewRedisLog(client, "voicekit:conversation"),
			store.NewRedisStatus(client, "voicekit:status"), nil
	case "memory":
		return store.NewMemoryLog(), store.NewMemoryStatus(), nil
	default:
		return nil, nil, fmt.Errorf("factories: unknown store backend %q", s.StoreBackend)
	}
}
