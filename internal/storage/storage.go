// /internal/storage/storage.go
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/keshon/datastore"
)

// Datastore keys. Everything lives in one JSON file.
const (
	keyGoals        = "goals"
	keyQueue        = "priority_queue"
	keyThoughts     = "thoughts"
	keyInteractions = "interactions"
)

const (
	thoughtHistoryLimit     int = 500
	interactionHistoryLimit int = 200
)

// Storage is the durable layer over the JSON datastore. It implements the
// goal and conversation store interfaces consumed by the cognition engine.
type Storage struct {
	ds *datastore.DataStore
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// decode re-marshals the datastore's raw value into the concrete type.
// The datastore holds `any`, so values read back after a restart are
// generic JSON maps until decoded.
func decode(raw any, out any) error {
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("error marshalling data: %w", err)
	}
	if err := json.Unmarshal(jsonData, out); err != nil {
		return fmt.Errorf("error unmarshalling record: %w", err)
	}
	return nil
}
