package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/richard-senior/rfef/internal/logger"
	"github.com/richard-senior/rfef/pkg/league"
)

// OfficialResultsKey is the Redis key holding the official results document
const OfficialResultsKey = "official_results_data"

// OfficialStore persists the official results document
type OfficialStore interface {
	Load(ctx context.Context) (league.OfficialResults, error)
	Save(ctx context.Context, results league.OfficialResults) error
}

func emptyOfficial() league.OfficialResults {
	return league.OfficialResults{Matchdays: []league.MatchdayUpdate{}}
}

func decodeOfficial(data []byte) (league.OfficialResults, error) {
	var o league.OfficialResults
	if err := json.Unmarshal(data, &o); err != nil {
		return league.OfficialResults{}, fmt.Errorf("failed to decode official results: %w", err)
	}
	if o.Matchdays == nil {
		o.Matchdays = []league.MatchdayUpdate{}
	}
	return o, nil
}

// NewRedisClient connects to Redis and checks the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	logger.Info("Connected to redis", addr)
	return client, nil
}

// RedisOfficialStore keeps the document as JSON under a single key
type RedisOfficialStore struct {
	client *redis.Client
	key    string
}

func NewRedisOfficialStore(client *redis.Client) *RedisOfficialStore {
	return &RedisOfficialStore{client: client, key: OfficialResultsKey}
}

// Load returns the stored document, or an empty one when the key is missing
func (s *RedisOfficialStore) Load(ctx context.Context) (league.OfficialResults, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return emptyOfficial(), nil
	}
	if err != nil {
		return league.OfficialResults{}, fmt.Errorf("failed to read %s: %w", s.key, err)
	}
	return decodeOfficial(data)
}

func (s *RedisOfficialStore) Save(ctx context.Context, results league.OfficialResults) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to encode official results: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.key, err)
	}
	return nil
}

// FileOfficialStore keeps the document in a JSON file
type FileOfficialStore struct {
	path string
	mu   sync.Mutex
}

func NewFileOfficialStore(path string) *FileOfficialStore {
	return &FileOfficialStore{path: path}
}

func (s *FileOfficialStore) Load(ctx context.Context) (league.OfficialResults, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return emptyOfficial(), nil
	}
	if err != nil {
		return league.OfficialResults{}, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return decodeOfficial(data)
}

func (s *FileOfficialStore) Save(ctx context.Context, results league.OfficialResults) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSONFile(s.path, results)
}

// writeJSONFile writes through a temporary file so readers never see a
// partial document
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
