package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"memebot/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Имена файлов снапшотов в каталоге состояния
const (
	positionsFile = "positions.json"
	blacklistFile = "blacklist.json"
)

// PositionsSnapshot - формат файла positions.json
type PositionsSnapshot struct {
	UpdatedAt time.Time                  `json:"updated_at"`
	Positions map[string]models.Position `json:"positions"`
}

// BlacklistSnapshot - формат файла blacklist.json
type BlacklistSnapshot struct {
	UpdatedAt time.Time                        `json:"updated_at"`
	Blacklist map[string]models.BlacklistEntry `json:"blacklist"`
}

// SnapshotStore сохраняет горячее состояние бота на диск
//
// Запись атомарна: сначала во временный файл в том же каталоге, затем
// rename. Частично записанный снапшот не может подменить целый даже
// при падении процесса посреди записи.
type SnapshotStore struct {
	dir    string
	logger *zap.Logger
}

// NewSnapshotStore создаёт стор и каталог состояния при необходимости
func NewSnapshotStore(dir string, logger *zap.Logger) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &SnapshotStore{dir: dir, logger: logger}, nil
}

// SavePositions атомарно записывает снапшот открытых позиций
func (s *SnapshotStore) SavePositions(positions map[string]models.Position) error {
	snap := PositionsSnapshot{
		UpdatedAt: time.Now().UTC(),
		Positions: positions,
	}
	return s.writeAtomic(positionsFile, snap)
}

// SaveBlacklist атомарно записывает снапшот чёрного списка
func (s *SnapshotStore) SaveBlacklist(entries map[string]models.BlacklistEntry) error {
	snap := BlacklistSnapshot{
		UpdatedAt: time.Now().UTC(),
		Blacklist: entries,
	}
	return s.writeAtomic(blacklistFile, snap)
}

// LoadPositions читает снапшот позиций; отсутствие файла - пустой набор
func (s *SnapshotStore) LoadPositions() (map[string]models.Position, error) {
	var snap PositionsSnapshot
	ok, err := s.read(positionsFile, &snap)
	if err != nil {
		return nil, err
	}
	if !ok || snap.Positions == nil {
		return map[string]models.Position{}, nil
	}
	return snap.Positions, nil
}

// LoadBlacklist читает снапшот чёрного списка; отсутствие файла - пустой набор
func (s *SnapshotStore) LoadBlacklist() (map[string]models.BlacklistEntry, error) {
	var snap BlacklistSnapshot
	ok, err := s.read(blacklistFile, &snap)
	if err != nil {
		return nil, err
	}
	if !ok || snap.Blacklist == nil {
		return map[string]models.BlacklistEntry{}, nil
	}
	return snap.Blacklist, nil
}

// writeAtomic сериализует v и подменяет файл через rename
func (s *SnapshotStore) writeAtomic(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}

	final := filepath.Join(s.dir, name)
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

// read возвращает (false, nil) если файла ещё нет
func (s *SnapshotStore) read(name string, v interface{}) (bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", name, err)
	}
	return true, nil
}
