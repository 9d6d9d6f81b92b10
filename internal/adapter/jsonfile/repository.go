package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/aegis/userkit/internal/domain"
	"github.com/aegis/userkit/internal/port"
	"github.com/google/uuid"
)

const backupSuffix = ".bak"

type persistedUser struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

type persistedData struct {
	Version string          `json:"version"`
	NextID  int             `json:"next_id"`
	Users   []persistedUser `json:"users"`
}

// Repository keeps all users in memory and rewrites the whole file on each change
type Repository struct {
	mu       sync.RWMutex
	filePath string
	users    map[int]domain.User
	nextID   int
	version  string
}

func New(filePath string) (*Repository, error) {
	r := &Repository{
		filePath: filePath,
		users:    make(map[int]domain.User),
		nextID:   1,
	}
	if err := r.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return r, nil
}

// load reads the data file, falling back to the backup left by the previous write
func (r *Repository) load() error {
	pd, err := readFile(r.filePath)
	if err != nil {
		bak, bakErr := readFile(r.filePath + backupSuffix)
		if bakErr != nil {
			return err
		}
		pd = bak
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pu := range pd.Users {
		r.users[pu.ID] = domain.User{
			ID:       pu.ID,
			Name:     pu.Name,
			Email:    pu.Email,
			Password: pu.Password,
		}
		if pu.ID >= r.nextID {
			r.nextID = pu.ID + 1
		}
	}
	if pd.NextID > r.nextID {
		r.nextID = pd.NextID
	}
	r.version = pd.Version
	return nil
}

func readFile(path string) (*persistedData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pd persistedData
	if err := json.Unmarshal(data, &pd); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &pd, nil
}

// saveLocked writes the data file. The in-memory version only changes when the write succeeds.
func (r *Repository) saveLocked() error {
	version := uuid.New().String()
	pd := persistedData{
		Version: version,
		NextID:  r.nextID,
		Users:   make([]persistedUser, 0, len(r.users)),
	}
	for _, u := range r.sortedLocked() {
		pd.Users = append(pd.Users, persistedUser{
			ID:       u.ID,
			Name:     u.Name,
			Email:    u.Email,
			Password: u.Password,
		})
	}

	data, err := json.MarshalIndent(pd, "", "  ")
	if err != nil {
		return err
	}
	if err := writeAtomic(r.filePath, data, 0600); err != nil {
		return err
	}
	r.version = version
	return nil
}

// writeAtomic writes data to a temp file in the same directory and renames it
// over path. The previous file is kept as path+".bak".
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+backupSuffix); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("backup %s: %w", path, err)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", tmpPath, err)
	}
	return nil
}

func (r *Repository) sortedLocked() []domain.User {
	result := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Version changes on every successful write
func (r *Repository) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

func (r *Repository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := user.ID
	if id == 0 {
		id = r.nextID
	} else if _, ok := r.users[id]; ok {
		return port.ErrAlreadyExists
	}
	prevNext := r.nextID
	if id >= r.nextID {
		r.nextID = id + 1
	}
	stored := *user
	stored.ID = id
	r.users[id] = stored
	if err := r.saveLocked(); err != nil {
		delete(r.users, id)
		r.nextID = prevNext
		return err
	}
	user.ID = id
	return nil
}

func (r *Repository) Get(ctx context.Context, id int) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return &u, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked(), nil
}

func (r *Repository) SetPassword(ctx context.Context, id int, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return port.ErrNotFound
	}
	updated := u
	updated.SetPassword(password)
	r.users[id] = updated
	if err := r.saveLocked(); err != nil {
		r.users[id] = u
		return err
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return port.ErrNotFound
	}
	delete(r.users, id)
	if err := r.saveLocked(); err != nil {
		r.users[id] = u
		return err
	}
	return nil
}

func (r *Repository) Close() error {
	return nil
}
