// Package cv manages saved CV snapshots and their recycle bin.
//
// The Manager is the only writer of the saved list and the recycle bin. It never
// fails on storage problems: unreadable or corrupt slots read as empty and failed
// writes are logged, so every operation still returns its in-memory result.
// Import is the exception: it moves data out of another namespace, so its write
// failures are returned as ErrStorage. Missing ids are reported through a false ok value or a silent no-op.
package cv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cv-builder/internal/shared/metrics"
	"cv-builder/internal/shared/storage/kv"
	"cv-builder/internal/shared/telemetry"
)

const (
	// DefaultRetention is how long a trashed CV survives before it may be purged.
	DefaultRetention = 30 * 24 * time.Hour

	// SavedKey and TrashKey are the storage slots of the two collections.
	SavedKey = "saved_cvs"
	TrashKey = "trash"

	untitledName = "Untitled CV"
	copySuffix   = " (copy)"

	maxIDAttempts = 8
)

// ErrStorage wraps a failed write that Import reports to its caller.
var ErrStorage = errors.New("cv: storage write failed")

// DocumentStore is the working document the manager snapshots from and loads into.
type DocumentStore interface {
	Get(ctx context.Context) Document
	Replace(ctx context.Context, doc Document) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}

// WithRetention overrides the recycle bin retention window.
func WithRetention(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.retention = d
		}
	}
}

// WithLocker makes the Manager serialize on l instead of a private mutex.
// Managers built for the same namespace must share l to stay atomic.
func WithLocker(l sync.Locker) Option {
	return func(m *Manager) {
		if l != nil {
			m.mu = l
		}
	}
}

// Manager orchestrates the saved CV lifecycle for one storage namespace.
// Operations are serialized, so each is atomic with respect to other callers
// sharing the same lock. Separate processes writing the same namespace
// follow last-write-wins.
type Manager struct {
	mu        sync.Locker
	store     kv.Store
	docs      DocumentStore
	now       func() time.Time
	newID     func() string
	retention time.Duration
}

// NewManager constructs a Manager over store, snapshotting from docs.
func NewManager(store kv.Store, docs DocumentStore, opts ...Option) *Manager {
	m := &Manager{
		mu:        &sync.Mutex{},
		store:     store,
		docs:      docs,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		retention: DefaultRetention,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Retention returns the configured retention window.
func (m *Manager) Retention() time.Duration {
	return m.retention
}

// Save snapshots the working document as a new saved CV. A blank name falls back
// to the document's full name, then to "Untitled CV". Quotas are the caller's concern.
func (m *Manager) Save(ctx context.Context, name string) SavedCV {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := m.docs.Get(ctx)
	now := m.now()
	list := m.readSaved(ctx)
	entry := SavedCV{
		ID:        m.uniqueID(ctx, list),
		Name:      displayName(name, doc),
		CreatedAt: now,
		UpdatedAt: now,
		Template:  templateOf(doc),
		Data:      doc.Clone(),
	}
	list = append(list, entry)
	m.writeSaved(ctx, list)
	metrics.IncSaved()
	return entry
}

// GetAll returns every saved CV in insertion order.
func (m *Manager) GetAll(ctx context.Context) []SavedCV {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readSaved(ctx)
}

// Get looks up a saved CV by id.
func (m *Manager) Get(ctx context.Context, id string) (SavedCV, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.readSaved(ctx)
	idx := indexSaved(list, id)
	if idx < 0 {
		return SavedCV{}, false
	}
	return list[idx], true
}

// Delete moves a saved CV to the recycle bin. Unknown ids are ignored.
func (m *Manager) Delete(ctx context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.readSaved(ctx)
	idx := indexSaved(list, id)
	if idx < 0 {
		return
	}
	entry := list[idx]
	list = append(list[:idx], list[idx+1:]...)

	// The bin is written first: if the second write fails the CV shows up twice
	// instead of vanishing.
	trash := m.readTrash(ctx)
	trash = append(trash, TrashedCV{SavedCV: entry, DeletedAt: m.now()})
	m.writeTrash(ctx, trash)
	m.writeSaved(ctx, list)
	metrics.IncTrashed()
}

// Rename sets a new display name. Blank names and unknown ids leave everything unchanged.
func (m *Manager) Rename(ctx context.Context, id, newName string) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.readSaved(ctx)
	idx := indexSaved(list, id)
	if idx < 0 {
		return
	}
	list[idx].Name = newName
	list[idx].UpdatedAt = m.now()
	m.writeSaved(ctx, list)
}

// Duplicate copies a saved CV under a new id with " (copy)" appended to its name.
func (m *Manager) Duplicate(ctx context.Context, id string) (SavedCV, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.readSaved(ctx)
	idx := indexSaved(list, id)
	if idx < 0 {
		return SavedCV{}, false
	}
	src := list[idx]
	now := m.now()
	dup := SavedCV{
		ID:        m.uniqueID(ctx, list),
		Name:      src.Name + copySuffix,
		CreatedAt: now,
		UpdatedAt: now,
		Template:  src.Template,
		Data:      src.Data.Clone(),
	}
	list = append(list, dup)
	m.writeSaved(ctx, list)
	metrics.IncSaved()
	return dup, true
}

// Load replaces the whole working document with a normalized copy of the saved
// CV's data and returns that copy.
// The working document is untouched when id is unknown.
func (m *Manager) Load(ctx context.Context, id string) (Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.readSaved(ctx)
	idx := indexSaved(list, id)
	if idx < 0 {
		return Document{}, false
	}
	data := list[idx].Data.Normalize()
	if err := m.docs.Replace(ctx, data.Clone()); err != nil {
		metrics.IncStorageError("write")
		telemetry.Warn("cv.load.replace_failed", map[string]any{"id": id, "error": err})
	}
	return data, true
}

// Update re-snapshots the current working document into an existing entry.
func (m *Manager) Update(ctx context.Context, id string) (SavedCV, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.readSaved(ctx)
	idx := indexSaved(list, id)
	if idx < 0 {
		return SavedCV{}, false
	}
	doc := m.docs.Get(ctx)
	list[idx].Data = doc.Clone()
	list[idx].Template = templateOf(doc)
	list[idx].UpdatedAt = m.now()
	m.writeSaved(ctx, list)
	return list[idx], true
}

// Search returns saved CVs whose name contains query, ignoring case.
// A blank query returns everything in insertion order.
func (m *Manager) Search(ctx context.Context, query string) []SavedCV {
	all := m.GetAll(ctx)
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}
	out := make([]SavedCV, 0, len(all))
	for _, entry := range all {
		if strings.Contains(strings.ToLower(entry.Name), q) {
			out = append(out, entry)
		}
	}
	return out
}

// Sort is a convenience for the package-level Sort.
func (m *Manager) Sort(list []SavedCV, field SortField, dir Direction) []SavedCV {
	return Sort(list, field, dir)
}

// Count returns the number of saved CVs.
func (m *Manager) Count(ctx context.Context) int {
	return len(m.GetAll(ctx))
}

// GetTrash purges expired entries and returns what remains in the recycle bin.
// This is the only place expiry happens implicitly; nothing runs in the background.
func (m *Manager) GetTrash(ctx context.Context) []TrashedCV {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept, _ := m.purgeExpired(ctx)
	return kept
}

// TrashCount returns the recycle bin size without purging.
func (m *Manager) TrashCount(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.readTrash(ctx))
}

// PurgeExpired drops recycle bin entries older than the retention window and
// reports how many were removed.
func (m *Manager) PurgeExpired(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, purged := m.purgeExpired(ctx)
	return purged
}

// Restore moves an entry from the recycle bin back to the end of the saved list.
func (m *Manager) Restore(ctx context.Context, id string) (SavedCV, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	trash := m.readTrash(ctx)
	idx := indexTrash(trash, id)
	if idx < 0 {
		return SavedCV{}, false
	}
	entry := trash[idx].SavedCV
	entry.UpdatedAt = m.now()
	trash = append(trash[:idx], trash[idx+1:]...)

	list := m.readSaved(ctx)
	list = append(list, entry)
	m.writeSaved(ctx, list)
	m.writeTrash(ctx, trash)
	metrics.IncRestored()
	return entry, true
}

// PermanentDelete removes an entry from the recycle bin for good.
func (m *Manager) PermanentDelete(ctx context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	trash := m.readTrash(ctx)
	idx := indexTrash(trash, id)
	if idx < 0 {
		return
	}
	trash = append(trash[:idx], trash[idx+1:]...)
	m.writeTrash(ctx, trash)
	metrics.AddPurged(metrics.PurgePermanent, 1)
}

// EmptyTrash removes every entry from the recycle bin.
func (m *Manager) EmptyTrash(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.readTrash(ctx))
	m.writeTrash(ctx, []TrashedCV{})
	metrics.AddPurged(metrics.PurgeEmptied, n)
}

// Clear drops both collections.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range []string{SavedKey, TrashKey} {
		if err := m.store.Delete(ctx, key); err != nil {
			m.logWriteFailure(key, err)
		}
	}
}

// Import appends saved CVs and recycle bin entries taken from another namespace.
// Entries whose id already exists in either collection are skipped. It returns how
// many saved and trashed entries were added. The recycle bin is written first; a
// failed write returns ErrStorage.
func (m *Manager) Import(ctx context.Context, saved []SavedCV, trash []TrashedCV) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.readSaved(ctx)
	bin := m.readTrash(ctx)
	exists := func(id string) bool {
		return id == "" || indexSaved(list, id) >= 0 || indexTrash(bin, id) >= 0
	}

	var addedSaved, addedTrash int
	for _, entry := range saved {
		if exists(entry.ID) {
			continue
		}
		entry.Data = entry.Data.Clone()
		list = append(list, entry)
		addedSaved++
	}
	for _, entry := range trash {
		if exists(entry.ID) {
			continue
		}
		entry.Data = entry.Data.Clone()
		bin = append(bin, entry)
		addedTrash++
	}
	if addedTrash > 0 {
		if err := m.writeTrash(ctx, bin); err != nil {
			return 0, 0, err
		}
	}
	if addedSaved > 0 {
		if err := m.writeSaved(ctx, list); err != nil {
			return 0, addedTrash, err
		}
	}
	return addedSaved, addedTrash, nil
}

func (m *Manager) purgeExpired(ctx context.Context) ([]TrashedCV, int) {
	trash := m.readTrash(ctx)
	cutoff := m.now().Add(-m.retention)
	kept := make([]TrashedCV, 0, len(trash))
	for _, entry := range trash {
		if entry.DeletedAt.IsZero() || entry.DeletedAt.After(cutoff) {
			kept = append(kept, entry)
		}
	}
	purged := len(trash) - len(kept)
	if purged > 0 {
		m.writeTrash(ctx, kept)
		metrics.AddPurged(metrics.PurgeExpired, purged)
	}
	return kept, purged
}

func (m *Manager) uniqueID(ctx context.Context, saved []SavedCV) string {
	trash := m.readTrash(ctx)
	for i := 0; i < maxIDAttempts; i++ {
		id := m.newID()
		if id != "" && indexSaved(saved, id) < 0 && indexTrash(trash, id) < 0 {
			return id
		}
	}
	return uuid.NewString()
}

func (m *Manager) readSaved(ctx context.Context) []SavedCV {
	list := []SavedCV{}
	m.readSlot(ctx, SavedKey, &list)
	if list == nil {
		list = []SavedCV{}
	}
	return list
}

func (m *Manager) readTrash(ctx context.Context) []TrashedCV {
	trash := []TrashedCV{}
	m.readSlot(ctx, TrashKey, &trash)
	if trash == nil {
		trash = []TrashedCV{}
	}
	return trash
}

func (m *Manager) writeSaved(ctx context.Context, list []SavedCV) error {
	return m.writeSlot(ctx, SavedKey, list)
}

func (m *Manager) writeTrash(ctx context.Context, trash []TrashedCV) error {
	return m.writeSlot(ctx, TrashKey, trash)
}

// readSlot decodes key into dst. Any failure leaves dst untouched (empty).
func (m *Manager) readSlot(ctx context.Context, key string, dst any) {
	raw, err := m.store.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			metrics.IncStorageError("read")
			telemetry.Warn("cv.storage.read_failed", map[string]any{"key": key, "error": err})
		}
		return
	}
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		metrics.IncStorageError("read")
		telemetry.Warn("cv.storage.read_failed", map[string]any{"key": key, "error": err, "corrupt": true})
		switch v := dst.(type) {
		case *[]SavedCV:
			*v = []SavedCV{}
		case *[]TrashedCV:
			*v = []TrashedCV{}
		}
	}
}

// writeSlot logs and counts failures. Most callers drop the returned error.
func (m *Manager) writeSlot(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err == nil {
		err = m.store.Write(ctx, key, raw)
	}
	if err != nil {
		m.logWriteFailure(key, err)
		return fmt.Errorf("%w: %s: %w", ErrStorage, key, err)
	}
	return nil
}

func (m *Manager) logWriteFailure(key string, err error) {
	metrics.IncStorageError("write")
	telemetry.Warn("cv.storage.write_failed", map[string]any{"key": key, "error": err})
}

func displayName(name string, doc Document) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if n := strings.TrimSpace(doc.Personal.FullName); n != "" {
		return n
	}
	return untitledName
}

func indexSaved(list []SavedCV, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func indexTrash(list []TrashedCV, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
