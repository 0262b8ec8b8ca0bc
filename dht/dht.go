// Package dht exposes the single facade of the simulator: machine join
// and leave, file insert/search/delete routed from any start machine, and
// ring inspection. One DHT value is one coherent instance; the caller owns
// it and drives it from a single goroutine.
package dht

import (
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pkg/errors"

	"ringdht/index"
	"ringdht/rdcommon"
	"ringdht/rdlogger"
	"ringdht/ring"
)

type routeKey struct {
	start rdcommon.ID
	key   rdcommon.ID
}

type DHT struct {
	cfg   Config
	space rdcommon.Space
	ring  *ring.Ring
	log   *rdlogger.RingLogger

	// Route results depend only on topology, so they are memoized in a
	// bounded LRU with a TTL; every join or leave purges the cache.
	routes *expirable.LRU[routeKey, []rdcommon.ID]
}

// New builds an empty DHT instance. Configuration is one-shot; every
// violation reports ErrInvalidConfiguration.
func New(cfg Config) (*DHT, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	space, err := rdcommon.NewSpace(cfg.Bits)
	if err != nil {
		return nil, err
	}
	log := rdlogger.NewRingDebugLogger()
	r, err := ring.NewRing(space, cfg.Backend, cfg.Order, log)
	if err != nil {
		return nil, err
	}
	return &DHT{
		cfg:    cfg,
		space:  space,
		ring:   r,
		log:    log,
		routes: expirable.NewLRU[routeKey, []rdcommon.ID](cfg.RouteCacheSize, nil, cfg.RouteCacheTTL),
	}, nil
}

func (d *DHT) Space() rdcommon.Space {
	return d.space
}

// HashKey maps a file path into the identifier space with the instance's
// hash provider.
func (d *DHT) HashKey(path string) rdcommon.ID {
	return rdcommon.HashInSpace(path, d.space)
}

// Join adds a machine. The new machine pulls from its successor the
// records in the arc it now owns; every finger table is rebuilt before
// Join returns.
func (d *DHT) Join(id rdcommon.ID) (JoinOutcome, error) {
	_, moved, err := d.ring.Join(id)
	if err != nil {
		return JoinOutcome{}, err
	}
	d.routes.Purge()
	return JoinOutcome{ID: id, Moved: moved}, nil
}

// JoinAll adds several machines, the bootstrap form. Invalid ids are
// skipped and reported rather than failing the batch; finger tables are
// rebuilt once at the end.
func (d *DHT) JoinAll(ids []rdcommon.ID) JoinAllOutcome {
	joined, skipped := d.ring.JoinAll(ids)
	if len(joined) > 0 {
		d.routes.Purge()
	}
	return JoinAllOutcome{Joined: joined, Skipped: skipped}
}

// Leave removes a machine, pushing its records to its successor. When the
// last machine leaves its records are lost and the count is reported.
func (d *DHT) Leave(id rdcommon.ID) (LeaveOutcome, error) {
	moved, lost, err := d.ring.Leave(id)
	if err != nil {
		return LeaveOutcome{}, err
	}
	d.routes.Purge()
	return LeaveOutcome{ID: id, Moved: moved, Lost: lost}, nil
}

// route resolves the path from start to the machine responsible for key,
// consulting the memo first. Cached entries are returned as copies so
// callers can keep them.
func (d *DHT) route(start, key rdcommon.ID) ([]rdcommon.ID, error) {
	ck := routeKey{start: start, key: key}
	if path, ok := d.routes.Get(ck); ok {
		return append([]rdcommon.ID(nil), path...), nil
	}
	path, err := d.ring.Route(start, key)
	if err != nil {
		return path, err
	}
	d.routes.Add(ck, append([]rdcommon.ID(nil), path...))
	return path, nil
}

// InsertFile routes from start and stores (key, path) on the responsible
// machine. A duplicate key is a reportable outcome, not an error; the
// existing record is preserved untouched.
func (d *DHT) InsertFile(start, key rdcommon.ID, path string) (FileOutcome, error) {
	trace, m, err := d.locate(start, key)
	if err != nil {
		return FileOutcome{}, err
	}
	out := FileOutcome{Status: StatusOK, Key: key, Responsible: m.ID(), Path: path, Trace: trace}
	if err := m.Files().Insert(index.FileRecord{Key: key, Path: path}); err != nil {
		if errors.Is(err, rdcommon.ErrDuplicateKey) {
			d.log.Info("file %d already on machine %d, keeping original", key, m.ID())
			out.Status = StatusDuplicateKey
			out.Path = ""
			return out, nil
		}
		return FileOutcome{}, err
	}
	return out, nil
}

// SearchFile routes from start and looks key up on the responsible
// machine. StatusNotFound still carries the routing trace.
func (d *DHT) SearchFile(start, key rdcommon.ID) (FileOutcome, error) {
	trace, m, err := d.locate(start, key)
	if err != nil {
		return FileOutcome{}, err
	}
	out := FileOutcome{Key: key, Responsible: m.ID(), Trace: trace}
	path, err := m.Files().Lookup(key)
	if err != nil {
		out.Status = StatusNotFound
		return out, nil
	}
	out.Status = StatusFound
	out.Path = path
	return out, nil
}

// DeleteFile routes from start and removes key from the responsible
// machine, returning the stored path.
func (d *DHT) DeleteFile(start, key rdcommon.ID) (FileOutcome, error) {
	trace, m, err := d.locate(start, key)
	if err != nil {
		return FileOutcome{}, err
	}
	out := FileOutcome{Key: key, Responsible: m.ID(), Trace: trace}
	path, err := m.Files().Remove(key)
	if err != nil {
		out.Status = StatusNotFound
		return out, nil
	}
	out.Status = StatusOK
	out.Path = path
	return out, nil
}

// InsertFileByPath derives the key from path before inserting, the way
// interactive callers address files.
func (d *DHT) InsertFileByPath(start rdcommon.ID, path string) (FileOutcome, error) {
	return d.InsertFile(start, d.HashKey(path), path)
}

func (d *DHT) SearchFileByPath(start rdcommon.ID, path string) (FileOutcome, error) {
	return d.SearchFile(start, d.HashKey(path))
}

func (d *DHT) DeleteFileByPath(start rdcommon.ID, path string) (FileOutcome, error) {
	return d.DeleteFile(start, d.HashKey(path))
}

// locate routes from start to the machine responsible for key.
func (d *DHT) locate(start, key rdcommon.ID) ([]rdcommon.ID, *ring.Machine, error) {
	trace, err := d.route(start, key)
	if err != nil {
		return nil, nil, err
	}
	m, found := d.ring.Machine(trace[len(trace)-1])
	if !found {
		return nil, nil, errors.Wrapf(rdcommon.ErrUnknownID, "responsible machine %d", trace[len(trace)-1])
	}
	return trace, m, nil
}

// ListRing returns the live machine ids in ascending order.
func (d *DHT) ListRing() []rdcommon.ID {
	return d.ring.IDs()
}

func (d *DHT) Machines() int {
	return d.ring.Len()
}

// FingerTable returns machine id's table in entry order.
func (d *DHT) FingerTable(id rdcommon.ID) ([]ring.Entry, error) {
	m, err := d.machine(id)
	if err != nil {
		return nil, err
	}
	entries := m.Fingers().Entries()
	return append([]ring.Entry(nil), entries...), nil
}

// ListFiles returns machine id's records in ascending key order.
func (d *DHT) ListFiles(id rdcommon.ID) ([]index.FileRecord, error) {
	m, err := d.machine(id)
	if err != nil {
		return nil, err
	}
	recs := make([]index.FileRecord, 0, m.Files().Len())
	m.Files().Ascend(func(rec index.FileRecord) bool {
		recs = append(recs, rec)
		return true
	})
	return recs, nil
}

// Files returns the number of records on machine id.
func (d *DHT) Files(id rdcommon.ID) (int, error) {
	m, err := d.machine(id)
	if err != nil {
		return 0, err
	}
	return m.Files().Len(), nil
}

// ResponsibleRange returns the arc (pred, id] that machine id owns. On a
// single-machine ring the arc covers the whole space: (id, id].
func (d *DHT) ResponsibleRange(id rdcommon.ID) (lo, hi rdcommon.ID, err error) {
	m, err := d.machine(id)
	if err != nil {
		return 0, 0, err
	}
	return d.ring.Predecessor(m.ID()).ID(), m.ID(), nil
}

// Status summarizes the ring, one row per machine in ascending id order.
func (d *DHT) Status() []MachineStatus {
	rows := make([]MachineStatus, 0, d.ring.Len())
	d.ring.Ascend(func(m *ring.Machine) bool {
		rows = append(rows, MachineStatus{ID: m.ID(), Files: m.Files().Len()})
		return true
	})
	return rows
}

func (d *DHT) machine(id rdcommon.ID) (*ring.Machine, error) {
	if err := d.space.CheckID(id); err != nil {
		return nil, err
	}
	m, found := d.ring.Machine(id)
	if !found {
		return nil, errors.Wrapf(rdcommon.ErrUnknownID, "machine %d", id)
	}
	return m, nil
}
