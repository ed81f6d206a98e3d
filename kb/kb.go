// Package kb is the mutable catalog a simulation is assembled from. It
// stores body, world, site and satellite definitions and turns them into
// immutable snapshots (system, resolver, environments) on demand.
package kb

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/signalsfoundry/omnivox/coord"
	"github.com/signalsfoundry/omnivox/cosmos"
	"github.com/signalsfoundry/omnivox/field"
	"github.com/signalsfoundry/omnivox/model"
	"github.com/signalsfoundry/omnivox/physics"
	"github.com/signalsfoundry/omnivox/worldframe"
)

var (
	// ErrExists is returned when an id is already taken.
	ErrExists = errors.New("already exists")
	// ErrNotFound is returned for unknown ids.
	ErrNotFound = errors.New("not found")
	// ErrInUse is returned when removing an entry others depend on.
	ErrInUse = errors.New("still referenced")
)

// EventType indicates what kind of change happened in the KB.
type EventType int

const (
	EventBodyAdded EventType = iota
	EventBodyRemoved
	EventWorldAdded
	EventWorldUpdated
	EventWorldRemoved
	EventSiteAdded
	EventSatelliteAdded
)

func (t EventType) String() string {
	switch t {
	case EventBodyAdded:
		return "body_added"
	case EventBodyRemoved:
		return "body_removed"
	case EventWorldAdded:
		return "world_added"
	case EventWorldUpdated:
		return "world_updated"
	case EventWorldRemoved:
		return "world_removed"
	case EventSiteAdded:
		return "site_added"
	case EventSatelliteAdded:
		return "satellite_added"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event is emitted to subscribers after every change.
type Event struct {
	Type EventType
	ID   string
	// Version is the catalog version after the change.
	Version uint64
}

// KnowledgeBase is an in-memory, thread-safe catalog.
type KnowledgeBase struct {
	mu sync.RWMutex

	bodies     map[string]model.BodyDefinition
	worlds     map[string]model.WorldDefinition
	sites      map[string]model.SiteDefinition
	satellites map[string]model.SatelliteDefinition
	version    uint64

	subs   map[int]func(Event)
	nextID int
}

// NewKnowledgeBase constructs an empty KB.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		bodies:     make(map[string]model.BodyDefinition),
		worlds:     make(map[string]model.WorldDefinition),
		sites:      make(map[string]model.SiteDefinition),
		satellites: make(map[string]model.SatelliteDefinition),
		subs:       make(map[int]func(Event)),
	}
}

// Load adds every definition of a system, in dependency order.
func (kb *KnowledgeBase) Load(def model.SystemDefinition) error {
	for _, b := range def.Bodies {
		if err := kb.AddBody(b); err != nil {
			return err
		}
	}
	for _, w := range def.Worlds {
		if err := kb.AddWorld(w); err != nil {
			return err
		}
	}
	for _, s := range def.Sites {
		if err := kb.AddSite(s); err != nil {
			return err
		}
	}
	for _, s := range def.Satellites {
		if err := kb.AddSatellite(s); err != nil {
			return err
		}
	}
	return nil
}

// commit bumps the version and returns the event plus a copy of the
// subscribers. Callers hold the write lock.
func (kb *KnowledgeBase) commit(t EventType, id string) (Event, []func(Event)) {
	kb.version++
	subs := make([]func(Event), 0, len(kb.subs))
	for _, fn := range kb.subs {
		subs = append(subs, fn)
	}
	return Event{Type: t, ID: id, Version: kb.version}, subs
}

func notify(ev Event, subs []func(Event)) {
	// Subscribers run outside the lock so they may read the KB.
	for _, fn := range subs {
		fn(ev)
	}
}

// AddBody adds a body. Its orbit parent need not exist yet; Snapshot
// validates the hierarchy.
func (kb *KnowledgeBase) AddBody(b model.BodyDefinition) error {
	if _, err := b.Body(); err != nil {
		return err
	}
	kb.mu.Lock()
	if _, exists := kb.bodies[b.ID]; exists {
		kb.mu.Unlock()
		return fmt.Errorf("body %q: %w", b.ID, ErrExists)
	}
	kb.bodies[b.ID] = b
	ev, subs := kb.commit(EventBodyAdded, b.ID)
	kb.mu.Unlock()
	notify(ev, subs)
	return nil
}

// RemoveBody removes a body that no world and no orbit refers to.
func (kb *KnowledgeBase) RemoveBody(id string) error {
	kb.mu.Lock()
	if _, ok := kb.bodies[id]; !ok {
		kb.mu.Unlock()
		return fmt.Errorf("body %q: %w", id, ErrNotFound)
	}
	for _, w := range kb.worlds {
		if w.BodyID == id {
			kb.mu.Unlock()
			return fmt.Errorf("body %q anchors world %q: %w", id, w.ID, ErrInUse)
		}
	}
	for _, b := range kb.bodies {
		if b.Orbit != nil && b.Orbit.Parent == id {
			kb.mu.Unlock()
			return fmt.Errorf("body %q is orbited by %q: %w", id, b.ID, ErrInUse)
		}
	}
	delete(kb.bodies, id)
	ev, subs := kb.commit(EventBodyRemoved, id)
	kb.mu.Unlock()
	notify(ev, subs)
	return nil
}

// AddWorld adds a world anchored to an existing body.
func (kb *KnowledgeBase) AddWorld(w model.WorldDefinition) error {
	if err := w.Environment.Validate(); err != nil {
		return fmt.Errorf("world %q: %w", w.ID, err)
	}
	kb.mu.Lock()
	body, ok := kb.bodies[w.BodyID]
	if !ok {
		kb.mu.Unlock()
		return fmt.Errorf("world %q: body %q: %w", w.ID, w.BodyID, ErrNotFound)
	}
	if _, err := w.Anchor(body.Radius); err != nil {
		kb.mu.Unlock()
		return err
	}
	if _, exists := kb.worlds[w.ID]; exists {
		kb.mu.Unlock()
		return fmt.Errorf("world %q: %w", w.ID, ErrExists)
	}
	kb.worlds[w.ID] = w
	ev, subs := kb.commit(EventWorldAdded, w.ID)
	kb.mu.Unlock()
	notify(ev, subs)
	return nil
}

// UpdateEnvironment replaces a world's environment descriptor.
func (kb *KnowledgeBase) UpdateEnvironment(world string, d field.Descriptor) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("world %q: %w", world, err)
	}
	kb.mu.Lock()
	w, ok := kb.worlds[world]
	if !ok {
		kb.mu.Unlock()
		return fmt.Errorf("world %q: %w", world, ErrNotFound)
	}
	w.Environment = d
	if _, err := w.Anchor(kb.bodies[w.BodyID].Radius); err != nil {
		kb.mu.Unlock()
		return err
	}
	kb.worlds[world] = w
	ev, subs := kb.commit(EventWorldUpdated, world)
	kb.mu.Unlock()
	notify(ev, subs)
	return nil
}

// RemoveWorld removes a world and every site and satellite on it.
func (kb *KnowledgeBase) RemoveWorld(id string) error {
	kb.mu.Lock()
	if _, ok := kb.worlds[id]; !ok {
		kb.mu.Unlock()
		return fmt.Errorf("world %q: %w", id, ErrNotFound)
	}
	delete(kb.worlds, id)
	for sid, s := range kb.sites {
		if s.World == id {
			delete(kb.sites, sid)
		}
	}
	for sid, s := range kb.satellites {
		if s.World == id {
			delete(kb.satellites, sid)
		}
	}
	ev, subs := kb.commit(EventWorldRemoved, id)
	kb.mu.Unlock()
	notify(ev, subs)
	return nil
}

// AddSite adds an observation site on an existing world.
func (kb *KnowledgeBase) AddSite(s model.SiteDefinition) error {
	kb.mu.Lock()
	if _, ok := kb.worlds[s.World]; !ok {
		kb.mu.Unlock()
		return fmt.Errorf("site %q: world %q: %w", s.ID, s.World, ErrNotFound)
	}
	if _, exists := kb.sites[s.ID]; exists {
		kb.mu.Unlock()
		return fmt.Errorf("site %q: %w", s.ID, ErrExists)
	}
	kb.sites[s.ID] = s
	ev, subs := kb.commit(EventSiteAdded, s.ID)
	kb.mu.Unlock()
	notify(ev, subs)
	return nil
}

// AddSatellite adds a TLE-driven satellite tracked from an existing world.
func (kb *KnowledgeBase) AddSatellite(s model.SatelliteDefinition) error {
	if s.MotionSource() != model.MotionSourceTLE {
		return fmt.Errorf("satellite %q: %w", s.ID, physics.ErrInvalidTLE)
	}
	if _, err := physics.ParseTLE(s.TLE1, s.TLE2); err != nil {
		return fmt.Errorf("satellite %q: %w", s.ID, err)
	}
	kb.mu.Lock()
	if _, ok := kb.worlds[s.World]; !ok {
		kb.mu.Unlock()
		return fmt.Errorf("satellite %q: world %q: %w", s.ID, s.World, ErrNotFound)
	}
	if _, exists := kb.satellites[s.ID]; exists {
		kb.mu.Unlock()
		return fmt.Errorf("satellite %q: %w", s.ID, ErrExists)
	}
	kb.satellites[s.ID] = s
	ev, subs := kb.commit(EventSatelliteAdded, s.ID)
	kb.mu.Unlock()
	notify(ev, subs)
	return nil
}

// GetBody returns the body with the given ID.
func (kb *KnowledgeBase) GetBody(id string) (model.BodyDefinition, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	b, ok := kb.bodies[id]
	return b, ok
}

// GetWorld returns the world with the given ID.
func (kb *KnowledgeBase) GetWorld(id string) (model.WorldDefinition, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	w, ok := kb.worlds[id]
	return w, ok
}

// ListBodies returns all bodies sorted by id.
func (kb *KnowledgeBase) ListBodies() []model.BodyDefinition {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return sortedValues(kb.bodies)
}

// ListWorlds returns all worlds sorted by id.
func (kb *KnowledgeBase) ListWorlds() []model.WorldDefinition {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return sortedValues(kb.worlds)
}

// ListSites returns all sites sorted by id.
func (kb *KnowledgeBase) ListSites() []model.SiteDefinition {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return sortedValues(kb.sites)
}

// ListSatellites returns all satellites sorted by id.
func (kb *KnowledgeBase) ListSatellites() []model.SatelliteDefinition {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return sortedValues(kb.satellites)
}

// Version returns the number of changes applied so far.
func (kb *KnowledgeBase) Version() uint64 {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.version
}

func sortedValues[T any](m map[string]T) []T {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	res := make([]T, 0, len(keys))
	for _, k := range keys {
		res = append(res, m[k])
	}
	return res
}

// Subscribe registers a callback for KB events. It returns an unsubscribe function.
func (kb *KnowledgeBase) Subscribe(fn func(Event)) (unsubscribe func()) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	id := kb.nextID
	kb.nextID++
	kb.subs[id] = fn

	return func() {
		kb.mu.Lock()
		defer kb.mu.Unlock()
		delete(kb.subs, id)
	}
}

// Site is an observation site resolved onto its world.
type Site struct {
	ID    string
	World string
	Coord coord.Coord
}

// Satellite is a parsed satellite ready for propagation.
type Satellite struct {
	ID    string
	World string
	TLE   *physics.TLE
}

// Snapshot is an immutable view of the catalog. It is safe for concurrent
// use and unaffected by later changes to the KB.
type Snapshot struct {
	Version      uint64
	System       *cosmos.System
	Resolver     *worldframe.Resolver
	Environments map[string]*field.Environment
	Sites        []Site
	Satellites   []Satellite
}

// Snapshot builds the runtime view of the current catalog.
func (kb *KnowledgeBase) Snapshot() (*Snapshot, error) {
	kb.mu.RLock()
	def := model.SystemDefinition{
		Bodies:     sortedValues(kb.bodies),
		Worlds:     sortedValues(kb.worlds),
		Sites:      sortedValues(kb.sites),
		Satellites: sortedValues(kb.satellites),
	}
	version := kb.version
	kb.mu.RUnlock()

	sys, r, err := def.Build()
	if err != nil {
		return nil, fmt.Errorf("snapshot v%d: %w", version, err)
	}
	snap := &Snapshot{
		Version:      version,
		System:       sys,
		Resolver:     r,
		Environments: make(map[string]*field.Environment, len(def.Worlds)),
	}
	for _, w := range def.Worlds {
		env, err := field.Build(w.ID, w.Environment, r)
		if err != nil {
			return nil, fmt.Errorf("snapshot v%d: %w", version, err)
		}
		snap.Environments[w.ID] = env
	}
	for _, s := range def.Sites {
		a, _ := r.Anchor(s.World)
		snap.Sites = append(snap.Sites, Site{
			ID:    s.ID,
			World: s.World,
			Coord: s.Location.Coord(a.Surface.ReferenceRadius()),
		})
	}
	for _, s := range def.Satellites {
		tle, err := physics.ParseTLE(s.TLE1, s.TLE2)
		if err != nil {
			return nil, fmt.Errorf("snapshot v%d: satellite %q: %w", version, s.ID, err)
		}
		snap.Satellites = append(snap.Satellites, Satellite{ID: s.ID, World: s.World, TLE: tle})
	}
	return snap, nil
}

// Site returns the resolved site with the given id.
func (s *Snapshot) Site(id string) (Site, bool) {
	for _, site := range s.Sites {
		if site.ID == id {
			return site, true
		}
	}
	return Site{}, false
}
