package ai

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// ============================================
// AGENT PROFILES
// ============================================

// Profile is a named behavior tuning for one agent. Distances are
// world units, times are seconds, weights are [0,1].
type Profile struct {
	Name string `yaml:"name"`

	StealRange       float64 `yaml:"steal_range"`
	PressureDistance float64 `yaml:"pressure_distance"`
	ShootRange       float64 `yaml:"shoot_range"`
	MinShotQuality   float64 `yaml:"min_shot_quality"`

	// Aggression widens the pressure envelope; DefensiveIQ moves the
	// intercept point from the basket toward the opponent.
	Aggression  float64 `yaml:"aggression"`
	DefensiveIQ float64 `yaml:"defensive_iq"`

	// PositionPatience is how long (seconds) to hold a good spot
	// before considering a better one. SeekThreshold is the quality
	// gain required to move at all.
	PositionPatience float64 `yaml:"position_patience"`
	SeekThreshold    float64 `yaml:"seek_threshold"`

	ChargeMin float64 `yaml:"charge_min"`
	ChargeMax float64 `yaml:"charge_max"`
}

// DefaultProfile is the balanced tuning used when a name is unknown.
func DefaultProfile() Profile {
	return Profile{
		Name:             "balanced",
		StealRange:       60,
		PressureDistance: 220,
		ShootRange:       400,
		MinShotQuality:   0.55,
		Aggression:       0.5,
		DefensiveIQ:      0.5,
		PositionPatience: 1.5,
		SeekThreshold:    0.08,
		ChargeMin:        0.5,
		ChargeMax:        1.2,
	}
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// ParseProfiles decodes a YAML profile file, filling omitted fields
// from the default profile.
func ParseProfiles(data []byte) (map[string]Profile, error) {
	var f profileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	out := make(map[string]Profile, len(f.Profiles))
	for _, p := range f.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("parse profiles: profile with empty name")
		}
		out[p.Name] = fillProfile(p)
	}
	return out, nil
}

func fillProfile(p Profile) Profile {
	d := DefaultProfile()
	if p.StealRange <= 0 {
		p.StealRange = d.StealRange
	}
	if p.PressureDistance <= 0 {
		p.PressureDistance = d.PressureDistance
	}
	if p.ShootRange <= 0 {
		p.ShootRange = d.ShootRange
	}
	if p.MinShotQuality <= 0 {
		p.MinShotQuality = d.MinShotQuality
	}
	if p.Aggression <= 0 {
		p.Aggression = d.Aggression
	}
	if p.DefensiveIQ <= 0 {
		p.DefensiveIQ = d.DefensiveIQ
	}
	if p.PositionPatience <= 0 {
		p.PositionPatience = d.PositionPatience
	}
	if p.SeekThreshold <= 0 {
		p.SeekThreshold = d.SeekThreshold
	}
	if p.ChargeMin <= 0 {
		p.ChargeMin = d.ChargeMin
	}
	if p.ChargeMax <= 0 {
		p.ChargeMax = d.ChargeMax
	}
	if p.ChargeMax < p.ChargeMin {
		p.ChargeMax = p.ChargeMin
	}
	return p
}

// ProfileStore serves profiles by name and optionally hot-reloads them
// when the file changes on disk. Lookups never fail: unknown names get
// the default profile.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	path     string

	watcher *fsnotify.Watcher
	closeCh chan struct{}
	once    sync.Once
}

// NewProfileStore loads profiles from path. An empty or missing path
// yields a store with just the default profile.
func NewProfileStore(path string) (*ProfileStore, error) {
	s := &ProfileStore{
		profiles: map[string]Profile{"balanced": DefaultProfile()},
		path:     path,
		closeCh:  make(chan struct{}),
	}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	loaded, err := ParseProfiles(data)
	if err != nil {
		return nil, err
	}
	for name, p := range loaded {
		s.profiles[name] = p
	}
	return s, nil
}

// Get returns the profile for name, or the default when unknown.
func (s *ProfileStore) Get(name string) Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.profiles[name]; ok {
		return p
	}
	return DefaultProfile()
}

// Names returns all known profile names, sorted.
func (s *ProfileStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.profiles))
	for n := range s.profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Watch reloads the profile file whenever it changes. Reload errors
// are logged and the previous profiles stay in effect.
func (s *ProfileStore) Watch() error {
	if s.path == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		_ = w.Close()
		return err
	}
	s.watcher = w
	go s.run()
	return nil
}

func (s *ProfileStore) run() {
	var lastReload time.Time
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !sameFile(event.Name, s.path) {
				continue
			}
			// Editors fire multiple events per save.
			if time.Since(lastReload) < 100*time.Millisecond {
				continue
			}
			lastReload = time.Now()
			if err := s.reload(); err != nil {
				log.Printf("profiles: reload failed, keeping previous: %v", err)
			} else {
				log.Printf("profiles: reloaded from %s", s.path)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("profiles: watch error: %v", err)
		case <-s.closeCh:
			return
		}
	}
}

func (s *ProfileStore) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	loaded, err := ParseProfiles(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = map[string]Profile{"balanced": DefaultProfile()}
	for name, p := range loaded {
		s.profiles[name] = p
	}
	return nil
}

// Close stops the watcher.
func (s *ProfileStore) Close() error {
	var err error
	s.once.Do(func() {
		close(s.closeCh)
		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}

func sameFile(a, b string) bool {
	return filepath.Clean(strings.TrimSpace(a)) == filepath.Clean(b) ||
		filepath.Base(a) == filepath.Base(b)
}
