// Package settings implements the persisted configuration document: a flat
// JSON file that is fully re-serialized on every write and tolerates null
// string fields on load.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/AdguardTeam/golibs/log"
	"github.com/google/uuid"

	"github.com/streamgate/corebridge/internal/sgerrors"
	"github.com/streamgate/corebridge/utils"
)

// NullString unmarshals a JSON null into the Go zero value instead of
// erroring, matching settings.rs's deserialize_null_as_string helper.
type NullString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *NullString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NullString(raw)
	return nil
}

// SocksAuth is the SOCKS5 credential triple attached to a connection or a
// saved configuration.
type SocksAuth struct {
	Enabled  bool       `json:"enabled"`
	Username NullString `json:"username"`
	Password NullString `json:"password"`
}

// SavedConfig is one entry of the saved-configurations list, identified by a
// stable UUID minted at import/creation time.
type SavedConfig struct {
	ID      string      `json:"id"`
	Remark  NullString  `json:"remark"`
	Domain  NullString  `json:"domain"`
	Country NullString  `json:"country,omitempty"`
	Socks   *SocksAuth  `json:"socks,omitempty"`
}

// CustomDNS is the persisted custom-DNS setting: an enabled flag and a
// server list.
type CustomDNS struct {
	Enabled bool     `json:"enabled"`
	Servers []string `json:"servers"`
}

// Settings is the full persisted document, see spec.md §3.
type Settings struct {
	Resolvers                []string      `json:"resolvers"`
	Domain                   NullString    `json:"domain"`
	Mode                     NullString    `json:"mode"`
	Authoritative            bool          `json:"authoritative"`
	Verbose                  bool          `json:"verbose"`
	Socks5Auth               SocksAuth     `json:"socks5Auth"`
	SystemProxyEnabledByApp  bool          `json:"systemProxyEnabledByApp"`
	SystemProxyServiceName   NullString    `json:"systemProxyServiceName"`
	KeepAliveInterval        uint32        `json:"keepAliveInterval,omitempty"`
	SavedConfigs             []SavedConfig `json:"savedConfigs"`
	SelectedConfigID         NullString    `json:"selectedConfigId"`
	SavedDNSServers          []string      `json:"savedDnsServers"`
	Language                 NullString    `json:"language"`
	Theme                    NullString    `json:"theme"`
	CustomDNS                CustomDNS     `json:"customDns"`
}

// Default returns the document's zero-value defaults, matching the
// field-by-field defaults in settings.rs.
func Default() Settings {
	return Settings{
		Resolvers:       []string{},
		Mode:            "slipstream",
		SavedConfigs:    []SavedConfig{},
		SavedDNSServers: []string{},
		Language:        "en",
		Theme:           "system",
	}
}

// Store guards the in-memory document and its on-disk file with a
// read-modify-write discipline: readers take RLock, writers re-serialize the
// full document under Lock and atomically replace the file, mirroring
// proxy/stats_manager.go's StatsManager load/save idiom in the teacher.
type Store struct {
	mu   sync.RWMutex
	path string
	doc  Settings
}

// Open loads path if it exists, or seeds the store with defaults and writes
// them out immediately so the document always round-trips from the first
// run onward.
func Open(path string) (*Store, error) {
	s := &Store{path: path, doc: Default()}

	exists, err := utils.FileExists(path)
	if err != nil {
		return nil, sgerrors.Wrap(sgerrors.KindEnvironment, err, "checking settings file")
	}
	if !exists {
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sgerrors.Wrap(sgerrors.KindEnvironment, err, "reading settings file")
	}

	doc := Default()
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, sgerrors.Wrap(sgerrors.KindConfig, err, "parsing settings file")
	}
	s.doc = doc
	return s, nil
}

// Get returns a snapshot copy of the document.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// persistLocked writes s.doc to disk. Callers must hold s.mu for writing.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return sgerrors.Wrap(sgerrors.KindEnvironment, err, "encoding settings")
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return sgerrors.Wrap(sgerrors.KindEnvironment, err, "creating settings directory")
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return sgerrors.Wrap(sgerrors.KindEnvironment, err, "writing settings file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return sgerrors.Wrap(sgerrors.KindEnvironment, err, "replacing settings file")
	}
	return nil
}

// Save replaces the whole document and persists it.
func (s *Store) Save(doc Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	return s.persistLocked()
}

// Patch is a partial update applied by explicit per-key merge, matching
// settings.rs's save(updates) switch rather than a generic reflection-based
// merge.
type Patch struct {
	Resolvers         *[]string
	Domain            *string
	Mode              *string
	Authoritative     *bool
	Verbose           *bool
	Socks5Auth        *SocksAuth
	KeepAliveInterval *uint32
	SelectedConfigID  *string
	Language          *string
	Theme             *string
	CustomDNS         *CustomDNS
}

// Merge applies a non-nil subset of fields from p onto the document and
// persists the result.
func (s *Store) Merge(p Patch) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Resolvers != nil {
		s.doc.Resolvers = *p.Resolvers
	}
	if p.Domain != nil {
		s.doc.Domain = NullString(*p.Domain)
	}
	if p.Mode != nil {
		s.doc.Mode = NullString(*p.Mode)
	}
	if p.Authoritative != nil {
		s.doc.Authoritative = *p.Authoritative
	}
	if p.Verbose != nil {
		s.doc.Verbose = *p.Verbose
	}
	if p.Socks5Auth != nil {
		s.doc.Socks5Auth = *p.Socks5Auth
	}
	if p.KeepAliveInterval != nil {
		s.doc.KeepAliveInterval = *p.KeepAliveInterval
	}
	if p.SelectedConfigID != nil {
		s.doc.SelectedConfigID = NullString(*p.SelectedConfigID)
	}
	if p.Language != nil {
		s.doc.Language = NullString(*p.Language)
	}
	if p.Theme != nil {
		s.doc.Theme = NullString(*p.Theme)
	}
	if p.CustomDNS != nil {
		s.doc.CustomDNS = *p.CustomDNS
	}

	if err := s.persistLocked(); err != nil {
		return Settings{}, err
	}
	return s.doc, nil
}

// RecordSystemProxy stores the enabled flag and, on enable, the chosen
// service name, so a crashed process can be detected and recovered from at
// the next startup.
func (s *Store) RecordSystemProxy(enabled bool, serviceName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.SystemProxyEnabledByApp = enabled
	if enabled {
		s.doc.SystemProxyServiceName = NullString(serviceName)
	}
	return s.persistLocked()
}

// NewConfigID mints a fresh stable id for a saved configuration.
func NewConfigID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		// uuid.NewRandom only fails if the system entropy source is broken;
		// fall back to a nil UUID rather than panicking a settings write.
		log.Error("minting config id: %s", err)
		return uuid.Nil.String()
	}
	return id.String()
}
