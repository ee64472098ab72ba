// Package profile maps human-readable profile labels to isolated log files
// and per-profile goal/color overrides held in the settings repository.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"

	"github.com/rkuiv/ticktally/internal/settings"
)

// DefaultLabel is the built-in profile the engine falls back to.
const DefaultLabel = "Activate Immersion"

// builtins is the fixed label-to-filename table. Custom profiles derive
// their filename from the label instead.
var builtins = []struct{ label, filename string }{
	{"Activate Immersion", "active.csv"},
	{"Passive Immersion", "passive.csv"},
	{"Phonetic Training", "phonetic.csv"},
	{"Output", "output.csv"},
	{"Soroban", "soroban.csv"},
	{"Anki/Migaku", "anki.csv"},
}

// reservedLabels are the selector's add/delete action rows; they can never
// name a profile.
var reservedLabels = map[string]bool{
	"add profile":    true,
	"delete profile": true,
}

// fallbackPalette provides a stable color per label before the user sets an
// override, chosen by hashing the label.
var fallbackPalette = []string{
	"#38bdf8",
	"#f472b6",
	"#22c55e",
	"#f59e0b",
	"#ef4444",
	"#a855f7",
	"#14b8a6",
	"#eab308",
}

// Validation and lookup failures surfaced to the host.
var (
	ErrEmptyLabel    = errors.New("profile name cannot be empty")
	ErrPathSeparator = errors.New("profile name cannot include path separators")
	ErrReserved      = errors.New("profile name is reserved")
	ErrExists        = errors.New("profile already exists")
	ErrUnknown       = errors.New("no such profile")
	ErrNotCustom     = errors.New("built-in profiles cannot be deleted")
	ErrInvalidColor  = errors.New("color must be a hex value like #38bdf8")
)

// legacy goal defaults from before goals were stored per profile.
const (
	legacyGoalHoursKey   = "super_goal/hours"
	legacyGoalMinutesKey = "super_goal/minutes"
	legacyDefaultHours   = 2
)

// Manager owns the profile roster, the active-profile switch, and the
// per-profile goal/color overrides.
type Manager struct {
	repo    settings.Repo
	log     zerolog.Logger
	dataDir string
	custom  []string
}

// NewManager loads the custom-profile roster from the settings repository.
func NewManager(repo settings.Repo, logger zerolog.Logger, dataDir string) *Manager {
	m := &Manager{
		repo:    repo,
		log:     logger.With().Str("component", "profiles").Logger(),
		dataDir: dataDir,
	}
	m.custom = m.loadCustom()
	return m
}

func (m *Manager) loadCustom() []string {
	var labels []string
	seen := make(map[string]bool)
	for _, raw := range m.repo.GetStrings("profiles/custom") {
		label := strings.TrimSpace(raw)
		if label == "" || reservedLabels[strings.ToLower(label)] {
			continue
		}
		key := strings.ToLower(label)
		if seen[key] || m.isBuiltinKey(key) {
			continue
		}
		seen[key] = true
		labels = append(labels, label)
	}
	return labels
}

func (m *Manager) isBuiltinKey(lowerLabel string) bool {
	for _, b := range builtins {
		if strings.ToLower(b.label) == lowerLabel {
			return true
		}
	}
	return false
}

// Labels returns the built-in labels followed by the custom ones.
func (m *Manager) Labels() []string {
	labels := make([]string, 0, len(builtins)+len(m.custom))
	for _, b := range builtins {
		labels = append(labels, b.label)
	}
	return append(labels, m.custom...)
}

// IsBuiltin reports whether label names a built-in profile.
func (m *Manager) IsBuiltin(label string) bool {
	return m.isBuiltinKey(strings.ToLower(strings.TrimSpace(label)))
}

// Exists reports whether label names any profile, case-insensitively.
func (m *Manager) Exists(label string) bool {
	key := strings.ToLower(strings.TrimSpace(label))
	for _, existing := range m.Labels() {
		if strings.ToLower(existing) == key {
			return true
		}
	}
	return false
}

// Validate normalizes a candidate label (trimming whitespace and a trailing
// .csv) and rejects empty, path-separator, reserved, and duplicate names.
func (m *Manager) Validate(label string) (string, error) {
	clean := strings.TrimSpace(label)
	if strings.HasSuffix(strings.ToLower(clean), ".csv") {
		clean = strings.TrimSpace(clean[:len(clean)-4])
	}
	if clean == "" {
		return "", ErrEmptyLabel
	}
	if strings.ContainsAny(clean, `/\:`) {
		return "", ErrPathSeparator
	}
	if reservedLabels[strings.ToLower(clean)] {
		return "", ErrReserved
	}
	if m.Exists(clean) {
		return "", ErrExists
	}
	return clean, nil
}

// Add registers a new custom profile and persists the roster. The cleaned
// label is returned.
func (m *Manager) Add(label string) (string, error) {
	clean, err := m.Validate(label)
	if err != nil {
		return "", err
	}
	m.custom = append(m.custom, clean)
	m.saveRoster()
	return clean, nil
}

// Remove deletes a custom profile: its backing file (best-effort), its color
// and goal overrides, and its roster entry. Built-ins are refused.
func (m *Manager) Remove(label string) error {
	clean := strings.TrimSpace(label)
	if !m.Exists(clean) {
		return ErrUnknown
	}
	if m.IsBuiltin(clean) {
		return ErrNotCustom
	}
	key := strings.ToLower(clean)
	for i, existing := range m.custom {
		if strings.ToLower(existing) == key {
			m.custom = append(m.custom[:i], m.custom[i+1:]...)
			break
		}
	}

	path := m.FilePath(clean)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		m.log.Error().Err(err).Str("path", path).Msg("failed to delete profile file")
	}
	m.repo.Remove(m.colorKey(clean))
	m.repo.Remove(m.goalKeyBase(clean) + "/hours")
	m.repo.Remove(m.goalKeyBase(clean) + "/minutes")
	m.saveRoster()
	return nil
}

func (m *Manager) saveRoster() {
	m.repo.Set("profiles/custom", m.custom)
	if err := m.repo.Sync(); err != nil {
		m.log.Error().Err(err).Msg("failed to persist profile roster")
	}
}

// Active returns the active profile label, falling back to the default when
// the stored value no longer names a profile.
func (m *Manager) Active() string {
	active := strings.TrimSpace(m.repo.GetString("profiles/active", DefaultLabel))
	if active == "" || !m.Exists(active) {
		return DefaultLabel
	}
	return active
}

// SetActive persists the active profile label.
func (m *Manager) SetActive(label string) {
	m.repo.Set("profiles/active", label)
	if err := m.repo.Sync(); err != nil {
		m.log.Error().Err(err).Msg("failed to persist active profile")
	}
}

// Filename returns the log filename backing the label.
func (m *Manager) Filename(label string) string {
	clean := strings.TrimSpace(label)
	key := strings.ToLower(clean)
	for _, b := range builtins {
		if strings.ToLower(b.label) == key {
			return b.filename
		}
	}
	if strings.HasSuffix(key, ".csv") {
		clean = clean[:len(clean)-4]
	}
	return clean + ".csv"
}

// FilePath returns the absolute path of the label's log file.
func (m *Manager) FilePath(label string) string {
	return filepath.Join(m.dataDir, m.Filename(label))
}

func (m *Manager) goalKeyBase(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" {
		key = "default"
	}
	for _, sep := range []string{"/", `\`, ":"} {
		key = strings.ReplaceAll(key, sep, "_")
	}
	return "super_goal/profiles/" + key
}

// GoalSeconds returns the profile's configured daily goal. Profiles without
// their own value inherit the pre-profile legacy goal, which is copied to
// the profile's keys on first read.
func (m *Manager) GoalSeconds(label string) int {
	base := m.goalKeyBase(label)
	hoursKey, minutesKey := base+"/hours", base+"/minutes"
	if m.repo.Has(hoursKey) || m.repo.Has(minutesKey) {
		seconds := m.repo.GetInt(hoursKey, 0)*3600 + m.repo.GetInt(minutesKey, 0)*60
		if seconds < 0 {
			return 0
		}
		return seconds
	}
	legacy := m.repo.GetInt(legacyGoalHoursKey, legacyDefaultHours)*3600 +
		m.repo.GetInt(legacyGoalMinutesKey, 0)*60
	if legacy < 0 {
		legacy = 0
	}
	m.SetGoalSeconds(label, legacy)
	return legacy
}

// SetGoalSeconds persists the profile's daily goal as hours and minutes.
func (m *Manager) SetGoalSeconds(label string, seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	base := m.goalKeyBase(label)
	m.repo.Set(base+"/hours", seconds/3600)
	m.repo.Set(base+"/minutes", (seconds%3600)/60)
	if err := m.repo.Sync(); err != nil {
		m.log.Error().Err(err).Str("profile", label).Msg("failed to persist profile goal")
	}
}

func (m *Manager) colorKey(label string) string {
	return "profiles/colors/" + strings.ToLower(strings.TrimSpace(label))
}

// Color returns the profile's display color as a hex string. Without an
// explicit override the color is picked deterministically from a palette by
// hashing the label, so a profile keeps a stable color across sessions.
func (m *Manager) Color(label string) string {
	if value := m.repo.GetString(m.colorKey(label), ""); value != "" {
		if c, err := colorful.Hex(value); err == nil {
			return c.Hex()
		}
	}
	seed := 0
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		seed += int(r)
	}
	return fallbackPalette[seed%len(fallbackPalette)]
}

// SetColor stores a color override after validating it parses as hex.
func (m *Manager) SetColor(label, hex string) error {
	if !m.Exists(label) {
		return ErrUnknown
	}
	c, err := colorful.Hex(strings.TrimSpace(hex))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	m.repo.Set(m.colorKey(label), c.Hex())
	if err := m.repo.Sync(); err != nil {
		m.log.Error().Err(err).Str("profile", label).Msg("failed to persist profile color")
	}
	return nil
}
