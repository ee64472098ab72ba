package profile_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rkuiv/ticktally/internal/profile"
	"github.com/rkuiv/ticktally/internal/settings"
)

func newManager(t *testing.T) (*profile.Manager, settings.Repo, string) {
	t.Helper()
	repo := settings.NewMemoryRepo()
	dir := t.TempDir()
	return profile.NewManager(repo, zerolog.Nop(), dir), repo, dir
}

func TestValidate(t *testing.T) {
	m, _, _ := newManager(t)

	tests := []struct {
		label   string
		want    string
		wantErr error
	}{
		{"Reading", "Reading", nil},
		{"  Reading  ", "Reading", nil},
		{"Reading.csv", "Reading", nil},
		{"", "", profile.ErrEmptyLabel},
		{"   ", "", profile.ErrEmptyLabel},
		{".csv", "", profile.ErrEmptyLabel},
		{"a/b", "", profile.ErrPathSeparator},
		{`a\b`, "", profile.ErrPathSeparator},
		{"a:b", "", profile.ErrPathSeparator},
		{"Add Profile", "", profile.ErrReserved},
		{"delete profile", "", profile.ErrReserved},
		{"output", "", profile.ErrExists},         // built-in, case-insensitive
		{"SOROBAN", "", profile.ErrExists},        // built-in, case-insensitive
		{"Anki/Migaku", "", profile.ErrPathSeparator},
	}
	for _, tt := range tests {
		got, err := m.Validate(tt.label)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("Validate(%q) error = %v, want %v", tt.label, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Validate(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestAddAndDuplicateRejection(t *testing.T) {
	m, repo, _ := newManager(t)

	label, err := m.Add("Reading")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if label != "Reading" {
		t.Errorf("Add = %q, want %q", label, "Reading")
	}
	if _, err := m.Add("reading"); !errors.Is(err, profile.ErrExists) {
		t.Errorf("duplicate Add error = %v, want ErrExists", err)
	}
	if got := repo.GetStrings("profiles/custom"); len(got) != 1 || got[0] != "Reading" {
		t.Errorf("persisted roster = %v, want [Reading]", got)
	}
}

func TestRemove(t *testing.T) {
	m, repo, dir := newManager(t)

	if _, err := m.Add("Reading"); err != nil {
		t.Fatal(err)
	}
	path := m.FilePath("Reading")
	if err := os.WriteFile(path, []byte("date\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := m.SetColor("Reading", "#112233"); err != nil {
		t.Fatal(err)
	}
	m.SetGoalSeconds("Reading", 3600)

	if err := m.Remove("Reading"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if m.Exists("Reading") {
		t.Error("profile still exists after Remove")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("backing file still exists after Remove")
	}
	if repo.Has("profiles/colors/reading") {
		t.Error("color override survived Remove")
	}
	if repo.Has("super_goal/profiles/reading/hours") {
		t.Error("goal override survived Remove")
	}

	if err := m.Remove("Output"); !errors.Is(err, profile.ErrNotCustom) {
		t.Errorf("Remove(built-in) error = %v, want ErrNotCustom", err)
	}
	if err := m.Remove("Nope"); !errors.Is(err, profile.ErrUnknown) {
		t.Errorf("Remove(unknown) error = %v, want ErrUnknown", err)
	}
	_ = dir
}

func TestActiveFallsBackToDefault(t *testing.T) {
	m, repo, _ := newManager(t)

	if got := m.Active(); got != profile.DefaultLabel {
		t.Errorf("Active = %q, want default %q", got, profile.DefaultLabel)
	}

	repo.Set("profiles/active", "Ghost Profile")
	if got := m.Active(); got != profile.DefaultLabel {
		t.Errorf("Active with dangling label = %q, want default", got)
	}

	m.SetActive("Output")
	if got := m.Active(); got != "Output" {
		t.Errorf("Active = %q, want %q", got, "Output")
	}
}

func TestFilenameMapping(t *testing.T) {
	m, _, dir := newManager(t)

	if got := m.Filename("Activate Immersion"); got != "active.csv" {
		t.Errorf("built-in filename = %q, want active.csv", got)
	}
	if got := m.Filename("Reading"); got != "Reading.csv" {
		t.Errorf("custom filename = %q, want Reading.csv", got)
	}
	if got := m.FilePath("Output"); got != filepath.Join(dir, "output.csv") {
		t.Errorf("FilePath = %q", got)
	}
}

func TestGoalSecondsLegacyMigration(t *testing.T) {
	m, repo, _ := newManager(t)

	// No per-profile keys and no legacy keys: the legacy default of 2h applies
	// and is copied onto the profile.
	if got := m.GoalSeconds("Output"); got != 2*3600 {
		t.Errorf("GoalSeconds = %d, want legacy default 7200", got)
	}
	if !repo.Has("super_goal/profiles/output/hours") {
		t.Error("legacy goal was not copied to per-profile keys")
	}

	repo.Set("super_goal/hours", 1)
	repo.Set("super_goal/minutes", 30)
	if got := m.GoalSeconds("Soroban"); got != 5400 {
		t.Errorf("GoalSeconds = %d, want legacy 5400", got)
	}

	m.SetGoalSeconds("Soroban", 4500)
	if got := m.GoalSeconds("Soroban"); got != 4500 {
		t.Errorf("GoalSeconds = %d, want explicit 4500", got)
	}
}

func TestColorFallbackIsDeterministic(t *testing.T) {
	m, _, _ := newManager(t)

	first := m.Color("Reading")
	if first == "" {
		t.Fatal("fallback color is empty")
	}
	if second := m.Color("reading  "); second != first {
		t.Errorf("fallback color unstable across normalization: %q vs %q", second, first)
	}

	if err := m.SetColor("Output", "#A855F7"); err != nil {
		t.Fatalf("SetColor: %v", err)
	}
	if got := m.Color("Output"); got != "#a855f7" {
		t.Errorf("override color = %q, want #a855f7", got)
	}

	if err := m.SetColor("Output", "purple-ish"); !errors.Is(err, profile.ErrInvalidColor) {
		t.Errorf("SetColor(bad) error = %v, want ErrInvalidColor", err)
	}
	if err := m.SetColor("Nope", "#112233"); !errors.Is(err, profile.ErrUnknown) {
		t.Errorf("SetColor(unknown profile) error = %v, want ErrUnknown", err)
	}
}
