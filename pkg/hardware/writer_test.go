package hardware

import (
	"os"
	"path/filepath"
	"testing"
)

// makeSysfs creates empty attribute files for every path in the profile,
// standing in for the kernel's sysfs tree.
func makeSysfs(t *testing.T, p *Profile) {
	t.Helper()
	paths := append([]string{}, p.CurrentPaths...)
	paths = append(paths, p.BrightnessPaths...)
	paths = append(paths, p.FadeTimePaths...)
	if p.EngineModePath != "" {
		paths = append(paths, p.EngineModePath, p.EngineLoadPath, p.EngineLEDsPath)
	}
	for _, path := range paths {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatalf("Failed to create %s: %v", path, err)
		}
	}
}

func readAttr(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestWriter_EngineProgram(t *testing.T) {
	profile := NewProfile("rm680", t.TempDir())
	makeSysfs(t, profile)

	w := NewWriter(profile, 250, 1000, alwaysPending)
	defer w.Close()

	w.SetBrightness(255)

	// Fade from 0 to 255 over 250ms: rate 2 increasing, 255 steps.
	if got := readAttr(t, profile.EngineLoadPath); got != "9d80400004ffc000" {
		t.Errorf("Unexpected engine program: %q", got)
	}
	if got := readAttr(t, profile.EngineModePath); got != "run" {
		t.Errorf("Expected engine left in run mode, got %q", got)
	}
	if got := readAttr(t, profile.EngineLEDsPath); got != "000111111" {
		t.Errorf("Unexpected channel mask: %q", got)
	}
	for _, path := range profile.CurrentPaths {
		if got := readAttr(t, path); got != "50" {
			t.Errorf("Expected current 50 at %s, got %q", path, got)
		}
	}
	for _, path := range profile.BrightnessPaths {
		if got := readAttr(t, path); got != "0" {
			t.Errorf("Expected channel brightness zeroed at %s, got %q", path, got)
		}
	}
}

func TestWriter_ImmediateProgram(t *testing.T) {
	profile := NewProfile("rm680", t.TempDir())
	makeSysfs(t, profile)

	// Fade-in of 0 means set immediately.
	w := NewWriter(profile, 0, 0, alwaysPending)
	defer w.Close()

	w.SetBrightness(200)

	if got := readAttr(t, profile.EngineLoadPath); got != "9d8040c80000c000" {
		t.Errorf("Unexpected immediate program: %q", got)
	}
}

func TestWriter_DeduplicatesRequests(t *testing.T) {
	profile := NewProfile("rm680", t.TempDir())
	makeSysfs(t, profile)

	w := NewWriter(profile, 250, 1000, alwaysPending)
	defer w.Close()

	w.SetBrightness(255)

	// Poison the load file; a rehash of the same value must not touch it.
	if err := os.WriteFile(profile.EngineLoadPath, []byte("sentinel"), 0644); err != nil {
		t.Fatal(err)
	}
	w.SetBrightness(255)

	if got := readAttr(t, profile.EngineLoadPath); got != "sentinel" {
		t.Errorf("Expected no hardware write for a repeated value, file now %q", got)
	}
}

func TestWriter_UnsetSentinelIgnored(t *testing.T) {
	profile := NewProfile("rm680", t.TempDir())
	makeSysfs(t, profile)

	w := NewWriter(profile, 250, 1000, alwaysPending)
	defer w.Close()

	w.SetBrightness(-1)

	if got := readAttr(t, profile.EngineModePath); got != "" {
		t.Errorf("Expected no writes for the unset sentinel, mode file %q", got)
	}
}

func TestWriter_IgnoresAmbientAdjustment(t *testing.T) {
	profile := NewProfile("rm680", t.TempDir())
	makeSysfs(t, profile)

	// Backlight at 0, no disable timeout pending: the write sequence
	// must not run at all.
	w := NewWriter(profile, 250, 1000, neverPending)
	defer w.Close()

	w.SetBrightness(150)

	if got := readAttr(t, profile.EngineModePath); got != "" {
		t.Errorf("Expected no writes, mode file %q", got)
	}
	if got := readAttr(t, profile.EngineLoadPath); got != "" {
		t.Errorf("Expected no writes, load file %q", got)
	}
}

func TestWriter_SimpleVariant(t *testing.T) {
	profile := NewProfile("rx44", t.TempDir())
	makeSysfs(t, profile)

	w := NewWriter(profile, 250, 1000, alwaysPending)
	defer w.Close()

	// Turning on writes 0 to the fadetime registers.
	w.SetBrightness(180)
	for _, path := range profile.FadeTimePaths {
		if got := readAttr(t, path); got != "0" {
			t.Errorf("Expected fadetime 0 at %s, got %q", path, got)
		}
	}
	for _, path := range profile.BrightnessPaths {
		if got := readAttr(t, path); got != "180" {
			t.Errorf("Expected brightness 180 at %s, got %q", path, got)
		}
	}

	// Turning off writes the fade-out duration.
	w.SetBrightness(0)
	for _, path := range profile.FadeTimePaths {
		if got := readAttr(t, path); got != "1000" {
			t.Errorf("Expected fadetime 1000 at %s, got %q", path, got)
		}
	}
	for _, path := range profile.BrightnessPaths {
		if got := readAttr(t, path); got != "0" {
			t.Errorf("Expected brightness 0 at %s, got %q", path, got)
		}
	}
}

func TestWriter_NoneVariantIsInert(t *testing.T) {
	w := NewWriter(NewProfile("unknown", t.TempDir()), 250, 1000, alwaysPending)
	defer w.Close()

	// Must not panic or create any files.
	w.SetBrightness(255)
	w.SetBrightness(0)
}

func TestFileSet_ReopensNothingAndClosesOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brightness")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	fs := newFileSet()
	if err := fs.writeInt(path, 255); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := fs.writeInt(path, 0); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}
	if got := readAttr(t, path); got != "0" {
		t.Errorf("Expected file content 0, got %q", got)
	}

	fs.Close()
	fs.Close() // second close is a no-op

	if err := fs.writeInt(path, 1); err != nil {
		t.Fatalf("Write after close should reopen: %v", err)
	}
	fs.Close()
}

func TestFileSet_MissingFile(t *testing.T) {
	fs := newFileSet()
	defer fs.Close()

	if err := fs.writeInt(filepath.Join(t.TempDir(), "nope"), 1); err == nil {
		t.Error("Expected error writing to a missing attribute")
	}
}
