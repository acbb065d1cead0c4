package resultcache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nightreign-tools/relicplanner/internal/relic"
	"github.com/nightreign-tools/relicplanner/internal/resultcache"
	"github.com/nightreign-tools/relicplanner/pkg/fs"
)

func testResult(vesselID int, score int) relic.VesselResult {
	return relic.VesselResult{
		VesselID:   vesselID,
		VesselName: "Wandering Cairn",
		TotalScore: score,
	}
}

func TestOpenMissingFileYieldsEmptyCache(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.bin")

	c, err := resultcache.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, ok := c.Get(resultcache.Key{BuildID: "b", VesselID: 1}); ok {
		t.Error("Get on empty cache returned a hit, want miss")
	}
}

func TestPutSaveOpenRoundTrips(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.bin")

	c, err := resultcache.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	key1 := resultcache.Key{BuildID: "crimson-build", VesselID: 1}
	key2 := resultcache.Key{BuildID: "crimson-build", VesselID: 2}

	c.Put(key1, testResult(1, 1234))
	c.Put(key2, testResult(2, 5678))

	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := resultcache.Open(path)
	if err != nil {
		t.Fatalf("Open (reopen): %v", err)
	}

	got1, ok := reopened.Get(key1)
	if !ok || got1.TotalScore != 1234 {
		t.Errorf("Get(key1) = %+v, %v, want TotalScore 1234, true", got1, ok)
	}

	got2, ok := reopened.Get(key2)
	if !ok || got2.TotalScore != 5678 {
		t.Errorf("Get(key2) = %+v, %v, want TotalScore 5678, true", got2, ok)
	}

	if _, ok := reopened.Get(resultcache.Key{BuildID: "other", VesselID: 1}); ok {
		t.Error("Get with an unrelated key returned a hit, want miss")
	}
}

func TestSavePreservesUntouchedEntriesAndOverridesUpdated(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.bin")

	c, err := resultcache.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	stale := resultcache.Key{BuildID: "b", VesselID: 1}
	fresh := resultcache.Key{BuildID: "b", VesselID: 2}

	c.Put(stale, testResult(1, 100))
	c.Put(fresh, testResult(2, 200))

	if err := c.Save(); err != nil {
		t.Fatalf("first Save: %v", err)
	}

	reopened, err := resultcache.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	reopened.Put(fresh, testResult(2, 999))

	if err := reopened.Save(); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	final, err := resultcache.Open(path)
	if err != nil {
		t.Fatalf("Open (final): %v", err)
	}

	staleResult, ok := final.Get(stale)
	if !ok || staleResult.TotalScore != 100 {
		t.Errorf("Get(stale) = %+v, %v, want TotalScore 100 unchanged", staleResult, ok)
	}

	freshResult, ok := final.Get(fresh)
	if !ok || freshResult.TotalScore != 999 {
		t.Errorf("Get(fresh) = %+v, %v, want updated TotalScore 999", freshResult, ok)
	}
}

func TestOpenFSRejectsTruncatedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "cache.bin")

	if err := os.WriteFile(path, []byte("short"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := resultcache.OpenFS(fs.NewReal(), path)
	if err == nil {
		t.Fatal("OpenFS on a truncated file, want an error")
	}
}

func TestOpenFSRejectsBadMagic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "cache.bin")

	buf := make([]byte, 32)
	copy(buf, "NOPE")

	if err := os.WriteFile(path, buf, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := resultcache.OpenFS(fs.NewReal(), path)
	if err != resultcache.ErrInvalidMagic {
		t.Errorf("OpenFS with bad magic = %v, want ErrInvalidMagic", err)
	}
}
