// Package resultcache persists the optimizer's per-vessel results to a
// single binary file and reads them back by key. `relicctl optimize
// --cache` writes such a file; no relicctl command reads one back.
package resultcache

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/nightreign-tools/relicplanner/internal/relic"
	"github.com/nightreign-tools/relicplanner/pkg/fs"
)

// Binary cache format constants.
const (
	magic          = "RPC1"
	versionNum     = 1
	headerSize     = 32
	indexEntrySize = 24 // key hash (8) + reserved (4) + dataOffset (4) + dataLength (4) + score (4)
	minFileSize    = headerSize
)

// Sentinel errors.
var (
	ErrInvalidMagic    = errors.New("invalid result cache magic")
	ErrVersionMismatch = errors.New("result cache version mismatch")
	ErrFileTooSmall    = errors.New("result cache file too small")
	ErrCorrupt         = errors.New("result cache corrupt")
	ErrNotFound        = errors.New("result cache file not found")
)

// Key identifies one cached vessel result.
type Key struct {
	BuildID  string
	VesselID int
}

func (k Key) hash() uint64 {
	var h uint64 = 14695981039346656037

	for i := 0; i < len(k.BuildID); i++ {
		h ^= uint64(k.BuildID[i])
		h *= 1099511628211
	}

	h ^= uint64(k.VesselID) //nolint:gosec // VesselID is small and non-negative by construction
	h *= 1099511628211

	return h
}

type entry struct {
	key    Key
	hash   uint64
	score  int32
	result relic.VesselResult
}

// Cache is an in-memory overlay over an optionally loaded on-disk file; Get
// checks the overlay before any loaded data, and Save flattens everything
// back to a single file.
type Cache struct {
	path    string
	fsys    fs.FS
	loaded  []loadedEntry
	updates map[uint64]entry
}

type loadedEntry struct {
	hash       uint64
	dataOffset uint32
	dataLength uint32
	score      int32
	data       []byte // full file contents, sliced lazily
}

// Open loads path if it exists; a missing file yields an empty, writable
// cache rather than an error.
func Open(path string) (*Cache, error) {
	return OpenFS(fs.NewReal(), path)
}

// OpenFS is [Open] with an injectable filesystem.
func OpenFS(fsys fs.FS, path string) (*Cache, error) {
	c := &Cache{path: path, fsys: fsys, updates: make(map[uint64]entry)}

	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}

		return nil, fmt.Errorf("reading result cache: %w", err)
	}

	if err := c.parse(data); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Cache) parse(data []byte) error {
	if len(data) < minFileSize {
		return ErrFileTooSmall
	}

	if string(data[0:4]) != magic {
		return ErrInvalidMagic
	}

	version := binary.LittleEndian.Uint16(data[4:6])
	if version != versionNum {
		return ErrVersionMismatch
	}

	count := int(binary.LittleEndian.Uint32(data[6:10]))

	expectedMin := headerSize + count*indexEntrySize
	if len(data) < expectedMin {
		return ErrFileTooSmall
	}

	for i := 0; i < count; i++ {
		off := headerSize + i*indexEntrySize
		rec := data[off : off+indexEntrySize]

		h := binary.LittleEndian.Uint64(rec[0:8])
		dataOffset := binary.LittleEndian.Uint32(rec[12:16])
		dataLength := binary.LittleEndian.Uint32(rec[16:20])
		score := int32(binary.LittleEndian.Uint32(rec[20:24])) //nolint:gosec // stored as signed

		if int(dataOffset) > len(data) || int(dataOffset)+int(dataLength) > len(data) {
			return ErrCorrupt
		}

		c.loaded = append(c.loaded, loadedEntry{
			hash:       h,
			dataOffset: dataOffset,
			dataLength: dataLength,
			score:      score,
			data:       data,
		})
	}

	return nil
}

// Get returns the cached result for key, if present.
func (c *Cache) Get(key Key) (relic.VesselResult, bool) {
	h := key.hash()

	if e, ok := c.updates[h]; ok {
		return e.result, true
	}

	for _, le := range c.loaded {
		if le.hash != h {
			continue
		}

		var res relic.VesselResult

		if err := json.Unmarshal(le.data[le.dataOffset:le.dataOffset+le.dataLength], &res); err != nil {
			return relic.VesselResult{}, false
		}

		return res, true
	}

	return relic.VesselResult{}, false
}

// Put stages a vessel result for the next Save.
func (c *Cache) Put(key Key, result relic.VesselResult) {
	c.updates[key.hash()] = entry{key: key, hash: key.hash(), score: int32(result.TotalScore), result: result} //nolint:gosec // scores fit int32
}

// Save flattens the loaded entries plus staged updates into path,
// atomically.
func (c *Cache) Save() error {
	merged := make(map[uint64]entry)

	for _, le := range c.loaded {
		if _, overridden := c.updates[le.hash]; overridden {
			continue
		}

		var res relic.VesselResult
		if err := json.Unmarshal(le.data[le.dataOffset:le.dataOffset+le.dataLength], &res); err == nil {
			merged[le.hash] = entry{hash: le.hash, score: le.score, result: res}
		}
	}

	for h, e := range c.updates {
		merged[h] = e
	}

	return writeCache(c.fsys, c.path, merged)
}

func writeCache(fsys fs.FS, path string, entries map[uint64]entry) error {
	hashes := make([]uint64, 0, len(entries))
	for h := range entries {
		hashes = append(hashes, h)
	}

	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })

	var dataBuf bytes.Buffer

	offsets := make([]uint32, len(hashes))
	lengths := make([]uint32, len(hashes))
	dataStart := headerSize + len(hashes)*indexEntrySize

	for i, h := range hashes {
		payload, err := json.Marshal(entries[h].result)
		if err != nil {
			return fmt.Errorf("marshaling cached result: %w", err)
		}

		offsets[i] = uint32(dataStart + dataBuf.Len()) //nolint:gosec // cache files stay well under 4GiB
		lengths[i] = uint32(len(payload))               //nolint:gosec // same

		dataBuf.Write(payload)
	}

	total := dataStart + dataBuf.Len()
	buf := make([]byte, total)

	copy(buf[0:4], magic)
	binary.LittleEndian.PutUint16(buf[4:6], versionNum)
	binary.LittleEndian.PutUint32(buf[6:10], uint32(len(hashes))) //nolint:gosec // bounded by inventory size

	for i, h := range hashes {
		off := headerSize + i*indexEntrySize
		rec := buf[off : off+indexEntrySize]

		binary.LittleEndian.PutUint64(rec[0:8], h)
		binary.LittleEndian.PutUint32(rec[12:16], offsets[i])
		binary.LittleEndian.PutUint32(rec[16:20], lengths[i])
		binary.LittleEndian.PutUint32(rec[20:24], uint32(entries[h].score)) //nolint:gosec // round-trips a previously truncated int32
	}

	copy(buf[dataStart:], dataBuf.Bytes())

	writer := fs.NewAtomicWriter(fsys)

	return writer.Write(path, bytes.NewReader(buf))
}
