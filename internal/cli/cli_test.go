package cli_test

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/require"

	"github.com/nightreign-tools/relicplanner/internal/cli"
	"github.com/nightreign-tools/relicplanner/internal/relic"
)

func TestRunNoArgsPrintsUsage(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	exitCode := cli.Run(nil, &stdout, &stderr, []string{"relicctl"}, nil, nil)

	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "Usage: relicctl")
}

func TestRunHelpFlag(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	exitCode := cli.Run(nil, &stdout, &stderr, []string{"relicctl", "-h"}, nil, nil)

	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "optimize")
	require.Contains(t, stdout.String(), "parse")
}

func TestRunUnknownCommand(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	exitCode := cli.Run(nil, &stdout, &stderr, []string{"relicctl", "frobnicate"}, nil, nil)

	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "unknown command")
}

func TestRunUnknownGlobalFlag(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	exitCode := cli.Run(nil, &stdout, &stderr, []string{"relicctl", "--bogus"}, nil, nil)

	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "error:")
}

func TestParseCommandMissingSavePath(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	var stdout, stderr bytes.Buffer

	exitCode := cli.Run(nil, &stdout, &stderr, []string{"relicctl", "-C", tmpDir, "parse"}, nil, nil)

	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "parse requires a save file path")
}

func TestOptimizeCommandMissingArgs(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	var stdout, stderr bytes.Buffer

	exitCode := cli.Run(nil, &stdout, &stderr, []string{"relicctl", "-C", tmpDir, "optimize", "onlyone.sl2"}, nil, nil)

	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "optimize requires")
}

func TestDiffCommandMissingArgs(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	var stdout, stderr bytes.Buffer

	exitCode := cli.Run(nil, &stdout, &stderr, []string{"relicctl", "-C", tmpDir, "diff", "old.sl2"}, nil, nil)

	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "diff requires")
}

func TestSubcommandHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantFor string
	}{
		{name: "parse", args: []string{"relicctl", "parse", "--help"}, wantFor: "Usage: relicctl parse"},
		{name: "optimize", args: []string{"relicctl", "optimize", "-h"}, wantFor: "Usage: relicctl optimize"},
		{name: "diff", args: []string{"relicctl", "diff", "--help"}, wantFor: "Usage: relicctl diff"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer

			exitCode := cli.Run(nil, &stdout, &stderr, testCase.args, nil, nil)

			require.Equal(t, 0, exitCode)
			require.Contains(t, stdout.String(), testCase.wantFor)
		})
	}
}

func TestOptimizeCommandMissingBuildFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	savePath := filepath.Join(tmpDir, "save.sl2")

	if err := os.WriteFile(savePath, []byte("not a real save"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var stdout, stderr bytes.Buffer

	exitCode := cli.Run(nil, &stdout, &stderr, []string{"relicctl", "-C", tmpDir, "optimize", savePath, "missing-build.yaml"}, nil, nil)

	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "loading build")
}

// --- synthetic save-file fixture, mirroring internal/save and
// internal/inventory's own test helpers, for the end-to-end parse test.

var pcKey = [16]byte{
	0x99, 0xBF, 0xFC, 0x36, 0x6A, 0x6B, 0xC8, 0xC6,
	0xF5, 0x82, 0x7D, 0x09, 0x36, 0x02, 0x55, 0x29,
}

func encryptBlob(t *testing.T, plaintext []byte) []byte {
	t.Helper()

	if len(plaintext)%aes.BlockSize != 0 {
		t.Fatalf("plaintext length %d is not a multiple of the AES block size", len(plaintext))
	}

	block, err := aes.NewCipher(pcKey[:])
	if err != nil {
		t.Fatalf("aes.NewCipher: %v", err)
	}

	iv := bytes.Repeat([]byte{0x22}, aes.BlockSize)
	ciphertext := make([]byte, len(plaintext))

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)

	return append(append([]byte{}, iv...), ciphertext...)
}

func buildBND4Save(t *testing.T, plaintext []byte) []byte {
	t.Helper()

	payload := encryptBlob(t, plaintext)

	const headerSize = 64
	const entrySize = 32
	dataOffset := headerSize + entrySize

	buf := make([]byte, dataOffset+len(payload))
	copy(buf, "BND4")

	entry := buf[headerSize : headerSize+entrySize]
	copy(entry[0:8], "\x40\x00\x00\x00\xFF\xFF\xFF\xFF")
	binary.LittleEndian.PutUint32(entry[8:12], uint32(len(payload)))
	binary.LittleEndian.PutUint32(entry[12:16], uint32(dataOffset))

	copy(buf[dataOffset:], payload)

	return buf
}

// userDataBuilder assembles a synthetic user-data blob with the Layer 1 /
// Layer 2 layout internal/inventory expects, padded to an AES block
// boundary so it can be wrapped in a BND4 container.
type userDataBuilder struct {
	buf   []byte
	slots int
}

func newUserDataBuilder() *userDataBuilder {
	return &userDataBuilder{buf: make([]byte, 0x14)}
}

func (b *userDataBuilder) addRelic(handle, itemID uint32, effects [3]uint32) {
	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], handle)
	binary.LittleEndian.PutUint32(header[4:8], itemID)

	body := make([]byte, 72)
	binary.LittleEndian.PutUint32(body[8:12], effects[0])
	binary.LittleEndian.PutUint32(body[12:16], effects[1])
	binary.LittleEndian.PutUint32(body[16:20], effects[2])

	curseStart := 8 + 12 + 0x1C
	binary.LittleEndian.PutUint32(body[curseStart:curseStart+4], relic.EmptySlotID)
	binary.LittleEndian.PutUint32(body[curseStart+4:curseStart+8], relic.EmptySlotID)
	binary.LittleEndian.PutUint32(body[curseStart+8:curseStart+12], relic.EmptySlotID)

	b.buf = append(b.buf, header...)
	b.buf = append(b.buf, body...)
	b.slots++
}

func (b *userDataBuilder) addEmptySlot() {
	b.buf = append(b.buf, make([]byte, 8)...)
	b.slots++
}

func (b *userDataBuilder) finish(name string, activeHandles []uint32) []byte {
	const layer1SlotCount = 5120

	for b.slots < layer1SlotCount {
		b.addEmptySlot()
	}

	const nameOffsetFromItemsEnd = 0x94
	const entryTableOffsetFromName = 0x5B8

	b.buf = append(b.buf, make([]byte, nameOffsetFromItemsEnd)...)

	nameBytes := make([]byte, 32)
	units := utf16.Encode([]rune(name))

	for i, u := range units {
		if i >= 16 {
			break
		}

		binary.LittleEndian.PutUint16(nameBytes[i*2:i*2+2], u)
	}

	b.buf = append(b.buf, nameBytes...)
	b.buf = append(b.buf, make([]byte, entryTableOffsetFromName-len(nameBytes))...)

	countPrefix := make([]byte, 4)
	binary.LittleEndian.PutUint32(countPrefix, uint32(len(activeHandles)))
	b.buf = append(b.buf, countPrefix...)

	for _, h := range activeHandles {
		entry := make([]byte, 8)
		binary.LittleEndian.PutUint32(entry[0:4], h)
		b.buf = append(b.buf, entry...)
	}

	if pad := len(b.buf) % aes.BlockSize; pad != 0 {
		b.buf = append(b.buf, make([]byte, aes.BlockSize-pad)...)
	}

	return b.buf
}

func TestParseCommandEndToEnd(t *testing.T) {
	t.Parallel()

	handle := uint32(0xC000_0001)
	realID := uint64(5001) // fixture: red, not-unique, resolves via relic_pools.csv

	ub := newUserDataBuilder()
	ub.addRelic(handle, uint32(relic.IDOffset+realID), [3]uint32{500, 900, relic.EmptySlotID})
	blob := ub.finish("Tarnished", []uint32{handle})

	tmpDir := t.TempDir()
	savePath := filepath.Join(tmpDir, "save.sl2")

	if err := os.WriteFile(savePath, buildBND4Save(t, blob), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var stdout, stderr bytes.Buffer

	exitCode := cli.Run(nil, &stdout, &stderr, []string{
		"relicctl", "-C", tmpDir, "--resource-dir", "../gamedata/testdata", "parse", savePath,
	}, nil, nil)

	require.Equalf(t, 0, exitCode, "stderr = %s", stderr.String())

	out := stdout.String()

	require.Contains(t, out, "Tarnished")
	require.Contains(t, out, "\"Color\": \"red\"")
}

func TestParseCommandSkipsUnparsableSlotAsWarning(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	savePath := filepath.Join(tmpDir, "save.sl2")

	// A short, AES-block-aligned plaintext: long enough to decrypt, far too
	// short to contain a Layer 1 header.
	if err := os.WriteFile(savePath, buildBND4Save(t, make([]byte, aes.BlockSize)), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var stdout, stderr bytes.Buffer

	exitCode := cli.Run(nil, &stdout, &stderr, []string{
		"relicctl", "-C", tmpDir, "--resource-dir", "../gamedata/testdata", "parse", savePath,
	}, nil, nil)

	require.Equal(t, 1, exitCode, "a warning should have been recorded for the unparsable slot")
	require.Contains(t, stderr.String(), "warning:")
	require.Equal(t, "null", strings.TrimSpace(stdout.String()))
}
