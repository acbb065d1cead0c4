// Package save decodes encrypted save-file containers into an ordered
// sequence of per-character user-data blobs. It performs no semantic
// interpretation of the blobs themselves — that is the inventory parser's
// job (internal/inventory).
//
// Two container formats are supported, discriminated by filename suffix:
// the PC "BND4" archive (AES-128-CBC encrypted entries) and the console
// flat-chunk container. Decoding is pure, read-only I/O.
package save

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Sentinel errors surfaced by the decoder.
var (
	ErrInvalidContainer  = errors.New("invalid save container")
	ErrDecryptionFailure = errors.New("save entry decryption failed")
	ErrUnsupportedFormat = errors.New("unsupported save file extension")
)

// pcKey is the fixed 128-bit AES key used for PC BND4 entry decryption.
// It is a protocol constant external to the planner's own logic, not a
// secret.
var pcKey = [16]byte{
	0x99, 0xBF, 0xFC, 0x36, 0x6A, 0x6B, 0xC8, 0xC6,
	0xF5, 0x82, 0x7D, 0x09, 0x36, 0x02, 0x55, 0x29,
}

const (
	bnd4Magic        = "BND4"
	bnd4HeaderSize   = 64
	bnd4EntrySize    = 32
	bnd4EntrySigHex  = "\x40\x00\x00\x00\xFF\xFF\xFF\xFF"
	maxEntrySize     = 1 << 30 // 1 GiB absurdity cap
	consoleHeaderLen = 0x80
	consoleChunkLen  = 1 << 20 // 1 MiB
	consoleChunkCap  = 10
	consoleChunkMin  = 0x1000
	consoleChunkTag  = "\x00\x10\x00\x10"
)

// Blob is one decoded, decrypted per-character user-data payload.
type Blob struct {
	Name      string
	SlotIndex int
	Data      []byte
}

// DecodeFile reads and decodes a save file at path, dispatching on its
// filename suffix (".sl2" for PC, ".dat" for console).
func DecodeFile(path string) ([]Blob, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading save file: %w", err)
	}

	switch {
	case strings.HasSuffix(strings.ToLower(path), ".sl2"):
		return DecodePC(data)
	case strings.HasSuffix(strings.ToLower(path), ".dat"):
		return DecodeConsole(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Decode dispatches on the raw magic bytes rather than a filename, for
// callers (such as tests) that only have an in-memory blob.
func Decode(data []byte) ([]Blob, error) {
	if bytes.HasPrefix(data, []byte(bnd4Magic)) {
		return DecodePC(data)
	}

	return DecodeConsole(data)
}

func readFile(path string) ([]byte, error) {
	if data, ok := tryMmap(path); ok {
		return data, nil
	}

	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return io.ReadAll(f)
}

// DecodePC decodes a PC "BND4" archive: a 64-byte header, N fixed-signature
// 32-byte entry descriptors, and AES-CBC-encrypted entry payloads.
func DecodePC(data []byte) ([]Blob, error) {
	if len(data) < bnd4HeaderSize || !bytes.HasPrefix(data, []byte(bnd4Magic)) {
		return nil, fmt.Errorf("%w: missing BND4 magic", ErrInvalidContainer)
	}

	var blobs []Blob

	for i, off := 0, bnd4HeaderSize; off+bnd4EntrySize <= len(data); i, off = i+1, off+bnd4EntrySize {
		entry := data[off : off+bnd4EntrySize]
		if !bytes.HasPrefix(entry, []byte(bnd4EntrySigHex)) {
			continue
		}

		size := int(int32(binary.LittleEndian.Uint32(entry[8:12])))
		dataOffset := int(binary.LittleEndian.Uint32(entry[12:16]))

		if size <= 0 || size > maxEntrySize {
			continue
		}

		if dataOffset < 0 || dataOffset+size > len(data) {
			continue
		}

		payload := data[dataOffset : dataOffset+size]

		plain, err := decryptEntry(payload)
		if err != nil {
			// Skip the entry without aborting and continue with the
			// remaining entries; the failure is not reported to the caller.
			continue
		}

		blobs = append(blobs, Blob{
			Name:      fmt.Sprintf("USERDATA_%02d", i),
			SlotIndex: i,
			Data:      plain,
		})
	}

	return blobs, nil
}

func decryptEntry(payload []byte) ([]byte, error) {
	if len(payload) < aes.BlockSize || (len(payload)-aes.BlockSize)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: implausible entry length %d", ErrDecryptionFailure, len(payload))
	}

	block, err := aes.NewCipher(pcKey[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailure, err)
	}

	iv := payload[:aes.BlockSize]
	ciphertext := payload[aes.BlockSize:]
	plaintext := make([]byte, len(ciphertext))

	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return plaintext, nil
}

// DecodeConsole decodes the flat console container: an 0x80-byte header,
// up to ten 1 MiB payload chunks, followed by an optional trailing
// regulation blob. Chunks shorter than 0x1000 bytes when read back are
// discarded.
func DecodeConsole(data []byte) ([]Blob, error) {
	if len(data) < consoleHeaderLen {
		return nil, fmt.Errorf("%w: file shorter than console header", ErrInvalidContainer)
	}

	var blobs []Blob

	off := consoleHeaderLen

	for slot := 0; slot < consoleChunkCap && off < len(data); slot++ {
		end := off + consoleChunkLen
		if end > len(data) {
			end = len(data)
		}

		chunk := data[off:end]
		off = end

		chunk = bytes.TrimPrefix(chunk, []byte(consoleChunkTag))

		if len(chunk) < consoleChunkMin {
			continue
		}

		blobs = append(blobs, Blob{
			Name:      fmt.Sprintf("USERDATA_%02d", slot),
			SlotIndex: slot,
			Data:      chunk,
		})
	}

	return blobs, nil
}
