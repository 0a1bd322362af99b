package vibedict

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"hash/adler32"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"

	"github.com/c0mm4nd/go-ripemd"
	"github.com/stretchr/testify/require"
)

// testEntry is one (headword, value) pair fed to writeTestDict.
type testEntry struct {
	key string
	val []byte
}

// testDictOptions shapes the synthetic dictionary file the tests exercise.
type testDictOptions struct {
	version         string // engine version; "" means "2.0"
	encrypted       string // Encrypted header attribute
	encoding        string // Encoding header attribute; "" means "UTF-8"
	mdd             bool
	keysPerBlock    int  // entries per key block; 0 means 2
	recordsPerBlock int  // entries per record block; 0 means 2
	recordTag       byte // compression tag for record blocks; 0 value means zlib (2)
}

func encodeUTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, len(units)*2)
	for i, u := range units {
		out[2*i] = byte(u)
		out[2*i+1] = byte(u >> 8)
	}
	return out
}

func zlibCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// makeBlock wraps a decompressed body in the on-disk block framing: a 4-byte
// compression tag, a 4-byte big-endian Adler-32 of the body, and the body
// (deflated when the tag says zlib).
func makeBlock(t *testing.T, decomp []byte, tag byte) []byte {
	t.Helper()
	var b bytes.Buffer
	b.Write([]byte{tag, 0, 0, 0})
	var cs [4]byte
	binary.BigEndian.PutUint32(cs[:], adler32.Checksum(decomp))
	b.Write(cs[:])
	if tag == 2 {
		b.Write(zlibCompress(t, decomp))
	} else {
		b.Write(decomp)
	}
	return b.Bytes()
}

// scrambleKeyInfo applies the inverse of fastDecrypt to payload[8:], so the
// reader's descrambling pass reconstructs the original bytes.
func scrambleKeyInfo(payload []byte) {
	keyInput := make([]byte, 8)
	copy(keyInput, payload[4:8])
	keyInput[4] = 0x95
	keyInput[5] = 0x36

	h := ripemd.New128()
	h.Write(keyInput)
	key := h.Sum(nil)

	data := payload[8:]
	previous := byte(0x36)
	for i := range data {
		t := data[i] ^ previous ^ byte(i&0xff) ^ key[i%16]
		t = ((t >> 4) | (t << 4)) & 0xff
		previous = t
		data[i] = t
	}
}

func chunkEntries(entries []testEntry, size int) [][]testEntry {
	var chunks [][]testEntry
	for start := 0; start < len(entries); start += size {
		end := start + size
		if end > len(entries) {
			end = len(entries)
		}
		chunks = append(chunks, entries[start:end])
	}
	return chunks
}

// writeTestDict assembles a complete dictionary file byte-exactly per the
// container layout and writes it under t.TempDir.
func writeTestDict(t *testing.T, opts testDictOptions, entries []testEntry) string {
	t.Helper()

	if opts.version == "" {
		opts.version = "2.0"
	}
	if opts.encoding == "" {
		opts.encoding = "UTF-8"
	}
	if opts.keysPerBlock == 0 {
		opts.keysPerBlock = 2
	}
	if opts.recordsPerBlock == 0 {
		opts.recordsPerBlock = 2
	}
	recordTag := opts.recordTag
	if recordTag == 0 {
		recordTag = 2
	} else if recordTag == 0xff {
		recordTag = 0 // sentinel for "stored"
	}

	v2 := opts.version >= "2"
	keyWidth := 1
	if opts.mdd {
		keyWidth = 2
	}

	num := func(b *bytes.Buffer, v uint64) {
		if v2 {
			var tmp [8]byte
			binary.BigEndian.PutUint64(tmp[:], v)
			b.Write(tmp[:])
		} else {
			var tmp [4]byte
			binary.BigEndian.PutUint32(tmp[:], uint32(v))
			b.Write(tmp[:])
		}
	}

	keyBytesOf := func(key string) []byte {
		if opts.mdd {
			return encodeUTF16LE(key)
		}
		return []byte(key)
	}

	// Record stream: every value followed by a NUL terminator, offsets
	// accumulated across the whole file.
	bodies := make([][]byte, len(entries))
	starts := make([]uint64, len(entries))
	var streamOffset uint64
	for i, e := range entries {
		bodies[i] = append(append([]byte{}, e.val...), 0)
		starts[i] = streamOffset
		streamOffset += uint64(len(bodies[i]))
	}

	// Key blocks.
	keyChunks := chunkEntries(entries, opts.keysPerBlock)
	var keyBlocks [][]byte
	var keyBlockDecomps [][]byte
	entryIdx := 0
	for _, chunk := range keyChunks {
		var decomp bytes.Buffer
		for range chunk {
			num(&decomp, starts[entryIdx])
			decomp.Write(keyBytesOf(entries[entryIdx].key))
			decomp.Write(make([]byte, keyWidth))
			entryIdx++
		}
		keyBlockDecomps = append(keyBlockDecomps, decomp.Bytes())
		keyBlocks = append(keyBlocks, makeBlock(t, decomp.Bytes(), 2))
	}

	// Key-block-info descriptor table.
	var infoDecomp bytes.Buffer
	writeKeySize := func(key string) {
		kb := keyBytesOf(key)
		size := len(kb)
		if opts.mdd {
			size = len(kb) / 2
		}
		if v2 {
			var tmp [2]byte
			binary.BigEndian.PutUint16(tmp[:], uint16(size))
			infoDecomp.Write(tmp[:])
		} else {
			infoDecomp.WriteByte(byte(size))
		}
		infoDecomp.Write(kb)
		if v2 {
			// one terminator character at the key's width
			infoDecomp.Write(make([]byte, keyWidth))
		}
	}
	for i, chunk := range keyChunks {
		num(&infoDecomp, uint64(len(chunk)))
		writeKeySize(chunk[0].key)
		writeKeySize(chunk[len(chunk)-1].key)
		num(&infoDecomp, uint64(len(keyBlocks[i])))
		num(&infoDecomp, uint64(len(keyBlockDecomps[i])))
	}

	var infoPayload []byte
	if v2 {
		infoPayload = makeBlock(t, infoDecomp.Bytes(), 2)
		if opts.encrypted != "" && opts.encrypted[0] == '2' {
			scrambleKeyInfo(infoPayload)
		}
	} else {
		infoPayload = infoDecomp.Bytes()
	}

	var keyBlockTotal int
	for _, kb := range keyBlocks {
		keyBlockTotal += len(kb)
	}

	// Key-block directory header.
	var keyMeta bytes.Buffer
	num(&keyMeta, uint64(len(keyChunks)))
	num(&keyMeta, uint64(len(entries)))
	if v2 {
		num(&keyMeta, uint64(infoDecomp.Len()))
	}
	num(&keyMeta, uint64(len(infoPayload)))
	num(&keyMeta, uint64(keyBlockTotal))
	if v2 {
		keyMeta.Write(make([]byte, 4))
	}

	// Record blocks.
	numWidth := 4
	if v2 {
		numWidth = 8
	}
	bodyChunks := make([][][]byte, 0)
	for start := 0; start < len(bodies); start += opts.recordsPerBlock {
		end := start + opts.recordsPerBlock
		if end > len(bodies) {
			end = len(bodies)
		}
		bodyChunks = append(bodyChunks, bodies[start:end])
	}
	var recordBlocks [][]byte
	var recordDecompLens []int
	var recordCompTotal int
	for _, chunk := range bodyChunks {
		var decomp bytes.Buffer
		for _, body := range chunk {
			decomp.Write(body)
		}
		block := makeBlock(t, decomp.Bytes(), recordTag)
		recordBlocks = append(recordBlocks, block)
		recordDecompLens = append(recordDecompLens, decomp.Len())
		recordCompTotal += len(block)
	}

	var recordMeta bytes.Buffer
	num(&recordMeta, uint64(len(recordBlocks)))
	num(&recordMeta, uint64(len(entries)))
	num(&recordMeta, uint64(len(recordBlocks)*2*numWidth))
	num(&recordMeta, uint64(recordCompTotal))
	for i, block := range recordBlocks {
		num(&recordMeta, uint64(len(block)))
		num(&recordMeta, uint64(recordDecompLens[i]))
	}

	// Header blob.
	xml := fmt.Sprintf(`<Dictionary GeneratedByEngineVersion="%s" RequiredEngineVersion="%s"`+
		` Encrypted="%s" Encoding="%s" Format="Html" Title="Test Dict" Description="synthetic fixture"`+
		` CreationDate="2024-01-01" StyleSheet=""/>`,
		opts.version, opts.version, opts.encrypted, opts.encoding)
	xml += "\r\n\x00"
	headerBytes := encodeUTF16LE(xml)

	var file bytes.Buffer
	var u32 [4]byte
	binary.BigEndian.PutUint32(u32[:], uint32(len(headerBytes)))
	file.Write(u32[:])
	file.Write(headerBytes)
	binary.BigEndian.PutUint32(u32[:], adler32.Checksum([]byte(xml)))
	file.Write(u32[:])

	file.Write(keyMeta.Bytes())
	file.Write(infoPayload)
	for _, kb := range keyBlocks {
		file.Write(kb)
	}
	file.Write(recordMeta.Bytes())
	for _, rb := range recordBlocks {
		file.Write(rb)
	}

	ext := ".mdx"
	if opts.mdd {
		ext = ".mdd"
	}
	path := filepath.Join(t.TempDir(), "testdict"+ext)
	require.NoError(t, os.WriteFile(path, file.Bytes(), 0644))
	return path
}

// simpleTextEntries is the three-entry corpus most tests share.
func simpleTextEntries() []testEntry {
	return []testEntry{
		{key: "apple", val: []byte("<b>apple def</b>")},
		{key: "banana", val: []byte("<b>banana def</b>")},
		{key: "cherry", val: []byte("<b>cherry def</b>")},
	}
}
