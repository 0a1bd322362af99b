//
// Copyright (C) 2025 The Vibedict Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package vibedict

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytePrimitives(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

	assert.Equal(t, uint8(0x01), beBinToU8(buf[:1]))
	assert.Equal(t, uint16(0x0102), beBinToU16(buf[:2]))
	assert.Equal(t, uint32(0x01020304), beBinToU32(buf[:4]))
	assert.Equal(t, uint64(0x0102030405060708), beBinToU64(buf))
}

func TestBinSliceBounds(t *testing.T) {
	buf := []byte{1, 2, 3, 4}

	got, err := binSlice(buf, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3}, got)

	_, err = binSlice(buf, 3, 2)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = binSlice(buf, -1, 2)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = binSlice(buf, 0, -1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestHexRoundTrip(t *testing.T) {
	data := []byte{0x89, 0x50, 0x4E, 0x47, 0x00, 0xFF}
	hexed := bytesToHexUpper(data)
	assert.Equal(t, "89504E4700FF", hexed)

	back, err := hexToBytes(hexed)
	require.NoError(t, err)
	assert.Equal(t, data, back)

	back, err = hexToBytes("89504e4700ff")
	require.NoError(t, err)
	assert.Equal(t, data, back)

	_, err = hexToBytes("abc")
	assert.Error(t, err)
	_, err = hexToBytes("zz")
	assert.Error(t, err)
}

func TestZlibDecompress(t *testing.T) {
	payload := []byte("hello dictionary payload hello dictionary payload")
	compressed := zlibCompress(t, payload)

	out, err := zlibDecompress(compressed, 0, int64(len(compressed)))
	require.NoError(t, err)
	assert.Equal(t, payload, out)

	_, err = zlibDecompress([]byte{0xde, 0xad, 0xbe, 0xef}, 0, 4)
	assert.Error(t, err)

	_, err = zlibDecompress(compressed, 0, int64(len(compressed))+10)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestMdxDecryptRoundTrip(t *testing.T) {
	// A fake key-info payload: 4-byte tag, 4-byte checksum, scrambled body.
	plain := append([]byte{2, 0, 0, 0, 0xAA, 0xBB, 0xCC, 0xDD},
		[]byte("the quick brown fox jumps over the lazy dog")...)

	scrambled := make([]byte, len(plain))
	copy(scrambled, plain)
	scrambleKeyInfo(scrambled)
	assert.NotEqual(t, plain[8:], scrambled[8:])
	// Tag and checksum stay readable.
	assert.Equal(t, plain[:8], scrambled[:8])

	restored := mdxDecrypt(scrambled, int64(len(scrambled)))
	assert.Equal(t, plain, restored)
}

func TestLittleEndianBinUTF16ToUTF8(t *testing.T) {
	// "ab" + U+4E2D + a surrogate pair (U+1D11E, musical G clef)
	src := encodeUTF16LE("ab中\U0001D11E")
	assert.Equal(t, "ab中\U0001D11E", littleEndianBinUTF16ToUTF8(src, 0, len(src)))

	// Offsets outside the buffer yield an empty string rather than panic.
	assert.Equal(t, "", littleEndianBinUTF16ToUTF8(src, -1, 4))
	assert.Equal(t, "", littleEndianBinUTF16ToUTF8(src, 0, len(src)+2))
}

func TestDecodeLittleEndianUtf16(t *testing.T) {
	got, err := decodeLittleEndianUtf16(encodeUTF16LE("\\images\\a.png"))
	require.NoError(t, err)
	assert.Equal(t, "\\images\\a.png", got)
}

func TestNormalizeForCompare(t *testing.T) {
	// Lowercases ASCII, strips the documented punctuation set, leaves
	// multi-byte sequences alone.
	assert.Equal(t, "email", normalizeForCompare("E-Mail"))
	assert.Equal(t, "abcdef", normalizeForCompare("A b:C.d,E-f"))
	assert.Equal(t, "", normalizeForCompare(`_'()#<>!/\[]{}@`))
	assert.Equal(t, "caféaulait", normalizeForCompare("Café au Lait"))
	assert.Equal(t, "中文", normalizeForCompare("中 文"))

	// Idempotent.
	for _, s := range []string{"E-Mail", "Café (au) Lait!", "中文", "plain"} {
		once := normalizeForCompare(s)
		assert.Equal(t, once, normalizeForCompare(once))
	}
}

func TestNormalizeResourcePath(t *testing.T) {
	assert.Equal(t, `\images\a.png`, normalizeResourcePath("/images/a.png"))
	assert.Equal(t, `\images\a.png`, normalizeResourcePath(`\images\a.png`))
	assert.Equal(t, `\images\a.png`, normalizeResourcePath("IMAGES/A.PNG"))
}

func TestStripTrailingNulls(t *testing.T) {
	assert.Equal(t, []byte("abc"), stripTrailingNulls([]byte("abc\x00\x00")))
	assert.Equal(t, []byte("a\x00b"), stripTrailingNulls([]byte("a\x00b\x00")))
	assert.Empty(t, stripTrailingNulls([]byte{0, 0}))
}

func TestReadFileFromPos(t *testing.T) {
	r := bytes.NewReader([]byte("0123456789"))

	got, err := readFileFromPos(r, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("2345"), got)

	// Reading exactly to the end is fine.
	got, err = readFileFromPos(r, 6, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("6789"), got)

	_, err = readFileFromPos(r, 8, 4)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = readFileFromPos(r, -1, 4)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestParseEngineVersion(t *testing.T) {
	assert.Equal(t, float32(2.0), parseEngineVersion("2.0"))
	assert.Equal(t, float32(1.2), parseEngineVersion("1.2"))
	assert.Equal(t, float32(2.0), parseEngineVersion(" 2.0 beta"))
	assert.Equal(t, float32(0.0), parseEngineVersion(""))
	assert.Equal(t, float32(0.0), parseEngineVersion("abc"))
}

func TestParseXMLHeader(t *testing.T) {
	info, err := parseXMLHeader(`<Dictionary GeneratedByEngineVersion="2.0" Encrypted="2" Encoding="UTF-8" Title="T"/>` + "\r\n\x00")
	require.NoError(t, err)
	assert.Equal(t, "2.0", info.GeneratedByEngineVersion)
	assert.Equal(t, "2", info.Encrypted)
	assert.Equal(t, "UTF-8", info.Encoding)
	assert.Equal(t, "T", info.Title)

	// Malformed XML still yields attributes through the grep fallback.
	info, err = parseXMLHeader(`<Dictionary GeneratedByEngineVersion="1.2" Encoding="GBK" Description="a & b"`)
	require.NoError(t, err)
	assert.Equal(t, "1.2", info.GeneratedByEngineVersion)
	assert.Equal(t, "GBK", info.Encoding)

	_, err = parseXMLHeader("no attributes here")
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestExtractBodyContent(t *testing.T) {
	assert.Equal(t, "hello", ExtractBodyContent(`<html><body class="x">hello</body></html>`))
	assert.Equal(t, "fragment only", ExtractBodyContent("fragment only"))
	assert.Equal(t, "<body unclosed", ExtractBodyContent("<body unclosed"))
}
