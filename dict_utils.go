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
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/c0mm4nd/go-ripemd"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

/********************************
 *    byte primitives           *
 ********************************/

func beBinToU8(b []byte) uint8 {
	return b[0]
}

func beBinToU16(b []byte) uint16 {
	return binary.BigEndian.Uint16(b)
}

func beBinToU32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

func beBinToU64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// binSlice returns buf[offset:offset+length] after checking bounds.
func binSlice(buf []byte, offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > len(buf) {
		return nil, fmt.Errorf("%w: slice [%d:%d] of %d bytes", ErrOutOfBounds, offset, offset+length, len(buf))
	}
	return buf[offset : offset+length], nil
}

const hexDigits = "0123456789ABCDEF"

// bytesToHexUpper encodes b as an uppercase hex string.
func bytesToHexUpper(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 2)
	for _, c := range b {
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0f])
	}
	return sb.String()
}

// hexToBytes decodes a hex string produced by bytesToHexUpper.
func hexToBytes(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd hex string length %d", ErrOutOfBounds, len(s))
	}
	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		hi := strings.IndexByte(hexDigits, upperHexDigit(s[2*i]))
		lo := strings.IndexByte(hexDigits, upperHexDigit(s[2*i+1]))
		if hi < 0 || lo < 0 {
			return nil, fmt.Errorf("invalid hex digit at %d in %q", 2*i, s)
		}
		out[i] = byte(hi<<4 | lo)
	}
	return out, nil
}

func upperHexDigit(c byte) byte {
	if c >= 'a' && c <= 'f' {
		return c - 32
	}
	return c
}

// readFileFromPos reads exactly size bytes at the given offset using a
// positioned read, so concurrent readers never race on a shared cursor.
func readFileFromPos(r io.ReaderAt, offset, size int64) ([]byte, error) {
	if offset < 0 || size < 0 {
		return nil, fmt.Errorf("%w: read [%d..%d)", ErrOutOfBounds, offset, offset+size)
	}
	buf := make([]byte, size)
	n, err := r.ReadAt(buf, offset)
	if err != nil && !(err == io.EOF && int64(n) == size) {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: short read at offset %d, want %d got %d", ErrOutOfBounds, offset, size, n)
		}
		return nil, fmt.Errorf("read %d bytes at offset %d failed: %w", size, offset, err)
	}
	return buf, nil
}

/********************************
 *    decompression             *
 ********************************/

// zlibDecompress inflates data[offset:offset+size] into a freshly owned
// buffer. The caller verifies the surrounding block's Adler-32 tag.
func zlibDecompress(data []byte, offset, size int64) ([]byte, error) {
	if offset < 0 || size < 0 || offset+size > int64(len(data)) {
		return nil, fmt.Errorf("%w: zlib input [%d:%d] of %d bytes", ErrOutOfBounds, offset, offset+size, len(data))
	}
	zr, err := zlib.NewReader(bytes.NewReader(data[offset : offset+size]))
	if err != nil {
		return nil, fmt.Errorf("zlib stream open failed: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}
	return out, nil
}

/********************************
 *    key-info descrambler      *
 ********************************/

// fastDecrypt undoes the XOR/rotate scrambling applied to the key-block-info
// payload. previous is seeded with 0x36 and tracks the previous pre-transform
// input byte.
func fastDecrypt(data, key []byte) {
	previous := byte(0x36)
	for i := 0; i < len(data); i++ {
		t := ((data[i] >> 4) | (data[i] << 4)) & 0xff
		t = t ^ previous ^ byte(i&0xff) ^ key[i%len(key)]
		previous = data[i]
		data[i] = t
	}
}

// mdxDecrypt descrambles a scrambled key-block-info payload. The 16-byte key
// is RIPEMD-128 over payload[4:8] followed by {0x95, 0x36, 0x00, 0x00}. Bytes
// before offset 8 (compression tag and Adler-32) are left untouched.
func mdxDecrypt(data []byte, size int64) []byte {
	keyInput := make([]byte, 8)
	copy(keyInput, data[4:8])
	keyInput[4] = 0x95
	keyInput[5] = 0x36

	h := ripemd.New128()
	h.Write(keyInput)
	key := h.Sum(nil)

	out := make([]byte, size)
	copy(out, data[:size])
	fastDecrypt(out[8:], key)
	return out
}

/********************************
 *    text codecs               *
 ********************************/

var (
	utf16leDecoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	gb18030Codec   = simplifiedchinese.GB18030
	big5Codec      = traditionalchinese.Big5
)

// littleEndianBinUTF16ToUTF8 converts a UTF-16LE byte range to a UTF-8 string
// with an explicit paired-byte walk, combining surrogate pairs into scalars.
// Used on the header blob, which may carry stray terminators the stricter
// decoder would reject.
func littleEndianBinUTF16ToUTF8(b []byte, offset, length int) string {
	if offset < 0 || length < 0 || offset+length > len(b) {
		return ""
	}
	src := b[offset : offset+length]
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i+1 < len(src); i += 2 {
		u := rune(uint16(src[i]) | uint16(src[i+1])<<8)
		if utf16.IsSurrogate(u) && i+3 < len(src) {
			lo := rune(uint16(src[i+2]) | uint16(src[i+3])<<8)
			if r := utf16.DecodeRune(u, lo); r != utf8.RuneError {
				sb.WriteRune(r)
				i += 2
				continue
			}
		}
		sb.WriteRune(u)
	}
	return sb.String()
}

// decodeLittleEndianUtf16 decodes a complete UTF-16LE byte slice to UTF-8.
func decodeLittleEndianUtf16(b []byte) (string, error) {
	out, err := utf16leDecoder.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("utf-16le decoding failed: %w", err)
	}
	return string(out), nil
}

// decodeWithEncoding converts raw key bytes to UTF-8 per the file encoding.
func decodeWithEncoding(b []byte, encoding int) (string, error) {
	switch encoding {
	case EncodingUtf16:
		return decodeLittleEndianUtf16(b)
	case EncodingGb18030:
		out, err := gb18030Codec.NewDecoder().Bytes(b)
		if err != nil {
			return "", fmt.Errorf("gb18030 decoding failed: %w", err)
		}
		return string(out), nil
	case EncodingBig5:
		out, err := big5Codec.NewDecoder().Bytes(b)
		if err != nil {
			return "", fmt.Errorf("big5 decoding failed: %w", err)
		}
		return string(out), nil
	default:
		return string(b), nil
	}
}

/********************************
 *    key & path normalizers    *
 ********************************/

// normalizeForCompare folds a headword for non-exact matching: ASCII
// uppercase is lowered, a fixed ASCII punctuation set is dropped, and every
// other byte (including multi-byte sequences) passes through unchanged. Keys
// are mixed-script, so no locale-aware fold may be used here.
func normalizeForCompare(word string) string {
	var sb strings.Builder
	sb.Grow(len(word))
	for i := 0; i < len(word); i++ {
		c := word[i]
		switch {
		case c >= 'A' && c <= 'Z':
			sb.WriteByte(c + 32)
		case c == ' ' || c == ':' || c == '.' || c == ',' || c == '-' ||
			c == '_' || c == '\'' || c == '(' || c == ')' || c == '#' ||
			c == '<' || c == '>' || c == '!' || c == '/' || c == '\\' ||
			c == '[' || c == ']' || c == '{' || c == '}' || c == '@':
			// dropped
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// normalizeResourcePath canonicalizes an MDD resource name: lowercase,
// forward slashes to backslashes, exactly one leading backslash.
func normalizeResourcePath(p string) string {
	p = strings.ToLower(p)
	p = strings.ReplaceAll(p, "/", "\\")
	return "\\" + strings.TrimLeft(p, "\\")
}

// stripTrailingNulls trims the NUL padding MDX record bodies end with.
func stripTrailingNulls(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return b[:end]
}
