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

import "errors"

// DictType represents the type of the dictionary file (MDX or MDD).
type DictType int

const (
	// DictTypeMdd indicates an MDD resource archive.
	DictTypeMdd DictType = 1
	// DictTypeMdx indicates an MDX text dictionary.
	DictTypeMdx DictType = 2

	// EncryptNoEnc indicates no encryption.
	EncryptNoEnc = 0
	// EncryptRecordEnc indicates record block encryption (rejected).
	EncryptRecordEnc = 1
	// EncryptKeyInfoEnc indicates key info block scrambling.
	EncryptKeyInfoEnc = 2

	// NumfmtBe8bytesq represents big-endian 8-byte unsigned integers.
	NumfmtBe8bytesq = 0
	// NumfmtBe4bytesi represents big-endian 4-byte unsigned integers.
	NumfmtBe4bytesi = 1

	// EncodingUtf8 represents UTF-8 encoding.
	EncodingUtf8 = 0
	// EncodingUtf16 represents UTF-16LE encoding.
	EncodingUtf16 = 1
	// EncodingBig5 represents Big5 encoding.
	EncodingBig5 = 2
	// EncodingGb18030 represents GB18030 encoding (also covers GBK/GB2312).
	EncodingGb18030 = 3
)

// ResourceEncoding selects how Locate returns an MDD resource body.
type ResourceEncoding int

const (
	// ResourceEncodingHex returns the body as an uppercase hex string.
	ResourceEncodingHex ResourceEncoding = iota
	// ResourceEncodingBase64 returns the body base64 encoded.
	ResourceEncodingBase64
)

// Sentinel errors for the format-level failure classes. Call sites wrap
// these with positional context via fmt.Errorf and %w.
var (
	ErrUnsupportedEncryption  = errors.New("record-level encryption is not supported")
	ErrUnsupportedCompression = errors.New("unsupported block compression")
	ErrChecksumMismatch       = errors.New("adler-32 checksum mismatch")
	ErrSizeMismatch           = errors.New("decompressed size mismatch")
	ErrMalformedHeader        = errors.New("malformed dictionary header")
	ErrOutOfBounds            = errors.New("offset out of bounds")

	// ErrWordNotFound is returned when a word is not found in the dictionary.
	ErrWordNotFound = errors.New("word not found")
)

/********************************
 *    private data types        *
 ********************************/

type dictHeader struct {
	headerBytesSize          uint32
	headerInfoBytes          []byte
	headerInfo               string
	adler32Checksum          uint32
	dictionaryHeaderByteSize int64
}

type dictMeta struct {
	encryptType  int
	version      float32
	numberWidth  int
	numberFormat int
	encoding     int

	// key-block part start offset in the mdx/mdd file
	keyBlockMetaStartOffset int64

	description              string
	title                    string
	creationDate             string
	generatedByEngineVersion string
}

type dictKeyBlockMeta struct {
	// number of key blocks
	keyBlockNum int64
	// number of key entries declared by the header
	entriesNum int64
	// key-block-info size (decompressed, v>=2.0 only)
	keyBlockInfoDecompressSize int64
	// key-block-info size (as stored)
	keyBlockInfoCompressedSize int64
	// total size of the concatenated key blocks
	keyBlockDataTotalSize int64
	// key-block-info start position in the file
	keyBlockInfoStartOffset int64
}

type dictKeyBlockInfo struct {
	keyBlockEntriesStartOffset int64
	keyBlockInfoList           []*dictKeyBlockInfoItem
}

type dictKeyBlockInfoItem struct {
	firstKey                      string
	firstKeySize                  int
	lastKey                       string
	lastKeySize                   int
	keyBlockInfoIndex             int
	keyBlockCompressSize          int64
	keyBlockCompAccumulator       int64
	keyBlockDeCompressSize        int64
	keyBlockDeCompressAccumulator int64
}

type dictKeyBlockData struct {
	keyEntries                 []*KeywordEntry
	keyEntriesSize             int64
	recordBlockMetaStartOffset int64
}

type dictRecordBlockMeta struct {
	keyRecordMetaStartOffset int64
	keyRecordMetaEndOffset   int64

	recordBlockNum          int64
	entriesNum              int64
	recordBlockInfoCompSize int64
	recordBlockCompSize     int64
}

type dictRecordBlockInfo struct {
	recordInfoList             []*RecordBlockInfoListItem
	recordBlockInfoStartOffset int64
	recordBlockInfoEndOffset   int64
	recordBlockDataStartOffset int64
}

// RecordBlockInfoListItem holds the directory entry for a single record block.
type RecordBlockInfoListItem struct {
	compressSize                int64
	deCompressSize              int64
	compressAccumulatorOffset   int64
	deCompressAccumulatorOffset int64
}

// recordPair is one decoded (headword, value body) pair from a record block.
type recordPair struct {
	keyWord string
	data    []byte
}

/********************************
 *    public data types         *
 ********************************/

// KeywordEntry represents a single keyword entry from a key block.
type KeywordEntry struct {
	RecordStartOffset int64
	KeyWord           string
}

// KeywordIndex links a keyword to its exact location inside a record block,
// carrying everything needed to re-read the value without the in-memory index.
type KeywordIndex struct {
	KeywordEntry KeywordEntry
	RecordBlock  KeywordIndexRecordBlock
}

// KeywordIndexRecordBlock describes the record block slice holding a value.
type KeywordIndexRecordBlock struct {
	DataStartOffset          int64
	CompressSize             int64
	DeCompressSize           int64
	KeyWordPartStartOffset   int64
	KeyWordPartDataEndOffset int64
}
