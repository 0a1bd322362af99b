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
	"fmt"
	"hash/adler32"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
)

// headerXMLInfo carries the attributes extracted from the header blob.
type headerXMLInfo struct {
	GeneratedByEngineVersion string
	Encoding                 string
	Encrypted                string
	Title                    string
	Description              string
	CreationDate             string
	Format                   string
}

var (
	headerAttrRe    = regexp.MustCompile(`(\w+)="([^"]*)"`)
	headerVersionRe = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)`)
)

// parseXMLHeader extracts the key/value attributes from the header blob.
// Real dictionaries ship blobs that are close to, but not always, well-formed
// XML, so a shallow attribute grep backs up the XML parser.
func parseXMLHeader(text string) (*headerXMLInfo, error) {
	text = strings.TrimRight(text, "\x00\r\n \t")

	attrs := make(map[string]string)
	if doc, err := xmlquery.Parse(strings.NewReader(text)); err == nil {
		if node := xmlquery.FindOne(doc, "//*"); node != nil {
			for _, a := range node.Attr {
				attrs[a.Name.Local] = a.Value
			}
		}
	}
	if len(attrs) == 0 {
		for _, m := range headerAttrRe.FindAllStringSubmatch(text, -1) {
			attrs[m[1]] = m[2]
		}
	}
	if len(attrs) == 0 {
		return nil, fmt.Errorf("%w: no attributes found in header info", ErrMalformedHeader)
	}

	return &headerXMLInfo{
		GeneratedByEngineVersion: attrs["GeneratedByEngineVersion"],
		Encoding:                 attrs["Encoding"],
		Encrypted:                attrs["Encrypted"],
		Title:                    attrs["Title"],
		Description:              attrs["Description"],
		CreationDate:             attrs["CreationDate"],
		Format:                   attrs["Format"],
	}, nil
}

// parseEngineVersion parses the leading digits of the engine version string.
// Anything unparseable maps to 0.0, which selects the pre-2.0 layout.
func parseEngineVersion(s string) float32 {
	m := headerVersionRe.FindStringSubmatch(s)
	if m == nil {
		return 0.0
	}
	v, err := strconv.ParseFloat(m[1], 32)
	if err != nil {
		return 0.0
	}
	return float32(v)
}

// readDictFileHeader reads the raw header block: a 4-byte big-endian length,
// that many UTF-16LE bytes, and a 4-byte Adler-32 of the blob.
func readDictFileHeader(r io.ReaderAt) (*dictHeader, error) {
	sizeBuf, err := readFileFromPos(r, 0, 4)
	if err != nil {
		return nil, fmt.Errorf("failed to read header length: %w", err)
	}
	headerBytesSize := beBinToU32(sizeBuf)

	headerInfoBytes, err := readFileFromPos(r, 4, int64(headerBytesSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read header info bytes: %w", err)
	}

	checksumBuf, err := readFileFromPos(r, 4+int64(headerBytesSize), 4)
	if err != nil {
		return nil, fmt.Errorf("failed to read header adler32 checksum: %w", err)
	}

	utfHeaderInfo := littleEndianBinUTF16ToUTF8(headerInfoBytes, 0, int(headerBytesSize))
	// Compatibility fix: some generators emit "Library_Data" as the root tag.
	utfHeaderInfo = strings.Replace(utfHeaderInfo, "Library_Data", "Dictionary", 1)
	if utfHeaderInfo == "" {
		return nil, fmt.Errorf("%w: utf-16 conversion produced no text", ErrMalformedHeader)
	}

	return &dictHeader{
		headerBytesSize:          headerBytesSize,
		headerInfoBytes:          headerInfoBytes,
		headerInfo:               utfHeaderInfo,
		adler32Checksum:          beBinToU32(checksumBuf),
		dictionaryHeaderByteSize: 4 + int64(headerBytesSize) + 4,
	}, nil
}

// readDictHeader parses the file header and populates the meta struct.
func (d *Dict) readDictHeader() error {
	log.Infof("Reading dictionary header: %s", d.filePath)
	dictHeader, err := readDictFileHeader(d.file)
	if err != nil {
		return fmt.Errorf("failed to read file header for '%s': %w", d.filePath, err)
	}
	d.header = dictHeader

	// The checksum is computed over the converted UTF-8 text; some
	// generation tools get it wrong, so a mismatch is only logged.
	checksum := adler32.Checksum([]byte(dictHeader.headerInfo))
	if checksum != dictHeader.adler32Checksum {
		log.Warningf("Header checksum mismatch for '%s': expected %d, calculated %d",
			d.filePath, dictHeader.adler32Checksum, checksum)
	}

	headerInfo, err := parseXMLHeader(dictHeader.headerInfo)
	if err != nil {
		return fmt.Errorf("failed to parse XML header for '%s': %w", d.filePath, err)
	}
	log.Debugf("Header info parsed for '%s'. Title: '%s', EngineVersion: '%s', Encoding: '%s'",
		d.filePath, headerInfo.Title, headerInfo.GeneratedByEngineVersion, headerInfo.Encoding)

	meta := &dictMeta{}

	// Encryption flag: "" / "No" plain, "Yes" or leading '1' record
	// encrypted, leading '2' key-info scrambled.
	encrypted := headerInfo.Encrypted
	switch {
	case encrypted == "" || encrypted == "No":
		meta.encryptType = EncryptNoEnc
	case encrypted == "Yes":
		meta.encryptType = EncryptRecordEnc
	default:
		if encrypted[0] == '2' {
			meta.encryptType = EncryptKeyInfoEnc
		} else if encrypted[0] == '1' {
			meta.encryptType = EncryptRecordEnc
		} else {
			meta.encryptType = EncryptNoEnc
		}
	}

	meta.version = parseEngineVersion(headerInfo.GeneratedByEngineVersion)
	log.Debugf("Engine version for '%s': %.1f", d.filePath, meta.version)

	if meta.version >= 2.0 {
		meta.numberWidth = 8
		meta.numberFormat = NumfmtBe8bytesq
	} else {
		meta.numberWidth = 4
		meta.numberFormat = NumfmtBe4bytesi
	}

	switch strings.ToLower(headerInfo.Encoding) {
	case "gbk", "gb2312":
		meta.encoding = EncodingGb18030
	case "big5":
		meta.encoding = EncodingBig5
	case "utf16", "utf-16":
		meta.encoding = EncodingUtf16
	default:
		meta.encoding = EncodingUtf8
	}

	// MDD keys are always UTF-16LE regardless of the declared encoding.
	if d.fileType == DictTypeMdd {
		meta.encoding = EncodingUtf16
	}

	// 4 bytes header length + header blob + 4 bytes adler checksum
	meta.keyBlockMetaStartOffset = dictHeader.dictionaryHeaderByteSize

	meta.description = headerInfo.Description
	meta.title = headerInfo.Title
	meta.creationDate = headerInfo.CreationDate
	meta.generatedByEngineVersion = headerInfo.GeneratedByEngineVersion

	d.meta = meta
	return nil
}
