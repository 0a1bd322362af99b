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
	"os"
	"path/filepath"
	"strings"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("vibedict")

// defaultMaxRegexScan bounds how many candidates RegexSuggest examines.
const defaultMaxRegexScan = 20000

// Dict is a read-only handle to an MDX/MDD dictionary file. After New
// returns, all parsed tables are immutable and every read uses positioned
// I/O, so a Dict is safe for concurrent queries.
type Dict struct {
	filePath string
	fileType DictType
	file     *os.File

	meta   *dictMeta
	header *dictHeader

	keyBlockMeta *dictKeyBlockMeta
	keyBlockInfo *dictKeyBlockInfo
	keyBlockData *dictKeyBlockData

	recordBlockMeta *dictRecordBlockMeta
	recordBlockInfo *dictRecordBlockInfo

	cache Cache

	// MaxRegexScan overrides the ceiling on candidates examined by
	// RegexSuggest. Zero means the default of 20,000.
	MaxRegexScan int
}

// New opens a dictionary file and builds the full in-memory index. The
// dictionary type is inferred from the file extension (.mdd means a resource
// archive, anything else a text dictionary).
func New(filename string) (*Dict, error) {
	dictType := DictTypeMdx
	if strings.ToLower(filepath.Ext(filename)) == ".mdd" {
		dictType = DictTypeMdd
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file '%s': %w", filename, err)
	}

	d := &Dict{
		filePath: filename,
		fileType: dictType,
		file:     file,
	}
	if err := d.init(); err != nil {
		file.Close()
		return nil, err
	}
	return d, nil
}

// NewFromFile builds a dictionary from an already opened file, taking
// ownership of the handle. The caller states whether the file is a resource
// archive, since no name is available to infer it from.
func NewFromFile(file *os.File, isResource bool) (*Dict, error) {
	dictType := DictTypeMdx
	if isResource {
		dictType = DictTypeMdd
	}

	d := &Dict{
		filePath: file.Name(),
		fileType: dictType,
		file:     file,
	}
	if err := d.init(); err != nil {
		file.Close()
		return nil, err
	}
	return d, nil
}

// init reads and indexes the whole container: header, key-block directory,
// every key block, and the record directory. Record bodies stay on disk
// until queried.
func (d *Dict) init() error {
	if err := d.readDictHeader(); err != nil {
		return err
	}
	if err := d.readKeyBlockMeta(); err != nil {
		return err
	}
	if err := d.readKeyBlockInfo(); err != nil {
		return err
	}
	if err := d.readKeyEntries(); err != nil {
		return err
	}
	if err := d.readRecordBlockMeta(); err != nil {
		return err
	}
	if err := d.readRecordBlockInfo(); err != nil {
		return err
	}
	return nil
}

// Close releases the underlying file handle.
func (d *Dict) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// SetCache attaches a definition cache consulted by Lookup.
func (d *Dict) SetCache(c Cache) {
	d.cache = c
}

// Name returns the dictionary name: the file name with a trailing ".mdx" or
// ".mdd" removed. Other extensions, and upper-case ones, are kept.
func (d *Dict) Name() string {
	_, rawpath := filepath.Split(d.filePath)
	rawpath = strings.TrimSuffix(rawpath, ".mdx")
	rawpath = strings.TrimSuffix(rawpath, ".mdd")
	return rawpath
}

// Title returns the title declared in the header.
func (d *Dict) Title() string {
	return d.meta.title
}

// Description returns the description declared in the header.
func (d *Dict) Description() string {
	return d.meta.description
}

// GeneratedByEngineVersion returns the raw engine version string.
func (d *Dict) GeneratedByEngineVersion() string {
	return d.meta.generatedByEngineVersion
}

// CreationDate returns the creation date declared in the header.
func (d *Dict) CreationDate() string {
	return d.meta.creationDate
}

// Version returns the parsed engine version.
func (d *Dict) Version() string {
	return fmt.Sprintf("%.1f", d.meta.version)
}

// IsMDD reports whether the file is a resource archive.
func (d *Dict) IsMDD() bool {
	return d.fileType == DictTypeMdd
}

// IsUTF16 reports whether keys are UTF-16LE encoded.
func (d *Dict) IsUTF16() bool {
	return d.meta.encoding == EncodingUtf16
}

// KeywordEntries returns the full key list in file order.
func (d *Dict) KeywordEntries() []*KeywordEntry {
	return d.keyBlockData.keyEntries
}

// KeywordEntriesSize returns the number of indexed keys.
func (d *Dict) KeywordEntriesSize() int64 {
	return d.keyBlockData.keyEntriesSize
}

// KeywordEntryToIndex converts a keyword entry to a detailed keyword index.
func (d *Dict) KeywordEntryToIndex(item *KeywordEntry) (*KeywordIndex, error) {
	if item == nil {
		return nil, fmt.Errorf("invalid keyword entry")
	}
	return d.keywordEntryToIndex(item)
}

// LocateByKeywordIndex re-reads the definition slice described by an index.
func (d *Dict) LocateByKeywordIndex(index *KeywordIndex) ([]byte, error) {
	if index == nil {
		return nil, fmt.Errorf("invalid keyword index")
	}
	return d.locateByKeywordIndex(index)
}

// ExtractBodyContent trims a definition to its inner <body>...</body>
// fragment, returning the input unchanged when no body tag is present.
func ExtractBodyContent(html string) string {
	bodyStart := strings.Index(html, "<body")
	if bodyStart < 0 {
		bodyStart = strings.Index(html, "<BODY")
	}
	if bodyStart < 0 {
		return html
	}

	tagEnd := strings.IndexByte(html[bodyStart+1:], '>')
	if tagEnd < 0 {
		return html
	}
	contentStart := bodyStart + 1 + tagEnd + 1

	bodyEnd := strings.LastIndex(html, "</body>")
	if bodyEnd < 0 {
		bodyEnd = strings.LastIndex(html, "</BODY>")
	}
	if bodyEnd < 0 || bodyEnd <= contentStart {
		return html
	}
	return html[contentStart:bodyEnd]
}
