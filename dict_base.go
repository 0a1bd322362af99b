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
	"sort"
)

// readNumber decodes one length field at the width declared by the header.
func (d *Dict) readNumber(b []byte) int64 {
	if d.meta.numberWidth == 8 {
		return int64(beBinToU64(b))
	}
	return int64(beBinToU32(b))
}

// readKeyBlockMeta reads the key-block directory header. Record-encrypted
// files are rejected here, before any payload is touched.
func (d *Dict) readKeyBlockMeta() error {
	log.Infof("Reading key block metadata: %s", d.filePath)

	if d.meta.encryptType == EncryptRecordEnc {
		return fmt.Errorf("%w: file '%s' declares record encryption", ErrUnsupportedEncryption, d.filePath)
	}

	keyBlockMeta := &dictKeyBlockMeta{}

	// v>=2.0 carries five 8-byte fields plus a 4-byte checksum; earlier
	// versions carry four 4-byte fields.
	keyBlockMetaBytesNum := 4 * 4
	if d.meta.version >= 2.0 {
		keyBlockMetaBytesNum = 8 * 5
	}

	buffer, err := readFileFromPos(d.file, d.meta.keyBlockMetaStartOffset, int64(keyBlockMetaBytesNum))
	if err != nil {
		return fmt.Errorf("failed to read key block metadata for '%s': %w", d.filePath, err)
	}

	nw := d.meta.numberWidth

	// 1. [0:8]([0:4]) - number of key blocks
	field, err := binSlice(buffer, 0, nw)
	if err != nil {
		return err
	}
	keyBlockMeta.keyBlockNum = d.readNumber(field)

	// 2. [8:16]([4:8]) - number of entries
	field, err = binSlice(buffer, nw, nw)
	if err != nil {
		return err
	}
	keyBlockMeta.entriesNum = d.readNumber(field)

	keyBlockInfoSizeStartOffset := nw * 2

	// 3. [16:24] - decompressed size of key block info (v>=2.0 only)
	if d.meta.version >= 2.0 {
		field, err = binSlice(buffer, nw*2, nw)
		if err != nil {
			return err
		}
		keyBlockMeta.keyBlockInfoDecompressSize = d.readNumber(field)
		keyBlockInfoSizeStartOffset = nw * 3
	}

	// 4. [24:32]([8:12]) - size of key block info as stored
	field, err = binSlice(buffer, keyBlockInfoSizeStartOffset, nw)
	if err != nil {
		return err
	}
	keyBlockMeta.keyBlockInfoCompressedSize = d.readNumber(field)

	// 5. [32:40]([12:16]) - total size of the key blocks
	field, err = binSlice(buffer, keyBlockInfoSizeStartOffset+nw, nw)
	if err != nil {
		return err
	}
	keyBlockMeta.keyBlockDataTotalSize = d.readNumber(field)

	// 6. [40:44] - 4-byte checksum of the meta section, not verified.
	if d.meta.version >= 2.0 {
		keyBlockMeta.keyBlockInfoStartOffset = d.meta.keyBlockMetaStartOffset + 40 + 4
	} else {
		keyBlockMeta.keyBlockInfoStartOffset = d.meta.keyBlockMetaStartOffset + 16
	}

	d.keyBlockMeta = keyBlockMeta
	return nil
}

func (d *Dict) readKeyBlockInfo() error {
	log.Debugf("Reading key block info from offset %d, size %d for '%s'",
		d.keyBlockMeta.keyBlockInfoStartOffset, d.keyBlockMeta.keyBlockInfoCompressedSize, d.filePath)

	buffer, err := readFileFromPos(d.file,
		d.keyBlockMeta.keyBlockInfoStartOffset,
		d.keyBlockMeta.keyBlockInfoCompressedSize)
	if err != nil {
		return fmt.Errorf("failed to read key block info data for '%s': %w", d.filePath, err)
	}

	if err := d.decodeKeyBlockInfo(buffer); err != nil {
		return fmt.Errorf("failed to decode key block info for '%s': %w", d.filePath, err)
	}
	return nil
}

func (d *Dict) decodeKeyBlockInfo(data []byte) error {
	var decompressedKeyInfoBuffer []byte

	if d.meta.version >= 2.0 {
		if len(data) < 8 {
			return fmt.Errorf("%w: key block info too short (%d bytes)", ErrOutOfBounds, len(data))
		}

		if d.meta.encryptType == EncryptKeyInfoEnc {
			log.Debugf("Key block info for '%s' is scrambled, descrambling %d bytes",
				d.filePath, d.keyBlockMeta.keyBlockInfoCompressedSize)
			data = mdxDecrypt(data, d.keyBlockMeta.keyBlockInfoCompressedSize)
		}

		if !(data[0] == 2 && data[1] == 0 && data[2] == 0 && data[3] == 0) {
			return fmt.Errorf("%w: key block info tag %x, want 02000000", ErrUnsupportedCompression, data[0:4])
		}

		expectedChecksum := beBinToU32(data[4:8])
		decompressed, err := zlibDecompress(data, 8, int64(len(data))-8)
		if err != nil {
			return fmt.Errorf("zlib decompression of key block info failed: %w", err)
		}

		if int64(len(decompressed)) != d.keyBlockMeta.keyBlockInfoDecompressSize {
			return fmt.Errorf("%w: key block info expected %d, got %d",
				ErrSizeMismatch, d.keyBlockMeta.keyBlockInfoDecompressSize, len(decompressed))
		}
		if actual := adler32.Checksum(decompressed); actual != expectedChecksum {
			return fmt.Errorf("%w: key block info expected %d, got %d",
				ErrChecksumMismatch, expectedChecksum, actual)
		}
		decompressedKeyInfoBuffer = decompressed
	} else {
		// Pre-2.0 files store the descriptor table as-is.
		decompressedKeyInfoBuffer = data
	}

	// Descriptor terminators: one text terminator character from v2.0 on,
	// none before; byte width of sizes and terminators doubles for UTF-16.
	byteWidth := 1
	textTerm := 0
	if d.meta.version >= 2.0 {
		byteWidth = 2
		textTerm = 1
	}
	utf16Keys := d.meta.encoding == EncodingUtf16 || d.fileType == DictTypeMdd

	dataOffset := 0
	var counter, numEntriesCounter int64
	var compressSizeAccumulator, decompressSizeAccumulator int64

	keyBlockInfo := &dictKeyBlockInfo{
		keyBlockInfoList: make([]*dictKeyBlockInfoItem, 0, d.keyBlockMeta.keyBlockNum),
	}

	nw := d.meta.numberWidth
	for counter < d.keyBlockMeta.keyBlockNum {
		field, err := binSlice(decompressedKeyInfoBuffer, dataOffset, nw)
		if err != nil {
			return err
		}
		numEntriesCounter += d.readNumber(field)
		dataOffset += nw

		readKey := func() (string, int, error) {
			sizeField, err := binSlice(decompressedKeyInfoBuffer, dataOffset, byteWidth)
			if err != nil {
				return "", 0, err
			}
			var keySize int
			if byteWidth == 2 {
				keySize = int(beBinToU16(sizeField))
			} else {
				keySize = int(beBinToU8(sizeField))
			}
			dataOffset += byteWidth

			stepGap := keySize + textTerm
			termSize := textTerm
			if utf16Keys {
				stepGap *= 2
				termSize *= 2
			}

			raw, err := binSlice(decompressedKeyInfoBuffer, dataOffset, stepGap-termSize)
			if err != nil {
				return "", 0, err
			}
			key, err := decodeWithEncoding(raw, d.meta.encoding)
			if err != nil {
				key = string(raw)
			}
			dataOffset += stepGap
			return key, keySize, nil
		}

		firstKey, firstKeySize, err := readKey()
		if err != nil {
			return err
		}
		lastKey, lastKeySize, err := readKey()
		if err != nil {
			return err
		}

		field, err = binSlice(decompressedKeyInfoBuffer, dataOffset, nw)
		if err != nil {
			return err
		}
		keyBlockCompressSize := d.readNumber(field)
		dataOffset += nw

		field, err = binSlice(decompressedKeyInfoBuffer, dataOffset, nw)
		if err != nil {
			return err
		}
		keyBlockDecompressSize := d.readNumber(field)
		dataOffset += nw

		keyBlockInfo.keyBlockInfoList = append(keyBlockInfo.keyBlockInfoList, &dictKeyBlockInfoItem{
			firstKey:                      firstKey,
			firstKeySize:                  firstKeySize,
			lastKey:                       lastKey,
			lastKeySize:                   lastKeySize,
			keyBlockInfoIndex:             int(counter),
			keyBlockCompressSize:          keyBlockCompressSize,
			keyBlockCompAccumulator:       compressSizeAccumulator,
			keyBlockDeCompressSize:        keyBlockDecompressSize,
			keyBlockDeCompressAccumulator: decompressSizeAccumulator,
		})

		compressSizeAccumulator += keyBlockCompressSize
		decompressSizeAccumulator += keyBlockDecompressSize
		counter++
	}

	if int64(len(keyBlockInfo.keyBlockInfoList)) != d.keyBlockMeta.keyBlockNum {
		return fmt.Errorf("decoded %d key block descriptors, expected %d",
			len(keyBlockInfo.keyBlockInfoList), d.keyBlockMeta.keyBlockNum)
	}
	if compressSizeAccumulator != d.keyBlockMeta.keyBlockDataTotalSize {
		return fmt.Errorf("%w: key block data total %d, descriptors sum to %d",
			ErrSizeMismatch, d.keyBlockMeta.keyBlockDataTotalSize, compressSizeAccumulator)
	}
	if numEntriesCounter != d.keyBlockMeta.entriesNum {
		// Seen in malformed but otherwise readable dictionaries.
		log.Warningf("Key entry count mismatch for '%s': %d found vs %d declared",
			d.filePath, numEntriesCounter, d.keyBlockMeta.entriesNum)
	}

	keyBlockInfo.keyBlockEntriesStartOffset =
		d.keyBlockMeta.keyBlockInfoStartOffset + d.keyBlockMeta.keyBlockInfoCompressedSize
	d.keyBlockInfo = keyBlockInfo
	return nil
}

// readKeyEntries eagerly decodes every key block into the global entry list.
func (d *Dict) readKeyEntries() error {
	log.Debugf("Reading key entries for '%s' from offset %d, total size %d",
		d.filePath, d.keyBlockInfo.keyBlockEntriesStartOffset, d.keyBlockMeta.keyBlockDataTotalSize)

	buffer, err := readFileFromPos(d.file,
		d.keyBlockInfo.keyBlockEntriesStartOffset,
		d.keyBlockMeta.keyBlockDataTotalSize)
	if err != nil {
		return fmt.Errorf("failed to read key entries data for '%s': %w", d.filePath, err)
	}

	if err := d.decodeKeyEntries(buffer); err != nil {
		return fmt.Errorf("failed to decode key entries for '%s': %w", d.filePath, err)
	}
	log.Debugf("Key entries decoded for '%s'. Total entries: %d", d.filePath, d.keyBlockData.keyEntriesSize)
	return nil
}

func (d *Dict) decodeKeyEntries(keyBlockDataCompressBuffer []byte) error {
	var start, end int64

	keyBlockData := &dictKeyBlockData{
		keyEntries: make([]*KeywordEntry, 0, d.keyBlockMeta.entriesNum),
	}

	for idx, infoItem := range d.keyBlockInfo.keyBlockInfoList {
		end = start + infoItem.keyBlockCompressSize
		if start != infoItem.keyBlockCompAccumulator {
			return fmt.Errorf("[%d] key block start offset %d does not match accumulator %d",
				idx, start, infoItem.keyBlockCompAccumulator)
		}
		if end > int64(len(keyBlockDataCompressBuffer)) {
			return fmt.Errorf("%w: key block %d spans [%d:%d] of %d bytes",
				ErrOutOfBounds, idx, start, end, len(keyBlockDataCompressBuffer))
		}

		keyBlock, err := decodeCompressedBlock(
			keyBlockDataCompressBuffer[start:end], infoItem.keyBlockDeCompressSize)
		if err != nil {
			return fmt.Errorf("key block %d: %w", idx, err)
		}

		splitKeys, err := d.splitKeyBlock(keyBlock)
		if err != nil {
			return fmt.Errorf("key block %d: %w", idx, err)
		}

		keyBlockData.keyEntries = append(keyBlockData.keyEntries, splitKeys...)
		keyBlockData.keyEntriesSize += int64(len(splitKeys))
		start = end
	}

	if keyBlockData.keyEntriesSize != d.keyBlockMeta.entriesNum {
		// Warning only: the per-block walk is authoritative.
		log.Warningf("Decoded key entry count %d differs from declared %d for '%s'",
			keyBlockData.keyEntriesSize, d.keyBlockMeta.entriesNum, d.filePath)
	}
	keyBlockData.recordBlockMetaStartOffset =
		d.keyBlockInfo.keyBlockEntriesStartOffset + d.keyBlockMeta.keyBlockDataTotalSize

	d.keyBlockData = keyBlockData
	return nil
}

// decodeCompressedBlock peels the 4-byte compression tag and 4-byte Adler-32
// off a key or record block, inflates the body, and verifies both the
// declared size and the checksum. Stored (0) and LZO (1) blocks are rejected.
func decodeCompressedBlock(block []byte, decompressedSize int64) ([]byte, error) {
	if len(block) < 8 {
		return nil, fmt.Errorf("%w: block of %d bytes has no header", ErrOutOfBounds, len(block))
	}

	compType := block[0]
	expectedChecksum := beBinToU32(block[4:8])

	switch compType {
	case 0:
		return nil, fmt.Errorf("%w: stored (tag 0) blocks", ErrUnsupportedCompression)
	case 1:
		return nil, fmt.Errorf("%w: LZO (tag 1) blocks", ErrUnsupportedCompression)
	case 2:
		out, err := zlibDecompress(block, 8, int64(len(block))-8)
		if err != nil {
			return nil, err
		}
		if int64(len(out)) != decompressedSize {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrSizeMismatch, decompressedSize, len(out))
		}
		if actual := adler32.Checksum(out); actual != expectedChecksum {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrChecksumMismatch, expectedChecksum, actual)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown tag %d", ErrUnsupportedCompression, compType)
	}
}

// splitKeyBlock walks a decompressed key block, emitting one entry per
// (record_start, key_text) pair. Key text is terminated by one NUL character
// at the key's character width.
func (d *Dict) splitKeyBlock(keyBlock []byte) ([]*KeywordEntry, error) {
	width := 1
	if d.meta.encoding == EncodingUtf16 || d.fileType == DictTypeMdd {
		width = 2
	}
	nw := d.meta.numberWidth

	var keyList []*KeywordEntry
	keyStartIndex := 0

	for keyStartIndex < len(keyBlock) {
		field, err := binSlice(keyBlock, keyStartIndex, nw)
		if err != nil {
			return nil, err
		}
		recordStartOffset := d.readNumber(field)

		keyEndIndex := len(keyBlock)
		for i := keyStartIndex + nw; i+width <= len(keyBlock); i += width {
			if (width == 1 && keyBlock[i] == 0) ||
				(width == 2 && keyBlock[i] == 0 && keyBlock[i+1] == 0) {
				keyEndIndex = i
				break
			}
		}

		keyTextBytes := keyBlock[keyStartIndex+nw : keyEndIndex]
		keyText, err := decodeWithEncoding(keyTextBytes, d.meta.encoding)
		if err != nil {
			log.Errorf("Key text decode failed at offset %d in '%s': %v", keyStartIndex+nw, d.filePath, err)
			keyText = string(keyTextBytes)
		}

		keyList = append(keyList, &KeywordEntry{
			RecordStartOffset: recordStartOffset,
			KeyWord:           keyText,
		})
		keyStartIndex = keyEndIndex + width
	}

	return keyList, nil
}

// readRecordBlockMeta reads the record directory header: block count, entry
// count, directory size, and total record data size.
func (d *Dict) readRecordBlockMeta() error {
	recordBlockMetaBufferLen := int64(16)
	if d.meta.version >= 2.0 {
		recordBlockMetaBufferLen = 32
	}

	recordBlockMetaStartOffset := d.keyBlockData.recordBlockMetaStartOffset
	log.Debugf("Reading record block metadata for '%s' from offset %d, length %d",
		d.filePath, recordBlockMetaStartOffset, recordBlockMetaBufferLen)

	buffer, err := readFileFromPos(d.file, recordBlockMetaStartOffset, recordBlockMetaBufferLen)
	if err != nil {
		return fmt.Errorf("failed to read record block metadata for '%s': %w", d.filePath, err)
	}

	recordBlockMeta := &dictRecordBlockMeta{
		keyRecordMetaStartOffset: recordBlockMetaStartOffset,
		keyRecordMetaEndOffset:   recordBlockMetaStartOffset + recordBlockMetaBufferLen,
	}

	nw := d.meta.numberWidth
	for i, dst := range []*int64{
		&recordBlockMeta.recordBlockNum,
		&recordBlockMeta.entriesNum,
		&recordBlockMeta.recordBlockInfoCompSize,
		&recordBlockMeta.recordBlockCompSize,
	} {
		field, err := binSlice(buffer, i*nw, nw)
		if err != nil {
			return err
		}
		*dst = d.readNumber(field)
	}

	if recordBlockMeta.entriesNum != d.keyBlockMeta.entriesNum {
		return fmt.Errorf("record block entries number %d does not match key block entries number %d for '%s'",
			recordBlockMeta.entriesNum, d.keyBlockMeta.entriesNum, d.filePath)
	}

	d.recordBlockMeta = recordBlockMeta
	return nil
}

// readRecordBlockInfo reads the per-block (compressed, decompressed) size
// pairs and accumulates the prefix sums used for offset translation.
func (d *Dict) readRecordBlockInfo() error {
	recordBlockInfoStartOffset := d.recordBlockMeta.keyRecordMetaEndOffset
	recordBlockInfoLen := d.recordBlockMeta.recordBlockInfoCompSize

	buffer, err := readFileFromPos(d.file, recordBlockInfoStartOffset, recordBlockInfoLen)
	if err != nil {
		return fmt.Errorf("failed to read record block info data for '%s': %w", d.filePath, err)
	}

	var recordBlockInfoList []*RecordBlockInfoListItem
	var offset int
	var compAccu, decompAccu int64
	nw := d.meta.numberWidth

	for i := int64(0); i < d.recordBlockMeta.recordBlockNum; i++ {
		field, err := binSlice(buffer, offset, nw)
		if err != nil {
			return err
		}
		compSize := d.readNumber(field)
		offset += nw

		field, err = binSlice(buffer, offset, nw)
		if err != nil {
			return err
		}
		decompSize := d.readNumber(field)
		offset += nw

		recordBlockInfoList = append(recordBlockInfoList, &RecordBlockInfoListItem{
			compressSize:                compSize,
			deCompressSize:              decompSize,
			compressAccumulatorOffset:   compAccu,
			deCompressAccumulatorOffset: decompAccu,
		})
		compAccu += compSize
		decompAccu += decompSize
	}

	if int64(offset) != d.recordBlockMeta.recordBlockInfoCompSize {
		return fmt.Errorf("%w: record directory decoded %d bytes, declared %d",
			ErrSizeMismatch, offset, d.recordBlockMeta.recordBlockInfoCompSize)
	}
	if compAccu != d.recordBlockMeta.recordBlockCompSize {
		return fmt.Errorf("%w: record blocks sum to %d, declared %d",
			ErrSizeMismatch, compAccu, d.recordBlockMeta.recordBlockCompSize)
	}

	d.recordBlockInfo = &dictRecordBlockInfo{
		recordInfoList:             recordBlockInfoList,
		recordBlockInfoStartOffset: recordBlockInfoStartOffset,
		recordBlockInfoEndOffset:   recordBlockInfoStartOffset + recordBlockInfoLen,
		recordBlockDataStartOffset: recordBlockInfoStartOffset + recordBlockInfoLen,
	}
	return nil
}

// reduceRecordBlockOffset locates the record block whose decompressed span
// contains recordStart. Returns -1 when no block contains it.
func (d *Dict) reduceRecordBlockOffset(recordStart int64) int {
	list := d.recordBlockInfo.recordInfoList
	i := sort.Search(len(list), func(i int) bool {
		return list[i].deCompressAccumulatorOffset > recordStart
	})
	i--
	if i < 0 || recordStart >= list[i].deCompressAccumulatorOffset+list[i].deCompressSize {
		return -1
	}
	return i
}

// fetchAndDecodeRecordBlock reads and inflates one record block from any
// positioned reader.
func fetchAndDecodeRecordBlock(r io.ReaderAt, fileOffset, compressedSize, decompressedSize int64) ([]byte, error) {
	buf, err := readFileFromPos(r, fileOffset, compressedSize)
	if err != nil {
		return nil, fmt.Errorf("error reading record block at offset %d, size %d: %w", fileOffset, compressedSize, err)
	}
	out, err := decodeCompressedBlock(buf, decompressedSize)
	if err != nil {
		return nil, fmt.Errorf("record block at offset %d: %w", fileOffset, err)
	}
	return out, nil
}

// decodeRecordBlockByID inflates record block rid and extracts every
// (headword, value) pair whose record interval lives inside it. Value
// intervals run from each key's record_start to the next key's; the final
// key takes the rest of the block's decompressed body.
func (d *Dict) decodeRecordBlockByID(rid int) ([]recordPair, error) {
	list := d.recordBlockInfo.recordInfoList
	if rid < 0 || rid >= len(list) {
		return nil, fmt.Errorf("%w: record block %d of %d", ErrOutOfBounds, rid, len(list))
	}
	info := list[rid]

	recordBlock, err := fetchAndDecodeRecordBlock(d.file,
		d.recordBlockInfo.recordBlockDataStartOffset+info.compressAccumulatorOffset,
		info.compressSize,
		info.deCompressSize)
	if err != nil {
		return nil, err
	}

	entries := d.keyBlockData.keyEntries
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].RecordStartOffset >= info.deCompressAccumulatorOffset
	})

	var pairs []recordPair
	for ; i < len(entries); i++ {
		entry := entries[i]
		start := entry.RecordStartOffset - info.deCompressAccumulatorOffset
		if start >= info.deCompressSize {
			break
		}

		length := info.deCompressSize - start
		if i+1 < len(entries) {
			if next := entries[i+1].RecordStartOffset - entry.RecordStartOffset; next < length {
				length = next
			}
		}

		pairs = append(pairs, recordPair{
			keyWord: entry.KeyWord,
			data:    recordBlock[start : start+length],
		})
	}

	return pairs, nil
}

// keywordEntryToIndex resolves an entry into the detailed index describing
// its record block slice.
func (d *Dict) keywordEntryToIndex(item *KeywordEntry) (*KeywordIndex, error) {
	rid := d.reduceRecordBlockOffset(item.RecordStartOffset)
	if rid < 0 {
		return nil, fmt.Errorf("record block info not found for record start %d in '%s'",
			item.RecordStartOffset, d.filePath)
	}
	recordBlockInfo := d.recordBlockInfo.recordInfoList[rid]

	recordBlockFileOffset := recordBlockInfo.compressAccumulatorOffset + d.recordBlockInfo.recordBlockDataStartOffset
	start := item.RecordStartOffset - recordBlockInfo.deCompressAccumulatorOffset

	// Next entry bounds the value; the block end bounds the last entry.
	end := recordBlockInfo.deCompressSize
	entries := d.keyBlockData.keyEntries
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].RecordStartOffset > item.RecordStartOffset
	})
	if i < len(entries) {
		next := entries[i].RecordStartOffset - recordBlockInfo.deCompressAccumulatorOffset
		if next < end {
			end = next
		}
	}

	if start < 0 || start > recordBlockInfo.deCompressSize || end < start {
		return nil, fmt.Errorf("%w: keyword slice [%d:%d] of block size %d",
			ErrOutOfBounds, start, end, recordBlockInfo.deCompressSize)
	}

	return &KeywordIndex{
		KeywordEntry: *item,
		RecordBlock: KeywordIndexRecordBlock{
			DataStartOffset:          recordBlockFileOffset,
			CompressSize:             recordBlockInfo.compressSize,
			DeCompressSize:           recordBlockInfo.deCompressSize,
			KeyWordPartStartOffset:   start,
			KeyWordPartDataEndOffset: end,
		},
	}, nil
}

// locateByKeywordIndex re-reads the value slice described by an index.
func (d *Dict) locateByKeywordIndex(index *KeywordIndex) ([]byte, error) {
	recordBlock, err := fetchAndDecodeRecordBlock(d.file,
		index.RecordBlock.DataStartOffset,
		index.RecordBlock.CompressSize,
		index.RecordBlock.DeCompressSize)
	if err != nil {
		return nil, err
	}

	start := index.RecordBlock.KeyWordPartStartOffset
	end := index.RecordBlock.KeyWordPartDataEndOffset
	if start < 0 || end < start || end > int64(len(recordBlock)) {
		return nil, fmt.Errorf("%w: keyword slice [%d:%d] of %d bytes",
			ErrOutOfBounds, start, end, len(recordBlock))
	}
	return recordBlock[start:end], nil
}
