package vibedict

import (
	"encoding/json"
	"os"
)

// Accessor is a serializable handle for re-reading definitions without the
// in-memory index, suitable for passing across process boundaries.
type Accessor struct {
	Filepath string `json:"filepath"`
	IsMDD    bool   `json:"is_mdd"`
}

// NewAccessor creates an Accessor from a Dict instance.
func NewAccessor(dict *Dict) *Accessor {
	return &Accessor{
		Filepath: dict.filePath,
		IsMDD:    dict.fileType == DictTypeMdd,
	}
}

// NewAccessorFromJSON deserializes an Accessor.
func NewAccessorFromJSON(data []byte) (*Accessor, error) {
	acc := new(Accessor)
	err := json.Unmarshal(data, acc)
	return acc, err
}

// Serialize converts the Accessor to its JSON representation.
func (acc *Accessor) Serialize() ([]byte, error) {
	return json.Marshal(acc)
}

// RetrieveDefByIndex re-reads the value slice described by a keyword index,
// opening the file for just this read.
func (acc *Accessor) RetrieveDefByIndex(index *KeywordIndex) ([]byte, error) {
	file, err := os.Open(acc.Filepath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	recordBlock, err := fetchAndDecodeRecordBlock(file,
		index.RecordBlock.DataStartOffset,
		index.RecordBlock.CompressSize,
		index.RecordBlock.DeCompressSize)
	if err != nil {
		return nil, err
	}

	start := index.RecordBlock.KeyWordPartStartOffset
	end := index.RecordBlock.KeyWordPartDataEndOffset
	if start < 0 || end < start || end > int64(len(recordBlock)) {
		return nil, ErrOutOfBounds
	}
	return recordBlock[start:end], nil
}
