package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Attachment is one entry in an entity's attachment history. The bytes live
// on disk under the uploads directory; only the name/path pair is stored.
type Attachment struct {
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
}

// AppendAttachment adds a record to the end of a JSON attachment column.
// Existing records are never edited or removed.
func AppendAttachment(column datatypes.JSON, record Attachment) (datatypes.JSON, error) {
	var records []Attachment

	if len(column) > 0 {
		if err := json.Unmarshal(column, &records); err != nil {
			return column, err
		}
	}

	records = append(records, record)

	out, err := json.Marshal(records)

	if err != nil {
		return column, err
	}

	return datatypes.JSON(out), nil
}

// DecodeAttachments returns the records stored in a JSON attachment column.
func DecodeAttachments(column datatypes.JSON) []Attachment {
	var records []Attachment

	if len(column) > 0 {
		if err := json.Unmarshal(column, &records); err != nil {
			return nil
		}
	}

	return records
}

func decodeStringList(column datatypes.JSON) []string {
	var values []string

	if len(column) > 0 {
		if err := json.Unmarshal(column, &values); err != nil {
			return nil
		}
	}

	return values
}
