// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// Record decodes one record in the normalized JSON form and applies the
// same checks as Work: the id is required, authors without an id are
// dropped, and a missing category becomes the sentinel.
func Record(raw []byte) (types.PublicationRecord, error) {
	rec, _, err := record(raw)
	return rec, err
}

func record(raw []byte) (types.PublicationRecord, int, error) {
	var rec types.PublicationRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return types.PublicationRecord{}, 0, malformed(err, "decoding record")
	}
	rec.ID = strings.TrimSpace(rec.ID)
	if rec.ID == "" {
		return types.PublicationRecord{}, 0, errors.Mark(errors.New("record has no id"), ErrMalformedRecord)
	}

	dropped := 0
	authors := make([]types.AuthorRef, 0, len(rec.Authors))
	for _, a := range rec.Authors {
		if strings.TrimSpace(a.ID) == "" {
			dropped++
			continue
		}
		authors = append(authors, a)
	}
	rec.Authors = authors

	if rec.Category.ID == "" && rec.Category.DisplayName == "" {
		rec.Category = types.UnknownCategoryRef()
	} else if rec.Category.DisplayName == "" {
		rec.Category.DisplayName = types.UnknownCategory
	}
	return rec, dropped, nil
}
