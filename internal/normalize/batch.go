// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"github.com/rs/zerolog"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// BatchSummary reports the outcome of a batch normalization.
type BatchSummary struct {
	Accepted       int
	Skipped        int
	AuthorsDropped int

	// Reasons counts skipped records by Reason.
	Reasons map[string]int
}

func (s *BatchSummary) skip(err error) {
	s.Skipped++
	if s.Reasons == nil {
		s.Reasons = make(map[string]int)
	}
	s.Reasons[Reason(err)]++
}

// Batch normalizes raw OpenAlex works. Rejected records are logged and
// skipped; they never abort the batch.
func Batch(raws [][]byte, log zerolog.Logger) ([]types.PublicationRecord, BatchSummary) {
	var sum BatchSummary
	out := make([]types.PublicationRecord, 0, len(raws))
	for i, raw := range raws {
		rec, dropped, err := work(raw)
		if err != nil {
			sum.skip(err)
			log.Warn().Int("index", i).Str("reason", Reason(err)).Err(err).Msg("skipping record")
			continue
		}
		sum.note(log, rec.ID, dropped)
		out = append(out, rec)
	}
	sum.Accepted = len(out)
	return out, sum
}

// Records normalizes records in the JSON record form, one per entry, with
// the same isolation as Batch.
func Records(raws [][]byte, log zerolog.Logger) ([]types.PublicationRecord, BatchSummary) {
	var sum BatchSummary
	out := make([]types.PublicationRecord, 0, len(raws))
	for i, raw := range raws {
		rec, dropped, err := record(raw)
		if err != nil {
			sum.skip(err)
			log.Warn().Int("index", i).Str("reason", Reason(err)).Err(err).Msg("skipping record")
			continue
		}
		sum.note(log, rec.ID, dropped)
		out = append(out, rec)
	}
	sum.Accepted = len(out)
	return out, sum
}

// Rows normalizes tabular records with the same isolation as Batch.
func Rows(rows []map[string]string, log zerolog.Logger) ([]types.PublicationRecord, BatchSummary) {
	var sum BatchSummary
	out := make([]types.PublicationRecord, 0, len(rows))
	for i, row := range rows {
		rec, dropped, err := parseRow(row)
		if err != nil {
			sum.skip(err)
			log.Warn().Int("index", i).Str("record_id", row["id"]).Str("reason", Reason(err)).Err(err).Msg("skipping record")
			continue
		}
		sum.note(log, rec.ID, dropped)
		out = append(out, rec)
	}
	sum.Accepted = len(out)
	return out, sum
}

func (s *BatchSummary) note(log zerolog.Logger, id string, dropped int) {
	if dropped == 0 {
		return
	}
	s.AuthorsDropped += dropped
	log.Debug().Str("record_id", id).Int("authors", dropped).Err(ErrMissingIdentifier).Msg("dropped authors without id")
}
