// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset reads and writes publication datasets: the CSV tabular
// form, JSONL of raw OpenAlex works, and JSONL of normalized records.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/coauthor-graph/internal/normalize"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// Format identifies a dataset encoding.
type Format string

const (
	FormatAuto    Format = "auto"
	FormatCSV     Format = "csv"
	FormatWorks   Format = "works"
	FormatRecords Format = "records"
)

// maxLine bounds one JSONL line; OpenAlex works with long author lists run
// to hundreds of kilobytes.
const maxLine = 32 << 20

// Detect picks a format from the file name: *.csv is tabular,
// *.records.jsonl is normalized records, other *.json / *.jsonl files are
// raw works.
func Detect(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".csv"):
		return FormatCSV, nil
	case strings.HasSuffix(name, ".records.jsonl"):
		return FormatRecords, nil
	case strings.HasSuffix(name, ".jsonl"), strings.HasSuffix(name, ".json"):
		return FormatWorks, nil
	}
	return "", fmt.Errorf("cannot infer dataset format of %s", path)
}

// Load reads and normalizes the dataset at path. Malformed records are
// logged and counted in the summary, never returned as an error.
func Load(path string, format Format, log zerolog.Logger) ([]types.PublicationRecord, normalize.BatchSummary, error) {
	if format == "" || format == FormatAuto {
		f, err := Detect(path)
		if err != nil {
			return nil, normalize.BatchSummary{}, err
		}
		format = f
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, normalize.BatchSummary{}, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	switch format {
	case FormatCSV:
		rows, err := ReadTable(f)
		if err != nil {
			return nil, normalize.BatchSummary{}, fmt.Errorf("reading %s: %w", path, err)
		}
		recs, sum := normalize.Rows(rows, log)
		return recs, sum, nil
	case FormatWorks:
		raws, err := ReadWorks(f)
		if err != nil {
			return nil, normalize.BatchSummary{}, fmt.Errorf("reading %s: %w", path, err)
		}
		recs, sum := normalize.Batch(raws, log)
		return recs, sum, nil
	case FormatRecords:
		recs, sum, err := ReadRecords(f, log)
		if err != nil {
			return nil, normalize.BatchSummary{}, fmt.Errorf("reading %s: %w", path, err)
		}
		return recs, sum, nil
	}
	return nil, normalize.BatchSummary{}, fmt.Errorf("unknown dataset format %q", format)
}

// ReadTable reads a CSV with a header row into header-keyed rows. A
// leading unnamed index column is ignored.
func ReadTable(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parsing CSV header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []map[string]string
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing CSV: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if col == "" || strings.HasPrefix(col, "Unnamed:") {
				continue
			}
			if i < len(fields) {
				row[col] = fields[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadHeaderless reads a CSV without a header row, naming fields by
// columns. Extra fields are ignored; missing ones are left out of the row.
func ReadHeaderless(r io.Reader, columns []string) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows []map[string]string
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing CSV: %w", err)
		}
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(fields) {
				row[col] = strings.TrimSpace(fields[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteTable writes rows as CSV with the given column order.
func WriteTable(w io.Writer, columns []string, rows []map[string]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	fields := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			fields[i] = row[col]
		}
		if err := cw.Write(fields); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRecordsCSV writes records in the tabular form.
func WriteRecordsCSV(w io.Writer, recs []types.PublicationRecord) error {
	rows := make([]map[string]string, 0, len(recs))
	for _, rec := range recs {
		row, err := normalize.ToRow(rec)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return WriteTable(w, normalize.Columns, rows)
}

// ReadWorks reads raw OpenAlex works. It accepts JSONL (one work per line),
// a JSON array of works, a single work, or an API page of the form
// {"results": [...]}. Lines that are not valid JSON are passed through so
// that the normalizer rejects them individually.
func ReadWorks(r io.Reader) ([][]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading works: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(data, &arr); err != nil {
			return nil, fmt.Errorf("decoding work array: %w", err)
		}
		return rawSlice(arr), nil
	}
	if json.Valid(data) {
		return pageOrWork(data), nil
	}

	var out [][]byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if json.Valid(line) {
			out = append(out, pageOrWork(line)...)
			continue
		}
		out = append(out, bytes.Clone(line))
	}
	return out, nil
}

func pageOrWork(data []byte) [][]byte {
	var page struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(data, &page); err == nil && page.Results != nil {
		return rawSlice(page.Results)
	}
	return [][]byte{bytes.Clone(data)}
}

func rawSlice(arr []json.RawMessage) [][]byte {
	out := make([][]byte, len(arr))
	for i, m := range arr {
		out[i] = []byte(m)
	}
	return out
}

// WriteWorks writes raw works as JSONL.
func WriteWorks(w io.Writer, raws [][]byte) error {
	bw := bufio.NewWriter(w)
	for _, raw := range raws {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return fmt.Errorf("compacting work: %w", err)
		}
		buf.WriteByte('\n')
		if _, err := bw.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadRecordLines splits a JSONL record file into its non-empty lines.
// Lines are not decoded; normalize.Records does that per line so that one
// bad line is skipped on its own.
func ReadRecordLines(r io.Reader) ([][]byte, error) {
	var out [][]byte
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for sc.Scan() {
		data := bytes.TrimSpace(sc.Bytes())
		if len(data) == 0 {
			continue
		}
		out = append(out, bytes.Clone(data))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning records: %w", err)
	}
	return out, nil
}

// ReadRecords reads normalized records from JSONL. Malformed lines are
// logged and counted in the summary.
func ReadRecords(r io.Reader, log zerolog.Logger) ([]types.PublicationRecord, normalize.BatchSummary, error) {
	lines, err := ReadRecordLines(r)
	if err != nil {
		return nil, normalize.BatchSummary{}, err
	}
	recs, sum := normalize.Records(lines, log)
	return recs, sum, nil
}

// WriteRecords writes normalized records as JSONL.
func WriteRecords(w io.Writer, recs []types.PublicationRecord) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding record %s: %w", rec.ID, err)
		}
	}
	return bw.Flush()
}

// Create opens path for writing, creating parent directories.
func Create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, nil
}
