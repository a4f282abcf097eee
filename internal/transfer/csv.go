package transfer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ytget/stockdesk/internal/apperr"
	"github.com/ytget/stockdesk/internal/catalog"
	"github.com/ytget/stockdesk/internal/model"
)

const utf8BOM = "\ufeff"

// ErrHeaderMismatch is the cause of the validation error returned when an
// import file lacks required columns.
var ErrHeaderMismatch = errors.New("header mismatch")

// Dataset is the parsed content of an import file.
type Dataset struct {
	Rows []model.Record
	// SkippedLines are the 1-based file lines dropped before upload.
	SkippedLines []int
}

// Total returns the number of data rows read from the file.
func (d *Dataset) Total() int {
	return len(d.Rows) + len(d.SkippedLines)
}

// WriteCSV writes recs under the descriptor's CSV header. Values are written
// as stored codes so that an exported file can be imported again.
func WriteCSV(w io.Writer, desc *catalog.Descriptor, recs []model.Record) error {
	if len(desc.CSVColumns) == 0 {
		return fmt.Errorf("%s cannot be exported", desc.Name)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(desc.CSVColumns); err != nil {
		return err
	}
	row := make([]string, len(desc.CSVColumns))
	for _, rec := range recs {
		for i, col := range desc.CSVColumns {
			row[i] = rec.String(col)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses an import file for desc. The header must name every import
// field; extra columns are ignored. Rows missing a required field, or holding
// a non-numeric value in a numeric field, are skipped.
func ReadCSV(r io.Reader, desc *catalog.Descriptor) (*Dataset, error) {
	if len(desc.ImportFields) == 0 {
		return nil, fmt.Errorf("%s cannot be imported", desc.Name)
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperr.Validation("the file is empty")
	}
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("cannot read header: %v", err))
	}
	index, err := headerIndex(header, desc.ImportFields)
	if err != nil {
		return nil, err
	}

	required := make(map[string]bool, len(desc.ImportRequired))
	for _, f := range desc.ImportRequired {
		required[f] = true
	}

	ds := &Dataset{}
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				ds.SkippedLines = append(ds.SkippedLines, perr.StartLine)
				continue
			}
			return nil, err
		}

		rec, ok := buildRow(cells, index, desc.ImportFields, required)
		if !ok {
			line, _ := cr.FieldPos(0)
			ds.SkippedLines = append(ds.SkippedLines, line)
			continue
		}
		ds.Rows = append(ds.Rows, rec)
	}
	return ds, nil
}

func headerIndex(header, fields []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		index[strings.TrimSpace(h)] = i
	}

	var missing []string
	for _, f := range fields {
		if _, ok := index[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		err := apperr.Validation("the file header does not match: missing " + strings.Join(missing, ", "))
		err.Cause = ErrHeaderMismatch
		return nil, err
	}
	return index, nil
}

func buildRow(cells []string, index map[string]int, fields []string, required map[string]bool) (model.Record, bool) {
	rec := make(model.Record, len(fields))
	for _, f := range fields {
		v := ""
		if i := index[f]; i < len(cells) {
			v = strings.TrimSpace(cells[i])
		}
		if v == "" {
			if required[f] {
				return nil, false
			}
			continue
		}
		converted, ok := convert(f, v)
		if !ok {
			return nil, false
		}
		rec[f] = converted
	}
	return rec, true
}

// convert turns numeric columns into numbers; everything else stays text.
func convert(field, v string) (any, bool) {
	switch {
	case field == "count" || field == "year" || field == "month" || strings.HasSuffix(field, "_count"):
		n, err := strconv.Atoi(v)
		return n, err == nil
	case field == "price" || strings.HasSuffix(field, "_price"):
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return v, true
}
