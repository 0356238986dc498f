package storage

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	apperrors "github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/errors"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/timeseries"
)

// EncodeRawTable serializes a raw table as CSV with the table's declared
// column order. Bronze keeps source data as close to the wire as possible.
func EncodeRawTable(t *timeseries.RawTable) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	if err := w.Write(t.Columns); err != nil {
		return nil, apperrors.NewDataFormatError("write csv header", err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return nil, apperrors.NewDataFormatError("write csv row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperrors.NewDataFormatError("flush csv", err)
	}
	return buf.Bytes(), nil
}

// DecodeRawTable parses a bronze CSV object back into a raw table.
func DecodeRawTable(data []byte) (*timeseries.RawTable, error) {
	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return nil, apperrors.NewDataFormatError("parse csv", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewDataFormatError("empty csv object", nil)
	}
	table := &timeseries.RawTable{Columns: records[0]}
	for _, record := range records[1:] {
		row := make(map[string]string, len(table.Columns))
		for i, col := range table.Columns {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// seriesRow is the parquet record of one silver observation. Dates travel
// as ISO strings so snapshots stay portable across readers. Metric cells
// are a sparse map: an absent key is a null cell.
type seriesRow struct {
	Date          string             `parquet:"date"`
	Value         float64            `parquet:"value"`
	Indicator     string             `parquet:"indicator"`
	IndicatorName string             `parquet:"indicator_name,optional"`
	Unit          string             `parquet:"unit,optional"`
	Frequency     string             `parquet:"frequency,optional"`
	Source        string             `parquet:"source,optional"`
	ProcessedAt   string             `parquet:"processed_at,optional"`
	Metrics       map[string]float64 `parquet:"metrics"`
}

// EncodeSeriesParquet serializes a refined series as a parquet object.
func EncodeSeriesParquet(s *timeseries.Series) ([]byte, error) {
	rows := make([]seriesRow, len(s.Points))
	processedAt := ""
	if !s.Meta.ProcessedAt.IsZero() {
		processedAt = s.Meta.ProcessedAt.UTC().Format(time.RFC3339)
	}
	for i, p := range s.Points {
		rows[i] = seriesRow{
			Date:          p.Date.Format("2006-01-02"),
			Value:         p.Value,
			Indicator:     s.Meta.Indicator,
			IndicatorName: s.Meta.IndicatorName,
			Unit:          s.Meta.Unit,
			Frequency:     string(s.Meta.Frequency),
			Source:        s.Meta.Source,
			ProcessedAt:   processedAt,
			Metrics:       p.Metrics,
		}
	}
	return EncodeParquet(rows)
}

// DecodeSeriesParquet parses a silver parquet object back into a series,
// restoring the metadata from the row columns.
func DecodeSeriesParquet(data []byte) (*timeseries.Series, error) {
	rows, err := DecodeParquet[seriesRow](data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewDataFormatError("empty parquet object", nil)
	}
	s := &timeseries.Series{
		Meta: timeseries.Metadata{
			Indicator:     rows[0].Indicator,
			IndicatorName: rows[0].IndicatorName,
			Unit:          rows[0].Unit,
			Frequency:     timeseries.Frequency(rows[0].Frequency),
			Source:        rows[0].Source,
		},
	}
	if rows[0].ProcessedAt != "" {
		if at, perr := time.Parse(time.RFC3339, rows[0].ProcessedAt); perr == nil {
			s.Meta.ProcessedAt = at
		}
	}
	for _, row := range rows {
		date, derr := timeseries.ParseDate(row.Date)
		if derr != nil {
			return nil, apperrors.NewDataFormatError("bad date in parquet row", derr)
		}
		metrics := row.Metrics
		if len(metrics) == 0 {
			metrics = nil
		}
		s.Points = append(s.Points, timeseries.Point{Date: date, Value: row.Value, Metrics: metrics})
	}
	s.Sort()
	return s, nil
}

// EncodeSeriesCSV serializes a refined series as CSV with one column per
// metric, for deployments that prefer inspectable silver files. Null metric
// cells are empty strings.
func EncodeSeriesCSV(s *timeseries.Series) ([]byte, error) {
	columns := s.MetricColumns()
	header := append([]string{"date", "value"}, columns...)

	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	if err := w.Write(header); err != nil {
		return nil, apperrors.NewDataFormatError("write csv header", err)
	}
	for _, p := range s.Points {
		record := make([]string, 0, len(header))
		record = append(record, p.Date.Format("2006-01-02"), formatFloat(p.Value))
		for _, col := range columns {
			if v, ok := p.Metric(col); ok {
				record = append(record, formatFloat(v))
			} else {
				record = append(record, "")
			}
		}
		if err := w.Write(record); err != nil {
			return nil, apperrors.NewDataFormatError("write csv row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperrors.NewDataFormatError("flush csv", err)
	}
	return buf.Bytes(), nil
}

// DecodeSeriesCSV parses a silver CSV object back into a series. CSV
// snapshots carry no metadata columns, so only the observations are
// restored; empty metric cells stay null.
func DecodeSeriesCSV(data []byte) (*timeseries.Series, error) {
	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return nil, apperrors.NewDataFormatError("parse csv", err)
	}
	if len(records) < 2 {
		return nil, apperrors.NewDataFormatError("empty csv series object", nil)
	}
	header := records[0]
	if len(header) < 2 || header[0] != "date" || header[1] != "value" {
		return nil, apperrors.NewDataFormatError("unexpected csv series header", nil)
	}

	s := &timeseries.Series{}
	for _, record := range records[1:] {
		date, derr := timeseries.ParseDate(record[0])
		if derr != nil {
			return nil, apperrors.NewDataFormatError("bad date in csv row", derr)
		}
		value, verr := strconv.ParseFloat(record[1], 64)
		if verr != nil {
			return nil, apperrors.NewDataFormatError("bad value in csv row", verr)
		}
		p := timeseries.Point{Date: date, Value: value}
		for i := 2; i < len(record) && i < len(header); i++ {
			if record[i] == "" {
				continue
			}
			v, merr := strconv.ParseFloat(record[i], 64)
			if merr != nil {
				return nil, apperrors.NewDataFormatError("bad metric in csv row", merr)
			}
			p.SetMetric(header[i], v)
		}
		s.Points = append(s.Points, p)
	}
	s.Sort()
	return s, nil
}

// DecodeSeries picks the series decoder from the object key extension, so
// readers handle whichever silver format the refinement batch was
// configured to write.
func DecodeSeries(key string, data []byte) (*timeseries.Series, error) {
	if strings.HasSuffix(key, ".csv") {
		return DecodeSeriesCSV(data)
	}
	return DecodeSeriesParquet(data)
}

// EncodeParquet serializes rows of any record type as a parquet object.
func EncodeParquet[T any](rows []T) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := parquet.Write(buf, rows); err != nil {
		return nil, apperrors.NewStorageError("encode parquet", err)
	}
	return buf.Bytes(), nil
}

// DecodeParquet parses a parquet object into rows of the record type.
func DecodeParquet[T any](data []byte) ([]T, error) {
	rows, err := parquet.Read[T](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperrors.NewDataFormatError("decode parquet", err)
	}
	return rows, nil
}

// ExtFor maps a configured layer format to its object key extension.
func ExtFor(format string) string {
	if format == "" {
		return "parquet"
	}
	return format
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
