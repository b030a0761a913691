package data

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	boterrors "github.com/ducminhle1904/llm-trading-bot/internal/errors"
	"github.com/ducminhle1904/llm-trading-bot/pkg/types"
)

// ColumnMapping defines the column positions and timestamp layout of a CSV
// export. Exchange exports differ mostly in the timestamp encoding.
type ColumnMapping struct {
	TimestampCol int
	OpenCol      int
	HighCol      int
	LowCol       int
	CloseCol     int
	VolumeCol    int
	MinColumns   int
	// DateFormat is a time layout. Empty means epoch seconds or
	// milliseconds, detected by magnitude.
	DateFormat string
}

// DefaultCSVFormat matches exchange kline exports: epoch timestamp followed
// by open, high, low, close, volume.
var DefaultCSVFormat = ColumnMapping{
	TimestampCol: 0,
	OpenCol:      1,
	HighCol:      2,
	LowCol:       3,
	CloseCol:     4,
	VolumeCol:    5,
	MinColumns:   6,
}

// CSVProvider loads candles from CSV files, optionally gzip-compressed.
type CSVProvider struct {
	format ColumnMapping
}

func NewCSVProvider() *CSVProvider {
	return &CSVProvider{format: DefaultCSVFormat}
}

func NewCSVProviderWithFormat(format ColumnMapping) *CSVProvider {
	return &CSVProvider{format: format}
}

func (p *CSVProvider) Name() string {
	return "csv"
}

// Load reads the file row by row. Rows that fail to parse or fail the OHLC
// sanity checks are skipped with a warning rather than aborting the load.
func (p *CSVProvider) Load(source string) ([]types.Candle, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, boterrors.WrapError(err, boterrors.ErrorCategoryData, "data", "load_csv")
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(source, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, boterrors.WrapError(err, boterrors.ErrorCategoryData, "data", "load_csv")
		}
		defer gz.Close()
		reader = gz
	}

	candles, err := p.parse(csv.NewReader(reader))
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, boterrors.NewDataError("data", "load_csv",
			fmt.Sprintf("no usable rows in %s", source))
	}
	return SortByTime(candles), nil
}

func (p *CSVProvider) parse(reader *csv.Reader) ([]types.Candle, error) {
	reader.FieldsPerRecord = -1

	var candles []types.Candle
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, boterrors.WrapError(err, boterrors.ErrorCategoryData, "data", "parse_csv")
		}
		line++

		if len(record) < p.format.MinColumns {
			log.Printf("⚠️ line %d: expected %d columns, got %d, skipping", line, p.format.MinColumns, len(record))
			continue
		}
		// A header row fails timestamp parsing and is skipped like any
		// other malformed row, silently on line 1.
		timestamp, err := p.parseTimestamp(record[p.format.TimestampCol])
		if err != nil {
			if line > 1 {
				log.Printf("⚠️ line %d: bad timestamp %q, skipping", line, record[p.format.TimestampCol])
			}
			continue
		}

		open, err1 := strconv.ParseFloat(record[p.format.OpenCol], 64)
		high, err2 := strconv.ParseFloat(record[p.format.HighCol], 64)
		low, err3 := strconv.ParseFloat(record[p.format.LowCol], 64)
		closePrice, err4 := strconv.ParseFloat(record[p.format.CloseCol], 64)
		volume, err5 := strconv.ParseFloat(record[p.format.VolumeCol], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			log.Printf("⚠️ line %d: unparseable price fields, skipping", line)
			continue
		}

		if open <= 0 || high <= 0 || low <= 0 || closePrice <= 0 {
			log.Printf("⚠️ line %d: non-positive price, skipping", line)
			continue
		}
		if high < low || high < open || high < closePrice || low > open || low > closePrice {
			log.Printf("⚠️ line %d: inconsistent OHLC range, skipping", line)
			continue
		}

		candles = append(candles, types.Candle{
			Time:   timestamp,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}
	return candles, nil
}

func (p *CSVProvider) parseTimestamp(raw string) (time.Time, error) {
	if p.format.DateFormat != "" {
		return time.Parse(p.format.DateFormat, raw)
	}
	epoch, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	// Millisecond epochs are 13 digits for any plausible market data.
	if epoch > 1e12 {
		return time.UnixMilli(epoch).UTC(), nil
	}
	return time.Unix(epoch, 0).UTC(), nil
}

// ValidateSequence checks the series is strictly chronological.
func ValidateSequence(candles []types.Candle) error {
	for i := 1; i < len(candles); i++ {
		if !candles[i].Time.After(candles[i-1].Time) {
			return boterrors.NewDataError("data", "validate_sequence",
				fmt.Sprintf("timestamp at index %d (%s) not after its predecessor", i, candles[i].Time.Format(time.RFC3339)))
		}
	}
	return nil
}
