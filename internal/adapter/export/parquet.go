package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/couchcryptid/outage-timeline-service/internal/domain"
)

const parquetParallelism = 4

// parquetRow is one (hour, category) cell of the long table.
type parquetRow struct {
	Hour           int64  `parquet:"name=hour,type=INT64,convertedtype=TIMESTAMP_MILLIS"`
	Category       string `parquet:"name=category,type=BYTE_ARRAY,convertedtype=UTF8"`
	StackRank      int32  `parquet:"name=stack_rank,type=INT32"`
	DownCapacityKW int64  `parquet:"name=down_capacity_kw,type=INT64"`
}

// CompressionCodec maps SNAPPY, GZIP or NONE (case-insensitive, empty meaning
// NONE) onto the Parquet codec.
func CompressionCodec(name string) (parquet.CompressionCodec, error) {
	switch strings.ToUpper(name) {
	case "SNAPPY":
		return parquet.CompressionCodec_SNAPPY, nil
	case "GZIP":
		return parquet.CompressionCodec_GZIP, nil
	case "NONE", "":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return 0, fmt.Errorf("unsupported compression type: %s", name)
	}
}

// WriteParquet writes tl in long format, hour-major with categories in
// stacking order, using the named compression.
func WriteParquet(w io.Writer, tl domain.Timeline, compression string) error {
	codec, err := CompressionCodec(compression)
	if err != nil {
		return err
	}

	pw, err := writer.NewParquetWriterFromWriter(w, new(parquetRow), parquetParallelism)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = codec

	for i, h := range tl.Hours {
		ms := h.UnixMilli()
		for _, col := range tl.Columns {
			row := parquetRow{
				Hour:           ms,
				Category:       string(col.Category),
				StackRank:      int32(domain.Rank(col.Category)),
				DownCapacityKW: col.Values[i],
			}
			if err := pw.Write(row); err != nil {
				return fmt.Errorf("write parquet row: %w", err)
			}
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finalize parquet: %w", err)
	}
	return nil
}
