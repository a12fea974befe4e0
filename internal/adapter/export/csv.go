package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/couchcryptid/outage-timeline-service/internal/domain"
)

// WriteCSV writes tl as a header of hour, the present categories, and total,
// followed by one line per hour. Values are kW.
func WriteCSV(w io.Writer, tl domain.Timeline) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(tl.Columns)+2)
	header = append(header, "hour")
	for _, c := range tl.Categories() {
		header = append(header, string(c))
	}
	header = append(header, "total")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	line := make([]string, len(header))
	for _, row := range Rows(tl) {
		line[0] = row.Hour.Format(time.RFC3339)
		for j, v := range row.Values {
			line[j+1] = strconv.FormatInt(v, 10)
		}
		line[len(line)-1] = strconv.FormatInt(row.Total, 10)
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
