package catalog

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// ParseControlMatrix reads the destination-control matrix CSV. The first column is the
// destination, the other headers are control-reason tags. A cell starting with "X"
// marks permission required; any other value means not required.
func ParseControlMatrix(r io.Reader) (*model.ControlMatrix, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, loadError(err, "failed to read control matrix header")
	}
	if len(header) < 2 {
		return nil, goerr.Wrap(model.ErrCatalogLoad, "control matrix needs a destination column and at least one control reason",
			goerr.V("columns", len(header)))
	}

	columns := make([]types.ControlReason, 0, len(header)-1)
	for _, h := range header[1:] {
		columns = append(columns, types.NormalizeControlReason(h))
	}

	matrix := &model.ControlMatrix{Columns: columns}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, loadError(err, "failed to read control matrix row",
				goerr.V(model.LineKey, line))
		}

		destination := strings.TrimSpace(record[0])
		if destination == "" {
			continue
		}

		row := &model.DestinationControlRow{
			Destination:        destination,
			PermissionRequired: make(map[types.ControlReason]bool, len(columns)),
		}
		for i, col := range columns {
			if col == "" {
				continue
			}
			// Short rows leave trailing columns unmapped, i.e. unknown
			if i+1 >= len(record) {
				break
			}
			cell := strings.ToUpper(strings.TrimSpace(record[i+1]))
			row.PermissionRequired[col] = strings.HasPrefix(cell, "X")
		}
		matrix.Rows = append(matrix.Rows, row)
	}

	if len(matrix.Rows) == 0 {
		return nil, goerr.Wrap(model.ErrCatalogLoad, "control matrix has no rows")
	}

	return matrix, nil
}
