package output

import (
	"io"

	"github.com/agentstation/kgsync/internal/cmd/table"
	"github.com/agentstation/kgsync/pkg/sync"
)

// Result writes a pipeline result. Tables show the summary followed by
// one row per entity; json and yaml encode the whole result.
func Result(w io.Writer, r *sync.Result, format Format) error {
	formatter := NewFormatter(format)

	var data any
	switch format {
	case FormatJSON, FormatYAML:
		data = r
	default:
		data = []table.Data{
			table.SummaryToTableData(r),
			table.ResultToTableData(r, format == FormatWide),
		}
	}
	return formatter.Format(w, data)
}
