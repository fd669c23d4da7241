package sanitizer

import (
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/SafeField/FieldGate/pkg/infra/prometheus"
	"github.com/SafeField/FieldGate/pkg/scanner"
)

// FieldWarning is a per-field warning with the originating field name
// attached, for the flattened batch view.
type FieldWarning struct {
	Field string `json:"field"`
	Warning
}

// BatchResult aggregates independent per-field sanitizations. Safe is the
// AND over all fields.
type BatchResult struct {
	Safe            bool              `json:"safe"`
	Fields          map[string]Result `json:"fields"`
	Warnings        []FieldWarning    `json:"warnings"`
	SanitizedValues map[string]string `json:"sanitized_values"`
}

// SanitizeBatch runs the pipeline once per field. Fields are independent,
// so they run concurrently; results are merged deterministically by
// name. A field without a declared type is treated as plain text.
func (s *Sanitizer) SanitizeBatch(fields map[string]interface{}, types map[string]FieldType, ctx scanner.Context) BatchResult {
	out := BatchResult{
		Safe:            true,
		Fields:          make(map[string]Result, len(fields)),
		SanitizedValues: make(map[string]string, len(fields)),
	}
	if len(fields) == 0 {
		return out
	}

	var mu sync.Mutex
	var g errgroup.Group
	for name, value := range fields {
		name, value := name, value
		g.Go(func() error {
			ft, ok := types[name]
			if !ok {
				ft = PlainText
			}
			res := s.sanitizeField(name, value, ft, ctx, nil)
			mu.Lock()
			out.Fields[name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // per-field sanitization never returns an error

	for _, name := range sortedFieldNames(out.Fields) {
		res := out.Fields[name]
		out.Safe = out.Safe && res.Safe
		out.SanitizedValues[name] = res.SanitizedValue
		for _, w := range res.Warnings {
			out.Warnings = append(out.Warnings, FieldWarning{Field: name, Warning: w})
		}
	}

	prometheus.BatchVerdicts.WithLabelValues(prometheus.Outcome(out.Safe)).Inc()
	return out
}

func sortedFieldNames(fields map[string]Result) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
