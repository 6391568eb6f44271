// Package present turns analysis results into the rows a results view shows.
package present

import (
	"strconv"
	"sync"

	"github.com/sherwynjoel/hybridllm/internal/domain"
)

// Columns are the results view headers, in display order.
var Columns = []string{"Line", "Type", "Severity", "CWE", "Message"}

// CWEPlaceholder fills the CWE column when a finding has none.
const CWEPlaceholder = "N/A"

// Row is one displayed finding.
type Row struct {
	Line     int
	Type     string
	Severity string
	CWE      string
	Message  string
}

// Cells returns the row's values in Columns order.
func (r Row) Cells() []string {
	return []string{strconv.Itoa(r.Line), r.Type, r.Severity, r.CWE, r.Message}
}

// Rows projects result into one row per finding, in service order. It has
// no side effects; a nil result yields no rows.
func Rows(result *domain.Result) []Row {
	if result == nil {
		return []Row{}
	}
	rows := make([]Row, 0, len(result.Vulnerabilities))
	for _, v := range result.Vulnerabilities {
		cwe := v.CWE
		if cwe == "" {
			cwe = CWEPlaceholder
		}
		rows = append(rows, Row{
			Line:     v.Line,
			Type:     v.Type,
			Severity: v.Severity,
			CWE:      cwe,
			Message:  v.Message,
		})
	}
	return rows
}

// Panel is a results surface. Each Show replaces its rows wholesale.
// Calling Show on a nil Panel does nothing.
type Panel struct {
	mu   sync.Mutex
	rows []Row
}

// NewPanel returns an empty Panel.
func NewPanel() *Panel {
	return &Panel{rows: []Row{}}
}

// Show replaces the panel contents with the rows of result.
func (p *Panel) Show(result *domain.Result) {
	if p == nil {
		return
	}
	rows := Rows(result)
	p.mu.Lock()
	p.rows = rows
	p.mu.Unlock()
}

// Rows returns a copy of what the panel currently shows.
func (p *Panel) Rows() []Row {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Row(nil), p.rows...)
}
