package reports

import (
	"fmt"
)

// NewReportGenerator creates a report generator based on the report type.
func NewReportGenerator(reportType ReportType, src ReportSource) (Generator, error) {
	switch reportType {
	case ReportTypeLayout:
		return NewLayoutReport(src), nil
	case ReportTypeConnections:
		return NewConnectionReport(src), nil
	default:
		return nil, fmt.Errorf("unknown report type: %s", reportType)
	}
}
