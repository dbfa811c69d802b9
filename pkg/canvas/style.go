package canvas

// StatusStyle is the visual treatment of a status, shared by node fills and
// connection strokes.
type StatusStyle struct {
	Stroke    string `json:"stroke"`
	Fill      string `json:"fill"`
	FillClass string `json:"fill_class"`
	Dash      string `json:"dash,omitempty"`
	Pulse     bool   `json:"pulse"`
	Label     string `json:"label"`
	// Term is an ANSI 256 color used by terminal hosts.
	Term string `json:"-"`
}

// Dashed reports whether connections from this status use a dashed stroke.
func (s StatusStyle) Dashed() bool { return s.Dash != "" }

var statusStyles = map[Status]StatusStyle{
	StatusCompleted: {Stroke: "#10b981", Fill: "#22c55e", FillClass: "bg-green-500", Label: "Completed", Term: "42"},
	StatusRunning:   {Stroke: "#f59e0b", Fill: "#eab308", FillClass: "bg-yellow-500", Pulse: true, Label: "Running", Term: "214"},
	StatusFailed:    {Stroke: "#ef4444", Fill: "#ef4444", FillClass: "bg-red-500", Label: "Failed", Term: "196"},
	StatusPending:   {Stroke: "#6b7280", Fill: "#9ca3af", FillClass: "bg-gray-400", Dash: "5,5", Label: "Pending", Term: "245"},
}

// legendOrder is the order the legend lists statuses in.
var legendOrder = []Status{StatusCompleted, StatusRunning, StatusFailed, StatusPending}

// StyleFor returns the style for s. Unknown statuses render as pending.
func StyleFor(s Status) StatusStyle {
	if st, ok := statusStyles[s]; ok {
		return st
	}
	return statusStyles[StatusPending]
}
