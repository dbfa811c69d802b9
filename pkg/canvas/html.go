package canvas

import (
	"html/template"
	"io"
)

var sceneFuncs = template.FuncMap{
	"num": num,
	"px":  func(v float64) string { return num(v) + "px" },
}

var sceneTmpl = template.Must(template.New("scene").Funcs(sceneFuncs).Parse(`<div class="flowcanvas">
<div class="canvas" id="canvas" style="position:relative;width:{{px .Width}};height:{{px .Height}}">
<svg class="connections" width="{{num .Width}}" height="{{num .Height}}" style="position:absolute;left:0;top:0;pointer-events:none">
{{- range .Connections}}
<g class="connection" data-key="{{.Key}}">
<line x1="{{num .Line.From.X}}" y1="{{num .Line.From.Y}}" x2="{{num .Line.To.X}}" y2="{{num .Line.To.Y}}" stroke="{{.Stroke}}" stroke-width="{{num .StrokeWidth}}" stroke-dasharray="{{if .Dash}}{{.Dash}}{{else}}none{{end}}"/>
<polygon points="{{.Arrow.Points}}" fill="{{.Stroke}}"/>
</g>
{{- end}}
</svg>
{{- range .Nodes}}
<div class="node{{if .Dragging}} dragging{{end}}" data-node-id="{{.ID}}" data-status="{{.Status}}" style="position:absolute;left:{{px .X}};top:{{px .Y}};z-index:{{.Z}};transform:scale({{num .Scale}})">
<div class="node-body {{.FillClass}}" style="width:{{px .Width}};height:{{px .Height}};background:{{.Fill}}">
<div class="node-name">{{.Name}}</div>
{{- if .Pulse}}
<div class="pulse"></div>
{{- end}}
</div>
<div class="node-duration">{{.Duration}}</div>
</div>
{{- end}}
<div class="instructions">{{.Instructions}}</div>
</div>
<div class="legend">
{{- range .Legend}}
<div class="legend-entry" data-status="{{.Status}}"><span class="swatch" style="background:{{.Fill}}">{{if .Pulse}}<span class="legend-pulse"></span>{{end}}</span><span>{{.Label}}</span></div>
{{- end}}
</div>
</div>
`))

// WriteHTML renders scene as an HTML fragment: an SVG connection layer under
// absolutely positioned node boxes, followed by the legend.
func WriteHTML(w io.Writer, scene Scene) error {
	return sceneTmpl.Execute(w, scene)
}
