package canvas

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/contractpulse/flowdesigner/pkg/models"
)

var fills = map[models.NodeType]string{
	models.NodeTypeStart:         "#dcfce7",
	models.NodeTypeEnd:           "#fee2e2",
	models.NodeTypeApproval:      "#dbeafe",
	models.NodeTypeMultiApproval: "#dbeafe",
	models.NodeTypeDecision:      "#fef9c3",
	models.NodeTypeNotification:  "#f3e8ff",
	models.NodeTypeParallel:      "#e0e7ff",
	models.NodeTypeMerge:         "#e0e7ff",
	models.NodeTypeTimer:         "#ffedd5",
	models.NodeTypeEscalation:    "#ffe4e6",
}

func fillOf(nodeType models.NodeType) string {
	if fill, ok := fills[nodeType]; ok {
		return fill
	}

	return "#f3f4f6"
}

func diamondPoints(r Rect) string {
	c := r.Center()

	return strings.Join([]string{
		num(c.X) + "," + num(r.Y),
		num(r.X+r.Width) + "," + num(c.Y),
		num(c.X) + "," + num(r.Y+r.Height),
		num(r.X) + "," + num(c.Y),
	}, " ")
}

var svgTemplate = template.Must(template.New("svg").Funcs(template.FuncMap{
	"num":     num,
	"fill":    fillOf,
	"diamond": diamondPoints,
	"half":    func(v float64) float64 { return v / 2 },
}).Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{num .Width}}" height="{{num .Height}}" viewBox="0 0 {{num .Width}} {{num .Height}}">
<title>{{html .Title}}</title>
<defs><marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="6" markerHeight="6" orient="auto"><path d="M 0 0 L 10 5 L 0 10 z" fill="#64748b"/></marker></defs>
<g transform="scale({{num .Viewport.Zoom}}) translate({{num .Viewport.Pan.X}} {{num .Viewport.Pan.Y}})">
{{- range .Edges}}
<path class="edge" data-from="{{html .From}}" data-to="{{html .To}}" d="{{.Path}}" fill="none" stroke="#64748b" stroke-width="2" marker-end="url(#arrow)"/>
{{- if .Label}}
<text class="edge-label" x="{{num .LabelAt.X}}" y="{{num .LabelAt.Y}}" text-anchor="middle" font-size="12">{{html .Label}}</text>
{{- end}}
{{- end}}
{{- range .Nodes}}
<g class="node{{if .Selected}} selected{{end}}" data-id="{{html .ID}}" data-type="{{html .Type}}">
{{- if eq .Shape "pill"}}
<rect x="{{num .Bounds.X}}" y="{{num .Bounds.Y}}" width="{{num .Bounds.Width}}" height="{{num .Bounds.Height}}" rx="{{num (half .Bounds.Height)}}" fill="{{fill .Type}}" stroke="#334155"/>
{{- else if eq .Shape "diamond"}}
<polygon points="{{diamond .Bounds}}" fill="{{fill .Type}}" stroke="#334155"/>
{{- else if eq .Shape "circle"}}
<circle cx="{{num .Bounds.Center.X}}" cy="{{num .Bounds.Center.Y}}" r="{{num (half .Bounds.Height)}}" fill="{{fill .Type}}" stroke="#334155"/>
{{- else}}
<rect x="{{num .Bounds.X}}" y="{{num .Bounds.Y}}" width="{{num .Bounds.Width}}" height="{{num .Bounds.Height}}" rx="8" fill="{{fill .Type}}" stroke="#334155"/>
{{- end}}
<text x="{{num .Bounds.Center.X}}" y="{{num .Bounds.Center.Y}}" text-anchor="middle" dominant-baseline="middle" font-size="13">{{html .Label}}</text>
</g>
{{- end}}
</g>
</svg>
`))

// RenderSVG writes the scene as a standalone SVG document. The viewport is applied as
// the transform of the outer group.
func RenderSVG(w io.Writer, scene Scene) error {
	err := svgTemplate.Execute(w, scene)
	if err != nil {
		return fmt.Errorf("failed to render svg: %w", err)
	}

	return nil
}
