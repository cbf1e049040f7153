package models

// CanvasViewState is the transient view of an editing session. It is never persisted.
type CanvasViewState struct {
	Zoom           float64  `json:"zoom"`
	PanOffset      Position `json:"pan_offset"`
	SelectedNodeID string   `json:"selected_node_id,omitempty"`
	DraggedNodeID  string   `json:"dragged_node_id,omitempty"`
	DragOffset     Position `json:"drag_offset"`
}
