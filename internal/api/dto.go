package api

// LayoutRequest selects a layout mode.
type LayoutRequest struct {
	Mode string `json:"mode"`
}

// SearchFilterRequest updates the live search text.
type SearchFilterRequest struct {
	Text string `json:"text"`
}

// DimensionFilterRequest includes or excludes one key on a categorical
// filter dimension.
type DimensionFilterRequest struct {
	Key      string `json:"key"`
	Included bool   `json:"included"`
}

// DragRequest stages one phase of a drag interaction.
type DragRequest struct {
	Phase string  `json:"phase"` // "start", "move" or "end"
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// ResizeRequest updates the canvas dimensions.
type ResizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ZoomRequest steps the zoom level.
type ZoomRequest struct {
	Dir int `json:"dir"` // positive zooms in, negative zooms out
}

// ToggleResponse reports the new state of a toggled feature.
type ToggleResponse struct {
	Enabled bool `json:"enabled"`
}
