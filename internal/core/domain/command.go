package domain

// CommandAction names a UI event applied to an explore session.
type CommandAction string

const (
	ActionSearch   CommandAction = "search"   // replace the free-text query
	ActionFilter   CommandAction = "filter"   // replace all criteria
	ActionRefine   CommandAction = "refine"   // replace criteria except the price range
	ActionReset    CommandAction = "reset"    // restore default criteria
	ActionDraw     CommandAction = "draw"     // replace the boundary
	ActionErase    CommandAction = "erase"    // delete the boundary
	ActionSelect   CommandAction = "select"   // select a visible listing
	ActionDeselect CommandAction = "deselect" // clear the selection
	ActionSort     CommandAction = "sort"     // reorder the collection
)

// Command is one UI event sent by the rendering surface.
type Command struct {
	Action   CommandAction   `json:"action"`
	Query    string          `json:"query,omitempty"`
	Criteria *FilterCriteria `json:"criteria,omitempty"`
	Vertices []GeoPoint      `json:"vertices,omitempty"`
	ID       string          `json:"id,omitempty"`
	Sort     string          `json:"sort,omitempty"`
}
