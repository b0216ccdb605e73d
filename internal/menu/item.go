package menu

// Icon names the glyph shown next to an item.
type Icon string

const (
	IconNone     Icon = ""
	IconInfo     Icon = "info"
	IconWarning  Icon = "warning"
	IconError    Icon = "error"
	IconSettings Icon = "settings"
)

// Flow names an entry point. Each flow interprets queries differently.
type Flow string

const (
	FlowMain     Flow = "jobs"
	FlowSettings Flow = "settings"
	FlowBuild    Flow = "build"
)

// Item is one selectable row. An item either carries a terminal action (Arg,
// only meaningful when Valid) or an Autocomplete query for the next step.
type Item struct {
	UID          string `json:"uid,omitempty"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle,omitempty"`
	Arg          string `json:"arg,omitempty"`
	Autocomplete string `json:"autocomplete,omitempty"`
	Valid        bool   `json:"valid"`
	Icon         Icon   `json:"icon,omitempty"`
	// Flow is the flow Autocomplete belongs to; empty means the current one.
	Flow Flow `json:"-"`
}

func errorItem(title string, err error) Item {
	return Item{Title: title, Subtitle: err.Error(), Icon: IconError}
}

func noMenuItem() Item {
	return Item{
		Title:    "Could not get appropriate menu.",
		Subtitle: "This shouldn't happen, please report your query to the jenky developer.",
		Icon:     IconWarning,
	}
}
