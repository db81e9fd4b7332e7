package player

const (
	DashboardTitle  = "Emirates Group Roblox – IFE Audio Control"
	DashboardFooter = "Cabin Crew Only • Technology Systems Division"
	DashboardColor  = 0x4b3f72
	EmptyStateText  = "No audio is currently playing."
)

// DashboardOption is one selectable catalog entry.
type DashboardOption struct {
	Label       string
	Description string
	Value       string
	Default     bool
}

// DashboardControl is a labeled action button.
type DashboardControl struct {
	Label string
	Emoji string
}

// DashboardView is the control surface for the current playback state.
type DashboardView struct {
	Title       string
	Description string
	Footer      string
	Color       int
	Status      PlayerStatus
	Options     []DashboardOption
	Toggle      DashboardControl
	Stop        DashboardControl
}

// RenderStatus builds the dashboard for the current state. It has no side
// effects and is valid in every state.
func (p *Player) RenderStatus() DashboardView {
	st := p.State()
	return render(st, p.catalogOptions(st.ActiveTrackID), p.describe(st))
}

func (p *Player) describe(st State) string {
	t, ok := p.catalog.Lookup(st.ActiveTrackID)
	if !ok {
		return EmptyStateText
	}
	return "🎵 **Now Playing:** " + t.Label + "\n_" + t.Description + "_"
}

func (p *Player) catalogOptions(active string) []DashboardOption {
	tracks := p.catalog.Tracks()
	options := make([]DashboardOption, 0, len(tracks))
	for _, t := range tracks {
		options = append(options, DashboardOption{
			Label:       t.Label,
			Description: t.Description,
			Value:       t.ID,
			Default:     t.ID == active,
		})
	}
	return options
}

func render(st State, options []DashboardOption, description string) DashboardView {
	toggle := DashboardControl{Label: "Pause", Emoji: "⏸️"}
	if st.Paused || st.ActiveTrackID == "" {
		toggle = DashboardControl{Label: "Play", Emoji: "▶️"}
	}

	return DashboardView{
		Title:       DashboardTitle,
		Description: description,
		Footer:      DashboardFooter,
		Color:       DashboardColor,
		Status:      st.Status(),
		Options:     options,
		Toggle:      toggle,
		Stop:        DashboardControl{Label: "Stop", Emoji: "⏹️"},
	}
}
