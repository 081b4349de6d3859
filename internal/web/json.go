package web

import (
	"encoding/json"

	"github.com/sweeney/drpiro/internal/pins"
	"github.com/sweeney/drpiro/internal/shell"
	"github.com/sweeney/drpiro/internal/status"
)

// ViewJSON is the JSON representation of the interface.
type ViewJSON struct {
	Config        pins.Config        `json:"config"`
	Launchers     []LauncherJSON     `json:"launchers"`
	Panel         PanelJSON          `json:"panel"`
	NoticeVisible bool               `json:"notice_visible"`
	Status        status.StatusInner `json:"status"`
}

// LauncherJSON is the JSON representation of one launcher.
type LauncherJSON struct {
	Label    int    `json:"label"`
	Pin      int    `json:"pin"`
	Disabled bool   `json:"disabled"`
	Mode     string `json:"mode"`
	Notice   bool   `json:"notice"`
	Error    string `json:"error,omitempty"`
}

// PanelJSON is the JSON representation of the configuration panel.
type PanelJSON struct {
	Shown bool   `json:"shown"`
	Error string `json:"error,omitempty"`
}

func formatJSON(v shell.View, snap status.Snapshot) []byte {
	vj := ViewJSON{
		Config:        v.Config,
		Launchers:     make([]LauncherJSON, len(v.Launchers)),
		Panel:         PanelJSON{Shown: v.Panel.Shown, Error: v.Panel.Error},
		NoticeVisible: v.NoticeVisible,
		Status:        status.BuildInner(snap),
	}
	for i, l := range v.Launchers {
		vj.Launchers[i] = LauncherJSON{
			Label:    l.Label,
			Pin:      l.Pin,
			Disabled: l.Disabled,
			Mode:     l.Mode.String(),
			Notice:   l.Clicked,
			Error:    l.Error,
		}
	}

	data, _ := json.MarshalIndent(vj, "", "  ")
	return data
}
