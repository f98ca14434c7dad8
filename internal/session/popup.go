package session

// PopupKind identifies a modal message
type PopupKind int

const (
	PopupNone PopupKind = iota
	PopupDisclaimer
	PopupServerError
	PopupInvalidPipeline
	PopupInvalidPoint
	PopupLookupPending
	PopupSaveFailed
	PopupReportSaved
	PopupProcessingRoute
	PopupProcessingEvaluation
)

// popupOrder is the stacking order, topmost first
var popupOrder = []PopupKind{
	PopupDisclaimer,
	PopupServerError,
	PopupInvalidPipeline,
	PopupInvalidPoint,
	PopupLookupPending,
	PopupSaveFailed,
	PopupReportSaved,
	PopupProcessingRoute,
	PopupProcessingEvaluation,
}

// Message is the text of a popup
type Message struct {
	Title string
	Body  string
	// Detail is extra text for this occurrence, e.g. a saved file path
	Detail      string
	Dismissable bool
}

var messages = map[PopupKind]Message{
	PopupDisclaimer: {
		Title:       "Disclaimer",
		Body:        "Routes and corridor evaluations are planning estimates only and are not a substitute for a site survey.",
		Dismissable: true,
	},
	PopupServerError: {
		Title:       "Server Error",
		Body:        "An invalid point location may have been selected, the server may not have been started, or a different server error has occurred.",
		Dismissable: true,
	},
	PopupInvalidPipeline: {
		Title:       "Invalid Pipeline",
		Body:        "Start and end locations must be both in Alaska or both in continental USA.",
		Dismissable: true,
	},
	PopupInvalidPoint: {
		Title:       "Invalid Location",
		Body:        "Please select a point within the USA or Alaska.",
		Dismissable: true,
	},
	PopupLookupPending: {
		Title:       "Checking Location",
		Body:        "A selected point is still being checked. Try again once it appears on the map.",
		Dismissable: true,
	},
	PopupSaveFailed: {
		Title:       "Save Failed",
		Body:        "The report was downloaded but could not be saved.",
		Dismissable: true,
	},
	PopupReportSaved: {
		Title:       "Report Saved",
		Body:        "The report was saved to:",
		Dismissable: true,
	},
	PopupProcessingRoute: {
		Title: "Loading",
		Body:  "Optimizing pipeline corridor, this may take several minutes...",
	},
	PopupProcessingEvaluation: {
		Title: "Loading",
		Body:  "Evaluating uploaded corridor, this may take several minutes...",
	},
}

// Presenter tracks which popups are showing. Popups are independent: dismissing
// one never affects another or the operation that raised it. Processing popups
// follow the active operation and cannot be dismissed.
type Presenter struct {
	visible        map[PopupKind]bool
	details        map[PopupKind]string
	processing     PopupKind
	disclaimerSeen bool
}

// NewPresenter creates a presenter showing the first-load disclaimer
func NewPresenter() *Presenter {
	return &Presenter{
		visible: map[PopupKind]bool{PopupDisclaimer: true},
		details: make(map[PopupKind]string),
	}
}

// Show raises a popup. The disclaimer shows once per session.
func (p *Presenter) Show(k PopupKind) {
	p.ShowDetail(k, "")
}

// ShowDetail raises a popup with extra text
func (p *Presenter) ShowDetail(k PopupKind, detail string) {
	switch k {
	case PopupNone, PopupProcessingRoute, PopupProcessingEvaluation:
		return
	case PopupDisclaimer:
		if p.disclaimerSeen {
			return
		}
	}
	p.visible[k] = true
	p.details[k] = detail
}

// Dismiss closes a popup
func (p *Presenter) Dismiss(k PopupKind) {
	if !messages[k].Dismissable {
		return
	}
	if k == PopupDisclaimer {
		p.disclaimerSeen = true
	}
	delete(p.visible, k)
	delete(p.details, k)
}

// DismissTop closes the topmost dismissable popup and returns it
func (p *Presenter) DismissTop() PopupKind {
	for _, k := range popupOrder {
		if p.visible[k] && messages[k].Dismissable {
			p.Dismiss(k)
			return k
		}
	}
	return PopupNone
}

// SetProcessing shows k as the processing popup, or hides it for PopupNone
func (p *Presenter) SetProcessing(k PopupKind) {
	p.processing = k
}

// Visible reports whether k is showing
func (p *Presenter) Visible(k PopupKind) bool {
	if k == PopupProcessingRoute || k == PopupProcessingEvaluation {
		return p.processing == k
	}
	return p.visible[k]
}

// Processing reports whether a processing popup is showing
func (p *Presenter) Processing() bool {
	return p.processing != PopupNone
}

// Top returns the topmost visible popup, or PopupNone
func (p *Presenter) Top() PopupKind {
	for _, k := range popupOrder {
		if p.Visible(k) {
			return k
		}
	}
	return PopupNone
}

// Message returns the text for k
func (p *Presenter) Message(k PopupKind) Message {
	m := messages[k]
	m.Detail = p.details[k]
	return m
}
