package ui

import (
	"context"
	"errors"
	"fmt"

	"piperoute/internal/backend"
	"piperoute/internal/geo"
	"piperoute/internal/session"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"
)

const (
	pickerWidth  = 40
	pickerHeight = 14
)

// Options configure the initial map and the panel
type Options struct {
	Center      geo.Coordinate
	RadiusMiles float64
	AspectRatio float64
	// Backend is the backend profile name shown in the panel
	Backend     string
}

// App is the main application controller
type App struct {
	screen    tcell.Screen
	session   *session.Session
	mapView   *MapView
	panel     *Panel
	picker    *SitePicker
	prompt    *Prompt
	popupView *PopupView
	backend   string
	status    string
	warning   bool
	mouseDown bool
	lastRoute *backend.RouteResult
	lastEval  *backend.EvaluationResult
}

// NewScreen creates and initializes a terminal screen with mouse support
func NewScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}

	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}

	screen.SetStyle(tcell.StyleDefault)
	screen.EnableMouse()
	screen.Clear()

	return screen, nil
}

// NewApp creates a new application on an initialized screen
func NewApp(screen tcell.Screen, sess *session.Session, basemap geo.Basemap, opts Options) *App {
	width, height := screen.Size()

	app := &App{
		screen:    screen,
		session:   sess,
		mapView:   NewMapView(width, height, basemap, opts.Center, opts.RadiusMiles, opts.AspectRatio),
		panel:     NewPanel(0, 0, panelWidth, panelHeight),
		picker:    NewSitePicker(0, 0, pickerWidth, pickerHeight),
		prompt:    NewPrompt(0, 0, width),
		popupView: NewPopupView(width, height),
		backend:   opts.Backend,
		status:    "Press s or e, then click the map",
	}
	app.layout(width, height)

	return app
}

// Run starts the application main loop. It returns when the user quits or ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.cleanup()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go a.screen.ChannelEvents(events, quit)

	for {
		a.draw()

		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !a.handleEvent(ev) {
				return nil
			}

		case c := <-a.session.Completions():
			a.handleCompletion(c)
		}
	}
}

// handleCompletion applies a finished call and fits the map to a new result
func (a *App) handleCompletion(c session.Completion) {
	a.session.Apply(c)

	route, eval := a.session.Route(), a.session.Evaluation()
	if route == a.lastRoute && eval == a.lastEval {
		return
	}
	a.lastRoute, a.lastEval = route, eval

	if a.mapView.FitShape(a.session.Shape()) {
		a.setStatus("Result ready", false)
	}
}

// draw renders every view to the screen, topmost last
func (a *App) draw() {
	a.screen.Clear()

	a.mapView.Draw(a.screen, a.session)
	a.panel.Draw(a.screen, a.session, PanelInfo{
		Backend: a.backend,
		Status:  a.status,
		Warning: a.warning,
	})
	a.picker.Draw(a.screen)
	a.prompt.Draw(a.screen)
	a.popupView.Draw(a.screen, a.session.Popups())

	a.screen.Show()
}

// handleEvent processes keyboard, mouse and resize events. It returns false
// when the user quits.
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)

	case *tcell.EventMouse:
		a.handleMouse(ev)

	case *tcell.EventResize:
		a.screen.Sync()
		a.layout(a.screen.Size())
	}

	return true
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		return false
	}

	if a.prompt.IsOpen() {
		a.handlePromptKey(ev)
		return true
	}

	if ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q') {
		return false
	}

	popups := a.session.Popups()
	if top := popups.Top(); top != session.PopupNone && popups.Message(top).Dismissable {
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyEnter {
			popups.DismissTop()
		}
		return true
	}

	// processing blocks everything except switching main mode, which discards it
	if popups.Processing() {
		if ev.Key() == tcell.KeyRune {
			a.handleModeKey(ev.Rune())
		}
		return true
	}

	if a.picker.IsOpen() {
		a.handlePickerKey(ev)
		return true
	}

	switch ev.Key() {
	case tcell.KeyUp:
		a.mapView.MoveCursor(0, -1)
	case tcell.KeyDown:
		a.mapView.MoveCursor(0, 1)
	case tcell.KeyLeft:
		a.mapView.MoveCursor(-1, 0)
	case tcell.KeyRight:
		a.mapView.MoveCursor(1, 0)
	case tcell.KeyEnter:
		a.click(a.mapView.CursorCoord())
	case tcell.KeyRune:
		if !a.handleModeKey(ev.Rune()) {
			a.handleActionKey(ev.Rune())
		}
	}

	return true
}

// handleModeKey switches modes and reports whether r was a mode key
func (a *App) handleModeKey(r rune) bool {
	switch r {
	case 'i':
		a.session.SetMainMode(session.ModeIdentify)
	case 'v':
		a.session.SetMainMode(session.ModeEvaluate)
	case 'p':
		a.session.SetSubMode(session.SubRoute)
	case 'r':
		a.session.SetSubMode(session.SubRail)
	default:
		return false
	}
	return true
}

func (a *App) handleActionKey(r rune) {
	switch r {
	case '+', '=':
		a.mapView.ZoomIn()
	case '-', '_':
		a.mapView.ZoomOut()
	case 'c':
		if !a.mapView.FitShape(a.session.Shape()) {
			a.setStatus("Nothing to center on", true)
		}

	case 's':
		a.session.SetActiveRole(session.RoleStart)
		a.setStatus("Selecting start point", false)
	case 'e':
		a.session.SetActiveRole(session.RoleEnd)
		a.setStatus("Selecting end point", false)
	case 'm':
		if a.requireRole() {
			a.prompt.Open(PromptCoordinate, a.session.ActiveRole().String()+" lat, lon")
		}
	case 'k':
		if a.requireRole() {
			role := a.session.ActiveRole()
			a.picker.Open(role, a.session.Sites(role))
		}

	case 'g':
		if err := a.session.GenerateRoute(); err != nil {
			a.setStatus(err.Error(), true)
			return
		}
		a.setStatus("Generating route", false)
	case 'u':
		a.prompt.Open(PromptUploads, "Files (comma separated)")
	case 'x':
		if err := a.session.EvaluateCorridor(); err != nil {
			a.setStatus(err.Error(), true)
			return
		}
		a.setStatus("Evaluating corridor", false)
	case 'd':
		ext := a.session.ReportExtension()
		if err := a.session.DownloadReport(ext); err != nil {
			a.setStatus(err.Error(), true)
			return
		}
		a.setStatus("Downloading "+ext+" report", false)
	case 'o':
		path, err := a.session.ExportGeoJSON()
		if err != nil {
			a.setStatus(err.Error(), true)
			return
		}
		a.setStatus("Exported "+path, false)
	case 'h':
		a.session.OpenHelp()
		a.setStatus("Help requested", false)
	}
}

// requireRole reports whether points can be chosen now, explaining why not in the status line
func (a *App) requireRole() bool {
	switch {
	case a.session.MainMode() != session.ModeIdentify:
		a.setStatus("Points are chosen in identify mode (i)", true)
		return false
	case a.session.ActiveRole() == session.RoleNone:
		a.setStatus("Press s or e to choose start or end first", true)
		return false
	}
	return true
}

func (a *App) handlePromptKey(ev *tcell.EventKey) {
	switch a.prompt.HandleKey(ev) {
	case PromptCancelled:
		a.prompt.Close()
	case PromptSubmitted:
		kind, text := a.prompt.Kind(), a.prompt.Text()
		a.prompt.Close()
		a.submitPrompt(kind, text)
	}
}

func (a *App) submitPrompt(kind PromptKind, text string) {
	switch kind {
	case PromptCoordinate:
		coord, err := ParseCoordinate(text)
		if err != nil {
			a.setStatus(err.Error(), true)
			return
		}
		a.session.SelectPoint(a.session.ActiveRole(), coord)
		a.setStatus("Checking "+coord.String(), false)

	case PromptUploads:
		err := a.session.SetUploads(ParsePaths(text))
		if err != nil {
			a.setStatus(err.Error(), true)
			return
		}
		a.setStatus(fmt.Sprintf("%d file(s) ready to upload", len(a.session.Uploads())), false)
	}
}

func (a *App) handlePickerKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		a.picker.Close()
	case tcell.KeyUp:
		a.picker.SelectPrev()
	case tcell.KeyDown:
		a.picker.SelectNext()
	case tcell.KeyEnter:
		site, ok := a.picker.Selected()
		a.picker.Close()
		if !ok {
			return
		}
		a.session.SelectSite(a.picker.Role(), site)
		a.setStatus(a.picker.Role().String()+": "+site.Name, false)
	}
}

// handleMouse treats a button 1 press on the map as a click at that cell
func (a *App) handleMouse(ev *tcell.EventMouse) {
	pressed := ev.Buttons()&tcell.Button1 != 0
	wasDown := a.mouseDown
	a.mouseDown = pressed
	if !pressed || wasDown {
		return
	}

	popups := a.session.Popups()
	if a.prompt.IsOpen() || a.picker.IsOpen() || popups.Top() != session.PopupNone {
		return
	}

	x, y := ev.Position()
	if !a.mapView.Contains(x, y) {
		return
	}
	a.mapView.SetCursor(x, y)
	a.click(a.mapView.CursorCoord())
}

func (a *App) click(c geo.Coordinate) {
	if !a.session.ClickMap(c) {
		a.requireRole()
		return
	}
	if err := c.Validate(); errors.Is(err, geo.ErrOutOfRange) {
		a.setStatus("Off the map", true)
		return
	}
	a.setStatus("Checking "+c.String(), false)
}

func (a *App) setStatus(msg string, warning bool) {
	a.status = msg
	a.warning = warning
	if warning {
		log.Debug().Str("status", msg).Msg("Status")
	}
}

// layout positions the overlays for a screen of the given size
func (a *App) layout(width, height int) {
	a.mapView.UpdateDimensions(width, height)

	pw := min(panelWidth, width)
	a.panel.UpdateDimensions(0, height-panelHeight, pw, panelHeight)
	a.picker.UpdateDimensions(pw, height-pickerHeight, min(pickerWidth, max(width-pw, 0)), pickerHeight)
	a.prompt.UpdateDimensions(0, height-panelHeight-1, width)
	a.popupView.UpdateDimensions(width, height)
}

// cleanup performs cleanup before exit
func (a *App) cleanup() {
	if a.screen != nil {
		a.screen.Fini()
	}
}
