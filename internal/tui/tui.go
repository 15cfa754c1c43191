package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/studyplanner/internal/export"
	"github.com/Joseda-hg/studyplanner/internal/model"
	"github.com/Joseda-hg/studyplanner/internal/task"
)

const (
	viewHeader = "header"
	viewFooter = "footer"
	viewTasks  = "tasks"
	viewDetail = "detail"
	viewForm   = "form"
	viewHelp   = "help"
)

type Options struct {
	ExportPath string
	// SaveErr reports the outcome of the last snapshot write.
	SaveErr func() error
	Now     func() time.Time
}

type UI struct {
	store *task.Store
	gui   *gocui.Gui
	opts  Options

	tasks    []model.Task
	selected int

	draft      model.Draft
	form       *formState
	formEditor *formEditor
	helpActive bool
	status     string
}

type formEditor struct {
	ui *UI
}

func New(store *task.Store, opts Options) *UI {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ui := &UI{
		store: store,
		opts:  opts,
		draft: model.NewDraft(),
	}
	ui.formEditor = &formEditor{ui: ui}
	return ui
}

func Run(store *task.Store, opts Options) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := New(store, opts)
	ui.gui = gui
	gui.Mouse = true

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	ui.loadTasks()

	if err := gui.MainLoop(); err != nil && !errors.Is(err, gocui.ErrQuit) {
		return err
	}

	return nil
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	type binding struct {
		view    string
		key     any
		handler func(*gocui.Gui, *gocui.View) error
	}
	bindings := []binding{
		{"", gocui.KeyCtrlC, u.quit},
		{"", 'q', u.quit},
		{"", 'a', u.openForm},
		{"", 'x', u.toggleSelected},
		{"", 'd', u.deleteSelected},
		{"", 'p', u.exportTasks},
		{"", 'r', u.reload},
		{"", '?', u.toggleHelp},
		{viewTasks, gocui.KeySpace, u.toggleSelected},
		{viewTasks, gocui.KeyArrowDown, u.moveDown},
		{viewTasks, 'j', u.moveDown},
		{viewTasks, gocui.KeyArrowUp, u.moveUp},
		{viewTasks, 'k', u.moveUp},
		{viewForm, gocui.KeyEnter, u.submitForm},
		{viewForm, gocui.KeyCtrlJ, u.submitForm},
		{viewForm, gocui.KeyTab, u.nextFormField},
		{viewForm, gocui.KeyBacktab, u.prevFormField},
		{viewForm, gocui.KeyArrowDown, u.nextFormField},
		{viewForm, gocui.KeyArrowUp, u.prevFormField},
		{viewForm, gocui.KeyEsc, u.cancelForm},
		{viewHelp, gocui.KeyEsc, u.closeHelp},
		{viewHelp, 'q', u.closeHelp},
		{viewHelp, '?', u.closeHelp},
	}
	for _, b := range bindings {
		if err := gui.SetKeybinding(b.view, b.key, gocui.ModNone, b.handler); err != nil {
			return err
		}
	}

	if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: viewTasks, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
		return u.onListClick(gui, opts)
	}}); err != nil {
		return err
	}
	return nil
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = true
	u.renderHeader(headerView)

	footerY1 := max(maxY-2, 1)
	footerY0 := max(footerY1-2, 1)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	u.renderFooter(footerView)

	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom < bodyTop {
		return nil
	}

	listWidth := listPaneWidth(maxX)
	tasksView, err := gui.SetView(viewTasks, 0, bodyTop, listWidth-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		tasksView.Title = "Tasks"
		tasksView.TitleColor = gocui.ColorCyan
	}
	applyViewStyle(tasksView, true)
	u.renderTaskList(tasksView)

	detailView, err := gui.SetView(viewDetail, listWidth, bodyTop, maxX-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		detailView.Title = "Details"
		detailView.Wrap = true
	}
	applyViewStyle(detailView, false)
	u.renderDetail(detailView)

	_, _ = gui.SetViewOnTop(viewHeader)
	_, _ = gui.SetViewOnTop(viewFooter)

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if gui.CurrentView() == nil || (u.form == nil && !u.helpActive) {
		_, _ = gui.SetCurrentView(viewTasks)
	}
	gui.Cursor = u.form != nil
	return nil
}

func listPaneWidth(width int) int {
	w := width * 3 / 5
	if w < 30 {
		w = min(30, width-1)
	}
	return max(w, 1)
}

func (u *UI) loadTasks() {
	u.tasks = u.store.Tasks()
	if u.selected >= len(u.tasks) {
		u.selected = max(len(u.tasks)-1, 0)
	}
}

func (u *UI) today() time.Time {
	return model.Today(u.opts.Now())
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	done, pending := 0, 0
	overdue := 0
	today := u.today()
	for _, t := range u.tasks {
		if t.Completed {
			done++
		} else {
			pending++
		}
		if model.IsOverdue(t, today) {
			overdue++
		}
	}
	fmt.Fprintf(view, "Smart Study Planner | %s | pending %d | done %d | overdue %d", today.Format(model.DateLayout), pending, done, overdue)
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)
	view.SetCursor(0, 0)

	fmt.Fprintln(view, "a add | x/space toggle done | d delete | p export | j/k move | r reload | ? help | q quit")
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderTaskList(view *gocui.View) {
	view.Clear()
	if len(u.tasks) == 0 {
		fmt.Fprint(view, "  No tasks yet. Press a to add one.")
		return
	}
	today := u.today()
	for i, t := range u.tasks {
		prefix := " "
		if i == u.selected {
			prefix = ">"
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatTaskSummary(t, today))
	}
	view.SetCursor(0, min(u.selected, len(u.tasks)-1))
}

func (u *UI) renderDetail(view *gocui.View) {
	view.Clear()
	selected := u.selectedTask()
	if selected == nil {
		fmt.Fprint(view, "No task selected")
		return
	}
	fmt.Fprint(view, strings.Join(formatTaskDetail(*selected, u.today()), "\n"))
}

func (u *UI) selectedTask() *model.Task {
	if u.selected >= 0 && u.selected < len(u.tasks) {
		return &u.tasks[u.selected]
	}
	return nil
}

func (u *UI) onListClick(gui *gocui.Gui, opts gocui.ViewMouseBindingOpts) error {
	if u.inputActive() {
		return nil
	}
	view, err := gui.View(viewTasks)
	if err != nil {
		return nil
	}

	_, y0, _, _ := view.Dimensions()
	_, oy := view.Origin()
	row := max(opts.Y-y0-1+oy, 0)
	u.selected = max(min(row, len(u.tasks)-1), 0)
	return nil
}

func (u *UI) moveDown(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.selected < len(u.tasks)-1 {
		u.selected++
	}
	return nil
}

func (u *UI) moveUp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.selected > 0 {
		u.selected--
	}
	return nil
}

func (u *UI) reload(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.status = ""
	u.loadTasks()
	return nil
}

func (u *UI) openForm(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.form = &formState{draft: &u.draft}
	u.status = ""
	return nil
}

func (u *UI) showForm(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := fieldCount + 1
	x0 := max((maxX-width)/2, 0)
	y0 := max((maxY-height)/2, 0)

	view, err := gui.SetView(viewForm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	view.Title = "New Task"
	view.Wrap = true
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	fmt.Fprint(view, strings.Join(u.form.lines(), "\n"))
	view.SetCursor(u.form.cursorX(), u.form.index)
}

// submitForm creates a task from the draft. On success the draft is reset
// for the next entry; on a validation error the form stays open.
func (u *UI) submitForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}

	created, err := u.store.Create(u.draft)
	if err != nil {
		u.status = err.Error()
		return nil
	}

	u.draft = model.NewDraft()
	u.closeForm(gui)
	u.loadTasks()
	u.selected = max(len(u.tasks)-1, 0)
	u.status = u.saveStatus(fmt.Sprintf("added %q", created.Text))
	return nil
}

// cancelForm closes the form but keeps the draft for the next open.
func (u *UI) cancelForm(gui *gocui.Gui, _ *gocui.View) error {
	u.closeForm(gui)
	return nil
}

func (u *UI) closeForm(gui *gocui.Gui) {
	u.form = nil
	if gui != nil {
		_ = gui.DeleteView(viewForm)
		_, _ = gui.SetCurrentView(viewTasks)
	}
}

func (u *UI) nextFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	u.form.next()
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	u.form.prev()
	u.renderForm(view)
	return nil
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil {
		return false
	}
	form := ui.form

	if form.isChoice() {
		switch key {
		case gocui.KeyArrowRight, gocui.KeySpace:
			form.cycle(1)
		case gocui.KeyArrowLeft:
			form.cycle(-1)
		}
		ui.renderForm(view)
		return true
	}

	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		form.backspace()
	case gocui.KeySpace:
		form.appendRune(' ')
	case gocui.KeyCtrlU:
		form.clearField()
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		form.appendRune(ch)
	}

	ui.renderForm(view)
	return true
}

func (u *UI) toggleSelected(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	if err := u.store.Toggle(selected.ID); err != nil {
		u.status = err.Error()
		u.loadTasks()
		return nil
	}
	u.loadTasks()
	u.status = u.saveStatus("")
	return nil
}

func (u *UI) deleteSelected(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	if err := u.store.DeleteByID(selected.ID); err != nil {
		u.status = err.Error()
		u.loadTasks()
		return nil
	}
	u.loadTasks()
	u.status = u.saveStatus("deleted")
	return nil
}

func (u *UI) exportTasks(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.opts.ExportPath == "" {
		u.status = "export path is not configured"
		return nil
	}
	if err := export.WriteFile(u.opts.ExportPath, u.store.Tasks()); err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = "exported to " + u.opts.ExportPath
	return nil
}

// saveStatus replaces msg with the save error, if the last write failed.
func (u *UI) saveStatus(msg string) string {
	if u.opts.SaveErr == nil {
		return msg
	}
	if err := u.opts.SaveErr(); err != nil {
		return "not saved: " + err.Error()
	}
	return msg
}

func (u *UI) toggleHelp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() && !u.helpActive {
		return nil
	}
	u.helpActive = !u.helpActive
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	if gui != nil {
		_ = gui.DeleteView(viewHelp)
		_, _ = gui.SetCurrentView(viewTasks)
	}
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 16
	x0 := max((maxX-width)/2, 0)
	y0 := max((maxY-height)/2, 0)

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

func (u *UI) inputActive() bool {
	return u.form != nil || u.helpActive
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func helpText() string {
	return strings.Join([]string{
		"Navigation:",
		"  j/k or arrows move selection",
		"  mouse click selects a task",
		"",
		"Actions:",
		"  a add task | x or space toggle done | d delete task",
		"  p export printable report | r reload",
		"",
		"Form:",
		"  tab/arrows next field | enter save | esc close (draft is kept)",
		"  space/left/right cycle category and priority",
		"  ctrl+u clear field",
		"",
		"Tasks marked ! are overdue.",
		"",
		"? help | esc/q close help | q quit",
	}, "\n")
}

func applyViewStyle(view *gocui.View, highlight bool) {
	view.Frame = true
	view.Highlight = highlight
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	view.InactiveViewSelBgColor = gocui.ColorDefault
	if highlight {
		view.FrameColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}
