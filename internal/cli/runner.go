package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Joseda-hg/studyplanner/internal/export"
	"github.com/Joseda-hg/studyplanner/internal/model"
	"github.com/Joseda-hg/studyplanner/internal/task"
)

// Runner executes one-shot subcommands against a loaded task store.
type Runner struct {
	Store      *task.Store
	Out        io.Writer
	Err        io.Writer
	ExportPath string
	Now        func() time.Time
	// SaveErr reports the outcome of the last snapshot write.
	SaveErr func() error
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func (r *Runner) Run(args []string) int {
	if len(args) == 0 {
		r.PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		r.PrintHelp()
		return 0
	case "ls":
		return r.doList(a)
	case "add":
		return r.doAdd(a)
	case "done":
		return r.doIndexed("done", a, r.Store.ToggleComplete, "toggled")
	case "rm":
		return r.doIndexed("rm", a, r.Store.Delete, "removed")
	case "export":
		return r.doExport(a)
	}

	fail(r.Err, "unknown subcommand: "+cmd)
	fmt.Fprintln(r.Err)
	r.PrintHelp()
	return 2
}

func (r *Runner) PrintHelp() {
	fmt.Fprint(r.Out, `studyplanner - a personal task tracker

Usage:
  studyplanner [flags]                 Start the interactive UI
  studyplanner [flags] <subcommand>    Run a single command

Subcommands:
  add [-c category] [-p priority] [-due YYYY-MM-DD] <text...>
                     Add a task (category: General|Study|Work|Personal,
                     priority: High|Medium|Low)
  ls [-group]        List tasks, optionally grouped by pending/done
  done <index>       Toggle completion for the task at 1-based index
  rm <index>         Remove the task at 1-based index
  export [-o path] [-format html|text]
                     Write the printable report ("-o -" writes to stdout)

Examples:
  studyplanner add -c Study -p High -due 2024-06-12 "Revise chapter 3"
  studyplanner ls
  studyplanner done 2
  studyplanner export -format text
`)
}

func (r *Runner) doAdd(args []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(r.Err)
	category := fs.String("c", string(model.CategoryGeneral), "category")
	priority := fs.String("p", string(model.PriorityMedium), "priority")
	due := fs.String("due", "", "due date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	draft := model.Draft{
		Text:     strings.Join(fs.Args(), " "),
		Category: model.Category(*category),
		Priority: model.Priority(*priority),
		DueDate:  *due,
	}
	created, err := r.Store.Create(draft)
	if err != nil {
		fail(r.Err, "add: "+err.Error())
		if errors.Is(err, task.ErrEmptyText) {
			fmt.Fprintln(r.Err, mutedStyle.Render("usage: studyplanner add [-c category] [-p priority] [-due date] <text...>"))
		}
		return 2
	}
	if code := r.checkSaved(); code != 0 {
		return code
	}
	ok(r.Out, fmt.Sprintf("added %q (#%d)", created.Text, r.Store.Len()))
	return 0
}

func (r *Runner) doIndexed(name string, args []string, op func(int) error, verb string) int {
	if len(args) != 1 {
		fail(r.Err, fmt.Sprintf("usage: studyplanner %s <index>", name))
		return 2
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fail(r.Err, name+": not a number: "+args[0])
		return 2
	}
	if err := op(n - 1); err != nil {
		if errors.Is(err, task.ErrIndexOutOfRange) {
			fail(r.Err, fmt.Sprintf("index out of range: have %d, got %d", r.Store.Len(), n))
			fmt.Fprintln(r.Err, mutedStyle.Render("Hint: run `studyplanner ls` to see valid indexes"))
			return 2
		}
		fail(r.Err, name+": "+err.Error())
		return 1
	}
	if code := r.checkSaved(); code != 0 {
		return code
	}
	ok(r.Out, verb)
	return 0
}

func (r *Runner) doList(args []string) int {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(r.Err)
	group := fs.Bool("group", false, "group output by pending/done")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	tasks := r.Store.Tasks()
	today := model.Today(r.now())
	done, pending := r.Store.Stats()

	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		titleStyle.Render("Smart Study Planner"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Total"), len(tasks),
	)

	lines := []string{header, mutedStyle.Render(progressBar(done, len(tasks), 28)), ""}
	if *group {
		lines = append(lines, groupLines(tasks, today)...)
	} else {
		lines = append(lines, flatLines(tasks, today)...)
	}
	panel(r.Out, lines)
	return 0
}

func (r *Runner) doExport(args []string) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(r.Err)
	out := fs.String("o", r.ExportPath, "output path, - for stdout")
	format := fs.String("format", "html", "html or text")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	tasks := r.Store.Tasks()
	switch *format {
	case "text":
		fmt.Fprint(r.Out, export.Text(tasks))
		return 0
	case "html":
		if *out == "-" || *out == "" {
			if err := export.HTML(r.Out, tasks); err != nil {
				fail(r.Err, "export: "+err.Error())
				return 1
			}
			return 0
		}
		if err := export.WriteFile(*out, tasks); err != nil {
			fail(r.Err, "export: "+err.Error())
			return 1
		}
		ok(r.Out, "exported to "+*out)
		return 0
	default:
		fail(r.Err, "export: unknown format: "+*format)
		return 2
	}
}

func (r *Runner) checkSaved() int {
	if r.SaveErr == nil {
		return 0
	}
	if err := r.SaveErr(); err != nil {
		fail(r.Err, "save: "+err.Error())
		return 1
	}
	return 0
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

type indexedTask struct {
	index int
	task  model.Task
}

func flatLines(tasks []model.Task, today time.Time) []string {
	items := make([]indexedTask, 0, len(tasks))
	for i, t := range tasks {
		items = append(items, indexedTask{index: i, task: t})
	}
	return renderLines(items, today)
}

func groupLines(tasks []model.Task, today time.Time) []string {
	var pend, done []indexedTask
	for i, t := range tasks {
		if t.Completed {
			done = append(done, indexedTask{index: i, task: t})
		} else {
			pend = append(pend, indexedTask{index: i, task: t})
		}
	}

	lines := []string{accentStyle.Render("Pending")}
	if len(pend) == 0 {
		lines = append(lines, mutedStyle.Render("(none)"))
	} else {
		lines = append(lines, renderLines(pend, today)...)
	}
	lines = append(lines, "", accentStyle.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, mutedStyle.Render("(none)"))
	} else {
		lines = append(lines, renderLines(done, today)...)
	}
	return lines
}

func renderLines(items []indexedTask, today time.Time) []string {
	if len(items) == 0 {
		return []string{mutedStyle.Render("no tasks")}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		t := item.task
		box := mutedStyle.Render(boxUnchecked)
		text := t.Text
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		if t.Completed {
			box = successStyle.Render(boxChecked)
			text = doneStyle.Render(text)
		}

		due := "None"
		if t.DueDate != "" {
			due = t.DueDate
		}
		if model.IsOverdue(t, today) {
			due = overdueStyle.Render(due + " overdue")
		}

		out = append(out, fmt.Sprintf("%s %s %s  %s · %s · due %s",
			mutedStyle.Render(fmt.Sprintf("%2d.", item.index+1)),
			box, text,
			string(t.Category), priorityLabel(string(t.Priority)), due))
	}
	return out
}
