package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"github.com/pterm/pterm"

	"ember/internal/config"
	"ember/internal/jit"
	"ember/internal/vm"
)

// REPL owns the terminal side of a session: the numbered prompt, input
// history, exit tokens, and the colon commands for inspecting the linked
// session.
type REPL struct {
	cfg  *config.Config
	ctrl *Controller
	out  io.Writer
}

func New(cfg *config.Config, session *jit.Session, out io.Writer) *REPL {
	return &REPL{
		cfg:  cfg,
		ctrl: NewController(session, cfg.Playground, cfg.ModuleCachePath),
		out:  out,
	}
}

// Controller exposes the turn controller, mainly for driving the REPL
// programmatically.
func (r *REPL) Controller() *Controller {
	return r.ctrl
}

// Run reads inputs until an exit token or end of input. A terminal gets
// line editing and history; piped input is read line by line.
func (r *REPL) Run() error {
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return r.runInteractive()
	}
	return r.runPiped(os.Stdin)
}

func (r *REPL) runInteractive() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if r.cfg.HistoryFile != "" {
		if f, err := os.Open(r.cfg.HistoryFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	defer r.saveHistory(line)

	fmt.Fprintln(r.out, pterm.FgLightCyan.Sprint("ember")+" interactive session, :help for commands")

	for {
		input, err := line.Prompt(fmt.Sprintf("%d> ", r.ctrl.Turn()))
		if err == liner.ErrPromptAborted {
			continue
		}
		if err == io.EOF {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if r.isExit(input) {
			return nil
		}
		if strings.HasPrefix(input, ":") {
			r.command(input)
			continue
		}
		r.Execute(input)
	}
}

func (r *REPL) runPiped(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if r.isExit(input) {
			return nil
		}
		if strings.HasPrefix(input, ":") {
			r.command(input)
			continue
		}
		r.Execute(input)
	}
	return scanner.Err()
}

// Execute runs one input as a turn and prints what it produced: skip
// notices for rejected declarations, the turn's error if it failed, and
// the captured result if it has one.
func (r *REPL) Execute(input string) {
	result, err := r.ctrl.ExecuteLine(input)
	if result != nil {
		for _, skipped := range result.Skipped {
			fmt.Fprintln(r.out, pterm.FgYellow.Sprint(skipped.Error()+"; skipping"))
		}
	}
	if err != nil {
		fmt.Fprintln(r.out, pterm.FgRed.Sprint(err.Error()))
		return
	}
	if result.HasValue {
		fmt.Fprintf(r.out, "%s: %s = %s\n",
			result.Result, result.ResultType, vm.FormatValue(result.Value))
	}
}

func (r *REPL) isExit(input string) bool {
	for _, token := range r.cfg.ExitTokens {
		if input == token {
			return true
		}
	}
	return false
}

func (r *REPL) command(input string) {
	switch input {
	case ":help":
		fmt.Fprintln(r.out, "  :help      show this help")
		fmt.Fprintln(r.out, "  :stats     linked session statistics")
		fmt.Fprintln(r.out, "  :symbols   list every bound symbol")
		fmt.Fprintf(r.out, "  %s\n", strings.Join(r.cfg.ExitTokens, ", ")+"    leave the session")
	case ":stats":
		st := r.ctrl.Session().Stats()
		fmt.Fprintf(r.out, "  units:   %s\n", humanize.Comma(int64(st.Units)))
		fmt.Fprintf(r.out, "  code:    %s\n", humanize.Bytes(uint64(st.CodeBytes)))
		fmt.Fprintf(r.out, "  symbols: %s\n", humanize.Comma(int64(st.Symbols)))
		fmt.Fprintf(r.out, "  slots:   %s\n", humanize.Comma(int64(st.Slots)))
	case ":symbols":
		for _, sym := range r.ctrl.Session().Symbols() {
			fmt.Fprintln(r.out, "  "+sym)
		}
	default:
		fmt.Fprintln(r.out, pterm.FgYellow.Sprint("unknown command "+input))
	}
}

func (r *REPL) saveHistory(line *liner.State) {
	if r.cfg.HistoryFile == "" {
		return
	}
	f, err := os.Create(r.cfg.HistoryFile)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}
