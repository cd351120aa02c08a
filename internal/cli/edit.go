package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harry7799/heng-studio/internal/gallery"
)

const editHelp = `commands (positions are 1-based):
  list [PAGE]        show a page, or everything
  select N [N...]    select only these positions
  toggle N           add or remove one position
  range A B          extend the selection from A to B
  page P             select every entry on page P
  clear              clear the selection
  move N             move the selection so it starts at N
  up | down          shift the selection one step
  swap               exchange the two selected entries
  delete             remove the selected entries (asks first)
  drag N / drop N    drag position N (with the selection) onto N
  cancel             abandon a drag
  reset              discard unsaved changes
  save               write the manifest
  status             show selection and unsaved state
  quit               leave (quit! discards unsaved changes)`

func newEditCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "interactive ordering session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := deps.openSession(cmd.Context())
			if err != nil {
				return err
			}
			r := &repl{deps: deps, cmd: cmd, session: session, out: cmd.OutOrStdout()}
			return r.run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

type repl struct {
	deps    *Deps
	cmd     *cobra.Command
	session *gallery.Session
	in      *bufio.Scanner
	out     io.Writer
}

var errQuit = errors.New("quit")

func (r *repl) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintf(r.out, "%d entries, %d pages. Type help for commands.\n", r.session.Len(), r.session.Pages())

	r.in = bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, "> ")
		if !r.in.Scan() {
			break
		}
		fields := strings.Fields(r.in.Text())
		if len(fields) == 0 {
			continue
		}
		err := r.exec(ctx, fields[0], fields[1:])
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
	}
	if err := r.in.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if r.session.HasChanges() {
		fmt.Fprintln(r.out, "unsaved changes discarded")
	}
	return nil
}

func (r *repl) exec(ctx context.Context, name string, args []string) error {
	s := r.session

	switch name {
	case "help", "?":
		fmt.Fprintln(r.out, editHelp)
	case "list", "ls":
		if len(args) == 0 {
			printEntries(r.out, s.Entries(), s)
			return nil
		}
		page, err := r.position(args[0])
		if err != nil {
			return err
		}
		printEntries(r.out, s.Page(page-1), s)
	case "select":
		if len(args) == 0 {
			return gallery.ErrNoSelection
		}
		if err := selectPositions(s, strings.Join(args, ",")); err != nil {
			return err
		}
		r.status()
	case "toggle":
		n, err := r.arg(args, 0)
		if err != nil {
			return err
		}
		if err := s.Select(n-1, gallery.SelectToggle); err != nil {
			return err
		}
		r.status()
	case "range":
		a, err := r.arg(args, 0)
		if err != nil {
			return err
		}
		b, err := r.arg(args, 1)
		if err != nil {
			return err
		}
		if a > b {
			a, b = b, a
		}
		if a < 1 || b > s.Len() {
			return fmt.Errorf("%w: enter positions between 1 and %d", gallery.ErrOutOfRange, s.Len())
		}
		s.SelectRange(a-1, b)
		r.status()
	case "page":
		p, err := r.arg(args, 0)
		if err != nil {
			return err
		}
		s.SelectPage(p - 1)
		r.status()
	case "clear":
		s.ClearSelection()
		r.status()
	case "move":
		n, err := r.arg(args, 0)
		if err != nil {
			return err
		}
		if err := s.MoveToPosition(n); err != nil {
			return err
		}
		reportBlock(r.out, s)
	case "up", "down":
		delta := -1
		if name == "down" {
			delta = 1
		}
		if err := s.MoveBy(delta); err != nil {
			return err
		}
		reportBlock(r.out, s)
	case "swap":
		if err := s.Swap(); err != nil {
			return err
		}
		fmt.Fprintln(r.out, "swapped")
	case "delete":
		n := len(s.Selected())
		if n == 0 {
			return gallery.ErrNoSelection
		}
		if !r.confirm(fmt.Sprintf("remove %d entries? [y/N] ", n)) {
			fmt.Fprintln(r.out, "delete cancelled")
			return nil
		}
		removed, err := s.DeleteSelected()
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "removed %d entries\n", removed)
	case "drag":
		n, err := r.arg(args, 0)
		if err != nil {
			return err
		}
		if err := s.DragStart(n - 1); err != nil {
			return err
		}
		r.status()
	case "drop":
		n, err := r.arg(args, 0)
		if err != nil {
			return err
		}
		if err := s.DragDrop(n - 1); err != nil {
			return err
		}
		reportBlock(r.out, s)
	case "cancel":
		s.CancelDrag()
		r.status()
	case "reset":
		if err := s.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "reloaded %d entries\n", s.Len())
	case "save":
		return r.deps.save(ctx, r.cmd, s)
	case "status":
		r.status()
	case "quit", "exit", "q":
		if s.HasChanges() && !r.deps.flags.DryRun {
			return errors.New("unsaved changes; save first or use quit!")
		}
		return errQuit
	case "quit!", "q!":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (try help)", name)
	}
	return nil
}

// confirm reads the next input line and accepts only y or yes.
func (r *repl) confirm(prompt string) bool {
	fmt.Fprint(r.out, prompt)
	if !r.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(r.in.Text()))
	return answer == "y" || answer == "yes"
}

func (r *repl) status() {
	sel := r.session.Selected()
	positions := make([]string, len(sel))
	for i, idx := range sel {
		positions[i] = strconv.Itoa(idx + 1)
	}
	changed := ""
	if r.session.HasChanges() {
		changed = ", unsaved changes"
	}
	if len(positions) == 0 {
		fmt.Fprintf(r.out, "nothing selected%s\n", changed)
		return
	}
	fmt.Fprintf(r.out, "selected: %s%s\n", strings.Join(positions, ","), changed)
}

func (r *repl) arg(args []string, i int) (int, error) {
	if i >= len(args) {
		return 0, errors.New("missing position")
	}
	return r.position(args[i])
}

func (r *repl) position(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	return n, nil
}
