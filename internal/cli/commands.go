package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harry7799/heng-studio/internal/gallery"
	"github.com/harry7799/heng-studio/internal/models"
)

func newListCmd(deps *Deps) *cobra.Command {
	var (
		asYAML bool
		page   int
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "print the manifest in order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := deps.openSession(cmd.Context())
			if err != nil {
				return err
			}
			entries := session.Entries()
			if page > 0 {
				entries = session.Page(page - 1)
			}
			if asYAML {
				out, err := yaml.Marshal(entries)
				if err != nil {
					return fmt.Errorf("failed to encode entries: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			printEntries(cmd.OutOrStdout(), entries, session)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print entries as YAML")
	cmd.Flags().IntVar(&page, "page", 0, "print only this 1-based page")
	return cmd
}

func newInitCmd(deps *Deps) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "build the manifest from the numbered files in the gallery directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manifest := deps.manifest()

			current, version, err := manifest.Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to load manifest: %w", err)
			}
			if len(current) > 0 && !force {
				return fmt.Errorf("manifest already has %d entries; use --force to replace it", len(current))
			}

			scanned, err := gallery.Scan(deps.flags.GalleryDir, gallery.DefaultURLPrefix)
			if err != nil {
				return fmt.Errorf("failed to scan %s: %w", deps.flags.GalleryDir, err)
			}
			if deps.flags.DryRun {
				printEntries(cmd.OutOrStdout(), scanned, nil)
				fmt.Fprintln(cmd.OutOrStdout(), "dry run: manifest not written")
				return nil
			}

			ifMatch := ""
			if deps.flags.IfUnchanged {
				ifMatch = version
			}
			newVersion, err := manifest.Save(ctx, scanned, ifMatch)
			if err != nil {
				return fmt.Errorf("failed to save manifest: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %d entries (version %s)\n", len(scanned), shortVersion(newVersion))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "replace a non-empty manifest")
	return cmd
}

func newMoveCmd(deps *Deps) *cobra.Command {
	var (
		selection string
		to        int
	)

	cmd := &cobra.Command{
		Use:   "move",
		Short: "move the selected positions so the block starts at --to",
		Example: `  galleryctl move --select 2,4 --to 1
  galleryctl move --select 10-14 --to 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := deps.openSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := selectPositions(session, selection); err != nil {
				return err
			}
			if err := session.MoveToPosition(to); err != nil {
				return err
			}
			reportBlock(cmd.OutOrStdout(), session)
			return deps.save(cmd.Context(), cmd, session)
		},
	}

	cmd.Flags().StringVar(&selection, "select", "", "1-based positions to move, e.g. 2,4,7-9")
	cmd.Flags().IntVar(&to, "to", 0, "1-based target position")
	_ = cmd.MarkFlagRequired("select")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newShiftCmd(deps *Deps) *cobra.Command {
	var (
		selection string
		by        int
	)

	cmd := &cobra.Command{
		Use:   "shift",
		Short: "shift the selected positions one step up (--by -1) or down (--by 1)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := deps.openSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := selectPositions(session, selection); err != nil {
				return err
			}
			if err := session.MoveBy(by); err != nil {
				return err
			}
			reportBlock(cmd.OutOrStdout(), session)
			return deps.save(cmd.Context(), cmd, session)
		},
	}

	cmd.Flags().StringVar(&selection, "select", "", "1-based positions to shift")
	cmd.Flags().IntVar(&by, "by", 0, "-1 to move up, 1 to move down")
	_ = cmd.MarkFlagRequired("select")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

func newSwapCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "swap POSITION POSITION",
		Short: "exchange two entries",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := deps.openSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := selectPositions(session, strings.Join(args, ",")); err != nil {
				return err
			}
			if err := session.Swap(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "swapped %s and %s\n", args[0], args[1])
			return deps.save(cmd.Context(), cmd, session)
		},
	}
}

func newDeleteCmd(deps *Deps) *cobra.Command {
	var (
		selection string
		yes       bool
	)

	cmd := &cobra.Command{
		Use:     "delete",
		Aliases: []string{"rm"},
		Short:   "remove entries from the manifest (image files are left in place)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete without --yes")
			}
			session, err := deps.openSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := selectPositions(session, selection); err != nil {
				return err
			}
			removed, err := session.DeleteSelected()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries\n", removed)
			return deps.save(cmd.Context(), cmd, session)
		},
	}

	cmd.Flags().StringVar(&selection, "select", "", "1-based positions to remove")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the removal")
	_ = cmd.MarkFlagRequired("select")
	return cmd
}

// parsePositions turns "2,4,7-9" into sorted, de-duplicated 1-based positions.
func parsePositions(s string) ([]int, error) {
	seen := map[int]struct{}{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi := part, part
		if i := strings.Index(part, "-"); i > 0 {
			lo, hi = part[:i], part[i+1:]
		}
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid position %q", part)
		}
		end, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("invalid position %q", part)
		}
		if start > end {
			start, end = end, start
		}
		for p := start; p <= end; p++ {
			seen[p] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil, gallery.ErrNoSelection
	}
	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Ints(out)
	return out, nil
}

func selectPositions(session *gallery.Session, s string) error {
	positions, err := parsePositions(s)
	if err != nil {
		return err
	}
	session.ClearSelection()
	for _, p := range positions {
		if err := session.Select(p-1, gallery.SelectToggle); err != nil {
			return fmt.Errorf("%w: position %d (gallery has %d entries)", gallery.ErrOutOfRange, p, session.Len())
		}
	}
	return nil
}

// reportBlock prints where the selected block ended up.
func reportBlock(w io.Writer, session *gallery.Session) {
	sel := session.Selected()
	if len(sel) == 0 {
		return
	}
	first, last := sel[0]+1, sel[len(sel)-1]+1
	page := gallery.PageOf(sel[0]) + 1
	if first == last {
		fmt.Fprintf(w, "moved to position %d (page %d)\n", first, page)
		return
	}
	fmt.Fprintf(w, "moved to positions %d-%d (page %d)\n", first, last, page)
}

func printEntries(w io.Writer, entries []models.GalleryEntry, session *gallery.Session) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "(empty)")
		return
	}
	for _, e := range entries {
		mark := " "
		if session != nil && session.IsSelected(e.Number-1) {
			mark = "*"
		}
		fmt.Fprintf(w, "%s%4d  %-24s %s\n", mark, e.Number, e.Name, e.URL)
	}
}
