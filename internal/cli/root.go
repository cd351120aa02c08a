// Package cli implements galleryctl, the command line tool for reordering the
// gallery manifest either on disk or through a running API server.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/harry7799/heng-studio/internal/gallery"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

// Deps holds the IO streams and manifest source used by commands. A nil
// Manifest is resolved from the --server and --manifest flags.
type Deps struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	Manifest gallery.Manifest

	flags globalFlags
}

type globalFlags struct {
	ManifestPath string
	GalleryDir   string
	Server       string
	Token        string
	DryRun       bool
	IfUnchanged  bool
}

func (d *Deps) applyDefaults() {
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Err == nil {
		d.Err = os.Stderr
	}
}

// manifest returns the injected manifest or builds one from the flags.
func (d *Deps) manifest() gallery.Manifest {
	if d.Manifest != nil {
		return d.Manifest
	}
	if d.flags.Server != "" {
		return gallery.NewRemoteManifest(d.flags.Server, d.flags.Token)
	}
	return gallery.NewFileManifest(d.flags.ManifestPath)
}

func (d *Deps) openSession(ctx context.Context) (*gallery.Session, error) {
	session, err := gallery.Open(ctx, d.manifest())
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	return session, nil
}

// save persists the session unless --dry-run is set.
func (d *Deps) save(ctx context.Context, cmd *cobra.Command, session *gallery.Session) error {
	if d.flags.DryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "dry run: manifest not written")
		return nil
	}
	var (
		version string
		err     error
	)
	if d.flags.IfUnchanged {
		version, err = session.SaveIfUnchanged(ctx)
	} else {
		version, err = session.Save(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %d entries (version %s)\n", session.Len(), shortVersion(version))
	return nil
}

func NewRootCmd(deps *Deps) *cobra.Command {
	deps.applyDefaults()

	root := &cobra.Command{
		Use:           "galleryctl",
		Short:         "galleryctl reorders the studio gallery manifest",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.SetIn(deps.In)
	root.SetOut(deps.Out)
	root.SetErr(deps.Err)

	root.PersistentFlags().StringVar(&deps.flags.ManifestPath, "manifest", "public/gallery.json", "path to the gallery manifest")
	root.PersistentFlags().StringVar(&deps.flags.GalleryDir, "gallery-dir", "public/images/gallery", "directory scanned by init")
	root.PersistentFlags().StringVar(&deps.flags.Server, "server", "", "API base URL; edits the server's manifest instead of a local file")
	root.PersistentFlags().StringVar(&deps.flags.Token, "token", os.Getenv("ADMIN_TOKEN"), "admin token sent with --server (default $ADMIN_TOKEN)")
	root.PersistentFlags().BoolVar(&deps.flags.DryRun, "dry-run", false, "print the result without saving")
	root.PersistentFlags().BoolVar(&deps.flags.IfUnchanged, "if-unchanged", false, "fail instead of overwriting a manifest changed by someone else")

	root.AddCommand(
		newListCmd(deps),
		newInitCmd(deps),
		newMoveCmd(deps),
		newShiftCmd(deps),
		newSwapCmd(deps),
		newDeleteCmd(deps),
		newEditCmd(deps),
	)
	return root
}

// Run executes galleryctl with args and reports errors on the error stream.
func Run(ctx context.Context, args []string, deps *Deps) error {
	root := NewRootCmd(deps)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(deps.Err, "error: %v\n", err)
		return err
	}
	return nil
}

func shortVersion(v string) string {
	if len(v) > 12 {
		return v[:12]
	}
	return v
}
