package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mote-dev/mote/internal/config"
	moteerrors "github.com/mote-dev/mote/internal/errors"
	"github.com/mote-dev/mote/pkg/memdom"
	"github.com/mote-dev/mote/pkg/snapshot"
)

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture and inspect document snapshots",
		Long: `Capture and inspect document snapshots.

Snapshots are serialized documents stored with a content hash,
useful for golden-file comparisons and debugging what a page
looked like at a point in time.`,
	}

	cmd.AddCommand(
		snapshotCaptureCmd(),
		snapshotListCmd(),
	)

	return cmd
}

func snapshotCaptureCmd() *cobra.Command {
	var (
		dir     string
		pageURL string
	)

	cmd := &cobra.Command{
		Use:   "capture <file>",
		Short: "Capture a snapshot of an HTML file",
		Long: `Parse an HTML file and store its snapshot in the snapshot directory.

The file goes through the same parse and serialize cycle a live
capture does, so hashes are comparable between the two.

Examples:
  mote snapshot capture index.html
  mote snapshot capture index.html --url=https://example.com/
  mote snapshot capture index.html --dir=/tmp/snaps`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotCapture(args[0], dir, pageURL)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Snapshot directory (default from mote.json)")
	cmd.Flags().StringVarP(&pageURL, "url", "u", "", "Page URL to record (default file://<path>)")

	return cmd
}

func snapshotListCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotList(dir)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Snapshot directory (default from mote.json)")

	return cmd
}

func runSnapshotCapture(file, dir, pageURL string) error {
	src, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return moteerrors.New("E141").
				WithDetail("File " + file + " does not exist")
		}
		return moteerrors.New("E141").Wrap(err)
	}

	if pageURL == "" {
		abs, err := filepath.Abs(file)
		if err != nil {
			abs = file
		}
		pageURL = "file://" + abs
	}

	env, err := memdom.New(string(src), memdom.WithURL(pageURL))
	if err != nil {
		return moteerrors.New("E143").Wrap(err)
	}

	html, err := env.HTML()
	if err != nil {
		return moteerrors.New("E143").Wrap(err)
	}

	store, err := openStore(dir)
	if err != nil {
		return err
	}

	snap := snapshot.New(pageURL, []byte(html))
	if err := store.Save(snap); err != nil {
		return moteerrors.New("E101").Wrap(err)
	}

	success("Captured %s", snap.ID)
	info("URL:   %s", snap.PageURL)
	info("Hash:  %s", snap.HTMLHash)
	info("Store: %s", store.Dir())

	return nil
}

func runSnapshotList(dir string) error {
	store, err := openStore(dir)
	if err != nil {
		return err
	}

	snaps, err := store.List()
	if err != nil {
		return moteerrors.New("E102").Wrap(err)
	}

	if len(snaps) == 0 {
		info("No snapshots in %s", store.Dir())
		return nil
	}

	for _, s := range snaps {
		fmt.Printf("  %s  %s  %s\n",
			s.ID[:8],
			s.TakenAt.Format("2006-01-02 15:04:05"),
			s.PageURL)
	}

	return nil
}

// openStore opens the disk store at dir, falling back to the configured
// snapshot directory when dir is empty.
func openStore(dir string) (*snapshot.DiskStore, error) {
	if dir == "" {
		cfg, err := config.LoadFromWorkingDir()
		if err != nil {
			var me *moteerrors.MoteError
			if !errors.As(err, &me) || me.Code != "E140" {
				return nil, err
			}
			cfg = config.New()
		}
		dir = cfg.SnapshotsPath()
	}

	store, err := snapshot.NewDiskStore(dir)
	if err != nil {
		return nil, moteerrors.New("E103").Wrap(err)
	}
	return store, nil
}
