package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/ipfs/go-cid"
	"github.com/spf13/cobra"

	"xdao.co/cellnft/storage/bundle"
	"xdao.co/cellnft/storage/localfs"
)

func newBundleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Move verdicts between archives as TAR bundles",
	}

	var exportArchive []string
	var out string
	export := &cobra.Command{
		Use:   "export <evidence-cid>",
		Short: "Bundle an archived verdict with its snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cid.Decode(args[0])
			if err != nil {
				return err
			}
			if len(exportArchive) == 0 {
				return errors.New("--archive is required")
			}
			cas, err := localfs.Open(exportArchive...)
			if err != nil {
				return fail(err)
			}
			var buf bytes.Buffer
			if err := bundle.ExportVerdict(&buf, cas, id); err != nil {
				return fail(err)
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return wrapFail(err)
			}
			return wrapFail(os.WriteFile(out, buf.Bytes(), 0o644))
		},
	}
	export.Flags().StringSliceVar(&exportArchive, "archive", nil, "archive directory to read from (repeatable)")
	export.Flags().StringVarP(&out, "out", "o", "", "write the bundle here instead of stdout")

	var importArchive []string
	var ignoreUnknown bool
	imp := &cobra.Command{
		Use:   "import <bundle.tar>",
		Short: "Import a bundle into local archive directories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(importArchive) == 0 {
				return errors.New("--archive is required")
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fail(err)
			}
			defer f.Close()

			cas, err := localfs.Open(importArchive...)
			if err != nil {
				return fail(err)
			}
			labels, err := bundle.Import(f, cas, bundle.ImportOptions{IgnoreUnknown: ignoreUnknown})
			if err != nil {
				return fail(err)
			}
			names := make([]string, 0, len(labels))
			for name := range labels {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", name, labels[name])
			}
			return nil
		},
	}
	imp.Flags().StringSliceVar(&importArchive, "archive", nil, "archive directory to write to (repeatable)")
	imp.Flags().BoolVar(&ignoreUnknown, "ignore-unknown", false, "skip entries that are not blocks")

	cmd.AddCommand(export, imp)
	return cmd
}
