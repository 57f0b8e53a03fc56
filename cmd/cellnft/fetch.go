package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/spf13/cobra"

	"xdao.co/cellnft/cell"
	"xdao.co/cellnft/storage"
	"xdao.co/cellnft/storage/grpccas"
	"xdao.co/cellnft/storage/localfs"
)

type fetchOptions struct {
	Remote  string
	Archive []string
	Out     string
	Timeout time.Duration
}

func newFetchCommand() *cobra.Command {
	opts := &fetchOptions{}
	cmd := &cobra.Command{
		Use:   "fetch <cid>",
		Short: "Fetch an archived snapshot or evidence document",
		Long: `Fetch an archived object by CID from a cellnftd (--remote) or from local
archive directories (--archive).

Evidence documents are written verbatim. Snapshots are written as a YAML
fixture, or as canonical CBOR when --out ends in .cbor.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cid.Decode(args[0])
			if err != nil {
				return err
			}
			if (opts.Remote == "") == (len(opts.Archive) == 0) {
				return errors.New("exactly one of --remote or --archive is required")
			}

			var r storage.Reader
			if opts.Remote != "" {
				c, err := grpccas.Dial(opts.Remote, grpccas.DialOptions{Timeout: opts.Timeout})
				if err != nil {
					return fail(err)
				}
				defer c.Close()
				c.Timeout = opts.Timeout
				r = c
			} else {
				cas, err := localfs.Open(opts.Archive...)
				if err != nil {
					return fail(err)
				}
				r = cas
			}

			out, err := fetchObject(r, id, opts.Out)
			if err != nil {
				return fail(err)
			}
			if opts.Out != "" {
				return wrapFail(os.WriteFile(opts.Out, out, 0o644))
			}
			_, err = cmd.OutOrStdout().Write(out)
			return wrapFail(err)
		},
	}
	cmd.Flags().StringVar(&opts.Remote, "remote", "", "cellnftd address")
	cmd.Flags().StringSliceVar(&opts.Archive, "archive", nil, "local archive directory (repeatable)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write to this file instead of stdout")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "remote call timeout")
	return cmd
}

func fetchObject(r storage.Reader, id cid.Cid, outPath string) ([]byte, error) {
	switch id.Prefix().Codec {
	case cid.Raw:
		doc, err := storage.ReadEvidence(r, id)
		if err != nil {
			return nil, err
		}
		return doc.Bytes, nil
	case cid.DagCBOR:
		snap, err := storage.ReadSnapshot(r, id)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(filepath.Ext(outPath), ".cbor") {
			return snap.MarshalCBOR()
		}
		return cell.MarshalFixture(snap)
	default:
		return nil, errors.New("cid is neither a snapshot nor an evidence document")
	}
}

func wrapFail(err error) error {
	if err != nil {
		return fail(err)
	}
	return nil
}
