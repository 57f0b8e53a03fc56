package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"xdao.co/cellnft/cell"
	"xdao.co/cellnft/evidence"
	"xdao.co/cellnft/nft"
	"xdao.co/cellnft/typeid"
)

func newClassifyCommand() *cobra.Command {
	var (
		script scriptFlags
		args   string
	)
	cmd := &cobra.Command{
		Use:   "classify <snapshot>",
		Short: "Print the action a snapshot performs on one token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			token, err := script.token(args)
			if err != nil {
				return err
			}
			snap, err := loadSnapshot(argv[0])
			if err != nil {
				return fail(err)
			}
			action, err := nft.Classify(snap, token)
			if err != nil {
				return &exitError{code: nft.ExitCode(err), err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), action)
			return nil
		},
	}
	script.bind(cmd)
	cmd.Flags().StringVar(&args, "args", "", "token type script args (hex)")
	_ = cmd.MarkFlagRequired("args")
	return cmd
}

func newTypeIDCommand(root *rootOptions) *cobra.Command {
	var output uint64
	cmd := &cobra.Command{
		Use:   "typeid <snapshot>",
		Short: "Derive the token id a snapshot assigns to an output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := root.hasher()
			if err != nil {
				return err
			}
			snap, err := loadSnapshot(args[0])
			if err != nil {
				return fail(err)
			}
			first, err := snap.FirstInput()
			if err != nil {
				return fail(err)
			}
			id := typeid.Derive(h, first, output)
			fmt.Fprintln(cmd.OutOrStdout(), cell.EncodeHex(id[:]))
			return nil
		},
	}
	cmd.Flags().Uint64Var(&output, "output", 0, "output index")
	return cmd
}

func newDecodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode token or factory cell data",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "token <hex>",
		Short: "Decode token data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := cell.DecodeHex(args[0])
			if err != nil {
				return err
			}
			t, err := nft.DecodeToken(raw)
			if err != nil {
				return &exitError{code: nft.ExitCode(err), err: err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "payload %s\n", cell.EncodeHex(t.Payload))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "factory <hex>",
		Short: "Decode factory data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := cell.DecodeHex(args[0])
			if err != nil {
				return err
			}
			f, err := nft.DecodeFactory(raw)
			if err != nil {
				return &exitError{code: nft.ExitCode(err), err: err}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name %q\n", f.Name)
			fmt.Fprintf(out, "symbol %q\n", f.Symbol)
			fmt.Fprintf(out, "token_uri %q\n", f.TokenURI)
			return nil
		},
	})
	return cmd
}

func newCIDCommand() *cobra.Command {
	var isEvidence bool
	cmd := &cobra.Command{
		Use:   "cid <file>",
		Short: "Print the CID of a snapshot or evidence document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if isEvidence {
				b, err := os.ReadFile(args[0])
				if err != nil {
					return fail(err)
				}
				id, err := evidence.CID(b)
				if err != nil {
					return fail(fmt.Errorf("invalid evidence: %w", err))
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			}
			snap, err := loadSnapshot(args[0])
			if err != nil {
				return fail(err)
			}
			id, err := snap.CID()
			if err != nil {
				return fail(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&isEvidence, "evidence", false, "file is an evidence document")
	return cmd
}

func newEvidenceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evidence",
		Short: "Inspect evidence documents",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "verify <file>",
		Short: "Check an evidence document's signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return fail(err)
			}
			signed, err := evidence.VerifySignature(b)
			if err != nil {
				return fail(fmt.Errorf("invalid: %w", err))
			}
			if signed {
				fmt.Fprintln(cmd.OutOrStdout(), "OK")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "unsigned")
			}
			return nil
		},
	})
	return cmd
}
