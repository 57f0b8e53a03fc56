package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"xdao.co/cellnft/evidence"
	"xdao.co/cellnft/internal/archive"
	"xdao.co/cellnft/keys"
	"xdao.co/cellnft/nft"
	"xdao.co/cellnft/verifysvc"
)

type verifyOptions struct {
	script       scriptFlags
	Evidence     string
	KeyFile      string
	SignatureAlg string
	Archive      []string
	ArchiveIPFS  string
	Remote       string
	Timeout      time.Duration
}

func newVerifyCommand(root *rootOptions) *cobra.Command {
	opts := &verifyOptions{}
	cmd := &cobra.Command{
		Use:   "verify <snapshot>",
		Short: "Verify every token group in a snapshot",
		Long: `Verify every token group touched by a snapshot with the standard
token script (base + only-owner).

Exit status is 0 when all groups verify, otherwise the exit code of the
first rejection (4-10).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Remote != "" {
				return runRemoteVerify(cmd.Context(), root, opts, args[0], cmd.OutOrStdout())
			}
			return runVerify(root, opts, args[0], cmd.OutOrStdout())
		},
	}
	opts.script.bind(cmd)
	cmd.Flags().StringVar(&opts.Evidence, "evidence", "", "write the evidence document to this file")
	cmd.Flags().StringVar(&opts.KeyFile, "key-file", "", "hex seed file for signing evidence")
	cmd.Flags().StringVar(&opts.SignatureAlg, "signature-alg", keys.AlgEd25519, "evidence signature algorithm (ed25519, dilithium3)")
	cmd.Flags().StringSliceVar(&opts.Archive, "archive", nil, "archive snapshot and evidence into this directory (repeatable)")
	cmd.Flags().StringVar(&opts.ArchiveIPFS, "archive-ipfs", "", "also archive into the repo of this ipfs binary")
	cmd.Flags().StringVar(&opts.Remote, "remote", "", "verify on a cellnftd at this address instead of locally")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "remote call timeout")
	return cmd
}

func runVerify(root *rootOptions, opts *verifyOptions, path string, out io.Writer) error {
	codeHash, err := opts.script.codeHash()
	if err != nil {
		return err
	}
	h, err := root.hasher()
	if err != nil {
		return err
	}
	snap, err := loadSnapshot(path)
	if err != nil {
		return fail(err)
	}
	snapID, err := snap.CID()
	if err != nil {
		return fail(err)
	}

	script := nft.Compose("nft", nft.Base{Hasher: h}, nft.OnlyOwner{})
	results, err := script.VerifyAll(snap, codeHash, opts.script.HashType)
	if err != nil {
		return &exitError{code: nft.ExitCode(err), err: err}
	}

	var signer keys.Signer
	if opts.KeyFile != "" {
		rootSeed, err := keys.LoadSeedFile(opts.KeyFile)
		if err != nil {
			return fail(err)
		}
		seed, err := keys.DeriveSeed(rootSeed, opts.SignatureAlg)
		if err != nil {
			return fail(err)
		}
		if signer, err = keys.NewSigner(opts.SignatureAlg, "", seed); err != nil {
			return err
		}
	}
	doc, err := evidence.Render(evidence.Verdict{
		SnapshotCID: snapID.String(),
		CodeHash:    codeHash,
		HashType:    opts.script.HashType,
		Hasher:      h.Name(),
		Script:      script.ID,
		Results:     results,
	}, evidence.Options{Signer: signer})
	if err != nil {
		return fail(err)
	}
	docID, err := evidence.CID(doc)
	if err != nil {
		return fail(err)
	}

	if opts.Evidence != "" {
		if err := os.WriteFile(opts.Evidence, doc, 0o644); err != nil {
			return fail(err)
		}
	}
	a, err := archive.Open(opts.Archive, opts.ArchiveIPFS)
	if err != nil {
		return fail(err)
	}
	if a != nil {
		if _, err := a.PutSnapshot(snap); err != nil {
			return fail(err)
		}
		if _, err := a.PutEvidence(doc); err != nil {
			return fail(err)
		}
	}

	for i, r := range results {
		printResult(out, i, r.Action.String(), r.Err == nil, nft.RuleID(r.Err), errString(r.Err))
	}
	fmt.Fprintf(out, "snapshot %s\n", snapID)
	fmt.Fprintf(out, "evidence %s\n", docID)

	if first := nft.FirstRejection(results); first != nil {
		return &exitError{code: nft.ExitCode(first)}
	}
	return nil
}

func runRemoteVerify(ctx context.Context, root *rootOptions, opts *verifyOptions, path string, out io.Writer) error {
	codeHash, err := opts.script.codeHash()
	if err != nil {
		return err
	}
	snap, err := loadSnapshot(path)
	if err != nil {
		return fail(err)
	}
	req, err := verifysvc.NewRequest(snap, codeHash, opts.script.HashType, root.Hasher, root.HashLabel)
	if err != nil {
		return fail(err)
	}

	c, err := verifysvc.Dial(opts.Remote, verifysvc.DialOptions{Timeout: opts.Timeout})
	if err != nil {
		return fail(err)
	}
	defer c.Close()
	c.Timeout = opts.Timeout

	resp, err := c.Verify(ctx, req)
	if err != nil {
		return fail(err)
	}
	if opts.Evidence != "" {
		if err := os.WriteFile(opts.Evidence, resp.Evidence, 0o644); err != nil {
			return fail(err)
		}
	}

	for i, r := range resp.Results {
		action := r.Action
		if action == "" {
			action = "unknown"
		}
		printResult(out, i, action, r.Accepted(), r.RuleID, r.Message)
	}
	fmt.Fprintf(out, "snapshot %s\n", resp.SnapshotCID)
	fmt.Fprintf(out, "evidence %s\n", resp.EvidenceCID)
	if !resp.Accepted {
		return &exitError{code: resp.ExitCode}
	}
	return nil
}

func printResult(out io.Writer, i int, action string, accepted bool, ruleID, msg string) {
	if accepted {
		fmt.Fprintf(out, "group %d %s accepted\n", i, action)
		return
	}
	fmt.Fprintf(out, "group %d %s rejected %s: %s\n", i, action, ruleID, msg)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
