package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"xdao.co/cellnft/cell"
	"xdao.co/cellnft/typeid"
)

type rootOptions struct {
	Hasher    string
	HashLabel string
}

func (o *rootOptions) hasher() (typeid.Hasher, error) {
	return typeid.ByName(o.Hasher, o.HashLabel)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "cellnft",
		Short:         "Verify token-cell transactions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.Hasher, "hasher", "blake2b", "token id hasher ("+strings.Join(typeid.Names(), ", ")+")")
	cmd.PersistentFlags().StringVar(&opts.HashLabel, "hash-label", "", "hasher personalization label (default "+typeid.DefaultLabel+")")

	cmd.AddCommand(newVerifyCommand(opts))
	cmd.AddCommand(newClassifyCommand())
	cmd.AddCommand(newTypeIDCommand(opts))
	cmd.AddCommand(newDecodeCommand())
	cmd.AddCommand(newCIDCommand())
	cmd.AddCommand(newEvidenceCommand())
	cmd.AddCommand(newFetchCommand())
	cmd.AddCommand(newBundleCommand())
	return cmd
}

// loadSnapshot reads a snapshot: *.cbor files hold the canonical CBOR form,
// anything else is a YAML fixture.
func loadSnapshot(path string) (*cell.Snapshot, error) {
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return cell.UnmarshalSnapshot(b)
	}
	return cell.LoadFixture(path)
}

// scriptFlags select the token type script family: a code hash and hash type.
type scriptFlags struct {
	CodeHash string
	HashType uint8
}

func (f *scriptFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.CodeHash, "code-hash", "", "token type script code hash (hex)")
	cmd.Flags().Uint8Var(&f.HashType, "hash-type", cell.HashTypeType, "token type script hash type")
	_ = cmd.MarkFlagRequired("code-hash")
}

func (f *scriptFlags) codeHash() ([cell.HashLen]byte, error) {
	h, err := cell.ParseHash(f.CodeHash)
	if err != nil {
		return h, fmt.Errorf("--code-hash: %w", err)
	}
	return h, nil
}

// token builds the full token type script from the flags and hex args.
func (f *scriptFlags) token(argsHex string) (cell.Script, error) {
	h, err := f.codeHash()
	if err != nil {
		return cell.Script{}, err
	}
	args, err := cell.DecodeHex(argsHex)
	if err != nil {
		return cell.Script{}, fmt.Errorf("--args: %w", err)
	}
	return cell.Script{CodeHash: h, HashType: f.HashType, Args: args}, nil
}
