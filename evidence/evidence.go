// Package evidence renders verification verdicts as canonical, optionally
// signed text documents that can be archived and re-verified.
package evidence

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"xdao.co/cellnft/cell"
	"xdao.co/cellnft/keys"
	"xdao.co/cellnft/nft"
)

const (
	Preamble  = "-----BEGIN CELLNFT VERDICT-----"
	Postamble = "-----END CELLNFT VERDICT-----"

	Format = "cellnft-verdict-1"
)

// Verdict is everything a document binds: the snapshot that was verified, how
// token types were selected and hashed, and one result per token group.
type Verdict struct {
	SnapshotCID string
	CodeHash    [cell.HashLen]byte
	HashType    byte
	Hasher      string
	Script      string
	Results     []nft.Result
}

// Accepted reports whether every group verified.
func (v Verdict) Accepted() bool { return nft.FirstRejection(v.Results) == nil }

type Options struct {
	VerifierID  string
	GeneratedAt time.Time // informational only; zero means omit

	// Signer, when set, fills the CRYPTO section and signs the document.
	Signer keys.Signer
}

// Render produces the canonical document for v. Sections are always present
// and their order is fixed; lines inside META, INPUTS, RESULT and CRYPTO are
// sorted, while GROUPS keeps the order of v.Results.
func Render(v Verdict, opts Options) ([]byte, error) {
	verifierID := opts.VerifierID
	if verifierID == "" {
		verifierID = "cellnft"
	}
	script := v.Script
	if script == "" {
		script = "nft"
	}

	var sb strings.Builder
	sb.WriteString(Preamble)
	sb.WriteString("\n")

	meta := []string{
		"Format: " + Format,
		"Script: " + script,
		"Verifier-ID: " + verifierID,
		"Version: 1",
	}
	if !opts.GeneratedAt.IsZero() {
		meta = append(meta, "Generated-At: "+opts.GeneratedAt.UTC().Format(time.RFC3339))
	}
	writeSorted(&sb, "META", meta)

	inputs := []string{
		"Code-Hash: " + cell.EncodeHex(v.CodeHash[:]),
		"Hash-Type: " + strconv.Itoa(int(v.HashType)),
		"Hasher: " + orNone(v.Hasher),
		"Snapshot-CID: " + orNone(v.SnapshotCID),
	}
	writeSorted(&sb, "INPUTS", inputs)

	result := []string{
		"Accepted: " + strconv.FormatBool(v.Accepted()),
		"Groups: " + strconv.Itoa(len(v.Results)),
	}
	if err := nft.FirstRejection(v.Results); err != nil {
		result = append(result,
			"Exit-Code: "+strconv.Itoa(nft.ExitCode(err)),
			"Rule-ID: "+orNone(nft.RuleID(err)),
		)
	}
	writeSorted(&sb, "RESULT", result)

	sb.WriteString("GROUPS\n")
	for i, r := range v.Results {
		fmt.Fprintf(&sb, "Group: %d\n", i)
		sb.WriteString("Type-Args: " + cell.EncodeHex(r.Type.Args) + "\n")
		action := "none"
		if r.Action != 0 {
			action = r.Action.String()
		}
		sb.WriteString("Action: " + action + "\n")
		sb.WriteString("Accepted: " + strconv.FormatBool(r.Accepted()) + "\n")
		if r.Err != nil {
			sb.WriteString("Kind: " + orNone(string(nft.KindOf(r.Err))) + "\n")
			sb.WriteString("Rule-ID: " + orNone(nft.RuleID(r.Err)) + "\n")
			sb.WriteString("Exit-Code: " + strconv.Itoa(nft.ExitCode(r.Err)) + "\n")
		}
	}
	sb.WriteString("\n")

	var crypto []string
	if opts.Signer != nil {
		crypto = []string{
			"Hash-Alg: " + opts.Signer.HashAlg(),
			"Signature-Alg: " + opts.Signer.Alg(),
			"Signature: 0",
			"Verifier-Key: " + opts.Signer.PublicKey(),
		}
	}
	writeSorted(&sb, "CRYPTO", crypto)

	sb.WriteString(Postamble)
	sb.WriteString("\n")
	out := sb.String()

	if opts.Signer != nil {
		scope, err := signatureScope([]byte(out))
		if err != nil {
			return nil, err
		}
		sig, err := opts.Signer.Sign(scope)
		if err != nil {
			return nil, fmt.Errorf("evidence: sign: %w", err)
		}
		out = strings.Replace(out, "Signature: 0", "Signature: "+sig, 1)
	}
	return []byte(out), nil
}

func writeSorted(sb *strings.Builder, section string, lines []string) {
	lines = append([]string(nil), lines...)
	sort.Strings(lines)
	sb.WriteString(section)
	sb.WriteString("\n")
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// signatureScope is the document with its Signature line removed.
func signatureScope(doc []byte) ([]byte, error) {
	lines := strings.Split(string(doc), "\n")
	out := make([]string, 0, len(lines))
	removed := false
	for _, l := range lines {
		if strings.HasPrefix(l, "Signature: ") {
			if removed {
				return nil, fmt.Errorf("evidence: multiple Signature lines")
			}
			removed = true
			continue
		}
		out = append(out, l)
	}
	if !removed {
		return nil, fmt.Errorf("evidence: missing Signature line")
	}
	return []byte(strings.Join(out, "\n")), nil
}
