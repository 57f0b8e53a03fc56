package evidence

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"xdao.co/cellnft/cell"
	"xdao.co/cellnft/keys"
	"xdao.co/cellnft/nft"
)

func sampleVerdict(rejected bool) Verdict {
	var code [cell.HashLen]byte
	code[0] = 0xA0
	v := Verdict{
		SnapshotCID: "bafyreigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi",
		CodeHash:    code,
		HashType:    cell.HashTypeType,
		Hasher:      "blake2b",
		Results: []nft.Result{
			{Type: cell.Script{CodeHash: code, HashType: cell.HashTypeType, Args: []byte{0x01, 0x02}}, Action: nft.Update},
		},
	}
	if rejected {
		v.Results = append(v.Results, nft.Result{
			Type:   cell.Script{CodeHash: code, HashType: cell.HashTypeType, Args: []byte{0x03}},
			Action: nft.Create,
			Err:    &nft.Error{Kind: nft.KindOnlyOwnerCondition, RuleID: "NFT-OWNER-001", Message: "no input is locked by the factory owner"},
		})
	}
	return v
}

func signer(t *testing.T, alg string) keys.Signer {
	t.Helper()
	seed := make([]byte, keys.SeedSize)
	for i := range seed {
		seed[i] = 0x5A
	}
	s, err := keys.NewSigner(alg, "", seed)
	require.NoError(t, err)
	return s
}

func TestRender_Layout(t *testing.T) {
	out, err := Render(sampleVerdict(true), Options{GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)})
	require.NoError(t, err)

	want := strings.Join([]string{
		Preamble,
		"META",
		"Format: cellnft-verdict-1",
		"Generated-At: 2026-01-02T03:04:05Z",
		"Script: nft",
		"Verifier-ID: cellnft",
		"Version: 1",
		"",
		"INPUTS",
		"Code-Hash: 0xa000000000000000000000000000000000000000000000000000000000000000",
		"Hash-Type: 1",
		"Hasher: blake2b",
		"Snapshot-CID: bafyreigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi",
		"",
		"RESULT",
		"Accepted: false",
		"Exit-Code: 9",
		"Groups: 2",
		"Rule-ID: NFT-OWNER-001",
		"",
		"GROUPS",
		"Group: 0",
		"Type-Args: 0x0102",
		"Action: update",
		"Accepted: true",
		"Group: 1",
		"Type-Args: 0x03",
		"Action: create",
		"Accepted: false",
		"Kind: OnlyOwnerConditionError",
		"Rule-ID: NFT-OWNER-001",
		"Exit-Code: 9",
		"",
		"CRYPTO",
		"",
		Postamble,
		"",
	}, "\n")
	require.Equal(t, want, string(out))

	d, err := Parse(out)
	require.NoError(t, err)
	require.False(t, d.Accepted())
}

func TestRender_Deterministic(t *testing.T) {
	a, err := Render(sampleVerdict(false), Options{})
	require.NoError(t, err)
	b, err := Render(sampleVerdict(false), Options{})
	require.NoError(t, err)
	require.Equal(t, a, b)

	ca, err := CID(a)
	require.NoError(t, err)
	cb, err := CID(b)
	require.NoError(t, err)
	require.Equal(t, ca, cb)

	d, err := Parse(a)
	require.NoError(t, err)
	require.True(t, d.Accepted())
	require.Equal(t, ca, d.CID)
}

func TestVerifySignature(t *testing.T) {
	t.Run("unsigned", func(t *testing.T) {
		out, err := Render(sampleVerdict(false), Options{})
		require.NoError(t, err)
		ok, err := VerifySignature(out)
		require.NoError(t, err)
		require.False(t, ok)
	})

	for _, alg := range []string{keys.AlgEd25519, keys.AlgDilithium3} {
		t.Run(alg, func(t *testing.T) {
			out, err := Render(sampleVerdict(true), Options{Signer: signer(t, alg)})
			require.NoError(t, err)
			require.Contains(t, string(out), "Signature-Alg: "+alg)

			ok, err := VerifySignature(out)
			require.NoError(t, err)
			require.True(t, ok)

			tampered := []byte(strings.Replace(string(out), "Accepted: false", "Accepted: true", 1))
			ok, err = VerifySignature(tampered)
			require.Error(t, err)
			require.False(t, ok)
		})
	}
}

func TestVerifySignature_IncompleteCrypto(t *testing.T) {
	out, err := Render(sampleVerdict(false), Options{Signer: signer(t, keys.AlgEd25519)})
	require.NoError(t, err)

	var kept []string
	for _, l := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(l, "Hash-Alg: ") {
			continue
		}
		kept = append(kept, l)
	}
	_, err = VerifySignature([]byte(strings.Join(kept, "\n")))
	require.ErrorContains(t, err, "incomplete")
}

func TestParse_RejectsNonCanonical(t *testing.T) {
	out, err := Render(sampleVerdict(false), Options{})
	require.NoError(t, err)

	cases := map[string]string{
		"crlf":           strings.ReplaceAll(string(out), "\n", "\r\n"),
		"no newline":     strings.TrimSuffix(string(out), "\n"),
		"unsorted":       strings.Replace(string(out), "Format: cellnft-verdict-1\n", "Zeta: 1\n", 1),
		"trailing space": strings.Replace(string(out), "Version: 1", "Version: 1 ", 1),
		"missing result": strings.Replace(string(out), "RESULT\n", "", 1),
		"bad line":       strings.Replace(string(out), "Version: 1", "Version 1", 1),
		"no preamble":    strings.Replace(string(out), Preamble, "BEGIN", 1),
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			_, err = CID([]byte(doc))
			require.Error(t, err)
		})
	}
}
