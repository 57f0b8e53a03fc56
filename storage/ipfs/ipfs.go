// Package ipfs archives blocks into a local IPFS repository through the Kubo
// "ipfs" CLI.
package ipfs

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ipfs/go-cid"

	"xdao.co/cellnft/cidutil"
	"xdao.co/cellnft/storage"
)

// CAS stores blocks with "ipfs block put" and reads them back with
// "ipfs block get". It works against the local repo and needs no daemon.
//
// Returned CIDs follow cidutil.Sum; a repo that reports a different CID for
// the same bytes is an ErrCIDMismatch.
type CAS struct {
	bin string
	env []string
}

var _ storage.CAS = (*CAS)(nil)

type Options struct {
	// Bin is the path to the ipfs binary. If empty, "ipfs" is used.
	Bin string
	// Env overrides the command environment (e.g. to set IPFS_PATH).
	// If nil, the process environment is used.
	Env []string
}

func New(opts Options) *CAS {
	bin := opts.Bin
	if bin == "" {
		bin = "ipfs"
	}
	return &CAS{bin: bin, env: opts.Env}
}

// codecNames maps archived codecs to their `ipfs block put --cid-codec` names.
var codecNames = map[uint64]string{
	cid.Raw:     "raw",
	cid.DagCBOR: "dag-cbor",
}

func (c *CAS) Put(codec uint64, data []byte) (cid.Cid, error) {
	name, ok := codecNames[codec]
	if !ok {
		return cid.Undef, fmt.Errorf("ipfs: unsupported codec 0x%x", codec)
	}
	id, err := cidutil.Sum(codec, data)
	if err != nil {
		return cid.Undef, err
	}

	out, err := c.run(data,
		"block", "put",
		"--quiet",
		"--cid-codec="+name,
		"--mhtype=sha2-256",
		"--mhlen=32",
	)
	if err != nil {
		return cid.Undef, err
	}

	got, err := cid.Decode(strings.TrimSpace(string(out)))
	if err != nil {
		return cid.Undef, fmt.Errorf("ipfs: unexpected block put output: %w", err)
	}
	if !got.Equals(id) {
		return cid.Undef, storage.ErrCIDMismatch
	}
	return id, nil
}

func (c *CAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}

	out, err := c.run(nil, "block", "get", id.String())
	if err != nil {
		if isLikelyNotFound(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	if !cidutil.Matches(id, out) {
		return nil, storage.ErrCIDMismatch
	}
	return out, nil
}

func (c *CAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := c.run(nil, "block", "stat", id.String())
	return err == nil
}

func (c *CAS) run(stdin []byte, args ...string) ([]byte, error) {
	cmd := exec.Command(c.bin, args...)
	if c.env != nil {
		cmd.Env = c.env
	}
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	out, err := cmd.Output()
	if err == nil {
		return out, nil
	}

	var ee *exec.ExitError
	if errors.As(err, &ee) {
		s := strings.TrimSpace(string(ee.Stderr))
		if s == "" {
			return nil, fmt.Errorf("ipfs: %v", err)
		}
		return nil, fmt.Errorf("ipfs: %s", s)
	}
	return nil, err
}

func isLikelyNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found")
}
