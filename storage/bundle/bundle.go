// Package bundle packs archived blocks into a deterministic TAR file so a
// verdict and the snapshot it judged can travel together.
package bundle

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/ipfs/go-cid"

	"xdao.co/cellnft/cidutil"
	"xdao.co/cellnft/storage"
)

// FormatVersion is the current index schema version.
const FormatVersion = 1

// Labels written by ExportVerdict.
const (
	LabelVerdict  = "verdict"
	LabelSnapshot = "snapshot"
)

const (
	indexName = "index.cbor"
	blocksDir = "blocks/"
)

var epoch0 = time.Unix(0, 0).UTC()

type ExportOptions struct {
	// Labels is optional, non-authoritative metadata mapping names to CIDs.
	Labels map[string]cid.Cid
	// IncludeIndex controls whether index.cbor is written.
	IncludeIndex bool
}

// Export writes a TAR bundle holding the blocks for ids.
//
// Entries are sorted by CID and headers carry no owner or time, so the same
// ids always produce the same bytes. Every block is checked against its CID
// before it is written.
func Export(w io.Writer, r storage.Reader, ids []cid.Cid, opts ExportOptions) error {
	if r == nil {
		return errors.New("bundle: nil store")
	}

	uniq := make(map[string]cid.Cid, len(ids))
	for _, id := range ids {
		if !id.Defined() {
			return storage.ErrInvalidCID
		}
		uniq[id.String()] = id
	}
	names := make([]string, 0, len(uniq))
	for s := range uniq {
		names = append(names, s)
	}
	sort.Strings(names)

	tw := tar.NewWriter(w)
	blocks := make([]indexBlock, 0, len(names))
	for _, s := range names {
		id := uniq[s]
		b, err := r.Get(id)
		if err != nil {
			_ = tw.Close()
			return err
		}
		if !cidutil.Matches(id, b) {
			_ = tw.Close()
			return storage.ErrCIDMismatch
		}
		if err := writeFile(tw, blocksDir+s, b); err != nil {
			_ = tw.Close()
			return err
		}
		blocks = append(blocks, indexBlock{CID: s, Codec: id.Prefix().Codec, Size: len(b)})
	}

	if opts.IncludeIndex {
		idx, err := buildIndex(blocks, opts.Labels)
		if err != nil {
			_ = tw.Close()
			return err
		}
		b, err := encMode.Marshal(idx)
		if err != nil {
			_ = tw.Close()
			return err
		}
		if err := writeFile(tw, indexName, b); err != nil {
			_ = tw.Close()
			return err
		}
	}
	return tw.Close()
}

// ExportVerdict bundles an archived evidence document with the snapshot named
// in its INPUTS section, labelled LabelVerdict and LabelSnapshot.
func ExportVerdict(w io.Writer, r storage.Reader, evidenceID cid.Cid) error {
	doc, err := storage.ReadEvidence(r, evidenceID)
	if err != nil {
		return err
	}
	v, ok, err := doc.Field("INPUTS", "Snapshot-CID")
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bundle: %s names no snapshot", evidenceID)
	}
	snapID, err := cid.Decode(v)
	if err != nil {
		return fmt.Errorf("bundle: snapshot cid: %w", err)
	}
	return Export(w, r, []cid.Cid{evidenceID, snapID}, ExportOptions{
		IncludeIndex: true,
		Labels:       map[string]cid.Cid{LabelVerdict: evidenceID, LabelSnapshot: snapID},
	})
}

type ImportOptions struct {
	// IgnoreUnknown skips entries that are not blocks or the index.
	// The default is to fail on them.
	IgnoreUnknown bool
}

// Import reads a bundle and stores every block in cas. Each block must hash to
// the CID in its entry name. It returns the labels from the index, if any.
func Import(r io.Reader, cas storage.CAS, opts ImportOptions) (map[string]cid.Cid, error) {
	if cas == nil {
		return nil, errors.New("bundle: nil CAS")
	}

	tr := tar.NewReader(r)
	seen := map[string]struct{}{}
	var labels map[string]cid.Cid

	for {
		h, err := tr.Next()
		if err == io.EOF {
			return labels, nil
		}
		if err != nil {
			return nil, err
		}
		name := cleanTarPath(h.Name)
		if name == "" {
			return nil, fmt.Errorf("bundle: invalid entry path: %q", h.Name)
		}
		if h.Typeflag != tar.TypeReg {
			if opts.IgnoreUnknown {
				continue
			}
			return nil, fmt.Errorf("bundle: unexpected tar entry type: %v (%s)", h.Typeflag, name)
		}

		if name == indexName {
			b, err := io.ReadAll(tr)
			if err != nil {
				return nil, err
			}
			if labels, err = readLabels(b); err != nil {
				return nil, err
			}
			continue
		}
		if !strings.HasPrefix(name, blocksDir) {
			if opts.IgnoreUnknown {
				continue
			}
			return nil, fmt.Errorf("bundle: unknown entry: %s", name)
		}

		id, err := cid.Decode(strings.TrimPrefix(name, blocksDir))
		if err != nil || !id.Defined() {
			return nil, storage.ErrInvalidCID
		}
		payload, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		if !cidutil.Matches(id, payload) {
			return nil, storage.ErrCIDMismatch
		}
		if _, dup := seen[id.String()]; dup {
			return nil, fmt.Errorf("bundle: duplicate block entry: %s", id)
		}
		seen[id.String()] = struct{}{}

		got, err := cas.Put(id.Prefix().Codec, payload)
		if err != nil {
			return nil, err
		}
		if !got.Equals(id) {
			return nil, storage.ErrCIDMismatch
		}
	}
}

type index struct {
	_         struct{} `cbor:",toarray"`
	Version   int
	Multihash string
	Blocks    []indexBlock
	Labels    []indexLabel
}

type indexBlock struct {
	_     struct{} `cbor:",toarray"`
	CID   string
	Codec uint64
	Size  int
}

type indexLabel struct {
	_    struct{} `cbor:",toarray"`
	Name string
	CID  string
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = (cbor.DecOptions{DupMapKey: cbor.DupMapKeyEnforcedAPF}).DecMode(); err != nil {
		panic(err)
	}
}

func buildIndex(blocks []indexBlock, labels map[string]cid.Cid) (index, error) {
	idx := index{Version: FormatVersion, Multihash: "sha2-256", Blocks: blocks}
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if k == "" {
			return index{}, errors.New("bundle: empty label key")
		}
		v := labels[k]
		if !v.Defined() {
			return index{}, storage.ErrInvalidCID
		}
		idx.Labels = append(idx.Labels, indexLabel{Name: k, CID: v.String()})
	}
	return idx, nil
}

func readLabels(b []byte) (map[string]cid.Cid, error) {
	var idx index
	if err := decMode.Unmarshal(b, &idx); err != nil {
		return nil, fmt.Errorf("bundle: index: %w", err)
	}
	if idx.Version != FormatVersion {
		return nil, fmt.Errorf("bundle: unsupported index version %d", idx.Version)
	}
	out := make(map[string]cid.Cid, len(idx.Labels))
	for _, l := range idx.Labels {
		id, err := cid.Decode(l.CID)
		if err != nil {
			return nil, fmt.Errorf("bundle: label %q: %w", l.Name, err)
		}
		out[l.Name] = id
	}
	return out, nil
}

func writeFile(tw *tar.Writer, name string, content []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  epoch0,
		Typeflag: tar.TypeReg,
		Format:   tar.FormatUSTAR,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := io.Copy(tw, bytes.NewReader(content))
	return err
}

// cleanTarPath normalizes name and returns "" for absolute, empty or
// parent-relative paths.
func cleanTarPath(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	if name == "" || strings.HasPrefix(name, "/") {
		return ""
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return ""
		}
	}
	return name
}
