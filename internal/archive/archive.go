// Package archive assembles the replicated store both binaries archive into.
package archive

import (
	"xdao.co/cellnft/storage"
	"xdao.co/cellnft/storage/ipfs"
	"xdao.co/cellnft/storage/localfs"
)

// Open returns an archive replicating into every directory and, when ipfsBin
// is set, into the local IPFS repo of that binary. It returns nil when no
// backend is configured.
func Open(dirs []string, ipfsBin string) (*storage.Archive, error) {
	if len(dirs) == 0 && ipfsBin == "" {
		return nil, nil
	}
	r, err := localfs.Open(dirs...)
	if err != nil {
		return nil, err
	}
	if ipfsBin != "" {
		r.Backends = append(r.Backends, storage.NamedCAS{Name: "ipfs", CAS: ipfs.New(ipfs.Options{Bin: ipfsBin})})
	}
	return &storage.Archive{CAS: r}, nil
}
