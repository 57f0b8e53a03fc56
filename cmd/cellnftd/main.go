// cellnftd serves token verification over gRPC.
//
// Configuration comes from CELLNFT_* environment variables; flags override
// them. See internal/config for the full list.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"google.golang.org/grpc"

	"xdao.co/cellnft/internal/archive"
	"xdao.co/cellnft/internal/config"
	"xdao.co/cellnft/keys"
	"xdao.co/cellnft/storage/grpccas"
	"xdao.co/cellnft/verifysvc"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, errOut io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	fs := pflag.NewFlagSet("cellnftd", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	cfg.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(errOut, "unexpected argument: %s\n", fs.Arg(0))
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	svc, err := newServer(cfg, logger)
	if err != nil {
		logger.Error("configure service", "error", err)
		return 1
	}

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		logger.Error("listen", "addr", cfg.Listen, "error", err)
		return 1
	}
	defer lis.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, lis, svc, cfg, logger); err != nil {
		logger.Error("serve", "error", err)
		return 1
	}
	return 0
}

// newServer builds the service from cfg: hasher selection, optional evidence
// signing key and optional archive.
func newServer(cfg config.Config, logger *slog.Logger) (*verifysvc.Server, error) {
	svc := &verifysvc.Server{Hasher: cfg.Hasher, Label: cfg.HashLabel, Logger: logger}

	if cfg.KeyFile != "" {
		root, err := keys.LoadSeedFile(cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		seed, err := keys.DeriveSeed(root, cfg.SignatureAlg)
		if err != nil {
			return nil, err
		}
		signer, err := keys.NewSigner(cfg.SignatureAlg, "", seed)
		if err != nil {
			return nil, err
		}
		svc.Signer = signer
		logger.Info("signing evidence", "verifier_key", signer.PublicKey())
	}

	a, err := archive.Open(cfg.ArchiveDirs, cfg.ArchiveIPFS)
	if err != nil {
		return nil, err
	}
	if a != nil {
		svc.Archive = a
		logger.Info("archiving", "dirs", cfg.ArchiveDirs, "ipfs", cfg.ArchiveIPFS)
	}
	return svc, nil
}

// serve runs until ctx is done, then drains in-flight calls.
func serve(ctx context.Context, lis net.Listener, svc *verifysvc.Server, cfg config.Config, logger *slog.Logger) error {
	s := grpc.NewServer(
		grpc.MaxRecvMsgSize(cfg.MaxMsgBytes),
		grpc.MaxSendMsgSize(cfg.MaxMsgBytes),
	)
	verifysvc.RegisterVerifierServer(s, svc)
	archiveSrv := &grpccas.Server{}
	if svc.Archive != nil {
		archiveSrv.Store = svc.Archive.CAS
	}
	grpccas.RegisterArchiveServer(s, archiveSrv)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		s.GracefulStop()
	}()

	logger.Info("cellnftd listening", "addr", lis.Addr().String(), "hasher", cfg.Hasher)
	if err := s.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
