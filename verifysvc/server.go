package verifysvc

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/cellnft/cell"
	"xdao.co/cellnft/evidence"
	"xdao.co/cellnft/keys"
	"xdao.co/cellnft/nft"
	"xdao.co/cellnft/storage"
	"xdao.co/cellnft/typeid"
)

// Server verifies snapshots with the standard token script.
type Server struct {
	UnimplementedVerifierServer

	// Hasher is used when a request names none; empty means blake2b.
	Hasher string
	// Label personalizes every hasher when a request names none; empty means
	// typeid.DefaultLabel.
	Label string

	// Signer, when set, signs evidence documents.
	Signer keys.Signer
	// Archive, when set, stores each verified snapshot and its evidence.
	Archive *storage.Archive

	Logger *slog.Logger
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Server) Verify(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	log := s.logger().With("request_id", uuid.NewString(), "method", "Verify")

	var req Request
	if err := unmarshal(in.GetValue(), &req); err != nil {
		log.WarnContext(ctx, "malformed request", "error", err)
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	codeHash, err := req.codeHash()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	snap, err := cell.UnmarshalSnapshot(req.Snapshot)
	if err != nil {
		log.WarnContext(ctx, "malformed snapshot", "error", err)
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	hasherName := req.Hasher
	if hasherName == "" {
		hasherName = s.Hasher
	}
	label := req.Label
	if label == "" {
		label = s.Label
	}
	h, err := typeid.ByName(hasherName, label)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	snapID, err := snap.CID()
	if err != nil {
		return nil, status.Errorf(codes.Internal, "snapshot cid: %v", err)
	}
	script := nft.Compose("nft", nft.Base{Hasher: h}, nft.OnlyOwner{})
	results, err := script.VerifyAll(snap, codeHash, req.HashType)
	if err != nil {
		// Only collaborator failures reach here; the snapshot is in memory.
		return nil, status.Error(codes.Internal, err.Error())
	}

	resp := Response{SnapshotCID: snapID.String(), Accepted: true}
	for _, r := range results {
		resp.Results = append(resp.Results, toGroupResult(r))
	}
	if first := nft.FirstRejection(results); first != nil {
		resp.Accepted = false
		resp.ExitCode = nft.ExitCode(first)
	}

	doc, err := evidence.Render(evidence.Verdict{
		SnapshotCID: resp.SnapshotCID,
		CodeHash:    codeHash,
		HashType:    req.HashType,
		Hasher:      h.Name(),
		Script:      script.ID,
		Results:     results,
	}, evidence.Options{Signer: s.Signer})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "render evidence: %v", err)
	}
	resp.Evidence = doc
	resp.EvidenceCID, err = evidence.CID(doc)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "evidence cid: %v", err)
	}

	if s.Archive != nil {
		if _, err := s.Archive.PutSnapshot(snap); err != nil {
			log.ErrorContext(ctx, "archive snapshot", "error", err)
			return nil, status.Errorf(codes.Unavailable, "archive snapshot: %v", err)
		}
		if _, err := s.Archive.PutEvidence(doc); err != nil {
			log.ErrorContext(ctx, "archive evidence", "error", err)
			return nil, status.Errorf(codes.Unavailable, "archive evidence: %v", err)
		}
	}

	log.InfoContext(ctx, "verified",
		"snapshot", resp.SnapshotCID,
		"groups", len(results),
		"accepted", resp.Accepted,
		"exit_code", resp.ExitCode,
		"evidence", resp.EvidenceCID,
	)

	out, err := marshal(resp)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return wrapperspb.Bytes(out), nil
}

// Classify returns the action name. A transaction that cannot be classified
// fails with FailedPrecondition carrying the rule id.
func (s *Server) Classify(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	log := s.logger().With("request_id", uuid.NewString(), "method", "Classify")

	var req ClassifyRequest
	if err := unmarshal(in.GetValue(), &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	snap, err := cell.UnmarshalSnapshot(req.Snapshot)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	token, err := cell.UnmarshalScript(req.Token)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	action, err := nft.Classify(snap, token)
	if err != nil {
		log.InfoContext(ctx, "unclassifiable", "rule_id", nft.RuleID(err), "error", err)
		return nil, status.Errorf(codes.FailedPrecondition, "%s: %v", nft.RuleID(err), err)
	}
	log.DebugContext(ctx, "classified", "action", action.String())
	return wrapperspb.String(action.String()), nil
}
