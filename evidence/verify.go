package evidence

import (
	"errors"

	"xdao.co/cellnft/keys"
)

// VerifySignature checks the CRYPTO signature of doc.
//
// It returns (false, nil) for an unsigned document, (true, nil) when the
// signature verifies and an error for malformed, non-canonical or invalid
// signatures.
func VerifySignature(doc []byte) (bool, error) {
	d, err := Parse(doc)
	if err != nil {
		return false, err
	}
	if len(d.sections["CRYPTO"]) == 0 {
		return false, nil
	}

	sigAlg, hasAlg, err := d.Field("CRYPTO", "Signature-Alg")
	if err != nil {
		return false, err
	}
	hashAlg, hasHash, err := d.Field("CRYPTO", "Hash-Alg")
	if err != nil {
		return false, err
	}
	key, hasKey, err := d.Field("CRYPTO", "Verifier-Key")
	if err != nil {
		return false, err
	}
	sig, hasSig, err := d.Field("CRYPTO", "Signature")
	if err != nil {
		return false, err
	}
	if !(hasAlg && hasHash && hasKey && hasSig) {
		return false, errors.New("evidence: CRYPTO: incomplete signature fields")
	}

	scope, err := signatureScope(d.Bytes)
	if err != nil {
		return false, err
	}
	if err := keys.Verify(key, sigAlg, hashAlg, scope, sig); err != nil {
		return false, err
	}
	return true, nil
}
