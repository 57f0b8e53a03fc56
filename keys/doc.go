// Package keys provides the verifier signing keys used to sign evidence
// documents.
//
// Verifier keys are rendered as "<alg>:" + base64(public key), for example
// "ed25519:Lm9...". Both supported algorithms derive their key pair
// deterministically from a 32-byte seed.
package keys
