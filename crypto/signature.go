// Recoverable ECDSA signatures over commitment digests.
//
// Signatures follow the Ethereum personal-message convention: the 32-byte
// digest is wrapped in the EIP-191 "\x19Ethereum Signed Message:\n32" prefix
// before signing, and V is encoded as 27/28 on the wire. The signer's
// address can be recovered from the signature alone, so submissions never
// carry a public key.
package crypto

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Errors for signature operations.
var (
	ErrSignatureLength  = errors.New("crypto: signature must be 65 bytes")
	ErrSignatureV       = errors.New("crypto: invalid V value")
	ErrSignatureRecover = errors.New("crypto: public key recovery failed")
	ErrSignatureVerify  = errors.New("crypto: signature does not verify against recovered key")
)

// Signature is a 65-byte recoverable ECDSA signature: R (32) || S (32) || V.
// V is stored in the Ethereum legacy encoding (27 or 28).
type Signature struct {
	R [32]byte
	S [32]byte
	V byte
}

// ParseSignature parses a 65-byte R || S || V signature. V may be given
// raw (0/1) or legacy (27/28); it is normalized to legacy form.
func ParseSignature(sig []byte) (Signature, error) {
	if len(sig) != 65 {
		return Signature{}, ErrSignatureLength
	}
	v, err := normalizeV(sig[64])
	if err != nil {
		return Signature{}, err
	}
	var s Signature
	copy(s.R[:], sig[:32])
	copy(s.S[:], sig[32:64])
	s.V = v
	return s, nil
}

// Bytes encodes the signature as 65 bytes with V in legacy (27/28) form.
func (s Signature) Bytes() []byte {
	buf := make([]byte, 65)
	copy(buf[:32], s.R[:])
	copy(buf[32:64], s.S[:])
	buf[64] = s.V
	return buf
}

// normalizeV maps 0/1 and 27/28 to 27/28.
func normalizeV(v byte) (byte, error) {
	switch v {
	case 0, 1:
		return v + 27, nil
	case 27, 28:
		return v, nil
	default:
		return 0, ErrSignatureV
	}
}

// rawV returns the recovery id (0 or 1) expected by secp256k1 recovery.
func (s Signature) rawV() byte {
	return s.V - 27
}

// signatureJSON is the wire form: hex R and S, numeric V.
type signatureJSON struct {
	R hexutil.Bytes `json:"r"`
	S hexutil.Bytes `json:"s"`
	V uint64        `json:"v"`
}

// MarshalJSON implements json.Marshaler.
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(signatureJSON{
		R: s.R[:],
		S: s.S[:],
		V: uint64(s.V),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Signature) UnmarshalJSON(data []byte) error {
	var enc signatureJSON
	if err := json.Unmarshal(data, &enc); err != nil {
		return err
	}
	if len(enc.R) != 32 || len(enc.S) != 32 {
		return ErrSignatureLength
	}
	if enc.V > 255 {
		return ErrSignatureV
	}
	v, err := normalizeV(byte(enc.V))
	if err != nil {
		return err
	}
	copy(s.R[:], enc.R)
	copy(s.S[:], enc.S)
	s.V = v
	return nil
}

// SignDigest signs a 32-byte digest with the given key under the EIP-191
// personal-message convention and returns the recoverable signature.
func SignDigest(digest [32]byte, key *ecdsa.PrivateKey) (Signature, error) {
	raw, err := ethcrypto.Sign(accounts.TextHash(digest[:]), key)
	if err != nil {
		return Signature{}, err
	}
	return ParseSignature(raw)
}

// RecoverAddress recovers the signer address of a digest signature and
// checks that the signature actually verifies against the recovered key.
// Failure is an expected outcome for forged or corrupted submissions.
func RecoverAddress(digest [32]byte, sig Signature) (common.Address, error) {
	hash := accounts.TextHash(digest[:])

	raw := sig.Bytes()
	raw[64] = sig.rawV()
	pub, err := ethcrypto.SigToPub(hash, raw)
	if err != nil {
		return common.Address{}, ErrSignatureRecover
	}

	if !ethcrypto.VerifySignature(ethcrypto.FromECDSAPub(pub), hash, raw[:64]) {
		return common.Address{}, ErrSignatureVerify
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}
