package signer

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

var ErrBadSignature = errors.New("signer: signature does not match payload")

// Signer produces recoverable secp256k1 signatures over export payloads so a
// downloaded entities.json / entities.csv can be checked against the
// address that produced it.
type Signer struct {
	key     *ecdsa.PrivateKey
	address string
}

// Signature travels next to an export: as response headers over HTTP or as a
// .sig file from the CLI.
type Signature struct {
	Value     string `json:"signature"` // base64 of r || s || v (65 bytes)
	Address   string `json:"address"`   // checksummed signer address
	Timestamp int64  `json:"timestamp"` // unix nanoseconds
}

// New creates a Signer from a hex-encoded private key (0x prefix optional).
func New(hexKey string) (*Signer, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("signer: invalid hex key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("signer: key must be 32 bytes, got %d", len(raw))
	}
	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("signer: %w", err)
	}
	return &Signer{key: key, address: crypto.PubkeyToAddress(key.PublicKey).Hex()}, nil
}

// Address returns the checksummed address derived from the key.
func (s *Signer) Address() string {
	return s.address
}

// Sign signs payload at the current time.
//
// Scheme:
//  1. payload_hash = hex(SHA256(payload))
//  2. digest = Keccak256(payload_hash + decimal(timestamp_ns))
//  3. signature = secp256k1 sign(digest), deterministic (RFC 6979)
func (s *Signer) Sign(payload []byte) (Signature, error) {
	return s.signAt(payload, time.Now().UnixNano())
}

func (s *Signer) signAt(payload []byte, ts int64) (Signature, error) {
	sig, err := crypto.Sign(digest(payload, ts), s.key)
	if err != nil {
		return Signature{}, fmt.Errorf("signer: sign: %w", err)
	}
	return Signature{
		Value:     base64.StdEncoding.EncodeToString(sig),
		Address:   s.address,
		Timestamp: ts,
	}, nil
}

// Verify recovers the public key from sig and checks that it belongs to
// sig.Address.
func Verify(payload []byte, sig Signature) error {
	raw, err := base64.StdEncoding.DecodeString(sig.Value)
	if err != nil {
		return fmt.Errorf("signer: decode signature: %w", err)
	}
	if len(raw) != crypto.SignatureLength {
		return fmt.Errorf("signer: signature must be %d bytes, got %d", crypto.SignatureLength, len(raw))
	}
	pub, err := crypto.SigToPub(digest(payload, sig.Timestamp), raw)
	if err != nil {
		return fmt.Errorf("signer: recover: %w", err)
	}
	if !strings.EqualFold(crypto.PubkeyToAddress(*pub).Hex(), sig.Address) {
		return ErrBadSignature
	}
	return nil
}

func digest(payload []byte, ts int64) []byte {
	h := sha256.Sum256(payload)
	return crypto.Keccak256([]byte(hex.EncodeToString(h[:]) + strconv.FormatInt(ts, 10)))
}
