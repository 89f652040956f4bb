package utils

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// AddressLength is the size of an address in bytes
const AddressLength = 20

// Keccak256 returns the legacy Keccak-256 digest of data
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// AddressFromBytes takes the last 20 bytes of the Keccak-256 digest of data
func AddressFromBytes(data []byte) string {
	digest := Keccak256(data)
	return "0x" + hex.EncodeToString(digest[len(digest)-AddressLength:])
}

// AddressFromPublicKey derives the address of a public key. EC keys hash the
// uncompressed point without its 0x04 prefix; other keys hash their PKIX encoding.
func AddressFromPublicKey(pub interface{}) (string, error) {
	if ecKey, ok := pub.(*ecdsa.PublicKey); ok {
		ecdhKey, err := ecKey.ECDH()
		if err != nil {
			return "", fmt.Errorf("failed to convert public key: %v", err)
		}
		return AddressFromBytes(ecdhKey.Bytes()[1:]), nil
	}

	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %v", err)
	}
	return AddressFromBytes(der), nil
}

// AddressFromCertificate derives the address of a certificate's public key
func AddressFromCertificate(cert *x509.Certificate) (string, error) {
	if cert == nil {
		return "", fmt.Errorf("certificate is required")
	}
	return AddressFromPublicKey(cert.PublicKey)
}

// AddressFromID derives an address from a client identity string
func AddressFromID(id string) string {
	return AddressFromBytes([]byte(id))
}
