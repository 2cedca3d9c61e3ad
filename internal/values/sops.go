package values

import (
	"github.com/getsops/sops/v3/decrypt"
)

// Decryptor turns an encrypted values document into plaintext YAML.
type Decryptor interface {
	Decrypt(content []byte) ([]byte, error)
}

// SOPSDecryptor decrypts SOPS-encrypted YAML using the sops library and the
// key sources it discovers (age, PGP, cloud KMS).
type SOPSDecryptor struct{}

// NewSOPSDecryptor creates a new SOPSDecryptor.
func NewSOPSDecryptor() *SOPSDecryptor {
	return &SOPSDecryptor{}
}

// Decrypt decrypts a SOPS YAML document.
func (SOPSDecryptor) Decrypt(content []byte) ([]byte, error) {
	return decrypt.Data(content, "yaml")
}

// isEncrypted reports whether a parsed document carries SOPS metadata.
func isEncrypted(doc map[string]any) bool {
	meta, ok := doc["sops"].(map[string]any)
	if !ok {
		return false
	}
	_, hasMAC := meta["mac"]
	return hasMAC
}
