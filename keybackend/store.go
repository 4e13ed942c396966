package keybackend

import (
	"fmt"

	"github.com/sagarc03/galleria"
)

// LoadKeyPairs reads the configured key file or inline credentials and
// parses them with ParseKeyPairs.
func LoadKeyPairs(cfg galleria.StoreConfig) ([]KeyPair, error) {
	data, err := cfg.LoadCredentials()
	if err != nil {
		return nil, fmt.Errorf("load key pairs: %w", err)
	}
	return ParseKeyPairs(data)
}

// NewSecretStore builds a MapSecretStore from key pairs. Later pairs win on
// duplicate access keys.
func NewSecretStore(pairs []KeyPair) *MapSecretStore {
	keys := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if p.AccessKey != "" && p.SecretKey != "" {
			keys[p.AccessKey] = p.SecretKey
		}
	}
	return NewMapSecretStore(keys)
}
