package keybackend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sagarc03/galleria"
)

// KeyPair represents an access key and secret key pair.
type KeyPair struct {
	AccessKey string `json:"access_key" mapstructure:"access_key"`
	SecretKey string `json:"secret_key" mapstructure:"secret_key"`
}

// ParseKeyPairs decodes the credential document of the filesystem backend.
// It accepts a single pair or an array of pairs:
//
//	{"access_key": "GALLERYKEY", "secret_key": "s3cr3t..."}
//
//	[
//	  {"access_key": "GALLERYKEY", "secret_key": "s3cr3t..."},
//	  {"access_key": "ROTATEDKEY", "secret_key": "n3w..."}
//	]
//
// The first pair is the signing key. Every error wraps galleria.ErrCredentialParse.
func ParseKeyPairs(data []byte) ([]KeyPair, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("parse key pairs: %w: empty document", galleria.ErrCredentialParse)
	}

	var pairs []KeyPair
	if data[0] == '[' {
		if err := json.Unmarshal(data, &pairs); err != nil {
			return nil, fmt.Errorf("parse key pairs: %w: %v", galleria.ErrCredentialParse, err)
		}
	} else {
		var p KeyPair
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse key pairs: %w: %v", galleria.ErrCredentialParse, err)
		}
		pairs = []KeyPair{p}
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("parse key pairs: %w: no key pairs", galleria.ErrCredentialParse)
	}
	for i, p := range pairs {
		if p.AccessKey == "" || p.SecretKey == "" {
			return nil, fmt.Errorf("parse key pairs: %w: pair %d: %v", galleria.ErrCredentialParse, i, errors.New("access_key and secret_key are required"))
		}
	}

	return pairs, nil
}
