package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/low-k3YLTD/equine-oracle-backend/pkg/crypto"
)

// Recomputes the stored digest for an existing plaintext key. Useful when
// migrating keys after rotating API_KEY_HASH_SECRET.
func main() {
	secret := flag.String("secret", os.Getenv("API_KEY_HASH_SECRET"), "hashing secret (defaults to API_KEY_HASH_SECRET)")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("usage: keyhash [-secret <secret>] <api-key>")
	}

	prefix, digest, err := hashKey(*secret, flag.Arg(0))
	if err != nil {
		log.Fatalf("failed to hash key: %v", err)
	}

	fmt.Printf("KEY_PREFIX=%s\n", prefix)
	fmt.Printf("KEY_HASH=%s\n", digest)
}

func hashKey(secret, plaintext string) (prefix, digest string, err error) {
	if secret == "" {
		return "", "", fmt.Errorf("hashing secret is required (set API_KEY_HASH_SECRET or pass -secret)")
	}

	prefix, ok := crypto.ExtractPrefix(plaintext)
	if !ok {
		return "", "", fmt.Errorf("malformed api key (expected eo_<prefix>_<secret>)")
	}

	hasher, err := crypto.NewKeyHasher(secret)
	if err != nil {
		return "", "", err
	}
	return prefix, hasher.HashKey(plaintext), nil
}
