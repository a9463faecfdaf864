package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/low-k3YLTD/equine-oracle-backend/pkg/crypto"
)

// Generates a production API key and the digest to store alongside it.
// The plaintext is printed once; only the digest belongs in the database.
func main() {
	secret := flag.String("secret", os.Getenv("API_KEY_HASH_SECRET"), "hashing secret (defaults to API_KEY_HASH_SECRET)")
	flag.Parse()

	plaintext, prefix, digest, err := buildCredential(*secret)
	if err != nil {
		log.Fatalf("failed to generate api key: %v", err)
	}

	fmt.Println("Generated API credential")
	fmt.Printf("API_KEY=%s\n", plaintext)
	fmt.Printf("KEY_PREFIX=%s\n", prefix)
	fmt.Printf("KEY_HASH=%s\n", digest)
	fmt.Printf("MASKED=%s\n", crypto.MaskKey(plaintext))
}

func buildCredential(secret string) (plaintext, prefix, digest string, err error) {
	if secret == "" {
		return "", "", "", fmt.Errorf("hashing secret is required (set API_KEY_HASH_SECRET or pass -secret)")
	}

	plaintext, prefix, err = crypto.GenerateKey()
	if err != nil {
		return "", "", "", err
	}

	hasher, err := crypto.NewKeyHasher(secret)
	if err != nil {
		return "", "", "", err
	}
	digest = hasher.HashKey(plaintext)
	return plaintext, prefix, digest, nil
}
