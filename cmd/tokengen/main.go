// Package main issues caller bearer tokens for local development.
// Tokens are signed with the dev key unless -key is given and will not
// validate against a deployment with a different CALLER_SIGNING_KEY.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"bridgeid/internal/callertoken"
	"bridgeid/pkg/domain"
)

const (
	// matches the CALLER_SIGNING_KEY default in config
	devSigningKey   = "dev-secret-key-change-in-production"
	defaultIssuer   = "bridgeid"
	defaultTokenTTL = 15 * time.Minute
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	Caller    string            `json:"caller"`
	ExpiresIn string            `json:"expires_in"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	address := flag.String("address", "", "Caller address (0x-prefixed). A random address is generated if empty.")
	ttl := flag.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	key := flag.String("key", devSigningKey, "HMAC signing key")
	issuer := flag.String("issuer", defaultIssuer, "Token issuer")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	addr, err := resolveAddress(*address)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	token, err := callertoken.New(*key, *issuer).Issue(addr, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			Type:      "Bearer",
			Caller:    addr.Hex(),
			ExpiresIn: ttl.String(),
			Usage: map[string]string{
				"header": "Authorization: Bearer " + token,
				"curl":   fmt.Sprintf("curl -H 'Authorization: Bearer %s' -X POST http://localhost:8080/verifications", token),
			},
		})
		return
	}

	fmt.Println("=== Caller Token ===")
	fmt.Printf("Caller:      %s\n", addr.Hex())
	fmt.Printf("Issuer:      %s\n", *issuer)
	fmt.Printf("Expires In:  %s\n", *ttl)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  curl -H 'Authorization: Bearer %s' http://localhost:8080/config\n", token)
}

func resolveAddress(input string) (common.Address, error) {
	if input != "" {
		return domain.ParseAddress(input)
	}
	pk, err := crypto.GenerateKey()
	if err != nil {
		return common.Address{}, fmt.Errorf("generate key: %w", err)
	}
	return crypto.PubkeyToAddress(pk.PublicKey), nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
