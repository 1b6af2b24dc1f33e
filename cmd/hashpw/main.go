// Command hashpw hashes a password read from stdin, or verifies it against a hash.
//
//	echo -n secret | hashpw
//	echo -n secret | hashpw -verify '$2a$10$...'
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spec-kit/order-service/internal/auth"
	"github.com/spec-kit/order-service/internal/config"
)

func main() {
	verify := flag.String("verify", "", "bcrypt hash to check the password against")
	flag.Parse()

	code, err := run(os.Stdin, os.Stdout, *verify, config.LoadAuth().BcryptCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(code)
}

func run(in io.Reader, out io.Writer, verifyHash string, cost int) (int, error) {
	password, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return 2, fmt.Errorf("read password: %w", err)
	}
	password = strings.TrimRight(password, "\r\n")

	hasher := auth.NewPasswordHasher(cost)
	if verifyHash != "" {
		if hasher.Verify(password, verifyHash) {
			fmt.Fprintln(out, "match")
			return 0, nil
		}
		fmt.Fprintln(out, "no match")
		return 1, nil
	}

	hashed, err := hasher.Hash(password)
	if err != nil {
		return 2, fmt.Errorf("hash password: %w", err)
	}
	fmt.Fprintln(out, hashed)
	return 0, nil
}
