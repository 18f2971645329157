package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/Skotchmaster/pizza_shop/internal/hash"
)

// hashPassword prints the bcrypt hash to put in ADMIN_PASSWORD_HASH.
// Usage: server hash-password <password>
func hashPassword(args []string, out io.Writer) error {
	if len(args) != 1 || args[0] == "" {
		return errors.New("usage: server hash-password <password>")
	}
	h, err := hash.HashPassword(args[0])
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = fmt.Fprintln(out, h)
	return err
}
