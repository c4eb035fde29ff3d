package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vivamos/vivamos/internal/common"
	"github.com/vivamos/vivamos/internal/cryptox"
	"golang.org/x/term"
)

// test seams for the terminal
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

var errPasswordMismatch = errors.New("password does not match")

// promptPassword reads a password without echo when stdin is a terminal,
// otherwise the first line of cmd's input.
func promptPassword(cmd *cobra.Command) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if cmd.InOrStdin() == os.Stdin && isTerminal(fd) {
		fmt.Fprint(cmd.ErrOrStderr(), "Enter password: ")
		pw, err := readPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		return pw, err
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

// NewHashPasswordCmd creates the hash-password subcommand.
func NewHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Print the stored form of a password",
		Long: `Read a password from the terminal (or the first line of stdin) and
print the salt:key record expected in accounts.password_hash.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			if len(pw) == 0 {
				return errors.New("password is required")
			}

			record, err := cryptox.HashPassword(string(pw))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), record)
			return nil
		},
	}
}

// NewVerifyPasswordCmd creates the verify-password subcommand.
func NewVerifyPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-password <record>",
		Short: "Check a password against a stored record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			if !cryptox.VerifyPassword(string(pw), args[0]) {
				return errPasswordMismatch
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
