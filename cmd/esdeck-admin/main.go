// Command esdeck-admin bundles operator utilities: bcrypt hashing for
// AUTH_LOCAL_USERS entries and offline config validation.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/esdeck/esdeck-api/internal/bootstrap"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "hash-password":
		err = hashPassword()
	case "check-config":
		err = checkConfig()
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: esdeck-admin <command>

commands:
  hash-password   read a password from stdin and print its bcrypt hash
  check-config    load the environment configuration and report problems`)
}

// hashPassword reads one line from stdin so passwords stay out of argv
// and shell history.
func hashPassword() error {
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read password: %w", err)
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	fmt.Println(string(hash))
	return nil
}

func checkConfig() error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("config ok: auth_mode=%s session_backend=%s clusters=%d audit=%t metrics=%t\n",
		cfg.Auth.Mode, cfg.Session.Backend, len(cfg.Clusters.Entries),
		cfg.Audit.Enabled, cfg.Observability.MetricsEnabled)
	return nil
}
