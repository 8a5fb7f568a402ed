// Command createsuperuser bootstraps a staff account.
//
//	go run ./cmd/createsuperuser [--email admin@example.com]
//
// Missing values are prompted for; the password is read without echo and
// must be typed twice.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"tradenet/internal/config"
	"tradenet/internal/infra"
	"tradenet/internal/repository"
	"tradenet/internal/service"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

var errPasswordMismatch = errors.New("passwords do not match")

type CLI struct {
	Email       string `help:"Email address of the new superuser."`
	DatabaseURL string `name:"database-url" env:"DATABASE_URL" help:"Overrides DATABASE_URL from the config."`
}

// prompter reads answers from the terminal, or from plain lines when stdin
// is not a TTY (CI, piped input).
type prompter struct {
	in  *bufio.Reader
	fd  int
	tty bool
	out io.Writer
}

func newPrompter(in *os.File, out io.Writer) *prompter {
	fd := int(in.Fd())
	return &prompter{in: bufio.NewReader(in), fd: fd, tty: term.IsTerminal(fd), out: out}
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func (p *prompter) secret(label string) (string, error) {
	if !p.tty {
		return p.line(label)
	}
	fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// readCredentials asks for whatever the flags did not provide.
func readCredentials(p *prompter, email string) (string, string, error) {
	var err error
	if email == "" {
		if email, err = p.line("Enter your email address: "); err != nil {
			return "", "", err
		}
	}
	password, err := p.secret("Enter your password: ")
	if err != nil {
		return "", "", err
	}
	confirm, err := p.secret("Confirm your password: ")
	if err != nil {
		return "", "", err
	}
	if password != confirm {
		return "", "", errPasswordMismatch
	}
	return email, password, nil
}

func (cli *CLI) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cli.DatabaseURL != "" {
		cfg.DatabaseURL = cli.DatabaseURL
	}

	email, password, err := readCredentials(newPrompter(os.Stdin, os.Stdout), cli.Email)
	if err != nil {
		return err
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}

	svc := service.NewAuthService(repository.NewUserRepository(db), cfg)
	user, err := svc.CreateSuperuser(context.Background(), email, password)
	if err != nil {
		return err
	}
	fmt.Printf("Superuser %s created successfully.\n", user.Email)
	return nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("createsuperuser"),
		kong.Description("Create a staff account with full permissions."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(cli.Run())
}
