package collector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
)

// Auth holds SSH credentials shared by every target
type Auth struct {
	User       string
	KeyFile    string
	Passphrase string
	Password   string
}

// clientConfig builds an SSH client config from the credentials.
// Key auth is preferred; password auth is added when a password is set.
func (a Auth) clientConfig(timeout time.Duration) (*ssh.ClientConfig, error) {
	if a.User == "" {
		return nil, fmt.Errorf("ssh user is required")
	}

	var methods []ssh.AuthMethod

	if a.KeyFile != "" {
		keyData, err := os.ReadFile(a.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		signer, err := parseSigner(keyData, a.Passphrase)
		if err != nil {
			return nil, err
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if a.Password != "" {
		methods = append(methods, ssh.Password(a.Password))
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("no ssh credentials: set a key file or a password")
	}

	return &ssh.ClientConfig{
		User:            a.User,
		Auth:            methods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}, nil
}

func parseSigner(keyData []byte, passphrase string) (ssh.Signer, error) {
	var (
		signer ssh.Signer
		err    error
	)
	if passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(keyData, []byte(passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(keyData)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return signer, nil
}

// sshRunner runs commands over an established SSH client
type sshRunner struct {
	client  *ssh.Client
	timeout time.Duration
}

// dialSSH establishes an SSH connection to a target
func dialSSH(ctx context.Context, t Target, config *ssh.ClientConfig, timeout time.Duration) (*sshRunner, error) {
	addr := net.JoinHostPort(t.Host, strconv.Itoa(t.Port))

	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to establish SSH connection: %w", err)
	}

	return &sshRunner{
		client:  ssh.NewClient(sshConn, chans, reqs),
		timeout: timeout,
	}, nil
}

// Run executes a command in a new session and returns its combined output.
// A non-zero exit status is reported as an error.
func (r *sshRunner) Run(ctx context.Context, cmd string) (string, error) {
	session, err := r.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := session.CombinedOutput(cmd)
		done <- result{out: out, err: err}
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			var exitErr *ssh.ExitError
			if errors.As(res.err, &exitErr) {
				return string(res.out), fmt.Errorf("exit status %d", exitErr.ExitStatus())
			}
			return "", fmt.Errorf("command failed: %w", res.err)
		}
		return string(res.out), nil
	case <-ctx.Done():
		session.Signal(ssh.SIGKILL)
		return "", ctx.Err()
	case <-timer.C:
		session.Signal(ssh.SIGKILL)
		return "", fmt.Errorf("command timeout")
	}
}

func (r *sshRunner) Close() error {
	return r.client.Close()
}
