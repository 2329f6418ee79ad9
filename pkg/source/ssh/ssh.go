// Package ssh implements a source.Source that dials a remote host and
// streams a configured command's stdout (typically "tail -F emerge.log" for
// a build farm box the operator doesn't have local access to).
package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"

	"github.com/bascanada/buildlog/pkg/source"
	sshc "golang.org/x/crypto/ssh"
	"k8s.io/client-go/util/homedir"
)

const (
	optionAddr       = "addr"
	optionUser       = "user"
	optionPrivateKey = "privateKey"
	optionCmd        = "cmd"
	optionDisablePTY = "disablePTY"
)

type sshSource struct {
	addr       string
	user       string
	privateKey string
	cmd        string
	disablePTY bool
}

func init() {
	source.Register("ssh", func(opts map[string]string) (source.Source, error) {
		return newSource(opts)
	})
}

func newSource(opts map[string]string) (sshSource, error) {
	s := sshSource{
		addr:       opts[optionAddr],
		user:       opts[optionUser],
		privateKey: opts[optionPrivateKey],
		cmd:        opts[optionCmd],
		disablePTY: opts[optionDisablePTY] == "true",
	}
	if s.addr == "" {
		return sshSource{}, errors.New("ssh source: addr is required")
	}
	if s.user == "" {
		return sshSource{}, errors.New("ssh source: user is required")
	}
	if s.cmd == "" {
		return sshSource{}, errors.New("ssh source: cmd is required")
	}
	return s, nil
}

func (s sshSource) Open(ctx context.Context) (io.ReadCloser, error) {
	conn, err := s.dial()
	if err != nil {
		return nil, fmt.Errorf("ssh dial: %w", err)
	}

	session, err := conn.NewSession()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh new session: %w", err)
	}

	if !s.disablePTY {
		modes := sshc.TerminalModes{
			sshc.ECHO:          0,
			sshc.TTY_OP_ISPEED: 14400,
			sshc.TTY_OP_OSPEED: 14400,
		}
		if err := session.RequestPty("xterm", 80, 40, modes); err != nil {
			session.Close()
			conn.Close()
			return nil, fmt.Errorf("ssh request pty: %w", err)
		}
	}

	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		conn.Close()
		return nil, fmt.Errorf("ssh stdout pipe: %w", err)
	}

	if err := session.Start(s.cmd); err != nil {
		session.Close()
		conn.Close()
		return nil, fmt.Errorf("ssh start command: %w", err)
	}

	return &sessionReader{stdout: stdout, session: session, conn: conn}, nil
}

func (s sshSource) dial() (*sshc.Client, error) {
	keyPath := s.privateKey
	if keyPath == "" {
		keyPath = filepath.Join(homedir.HomeDir(), ".ssh", "id_rsa")
	}

	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}
	signer, err := sshc.ParsePrivateKey(key)
	if err != nil {
		return nil, err
	}

	config := &sshc.ClientConfig{
		User: s.user,
		Auth: []sshc.AuthMethod{sshc.PublicKeys(signer)},
		HostKeyCallback: func(hostname string, remote net.Addr, key sshc.PublicKey) error {
			return nil
		},
	}
	return sshc.Dial("tcp", s.addr, config)
}

// sessionReader ties the lifetime of the SSH session and connection to the
// stdout pipe so callers only need to Close() once.
type sessionReader struct {
	stdout  io.Reader
	session *sshc.Session
	conn    *sshc.Client
}

func (r *sessionReader) Read(p []byte) (int, error) {
	return r.stdout.Read(p)
}

func (r *sessionReader) Close() error {
	waitErr := r.session.Wait()
	sessionErr := r.session.Close()
	connErr := r.conn.Close()
	if waitErr != nil {
		return waitErr
	}
	if sessionErr != nil {
		return sessionErr
	}
	return connErr
}
