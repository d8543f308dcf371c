package sftpchan

import (
	"fmt"
	"os"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/jgoldverg/canopy/backend"
	"github.com/jgoldverg/canopy/internal"
)

// Session bundles the SSH connection and the SFTP subsystem running on it.
// Closing the session invalidates every Channel handed out from it.
type Session struct {
	sshClient  *ssh.Client
	sftpClient *sftp.Client
}

// Dial opens an SSH connection described by cred and starts the SFTP
// subsystem. Host keys are verified against knownHostsFile when it exists;
// without one the host key is accepted blindly, which is only acceptable on
// networks the operator already trusts.
func Dial(cred *backend.SSHCredential, knownHostsFile string) (*Session, error) {
	if err := cred.Validate(); err != nil {
		return nil, fmt.Errorf("credential %q: %w", cred.Name, err)
	}

	auth, err := authMethods(cred)
	if err != nil {
		return nil, err
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if knownHostsFile != "" {
		if _, statErr := os.Stat(knownHostsFile); statErr == nil {
			hostKeyCallback, err = knownhosts.New(knownHostsFile)
			if err != nil {
				return nil, fmt.Errorf("load known hosts: %w", err)
			}
		} else {
			internal.Warn("known hosts file missing, skipping host key verification", internal.Fields{
				internal.FieldPath: knownHostsFile,
			})
		}
	}

	sshClient, err := ssh.Dial("tcp", cred.Addr(), &ssh.ClientConfig{
		User:            cred.Username,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
	})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cred.Addr(), err)
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("start sftp subsystem: %w", err)
	}

	internal.Debug("sftp session established", internal.Fields{
		internal.FieldHost:       cred.Addr(),
		internal.FieldCredential: cred.Name,
	})

	return &Session{sshClient: sshClient, sftpClient: sftpClient}, nil
}

// Channel returns the session's remote operation contract.
func (s *Session) Channel() *Channel {
	return New(s.sftpClient)
}

func (s *Session) Close() error {
	sftpErr := s.sftpClient.Close()
	sshErr := s.sshClient.Close()
	if sftpErr != nil {
		return sftpErr
	}
	return sshErr
}

func authMethods(cred *backend.SSHCredential) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod
	if cred.PrivateKeyPath != "" {
		key, err := os.ReadFile(cred.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if cred.Password != "" {
		methods = append(methods, ssh.Password(cred.Password))
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("credential %q has no usable auth method", cred.Name)
	}
	return methods, nil
}
