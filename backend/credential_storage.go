package backend

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

// SSHCredential names a remote endpoint and how to authenticate against it.
type SSHCredential struct {
	Name           string    `toml:"name"`
	Username       string    `toml:"username"`
	Host           string    `toml:"host"`
	Port           int       `toml:"port,omitempty"`
	PrivateKeyPath string    `toml:"private_key_path,omitempty"`
	Password       string    `toml:"password,omitempty"`
	UUID           uuid.UUID `toml:"uuid"`
}

func (s *SSHCredential) Addr() string {
	port := s.Port
	if port == 0 {
		port = 22
	}
	return fmt.Sprintf("%s:%d", s.Host, port)
}

func (s *SSHCredential) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Username == "" {
		return errors.New("username is required")
	}
	if s.Host == "" {
		return errors.New("host is required")
	}
	if s.Port == 0 {
		s.Port = 22
	}
	if s.PrivateKeyPath == "" && s.Password == "" {
		return errors.New("at least one authentication method required: private_key_path or password")
	}
	return nil
}

// CredentialStorage persists SSH credentials between invocations.
type CredentialStorage interface {
	GetCredentialByUUID(uuid.UUID) (*SSHCredential, error)
	GetCredentialByName(name string) (*SSHCredential, error)
	AddCredential(*SSHCredential) error
	DeleteCredential(uuid.UUID) error
	DeleteCredentialByName(string) error
	ListCredentials() ([]*SSHCredential, error)
}

// TomlCredentialStorage keeps credentials in a single TOML file keyed by
// UUID. Writes rewrite the whole file; the store is small and per-user.
type TomlCredentialStorage struct {
	filePath    string
	Credentials map[string]*SSHCredential `toml:"credentials"`
}

func NewTomlCredentialStorage(filePath string) (CredentialStorage, error) {
	storage := &TomlCredentialStorage{
		filePath:    filePath,
		Credentials: make(map[string]*SSHCredential),
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
			return nil, err
		}
		f, err := os.Create(filePath)
		if err != nil {
			return nil, err
		}
		f.Close()
	}

	if err := storage.loadFromFile(); err != nil {
		return nil, err
	}

	return storage, nil
}

func (s *TomlCredentialStorage) loadFromFile() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return toml.Unmarshal(data, s)
}

func (s *TomlCredentialStorage) saveToFile() error {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(s); err != nil {
		return err
	}
	if err := os.WriteFile(s.filePath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("save credential storage: %w", err)
	}
	return nil
}

func (s *TomlCredentialStorage) GetCredentialByUUID(id uuid.UUID) (*SSHCredential, error) {
	cred, ok := s.Credentials[id.String()]
	if !ok {
		return nil, errors.New("credential not found")
	}
	return cred, nil
}

func (s *TomlCredentialStorage) GetCredentialByName(name string) (*SSHCredential, error) {
	for _, cred := range s.Credentials {
		if cred.Name == name {
			return cred, nil
		}
	}
	return nil, errors.New("credential not found")
}

func (s *TomlCredentialStorage) AddCredential(cred *SSHCredential) error {
	if cred.UUID == uuid.Nil {
		return errors.New("credential must have a UUID")
	}
	if err := cred.Validate(); err != nil {
		return err
	}
	s.Credentials[cred.UUID.String()] = cred
	return s.saveToFile()
}

func (s *TomlCredentialStorage) DeleteCredential(id uuid.UUID) error {
	if _, exists := s.Credentials[id.String()]; !exists {
		return errors.New("credential not found")
	}
	delete(s.Credentials, id.String())
	return s.saveToFile()
}

func (s *TomlCredentialStorage) DeleteCredentialByName(name string) error {
	for id, cred := range s.Credentials {
		if cred.Name == name {
			delete(s.Credentials, id)
			return s.saveToFile()
		}
	}
	return errors.New("credential not found")
}

func (s *TomlCredentialStorage) ListCredentials() ([]*SSHCredential, error) {
	creds := make([]*SSHCredential, 0, len(s.Credentials))
	for _, cred := range s.Credentials {
		creds = append(creds, cred)
	}
	return creds, nil
}
