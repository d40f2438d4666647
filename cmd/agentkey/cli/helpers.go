package cli

import (
	"crypto"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/term"

	"github.com/majorcontext/agentkey/internal/agentclient"
	"github.com/majorcontext/agentkey/internal/keymsg"
	"github.com/majorcontext/agentkey/internal/log"
)

// dialAgent resolves the agent socket and connects.
func dialAgent() (*agentclient.Client, error) {
	sock := sockPath
	if sock == "" {
		sock = cfg.SocketPath()
	}
	if sock == "" {
		return nil, fmt.Errorf("no agent socket configured\n\n" +
			"Set SSH_AUTH_SOCK (eval \"$(ssh-agent -s)\"), pass --sock,\n" +
			"or set agent.socket in ~/.agentkey/config.yaml")
	}

	log.Debug("connecting to agent", "socket", sock)
	timeout := time.Duration(cfg.Agent.TimeoutSeconds) * time.Second
	client, err := agentclient.DialTimeout(sock, timeout)
	if err != nil {
		return nil, fmt.Errorf("connecting to SSH agent: %w\n\n"+
			"Make sure your SSH agent is running and the socket path is correct.", err)
	}
	return client, nil
}

// loadPrivateKey reads and parses a private key file, prompting for a
// passphrase when the key is encrypted.
func loadPrivateKey(path string) (crypto.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading private key %s: %w", path, err)
	}

	km, err := keymsg.LoadKeyMaterial(data, nil)
	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) {
		fmt.Fprintf(os.Stderr, "Enter passphrase for %s: ", path)
		passphrase, perr := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if perr != nil {
			return nil, fmt.Errorf("reading passphrase: %w", perr)
		}
		km, err = keymsg.LoadKeyMaterial(data, passphrase)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing private key %s: %w", path, err)
	}

	log.Debug("loaded private key", "path", path, "fingerprint", km.Fingerprint)
	return km.PrivateKey, nil
}

// loadPublicKey reads a public key file in authorized_keys format and
// returns the native public key.
func loadPublicKey(path string) (crypto.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading public key %s: %w", path, err)
	}
	sshPub, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return nil, fmt.Errorf("parsing public key %s: %w", path, err)
	}
	cryptoPub, ok := sshPub.(ssh.CryptoPublicKey)
	if !ok {
		return nil, fmt.Errorf("public key %s has no native form (type %s)", path, sshPub.Type())
	}
	return cryptoPub.CryptoPublicKey(), nil
}
