package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Secrets are the credentials read from the secret store at startup.
type Secrets struct {
	CaptchaSecret string
	MailUser      string
	MailPassword  string
}

// LoadSecrets reads the secret files named in opts. Surrounding whitespace,
// including the trailing newline most secret stores add, is trimmed.
//
// The mail password is only required by the smtp transport.
func LoadSecrets(opts *Options) (*Secrets, error) {
	captchaSecret, err := readSecret(opts.Secrets.CaptchaSecretFile)
	if err != nil {
		return nil, err
	}
	mailUser, err := readSecret(opts.Secrets.MailUserFile)
	if err != nil {
		return nil, err
	}

	var mailPassword string
	if opts.Mail.Transport == TransportSMTP {
		mailPassword, err = readSecret(opts.Secrets.MailPasswordFile)
		if err != nil {
			return nil, err
		}
	}

	return &Secrets{
		CaptchaSecret: captchaSecret,
		MailUser:      mailUser,
		MailPassword:  mailPassword,
	}, nil
}

func readSecret(path string) (string, error) {
	if path == "" {
		return "", errors.New("secret file path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "unable to read secret %s", path)
	}
	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", errors.Errorf("secret %s is empty", path)
	}
	return secret, nil
}
