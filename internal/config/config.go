package config

import (
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, with "." in keys
// replaced by "_" (mail.recipient is read from CONTACT_MAIL_RECIPIENT).
const EnvPrefix = "CONTACT"

// Load builds the options from defaults, an optional config file, the
// environment, and explicit overrides, in increasing order of precedence.
// The result is validated.
func Load(file string, overrides ...Option) (*Options, error) {
	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return nil, errors.Wrapf(err, "unable to access config file %s", file)
		}
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "unable to read config file %s", file)
		}
	}

	for _, o := range overrides {
		v.Set(o.Key, o.Value)
	}

	opts := &Options{}
	if err := v.Unmarshal(opts); err != nil {
		return nil, errors.Wrap(err, "unable to decode configuration")
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return opts, nil
}

// LoadDotEnv loads KEY=value pairs from path into the process environment
// without replacing variables that are already set. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "unable to load env file %s", path)
	}
	return nil
}

// Validate reports the first configuration problem found.
func (o *Options) Validate() error {
	if o.Port <= 0 || o.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", o.Port)
	}
	if o.MaxBodyBytes <= 0 {
		return errors.Errorf("max_body_bytes must be > 0, got %d", o.MaxBodyBytes)
	}
	if o.SuccessRedirectURL != "" {
		if _, err := url.ParseRequestURI(o.SuccessRedirectURL); err != nil {
			return errors.Wrap(err, "invalid success_redirect_url")
		}
	}

	if _, err := url.ParseRequestURI(o.Captcha.VerifyURL); err != nil {
		return errors.Wrap(err, "invalid captcha.verify_url")
	}
	if o.Captcha.Timeout <= 0 {
		return errors.New("captcha.timeout must be > 0")
	}

	if strings.TrimSpace(o.Mail.Recipient) == "" {
		return errors.New("mail.recipient is required")
	}
	switch o.Mail.Transport {
	case TransportSMTP:
		if o.Mail.SMTPHost == "" {
			return errors.New("mail.smtp_host is required for the smtp transport")
		}
		if o.Mail.SMTPPort <= 0 || o.Mail.SMTPPort > 65535 {
			return errors.Errorf("mail.smtp_port must be between 1 and 65535, got %d", o.Mail.SMTPPort)
		}
	case TransportSES:
		if o.Mail.SESRegion == "" {
			return errors.New("mail.ses_region is required for the ses transport")
		}
	default:
		return errors.Errorf("unknown mail.transport %q, want %q or %q", o.Mail.Transport, TransportSMTP, TransportSES)
	}
	if o.Mail.Timeout <= 0 {
		return errors.New("mail.timeout must be > 0")
	}

	if len(o.ClientIPPriority()) == 0 {
		return errors.New("client_ip.priority must name at least one source")
	}
	if o.ClientIP.MaxChainLength <= 0 {
		return errors.Errorf("client_ip.max_chain_length must be > 0, got %d", o.ClientIP.MaxChainLength)
	}

	if o.Metrics.Enabled && !strings.HasPrefix(o.Metrics.Path, "/") {
		return errors.Errorf("metrics.path must start with /, got %q", o.Metrics.Path)
	}

	return nil
}

// Dump writes the options as YAML. Secrets are file paths, so nothing
// sensitive is printed.
func Dump(w io.Writer, opts *Options) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(opts); err != nil {
		return errors.Wrap(err, "unable to encode configuration")
	}
	return enc.Close()
}
