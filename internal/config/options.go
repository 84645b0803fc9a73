package config

import (
	"time"

	"github.com/telarpress/contact-relay/clientip"
)

const (
	defaultHost               = "0.0.0.0"
	defaultPort               = 8080
	defaultLogLevel           = "info"
	defaultLogFile            = ""
	defaultLogFileMaxSize     = 20
	defaultLogFileMaxBackups  = 3
	defaultLogFileMaxAge      = 28
	defaultLogCompress        = false
	defaultMaxBodyBytes       = 1 << 20
	defaultSuccessRedirectURL = "https://telar.press/pending.html"
	defaultReadTimeout        = 15 * time.Second
	defaultWriteTimeout       = 60 * time.Second
	defaultShutdownTimeout    = 15 * time.Second

	defaultCaptchaSecretFile = "/var/openfaas/secrets/secret-key"
	defaultMailUserFile      = "/var/openfaas/secrets/gmail"
	defaultMailPasswordFile  = "/var/openfaas/secrets/gmail-pass"

	defaultCaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	defaultCaptchaTimeout   = 10 * time.Second

	defaultMailTransport     = TransportSMTP
	defaultMailSMTPHost      = "smtp.gmail.com"
	defaultMailSMTPPort      = 465
	defaultMailSubjectPrefix = "Telar Social Company Contact"
	defaultMailSESRegion     = "us-east-1"
	defaultMailTimeout       = 30 * time.Second

	defaultRemoteAddrFallback = true

	defaultMetricsEnabled = true
	defaultMetricsPath    = "/metrics"
)

// Mail transports.
const (
	TransportSMTP = "smtp"
	TransportSES  = "ses"
)

// Option overrides a single configuration key, typically from a command
// line flag.
type Option struct {
	Key   string
	Value interface{}
}

// Options is the service configuration.
//
// Fields carry mapstructure tags because viper decodes through mapstructure;
// json tags would be ignored.
type Options struct {
	// Host is the interface to listen on
	Host string `mapstructure:"host" yaml:"host"`
	// Port is the port to listen on
	Port int `mapstructure:"port" yaml:"port"`
	// LogLevel is one of debug, info, warn, error
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	// LogFile is an optional JSON log file; empty logs to stdout only
	LogFile string `mapstructure:"log_file" yaml:"log_file"`
	// LogFileMaxSize is the size in megabytes before the log file is rotated
	LogFileMaxSize int `mapstructure:"log_file_max_size" yaml:"log_file_max_size"`
	// LogFileMaxBackups is the number of rotated files to keep
	LogFileMaxBackups int `mapstructure:"log_file_max_backups" yaml:"log_file_max_backups"`
	// LogFileMaxAge is the number of days to keep a rotated file
	LogFileMaxAge int `mapstructure:"log_file_max_age" yaml:"log_file_max_age"`
	// LogCompress gzips rotated files
	LogCompress bool `mapstructure:"log_compress" yaml:"log_compress"`

	// MaxBodyBytes caps the size of a submission body
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	// SuccessRedirectURL is where the HTTP adapter sends the browser after a
	// successful submission. Empty answers with an empty JSON object instead.
	SuccessRedirectURL string `mapstructure:"success_redirect_url" yaml:"success_redirect_url"`

	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	Secrets  SecretFiles     `mapstructure:"secrets" yaml:"secrets"`
	Captcha  CaptchaOptions  `mapstructure:"captcha" yaml:"captcha"`
	Mail     MailOptions     `mapstructure:"mail" yaml:"mail"`
	ClientIP ClientIPOptions `mapstructure:"client_ip" yaml:"client_ip"`
	Metrics  MetricsOptions  `mapstructure:"metrics" yaml:"metrics"`
}

// SecretFiles holds the paths of the secret files. Only paths are part of the
// configuration; contents are read by LoadSecrets.
type SecretFiles struct {
	CaptchaSecretFile string `mapstructure:"captcha_secret_file" yaml:"captcha_secret_file"`
	MailUserFile      string `mapstructure:"mail_user_file" yaml:"mail_user_file"`
	MailPasswordFile  string `mapstructure:"mail_password_file" yaml:"mail_password_file"`
}

type CaptchaOptions struct {
	VerifyURL string        `mapstructure:"verify_url" yaml:"verify_url"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type MailOptions struct {
	// Transport is smtp or ses
	Transport string `mapstructure:"transport" yaml:"transport"`
	SMTPHost  string `mapstructure:"smtp_host" yaml:"smtp_host"`
	// SMTPPort 465 uses implicit TLS, any other port STARTTLS
	SMTPPort      int           `mapstructure:"smtp_port" yaml:"smtp_port"`
	Recipient     string        `mapstructure:"recipient" yaml:"recipient"`
	SubjectPrefix string        `mapstructure:"subject_prefix" yaml:"subject_prefix"`
	SESRegion     string        `mapstructure:"ses_region" yaml:"ses_region"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type ClientIPOptions struct {
	Priority []string `mapstructure:"priority" yaml:"priority"`
	// RemoteAddrFallback appends the connection address as the last source
	RemoteAddrFallback bool `mapstructure:"remote_addr_fallback" yaml:"remote_addr_fallback"`
	MaxChainLength     int  `mapstructure:"max_chain_length" yaml:"max_chain_length"`
}

type MetricsOptions struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// defaults lists every configuration key with its default value. Keys must be
// registered here for environment overrides to reach Unmarshal.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"host":                 defaultHost,
		"port":                 defaultPort,
		"log_level":            defaultLogLevel,
		"log_file":             defaultLogFile,
		"log_file_max_size":    defaultLogFileMaxSize,
		"log_file_max_backups": defaultLogFileMaxBackups,
		"log_file_max_age":     defaultLogFileMaxAge,
		"log_compress":         defaultLogCompress,
		"max_body_bytes":       defaultMaxBodyBytes,
		"success_redirect_url": defaultSuccessRedirectURL,
		"read_timeout":         defaultReadTimeout,
		"write_timeout":        defaultWriteTimeout,
		"shutdown_timeout":     defaultShutdownTimeout,

		"secrets.captcha_secret_file": defaultCaptchaSecretFile,
		"secrets.mail_user_file":      defaultMailUserFile,
		"secrets.mail_password_file":  defaultMailPasswordFile,

		"captcha.verify_url": defaultCaptchaVerifyURL,
		"captcha.timeout":    defaultCaptchaTimeout,

		"mail.transport":      defaultMailTransport,
		"mail.smtp_host":      defaultMailSMTPHost,
		"mail.smtp_port":      defaultMailSMTPPort,
		"mail.recipient":      "",
		"mail.subject_prefix": defaultMailSubjectPrefix,
		"mail.ses_region":     defaultMailSESRegion,
		"mail.timeout":        defaultMailTimeout,

		"client_ip.priority":             append([]string(nil), clientip.DefaultPriority...),
		"client_ip.remote_addr_fallback": defaultRemoteAddrFallback,
		"client_ip.max_chain_length":     clientip.DefaultMaxChainLength,

		"metrics.enabled": defaultMetricsEnabled,
		"metrics.path":    defaultMetricsPath,
	}
}

// ClientIPPriority returns the configured header order with the connection
// address appended when the fallback is enabled.
func (o *Options) ClientIPPriority() []string {
	priority := append([]string(nil), o.ClientIP.Priority...)
	if !o.ClientIP.RemoteAddrFallback {
		return priority
	}
	for _, source := range priority {
		if clientip.NormalizeSourceName(source) == clientip.SourceRemoteAddr {
			return priority
		}
	}
	return append(priority, clientip.SourceRemoteAddr)
}
