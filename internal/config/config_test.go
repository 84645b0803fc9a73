package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/telarpress/contact-relay/clientip"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONTACT_MAIL_RECIPIENT", "team@example.com")

	opts, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := &Options{
		Host:               "0.0.0.0",
		Port:               8080,
		LogLevel:           "info",
		LogFileMaxSize:     20,
		LogFileMaxBackups:  3,
		LogFileMaxAge:      28,
		MaxBodyBytes:       1 << 20,
		SuccessRedirectURL: "https://telar.press/pending.html",
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       60 * time.Second,
		ShutdownTimeout:    15 * time.Second,
		Secrets: SecretFiles{
			CaptchaSecretFile: "/var/openfaas/secrets/secret-key",
			MailUserFile:      "/var/openfaas/secrets/gmail",
			MailPasswordFile:  "/var/openfaas/secrets/gmail-pass",
		},
		Captcha: CaptchaOptions{
			VerifyURL: "https://www.google.com/recaptcha/api/siteverify",
			Timeout:   10 * time.Second,
		},
		Mail: MailOptions{
			Transport:     TransportSMTP,
			SMTPHost:      "smtp.gmail.com",
			SMTPPort:      465,
			Recipient:     "team@example.com",
			SubjectPrefix: "Telar Social Company Contact",
			SESRegion:     "us-east-1",
			Timeout:       30 * time.Second,
		},
		ClientIP: ClientIPOptions{
			Priority:           clientip.DefaultPriority,
			RemoteAddrFallback: true,
			MaxChainLength:     100,
		},
		Metrics: MetricsOptions{Enabled: true, Path: "/metrics"},
	}

	if diff := cmp.Diff(want, opts); diff != "" {
		t.Fatalf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeFile(t, "contact.yaml", `
host: 127.0.0.1
port: 2333
log_level: debug
success_redirect_url: ""
captcha:
  timeout: 3s
mail:
  transport: ses
  recipient: sales@example.com
  ses_region: eu-west-1
client_ip:
  priority: [cf-connecting-ip, x-forwarded-for]
  remote_addr_fallback: false
`)

	opts, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if opts.Host != "127.0.0.1" || opts.Port != 2333 || opts.LogLevel != "debug" {
		t.Fatalf("server options = %s:%d (%s)", opts.Host, opts.Port, opts.LogLevel)
	}
	if opts.SuccessRedirectURL != "" {
		t.Fatalf("success_redirect_url = %q, want empty", opts.SuccessRedirectURL)
	}
	if opts.Captcha.Timeout != 3*time.Second {
		t.Fatalf("captcha.timeout = %s, want 3s", opts.Captcha.Timeout)
	}
	if opts.Mail.Transport != TransportSES || opts.Mail.SESRegion != "eu-west-1" {
		t.Fatalf("mail = %+v", opts.Mail)
	}
	if opts.Mail.SMTPHost != "smtp.gmail.com" {
		t.Fatalf("mail.smtp_host = %q, want default kept", opts.Mail.SMTPHost)
	}
	if diff := cmp.Diff([]string{"cf-connecting-ip", "x-forwarded-for"}, opts.ClientIPPriority()); diff != "" {
		t.Fatalf("ClientIPPriority() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "unable to access config file") {
		t.Fatalf("Load() error = %v, want access error", err)
	}
}

func TestLoadEnvAndOverrides(t *testing.T) {
	t.Setenv("CONTACT_MAIL_RECIPIENT", "env@example.com")
	t.Setenv("CONTACT_PORT", "9000")
	t.Setenv("CONTACT_MAIL_TIMEOUT", "5s")
	t.Setenv("CONTACT_CLIENT_IP_PRIORITY", "x-real-ip,true-client-ip")

	opts, err := Load("", Option{Key: "port", Value: 9100}, Option{Key: "log_level", Value: "warn"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if opts.Mail.Recipient != "env@example.com" {
		t.Fatalf("mail.recipient = %q, want env value", opts.Mail.Recipient)
	}
	if opts.Port != 9100 {
		t.Fatalf("port = %d, want override 9100", opts.Port)
	}
	if opts.LogLevel != "warn" {
		t.Fatalf("log_level = %q, want warn", opts.LogLevel)
	}
	if opts.Mail.Timeout != 5*time.Second {
		t.Fatalf("mail.timeout = %s, want 5s", opts.Mail.Timeout)
	}
	want := []string{"x-real-ip", "true-client-ip", clientip.SourceRemoteAddr}
	if diff := cmp.Diff(want, opts.ClientIPPriority()); diff != "" {
		t.Fatalf("ClientIPPriority() mismatch (-want +got):\n%s", diff)
	}
}

func validOptions(t *testing.T) *Options {
	t.Helper()
	t.Setenv("CONTACT_MAIL_RECIPIENT", "team@example.com")

	opts, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return opts
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr string
	}{
		{name: "missing recipient", mutate: func(o *Options) { o.Mail.Recipient = " " }, wantErr: "mail.recipient is required"},
		{name: "unknown transport", mutate: func(o *Options) { o.Mail.Transport = "pigeon" }, wantErr: "unknown mail.transport"},
		{name: "bad port", mutate: func(o *Options) { o.Port = 70000 }, wantErr: "port must be between"},
		{name: "bad smtp port", mutate: func(o *Options) { o.Mail.SMTPPort = 0 }, wantErr: "mail.smtp_port"},
		{name: "ses without region", mutate: func(o *Options) { o.Mail.Transport = TransportSES; o.Mail.SESRegion = "" }, wantErr: "mail.ses_region"},
		{name: "zero body limit", mutate: func(o *Options) { o.MaxBodyBytes = 0 }, wantErr: "max_body_bytes"},
		{name: "bad verify url", mutate: func(o *Options) { o.Captcha.VerifyURL = "siteverify" }, wantErr: "captcha.verify_url"},
		{name: "zero captcha timeout", mutate: func(o *Options) { o.Captcha.Timeout = 0 }, wantErr: "captcha.timeout"},
		{name: "empty priority without fallback", mutate: func(o *Options) {
			o.ClientIP.Priority = nil
			o.ClientIP.RemoteAddrFallback = false
		}, wantErr: "client_ip.priority"},
		{name: "zero chain length", mutate: func(o *Options) { o.ClientIP.MaxChainLength = 0 }, wantErr: "client_ip.max_chain_length"},
		{name: "relative metrics path", mutate: func(o *Options) { o.Metrics.Path = "metrics" }, wantErr: "metrics.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOptions(t)
			tt.mutate(opts)

			err := opts.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestClientIPPriority_NoDuplicateRemoteAddr(t *testing.T) {
	opts := &Options{ClientIP: ClientIPOptions{
		Priority:           []string{"x-real-ip", "remote-addr"},
		RemoteAddrFallback: true,
	}}

	if diff := cmp.Diff([]string{"x-real-ip", "remote-addr"}, opts.ClientIPPriority()); diff != "" {
		t.Fatalf("ClientIPPriority() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSecrets(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		return path
	}

	opts := &Options{
		Secrets: SecretFiles{
			CaptchaSecretFile: write("secret-key", "captcha-secret\n"),
			MailUserFile:      write("gmail", "  relay@example.com\r\n"),
			MailPasswordFile:  write("gmail-pass", "app-password\n"),
		},
		Mail: MailOptions{Transport: TransportSMTP},
	}

	secrets, err := LoadSecrets(opts)
	if err != nil {
		t.Fatalf("LoadSecrets() error = %v", err)
	}

	want := &Secrets{CaptchaSecret: "captcha-secret", MailUser: "relay@example.com", MailPassword: "app-password"}
	if diff := cmp.Diff(want, secrets); diff != "" {
		t.Fatalf("LoadSecrets() mismatch (-want +got):\n%s", diff)
	}

	t.Run("ses does not need a password", func(t *testing.T) {
		sesOpts := *opts
		sesOpts.Mail.Transport = TransportSES
		sesOpts.Secrets.MailPasswordFile = filepath.Join(dir, "missing")

		secrets, err := LoadSecrets(&sesOpts)
		if err != nil {
			t.Fatalf("LoadSecrets() error = %v", err)
		}
		if secrets.MailPassword != "" {
			t.Fatalf("MailPassword = %q, want empty", secrets.MailPassword)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		missing := *opts
		missing.Secrets.CaptchaSecretFile = filepath.Join(dir, "missing")

		if _, err := LoadSecrets(&missing); err == nil || !strings.Contains(err.Error(), "unable to read secret") {
			t.Fatalf("LoadSecrets() error = %v, want read error", err)
		}
	})

	t.Run("blank file", func(t *testing.T) {
		blank := *opts
		blank.Secrets.MailUserFile = write("blank", "\n")

		if _, err := LoadSecrets(&blank); err == nil || !strings.Contains(err.Error(), "is empty") {
			t.Fatalf("LoadSecrets() error = %v, want empty secret error", err)
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	const key = "CONTACT_DOTENV_TEST_RECIPIENT"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := writeFile(t, ".env", key+"=dotenv@example.com\n")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv(key); got != "dotenv@example.com" {
		t.Fatalf("%s = %q, want dotenv@example.com", key, got)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("LoadDotEnv() missing file error = %v", err)
	}
}

func TestDump(t *testing.T) {
	opts := validOptions(t)

	var buf bytes.Buffer
	if err := Dump(&buf, opts); err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"recipient: team@example.com",
		"captcha_secret_file: /var/openfaas/secrets/secret-key",
		"timeout: 10s",
		"- x_forwarded_for",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("Dump() output missing %q:\n%s", want, out)
		}
	}
}
