package app

import (
	"github.com/SimoSabev/LynkSkill-sub003/internal/outbox"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/mail"
)

// SMTPSettings converts EmailConfig to the mail package representation.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	return mail.SMTPSettings{
		Enabled:  c.SMTP.Enabled,
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
		Timeout:  c.SMTP.Timeout,
	}
}

// Enabled reports whether any broker is configured.
func (c KafkaConfig) Enabled() bool {
	for _, broker := range c.Brokers {
		if broker != "" {
			return true
		}
	}
	return false
}

// WriterConfig converts KafkaConfig into the outbox writer configuration.
func (c KafkaConfig) WriterConfig() outbox.WriterConfig {
	return outbox.WriterConfig{
		Brokers:      c.Brokers,
		BatchTimeout: c.BatchTimeout,
		WriteTimeout: c.WriteTimeout,
	}
}

// RelayOptions converts KafkaConfig into outbox relay options.
func (c KafkaConfig) RelayOptions() outbox.Options {
	return outbox.Options{
		PollInterval: c.PollInterval,
		BatchSize:    c.BatchSize,
		BaseBackoff:  c.BaseBackoff,
	}
}
