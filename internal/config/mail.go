package config

import "time"

// MailConfig holds SMTP settings for participant emails.  An empty Host
// disables email.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Timeout  time.Duration
}

func LoadMailConfig() MailConfig {
	return MailConfig{
		Host:     envStr("SMTP_HOST", ""),
		Port:     envInt("SMTP_PORT", 587),
		Username: envStr("SMTP_USERNAME", ""),
		Password: envStr("SMTP_PASSWORD", ""),
		From:     envStr("MAIL_FROM", "no-reply@localhost"),
		FromName: envStr("MAIL_FROM_NAME", "Atelier"),
		Timeout:  envDur("SMTP_TIMEOUT", 15*time.Second),
	}
}

// UploadConfig holds the S3 bucket receiving payment proofs.  An empty
// Bucket disables uploads; bookings must then carry a proof URL.
type UploadConfig struct {
	Bucket        string
	Region        string
	Endpoint      string // S3-compatible endpoint such as MinIO
	PublicBaseURL string // overrides the URL prefix returned for uploads
	Folder        string
}

func LoadUploadConfig() UploadConfig {
	return UploadConfig{
		Bucket:        envStr("S3_BUCKET", ""),
		Region:        envStr("AWS_REGION", "eu-west-3"),
		Endpoint:      envStr("S3_ENDPOINT", ""),
		PublicBaseURL: envStr("S3_PUBLIC_BASE_URL", ""),
		Folder:        envStr("S3_PROOF_FOLDER", "payment-proofs"),
	}
}
