package config

import "testing"

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_USE_TLS", "true")
	t.Setenv("NOTIFY_QUEUE_SIZE", "128")

	config := &Config{}
	setDefaults(config)
	if err := loadFromEnv(config); err != nil {
		t.Fatalf("loadFromEnv returned error: %v", err)
	}

	if config.Server.Port != "9090" {
		t.Errorf("expected server port 9090, got %q", config.Server.Port)
	}
	if config.SMTP.Port != 2525 {
		t.Errorf("expected smtp port 2525, got %d", config.SMTP.Port)
	}
	if !config.SMTP.UseTLS {
		t.Error("expected use_tls override to apply")
	}
	if config.Notify.QueueSize != 128 {
		t.Errorf("expected queue size 128, got %d", config.Notify.QueueSize)
	}
}

func TestLoadFromEnvLeavesUnsetFieldsAlone(t *testing.T) {
	config := &Config{}
	setDefaults(config)
	want := config.Database.DBName

	if err := loadFromEnv(config); err != nil {
		t.Fatalf("loadFromEnv returned error: %v", err)
	}
	if config.Database.DBName != want {
		t.Errorf("dbname changed without an env var: %q", config.Database.DBName)
	}
}

func TestLoadFromEnvRejectsMalformedValues(t *testing.T) {
	t.Setenv("NOTIFY_QUEUE_SIZE", "lots")

	config := &Config{}
	setDefaults(config)
	if err := loadFromEnv(config); err == nil {
		t.Fatal("malformed integer env var should fail")
	}
}
