package kafka_config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " broker-a:9092, ,broker-b:9092 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[0] != "broker-a:9092" || cfg.Brokers[1] != "broker-b:9092" {
		t.Errorf("Brokers = %v", cfg.Brokers)
	}
	if cfg.ProducerCompression != DefaultProducerCompression {
		t.Errorf("ProducerCompression = %q", cfg.ProducerCompression)
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := &Config{
		ProducerMaxAttempts:  0,
		ProducerBatchTimeout: 0,
		ProducerRequireAcks:  2,
		ProducerCompression:  "brotli",
		PublishTimeout:       0,
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"broker", "ProducerMaxAttempts", "ProducerBatchTimeout", "PublishTimeout", "ProducerCompression", "ProducerRequireAcks"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err.Error(), want)
		}
	}
}
