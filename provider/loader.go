package provider

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

/* Loader for providers.yaml
 * Any configuration error here is fatal at startup: a misconfigured provider
 * must never accept unauthenticated deliveries.
 */

// Config represents the structure of providers.yaml
type Config struct {
	Providers []ProviderConfig `yaml:"providers"`
}

// ProviderConfig represents a single provider in the YAML file
type ProviderConfig struct {
	Name               string       `yaml:"name"`
	SignatureHeader    string       `yaml:"signature_header"`
	SignatureAlgorithm string       `yaml:"signature_algorithm"` // Default: sha256
	SignatureFormat    string       `yaml:"signature_format"`    // Default: simple
	Secrets            []string     `yaml:"secrets"`
	APIKeyHeader       string       `yaml:"api_key_header"`
	APIKeys            []string     `yaml:"api_keys"`
	EventTypeKey       string       `yaml:"event_type_key"` // Default: type
	Retry              *RetryConfig `yaml:"retry"`
}

// RetryConfig represents per-provider retry defaults in the YAML file
type RetryConfig struct {
	Enabled      *bool  `yaml:"enabled"`       // Default: true
	MaxRetries   *int   `yaml:"max_retries"`   // Default: 3
	Delay        string `yaml:"delay"`         // exponential (default) or fixed
	DelaySeconds int    `yaml:"delay_seconds"` // Required when delay is fixed
}

// Load reads and parses a providers.yaml file into a Registry
func Load(filePath string) (*Registry, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading providers file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Registry from raw YAML
func Parse(data []byte) (*Registry, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing providers YAML: %w", err)
	}

	providers := make([]Provider, 0, len(config.Providers))
	for _, pc := range config.Providers {
		providers = append(providers, pc.toProvider())
	}
	return NewRegistry(providers...)
}

func (pc ProviderConfig) toProvider() Provider {
	p := Provider{
		Name:               pc.Name,
		SignatureHeader:    pc.SignatureHeader,
		SignatureAlgorithm: pc.SignatureAlgorithm,
		SignatureFormat:    SignatureFormat(pc.SignatureFormat),
		Secrets:            pc.Secrets,
		APIKeyHeader:       pc.APIKeyHeader,
		APIKeys:            pc.APIKeys,
		EventTypeKey:       pc.EventTypeKey,
	}

	if pc.Retry != nil {
		retry := DefaultRetryPolicy()
		if pc.Retry.Enabled != nil {
			retry.Enabled = *pc.Retry.Enabled
		}
		if pc.Retry.MaxRetries != nil {
			retry.MaxRetries = *pc.Retry.MaxRetries
		}
		if pc.Retry.Delay != "" {
			retry.Delay = DelayPolicy{
				Kind:         DelayKind(pc.Retry.Delay),
				FixedSeconds: pc.Retry.DelaySeconds,
			}
		}
		p.Retry = retry
	}

	return p
}
