// config_env.go: Config source reading parameters from environment variables and property files.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"fmt"
	"sync"

	goerrors "github.com/agilira/go-errors"
	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// EnvironmentConfig is a SimpleConfig whose parameters can be bound to environment
// variables or to entries of a property set. A binding reads its source at bind
// time; an absent or empty source leaves the parameter unset.
//
// Example:
//
//	cfg := pbecrypt.NewEnvironmentConfig()
//	_ = cfg.SetPasswordEnvName("APP_ENCRYPTION_PASSWORD")
//	_ = cfg.SetAlgorithm("PBEWithHMACSHA256AndAES_256_GCM")
type EnvironmentConfig struct {
	SimpleConfig

	propsMu  sync.RWMutex
	props    map[string]string
	bindings map[string]string
}

// EnvironmentOption configures an EnvironmentConfig.
type EnvironmentOption func(*EnvironmentConfig)

// WithProperties sets the property set used by the Set*PropertyName bindings.
func WithProperties(props map[string]string) EnvironmentOption {
	return func(c *EnvironmentConfig) {
		for k, v := range props {
			c.props[k] = v
		}
	}
}

// NewEnvironmentConfig returns an EnvironmentConfig with no bindings.
func NewEnvironmentConfig(opts ...EnvironmentOption) *EnvironmentConfig {
	c := &EnvironmentConfig{
		props:    make(map[string]string),
		bindings: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadPropertiesFile merges KEY=value entries from the given files (dotenv syntax)
// into the property set. Later files win.
func (c *EnvironmentConfig) LoadPropertiesFile(paths ...string) error {
	for _, path := range paths {
		values, err := godotenv.Read(path)
		if err != nil {
			return invalidParameter("properties file",
				goerrors.Wrap(err, ErrCodeInvalidParameter, fmt.Sprintf("cannot read %s", path)))
		}
		c.propsMu.Lock()
		for k, v := range values {
			c.props[k] = v
		}
		c.propsMu.Unlock()
	}
	return nil
}

// BindEnv assigns parameter key from environment variable name.
func (c *EnvironmentConfig) BindEnv(key, name string) error {
	if err := validateName("environment variable name", name); err != nil {
		return err
	}
	return c.bind(key, "env:"+name, env.GetString(name, ""))
}

// BindProperty assigns parameter key from the property named name.
func (c *EnvironmentConfig) BindProperty(key, name string) error {
	if err := validateName("property name", name); err != nil {
		return err
	}
	c.propsMu.RLock()
	value := c.props[name]
	c.propsMu.RUnlock()
	return c.bind(key, "property:"+name, value)
}

func (c *EnvironmentConfig) bind(key, source, value string) error {
	if value == "" {
		if err := c.unset(key); err != nil {
			return err
		}
	} else if err := c.Set(key, value); err != nil {
		return err
	}
	c.propsMu.Lock()
	c.bindings[key] = source
	c.propsMu.Unlock()
	return nil
}

// Bindings returns the source each bound parameter was read from, such as
// "env:APP_PASSWORD" or "property:algorithm".
func (c *EnvironmentConfig) Bindings() map[string]string {
	c.propsMu.RLock()
	defer c.propsMu.RUnlock()
	out := make(map[string]string, len(c.bindings))
	for k, v := range c.bindings {
		out[k] = v
	}
	return out
}

// SetAlgorithmEnvName reads the algorithm from the named environment variable now.
func (c *EnvironmentConfig) SetAlgorithmEnvName(name string) error {
	return c.BindEnv(KeyAlgorithm, name)
}

// SetAlgorithmPropertyName reads the algorithm from the named property now.
func (c *EnvironmentConfig) SetAlgorithmPropertyName(name string) error {
	return c.BindProperty(KeyAlgorithm, name)
}

// SetPasswordEnvName reads the password from the named environment variable now.
func (c *EnvironmentConfig) SetPasswordEnvName(name string) error {
	return c.BindEnv(KeyPassword, name)
}

// SetPasswordPropertyName reads the password from the named property now.
func (c *EnvironmentConfig) SetPasswordPropertyName(name string) error {
	return c.BindProperty(KeyPassword, name)
}

// SetIterationsEnvName reads the iterations from the named environment variable now.
func (c *EnvironmentConfig) SetIterationsEnvName(name string) error {
	return c.BindEnv(KeyIterations, name)
}

// SetIterationsPropertyName reads the iterations from the named property now.
func (c *EnvironmentConfig) SetIterationsPropertyName(name string) error {
	return c.BindProperty(KeyIterations, name)
}

// SetSaltSizeBytesEnvName reads the salt size bytes from the named environment variable now.
func (c *EnvironmentConfig) SetSaltSizeBytesEnvName(name string) error {
	return c.BindEnv(KeySaltSizeBytes, name)
}

// SetSaltSizeBytesPropertyName reads the salt size bytes from the named property now.
func (c *EnvironmentConfig) SetSaltSizeBytesPropertyName(name string) error {
	return c.BindProperty(KeySaltSizeBytes, name)
}

// SetSaltGeneratorEnvName reads the salt generator from the named environment variable now.
func (c *EnvironmentConfig) SetSaltGeneratorEnvName(name string) error {
	return c.BindEnv(KeySaltGenerator, name)
}

// SetSaltGeneratorPropertyName reads the salt generator from the named property now.
func (c *EnvironmentConfig) SetSaltGeneratorPropertyName(name string) error {
	return c.BindProperty(KeySaltGenerator, name)
}

// SetProviderNameEnvName reads the provider name from the named environment variable now.
func (c *EnvironmentConfig) SetProviderNameEnvName(name string) error {
	return c.BindEnv(KeyProviderName, name)
}

// SetProviderNamePropertyName reads the provider name from the named property now.
func (c *EnvironmentConfig) SetProviderNamePropertyName(name string) error {
	return c.BindProperty(KeyProviderName, name)
}

// SetPoolSizeEnvName reads the pool size from the named environment variable now.
func (c *EnvironmentConfig) SetPoolSizeEnvName(name string) error {
	return c.BindEnv(KeyPoolSize, name)
}

// SetPoolSizePropertyName reads the pool size from the named property now.
func (c *EnvironmentConfig) SetPoolSizePropertyName(name string) error {
	return c.BindProperty(KeyPoolSize, name)
}

// SetStringOutputTypeEnvName reads the string output type from the named environment variable now.
func (c *EnvironmentConfig) SetStringOutputTypeEnvName(name string) error {
	return c.BindEnv(KeyStringOutputType, name)
}

// SetStringOutputTypePropertyName reads the string output type from the named property now.
func (c *EnvironmentConfig) SetStringOutputTypePropertyName(name string) error {
	return c.BindProperty(KeyStringOutputType, name)
}
