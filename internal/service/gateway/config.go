package gateway

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultProductionServiceURL = "http://localhost:3335"
	DefaultPaymentServiceURL    = "http://localhost:3334"
	DefaultTimeout              = 5 * time.Second
)

// Config — адреса соседних сервисов. Значение копируется в конструкторе
// и дальше не меняется.
type Config struct {
	ProductionServiceURL string
	PaymentServiceURL    string
	Timeout              time.Duration
}

// DefaultConfig возвращает адреса для локального запуска.
func DefaultConfig() Config {
	return Config{
		ProductionServiceURL: DefaultProductionServiceURL,
		PaymentServiceURL:    DefaultPaymentServiceURL,
		Timeout:              DefaultTimeout,
	}
}

// normalize подставляет значения по умолчанию и проверяет URL.
func (c Config) normalize() (Config, error) {
	if strings.TrimSpace(c.ProductionServiceURL) == "" {
		c.ProductionServiceURL = DefaultProductionServiceURL
	}
	if strings.TrimSpace(c.PaymentServiceURL) == "" {
		c.PaymentServiceURL = DefaultPaymentServiceURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}

	for name, raw := range map[string]string{
		"production service url": c.ProductionServiceURL,
		"payment service url":    c.PaymentServiceURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return Config{}, fmt.Errorf("invalid %s %q", name, raw)
		}
	}

	c.ProductionServiceURL = strings.TrimRight(c.ProductionServiceURL, "/")
	c.PaymentServiceURL = strings.TrimRight(c.PaymentServiceURL, "/")
	return c, nil
}
