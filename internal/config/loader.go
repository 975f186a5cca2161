package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// lookupFunc reads one variable. The second result reports whether it is set.
type lookupFunc func(name string) (string, bool)

// Load reads configuration from environment variables, applies defaults and
// validates the result. Every unset required variable and every unparsable
// value is reported in the one error.
func Load() (*Config, error) {
	return load(os.LookupEnv)
}

func load(lookup lookupFunc) (*Config, error) {
	cfg := &Config{}

	if err := decode(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

var durationType = reflect.TypeFor[time.Duration]()

// decode fills the tagged fields of struct v, descending into nested structs.
//
// Tags:
//
//	env:"NAME"        variable to read
//	envAlt:"OTHER"    read when NAME is empty
//	default:"value"   used when both are empty
//	required:"true"   empty with no default is an error
func decode(v reflect.Value, lookup lookupFunc) error {
	var errs []error

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		if sf.Type.Kind() == reflect.Struct {
			errs = append(errs, decode(fv, lookup))
			continue
		}

		name := sf.Tag.Get("env")
		if name == "" {
			continue
		}

		raw, ok := firstSet(lookup, name, sf.Tag.Get("envAlt"))
		if !ok {
			raw, ok = sf.Tag.Lookup("default")
		}
		if !ok || raw == "" {
			if sf.Tag.Get("required") == "true" {
				errs = append(errs, fmt.Errorf("required environment variable %s is not set", name))
			}
			continue
		}

		if err := parseInto(fv, raw); err != nil {
			errs = append(errs, fmt.Errorf("invalid value for %s=%q: %w", name, raw, err))
		}
	}

	return errors.Join(errs...)
}

// firstSet returns the first non-empty variable among names.
func firstSet(lookup lookupFunc, names ...string) (string, bool) {
	for _, name := range names {
		if name == "" {
			continue
		}
		if val, ok := lookup(name); ok && val != "" {
			return val, true
		}
	}
	return "", false
}

// parseInto converts raw to the type of field and stores it.
func parseInto(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)

	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type())
		}
		field.Set(reflect.ValueOf(splitList(raw)))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Type())
	}

	return nil
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// problems collects validation failures.
type problems []string

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
	drivers    = []string{DriverPgx, DriverSQLite, DriverDuckDB}
)

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}

// Validate checks that the configuration is usable and reports every failure.
func (c *Config) Validate() error {
	var p problems

	db := c.Database
	p.check(slices.Contains(drivers, db.Driver), "DB_DRIVER (%q) must be one of: %s", db.Driver, strings.Join(drivers, ", "))
	p.check(db.URL != "", "DATABASE_URL is required")
	p.check(db.MaxConns >= db.MinConns, "DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", db.MaxConns, db.MinConns)
	p.check(db.MaxConns > 0, "DB_MAX_CONNS must be positive")
	p.check(db.MinConns >= 0, "DB_MIN_CONNS must be non-negative")
	p.check(db.QueryTimeout > 0, "DB_QUERY_TIMEOUT must be positive")
	p.check(db.MaxConcurrentQueries > 0, "DB_MAX_CONCURRENT_QUERIES must be positive")
	p.check(db.QueueWait > 0, "DB_QUEUE_WAIT must be positive")

	srv := c.Server
	p.check(srv.Port > 0 && srv.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", srv.Port)
	p.check(srv.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.check(srv.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")

	p.check(!c.Security.RequireAPIKey || len(c.Security.APIKeys) > 0, "API_KEYS must be set when REQUIRE_API_KEY is true")

	p.check(oneOf(c.Logging.Level, logLevels), "LOG_LEVEL (%q) must be one of: %s", c.Logging.Level, strings.Join(logLevels, ", "))
	p.check(oneOf(c.Logging.Format, logFormats), "LOG_FORMAT (%q) must be one of: %s", c.Logging.Format, strings.Join(logFormats, ", "))

	return p.err()
}

// String returns the configuration for logging with the database URL and API
// keys masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Database: {Driver: %q, URL: [MASKED], MaxConns: %d, MinConns: %d, QueryTimeout: %s, MaxConcurrentQueries: %d}, ",
		c.Database.Driver, c.Database.MaxConns, c.Database.MinConns, c.Database.QueryTimeout, c.Database.MaxConcurrentQueries)
	fmt.Fprintf(&b, "Queries: {File: %q}, ", c.Queries.File)
	fmt.Fprintf(&b, "Security: {TrustedProxies: %v, EnableCSP: %t, RequireAPIKey: %t, APIKeys: [%d MASKED]}, ",
		c.Security.TrustedProxies, c.Security.EnableCSP, c.Security.RequireAPIKey, len(c.Security.APIKeys))
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
