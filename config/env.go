package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

const (
	defaultMongoURI     = "mongodb://localhost:27017"
	defaultMongoDB      = "bistro-boss"
	defaultRedisAddr    = "localhost:6379"
	defaultJWTSecret    = "change-me-in-production"
	defaultAppPort      = "5000"
	defaultAppEnv       = "local"
	defaultQueueDriver  = "memory"
	defaultStorefront   = "http://localhost:5173"
	defaultSSLSandbox   = "true"
	defaultStorageDisk  = "local"
	defaultStorageRoot  = "storage"
	defaultStorageURL   = "http://localhost:5000/storage"
	defaultMailHost     = "smtp.mailtrap.io"
	defaultMailPort     = "587"
	defaultMailFrom     = "orders@bistro-boss.app"
	defaultMailFromName = "Bistro Boss"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_PORT":           defaultAppPort,
		"APP_ENV":            defaultAppEnv,
		"MONGO_URI":          defaultMongoURI,
		"MONGO_DB":           defaultMongoDB,
		"JWT_SECRET":         defaultJWTSecret,
		"REDIS_ADDR":         defaultRedisAddr,
		"REDIS_PASSWORD":     "",
		"QUEUE_DRIVER":       defaultQueueDriver,
		"STOREFRONT_URL":     defaultStorefront,
		"SSL_SANDBOX":        defaultSSLSandbox,
		"SSL_STORE_ID":       "",
		"SSL_STORE_PASS":     "",
		"SSL_SUCCESS_URL":    "",
		"SSL_FAIL_URL":       "",
		"SSL_CANCEL_URL":     "",
		"STRIPE_SECRET":      "",
		"MAIL_HOST":          defaultMailHost,
		"MAIL_PORT":          defaultMailPort,
		"MAIL_USERNAME":      "",
		"MAIL_PASSWORD":      "",
		"MAIL_FROM":          defaultMailFrom,
		"MAIL_FROM_NAME":     defaultMailFromName,
		"STORAGE_DISK":       defaultStorageDisk,
		"STORAGE_LOCAL_ROOT": defaultStorageRoot,
		"STORAGE_URL":        defaultStorageURL,
	}
}

func AppPort() string { _ = Load(); return get("APP_PORT", defaultAppPort) }
func AppEnv() string  { _ = Load(); return get("APP_ENV", defaultAppEnv) }

func MongoURI() string { _ = Load(); return get("MONGO_URI", defaultMongoURI) }
func MongoDB() string  { _ = Load(); return get("MONGO_DB", defaultMongoDB) }

func JWTSecret() string { _ = Load(); return get("JWT_SECRET", defaultJWTSecret) }

func RedisAddr() string     { _ = Load(); return get("REDIS_ADDR", defaultRedisAddr) }
func RedisPassword() string { _ = Load(); return get("REDIS_PASSWORD", "") }
func QueueDriver() string   { _ = Load(); return get("QUEUE_DRIVER", defaultQueueDriver) }

// ── Payment gateways ─────────────────────────────────────────────────────────

func StorefrontURL() string { _ = Load(); return get("STOREFRONT_URL", defaultStorefront) }

func SSLStoreID() string   { _ = Load(); return get("SSL_STORE_ID", "") }
func SSLStorePass() string { _ = Load(); return get("SSL_STORE_PASS", "") }
func SSLSandbox() bool {
	_ = Load()
	return strings.EqualFold(get("SSL_SANDBOX", defaultSSLSandbox), "true")
}
func SSLSuccessURL() string { _ = Load(); return get("SSL_SUCCESS_URL", "") }
func SSLFailURL() string    { _ = Load(); return get("SSL_FAIL_URL", "") }
func SSLCancelURL() string  { _ = Load(); return get("SSL_CANCEL_URL", "") }

func StripeSecret() string { _ = Load(); return get("STRIPE_SECRET", "") }

// ── Mail ─────────────────────────────────────────────────────────────────────

func MailHost() string     { _ = Load(); return get("MAIL_HOST", defaultMailHost) }
func MailPort() string     { _ = Load(); return get("MAIL_PORT", defaultMailPort) }
func MailUsername() string { _ = Load(); return get("MAIL_USERNAME", "") }
func MailPassword() string { _ = Load(); return get("MAIL_PASSWORD", "") }
func MailFrom() string     { _ = Load(); return get("MAIL_FROM", defaultMailFrom) }
func MailFromName() string { _ = Load(); return get("MAIL_FROM_NAME", defaultMailFromName) }

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDefault() string   { _ = Load(); return get("STORAGE_DISK", defaultStorageDisk) }
func StorageLocalRoot() string { _ = Load(); return get("STORAGE_LOCAL_ROOT", defaultStorageRoot) }
func StorageURL() string       { _ = Load(); return get("STORAGE_URL", defaultStorageURL) }

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func StorageS3URL() string      { _ = Load(); return get("S3_URL", "") }

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
// Keys from .env and config/app.json are available after config.Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Set overrides a single key at runtime. Intended for tests.
func Set(key, value string) {
	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}
