package config

import (
	"github.com/openmining/omf/pkg/omf"
)

// WithPort sets the HTTP server port.
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the runtime environment name.
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the catalog database.
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the Postgres schema.
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithDefaultStorage selects which configured backend receives archives by
// default.
func WithDefaultStorage(name string) Option {
	return func(c *ServerConfig) error {
		c.DefaultStorageBackend = name
		return nil
	}
}

// WithMemoryStorage adds an in-memory storage backend.
func WithMemoryStorage(name string) Option {
	return func(c *ServerConfig) error {
		c.StorageBackends = upsertStorageBackend(c.StorageBackends, StorageBackendConfig{
			Name:   name,
			Type:   "memory",
			Config: map[string]interface{}{},
		})
		return nil
	}
}

// WithFilesystemStorage adds a filesystem storage backend.
func WithFilesystemStorage(name, baseDir, urlPrefix string) Option {
	return func(c *ServerConfig) error {
		c.StorageBackends = upsertStorageBackend(c.StorageBackends, StorageBackendConfig{
			Name: name,
			Type: "fs",
			Config: map[string]interface{}{
				"base_dir":   baseDir,
				"url_prefix": urlPrefix,
			},
		})
		return nil
	}
}

// WithS3Storage adds an S3 storage backend.
func WithS3Storage(name, bucket, region string) Option {
	return func(c *ServerConfig) error {
		c.StorageBackends = upsertStorageBackend(c.StorageBackends, StorageBackendConfig{
			Name: name,
			Type: "s3",
			Config: map[string]interface{}{
				"bucket": bucket,
				"region": region,
			},
		})
		return nil
	}
}

// WithS3Credentials sets static credentials on a configured S3 backend.
func WithS3Credentials(name, accessKeyID, secretAccessKey string) Option {
	return updateBackend(name, func(cfg map[string]interface{}) {
		cfg["access_key_id"] = accessKeyID
		cfg["secret_access_key"] = secretAccessKey
	})
}

// WithS3Endpoint points a configured S3 backend at an S3-compatible
// endpoint such as MinIO.
func WithS3Endpoint(name, endpoint string, usePathStyle bool) Option {
	return updateBackend(name, func(cfg map[string]interface{}) {
		cfg["endpoint"] = endpoint
		cfg["use_path_style"] = usePathStyle
	})
}

// WithKeyStrategy selects the archive object key layout.
func WithKeyStrategy(strategy string) Option {
	return func(c *ServerConfig) error {
		c.KeyStrategy = strategy
		return nil
	}
}

// WithEventLogging enables or disables event logging.
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}

// WithEventLogger sets the logger that receives catalog events.
func WithEventLogger(logger omf.Logger) Option {
	return func(c *ServerConfig) error {
		c.EventLogger = logger
		return nil
	}
}

func updateBackend(name string, apply func(map[string]interface{})) Option {
	return func(c *ServerConfig) error {
		for i := range c.StorageBackends {
			if c.StorageBackends[i].Name == name {
				if c.StorageBackends[i].Config == nil {
					c.StorageBackends[i].Config = map[string]interface{}{}
				}
				apply(c.StorageBackends[i].Config)
				return nil
			}
		}
		// Creating the backend on first touch keeps option order flexible
		cfg := map[string]interface{}{}
		apply(cfg)
		c.StorageBackends = append(c.StorageBackends, StorageBackendConfig{
			Name:   name,
			Type:   "s3",
			Config: cfg,
		})
		return nil
	}
}
