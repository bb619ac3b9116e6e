package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	IntakeModeNoop  = "noop"
	IntakeModeMongo = "mongo"

	StorageNone = "none"
	StorageGCS  = "gcs"
	StorageR2   = "r2"
)

type Config struct {
	App     AppConfig
	Studio  StudioConfig
	Gemini  GeminiConfig
	Intake  IntakeConfig
	Mongo   MongoConfig
	Auth    AuthConfig
	Storage StorageConfig
	Forms   FormsConfig
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// a missing .env is fine, deployments set the environment directly
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env            string   `envconfig:"APP_ENV" default:"dev"`
	Port           string   `envconfig:"PORT" default:"8080"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"info"`
	LogWarnStack   bool     `envconfig:"LOG_WARN_STACK" default:"false"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, "prod")
}

// StudioConfig names the studio in the consultant persona and customer notices.
type StudioConfig struct {
	Name string `envconfig:"STUDIO_NAME" default:"O3D Creative Services"`
	City string `envconfig:"STUDIO_CITY" default:"London"`
}

type GeminiConfig struct {
	Model string `envconfig:"GEMINI_MODEL" default:"gemini-3-flash-preview"`
	// BaseURL overrides the API endpoint, used against local fakes.
	BaseURL string `envconfig:"GEMINI_BASE_URL"`
	// CredentialEnv lists the variables read, in order, on every advisory call.
	CredentialEnv []string `envconfig:"GEMINI_CREDENTIAL_ENV" default:"GEMINI_API_KEY,API_KEY"`
}

type IntakeConfig struct {
	Mode string `envconfig:"INTAKE_MODE" default:"noop"`
}

type MongoConfig struct {
	URI          string `envconfig:"MONGODB_URI"`
	DatabaseName string `envconfig:"DATABASE_NAME"`
}

type AuthConfig struct {
	JWTSecret        string `envconfig:"JWT_SECRET"`
	AccessTTLMinutes int    `envconfig:"ACCESS_TOKEN_TTL_MINUTES" default:"15"`
	AdminEmail       string `envconfig:"ADMIN_EMAIL"`
	AdminPassword    string `envconfig:"ADMIN_PASSWORD"`
}

func (a AuthConfig) AccessTTL() time.Duration {
	if a.AccessTTLMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(a.AccessTTLMinutes) * time.Minute
}

type StorageConfig struct {
	Provider string `envconfig:"STORAGE_PROVIDER" default:"none"`

	GCSBucket       string `envconfig:"GCS_BUCKET"`
	CredentialsFile string `envconfig:"CREDENTIALS_FILE_LOCATION"`

	R2Bucket       string `envconfig:"R2_BUCKET"`
	R2AccessKey    string `envconfig:"R2_ACCESS_KEY_ID"`
	R2SecretKey    string `envconfig:"R2_SECRET_ACCESS_KEY"`
	R2Endpoint     string `envconfig:"R2_ENDPOINT"`
	R2PublicDomain string `envconfig:"R2_PUBLIC_DOMAIN"`

	MaxUploadSizeMB   int      `envconfig:"MAX_UPLOAD_SIZE_MB" default:"25"`
	AllowedExtensions []string `envconfig:"ALLOWED_FILE_EXTENSIONS" default:".stl,.obj,.3mf,.step,.stp,.pdf,.png,.jpg,.jpeg,.webp"`
}

func (s StorageConfig) Enabled() bool {
	return s.Provider != "" && s.Provider != StorageNone
}

type FormsConfig struct {
	IdleTTL       time.Duration `envconfig:"FORM_IDLE_TTL" default:"2h"`
	SweepInterval time.Duration `envconfig:"FORM_SWEEP_INTERVAL" default:"10m"`
}

func (c *Config) Validate() error {
	switch c.Intake.Mode {
	case "", IntakeModeNoop:
	case IntakeModeMongo:
		if c.Mongo.URI == "" || c.Mongo.DatabaseName == "" {
			return fmt.Errorf("intake mode %q requires MONGODB_URI and DATABASE_NAME", c.Intake.Mode)
		}
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("intake mode %q requires JWT_SECRET for the admin api", c.Intake.Mode)
		}
	default:
		return fmt.Errorf("unknown INTAKE_MODE %q", c.Intake.Mode)
	}

	switch c.Storage.Provider {
	case "", StorageNone:
	case StorageGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage provider gcs requires GCS_BUCKET")
		}
	case StorageR2:
		s := c.Storage
		if s.R2Bucket == "" || s.R2AccessKey == "" || s.R2SecretKey == "" || s.R2Endpoint == "" {
			return fmt.Errorf("missing R2 env vars (R2_BUCKET, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_ENDPOINT)")
		}
	default:
		return fmt.Errorf("unknown STORAGE_PROVIDER %q", c.Storage.Provider)
	}

	if len(c.Gemini.CredentialEnv) == 0 {
		return fmt.Errorf("GEMINI_CREDENTIAL_ENV must name at least one variable")
	}
	return nil
}
