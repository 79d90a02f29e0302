package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env  string `envconfig:"APP_ENV" default:"development"`
	Port string `envconfig:"PORT" default:"5000"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"mongo"`
	MongoURI    string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB     string `envconfig:"MONGO_DB" default:"devcamper"`

	JWTSecret       string        `envconfig:"JWT_SECRET" required:"true"`
	JWTExpire       time.Duration `envconfig:"JWT_EXPIRE" default:"720h"`
	JWTCookieExpire int           `envconfig:"JWT_COOKIE_EXPIRE" default:"30"`

	PhotoStorage   string `envconfig:"PHOTO_STORAGE" default:"minio"`
	FileUploadPath string `envconfig:"FILE_UPLOAD_PATH" default:"./public/uploads"`
	MaxFileUpload  int64  `envconfig:"MAX_FILE_UPLOAD" default:"1000000"`

	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	MinioSecretKey string `envconfig:"MINIO_SECRET_KEY" default:"minioadmin"`
	MinioBucket    string `envconfig:"MINIO_BUCKET" default:"bootcamp-photos"`
	MinioUseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`

	GeocoderProvider string `envconfig:"GEOCODER_PROVIDER" default:"openstreetmap"`
	GeocoderAPIKey   string `envconfig:"GEOCODER_API_KEY"`

	SMTPHost     string `envconfig:"SMTP_HOST" default:"smtp.mailtrap.io"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"2525"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	FromEmail    string `envconfig:"FROM_EMAIL" default:"noreply@devcamper.io"`
	FromName     string `envconfig:"FROM_NAME" default:"DevCamper"`

	SingleBootcampPerPublisher bool `envconfig:"SINGLE_BOOTCAMP_PER_PUBLISHER" default:"true"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it, using environment variables")
	}

	var c Config
	err := envconfig.Process("", &c)
	return c, err
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// CookieTTL is the lifetime of the token cookie.
func (c Config) CookieTTL() time.Duration {
	return time.Duration(c.JWTCookieExpire) * 24 * time.Hour
}
