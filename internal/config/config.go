package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env           string            `yaml:"env" env:"IMAGER_ENV" env-default:"local"`
	DSN           string            `yaml:"dsn" env:"IMAGER_DSN" env-required:"true"`
	TokenTTL      time.Duration     `yaml:"token_ttl" env-default:"1h"`
	ActivationTTL time.Duration     `yaml:"activation_ttl" env-default:"168h"`
	HTTP          HTTPConfig        `yaml:"http"`
	FileStorage   FileStorageConfig `yaml:"file_storage"`
	Redis         RedisConf         `yaml:"redis"`
	Session       SessionConfig     `yaml:"session"`
	JWT           JWTConfig         `yaml:"jwt"`
	Mail          MailConfig        `yaml:"mail"`
	Defaults      DefaultsConfig    `yaml:"defaults"`
	LoginThrottle ThrottleConfig    `yaml:"login_throttle"`
}

type HTTPConfig struct {
	Host         string        `yaml:"host" env:"IMAGER_HTTP_HOST"`
	Port         string        `yaml:"port" env:"IMAGER_HTTP_PORT" env-default:"8080"`
	BaseURL      string        `yaml:"base_url" env-default:"http://localhost:8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"30s"`
}

type FileStorageConfig struct {
	BaseDir string `yaml:"base_dir" env-default:"./media"`
	BaseURL string `yaml:"base_url" env-default:"/media"`
	MaxSize int64  `yaml:"max_size" env-default:"10485760"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"IMAGER_REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redispassword" env:"IMAGER_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db"`
}

type SessionConfig struct {
	Secret string `yaml:"secret" env:"IMAGER_SESSION_SECRET" env-required:"true"`
	Name   string `yaml:"name" env-default:"imager_session"`
	MaxAge int    `yaml:"max_age" env-default:"1209600"`
	Secure bool   `yaml:"secure"`
}

type JWTConfig struct {
	Secret string `yaml:"secret" env:"IMAGER_JWT_SECRET" env-required:"true"`
}

type MailConfig struct {
	Backend      string        `yaml:"backend" env-default:"console"`
	From         string        `yaml:"from" env-default:"noreply@imager.local"`
	SMTPHost     string        `yaml:"smtp_host"`
	SMTPPort     int           `yaml:"smtp_port" env-default:"587"`
	SMTPUser     string        `yaml:"smtp_user" env:"IMAGER_SMTP_USER"`
	SMTPPassword string        `yaml:"smtp_password" env:"IMAGER_SMTP_PASSWORD"`
	SMTPTimeout  time.Duration `yaml:"smtp_timeout" env-default:"10s"`
}

// DefaultsConfig holds placeholder assets used when content is missing.
type DefaultsConfig struct {
	CoverURL      string `yaml:"cover_url" env-default:"/static/default_cover.svg"`
	CoverThumbURL string `yaml:"cover_thumb_url" env-default:"/static/default_cover_thumb.svg"`
	HeroURL       string `yaml:"hero_url" env-default:"/static/hero.svg"`
	HeroTitle     string `yaml:"hero_title" env-default:"High-Five"`
}

type ThrottleConfig struct {
	Attempts int           `yaml:"attempts" env-default:"5"`
	Window   time.Duration `yaml:"window" env-default:"15m"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
