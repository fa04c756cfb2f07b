package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf is the app-wide configuration. It is set once by NewConfig in main.
var Conf *Config

type (
	Config struct {
		Env      string // DEV (local; default), TEST, QA, PROD
		Debug    bool
		TestMode bool

		AppName          string
		Build            string
		SecretKey        string
		WorkDir          string
		SendgridApiKey   string
		RollbarToken     string
		DefaultFromName  string
		DefaultFromAddr  string
		AutosaveDelay    time.Duration
		ReminderHorizon  time.Duration
		TeacherEmailAddr string

		Server   ServerConfig
		Database DatabaseConfig
	}

	ServerConfig struct {
		Host               string
		Addr               string
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Ratiba")
	v.SetDefault("secretKey", "w3ek-d4y$+slot=kq&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("defaultFromName", "Ratiba")
	v.SetDefault("defaultFromAddr", "noreply@localhost")
	v.SetDefault("autosaveDelay", time.Second)
	v.SetDefault("reminderHorizon", 7*24*time.Hour)
	v.SetDefault("teacherEmail", "")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "ratiba")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "ratiba")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disableTLS", true)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	Conf = &Config{
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		AppName:          v.GetString("appName"),
		Build:            v.GetString("build"),
		SecretKey:        v.GetString("secretKey"),
		WorkDir:          wd,
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		DefaultFromName:  v.GetString("defaultFromName"),
		DefaultFromAddr:  v.GetString("defaultFromAddr"),
		AutosaveDelay:    v.GetDuration("autosaveDelay"),
		ReminderHorizon:  v.GetDuration("reminderHorizon"),
		TeacherEmailAddr: v.GetString("teacherEmail"),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Addr:               v.GetString("server.addr"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Name:          v.GetString("database.name"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
	}
	return Conf
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

func (c *Config) TeacherEmail() mail.Address {
	return mail.Address{Address: c.TeacherEmailAddr}
}

func (dc DatabaseConfig) Address() string {
	return dc.Host + ":" + dc.Port
}
