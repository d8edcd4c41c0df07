package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/tomz197/gasbox/internal/sim"
)

// File is the on-disk configuration. Fields missing from the YAML keep
// their defaults.
type File struct {
	Simulation sim.Config `yaml:"simulation"`
	Server     Server     `yaml:"server"`
	SSH        SSH        `yaml:"ssh"`
	Web        Web        `yaml:"web"`

	LogLevel string `yaml:"log_level"`
	// LogFile receives logs from binaries that own the terminal. Empty discards.
	LogFile string `yaml:"log_file"`
}

// Server holds the tick loop settings.
type Server struct {
	TickRate        int           `yaml:"tick_rate"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SSH holds the SSH listener settings.
type SSH struct {
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	HostKeyPath string `yaml:"host_key_path"`
}

// Web holds the HTTP listener settings.
type Web struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	// FrameInterval is how often snapshots are pushed to each browser.
	FrameInterval time.Duration `yaml:"frame_interval"`
}

// Default returns the configuration used when no file is given.
func Default() File {
	return File{
		Simulation: sim.DefaultConfig(),
		Server: Server{
			TickRate:        60,
			ShutdownTimeout: 15 * time.Second,
		},
		SSH: SSH{
			Host:        "::",
			Port:        "2222",
			HostKeyPath: ".ssh/gasbox_host_key",
		},
		Web: Web{
			Host:          "0.0.0.0",
			Port:          "8080",
			FrameInterval: time.Second / 30,
		},
		LogLevel: "info",
	}
}

// Decode reads YAML from r on top of the defaults and validates the result.
// Unknown keys are rejected. An empty document yields the defaults.
func Decode(r io.Reader) (File, error) {
	f := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("decode config: %w", err)
	}

	if err := f.Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

// Load reads the YAML file at path. An empty path returns the defaults.
func Load(path string) (File, error) {
	if path == "" {
		f := Default()
		return f, f.Validate()
	}

	file, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	f, err := Decode(file)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ApplyEnv overrides listener and logging settings from the environment.
func (f *File) ApplyEnv() error {
	f.LogLevel = GetEnv("GAS_LOG_LEVEL", f.LogLevel)
	f.LogFile = GetEnv("GAS_LOG_FILE", f.LogFile)
	f.SSH.Host = GetEnv("SSH_HOST", f.SSH.Host)
	f.SSH.Port = GetEnv("SSH_PORT", f.SSH.Port)
	f.SSH.HostKeyPath = GetEnv("SSH_HOST_KEY", f.SSH.HostKeyPath)
	f.Web.Host = GetEnv("WEB_HOST", f.Web.Host)
	f.Web.Port = GetEnv("WEB_PORT", f.Web.Port)

	var err error
	if f.Server.TickRate, err = GetEnvInt("GAS_TICK_RATE", f.Server.TickRate); err != nil {
		return err
	}
	if f.Simulation.Count, err = GetEnvInt("GAS_COUNT", f.Simulation.Count); err != nil {
		return err
	}
	if f.Simulation.ExplodeSpeed, err = GetEnvFloat("GAS_EXPLODE_SPEED", f.Simulation.ExplodeSpeed); err != nil {
		return err
	}
	return f.Validate()
}

// TickTime is the duration of one server tick.
func (s Server) TickTime() time.Duration {
	return time.Second / time.Duration(s.TickRate)
}

// Validate checks every section.
func (f File) Validate() error {
	if err := f.Simulation.Validate(); err != nil {
		return err
	}
	if f.Server.TickRate <= 0 {
		return fmt.Errorf("server.tick_rate must be positive, got %d", f.Server.TickRate)
	}
	if f.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative, got %s", f.Server.ShutdownTimeout)
	}
	if f.Web.FrameInterval <= 0 {
		return fmt.Errorf("web.frame_interval must be positive, got %s", f.Web.FrameInterval)
	}
	if _, err := log.ParseLevel(f.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}
