package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ocmsx/ctrlrom/dipswitch"
)

type Config struct {
	Image        string            `mapstructure:"image"`
	HighCapacity bool              `mapstructure:"high_capacity"`
	Settings     string            `mapstructure:"settings"`
	Default      map[string]string `mapstructure:"default"`
	LogLevel     int               `mapstructure:"log_level"`
	LogFile      string            `mapstructure:"log_file"`
	Run          string            `mapstructure:"run"`
	Dump         string            `mapstructure:"dump"`
	Headless     bool              `mapstructure:"headless"`
}

// DefaultWord returns the switch word the host starts with if no settings
// were saved yet.
func (c *Config) DefaultWord() (dipswitch.Word, error) {
	s, err := dipswitch.FromNamed(c.Default)
	if err != nil {
		return dipswitch.Default, fmt.Errorf("default: %w", err)
	}
	return s.Word(), nil
}

// loadConfig merges, in order of precedence, command line flags, CTRLSIM_*
// environment variables and ctrlsim.yaml.
func loadConfig(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("ctrlsim", pflag.ContinueOnError)
	flags.String("config", "", "config file (default ./ctrlsim.yaml)")
	flags.String("image", "sdcard.img", "SD card image")
	flags.Bool("high_capacity", false, "report the card as SDHC regardless of its size")
	flags.String("settings", "", "file to keep the DIP switch settings in")
	flags.Int("log_level", 0, "log verbosity")
	flags.String("log_file", "ctrlsim.log", "log file, stderr if empty")
	flags.String("run", "", "run command with the loaded BIOS as last argument")
	flags.String("dump", "", "write the loaded BIOS to file")
	flags.Bool("headless", false, "boot without a terminal UI")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("ctrlsim")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)
	}
	v.SetEnvPrefix("CTRLSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if conf.Run != "" && conf.Dump == "" {
		return nil, errors.New("config: run needs dump")
	}
	return conf, nil
}
