package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type config struct {
	Server    serverConfig
	Worker    workerConfig
	ZooKeeper zkConfig    `mapstructure:"zookeeper"`
	MySQL     mysqlConfig `mapstructure:"mysql"`
	Log       logConfig
}

type serverConfig struct {
	Host string
	Port int
}

type workerConfig struct {
	TimeBits     uint64 `mapstructure:"time_bits"`
	MachineBits  uint64 `mapstructure:"machine_bits"`
	SequenceBits uint64 `mapstructure:"sequence_bits"`
	MachineID    uint64 `mapstructure:"machine_id"`
	EpochNanos   int64  `mapstructure:"epoch_nanos"`
}

type zkConfig struct {
	Servers  []string
	Service  string
	Instance string
}

type mysqlConfig struct {
	DSN   string `mapstructure:"dsn"`
	Owner string
}

type logConfig struct {
	Level  string
	Pretty bool
}

func loadConfig() (*config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvPrefix("fastid")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("worker.time_bits", 40)
	v.SetDefault("worker.machine_bits", 16)
	v.SetDefault("worker.sequence_bits", 7)
	v.SetDefault("worker.machine_id", 1)
	v.SetDefault("worker.epoch_nanos", 1527811200000000000)
	v.SetDefault("zookeeper.service", "fastid")
	v.SetDefault("log.level", "info")

	v.BindEnv("server.port", "PORT")
	v.BindEnv("worker.machine_id", "FASTID_MACHINE_ID")
	v.BindEnv("mysql.dsn", "FASTID_MYSQL_DSN")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No config file: defaults plus environment.
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate fails fast on operator typos. The library itself is
// deliberately permissive (it truncates out-of-range machine IDs), but a
// misconfigured service would silently risk ID collisions, so the edge
// checks what the core does not.
func (c *config) validate() error {
	w := c.Worker
	if sum := w.TimeBits + w.MachineBits + w.SequenceBits; sum > 63 {
		return fmt.Errorf("worker bit widths sum to %d, must not exceed 63", sum)
	}
	if w.MachineBits < 64 && w.MachineID >= 1<<w.MachineBits {
		return fmt.Errorf("machine_id %d does not fit in %d bits", w.MachineID, w.MachineBits)
	}
	return nil
}
