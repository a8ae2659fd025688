// Package config loads layered configuration with Viper.
//
// Values come from defaults, a YAML file, a .env file and the process
// environment, later sources winning. Environment keys are mapped onto
// nested keys by splitting on underscores:
//
//	var cfg struct {
//		Network httpclient.Settings `mapstructure:"network"`
//	}
//	err := config.LoadConfig("nfetch", &cfg, config.WithEnvPrefix("NFETCH"))
//
// With the prefix above, NFETCH_NETWORK_TIMEOUT=5s sets network.timeout.
package config
