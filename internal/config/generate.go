package config

import "github.com/spf13/pflag"

// GenerateConfig holds configuration for synthetic data generation.
type GenerateConfig struct {
	Out         string
	Num         int
	Force       bool
	Days        int
	Instruments int
	Ideas       int
	StartDate   int
	Seed        uint64
	Workers     int
	LogLevel    string
}

// LoadGenerate merges config file, environment variables, and flags into GenerateConfig.
func LoadGenerate(cfgFile string, flags *pflag.FlagSet) (GenerateConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"days":        2500,
		"instruments": 30,
		"ideas":       10,
		"start-date":  20090101,
		"log-level":   "info",
	})
	if err != nil {
		return GenerateConfig{}, err
	}

	return GenerateConfig{
		Out:         v.GetString("out"),
		Num:         v.GetInt("num"),
		Force:       v.GetBool("force"),
		Days:        v.GetInt("days"),
		Instruments: v.GetInt("instruments"),
		Ideas:       v.GetInt("ideas"),
		StartDate:   v.GetInt("start-date"),
		Seed:        v.GetUint64("seed"),
		Workers:     v.GetInt("workers"),
		LogLevel:    v.GetString("log-level"),
	}, nil
}
