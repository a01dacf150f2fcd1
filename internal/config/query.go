package config

import "github.com/spf13/pflag"

// QueryConfig holds configuration for a client query.
type QueryConfig struct {
	Pnl             []string
	Server          string
	Top             int
	StartDate       int
	EndDate         int
	AllowMisaligned bool
	XLSX            string
	Width           int
	LogLevel        string
}

// LoadQuery merges config file, environment variables, and flags into QueryConfig.
func LoadQuery(cfgFile string, flags *pflag.FlagSet) (QueryConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"top":       10,
		"width":     100,
		"log-level": "warn",
	})
	if err != nil {
		return QueryConfig{}, err
	}

	return QueryConfig{
		Pnl:             getStringSlice(v, "pnl"),
		Server:          v.GetString("server"),
		Top:             v.GetInt("top"),
		StartDate:       v.GetInt("start-date"),
		EndDate:         v.GetInt("end-date"),
		AllowMisaligned: v.GetBool("allow-misaligned"),
		XLSX:            v.GetString("xlsx"),
		Width:           v.GetInt("width"),
		LogLevel:        v.GetString("log-level"),
	}, nil
}
