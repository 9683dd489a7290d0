package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/oralarg/data/db/oralarg.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/oralarg/data/indices/bleve"
	}
	if cfg.Data.TranscriptsDir == "" {
		cfg.Data.TranscriptsDir = "/usr/local/var/oralarg/data/transcripts"
	}
	if cfg.Data.SCDBPath == "" {
		cfg.Data.SCDBPath = "/usr/local/var/oralarg/data/SCDB_2019_01_caseCentered_Docket.csv"
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.Fuzziness == 0 {
		cfg.Search.Fuzziness = 2
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".pdf", ".txt"}
	}
	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 500
	}
}
