package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Extract: ExtractConfig{
			Periodicity:  "M",
			OnParseError: "abort",
			Parallel:     1,
			SkipHeader:   true,
		},
		Output: OutputConfig{
			Dir:         ".",
			Compression: "gzip",
		},
		Catalog: CatalogConfig{
			Path:       "~/.config/wikisnap",
			SQLiteFile: "catalog.db",
		},
	}
}
