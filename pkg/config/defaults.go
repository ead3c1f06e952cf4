package config

const (
	defaultFontSize      = 100
	defaultTextColor     = "#e9d400"
	defaultStrokeColor   = "#000000"
	defaultStrokeOffset  = 3
	defaultPaddingRatio  = 0.05
	defaultSeekSeconds   = 1.0
	defaultWorkers       = 1
	defaultOutputExt     = ".jpg"
	defaultQuality       = 95
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultServerBind    = "127.0.0.1:7490"
	defaultConfigPath    = "~/.config/covergen/config.toml"
	projectConfigName    = "covergen.toml"
	envFontPath          = "COVERGEN_FONT_PATH"
	envFolder            = "COVERGEN_FOLDER"
	maxPaddingRatio      = 0.5
	defaultMaxWidthLimit = 0
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Render: Render{
			FontSize:     defaultFontSize,
			TextColor:    defaultTextColor,
			StrokeColor:  defaultStrokeColor,
			StrokeOffset: defaultStrokeOffset,
			PaddingRatio: defaultPaddingRatio,
		},
		Batch: Batch{
			SeekSeconds: defaultSeekSeconds,
			Workers:     defaultWorkers,
			OutputExt:   defaultOutputExt,
			Quality:     defaultQuality,
			MaxWidth:    defaultMaxWidthLimit,
			Overwrite:   true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
	}
}
