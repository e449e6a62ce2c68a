package headerchain

// Config is the acceptance policy of the header chain builder
type Config struct {
	// FinalityDepth is the number of blocks below the tip a side branch may fork from
	FinalityDepth uint64 `mapstructure:"FinalityDepth"`
	// WindowSize is the number of main chain headers retained (and stored by the light client)
	WindowSize int `mapstructure:"WindowSize"`
}
