package server

// Config is the web server configuration.
type Config struct {
	// Address to listen on (e.g., ":8501")
	ListenAddr string
}
