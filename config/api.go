package config

// APIConfig enables the HTTP API served next to the MQTT listener.
type APIConfig struct {
	// Addr is the listen address, for example ":8080". Empty disables the API.
	Addr string `json:"addr"`
	// Token, when set, is required as a bearer token on every request.
	Token string `json:"token"`
}
