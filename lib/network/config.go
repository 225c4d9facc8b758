package network

import (
	"errors"
	"strings"
	"time"

	"pollpulse.io/pollpulse/lib/common"
)

type ServerConfig struct {
	ServerName string
	Endpoint   *common.Endpoint
	Addr       string

	ReadTimeout,
	ReadHeaderTimeout,
	WriteTimeout,
	IdleTimeout time.Duration

	TLSCertFile,
	TLSKeyFile string
}

// NewServerConfigFromEndpoint reads the server knobs from the endpoint
// query, e.g. `https://0.0.0.0:12345?TLSCertFile=...&IdleTimeout=3s`.
func NewServerConfigFromEndpoint(serverName string, endpoint *common.Endpoint) (config *ServerConfig, err error) {
	query := endpoint.Query()

	var readTimeout, readHeaderTimeout, writeTimeout, idleTimeout time.Duration

	if readTimeout, err = time.ParseDuration(common.GetUrlQuery(query, "ReadTimeout", "0s")); err != nil {
		return
	}
	if readTimeout < 0*time.Second {
		err = errors.New("invalid 'ReadTimeout'")
		return
	}

	if readHeaderTimeout, err = time.ParseDuration(common.GetUrlQuery(query, "ReadHeaderTimeout", "0s")); err != nil {
		return
	}
	if readHeaderTimeout < 0*time.Second {
		err = errors.New("invalid 'ReadHeaderTimeout'")
		return
	}

	if writeTimeout, err = time.ParseDuration(common.GetUrlQuery(query, "WriteTimeout", "0s")); err != nil {
		return
	}
	if writeTimeout < 0*time.Second {
		err = errors.New("invalid 'WriteTimeout'")
		return
	}

	if idleTimeout, err = time.ParseDuration(common.GetUrlQuery(query, "IdleTimeout", "5s")); err != nil {
		return
	}
	if idleTimeout < 0*time.Second {
		err = errors.New("invalid 'IdleTimeout'")
		return
	}

	tlsCertFile := query.Get("TLSCertFile")
	tlsKeyFile := query.Get("TLSKeyFile")

	if strings.ToLower(endpoint.Scheme) == "https" && (len(tlsCertFile) < 1 || len(tlsKeyFile) < 1) {
		err = errors.New("'https' endpoint needs 'TLSCertFile' and 'TLSKeyFile'")
		return
	}

	config = &ServerConfig{
		ServerName:        serverName,
		Endpoint:          endpoint,
		Addr:              endpoint.Host,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		TLSCertFile:       tlsCertFile,
		TLSKeyFile:        tlsKeyFile,
	}
	return
}
