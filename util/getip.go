package util

import (
	"errors"
	"fmt"
	"net"
	"os"

	"go.uber.org/zap"
)

// GetIPRaw resolves the host's own IPv4 address so it can be announced to
// service discovery. Resolution goes through the hostname first and falls
// back to localhost when that fails.
func GetIPRaw() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", err
	}
	if len(hostname) == 0 {
		return "", fmt.Errorf("hostname resolved empty")
	}
	addrs, err := net.LookupIP(hostname)
	if err != nil {
		addrs, err = net.LookupIP("localhost")
		if err != nil {
			return "", fmt.Errorf("lookup of %s and localhost both failed: %v", hostname, err)
		}
	}
	for _, addr := range addrs {
		if addr.To4() != nil {
			return addr.String(), nil
		}
	}
	return "", errors.New("no IPv4 address among resolved addresses")
}

// GetIP returns the host IPv4 address or an empty string, logging the
// resolution failure instead of propagating it.
func GetIP(logger *zap.Logger) string {
	ip, err := GetIPRaw()
	if err != nil {
		logger.Error("unable to determine host ip", zap.Error(err))
	}
	return ip
}
