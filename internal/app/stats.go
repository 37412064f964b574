package app

import (
	"context"
	"errors"
	"net"
	"strings"
)

// ErrNoTrustedSubnet is returned when there is no trusted subnet specified.
var ErrNoTrustedSubnet = errors.New("no trusted subnet specified")

// ErrIPNotInSubnet indicates that a client IP address does not belong to the trusted subnet.
var ErrIPNotInSubnet = errors.New("client IP is not in trusted subnet")

// ErrNoClientIP is returned when there is no client IP provided.
var ErrNoClientIP = errors.New("client IP is not provided")

// GetStats retrieves service statistics from storage: the number of
// shortened links and the number of registered users.
func (s *ShortenerService) GetStats(ctx context.Context) (int, int, error) {
	linksCount, err := s.Store.CountLinks(ctx)
	if err != nil {
		return 0, 0, err
	}
	usersCount, err := s.Users.CountUsers(ctx)
	if err != nil {
		return 0, 0, err
	}
	return linksCount, usersCount, nil
}

// CheckTrustedSubnet checks if the client IP belongs to the trusted
// subnet from configuration. It returns a corresponding error otherwise.
func (s *ShortenerService) CheckTrustedSubnet(clientIP string) error {
	if s.Cfg.TrustedSubnet == "" {
		return ErrNoTrustedSubnet
	}

	if clientIP == "" {
		return ErrNoClientIP
	}

	_, cidrNet, err := net.ParseCIDR(s.Cfg.TrustedSubnet)
	if err != nil {
		return err
	}

	ip := net.ParseIP(strings.TrimSpace(clientIP))
	if ip == nil || !cidrNet.Contains(ip) {
		return ErrIPNotInSubnet
	}

	return nil
}
