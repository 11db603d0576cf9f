package privnet

import (
	"net"

	"github.com/mycok/kwScout/crawler"
)

// Static and compile-time check to ensure Detector implements
// crawler.PrivateNetworkDetector interface.
var _ crawler.PrivateNetworkDetector = (*Detector)(nil)

var defaultPrivateCIDRs = []string{
	// Loopback / Localhost.
	"127.0.0.0/8", // IPv4
	"::1/128",     // IPv6
	// Private networks.
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	// Link-local addresses.
	"169.254.0.0/16",
	"fe80::/10",
	// Misc.
	"0.0.0.0/8",          // All IP addresses on a local machine.
	"255.255.255.255/32", // Broadcast address for the current network.
	"fc00::/7",           // IPv6 unique local addr.
}

// Detector checks whether a host name resolves to a private network
// address.
type Detector struct {
	privateBlocks []*net.IPNet
}

// NewDetector returns a Detector configured with the default list of
// IPv4/IPv6 CIDR blocks that correspond to private networks according
// to RFC1918.
func NewDetector() (*Detector, error) {
	return NewDetectorFromCIDRs(defaultPrivateCIDRs...)
}

// NewDetectorFromCIDRs returns a Detector that treats the provided CIDR
// blocks as private networks.
func NewDetectorFromCIDRs(cidrs ...string) (*Detector, error) {
	blocks := make([]*net.IPNet, len(cidrs))

	for i, cidr := range cidrs {
		_, block, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, err
		}

		blocks[i] = block
	}

	return &Detector{privateBlocks: blocks}, nil
}

// IsNetworkPrivate resolves the address and checks whether it belongs to
// any of the configured private network blocks.
func (d *Detector) IsNetworkPrivate(address string) (bool, error) {
	ipAddr, err := net.ResolveIPAddr("ip", address)
	if err != nil {
		return false, err
	}

	for _, block := range d.privateBlocks {
		if block.Contains(ipAddr.IP) {
			return true, nil
		}
	}

	return false, nil
}
