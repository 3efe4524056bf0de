package node

import (
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/google/uuid"
)

// Node identifies this server instance among its replicas.
type Node struct {
	ID         string
	Hostname   string
	IPAddress  string
	Version    string
	CommitHash string
}

var Version = "development"
var CommitHash = "unknown"

var (
	current     *Node
	currentOnce sync.Once
)

func GetNodeInfo() *Node {
	currentOnce.Do(func() {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		current = &Node{
			ID:         uuid.NewString(),
			Hostname:   hostname,
			IPAddress:  outboundIP(),
			Version:    Version,
			CommitHash: CommitHash,
		}
	})
	return current
}

// ConsumerGroup names a group owned by this node alone. Catalog change
// events are broadcast: every replica must see every event to drop its
// own cached snapshots, so replicas never share a group.
func (n *Node) ConsumerGroup(base string) string {
	return fmt.Sprintf("%s-%s", base, n.ID)
}

func outboundIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if ok && !ipNet.IP.IsLoopback() && ipNet.IP.To4() != nil {
			return ipNet.IP.String()
		}
	}
	return "127.0.0.1"
}
