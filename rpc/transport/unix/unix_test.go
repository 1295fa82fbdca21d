package unix

import (
	"path/filepath"
	"testing"

	"github.com/ValentinKolb/dynDB/rpc/common"
	"github.com/ValentinKolb/dynDB/rpc/transport/transporttest"
)

func TestUnixTransport(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "dyndb.sock")

	client := NewUnixClientTransport()
	transporttest.Start(t, NewUnixDefaultServerTransport(4), client,
		common.ServerConfig{Endpoint: socket, TimeoutSecond: 5},
		common.ClientConfig{Endpoints: []string{socket}, TimeoutSecond: 5, RetryCount: 2, ConnectionsPerEndpoint: 2},
	)

	transporttest.RunTransportTests(t, client)
}
