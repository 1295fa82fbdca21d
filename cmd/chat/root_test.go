package chat

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ValentinKolb/dynDB/lib/command"
	"github.com/ValentinKolb/dynDB/lib/jsonv"
	"github.com/ValentinKolb/dynDB/lib/recordstore"
	"github.com/ValentinKolb/dynDB/lib/slot/memhost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession(t *testing.T) {
	provider := memhost.NewProvider(nil)
	in := strings.NewReader("hello\n!pronouns she/her\n!prefix ?\n?unknown\n!help\n")
	var out bytes.Buffer

	err := Session(context.Background(), provider, in, &out, "Alex", "alex", false)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 6)
	assert.Equal(t, "Hi!", lines[0])
	assert.Equal(t, "<Alex> hello", lines[1])
	assert.Equal(t, "Your pronouns are now she/her.", lines[2])
	assert.Equal(t, "Command prefix set to ?", lines[3])
	assert.Equal(t, "Unknown command!", lines[4])
	assert.Equal(t, "<Alex> !help", lines[5])

	host, err := provider.Host("alex")
	require.NoError(t, err)
	identity, err := recordstore.Open(command.IdentityID, host)
	require.NoError(t, err)
	v, ok := identity.Get("pronouns")
	require.True(t, ok)
	assert.Equal(t, jsonv.String("she/her"), v)
}

func TestSessionKeepsPrefix(t *testing.T) {
	provider := memhost.NewProvider(nil)

	var out bytes.Buffer
	require.NoError(t, Session(context.Background(), provider, strings.NewReader("!prefix #\n"), &out, "A", "a", true))
	assert.Contains(t, out.String(), "§aCommand prefix set to #")

	out.Reset()
	require.NoError(t, Session(context.Background(), provider, strings.NewReader("#help prefix\n"), &out, "B", "", false))
	assert.Contains(t, out.String(), "Usage: #prefix <prefix>")
}

func TestSessionRejectsWorldPlayer(t *testing.T) {
	provider := memhost.NewProvider(nil)

	var out bytes.Buffer
	err := Session(context.Background(), provider, strings.NewReader("!pronouns they/them\n"), &out, "World", "world", false)
	require.Error(t, err)
	assert.Empty(t, out.String())

	// nothing was written to the world host
	world, err := provider.Host("world")
	require.NoError(t, err)
	exists, err := recordstore.Exists(command.SettingsID, world)
	require.NoError(t, err)
	assert.False(t, exists)
}
