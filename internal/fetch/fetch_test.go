package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/assets/rock.stl":
			_, _ = w.Write([]byte("payload"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, 0)

	data, err := c.Bytes(context.Background(), "assets/rock.stl")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	// Leading slash in rel must not produce a double slash.
	data, err = c.Bytes(context.Background(), "/assets/rock.stl")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	_, err = c.Bytes(context.Background(), "assets/missing.stl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestBytesContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(srv.URL, 0).Bytes(ctx, "anything")
	assert.Error(t, err)
}

func TestVerifySHA256(t *testing.T) {
	data := []byte("hello")
	sum := sha256.Sum256(data)
	good := hex.EncodeToString(sum[:])

	assert.NoError(t, VerifySHA256(data, good))
	assert.NoError(t, VerifySHA256(data, ""), "empty digest skips verification")
	assert.Error(t, VerifySHA256(data, good[:62]+"ff"))
}

func TestContentKeyStable(t *testing.T) {
	assert.Equal(t, ContentKey([]byte("x")), ContentKey([]byte("x")))
	assert.NotEqual(t, ContentKey([]byte("x")), ContentKey([]byte("y")))
	assert.Len(t, ContentKey(nil), 64)
}
