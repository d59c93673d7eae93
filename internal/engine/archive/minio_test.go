package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	at := time.Date(2024, 6, 2, 8, 4, 5, 0, time.UTC)

	assert.Equal(t, "runs/20240602T080405Z_results.csv", ObjectName("/runs/", "/tmp/out/results.csv", at))
	assert.Equal(t, "20240602T080405Z_results.db", ObjectName("", "results.db", at))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv", contentType("a.CSV"))
	assert.Equal(t, "application/octet-stream", contentType("a.db"))
}

func TestNewMinIO(t *testing.T) {
	_, err := NewMinIO(Config{Endpoint: "localhost:9000"})
	assert.Error(t, err)

	m, err := NewMinIO(Config{Endpoint: "localhost:9000", AccessKeyID: "k", SecretAccessKey: "s"})
	require.NoError(t, err)
	assert.Equal(t, "gridplaces", m.cfg.Bucket)
	assert.Equal(t, "http://localhost:9000", m.cfg.PublicURL)
}
